package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// commentRepository implements repository.CommentRepository for PostgreSQL.
type commentRepository struct {
	refTable
}

// NewCommentRepository creates a new PostgreSQL comment repository.
func NewCommentRepository(db *DB) repository.CommentRepository {
	return &commentRepository{refTable{db: db, table: "comments"}}
}

// Create creates a new comment.
func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (id, content_type, content_id, model_name, author_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		comment.ID,
		string(comment.Ref.Type),
		comment.Ref.ID,
		comment.ModelName,
		comment.AuthorID,
		comment.Body,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// scanComment scans one comment row.
func scanComment(row interface{ Scan(...interface{}) error }) (*domain.Comment, error) {
	comment := &domain.Comment{}
	var contentType string

	err := row.Scan(
		&comment.ID,
		&contentType,
		&comment.Ref.ID,
		&comment.ModelName,
		&comment.AuthorID,
		&comment.Body,
		&comment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	comment.Ref.Type = domain.ContentType(contentType)

	return comment, nil
}

// GetByID retrieves a comment by ID.
func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	query := `
		SELECT id, content_type, content_id, model_name, author_id, body, created_at
		FROM comments
		WHERE id = $1
	`

	comment, err := scanComment(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return comment, nil
}

// Delete removes a comment, scoped to its author.
func (r *commentRepository) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	query := `DELETE FROM comments WHERE id = $1 AND author_id = $2`

	tag, err := r.db.Pool.Exec(ctx, query, id, authorID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListByRef returns the comments on a content item, newest first.
func (r *commentRepository) ListByRef(ctx context.Context, ref domain.ContentRef, opts repository.ListOptions) ([]*domain.Comment, error) {
	query := `
		SELECT id, content_type, content_id, model_name, author_id, body, created_at
		FROM comments
		WHERE content_type = $1 AND content_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Pool.Query(ctx, query, string(ref.Type), ref.ID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}

	return comments, rows.Err()
}

// CountByRef counts the comments on a content item.
func (r *commentRepository) CountByRef(ctx context.Context, ref domain.ContentRef) (int64, error) {
	query := `SELECT COUNT(*) FROM comments WHERE content_type = $1 AND content_id = $2`

	var count int64
	if err := r.db.Pool.QueryRow(ctx, query, string(ref.Type), ref.ID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}

	return count, nil
}
