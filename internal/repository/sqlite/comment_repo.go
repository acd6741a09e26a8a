package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// commentRepository implements repository.CommentRepository for SQLite.
type commentRepository struct {
	refTable
}

// NewCommentRepository creates a new SQLite comment repository.
func NewCommentRepository(db *DB) repository.CommentRepository {
	return &commentRepository{refTable{db: db, table: "comments"}}
}

// Create creates a new comment.
func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (id, content_type, content_id, model_name, author_id, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		comment.ID.String(),
		string(comment.Ref.Type),
		comment.Ref.ID.String(),
		comment.ModelName,
		comment.AuthorID.String(),
		comment.Body,
		formatTime(comment.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// scanComment scans one comment row.
func scanComment(row interface{ Scan(...interface{}) error }) (*domain.Comment, error) {
	comment := &domain.Comment{}
	var id, contentType, contentID, authorID, createdAt string

	err := row.Scan(
		&id,
		&contentType,
		&contentID,
		&comment.ModelName,
		&authorID,
		&comment.Body,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	comment.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid comment id in database: %w", err)
	}
	comment.Ref.Type = domain.ContentType(contentType)
	comment.Ref.ID, err = uuid.Parse(contentID)
	if err != nil {
		return nil, fmt.Errorf("invalid content id in database: %w", err)
	}
	comment.AuthorID, err = uuid.Parse(authorID)
	if err != nil {
		return nil, fmt.Errorf("invalid author id in database: %w", err)
	}
	comment.CreatedAt = parseTime(createdAt)

	return comment, nil
}

// GetByID retrieves a comment by ID.
func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	query := `
		SELECT id, content_type, content_id, model_name, author_id, body, created_at
		FROM comments
		WHERE id = ?
	`

	comment, err := scanComment(r.db.QueryRowContext(ctx, query, id.String()))
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
	query := `DELETE FROM comments WHERE id = ? AND author_id = ?`

	result, err := r.db.ExecContext(ctx, query, id.String(), authorID.String())
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListByRef returns the comments on a content item, newest first.
func (r *commentRepository) ListByRef(ctx context.Context, ref domain.ContentRef, opts repository.ListOptions) ([]*domain.Comment, error) {
	query := `
		SELECT id, content_type, content_id, model_name, author_id, body, created_at
		FROM comments
		WHERE content_type = ? AND content_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, string(ref.Type), ref.ID.String(), opts.Limit, opts.Offset)
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
	query := `SELECT COUNT(*) FROM comments WHERE content_type = ? AND content_id = ?`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, string(ref.Type), ref.ID.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}

	return count, nil
}
