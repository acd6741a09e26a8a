package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// writePostRepository implements repository.WritePostRepository for PostgreSQL.
type writePostRepository struct {
	contentTable
}

// NewWritePostRepository creates a new PostgreSQL write-post repository.
func NewWritePostRepository(db *DB) repository.WritePostRepository {
	return &writePostRepository{contentTable{db: db, table: "write_posts"}}
}

const writePostColumns = `id, author_id, title, body, cover_image_url, status,
	processing_error, deleted_at, created_at, updated_at`

// Create creates a new write post.
func (r *writePostRepository) Create(ctx context.Context, post *domain.WritePost) error {
	query := `
		INSERT INTO write_posts (id, author_id, title, body, cover_image_url, status, processing_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		post.ID,
		post.AuthorID,
		post.Title,
		post.Body,
		post.CoverImageURL,
		string(post.Status),
		post.ProcessingError,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create write post: %w", err)
	}

	return nil
}

// scanWritePost scans one write post row.
func scanWritePost(row interface{ Scan(...interface{}) error }) (*domain.WritePost, error) {
	post := &domain.WritePost{}
	var status string

	err := row.Scan(
		&post.ID,
		&post.AuthorID,
		&post.Title,
		&post.Body,
		&post.CoverImageURL,
		&status,
		&post.ProcessingError,
		&post.DeletedAt,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	post.Status = domain.ContentStatus(status)

	return post, nil
}

// GetByID retrieves a write post by ID.
func (r *writePostRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WritePost, error) {
	query := `SELECT ` + writePostColumns + ` FROM write_posts WHERE id = $1 AND deleted_at IS NULL`

	post, err := scanWritePost(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get write post: %w", err)
	}

	return post, nil
}

// GetSummary returns the kind-independent projection of a write post.
func (r *writePostRepository) GetSummary(ctx context.Context, id uuid.UUID) (*domain.ContentSummary, error) {
	post, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.ContentSummary{
		Type:      domain.ContentTypeWritePost,
		ID:        post.ID,
		AuthorID:  post.AuthorID,
		Status:    post.Status,
		Title:     post.Title,
		MediaURL:  post.CoverImageURL,
		CreatedAt: post.CreatedAt,
	}, nil
}

// ListByAuthor returns the author's write posts, newest first.
func (r *writePostRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, opts repository.ListOptions) ([]*domain.WritePost, error) {
	query := `
		SELECT ` + writePostColumns + `
		FROM write_posts
		WHERE author_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryWritePosts(ctx, query, authorID, opts.Limit, opts.Offset)
}

// ListRecent returns the newest write posts across all authors.
func (r *writePostRepository) ListRecent(ctx context.Context, opts repository.ListOptions) ([]*domain.WritePost, error) {
	query := `
		SELECT ` + writePostColumns + `
		FROM write_posts
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	return r.queryWritePosts(ctx, query, opts.Limit, opts.Offset)
}

func (r *writePostRepository) queryWritePosts(ctx context.Context, query string, args ...interface{}) ([]*domain.WritePost, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list write posts: %w", err)
	}
	defer rows.Close()

	var posts []*domain.WritePost
	for rows.Next() {
		post, err := scanWritePost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan write post: %w", err)
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}
