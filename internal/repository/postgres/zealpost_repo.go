package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// zealPostRepository implements repository.ZealPostRepository for PostgreSQL.
type zealPostRepository struct {
	contentTable
}

// NewZealPostRepository creates a new PostgreSQL zeal-post repository.
func NewZealPostRepository(db *DB) repository.ZealPostRepository {
	return &zealPostRepository{contentTable{db: db, table: "zeal_posts"}}
}

const zealPostColumns = `id, author_id, caption, video_url, thumbnail_url, duration_seconds,
	status, processing_error, deleted_at, created_at, updated_at`

// Create creates a new zeal post.
func (r *zealPostRepository) Create(ctx context.Context, post *domain.ZealPost) error {
	query := `
		INSERT INTO zeal_posts (id, author_id, caption, video_url, thumbnail_url, duration_seconds,
			status, processing_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		post.ID,
		post.AuthorID,
		post.Caption,
		post.VideoURL,
		post.ThumbnailURL,
		post.DurationSeconds,
		string(post.Status),
		post.ProcessingError,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create zeal post: %w", err)
	}

	return nil
}

// scanZealPost scans one zeal post row.
func scanZealPost(row interface{ Scan(...interface{}) error }) (*domain.ZealPost, error) {
	post := &domain.ZealPost{}
	var status string

	err := row.Scan(
		&post.ID,
		&post.AuthorID,
		&post.Caption,
		&post.VideoURL,
		&post.ThumbnailURL,
		&post.DurationSeconds,
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

// GetByID retrieves a zeal post by ID.
func (r *zealPostRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ZealPost, error) {
	query := `SELECT ` + zealPostColumns + ` FROM zeal_posts WHERE id = $1 AND deleted_at IS NULL`

	post, err := scanZealPost(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get zeal post: %w", err)
	}

	return post, nil
}

// GetSummary returns the kind-independent projection of a zeal post.
func (r *zealPostRepository) GetSummary(ctx context.Context, id uuid.UUID) (*domain.ContentSummary, error) {
	post, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.ContentSummary{
		Type:      domain.ContentTypeZeal,
		ID:        post.ID,
		AuthorID:  post.AuthorID,
		Status:    post.Status,
		Title:     post.Caption,
		MediaURL:  post.VideoURL,
		CreatedAt: post.CreatedAt,
	}, nil
}

// ListByAuthor returns the author's zeal posts, newest first.
func (r *zealPostRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, opts repository.ListOptions) ([]*domain.ZealPost, error) {
	query := `
		SELECT ` + zealPostColumns + `
		FROM zeal_posts
		WHERE author_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryZealPosts(ctx, query, authorID, opts.Limit, opts.Offset)
}

// ListRecent returns the newest zeal posts across all authors.
func (r *zealPostRepository) ListRecent(ctx context.Context, opts repository.ListOptions) ([]*domain.ZealPost, error) {
	query := `
		SELECT ` + zealPostColumns + `
		FROM zeal_posts
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	return r.queryZealPosts(ctx, query, opts.Limit, opts.Offset)
}

func (r *zealPostRepository) queryZealPosts(ctx context.Context, query string, args ...interface{}) ([]*domain.ZealPost, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list zeal posts: %w", err)
	}
	defer rows.Close()

	var posts []*domain.ZealPost
	for rows.Next() {
		post, err := scanZealPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan zeal post: %w", err)
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}
