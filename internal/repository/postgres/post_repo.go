package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// postRepository implements repository.PostRepository for PostgreSQL.
// Image URLs are stored as a jsonb array.
type postRepository struct {
	contentTable
}

// NewPostRepository creates a new PostgreSQL post repository.
func NewPostRepository(db *DB) repository.PostRepository {
	return &postRepository{contentTable{db: db, table: "posts"}}
}

const postColumns = `id, author_id, caption, image_urls, status, processing_error,
	deleted_at, created_at, updated_at`

// Create creates a new post.
func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (id, author_id, caption, image_urls, status, processing_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		post.ID,
		post.AuthorID,
		post.Caption,
		post.ImageURLs,
		string(post.Status),
		post.ProcessingError,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

// scanPost scans one post row.
func scanPost(row interface{ Scan(...interface{}) error }) (*domain.Post, error) {
	post := &domain.Post{}
	var status string

	err := row.Scan(
		&post.ID,
		&post.AuthorID,
		&post.Caption,
		&post.ImageURLs,
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

// GetByID retrieves a post by ID. Soft-deleted posts are excluded.
func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 AND deleted_at IS NULL`

	post, err := scanPost(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return post, nil
}

// GetSummary returns the kind-independent projection of a post.
func (r *postRepository) GetSummary(ctx context.Context, id uuid.UUID) (*domain.ContentSummary, error) {
	post, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	mediaURL := ""
	if len(post.ImageURLs) > 0 {
		mediaURL = post.ImageURLs[0]
	}

	return &domain.ContentSummary{
		Type:      domain.ContentTypePost,
		ID:        post.ID,
		AuthorID:  post.AuthorID,
		Status:    post.Status,
		Title:     post.Caption,
		MediaURL:  mediaURL,
		CreatedAt: post.CreatedAt,
	}, nil
}

// ListByAuthor returns the author's posts, newest first.
func (r *postRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, opts repository.ListOptions) ([]*domain.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE author_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryPosts(ctx, query, authorID, opts.Limit, opts.Offset)
}

// ListRecent returns the newest posts across all authors.
func (r *postRepository) ListRecent(ctx context.Context, opts repository.ListOptions) ([]*domain.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	return r.queryPosts(ctx, query, opts.Limit, opts.Offset)
}

func (r *postRepository) queryPosts(ctx context.Context, query string, args ...interface{}) ([]*domain.Post, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}
