package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// postRepository implements repository.PostRepository for SQLite.
type postRepository struct {
	contentTable
}

// NewPostRepository creates a new SQLite post repository.
func NewPostRepository(db *DB) repository.PostRepository {
	return &postRepository{contentTable{db: db, table: "posts"}}
}

const postColumns = `id, author_id, caption, image_urls, status, processing_error,
	deleted_at, created_at, updated_at`

// Create creates a new post.
func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	imageURLs, err := json.Marshal(post.ImageURLs)
	if err != nil {
		return fmt.Errorf("failed to marshal image urls: %w", err)
	}

	query := `
		INSERT INTO posts (id, author_id, caption, image_urls, status, processing_error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		post.ID.String(),
		post.AuthorID.String(),
		post.Caption,
		string(imageURLs),
		string(post.Status),
		post.ProcessingError,
		formatTime(post.CreatedAt),
		formatTime(post.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

// scanPost scans one post row.
func scanPost(row interface{ Scan(...interface{}) error }) (*domain.Post, error) {
	post := &domain.Post{}
	var id, authorID, imageURLs, status, createdAt, updatedAt string
	var deletedAt sql.NullString

	err := row.Scan(
		&id,
		&authorID,
		&post.Caption,
		&imageURLs,
		&status,
		&post.ProcessingError,
		&deletedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	post.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid post id in database: %w", err)
	}
	post.AuthorID, err = uuid.Parse(authorID)
	if err != nil {
		return nil, fmt.Errorf("invalid author id in database: %w", err)
	}
	if err := json.Unmarshal([]byte(imageURLs), &post.ImageURLs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal image urls: %w", err)
	}

	post.Status = domain.ContentStatus(status)
	post.DeletedAt = parseNullTime(deletedAt)
	post.CreatedAt = parseTime(createdAt)
	post.UpdatedAt = parseTime(updatedAt)

	return post, nil
}

// GetByID retrieves a post by ID. Soft-deleted posts are excluded.
func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = ? AND deleted_at IS NULL`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id.String()))
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
		WHERE author_id = ? AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	return r.queryPosts(ctx, query, authorID.String(), opts.Limit, opts.Offset)
}

// ListRecent returns the newest posts across all authors.
func (r *postRepository) ListRecent(ctx context.Context, opts repository.ListOptions) ([]*domain.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	return r.queryPosts(ctx, query, opts.Limit, opts.Offset)
}

func (r *postRepository) queryPosts(ctx context.Context, query string, args ...interface{}) ([]*domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
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
