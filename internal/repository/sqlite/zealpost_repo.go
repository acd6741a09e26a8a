package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// zealPostRepository implements repository.ZealPostRepository for SQLite.
type zealPostRepository struct {
	contentTable
}

// NewZealPostRepository creates a new SQLite zeal-post repository.
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		post.ID.String(),
		post.AuthorID.String(),
		post.Caption,
		post.VideoURL,
		post.ThumbnailURL,
		post.DurationSeconds,
		string(post.Status),
		post.ProcessingError,
		formatTime(post.CreatedAt),
		formatTime(post.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create zeal post: %w", err)
	}

	return nil
}

// scanZealPost scans one zeal post row.
func scanZealPost(row interface{ Scan(...interface{}) error }) (*domain.ZealPost, error) {
	post := &domain.ZealPost{}
	var id, authorID, status, createdAt, updatedAt string
	var deletedAt sql.NullString

	err := row.Scan(
		&id,
		&authorID,
		&post.Caption,
		&post.VideoURL,
		&post.ThumbnailURL,
		&post.DurationSeconds,
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
		return nil, fmt.Errorf("invalid zeal post id in database: %w", err)
	}
	post.AuthorID, err = uuid.Parse(authorID)
	if err != nil {
		return nil, fmt.Errorf("invalid author id in database: %w", err)
	}

	post.Status = domain.ContentStatus(status)
	post.DeletedAt = parseNullTime(deletedAt)
	post.CreatedAt = parseTime(createdAt)
	post.UpdatedAt = parseTime(updatedAt)

	return post, nil
}

// GetByID retrieves a zeal post by ID.
func (r *zealPostRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ZealPost, error) {
	query := `SELECT ` + zealPostColumns + ` FROM zeal_posts WHERE id = ? AND deleted_at IS NULL`

	post, err := scanZealPost(r.db.QueryRowContext(ctx, query, id.String()))
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
		WHERE author_id = ? AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	return r.queryZealPosts(ctx, query, authorID.String(), opts.Limit, opts.Offset)
}

// ListRecent returns the newest zeal posts across all authors.
func (r *zealPostRepository) ListRecent(ctx context.Context, opts repository.ListOptions) ([]*domain.ZealPost, error) {
	query := `
		SELECT ` + zealPostColumns + `
		FROM zeal_posts
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	return r.queryZealPosts(ctx, query, opts.Limit, opts.Offset)
}

func (r *zealPostRepository) queryZealPosts(ctx context.Context, query string, args ...interface{}) ([]*domain.ZealPost, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
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
