package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// writePostRepository implements repository.WritePostRepository for SQLite.
type writePostRepository struct {
	contentTable
}

// NewWritePostRepository creates a new SQLite write-post repository.
func NewWritePostRepository(db *DB) repository.WritePostRepository {
	return &writePostRepository{contentTable{db: db, table: "write_posts"}}
}

const writePostColumns = `id, author_id, title, body, cover_image_url, status,
	processing_error, deleted_at, created_at, updated_at`

// Create creates a new write post.
func (r *writePostRepository) Create(ctx context.Context, post *domain.WritePost) error {
	query := `
		INSERT INTO write_posts (id, author_id, title, body, cover_image_url, status, processing_error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		post.ID.String(),
		post.AuthorID.String(),
		post.Title,
		post.Body,
		post.CoverImageURL,
		string(post.Status),
		post.ProcessingError,
		formatTime(post.CreatedAt),
		formatTime(post.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create write post: %w", err)
	}

	return nil
}

// scanWritePost scans one write post row.
func scanWritePost(row interface{ Scan(...interface{}) error }) (*domain.WritePost, error) {
	post := &domain.WritePost{}
	var id, authorID, status, createdAt, updatedAt string
	var deletedAt sql.NullString

	err := row.Scan(
		&id,
		&authorID,
		&post.Title,
		&post.Body,
		&post.CoverImageURL,
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
		return nil, fmt.Errorf("invalid write post id in database: %w", err)
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

// GetByID retrieves a write post by ID.
func (r *writePostRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WritePost, error) {
	query := `SELECT ` + writePostColumns + ` FROM write_posts WHERE id = ? AND deleted_at IS NULL`

	post, err := scanWritePost(r.db.QueryRowContext(ctx, query, id.String()))
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
		WHERE author_id = ? AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	return r.queryWritePosts(ctx, query, authorID.String(), opts.Limit, opts.Offset)
}

// ListRecent returns the newest write posts across all authors.
func (r *writePostRepository) ListRecent(ctx context.Context, opts repository.ListOptions) ([]*domain.WritePost, error) {
	query := `
		SELECT ` + writePostColumns + `
		FROM write_posts
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	return r.queryWritePosts(ctx, query, opts.Limit, opts.Offset)
}

func (r *writePostRepository) queryWritePosts(ctx context.Context, query string, args ...interface{}) ([]*domain.WritePost, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
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
