package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// likeRepository implements repository.LikeRepository for PostgreSQL.
// Uniqueness per (content_type, content_id, user_id) is enforced by the
// table constraint; Upsert leans on it instead of check-then-insert.
type likeRepository struct {
	refTable
}

// NewLikeRepository creates a new PostgreSQL like repository.
func NewLikeRepository(db *DB) repository.LikeRepository {
	return &likeRepository{refTable{db: db, table: "content_likes"}}
}

// Upsert inserts the like if absent. inserted=false means the user had
// already liked the item; callers treat that as success.
func (r *likeRepository) Upsert(ctx context.Context, like *domain.ContentLike) (bool, error) {
	query := `
		INSERT INTO content_likes (id, content_type, content_id, model_name, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (content_type, content_id, user_id) DO NOTHING
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		like.ID,
		string(like.Ref.Type),
		like.Ref.ID,
		like.ModelName,
		like.UserID,
		like.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert like: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Delete removes a like. removed=false means no like existed.
func (r *likeRepository) Delete(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) (bool, error) {
	query := `DELETE FROM content_likes WHERE content_type = $1 AND content_id = $2 AND user_id = $3`

	tag, err := r.db.Pool.Exec(ctx, query, string(ref.Type), ref.ID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete like: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Exists checks whether the user has liked the item.
func (r *likeRepository) Exists(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM content_likes WHERE content_type = $1 AND content_id = $2 AND user_id = $3)`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, string(ref.Type), ref.ID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check like existence: %w", err)
	}

	return exists, nil
}

// CountByRef counts the likes on a content item.
func (r *likeRepository) CountByRef(ctx context.Context, ref domain.ContentRef) (int64, error) {
	query := `SELECT COUNT(*) FROM content_likes WHERE content_type = $1 AND content_id = $2`

	var count int64
	if err := r.db.Pool.QueryRow(ctx, query, string(ref.Type), ref.ID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}

	return count, nil
}

// ListByUser returns the user's likes, newest first.
func (r *likeRepository) ListByUser(ctx context.Context, userID uuid.UUID, opts repository.ListOptions) ([]*domain.ContentLike, error) {
	query := `
		SELECT id, content_type, content_id, model_name, user_id, created_at
		FROM content_likes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}
	defer rows.Close()

	var likes []*domain.ContentLike
	for rows.Next() {
		like := &domain.ContentLike{}
		var contentType string
		if err := rows.Scan(&like.ID, &contentType, &like.Ref.ID, &like.ModelName, &like.UserID, &like.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		like.Ref.Type = domain.ContentType(contentType)
		likes = append(likes, like)
	}

	return likes, rows.Err()
}
