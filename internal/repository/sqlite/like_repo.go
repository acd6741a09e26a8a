package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// likeRepository implements repository.LikeRepository for SQLite.
// Uniqueness per (content_type, content_id, user_id) is enforced by the
// table constraint; Upsert leans on it instead of check-then-insert.
type likeRepository struct {
	refTable
}

// NewLikeRepository creates a new SQLite like repository.
func NewLikeRepository(db *DB) repository.LikeRepository {
	return &likeRepository{refTable{db: db, table: "content_likes"}}
}

// Upsert inserts the like if absent. inserted=false means the user had
// already liked the item; callers treat that as success.
func (r *likeRepository) Upsert(ctx context.Context, like *domain.ContentLike) (bool, error) {
	query := `
		INSERT INTO content_likes (id, content_type, content_id, model_name, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (content_type, content_id, user_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		like.ID.String(),
		string(like.Ref.Type),
		like.Ref.ID.String(),
		like.ModelName,
		like.UserID.String(),
		formatTime(like.CreatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert like: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// Delete removes a like. removed=false means no like existed.
func (r *likeRepository) Delete(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) (bool, error) {
	query := `DELETE FROM content_likes WHERE content_type = ? AND content_id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query, string(ref.Type), ref.ID.String(), userID.String())
	if err != nil {
		return false, fmt.Errorf("failed to delete like: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// Exists checks whether the user has liked the item.
func (r *likeRepository) Exists(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) (bool, error) {
	query := `SELECT COUNT(*) FROM content_likes WHERE content_type = ? AND content_id = ? AND user_id = ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, string(ref.Type), ref.ID.String(), userID.String()).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check like existence: %w", err)
	}

	return count > 0, nil
}

// CountByRef counts the likes on a content item.
func (r *likeRepository) CountByRef(ctx context.Context, ref domain.ContentRef) (int64, error) {
	query := `SELECT COUNT(*) FROM content_likes WHERE content_type = ? AND content_id = ?`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, string(ref.Type), ref.ID.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}

	return count, nil
}

// ListByUser returns the user's likes, newest first.
func (r *likeRepository) ListByUser(ctx context.Context, userID uuid.UUID, opts repository.ListOptions) ([]*domain.ContentLike, error) {
	query := `
		SELECT id, content_type, content_id, model_name, user_id, created_at
		FROM content_likes
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID.String(), opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}
	defer rows.Close()

	var likes []*domain.ContentLike
	for rows.Next() {
		like := &domain.ContentLike{}
		var id, contentType, contentID, likeUserID, createdAt string
		if err := rows.Scan(&id, &contentType, &contentID, &like.ModelName, &likeUserID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		like.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid like id in database: %w", err)
		}
		like.Ref.Type = domain.ContentType(contentType)
		like.Ref.ID, err = uuid.Parse(contentID)
		if err != nil {
			return nil, fmt.Errorf("invalid content id in database: %w", err)
		}
		like.UserID, err = uuid.Parse(likeUserID)
		if err != nil {
			return nil, fmt.Errorf("invalid user id in database: %w", err)
		}
		like.CreatedAt = parseTime(createdAt)
		likes = append(likes, like)
	}

	return likes, rows.Err()
}
