package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// saveRepository implements repository.SaveRepository for PostgreSQL.
type saveRepository struct {
	refTable
}

// NewSaveRepository creates a new PostgreSQL saved-content repository.
func NewSaveRepository(db *DB) repository.SaveRepository {
	return &saveRepository{refTable{db: db, table: "saved_contents"}}
}

// Upsert inserts the save if absent. inserted=false means the user had
// already saved the item.
func (r *saveRepository) Upsert(ctx context.Context, save *domain.SavedContent) (bool, error) {
	query := `
		INSERT INTO saved_contents (id, content_type, content_id, model_name, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (content_type, content_id, user_id) DO NOTHING
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		save.ID,
		string(save.Ref.Type),
		save.Ref.ID,
		save.ModelName,
		save.UserID,
		save.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert save: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Delete removes a save. removed=false means no save existed.
func (r *saveRepository) Delete(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) (bool, error) {
	query := `DELETE FROM saved_contents WHERE content_type = $1 AND content_id = $2 AND user_id = $3`

	tag, err := r.db.Pool.Exec(ctx, query, string(ref.Type), ref.ID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete save: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Exists checks whether the user has saved the item.
func (r *saveRepository) Exists(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM saved_contents WHERE content_type = $1 AND content_id = $2 AND user_id = $3)`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, string(ref.Type), ref.ID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check save existence: %w", err)
	}

	return exists, nil
}

// CountByRef counts the saves on a content item.
func (r *saveRepository) CountByRef(ctx context.Context, ref domain.ContentRef) (int64, error) {
	query := `SELECT COUNT(*) FROM saved_contents WHERE content_type = $1 AND content_id = $2`

	var count int64
	if err := r.db.Pool.QueryRow(ctx, query, string(ref.Type), ref.ID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count saves: %w", err)
	}

	return count, nil
}

// ListByUser returns the user's saved items, newest first.
func (r *saveRepository) ListByUser(ctx context.Context, userID uuid.UUID, opts repository.ListOptions) ([]*domain.SavedContent, error) {
	query := `
		SELECT id, content_type, content_id, model_name, user_id, created_at
		FROM saved_contents
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	defer rows.Close()

	var saves []*domain.SavedContent
	for rows.Next() {
		save := &domain.SavedContent{}
		var contentType string
		if err := rows.Scan(&save.ID, &contentType, &save.Ref.ID, &save.ModelName, &save.UserID, &save.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan save: %w", err)
		}
		save.Ref.Type = domain.ContentType(contentType)
		saves = append(saves, save)
	}

	return saves, rows.Err()
}
