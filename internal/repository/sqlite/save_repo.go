package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// saveRepository implements repository.SaveRepository for SQLite.
type saveRepository struct {
	refTable
}

// NewSaveRepository creates a new SQLite saved-content repository.
func NewSaveRepository(db *DB) repository.SaveRepository {
	return &saveRepository{refTable{db: db, table: "saved_contents"}}
}

// Upsert inserts the save if absent. inserted=false means the user had
// already saved the item.
func (r *saveRepository) Upsert(ctx context.Context, save *domain.SavedContent) (bool, error) {
	query := `
		INSERT INTO saved_contents (id, content_type, content_id, model_name, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (content_type, content_id, user_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		save.ID.String(),
		string(save.Ref.Type),
		save.Ref.ID.String(),
		save.ModelName,
		save.UserID.String(),
		formatTime(save.CreatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert save: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// Delete removes a save. removed=false means no save existed.
func (r *saveRepository) Delete(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) (bool, error) {
	query := `DELETE FROM saved_contents WHERE content_type = ? AND content_id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query, string(ref.Type), ref.ID.String(), userID.String())
	if err != nil {
		return false, fmt.Errorf("failed to delete save: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// Exists checks whether the user has saved the item.
func (r *saveRepository) Exists(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) (bool, error) {
	query := `SELECT COUNT(*) FROM saved_contents WHERE content_type = ? AND content_id = ? AND user_id = ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, string(ref.Type), ref.ID.String(), userID.String()).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check save existence: %w", err)
	}

	return count > 0, nil
}

// CountByRef counts the saves on a content item.
func (r *saveRepository) CountByRef(ctx context.Context, ref domain.ContentRef) (int64, error) {
	query := `SELECT COUNT(*) FROM saved_contents WHERE content_type = ? AND content_id = ?`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, string(ref.Type), ref.ID.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count saves: %w", err)
	}

	return count, nil
}

// ListByUser returns the user's saved items, newest first.
func (r *saveRepository) ListByUser(ctx context.Context, userID uuid.UUID, opts repository.ListOptions) ([]*domain.SavedContent, error) {
	query := `
		SELECT id, content_type, content_id, model_name, user_id, created_at
		FROM saved_contents
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID.String(), opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	defer rows.Close()

	var saves []*domain.SavedContent
	for rows.Next() {
		save := &domain.SavedContent{}
		var id, contentType, contentID, saveUserID, createdAt string
		if err := rows.Scan(&id, &contentType, &contentID, &save.ModelName, &saveUserID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan save: %w", err)
		}
		save.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid save id in database: %w", err)
		}
		save.Ref.Type = domain.ContentType(contentType)
		save.Ref.ID, err = uuid.Parse(contentID)
		if err != nil {
			return nil, fmt.Errorf("invalid content id in database: %w", err)
		}
		save.UserID, err = uuid.Parse(saveUserID)
		if err != nil {
			return nil, fmt.Errorf("invalid user id in database: %w", err)
		}
		save.CreatedAt = parseTime(createdAt)
		saves = append(saves, save)
	}

	return saves, rows.Err()
}
