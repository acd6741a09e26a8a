package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// contentTable holds the status and soft-delete behavior shared by every
// concrete content table. The concrete repositories embed it and add their
// own columns on top.
type contentTable struct {
	db    *DB
	table string
}

// Exists checks whether a live (non-deleted) item with the id exists.
func (t contentTable) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE id = $1 AND deleted_at IS NULL`, t.table)

	var count int
	if err := t.db.Pool.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check %s existence: %w", t.table, err)
	}

	return count > 0, nil
}

// UpdateStatus transitions the item's processing status. Terminal statuses
// are never overwritten: the guarded UPDATE only matches processing rows, and
// a no-op on an existing terminal row is not an error.
func (t contentTable) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ContentStatus, processingError string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, processing_error = $2, updated_at = $3
		WHERE id = $4 AND status = $5 AND deleted_at IS NULL
	`, t.table)

	tag, err := t.db.Pool.Exec(ctx, query,
		string(status),
		processingError,
		time.Now().UTC(),
		id,
		string(domain.ContentStatusProcessing),
	)
	if err != nil {
		return fmt.Errorf("failed to update %s status: %w", t.table, err)
	}

	if tag.RowsAffected() == 0 {
		exists, err := t.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return repository.ErrNotFound
		}
		// Row exists with a terminal status already; leave it alone.
	}

	return nil
}

// SoftDelete marks the item deleted, scoped to its author.
func (t contentTable) SoftDelete(ctx context.Context, id, authorID uuid.UUID) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND author_id = $3 AND deleted_at IS NULL
	`, t.table)

	tag, err := t.db.Pool.Exec(ctx, query, time.Now().UTC(), id, authorID)
	if err != nil {
		return fmt.Errorf("failed to soft delete from %s: %w", t.table, err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}
