package sqlite

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
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE id = ? AND deleted_at IS NULL`, t.table)

	var count int
	if err := t.db.QueryRowContext(ctx, query, id.String()).Scan(&count); err != nil {
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
		SET status = ?, processing_error = ?, updated_at = ?
		WHERE id = ? AND status = ? AND deleted_at IS NULL
	`, t.table)

	result, err := t.db.ExecContext(ctx, query,
		string(status),
		processingError,
		formatTime(time.Now().UTC()),
		id.String(),
		string(domain.ContentStatusProcessing),
	)
	if err != nil {
		return fmt.Errorf("failed to update %s status: %w", t.table, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
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
		SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND author_id = ? AND deleted_at IS NULL
	`, t.table)

	now := formatTime(time.Now().UTC())
	result, err := t.db.ExecContext(ctx, query, now, now, id.String(), authorID.String())
	if err != nil {
		return fmt.Errorf("failed to soft delete from %s: %w", t.table, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}
