package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
)

// refTable holds the sweep surface shared by every table keyed on a weak
// content reference (content_type, content_id).
type refTable struct {
	db    *DB
	table string
}

// DistinctRefs pages through the distinct content refs present in the table.
func (t refTable) DistinctRefs(ctx context.Context, limit, offset int) ([]domain.ContentRef, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT content_type, content_id
		FROM %s
		ORDER BY content_type, content_id
		LIMIT ? OFFSET ?
	`, t.table)

	rows, err := t.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct refs in %s: %w", t.table, err)
	}
	defer rows.Close()

	var refs []domain.ContentRef
	for rows.Next() {
		var contentType, contentID string
		if err := rows.Scan(&contentType, &contentID); err != nil {
			return nil, fmt.Errorf("failed to scan ref: %w", err)
		}
		id, err := uuid.Parse(contentID)
		if err != nil {
			return nil, fmt.Errorf("invalid content id in database: %w", err)
		}
		refs = append(refs, domain.ContentRef{Type: domain.ContentType(contentType), ID: id})
	}

	return refs, rows.Err()
}

// DeleteByRef removes every row pointing at ref.
func (t refTable) DeleteByRef(ctx context.Context, ref domain.ContentRef) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE content_type = ? AND content_id = ?`, t.table)

	result, err := t.db.ExecContext(ctx, query, string(ref.Type), ref.ID.String())
	if err != nil {
		return 0, fmt.Errorf("failed to delete refs in %s: %w", t.table, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}
