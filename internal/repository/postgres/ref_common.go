package postgres

import (
	"context"
	"fmt"

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
		LIMIT $1 OFFSET $2
	`, t.table)

	rows, err := t.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct refs in %s: %w", t.table, err)
	}
	defer rows.Close()

	var refs []domain.ContentRef
	for rows.Next() {
		var ref domain.ContentRef
		var contentType string
		if err := rows.Scan(&contentType, &ref.ID); err != nil {
			return nil, fmt.Errorf("failed to scan ref: %w", err)
		}
		ref.Type = domain.ContentType(contentType)
		refs = append(refs, ref)
	}

	return refs, rows.Err()
}

// DeleteByRef removes every row pointing at ref.
func (t refTable) DeleteByRef(ctx context.Context, ref domain.ContentRef) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE content_type = $1 AND content_id = $2`, t.table)

	tag, err := t.db.Pool.Exec(ctx, query, string(ref.Type), ref.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete refs in %s: %w", t.table, err)
	}

	return tag.RowsAffected(), nil
}
