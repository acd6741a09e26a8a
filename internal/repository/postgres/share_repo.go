package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// shareRepository implements repository.ShareRepository for PostgreSQL.
// Shares are not unique per user; every share is a new row.
type shareRepository struct {
	refTable
}

// NewShareRepository creates a new PostgreSQL share repository.
func NewShareRepository(db *DB) repository.ShareRepository {
	return &shareRepository{refTable{db: db, table: "content_shares"}}
}

// Create records a new share.
func (r *shareRepository) Create(ctx context.Context, share *domain.ContentShare) error {
	query := `
		INSERT INTO content_shares (id, content_type, content_id, model_name, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		share.ID,
		string(share.Ref.Type),
		share.Ref.ID,
		share.ModelName,
		share.UserID,
		share.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create share: %w", err)
	}

	return nil
}

// CountByRef counts the shares of a content item.
func (r *shareRepository) CountByRef(ctx context.Context, ref domain.ContentRef) (int64, error) {
	query := `SELECT COUNT(*) FROM content_shares WHERE content_type = $1 AND content_id = $2`

	var count int64
	if err := r.db.Pool.QueryRow(ctx, query, string(ref.Type), ref.ID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count shares: %w", err)
	}

	return count, nil
}

// ListByUser returns the user's shares, newest first.
func (r *shareRepository) ListByUser(ctx context.Context, userID uuid.UUID, opts repository.ListOptions) ([]*domain.ContentShare, error) {
	query := `
		SELECT id, content_type, content_id, model_name, user_id, created_at
		FROM content_shares
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	defer rows.Close()

	var shares []*domain.ContentShare
	for rows.Next() {
		share := &domain.ContentShare{}
		var contentType string
		if err := rows.Scan(&share.ID, &contentType, &share.Ref.ID, &share.ModelName, &share.UserID, &share.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		share.Ref.Type = domain.ContentType(contentType)
		shares = append(shares, share)
	}

	return shares, rows.Err()
}
