package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// shareRepository implements repository.ShareRepository for SQLite.
// Shares are not unique per user; every share is a new row.
type shareRepository struct {
	refTable
}

// NewShareRepository creates a new SQLite share repository.
func NewShareRepository(db *DB) repository.ShareRepository {
	return &shareRepository{refTable{db: db, table: "content_shares"}}
}

// Create records a new share.
func (r *shareRepository) Create(ctx context.Context, share *domain.ContentShare) error {
	query := `
		INSERT INTO content_shares (id, content_type, content_id, model_name, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		share.ID.String(),
		string(share.Ref.Type),
		share.Ref.ID.String(),
		share.ModelName,
		share.UserID.String(),
		formatTime(share.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create share: %w", err)
	}

	return nil
}

// CountByRef counts the shares of a content item.
func (r *shareRepository) CountByRef(ctx context.Context, ref domain.ContentRef) (int64, error) {
	query := `SELECT COUNT(*) FROM content_shares WHERE content_type = ? AND content_id = ?`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, string(ref.Type), ref.ID.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count shares: %w", err)
	}

	return count, nil
}

// ListByUser returns the user's shares, newest first.
func (r *shareRepository) ListByUser(ctx context.Context, userID uuid.UUID, opts repository.ListOptions) ([]*domain.ContentShare, error) {
	query := `
		SELECT id, content_type, content_id, model_name, user_id, created_at
		FROM content_shares
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID.String(), opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	defer rows.Close()

	var shares []*domain.ContentShare
	for rows.Next() {
		share := &domain.ContentShare{}
		var id, contentType, contentID, shareUserID, createdAt string
		if err := rows.Scan(&id, &contentType, &contentID, &share.ModelName, &shareUserID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		share.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid share id in database: %w", err)
		}
		share.Ref.Type = domain.ContentType(contentType)
		share.Ref.ID, err = uuid.Parse(contentID)
		if err != nil {
			return nil, fmt.Errorf("invalid content id in database: %w", err)
		}
		share.UserID, err = uuid.Parse(shareUserID)
		if err != nil {
			return nil, fmt.Errorf("invalid user id in database: %w", err)
		}
		share.CreatedAt = parseTime(createdAt)
		shares = append(shares, share)
	}

	return shares, rows.Err()
}
