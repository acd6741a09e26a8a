package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// notificationRepository implements repository.NotificationRepository for PostgreSQL.
type notificationRepository struct {
	db *DB
}

// NewNotificationRepository creates a new PostgreSQL notification repository.
func NewNotificationRepository(db *DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

// Create creates a new notification.
func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient_id, actor_id, kind, content_type, content_id, model_name, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var contentType *string
	var contentID *uuid.UUID
	if n.Ref != nil {
		ct := string(n.Ref.Type)
		contentType = &ct
		contentID = &n.Ref.ID
	}

	_, err := r.db.Pool.Exec(ctx, query,
		n.ID,
		n.RecipientID,
		n.ActorID,
		string(n.Kind),
		contentType,
		contentID,
		n.ModelName,
		n.Read,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// scanNotification scans one notification row.
func scanNotification(row interface{ Scan(...interface{}) error }) (*domain.Notification, error) {
	n := &domain.Notification{}
	var kind string
	var contentType *string
	var contentID *uuid.UUID

	err := row.Scan(
		&n.ID,
		&n.RecipientID,
		&n.ActorID,
		&kind,
		&contentType,
		&contentID,
		&n.ModelName,
		&n.Read,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if contentType != nil && contentID != nil {
		n.Ref = &domain.ContentRef{Type: domain.ContentType(*contentType), ID: *contentID}
	}

	n.Kind = domain.NotificationKind(kind)

	return n, nil
}

const notificationColumns = `id, recipient_id, actor_id, kind, content_type, content_id, model_name, is_read, created_at`

// ListByRecipient returns the recipient's notifications, newest first.
func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, opts repository.ListOptions) ([]*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id = $1`

	if unreadOnly {
		query += ` AND NOT is_read`
	}

	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.Pool.Query(ctx, query, recipientID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// CountUnread counts the recipient's unread notifications.
func (r *notificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND NOT is_read`

	var count int64
	if err := r.db.Pool.QueryRow(ctx, query, recipientID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// MarkRead marks one notification read, scoped to its recipient.
func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_id = $2`

	tag, err := r.db.Pool.Exec(ctx, query, id, recipientID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// MarkAllRead marks every unread notification of the recipient read.
func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	query := `UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1 AND NOT is_read`

	tag, err := r.db.Pool.Exec(ctx, query, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteReadBefore removes read notifications created before the cutoff.
func (r *notificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE is_read AND created_at < $1`

	tag, err := r.db.Pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete read notifications: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteByRef removes notifications pointing at a stale content ref.
func (r *notificationRepository) DeleteByRef(ctx context.Context, ref domain.ContentRef) (int64, error) {
	query := `DELETE FROM notifications WHERE content_type = $1 AND content_id = $2`

	tag, err := r.db.Pool.Exec(ctx, query, string(ref.Type), ref.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications by ref: %w", err)
	}

	return tag.RowsAffected(), nil
}
