package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// notificationRepository implements repository.NotificationRepository for SQLite.
type notificationRepository struct {
	db *DB
}

// NewNotificationRepository creates a new SQLite notification repository.
func NewNotificationRepository(db *DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

// Create creates a new notification.
func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient_id, actor_id, kind, content_type, content_id, model_name, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var contentType, contentID interface{}
	if n.Ref != nil {
		contentType = string(n.Ref.Type)
		contentID = n.Ref.ID.String()
	}

	_, err := r.db.ExecContext(ctx, query,
		n.ID.String(),
		n.RecipientID.String(),
		n.ActorID.String(),
		string(n.Kind),
		contentType,
		contentID,
		n.ModelName,
		boolToInt(n.Read),
		formatTime(n.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// scanNotification scans one notification row.
func scanNotification(row interface{ Scan(...interface{}) error }) (*domain.Notification, error) {
	n := &domain.Notification{}
	var id, recipientID, actorID, kind, createdAt string
	var contentType, contentID sql.NullString
	var isRead int

	err := row.Scan(
		&id,
		&recipientID,
		&actorID,
		&kind,
		&contentType,
		&contentID,
		&n.ModelName,
		&isRead,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	n.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid notification id in database: %w", err)
	}
	n.RecipientID, err = uuid.Parse(recipientID)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient id in database: %w", err)
	}
	n.ActorID, err = uuid.Parse(actorID)
	if err != nil {
		return nil, fmt.Errorf("invalid actor id in database: %w", err)
	}

	if contentType.Valid && contentID.Valid {
		refID, err := uuid.Parse(contentID.String)
		if err != nil {
			return nil, fmt.Errorf("invalid content id in database: %w", err)
		}
		n.Ref = &domain.ContentRef{Type: domain.ContentType(contentType.String), ID: refID}
	}

	n.Kind = domain.NotificationKind(kind)
	n.Read = isRead != 0
	n.CreatedAt = parseTime(createdAt)

	return n, nil
}

const notificationColumns = `id, recipient_id, actor_id, kind, content_type, content_id, model_name, is_read, created_at`

// ListByRecipient returns the recipient's notifications, newest first.
func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, opts repository.ListOptions) ([]*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id = ?`
	args := []interface{}{recipientID.String()}

	if unreadOnly {
		query += ` AND is_read = 0`
	}

	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
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
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND is_read = 0`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, recipientID.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// MarkRead marks one notification read, scoped to its recipient.
func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = 1 WHERE id = ? AND recipient_id = ?`

	result, err := r.db.ExecContext(ctx, query, id.String(), recipientID.String())
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
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

// MarkAllRead marks every unread notification of the recipient read.
func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	query := `UPDATE notifications SET is_read = 1 WHERE recipient_id = ? AND is_read = 0`

	result, err := r.db.ExecContext(ctx, query, recipientID.String())
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

// DeleteReadBefore removes read notifications created before the cutoff.
func (r *notificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE is_read = 1 AND created_at < ?`

	result, err := r.db.ExecContext(ctx, query, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to delete read notifications: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

// DeleteByRef removes notifications pointing at a stale content ref.
func (r *notificationRepository) DeleteByRef(ctx context.Context, ref domain.ContentRef) (int64, error) {
	query := `DELETE FROM notifications WHERE content_type = ? AND content_id = ?`

	result, err := r.db.ExecContext(ctx, query, string(ref.Type), ref.ID.String())
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications by ref: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}
