package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// NotificationService handles per-recipient notification reads and read-state
// transitions. Notifications are created by the interaction services.
type NotificationService struct {
	notifications repository.NotificationRepository
	logger        zerolog.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(notifications repository.NotificationRepository, logger zerolog.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		logger:        logger.With().Str("service", "notification").Logger(),
	}
}

// ===== Service Methods =====

// List returns a page of the recipient's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, input ListInput) ([]*domain.Notification, error) {
	notifications, err := s.notifications.ListByRecipient(ctx, recipientID, unreadOnly, input.options())
	if err != nil {
		s.logger.Error().Err(err).Str("recipient_id", recipientID.String()).Msg("Failed to list notifications")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return notifications, nil
}

// CountUnread returns the recipient's unread count.
func (s *NotificationService) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	count, err := s.notifications.CountUnread(ctx, recipientID)
	if err != nil {
		s.logger.Error().Err(err).Str("recipient_id", recipientID.String()).Msg("Failed to count unread notifications")
		return 0, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return count, nil
}

// MarkRead marks one notification read. Recipient-scoped: a foreign
// notification reads the same as a missing one.
func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	if err := s.notifications.MarkRead(ctx, id, recipientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotificationNotFound
		}
		s.logger.Error().Err(err).Str("notification_id", id.String()).Msg("Failed to mark notification read")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return nil
}

// MarkAllRead marks every unread notification of the recipient read and
// returns how many it touched.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	count, err := s.notifications.MarkAllRead(ctx, recipientID)
	if err != nil {
		s.logger.Error().Err(err).Str("recipient_id", recipientID.String()).Msg("Failed to mark notifications read")
		return 0, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return count, nil
}
