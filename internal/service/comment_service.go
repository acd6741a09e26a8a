package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/metrics"
	"github.com/prn-tf/zealine/internal/repository"
	"github.com/prn-tf/zealine/internal/worker"
)

// maxCommentLength bounds the comment body.
const maxCommentLength = 2000

// CommentService handles comments on commentable content.
type CommentService struct {
	comments      repository.CommentRepository
	notifications repository.NotificationRepository
	resolver      *ContentResolver
	pool          *worker.Pool
	metrics       *metrics.Metrics
	logger        zerolog.Logger
}

// NewCommentService creates a new comment service.
func NewCommentService(
	comments repository.CommentRepository,
	notifications repository.NotificationRepository,
	resolver *ContentResolver,
	pool *worker.Pool,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *CommentService {
	return &CommentService{
		comments:      comments,
		notifications: notifications,
		resolver:      resolver,
		pool:          pool,
		metrics:       m,
		logger:        logger.With().Str("service", "comment").Logger(),
	}
}

// ===== Service Methods =====

// Add creates a comment. The referenced item must exist and belong to a
// commentable type; polls reject comments.
func (s *CommentService) Add(ctx context.Context, ref domain.ContentRef, authorID uuid.UUID, body string) (*domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.ErrEmptyContent
	}
	if len(body) > maxCommentLength {
		return nil, domain.ErrEmptyContent
	}

	summary, err := s.resolver.ResolveCommentable(ctx, ref)
	if err != nil {
		return nil, err
	}

	comment := domain.NewComment(ref, authorID, body)
	if err := s.comments.Create(ctx, comment); err != nil {
		s.logger.Error().Err(err).Str("content_id", ref.ID.String()).Msg("Failed to create comment")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if s.metrics != nil {
		s.metrics.Interactions.WithLabelValues("comment").Inc()
	}
	s.notifyComment(summary.AuthorID, authorID, ref)

	s.logger.Info().
		Str("comment_id", comment.ID.String()).
		Str("content_type", string(ref.Type)).
		Str("content_id", ref.ID.String()).
		Msg("Comment created")

	return comment, nil
}

// Delete removes a comment. Only the comment author may delete it; a foreign
// comment reads the same as a missing one.
func (s *CommentService) Delete(ctx context.Context, commentID, authorID uuid.UUID) error {
	if err := s.comments.Delete(ctx, commentID, authorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrCommentNotFound
		}
		s.logger.Error().Err(err).Str("comment_id", commentID.String()).Msg("Failed to delete comment")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return nil
}

// List returns a page of comments on an item, newest first.
func (s *CommentService) List(ctx context.Context, ref domain.ContentRef, input ListInput) ([]*domain.Comment, error) {
	if _, err := s.resolver.ResolveCommentable(ctx, ref); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByRef(ctx, ref, input.options())
	if err != nil {
		s.logger.Error().Err(err).Str("content_id", ref.ID.String()).Msg("Failed to list comments")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return comments, nil
}

// Count returns the comment count for an item.
func (s *CommentService) Count(ctx context.Context, ref domain.ContentRef) (int64, error) {
	count, err := s.comments.CountByRef(ctx, ref)
	if err != nil {
		s.logger.Error().Err(err).Str("content_id", ref.ID.String()).Msg("Failed to count comments")
		return 0, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return count, nil
}

func (s *CommentService) notifyComment(recipientID, actorID uuid.UUID, ref domain.ContentRef) {
	if s.pool == nil || s.notifications == nil || recipientID == actorID {
		return
	}
	s.pool.Submit("notify_comment", func(ctx context.Context) error {
		n := domain.NewNotification(recipientID, actorID, domain.NotificationKindComment, &ref)
		return s.notifications.Create(ctx, n)
	})
}
