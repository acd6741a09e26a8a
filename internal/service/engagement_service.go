package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/metrics"
	"github.com/prn-tf/zealine/internal/repository"
	"github.com/prn-tf/zealine/internal/worker"
)

// EngagementService handles likes, saves, and shares against polymorphic
// content references. Likes and saves are idempotent per user; shares
// accumulate. Polls accept likes and saves but not shares.
type EngagementService struct {
	likes         repository.LikeRepository
	saves         repository.SaveRepository
	shares        repository.ShareRepository
	notifications repository.NotificationRepository
	resolver      *ContentResolver
	pool          *worker.Pool
	metrics       *metrics.Metrics
	logger        zerolog.Logger
}

// NewEngagementService creates a new engagement service.
func NewEngagementService(
	likes repository.LikeRepository,
	saves repository.SaveRepository,
	shares repository.ShareRepository,
	notifications repository.NotificationRepository,
	resolver *ContentResolver,
	pool *worker.Pool,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *EngagementService {
	return &EngagementService{
		likes:         likes,
		saves:         saves,
		shares:        shares,
		notifications: notifications,
		resolver:      resolver,
		pool:          pool,
		metrics:       m,
		logger:        logger.With().Str("service", "engagement").Logger(),
	}
}

// ===== Input/Output Structs =====

// EngagementCounts holds the interaction counts for one content item.
type EngagementCounts struct {
	Ref    domain.ContentRef `json:"ref"`
	Likes  int64             `json:"likes"`
	Saves  int64             `json:"saves"`
	Shares int64             `json:"shares"`
}

// ===== Service Methods =====

// Like records a like. Liking twice succeeds without a second row or a
// second notification.
func (s *EngagementService) Like(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) error {
	summary, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return err
	}

	like := domain.NewContentLike(ref, userID)
	inserted, err := s.likes.Upsert(ctx, like)
	if err != nil {
		s.logger.Error().Err(err).Str("content_id", ref.ID.String()).Msg("Failed to upsert like")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if !inserted {
		return nil
	}

	if s.metrics != nil {
		s.metrics.Interactions.WithLabelValues("like").Inc()
	}
	s.notify(summary.AuthorID, userID, domain.NotificationKindLike, ref)

	return nil
}

// Unlike removes a like. Removing an absent like succeeds.
func (s *EngagementService) Unlike(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) error {
	if _, err := s.resolver.Resolve(ctx, ref); err != nil {
		return err
	}

	if _, err := s.likes.Delete(ctx, ref, userID); err != nil {
		s.logger.Error().Err(err).Str("content_id", ref.ID.String()).Msg("Failed to delete like")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return nil
}

// HasLiked reports whether the user has liked the item.
func (s *EngagementService) HasLiked(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) (bool, error) {
	liked, err := s.likes.Exists(ctx, ref, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("content_id", ref.ID.String()).Msg("Failed to check like")
		return false, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return liked, nil
}

// Save records a save for later. Idempotent per user; saves are private, so
// no notification is produced.
func (s *EngagementService) Save(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) error {
	if _, err := s.resolver.Resolve(ctx, ref); err != nil {
		return err
	}

	save := domain.NewSavedContent(ref, userID)
	inserted, err := s.saves.Upsert(ctx, save)
	if err != nil {
		s.logger.Error().Err(err).Str("content_id", ref.ID.String()).Msg("Failed to upsert save")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if inserted && s.metrics != nil {
		s.metrics.Interactions.WithLabelValues("save").Inc()
	}
	return nil
}

// Unsave removes a save. Removing an absent save succeeds.
func (s *EngagementService) Unsave(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) error {
	if _, err := s.resolver.Resolve(ctx, ref); err != nil {
		return err
	}

	if _, err := s.saves.Delete(ctx, ref, userID); err != nil {
		s.logger.Error().Err(err).Str("content_id", ref.ID.String()).Msg("Failed to delete save")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return nil
}

// ListSaved returns a user's saved items, newest first. Saves hold weak
// references, so rows whose content has since been deleted are dropped here
// rather than surfaced to the reader.
func (s *EngagementService) ListSaved(ctx context.Context, userID uuid.UUID, input ListInput) ([]*domain.SavedContent, error) {
	saved, err := s.saves.ListByUser(ctx, userID, input.options())
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list saved content")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	live := saved[:0]
	for _, sc := range saved {
		exists, err := s.resolver.Exists(ctx, sc.Ref)
		if err != nil {
			// Lookup failure is not staleness; keep the row and let the
			// sweeper reconcile it later.
			s.logger.Warn().Err(err).Str("content_id", sc.Ref.ID.String()).Msg("Failed to resolve saved content")
			exists = true
		}
		if exists {
			live = append(live, sc)
		}
	}
	return live, nil
}

// Share records a share. Every share is a new row; sharing is rejected for
// content types outside the share flow.
func (s *EngagementService) Share(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) error {
	summary, err := s.resolver.ResolveShareable(ctx, ref)
	if err != nil {
		return err
	}

	share := domain.NewContentShare(ref, userID)
	if err := s.shares.Create(ctx, share); err != nil {
		s.logger.Error().Err(err).Str("content_id", ref.ID.String()).Msg("Failed to create share")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if s.metrics != nil {
		s.metrics.Interactions.WithLabelValues("share").Inc()
	}
	s.notify(summary.AuthorID, userID, domain.NotificationKindShare, ref)

	return nil
}

// GetCounts returns like/save/share counts for one item.
func (s *EngagementService) GetCounts(ctx context.Context, ref domain.ContentRef) (*EngagementCounts, error) {
	if _, err := s.resolver.Resolve(ctx, ref); err != nil {
		return nil, err
	}

	likes, err := s.likes.CountByRef(ctx, ref)
	if err != nil {
		s.logger.Error().Err(err).Str("content_id", ref.ID.String()).Msg("Failed to count likes")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	saves, err := s.saves.CountByRef(ctx, ref)
	if err != nil {
		s.logger.Error().Err(err).Str("content_id", ref.ID.String()).Msg("Failed to count saves")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	shares, err := s.shares.CountByRef(ctx, ref)
	if err != nil {
		s.logger.Error().Err(err).Str("content_id", ref.ID.String()).Msg("Failed to count shares")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return &EngagementCounts{Ref: ref, Likes: likes, Saves: saves, Shares: shares}, nil
}

// notify fans a notification out to the content author in the background.
// Self-interactions produce no notification.
func (s *EngagementService) notify(recipientID, actorID uuid.UUID, kind domain.NotificationKind, ref domain.ContentRef) {
	if s.pool == nil || s.notifications == nil || recipientID == actorID {
		return
	}
	s.pool.Submit("notify_"+string(kind), func(ctx context.Context) error {
		n := domain.NewNotification(recipientID, actorID, kind, &ref)
		return s.notifications.Create(ctx, n)
	})
}
