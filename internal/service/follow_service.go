package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
	"github.com/prn-tf/zealine/internal/worker"
)

// FollowService manages the social graph. Edges are the source of truth;
// the cached per-user counters are adjusted best-effort and recomputed from
// edges on read.
type FollowService struct {
	follows       repository.FollowRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
	pool          *worker.Pool
	logger        zerolog.Logger
}

// NewFollowService creates a new follow service.
func NewFollowService(
	follows repository.FollowRepository,
	users repository.UserRepository,
	notifications repository.NotificationRepository,
	pool *worker.Pool,
	logger zerolog.Logger,
) *FollowService {
	return &FollowService{
		follows:       follows,
		users:         users,
		notifications: notifications,
		pool:          pool,
		logger:        logger.With().Str("service", "follow").Logger(),
	}
}

// ===== Input/Output Structs =====

// FollowListInput contains parameters for follower/following listings.
type FollowListInput struct {
	// UserID is the user whose graph is being listed.
	UserID uuid.UUID

	// ViewerID annotates each row with whether the viewer follows that user.
	// The zero UUID disables annotation.
	ViewerID uuid.UUID

	// HandleFilter restricts rows to handles containing the substring.
	HandleFilter string

	Offset int
	Limit  int
}

// FollowListOutput contains one page of a follower/following listing along
// with the exact total under the active filter.
type FollowListOutput struct {
	Entries []*domain.FollowListEntry
	Total   int64
}

// FollowOutput carries the recomputed counters of both parties after an edge
// change, so clients can refresh both profiles from one response.
type FollowOutput struct {
	User     *domain.FollowCounts
	Follower *domain.FollowCounts
}

// ===== Service Methods =====

// Follow creates a follow edge from follower to user. Duplicate follows are
// rejected, as are self-follows and edges touching a missing or deactivated
// account on either side. The followed user gets a notification, the cached
// counters are bumped in the background, and both parties' fresh counts are
// returned.
func (s *FollowService) Follow(ctx context.Context, userID, followerID uuid.UUID) (*FollowOutput, error) {
	if userID == followerID {
		return nil, domain.ErrSelfFollow
	}

	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.getUser(ctx, followerID); err != nil {
		return nil, err
	}

	edge := domain.NewFollowEdge(userID, followerID)
	if err := s.follows.CreateEdge(ctx, edge); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.ErrAlreadyFollowing
		}
		s.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("follower_id", followerID.String()).
			Msg("Failed to create follow edge")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.adjustCounters(userID, followerID, 1)
	s.notifyFollow(userID, followerID)

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("follower_id", followerID.String()).
		Msg("Follow created")

	userCounts, err := s.edgeCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	followerCounts, err := s.edgeCounts(ctx, followerID)
	if err != nil {
		return nil, err
	}

	return &FollowOutput{User: userCounts, Follower: followerCounts}, nil
}

// Unfollow removes a follow edge.
func (s *FollowService) Unfollow(ctx context.Context, userID, followerID uuid.UUID) error {
	if err := s.follows.DeleteEdge(ctx, userID, followerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotFollowing
		}
		s.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("follower_id", followerID.String()).
			Msg("Failed to delete follow edge")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.adjustCounters(userID, followerID, -1)

	return nil
}

// IsFollowing reports whether followerID follows userID.
func (s *FollowService) IsFollowing(ctx context.Context, userID, followerID uuid.UUID) (bool, error) {
	exists, err := s.follows.EdgeExists(ctx, userID, followerID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to check follow edge")
		return false, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return exists, nil
}

// GetCounts recomputes follower/following counts from the edges.
func (s *FollowService) GetCounts(ctx context.Context, userID uuid.UUID) (*domain.FollowCounts, error) {
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.edgeCounts(ctx, userID)
}

// ListFollowers returns a page of the users following input.UserID, annotated
// with whether the viewer follows each of them.
func (s *FollowService) ListFollowers(ctx context.Context, input FollowListInput) (*FollowListOutput, error) {
	return s.list(ctx, input, true)
}

// ListFollowing returns a page of the users input.UserID follows.
func (s *FollowService) ListFollowing(ctx context.Context, input FollowListInput) (*FollowListOutput, error) {
	return s.list(ctx, input, false)
}

// ===== Internal Helpers =====

func (s *FollowService) list(ctx context.Context, input FollowListInput, followers bool) (*FollowListOutput, error) {
	if _, err := s.getUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	opts := repository.FollowListOptions{
		HandleFilter: strings.TrimSpace(input.HandleFilter),
		Offset:       input.Offset,
		Limit:        input.Limit,
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultPageSize
	}
	if opts.Limit > maxPageSize {
		opts.Limit = maxPageSize
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	var (
		entries []*domain.FollowListEntry
		err     error
	)
	if followers {
		entries, err = s.follows.ListFollowers(ctx, input.UserID, opts)
	} else {
		entries, err = s.follows.ListFollowing(ctx, input.UserID, opts)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", input.UserID.String()).Msg("Failed to list follow graph")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	total, err := s.filteredTotal(ctx, input.UserID, opts.HandleFilter, followers)
	if err != nil {
		return nil, err
	}

	if input.ViewerID != uuid.Nil && len(entries) > 0 {
		candidateIDs := make([]uuid.UUID, len(entries))
		for i, e := range entries {
			candidateIDs[i] = e.UserID
		}
		followed, err := s.follows.FollowedSet(ctx, input.ViewerID, candidateIDs)
		if err != nil {
			s.logger.Error().Err(err).Str("viewer_id", input.ViewerID.String()).Msg("Failed to annotate follow listing")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		for _, e := range entries {
			e.ViewerFollows = followed[e.UserID]
		}
	}

	return &FollowListOutput{Entries: entries, Total: total}, nil
}

// filteredTotal computes the exact row count under the handle filter by
// scanning all handles. The graph per user is bounded, so the scan stays
// cheap; without a filter a plain count suffices.
func (s *FollowService) filteredTotal(ctx context.Context, userID uuid.UUID, filter string, followers bool) (int64, error) {
	if filter == "" {
		var (
			total int64
			err   error
		)
		if followers {
			total, err = s.follows.CountFollowers(ctx, userID)
		} else {
			total, err = s.follows.CountFollowing(ctx, userID)
		}
		if err != nil {
			s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to count follow graph")
			return 0, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		return total, nil
	}

	var (
		handles []string
		err     error
	)
	if followers {
		handles, err = s.follows.AllFollowerHandles(ctx, userID)
	} else {
		handles, err = s.follows.AllFollowingHandles(ctx, userID)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to load follow handles")
		return 0, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	needle := strings.ToLower(filter)
	var total int64
	for _, h := range handles {
		if strings.Contains(strings.ToLower(h), needle) {
			total++
		}
	}
	return total, nil
}

func (s *FollowService) edgeCounts(ctx context.Context, userID uuid.UUID) (*domain.FollowCounts, error) {
	followers, err := s.follows.CountFollowers(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to count followers")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	following, err := s.follows.CountFollowing(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to count following")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return &domain.FollowCounts{
		UserID:         userID,
		FollowerCount:  followers,
		FollowingCount: following,
	}, nil
}

func (s *FollowService) getUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// adjustCounters bumps the cached counters in the background. Failures are
// logged and ignored; reads recompute from edges anyway.
func (s *FollowService) adjustCounters(userID, followerID uuid.UUID, delta int64) {
	if s.pool == nil {
		return
	}
	s.pool.Submit("follow_counters", func(ctx context.Context) error {
		if err := s.users.AdjustFollowerCount(ctx, userID, delta); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to adjust follower counter")
		}
		if err := s.users.AdjustFollowingCount(ctx, followerID, delta); err != nil {
			s.logger.Warn().Err(err).Str("user_id", followerID.String()).Msg("Failed to adjust following counter")
		}
		return nil
	})
}

func (s *FollowService) notifyFollow(userID, followerID uuid.UUID) {
	if s.pool == nil || s.notifications == nil {
		return
	}
	s.pool.Submit("notify_follow", func(ctx context.Context) error {
		n := domain.NewNotification(userID, followerID, domain.NotificationKindFollow, nil)
		return s.notifications.Create(ctx, n)
	})
}
