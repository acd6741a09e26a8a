package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/metrics"
	"github.com/prn-tf/zealine/internal/repository"
)

const (
	// statusCacheTTL bounds how stale a polled processing status may be.
	statusCacheTTL = 5 * time.Second

	// statusCacheTerminalTTL applies once the status can no longer change.
	statusCacheTerminalTTL = 5 * time.Minute

	defaultPageSize = 20
	maxPageSize     = 100
)

// ContentService handles content reads, poll creation, feeds, and deletion.
// Media-backed content is created through UploadService; polls carry no media
// and are created here directly.
type ContentService struct {
	posts      repository.PostRepository
	writePosts repository.WritePostRepository
	zeals      repository.ZealPostRepository
	polls      repository.PollRepository
	resolver   *ContentResolver
	cache      repository.Cache
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewContentService creates a new content service. cache may be nil, which
// disables status caching.
func NewContentService(
	posts repository.PostRepository,
	writePosts repository.WritePostRepository,
	zeals repository.ZealPostRepository,
	polls repository.PollRepository,
	resolver *ContentResolver,
	cache repository.Cache,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *ContentService {
	return &ContentService{
		posts:      posts,
		writePosts: writePosts,
		zeals:      zeals,
		polls:      polls,
		resolver:   resolver,
		cache:      cache,
		metrics:    m,
		logger:     logger.With().Str("service", "content").Logger(),
	}
}

// ===== Input/Output Structs =====

// CreatePollInput contains parameters for creating a poll.
type CreatePollInput struct {
	AuthorID uuid.UUID
	Question string
	Options  []string
	ClosesAt *time.Time
}

// CreatePollOutput contains the created poll.
type CreatePollOutput struct {
	Poll *domain.Poll
}

// GetStatusOutput contains a content item's processing status.
type GetStatusOutput struct {
	Ref    domain.ContentRef
	Status domain.ContentStatus
}

// ListInput contains pagination parameters for listings.
type ListInput struct {
	Offset int
	Limit  int
}

func (in ListInput) options() repository.ListOptions {
	return repository.ListOptions{Offset: in.Offset, Limit: in.Limit}.Clamp(defaultPageSize, maxPageSize)
}

// ===== Service Methods =====

// CreatePoll creates a poll. Polls skip the processing pipeline and are
// ready immediately.
func (s *ContentService) CreatePoll(ctx context.Context, input CreatePollInput) (*CreatePollOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, domain.ErrEmptyContent
	}
	for _, opt := range input.Options {
		if strings.TrimSpace(opt) == "" {
			return nil, domain.ErrInvalidPollOptions
		}
	}

	poll, err := domain.NewPoll(input.AuthorID, input.Question, input.Options)
	if err != nil {
		return nil, err
	}
	poll.ClosesAt = input.ClosesAt

	if err := s.polls.Create(ctx, poll); err != nil {
		s.logger.Error().Err(err).Str("poll_id", poll.ID.String()).Msg("Failed to create poll")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if s.metrics != nil {
		s.metrics.ContentCreated.WithLabelValues(string(domain.ContentTypePoll)).Inc()
	}

	s.logger.Info().
		Str("poll_id", poll.ID.String()).
		Str("author_id", input.AuthorID.String()).
		Int("options", len(poll.Options)).
		Msg("Poll created")

	return &CreatePollOutput{Poll: poll}, nil
}

// GetSummary resolves a reference to its kind-independent summary.
func (s *ContentService) GetSummary(ctx context.Context, ref domain.ContentRef) (*domain.ContentSummary, error) {
	return s.resolver.Resolve(ctx, ref)
}

// GetPost returns a post by id.
func (s *ContentService) GetPost(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapGetErr(err, "post", id)
	}
	return post, nil
}

// GetWritePost returns a write post by id.
func (s *ContentService) GetWritePost(ctx context.Context, id uuid.UUID) (*domain.WritePost, error) {
	wp, err := s.writePosts.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapGetErr(err, "write_post", id)
	}
	return wp, nil
}

// GetZealPost returns a zeal post by id.
func (s *ContentService) GetZealPost(ctx context.Context, id uuid.UUID) (*domain.ZealPost, error) {
	zeal, err := s.zeals.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapGetErr(err, "zeal", id)
	}
	return zeal, nil
}

// GetPoll returns a poll by id.
func (s *ContentService) GetPoll(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	poll, err := s.polls.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapGetErr(err, "poll", id)
	}
	return poll, nil
}

// GetStatus returns the processing status for a reference. Statuses are
// cached briefly so aggressive client polling does not hit the database;
// terminal statuses cache longer since they can no longer change.
func (s *ContentService) GetStatus(ctx context.Context, ref domain.ContentRef) (*GetStatusOutput, error) {
	cacheKey := "content:status:" + string(ref.Type) + ":" + ref.ID.String()

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			return &GetStatusOutput{Ref: ref, Status: domain.ContentStatus(cached)}, nil
		}
	}

	summary, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		ttl := statusCacheTTL
		if summary.Status.IsTerminal() {
			ttl = statusCacheTerminalTTL
		}
		if err := s.cache.Set(ctx, cacheKey, []byte(summary.Status), ttl); err != nil {
			s.logger.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache content status")
		}
	}

	return &GetStatusOutput{Ref: ref, Status: summary.Status}, nil
}

// ListRecentPosts returns the newest posts, for the home feed.
func (s *ContentService) ListRecentPosts(ctx context.Context, input ListInput) ([]*domain.Post, error) {
	posts, err := s.posts.ListRecent(ctx, input.options())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list recent posts")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return posts, nil
}

// ListRecentWritePosts returns the newest write posts.
func (s *ContentService) ListRecentWritePosts(ctx context.Context, input ListInput) ([]*domain.WritePost, error) {
	wps, err := s.writePosts.ListRecent(ctx, input.options())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list recent write posts")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return wps, nil
}

// ListRecentZealPosts returns the newest zeal posts.
func (s *ContentService) ListRecentZealPosts(ctx context.Context, input ListInput) ([]*domain.ZealPost, error) {
	zeals, err := s.zeals.ListRecent(ctx, input.options())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list recent zeal posts")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return zeals, nil
}

// ListPostsByAuthor returns an author's posts, newest first.
func (s *ContentService) ListPostsByAuthor(ctx context.Context, authorID uuid.UUID, input ListInput) ([]*domain.Post, error) {
	posts, err := s.posts.ListByAuthor(ctx, authorID, input.options())
	if err != nil {
		s.logger.Error().Err(err).Str("author_id", authorID.String()).Msg("Failed to list posts by author")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return posts, nil
}

// ListWritePostsByAuthor returns an author's write posts, newest first.
func (s *ContentService) ListWritePostsByAuthor(ctx context.Context, authorID uuid.UUID, input ListInput) ([]*domain.WritePost, error) {
	wps, err := s.writePosts.ListByAuthor(ctx, authorID, input.options())
	if err != nil {
		s.logger.Error().Err(err).Str("author_id", authorID.String()).Msg("Failed to list write posts by author")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return wps, nil
}

// ListZealPostsByAuthor returns an author's zeal posts, newest first.
func (s *ContentService) ListZealPostsByAuthor(ctx context.Context, authorID uuid.UUID, input ListInput) ([]*domain.ZealPost, error) {
	zeals, err := s.zeals.ListByAuthor(ctx, authorID, input.options())
	if err != nil {
		s.logger.Error().Err(err).Str("author_id", authorID.String()).Msg("Failed to list zeal posts by author")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return zeals, nil
}

// ListPollsByAuthor returns an author's polls, newest first.
func (s *ContentService) ListPollsByAuthor(ctx context.Context, authorID uuid.UUID, input ListInput) ([]*domain.Poll, error) {
	polls, err := s.polls.ListByAuthor(ctx, authorID, input.options())
	if err != nil {
		s.logger.Error().Err(err).Str("author_id", authorID.String()).Msg("Failed to list polls by author")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return polls, nil
}

// Delete soft-deletes a content item. Only the author may delete; a foreign
// item reads the same as a missing one. Interaction rows pointing at the item
// become stale references and are reclaimed by the background sweep.
func (s *ContentService) Delete(ctx context.Context, ref domain.ContentRef, authorID uuid.UUID) error {
	store, ok := s.resolver.Store(ref.Type)
	if !ok {
		return domain.ErrContentNotFound
	}

	if err := store.SoftDelete(ctx, ref.ID, authorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrContentNotFound
		}
		s.logger.Error().
			Err(err).
			Str("content_type", string(ref.Type)).
			Str("content_id", ref.ID.String()).
			Msg("Failed to delete content")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("content_type", string(ref.Type)).
		Str("content_id", ref.ID.String()).
		Str("author_id", authorID.String()).
		Msg("Content deleted")

	return nil
}

func (s *ContentService) mapGetErr(err error, kind string, id uuid.UUID) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrContentNotFound
	}
	s.logger.Error().Err(err).Str("kind", kind).Str("id", id.String()).Msg("Failed to get content")
	return fmt.Errorf("%w: %v", ErrInternalError, err)
}
