package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
	"github.com/prn-tf/zealine/internal/worker"
)

type engagementEnv struct {
	svc           *EngagementService
	likes         *mockLikeRepository
	saves         *mockSaveRepository
	shares        *mockShareRepository
	notifications *mockNotificationRepository
	posts         *mockPostRepository
	polls         *mockPollRepository
	pool          *worker.Pool
}

func newEngagementEnv(t *testing.T) *engagementEnv {
	t.Helper()

	env := &engagementEnv{
		likes:         new(mockLikeRepository),
		saves:         new(mockSaveRepository),
		shares:        new(mockShareRepository),
		notifications: new(mockNotificationRepository),
		posts:         new(mockPostRepository),
		polls:         new(mockPollRepository),
	}
	resolver := NewContentResolver(env.posts, new(mockWritePostRepository), new(mockZealPostRepository), env.polls, zerolog.Nop())
	env.pool = worker.NewPool(worker.Options{Workers: 1, QueueSize: 16, DrainTimeout: time.Second}, zerolog.Nop())
	env.svc = NewEngagementService(env.likes, env.saves, env.shares, env.notifications, resolver, env.pool, nil, zerolog.Nop())
	return env
}

// drain flushes queued background tasks so notification assertions see them.
func (env *engagementEnv) drain() {
	env.pool.Stop()
}

func postRef(t *testing.T, env *engagementEnv, authorID uuid.UUID) domain.ContentRef {
	t.Helper()
	ref := domain.ContentRef{Type: domain.ContentTypePost, ID: uuid.New()}
	env.posts.On("GetSummary", mock.Anything, ref.ID).Return(&domain.ContentSummary{
		Type: ref.Type, ID: ref.ID, AuthorID: authorID, Status: domain.ContentStatusReady,
	}, nil)
	return ref
}

func TestEngagementService_Like(t *testing.T) {
	t.Run("first like notifies the author", func(t *testing.T) {
		env := newEngagementEnv(t)
		authorID, userID := uuid.New(), uuid.New()
		ref := postRef(t, env, authorID)

		env.likes.On("Upsert", mock.Anything, mock.MatchedBy(func(l *domain.ContentLike) bool {
			return l.Ref == ref && l.UserID == userID
		})).Return(true, nil)
		env.notifications.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.RecipientID == authorID && n.ActorID == userID && n.Kind == domain.NotificationKindLike
		})).Return(nil)

		require.NoError(t, env.svc.Like(context.Background(), ref, userID))
		env.drain()

		mock.AssertExpectationsForObjects(t, env.likes, env.notifications)
	})

	t.Run("second like is a silent no-op", func(t *testing.T) {
		env := newEngagementEnv(t)
		ref := postRef(t, env, uuid.New())
		userID := uuid.New()

		env.likes.On("Upsert", mock.Anything, mock.Anything).Return(false, nil)

		require.NoError(t, env.svc.Like(context.Background(), ref, userID))
		env.drain()

		env.notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("liking your own content produces no notification", func(t *testing.T) {
		env := newEngagementEnv(t)
		userID := uuid.New()
		ref := postRef(t, env, userID)

		env.likes.On("Upsert", mock.Anything, mock.Anything).Return(true, nil)

		require.NoError(t, env.svc.Like(context.Background(), ref, userID))
		env.drain()

		env.notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing content reads as not found", func(t *testing.T) {
		env := newEngagementEnv(t)
		ref := domain.ContentRef{Type: domain.ContentTypePost, ID: uuid.New()}
		env.posts.On("GetSummary", mock.Anything, ref.ID).Return(nil, repository.ErrNotFound)

		err := env.svc.Like(context.Background(), ref, uuid.New())
		require.ErrorIs(t, err, domain.ErrContentNotFound)
		env.likes.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})
}

func TestEngagementService_Unlike(t *testing.T) {
	env := newEngagementEnv(t)
	ref := postRef(t, env, uuid.New())
	userID := uuid.New()

	// Removing a like that was never recorded still succeeds.
	env.likes.On("Delete", mock.Anything, ref, userID).Return(false, nil)

	require.NoError(t, env.svc.Unlike(context.Background(), ref, userID))
	env.likes.AssertExpectations(t)
}

func TestEngagementService_HasLiked(t *testing.T) {
	env := newEngagementEnv(t)
	ref := domain.ContentRef{Type: domain.ContentTypePost, ID: uuid.New()}
	userID := uuid.New()

	env.likes.On("Exists", mock.Anything, ref, userID).Return(true, nil)

	liked, err := env.svc.HasLiked(context.Background(), ref, userID)
	require.NoError(t, err)
	assert.True(t, liked)
}

func TestEngagementService_Save(t *testing.T) {
	t.Run("save is private and idempotent", func(t *testing.T) {
		env := newEngagementEnv(t)
		ref := postRef(t, env, uuid.New())
		userID := uuid.New()

		env.saves.On("Upsert", mock.Anything, mock.Anything).Return(true, nil).Once()
		env.saves.On("Upsert", mock.Anything, mock.Anything).Return(false, nil).Once()

		require.NoError(t, env.svc.Save(context.Background(), ref, userID))
		require.NoError(t, env.svc.Save(context.Background(), ref, userID))
		env.drain()

		env.notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		env.saves.AssertExpectations(t)
	})

	t.Run("polls can be saved", func(t *testing.T) {
		env := newEngagementEnv(t)
		ref := domain.ContentRef{Type: domain.ContentTypePoll, ID: uuid.New()}
		env.polls.On("GetSummary", mock.Anything, ref.ID).Return(&domain.ContentSummary{
			Type: ref.Type, ID: ref.ID, AuthorID: uuid.New(),
		}, nil)
		env.saves.On("Upsert", mock.Anything, mock.Anything).Return(true, nil)

		require.NoError(t, env.svc.Save(context.Background(), ref, uuid.New()))
	})
}

func TestEngagementService_Unsave(t *testing.T) {
	env := newEngagementEnv(t)
	ref := postRef(t, env, uuid.New())
	userID := uuid.New()

	env.saves.On("Delete", mock.Anything, ref, userID).Return(false, nil)

	require.NoError(t, env.svc.Unsave(context.Background(), ref, userID))
}

func TestEngagementService_Share(t *testing.T) {
	t.Run("share notifies the author and always inserts", func(t *testing.T) {
		env := newEngagementEnv(t)
		authorID, userID := uuid.New(), uuid.New()
		ref := postRef(t, env, authorID)

		env.shares.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.ContentShare) bool {
			return s.Ref == ref && s.UserID == userID
		})).Return(nil).Twice()
		env.notifications.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.Kind == domain.NotificationKindShare && n.RecipientID == authorID
		})).Return(nil).Twice()

		require.NoError(t, env.svc.Share(context.Background(), ref, userID))
		require.NoError(t, env.svc.Share(context.Background(), ref, userID))
		env.drain()

		mock.AssertExpectationsForObjects(t, env.shares, env.notifications)
	})

	t.Run("polls are not shareable", func(t *testing.T) {
		env := newEngagementEnv(t)
		ref := domain.ContentRef{Type: domain.ContentTypePoll, ID: uuid.New()}
		env.polls.On("GetSummary", mock.Anything, ref.ID).Return(&domain.ContentSummary{
			Type: ref.Type, ID: ref.ID, AuthorID: uuid.New(),
		}, nil)

		err := env.svc.Share(context.Background(), ref, uuid.New())
		require.ErrorIs(t, err, domain.ErrContentNotShareable)
		env.shares.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestEngagementService_GetCounts(t *testing.T) {
	env := newEngagementEnv(t)
	ref := postRef(t, env, uuid.New())

	env.likes.On("CountByRef", mock.Anything, ref).Return(int64(3), nil)
	env.saves.On("CountByRef", mock.Anything, ref).Return(int64(2), nil)
	env.shares.On("CountByRef", mock.Anything, ref).Return(int64(7), nil)

	counts, err := env.svc.GetCounts(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts.Likes)
	assert.Equal(t, int64(2), counts.Saves)
	assert.Equal(t, int64(7), counts.Shares)
}

func TestEngagementService_ListSaved(t *testing.T) {
	t.Run("returns live saves", func(t *testing.T) {
		env := newEngagementEnv(t)
		userID := uuid.New()
		saved := []*domain.SavedContent{
			{Ref: domain.ContentRef{Type: domain.ContentTypePost, ID: uuid.New()}, UserID: userID},
		}

		env.saves.On("ListByUser", mock.Anything, userID, mock.Anything).Return(saved, nil)
		env.posts.On("Exists", mock.Anything, saved[0].Ref.ID).Return(true, nil)

		got, err := env.svc.ListSaved(context.Background(), userID, ListInput{Limit: 20})
		require.NoError(t, err)
		require.Len(t, got, 1)
	})

	t.Run("drops saves whose content was deleted", func(t *testing.T) {
		env := newEngagementEnv(t)
		userID := uuid.New()
		liveRef := domain.ContentRef{Type: domain.ContentTypePost, ID: uuid.New()}
		deadRef := domain.ContentRef{Type: domain.ContentTypePost, ID: uuid.New()}
		saved := []*domain.SavedContent{
			{Ref: deadRef, UserID: userID},
			{Ref: liveRef, UserID: userID},
		}

		env.saves.On("ListByUser", mock.Anything, userID, mock.Anything).Return(saved, nil)
		env.posts.On("Exists", mock.Anything, deadRef.ID).Return(false, nil)
		env.posts.On("Exists", mock.Anything, liveRef.ID).Return(true, nil)

		got, err := env.svc.ListSaved(context.Background(), userID, ListInput{Limit: 20})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, liveRef, got[0].Ref)
	})

	t.Run("keeps a save when the existence check errors", func(t *testing.T) {
		env := newEngagementEnv(t)
		userID := uuid.New()
		ref := domain.ContentRef{Type: domain.ContentTypePost, ID: uuid.New()}
		saved := []*domain.SavedContent{{Ref: ref, UserID: userID}}

		env.saves.On("ListByUser", mock.Anything, userID, mock.Anything).Return(saved, nil)
		env.posts.On("Exists", mock.Anything, ref.ID).Return(false, assert.AnError)

		got, err := env.svc.ListSaved(context.Background(), userID, ListInput{Limit: 20})
		require.NoError(t, err)
		require.Len(t, got, 1)
	})
}
