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

	"github.com/prn-tf/zealine/internal/blobstore"
	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/lock"
)

type sweeperEnv struct {
	sw            *Sweeper
	drafts        *mockDraftRepository
	comments      *mockCommentRepository
	likes         *mockLikeRepository
	saves         *mockSaveRepository
	shares        *mockShareRepository
	reports       *mockReportRepository
	notifications *mockNotificationRepository
	posts         *mockPostRepository
	gateway       *blobstore.MemoryGateway
	locker        *lock.MemoryLocker
}

func newSweeperEnv(t *testing.T) *sweeperEnv {
	t.Helper()

	env := &sweeperEnv{
		drafts:        new(mockDraftRepository),
		comments:      new(mockCommentRepository),
		likes:         new(mockLikeRepository),
		saves:         new(mockSaveRepository),
		shares:        new(mockShareRepository),
		reports:       new(mockReportRepository),
		notifications: new(mockNotificationRepository),
		posts:         new(mockPostRepository),
		gateway:       blobstore.NewMemoryGateway("http://localhost"),
		locker:        lock.NewMemoryLocker(),
	}
	resolver := NewContentResolver(env.posts, new(mockWritePostRepository), new(mockZealPostRepository), new(mockPollRepository), zerolog.Nop())
	env.sw = NewSweeper(
		env.drafts, env.gateway, resolver,
		env.comments, env.likes, env.saves, env.shares, env.reports,
		env.notifications, env.locker, nil, zerolog.Nop(),
		DefaultSweepConfig(),
	)
	return env
}

// noStaleRefs marks every interaction store empty for the stale-ref sweep.
func (env *sweeperEnv) noStaleRefs() {
	for _, store := range []*mock.Mock{
		&env.comments.Mock, &env.likes.Mock, &env.saves.Mock, &env.shares.Mock, &env.reports.Mock,
	} {
		store.On("DistinctRefs", mock.Anything, mock.Anything, mock.Anything).Return([]domain.ContentRef{}, nil)
	}
}

func TestSweeper_SweepExpiredDrafts(t *testing.T) {
	env := newSweeperEnv(t)
	ownerID := uuid.New()

	simple := domain.NewSimpleDraft(ownerID, domain.MediaKindImage, "photo.png", 1024, "image/png", "images/x/a.png")

	key := "videos/x/b.mp4"
	sessionID, err := env.gateway.InitiateMultipart(context.Background(), key, "video/mp4")
	require.NoError(t, err)
	multipart := domain.NewMultipartDraft(ownerID, domain.MediaKindVideo, "clip.mp4", 50<<20, "video/mp4", key, sessionID)

	env.drafts.On("ListExpiredPending", mock.Anything, mock.Anything, mock.Anything).
		Return([]*domain.UploadDraft{simple, multipart}, nil)
	env.drafts.On("MarkFailed", mock.Anything, simple.ID, mock.Anything).Return(nil)
	env.drafts.On("MarkFailed", mock.Anything, multipart.ID, mock.Anything).Return(nil)

	result := env.sw.SweepExpiredDrafts(context.Background())

	assert.Equal(t, "drafts", result.Job)
	assert.Equal(t, int64(2), result.Deleted)
	assert.Zero(t, result.Errors)
	assert.False(t, result.Skipped)
	assert.Equal(t, 0, env.gateway.SessionCount(), "expired multipart session should be aborted")

	env.drafts.AssertExpectations(t)
}

func TestSweeper_SweepStaleRefs(t *testing.T) {
	env := newSweeperEnv(t)

	liveRef := domain.ContentRef{Type: domain.ContentTypePost, ID: uuid.New()}
	deadRef := domain.ContentRef{Type: domain.ContentTypePost, ID: uuid.New()}

	env.posts.On("Exists", mock.Anything, liveRef.ID).Return(true, nil)
	env.posts.On("Exists", mock.Anything, deadRef.ID).Return(false, nil)

	env.comments.On("DistinctRefs", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.ContentRef{liveRef, deadRef}, nil)
	env.comments.On("DeleteByRef", mock.Anything, deadRef).Return(int64(3), nil)
	env.notifications.On("DeleteByRef", mock.Anything, deadRef).Return(int64(1), nil)

	for _, store := range []*mock.Mock{
		&env.likes.Mock, &env.saves.Mock, &env.shares.Mock, &env.reports.Mock,
	} {
		store.On("DistinctRefs", mock.Anything, mock.Anything, mock.Anything).Return([]domain.ContentRef{}, nil)
	}

	result := env.sw.SweepStaleRefs(context.Background())

	assert.Equal(t, "refs", result.Job)
	assert.Equal(t, int64(4), result.Deleted, "stale comments plus their notifications")
	assert.Zero(t, result.Errors)

	env.comments.AssertNotCalled(t, "DeleteByRef", mock.Anything, liveRef)
	env.comments.AssertExpectations(t)
}

func TestSweeper_SweepStaleRefs_RepagesAfterDeletions(t *testing.T) {
	env := newSweeperEnv(t)
	env.sw.config.BatchSize = 2

	dead := domain.ContentRef{Type: domain.ContentTypePost, ID: uuid.New()}
	live1 := domain.ContentRef{Type: domain.ContentTypePost, ID: uuid.New()}
	live2 := domain.ContentRef{Type: domain.ContentTypePost, ID: uuid.New()}

	env.posts.On("Exists", mock.Anything, dead.ID).Return(false, nil)
	env.posts.On("Exists", mock.Anything, live1.ID).Return(true, nil)
	env.posts.On("Exists", mock.Anything, live2.ID).Return(true, nil)

	// A deletion shrinks the distinct set, so after a full page with a
	// deletion the sweep must restart from offset zero; a clean full page
	// then advances the offset.
	env.comments.On("DistinctRefs", mock.Anything, 2, 0).
		Return([]domain.ContentRef{dead, live1}, nil).Once()
	env.comments.On("DeleteByRef", mock.Anything, dead).Return(int64(2), nil)
	env.notifications.On("DeleteByRef", mock.Anything, dead).Return(int64(0), nil)
	env.comments.On("DistinctRefs", mock.Anything, 2, 0).
		Return([]domain.ContentRef{live1, live2}, nil).Once()
	env.comments.On("DistinctRefs", mock.Anything, 2, 2).
		Return([]domain.ContentRef{}, nil).Once()

	for _, store := range []*mock.Mock{
		&env.likes.Mock, &env.saves.Mock, &env.shares.Mock, &env.reports.Mock,
	} {
		store.On("DistinctRefs", mock.Anything, mock.Anything, mock.Anything).Return([]domain.ContentRef{}, nil)
	}

	result := env.sw.SweepStaleRefs(context.Background())

	assert.Equal(t, int64(2), result.Deleted)
	assert.Zero(t, result.Errors)
	env.comments.AssertExpectations(t)
}

func TestSweeper_SweepNotifications(t *testing.T) {
	env := newSweeperEnv(t)

	env.notifications.On("DeleteReadBefore", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		retention := DefaultSweepConfig().NotificationRetention
		want := time.Now().UTC().Add(-retention)
		return cutoff.Sub(want).Abs() < time.Minute
	})).Return(int64(7), nil)

	result := env.sw.SweepNotifications(context.Background())

	assert.Equal(t, "notifications", result.Job)
	assert.Equal(t, int64(7), result.Deleted)
	env.notifications.AssertExpectations(t)
}

func TestSweeper_SkipsWhenLockHeld(t *testing.T) {
	env := newSweeperEnv(t)

	acquired, err := env.locker.Acquire(context.Background(), lock.Keys.DraftSweep(), time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	result := env.sw.SweepExpiredDrafts(context.Background())

	assert.True(t, result.Skipped)
	assert.Zero(t, result.Deleted)
	env.drafts.AssertNotCalled(t, "ListExpiredPending", mock.Anything, mock.Anything, mock.Anything)
}

func TestSweeper_RunAll(t *testing.T) {
	env := newSweeperEnv(t)

	env.drafts.On("ListExpiredPending", mock.Anything, mock.Anything, mock.Anything).
		Return([]*domain.UploadDraft{}, nil)
	env.noStaleRefs()
	env.notifications.On("DeleteReadBefore", mock.Anything, mock.Anything).Return(int64(0), nil)

	results := env.sw.RunAll(context.Background())

	require.Len(t, results, 3)
	assert.Equal(t, "drafts", results[0].Job)
	assert.Equal(t, "refs", results[1].Job)
	assert.Equal(t, "notifications", results[2].Job)
	for _, r := range results {
		assert.False(t, r.Skipped)
		assert.Zero(t, r.Errors)
	}
}
