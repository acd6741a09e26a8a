package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(context.Background(), DefaultConfig(":memory:"), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))

	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	return db
}

func createTestUser(t *testing.T, db *DB, handle string) *domain.User {
	t.Helper()

	user, err := domain.NewUser(handle, handle, handle+"@example.com", "not-a-real-hash")
	require.NoError(t, err)
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))

	return user
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)

	// Second run must be a no-op, not a duplicate-table error.
	require.NoError(t, db.Migrate(context.Background()))
	require.NoError(t, db.Ping(context.Background()))
}

func TestUserRepository_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")

	got, err := repo.GetByHandle(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.Equal(t, "alice", got.Handle)
	assert.Equal(t, "alice@example.com", got.Email)

	dup, err := domain.NewUser("alice", "Other Alice", "other@example.com", "hash")
	require.NoError(t, err)
	require.ErrorIs(t, repo.Create(ctx, dup), domain.ErrUserAlreadyExists)
}

func TestUserRepository_SoftDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")

	require.NoError(t, repo.SoftDelete(ctx, alice.ID))

	_, err := repo.GetByID(ctx, alice.ID)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = repo.GetByHandle(ctx, "alice")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestDraftRepository_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewDraftRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "alice")
	draft := domain.NewMultipartDraft(owner.ID, domain.MediaKindVideo,
		"clip.mp4", 12*1024*1024, "video/mp4", "videos/abc.mp4", "session-1")
	require.NoError(t, repo.Create(ctx, draft))

	got, err := repo.GetByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.OwnerID, got.OwnerID)
	assert.Equal(t, domain.MediaKindVideo, got.Kind)
	assert.True(t, got.IsMultipart)
	assert.Equal(t, "session-1", got.SessionID)
	assert.Equal(t, 3, got.TotalChunks)
	assert.Equal(t, domain.DraftStatusDraft, got.Status)
	assert.WithinDuration(t, draft.ExpiresAt, got.ExpiresAt, time.Second)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDraftRepository_MarkUploaded(t *testing.T) {
	db := newTestDB(t)
	repo := NewDraftRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "alice")
	draft := domain.NewMultipartDraft(owner.ID, domain.MediaKindVideo,
		"clip.mp4", 12*1024*1024, "video/mp4", "videos/abc.mp4", "session-1")
	require.NoError(t, repo.Create(ctx, draft))

	parts := []domain.UploadedPart{
		{PartNumber: 1, ETag: `"e1"`, CompletedAt: time.Now().UTC()},
		{PartNumber: 2, ETag: `"e2"`, CompletedAt: time.Now().UTC()},
	}
	uploadedAt := time.Now().UTC()
	require.NoError(t, repo.MarkUploaded(ctx, draft.ID, parts, "https://cdn.example.com/videos/abc.mp4", uploadedAt))

	got, err := repo.GetByID(ctx, draft.ID)
	require.NoError(t, err)
	require.NotNil(t, got.UploadedAt)
	assert.WithinDuration(t, uploadedAt, *got.UploadedAt, time.Second)
	assert.Equal(t, "https://cdn.example.com/videos/abc.mp4", got.MediaURL)
	require.Len(t, got.Parts, 2)
	assert.Equal(t, `"e2"`, got.Parts[1].ETag)

	require.ErrorIs(t, repo.MarkUploaded(ctx, uuid.New(), nil, "", uploadedAt), repository.ErrNotFound)
}

func TestDraftRepository_ConsumeOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewDraftRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "alice")
	draft := domain.NewSimpleDraft(owner.ID, domain.MediaKindImage,
		"photo.jpg", 1024, "image/jpeg", "images/abc.jpg")
	require.NoError(t, repo.Create(ctx, draft))

	require.NoError(t, repo.Consume(ctx, draft.ID, owner.ID))

	// The conditional update already moved the row out of draft status, so a
	// replayed consume affects zero rows.
	require.ErrorIs(t, repo.Consume(ctx, draft.ID, owner.ID), repository.ErrNotFound)

	got, err := repo.GetByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftStatusUploaded, got.Status)
}

func TestDraftRepository_ConsumeWrongOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewDraftRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "alice")
	draft := domain.NewSimpleDraft(owner.ID, domain.MediaKindImage,
		"photo.jpg", 1024, "image/jpeg", "images/abc.jpg")
	require.NoError(t, repo.Create(ctx, draft))

	require.ErrorIs(t, repo.Consume(ctx, draft.ID, uuid.New()), repository.ErrNotFound)

	got, err := repo.GetByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftStatusDraft, got.Status)
}

func TestDraftRepository_CountPending(t *testing.T) {
	db := newTestDB(t)
	repo := NewDraftRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	owner := createTestUser(t, db, "alice")

	pending := domain.NewSimpleDraft(owner.ID, domain.MediaKindImage,
		"a.jpg", 1024, "image/jpeg", "images/a.jpg")
	require.NoError(t, repo.Create(ctx, pending))

	consumed := domain.NewSimpleDraft(owner.ID, domain.MediaKindImage,
		"b.jpg", 1024, "image/jpeg", "images/b.jpg")
	require.NoError(t, repo.Create(ctx, consumed))
	require.NoError(t, repo.Consume(ctx, consumed.ID, owner.ID))

	count, err := repo.CountPending(ctx, owner.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// A finished transfer no longer holds a pending slot.
	require.NoError(t, repo.MarkUploaded(ctx, pending.ID, nil, "https://cdn.example.com/images/a.jpg", now))

	count, err = repo.CountPending(ctx, owner.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestDraftRepository_ListExpiredPending(t *testing.T) {
	db := newTestDB(t)
	repo := NewDraftRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "alice")

	expired := domain.NewSimpleDraft(owner.ID, domain.MediaKindImage,
		"a.jpg", 1024, "image/jpeg", "images/a.jpg")
	expired.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	require.NoError(t, repo.Create(ctx, expired))

	fresh := domain.NewSimpleDraft(owner.ID, domain.MediaKindImage,
		"b.jpg", 1024, "image/jpeg", "images/b.jpg")
	require.NoError(t, repo.Create(ctx, fresh))

	drafts, err := repo.ListExpiredPending(ctx, time.Now().UTC(), 10)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, expired.ID, drafts[0].ID)

	require.NoError(t, repo.MarkFailed(ctx, expired.ID, "expired before consumption"))

	drafts, err = repo.ListExpiredPending(ctx, time.Now().UTC(), 10)
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestLikeRepository_UpsertIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice")
	ref := domain.ContentRef{Type: domain.ContentTypePost, ID: uuid.New()}

	inserted, err := repo.Upsert(ctx, domain.NewContentLike(ref, user.ID))
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Upsert(ctx, domain.NewContentLike(ref, user.ID))
	require.NoError(t, err)
	assert.False(t, inserted)

	exists, err := repo.Exists(ctx, ref, user.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	count, err := repo.CountByRef(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	removed, err := repo.Delete(ctx, ref, user.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, ref, user.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestFollowRepository_Edges(t *testing.T) {
	db := newTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, repo.CreateEdge(ctx, domain.NewFollowEdge(alice.ID, bob.ID)))
	require.ErrorIs(t, repo.CreateEdge(ctx, domain.NewFollowEdge(alice.ID, bob.ID)), repository.ErrDuplicate)

	followers, err := repo.ListFollowers(ctx, alice.ID, repository.FollowListOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, bob.ID, followers[0].UserID)
	assert.Equal(t, "bob", followers[0].Handle)

	require.NoError(t, repo.DeleteEdge(ctx, alice.ID, bob.ID))
	require.ErrorIs(t, repo.DeleteEdge(ctx, alice.ID, bob.ID), repository.ErrNotFound)
}

func TestFollowRepository_FollowedSet(t *testing.T) {
	db := newTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	viewer := createTestUser(t, db, "viewer")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	require.NoError(t, repo.CreateEdge(ctx, domain.NewFollowEdge(bob.ID, viewer.ID)))

	set, err := repo.FollowedSet(ctx, viewer.ID, []uuid.UUID{bob.ID, carol.ID})
	require.NoError(t, err)
	assert.True(t, set[bob.ID])
	assert.False(t, set[carol.ID])

	set, err = repo.FollowedSet(ctx, viewer.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, set)
}
