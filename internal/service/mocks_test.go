package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/repository"
)

// =============================================================================
// Mock Repository Types
// =============================================================================

type mockDraftRepository struct {
	mock.Mock
}

func (m *mockDraftRepository) Create(ctx context.Context, draft *domain.UploadDraft) error {
	args := m.Called(ctx, draft)
	return args.Error(0)
}

func (m *mockDraftRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.UploadDraft, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadDraft), args.Error(1)
}

func (m *mockDraftRepository) CountPending(ctx context.Context, ownerID uuid.UUID, now time.Time) (int64, error) {
	args := m.Called(ctx, ownerID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockDraftRepository) MarkUploaded(ctx context.Context, id uuid.UUID, parts []domain.UploadedPart, mediaURL string, uploadedAt time.Time) error {
	args := m.Called(ctx, id, parts, mediaURL, uploadedAt)
	return args.Error(0)
}

func (m *mockDraftRepository) MarkFailed(ctx context.Context, id uuid.UUID, processingError string) error {
	args := m.Called(ctx, id, processingError)
	return args.Error(0)
}

func (m *mockDraftRepository) Consume(ctx context.Context, id, ownerID uuid.UUID) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

func (m *mockDraftRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*domain.UploadDraft, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.UploadDraft), args.Error(1)
}

// mockContentStore carries the kind-independent surface shared by the
// concrete content repository mocks.
type mockContentStore struct {
	mock.Mock
}

func (m *mockContentStore) GetSummary(ctx context.Context, id uuid.UUID) (*domain.ContentSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContentSummary), args.Error(1)
}

func (m *mockContentStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockContentStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ContentStatus, processingError string) error {
	args := m.Called(ctx, id, status, processingError)
	return args.Error(0)
}

func (m *mockContentStore) SoftDelete(ctx context.Context, id, authorID uuid.UUID) error {
	args := m.Called(ctx, id, authorID)
	return args.Error(0)
}

type mockPostRepository struct {
	mockContentStore
}

func (m *mockPostRepository) Create(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockPostRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *mockPostRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, opts repository.ListOptions) ([]*domain.Post, error) {
	args := m.Called(ctx, authorID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Post), args.Error(1)
}

func (m *mockPostRepository) ListRecent(ctx context.Context, opts repository.ListOptions) ([]*domain.Post, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Post), args.Error(1)
}

type mockWritePostRepository struct {
	mockContentStore
}

func (m *mockWritePostRepository) Create(ctx context.Context, post *domain.WritePost) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockWritePostRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WritePost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WritePost), args.Error(1)
}

func (m *mockWritePostRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, opts repository.ListOptions) ([]*domain.WritePost, error) {
	args := m.Called(ctx, authorID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WritePost), args.Error(1)
}

func (m *mockWritePostRepository) ListRecent(ctx context.Context, opts repository.ListOptions) ([]*domain.WritePost, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WritePost), args.Error(1)
}

type mockZealPostRepository struct {
	mockContentStore
}

func (m *mockZealPostRepository) Create(ctx context.Context, post *domain.ZealPost) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockZealPostRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ZealPost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ZealPost), args.Error(1)
}

func (m *mockZealPostRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, opts repository.ListOptions) ([]*domain.ZealPost, error) {
	args := m.Called(ctx, authorID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ZealPost), args.Error(1)
}

func (m *mockZealPostRepository) ListRecent(ctx context.Context, opts repository.ListOptions) ([]*domain.ZealPost, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ZealPost), args.Error(1)
}

type mockPollRepository struct {
	mockContentStore
}

func (m *mockPollRepository) Create(ctx context.Context, poll *domain.Poll) error {
	args := m.Called(ctx, poll)
	return args.Error(0)
}

func (m *mockPollRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Poll), args.Error(1)
}

func (m *mockPollRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, opts repository.ListOptions) ([]*domain.Poll, error) {
	args := m.Called(ctx, authorID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Poll), args.Error(1)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByHandle(ctx context.Context, handle string) (*domain.User, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) ExistsByHandle(ctx context.Context, handle string) (bool, error) {
	args := m.Called(ctx, handle)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockUserRepository) SearchByHandle(ctx context.Context, query string, opts repository.ListOptions) ([]*domain.User, error) {
	args := m.Called(ctx, query, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *mockUserRepository) AdjustFollowerCount(ctx context.Context, id uuid.UUID, delta int64) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *mockUserRepository) AdjustFollowingCount(ctx context.Context, id uuid.UUID, delta int64) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

type mockFollowRepository struct {
	mock.Mock
}

func (m *mockFollowRepository) CreateEdge(ctx context.Context, edge *domain.FollowEdge) error {
	args := m.Called(ctx, edge)
	return args.Error(0)
}

func (m *mockFollowRepository) DeleteEdge(ctx context.Context, userID, followerID uuid.UUID) error {
	args := m.Called(ctx, userID, followerID)
	return args.Error(0)
}

func (m *mockFollowRepository) EdgeExists(ctx context.Context, userID, followerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, followerID)
	return args.Bool(0), args.Error(1)
}

func (m *mockFollowRepository) CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockFollowRepository) CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockFollowRepository) ListFollowers(ctx context.Context, userID uuid.UUID, opts repository.FollowListOptions) ([]*domain.FollowListEntry, error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FollowListEntry), args.Error(1)
}

func (m *mockFollowRepository) ListFollowing(ctx context.Context, userID uuid.UUID, opts repository.FollowListOptions) ([]*domain.FollowListEntry, error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FollowListEntry), args.Error(1)
}

func (m *mockFollowRepository) AllFollowerHandles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockFollowRepository) AllFollowingHandles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockFollowRepository) FollowedSet(ctx context.Context, viewerID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	args := m.Called(ctx, viewerID, candidateIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]bool), args.Error(1)
}

// mockRefSweepStore carries the sweep surface shared by the reference
// repository mocks.
type mockRefSweepStore struct {
	mock.Mock
}

func (m *mockRefSweepStore) DistinctRefs(ctx context.Context, limit, offset int) ([]domain.ContentRef, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ContentRef), args.Error(1)
}

func (m *mockRefSweepStore) DeleteByRef(ctx context.Context, ref domain.ContentRef) (int64, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(int64), args.Error(1)
}

type mockCommentRepository struct {
	mockRefSweepStore
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *mockCommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *mockCommentRepository) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	args := m.Called(ctx, id, authorID)
	return args.Error(0)
}

func (m *mockCommentRepository) ListByRef(ctx context.Context, ref domain.ContentRef, opts repository.ListOptions) ([]*domain.Comment, error) {
	args := m.Called(ctx, ref, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Comment), args.Error(1)
}

func (m *mockCommentRepository) CountByRef(ctx context.Context, ref domain.ContentRef) (int64, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(int64), args.Error(1)
}

type mockLikeRepository struct {
	mockRefSweepStore
}

func (m *mockLikeRepository) Upsert(ctx context.Context, like *domain.ContentLike) (bool, error) {
	args := m.Called(ctx, like)
	return args.Bool(0), args.Error(1)
}

func (m *mockLikeRepository) Delete(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, ref, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLikeRepository) Exists(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, ref, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockLikeRepository) CountByRef(ctx context.Context, ref domain.ContentRef) (int64, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLikeRepository) ListByUser(ctx context.Context, userID uuid.UUID, opts repository.ListOptions) ([]*domain.ContentLike, error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ContentLike), args.Error(1)
}

type mockSaveRepository struct {
	mockRefSweepStore
}

func (m *mockSaveRepository) Upsert(ctx context.Context, save *domain.SavedContent) (bool, error) {
	args := m.Called(ctx, save)
	return args.Bool(0), args.Error(1)
}

func (m *mockSaveRepository) Delete(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, ref, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSaveRepository) Exists(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, ref, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSaveRepository) CountByRef(ctx context.Context, ref domain.ContentRef) (int64, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSaveRepository) ListByUser(ctx context.Context, userID uuid.UUID, opts repository.ListOptions) ([]*domain.SavedContent, error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SavedContent), args.Error(1)
}

type mockShareRepository struct {
	mockRefSweepStore
}

func (m *mockShareRepository) Create(ctx context.Context, share *domain.ContentShare) error {
	args := m.Called(ctx, share)
	return args.Error(0)
}

func (m *mockShareRepository) CountByRef(ctx context.Context, ref domain.ContentRef) (int64, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockShareRepository) ListByUser(ctx context.Context, userID uuid.UUID, opts repository.ListOptions) ([]*domain.ContentShare, error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ContentShare), args.Error(1)
}

type mockReportRepository struct {
	mockRefSweepStore
}

func (m *mockReportRepository) Upsert(ctx context.Context, report *domain.ContentReport) (bool, error) {
	args := m.Called(ctx, report)
	return args.Bool(0), args.Error(1)
}

func (m *mockReportRepository) ListByRef(ctx context.Context, ref domain.ContentRef, opts repository.ListOptions) ([]*domain.ContentReport, error) {
	args := m.Called(ctx, ref, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ContentReport), args.Error(1)
}

func (m *mockReportRepository) CountByRef(ctx context.Context, ref domain.ContentRef) (int64, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(int64), args.Error(1)
}

type mockNotificationRepository struct {
	mock.Mock
}

func (m *mockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *mockNotificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, opts repository.ListOptions) ([]*domain.Notification, error) {
	args := m.Called(ctx, recipientID, unreadOnly, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Notification), args.Error(1)
}

func (m *mockNotificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationRepository) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	args := m.Called(ctx, id, recipientID)
	return args.Error(0)
}

func (m *mockNotificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationRepository) DeleteByRef(ctx context.Context, ref domain.ContentRef) (int64, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(int64), args.Error(1)
}
