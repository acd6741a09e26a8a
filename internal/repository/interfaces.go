// Package repository defines data access interfaces for Zealine.
// These interfaces abstract database operations, allowing for different
// implementations (SQLite, PostgreSQL, in-memory for testing) while keeping
// the service layer clean.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
// Reads exclude soft-deleted users unless noted otherwise.
type UserRepository interface {
	// Create creates a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByHandle retrieves a user by handle.
	GetByHandle(ctx context.Context, handle string) (*domain.User, error)

	// ExistsByHandle checks if a user with the given handle exists.
	ExistsByHandle(ctx context.Context, handle string) (bool, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *domain.User) error

	// SoftDelete marks a user as deleted without removing the record.
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// SearchByHandle returns users whose handle contains the query,
	// case-insensitive, paginated.
	SearchByHandle(ctx context.Context, query string, opts ListOptions) ([]*domain.User, error)

	// AdjustFollowerCount adds delta to the cached follower counter.
	// Best-effort: callers must not rely on the cached value for correctness.
	AdjustFollowerCount(ctx context.Context, id uuid.UUID, delta int64) error

	// AdjustFollowingCount adds delta to the cached following counter.
	AdjustFollowingCount(ctx context.Context, id uuid.UUID, delta int64) error
}

// =============================================================================
// Upload Draft Repository
// =============================================================================

// DraftRepository defines the interface for upload draft data access.
type DraftRepository interface {
	// Create creates a new upload draft.
	Create(ctx context.Context, draft *domain.UploadDraft) error

	// GetByID retrieves a draft by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UploadDraft, error)

	// CountPending returns the number of drafts for the owner that are in
	// draft status, not yet byte-complete, and not expired as of now.
	CountPending(ctx context.Context, ownerID uuid.UUID, now time.Time) (int64, error)

	// MarkUploaded records byte-transfer completion: the completed parts,
	// the uploaded-at timestamp, and the derived media URL.
	MarkUploaded(ctx context.Context, id uuid.UUID, parts []domain.UploadedPart, mediaURL string, uploadedAt time.Time) error

	// MarkFailed transitions the draft to failed with an error message.
	MarkFailed(ctx context.Context, id uuid.UUID, processingError string) error

	// Consume atomically transitions an owner's draft from draft status to
	// uploaded. Returns ErrNotFound if the draft does not exist, belongs to a
	// different owner, or is no longer in draft status. This is the
	// idempotence barrier for content creation.
	Consume(ctx context.Context, id, ownerID uuid.UUID) error

	// ListExpiredPending returns drafts whose expiry has elapsed while still
	// in draft status, limited for batch processing.
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*domain.UploadDraft, error)
}

// =============================================================================
// Content Repositories
// =============================================================================

// ContentStore is the kind-independent surface the content reference resolver
// needs from every concrete content repository.
type ContentStore interface {
	// GetSummary returns the kind-independent projection of an item.
	// Returns ErrNotFound for missing or soft-deleted items.
	GetSummary(ctx context.Context, id uuid.UUID) (*domain.ContentSummary, error)

	// Exists checks whether a live (non-deleted) item with the id exists.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// UpdateStatus transitions the item's processing status. Implementations
	// must not overwrite a terminal status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ContentStatus, processingError string) error

	// SoftDelete marks the item deleted without removing the record.
	SoftDelete(ctx context.Context, id, authorID uuid.UUID) error
}

// PostRepository defines the interface for image post data access.
type PostRepository interface {
	ContentStore

	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, opts ListOptions) ([]*domain.Post, error)
	ListRecent(ctx context.Context, opts ListOptions) ([]*domain.Post, error)
}

// WritePostRepository defines the interface for long-form post data access.
type WritePostRepository interface {
	ContentStore

	Create(ctx context.Context, post *domain.WritePost) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WritePost, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, opts ListOptions) ([]*domain.WritePost, error)
	ListRecent(ctx context.Context, opts ListOptions) ([]*domain.WritePost, error)
}

// ZealPostRepository defines the interface for short-video post data access.
type ZealPostRepository interface {
	ContentStore

	Create(ctx context.Context, post *domain.ZealPost) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ZealPost, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, opts ListOptions) ([]*domain.ZealPost, error)
	ListRecent(ctx context.Context, opts ListOptions) ([]*domain.ZealPost, error)
}

// PollRepository defines the interface for poll data access.
type PollRepository interface {
	ContentStore

	Create(ctx context.Context, poll *domain.Poll) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, opts ListOptions) ([]*domain.Poll, error)
}

// =============================================================================
// Follow Repository
// =============================================================================

// FollowListOptions contains options for follower/following listings.
type FollowListOptions struct {
	// HandleFilter, when non-empty, restricts rows to handles containing the
	// substring, case-insensitive.
	HandleFilter string

	// Offset is the number of rows to skip.
	Offset int

	// Limit is the maximum number of rows to return.
	Limit int
}

// FollowRepository defines the interface for follow graph data access.
// Edges are the source of truth; cached user counters are advisory.
type FollowRepository interface {
	// CreateEdge inserts a follow edge. Returns ErrDuplicate if the ordered
	// pair already exists.
	CreateEdge(ctx context.Context, edge *domain.FollowEdge) error

	// DeleteEdge removes an edge. Returns ErrNotFound if it does not exist.
	DeleteEdge(ctx context.Context, userID, followerID uuid.UUID) error

	// EdgeExists checks whether followerID follows userID.
	EdgeExists(ctx context.Context, userID, followerID uuid.UUID) (bool, error)

	// CountFollowers counts edges pointing at userID.
	CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error)

	// CountFollowing counts edges originating from userID.
	CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error)

	// ListFollowers returns the users following userID, joined with their
	// profile fields, newest edge first.
	ListFollowers(ctx context.Context, userID uuid.UUID, opts FollowListOptions) ([]*domain.FollowListEntry, error)

	// ListFollowing returns the users userID follows, newest edge first.
	ListFollowing(ctx context.Context, userID uuid.UUID, opts FollowListOptions) ([]*domain.FollowListEntry, error)

	// AllFollowerHandles returns the handles of every follower of userID.
	// Used for exact filtered totals over a bounded graph.
	AllFollowerHandles(ctx context.Context, userID uuid.UUID) ([]string, error)

	// AllFollowingHandles returns the handles of every user userID follows.
	AllFollowingHandles(ctx context.Context, userID uuid.UUID) ([]string, error)

	// FollowedSet reports which of candidateIDs the viewer follows. The query
	// is restricted to the candidate ids, never the whole graph.
	FollowedSet(ctx context.Context, viewerID uuid.UUID, candidateIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

// =============================================================================
// Polymorphic Reference Repositories
// =============================================================================

// RefSweepStore is the surface the stale-reference sweeper needs from every
// reference repository.
type RefSweepStore interface {
	// DistinctRefs pages through the distinct content refs present in the store.
	DistinctRefs(ctx context.Context, limit, offset int) ([]domain.ContentRef, error)

	// DeleteByRef removes every reference row pointing at ref. Returns the
	// number of rows removed.
	DeleteByRef(ctx context.Context, ref domain.ContentRef) (int64, error)
}

// CommentRepository defines the interface for comment data access.
type CommentRepository interface {
	RefSweepStore

	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	Delete(ctx context.Context, id, authorID uuid.UUID) error
	ListByRef(ctx context.Context, ref domain.ContentRef, opts ListOptions) ([]*domain.Comment, error)
	CountByRef(ctx context.Context, ref domain.ContentRef) (int64, error)
}

// LikeRepository defines the interface for like data access.
type LikeRepository interface {
	RefSweepStore

	// Upsert inserts the like if absent (atomic insert-if-absent). Returns
	// inserted=false when the (ref, user) pair already exists; callers treat
	// that as "already liked", not an error.
	Upsert(ctx context.Context, like *domain.ContentLike) (inserted bool, err error)

	// Delete removes a like. Returns removed=false when no like existed.
	Delete(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) (removed bool, err error)

	Exists(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) (bool, error)
	CountByRef(ctx context.Context, ref domain.ContentRef) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, opts ListOptions) ([]*domain.ContentLike, error)
}

// SaveRepository defines the interface for saved-content data access.
type SaveRepository interface {
	RefSweepStore

	// Upsert inserts the save if absent. Same contract as LikeRepository.Upsert.
	Upsert(ctx context.Context, save *domain.SavedContent) (inserted bool, err error)

	// Delete removes a save. Returns removed=false when no save existed.
	Delete(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) (removed bool, err error)

	Exists(ctx context.Context, ref domain.ContentRef, userID uuid.UUID) (bool, error)
	CountByRef(ctx context.Context, ref domain.ContentRef) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, opts ListOptions) ([]*domain.SavedContent, error)
}

// ShareRepository defines the interface for share data access.
// Shares are not unique per user; every share is a new row.
type ShareRepository interface {
	RefSweepStore

	Create(ctx context.Context, share *domain.ContentShare) error
	CountByRef(ctx context.Context, ref domain.ContentRef) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, opts ListOptions) ([]*domain.ContentShare, error)
}

// ReportRepository defines the interface for content report data access.
type ReportRepository interface {
	RefSweepStore

	// Upsert inserts the report if the (ref, reporter) pair is absent.
	// inserted=false means the user already reported this item.
	Upsert(ctx context.Context, report *domain.ContentReport) (inserted bool, err error)

	ListByRef(ctx context.Context, ref domain.ContentRef, opts ListOptions) ([]*domain.ContentReport, error)
	CountByRef(ctx context.Context, ref domain.ContentRef) (int64, error)
}

// =============================================================================
// Notification Repository
// =============================================================================

// NotificationRepository defines the interface for notification data access.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, opts ListOptions) ([]*domain.Notification, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)

	// DeleteReadBefore removes read notifications created before the cutoff.
	// Used by the retention sweep.
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteByRef removes notifications pointing at a stale content ref.
	DeleteByRef(ctx context.Context, ref domain.ContentRef) (int64, error)
}

// =============================================================================
// Common Types
// =============================================================================

// ListOptions contains common pagination options.
type ListOptions struct {
	// Offset is the number of records to skip.
	Offset int

	// Limit is the maximum number of records to return.
	Limit int
}

// Clamp normalizes the options to sane bounds.
func (o ListOptions) Clamp(defaultLimit, maxLimit int) ListOptions {
	if o.Limit <= 0 {
		o.Limit = defaultLimit
	}
	if o.Limit > maxLimit {
		o.Limit = maxLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
