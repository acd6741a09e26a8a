// Package domain contains the core business entities for Zealine.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContentRef is a weak, polymorphic pointer to one of the concrete content
// kinds. It carries no ownership: if the referenced item is deleted out of
// band, readers treat the reference as absent rather than erroring.
type ContentRef struct {
	// Type is the content discriminator.
	Type ContentType `json:"content_type"`

	// ID is the content id within the concrete store selected by Type.
	ID uuid.UUID `json:"content_id"`
}

// Comment is a user comment on a commentable content item.
type Comment struct {
	ID        uuid.UUID  `json:"id"`
	Ref       ContentRef `json:"ref"`
	ModelName string     `json:"model_name"`
	AuthorID  uuid.UUID  `json:"author_id"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewComment creates a Comment. The model name is derived here, at
// construction time, not by a persistence hook.
func NewComment(ref ContentRef, authorID uuid.UUID, body string) *Comment {
	return &Comment{
		ID:        uuid.New(),
		Ref:       ref,
		ModelName: ref.Type.ModelName(),
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
}

// ContentLike records that a user liked a content item. Unique per
// (content_type, content_id, user_id).
type ContentLike struct {
	ID        uuid.UUID  `json:"id"`
	Ref       ContentRef `json:"ref"`
	ModelName string     `json:"model_name"`
	UserID    uuid.UUID  `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewContentLike creates a ContentLike.
func NewContentLike(ref ContentRef, userID uuid.UUID) *ContentLike {
	return &ContentLike{
		ID:        uuid.New(),
		Ref:       ref,
		ModelName: ref.Type.ModelName(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}

// ContentShare records one share of a content item by a user.
type ContentShare struct {
	ID        uuid.UUID  `json:"id"`
	Ref       ContentRef `json:"ref"`
	ModelName string     `json:"model_name"`
	UserID    uuid.UUID  `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewContentShare creates a ContentShare.
func NewContentShare(ref ContentRef, userID uuid.UUID) *ContentShare {
	return &ContentShare{
		ID:        uuid.New(),
		Ref:       ref,
		ModelName: ref.Type.ModelName(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}

// SavedContent records that a user saved a content item for later. Unique per
// (content_type, content_id, user_id).
type SavedContent struct {
	ID        uuid.UUID  `json:"id"`
	Ref       ContentRef `json:"ref"`
	ModelName string     `json:"model_name"`
	UserID    uuid.UUID  `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewSavedContent creates a SavedContent.
func NewSavedContent(ref ContentRef, userID uuid.UUID) *SavedContent {
	return &SavedContent{
		ID:        uuid.New(),
		Ref:       ref,
		ModelName: ref.Type.ModelName(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}

// ReportReason enumerates the accepted report categories.
type ReportReason string

const (
	ReportReasonSpam       ReportReason = "spam"
	ReportReasonAbuse      ReportReason = "abuse"
	ReportReasonNudity     ReportReason = "nudity"
	ReportReasonViolence   ReportReason = "violence"
	ReportReasonCopyright  ReportReason = "copyright"
	ReportReasonOther      ReportReason = "other"
)

// IsValid reports whether the reason is a known category.
func (r ReportReason) IsValid() bool {
	switch r {
	case ReportReasonSpam, ReportReasonAbuse, ReportReasonNudity,
		ReportReasonViolence, ReportReasonCopyright, ReportReasonOther:
		return true
	default:
		return false
	}
}

// ContentReport is a user report against a content item. Unique per
// (content_type, content_id, reporter_id).
type ContentReport struct {
	ID         uuid.UUID    `json:"id"`
	Ref        ContentRef   `json:"ref"`
	ModelName  string       `json:"model_name"`
	ReporterID uuid.UUID    `json:"reporter_id"`
	Reason     ReportReason `json:"reason"`
	Details    string       `json:"details,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// NewContentReport creates a ContentReport.
func NewContentReport(ref ContentRef, reporterID uuid.UUID, reason ReportReason, details string) *ContentReport {
	return &ContentReport{
		ID:         uuid.New(),
		Ref:        ref,
		ModelName:  ref.Type.ModelName(),
		ReporterID: reporterID,
		Reason:     reason,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}
}

// NotificationKind enumerates the notification categories.
type NotificationKind string

const (
	NotificationKindFollow  NotificationKind = "follow"
	NotificationKindLike    NotificationKind = "like"
	NotificationKindComment NotificationKind = "comment"
	NotificationKindShare   NotificationKind = "share"
)

// Notification is a per-recipient event record. The content pointer, when
// present, is weak like every other ContentRef.
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	RecipientID uuid.UUID        `json:"recipient_id"`
	ActorID     uuid.UUID        `json:"actor_id"`
	Kind        NotificationKind `json:"kind"`
	Ref         *ContentRef      `json:"ref,omitempty"`
	ModelName   string           `json:"model_name,omitempty"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NewNotification creates a Notification. ref may be nil for events that do
// not point at content (plain follows).
func NewNotification(recipientID, actorID uuid.UUID, kind NotificationKind, ref *ContentRef) *Notification {
	n := &Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		ActorID:     actorID,
		Kind:        kind,
		Ref:         ref,
		CreatedAt:   time.Now().UTC(),
	}
	if ref != nil {
		n.ModelName = ref.Type.ModelName()
	}
	return n
}
