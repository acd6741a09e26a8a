// Package domain contains the core business entities for Zealine.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContentType is the closed discriminator over the concrete content kinds.
// The enumeration is deliberately closed: resolution of anything outside it
// is "not found", never an error.
type ContentType string

const (
	// ContentTypePost is a standard image post.
	ContentTypePost ContentType = "post"

	// ContentTypeWritePost is a long-form text post.
	ContentTypeWritePost ContentType = "write_post"

	// ContentTypeZeal is a short-video post.
	ContentTypeZeal ContentType = "zeal"

	// ContentTypePoll is a poll. Polls participate in like/save flows but not
	// in comment/share flows; the asymmetry is an intentional product decision.
	ContentTypePoll ContentType = "poll"
)

// IsValid reports whether the discriminator is inside the closed enumeration.
func (ct ContentType) IsValid() bool {
	switch ct {
	case ContentTypePost, ContentTypeWritePost, ContentTypeZeal, ContentTypePoll:
		return true
	default:
		return false
	}
}

// ModelName returns the canonical model name string used to tag weak
// references at write time. Empty for unknown types.
func (ct ContentType) ModelName() string {
	switch ct {
	case ContentTypePost:
		return "Post"
	case ContentTypeWritePost:
		return "WritePost"
	case ContentTypeZeal:
		return "ZealPost"
	case ContentTypePoll:
		return "Poll"
	default:
		return ""
	}
}

// SupportsComments reports whether the content type participates in comment flows.
func (ct ContentType) SupportsComments() bool {
	switch ct {
	case ContentTypePost, ContentTypeWritePost, ContentTypeZeal:
		return true
	default:
		return false
	}
}

// SupportsShares reports whether the content type participates in share flows.
func (ct ContentType) SupportsShares() bool {
	switch ct {
	case ContentTypePost, ContentTypeWritePost, ContentTypeZeal:
		return true
	default:
		return false
	}
}

// ContentStatus represents the post-publication processing state of a content
// item. Both ready and failed are terminal.
type ContentStatus string

const (
	// ContentStatusProcessing indicates post-processing has not finished.
	ContentStatusProcessing ContentStatus = "processing"

	// ContentStatusReady indicates the item is fully published. Terminal.
	ContentStatusReady ContentStatus = "ready"

	// ContentStatusFailed indicates post-processing failed. Terminal.
	ContentStatusFailed ContentStatus = "failed"
)

// IsTerminal reports whether no further status transition is allowed.
func (s ContentStatus) IsTerminal() bool {
	return s == ContentStatusReady || s == ContentStatusFailed
}

// Post is a standard image post.
type Post struct {
	ID              uuid.UUID     `json:"id"`
	AuthorID        uuid.UUID     `json:"author_id"`
	Caption         string        `json:"caption"`
	ImageURLs       []string      `json:"image_urls"`
	Status          ContentStatus `json:"status"`
	ProcessingError string        `json:"processing_error,omitempty"`
	DeletedAt       *time.Time    `json:"deleted_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// NewPost creates a Post in processing status.
func NewPost(authorID uuid.UUID, caption string, imageURLs []string) *Post {
	now := time.Now().UTC()
	return &Post{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Caption:   caption,
		ImageURLs: imageURLs,
		Status:    ContentStatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WritePost is a long-form text post with an optional cover image.
type WritePost struct {
	ID              uuid.UUID     `json:"id"`
	AuthorID        uuid.UUID     `json:"author_id"`
	Title           string        `json:"title"`
	Body            string        `json:"body"`
	CoverImageURL   string        `json:"cover_image_url,omitempty"`
	Status          ContentStatus `json:"status"`
	ProcessingError string        `json:"processing_error,omitempty"`
	DeletedAt       *time.Time    `json:"deleted_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// NewWritePost creates a WritePost in processing status.
func NewWritePost(authorID uuid.UUID, title, body, coverImageURL string) *WritePost {
	now := time.Now().UTC()
	return &WritePost{
		ID:            uuid.New(),
		AuthorID:      authorID,
		Title:         title,
		Body:          body,
		CoverImageURL: coverImageURL,
		Status:        ContentStatusProcessing,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ZealPost is a short-video post.
type ZealPost struct {
	ID              uuid.UUID     `json:"id"`
	AuthorID        uuid.UUID     `json:"author_id"`
	Caption         string        `json:"caption"`
	VideoURL        string        `json:"video_url"`
	ThumbnailURL    string        `json:"thumbnail_url,omitempty"`
	DurationSeconds int           `json:"duration_seconds,omitempty"`
	Status          ContentStatus `json:"status"`
	ProcessingError string        `json:"processing_error,omitempty"`
	DeletedAt       *time.Time    `json:"deleted_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// NewZealPost creates a ZealPost in processing status.
func NewZealPost(authorID uuid.UUID, caption, videoURL string) *ZealPost {
	now := time.Now().UTC()
	return &ZealPost{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Caption:   caption,
		VideoURL:  videoURL,
		Status:    ContentStatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PollOption is one voteable option of a poll.
type PollOption struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	VoteCount int64  `json:"vote_count"`
}

// Poll is a question with a small set of voteable options.
type Poll struct {
	ID              uuid.UUID     `json:"id"`
	AuthorID        uuid.UUID     `json:"author_id"`
	Question        string        `json:"question"`
	Options         []PollOption  `json:"options"`
	Status          ContentStatus `json:"status"`
	ProcessingError string        `json:"processing_error,omitempty"`
	ClosesAt        *time.Time    `json:"closes_at,omitempty"`
	DeletedAt       *time.Time    `json:"deleted_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// NewPoll creates a Poll. Polls carry no media, so they skip processing and
// are ready immediately.
func NewPoll(authorID uuid.UUID, question string, options []string) (*Poll, error) {
	if len(options) < 2 || len(options) > 10 {
		return nil, ErrInvalidPollOptions
	}
	opts := make([]PollOption, len(options))
	for i, text := range options {
		opts[i] = PollOption{Index: i, Text: text}
	}
	now := time.Now().UTC()
	return &Poll{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Question:  question,
		Options:   opts,
		Status:    ContentStatusReady,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ContentSummary is the kind-independent projection used by resolver callers.
type ContentSummary struct {
	Type      ContentType   `json:"type"`
	ID        uuid.UUID     `json:"id"`
	AuthorID  uuid.UUID     `json:"author_id"`
	Status    ContentStatus `json:"status"`
	Title     string        `json:"title,omitempty"`
	MediaURL  string        `json:"media_url,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}
