// Package domain contains the core business entities for Zealine.
package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaKind identifies the broad class of an uploaded file.
type MediaKind string

const (
	// MediaKindVideo is video content (Zeal posts, video attachments).
	MediaKindVideo MediaKind = "video"

	// MediaKindImage is image content (post photos, write-post covers).
	MediaKindImage MediaKind = "image"
)

// IsValid reports whether the media kind is one of the known kinds.
func (k MediaKind) IsValid() bool {
	return k == MediaKindVideo || k == MediaKindImage
}

// Upload sizing constants. Videos at or above MultipartThreshold are transferred
// in ChunkSize parts; everything else goes through a single presigned PUT.
const (
	// ChunkSize is the fixed part size for multipart transfers (5 MiB).
	ChunkSize int64 = 5 * 1024 * 1024

	// MultipartThreshold is the video size at which multipart kicks in (10 MiB).
	MultipartThreshold int64 = 10 * 1024 * 1024

	// MaxVideoSize is the declared-size ceiling for videos (100 MiB).
	MaxVideoSize int64 = 100 * 1024 * 1024

	// MaxImageSize is the declared-size ceiling for images (10 MiB).
	MaxImageSize int64 = 10 * 1024 * 1024

	// MaxPendingDrafts is the per-owner cap on concurrent pending drafts.
	MaxPendingDrafts = 5

	// SimpleUploadTTL is how long a single-part presigned URL stays valid.
	SimpleUploadTTL = 5 * time.Minute

	// MultipartUploadTTL is how long a multipart draft stays claimable.
	MultipartUploadTTL = 1 * time.Hour
)

var (
	videoMIMETypes = map[string]bool{
		"video/mp4":        true,
		"video/quicktime":  true,
		"video/webm":       true,
		"video/x-matroska": true,
	}

	imageMIMETypes = map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	}
)

// IsAllowedMIMEType reports whether the MIME type is on the allow-list for the kind.
func IsAllowedMIMEType(kind MediaKind, mimeType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	switch kind {
	case MediaKindVideo:
		return videoMIMETypes[mt]
	case MediaKindImage:
		return imageMIMETypes[mt]
	default:
		return false
	}
}

// MaxSizeFor returns the declared-size ceiling for the kind.
func MaxSizeFor(kind MediaKind) int64 {
	if kind == MediaKindVideo {
		return MaxVideoSize
	}
	return MaxImageSize
}

// DraftStatus represents the lifecycle status of an upload draft.
type DraftStatus string

const (
	// DraftStatusDraft indicates the draft is awaiting byte transfer or consumption.
	DraftStatusDraft DraftStatus = "draft"

	// DraftStatusUploaded indicates the draft has been consumed by content
	// creation. Terminal; upload-specific fields are frozen.
	DraftStatusUploaded DraftStatus = "uploaded"

	// DraftStatusFailed indicates an unrecoverable storage error. Terminal.
	DraftStatusFailed DraftStatus = "failed"
)

// UploadedPart records one completed part of a multipart transfer.
type UploadedPart struct {
	// PartNumber is the 1-based part index.
	PartNumber int `json:"part_number"`

	// ETag is the integrity tag returned by the storage gateway for this part.
	ETag string `json:"etag"`

	// CompletedAt is when the part transfer finished.
	CompletedAt time.Time `json:"completed_at"`
}

// UploadDraft is a provisional, pre-publication record of one upload attempt.
// The storage key is assigned at creation and never changes.
type UploadDraft struct {
	// ID is the unique identifier of this draft.
	ID uuid.UUID `json:"id"`

	// OwnerID is the user who requested the upload.
	OwnerID uuid.UUID `json:"owner_id"`

	// Kind is the media class of the file.
	Kind MediaKind `json:"kind"`

	// FileName is the declared client-side file name.
	FileName string `json:"file_name"`

	// FileSize is the declared size in bytes.
	FileSize int64 `json:"file_size"`

	// MIMEType is the declared content type.
	MIMEType string `json:"mime_type"`

	// StorageKey is the opaque, globally unique object key. Immutable.
	StorageKey string `json:"storage_key"`

	// IsMultipart indicates the chunked transfer strategy was selected.
	IsMultipart bool `json:"is_multipart"`

	// SessionID is the provider-issued multipart session id (multipart only).
	SessionID string `json:"session_id,omitempty"`

	// ChunkSize is the fixed part size in bytes (multipart only).
	ChunkSize int64 `json:"chunk_size,omitempty"`

	// TotalChunks is ceil(FileSize / ChunkSize) (multipart only).
	TotalChunks int `json:"total_chunks,omitempty"`

	// Parts are the completed parts recorded so far (multipart only).
	Parts []UploadedPart `json:"parts,omitempty"`

	// Status is the lifecycle status of the draft.
	Status DraftStatus `json:"status"`

	// ProcessingError records the failure reason when Status is failed.
	ProcessingError string `json:"processing_error,omitempty"`

	// MediaURL is the derived public URL, set once the upload completes.
	MediaURL string `json:"media_url,omitempty"`

	// ExpiresAt is when an unconsumed draft becomes inert and reclaimable.
	ExpiresAt time.Time `json:"expires_at"`

	// UploadedAt is when the byte transfer finished, if it has.
	UploadedAt *time.Time `json:"uploaded_at,omitempty"`

	// CreatedAt is when the draft was created.
	CreatedAt time.Time `json:"created_at"`
}

// TotalChunksFor computes the part count for a multipart transfer of the given size.
func TotalChunksFor(fileSize, chunkSize int64) int {
	return int(math.Ceil(float64(fileSize) / float64(chunkSize)))
}

// NewSimpleDraft creates a draft for a single-part upload.
func NewSimpleDraft(ownerID uuid.UUID, kind MediaKind, fileName string, fileSize int64, mimeType, storageKey string) *UploadDraft {
	now := time.Now().UTC()
	return &UploadDraft{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Kind:       kind,
		FileName:   fileName,
		FileSize:   fileSize,
		MIMEType:   mimeType,
		StorageKey: storageKey,
		Status:     DraftStatusDraft,
		ExpiresAt:  now.Add(SimpleUploadTTL),
		CreatedAt:  now,
	}
}

// NewMultipartDraft creates a draft for a chunked upload. The derived chunk
// count is computed here rather than by a persistence hook so it is visible
// and testable without a round-trip.
func NewMultipartDraft(ownerID uuid.UUID, kind MediaKind, fileName string, fileSize int64, mimeType, storageKey, sessionID string) *UploadDraft {
	now := time.Now().UTC()
	return &UploadDraft{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Kind:        kind,
		FileName:    fileName,
		FileSize:    fileSize,
		MIMEType:    mimeType,
		StorageKey:  storageKey,
		IsMultipart: true,
		SessionID:   sessionID,
		ChunkSize:   ChunkSize,
		TotalChunks: TotalChunksFor(fileSize, ChunkSize),
		Status:      DraftStatusDraft,
		ExpiresAt:   now.Add(MultipartUploadTTL),
		CreatedAt:   now,
	}
}

// IsExpired reports whether the draft's claim window has elapsed.
func (d *UploadDraft) IsExpired() bool {
	return time.Now().UTC().After(d.ExpiresAt)
}

// IsPending reports whether the draft counts against the owner's concurrency
// cap: still in draft status, bytes not yet transferred, not expired.
func (d *UploadDraft) IsPending() bool {
	return d.Status == DraftStatusDraft && d.UploadedAt == nil && !d.IsExpired()
}

// BytesUploaded reports whether the byte transfer has finished.
func (d *UploadDraft) BytesUploaded() bool {
	return d.UploadedAt != nil
}

// PartRange returns the byte range [offset, offset+length) for a part index.
// The final part may be shorter than ChunkSize.
func (d *UploadDraft) PartRange(partNumber int) (offset, length int64, err error) {
	if partNumber < 1 || partNumber > d.TotalChunks {
		return 0, 0, ErrInvalidPartNumber
	}
	offset = int64(partNumber-1) * d.ChunkSize
	length = d.ChunkSize
	if remaining := d.FileSize - offset; remaining < length {
		length = remaining
	}
	return offset, length, nil
}
