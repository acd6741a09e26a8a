// Package blobstore defines the blob storage gateway consumed by the upload
// pipeline. The gateway is an opaque key-value object store: the rest of the
// system only ever sees storage keys, presigned URLs, and multipart session
// ids, never storage credentials.
package blobstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
)

// Gateway errors.
var (
	// ErrSessionNotFound indicates the multipart session id is unknown.
	ErrSessionNotFound = errors.New("multipart session not found")

	// ErrObjectNotFound indicates no object exists at the storage key.
	ErrObjectNotFound = errors.New("object not found")
)

// PresignedUpload is a time-limited authorization for a single-part PUT.
type PresignedUpload struct {
	// URL is the presigned upload URL.
	URL string

	// Headers are headers the client must send with the PUT.
	Headers map[string]string

	// ExpiresAt is when the URL stops working.
	ExpiresAt time.Time
}

// CompletedPart identifies one finished part when completing a multipart session.
type CompletedPart struct {
	// PartNumber is the 1-based part index.
	PartNumber int

	// ETag is the integrity tag the provider returned for the part.
	ETag string
}

// Gateway is the blob storage interface. Implementations must be safe for
// concurrent use.
type Gateway interface {
	// GenerateKey derives a globally unique storage key from the owner, the
	// media kind, the MIME type, and a randomness component.
	GenerateKey(ownerID uuid.UUID, kind domain.MediaKind, mimeType string) string

	// PresignUpload issues a presigned single-part PUT URL for the key.
	PresignUpload(ctx context.Context, key, mimeType string, ttl time.Duration) (*PresignedUpload, error)

	// InitiateMultipart starts a multipart session and returns its id.
	InitiateMultipart(ctx context.Context, key, mimeType string) (sessionID string, err error)

	// PresignPartUpload issues a presigned PUT URL for one part of a session.
	PresignPartUpload(ctx context.Context, key, sessionID string, partNumber int, ttl time.Duration) (string, error)

	// CompleteMultipart finalizes a session from its completed parts, which
	// must be sorted by part number. Returns the provider-reported location.
	CompleteMultipart(ctx context.Context, key, sessionID string, parts []CompletedPart) (location string, err error)

	// AbortMultipart discards a session and any parts uploaded to it.
	AbortMultipart(ctx context.Context, key, sessionID string) error

	// Exists checks whether a complete object is present at the key.
	Exists(ctx context.Context, key string) (bool, error)

	// PublicURL derives the public-facing URL for a stored object.
	PublicURL(key string) string
}

// ExtensionForMIME maps an allow-listed MIME type to a file extension for
// storage keys. Unknown types get ".bin"; they are rejected upstream anyway.
func ExtensionForMIME(mimeType string) string {
	switch mimeType {
	case "video/mp4":
		return ".mp4"
	case "video/quicktime":
		return ".mov"
	case "video/webm":
		return ".webm"
	case "video/x-matroska":
		return ".mkv"
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
