package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalChunksFor(t *testing.T) {
	tests := []struct {
		name     string
		fileSize int64
		want     int
	}{
		{"exact multiple", 10 * 1024 * 1024, 2},
		{"rounds up", 12 * 1024 * 1024, 3},
		{"just over a boundary", 10*1024*1024 + 1, 3},
		{"just under a boundary", 15*1024*1024 - 1, 3},
		{"single chunk", 1024, 1},
		{"max video", MaxVideoSize, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TotalChunksFor(tt.fileSize, ChunkSize))
		})
	}
}

func TestUploadDraft_PartRange(t *testing.T) {
	// 12 MiB video: two full 5 MiB parts and one 2 MiB tail.
	draft := NewMultipartDraft(uuid.New(), MediaKindVideo, "clip.mp4", 12*1024*1024, "video/mp4", "zeals/key", "session-1")
	require.Equal(t, 3, draft.TotalChunks)

	offset, length, err := draft.PartRange(1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), offset)
	assert.Equal(t, ChunkSize, length)

	offset, length, err = draft.PartRange(2)
	require.NoError(t, err)
	assert.Equal(t, ChunkSize, offset)
	assert.Equal(t, ChunkSize, length)

	offset, length, err = draft.PartRange(3)
	require.NoError(t, err)
	assert.Equal(t, 2*ChunkSize, offset)
	assert.Equal(t, int64(2*1024*1024), length)

	_, _, err = draft.PartRange(0)
	assert.ErrorIs(t, err, ErrInvalidPartNumber)

	_, _, err = draft.PartRange(4)
	assert.ErrorIs(t, err, ErrInvalidPartNumber)
}

func TestNewSimpleDraft(t *testing.T) {
	ownerID := uuid.New()
	draft := NewSimpleDraft(ownerID, MediaKindImage, "photo.jpg", 1024, "image/jpeg", "posts/key")

	assert.Equal(t, ownerID, draft.OwnerID)
	assert.Equal(t, DraftStatusDraft, draft.Status)
	assert.False(t, draft.IsMultipart)
	assert.Zero(t, draft.TotalChunks)
	assert.True(t, draft.IsPending())
	assert.False(t, draft.BytesUploaded())
	assert.WithinDuration(t, time.Now().UTC().Add(SimpleUploadTTL), draft.ExpiresAt, 5*time.Second)
}

func TestNewMultipartDraft(t *testing.T) {
	draft := NewMultipartDraft(uuid.New(), MediaKindVideo, "clip.mp4", 50*1024*1024, "video/mp4", "zeals/key", "session-1")

	assert.True(t, draft.IsMultipart)
	assert.Equal(t, "session-1", draft.SessionID)
	assert.Equal(t, ChunkSize, draft.ChunkSize)
	assert.Equal(t, 10, draft.TotalChunks)
	assert.WithinDuration(t, time.Now().UTC().Add(MultipartUploadTTL), draft.ExpiresAt, 5*time.Second)
}

func TestUploadDraft_IsPending(t *testing.T) {
	draft := NewSimpleDraft(uuid.New(), MediaKindImage, "photo.jpg", 1024, "image/jpeg", "posts/key")
	assert.True(t, draft.IsPending())

	now := time.Now().UTC()
	draft.UploadedAt = &now
	assert.False(t, draft.IsPending(), "byte-complete drafts do not count against the cap")

	draft.UploadedAt = nil
	draft.ExpiresAt = now.Add(-time.Minute)
	assert.False(t, draft.IsPending(), "expired drafts do not count against the cap")

	draft.ExpiresAt = now.Add(time.Minute)
	draft.Status = DraftStatusFailed
	assert.False(t, draft.IsPending())
}

func TestIsAllowedMIMEType(t *testing.T) {
	assert.True(t, IsAllowedMIMEType(MediaKindVideo, "video/mp4"))
	assert.True(t, IsAllowedMIMEType(MediaKindVideo, " VIDEO/MP4 "))
	assert.True(t, IsAllowedMIMEType(MediaKindImage, "image/png"))
	assert.False(t, IsAllowedMIMEType(MediaKindImage, "video/mp4"))
	assert.False(t, IsAllowedMIMEType(MediaKindVideo, "image/jpeg"))
	assert.False(t, IsAllowedMIMEType(MediaKindVideo, "application/octet-stream"))
	assert.False(t, IsAllowedMIMEType(MediaKind("audio"), "audio/mpeg"))
}

func TestMaxSizeFor(t *testing.T) {
	assert.Equal(t, MaxVideoSize, MaxSizeFor(MediaKindVideo))
	assert.Equal(t, MaxImageSize, MaxSizeFor(MediaKindImage))
}
