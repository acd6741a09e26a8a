package blobstore

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGateway_GenerateKey(t *testing.T) {
	gw := NewMemoryGateway("http://blob")
	ownerID := uuid.New()

	key := gw.GenerateKey(ownerID, "video", "video/mp4")
	assert.True(t, strings.HasPrefix(key, "videos/"+ownerID.String()+"/"))
	assert.True(t, strings.HasSuffix(key, ".mp4"))

	other := gw.GenerateKey(ownerID, "video", "video/mp4")
	assert.NotEqual(t, key, other, "keys carry a randomness component")
}

func TestMemoryGateway_SimpleUpload(t *testing.T) {
	gw := NewMemoryGateway("")
	srv := httptest.NewServer(gw.Handler())
	defer srv.Close()
	gw.SetBaseURL(srv.URL)

	presign, err := gw.PresignUpload(context.Background(), "images/a/b.png", "image/png", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/images/a/b.png", presign.URL)
	assert.Equal(t, "image/png", presign.Headers["Content-Type"])

	req, err := http.NewRequest(http.MethodPut, presign.URL, bytes.NewReader([]byte("png-bytes")))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("ETag"))

	exists, err := gw.Exists(context.Background(), "images/a/b.png")
	require.NoError(t, err)
	assert.True(t, exists)

	data, ok := gw.Object("images/a/b.png")
	require.True(t, ok)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestMemoryGateway_MultipartLifecycle(t *testing.T) {
	gw := NewMemoryGateway("")
	srv := httptest.NewServer(gw.Handler())
	defer srv.Close()
	gw.SetBaseURL(srv.URL)

	ctx := context.Background()
	key := "videos/a/clip.mp4"

	sessionID, err := gw.InitiateMultipart(ctx, key, "video/mp4")
	require.NoError(t, err)
	require.Equal(t, 1, gw.SessionCount())

	// Upload parts out of order; completion reassembles by part number.
	chunks := map[int][]byte{1: []byte("first-"), 2: []byte("second-"), 3: []byte("third")}
	etags := make(map[int]string)
	for _, n := range []int{3, 1, 2} {
		url, err := gw.PresignPartUpload(ctx, key, sessionID, n, time.Minute)
		require.NoError(t, err)

		req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(chunks[n]))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		etags[n] = resp.Header.Get("ETag")
	}

	location, err := gw.CompleteMultipart(ctx, key, sessionID, []CompletedPart{
		{PartNumber: 1, ETag: etags[1]},
		{PartNumber: 2, ETag: etags[2]},
		{PartNumber: 3, ETag: etags[3]},
	})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/"+key, location)
	assert.Equal(t, 0, gw.SessionCount())

	data, ok := gw.Object(key)
	require.True(t, ok)
	assert.Equal(t, []byte("first-second-third"), data)
}

func TestMemoryGateway_UnknownSession(t *testing.T) {
	gw := NewMemoryGateway("http://blob")
	ctx := context.Background()

	_, err := gw.PresignPartUpload(ctx, "k", "nope", 1, time.Minute)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = gw.CompleteMultipart(ctx, "k", "nope", nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	err = gw.AbortMultipart(ctx, "k", "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryGateway_AbortDiscardsParts(t *testing.T) {
	gw := NewMemoryGateway("http://blob")
	ctx := context.Background()

	sessionID, err := gw.InitiateMultipart(ctx, "videos/a/clip.mp4", "video/mp4")
	require.NoError(t, err)

	require.NoError(t, gw.AbortMultipart(ctx, "videos/a/clip.mp4", sessionID))
	assert.Equal(t, 0, gw.SessionCount())

	exists, err := gw.Exists(ctx, "videos/a/clip.mp4")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExtensionForMIME(t *testing.T) {
	assert.Equal(t, ".mp4", ExtensionForMIME("video/mp4"))
	assert.Equal(t, ".jpg", ExtensionForMIME("image/jpeg"))
	assert.Equal(t, ".webp", ExtensionForMIME("image/webp"))
	assert.Equal(t, ".bin", ExtensionForMIME("application/octet-stream"))
}
