package blobstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/pkg/crypto"
)

// MemoryGateway implements Gateway entirely in process. Presigned URLs point
// back at the gateway's own HTTP handler, so the full upload pipeline
// (including server-side chunking) works without an external object store.
// Suitable for single-node development and tests only.
type MemoryGateway struct {
	mu       sync.Mutex
	baseURL  string
	objects  map[string][]byte
	sessions map[string]*memSession
}

type memSession struct {
	key   string
	parts map[int]memPart
}

type memPart struct {
	etag string
	data []byte
}

// NewMemoryGateway creates a MemoryGateway. baseURL is the address the
// gateway's Handler is mounted at; it can be set later with SetBaseURL once
// the server address is known.
func NewMemoryGateway(baseURL string) *MemoryGateway {
	return &MemoryGateway{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		objects:  make(map[string][]byte),
		sessions: make(map[string]*memSession),
	}
}

// SetBaseURL updates the handler base URL.
func (g *MemoryGateway) SetBaseURL(baseURL string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.baseURL = strings.TrimSuffix(baseURL, "/")
}

// GenerateKey derives a storage key: <kind>s/<owner>/<uuid><ext>.
func (g *MemoryGateway) GenerateKey(ownerID uuid.UUID, kind domain.MediaKind, mimeType string) string {
	return fmt.Sprintf("%ss/%s/%s%s", kind, ownerID, uuid.New(), ExtensionForMIME(mimeType))
}

// PresignUpload returns a URL accepted by Handler for a single PUT.
func (g *MemoryGateway) PresignUpload(ctx context.Context, key, mimeType string, ttl time.Duration) (*PresignedUpload, error) {
	g.mu.Lock()
	base := g.baseURL
	g.mu.Unlock()
	return &PresignedUpload{
		URL:       base + "/" + key,
		Headers:   map[string]string{"Content-Type": mimeType},
		ExpiresAt: time.Now().UTC().Add(ttl),
	}, nil
}

// InitiateMultipart starts an in-memory session.
func (g *MemoryGateway) InitiateMultipart(ctx context.Context, key, mimeType string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sessionID := uuid.NewString()
	g.sessions[sessionID] = &memSession{key: key, parts: make(map[int]memPart)}
	return sessionID, nil
}

// PresignPartUpload returns a URL that routes one part PUT to Handler.
func (g *MemoryGateway) PresignPartUpload(ctx context.Context, key, sessionID string, partNumber int, ttl time.Duration) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.sessions[sessionID]; !ok {
		return "", ErrSessionNotFound
	}
	return fmt.Sprintf("%s/%s?sessionId=%s&partNumber=%d", g.baseURL, key, sessionID, partNumber), nil
}

// CompleteMultipart assembles the recorded parts into the final object.
func (g *MemoryGateway) CompleteMultipart(ctx context.Context, key, sessionID string, parts []CompletedPart) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sess, ok := g.sessions[sessionID]
	if !ok || sess.key != key {
		return "", ErrSessionNotFound
	}

	sorted := make([]CompletedPart, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PartNumber < sorted[j].PartNumber })

	var assembled []byte
	for _, p := range sorted {
		stored, ok := sess.parts[p.PartNumber]
		if !ok || stored.etag != p.ETag {
			return "", fmt.Errorf("part %d missing or etag mismatch", p.PartNumber)
		}
		assembled = append(assembled, stored.data...)
	}

	g.objects[key] = assembled
	delete(g.sessions, sessionID)
	return g.baseURL + "/" + key, nil
}

// AbortMultipart discards a session and its parts.
func (g *MemoryGateway) AbortMultipart(ctx context.Context, key, sessionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(g.sessions, sessionID)
	return nil
}

// Exists checks object presence.
func (g *MemoryGateway) Exists(ctx context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.objects[key]
	return ok, nil
}

// PublicURL derives the public URL for a key.
func (g *MemoryGateway) PublicURL(key string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.baseURL + "/" + key
}

// Put stores an object directly. Test helper.
func (g *MemoryGateway) Put(key string, data []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.objects[key] = data
}

// Object returns a stored object and whether it exists. Test helper.
func (g *MemoryGateway) Object(key string) ([]byte, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	data, ok := g.objects[key]
	return data, ok
}

// SessionCount returns the number of open multipart sessions. Test helper.
func (g *MemoryGateway) SessionCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sessions)
}

// Handler returns the HTTP handler that accepts presigned PUTs.
func (g *MemoryGateway) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		key := strings.TrimPrefix(r.URL.Path, "/")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		etag := `"` + crypto.ComputeMD5(body) + `"`

		sessionID := r.URL.Query().Get("sessionId")
		if sessionID == "" {
			// Single-part upload.
			g.mu.Lock()
			g.objects[key] = body
			g.mu.Unlock()
			w.Header().Set("ETag", etag)
			w.WriteHeader(http.StatusOK)
			return
		}

		partNumber, err := strconv.Atoi(r.URL.Query().Get("partNumber"))
		if err != nil || partNumber < 1 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		g.mu.Lock()
		sess, ok := g.sessions[sessionID]
		if !ok || sess.key != key {
			g.mu.Unlock()
			w.WriteHeader(http.StatusNotFound)
			return
		}
		sess.parts[partNumber] = memPart{etag: etag, data: body}
		g.mu.Unlock()

		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusOK)
	})
}

// Ensure MemoryGateway implements Gateway.
var _ Gateway = (*MemoryGateway)(nil)
