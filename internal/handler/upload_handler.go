package handler

import (
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/ratelimit"
	"github.com/prn-tf/zealine/internal/service"
)

// UploadHandler handles upload pipeline requests.
type UploadHandler struct {
	uploads *service.UploadService
	limiter ratelimit.Limiter
	logger  zerolog.Logger
}

// NewUploadHandler creates a new upload handler. limiter is the tighter
// per-user budget for upload starts; pass nil to disable it.
func NewUploadHandler(uploads *service.UploadService, limiter ratelimit.Limiter, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		uploads: uploads,
		limiter: limiter,
		logger:  logger.With().Str("handler", "upload").Logger(),
	}
}

// RegisterRoutes registers upload routes.
func (h *UploadHandler) RegisterRoutes(r chi.Router) {
	r.Post("/uploads", h.handleStart)
	r.Get("/uploads/{draftId}", h.handleStatus)
	r.Put("/uploads/{draftId}/file", h.handleUploadFile)
	r.Post("/uploads/{draftId}/content", h.handleCreateContent)
}

type startUploadRequest struct {
	Kind     string `json:"kind"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	MIMEType string `json:"mime_type"`
}

type startUploadResponse struct {
	Draft  *domain.UploadDraft         `json:"draft"`
	Upload *presignedUploadResponse    `json:"upload,omitempty"`
}

type presignedUploadResponse struct {
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers,omitempty"`
	ExpiresAt string            `json:"expires_at"`
}

func (h *UploadHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(r.Context(), ownerID.String())
		if err != nil {
			h.logger.Warn().Err(err).Msg("Upload limiter failed, allowing request")
			allowed = true
		}
		if !allowed {
			writeError(w, domain.ErrRateLimited)
			return
		}
	}

	var req startUploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.uploads.StartUpload(r.Context(), service.StartUploadInput{
		OwnerID:  ownerID,
		Kind:     domain.MediaKind(req.Kind),
		FileName: req.FileName,
		FileSize: req.FileSize,
		MIMEType: req.MIMEType,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := startUploadResponse{Draft: out.Draft}
	if out.Upload != nil {
		resp.Upload = &presignedUploadResponse{
			URL:       out.Upload.URL,
			Headers:   out.Upload.Headers,
			ExpiresAt: out.Upload.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *UploadHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	draftID, ok := urlUUID(w, r, "draftId")
	if !ok {
		return
	}

	out, err := h.uploads.GetDraft(r.Context(), service.GetDraftInput{DraftID: draftID, OwnerID: ownerID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Draft)
}

// handleUploadFile spools the request body to a temp file and hands it to
// the service for the (possibly chunked) transfer to object storage.
func (h *UploadHandler) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	draftID, ok := urlUUID(w, r, "draftId")
	if !ok {
		return
	}

	tmp, err := os.CreateTemp("", "zealine-upload-*")
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to create spool file")
		writeError(w, service.ErrInternalError)
		return
	}
	spoolPath := tmp.Name()

	_, copyErr := io.Copy(tmp, r.Body)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(spoolPath)
		h.logger.Warn().AnErr("copy", copyErr).AnErr("close", closeErr).Msg("Failed to spool upload body")
		writeJSON(w, http.StatusBadRequest, apiError{Error: "failed to read upload body"})
		return
	}

	out, err := h.uploads.UploadFile(r.Context(), service.UploadFileInput{
		DraftID:    draftID,
		OwnerID:    ownerID,
		FilePath:   spoolPath,
		RemoveFile: true,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// Chunked transfers run in the background; the caller polls the draft
	// until its status reflects the outcome.
	if out.Draft.IsMultipart && out.Draft.UploadedAt == nil {
		writeJSON(w, http.StatusAccepted, out.Draft)
		return
	}
	writeJSON(w, http.StatusOK, out.Draft)
}

type createContentRequest struct {
	Type    string `json:"type"`
	Caption string `json:"caption,omitempty"`
	Title   string `json:"title,omitempty"`
	Body    string `json:"body,omitempty"`
}

func (h *UploadHandler) handleCreateContent(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	draftID, ok := urlUUID(w, r, "draftId")
	if !ok {
		return
	}

	var req createContentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.uploads.CreateContent(r.Context(), service.CreateContentInput{
		DraftID: draftID,
		OwnerID: ownerID,
		Type:    domain.ContentType(req.Type),
		Caption: req.Caption,
		Title:   req.Title,
		Body:    req.Body,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out.Summary)
}
