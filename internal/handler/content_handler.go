package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/zealine/internal/service"
)

// ContentHandler handles content reads, poll creation, feeds, and deletion.
type ContentHandler struct {
	content *service.ContentService
	logger  zerolog.Logger
}

// NewContentHandler creates a new content handler.
func NewContentHandler(content *service.ContentService, logger zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		content: content,
		logger:  logger.With().Str("handler", "content").Logger(),
	}
}

// RegisterRoutes registers content routes.
func (h *ContentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/polls", h.handleCreatePoll)

	r.Get("/posts/{contentId}", h.handleGetPost)
	r.Get("/write-posts/{contentId}", h.handleGetWritePost)
	r.Get("/zeals/{contentId}", h.handleGetZeal)
	r.Get("/polls/{contentId}", h.handleGetPoll)

	r.Get("/feed/posts", h.handleFeedPosts)
	r.Get("/feed/write-posts", h.handleFeedWritePosts)
	r.Get("/feed/zeals", h.handleFeedZeals)

	r.Get("/users/{userId}/posts", h.handleAuthorPosts)
	r.Get("/users/{userId}/write-posts", h.handleAuthorWritePosts)
	r.Get("/users/{userId}/zeals", h.handleAuthorZeals)
	r.Get("/users/{userId}/polls", h.handleAuthorPolls)

	r.Get("/content/{contentType}/{contentId}", h.handleGetSummary)
	r.Get("/content/{contentType}/{contentId}/status", h.handleGetStatus)
	r.Delete("/content/{contentType}/{contentId}", h.handleDelete)
}

type createPollRequest struct {
	Question string     `json:"question"`
	Options  []string   `json:"options"`
	ClosesAt *time.Time `json:"closes_at,omitempty"`
}

func (h *ContentHandler) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	authorID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req createPollRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.content.CreatePoll(r.Context(), service.CreatePollInput{
		AuthorID: authorID,
		Question: req.Question,
		Options:  req.Options,
		ClosesAt: req.ClosesAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out.Poll)
}

func (h *ContentHandler) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "contentId")
	if !ok {
		return
	}
	post, err := h.content.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *ContentHandler) handleGetWritePost(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "contentId")
	if !ok {
		return
	}
	wp, err := h.content.GetWritePost(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wp)
}

func (h *ContentHandler) handleGetZeal(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "contentId")
	if !ok {
		return
	}
	zeal, err := h.content.GetZealPost(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, zeal)
}

func (h *ContentHandler) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "contentId")
	if !ok {
		return
	}
	poll, err := h.content.GetPoll(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, poll)
}

func (h *ContentHandler) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	ref, ok := urlRef(w, r)
	if !ok {
		return
	}
	summary, err := h.content.GetSummary(r.Context(), ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *ContentHandler) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	ref, ok := urlRef(w, r)
	if !ok {
		return
	}
	out, err := h.content.GetStatus(r.Context(), ref)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(out.Status)})
}

func (h *ContentHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	authorID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	ref, ok := urlRef(w, r)
	if !ok {
		return
	}
	if err := h.content.Delete(r.Context(), ref, authorID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContentHandler) handleFeedPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.content.ListRecentPosts(r.Context(), pageInput(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *ContentHandler) handleFeedWritePosts(w http.ResponseWriter, r *http.Request) {
	wps, err := h.content.ListRecentWritePosts(r.Context(), pageInput(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wps)
}

func (h *ContentHandler) handleFeedZeals(w http.ResponseWriter, r *http.Request) {
	zeals, err := h.content.ListRecentZealPosts(r.Context(), pageInput(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, zeals)
}

func (h *ContentHandler) handleAuthorPosts(w http.ResponseWriter, r *http.Request) {
	authorID, ok := urlUUID(w, r, "userId")
	if !ok {
		return
	}
	posts, err := h.content.ListPostsByAuthor(r.Context(), authorID, pageInput(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *ContentHandler) handleAuthorWritePosts(w http.ResponseWriter, r *http.Request) {
	authorID, ok := urlUUID(w, r, "userId")
	if !ok {
		return
	}
	wps, err := h.content.ListWritePostsByAuthor(r.Context(), authorID, pageInput(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wps)
}

func (h *ContentHandler) handleAuthorZeals(w http.ResponseWriter, r *http.Request) {
	authorID, ok := urlUUID(w, r, "userId")
	if !ok {
		return
	}
	zeals, err := h.content.ListZealPostsByAuthor(r.Context(), authorID, pageInput(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, zeals)
}

func (h *ContentHandler) handleAuthorPolls(w http.ResponseWriter, r *http.Request) {
	authorID, ok := urlUUID(w, r, "userId")
	if !ok {
		return
	}
	polls, err := h.content.ListPollsByAuthor(r.Context(), authorID, pageInput(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, polls)
}
