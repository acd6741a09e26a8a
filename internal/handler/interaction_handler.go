package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/service"
)

// InteractionHandler handles likes, saves, shares, comments, and reports
// against polymorphic content references.
type InteractionHandler struct {
	engagement *service.EngagementService
	comments   *service.CommentService
	reports    *service.ReportService
	logger     zerolog.Logger
}

// NewInteractionHandler creates a new interaction handler.
func NewInteractionHandler(
	engagement *service.EngagementService,
	comments *service.CommentService,
	reports *service.ReportService,
	logger zerolog.Logger,
) *InteractionHandler {
	return &InteractionHandler{
		engagement: engagement,
		comments:   comments,
		reports:    reports,
		logger:     logger.With().Str("handler", "interaction").Logger(),
	}
}

// RegisterRoutes registers interaction routes.
func (h *InteractionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/content/{contentType}/{contentId}", func(r chi.Router) {
		r.Put("/like", h.handleLike)
		r.Delete("/like", h.handleUnlike)
		r.Put("/save", h.handleSave)
		r.Delete("/save", h.handleUnsave)
		r.Post("/share", h.handleShare)
		r.Get("/counts", h.handleCounts)

		r.Get("/comments", h.handleListComments)
		r.Post("/comments", h.handleAddComment)

		r.Post("/report", h.handleReport)
	})

	r.Delete("/comments/{commentId}", h.handleDeleteComment)
	r.Get("/saved", h.handleListSaved)
}

func (h *InteractionHandler) handleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	ref, ok := urlRef(w, r)
	if !ok {
		return
	}
	if err := h.engagement.Like(r.Context(), ref, userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InteractionHandler) handleUnlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	ref, ok := urlRef(w, r)
	if !ok {
		return
	}
	if err := h.engagement.Unlike(r.Context(), ref, userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InteractionHandler) handleSave(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	ref, ok := urlRef(w, r)
	if !ok {
		return
	}
	if err := h.engagement.Save(r.Context(), ref, userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InteractionHandler) handleUnsave(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	ref, ok := urlRef(w, r)
	if !ok {
		return
	}
	if err := h.engagement.Unsave(r.Context(), ref, userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InteractionHandler) handleShare(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	ref, ok := urlRef(w, r)
	if !ok {
		return
	}
	if err := h.engagement.Share(r.Context(), ref, userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *InteractionHandler) handleCounts(w http.ResponseWriter, r *http.Request) {
	ref, ok := urlRef(w, r)
	if !ok {
		return
	}
	counts, err := h.engagement.GetCounts(r.Context(), ref)
	if err != nil {
		writeError(w, err)
		return
	}

	// A comment count only exists for commentable types.
	type countsResponse struct {
		*service.EngagementCounts
		Comments *int64 `json:"comments,omitempty"`
	}
	resp := countsResponse{EngagementCounts: counts}
	if ref.Type.SupportsComments() {
		n, err := h.comments.Count(r.Context(), ref)
		if err != nil {
			writeError(w, err)
			return
		}
		resp.Comments = &n
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *InteractionHandler) handleListSaved(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	saved, err := h.engagement.ListSaved(r.Context(), userID, pageInput(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

type addCommentRequest struct {
	Body string `json:"body"`
}

func (h *InteractionHandler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	ref, ok := urlRef(w, r)
	if !ok {
		return
	}

	var req addCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.comments.Add(r.Context(), ref, userID, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *InteractionHandler) handleListComments(w http.ResponseWriter, r *http.Request) {
	ref, ok := urlRef(w, r)
	if !ok {
		return
	}
	comments, err := h.comments.List(r.Context(), ref, pageInput(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *InteractionHandler) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	commentID, ok := urlUUID(w, r, "commentId")
	if !ok {
		return
	}
	if err := h.comments.Delete(r.Context(), commentID, userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reportRequest struct {
	Reason  string `json:"reason"`
	Details string `json:"details,omitempty"`
}

func (h *InteractionHandler) handleReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	ref, ok := urlRef(w, r)
	if !ok {
		return
	}

	var req reportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	report, err := h.reports.Report(r.Context(), ref, userID, domain.ReportReason(req.Reason), req.Details)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}
