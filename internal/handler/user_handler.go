package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/service"
)

// UserHandler handles accounts, the follow graph, and notifications.
type UserHandler struct {
	users         *service.UserService
	follows       *service.FollowService
	notifications *service.NotificationService
	logger        zerolog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(
	users *service.UserService,
	follows *service.FollowService,
	notifications *service.NotificationService,
	logger zerolog.Logger,
) *UserHandler {
	return &UserHandler{
		users:         users,
		follows:       follows,
		notifications: notifications,
		logger:        logger.With().Str("handler", "user").Logger(),
	}
}

// RegisterRoutes registers user, follow, and notification routes.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Post("/users", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
	r.Get("/users/search", h.handleSearch)
	r.Get("/users/{userId}", h.handleGetUser)
	r.Patch("/users/me", h.handleUpdateProfile)
	r.Delete("/users/me", h.handleDeleteAccount)

	r.Put("/users/{userId}/follow", h.handleFollow)
	r.Delete("/users/{userId}/follow", h.handleUnfollow)
	r.Get("/users/{userId}/follow-counts", h.handleFollowCounts)
	r.Get("/users/{userId}/followers", h.handleListFollowers)
	r.Get("/users/{userId}/following", h.handleListFollowing)

	r.Get("/notifications", h.handleListNotifications)
	r.Get("/notifications/unread-count", h.handleUnreadCount)
	r.Post("/notifications/{notificationId}/read", h.handleMarkRead)
	r.Post("/notifications/read-all", h.handleMarkAllRead)
}

type registerRequest struct {
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

func (h *UserHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Handle:      req.Handle,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

func (h *UserHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Handle, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlUUID(w, r, "userId")
	if !ok {
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Bio         *string `json:"bio,omitempty"`
}

func (h *UserHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), service.UpdateProfileInput{
		UserID:      userID,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Bio:         req.Bio,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if err := h.users.Delete(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.Search(r.Context(), r.URL.Query().Get("q"), pageInput(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) handleFollow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	userID, ok := urlUUID(w, r, "userId")
	if !ok {
		return
	}
	out, err := h.follows.Follow(r.Context(), userID, followerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, followResponse{User: out.User, Follower: out.Follower})
}

type followResponse struct {
	User     *domain.FollowCounts `json:"user"`
	Follower *domain.FollowCounts `json:"follower"`
}

func (h *UserHandler) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	userID, ok := urlUUID(w, r, "userId")
	if !ok {
		return
	}
	if err := h.follows.Unfollow(r.Context(), userID, followerID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) handleFollowCounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlUUID(w, r, "userId")
	if !ok {
		return
	}
	counts, err := h.follows.GetCounts(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

type followListResponse struct {
	Entries interface{} `json:"entries"`
	Total   int64       `json:"total"`
}

func (h *UserHandler) handleListFollowers(w http.ResponseWriter, r *http.Request) {
	h.handleFollowList(w, r, true)
}

func (h *UserHandler) handleListFollowing(w http.ResponseWriter, r *http.Request) {
	h.handleFollowList(w, r, false)
}

func (h *UserHandler) handleFollowList(w http.ResponseWriter, r *http.Request, followers bool) {
	userID, ok := urlUUID(w, r, "userId")
	if !ok {
		return
	}

	page := pageInput(r)
	input := service.FollowListInput{
		UserID:       userID,
		HandleFilter: r.URL.Query().Get("handle"),
		Offset:       page.Offset,
		Limit:        page.Limit,
	}
	if viewerID, ok := callerID(r); ok {
		input.ViewerID = viewerID
	}

	var (
		out *service.FollowListOutput
		err error
	)
	if followers {
		out, err = h.follows.ListFollowers(r.Context(), input)
	} else {
		out, err = h.follows.ListFollowing(r.Context(), input)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, followListResponse{Entries: out.Entries, Total: out.Total})
}

func (h *UserHandler) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	recipientID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := h.notifications.List(r.Context(), recipientID, unreadOnly, pageInput(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (h *UserHandler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	recipientID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	count, err := h.notifications.CountUnread(r.Context(), recipientID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"unread": count})
}

func (h *UserHandler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	recipientID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	notificationID, ok := urlUUID(w, r, "notificationId")
	if !ok {
		return
	}
	if err := h.notifications.MarkRead(r.Context(), notificationID, recipientID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	recipientID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	count, err := h.notifications.MarkAllRead(r.Context(), recipientID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"marked": count})
}
