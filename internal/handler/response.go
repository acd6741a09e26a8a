// Package handler provides the HTTP API for Zealine.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/pkg/crypto"
	"github.com/prn-tf/zealine/internal/service"
)

// apiError is the JSON error envelope.
type apiError struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeError maps a service error onto an HTTP status and writes the JSON
// error envelope. Unrecognized errors become 500s with a generic message so
// internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := service.ErrInternalError.Error()

	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrContentNotFound),
		errors.Is(err, domain.ErrCommentNotFound),
		errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrDraftNotFoundOrConsumed),
		errors.Is(err, domain.ErrFileNotFoundInStorage):
		status = http.StatusNotFound
		message = err.Error()

	case errors.Is(err, domain.ErrUserAlreadyExists),
		errors.Is(err, domain.ErrAlreadyFollowing),
		errors.Is(err, domain.ErrAlreadyReported),
		errors.Is(err, service.ErrUploadInProgress):
		status = http.StatusConflict
		message = err.Error()

	case errors.Is(err, domain.ErrTooManyPendingUploads),
		errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
		message = err.Error()

	case errors.Is(err, domain.ErrFileTooLarge):
		status = http.StatusRequestEntityTooLarge
		message = err.Error()

	case errors.Is(err, domain.ErrDraftExpired):
		status = http.StatusGone
		message = err.Error()

	case errors.Is(err, domain.ErrUploadIncomplete),
		errors.Is(err, domain.ErrContentNotCommentable),
		errors.Is(err, domain.ErrContentNotShareable),
		errors.Is(err, domain.ErrNotFollowing),
		errors.Is(err, domain.ErrSelfFollow):
		status = http.StatusUnprocessableEntity
		message = err.Error()

	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = err.Error()

	case errors.Is(err, domain.ErrInvalidMediaType),
		errors.Is(err, domain.ErrInvalidHandle),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrInvalidPollOptions),
		errors.Is(err, domain.ErrUnknownContentType),
		errors.Is(err, service.ErrInvalidFileName),
		errors.Is(err, service.ErrInvalidFileSize),
		errors.Is(err, service.ErrDeclaredSizeMismatch),
		errors.Is(err, service.ErrNotMediaBacked),
		errors.Is(err, service.ErrInvalidReportReason),
		errors.Is(err, crypto.ErrPasswordTooShort),
		errors.Is(err, crypto.ErrPasswordTooLong):
		status = http.StatusBadRequest
		message = err.Error()
	}

	writeJSON(w, status, apiError{Error: message})
}

// decodeJSON decodes the request body into v. A false return means the
// error response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid request body"})
		return false
	}
	return true
}

// urlUUID parses a UUID path parameter. A false return means the error
// response has already been written.
func urlUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid " + param})
		return uuid.Nil, false
	}
	return id, true
}

// urlRef parses the {contentType}/{contentId} pair from the path. The type is
// accepted as-is; unknown discriminators resolve to not-found downstream.
func urlRef(w http.ResponseWriter, r *http.Request) (domain.ContentRef, bool) {
	id, ok := urlUUID(w, r, "contentId")
	if !ok {
		return domain.ContentRef{}, false
	}
	return domain.ContentRef{
		Type: domain.ContentType(chi.URLParam(r, "contentType")),
		ID:   id,
	}, true
}

// pageInput parses offset/limit query parameters. Bad values fall back to
// defaults; services clamp anyway.
func pageInput(r *http.Request) service.ListInput {
	var in service.ListInput
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		in.Offset = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		in.Limit = v
	}
	return in
}
