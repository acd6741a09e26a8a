package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/zealine/internal/domain"
	"github.com/prn-tf/zealine/internal/service"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "missing content", err: domain.ErrContentNotFound, wantStatus: http.StatusNotFound},
		{name: "missing draft", err: domain.ErrDraftNotFoundOrConsumed, wantStatus: http.StatusNotFound},
		{name: "duplicate follow", err: domain.ErrAlreadyFollowing, wantStatus: http.StatusConflict},
		{name: "transfer lock held", err: service.ErrUploadInProgress, wantStatus: http.StatusConflict},
		{name: "pending cap", err: domain.ErrTooManyPendingUploads, wantStatus: http.StatusTooManyRequests},
		{name: "oversized file", err: domain.ErrFileTooLarge, wantStatus: http.StatusRequestEntityTooLarge},
		{name: "expired draft", err: domain.ErrDraftExpired, wantStatus: http.StatusGone},
		{name: "comment on poll", err: domain.ErrContentNotCommentable, wantStatus: http.StatusUnprocessableEntity},
		{name: "share poll", err: domain.ErrContentNotShareable, wantStatus: http.StatusUnprocessableEntity},
		{name: "bad credentials", err: service.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized},
		{name: "bad mime", err: domain.ErrInvalidMediaType, wantStatus: http.StatusBadRequest},
		{name: "poll as media", err: service.ErrNotMediaBacked, wantStatus: http.StatusBadRequest},
		{name: "unknown error", err: errors.New("pq: connection refused"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body apiError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestWriteError_NeverLeaksInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := fmt.Errorf("%w: dial tcp 10.0.0.5:5432: timeout", service.ErrInternalError)
	writeError(rec, wrapped)

	var body apiError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, service.ErrInternalError.Error(), body.Error)
	assert.NotContains(t, body.Error, "10.0.0.5")
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", jsonBody(`{"name":"ok"}`))

		var p payload
		assert.True(t, decodeJSON(rec, req, &p))
		assert.Equal(t, "ok", p.Name)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", jsonBody(`{"name":"ok","extra":1}`))

		var p payload
		assert.False(t, decodeJSON(rec, req, &p))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", jsonBody(`{"name":`))

		var p payload
		assert.False(t, decodeJSON(rec, req, &p))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}

func TestPageInput(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?offset=40&limit=10", nil)
	in := pageInput(req)
	assert.Equal(t, 40, in.Offset)
	assert.Equal(t, 10, in.Limit)

	req = httptest.NewRequest(http.MethodGet, "/?offset=abc", nil)
	in = pageInput(req)
	assert.Zero(t, in.Offset)
	assert.Zero(t, in.Limit)
}
