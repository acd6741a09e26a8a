package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/prn-tf/zealine/internal/metrics"
	"github.com/prn-tf/zealine/internal/ratelimit"
)

type contextKey string

// userIDKey carries the authenticated user id through the request context.
const userIDKey contextKey = "user_id"

// userIDHeader identifies the caller. Session management sits in front of
// this service; by the time a request arrives the identity is trusted.
const userIDHeader = "X-User-ID"

// Identity extracts the caller's user id from the identity header into the
// request context. Requests without a valid id still pass; handlers that
// need an identity reject them individually.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get(userIDHeader); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), userIDKey, id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// callerID returns the authenticated user id from the context. A false
// return means the caller is anonymous.
func callerID(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(userIDKey).(uuid.UUID)
	return id, ok
}

// requireCaller writes a 401 and returns false when the request carries no
// identity.
func requireCaller(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := callerID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, apiError{Error: "authentication required"})
		return uuid.Nil, false
	}
	return id, true
}

// RequestLogger logs each request and records its latency against the chi
// route pattern, keeping the metric cardinality bounded.
func RequestLogger(logger zerolog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	log := logger.With().Str("component", "http").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}

			if m != nil {
				m.RequestDuration.
					WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).
					Observe(time.Since(start).Seconds())
			}

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("remote", r.RemoteAddr).
				Msg("Request handled")
		})
	}
}

// RateLimit rejects requests over the caller's budget. Authenticated
// callers are keyed by user id, anonymous ones by remote address. Limiter
// errors fail open; availability beats strict limiting here.
func RateLimit(limiter ratelimit.Limiter, m *metrics.Metrics, logger zerolog.Logger) func(http.Handler) http.Handler {
	log := logger.With().Str("component", "ratelimit").Logger()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if id, ok := callerID(r); ok {
				key = id.String()
			}

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Rate limiter failed, allowing request")
				allowed = true
			}
			if !allowed {
				if m != nil {
					m.RateLimited.Inc()
				}
				writeJSON(w, http.StatusTooManyRequests, apiError{Error: "rate limit exceeded"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
