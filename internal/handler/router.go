package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/prn-tf/zealine/internal/metrics"
	"github.com/prn-tf/zealine/internal/ratelimit"
)

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	UploadHandler      *UploadHandler
	ContentHandler     *ContentHandler
	InteractionHandler *InteractionHandler
	UserHandler        *UserHandler

	// Limiter is the global per-caller request limiter; nil disables it.
	Limiter ratelimit.Limiter

	// Metrics enables request instrumentation and the /metrics endpoint.
	Metrics     *metrics.Metrics
	MetricsPath string

	// Health reports storage health; nil means always healthy.
	Health func(r *http.Request) error

	// Extra handlers mounted outside /api, such as the in-memory blobstore
	// endpoint in development.
	Mounts map[string]http.Handler

	MaxBodySize int64
	Logger      zerolog.Logger
}

// NewRouter assembles the HTTP surface: the /api/v1 JSON API, health, and
// metrics.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(Identity)
	r.Use(RequestLogger(cfg.Logger, cfg.Metrics))
	if cfg.MaxBodySize > 0 {
		r.Use(bodyLimit(cfg.MaxBodySize))
	}

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(req); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, cfg.Metrics.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.Limiter != nil {
			api.Use(RateLimit(cfg.Limiter, cfg.Metrics, cfg.Logger))
		}
		cfg.UserHandler.RegisterRoutes(api)
		cfg.UploadHandler.RegisterRoutes(api)
		cfg.ContentHandler.RegisterRoutes(api)
		cfg.InteractionHandler.RegisterRoutes(api)
	})

	for pattern, h := range cfg.Mounts {
		r.Mount(pattern, h)
	}

	return r
}

// bodyLimit caps request body size. Upload spooling would otherwise accept
// arbitrarily large bodies.
func bodyLimit(max int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, max)
			next.ServeHTTP(w, r)
		})
	}
}
