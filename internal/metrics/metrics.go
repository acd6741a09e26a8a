// Package metrics exposes Prometheus instrumentation for the upload
// pipeline, content services, and background sweep jobs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus instruments. A single instance is created at
// startup and shared across services.
type Metrics struct {
	registry *prometheus.Registry

	// Upload pipeline
	UploadsStarted   *prometheus.CounterVec
	UploadsCompleted *prometheus.CounterVec
	UploadsFailed    *prometheus.CounterVec
	UploadBytes      prometheus.Counter
	UploadDuration   prometheus.Histogram
	PartRetries      prometheus.Counter

	// Content and interactions
	ContentCreated *prometheus.CounterVec
	Interactions   *prometheus.CounterVec

	// HTTP surface
	RequestDuration *prometheus.HistogramVec
	RateLimited     prometheus.Counter

	// Sweep jobs
	SweepLastRunTime *prometheus.GaugeVec
	SweepDuration    *prometheus.HistogramVec
	SweepDeleted     *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		UploadsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "zealine_uploads_started_total",
			Help: "Upload drafts created, by media kind and strategy.",
		}, []string{"kind", "strategy"}),

		UploadsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "zealine_uploads_completed_total",
			Help: "Uploads whose bytes reached object storage, by media kind.",
		}, []string{"kind"}),

		UploadsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "zealine_uploads_failed_total",
			Help: "Uploads that failed permanently, by media kind.",
		}, []string{"kind"}),

		UploadBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "zealine_upload_bytes_total",
			Help: "Total bytes transferred to object storage.",
		}),

		UploadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "zealine_upload_duration_seconds",
			Help:    "End-to-end duration of byte transfers.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),

		PartRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "zealine_upload_part_retries_total",
			Help: "Chunk transfer attempts beyond the first.",
		}),

		ContentCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "zealine_content_created_total",
			Help: "Content entities created, by content type.",
		}, []string{"type"}),

		Interactions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "zealine_interactions_total",
			Help: "Social interactions recorded, by action.",
		}, []string{"action"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zealine_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),

		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "zealine_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}),

		SweepLastRunTime: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "zealine_sweep_last_run_timestamp_seconds",
			Help: "Unix time of the last completed sweep, by job.",
		}, []string{"job"}),

		SweepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zealine_sweep_duration_seconds",
			Help:    "Sweep job duration, by job.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"job"}),

		SweepDeleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "zealine_sweep_deleted_total",
			Help: "Rows or objects removed by sweep jobs, by job.",
		}, []string{"job"}),
	}
}

// RecordSweepRun records the outcome of one sweep job run.
func (m *Metrics) RecordSweepRun(job string, seconds float64, deleted int64) {
	m.SweepDuration.WithLabelValues(job).Observe(seconds)
	m.SweepDeleted.WithLabelValues(job).Add(float64(deleted))
	m.SweepLastRunTime.WithLabelValues(job).SetToCurrentTime()
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
