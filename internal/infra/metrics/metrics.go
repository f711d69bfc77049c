// Package metrics exposes Prometheus collectors for the widget server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "versionbox_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "versionbox_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "versionbox_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Widget metrics
var (
	DispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "versionbox_dispatch_total",
			Help: "Total number of dispatched widget actions",
		},
		[]string{"control", "status"},
	)

	PlayRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "versionbox_play_rejections_total",
			Help: "Total number of playback requests refused by the media engine",
		},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "versionbox_sessions_active",
			Help: "Number of open viewer sessions",
		},
	)

	SessionsReapedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "versionbox_sessions_reaped_total",
			Help: "Total number of viewer sessions closed for inactivity",
		},
	)

	RenderCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "versionbox_render_commands_total",
			Help: "Total number of render commands emitted, by operation",
		},
		[]string{"op"},
	)

	CatalogRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "versionbox_catalog_records",
			Help: "Number of song records in the loaded catalog",
		},
	)
)

// Dispatch statuses
const (
	StatusOK          = "ok"
	StatusInvalid     = "invalid"
	StatusRateLimited = "rate_limited"
	StatusNotFound    = "not_found"
)
