// Package metrics provides Prometheus instrumentation for the osmium backend.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	enabled  bool
	register sync.Once

	// HTTP metrics
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec

	// Router metrics
	messagesTotal *prometheus.CounterVec
	commandsTotal *prometheus.CounterVec
	commandTime   *prometheus.HistogramVec

	// Channel metrics
	channelsActive   prometheus.Gauge
	broadcastsTotal  *prometheus.CounterVec
	forwardsQueued   *prometheus.CounterVec
	rateLimitedTotal *prometheus.CounterVec

	// Watcher metrics
	reloadsTotal *prometheus.CounterVec
)

// Init initializes the metrics system. Collectors are registered once per process.
func Init(enabledFlag bool) {
	enabled = enabledFlag
	if !enabled {
		return
	}

	register.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osmium_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		)

		httpDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "osmium_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		)

		messagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osmium_messages_total",
				Help: "Total number of inbound channel messages by type and outcome",
			},
			[]string{"type", "status"},
		)

		commandsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osmium_commands_total",
				Help: "Total number of executed commands",
			},
			[]string{"type", "status"},
		)

		commandTime = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "osmium_command_duration_seconds",
				Help:    "Command execution latency in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"type"},
		)

		channelsActive = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "osmium_channels_active",
				Help: "Number of attached UI channels",
			},
		)

		broadcastsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osmium_broadcasts_total",
				Help: "Total number of broadcast messages",
			},
			[]string{"type"},
		)

		forwardsQueued = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osmium_forwards_queued_total",
				Help: "Forwarded messages queued for a surface that was not attached",
			},
			[]string{"target"},
		)

		rateLimitedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osmium_rate_limited_total",
				Help: "Inbound messages dropped by the per-channel rate limit",
			},
			[]string{"channel"},
		)

		reloadsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osmium_watcher_reloads_total",
				Help: "Repository reloads triggered by file changes",
			},
			[]string{"collection", "status"},
		)
	})
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	if !enabled {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
	}
	return promhttp.Handler()
}

// Enabled returns whether metrics are enabled.
func Enabled() bool {
	return enabled
}
