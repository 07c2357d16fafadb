// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Pass metrics
	PassesTotal      *prometheus.CounterVec
	PassDuration     prometheus.Histogram
	TokensDiscovered prometheus.Counter
	PositionsOpened  prometheus.Counter
	PositionsClosed  *prometheus.CounterVec

	// Upstream metrics
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	UpstreamRetries  *prometheus.CounterVec

	// Query metrics
	BestExitQueries *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "sniper_sim"
	}

	return &Metrics{
		// Pass metrics
		PassesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "passes_total",
			Help:      "Total number of engine passes by status",
		}, []string{"status"}),
		PassDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "pass_duration_seconds",
			Help:      "Engine pass duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		TokensDiscovered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "tokens_discovered_total",
			Help:      "Total number of new tokens discovered",
		}),
		PositionsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "positions_opened_total",
			Help:      "Total number of positions opened",
		}),
		PositionsClosed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "positions_closed_total",
			Help:      "Total number of positions closed by reason",
		}, []string{"reason"}),

		// Upstream metrics
		UpstreamRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of upstream requests by path and status",
		}, []string{"path", "status"}),
		UpstreamLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_latency_seconds",
			Help:      "Upstream request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		UpstreamRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "retries_total",
			Help:      "Total number of upstream request retries by path",
		}, []string{"path"}),

		// Query metrics
		BestExitQueries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "best_exit_queries_total",
			Help:      "Total number of best-exit queries by outcome",
		}, []string{"outcome"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordUpstreamRequest records an upstream request and its latency.
func RecordUpstreamRequest(path string, status int, seconds float64) {
	DefaultMetrics.UpstreamRequests.WithLabelValues(path, strconv.Itoa(status)).Inc()
	DefaultMetrics.UpstreamLatency.WithLabelValues(path).Observe(seconds)
}

// RecordUpstreamRetry increments the retry counter for a path.
func RecordUpstreamRetry(path string) {
	DefaultMetrics.UpstreamRetries.WithLabelValues(path).Inc()
}

// RecordPass records a completed engine pass.
func RecordPass(status string, durationSeconds float64) {
	DefaultMetrics.PassesTotal.WithLabelValues(status).Inc()
	DefaultMetrics.PassDuration.Observe(durationSeconds)
}

// RecordTokensDiscovered adds to the discovered token counter.
func RecordTokensDiscovered(n int) {
	DefaultMetrics.TokensDiscovered.Add(float64(n))
}

// RecordPositionOpened increments the opened position counter.
func RecordPositionOpened() {
	DefaultMetrics.PositionsOpened.Inc()
}

// RecordPositionClosed increments the closed position counter for a reason.
func RecordPositionClosed(reason string) {
	DefaultMetrics.PositionsClosed.WithLabelValues(reason).Inc()
}

// RecordBestExitQuery records a best-exit query outcome.
func RecordBestExitQuery(outcome string) {
	DefaultMetrics.BestExitQueries.WithLabelValues(outcome).Inc()
}
