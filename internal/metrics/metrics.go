// Package metrics provides centralized Prometheus metrics registry for the viewer.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RunsIngestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "backtest_viewer",
		Name:      "runs_ingested_total",
		Help:      "Total number of backtest runs ingested",
	})
	RunsDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "backtest_viewer",
		Name:      "runs_deleted_total",
		Help:      "Total number of backtest runs deleted",
	})
	LogDecodeFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "backtest_viewer",
		Name:      "log_decode_failures_total",
		Help:      "Total number of execution logs rejected as malformed",
	})
	CandleBackfillsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "backtest_viewer",
		Name:      "candle_backfills_total",
		Help:      "Total number of candle backfill attempts by status",
	}, []string{"status"})
)

// Gauge metrics
var (
	StoredRuns = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "backtest_viewer",
		Name:      "stored_runs",
		Help:      "Number of backtest runs currently stored",
	})
	ViewCacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "backtest_viewer",
		Name:      "view_cache_entries",
		Help:      "Number of derived views currently cached",
	})
	WebsocketClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "backtest_viewer",
		Name:      "websocket_clients",
		Help:      "Number of connected websocket clients",
	})
)

// Histogram metrics
var (
	LogDecodeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "backtest_viewer",
		Name:      "log_decode_duration_seconds",
		Help:      "Duration of execution log decoding in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	LogSizeBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "backtest_viewer",
		Name:      "log_size_bytes",
		Help:      "Size distribution of ingested execution logs",
		Buckets:   []float64{1 << 10, 16 << 10, 256 << 10, 1 << 20, 16 << 20, 64 << 20},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(RunsIngestedTotal)
		registry.MustRegister(RunsDeletedTotal)
		registry.MustRegister(LogDecodeFailuresTotal)
		registry.MustRegister(CandleBackfillsTotal)

		// Register gauge metrics
		registry.MustRegister(StoredRuns)
		registry.MustRegister(ViewCacheEntries)
		registry.MustRegister(WebsocketClients)

		// Register histogram metrics
		registry.MustRegister(LogDecodeDuration)
		registry.MustRegister(LogSizeBytes)

		// Register analysis pipeline metrics
		registry.MustRegister(NormalizationDuration)
		registry.MustRegister(NormalizedOrdersTotal)
		registry.MustRegister(ViewRequestsTotal)
		registry.MustRegister(ViewCacheLookupsTotal)
		registry.MustRegister(RunDrawdownPct)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordRunIngested records a successful run ingestion.
func RecordRunIngested(sizeBytes float64, decodeSeconds float64) {
	RunsIngestedTotal.Inc()
	LogSizeBytes.Observe(sizeBytes)
	LogDecodeDuration.Observe(decodeSeconds)
}

// RecordRunDeleted records a run deletion.
func RecordRunDeleted() {
	RunsDeletedTotal.Inc()
}

// RecordDecodeFailure records a rejected execution log.
func RecordDecodeFailure() {
	LogDecodeFailuresTotal.Inc()
}

// RecordCandleBackfill records a candle backfill attempt.
// status should be one of: "success", "failure", "empty"
func RecordCandleBackfill(status string) {
	CandleBackfillsTotal.WithLabelValues(status).Inc()
}

// UpdateStoredRuns updates the stored runs gauge.
func UpdateStoredRuns(count float64) {
	StoredRuns.Set(count)
}

// UpdateViewCacheEntries updates the cached views gauge.
func UpdateViewCacheEntries(count float64) {
	ViewCacheEntries.Set(count)
}

// UpdateWebsocketClients updates the connected clients gauge.
func UpdateWebsocketClients(count float64) {
	WebsocketClients.Set(count)
}
