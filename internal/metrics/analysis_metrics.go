// Package metrics defines analysis-pipeline-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Analysis counter vectors
var (
	NormalizedOrdersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "backtest_viewer",
		Name:      "normalized_orders_total",
		Help:      "Total number of orders produced by normalization, by status",
	}, []string{"status"})

	ViewRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "backtest_viewer",
		Name:      "view_requests_total",
		Help:      "Total number of derived-view requests by view type",
	}, []string{"view"})

	ViewCacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "backtest_viewer",
		Name:      "view_cache_lookups_total",
		Help:      "Total number of view cache lookups by outcome",
	}, []string{"outcome"})
)

// Analysis histogram vectors
var (
	NormalizationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "backtest_viewer",
		Name:      "normalization_duration_seconds",
		Help:      "Duration of execution log normalization in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// Analysis gauge vectors
var (
	RunDrawdownPct = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "backtest_viewer",
		Name:      "run_max_drawdown_pct",
		Help:      "Maximum drawdown percentage of recently analyzed runs",
	}, []string{"run_id"})
)

// RecordNormalization records one normalization pass.
func RecordNormalization(durationSeconds float64, filled, liquidated, rejected int) {
	NormalizationDuration.Observe(durationSeconds)
	NormalizedOrdersTotal.WithLabelValues("filled").Add(float64(filled))
	NormalizedOrdersTotal.WithLabelValues("liquidated").Add(float64(liquidated))
	NormalizedOrdersTotal.WithLabelValues("rejected").Add(float64(rejected))
}

// RecordViewRequest records a derived-view request.
// view should be one of: "orders", "equity", "cash", "candles", "position", "metrics", "positions"
func RecordViewRequest(view string) {
	ViewRequestsTotal.WithLabelValues(view).Inc()
}

// RecordCacheLookup records a view cache lookup.
// outcome should be "hit" or "miss"
func RecordCacheLookup(outcome string) {
	ViewCacheLookupsTotal.WithLabelValues(outcome).Inc()
}

// UpdateRunDrawdown updates the drawdown gauge for a run.
func UpdateRunDrawdown(runID string, drawdownPct float64) {
	RunDrawdownPct.WithLabelValues(runID).Set(drawdownPct)
}
