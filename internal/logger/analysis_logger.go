// Package logger provides analysis pipeline logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AnalysisLogger provides structured logging for the derivation pipeline.
type AnalysisLogger struct {
	*logrus.Entry
}

// NewAnalysisLogger creates a new analysis logger.
func NewAnalysisLogger(baseLogger *logrus.Logger) *AnalysisLogger {
	return &AnalysisLogger{
		Entry: baseLogger.WithField("component", "analysis"),
	}
}

// LogNormalization logs one normalization pass over a run's log.
func (al *AnalysisLogger) LogNormalization(runID string, entries, orders int, duration time.Duration) {
	al.WithFields(logrus.Fields{
		"run_id":      runID,
		"entries":     entries,
		"orders":      orders,
		"duration_ms": duration.Milliseconds(),
	}).Debug("Execution log normalized")
}

// LogMetricsComputed logs a metrics computation.
func (al *AnalysisLogger) LogMetricsComputed(runID string, totalReturnPct, maxDrawdownPct float64, totalTrades int) {
	al.WithFields(logrus.Fields{
		"run_id":           runID,
		"total_return_pct": totalReturnPct,
		"max_drawdown_pct": maxDrawdownPct,
		"total_trades":     totalTrades,
	}).Info("Run metrics computed")
}

// LogCacheOutcome logs a derived-view cache lookup.
func (al *AnalysisLogger) LogCacheOutcome(runID, view string, hit bool) {
	al.WithFields(logrus.Fields{
		"run_id": runID,
		"view":   view,
		"hit":    hit,
	}).Debug("View cache lookup")
}

// LogCandleBackfill logs one provider backfill attempt.
func (al *AnalysisLogger) LogCandleBackfill(runID, symbol string, bars int, err error) {
	fields := logrus.Fields{
		"run_id": runID,
		"symbol": symbol,
		"bars":   bars,
	}
	if err != nil {
		al.WithFields(fields).WithError(err).Warn("Candle backfill failed")
		return
	}
	al.WithFields(fields).Info("Candle backfill completed")
}
