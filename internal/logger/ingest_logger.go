// Package logger provides ingestion audit logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// IngestLogger provides a dedicated audit trail for run ingestion.
type IngestLogger struct {
	*logrus.Entry
}

// NewIngestLogger creates a new ingestion logger.
func NewIngestLogger(baseLogger *logrus.Logger) *IngestLogger {
	return &IngestLogger{
		Entry: baseLogger.WithField("component", "ingest"),
	}
}

// LogRunIngested logs a successfully stored backtest run.
func (il *IngestLogger) LogRunIngested(runID, label, strategy string, entries, outcomes int, sizeBytes int64) {
	il.WithFields(logrus.Fields{
		"run_id":     runID,
		"label":      label,
		"strategy":   strategy,
		"entries":    entries,
		"outcomes":   outcomes,
		"size_bytes": sizeBytes,
	}).Info("Backtest run ingested")
}

// LogDecodeFailure logs a rejected upload.
func (il *IngestLogger) LogDecodeFailure(label string, sizeBytes int64, reason string) {
	il.WithFields(logrus.Fields{
		"label":      label,
		"size_bytes": sizeBytes,
		"reason":     reason,
	}).Warn("Execution log rejected")
}

// LogRunDeleted logs removal of a stored run.
func (il *IngestLogger) LogRunDeleted(runID, deletedBy string) {
	il.WithFields(logrus.Fields{
		"run_id":     runID,
		"deleted_by": deletedBy,
	}).Info("Backtest run deleted")
}

// LogRetentionSweep logs the outcome of a retention pass.
func (il *IngestLogger) LogRetentionSweep(scanned, removed int) {
	il.WithFields(logrus.Fields{
		"scanned": scanned,
		"removed": removed,
	}).Info("Retention sweep completed")
}
