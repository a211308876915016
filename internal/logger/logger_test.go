package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	log := NewLogger("nonsense")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewLoggerValidLevel(t *testing.T) {
	log := NewLogger("debug")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestIngestLoggerRunIngested(t *testing.T) {
	log, buf := setupTestLogger()
	ingestLogger := NewIngestLogger(log)

	ingestLogger.LogRunIngested("run_123", "momentum-v2", "momentum", 1440, 37, 204800)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "run_123", logEntry["run_id"])
	assert.Equal(t, "ingest", logEntry["component"])
	assert.Equal(t, float64(37), logEntry["outcomes"])
}

func TestIngestLoggerDecodeFailure(t *testing.T) {
	log, buf := setupTestLogger()
	ingestLogger := NewIngestLogger(log)

	ingestLogger.LogDecodeFailure("broken-upload", 512, "missing timestamp")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "missing timestamp", logEntry["reason"])
	assert.Equal(t, "warning", logEntry["level"])
}

func TestIngestLoggerRunDeleted(t *testing.T) {
	log, buf := setupTestLogger()
	ingestLogger := NewIngestLogger(log)

	ingestLogger.LogRunDeleted("run_123", "api")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "run_123", logEntry["run_id"])
	assert.Equal(t, "api", logEntry["deleted_by"])
}

func TestAnalysisLoggerNormalization(t *testing.T) {
	log, buf := setupTestLogger()
	analysisLogger := NewAnalysisLogger(log)

	analysisLogger.LogNormalization("run_123", 1440, 37, 12*time.Millisecond)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "analysis", logEntry["component"])
	assert.Equal(t, float64(12), logEntry["duration_ms"])
}

func TestAnalysisLoggerMetricsComputed(t *testing.T) {
	log, buf := setupTestLogger()
	analysisLogger := NewAnalysisLogger(log)

	analysisLogger.LogMetricsComputed("run_123", 10.5, 4.2, 37)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(10.5), logEntry["total_return_pct"])
	assert.Equal(t, float64(37), logEntry["total_trades"])
}

func TestAnalysisLoggerCandleBackfillError(t *testing.T) {
	log, buf := setupTestLogger()
	analysisLogger := NewAnalysisLogger(log)

	analysisLogger.LogCandleBackfill("run_123", "BTC-USD", 0, errors.New("provider timeout"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "provider timeout", logEntry["error"])
}

func TestLoggerJSONFormat(t *testing.T) {
	log, buf := setupTestLogger()
	ingestLogger := NewIngestLogger(log)

	ingestLogger.LogRunIngested("run_123", "momentum-v2", "momentum", 1440, 37, 204800)

	// Verify output is valid JSON
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	assert.NoError(t, err)
	assert.NotEmpty(t, logEntry)
}

func BenchmarkAnalysisLoggerNormalization(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	analysisLogger := NewAnalysisLogger(log)

	for i := 0; i < b.N; i++ {
		analysisLogger.LogNormalization("run_123", 1440, 37, 12*time.Millisecond)
	}
}
