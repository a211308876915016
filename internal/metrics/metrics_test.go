package metrics

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordRunIngested(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordRunIngested(204800, 0.12)
	})
}

func TestRecordDecodeFailure(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordDecodeFailure()
	})
}

func TestRecordCandleBackfill(t *testing.T) {
	InitRegistry()

	for _, status := range []string{"success", "failure", "empty"} {
		assert.NotPanics(t, func() {
			RecordCandleBackfill(status)
		})
	}
}

func TestUpdateStoredRuns(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name  string
		count float64
	}{
		{name: "some runs", count: 42},
		{name: "zero runs", count: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateStoredRuns(tt.count)
			})
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	InitRegistry()

	handler := Handler()
	assert.NotNil(t, handler)
	assert.Implements(t, (*http.Handler)(nil), handler)
}

func TestAnalysisMetrics(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordNormalization(0.02, 30, 2, 5)
	})

	assert.NotPanics(t, func() {
		RecordViewRequest("equity")
	})

	assert.NotPanics(t, func() {
		RecordCacheLookup("hit")
	})

	assert.NotPanics(t, func() {
		UpdateRunDrawdown("run_123", 4.2)
	})
}

func BenchmarkRecordViewRequest(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordViewRequest("orders")
	}
}

func BenchmarkRecordNormalization(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordNormalization(0.02, 30, 2, 5)
	}
}
