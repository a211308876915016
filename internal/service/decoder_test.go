package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/backtest-viewer/internal/models"
)

func TestDecodeLogBareArray(t *testing.T) {
	raw := []byte(`[
		{"timestamp": 1700000000000, "candles": {"BTC-USD": {"open": 100, "high": 101, "low": 99, "close": 100.5, "volume": 10}}},
		{"timestamp": "2023-11-14T22:14:00Z", "executionOutcomes": [{"intent": {"symbol": "BTC-USD", "side": "BUY", "orderType": "MARKET", "quantity": 1}, "reason": "insufficient cash"}]}
	]`)

	log, err := DecodeLog(raw)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, models.Timestamp(1700000000000), log[0].Timestamp)
	assert.Len(t, log[1].ExecutionOutcomes, 1)
}

func TestDecodeLogEnvelope(t *testing.T) {
	raw := []byte(`{"entries": [{"timestamp": 1700000000}]}`)

	log, err := DecodeLog(raw)
	require.NoError(t, err)
	require.Len(t, log, 1)
	// Seconds epoch scaled to millis
	assert.Equal(t, models.Timestamp(1700000000000), log[0].Timestamp)
}

func TestDecodeLogEnvelopeLogField(t *testing.T) {
	raw := []byte(`{"log": [{"timestamp": 1700000000000}]}`)

	log, err := DecodeLog(raw)
	require.NoError(t, err)
	assert.Len(t, log, 1)
}

func TestDecodeLogEmpty(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte(`[]`), []byte(`{"entries": []}`)} {
		_, err := DecodeLog(raw)
		assert.ErrorIs(t, err, models.ErrEmptyLog)
	}
}

func TestDecodeLogMalformed(t *testing.T) {
	cases := [][]byte{
		[]byte(`{not json`),
		[]byte(`"just a string"`),
		[]byte(`[{"candles": {}}]`),
	}
	for _, raw := range cases {
		_, err := DecodeLog(raw)
		if !errors.Is(err, models.ErrMalformedLog) {
			t.Fatalf("expected ErrMalformedLog for %s, got %v", raw, err)
		}
	}
}

func TestDecodeLogTolerantOfUnknownFields(t *testing.T) {
	raw := []byte(`[{"timestamp": 1700000000000, "engineVersion": "2.3", "debug": {"x": 1}}]`)

	log, err := DecodeLog(raw)
	require.NoError(t, err)
	assert.Len(t, log, 1)
}
