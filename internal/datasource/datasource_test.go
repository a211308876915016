package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testClient() *RateLimitedHTTPClient {
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	return NewRateLimitedHTTPClient(cfg, logrus.New())
}

// TestFetchCandlesSuccess tests decoding a well-formed provider response
func TestFetchCandlesSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") != "BTC-USD" {
			t.Errorf("unexpected symbol query: %s", r.URL.Query().Get("symbol"))
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing auth header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"symbol": "BTC-USD",
			"candles": [
				{"t": 1700000000000, "o": "100.50", "h": "101.25", "l": "99.75", "c": "100.00", "v": "1250.5"},
				{"t": 1700000060000, "o": "100.00", "h": "102.00", "l": "100.00", "c": "101.50", "v": "900"}
			]
		}`))
	}))
	defer server.Close()

	client := NewCandleAPIClient(testClient(), server.URL, "test-key", true, logrus.New())

	candles, err := client.FetchCandles(context.Background(), "BTC-USD", time.UnixMilli(1700000000000), time.UnixMilli(1700000120000))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}

	if candles[0].Open != 100.50 || candles[0].Volume != 1250.5 {
		t.Errorf("decimal fields decoded wrong: %+v", candles[0])
	}

	if int64(candles[1].Timestamp) != 1700000060000 {
		t.Errorf("unexpected timestamp: %d", candles[1].Timestamp)
	}
}

// TestFetchCandlesMalformedBar tests that one bad bar does not fail the batch
func TestFetchCandlesMalformedBar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"symbol": "BTC-USD",
			"candles": [
				{"t": 1700000000000, "o": "not-a-number", "h": "1", "l": "1", "c": "1", "v": "1"},
				{"t": 1700000060000, "o": "100", "h": "101", "l": "99", "c": "100.5", "v": "10"}
			]
		}`))
	}))
	defer server.Close()

	client := NewCandleAPIClient(testClient(), server.URL, "", true, logrus.New())

	candles, err := client.FetchCandles(context.Background(), "BTC-USD", time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(candles) != 1 {
		t.Fatalf("malformed bar should be skipped, got %d candles", len(candles))
	}
}

// TestFetchCandlesDisabled tests the disabled source guard
func TestFetchCandlesDisabled(t *testing.T) {
	client := NewCandleAPIClient(testClient(), "http://unused", "", false, logrus.New())

	_, err := client.FetchCandles(context.Background(), "BTC-USD", time.Now().Add(-time.Hour), time.Now())
	if err == nil {
		t.Fatal("expected error from disabled source")
	}

	var dsErr DataSourceError
	if !errors.As(err, &dsErr) || dsErr.Code != ErrCodeDisabled {
		t.Fatalf("expected source_disabled error, got %v", err)
	}
}

// TestFetchCandlesAuthFailure tests the unauthorized response mapping
func TestFetchCandlesAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewCandleAPIClient(testClient(), server.URL, "bad-key", true, logrus.New())

	_, err := client.FetchCandles(context.Background(), "BTC-USD", time.Now().Add(-time.Hour), time.Now())

	var dsErr DataSourceError
	if !errors.As(err, &dsErr) || dsErr.Code != ErrCodeAuthenticationFailed {
		t.Fatalf("expected authentication_failed error, got %v", err)
	}
}

// TestHTTPClientRateLimit tests rate limiting pacing
func TestHTTPClientRateLimit(t *testing.T) {
	cfg := DefaultHTTPClientConfig()
	cfg.RateLimit = 10
	client := NewRateLimitedHTTPClient(cfg, logrus.New())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// First request consumes the burst token; the next 5 are paced at 10/s
	start := time.Now()
	for i := 0; i < 6; i++ {
		if err := client.limiter.Wait(ctx); err != nil {
			t.Fatalf("wait %d failed: %v", i, err)
		}
	}
	elapsed := time.Since(start)

	if elapsed < 400*time.Millisecond {
		t.Errorf("expected pacing of ~500ms, got %v", elapsed)
	}
}

// TestCircuitBreakerOpens tests that repeated failures open the breaker
func TestCircuitBreakerOpens(t *testing.T) {
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	cfg.CircuitBreakerMax = 2
	cfg.Timeout = 200 * time.Millisecond
	client := NewRateLimitedHTTPClient(cfg, logrus.New())

	ctx := context.Background()
	// Unroutable address, fails fast
	for i := 0; i < 2; i++ {
		_, _ = client.Get(ctx, "http://127.0.0.1:1")
	}

	if _, err := client.Get(ctx, "http://127.0.0.1:1"); err == nil {
		t.Fatal("expected error")
	}
	client.mu.Lock()
	open := client.isOpen
	client.mu.Unlock()
	if !open {
		t.Fatal("expected circuit breaker to be open after consecutive failures")
	}
}
