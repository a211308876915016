package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/backtest-viewer/internal/models"
)

const candleAPISourceName = "candle_api"

// CandleAPIClient implements CandleSource against a generic OHLCV REST provider.
// The provider serializes prices as decimal strings; they are parsed exactly
// and converted to float64 only at the model boundary.
type CandleAPIClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     logrus.FieldLogger
}

// candleWire is one bar as the provider serializes it
type candleWire struct {
	Timestamp int64  `json:"t"`
	Open      string `json:"o"`
	High      string `json:"h"`
	Low       string `json:"l"`
	Close     string `json:"c"`
	Volume    string `json:"v"`
}

type candleResponse struct {
	Symbol  string       `json:"symbol"`
	Candles []candleWire `json:"candles"`
}

// NewCandleAPIClient creates a new candle provider client
func NewCandleAPIClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger logrus.FieldLogger) *CandleAPIClient {
	return &CandleAPIClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// FetchCandles retrieves minute candles for a symbol within the time range
func (c *CandleAPIClient) FetchCandles(ctx context.Context, symbol string, start, end time.Time) ([]models.CandlePoint, error) {
	if !c.enabled {
		return nil, NewDataSourceError(candleAPISourceName, ErrCodeDisabled, "candle source is disabled", nil)
	}

	endpoint := fmt.Sprintf("%s/v1/candles?symbol=%s&start=%d&end=%d&interval=1m",
		c.baseURL, url.QueryEscape(symbol), start.UnixMilli(), end.UnixMilli())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewDataSourceError(candleAPISourceName, ErrCodeNetworkError, "failed to create request", err)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(candleAPISourceName, ErrCodeNetworkError, "failed to fetch candles", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, NewDataSourceError(candleAPISourceName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case http.StatusNotFound:
		return nil, NewDataSourceError(candleAPISourceName, ErrCodeNotFound, "symbol not found", nil)
	case http.StatusTooManyRequests:
		return nil, NewDataSourceError(candleAPISourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, NewDataSourceError(candleAPISourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var payload candleResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewDataSourceError(candleAPISourceName, ErrCodeInvalidData, "failed to parse response", err)
	}

	candles := make([]models.CandlePoint, 0, len(payload.Candles))
	for _, wire := range payload.Candles {
		candle, err := convertCandle(wire)
		if err != nil {
			c.logger.WithError(err).Warnf("Skipping malformed candle for %s at %d", symbol, wire.Timestamp)
			continue
		}
		candles = append(candles, candle)
	}

	return candles, nil
}

// Name returns the data source name
func (c *CandleAPIClient) Name() string {
	return candleAPISourceName
}

// IsEnabled returns whether this data source is enabled
func (c *CandleAPIClient) IsEnabled() bool {
	return c.enabled
}

// convertCandle parses one wire candle into the model type
func convertCandle(wire candleWire) (models.CandlePoint, error) {
	open, err := parsePrice(wire.Open)
	if err != nil {
		return models.CandlePoint{}, fmt.Errorf("open: %w", err)
	}
	high, err := parsePrice(wire.High)
	if err != nil {
		return models.CandlePoint{}, fmt.Errorf("high: %w", err)
	}
	low, err := parsePrice(wire.Low)
	if err != nil {
		return models.CandlePoint{}, fmt.Errorf("low: %w", err)
	}
	closePrice, err := parsePrice(wire.Close)
	if err != nil {
		return models.CandlePoint{}, fmt.Errorf("close: %w", err)
	}
	volume, err := parsePrice(wire.Volume)
	if err != nil {
		return models.CandlePoint{}, fmt.Errorf("volume: %w", err)
	}

	return models.CandlePoint{
		Timestamp: models.Timestamp(wire.Timestamp),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    volume,
	}, nil
}

// parsePrice parses a provider decimal string to float64
func parsePrice(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	f, _ := d.Float64()
	return f, nil
}
