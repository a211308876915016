package datasource

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/backtest-viewer/internal/config"
)

// NewCandleSource builds the configured candle provider with its rate-limited
// HTTP client. A disabled configuration still yields a usable client whose
// fetches fail fast with a source_disabled error.
func NewCandleSource(cfg *config.Config, logger *logrus.Logger) CandleSource {
	httpCfg := HTTPClientConfig{
		Timeout:           cfg.CandleSourceTimeout(),
		MaxRetries:        cfg.CandleSource.RetryAttempts,
		RetryWaitMin:      100 * time.Millisecond,
		RetryWaitMax:      5 * time.Second,
		RateLimit:         float64(cfg.CandleSource.RequestsPerSecond),
		CircuitBreakerMax: cfg.CandleSource.CircuitBreakerLimit,
	}

	httpClient := NewRateLimitedHTTPClient(httpCfg, logger)
	return NewCandleAPIClient(
		httpClient,
		cfg.CandleSource.BaseURL,
		cfg.CandleSource.APIKey,
		cfg.CandleSource.Enabled,
		logger,
	)
}
