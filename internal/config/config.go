// Package config provides configuration management for the Backtest Viewer application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App          AppConfig          `mapstructure:"app" validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database" validate:"required"`
	Server       ServerConfig       `mapstructure:"server" validate:"required"`
	Analysis     AnalysisConfig     `mapstructure:"analysis" validate:"required"`
	CandleSource CandleSourceConfig `mapstructure:"candle_source" validate:"required"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Metrics      MetricsConfig      `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// ServerConfig represents the HTTP API server configuration
type ServerConfig struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	AllowedOrigins  []string `mapstructure:"allowed_origins" validate:"required,min=1"`
	ReadTimeoutSec  int      `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSec int      `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
	MaxLogSizeMB    int      `mapstructure:"max_log_size_mb" validate:"required,gt=0"`
}

// AnalysisConfig tunes the derivation pipeline
type AnalysisConfig struct {
	InitialCashFallback float64 `mapstructure:"initial_cash_fallback" validate:"gte=0"`
	CacheTTLSeconds     int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheMaxEntries     int     `mapstructure:"cache_max_entries" validate:"required,gt=0"`
}

// CandleSourceConfig represents the external market-data provider used to
// backfill candles for runs whose logs carry none
type CandleSourceConfig struct {
	Enabled             bool   `mapstructure:"enabled"`
	BaseURL             string `mapstructure:"base_url" validate:"required_if=Enabled true,omitempty,url"`
	APIKey              string `mapstructure:"api_key"`
	TimeoutSeconds      int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts       int    `mapstructure:"retry_attempts" validate:"gte=0"`
	RequestsPerSecond   int    `mapstructure:"requests_per_second" validate:"required,gt=0"`
	CircuitBreakerLimit int    `mapstructure:"circuit_breaker_limit" validate:"required,gt=0"`
}

// SchedulerConfig represents background job scheduling
type SchedulerConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	CandleBackfill   string `mapstructure:"candle_backfill"`
	RetentionSweep   string `mapstructure:"retention_sweep"`
	RetentionMaxRuns int    `mapstructure:"retention_max_runs" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// ServerAddress returns the host:port the API server binds to
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// CandleSourceTimeout returns the provider request timeout as a duration
func (c *Config) CandleSourceTimeout() time.Duration {
	return time.Duration(c.CandleSource.TimeoutSeconds) * time.Second
}

// AnalysisCacheTTL returns the derived-view cache TTL as a duration
func (c *Config) AnalysisCacheTTL() time.Duration {
	return time.Duration(c.Analysis.CacheTTLSeconds) * time.Second
}
