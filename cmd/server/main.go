// Package main provides the entry point for the backtest viewer server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/backtest-viewer/internal/api"
	"github.com/yourusername/backtest-viewer/internal/config"
	"github.com/yourusername/backtest-viewer/internal/database"
	"github.com/yourusername/backtest-viewer/internal/datasource"
	"github.com/yourusername/backtest-viewer/internal/logger"
	"github.com/yourusername/backtest-viewer/internal/metrics"
	"github.com/yourusername/backtest-viewer/internal/repository"
	"github.com/yourusername/backtest-viewer/internal/scheduler"
	"github.com/yourusername/backtest-viewer/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	appLogger  *logrus.Logger
	cfg        *config.Config
	db         *database.DB
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
}

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve stored backtest runs and their derived analysis views",
	Long: `Runs the backtest viewer API: ingests raw execution logs, stores them,
and serves normalized orders, equity curves, metrics, and candle charts.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	return config.Validate(cfg)
}

func setupDependencies() error {
	appLogger = logger.NewLogger(cfg.App.LogLevel)
	appLogger.WithFields(logrus.Fields{
		"version":     Version,
		"commit":      GitCommit,
		"environment": cfg.App.Environment,
	}).Info("Backtest viewer starting")

	var err error
	db, err = database.Initialize(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	return nil
}

func runServer() {
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics.InitRegistry()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize repositories")
	}
	cache := service.NewViewCache(cfg.AnalysisCacheTTL(), cfg.Analysis.CacheMaxEntries)

	candleSource := datasource.NewCandleSource(cfg, appLogger)
	backfillSvc := service.NewBackfillService(repos.Run, repos.Candle, candleSource, appLogger)

	hub := api.NewHub(appLogger)
	resultSvc := service.NewResultService(repos.Run, repos.Candle, cache, cfg.Analysis.InitialCashFallback, hub, appLogger)
	server := api.NewServer(resultSvc, db, hub, cfg.Server, appLogger)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = buildScheduler(backfillSvc, resultSvc)
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = startMetricsServer()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		appLogger.WithField("signal", sig).Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			appLogger.WithError(err).Error("API server failed")
		}
	}

	cancel()
	if sched != nil {
		if err := sched.Stop(); err != nil {
			appLogger.WithError(err).Error("Scheduler shutdown failed")
		}
	}
	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			appLogger.WithError(err).Error("Metrics server shutdown failed")
		}
	}

	appLogger.Info("Backtest viewer shut down")
}

func buildScheduler(backfillSvc *service.BackfillService, resultSvc *service.ResultService) *scheduler.Scheduler {
	sched := scheduler.NewScheduler(backfillSvc, resultSvc, appLogger)

	if cfg.Scheduler.CandleBackfill != "" {
		if err := sched.ScheduleCandleBackfill(cfg.Scheduler.CandleBackfill); err != nil {
			appLogger.WithError(err).Fatal("Failed to schedule candle backfill")
		}
	}
	if cfg.Scheduler.RetentionSweep != "" {
		if err := sched.ScheduleRetentionSweep(cfg.Scheduler.RetentionSweep, cfg.Scheduler.RetentionMaxRuns); err != nil {
			appLogger.WithError(err).Fatal("Failed to schedule retention sweep")
		}
	}

	if err := sched.Start(); err != nil {
		appLogger.WithError(err).Fatal("Failed to start scheduler")
	}
	return sched
}

func startMetricsServer() *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: mux,
	}

	go func() {
		appLogger.WithField("addr", srv.Addr).Info("Metrics server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Error("Metrics server failed")
		}
	}()

	return srv
}
