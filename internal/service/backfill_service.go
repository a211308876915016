package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/backtest-viewer/internal/analysis"
	"github.com/yourusername/backtest-viewer/internal/datasource"
	"github.com/yourusername/backtest-viewer/internal/logger"
	"github.com/yourusername/backtest-viewer/internal/metrics"
	"github.com/yourusername/backtest-viewer/internal/models"
	"github.com/yourusername/backtest-viewer/internal/repository"
)

// BackfillService fetches provider candles for runs whose logs carry none,
// so their charts are not blank.
type BackfillService struct {
	runs           repository.RunRepository
	candles        repository.CandleRepository
	source         datasource.CandleSource
	analysisLogger *logger.AnalysisLogger
}

// NewBackfillService creates the backfill service.
func NewBackfillService(
	runs repository.RunRepository,
	candles repository.CandleRepository,
	source datasource.CandleSource,
	baseLogger *logrus.Logger,
) *BackfillService {
	return &BackfillService{
		runs:           runs,
		candles:        candles,
		source:         source,
		analysisLogger: logger.NewAnalysisLogger(baseLogger),
	}
}

// BackfillPending processes up to limit candle-less runs. A symbol that the
// provider cannot serve does not fail the run; the run is marked backfilled
// once every symbol has been attempted and at least one series was stored.
func (s *BackfillService) BackfillPending(ctx context.Context, limit int) error {
	if !s.source.IsEnabled() {
		return nil
	}

	runs, err := s.runs.GetWithoutCandles(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs for backfill: %w", err)
	}

	for _, run := range runs {
		if err := s.backfillRun(ctx, run); err != nil {
			s.analysisLogger.LogCandleBackfill(run.ID.String(), "", 0, err)
			metrics.RecordCandleBackfill("failure")
		}
	}
	return nil
}

func (s *BackfillService) backfillRun(ctx context.Context, run *models.BacktestRun) error {
	log, err := DecodeLog(run.RawLog)
	if err != nil {
		return fmt.Errorf("stored log no longer decodes: %w", err)
	}

	symbols := analysis.Symbols(log)
	if len(symbols) == 0 || len(log) == 0 {
		metrics.RecordCandleBackfill("empty")
		return s.runs.MarkCandlesBackfilled(ctx, run.ID)
	}

	start := log[0].Timestamp.Time()
	end := log[len(log)-1].Timestamp.Time()

	stored := 0
	for _, symbol := range symbols {
		candles, err := s.source.FetchCandles(ctx, symbol, start, end)
		if err != nil {
			s.analysisLogger.LogCandleBackfill(run.ID.String(), symbol, 0, err)
			metrics.RecordCandleBackfill("failure")
			continue
		}
		if len(candles) == 0 {
			metrics.RecordCandleBackfill("empty")
			continue
		}
		if err := s.candles.InsertBatch(ctx, run.ID, symbol, candles); err != nil {
			return fmt.Errorf("failed to store candles for %s: %w", symbol, err)
		}
		stored++
		s.analysisLogger.LogCandleBackfill(run.ID.String(), symbol, len(candles), nil)
		metrics.RecordCandleBackfill("success")
	}

	if stored > 0 {
		return s.runs.MarkCandlesBackfilled(ctx, run.ID)
	}
	return nil
}
