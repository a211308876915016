package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/backtest-viewer/internal/models"
)

// RunRepository defines the interface for backtest run storage
type RunRepository interface {
	Save(ctx context.Context, run *models.BacktestRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error)
	GetLatest(ctx context.Context, limit int) ([]*models.BacktestRun, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.BacktestRun, error)
	GetWithoutCandles(ctx context.Context, limit int) ([]*models.BacktestRun, error)
	MarkCandlesBackfilled(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteOlderThan(ctx context.Context, keep int) (int, error)
}

// CandleRepository defines the interface for backfilled candle storage
type CandleRepository interface {
	InsertBatch(ctx context.Context, runID uuid.UUID, symbol string, candles []models.CandlePoint) error
	GetBySymbol(ctx context.Context, runID uuid.UUID, symbol string) ([]models.CandlePoint, error)
	GetSymbols(ctx context.Context, runID uuid.UUID) ([]string, error)
}
