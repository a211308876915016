package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/backtest-viewer/internal/database"
	"github.com/yourusername/backtest-viewer/internal/models"
)

// PostgresCandleRepository implements CandleRepository for PostgreSQL
type PostgresCandleRepository struct {
	db *database.DB
}

// NewPostgresCandleRepository creates a new candle repository
func NewPostgresCandleRepository(db *database.DB) CandleRepository {
	return &PostgresCandleRepository{db: db}
}

// InsertBatch stores a backfilled candle series for one run and symbol
func (r *PostgresCandleRepository) InsertBatch(ctx context.Context, runID uuid.UUID, symbol string, candles []models.CandlePoint) error {
	if len(candles) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO run_candles (run_id, symbol, ts, open, high, low, close, volume)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (run_id, symbol, ts) DO NOTHING
	`
	for _, candle := range candles {
		batch.Queue(query, runID, symbol, int64(candle.Timestamp),
			candle.Open, candle.High, candle.Low, candle.Close, candle.Volume)
	}

	results := r.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	for range candles {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert candle batch: %w", err)
		}
	}
	return nil
}

// GetBySymbol retrieves the stored candle series for one run and symbol
func (r *PostgresCandleRepository) GetBySymbol(ctx context.Context, runID uuid.UUID, symbol string) ([]models.CandlePoint, error) {
	query := `
		SELECT ts, open, high, low, close, volume
		FROM run_candles WHERE run_id = $1 AND symbol = $2 ORDER BY ts ASC
	`
	rows, err := r.db.GetPool().Query(ctx, query, runID, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query run candles: %w", err)
	}
	defer rows.Close()

	var candles []models.CandlePoint
	for rows.Next() {
		var ts int64
		var candle models.CandlePoint
		if err := rows.Scan(&ts, &candle.Open, &candle.High, &candle.Low, &candle.Close, &candle.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan candle: %w", err)
		}
		candle.Timestamp = models.Timestamp(ts)
		candles = append(candles, candle)
	}
	return candles, rows.Err()
}

// GetSymbols retrieves the distinct symbols with stored candles for a run
func (r *PostgresCandleRepository) GetSymbols(ctx context.Context, runID uuid.UUID) ([]string, error) {
	rows, err := r.db.GetPool().Query(ctx,
		`SELECT DISTINCT symbol FROM run_candles WHERE run_id = $1 ORDER BY symbol`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candle symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}
	return symbols, rows.Err()
}
