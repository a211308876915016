package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/backtest-viewer/internal/database"
	"github.com/yourusername/backtest-viewer/internal/models"
)

const (
	errScanRun = "failed to scan backtest run: %w"

	runColumns = `id, label, strategy, initial_cash, final_equity, total_return_pct,
		max_drawdown_pct, total_trades, raw_log, has_candles, created_at`
)

// PostgresRunRepository implements RunRepository for PostgreSQL
type PostgresRunRepository struct {
	db *database.DB
}

// NewPostgresRunRepository creates a new backtest run repository
func NewPostgresRunRepository(db *database.DB) RunRepository {
	return &PostgresRunRepository{db: db}
}

// Save inserts a backtest run
func (r *PostgresRunRepository) Save(ctx context.Context, run *models.BacktestRun) error {
	query := `
		INSERT INTO backtest_runs (
			id, label, strategy, initial_cash, final_equity, total_return_pct,
			max_drawdown_pct, total_trades, raw_log, has_candles, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		run.ID, run.Label, run.Strategy, run.InitialCash, run.FinalEquity, run.TotalReturnPct,
		run.MaxDrawdownPct, run.TotalTrades, run.RawLog, run.HasCandles, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save backtest run: %w", err)
	}
	return nil
}

// GetByID retrieves a backtest run by its ID
func (r *PostgresRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error) {
	query := `SELECT ` + runColumns + ` FROM backtest_runs WHERE id = $1`

	run := &models.BacktestRun{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&run.ID, &run.Label, &run.Strategy, &run.InitialCash, &run.FinalEquity, &run.TotalReturnPct,
		&run.MaxDrawdownPct, &run.TotalTrades, &run.RawLog, &run.HasCandles, &run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf(errScanRun, err)
	}
	return run, nil
}

// GetLatest retrieves the most recently ingested runs. The raw log column is
// excluded so listings stay cheap even when runs carry large logs.
func (r *PostgresRunRepository) GetLatest(ctx context.Context, limit int) ([]*models.BacktestRun, error) {
	query := `
		SELECT id, label, strategy, initial_cash, final_equity, total_return_pct,
			max_drawdown_pct, total_trades, has_candles, created_at
		FROM backtest_runs ORDER BY created_at DESC LIMIT $1
	`
	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest backtest runs: %w", err)
	}
	defer rows.Close()

	return scanRunSummaries(rows)
}

// GetByDateRange retrieves runs ingested within a date range
func (r *PostgresRunRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.BacktestRun, error) {
	query := `
		SELECT id, label, strategy, initial_cash, final_equity, total_return_pct,
			max_drawdown_pct, total_trades, has_candles, created_at
		FROM backtest_runs WHERE created_at >= $1 AND created_at <= $2 ORDER BY created_at DESC
	`
	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest runs by date range: %w", err)
	}
	defer rows.Close()

	return scanRunSummaries(rows)
}

// GetWithoutCandles retrieves runs whose logs carried no candle data, oldest
// first, for the backfill job
func (r *PostgresRunRepository) GetWithoutCandles(ctx context.Context, limit int) ([]*models.BacktestRun, error) {
	query := `
		SELECT ` + runColumns + `
		FROM backtest_runs WHERE has_candles = FALSE ORDER BY created_at ASC LIMIT $1
	`
	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs without candles: %w", err)
	}
	defer rows.Close()

	var runs []*models.BacktestRun
	for rows.Next() {
		run := &models.BacktestRun{}
		if err := rows.Scan(
			&run.ID, &run.Label, &run.Strategy, &run.InitialCash, &run.FinalEquity, &run.TotalReturnPct,
			&run.MaxDrawdownPct, &run.TotalTrades, &run.RawLog, &run.HasCandles, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf(errScanRun, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// MarkCandlesBackfilled flags a run as having candle data available
func (r *PostgresRunRepository) MarkCandlesBackfilled(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.GetPool().Exec(ctx, `UPDATE backtest_runs SET has_candles = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark candles backfilled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes a backtest run. Backfilled candles go with it through the
// run_candles foreign key cascade.
func (r *PostgresRunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.GetPool().Exec(ctx, `DELETE FROM backtest_runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete backtest run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteOlderThan removes all but the newest keep runs, returning the number removed
func (r *PostgresRunRepository) DeleteOlderThan(ctx context.Context, keep int) (int, error) {
	query := `
		DELETE FROM backtest_runs WHERE id NOT IN (
			SELECT id FROM backtest_runs ORDER BY created_at DESC LIMIT $1
		)
	`
	tag, err := r.db.GetPool().Exec(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep old backtest runs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanRunSummaries(rows pgx.Rows) ([]*models.BacktestRun, error) {
	var runs []*models.BacktestRun
	for rows.Next() {
		run := &models.BacktestRun{}
		if err := rows.Scan(
			&run.ID, &run.Label, &run.Strategy, &run.InitialCash, &run.FinalEquity, &run.TotalReturnPct,
			&run.MaxDrawdownPct, &run.TotalTrades, &run.HasCandles, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf(errScanRun, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
