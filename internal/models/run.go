package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BacktestRun represents a stored backtest run: the raw execution log as
// delivered by the engine, plus denormalized headline metrics for listing
// without re-running the pipeline.
type BacktestRun struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	Label          string          `db:"label" json:"label"`
	Strategy       string          `db:"strategy" json:"strategy"`
	InitialCash    float64         `db:"initial_cash" json:"initial_cash"`
	FinalEquity    float64         `db:"final_equity" json:"final_equity"`
	TotalReturnPct float64         `db:"total_return_pct" json:"total_return_pct"`
	MaxDrawdownPct float64         `db:"max_drawdown_pct" json:"max_drawdown_pct"`
	TotalTrades    int             `db:"total_trades" json:"total_trades"`
	RawLog         json.RawMessage `db:"raw_log" json:"raw_log,omitempty"`
	HasCandles     bool            `db:"has_candles" json:"has_candles"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}
