package models

// SeriesPoint is one point of a value-over-time series (equity, cash, or
// signed position).
type SeriesPoint struct {
	Timestamp Timestamp `json:"timestamp"`
	Value     float64   `json:"value"`
}

// CandlePoint is one OHLCV bar placed on the run's time axis.
type CandlePoint struct {
	Timestamp Timestamp `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Metrics is the aggregate performance snapshot over one run (or one
// filtered view of it). It is a value recomputed whenever the underlying
// order or equity series changes, never mutated in place. A nil *Metrics
// means "not computable yet" (empty equity curve), which is distinct from
// zero metrics.
type Metrics struct {
	InitialEquity  float64 `json:"initial_equity"`
	FinalEquity    float64 `json:"final_equity"`
	TotalReturnPct float64 `json:"total_return_pct"`
	TotalReturnAbs float64 `json:"total_return_abs"`
	TotalFees      float64 `json:"total_fees"`
	TotalTrades    int     `json:"total_trades"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
}
