package models

// OutcomeStatus discriminates the three execution-outcome shapes the engine
// emits for a bar.
type OutcomeStatus string

const (
	OutcomeExecuted   OutcomeStatus = "executed"
	OutcomeLiquidated OutcomeStatus = "liquidated"
	OutcomeRejected   OutcomeStatus = "rejected"
)

// Candle represents one OHLCV bar for a single symbol.
type Candle struct {
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// OrderIntent is the requested order as the strategy submitted it. Rejected
// outcomes carry only an intent; executed outcomes carry intent plus fill.
type OrderIntent struct {
	Symbol    string    `json:"symbol"`
	Side      OrderSide `json:"side"`
	OrderType OrderType `json:"orderType"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
}

// TradeFill is the executed half of an outcome: what actually traded.
// Quantity is signed by the engine (negative for sells) on liquidations,
// where no intent exists to carry the side.
type TradeFill struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
	Fee       float64   `json:"fee"`
	Timestamp Timestamp `json:"timestamp"`
}

// ExecutionOutcome is the tagged union of the three outcome shapes:
//
//	executed   — Intent and Trade present
//	liquidated — Trade present, no Intent (forced exit)
//	rejected   — Intent and Reason present, no Trade
//
// Status is the discriminant; when the engine omits it, DeriveStatus infers
// it from which fields are populated.
type ExecutionOutcome struct {
	Status OutcomeStatus `json:"status,omitempty"`
	Intent *OrderIntent  `json:"intent,omitempty"`
	Trade  *TradeFill    `json:"trade,omitempty"`
	Reason string        `json:"reason,omitempty"`
}

// DeriveStatus returns the declared status, or infers one from the populated
// fields when the status tag is missing.
func (o ExecutionOutcome) DeriveStatus() OutcomeStatus {
	if o.Status != "" {
		return o.Status
	}
	if o.Trade != nil && o.Intent == nil {
		return OutcomeLiquidated
	}
	if o.Trade == nil && o.Intent != nil {
		return OutcomeRejected
	}
	return OutcomeExecuted
}

// PositionSide marks whether a snapshot position is long or short.
type PositionSide string

const (
	PositionLong  PositionSide = "LONG"
	PositionShort PositionSide = "SHORT"
)

// PositionSnapshot is one open position as reported in the post-bar
// snapshot. Quantity is an unsigned magnitude; Side carries the direction.
type PositionSnapshot struct {
	Symbol   string       `json:"symbol"`
	Quantity float64      `json:"quantity"`
	Side     PositionSide `json:"side"`
}

// SignedQuantity returns the position quantity with SHORT negated.
func (p PositionSnapshot) SignedQuantity() float64 {
	if p.Side == PositionShort {
		return -p.Quantity
	}
	return p.Quantity
}

// Snapshot is the post-bar portfolio state.
type Snapshot struct {
	Equity    float64            `json:"equity"`
	Cash      float64            `json:"cash"`
	Positions []PositionSnapshot `json:"positions"`
}

// LogEntry is one bar of the engine's append-only execution log: the candles
// observed during the bar, every execution outcome decided in it, and the
// portfolio snapshot after all fills were applied. Entries are immutable
// input; every derived structure is computed from them, never written back.
type LogEntry struct {
	Timestamp         Timestamp          `json:"timestamp"`
	Candles           map[string]Candle  `json:"candles,omitempty"`
	ExecutionOutcomes []ExecutionOutcome `json:"executionOutcomes,omitempty"`
	SnapshotAfter     *Snapshot          `json:"snapshotAfter,omitempty"`
}
