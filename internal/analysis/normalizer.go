// Package analysis derives the viewer-facing views from a raw execution
// log: the normalized order history, price/equity/cash/position series, and
// aggregate performance metrics. Every function is a pure transformation
// over an in-memory log slice; inputs are never mutated and repeated calls
// with the same input produce identical output.
package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/yourusername/backtest-viewer/internal/models"
)

// symbolUnknown is emitted when neither the intent nor the trade carries a
// symbol. Kept visible in the output rather than dropped so malformed
// outcomes remain countable in the viewer.
const symbolUnknown = "UNKNOWN"

// Normalize maps every execution outcome in the log to exactly one canonical
// Order. The three outcome shapes (executed, liquidated, rejected) degrade
// field-by-field: intent values win, trade values fill the gaps, and
// whatever is still missing falls back to a neutral default. Malformed
// outcomes never fail the whole log.
//
// The result is sorted ascending by timestamp with a stable sort, so
// same-timestamp outcomes keep their log order. Position reconstruction and
// the viewer's order table both rely on that determinism.
func Normalize(log []models.LogEntry) []models.Order {
	orders := make([]models.Order, 0, countOutcomes(log))
	for _, entry := range log {
		for seq, outcome := range entry.ExecutionOutcomes {
			orders = append(orders, normalizeOutcome(entry.Timestamp, outcome, seq))
		}
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Timestamp < orders[j].Timestamp
	})
	return orders
}

func countOutcomes(log []models.LogEntry) int {
	n := 0
	for _, entry := range log {
		n += len(entry.ExecutionOutcomes)
	}
	return n
}

func normalizeOutcome(barTime models.Timestamp, outcome models.ExecutionOutcome, seq int) models.Order {
	status := orderStatus(outcome.DeriveStatus())

	order := models.Order{
		Symbol:    outcomeSymbol(outcome),
		Side:      outcomeSide(outcome),
		Type:      outcomeType(outcome, status),
		Status:    status,
		Timestamp: barTime,
	}

	switch {
	case outcome.Trade != nil:
		order.Quantity = abs(outcome.Trade.Quantity)
		order.Price = outcome.Trade.Price
		order.Fee = outcome.Trade.Fee
		if outcome.Trade.Timestamp != 0 {
			order.Timestamp = outcome.Trade.Timestamp
		}
	case outcome.Intent != nil:
		// A rejected limit order reports its requested quantity and price.
		order.Quantity = abs(outcome.Intent.Quantity)
		order.Price = outcome.Intent.Price
	}

	if status == models.StatusRejected {
		order.Reason = outcome.Reason
	}

	order.ID = orderID(outcome, order, seq)
	return order
}

func orderStatus(s models.OutcomeStatus) models.OrderStatus {
	switch s {
	case models.OutcomeLiquidated:
		return models.StatusLiquidated
	case models.OutcomeRejected:
		return models.StatusRejected
	default:
		return models.StatusFilled
	}
}

func outcomeSymbol(outcome models.ExecutionOutcome) string {
	if outcome.Intent != nil && outcome.Intent.Symbol != "" {
		return outcome.Intent.Symbol
	}
	if outcome.Trade != nil && outcome.Trade.Symbol != "" {
		return outcome.Trade.Symbol
	}
	return symbolUnknown
}

func outcomeSide(outcome models.ExecutionOutcome) models.OrderSide {
	if outcome.Intent != nil && outcome.Intent.Side != "" {
		return outcome.Intent.Side
	}
	if outcome.Trade != nil {
		// Liquidations carry no intent; the fill's sign is the only
		// direction signal left.
		if outcome.Trade.Quantity > 0 {
			return models.SideBuy
		}
		return models.SideSell
	}
	return models.SideUnknown
}

func outcomeType(outcome models.ExecutionOutcome, status models.OrderStatus) models.OrderType {
	if outcome.Intent != nil && outcome.Intent.OrderType != "" {
		return outcome.Intent.OrderType
	}
	if status == models.StatusLiquidated {
		return models.TypeLiquidation
	}
	return models.TypeMarket
}

// orderID prefers the engine's trade id. Outcomes without one (rejections,
// partial records) get a SHA-256 composite of timestamp, symbol, status and
// sequence-in-entry, which is unique within a log and fully deterministic —
// the same log always yields the same ids, so downstream memoization and
// diffing stay valid.
func orderID(outcome models.ExecutionOutcome, order models.Order, seq int) string {
	if outcome.Trade != nil && outcome.Trade.ID != "" {
		return outcome.Trade.ID
	}
	data := fmt.Sprintf("%d|%s|%s|%d", order.Timestamp, order.Symbol, order.Status, seq)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:16])
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
