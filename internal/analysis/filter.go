package analysis

import (
	"time"

	"github.com/yourusername/backtest-viewer/internal/models"
)

// FilterSymbolAll disables symbol filtering; an empty symbol does the same.
const FilterSymbolAll = "ALL"

// OrderFilter restricts an order list by symbol and calendar date range.
// Date bounds are inclusive and compared at UTC-day granularity: both the
// bound and the order timestamp are truncated to their UTC calendar date
// before comparing, so a bar at 23:59 local never slips out of its day.
type OrderFilter struct {
	Symbol    string
	StartDate *time.Time
	EndDate   *time.Time
}

// IsZero reports whether the filter passes everything through.
func (f OrderFilter) IsZero() bool {
	return (f.Symbol == "" || f.Symbol == FilterSymbolAll) && f.StartDate == nil && f.EndDate == nil
}

// FilterOrders returns the orders matching the filter, in their original
// relative order. The input is never mutated; the result is always a fresh
// slice, so callers can re-derive metrics from it without aliasing the
// unfiltered history.
func FilterOrders(orders []models.Order, filter OrderFilter) []models.Order {
	filtered := make([]models.Order, 0, len(orders))
	for _, order := range orders {
		if filter.matches(order) {
			filtered = append(filtered, order)
		}
	}
	return filtered
}

func (f OrderFilter) matches(order models.Order) bool {
	if f.Symbol != "" && f.Symbol != FilterSymbolAll && order.Symbol != f.Symbol {
		return false
	}

	day := order.Timestamp.UTCDate()
	if f.StartDate != nil && day.Before(truncateUTC(*f.StartDate)) {
		return false
	}
	if f.EndDate != nil && day.After(truncateUTC(*f.EndDate)) {
		return false
	}
	return true
}

func truncateUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
