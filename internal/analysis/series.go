package analysis

import (
	"sort"

	"github.com/yourusername/backtest-viewer/internal/models"
)

// ExtractCandles projects the per-symbol OHLCV series out of the log.
// Entries without a candle for the symbol are skipped, not zero-filled, so
// the series can have time gaps — the chart layer renders those as-is.
func ExtractCandles(log []models.LogEntry, symbol string) []models.CandlePoint {
	points := make([]models.CandlePoint, 0, len(log))
	for _, entry := range sortedByTime(log) {
		candle, ok := entry.Candles[symbol]
		if !ok {
			continue
		}
		points = append(points, models.CandlePoint{
			Timestamp: entry.Timestamp,
			Open:      candle.Open,
			High:      candle.High,
			Low:       candle.Low,
			Close:     candle.Close,
			Volume:    candle.Volume,
		})
	}
	return points
}

// ExtractEquityCurve emits one point per log entry from the post-bar
// snapshot. Entries with no snapshot contribute a zero point so the curve
// stays total-length and aligned with the bar axis.
func ExtractEquityCurve(log []models.LogEntry) []models.SeriesPoint {
	return snapshotSeries(log, func(s *models.Snapshot) float64 { return s.Equity })
}

// ExtractCashCurve is the cash counterpart of ExtractEquityCurve.
func ExtractCashCurve(log []models.LogEntry) []models.SeriesPoint {
	return snapshotSeries(log, func(s *models.Snapshot) float64 { return s.Cash })
}

// ExtractPositionCurve emits the signed position for one symbol at every
// bar: zero when the symbol is flat or absent, negated magnitude for SHORT.
// Total-length by construction so it plots directly against the equity
// curve's time axis.
func ExtractPositionCurve(log []models.LogEntry, symbol string) []models.SeriesPoint {
	points := make([]models.SeriesPoint, 0, len(log))
	for _, entry := range sortedByTime(log) {
		value := 0.0
		if entry.SnapshotAfter != nil {
			for _, pos := range entry.SnapshotAfter.Positions {
				if pos.Symbol == symbol {
					value = pos.SignedQuantity()
					break
				}
			}
		}
		points = append(points, models.SeriesPoint{Timestamp: entry.Timestamp, Value: value})
	}
	return points
}

// ReconstructPositionCurve rebuilds the signed position-over-time series for
// one symbol from filled and liquidated orders alone. It is the alternative
// derivation path for logs whose entries carry no per-bar snapshot, and
// doubles as a cross-check against ExtractPositionCurve: for a consistent
// log both series agree at every order timestamp.
func ReconstructPositionCurve(orders []models.Order, symbol string) []models.SeriesPoint {
	points := make([]models.SeriesPoint, 0, len(orders))
	running := 0.0
	for _, order := range orders {
		if order.Symbol != symbol || !order.CountsAsTrade() {
			continue
		}
		running += order.SignedQuantity()
		points = append(points, models.SeriesPoint{Timestamp: order.Timestamp, Value: running})
	}
	return points
}

// Symbols returns the distinct symbols seen anywhere in the log (candles,
// outcomes, or snapshot positions), sorted for deterministic output.
func Symbols(log []models.LogEntry) []string {
	seen := make(map[string]struct{})
	for _, entry := range log {
		for symbol := range entry.Candles {
			seen[symbol] = struct{}{}
		}
		for _, outcome := range entry.ExecutionOutcomes {
			if sym := outcomeSymbol(outcome); sym != symbolUnknown {
				seen[sym] = struct{}{}
			}
		}
		if entry.SnapshotAfter != nil {
			for _, pos := range entry.SnapshotAfter.Positions {
				seen[pos.Symbol] = struct{}{}
			}
		}
	}

	symbols := make([]string, 0, len(seen))
	for symbol := range seen {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

func snapshotSeries(log []models.LogEntry, value func(*models.Snapshot) float64) []models.SeriesPoint {
	points := make([]models.SeriesPoint, 0, len(log))
	for _, entry := range sortedByTime(log) {
		v := 0.0
		if entry.SnapshotAfter != nil {
			v = value(entry.SnapshotAfter)
		}
		points = append(points, models.SeriesPoint{Timestamp: entry.Timestamp, Value: v})
	}
	return points
}

// sortedByTime returns the log in chronological order. Engines promise an
// ordered log, but the extractors sort defensively rather than trusting it;
// the sort is stable so equal-timestamp entries keep their relative order.
// The input slice is never reordered in place.
func sortedByTime(log []models.LogEntry) []models.LogEntry {
	if sort.SliceIsSorted(log, func(i, j int) bool { return log[i].Timestamp < log[j].Timestamp }) {
		return log
	}
	sorted := make([]models.LogEntry, len(log))
	copy(sorted, log)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })
	return sorted
}
