package analysis

import (
	"math"
	"sort"

	"github.com/yourusername/backtest-viewer/internal/models"
)

// zeroPositionEpsilon is the magnitude below which a net position is
// considered closed. Repeated float64 additions over a long order history
// leave residues around 1e-12..1e-9; 1e-6 clears those without hiding any
// real fractional position. Tunable policy, not a hard law.
const zeroPositionEpsilon = 1e-6

// ComputeMetrics aggregates the equity curve and normalized order list into
// a single performance snapshot. Returns nil when the curve is empty — the
// "no run data yet" state, deliberately distinct from zero metrics.
//
// initialCashFallback overrides the first curve point as the return
// baseline when it is meaningfully non-zero; a viewer configured with the
// engine's starting cash gets returns measured against that even when the
// first bar's snapshot already includes PnL.
func ComputeMetrics(equityCurve []models.SeriesPoint, orders []models.Order, initialCashFallback float64) *models.Metrics {
	if len(equityCurve) == 0 {
		return nil
	}

	initial := equityCurve[0].Value
	if initialCashFallback != 0 && !math.IsNaN(initialCashFallback) {
		initial = initialCashFallback
	}
	final := equityCurve[len(equityCurve)-1].Value

	m := &models.Metrics{
		InitialEquity:  initial,
		FinalEquity:    final,
		TotalReturnAbs: final - initial,
		MaxDrawdownPct: maxDrawdown(equityCurve) * 100,
	}
	if initial != 0 {
		m.TotalReturnPct = (final - initial) / initial * 100
	}

	for _, order := range orders {
		if !order.CountsAsTrade() {
			continue
		}
		m.TotalTrades++
		m.TotalFees += order.Fee
	}

	return m
}

// maxDrawdown scans the curve once, left to right, tracking the running
// peak and the worst peak-to-trough decline as a fraction. Points reached
// while the peak is still non-positive are skipped: a drawdown from a zero
// or negative peak is undefined and would otherwise leak Inf/NaN into the
// output.
func maxDrawdown(curve []models.SeriesPoint) float64 {
	peak := math.Inf(-1)
	maxDD := 0.0
	for _, point := range curve {
		if point.Value > peak {
			peak = point.Value
		}
		if peak <= 0 {
			continue
		}
		drawdown := (peak - point.Value) / peak
		if drawdown > maxDD {
			maxDD = drawdown
		}
	}
	return maxDD
}

// ComputeFinalPositions nets the signed quantities of filled and liquidated
// orders per symbol. Symbols whose net magnitude lands within
// zeroPositionEpsilon of zero (or goes NaN through bad input) are dropped —
// they are closed positions plus float noise, not holdings. Output is
// symbol-sorted for deterministic rendering.
func ComputeFinalPositions(orders []models.Order) []models.Position {
	net := make(map[string]float64)
	for _, order := range orders {
		if !order.CountsAsTrade() {
			continue
		}
		net[order.Symbol] += order.SignedQuantity()
	}

	positions := make([]models.Position, 0, len(net))
	for symbol, quantity := range net {
		if math.IsNaN(quantity) || math.Abs(quantity) < zeroPositionEpsilon {
			continue
		}
		positions = append(positions, models.Position{Symbol: symbol, Quantity: quantity})
	}

	sort.Slice(positions, func(i, j int) bool { return positions[i].Symbol < positions[j].Symbol })
	return positions
}
