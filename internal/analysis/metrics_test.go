package analysis

import (
	"math"
	"testing"

	"github.com/yourusername/backtest-viewer/internal/models"
)

func TestComputeMetricsEmptyCurve(t *testing.T) {
	if m := ComputeMetrics(nil, nil, 1000); m != nil {
		t.Fatalf("empty curve must yield nil metrics, got %+v", m)
	}
}

func TestComputeMetricsWithFallback(t *testing.T) {
	curve := []models.SeriesPoint{
		{Timestamp: 1, Value: 1000},
		{Timestamp: 2, Value: 1100},
	}
	m := ComputeMetrics(curve, nil, 1000)
	if m == nil {
		t.Fatalf("expected metrics")
	}
	if m.InitialEquity != 1000 || m.FinalEquity != 1100 {
		t.Fatalf("unexpected equity endpoints: %v %v", m.InitialEquity, m.FinalEquity)
	}
	if math.Abs(m.TotalReturnPct-10) > 1e-9 {
		t.Fatalf("expected 10%% return, got %v", m.TotalReturnPct)
	}
	if m.TotalReturnAbs != 100 {
		t.Fatalf("expected absolute return 100, got %v", m.TotalReturnAbs)
	}
	if m.TotalTrades != 0 || m.TotalFees != 0 {
		t.Fatalf("no orders means no trades or fees, got %d / %v", m.TotalTrades, m.TotalFees)
	}
}

func TestComputeMetricsZeroInitial(t *testing.T) {
	curve := []models.SeriesPoint{{Timestamp: 1, Value: 0}, {Timestamp: 2, Value: 50}}
	m := ComputeMetrics(curve, nil, 0)
	if m.TotalReturnPct != 0 {
		t.Fatalf("zero initial equity must not divide, got %v", m.TotalReturnPct)
	}
	if m.TotalReturnAbs != 50 {
		t.Fatalf("absolute return still defined, got %v", m.TotalReturnAbs)
	}
}

func TestComputeMetricsTradeCounting(t *testing.T) {
	curve := []models.SeriesPoint{{Timestamp: 1, Value: 1000}}
	orders := []models.Order{
		{Status: models.StatusFilled, Fee: 0.5},
		{Status: models.StatusLiquidated, Fee: 0.7},
		{Status: models.StatusRejected, Fee: 99},
	}
	m := ComputeMetrics(curve, orders, 0)
	if m.TotalTrades != 2 {
		t.Fatalf("only filled and liquidated count, got %d", m.TotalTrades)
	}
	if math.Abs(m.TotalFees-1.2) > 1e-9 {
		t.Fatalf("rejected fees must be excluded, got %v", m.TotalFees)
	}
}

func TestMaxDrawdownFlatCurve(t *testing.T) {
	curve := []models.SeriesPoint{
		{Timestamp: 1, Value: 100},
		{Timestamp: 2, Value: 100},
		{Timestamp: 3, Value: 100},
	}
	m := ComputeMetrics(curve, nil, 0)
	if m.MaxDrawdownPct != 0 {
		t.Fatalf("flat curve has zero drawdown, got %v", m.MaxDrawdownPct)
	}
}

func TestMaxDrawdownRecovery(t *testing.T) {
	curve := []models.SeriesPoint{
		{Timestamp: 1, Value: 100},
		{Timestamp: 2, Value: 80},
		{Timestamp: 3, Value: 120},
	}
	m := ComputeMetrics(curve, nil, 0)
	if math.Abs(m.MaxDrawdownPct-20) > 1e-9 {
		t.Fatalf("expected 20%% drawdown, got %v", m.MaxDrawdownPct)
	}
}

func TestMaxDrawdownNonPositivePeak(t *testing.T) {
	curve := []models.SeriesPoint{
		{Timestamp: 1, Value: -50},
		{Timestamp: 2, Value: -80},
		{Timestamp: 3, Value: 100},
		{Timestamp: 4, Value: 90},
	}
	m := ComputeMetrics(curve, nil, 0)
	if math.IsNaN(m.MaxDrawdownPct) || math.IsInf(m.MaxDrawdownPct, 0) {
		t.Fatalf("non-positive peaks leaked into drawdown: %v", m.MaxDrawdownPct)
	}
	if math.Abs(m.MaxDrawdownPct-10) > 1e-9 {
		t.Fatalf("drawdown should only start after a positive peak, got %v", m.MaxDrawdownPct)
	}
}

func TestComputeFinalPositions(t *testing.T) {
	orders := []models.Order{
		{Symbol: "BTC-USD", Side: models.SideBuy, Status: models.StatusFilled, Quantity: 2},
		{Symbol: "BTC-USD", Side: models.SideSell, Status: models.StatusFilled, Quantity: 0.5},
		{Symbol: "ETH-USD", Side: models.SideSell, Status: models.StatusLiquidated, Quantity: 3},
		{Symbol: "AAPL", Side: models.SideSell, Status: models.StatusRejected, Quantity: 10},
	}
	positions := ComputeFinalPositions(orders)
	if len(positions) != 2 {
		t.Fatalf("expected 2 open positions, got %d", len(positions))
	}
	if positions[0].Symbol != "BTC-USD" || positions[0].Quantity != 1.5 {
		t.Fatalf("unexpected BTC position: %+v", positions[0])
	}
	if positions[1].Symbol != "ETH-USD" || positions[1].Quantity != -3 {
		t.Fatalf("short position should be negative: %+v", positions[1])
	}
}

func TestComputeFinalPositionsEpsilon(t *testing.T) {
	orders := []models.Order{
		{Symbol: "BTC-USD", Side: models.SideBuy, Status: models.StatusFilled, Quantity: 0.1},
		{Symbol: "BTC-USD", Side: models.SideSell, Status: models.StatusFilled, Quantity: 0.1},
	}
	positions := ComputeFinalPositions(orders)
	if len(positions) != 0 {
		t.Fatalf("residual below epsilon must be dropped, got %+v", positions)
	}
}
