package analysis

import (
	"testing"
	"time"

	"github.com/yourusername/backtest-viewer/internal/models"
)

func filterFixture() []models.Order {
	return []models.Order{
		{ID: "1", Symbol: "BTC-USD", Timestamp: models.NewTimestamp(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))},
		{ID: "2", Symbol: "ETH-USD", Timestamp: models.NewTimestamp(time.Date(2024, 3, 2, 23, 59, 0, 0, time.UTC))},
		{ID: "3", Symbol: "BTC-USD", Timestamp: models.NewTimestamp(time.Date(2024, 3, 3, 0, 0, 1, 0, time.UTC))},
	}
}

func TestFilterOrdersAllIsIdentity(t *testing.T) {
	orders := filterFixture()
	for _, symbol := range []string{"ALL", ""} {
		filtered := FilterOrders(orders, OrderFilter{Symbol: symbol})
		if len(filtered) != len(orders) {
			t.Fatalf("symbol %q must pass everything, got %d", symbol, len(filtered))
		}
		for i := range orders {
			if filtered[i].ID != orders[i].ID {
				t.Fatalf("order %d reordered under no-op filter", i)
			}
		}
	}
}

func TestFilterOrdersBySymbol(t *testing.T) {
	filtered := FilterOrders(filterFixture(), OrderFilter{Symbol: "BTC-USD"})
	if len(filtered) != 2 {
		t.Fatalf("expected 2 BTC orders, got %d", len(filtered))
	}
	if filtered[0].ID != "1" || filtered[1].ID != "3" {
		t.Fatalf("wrong orders or order lost: %s %s", filtered[0].ID, filtered[1].ID)
	}
}

func TestFilterOrdersInclusiveDates(t *testing.T) {
	start := time.Date(2024, 3, 2, 15, 30, 0, 0, time.UTC)
	end := time.Date(2024, 3, 3, 1, 0, 0, 0, time.UTC)
	filtered := FilterOrders(filterFixture(), OrderFilter{StartDate: &start, EndDate: &end})
	if len(filtered) != 2 {
		t.Fatalf("date bounds are inclusive at day granularity, got %d", len(filtered))
	}
	if filtered[0].ID != "2" || filtered[1].ID != "3" {
		t.Fatalf("wrong window: %s %s", filtered[0].ID, filtered[1].ID)
	}
}

func TestFilterOrdersDoesNotMutate(t *testing.T) {
	orders := filterFixture()
	FilterOrders(orders, OrderFilter{Symbol: "ETH-USD"})
	if orders[0].ID != "1" || len(orders) != 3 {
		t.Fatalf("input mutated by FilterOrders")
	}
}

func TestFilterThenMetricsRecompute(t *testing.T) {
	orders := []models.Order{
		{Symbol: "BTC-USD", Status: models.StatusFilled, Fee: 1, Timestamp: 1},
		{Symbol: "ETH-USD", Status: models.StatusFilled, Fee: 2, Timestamp: 2},
	}
	curve := []models.SeriesPoint{{Timestamp: 1, Value: 1000}}
	filtered := FilterOrders(orders, OrderFilter{Symbol: "ETH-USD"})
	m := ComputeMetrics(curve, filtered, 0)
	if m.TotalTrades != 1 || m.TotalFees != 2 {
		t.Fatalf("metrics over filtered orders wrong: %d trades, %v fees", m.TotalTrades, m.TotalFees)
	}
}
