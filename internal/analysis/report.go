package analysis

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/backtest-viewer/internal/models"
)

// GenerateConsoleReport formats metrics and open positions for terminal output
func GenerateConsoleReport(metrics *models.Metrics, positions []models.Position) string {
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	if metrics == nil {
		builder.WriteString("No equity data in log\n")
		return builder.String()
	}
	builder.WriteString(fmt.Sprintf("Initial Equity: %.2f\n", metrics.InitialEquity))
	builder.WriteString(fmt.Sprintf("Final Equity: %.2f\n", metrics.FinalEquity))
	builder.WriteString(fmt.Sprintf("Total Return: %.2f%%\n", metrics.TotalReturnPct))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f%%\n", metrics.MaxDrawdownPct))
	builder.WriteString(fmt.Sprintf("Total Trades: %d\n", metrics.TotalTrades))
	builder.WriteString(fmt.Sprintf("Total Fees: %.2f\n", metrics.TotalFees))
	if len(positions) > 0 {
		builder.WriteString("Open Positions:\n")
		for _, pos := range positions {
			builder.WriteString(fmt.Sprintf("  %s: %+.6f\n", pos.Symbol, pos.Quantity))
		}
	}
	return builder.String()
}

// GenerateHTMLReport creates a simple HTML report
func GenerateHTMLReport(metrics *models.Metrics, positions []models.Position, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	if metrics == nil {
		return os.WriteFile(outputPath, []byte("<!DOCTYPE html>\n<html><body><p>No equity data in log</p></body></html>"), 0o644)
	}

	var positionRows strings.Builder
	for _, pos := range positions {
		positionRows.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%+.6f</td></tr>\n", pos.Symbol, pos.Quantity))
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Backtest Report</title></head>
<body>
<h1>Backtest Report</h1>
<p><strong>Initial Equity:</strong> %.2f</p>
<p><strong>Final Equity:</strong> %.2f</p>
<p><strong>Total Return:</strong> %.2f%%</p>
<p><strong>Max Drawdown:</strong> %.2f%%</p>
<p><strong>Total Trades:</strong> %d</p>
<p><strong>Total Fees:</strong> %.2f</p>
<table><tr><th>Symbol</th><th>Position</th></tr>
%s</table>
</body>
</html>`,
		metrics.InitialEquity,
		metrics.FinalEquity,
		metrics.TotalReturnPct,
		metrics.MaxDrawdownPct,
		metrics.TotalTrades,
		metrics.TotalFees,
		positionRows.String(),
	)

	return os.WriteFile(outputPath, []byte(html), 0o644)
}

// GenerateCSVExport exports key metrics for spreadsheets
func GenerateCSVExport(metrics *models.Metrics, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	if metrics == nil {
		return os.WriteFile(outputPath, []byte("metric,value\n"), 0o644)
	}
	csv := "metric,value\n" +
		fmt.Sprintf("initial_equity,%.4f\n", metrics.InitialEquity) +
		fmt.Sprintf("final_equity,%.4f\n", metrics.FinalEquity) +
		fmt.Sprintf("total_return_pct,%.4f\n", metrics.TotalReturnPct) +
		fmt.Sprintf("max_drawdown_pct,%.4f\n", metrics.MaxDrawdownPct) +
		fmt.Sprintf("total_trades,%d\n", metrics.TotalTrades) +
		fmt.Sprintf("total_fees,%.4f\n", metrics.TotalFees)
	return os.WriteFile(outputPath, []byte(csv), 0o644)
}

// EquityCurveCSV exports a series to CSV with RFC3339 timestamps
func EquityCurveCSV(curve []models.SeriesPoint) string {
	var buf bytes.Buffer
	buf.WriteString("time,value\n")
	for _, point := range curve {
		buf.WriteString(point.Timestamp.Time().Format(time.RFC3339))
		buf.WriteString(",")
		buf.WriteString(formatFloat(point.Value))
		buf.WriteString("\n")
	}
	return buf.String()
}

// OrdersCSV exports the normalized order history to CSV
func OrdersCSV(orders []models.Order) string {
	var buf bytes.Buffer
	buf.WriteString("id,time,symbol,side,type,status,quantity,price,fee,reason\n")
	for _, order := range orders {
		buf.WriteString(order.ID)
		buf.WriteString(",")
		buf.WriteString(order.Timestamp.Time().Format(time.RFC3339))
		buf.WriteString(",")
		buf.WriteString(order.Symbol)
		buf.WriteString(",")
		buf.WriteString(string(order.Side))
		buf.WriteString(",")
		buf.WriteString(string(order.Type))
		buf.WriteString(",")
		buf.WriteString(string(order.Status))
		buf.WriteString(",")
		buf.WriteString(formatFloat(order.Quantity))
		buf.WriteString(",")
		buf.WriteString(formatFloat(order.Price))
		buf.WriteString(",")
		buf.WriteString(formatFloat(order.Fee))
		buf.WriteString(",")
		buf.WriteString(strings.ReplaceAll(order.Reason, ",", ";"))
		buf.WriteString("\n")
	}
	return buf.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
