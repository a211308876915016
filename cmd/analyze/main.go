// Package main provides the entry point for the offline analysis CLI.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourusername/backtest-viewer/internal/analysis"
	"github.com/yourusername/backtest-viewer/internal/service"
)

var (
	initialCash float64
	htmlOutput  string
	csvOutput   string
	ordersCSV   string
	equityCSV   string
)

func init() {
	rootCmd.Flags().Float64Var(&initialCash, "initial-cash", 10000, "Starting cash when the log carries no equity snapshot for it")
	rootCmd.Flags().StringVar(&htmlOutput, "html", "", "Write an HTML report to this path")
	rootCmd.Flags().StringVar(&csvOutput, "csv", "", "Write a metrics CSV to this path")
	rootCmd.Flags().StringVar(&ordersCSV, "orders-csv", "", "Write the normalized orders as CSV to this path")
	rootCmd.Flags().StringVar(&equityCSV, "equity-csv", "", "Write the equity curve as CSV to this path")
}

var rootCmd = &cobra.Command{
	Use:   "analyze <execution-log.json>",
	Short: "Analyze a raw backtest execution log without a server",
	Long: `Decodes an engine execution log, normalizes its orders, and prints the
performance report. Optional flags export HTML and CSV views.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalysis(args[0])
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runAnalysis(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read log file: %w", err)
	}

	entries, err := service.DecodeLog(raw)
	if err != nil {
		return fmt.Errorf("failed to decode log: %w", err)
	}

	orders := analysis.Normalize(entries)
	equity := analysis.ExtractEquityCurve(entries)
	metrics := analysis.ComputeMetrics(equity, orders, initialCash)
	positions := analysis.ComputeFinalPositions(orders)

	fmt.Println(analysis.GenerateConsoleReport(metrics, positions))

	if htmlOutput != "" {
		if err := analysis.GenerateHTMLReport(metrics, positions, htmlOutput); err != nil {
			return fmt.Errorf("failed to write HTML report: %w", err)
		}
		fmt.Printf("HTML report written to %s\n", htmlOutput)
	}
	if csvOutput != "" {
		if err := analysis.GenerateCSVExport(metrics, csvOutput); err != nil {
			return fmt.Errorf("failed to write metrics CSV: %w", err)
		}
		fmt.Printf("Metrics CSV written to %s\n", csvOutput)
	}
	if ordersCSV != "" {
		if err := os.WriteFile(ordersCSV, []byte(analysis.OrdersCSV(orders)), 0o644); err != nil {
			return fmt.Errorf("failed to write orders CSV: %w", err)
		}
		fmt.Printf("Orders CSV written to %s\n", ordersCSV)
	}
	if equityCSV != "" {
		if err := os.WriteFile(equityCSV, []byte(analysis.EquityCurveCSV(equity)), 0o644); err != nil {
			return fmt.Errorf("failed to write equity CSV: %w", err)
		}
		fmt.Printf("Equity CSV written to %s\n", equityCSV)
	}

	return nil
}
