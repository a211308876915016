package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/backtest-viewer/internal/analysis"
	"github.com/yourusername/backtest-viewer/internal/logger"
	"github.com/yourusername/backtest-viewer/internal/metrics"
	"github.com/yourusername/backtest-viewer/internal/models"
	"github.com/yourusername/backtest-viewer/internal/repository"
)

// Notifier receives run lifecycle events for live listeners. The websocket
// hub implements it; tests pass nil.
type Notifier interface {
	NotifyRunEvent(event string, run *models.BacktestRun)
}

// RunAnalysis is the full derived view of one run: everything the viewer
// needs to render the dashboard in a single payload.
type RunAnalysis struct {
	Run            *models.BacktestRun  `json:"run"`
	Orders         []models.Order       `json:"orders"`
	EquityCurve    []models.SeriesPoint `json:"equity_curve"`
	CashCurve      []models.SeriesPoint `json:"cash_curve"`
	Symbols        []string             `json:"symbols"`
	Metrics        *models.Metrics      `json:"metrics"`
	FinalPositions []models.Position    `json:"final_positions"`
}

// OrdersView is a filtered order list with metrics recomputed over exactly
// the filtered subset.
type OrdersView struct {
	Orders  []models.Order  `json:"orders"`
	Metrics *models.Metrics `json:"metrics"`
}

// ResultService owns run lifecycle and the derivation pipeline.
type ResultService struct {
	runs            repository.RunRepository
	candles         repository.CandleRepository
	cache           *ViewCache
	initialFallback float64
	notifier        Notifier
	ingestLogger    *logger.IngestLogger
	analysisLogger  *logger.AnalysisLogger
}

// NewResultService creates the result service.
func NewResultService(
	runs repository.RunRepository,
	candles repository.CandleRepository,
	cache *ViewCache,
	initialCashFallback float64,
	notifier Notifier,
	baseLogger *logrus.Logger,
) *ResultService {
	return &ResultService{
		runs:            runs,
		candles:         candles,
		cache:           cache,
		initialFallback: initialCashFallback,
		notifier:        notifier,
		ingestLogger:    logger.NewIngestLogger(baseLogger),
		analysisLogger:  logger.NewAnalysisLogger(baseLogger),
	}
}

// IngestRun decodes, analyzes and stores an uploaded execution log. The
// headline metrics are denormalized onto the run row so listings never
// re-run the pipeline. initialCash overrides the configured fallback when
// the uploader knows the engine's starting cash.
func (s *ResultService) IngestRun(ctx context.Context, label, strategy string, initialCash float64, raw []byte) (*models.BacktestRun, error) {
	if label == "" {
		return nil, models.ErrLabelRequired
	}

	decodeStart := time.Now()
	log, err := DecodeLog(raw)
	if err != nil {
		metrics.RecordDecodeFailure()
		s.ingestLogger.LogDecodeFailure(label, int64(len(raw)), err.Error())
		return nil, err
	}
	decodeDuration := time.Since(decodeStart)

	fallback := s.initialFallback
	if initialCash != 0 {
		fallback = initialCash
	}

	normStart := time.Now()
	orders := analysis.Normalize(log)
	recordNormalization(orders, time.Since(normStart))

	equity := analysis.ExtractEquityCurve(log)
	m := analysis.ComputeMetrics(equity, orders, fallback)

	run := &models.BacktestRun{
		ID:          uuid.New(),
		Label:       label,
		Strategy:    strategy,
		InitialCash: fallback,
		RawLog:      json.RawMessage(raw),
		HasCandles:  hasCandles(log),
		CreatedAt:   time.Now().UTC(),
	}
	if m != nil {
		run.FinalEquity = m.FinalEquity
		run.TotalReturnPct = m.TotalReturnPct
		run.MaxDrawdownPct = m.MaxDrawdownPct
		run.TotalTrades = m.TotalTrades
	}

	if err := s.runs.Save(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to store run: %w", err)
	}

	metrics.RecordRunIngested(float64(len(raw)), decodeDuration.Seconds())
	if m != nil {
		metrics.UpdateRunDrawdown(run.ID.String(), m.MaxDrawdownPct)
		s.analysisLogger.LogMetricsComputed(run.ID.String(), m.TotalReturnPct, m.MaxDrawdownPct, m.TotalTrades)
	}
	s.ingestLogger.LogRunIngested(run.ID.String(), label, strategy, len(log), len(orders), int64(len(raw)))

	if s.notifier != nil {
		s.notifier.NotifyRunEvent("run_ingested", run)
	}
	return run, nil
}

// GetRun retrieves a stored run including its raw log.
func (s *ResultService) GetRun(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error) {
	return s.runs.GetByID(ctx, id)
}

// ListRuns retrieves recent run summaries.
func (s *ResultService) ListRuns(ctx context.Context, limit int) ([]*models.BacktestRun, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.runs.GetLatest(ctx, limit)
}

// DeleteRun removes a run and drops its cached views.
func (s *ResultService) DeleteRun(ctx context.Context, id uuid.UUID) error {
	if err := s.runs.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidateRun(id)
	metrics.RecordRunDeleted()
	s.ingestLogger.LogRunDeleted(id.String(), "api")
	if s.notifier != nil {
		s.notifier.NotifyRunEvent("run_deleted", &models.BacktestRun{ID: id})
	}
	return nil
}

// Sweep removes all but the newest keep runs and reports how many went.
func (s *ResultService) Sweep(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	removed, err := s.runs.DeleteOlderThan(ctx, keep)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.ingestLogger.LogRetentionSweep(keep+removed, removed)
	}
	return removed, nil
}

// Analysis derives (or serves from cache) the full dashboard view of a run.
func (s *ResultService) Analysis(ctx context.Context, runID uuid.UUID) (*RunAnalysis, error) {
	key := ViewKey{RunID: runID, View: "analysis"}
	if cached, ok := s.cache.Get(key); ok {
		s.analysisLogger.LogCacheOutcome(runID.String(), "analysis", true)
		return cached.(*RunAnalysis), nil
	}
	s.analysisLogger.LogCacheOutcome(runID.String(), "analysis", false)

	run, log, err := s.loadLog(ctx, runID)
	if err != nil {
		return nil, err
	}

	normStart := time.Now()
	orders := analysis.Normalize(log)
	duration := time.Since(normStart)
	recordNormalization(orders, duration)
	s.analysisLogger.LogNormalization(runID.String(), len(log), len(orders), duration)

	equity := analysis.ExtractEquityCurve(log)
	view := &RunAnalysis{
		Run:            run,
		Orders:         orders,
		EquityCurve:    equity,
		CashCurve:      analysis.ExtractCashCurve(log),
		Symbols:        analysis.Symbols(log),
		Metrics:        analysis.ComputeMetrics(equity, orders, run.InitialCash),
		FinalPositions: analysis.ComputeFinalPositions(orders),
	}

	s.cache.Set(key, view)
	return view, nil
}

// Orders returns the filtered order list with metrics recomputed over the
// filtered subset against the run's full equity curve.
func (s *ResultService) Orders(ctx context.Context, runID uuid.UUID, filter analysis.OrderFilter) (*OrdersView, error) {
	key := ViewKey{RunID: runID, View: "orders", Filter: filterKey(filter)}
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*OrdersView), nil
	}

	full, err := s.Analysis(ctx, runID)
	if err != nil {
		return nil, err
	}

	metrics.RecordViewRequest("orders")
	filtered := analysis.FilterOrders(full.Orders, filter)
	view := &OrdersView{
		Orders:  filtered,
		Metrics: analysis.ComputeMetrics(full.EquityCurve, filtered, full.Run.InitialCash),
	}

	s.cache.Set(key, view)
	return view, nil
}

// Candles returns the OHLCV series for one symbol, preferring the embedded
// log data and falling back to backfilled provider candles.
func (s *ResultService) Candles(ctx context.Context, runID uuid.UUID, symbol string) ([]models.CandlePoint, error) {
	metrics.RecordViewRequest("candles")

	run, log, err := s.loadLog(ctx, runID)
	if err != nil {
		return nil, err
	}

	if run.HasCandles {
		if candles := analysis.ExtractCandles(log, symbol); len(candles) > 0 {
			return candles, nil
		}
	}
	return s.candles.GetBySymbol(ctx, runID, symbol)
}

// PositionSeries returns the signed position curve for one symbol. Logs with
// per-bar snapshots use them directly; snapshotless logs get the series
// reconstructed from the normalized orders.
func (s *ResultService) PositionSeries(ctx context.Context, runID uuid.UUID, symbol string) ([]models.SeriesPoint, error) {
	metrics.RecordViewRequest("position")

	_, log, err := s.loadLog(ctx, runID)
	if err != nil {
		return nil, err
	}

	if hasSnapshots(log) {
		return analysis.ExtractPositionCurve(log, symbol), nil
	}
	return analysis.ReconstructPositionCurve(analysis.Normalize(log), symbol), nil
}

func (s *ResultService) loadLog(ctx context.Context, runID uuid.UUID) (*models.BacktestRun, []models.LogEntry, error) {
	run, err := s.runs.GetByID(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	log, err := DecodeLog(run.RawLog)
	if err != nil {
		return nil, nil, fmt.Errorf("stored log for run %s no longer decodes: %w", runID, err)
	}
	return run, log, nil
}

func filterKey(filter analysis.OrderFilter) string {
	start, end := "", ""
	if filter.StartDate != nil {
		start = filter.StartDate.UTC().Format("2006-01-02")
	}
	if filter.EndDate != nil {
		end = filter.EndDate.UTC().Format("2006-01-02")
	}
	return fmt.Sprintf("%s|%s|%s", filter.Symbol, start, end)
}

func hasCandles(log []models.LogEntry) bool {
	for _, entry := range log {
		if len(entry.Candles) > 0 {
			return true
		}
	}
	return false
}

func hasSnapshots(log []models.LogEntry) bool {
	for _, entry := range log {
		if entry.SnapshotAfter != nil {
			return true
		}
	}
	return false
}

func recordNormalization(orders []models.Order, duration time.Duration) {
	var filled, liquidated, rejected int
	for _, order := range orders {
		switch order.Status {
		case models.StatusFilled:
			filled++
		case models.StatusLiquidated:
			liquidated++
		case models.StatusRejected:
			rejected++
		}
	}
	metrics.RecordNormalization(duration.Seconds(), filled, liquidated, rejected)
}
