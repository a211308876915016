package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/yourusername/backtest-viewer/internal/analysis"
	"github.com/yourusername/backtest-viewer/internal/models"
	"github.com/yourusername/backtest-viewer/internal/service"
)

const dateLayout = "2006-01-02"

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// IngestResponse acknowledges a stored run without echoing the raw log back.
type IngestResponse struct {
	ID             uuid.UUID `json:"id"`
	Label          string    `json:"label"`
	Strategy       string    `json:"strategy,omitempty"`
	FinalEquity    float64   `json:"final_equity"`
	TotalReturnPct float64   `json:"total_return_pct"`
	MaxDrawdownPct float64   `json:"max_drawdown_pct"`
	TotalTrades    int       `json:"total_trades"`
}

// handleIngestRun accepts a raw execution log as the request body. Label,
// strategy and initial cash ride in query parameters so the body stays the
// engine's untouched output.
func (s *Server) handleIngestRun(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(s.cfg.MaxLogSizeMB) * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "log too large",
				fmt.Sprintf("execution logs are capped at %d MB", s.cfg.MaxLogSizeMB))
			return
		}
		respondError(w, http.StatusBadRequest, "failed to read body", err.Error())
		return
	}

	initialCash := 0.0
	if v := r.URL.Query().Get("initial_cash"); v != "" {
		initialCash, err = strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid initial_cash", err.Error())
			return
		}
	}

	run, err := s.svc.IngestRun(r.Context(),
		r.URL.Query().Get("label"),
		r.URL.Query().Get("strategy"),
		initialCash, raw)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	respondJSONStatus(w, http.StatusCreated, IngestResponse{
		ID:             run.ID,
		Label:          run.Label,
		Strategy:       run.Strategy,
		FinalEquity:    run.FinalEquity,
		TotalReturnPct: run.TotalReturnPct,
		MaxDrawdownPct: run.MaxDrawdownPct,
		TotalTrades:    run.TotalTrades,
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "invalid limit", "")
			return
		}
		limit = parsed
	}

	runs, err := s.svc.ListRuns(r.Context(), limit)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}

	run, err := s.svc.GetRun(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}

	if err := s.svc.DeleteRun(r.Context(), id); err != nil {
		s.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}

	view, err := s.svc.Analysis(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, view)
}

// handleGetOrders filters by symbol ("ALL" or empty means every symbol) and
// an inclusive start/end date pair in YYYY-MM-DD form.
func (s *Server) handleGetOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}

	filter := analysis.OrderFilter{Symbol: r.URL.Query().Get("symbol")}

	start, err := parseDateParam(r, "start")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid start date", "expected YYYY-MM-DD")
		return
	}
	end, err := parseDateParam(r, "end")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid end date", "expected YYYY-MM-DD")
		return
	}
	filter.StartDate = start
	filter.EndDate = end

	view, err := s.svc.Orders(r.Context(), id, filter)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, view)
}

func (s *Server) handleGetEquityCurve(w http.ResponseWriter, r *http.Request) {
	s.respondCurve(w, r, func(view *service.RunAnalysis) []models.SeriesPoint {
		return view.EquityCurve
	})
}

func (s *Server) handleGetCashCurve(w http.ResponseWriter, r *http.Request) {
	s.respondCurve(w, r, func(view *service.RunAnalysis) []models.SeriesPoint {
		return view.CashCurve
	})
}

// respondCurve serves one series out of the cached analysis view, so equity
// and cash requests share a single derivation.
func (s *Server) respondCurve(w http.ResponseWriter, r *http.Request, pick func(*service.RunAnalysis) []models.SeriesPoint) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}

	view, err := s.svc.Analysis(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, pick(view))
}

func (s *Server) handleGetCandles(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}

	candles, err := s.svc.Candles(r.Context(), id, mux.Vars(r)["symbol"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, candles)
}

func (s *Server) handleGetPositionSeries(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}

	series, err := s.svc.PositionSeries(r.Context(), id, mux.Vars(r)["symbol"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, series)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{
		"status":    "ok",
		"service":   "backtest-viewer",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"service": "ok"}
	healthy := true

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			healthy = false
			checks["database"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["database"] = "ok"
		}
	}

	status := "ok"
	if !healthy {
		status = "not_ready"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	respondJSON(w, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

func parseDateParam(r *http.Request, param string) (*time.Time, error) {
	v := r.URL.Query().Get(param)
	if v == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(dateLayout, v, time.UTC)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (s *Server) runID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid run id", err.Error())
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, "run not found", "")
	case errors.Is(err, models.ErrLabelRequired),
		errors.Is(err, models.ErrEmptyLog),
		errors.Is(err, models.ErrMalformedLog):
		respondError(w, http.StatusBadRequest, "invalid request", err.Error())
	default:
		s.logger.WithError(err).Error("Request failed")
		respondError(w, http.StatusInternalServerError, "internal error", "")
	}
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondJSONStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, errMsg, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: errMsg, Message: message})
}
