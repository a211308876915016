// Package api exposes the viewer over HTTP: run upload and lifecycle, the
// derived analysis views, health probes, and a websocket feed of run events.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/backtest-viewer/internal/config"
	"github.com/yourusername/backtest-viewer/internal/service"
)

// DatabasePinger defines the interface for checking database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// Server handles REST API and WebSocket connections
type Server struct {
	svc        *service.ResultService
	router     *mux.Router
	hub        *Hub
	db         DatabasePinger
	logger     *logrus.Logger
	cfg        config.ServerConfig
	httpServer *http.Server
}

// NewServer creates a new API server. The hub is taken as a parameter so the
// result service can be wired to it as its notifier before the server exists;
// passing nil creates a fresh one.
func NewServer(svc *service.ResultService, db DatabasePinger, hub *Hub, cfg config.ServerConfig, logger *logrus.Logger) *Server {
	if hub == nil {
		hub = NewHub(logger)
	}

	s := &Server{
		svc:    svc,
		router: mux.NewRouter(),
		hub:    hub,
		db:     db,
		logger: logger,
		cfg:    cfg,
	}

	s.setupRoutes()
	return s
}

// Hub returns the websocket hub so callers can wire it as the run-event
// notifier.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Run lifecycle
	api.HandleFunc("/runs", s.handleIngestRun).Methods("POST")
	api.HandleFunc("/runs", s.handleListRuns).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleGetRun).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleDeleteRun).Methods("DELETE")

	// Derived views
	api.HandleFunc("/runs/{id}/analysis", s.handleGetAnalysis).Methods("GET")
	api.HandleFunc("/runs/{id}/orders", s.handleGetOrders).Methods("GET")
	api.HandleFunc("/runs/{id}/equity", s.handleGetEquityCurve).Methods("GET")
	api.HandleFunc("/runs/{id}/cash", s.handleGetCashCurve).Methods("GET")
	api.HandleFunc("/runs/{id}/candles/{symbol}", s.handleGetCandles).Methods("GET")
	api.HandleFunc("/runs/{id}/positions/{symbol}", s.handleGetPositionSeries).Methods("GET")

	// WebSocket endpoint
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Health probes
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/ready", s.handleReady).Methods("GET")
}

// Start runs the server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run(ctx)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	s.httpServer = &http.Server{
		Addr:         s.addr(),
		Handler:      c.Handler(s.router),
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSec) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	s.logger.WithField("addr", s.httpServer.Addr).Info("API server starting")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("API server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the route table for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}
