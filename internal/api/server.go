// Package api implements the protocol surface (C6): the HTTP handlers that
// translate the wire representation into SessionRegistry calls and back,
// plus the additive observability routes (metrics, event stream, health).
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"uistd/internal/metrics"
	"uistd/internal/ratelimit"
	"uistd/internal/session"
)

// Server wraps the standard library HTTP server with the routes, the
// session registry, rate limiter, metrics registry, and event hub it fronts.
type Server struct {
	server *http.Server
	hub    *Hub
	logger *slog.Logger
}

// NewServer builds a Server bound to addr, serving registry over the
// protocol routes, guarded by limiter and logging via logger. metricsReg may
// be nil to disable the /metrics route.
func NewServer(addr string, registry *session.Registry, limiter *ratelimit.Limiter, metricsReg *metrics.Registry, logger *slog.Logger) *Server {
	hub := NewHub(logger)
	handlers := NewHandlers(registry, limiter, hub, metricsReg, logger)

	mux := http.NewServeMux()
	register := func(route string, h http.HandlerFunc) {
		var handler http.Handler = h
		if metricsReg != nil {
			handler = metricsMiddleware(metricsReg, route, handler)
		}
		mux.Handle(route, handler)
	}

	register("GET /health", handlers.HandleHealth)
	register("GET /init/{dataset}", handlers.HandleInit)
	register("GET /backtest/{id}/info", handlers.HandleInfo)
	register("GET /backtest/{id}/fetch_quotes", handlers.HandleFetchQuotes)
	register("GET /backtest/{id}/tick", handlers.HandleTick)
	register("POST /backtest/{id}/insert_order", handlers.HandleInsertOrder)
	register("POST /backtest/{id}/delete_order", handlers.HandleDeleteOrder)
	register("GET /backtest/{id}/stream", handlers.HandleStream)
	if metricsReg != nil {
		mux.Handle("GET /metrics", metricsReg.Handler())
	}

	var top http.Handler = mux
	top = loggingMiddleware(logger, top)

	return &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      top,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		hub:    hub,
		logger: logger.With("component", "api-server"),
	}
}

// Start runs the event hub and blocks serving HTTP until the server is
// stopped.
func (s *Server) Start() error {
	go s.hub.Run()

	s.logger.Info("server starting", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	s.logger.Info("stopping server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
