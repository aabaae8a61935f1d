// Package server assembles the HTTP and WebSocket API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sainath5001/walrustruth/internal/domain"
	"github.com/sainath5001/walrustruth/internal/server/handler"
	"github.com/sainath5001/walrustruth/internal/server/middleware"
	"github.com/sainath5001/walrustruth/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled

	// MutationRateLimit bounds write requests per client IP per minute.
	// Zero disables the limit.
	MutationRateLimit int
}

// Handlers aggregates all HTTP handlers the server registers.
type Handlers struct {
	Health      *handler.HealthHandler
	Markets     *handler.MarketHandler
	Mutations   *handler.MutationHandler
	Leaderboard *handler.LeaderboardHandler
}

// Server is the HTTP + WebSocket API server for the prediction-market view
// layer.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered. Read routes run
// through logging and CORS; write routes additionally pass auth and the
// rate limiter.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Write endpoints share an extra guard chain.
	guard := func(h http.HandlerFunc) http.Handler {
		var wrapped http.Handler = h
		if limiter != nil && cfg.MutationRateLimit > 0 {
			wrapped = middleware.RateLimit(limiter, cfg.MutationRateLimit, time.Minute)(wrapped)
		}
		wrapped = middleware.Auth(cfg.APIKey)(wrapped)
		return wrapped
	}

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Market read endpoints.
	mux.HandleFunc("GET /api/markets", handlers.Markets.ListMarkets)
	mux.HandleFunc("GET /api/markets/{id}", handlers.Markets.GetMarket)
	mux.HandleFunc("GET /api/markets/{id}/preview", handlers.Markets.PreviewPayout)
	mux.HandleFunc("GET /api/balance", handlers.Markets.Balance)
	mux.HandleFunc("GET /api/leaderboard", handlers.Leaderboard.Leaderboard)

	// Mutation endpoints.
	mux.Handle("POST /api/markets", guard(handlers.Mutations.CreateMarket))
	mux.Handle("POST /api/markets/{id}/bets", guard(handlers.Mutations.PlaceBet))
	mux.Handle("POST /api/markets/{id}/evidence", guard(handlers.Mutations.SubmitEvidence))
	mux.Handle("POST /api/markets/{id}/resolve", guard(handlers.Mutations.ResolveMarket))
	mux.Handle("POST /api/allowance", guard(handlers.Mutations.ApproveAllowance))

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	var h http.Handler = mux
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // mutations block until finality
		IdleTimeout:  60 * time.Second,
	}

	return &Server{httpServer: srv, logger: logger}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
