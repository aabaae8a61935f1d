package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sainath5001/walrustruth/internal/config"
	"github.com/sainath5001/walrustruth/internal/domain"
	"github.com/sainath5001/walrustruth/internal/server"
	"github.com/sainath5001/walrustruth/internal/server/handler"
	"github.com/sainath5001/walrustruth/internal/server/ws"
)

// shutdownTimeout bounds how long in-flight requests may linger after a stop
// signal.
const shutdownTimeout = 15 * time.Second

// App owns the wired dependencies and the HTTP/WebSocket surface.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates an App from validated configuration.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{cfg: cfg, logger: logger}
}

// Run wires dependencies and serves until the context is cancelled. It
// returns ctx.Err() on a clean signal-driven shutdown.
func (a *App) Run(ctx context.Context) error {
	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if deps.WalletAddress == "" {
		a.logger.Warn("no wallet configured, mutations are disabled")
	}

	clock := domain.SystemClock{}
	hub := ws.NewHub(deps.Bus, deps.Countdown, deps.Views, a.logger)

	handlers := server.Handlers{
		Health:      handler.NewHealthHandler(deps.WalletAddress, a.logger),
		Markets:     handler.NewMarketHandler(deps.Views, clock, a.logger),
		Mutations:   handler.NewMutationHandler(deps.Mutations, deps.WalletAddress, a.logger),
		Leaderboard: handler.NewLeaderboardHandler(deps.Views, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:              a.cfg.Server.Port,
		CORSOrigins:       a.cfg.Server.CORSOrigins,
		APIKey:            a.cfg.Server.APIKey,
		MutationRateLimit: a.cfg.Server.MutationRateLimit,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// The hub returns ctx.Err() on cancellation; that is the normal path.
		return hub.Run(gctx)
	})

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
