// Package app provides the top-level application lifecycle management for
// marketboard. It wires together the upstream clients, the feed pipeline, the
// optional Redis rate limiter, and the HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/marketboard/internal/config"
	"github.com/alanyoungcy/marketboard/internal/domain"
	"github.com/alanyoungcy/marketboard/internal/server"
	"github.com/alanyoungcy/marketboard/internal/server/handler"
)

const shutdownTimeout = 5 * time.Second

// App is the root application object. It owns the configuration, logger, and a
// list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	deps    *Dependencies
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// wire builds the dependencies once per App.
func (a *App) wire(ctx context.Context) (*Dependencies, error) {
	if a.deps != nil {
		return a.deps, nil
	}
	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)
	a.deps = deps
	return deps, nil
}

// Serve starts the HTTP API and blocks until the context is cancelled or the
// server fails. The server is shut down gracefully on cancellation.
func (a *App) Serve(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("log_level", a.cfg.LogLevel),
		slog.Int("port", a.cfg.Server.Port),
	)

	deps, err := a.wire(ctx)
	if err != nil {
		return err
	}

	srv := a.newServer(deps)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
	return g.Wait()
}

func (a *App) newServer(deps *Dependencies) *server.Server {
	logger := a.logger.With(slog.String("component", "server"))
	health := handler.NewHealthHandler(deps.Sources, logger)
	if deps.Redis != nil {
		health = health.WithRedis(deps.Redis)
	}
	return server.NewServer(
		server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
			APIKey:      a.cfg.Server.APIKey,
			RateLimit:   a.cfg.Server.RateLimit,
			RateWindow:  a.cfg.Server.RateWindow.Duration,
		},
		server.Handlers{
			Health:     health,
			Markets:    handler.NewMarketHandler(deps.Feed, logger),
			Categories: handler.NewCategoryHandler(deps.Feed.Labels),
		},
		deps.RateLimiter,
		deps.Metrics,
		logger,
	)
}

// Fetch runs one pipeline invocation without starting the server.
func (a *App) Fetch(ctx context.Context, q domain.FeedQuery) (domain.FeedResult, error) {
	deps, err := a.wire(ctx)
	if err != nil {
		return domain.FeedResult{}, err
	}
	return deps.Feed.Fetch(ctx, q)
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	a.deps = nil
}
