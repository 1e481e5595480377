// Package app initializes and orchestrates the main components of the
// ApplyFlow submission engine. It ties the HTTP server and the worker pool
// to a shared lifecycle.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/oks-citadel/applyflow/internal/config"
	"github.com/oks-citadel/applyflow/internal/engine"
	"github.com/oks-citadel/applyflow/internal/server"
)

// App holds the main application components.
type App struct {
	ctx    context.Context
	cfg    *config.Config
	server *server.Server
	pool   *engine.Pool
	logger *slog.Logger

	poolCancel context.CancelFunc
	poolDone   chan struct{}
}

// NewApp assembles the application from its already-wired components.
func NewApp(ctx context.Context, cfg *config.Config, srv *server.Server, pool *engine.Pool, logger *slog.Logger) *App {
	return &App{
		ctx:    ctx,
		cfg:    cfg,
		server: srv,
		pool:   pool,
		logger: logger,
	}
}

// Start launches the worker pool and then runs the HTTP server, blocking
// until the server exits.
func (a *App) Start() error {
	a.logger.Info("starting ApplyFlow",
		"server_port", a.cfg.ServerPort,
		"queue_backend", a.cfg.QueueBackend,
		"max_workers", a.cfg.MaxWorkers)

	poolCtx, cancel := context.WithCancel(a.ctx)
	a.poolCancel = cancel
	a.poolDone = make(chan struct{})
	go func() {
		defer close(a.poolDone)
		a.pool.Run(poolCtx)
	}()

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the application cleanly.
func (a *App) Stop() error {
	a.logger.Info("shutting down ApplyFlow services")

	// Stop the HTTP server first to prevent new incoming submissions.
	serverErr := a.server.Stop()
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
		// Continue to stop other components even if the server failed.
	}

	// Stop the worker pool, allowing in-flight executions to finish.
	if a.poolCancel != nil {
		a.poolCancel()
		select {
		case <-a.poolDone:
		case <-time.After(2 * time.Minute):
			a.logger.Error("worker pool did not stop before deadline")
		}
	}

	if serverErr != nil {
		a.logger.Error("ApplyFlow stopped with errors", "error", serverErr)
		return serverErr
	}

	a.logger.Info("ApplyFlow stopped successfully")
	return nil
}
