package app

import (
	"context"
	"log/slog"

	"AXpress/internal/cache"
	"AXpress/internal/config"
	"AXpress/internal/infrastructure/backend"
	"AXpress/internal/infrastructure/filesave"
	"AXpress/internal/infrastructure/scheduler"
	"AXpress/internal/logging"
	"AXpress/internal/usecase"
)

// Application wires configs to the shared cache and per-user sessions.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	store  *cache.Store
	runner *scheduler.Runner
}

// New builds the application; Close releases its background work.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	saver := filesave.NewDirSaver(cfg.Storage.DownloadDir)
	client := backend.NewClient(cfg.Backend.BaseURL, saver, backend.WithTimeout(cfg.Backend.Timeout))
	store := cache.NewStore(client, baseLogger.With("component", "cache"))
	runner := scheduler.NewRunner(ctx, baseLogger.With("component", "effects"))

	baseLogger.Debug("application wired",
		"backend", cfg.Backend.BaseURL,
		"timeout", cfg.Backend.Timeout,
		"downloads", saver.Dir(),
	)

	return &Application{cfg: cfg, logger: baseLogger, store: store, runner: runner}
}

// Config returns the effective configuration.
func (a *Application) Config() config.Config {
	return a.cfg
}

// Store exposes the cache shared by every session.
func (a *Application) Store() *cache.Store {
	return a.store
}

// NewSession starts a fresh user session over the shared cache.
func (a *Application) NewSession() *usecase.Session {
	return usecase.NewSession(usecase.SessionDeps{
		Cache:  a.store,
		Runner: a.runner,
		Logger: a.logger.With("component", "session"),
	})
}

// Close cancels pending effects and waits for them to return.
func (a *Application) Close() {
	a.runner.Close()
}
