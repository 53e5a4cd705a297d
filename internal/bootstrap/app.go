package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/packing-advisor/internal/infra/config"
	"github.com/yanqian/packing-advisor/internal/infra/telemetry"
)

const shutdownTimeout = 10 * time.Second

// App encapsulates the HTTP server lifecycle.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	server         *http.Server
	shutdownTracer telemetry.ShutdownFunc
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, shutdownTracer telemetry.ShutdownFunc) *App {
	return &App{
		cfg:            cfg,
		logger:         logger.With("component", "bootstrap"),
		server:         server,
		shutdownTracer: shutdownTracer,
	}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutdown signal received")
		err := a.server.Shutdown(shutdownCtx)
		a.flushTraces(shutdownCtx)
		return err
	case err := <-errCh:
		a.flushTraces(context.Background())
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) flushTraces(ctx context.Context) {
	if a.shutdownTracer == nil {
		return
	}
	if err := a.shutdownTracer(ctx); err != nil {
		a.logger.Warn("tracer shutdown failed", "error", err)
	}
}
