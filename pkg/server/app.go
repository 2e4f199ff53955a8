package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"SigFuse/internal/usecase"
	"SigFuse/pkg/config"
	xhttp "SigFuse/pkg/http"
	applogger "SigFuse/pkg/logger"
)

// App encapsulates the application lifecycle: the signal pipeline and the
// HTTP server, started together and torn down on interrupt.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	pipeline   *usecase.Pipeline
	httpServer *xhttp.Server
}

// New creates an App from its wired dependencies.
func New(cfg *config.Config, l *applogger.Logger, pipeline *usecase.Pipeline, handler xhttp.Handler) *App {
	httpServer := xhttp.NewServer(handler,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)
	return &App{
		cfg:        cfg,
		l:          l,
		pipeline:   pipeline,
		httpServer: httpServer,
	}
}

// Run starts the pipeline and HTTP server, then blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.pipeline.Start(ctx); err != nil {
		a.l.Error("pipeline start failed", applogger.Error(err))
		return err
	}
	a.l.Info("pipeline running", applogger.Strings("symbols", a.cfg.Feed.Symbols))

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start failed", applogger.Error(err))
		return err
	}
	a.l.Info("http server listening", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Warn("http shutdown error", applogger.Error(err))
	}
	if err := a.pipeline.Stop(shutdownCtx); err != nil {
		a.l.Warn("pipeline stop error", applogger.Error(err))
		return err
	}

	a.l.Info("shutdown complete")
	return nil
}
