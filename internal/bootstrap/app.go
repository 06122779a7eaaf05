package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/faq-chatbot/internal/domain/faq"
	"github.com/yanqian/faq-chatbot/internal/infra/config"
)

const (
	warmupTimeout   = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

// App encapsulates the HTTP server lifecycle.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
	loader *faq.Loader
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, loader *faq.Loader) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, loader: loader}
}

// Run loads the knowledge base, starts the HTTP server and blocks until shutdown. A
// knowledge base that fails to load is retried on the first question, so it does not
// stop the server.
func (a *App) Run(ctx context.Context) error {
	a.warmup(ctx)

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
		return a.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) warmup(ctx context.Context) {
	if a.loader == nil {
		return
	}
	warmCtx, cancel := context.WithTimeout(ctx, warmupTimeout)
	defer cancel()
	kb, err := a.loader.Snapshot(warmCtx)
	if err != nil {
		a.logger.Warn("knowledge base unavailable at startup", "source", a.cfg.FAQ.Source.Kind, "error", err)
		return
	}
	a.logger.Info("knowledge base loaded", "source", a.cfg.FAQ.Source.Kind, "entries", kb.Len())
}
