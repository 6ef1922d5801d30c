package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
	_ "time/tzdata"

	"staybook/internal/infra/config"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger(os.Getenv("APP_ENV")).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("staybook stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	if err := app.loadListingFixtures(ctx, cfg.ListingsFixtures, logger); err != nil {
		logger.Warn("listing fixtures load failed", "error", err, "path", cfg.ListingsFixtures)
	}
	return app.serve(ctx, cfg, logger)
}

// serve runs the HTTP server and the background workers until ctx ends or
// the server fails. The application is closed on every return path.
func (a *application) serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	defer a.close()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Checks:  a.checks,
		Timeout: 2 * time.Second,
	}, a.handlers)

	var wg sync.WaitGroup
	for _, w := range a.workers {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("worker stopped", "worker", w.name, "error", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode, "calendar_store", cfg.CalendarStore)
	err := server.ListenAndServe()
	cancel()
	wg.Wait()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}
