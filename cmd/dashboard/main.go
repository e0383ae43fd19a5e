package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sakhike1/officeboard/internal/dashboard/server"
	"github.com/sakhike1/officeboard/pkg/config"
	"github.com/sakhike1/officeboard/pkg/logger"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Warn("failed to load .env files", "error", err)
	}
	cfg := config.LoadDashboardConfig()
	log := logger.New("dashboard", logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("dashboard failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// run serves the dashboard until ctx is cancelled or the listener fails.
func run(ctx context.Context, cfg config.DashboardConfig, log *slog.Logger) error {
	srv, err := server.New(cfg, log)
	if err != nil {
		return fmt.Errorf("configure dashboard: %w", err)
	}

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("dashboard starting", "addr", cfg.Addr, "api", cfg.APIBaseURL)
		errorCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		log.Info("dashboard stopped")
		return nil
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
