package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sakhike1/officeboard/internal/app/migrate"
	httpx "github.com/sakhike1/officeboard/internal/http"
	"github.com/sakhike1/officeboard/internal/repository"
	"github.com/sakhike1/officeboard/internal/repository/memory"
	"github.com/sakhike1/officeboard/internal/repository/postgres"
	"github.com/sakhike1/officeboard/internal/service/auth"
	"github.com/sakhike1/officeboard/internal/service/dashboard"
	"github.com/sakhike1/officeboard/internal/service/office"
	"github.com/sakhike1/officeboard/internal/service/worker"
	"github.com/sakhike1/officeboard/internal/ws"
	"github.com/sakhike1/officeboard/pkg/config"
	"github.com/sakhike1/officeboard/pkg/logger"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Warn("failed to load .env files", "error", err)
	}
	cfg := config.LoadAPIConfig()
	log := logger.New("api", logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("api server failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// run serves the API until ctx is cancelled or the listener fails. Every
// resource it opens is released before it returns.
func run(ctx context.Context, cfg config.APIConfig, log *slog.Logger) error {
	store, cleanup, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open %q store: %w", cfg.Store, err)
	}
	defer cleanup()

	var revoked auth.RevocationStore = auth.NewMemoryRevocations()
	if addr := strings.TrimSpace(cfg.SessionRedisAddr); addr != "" {
		redisRevoked, err := auth.NewRedisRevocations(addr, cfg.SessionRedisPass, cfg.SessionRedisDB)
		if err != nil {
			log.Warn("redis revocation store unavailable", "error", err)
		} else {
			defer redisRevoked.Close()
			revoked = redisRevoked
		}
	}

	limiter := httpx.NewMemoryRateLimiter()
	if addr := strings.TrimSpace(cfg.RateLimitRedisAddr); addr != "" {
		redisLimiter, err := httpx.NewRedisRateLimiter(addr, cfg.RateLimitRedisPass, cfg.RateLimitRedisDB, log)
		if err != nil {
			log.Warn("redis rate limiter unavailable", "error", err)
		} else {
			limiter.Close()
			limiter = redisLimiter
		}
	}

	sessionHub := ws.NewHub()
	defer sessionHub.Close()

	router := httpx.NewRouter(log, httpx.Services{
		Auth:      auth.New(store, revoked, sessionHub, log, cfg),
		Offices:   office.New(store, log),
		Workers:   worker.New(store, store, log),
		Dashboard: dashboard.New(store, log),
	}, httpx.Options{
		Limiter:        limiter,
		DBHealth:       store.Ping,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr, "store", cfg.Store)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		log.Info("api server stopped")
		return nil
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// openStore returns the configured backing store. Postgres is migrated to
// the latest version before use.
func openStore(ctx context.Context, cfg config.APIConfig, log *slog.Logger) (repository.Store, func(), error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Store)) {
	case "memory":
		log.Warn("using in-memory store; data is lost on restart")
		return memory.New(), func() {}, nil
	case "", "postgres":
	default:
		return nil, nil, errors.New("unknown store " + cfg.Store)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	runner, err := migrate.New(pool, cfg.MigrationsDir, log)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := runner.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := runner.Ensure(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return postgres.New(pool), runner.Close, nil
}
