package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakhike1/officeboard/pkg/config"
)

func testConfig(addr string) config.APIConfig {
	return config.APIConfig{
		Addr:           addr,
		Store:          "memory",
		JWTSecret:      "run-secret",
		AccessTokenTTL: time.Hour,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunReturnsListenError(t *testing.T) {
	err := run(context.Background(), testConfig("127.0.0.1:-1"), discardLogger())
	require.Error(t, err)
}

func TestRunRejectsUnknownStore(t *testing.T) {
	cfg := testConfig("127.0.0.1:0")
	cfg.Store = "sqlite"
	err := run(context.Background(), cfg, discardLogger())
	require.ErrorContains(t, err, "unknown store")
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, testConfig("127.0.0.1:0"), discardLogger()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}
