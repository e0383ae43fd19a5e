package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sakhike1/officeboard/pkg/config"
)

func TestRunFailsWithoutSessionSecret(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := run(context.Background(), config.DashboardConfig{Addr: "127.0.0.1:0", APIBaseURL: "http://127.0.0.1:1"}, logger)
	require.ErrorContains(t, err, "SESSION_SECRET")
}

func TestRunReturnsListenError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := run(context.Background(), config.DashboardConfig{
		Addr:          "127.0.0.1:-1",
		APIBaseURL:    "http://127.0.0.1:1",
		SessionSecret: "cookie-secret",
	}, logger)
	require.Error(t, err)
}
