package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	httpx "github.com/sakhike1/officeboard/internal/http"
	"github.com/sakhike1/officeboard/internal/repository/memory"
	"github.com/sakhike1/officeboard/internal/service/auth"
	"github.com/sakhike1/officeboard/internal/service/dashboard"
	"github.com/sakhike1/officeboard/internal/service/office"
	"github.com/sakhike1/officeboard/internal/service/worker"
	"github.com/sakhike1/officeboard/internal/ws"
	"github.com/sakhike1/officeboard/pkg/config"
)

type cliHarness struct {
	t           *testing.T
	apiURL      string
	credentials string
	officePosts atomic.Int32
}

func newCLIHarness(t *testing.T) *cliHarness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	hub := ws.NewHub()
	router := httpx.NewRouter(logger, httpx.Services{
		Auth:      auth.New(store, auth.NewMemoryRevocations(), hub, logger, config.APIConfig{JWTSecret: "cli-secret", AccessTokenTTL: time.Hour}),
		Offices:   office.New(store, logger),
		Workers:   worker.New(store, store, logger),
		Dashboard: dashboard.New(store, logger),
	}, httpx.Options{DBHealth: store.Ping})

	h := &cliHarness{t: t, credentials: filepath.Join(t.TempDir(), "credentials.json")}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/offices" {
			h.officePosts.Add(1)
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(func() {
		srv.Close()
		router.Close()
		hub.Close()
	})
	h.apiURL = srv.URL
	return h
}

// run parses args and executes the command, returning its stdout.
func (h *cliHarness) run(args ...string) (string, error) {
	h.t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, append(kongOptions(context.Background()), kong.Exit(func(int) {}))...)
	require.NoError(h.t, err)
	args = append([]string{"--api", h.apiURL, "--credentials", h.credentials}, args...)
	kctx, err := parser.Parse(args)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	g := cli.globals()
	g.Out = &out
	err = kctx.Run(g)
	return out.String(), err
}

func (h *cliHarness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "officectl %s", strings.Join(args, " "))
	return out
}

func TestCLISessionLifecycle(t *testing.T) {
	h := newCLIHarness(t)

	out := h.mustRun("signup", "--email", "cli@example.com", "--password", "secret1")
	require.Contains(t, out, "signed in as cli@example.com")

	info, err := os.Stat(h.credentials)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out = h.mustRun("whoami")
	require.Contains(t, out, "cli@example.com")

	h.mustRun("logout")
	_, err = h.run("whoami")
	require.ErrorIs(t, err, ErrNotSignedIn)

	out = h.mustRun("login", "--email", "cli@example.com", "--password", "secret1")
	require.Contains(t, out, "signed in")
}

func TestCLIOfficesAndWorkers(t *testing.T) {
	h := newCLIHarness(t)
	h.mustRun("signup", "--email", "ops@example.com", "--password", "secret1")

	_, err := h.run("office", "create", "--name", "HQ", "--location", "Durban", "--capacity", "10", "--email", "nope")
	require.Error(t, err)
	require.Equal(t, int32(0), h.officePosts.Load(), "invalid email must not reach the API")

	out := h.mustRun("office", "create", "--name", "HQ", "--location", "Durban", "--capacity", "10", "--email", "hq@example.com")
	require.Contains(t, out, "office created")
	officeID := strings.Fields(out)[2]

	out = h.mustRun("office", "list")
	require.Contains(t, out, "HQ")
	require.Contains(t, out, officeID)

	h.mustRun("worker", "add", officeID, "--name", "Ann", "--position", "Engineer", "--email", "ann@example.com")
	h.mustRun("worker", "add", officeID, "--name", "Bob", "--position", "Designer", "--email", "bob@example.com")

	out = h.mustRun("worker", "list", officeID, "--search", "ENGINEER")
	require.Contains(t, out, "Ann")
	require.NotContains(t, out, "Bob")

	out = h.mustRun("summary")
	require.Contains(t, out, "20%")

	out = h.mustRun("office", "show", officeID)
	require.Contains(t, out, "workers: 2 / 10")

	h.mustRun("office", "delete", officeID, "--yes")
	out = h.mustRun("office", "list")
	require.NotContains(t, out, officeID)
}

func TestCredentialsDefaultAPI(t *testing.T) {
	g := &Globals{Credentials: filepath.Join(t.TempDir(), "missing.json")}
	creds, err := g.load()
	require.NoError(t, err)
	require.Equal(t, defaultAPIBaseURL, creds.APIBaseURL)

	g.API = "http://api.internal:4000"
	creds, err = g.load()
	require.NoError(t, err)
	require.Equal(t, "http://api.internal:4000", creds.APIBaseURL)

	_, _, err = g.session()
	require.ErrorIs(t, err, ErrNotSignedIn)
}

func TestExpiredCredentialsAreRejected(t *testing.T) {
	g := &Globals{Credentials: filepath.Join(t.TempDir(), "credentials.json")}
	require.NoError(t, g.save(credentials{APIBaseURL: "http://x", AccessToken: "tok", ExpiresAt: time.Now().Add(-time.Minute)}))
	_, _, err := g.session()
	require.ErrorIs(t, err, ErrNotSignedIn)
}
