package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sakhike1/officeboard/internal/domain"
	"github.com/sakhike1/officeboard/internal/repository/memory"
	"github.com/sakhike1/officeboard/internal/ws"
	"github.com/sakhike1/officeboard/pkg/config"
	"github.com/sakhike1/officeboard/pkg/validate"
)

type recordingHub struct {
	mu         sync.Mutex
	events     []domain.SessionEvent
	registered map[string]int
}

func newRecordingHub() *recordingHub {
	return &recordingHub{registered: make(map[string]int)}
}

func (h *recordingHub) Register(userID string, _ ws.Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registered[userID]++
}

func (h *recordingHub) Unregister(userID string, _ ws.Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registered[userID]--
}

func (h *recordingHub) Publish(event domain.SessionEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHub) last() domain.SessionEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.events) == 0 {
		return domain.SessionEvent{}
	}
	return h.events[len(h.events)-1]
}

func newTestService(hub SessionHub) Service {
	cfg := config.APIConfig{JWTSecret: "test-secret", AccessTokenTTL: time.Hour}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(memory.New(), NewMemoryRevocations(), hub, logger, cfg)
}

func TestSignupThenAuthorize(t *testing.T) {
	hub := newRecordingHub()
	svc := newTestService(hub)
	ctx := context.Background()

	user, tokens, err := svc.Signup(ctx, " ann@example.com ", "secret1")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.Email != "ann@example.com" {
		t.Fatalf("expected trimmed email, got %q", user.Email)
	}
	if tokens.AccessToken == "" || tokens.ExpiresIn != time.Hour {
		t.Fatalf("unexpected tokens: %+v", tokens)
	}

	current, claims, err := svc.Authorize(ctx, tokens.AccessToken)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if current.ID != user.ID || claims.UserID != user.ID {
		t.Fatalf("authorized wrong user: %s", current.ID)
	}
	if ev := hub.last(); ev.Type != domain.SessionSignedIn || ev.UserID != user.ID {
		t.Fatalf("expected SIGNED_IN event, got %+v", ev)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()
	if _, _, err := svc.Signup(ctx, "ann@example.com", "secret1"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	_, _, err := svc.Signup(ctx, "ANN@example.com", "secret2")
	if !errors.Is(err, ErrEmailRegistered) {
		t.Fatalf("expected ErrEmailRegistered, got %v", err)
	}
	if err.Error() != "email already registered" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestSignupValidation(t *testing.T) {
	svc := newTestService(nil)
	_, _, err := svc.Signup(context.Background(), "not-an-email", "123")
	var fields validate.FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected field errors, got %v", err)
	}
	if fields["email"] == "" || fields["password"] == "" {
		t.Fatalf("expected email and password errors, got %v", fields)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()
	if _, _, err := svc.Signup(ctx, "ann@example.com", "secret1"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	cases := map[string][2]string{
		"wrong password": {"ann@example.com", "nope-nope"},
		"unknown email":  {"bob@example.com", "secret1"},
		"empty":          {"", ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := svc.Login(ctx, tc[0], tc[1])
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}

	if _, _, err := svc.Login(ctx, "ANN@example.com", "secret1"); err != nil {
		t.Fatalf("login should ignore email case: %v", err)
	}
}

func TestLogoutRevokesTokenAndPublishes(t *testing.T) {
	hub := newRecordingHub()
	svc := newTestService(hub)
	ctx := context.Background()

	user, tokens, err := svc.Signup(ctx, "ann@example.com", "secret1")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := svc.Logout(ctx, tokens.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, _, err := svc.Authorize(ctx, tokens.AccessToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}
	if ev := hub.last(); ev.Type != domain.SessionSignedOut || ev.UserID != user.ID {
		t.Fatalf("expected SIGNED_OUT event, got %+v", ev)
	}

	_, fresh, err := svc.Login(ctx, "ann@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, _, err := svc.Authorize(ctx, fresh.AccessToken); err != nil {
		t.Fatalf("new session should be valid: %v", err)
	}
}

func TestAuthorizeRejectsEmptyAndForeignTokens(t *testing.T) {
	svc := newTestService(nil)
	if _, _, err := svc.Authorize(context.Background(), "  "); !errors.Is(err, ErrTokenRequired) {
		t.Fatalf("expected ErrTokenRequired, got %v", err)
	}
	if _, _, err := svc.Authorize(context.Background(), "garbage"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestSubscribeRegistersAndDetaches(t *testing.T) {
	hub := newRecordingHub()
	svc := newTestService(hub)

	detach := svc.Subscribe("u1", nil)
	if hub.registered["u1"] != 1 {
		t.Fatalf("expected registration")
	}
	detach()
	if hub.registered["u1"] != 0 {
		t.Fatalf("expected detach")
	}
}

func TestMemoryRevocationsExpire(t *testing.T) {
	store := NewMemoryRevocations()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.Revoke(ctx, "jti", now.Add(time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, _ := store.IsRevoked(ctx, "jti"); !ok {
		t.Fatal("expected revoked")
	}
	now = now.Add(2 * time.Minute)
	if ok, _ := store.IsRevoked(ctx, "jti"); ok {
		t.Fatal("expected revocation to lapse with the token")
	}
	if err := store.Revoke(ctx, "", now); err == nil {
		t.Fatal("expected error for empty id")
	}
}
