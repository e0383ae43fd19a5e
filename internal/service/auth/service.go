package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/sakhike1/officeboard/internal/domain"
	"github.com/sakhike1/officeboard/internal/repository"
	"github.com/sakhike1/officeboard/internal/ws"
	"github.com/sakhike1/officeboard/pkg/config"
	"github.com/sakhike1/officeboard/pkg/crypto"
	jwtpkg "github.com/sakhike1/officeboard/pkg/jwt"
	"github.com/sakhike1/officeboard/pkg/validate"
)

var (
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenRequired      = errors.New("token required")
	ErrTokenRevoked       = errors.New("token revoked")
)

// SessionHub delivers session events to a user's open streams.
type SessionHub interface {
	Register(userID string, client ws.Subscriber)
	Unregister(userID string, client ws.Subscriber)
	Publish(event domain.SessionEvent) error
}

// Service handles authentication workflows.
type Service struct {
	users    repository.UserRepository
	revoked  RevocationStore
	sessions SessionHub
	logger   *slog.Logger
	cfg      config.APIConfig
}

// New constructs a Service. sessions may be nil when nobody listens for session events.
func New(users repository.UserRepository, revoked RevocationStore, sessions SessionHub, logger *slog.Logger, cfg config.APIConfig) Service {
	if revoked == nil {
		revoked = NewMemoryRevocations()
	}
	return Service{users: users, revoked: revoked, sessions: sessions, logger: logger, cfg: cfg}
}

// TokenPair is what a successful sign-in hands back to the caller.
type TokenPair struct {
	AccessToken string
	ExpiresIn   time.Duration
}

// Credentials is the sign-up payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,contact_email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Signup registers a new user and signs them in.
func (s Service) Signup(ctx context.Context, email, password string) (*domain.User, TokenPair, error) {
	creds := Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := validate.Struct(creds); err != nil {
		return nil, TokenPair{}, err
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        creds.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, TokenPair{}, ErrEmailRegistered
		}
		return nil, TokenPair{}, err
	}
	tokens, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	s.logger.Info("user registered", "user_id", user.ID)
	s.publish(domain.SessionSignedIn, user.ID)
	return user, tokens, nil
}

// Login authenticates a user and returns tokens.
func (s Service) Login(ctx context.Context, email, password string) (*domain.User, TokenPair, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		return nil, TokenPair{}, err
	}
	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Warn("login rejected", "user_id", user.ID)
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	tokens, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	s.publish(domain.SessionSignedIn, user.ID)
	return user, tokens, nil
}

// Authorize validates a bearer token and returns the associated user and claims.
// It answers "who is the current user" for every protected call.
func (s Service) Authorize(ctx context.Context, token string) (*domain.User, *jwtpkg.Claims, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, nil, err
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, nil, ErrTokenRevoked
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	return user, claims, nil
}

// Logout revokes the token until it would have expired and notifies the
// user's open sessions.
func (s Service) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAtTime()); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.logger.Info("user logged out", "user_id", claims.UserID)
	s.publish(domain.SessionSignedOut, claims.UserID)
	return nil
}

// Subscribe attaches client to the user's session event stream. The returned
// function detaches it.
func (s Service) Subscribe(userID string, client ws.Subscriber) func() {
	if s.sessions == nil {
		return func() {}
	}
	s.sessions.Register(userID, client)
	return func() { s.sessions.Unregister(userID, client) }
}

func (s Service) parse(token string) (*jwtpkg.Claims, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, ErrTokenRequired
	}
	return jwtpkg.Parse(trimmed, s.cfg.JWTSecret)
}

func (s Service) publish(kind, userID string) {
	if s.sessions == nil {
		return
	}
	event := domain.SessionEvent{Type: kind, UserID: userID, At: time.Now().UTC()}
	if err := s.sessions.Publish(event); err != nil {
		s.logger.Warn("session event dropped", "type", kind, "user_id", userID, "error", err)
	}
}

func (s Service) issueTokens(userID string) (TokenPair, error) {
	access, err := jwtpkg.GenerateToken(userID, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign token: %w", err)
	}
	return TokenPair{AccessToken: access, ExpiresIn: s.cfg.AccessTokenTTL}, nil
}
