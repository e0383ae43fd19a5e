package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	apiclient "github.com/sakhike1/officeboard/pkg/api/client"
)

const defaultAPIBaseURL = "http://localhost:4000"

// ErrNotSignedIn is returned by commands that need a stored session.
var ErrNotSignedIn = errors.New("not signed in; run 'officectl login' first")

// Globals carries flags shared by every command.
type Globals struct {
	API         string
	Credentials string
	Timeout     time.Duration
	Out         io.Writer
}

// credentials is what officectl persists between runs.
type credentials struct {
	APIBaseURL  string    `json:"api_base_url"`
	AccessToken string    `json:"access_token,omitempty"`
	Email       string    `json:"email,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

func (g *Globals) credentialsPath() (string, error) {
	if strings.TrimSpace(g.Credentials) != "" {
		return g.Credentials, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "officeboard", "credentials.json"), nil
}

func (g *Globals) load() (credentials, error) {
	path, err := g.credentialsPath()
	if err != nil {
		return credentials{}, err
	}
	creds := credentials{APIBaseURL: defaultAPIBaseURL}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return g.withOverride(creds), nil
		}
		return credentials{}, err
	}
	if err := json.Unmarshal(data, &creds); err != nil {
		return credentials{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if creds.APIBaseURL == "" {
		creds.APIBaseURL = defaultAPIBaseURL
	}
	return g.withOverride(creds), nil
}

func (g *Globals) withOverride(creds credentials) credentials {
	if api := strings.TrimSpace(g.API); api != "" {
		creds.APIBaseURL = api
	}
	return creds
}

func (g *Globals) save(creds credentials) error {
	path, err := g.credentialsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// session returns a client plus the stored token, failing when signed out
// or when the stored token has expired.
func (g *Globals) session() (*apiclient.Client, string, error) {
	creds, err := g.load()
	if err != nil {
		return nil, "", err
	}
	token := strings.TrimSpace(creds.AccessToken)
	if token == "" {
		return nil, "", ErrNotSignedIn
	}
	if !creds.ExpiresAt.IsZero() && time.Now().After(creds.ExpiresAt) {
		return nil, "", ErrNotSignedIn
	}
	client, err := apiclient.New(creds.APIBaseURL)
	if err != nil {
		return nil, "", err
	}
	return client, token, nil
}

func (g *Globals) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

func (g *Globals) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}
