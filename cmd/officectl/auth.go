package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	apiclient "github.com/sakhike1/officeboard/pkg/api/client"
)

type CredentialFlags struct {
	Email    string `help:"Account email." required:""`
	Password string `help:"Password (prompted when omitted)." env:"OFFICEBOARD_PASSWORD"`
}

func (f CredentialFlags) password() (string, error) {
	if f.Password != "" {
		return f.Password, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--password is required when stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

type SignupCmd struct {
	CredentialFlags `embed:""`
}

func (c *SignupCmd) Run(ctx context.Context, g *Globals) error {
	return authenticate(ctx, g, c.CredentialFlags, true)
}

type LoginCmd struct {
	CredentialFlags `embed:""`
}

func (c *LoginCmd) Run(ctx context.Context, g *Globals) error {
	return authenticate(ctx, g, c.CredentialFlags, false)
}

func authenticate(ctx context.Context, g *Globals, flags CredentialFlags, signUp bool) error {
	secret, err := flags.password()
	if err != nil {
		return err
	}
	creds, err := g.load()
	if err != nil {
		return err
	}
	client, err := apiclient.New(creds.APIBaseURL)
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	var sess apiclient.Session
	if signUp {
		sess, err = client.SignUp(ctx, flags.Email, secret)
	} else {
		sess, err = client.SignIn(ctx, flags.Email, secret)
	}
	if err != nil {
		return err
	}
	creds.AccessToken = sess.Tokens.AccessToken
	creds.Email = sess.User.Email
	creds.ExpiresAt = time.Now().Add(time.Duration(sess.Tokens.ExpiresIn) * time.Second).UTC()
	if err := g.save(creds); err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "signed in as %s\n", sess.User.Email)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx context.Context, g *Globals) error {
	creds, err := g.load()
	if err != nil {
		return err
	}
	if token := strings.TrimSpace(creds.AccessToken); token != "" {
		client, err := apiclient.New(creds.APIBaseURL)
		if err != nil {
			return err
		}
		ctx, cancel := g.withTimeout(ctx)
		defer cancel()
		if err := client.SignOut(ctx, token); err != nil && !apiclient.IsUnauthorized(err) {
			return err
		}
	}
	creds.AccessToken = ""
	creds.Email = ""
	creds.ExpiresAt = time.Time{}
	if err := g.save(creds); err != nil {
		return err
	}
	fmt.Fprintln(g.out(), "signed out")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx context.Context, g *Globals) error {
	client, token, err := g.session()
	if err != nil {
		return err
	}
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	user, err := client.CurrentUser(ctx, token)
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			return ErrNotSignedIn
		}
		return err
	}
	fmt.Fprintf(g.out(), "%s\t%s\n", user.ID, user.Email)
	return nil
}

type WatchCmd struct{}

func (c *WatchCmd) Run(ctx context.Context, g *Globals) error {
	client, token, err := g.session()
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "watching session events (Ctrl+C to stop)")
	return client.WatchSession(ctx, token, func(ev apiclient.SessionEvent) {
		fmt.Fprintf(g.out(), "%s\t%s\t%s\n", ev.At.Format(time.RFC3339), ev.Type, ev.UserID)
	})
}
