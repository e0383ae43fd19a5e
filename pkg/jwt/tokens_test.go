package jwt

import (
	"errors"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParseRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-1", "secret", time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := Parse(token, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("unexpected user id %q", claims.UserID)
	}
	if claims.ID == "" {
		t.Fatalf("expected token id to be set")
	}
	if until := time.Until(claims.ExpiresAtTime()); until <= 0 || until > time.Minute {
		t.Fatalf("unexpected expiry window %s", until)
	}
}

func TestTokenIDsAreUnique(t *testing.T) {
	first, _ := GenerateToken("user-1", "secret", time.Minute)
	second, _ := GenerateToken("user-1", "secret", time.Minute)
	a, err := Parse(first, "secret")
	if err != nil {
		t.Fatalf("parse first: %v", err)
	}
	b, err := Parse(second, "secret")
	if err != nil {
		t.Fatalf("parse second: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("expected distinct token ids, got %q twice", a.ID)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _ := GenerateToken("user-1", "secret", time.Minute)
	if _, err := Parse(token, "other"); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	token, _ := GenerateToken("user-1", "secret", -time.Minute)
	_, err := Parse(token, "secret")
	if !errors.Is(err, jwtlib.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}
