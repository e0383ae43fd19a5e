package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func requestWith(c *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if c != nil {
		req.AddCookie(c)
	}
	return req
}

func TestCookieRoundTrip(t *testing.T) {
	m, err := New("secret", "", false)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	cookie, err := m.MakeCookie("tok-123", time.Hour)
	if err != nil {
		t.Fatalf("make cookie: %v", err)
	}
	if cookie.Value == "tok-123" || !cookie.HttpOnly {
		t.Fatalf("cookie must be sealed and http-only: %+v", cookie)
	}
	token, err := m.TokenFromRequest(requestWith(cookie))
	if err != nil || token != "tok-123" {
		t.Fatalf("expected token back, got %q (%v)", token, err)
	}
}

func TestMissingAndTamperedCookies(t *testing.T) {
	m, _ := New("secret", "sess", false)
	if _, err := m.TokenFromRequest(requestWith(nil)); !errors.Is(err, http.ErrNoCookie) {
		t.Fatalf("expected ErrNoCookie, got %v", err)
	}
	if _, err := m.TokenFromRequest(requestWith(&http.Cookie{Name: "sess", Value: "garbage"})); err == nil {
		t.Fatal("expected error for tampered cookie")
	}

	other, _ := New("other-secret", "sess", false)
	cookie, _ := other.MakeCookie("tok", time.Hour)
	if _, err := m.TokenFromRequest(requestWith(cookie)); err == nil {
		t.Fatal("cookie sealed with another secret must not open")
	}
}

func TestExpiredCookie(t *testing.T) {
	m, _ := New("secret", "sess", false)
	now := time.Now()
	m.now = func() time.Time { return now }
	cookie, _ := m.MakeCookie("tok", time.Minute)

	m.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, err := m.TokenFromRequest(requestWith(cookie)); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestNewRequiresSecret(t *testing.T) {
	if _, err := New("  ", "sess", false); err == nil {
		t.Fatal("expected error for blank secret")
	}
}
