// Package session stores the API access token in an encrypted cookie.
package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sakhike1/officeboard/pkg/crypto"
)

// ErrExpired is returned when the cookie outlived its token.
var ErrExpired = errors.New("session expired")

// Manager issues and reads session cookies.
type Manager struct {
	secret     string
	cookieName string
	secure     bool
	now        func() time.Time
}

type payload struct {
	Token     string `json:"t"`
	ExpiresAt int64  `json:"e"`
}

// New constructs a Manager. secret must be non-empty.
func New(secret, cookieName string, secure bool) (Manager, error) {
	if strings.TrimSpace(secret) == "" {
		return Manager{}, errors.New("session secret required")
	}
	if cookieName == "" {
		cookieName = "officeboard_session"
	}
	return Manager{secret: secret, cookieName: cookieName, secure: secure, now: time.Now}, nil
}

// MakeCookie seals token into a cookie that expires with it.
func (m Manager) MakeCookie(token string, ttl time.Duration) (*http.Cookie, error) {
	if ttl <= 0 {
		ttl = time.Hour
	}
	expires := m.now().Add(ttl)
	raw, err := json.Marshal(payload{Token: token, ExpiresAt: expires.Unix()})
	if err != nil {
		return nil, err
	}
	sealed, err := crypto.SealToken(m.secret, string(raw))
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    sealed,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// TokenFromRequest opens the session cookie. It returns http.ErrNoCookie
// when the request carries none.
func (m Manager) TokenFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return "", err
	}
	plain, err := crypto.OpenToken(m.secret, cookie.Value)
	if err != nil {
		return "", err
	}
	var p payload
	if err := json.Unmarshal([]byte(plain), &p); err != nil {
		return "", err
	}
	if p.Token == "" {
		return "", errors.New("empty session token")
	}
	if m.now().Unix() >= p.ExpiresAt {
		return "", ErrExpired
	}
	return p.Token, nil
}

// ExpireCookie returns a cookie that deletes the session.
func (m Manager) ExpireCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
