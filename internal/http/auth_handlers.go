package httpx

import (
	"net/http"
	"time"

	"github.com/sakhike1/officeboard/internal/domain"
	"github.com/sakhike1/officeboard/internal/service/auth"
	"github.com/sakhike1/officeboard/internal/ws"
)

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type tokensResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type sessionResponse struct {
	User   userResponse   `json:"user"`
	Tokens tokensResponse `json:"tokens"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

func newSessionResponse(u *domain.User, tokens auth.TokenPair) sessionResponse {
	return sessionResponse{
		User: newUserResponse(u),
		Tokens: tokensResponse{
			AccessToken: tokens.AccessToken,
			TokenType:   "Bearer",
			ExpiresIn:   int64(tokens.ExpiresIn / time.Second),
		},
	}
}

func (r *Router) handleSignup(w http.ResponseWriter, req *http.Request) {
	var payload credentialsPayload
	if !decodeJSON(w, req, &payload) {
		return
	}
	user, tokens, err := r.auth.Signup(req.Context(), payload.Email, payload.Password)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionResponse(user, tokens))
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	var payload credentialsPayload
	if !decodeJSON(w, req, &payload) {
		return
	}
	user, tokens, err := r.auth.Login(req.Context(), payload.Email, payload.Password)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(user, tokens))
}

func (r *Router) handleMe(w http.ResponseWriter, req *http.Request) {
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	user, _, err := r.auth.Authorize(req.Context(), info.Token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) {
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	if err := r.auth.Logout(req.Context(), info.Token); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSessionWS streams the caller's session events until either side hangs up.
func (r *Router) handleSessionWS(w http.ResponseWriter, req *http.Request) {
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	client := ws.NewClient(conn, r.logger)
	detach := r.auth.Subscribe(info.UserID, client)
	defer detach()
	client.Run()
}
