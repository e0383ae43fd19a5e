package server

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"filippo.io/csrf"
	"github.com/gorilla/mux"

	"github.com/sakhike1/officeboard/internal/dashboard/session"
	"github.com/sakhike1/officeboard/internal/domain"
	apiclient "github.com/sakhike1/officeboard/pkg/api/client"
	"github.com/sakhike1/officeboard/pkg/avatar"
	"github.com/sakhike1/officeboard/pkg/config"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server hosts the dashboard web UI.
type Server struct {
	cfg       config.DashboardConfig
	api       *apiclient.Client
	sessions  session.Manager
	templates *template.Template
	router    *mux.Router
	handler   http.Handler
	logger    *slog.Logger
}

// New constructs a configured server ready to serve HTTP traffic.
func New(cfg config.DashboardConfig, logger *slog.Logger, opts ...apiclient.Option) (*Server, error) {
	if strings.TrimSpace(cfg.SessionSecret) == "" {
		return nil, errors.New("SESSION_SECRET must be configured for the dashboard")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APITimeout <= 0 {
		cfg.APITimeout = 10 * time.Second
	}
	apiClient, err := apiclient.New(cfg.APIBaseURL, opts...)
	if err != nil {
		return nil, err
	}
	sessionMgr, err := session.New(cfg.SessionSecret, cfg.CookieName, cfg.CookieSecure)
	if err != nil {
		return nil, err
	}
	tmplFS, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	templates, err := template.New("base").Funcs(templateFuncs).ParseFS(tmplFS, "*.html")
	if err != nil {
		return nil, err
	}
	srv := &Server{
		cfg:       cfg,
		api:       apiClient,
		sessions:  sessionMgr,
		templates: templates,
		router:    mux.NewRouter(),
		logger:    logger,
	}
	srv.registerRoutes()
	srv.handler = csrf.New().Handler(srv.router)
	return srv, nil
}

// ServeHTTP conforms to http.Handler. Cross-origin form posts are rejected.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	r := s.router
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.PathPrefix(avatar.PathPrefix).Handler(http.StripPrefix(avatar.PathPrefix, http.FileServerFS(avatar.FS()))).Methods(http.MethodGet)

	r.HandleFunc("/signin", s.handleSignInPage).Methods(http.MethodGet)
	r.HandleFunc("/signin", s.handleSignIn).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.requireAuth(s.handleLogout)).Methods(http.MethodPost)
	r.HandleFunc("/session/events", s.requireAuth(s.handleSessionEvents)).Methods(http.MethodGet)

	r.HandleFunc("/", s.requireAuth(s.handleHome)).Methods(http.MethodGet)
	r.HandleFunc("/office/new", s.requireAuth(s.handleOfficeNew)).Methods(http.MethodGet)
	r.HandleFunc("/office/new", s.requireAuth(s.handleOfficeCreate)).Methods(http.MethodPost)
	r.HandleFunc("/office/{id}", s.requireAuth(s.handleOfficeDetail)).Methods(http.MethodGet)
	r.HandleFunc("/office/{id}/delete", s.requireAuth(s.handleOfficeDelete)).Methods(http.MethodPost)
	r.HandleFunc("/office/{id}/workers", s.requireAuth(s.handleWorkerCreate)).Methods(http.MethodPost)
	r.HandleFunc("/office/{id}/workers/{workerID}", s.requireAuth(s.handleWorkerUpdate)).Methods(http.MethodPost)
	r.HandleFunc("/office/{id}/workers/{workerID}/delete", s.requireAuth(s.handleWorkerDelete)).Methods(http.MethodPost)
}

type viewerKey struct{}

// viewer is the signed-in user confirmed by the session guard.
type viewer struct {
	Token string
	User  apiclient.User
}

func viewerFrom(ctx context.Context) viewer {
	v, _ := ctx.Value(viewerKey{}).(viewer)
	return v
}

// requireAuth confirms the session with the API before rendering anything.
// Any failure clears the cookie and sends the browser to /signin.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := s.sessions.TokenFromRequest(r)
		if err != nil {
			if errors.Is(err, http.ErrNoCookie) {
				http.Redirect(w, r, "/signin", http.StatusSeeOther)
				return
			}
			s.logger.Warn("session cookie rejected", "error", err)
			http.SetCookie(w, s.sessions.ExpireCookie())
			redirectWithFlash(w, r, "/signin", "please sign in")
			return
		}
		ctx, cancel := s.apiContext(r.Context())
		user, err := s.api.CurrentUser(ctx, token)
		cancel()
		if err != nil {
			s.logger.Warn("session validation failed", "error", err)
			http.SetCookie(w, s.sessions.ExpireCookie())
			redirectWithFlash(w, r, "/signin", "please sign in")
			return
		}
		ctx = context.WithValue(r.Context(), viewerKey{}, viewer{Token: token, User: user})
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) apiContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.cfg.APITimeout)
}

func (s *Server) handleSignInPage(w http.ResponseWriter, r *http.Request) {
	if token, err := s.sessions.TokenFromRequest(r); err == nil && strings.TrimSpace(token) != "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "signin", map[string]any{
		"Title":      "Sign in",
		"Flash":      flashFromRequest(r),
		"Error":      "",
		"Email":      "",
		"HideChrome": true,
		"SignUp":     r.URL.Query().Get("mode") == "signup",
	})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "invalid form payload")
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	signUp := r.PostFormValue("mode") == "signup"

	ctx, cancel := s.apiContext(r.Context())
	defer cancel()
	var (
		sess apiclient.Session
		err  error
	)
	if signUp {
		sess, err = s.api.SignUp(ctx, email, password)
	} else {
		sess, err = s.api.SignIn(ctx, email, password)
	}
	if err != nil {
		s.logger.Warn("sign in failed", "sign_up", signUp, "error", err)
		s.render(w, r, http.StatusOK, "signin", map[string]any{
			"Title":      "Sign in",
			"Flash":      "",
			"Error":      errorMessage(err),
			"HideChrome": true,
			"SignUp":     signUp,
			"Email":      email,
		})
		return
	}
	cookie, err := s.sessions.MakeCookie(sess.Tokens.AccessToken, time.Duration(sess.Tokens.ExpiresIn)*time.Second)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, "session issuance failed")
		return
	}
	http.SetCookie(w, cookie)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	v := viewerFrom(r.Context())
	ctx, cancel := s.apiContext(r.Context())
	defer cancel()
	if err := s.api.SignOut(ctx, v.Token); err != nil {
		s.logger.Warn("sign out failed", "user_id", v.User.ID, "error", err)
	}
	http.SetCookie(w, s.sessions.ExpireCookie())
	redirectWithFlash(w, r, "/signin", "Signed out")
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, tpl string, data map[string]any) {
	if v := viewerFrom(r.Context()); v.User.ID != "" {
		data["User"] = v.User
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, tpl, data); err != nil {
		s.logger.Error("template render failed", "template", tpl, "error", err)
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.logger.Warn("dashboard error", "status", status, "message", message, "path", r.URL.Path)
	http.Error(w, message, status)
}

// renderAPIError maps a failed API call onto the page response.
func (s *Server) renderAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case apiclient.IsUnauthorized(err):
		http.SetCookie(w, s.sessions.ExpireCookie())
		redirectWithFlash(w, r, "/signin", "please sign in")
	case apiclient.IsNotFound(err):
		s.renderError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, context.DeadlineExceeded):
		s.renderError(w, r, http.StatusGatewayTimeout, message)
	default:
		s.renderError(w, r, http.StatusBadGateway, message)
	}
}

func errorMessage(err error) string {
	var apiErr apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "the server took too long to respond"
	}
	return "something went wrong, please try again"
}

func fieldErrorsOf(err error) map[string]string {
	var apiErr apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Fields
	}
	return nil
}

func flashFromRequest(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("flash"))
}

func redirectWithFlash(w http.ResponseWriter, r *http.Request, target, message string) {
	if strings.TrimSpace(target) == "" {
		target = "/"
	}
	if strings.TrimSpace(message) == "" {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	u, err := url.Parse(target)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	q := u.Query()
	q.Set("flash", message)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

func toDomainOffices(offices []apiclient.Office) []domain.Office {
	out := make([]domain.Office, len(offices))
	for i, o := range offices {
		out[i] = domain.Office{
			ID:        o.ID,
			Name:      o.Name,
			Location:  o.Location,
			Capacity:  o.Capacity,
			Color:     o.Color,
			Email:     o.Email,
			Phone:     o.Phone,
			CreatedAt: o.CreatedAt,
		}
	}
	return out
}
