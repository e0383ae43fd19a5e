package httpx

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/sakhike1/officeboard/internal/service/auth"
	"github.com/sakhike1/officeboard/internal/service/dashboard"
	"github.com/sakhike1/officeboard/internal/service/office"
	"github.com/sakhike1/officeboard/internal/service/worker"
	"github.com/sakhike1/officeboard/pkg/avatar"
)

// Services groups the domain services the API exposes.
type Services struct {
	Auth      auth.Service
	Offices   office.Service
	Workers   worker.Service
	Dashboard dashboard.Service
}

// Options tunes transport concerns.
type Options struct {
	Limiter        RateLimiter
	DBHealth       func(context.Context) error
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// Router wires HTTP endpoints to services.
type Router struct {
	mux            *http.ServeMux
	handler        http.Handler
	logger         *slog.Logger
	auth           auth.Service
	offices        office.Service
	workers        worker.Service
	summary        dashboard.Service
	upgrader       websocket.Upgrader
	limiter        RateLimiter
	dbHealth       func(context.Context) error
	requestTimeout time.Duration

	metricsOnce        sync.Once
	metricsInitialized bool
	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	rateLimitHits      *prometheus.CounterVec
}

const (
	rateWindowDefault  = time.Minute
	rateWindowRealtime = 30 * time.Second
	rateLimitSignup    = 5
	rateLimitLogin     = 12
	rateLimitUserWrite = 60
	rateLimitUserRead  = 240
	rateLimitWebsocket = 30
	healthCheckTimeout = 2 * time.Second
)

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, svc Services, opts Options) *Router {
	r := &Router{
		mux:            http.NewServeMux(),
		logger:         logger,
		auth:           svc.Auth,
		offices:        svc.Offices,
		workers:        svc.Workers,
		summary:        svc.Dashboard,
		limiter:        opts.Limiter,
		dbHealth:       opts.DBHealth,
		requestTimeout: opts.RequestTimeout,
	}
	if r.limiter == nil {
		r.limiter = NewMemoryRateLimiter()
	}
	if r.requestTimeout <= 0 {
		r.requestTimeout = 10 * time.Second
	}
	r.upgrader = websocket.Upgrader{CheckOrigin: originChecker(opts.AllowedOrigins)}
	r.initMetrics()
	r.register()

	r.handler = cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         600,
	}).Handler(r.mux)
	return r
}

// ServeHTTP delegates to the CORS-wrapped mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Close()
	}
}

func (r *Router) register() {
	r.mux.HandleFunc("GET /healthz", r.audit("/healthz", r.handleHealthz))
	r.mux.Handle("GET /metrics", promhttp.Handler())
	r.mux.Handle("GET "+avatar.PathPrefix, http.StripPrefix(avatar.PathPrefix, http.FileServerFS(avatar.FS())))

	r.mux.HandleFunc("POST /auth/signup", r.audit("/auth/signup", r.withTimeout(r.withRateLimit("/auth/signup", rateLimitSignup, rateWindowDefault, rateLimitKeyIP, r.handleSignup))))
	r.mux.HandleFunc("POST /auth/login", r.audit("/auth/login", r.withTimeout(r.withRateLimit("/auth/login", rateLimitLogin, rateWindowDefault, rateLimitKeyIP, r.handleLogin))))
	r.mux.HandleFunc("GET /auth/me", r.audit("/auth/me", r.withTimeout(r.handlerAuthRate("/auth/me", rateLimitUserRead, rateWindowDefault, r.handleMe))))
	r.mux.HandleFunc("POST /auth/logout", r.audit("/auth/logout", r.withTimeout(r.handlerAuthRate("/auth/logout", rateLimitUserWrite, rateWindowDefault, r.handleLogout))))
	r.mux.HandleFunc("GET /ws/session", r.audit("/ws/session", r.requireAuthOrQuery(r.withRateLimit("/ws/session", rateLimitWebsocket, rateWindowRealtime, r.rateLimitKeyUser, r.handleSessionWS))))

	r.route("GET /offices", rateLimitUserRead, r.handleListOffices)
	r.route("POST /offices", rateLimitUserWrite, r.handleCreateOffice)
	r.route("GET /offices/{id}", rateLimitUserRead, r.handleGetOffice)
	r.route("DELETE /offices/{id}", rateLimitUserWrite, r.handleDeleteOffice)
	r.route("GET /offices/{id}/workers/count", rateLimitUserRead, r.handleCountWorkers)
	r.route("GET /offices/{id}/workers", rateLimitUserRead, r.handleListWorkers)
	r.route("POST /offices/{id}/workers", rateLimitUserWrite, r.handleCreateWorker)
	r.route("PUT /offices/{id}/workers/{workerID}", rateLimitUserWrite, r.handleUpdateWorker)
	r.route("DELETE /offices/{id}/workers/{workerID}", rateLimitUserWrite, r.handleDeleteWorker)
	r.route("GET /dashboard/summary", rateLimitUserRead, r.handleSummary)
}

// route registers an authenticated, rate limited JSON endpoint.
func (r *Router) route(pattern string, limit int, next http.HandlerFunc) {
	label := pattern
	if idx := strings.IndexByte(pattern, ' '); idx >= 0 {
		label = pattern[idx+1:]
	}
	r.mux.HandleFunc(pattern, r.audit(label, r.withTimeout(r.handlerAuthRate(label, limit, rateWindowDefault, next))))
}

func (r *Router) withTimeout(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), r.requestTimeout)
		defer cancel()
		next(w, req.WithContext(ctx))
	}
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	components := make(map[string]any)
	status := "ok"
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			status = "degraded"
			components["database"] = map[string]any{
				"status": "down",
				"error":  err.Error(),
			}
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}
	payload := map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, payload)
}

func (r *Router) audit(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		ctx := recorder.ctx
		if ctx == nil {
			ctx = req.Context()
		}
		duration := time.Since(start)
		r.recordRequestMetrics(req.Method, route, status, duration)

		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if reqID := strings.TrimSpace(req.Header.Get("X-Request-ID")); reqID != "" {
			fields = append(fields, "request_id", reqID)
		}
		if info, ok := authInfoFromContext(ctx); ok {
			fields = append(fields, "user_id", info.UserID)
		}

		switch {
		case status >= http.StatusInternalServerError:
			r.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			r.logger.Warn("http_request", fields...)
		default:
			r.logger.Info("http_request", fields...)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	ctx    context.Context
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) SetContext(ctx context.Context) {
	sr.ctx = ctx
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := sr.ResponseWriter.(http.Hijacker); ok {
		sr.status = http.StatusSwitchingProtocols
		return h.Hijack()
	}
	return nil, nil, errors.New("hijacker not supported")
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return remoteHost(req)
}

func remoteHost(req *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

// originChecker accepts websocket handshakes without an Origin header
// (server-side clients) or from an allowed browser origin.
func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	wildcard := false
	for _, origin := range allowed {
		if origin == "*" {
			wildcard = true
		}
		set[strings.TrimRight(origin, "/")] = struct{}{}
	}
	return func(req *http.Request) bool {
		origin := req.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}
		_, ok := set[strings.TrimRight(origin, "/")]
		return ok
	}
}
