package config

import "time"

// DashboardConfig holds runtime configuration for the dashboard web UI.
type DashboardConfig struct {
	Environment   string
	Addr          string
	APIBaseURL    string
	SessionSecret string
	CookieName    string
	CookieSecure  bool
	APITimeout    time.Duration
	LogLevel      string
}

// LoadDashboardConfig constructs a DashboardConfig from environment variables.
func LoadDashboardConfig() DashboardConfig {
	return DashboardConfig{
		Environment:   GetString("APP_ENV", "development"),
		Addr:          GetString("DASHBOARD_ADDR", ":4100"),
		APIBaseURL:    GetString("API_BASE_URL", "http://localhost:4000"),
		SessionSecret: GetString("SESSION_SECRET", ""),
		CookieName:    GetString("SESSION_COOKIE_NAME", "officeboard_session"),
		CookieSecure:  GetBool("SESSION_COOKIE_SECURE", false),
		APITimeout:    GetDuration("DASHBOARD_API_TIMEOUT", 10*time.Second),
		LogLevel:      GetString("LOG_LEVEL", "info"),
	}
}
