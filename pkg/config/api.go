package config

import "time"

// APIConfig holds runtime configuration for the API service.
type APIConfig struct {
	Environment        string
	Addr               string
	Store              string
	DatabaseURL        string
	MigrationsDir      string
	JWTSecret          string
	AccessTokenTTL     time.Duration
	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int
	SessionRedisAddr   string
	SessionRedisPass   string
	SessionRedisDB     int
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
	LogLevel           string
}

// LoadAPIConfig constructs an APIConfig from environment variables.
func LoadAPIConfig() APIConfig {
	return APIConfig{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               GetString("API_ADDR", ":4000"),
		Store:              GetString("API_STORE", "postgres"),
		DatabaseURL:        GetString("DATABASE_URL", "postgres://officeboard:officeboard@db:5432/officeboard?sslmode=disable"),
		MigrationsDir:      GetString("DB_MIGRATIONS_DIR", ""),
		JWTSecret:          GetString("JWT_SECRET", "supersecuresecret"),
		AccessTokenTTL:     time.Duration(GetInt("ACCESS_TOKEN_TTL_MIN", 60)) * time.Minute,
		RateLimitRedisAddr: GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass: GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:   GetInt("RATE_LIMIT_REDIS_DB", 0),
		SessionRedisAddr:   GetString("SESSION_REDIS_ADDR", GetString("RATE_LIMIT_REDIS_ADDR", "")),
		SessionRedisPass:   GetString("SESSION_REDIS_PASSWORD", GetString("RATE_LIMIT_REDIS_PASSWORD", "")),
		SessionRedisDB:     GetInt("SESSION_REDIS_DB", 0),
		CORSAllowedOrigins: GetList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:4100"}),
		RequestTimeout:     GetDuration("API_REQUEST_TIMEOUT", 10*time.Second),
		LogLevel:           GetString("LOG_LEVEL", "info"),
	}
}
