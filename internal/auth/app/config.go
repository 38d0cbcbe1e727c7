package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/ch1pu/agentinvest/pkg/jwtx"
)

type Config struct {
	JWTSecret        string // Required: HMAC secret for access tokens
	JWTRefreshSecret string // Required: HMAC secret for refresh tokens, must differ from JWTSecret
	Issuer           string // Optional: issuer claim for tokens (default: agentinvest-auth)

	AccessTokenTTL  time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTokenTTL time.Duration // Optional: refresh token lifetime (default: 720h)

	DatabaseDriver string // Optional: postgres or sqlite (default: postgres)
	DatabaseURL    string // Required for postgres; sqlite falls back to ./auth.db
	RedisAddr      string // Optional: Redis host:port (default: localhost:6379)
	RedisPassword  string // Optional

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-session sweep interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		Issuer:           getEnvOrDefault("AUTH_ISSUER", "agentinvest-auth"),

		AccessTokenTTL:  getEnvDurationOrDefault("JWT_EXPIRES_IN", jwtx.DefaultAccessTokenTTL),
		RefreshTokenTTL: getEnvDurationOrDefault("JWT_REFRESH_EXPIRES_IN", jwtx.DefaultRefreshTokenTTL),

		DatabaseDriver: getEnvOrDefault("DATABASE_DRIVER", "postgres"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisAddr:      getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// Validate enforces the startup contract. Missing or shared signing secrets
// are unrecoverable configuration errors.
func (cfg Config) Validate() error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if cfg.JWTRefreshSecret == "" {
		return errors.New("JWT_REFRESH_SECRET is required")
	}
	if cfg.JWTSecret == cfg.JWTRefreshSecret {
		return errors.New("JWT_SECRET and JWT_REFRESH_SECRET must be distinct")
	}

	switch cfg.DatabaseDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	case "sqlite":
		// DatabaseURL optional; defaults to a local file
	default:
		return errors.New("DATABASE_DRIVER must be postgres or sqlite")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
