package config

import (
	"fmt"
	"os"
)

// Config holds the application configuration
type Config struct {
	Port         string
	DatabaseURL  string
	RedisURL     string
	JWTSecret    string
	LedgerURL    string
	LedgerAppID  string
	LedgerAPIKey string
	Production   bool
}

// Load reads configuration from environment variables. A missing signing
// secret or database URL is a startup error; the process must not serve
// traffic without them.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),
		LedgerURL:   getEnv("LEDGER_URL", "https://developer.worldcoin.org/api/v2/minikit"),
		LedgerAppID: os.Getenv("LEDGER_APP_ID"),
		Production:  os.Getenv("ENV") == "production",
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	cfg.LedgerAPIKey = os.Getenv("LEDGER_API_KEY")

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
