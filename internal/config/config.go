package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	ServerPort    string
	StorageDriver string
	DatabaseURL   string
	LogLevel      string

	JWTSecret string
	TokenTTL  time.Duration

	Skinport struct {
		APIURL   string
		ClientID string
		APIKey   string
	}
}

func Load() (*Config, error) {
	// Load .env file if it exists (useful for local dev)
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		StorageDriver: getEnv("STORAGE_DRIVER", StoragePostgres),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
	}

	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL must be set")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StoragePostgres, StorageMemory, cfg.StorageDriver)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive")
	}
	cfg.TokenTTL = ttl

	// Skinport public endpoints work without credentials.
	cfg.Skinport.APIURL = getEnv("SKINPORT_API_URL", "https://api.skinport.com/v1")
	cfg.Skinport.ClientID = os.Getenv("SKINPORT_CLIENT_ID")
	cfg.Skinport.APIKey = os.Getenv("SKINPORT_API_KEY")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
