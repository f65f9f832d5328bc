package config

import (
	"fmt"
	"os"
)

// Config holds everything read from the environment.
type Config struct {
	Port        string
	MongoURL    string
	MongoDB     string
	CachePath   string
	JWTSecret   string
	FrontendURL string
}

// Load reads the configuration from environment variables, applying
// the defaults the deployment expects.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		MongoURL:    os.Getenv("MONGO_URL"),
		MongoDB:     getEnv("MONGO_DB", "masroufi"),
		CachePath:   getEnv("CACHE_PATH", "data/cache.db"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	if cfg.MongoURL == "" {
		return cfg, fmt.Errorf("MONGO_URL environment variable is required")
	}
	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
