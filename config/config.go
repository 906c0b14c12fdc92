package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// RecipeDuplicateGuard rejects recipes identical to an existing one by
	// the same author. Policy choice, off by default.
	RecipeDuplicateGuard bool
}

// LoadConfig creates a new Config instance with values from environment
// variables, falling back to Docker secrets in production.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerPort: getSetting("SERVER_PORT", "8080"),
		ServerHost: getSetting("SERVER_HOST", "0.0.0.0"),
		DBHost:     getSetting("DB_HOST", "localhost"),
		DBPort:     getSetting("DB_PORT", "5432"),
		DBUser:     getSetting("DB_USER", "postgres"),
		DBPassword: getSetting("DB_PASSWORD", ""),
		DBName:     getSetting("DB_NAME", "platefeed"),
		DBSSLMode:  getSetting("DB_SSL_MODE", "disable"),
		RedisHost:  getSetting("REDIS_HOST", "localhost"),
		RedisPort:  getSetting("REDIS_PORT", "6379"),
		RedisURL:   getSetting("REDIS_URL", ""),
		JWTSecret:  getSetting("JWT_SECRET", ""),
	}
	cfg.RedisPassword = getSetting("REDIS_PASSWORD", "")

	if db := getSetting("REDIS_DB", "0"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB value %q", db)
		}
		cfg.RedisDB = n
	}

	cfg.RecipeDuplicateGuard = getSetting("RECIPE_DUPLICATE_GUARD", "") == "true"

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// getSetting reads an environment variable, then the matching Docker secret,
// then falls back to the default.
func getSetting(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	if value := readSecret(strings.ToLower(name)); value != "" {
		return value
	}
	return fallback
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
