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

	// S3 configuration
	S3Bucket  string
	AWSRegion string
}

// LoadConfig creates a new Config instance with values from environment
// variables, falling back to Docker secrets in production.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerPort:    envOr("SERVER_PORT", "8080"),
		ServerHost:    envOr("SERVER_HOST", "0.0.0.0"),
		DBHost:        envOr("DB_HOST", "localhost"),
		DBPort:        envOr("DB_PORT", "5432"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBSSLMode:     envOr("DB_SSL_MODE", "disable"),
		RedisHost:     envOr("REDIS_HOST", "localhost"),
		RedisPort:     envOr("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisURL:      os.Getenv("REDIS_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		S3Bucket:      os.Getenv("S3_BUCKET_NAME"),
		AWSRegion:     os.Getenv("AWS_REGION"),
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB value %q: %w", v, err)
		}
		cfg.RedisDB = db
	}

	if GetEnvironment() == Production {
		loadProdSecrets(cfg)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadProdSecrets overlays Docker secrets onto the environment values.
func loadProdSecrets(cfg *Config) {
	if v := readSecret("db_password"); v != "" {
		cfg.DBPassword = v
	}
	if v := readSecret("jwt_secret"); v != "" {
		cfg.JWTSecret = v
	}
	if v := readSecret("redis_password"); v != "" {
		cfg.RedisPassword = v
	}
	if v := readSecret("redis_url"); v != "" {
		cfg.RedisURL = v
	}
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

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
