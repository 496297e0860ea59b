package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that every field the server cannot run without is
// set. Database credentials and the JWT secret have no safe defaults.
func ValidateConfig(cfg *Config) error {
	var errs []string

	required := map[string]string{
		"DB_USER":     cfg.DBUser,
		"DB_PASSWORD": cfg.DBPassword,
		"DB_NAME":     cfg.DBName,
		"JWT_SECRET":  cfg.JWTSecret,
	}
	for field, value := range required {
		if value == "" {
			errs = append(errs, ValidationError{Field: field, Message: "is required"}.Error())
		}
	}

	if cfg.RedisDB < 0 {
		errs = append(errs, ValidationError{Field: "REDIS_DB", Message: "must not be negative"}.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}
