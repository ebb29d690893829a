package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks a loaded Config against its struct tags and the
// cross-field rules a tag alone can't express (e.g. a postgres database
// type requiring a DSN).
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Database.Type == "postgres" && cfg.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required when database.type is %q", "postgres")
	}

	if cfg.Auth.Secret != "" && len(cfg.Auth.Secret) < 32 {
		return fmt.Errorf("auth.secret must be at least 32 characters")
	}

	return nil
}
