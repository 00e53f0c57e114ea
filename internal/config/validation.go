package config

import (
	"fmt"
	"strings"

	"github.com/deftunes/goextract/internal/errors"
	"github.com/deftunes/goextract/internal/sqlutil"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
// Violations are collected and returned as a single ConfigurationError so
// the operator sees every bad field at once.
func (c *Config) Validate() error {
	var errs ValidationErrors

	errs = append(errs, c.validateAPI()...)
	errs = append(errs, c.validateDatabase()...)
	errs = append(errs, c.validatePipeline()...)
	errs = append(errs, c.validateLogging()...)

	if len(errs) > 0 {
		return errors.NewConfigurationError("invalid settings", errs)
	}
	return nil
}

func (c *Config) validateAPI() ValidationErrors {
	var errs ValidationErrors

	if c.API.BaseURL == "" {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: "base_url is required",
		})
	} else if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: "base_url must start with http:// or https://",
		})
	}

	if c.API.Timeout <= 0 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout",
			Message: "timeout must be positive",
		})
	}

	if c.API.MaxRetries < 1 {
		errs = append(errs, ValidationError{
			Field:   "api.max_retries",
			Message: "max_retries must be at least 1",
		})
	}

	if c.API.RateLimit <= 0 {
		errs = append(errs, ValidationError{
			Field:   "api.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	return errs
}

func (c *Config) validateDatabase() ValidationErrors {
	var errs ValidationErrors
	db := &c.Database

	validDrivers := map[string]bool{"postgres": true, "mysql": true}
	if !validDrivers[db.Driver] {
		errs = append(errs, ValidationError{
			Field:   "database.driver",
			Message: "driver must be 'postgres' or 'mysql'",
		})
	}

	if db.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "database.host",
			Message: "host is required",
		})
	}

	if db.Port <= 0 || db.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "database.port",
			Message: "port must be between 1 and 65535",
		})
	}

	if db.User == "" {
		errs = append(errs, ValidationError{
			Field:   "database.user",
			Message: "user is required",
		})
	}

	if db.Password == "" {
		errs = append(errs, ValidationError{
			Field:   "database.password",
			Message: "password is required",
		})
	}

	if db.Database == "" {
		errs = append(errs, ValidationError{
			Field:   "database.database",
			Message: "database name is required",
		})
	}

	if db.SongsTable == "" {
		errs = append(errs, ValidationError{
			Field:   "database.songs_table",
			Message: "songs_table is required",
		})
	} else if !sqlutil.IsValidQualifiedIdentifier(db.SongsTable) {
		errs = append(errs, ValidationError{
			Field:   "database.songs_table",
			Message: "songs_table must be a valid (optionally schema-qualified) identifier",
		})
	}

	if err := c.validateSSLMode(); err != nil {
		errs = append(errs, *err)
	}

	return errs
}

func (c *Config) validateSSLMode() *ValidationError {
	mode := c.Database.SSLMode
	if mode == "" {
		return nil
	}

	var valid map[string]bool
	switch c.Database.Driver {
	case "mysql":
		valid = map[string]bool{"disable": true, "preferred": true, "required": true}
	default:
		valid = map[string]bool{
			"disable": true, "allow": true, "prefer": true,
			"require": true, "verify-ca": true, "verify-full": true,
		}
	}

	if !valid[mode] {
		return &ValidationError{
			Field:   "database.sslmode",
			Message: fmt.Sprintf("sslmode %q is not valid for driver %q", mode, c.Database.Driver),
		}
	}
	return nil
}

func (c *Config) validatePipeline() ValidationErrors {
	var errs ValidationErrors

	validEnvs := map[string]bool{EnvDevelopment: true, EnvStaging: true, EnvProduction: true}
	if !validEnvs[c.Pipeline.Environment] {
		errs = append(errs, ValidationError{
			Field:   "pipeline.environment",
			Message: "environment must be 'development', 'staging', or 'production'",
		})
	}

	if c.Pipeline.BatchSize <= 0 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.batch_size",
			Message: "batch_size must be positive",
		})
	}

	if c.Pipeline.MaxWorkers < 1 {
		errs = append(errs, ValidationError{
			Field:   "pipeline.max_workers",
			Message: "max_workers must be at least 1",
		})
	}

	return errs
}

func (c *Config) validateLogging() ValidationErrors {
	var errs ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errs
}
