package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/deftunes/goextract/internal/errors"
)

// Load resolves configuration from the process environment and, when
// configPath is non-empty, a YAML file. Environment variables take
// precedence over file values; environment-tier defaults apply only to
// settings left unset by both.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	bindEnv(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigurationError("failed to read config file", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	applyEnvironmentDefaults(cfg, resolveEnvironment(v, cfg))

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.NewConfigurationError("failed to unmarshal config", err)
	}

	substituteEnvVars(cfg)
	normalize(cfg)

	return cfg, nil
}

// bindEnv maps flat environment variable names onto nested config keys.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("api.base_url", "API_BASE_URL")
	_ = v.BindEnv("api.timeout", "API_TIMEOUT")
	_ = v.BindEnv("api.max_retries", "API_MAX_RETRIES")
	_ = v.BindEnv("api.rate_limit", "API_RATE_LIMIT")
	_ = v.BindEnv("database.driver", "DB_DRIVER")
	_ = v.BindEnv("database.host", "DB_HOST")
	_ = v.BindEnv("database.port", "DB_PORT")
	_ = v.BindEnv("database.user", "DB_USER")
	_ = v.BindEnv("database.password", "DB_PASSWORD")
	_ = v.BindEnv("database.database", "DB_NAME")
	_ = v.BindEnv("database.songs_table", "DB_SONGS_TABLE")
	_ = v.BindEnv("database.sslmode", "DB_SSLMODE")
	_ = v.BindEnv("pipeline.environment", "ENVIRONMENT")
	_ = v.BindEnv("pipeline.batch_size", "BATCH_SIZE")
	_ = v.BindEnv("pipeline.max_workers", "MAX_WORKERS")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("logging.output", "LOG_OUTPUT")
}

// resolveEnvironment peeks at the effective environment before unmarshal so
// environment-tier defaults can be layered first.
func resolveEnvironment(v *viper.Viper, cfg *Config) string {
	if env := strings.ToLower(v.GetString("pipeline.environment")); env != "" {
		return env
	}
	return cfg.Pipeline.Environment
}

// applyEnvironmentDefaults layers environment-tier defaults onto the base
// defaults. Explicit file or environment-variable values still win at
// unmarshal time.
func applyEnvironmentDefaults(cfg *Config, env string) {
	switch env {
	case EnvProduction:
		cfg.Logging.Level = "warning"
		cfg.Logging.Format = "json"
		cfg.Pipeline.MaxWorkers = 8
	case EnvDevelopment:
		cfg.Logging.Level = "debug"
		cfg.Pipeline.BatchSize = 100
	}
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) {
	cfg.API.BaseURL = expandEnvVar(cfg.API.BaseURL)

	cfg.Database.Host = expandEnvVar(cfg.Database.Host)
	cfg.Database.User = expandEnvVar(cfg.Database.User)
	cfg.Database.Password = expandEnvVar(cfg.Database.Password)
	cfg.Database.Database = expandEnvVar(cfg.Database.Database)

	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Return original if env var not found
		return match
	})
}

// normalize trims and lowercases free-form values so downstream comparisons
// stay exact.
func normalize(cfg *Config) {
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	cfg.Pipeline.Environment = strings.ToLower(strings.TrimSpace(cfg.Pipeline.Environment))
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
}

// ApplyOverrides applies CLI flag overrides to the loaded configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(logLevel, logFormat, environment string, batchSize int) {
	if logLevel != "" {
		c.Logging.Level = strings.ToLower(logLevel)
	}
	if logFormat != "" {
		c.Logging.Format = strings.ToLower(logFormat)
	}
	if environment != "" {
		c.Pipeline.Environment = strings.ToLower(environment)
	}
	if batchSize > 0 {
		c.Pipeline.BatchSize = batchSize
	}
}
