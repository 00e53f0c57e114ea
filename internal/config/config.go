// Package config provides configuration structures and loading for the
// extraction pipeline. Settings are resolved once at startup from the
// environment (and an optional YAML file) and treated as immutable.
package config

import "time"

// Environment names recognized in pipeline.environment.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Config represents the complete application configuration.
type Config struct {
	API      APIConfig      `yaml:"api" mapstructure:"api"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

// APIConfig represents the sessions API connection configuration.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxRetries int           `yaml:"max_retries" mapstructure:"max_retries"`
	RateLimit  int           `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second
}

// DatabaseConfig represents the songs database connection configuration.
type DatabaseConfig struct {
	Driver     string `yaml:"driver" mapstructure:"driver"` // postgres or mysql
	Host       string `yaml:"host" mapstructure:"host"`
	Port       int    `yaml:"port" mapstructure:"port"`
	User       string `yaml:"user" mapstructure:"user"`
	Password   string `yaml:"password" mapstructure:"password"`
	Database   string `yaml:"database" mapstructure:"database"`
	SongsTable string `yaml:"songs_table" mapstructure:"songs_table"`
	SSLMode    string `yaml:"sslmode" mapstructure:"sslmode"` // driver-specific; empty means driver default
}

// PipelineConfig represents extraction run settings.
type PipelineConfig struct {
	Environment string `yaml:"environment" mapstructure:"environment"` // development, staging, production
	BatchSize   int    `yaml:"batch_size" mapstructure:"batch_size"`
	MaxWorkers  int    `yaml:"max_workers" mapstructure:"max_workers"` // reserved for downstream transform stages
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
// Environment-specific defaults are layered on top by the loader.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    "http://localhost:8000",
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			RateLimit:  100,
		},
		Database: DatabaseConfig{
			Driver:     "postgres",
			Host:       "localhost",
			Port:       5432,
			User:       "postgres",
			Database:   "deftunes",
			SongsTable: "deftunes.songs",
		},
		Pipeline: PipelineConfig{
			Environment: EnvDevelopment,
			BatchSize:   10000,
			MaxWorkers:  4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// IsProduction reports whether the pipeline runs against production backends.
func (p *PipelineConfig) IsProduction() bool {
	return p.Environment == EnvProduction
}
