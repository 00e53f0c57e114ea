package config

import (
	"strings"
	"testing"
	"time"

	"github.com/deftunes/goextract/internal/errors"
)

// validConfig returns a configuration that passes validation. Tests mutate
// one field at a time to isolate each rule.
func validConfig() *Config {
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
			Password:   "secret",
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

func TestValidConfig(t *testing.T) {
	cfg := validConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected no validation errors, got: %v", err)
	}
}

func assertViolation(t *testing.T, cfg *Config, field string) {
	t.Helper()

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error mentioning %q", field)
	}
	if !errors.IsConfigurationError(err) {
		t.Errorf("expected a configuration error, got %T", err)
	}
	if !strings.Contains(err.Error(), field) {
		t.Errorf("expected error to mention %q, got: %v", field, err)
	}
}

func TestMissingBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.API.BaseURL = ""
	assertViolation(t, cfg, "api.base_url")
}

func TestBaseURLRequiresHTTPScheme(t *testing.T) {
	cfg := validConfig()
	cfg.API.BaseURL = "ftp://api.deftunes.example"
	assertViolation(t, cfg, "api.base_url")
}

func TestZeroTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.API.Timeout = 0
	assertViolation(t, cfg, "api.timeout")
}

func TestZeroMaxRetries(t *testing.T) {
	cfg := validConfig()
	cfg.API.MaxRetries = 0
	assertViolation(t, cfg, "api.max_retries")
}

func TestZeroRateLimit(t *testing.T) {
	cfg := validConfig()
	cfg.API.RateLimit = 0
	assertViolation(t, cfg, "api.rate_limit")
}

func TestUnsupportedDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "sqlite"
	assertViolation(t, cfg, "database.driver")
}

func TestMissingDatabaseHost(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Host = ""
	assertViolation(t, cfg, "database.host")
}

func TestInvalidPort(t *testing.T) {
	for _, port := range []int{0, -1, 99999} {
		cfg := validConfig()
		cfg.Database.Port = port
		assertViolation(t, cfg, "database.port")
	}
}

func TestMissingPassword(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Password = ""
	assertViolation(t, cfg, "database.password")
}

func TestInvalidSongsTable(t *testing.T) {
	for _, table := range []string{"", "bad table!", "a.b.c", "songs; DROP TABLE songs"} {
		cfg := validConfig()
		cfg.Database.SongsTable = table
		assertViolation(t, cfg, "database.songs_table")
	}
}

func TestSSLModePerDriver(t *testing.T) {
	tests := []struct {
		driver  string
		sslmode string
		valid   bool
	}{
		{"postgres", "require", true},
		{"postgres", "verify-full", true},
		{"postgres", "preferred", false},
		{"postgres", "bogus", false},
		{"mysql", "required", true},
		{"mysql", "preferred", true},
		{"mysql", "require", false},
		{"mysql", "verify-full", false},
		{"postgres", "", true},
		{"mysql", "", true},
	}

	for _, tt := range tests {
		cfg := validConfig()
		cfg.Database.Driver = tt.driver
		cfg.Database.SSLMode = tt.sslmode

		err := cfg.Validate()
		if tt.valid && err != nil {
			t.Errorf("driver %q sslmode %q: expected valid, got: %v", tt.driver, tt.sslmode, err)
		}
		if !tt.valid {
			if err == nil {
				t.Errorf("driver %q sslmode %q: expected validation error", tt.driver, tt.sslmode)
			} else if !strings.Contains(err.Error(), "database.sslmode") {
				t.Errorf("driver %q sslmode %q: expected error about database.sslmode, got: %v", tt.driver, tt.sslmode, err)
			}
		}
	}
}

func TestUnknownEnvironment(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.Environment = "qa"
	assertViolation(t, cfg, "pipeline.environment")
}

func TestInvalidBatchSize(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.BatchSize = 0
	assertViolation(t, cfg, "pipeline.batch_size")
}

func TestInvalidMaxWorkers(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.MaxWorkers = 0
	assertViolation(t, cfg, "pipeline.max_workers")
}

func TestInvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	assertViolation(t, cfg, "logging.level")
}

func TestInvalidLogFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assertViolation(t, cfg, "logging.format")
}

func TestMultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.API.BaseURL = ""
	cfg.Database.Password = ""
	cfg.Pipeline.BatchSize = 0
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected multiple validation errors")
	}

	errStr := err.Error()
	for _, field := range []string{"api.base_url", "database.password", "pipeline.batch_size", "logging.format"} {
		if !strings.Contains(errStr, field) {
			t.Errorf("expected error to mention %q, got: %v", field, errStr)
		}
	}
}
