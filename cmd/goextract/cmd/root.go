package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deftunes/goextract/internal/config"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile     string
	logLevel    string
	logFormat   string
	environment string
	batchSize   int
)

var rootCmd = &cobra.Command{
	Use:   "goextract",
	Short: "DeFtunes Data Extraction Pipeline",
	Long: `A CLI tool for the extraction stage of the DeFtunes data pipeline.

goextract pulls purchase data from the DeFtunes API (users and sessions)
and the songs catalog from the operational database, producing date-stamped
JSON datasets for the landing zone.

Features:
  - Incremental extraction over a [start_date, end_date] window
  - Automatic retry with exponential backoff on transient failures
  - Client-side API rate limiting
  - Batched database reads with stable ordering
  - Landing-zone output partitioned by dataset and date`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"Path to configuration file (optional; environment variables always apply)")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Pipeline overrides
	rootCmd.PersistentFlags().StringVar(&environment, "env", "",
		"Override pipeline environment (development, staging, production)")
	rootCmd.PersistentFlags().IntVar(&batchSize, "batch-size", 0,
		"Override database batch size (rows per page)")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel    string
	LogFormat   string
	Environment string
	BatchSize   int
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:    logLevel,
		LogFormat:   logFormat,
		Environment: environment,
		BatchSize:   batchSize,
	}
}

// loadConfig resolves the effective configuration: file and environment
// values first, then CLI flag overrides, then validation.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat,
		overrides.Environment, overrides.BatchSize)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
