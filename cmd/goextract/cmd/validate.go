package cmd

import (
	"context"
	"fmt"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/deftunes/goextract/internal/extractor"
	"github.com/deftunes/goextract/internal/logger"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and check source connectivity",
	Long: `Validate checks the configuration and probes both extraction sources.

Checks performed:
  - Configuration required fields and value ranges
  - API health endpoint reachability
  - Database connectivity (SELECT 1 probe)

Example:
  goextract validate --config extract.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx := context.Background()

	api := extractor.NewAPISource(&cfg.API, log)
	db := extractor.NewDatabaseSource(&cfg.Database, cfg.Pipeline.BatchSize, log)

	cmd.Printf("\n=== Source Connectivity ===\n")

	ok := reportCheck(cmd, "API "+cfg.API.BaseURL, api.ValidateConnection(ctx))
	dbTarget := fmt.Sprintf("Database %s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	ok = reportCheck(cmd, dbTarget, db.ValidateConnection(ctx)) && ok

	if !ok {
		return fmt.Errorf("one or more sources are unreachable")
	}

	cmd.Printf("\n%s Configuration valid, all sources reachable\n", color.Green.Sprint("✔"))
	return nil
}

func reportCheck(cmd *cobra.Command, name string, healthy bool) bool {
	if healthy {
		cmd.Printf("%s %s\n", color.Green.Sprint("✔"), name)
	} else {
		cmd.Printf("%s %s\n", color.Red.Sprint("✖"), name)
	}
	return healthy
}
