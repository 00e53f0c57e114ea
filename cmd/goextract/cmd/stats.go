package cmd

import (
	"context"
	"fmt"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/deftunes/goextract/internal/extractor"
	"github.com/deftunes/goextract/internal/logger"
)

var statsCmd = &cobra.Command{
	Use:   "stats [table]",
	Short: "Show row count, size, and schema for a source table",
	Long: `Stats inspects a table in the source database and prints its row
count, on-disk size, and column layout. With no argument it inspects the
configured songs table.

Example:
  goextract stats --config extract.yaml
  goextract stats deftunes.invoices`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	table := cfg.Database.SongsTable
	if len(args) == 1 {
		table = args[0]
	}

	db := extractor.NewDatabaseSource(&cfg.Database, cfg.Pipeline.BatchSize, log)

	stats, err := db.Stats(context.Background(), table)
	if err != nil {
		return fmt.Errorf("failed to inspect table: %w", err)
	}

	cmd.Printf("\n=== Table: %s ===\n", stats.Table)
	cmd.Printf("Rows: %d\n", stats.RowCount)
	cmd.Printf("Size: %s\n", stats.Size)
	cmd.Printf("\nColumns:\n")
	printColumns(cmd, stats.Columns)

	return nil
}

// printColumns renders the column listing padded by display width so names
// with multi-byte runes stay aligned.
func printColumns(cmd *cobra.Command, cols []extractor.ColumnInfo) {
	nameWidth := runewidth.StringWidth("NAME")
	typeWidth := runewidth.StringWidth("TYPE")
	for _, col := range cols {
		if w := runewidth.StringWidth(col.Name); w > nameWidth {
			nameWidth = w
		}
		if w := runewidth.StringWidth(col.DataType); w > typeWidth {
			typeWidth = w
		}
	}

	cmd.Printf("  %s  %s  %s\n",
		runewidth.FillRight("NAME", nameWidth),
		runewidth.FillRight("TYPE", typeWidth),
		"NULLABLE")
	for _, col := range cols {
		nullable := "no"
		if col.Nullable {
			nullable = "yes"
		}
		cmd.Printf("  %s  %s  %s\n",
			runewidth.FillRight(col.Name, nameWidth),
			runewidth.FillRight(col.DataType, typeWidth),
			nullable)
	}
}
