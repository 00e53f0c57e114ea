// Package landing writes extraction results to a local landing zone laid
// out with Hive-style date partitions, one JSON file per dataset.
package landing

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/deftunes/goextract/internal/dateutil"
	"github.com/deftunes/goextract/internal/extractor"
	"github.com/deftunes/goextract/internal/logger"
	"github.com/deftunes/goextract/internal/types"
)

// PartitionPath returns the partition directory for a dataset and date,
// e.g. "users/year=2024/month=03/day=07". Downstream Glue crawlers key on
// this layout, so it must stay stable.
func PartitionPath(dataset, date string) (string, error) {
	t, err := dateutil.Parse(date)
	if err != nil {
		return "", fmt.Errorf("partition date: %w", err)
	}
	return filepath.Join(
		dataset,
		fmt.Sprintf("year=%04d", t.Year()),
		fmt.Sprintf("month=%02d", int(t.Month())),
		fmt.Sprintf("day=%02d", t.Day()),
	), nil
}

// Writer persists extraction results under a base directory.
type Writer struct {
	baseDir string
	log     *logger.Logger
}

// NewWriter creates a Writer rooted at baseDir.
func NewWriter(baseDir string, log *logger.Logger) *Writer {
	return &Writer{baseDir: baseDir, log: log.Named("landing")}
}

// WriteResult writes one file per dataset under the partition for the
// window's end date and returns the written paths. Records keep their field
// order on disk; empty datasets serialize as [] so downstream readers see a
// valid document either way.
func (w *Writer) WriteResult(result *extractor.ExtractionResult) ([]string, error) {
	datasets := []struct {
		name    string
		records []*types.Record
	}{
		{"users", result.Users},
		{"sessions", result.Sessions},
		{"songs", result.Songs},
	}

	var written []string
	for _, ds := range datasets {
		path, err := w.writeDataset(ds.name, result.Metadata.EndDate, ds.records)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func (w *Writer) writeDataset(dataset, date string, records []*types.Record) (string, error) {
	partition, err := PartitionPath(dataset, date)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(w.baseDir, partition)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating partition directory %s: %w", dir, err)
	}

	if records == nil {
		records = []*types.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding %s records: %w", dataset, err)
	}

	path := filepath.Join(dir, dataset+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	w.log.Infof("Wrote %d %s records to %s", len(records), dataset, path)
	return path, nil
}
