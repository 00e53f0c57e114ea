// Package quality implements record-level validation of extracted datasets.
// The extraction sources never reject data themselves; this checker is the
// opt-in collaborator that raises DataQualityError before records are handed
// downstream.
package quality

import (
	"fmt"

	"github.com/deftunes/goextract/internal/errors"
	"github.com/deftunes/goextract/internal/extractor"
	"github.com/deftunes/goextract/internal/logger"
	"github.com/deftunes/goextract/internal/types"
)

// keyFields maps each dataset to the field every record must carry with a
// non-empty value, unique across the dataset.
var keyFields = map[string]string{
	"users":    "user_id",
	"sessions": "session_id",
	"songs":    "song_id",
}

// CheckResult reports the outcome of one check over one dataset.
type CheckResult struct {
	Dataset string
	Check   string
	Records int
	Passed  bool
	Detail  string
}

// Stats aggregates one full checker pass.
type Stats struct {
	ChecksRun    int
	ChecksPassed int
	ChecksFailed int
	TotalRecords int
}

// Checker validates an ExtractionResult. Checks run in dataset order and the
// first failure stops the pass; the returned Stats cover what ran.
type Checker struct {
	log *logger.Logger
}

// NewChecker creates a Checker logging through the given logger.
func NewChecker(log *logger.Logger) *Checker {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Checker{log: log.Named("quality")}
}

// Check runs the key-field and metadata checks over every dataset. On
// failure it returns a DataQualityError naming the failed check; the
// extraction itself is already complete by the time this runs.
func (c *Checker) Check(result *extractor.ExtractionResult) (*Stats, error) {
	stats := &Stats{}

	datasets := []struct {
		name    string
		records []*types.Record
	}{
		{"users", result.Users},
		{"sessions", result.Sessions},
		{"songs", result.Songs},
	}

	c.log.Infof("Starting quality checks for %d datasets", len(datasets))

	for _, ds := range datasets {
		stats.TotalRecords += len(ds.records)

		for _, res := range []CheckResult{
			checkKeyPresent(ds.name, ds.records),
			checkKeyUnique(ds.name, ds.records),
		} {
			stats.ChecksRun++
			if !res.Passed {
				stats.ChecksFailed++
				c.log.Errorf("Check %q FAILED for %s: %s", res.Check, res.Dataset, res.Detail)
				return stats, errors.NewDataQualityError(res.Dataset+" "+res.Check, res.Detail)
			}
			stats.ChecksPassed++
			c.log.Debugf("Check %q PASSED for %s (%d records)", res.Check, res.Dataset, res.Records)
		}
	}

	res := checkMetadata(&result.Metadata)
	stats.ChecksRun++
	if !res.Passed {
		stats.ChecksFailed++
		c.log.Errorf("Check %q FAILED: %s", res.Check, res.Detail)
		return stats, errors.NewDataQualityError(res.Check, res.Detail)
	}
	stats.ChecksPassed++

	c.log.Infof("Quality checks complete: %d checks passed, %d records inspected",
		stats.ChecksPassed, stats.TotalRecords)

	return stats, nil
}

// checkKeyPresent verifies every record carries the dataset's key field with
// a non-empty value. Empty datasets pass vacuously.
func checkKeyPresent(dataset string, records []*types.Record) CheckResult {
	res := CheckResult{Dataset: dataset, Check: "key present", Records: len(records), Passed: true}
	field := keyFields[dataset]

	for i, record := range records {
		value, ok := record.Get(field)
		if !ok || value == nil || fmt.Sprint(value) == "" {
			res.Passed = false
			res.Detail = fmt.Sprintf("record %d has no %s", i, field)
			return res
		}
	}
	return res
}

// checkKeyUnique verifies no two records share a key value. Records missing
// the key are skipped here; checkKeyPresent already reports them.
func checkKeyUnique(dataset string, records []*types.Record) CheckResult {
	res := CheckResult{Dataset: dataset, Check: "key unique", Records: len(records), Passed: true}
	field := keyFields[dataset]

	seen := make(map[string]int, len(records))
	for i, record := range records {
		value, ok := record.Get(field)
		if !ok || value == nil {
			continue
		}
		key := fmt.Sprint(value)
		if first, dup := seen[key]; dup {
			res.Passed = false
			res.Detail = fmt.Sprintf("%s %q appears at records %d and %d", field, key, first, i)
			return res
		}
		seen[key] = i
	}
	return res
}

// checkMetadata verifies the run metadata block is fully populated.
func checkMetadata(meta *extractor.Metadata) CheckResult {
	res := CheckResult{Dataset: "metadata", Check: "metadata complete", Passed: true}

	fields := []struct {
		name  string
		value string
	}{
		{"start_date", meta.StartDate},
		{"end_date", meta.EndDate},
		{"extraction_timestamp", meta.ExtractionTimestamp},
		{"environment", meta.Environment},
	}
	for _, f := range fields {
		if f.value == "" {
			res.Passed = false
			res.Detail = fmt.Sprintf("metadata field %s is empty", f.name)
			return res
		}
	}
	return res
}
