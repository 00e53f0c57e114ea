// Package extractor implements the extraction layer of the pipeline: the
// sessions API source, the songs database source, and the coordinator that
// runs them in sequence for a date window.
package extractor

import "github.com/deftunes/goextract/internal/types"

// Metadata describes one extraction run. ExtractionTimestamp is the UTC
// RFC 3339 instant the run finished assembling its result; StartDate and
// EndDate echo the requested window exactly as given.
type Metadata struct {
	StartDate           string `json:"start_date"`
	EndDate             string `json:"end_date"`
	ExtractionTimestamp string `json:"extraction_timestamp"`
	Environment         string `json:"environment"`
}

// ExtractionResult bundles the three extracted datasets with run metadata.
// Slices are never nil: an empty extraction yields empty slices so the
// landing files serialize as [] rather than null.
type ExtractionResult struct {
	Users    []*types.Record `json:"users"`
	Sessions []*types.Record `json:"sessions"`
	Songs    []*types.Record `json:"songs"`
	Metadata Metadata        `json:"metadata"`
}
