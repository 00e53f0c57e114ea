package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/deftunes/goextract/internal/config"
	"github.com/deftunes/goextract/internal/errors"
	"github.com/deftunes/goextract/internal/logger"
	"github.com/deftunes/goextract/internal/types"
)

// APIExtractor is the API-backed source as the coordinator consumes it.
type APIExtractor interface {
	ExtractUsers(ctx context.Context, startDate, endDate string) ([]*types.Record, error)
	ExtractSessions(ctx context.Context, startDate, endDate string) ([]*types.Record, error)
	ValidateConnection(ctx context.Context) bool
}

// SongExtractor is the database-backed source as the coordinator consumes it.
type SongExtractor interface {
	ExtractSongs(ctx context.Context) ([]*types.Record, error)
	ValidateConnection(ctx context.Context) bool
}

// Coordinator sequences one extraction run: validate both backends up
// front, then extract users, sessions, and songs in that order.
type Coordinator struct {
	api      APIExtractor
	db       SongExtractor
	pipeline *config.PipelineConfig
	log      *logger.Logger

	// now is swapped in tests to pin the extraction timestamp.
	now func() time.Time
}

// NewCoordinator wires a Coordinator from its sources.
func NewCoordinator(api APIExtractor, db SongExtractor, pipeline *config.PipelineConfig, log *logger.Logger) *Coordinator {
	return &Coordinator{
		api:      api,
		db:       db,
		pipeline: pipeline,
		log:      log.Named("coordinator"),
		now:      time.Now,
	}
}

// Run executes one extraction for the window. Both backends are validated
// before any data moves: a run that cannot finish should not start. The API
// is checked first, so an API outage is reported without touching the
// database. Dataset errors propagate unchanged so callers can tell which
// backend failed.
func (c *Coordinator) Run(ctx context.Context, startDate, endDate string) (*ExtractionResult, error) {
	if !c.api.ValidateConnection(ctx) {
		return nil, errors.NewAPIError("health", "API connection validation failed", nil)
	}
	if !c.db.ValidateConnection(ctx) {
		return nil, errors.NewDatabaseError("validate", "database connection validation failed", nil)
	}

	done := c.log.TimeOperation(fmt.Sprintf("incremental extraction from %s to %s", startDate, endDate))
	defer done()

	users, err := c.api.ExtractUsers(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	sessions, err := c.api.ExtractSessions(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	songs, err := c.db.ExtractSongs(ctx)
	if err != nil {
		return nil, err
	}

	result := &ExtractionResult{
		Users:    users,
		Sessions: sessions,
		Songs:    songs,
		Metadata: Metadata{
			StartDate:           startDate,
			EndDate:             endDate,
			ExtractionTimestamp: c.now().UTC().Format(time.RFC3339),
			Environment:         c.pipeline.Environment,
		},
	}

	c.log.Infow("Extraction run complete",
		"users_count", len(users),
		"sessions_count", len(sessions),
		"songs_count", len(songs),
		"start_date", startDate,
		"end_date", endDate,
	)

	return result, nil
}
