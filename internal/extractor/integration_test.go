package extractor

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deftunes/goextract/internal/config"
	"github.com/deftunes/goextract/internal/logger"
)

// TestCoordinatorEndToEnd runs a full extraction through real sources: the
// API served by httptest with mixed response shapes, the database mocked
// per-connection so validation and extraction each get a fresh handle.
func TestCoordinatorEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			_, _ = w.Write([]byte(`{"status": "ok"}`))
		case "/users":
			_, _ = w.Write([]byte(`{"users": [{"user_id": 1, "user_name": "ana"}]}`))
		case "/sessions":
			_, _ = w.Write([]byte(`[{"session_id": "s1"}, {"session_id": "s2"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	apiCfg := &config.APIConfig{
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 3,
		RateLimit:  1000,
	}
	log := logger.NewDefault()
	apiSource := NewAPISource(apiCfg, log)

	dbCfg := &config.DatabaseConfig{Driver: "postgres", SongsTable: "deftunes.songs"}
	dbSource := NewDatabaseSource(dbCfg, 10, log)

	var mocks []sqlmock.Sqlmock
	dbSource.open = func() (*sql.DB, error) {
		db, mock, err := sqlmock.New()
		if err != nil {
			return nil, err
		}
		if len(mocks) == 0 {
			// First open is the validation probe.
			mock.ExpectQuery(regexp.QuoteMeta("SELECT 1")).
				WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
		} else {
			mock.ExpectQuery(regexp.QuoteMeta(countSongsPG)).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
			mock.ExpectQuery(regexp.QuoteMeta(selectSongsPG)).WithArgs(10, 0).
				WillReturnRows(songRows(0, 3))
		}
		mock.ExpectClose()
		mocks = append(mocks, mock)
		return db, nil
	}

	pipeline := &config.PipelineConfig{Environment: "staging", BatchSize: 10, MaxWorkers: 4}
	c := NewCoordinator(apiSource, dbSource, pipeline, log)
	c.now = func() time.Time {
		return time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC)
	}

	result, err := c.Run(context.Background(), "2024-03-01", "2024-03-08")
	require.NoError(t, err)

	assert.Len(t, result.Users, 1)
	assert.Len(t, result.Sessions, 2)
	assert.Len(t, result.Songs, 3)

	name, ok := result.Users[0].Get("user_name")
	require.True(t, ok)
	assert.Equal(t, "ana", name)

	require.Len(t, mocks, 2, "validation and extraction use separate connections")
	for i, mock := range mocks {
		assert.NoErrorf(t, mock.ExpectationsWereMet(), "connection %d left expectations unmet", i)
	}

	data, err := json.Marshal(result.Metadata)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"start_date": "2024-03-01",
		"end_date": "2024-03-08",
		"extraction_timestamp": "2024-03-08T12:00:00Z",
		"environment": "staging"
	}`, string(data))
}
