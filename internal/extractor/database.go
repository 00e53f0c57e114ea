package extractor

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/deftunes/goextract/internal/config"
	"github.com/deftunes/goextract/internal/database"
	"github.com/deftunes/goextract/internal/errors"
	"github.com/deftunes/goextract/internal/logger"
	"github.com/deftunes/goextract/internal/retry"
	"github.com/deftunes/goextract/internal/sqlutil"
	"github.com/deftunes/goextract/internal/types"
)

// songColumns lists the songs table columns in extraction order. The order
// is fixed so landing files keep a stable field layout across runs.
var songColumns = []string{
	"song_id",
	"title",
	"artist_name",
	"album_name",
	"duration",
	"year",
	"genre",
	"artist_familiarity",
	"artist_hotttnesss",
	"track_7digitalid",
	"release_7digitalid",
}

// DatabaseSource extracts song records from the songs source database in
// LIMIT/OFFSET pages ordered by song_id. Every attempt opens a fresh
// connection and closes it before returning, success or failure.
type DatabaseSource struct {
	cfg       *config.DatabaseConfig
	batchSize int
	log       *logger.Logger
	retry     *retry.Policy

	// open is swapped in tests to hand out mocked handles.
	open func() (*sql.DB, error)
}

// NewDatabaseSource builds a DatabaseSource reading batchSize rows per page.
func NewDatabaseSource(cfg *config.DatabaseConfig, batchSize int, log *logger.Logger) *DatabaseSource {
	dbLog := log.Named("database")
	return &DatabaseSource{
		cfg:       cfg,
		batchSize: batchSize,
		log:       dbLog,
		retry:     retry.New(3, 2*time.Second, 2.0, dbLog),
		open:      func() (*sql.DB, error) { return database.Open(cfg) },
	}
}

// ExtractSongs pulls every row of the songs table. The whole pass is retried
// as a unit: offset pagination cannot resume mid-stream against a table that
// may change between attempts, so a failed attempt starts over on a fresh
// connection.
func (s *DatabaseSource) ExtractSongs(ctx context.Context) ([]*types.Record, error) {
	var records []*types.Record
	err := s.retry.Do(ctx, "extract songs", func() error {
		recs, rerr := s.extractSongsOnce(ctx)
		if rerr != nil {
			return rerr
		}
		records = recs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ValidateConnection opens a connection and runs a probe query. Failures are
// logged and reported as false, never as an error: the caller decides
// whether a dead backend is fatal.
func (s *DatabaseSource) ValidateConnection(ctx context.Context) bool {
	db, err := s.open()
	if err != nil {
		s.log.Warnf("Database connection validation failed: %v", err)
		return false
	}
	defer db.Close()

	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		s.log.Warnf("Database connection validation failed: %v", err)
		return false
	}
	return true
}

// extractSongsOnce performs one full extraction pass: count, then page
// through the table appending batches until the counted total is covered.
func (s *DatabaseSource) extractSongsOnce(ctx context.Context) ([]*types.Record, error) {
	done := s.log.TimeOperation("extracting songs from database")
	defer done()

	table, err := sqlutil.QuoteQualifiedSafe(s.cfg.Driver, s.cfg.SongsTable)
	if err != nil {
		return nil, errors.NewDatabaseError("extract songs", "invalid songs table name", err)
	}

	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	total, err := s.countRows(ctx, db, table)
	if err != nil {
		return nil, err
	}

	records := make([]*types.Record, 0, total)
	for offset := 0; offset < total; offset += s.batchSize {
		batch, err := s.fetchPage(ctx, db, table, offset)
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
		s.log.Infof("Extracted batch: %d records (total: %d)", len(batch), len(records))
	}

	s.log.Infof("Extracted %d songs from database", len(records))
	return records, nil
}

func (s *DatabaseSource) countRows(ctx context.Context, db *sql.DB, table string) (int, error) {
	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&total); err != nil {
		return 0, errors.NewDatabaseError("count", "counting songs rows", err)
	}
	return total, nil
}

// fetchPage reads one page of songs at the given offset.
func (s *DatabaseSource) fetchPage(ctx context.Context, db *sql.DB, table string, offset int) (types.Batch, error) {
	cols := make([]string, len(songColumns))
	for i, c := range songColumns {
		cols[i] = sqlutil.QuoteIdentifier(s.cfg.Driver, c)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY %s LIMIT %s OFFSET %s",
		strings.Join(cols, ", "),
		table,
		sqlutil.QuoteIdentifier(s.cfg.Driver, "song_id"),
		sqlutil.Placeholder(s.cfg.Driver, 1),
		sqlutil.Placeholder(s.cfg.Driver, 2),
	)

	rows, err := db.QueryContext(ctx, query, s.batchSize, offset)
	if err != nil {
		return nil, errors.NewDatabaseError("fetch batch", fmt.Sprintf("querying songs at offset %d", offset), err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.NewDatabaseError("fetch batch", "reading column names", err)
	}

	var batch types.Batch
	for rows.Next() {
		rec, err := scanRecord(rows, columns)
		if err != nil {
			return nil, errors.NewDatabaseError("fetch batch", "scanning song row", err)
		}
		batch = append(batch, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseError("fetch batch", "iterating song rows", err)
	}
	return batch, nil
}

// scanRecord reads the current row into a Record keyed by column name in
// query order. The MySQL driver returns []byte for strings and blobs;
// convert to string so records serialize as JSON text.
func scanRecord(rows *sql.Rows, columns []string) (*types.Record, error) {
	values := make([]any, len(columns))
	valuePtrs := make([]any, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}
	if err := rows.Scan(valuePtrs...); err != nil {
		return nil, err
	}

	rec := types.NewRecord()
	for i, col := range columns {
		val := values[i]
		if b, ok := val.([]byte); ok {
			val = string(b)
		}
		rec.Set(col, val)
	}
	return rec, nil
}

// ColumnInfo describes one column of an inspected table.
type ColumnInfo struct {
	Name     string
	DataType string
	Nullable bool
}

// TableStats summarizes an inspected table for the stats command.
type TableStats struct {
	Table    string
	RowCount int64
	Size     string
	Columns  []ColumnInfo
}

// Stats inspects a table: row count, on-disk size, and column metadata.
// Inspection is interactive tooling, not part of an extraction run, so it
// is not retried.
func (s *DatabaseSource) Stats(ctx context.Context, table string) (*TableStats, error) {
	quoted, err := sqlutil.QuoteQualifiedSafe(s.cfg.Driver, table)
	if err != nil {
		return nil, errors.NewDatabaseError("stats", "invalid table name", err)
	}

	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	stats := &TableStats{Table: table}

	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoted).Scan(&stats.RowCount); err != nil {
		return nil, errors.NewDatabaseError("stats", "counting rows", err)
	}

	size, err := s.tableSize(ctx, db, table)
	if err != nil {
		return nil, errors.NewDatabaseError("stats", "reading table size", err)
	}
	stats.Size = size

	columns, err := s.tableColumns(ctx, db, table)
	if err != nil {
		return nil, err
	}
	stats.Columns = columns

	return stats, nil
}

// tableSize reports the table's on-disk size as human-readable text.
// PostgreSQL formats server-side via pg_size_pretty; MySQL exposes raw byte
// counts in information_schema, formatted here to match.
func (s *DatabaseSource) tableSize(ctx context.Context, db *sql.DB, table string) (string, error) {
	if s.cfg.Driver == "mysql" {
		schema, name := sqlutil.SplitQualified(table)
		query := "SELECT COALESCE(data_length + index_length, 0) FROM information_schema.TABLES WHERE table_name = ?"
		args := []any{name}
		if schema != "" {
			query += " AND table_schema = ?"
			args = append(args, schema)
		} else {
			query += " AND table_schema = DATABASE()"
		}

		var size int64
		if err := db.QueryRowContext(ctx, query, args...).Scan(&size); err != nil {
			return "", err
		}
		return formatBytes(size), nil
	}

	var size string
	err := db.QueryRowContext(ctx,
		"SELECT pg_size_pretty(pg_total_relation_size($1::regclass))", table,
	).Scan(&size)
	return size, err
}

// tableColumns lists column metadata in ordinal position order.
func (s *DatabaseSource) tableColumns(ctx context.Context, db *sql.DB, table string) ([]ColumnInfo, error) {
	schema, name := sqlutil.SplitQualified(table)

	query := fmt.Sprintf(
		"SELECT column_name, data_type, is_nullable FROM information_schema.columns WHERE table_name = %s",
		sqlutil.Placeholder(s.cfg.Driver, 1),
	)
	args := []any{name}
	if schema != "" {
		query += fmt.Sprintf(" AND table_schema = %s", sqlutil.Placeholder(s.cfg.Driver, 2))
		args = append(args, schema)
	}
	query += " ORDER BY ordinal_position"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewDatabaseError("stats", "reading column metadata", err)
	}
	defer rows.Close()

	var columns []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		var nullable string
		if err := rows.Scan(&col.Name, &col.DataType, &nullable); err != nil {
			return nil, errors.NewDatabaseError("stats", "scanning column metadata", err)
		}
		col.Nullable = strings.EqualFold(nullable, "YES")
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseError("stats", "iterating column metadata", err)
	}
	return columns, nil
}

// formatBytes renders a byte count in pg_size_pretty style so stats output
// reads the same across drivers.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d bytes", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	units := []string{"kB", "MB", "GB", "TB"}
	return fmt.Sprintf("%.0f %s", float64(n)/float64(div), units[exp])
}
