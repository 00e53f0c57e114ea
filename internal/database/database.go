// Package database provides connection handling for the songs source
// database. Handles are opened per extraction call and closed by the caller;
// no pool is retained across calls.
package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver (database/sql adapter)

	"github.com/deftunes/goextract/internal/config"
	"github.com/deftunes/goextract/internal/errors"
)

// DriverName maps the configured driver to the registered database/sql
// driver name.
func DriverName(cfg *config.DatabaseConfig) string {
	if cfg.Driver == "mysql" {
		return "mysql"
	}
	return "pgx"
}

// BuildDSN constructs a driver-appropriate DSN from configuration.
func BuildDSN(cfg *config.DatabaseConfig) string {
	if cfg.Driver == "mysql" {
		return buildMySQLDSN(cfg)
	}
	return buildPostgresDSN(cfg)
}

// buildPostgresDSN renders a postgres:// URL understood by pgx.
func buildPostgresDSN(cfg *config.DatabaseConfig) string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   "/" + cfg.Database,
	}

	query := url.Values{}
	if cfg.SSLMode != "" {
		query.Set("sslmode", cfg.SSLMode)
	}
	u.RawQuery = query.Encode()

	return u.String()
}

// buildMySQLDSN renders a go-sql-driver DSN.
// Format: user:password@tcp(host:port)/database?params
func buildMySQLDSN(cfg *config.DatabaseConfig) string {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)

	params := "?parseTime=true"
	switch cfg.SSLMode {
	case "disable":
		params += "&tls=false"
	case "required":
		params += "&tls=true"
	case "preferred":
		params += "&tls=preferred"
	}

	return dsn + params
}

// Open creates a new connection handle for one extraction call. The handle
// is lazy: connectivity is proven by the caller's first query, not here. The
// caller owns the handle and must close it on every exit path.
func Open(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(DriverName(cfg), BuildDSN(cfg))
	if err != nil {
		return nil, errors.NewDatabaseError("connect", "failed to open connection", err)
	}

	// One extraction call runs one query at a time; keep the handle small.
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(10 * time.Minute)

	return db, nil
}
