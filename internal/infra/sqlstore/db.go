package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	_ "modernc.org/sqlite"
)

// Driver names the SQL backend a database URL points at.
type Driver string

const (
	DriverNone     Driver = ""
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// DriverFor maps a database URL to its backend. An empty URL means no SQL store.
func DriverFor(url string) (Driver, error) {
	switch {
	case url == "":
		return DriverNone, nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres, nil
	case strings.HasPrefix(url, "sqlite:"), strings.HasPrefix(url, "file:"):
		return DriverSQLite, nil
	default:
		return DriverNone, fmt.Errorf("unsupported database url scheme: %q", url)
	}
}

// Open connects bun to Postgres or SQLite depending on the URL scheme.
// sqlite:path and file:path URLs are handed to modernc.org/sqlite.
func Open(url string) (*bun.DB, error) {
	driver, err := DriverFor(url)
	if err != nil {
		return nil, err
	}
	switch driver {
	case DriverPostgres:
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(url)))
		return bun.NewDB(sqldb, pgdialect.New()), nil
	case DriverSQLite:
		dsn := strings.TrimPrefix(url, "sqlite:")
		sqldb, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, err
		}
		// SQLite allows one writer; a single connection keeps transactions from tripping SQLITE_BUSY.
		sqldb.SetMaxOpenConns(1)
		if _, err := sqldb.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			_ = sqldb.Close()
			return nil, err
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	default:
		return nil, fmt.Errorf("database url not configured")
	}
}
