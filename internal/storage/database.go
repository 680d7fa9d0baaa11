package storage

import (
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"geekqa/internal/credentials"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// New opens a database connection for driver using dsn.
// SQLite connections get foreign keys enabled; both get pool settings and a ping.
func New(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		// Enable foreign keys (disabled by default in SQLite)
		if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// DSN builds the data source name for driver. SQLite uses path; PostgreSQL uses the
// resolved database credentials.
func DSN(driver, path string, creds credentials.Database) (string, error) {
	switch driver {
	case DriverSQLite:
		return path, nil
	case DriverPostgres:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(creds.User, creds.Password),
			Host:   net.JoinHostPort(creds.Host, strconv.Itoa(creds.Port)),
			Path:   "/" + creds.Name,
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Migrate creates the greetings table for driver.
// It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB, driver string) error {
	var stmt string
	switch driver {
	case DriverSQLite:
		stmt = `CREATE TABLE IF NOT EXISTS greetings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`
	case DriverPostgres:
		stmt = `CREATE TABLE IF NOT EXISTS greetings (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	if _, err := db.Exec(stmt); err != nil {
		return err
	}
	return nil
}
