// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"
	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/pollhall/cliparse"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open connects to the configured database and verifies the connection.
func Open(dbType, url string) (*sql.DB, error) {
	var conn *sql.DB
	var err error

	switch dbType {
	case cliparse.DatabasePostgres:
		conn, err = sql.Open("postgres", url)
	case cliparse.DatabaseSQLite:
		conn, err = sql.Open("sqlite", sqliteDSN(url))
		if err == nil {
			// One writer at a time; avoids SQLITE_BUSY on lock upgrades.
			conn.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// sqliteDSN turns on foreign keys and a busy timeout unless the URL
// already sets its own pragmas.
func sqliteDSN(url string) string {
	if strings.Contains(url, "_pragma=") {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Migrate applies every pending migration. Safe to call on every start.
func Migrate(conn *sql.DB, dbType string) error {
	var driver database.Driver
	var err error

	switch dbType {
	case cliparse.DatabasePostgres:
		driver, err = postgres.WithInstance(conn, &postgres.Config{})
	case cliparse.DatabaseSQLite:
		driver, err = sqlite.WithInstance(conn, &sqlite.Config{})
	default:
		return fmt.Errorf("unsupported database type %q", dbType)
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	// The migrate instance is not closed: closing it would close conn.
	m, err := migrate.NewWithInstance("iofs", src, dbType, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// IsUniqueViolation reports whether err comes from a UNIQUE or PRIMARY KEY
// constraint in either supported database.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlitedriver.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}

	// Without extended result codes SQLite only says SQLITE_CONSTRAINT
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
