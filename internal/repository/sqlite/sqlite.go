// Package sqlite implements the repository interfaces on SQLite.
//
// We use modernc.org/sqlite, a pure-Go translation of the SQLite C code —
// no CGo, no C toolchain, works everywhere Go works. The database lives in
// a single file (or in memory for tests), which is all a single-tenant
// service needs.
//
// Each request's store interaction is a single short-lived operation (or a
// transaction for check-then-act sequences); connections come from the
// database/sql pool and are released on every exit path.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlite3 "modernc.org/sqlite"
)

// SQLite extended result codes for constraint violations. The driver
// surfaces them via (*sqlite3.Error).Code().
const (
	sqliteConstraintUnique     = 2067 // SQLITE_CONSTRAINT_UNIQUE
	sqliteConstraintPrimaryKey = 1555 // SQLITE_CONSTRAINT_PRIMARYKEY
)

// DB wraps a sql.DB pool and implements the repository interfaces.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for an ephemeral test database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory SQLite database exists per connection. database/sql is a
	// pool, so without this cap each pooled connection would see its own
	// empty database. A single connection is also the simplest way to keep
	// check-then-act sequences serialized.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight — the default
	// journal mode locks the whole file per write.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. The server defers this on shutdown so
// the WAL is flushed and the file lock released.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps this
// idempotent, so it is safe to run on every startup.
//
// The UNIQUE constraints on users.username, users.email and records.key are
// the final arbiter for concurrent check-then-insert races — even if two
// requests pass the pre-checks simultaneously, at most one insert commits.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			full_name     TEXT NOT NULL,
			age           INTEGER NOT NULL,
			gender        TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			id         TEXT PRIMARY KEY,
			key        TEXT NOT NULL UNIQUE,
			value      TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_records_key ON records(key);
	`)
	if err != nil {
		return fmt.Errorf("creating records table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure on
// the given column (e.g. "users.username"). SQLite names the violated
// constraint in the error text, which is how we tell a username conflict
// from an email conflict on the same insert.
func isUniqueViolation(err error, column string) bool {
	var liteErr *sqlite3.Error
	if !errors.As(err, &liteErr) {
		return false
	}
	code := liteErr.Code()
	if code != sqliteConstraintUnique && code != sqliteConstraintPrimaryKey {
		return false
	}
	return strings.Contains(liteErr.Error(), column)
}
