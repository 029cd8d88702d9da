package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases coherent and
	// serializes writers on the file.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database %q: %w", dataSourceName, err)
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the backend schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		avatar TEXT,
		role TEXT NOT NULL DEFAULT 'user',
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS products (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		price TEXT NOT NULL, -- decimal string
		image_url TEXT,
		category TEXT NOT NULL,
		in_stock INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at);

	CREATE TABLE IF NOT EXISTS revoked_tokens (
		jti TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL,
		expires_at TEXT NOT NULL
	);
	`
	_, err := db.Exec(sqlStmt)
	return err
}

// TimeLayout stores timestamps as fixed-width UTC text so they sort lexically.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime reads a stored timestamp.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
