// Package cache persists catalog entities and week payload snapshots to a
// local SQLite database, so autocomplete and the last viewed week survive
// restarts and service outages.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens the cache database at the given path.
// If path is ":memory:", uses an in-memory database.
// Sets WAL mode and enables foreign keys.
// Runs migrations automatically.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running cache migrations: %w", err)
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS entities (
		kind         TEXT NOT NULL
		             CHECK(kind IN ('project','person','activity','location')),
		id           TEXT NOT NULL,
		name         TEXT NOT NULL,
		display_name TEXT NOT NULL,
		updated_at   TEXT NOT NULL,
		PRIMARY KEY (kind, id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_entities_kind_name ON entities(kind, name)`,

	`CREATE TABLE IF NOT EXISTS weeks (
		grid       TEXT NOT NULL,
		week_start TEXT NOT NULL,
		payload    TEXT NOT NULL,
		fetched_at TEXT NOT NULL,
		PRIMARY KEY (grid, week_start)
	)`,

	`CREATE TABLE IF NOT EXISTS app_state (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}
