// Package store persists snapshot history to SQLite so progress can be
// compared across cycles. The JSON snapshot file remains the primary
// artifact; this store only feeds the history command.
package store

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection to the repopulse history database.
type DB struct {
	conn *sql.DB
}

// Open opens or creates the SQLite database at the given path,
// creating the parent directory if needed.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// WAL lets the history command read while a cycle is writing.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

// OpenInMemory opens an in-memory database, useful for testing.
func OpenInMemory() (*DB, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the history schema if it does not exist.
func (db *DB) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	taken_at TEXT NOT NULL,
	overall_progress INTEGER NOT NULL,
	phase TEXT NOT NULL,
	total_commits INTEGER NOT NULL DEFAULT 0,
	modified_files INTEGER NOT NULL DEFAULT 0,
	version TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS component_scores (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	snapshot_id INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
	component TEXT NOT NULL,
	progress INTEGER NOT NULL,
	file_count INTEGER NOT NULL,
	status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS service_states (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	snapshot_id INTEGER NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
	service TEXT NOT NULL,
	port INTEGER NOT NULL,
	running INTEGER NOT NULL,
	health TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_component_scores_snapshot ON component_scores(snapshot_id);
CREATE INDEX IF NOT EXISTS idx_service_states_snapshot ON service_states(snapshot_id);
`
	_, err := db.conn.Exec(schema)
	return err
}
