// Package store persists runtime settings, encrypted login sessions, and
// search history in a local SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_tube/internal/engine"
)

// Store wraps the local database. Safe for concurrent use; the connection
// pool is pinned to one connection for SQLite's single-writer model.
type Store struct {
	db       *sql.DB
	secret   []byte
	defaults engine.Settings
}

// Open creates the data directory if needed, opens (or creates) the
// database, and applies the schema. secret keys session encryption;
// defaults fill settings rows that were never written.
func Open(dir, secret string, defaults engine.Settings) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
	}
	dbPath := filepath.Join(dir, "go_tube.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &Store{db: db, secret: deriveKey(secret), defaults: defaults}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS auth_sessions (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		encrypted_data TEXT NOT NULL,
		created_at     TEXT NOT NULL,
		expires_at     INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS history (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		query      TEXT NOT NULL,
		source     TEXT NOT NULL,
		total      INTEGER NOT NULL,
		data       TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`)
	return err
}
