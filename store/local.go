// Package store is the on-device cache layer: a SQLite-backed key-value
// store holding JSON blobs, plus helpers for the JSON-array collections
// the sync services keep per user.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/masroufi/sync-api/utils"

	_ "modernc.org/sqlite" // register sqlite driver
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Local is the durable key-value store every cache builds on.
// Write failures are logged and swallowed; reads fall back to "absent".
// Callers never see an error from this layer (the UI must keep working
// when device storage misbehaves).
type Local struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Local, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Local{db: db}, nil
}

// Close closes the cache database.
func (l *Local) Close() error {
	return l.db.Close()
}

// SaveLocal serializes v to JSON and persists it under key, replacing
// any prior value.
func (l *Local) SaveLocal(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		utils.SafeError("cache: serializing %q: %v", key, err)
		return
	}
	_, err = l.db.Exec(`INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)`, key, string(data))
	if err != nil {
		utils.SafeError("cache: writing %q: %v", key, err)
	}
}

// GetLocal decodes the value stored under key into dest. Returns false
// when the key is absent or the stored blob cannot be decoded (a broken
// blob is logged and treated as absent).
func (l *Local) GetLocal(key string, dest any) bool {
	var raw string
	err := l.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		utils.SafeError("cache: reading %q: %v", key, err)
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		utils.SafeError("cache: decoding %q: %v", key, err)
		return false
	}
	return true
}

// GetRaw returns the raw JSON stored under key, or nil if absent.
func (l *Local) GetRaw(key string) []byte {
	var raw string
	err := l.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		utils.SafeError("cache: reading %q: %v", key, err)
		return nil
	}
	return []byte(raw)
}

// RemoveLocal deletes the entry; no error if absent.
func (l *Local) RemoveLocal(key string) {
	if _, err := l.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		utils.SafeError("cache: removing %q: %v", key, err)
	}
}
