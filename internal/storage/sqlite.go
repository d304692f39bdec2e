package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLite is a DocumentStore backed by a single SQLite table.
type SQLite struct {
	db   *sql.DB
	path string
	lock *FileLock
}

// OpenSQLite opens (or creates) the SQLite database at path. The special
// path ":memory:" opens a private in-memory database.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	var lock *FileLock
	if path != ":memory:" {
		if err := EnsureDirectory(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		lock = NewFileLock(filepath.Dir(path))
		if err := lock.Acquire(); err != nil {
			return nil, err
		}
	}

	s, err := openSQLite(path)
	if err != nil {
		if lock != nil {
			lock.Release()
		}
		return nil, err
	}
	s.lock = lock
	return s, nil
}

func openSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.Exec("PRAGMA busy_timeout = 5000")
	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set WAL mode: %w", err)
		}
		_, _ = db.Exec("PRAGMA synchronous = NORMAL")
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			key   TEXT PRIMARY KEY,
			value BLOB NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLite{db: db, path: path}, nil
}

// Get retrieves raw bytes by key.
func (s *SQLite) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM documents WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores raw bytes with the given key, replacing any previous value.
func (s *SQLite) Set(key string, data []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO documents (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, data)
	return err
}

// Delete removes a key.
func (s *SQLite) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM documents WHERE key = ?`, key)
	return err
}

// Close closes the underlying database connection and releases the lock.
func (s *SQLite) Close() error {
	err := s.db.Close()
	if s.lock != nil {
		if lerr := s.lock.Release(); err == nil {
			err = lerr
		}
	}
	return err
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.path
}

// Backend implements DocumentStore.
func (s *SQLite) Backend() string {
	return "sqlite"
}
