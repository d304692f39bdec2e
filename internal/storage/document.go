package storage

import (
	"fmt"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/manav03panchal/watchout/internal/errors"
)

var (
	// ErrKeyNotFound is returned when a document does not exist.
	ErrKeyNotFound = errors.New("key not found")
)

// IsErrKeyNotFound returns true if the error is a key not found error.
func IsErrKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound) || errors.Is(err, badger.ErrKeyNotFound)
}

// DocumentStore is a key-value store of whole JSON documents.
// Set overwrites the previous value atomically.
type DocumentStore interface {
	Get(key string) ([]byte, error)
	Set(key string, data []byte) error
	Delete(key string) error
	Close() error
	Backend() string
}

var (
	_ DocumentStore = (*DB)(nil)
	_ DocumentStore = (*SQLite)(nil)
)

// SQLitePath returns the SQLite database file inside a data dir.
func SQLitePath(dataDir string) string {
	return filepath.Join(dataDir, "watchout.sqlite")
}

// OpenBackend opens the named backend ("badger" or "sqlite") under dataDir.
// A damaged store is moved aside and replaced by an empty one.
func OpenBackend(backend, dataDir string) (DocumentStore, error) {
	switch backend {
	case "", "badger":
		path := BadgerPath(dataDir)
		return openRecovering(path, func() (DocumentStore, error) {
			db, err := Open(Options{Path: path})
			if err != nil {
				return nil, err
			}
			return db, nil
		})
	case "sqlite":
		path := SQLitePath(dataDir)
		return openRecovering(path, func() (DocumentStore, error) {
			db, err := OpenSQLite(path)
			if err != nil {
				return nil, err
			}
			return db, nil
		})
	}
	return nil, fmt.Errorf("%w %q", errors.ErrUnknownBackend, backend)
}
