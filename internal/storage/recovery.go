package storage

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/manav03panchal/watchout/internal/errors"
	"github.com/manav03panchal/watchout/internal/logging"
)

var corruptionPatterns = []string{
	"checksum mismatch",
	"corrupt",
	"bad magic",
	"file is not a database",
	"malformed",
	"unexpected eof",
}

// IsCorrupted reports whether an open error means the store files are
// damaged rather than unreachable.
func IsCorrupted(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, errors.ErrStoreCorrupted) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range corruptionPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// MoveAside renames a damaged store (file or directory) to
// "<path>.corrupt-<timestamp>" and returns the new location. SQLite
// sidecar files follow the main file.
func MoveAside(path string, now time.Time) (string, error) {
	backup := fmt.Sprintf("%s.corrupt-%s", path, now.Format("20060102-150405"))
	if err := os.Rename(path, backup); err != nil {
		return "", fmt.Errorf("failed to move damaged store: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if _, err := os.Stat(path + suffix); err == nil {
			os.Rename(path+suffix, backup+suffix)
		}
	}
	return backup, nil
}

// openRecovering runs open, and if it fails because the store is damaged,
// moves the store aside and opens a fresh one.
func openRecovering(path string, open func() (DocumentStore, error)) (DocumentStore, error) {
	docs, err := open()
	if err == nil {
		return docs, nil
	}
	if !IsCorrupted(err) {
		return nil, err
	}

	backup, mvErr := MoveAside(path, time.Now())
	if mvErr != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStoreCorrupted, err)
	}
	logging.Warn("store was damaged, starting with an empty one",
		logging.KeyPath, path,
		"backup", backup,
		logging.KeyError, err,
	)
	return open()
}
