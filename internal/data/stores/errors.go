package stores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/colonyops/taskgraph/internal/data/db"
)

const (
	busyRetries = 3
	busyBackoff = 50 * time.Millisecond
)

// IsBusyError returns true if the error is a SQLITE_BUSY error.
func IsBusyError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_BUSY
	}
	return false
}

// IsCorruptionError returns true if the error indicates database corruption.
func IsCorruptionError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CORRUPT ||
			code == sqlite3.SQLITE_NOTADB ||
			code == sqlite3.SQLITE_CANTOPEN
	}

	// Also check for common corruption error messages
	errStr := err.Error()
	return strings.Contains(errStr, "database disk image is malformed") ||
		strings.Contains(errStr, "file is not a database") ||
		strings.Contains(errStr, "database corruption")
}

// IsNotFoundError returns true if the error is a "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// withBusyRetry runs fn, retrying while it fails with SQLITE_BUSY.
func withBusyRetry(ctx context.Context, fn func() error) error {
	wait := busyBackoff
	var err error
	for range busyRetries {
		err = fn()
		if err == nil || !IsBusyError(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}

// RecoverFromCorruption moves the database file and its WAL and SHM
// companions aside so the next Open starts from an empty database. It returns
// the path the database was moved to, or "" if there was no file.
func RecoverFromCorruption(dataDir string) (string, error) {
	dbPath := filepath.Join(dataDir, db.FileName)
	backupPath := fmt.Sprintf("%s.corrupt.%s", dbPath, time.Now().Format("20060102-150405"))

	moved := ""
	for _, suffix := range []string{"", "-wal", "-shm"} {
		err := os.Rename(dbPath+suffix, backupPath+suffix)
		switch {
		case err == nil:
			if suffix == "" {
				moved = backupPath
			}
		case os.IsNotExist(err):
		case suffix == "":
			return "", fmt.Errorf("failed to backup corrupted database: %w", err)
		default:
			// Stale WAL or SHM files would be replayed against the new database.
			if rmErr := os.Remove(dbPath + suffix); rmErr != nil && !os.IsNotExist(rmErr) {
				return moved, fmt.Errorf("failed to backup or remove %s file: %w", suffix[1:], err)
			}
		}
	}

	return moved, nil
}
