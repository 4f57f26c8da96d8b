// Package linedb persists segment batches and reduction runs in SQLite.
package linedb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by store lookups for missing rows.
var ErrNotFound = errors.New("not found")

// DB wraps the SQLite connection shared by the stores.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the SQLite database at path and applies the
// connection pragmas. Call Migrate before using the stores.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
		"PRAGMA foreign_keys = ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", strings.TrimSpace(pragma), err)
		}
	}

	return &DB{db}, nil
}

// busyRetries bounds retryOnBusy attempts.
const busyRetries = 5

// retryOnBusy retries fn while SQLite reports the database as locked.
// Writers from the HTTP handlers and the CLI can briefly contend on the
// same file.
func retryOnBusy(fn func() error) error {
	var err error
	for attempt := 0; attempt < busyRetries; attempt++ {
		err = fn()
		if err == nil || !isBusy(err) {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
	}
	return err
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}
