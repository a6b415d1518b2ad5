package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Open opens (or creates) the database at path in WAL mode with a busy
// timeout. The pool is capped at one connection so every adapter sharing
// the handle serializes through SQLite's single writer.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return db, nil
}

// IsConstraint reports whether err is any SQLite constraint failure.
func IsConstraint(err error) bool {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if code, ok := errorCode(err); ok {
		return code&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return strings.Contains(strings.ToLower(err.Error()), "constraint failed")
}

// IsUniqueViolation reports whether err is a UNIQUE constraint failure. When
// columns are given, the failure must also name one of them, as in
// "UNIQUE constraint failed: batches.coordinator_id". Primary key clashes
// carry their own code and never match.
func IsUniqueViolation(err error, columns ...string) bool {
	if err == nil {
		return false
	}
	code, ok := errorCode(err)
	switch {
	case ok && code == sqlite3.SQLITE_CONSTRAINT_UNIQUE:
	case ok && code == sqlite3.SQLITE_CONSTRAINT:
		// Extended codes disabled on this connection.
		if !strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return false
		}
	case !ok:
		if !strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return false
		}
	default:
		return false
	}
	if len(columns) == 0 {
		return true
	}
	msg := err.Error()
	for _, c := range columns {
		if strings.Contains(msg, c) {
			return true
		}
	}
	return false
}

func errorCode(err error) (int, bool) {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code(), true
	}
	return 0, false
}
