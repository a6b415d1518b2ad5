package sqlitedb_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"biochar/internal/platform/sqlitedb"
)

func TestOpenAppliesWALAndDetectsConstraints(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := sqlitedb.Open(ctx, filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = db.Close() }()

	var mode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("read journal mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("expected wal journal mode, got %s", mode)
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE t (k TEXT PRIMARY KEY)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO t (k) VALUES ('a')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err = db.ExecContext(ctx, `INSERT INTO t (k) VALUES ('a')`)
	if !sqlitedb.IsConstraint(err) {
		t.Fatalf("expected constraint error, got %v", err)
	}
	if sqlitedb.IsConstraint(nil) {
		t.Fatalf("nil is not a constraint error")
	}
}

func TestIsUniqueViolationMatchesColumnAndCode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := sqlitedb.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = db.Close() }()

	for _, stmt := range []string{
		`CREATE TABLE runs (id TEXT PRIMARY KEY, owner TEXT NOT NULL, state TEXT NOT NULL CHECK (state IN ('open','closed')))`,
		`CREATE UNIQUE INDEX idx_runs_one_open ON runs(owner) WHERE state = 'open'`,
		`INSERT INTO runs (id, owner, state) VALUES ('r1', 'north', 'open')`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}

	_, err = db.ExecContext(ctx, `INSERT INTO runs (id, owner, state) VALUES ('r2', 'north', 'open')`)
	if !sqlitedb.IsUniqueViolation(err, "idx_runs_one_open", "runs.owner") {
		t.Fatalf("expected unique violation on owner, got %v", err)
	}
	if sqlitedb.IsUniqueViolation(err, "runs.state") {
		t.Fatalf("violation must not match an unrelated column: %v", err)
	}

	_, err = db.ExecContext(ctx, `INSERT INTO runs (id, owner, state) VALUES ('r1', 'south', 'closed')`)
	if !sqlitedb.IsConstraint(err) {
		t.Fatalf("expected primary key constraint, got %v", err)
	}
	if sqlitedb.IsUniqueViolation(err, "runs.owner") {
		t.Fatalf("primary key clash reported as owner violation: %v", err)
	}

	_, err = db.ExecContext(ctx, `INSERT INTO runs (id, owner, state) VALUES ('r3', 'south', 'paused')`)
	if !sqlitedb.IsConstraint(err) || sqlitedb.IsUniqueViolation(err) {
		t.Fatalf("expected check constraint only, got %v", err)
	}

	wrapped := fmt.Errorf("insert: %w", errors.New("UNIQUE constraint failed: runs.owner"))
	if !sqlitedb.IsUniqueViolation(wrapped, "runs.owner") {
		t.Fatalf("expected message fallback to match")
	}
	if sqlitedb.IsUniqueViolation(nil) {
		t.Fatalf("nil is not a violation")
	}
}
