package db

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/erazemk/stockmate/internal/model"
)

func openFile(t *testing.T, path string) *sql.DB {
	t.Helper()
	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func countRows(t *testing.T, database *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := database.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	return n
}

func TestEnsureCreatesSchemaOnNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "stock.sqlite3")
	database := openFile(t, path)
	ctx := context.Background()

	if err := Ensure(ctx, database, DefaultSchema()); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected database file to exist: %v", err)
	}

	v, err := Version(ctx, database)
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v != CurrentVersion {
		t.Errorf("expected version %d, got %d", CurrentVersion, v)
	}

	if n := countRows(t, database, "items"); n != 0 {
		t.Errorf("expected empty items table, got %d rows", n)
	}
	if n := countRows(t, database, "users"); n != 0 {
		t.Errorf("expected empty users table, got %d rows", n)
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	database := NewTestDB(t)
	ctx := context.Background()

	database.Exec(`INSERT INTO items (name, quantity) VALUES ('Widget', 5)`)

	if err := Ensure(ctx, database, DefaultSchema()); err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if n := countRows(t, database, "items"); n != 1 {
		t.Errorf("expected existing row to survive, got %d rows", n)
	}
}

func TestUpgradeDropDiscardsRows(t *testing.T) {
	database := NewTestDB(t)
	ctx := context.Background()

	database.Exec(`INSERT INTO items (name, quantity) VALUES ('Widget', 5)`)
	database.Exec(`INSERT INTO users (username, password) VALUES ('alice', 'hash')`)

	if err := Ensure(ctx, database, Schema{Version: 2, Policy: PolicyDrop}); err != nil {
		t.Fatalf("Ensure v2: %v", err)
	}

	v, _ := Version(ctx, database)
	if v != 2 {
		t.Errorf("expected version 2, got %d", v)
	}
	if n := countRows(t, database, "items"); n != 0 {
		t.Errorf("expected items dropped, got %d rows", n)
	}
	if n := countRows(t, database, "users"); n != 0 {
		t.Errorf("expected users dropped, got %d rows", n)
	}
}

func TestUpgradeRefuseKeepsData(t *testing.T) {
	database := NewTestDB(t)
	ctx := context.Background()

	database.Exec(`INSERT INTO items (name, quantity) VALUES ('Widget', 5)`)

	err := Ensure(ctx, database, Schema{Version: 2, Policy: PolicyRefuse})
	if !errors.Is(err, ErrSchemaVersion) {
		t.Fatalf("expected ErrSchemaVersion, got %v", err)
	}

	v, _ := Version(ctx, database)
	if v != CurrentVersion {
		t.Errorf("expected version to stay %d, got %d", CurrentVersion, v)
	}
	if n := countRows(t, database, "items"); n != 1 {
		t.Errorf("expected row to survive refused upgrade, got %d rows", n)
	}
}

func TestEnsureRejectsDowngrade(t *testing.T) {
	database := NewTestDB(t)
	ctx := context.Background()

	if err := Ensure(ctx, database, Schema{Version: 3}); err != nil {
		t.Fatalf("Ensure v3: %v", err)
	}

	err := Ensure(ctx, database, DefaultSchema())
	if !errors.Is(err, ErrSchemaVersion) {
		t.Errorf("expected ErrSchemaVersion for downgrade, got %v", err)
	}
}

func TestSchemaConstraints(t *testing.T) {
	database := NewTestDB(t)

	if _, err := database.Exec(`INSERT INTO items (name, quantity) VALUES ('Widget', -1)`); err == nil {
		t.Error("expected CHECK constraint to reject negative quantity")
	}
	if _, err := database.Exec(`INSERT INTO items (name, quantity) VALUES ('Widget', 1.5)`); err == nil {
		t.Error("expected CHECK constraint to reject a non-integer quantity")
	}
	if _, err := database.Exec(`INSERT INTO items (name, quantity) VALUES ('Widget', 9223372036854775807 + 1)`); err == nil {
		t.Error("expected CHECK constraint to reject an overflowed quantity")
	}

	if _, err := database.Exec(`INSERT INTO users (username, password) VALUES ('alice', 'a')`); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := database.Exec(`INSERT INTO users (username, password) VALUES ('alice', 'b')`); err == nil {
		t.Error("expected UNIQUE constraint to reject duplicate username")
	}
}

func TestOpenUnwritableLocation(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	// A regular file in place of the parent directory.
	_, err := Open(filepath.Join(blocker, "stock.sqlite3"))
	if !errors.Is(err, model.ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestOpenPathWithURICharacters(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "stock #1")
	path := filepath.Join(dir, "inventory?v=2%.sqlite3")

	database := openFile(t, path)
	if err := Ensure(ctx, database, DefaultSchema()); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if _, err := database.Exec(`INSERT INTO items (name, quantity) VALUES ('Widget', 5)`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected database at the exact path: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() == "inventory" {
			t.Errorf("path was cut at the query separator")
		}
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		path   string
		prefix string
	}{
		{"stock.sqlite3", "file:stock.sqlite3?"},
		{"/data/stock.sqlite3", "file:/data/stock.sqlite3?"},
		{"/data/a?b#c%d.sqlite3", "file:/data/a%3fb%23c%25d.sqlite3?"},
	}

	for _, tt := range tests {
		got := dsn(tt.path)
		if len(got) < len(tt.prefix) || got[:len(tt.prefix)] != tt.prefix {
			t.Errorf("dsn(%q) = %q, want prefix %q", tt.path, got, tt.prefix)
		}
	}
}
