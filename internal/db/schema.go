package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// CurrentVersion is the schema version written to new databases.
const CurrentVersion = 1

// Upgrade policies applied when the stored version is older than the target.
const (
	// PolicyDrop drops every table and recreates the schema empty.
	PolicyDrop = "drop"
	// PolicyRefuse fails the open and leaves the file untouched.
	PolicyRefuse = "refuse"
)

// ErrSchemaVersion is returned when the stored schema cannot be brought to
// the requested version.
var ErrSchemaVersion = errors.New("unsupported schema version")

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS items (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL,
    description TEXT,
    quantity    INTEGER NOT NULL CHECK (typeof(quantity) = 'integer' AND quantity >= 0)
);

CREATE TABLE IF NOT EXISTS users (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL
);
`

const dropSchema = `
DROP TABLE IF EXISTS items;
DROP TABLE IF EXISTS users;
`

// Schema describes the version a database must be at after opening.
type Schema struct {
	Version int
	Policy  string
}

// DefaultSchema returns the schema at CurrentVersion with the drop policy.
func DefaultSchema() Schema {
	return Schema{Version: CurrentVersion, Policy: PolicyDrop}
}

// Version returns the schema version stored in the database file.
func Version(ctx context.Context, db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// Ensure brings the database to s.Version. A new file gets the schema
// created; an older version is upgraded according to s.Policy; a newer
// version is never downgraded.
func Ensure(ctx context.Context, db *sql.DB, s Schema) error {
	if s.Version < 1 {
		return fmt.Errorf("%w: %d", ErrSchemaVersion, s.Version)
	}

	current, err := Version(ctx, db)
	if err != nil {
		return err
	}

	switch {
	case current == 0:
		slog.Info("creating database schema", "version", s.Version)
		return create(ctx, db, s.Version)
	case current == s.Version:
		return EnsureSchema(ctx, db)
	case current < s.Version:
		return Upgrade(ctx, db, current, s.Version, s.Policy)
	default:
		return fmt.Errorf("%w: database is at version %d, newer than %d", ErrSchemaVersion, current, s.Version)
	}
}

// EnsureSchema creates all tables if they don't already exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Upgrade moves the schema from oldVersion to newVersion. With PolicyDrop
// every existing row is discarded.
func Upgrade(ctx context.Context, db *sql.DB, oldVersion, newVersion int, policy string) error {
	switch policy {
	case PolicyDrop, "":
	case PolicyRefuse:
		return fmt.Errorf("%w: upgrade from %d to %d refused by policy", ErrSchemaVersion, oldVersion, newVersion)
	default:
		return fmt.Errorf("unknown upgrade policy %q", policy)
	}

	slog.Warn("upgrading database schema, existing data is discarded",
		"from", oldVersion, "to", newVersion)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning upgrade: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, dropSchema); err != nil {
		return fmt.Errorf("dropping tables: %w", err)
	}
	if err := createTx(ctx, tx, newVersion); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upgrade: %w", err)
	}
	return nil
}

func create(ctx context.Context, db *sql.DB, version int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning schema creation: %w", err)
	}
	defer tx.Rollback()

	if err := createTx(ctx, tx, version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema: %w", err)
	}
	return nil
}

func createTx(ctx context.Context, tx *sql.Tx, version int) error {
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	// PRAGMA arguments cannot be bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("setting schema version: %w", err)
	}
	return nil
}
