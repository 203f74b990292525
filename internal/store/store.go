package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/erazemk/stockmate/internal/auth"
	"github.com/erazemk/stockmate/internal/db"
	"github.com/erazemk/stockmate/internal/model"
)

// Options configures a Store. Zero values select the defaults.
type Options struct {
	Path         string
	Schema       db.Schema
	Limits       model.Limits
	Hasher       auth.Hasher
	// InsertPolicy is model.InsertStrict or model.InsertReplace. With
	// generated ids the two behave the same.
	InsertPolicy string
	// OpTimeout bounds every operation when positive.
	OpTimeout time.Duration
	Logger    *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Schema.Version == 0 {
		o.Schema.Version = db.CurrentVersion
	}
	if o.Schema.Policy == "" {
		o.Schema.Policy = db.PolicyDrop
	}
	if o.Limits == (model.Limits{}) {
		o.Limits = model.DefaultLimits()
	}
	if o.Hasher == (auth.Hasher{}) {
		o.Hasher = auth.DefaultHasher
	}
	if o.InsertPolicy == "" {
		o.InsertPolicy = model.InsertStrict
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Store is the handle through which all persistence operations run.
type Store struct {
	db     *sql.DB
	opts   Options
	logger *slog.Logger

	credentials *Credentials
	inventory   *Inventory
}

// Open opens the database at opts.Path and brings its schema to the
// configured version.
func Open(ctx context.Context, opts Options) (*Store, error) {
	opts = opts.withDefaults()
	if opts.Path == "" {
		return nil, fmt.Errorf("%w: database path is required", model.ErrInvalidInput)
	}
	if opts.InsertPolicy != model.InsertStrict && opts.InsertPolicy != model.InsertReplace {
		return nil, fmt.Errorf("%w: unknown insert policy %q", model.ErrInvalidInput, opts.InsertPolicy)
	}

	database, err := db.Open(opts.Path)
	if err != nil {
		return nil, err
	}

	if err := db.Ensure(ctx, database, opts.Schema); err != nil {
		database.Close()
		return nil, fmt.Errorf("%w: preparing schema: %w", model.ErrStorageUnavailable, err)
	}

	s := &Store{
		db:     database,
		opts:   opts,
		logger: opts.Logger.With("component", "store"),
	}
	s.credentials = &Credentials{s: s}
	s.inventory = &Inventory{s: s}

	s.logger.Info("store opened", "path", opts.Path, "schema_version", opts.Schema.Version)
	return s, nil
}

var (
	sharedMu sync.Mutex
	shared   *Store
)

// Shared returns the process-wide store, opening it with opts on first use.
// Later calls return the same handle and ignore opts. A failed open is not
// cached.
func Shared(ctx context.Context, opts Options) (*Store, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared != nil {
		return shared, nil
	}

	s, err := Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	shared = s
	return s, nil
}

// Credentials returns the user-credential store.
func (s *Store) Credentials() *Credentials { return s.credentials }

// Inventory returns the inventory record store.
func (s *Store) Inventory() *Inventory { return s.inventory }

// DB returns the underlying database.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database. Closing the shared handle releases it so the
// next Shared call opens a new one.
func (s *Store) Close() error {
	sharedMu.Lock()
	if shared == s {
		shared = nil
	}
	sharedMu.Unlock()

	return s.db.Close()
}

func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.OpTimeout > 0 {
		return context.WithTimeout(ctx, s.opts.OpTimeout)
	}
	return ctx, func() {}
}

// storageError logs err and converts it to ErrStorageUnavailable. The
// driver error is flattened into the message.
func (s *Store) storageError(ctx context.Context, op string, err error) error {
	s.logger.ErrorContext(ctx, "storage operation failed", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %v", model.ErrStorageUnavailable, op, err)
}

// withTx runs fn in a transaction, committing on success and rolling back
// on error or panic.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(tx)
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
