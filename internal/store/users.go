package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/stockmate/internal/auth"
	"github.com/erazemk/stockmate/internal/model"
)

// Credentials manages user records: registration and login checks.
type Credentials struct {
	s *Store
}

// sanitize applies the configured limits to a username and password pair.
func (c *Credentials) sanitize(username, password string) (string, string) {
	lim := c.s.opts.Limits
	return model.Sanitize(username, lim.MaxUsernameLength), model.Sanitize(password, lim.MaxPasswordLength)
}

// AddUser registers a new user. Both fields are sanitized before
// validation. Only the password hash is stored.
func (c *Credentials) AddUser(ctx context.Context, username, password string) error {
	ctx, cancel := c.s.opContext(ctx)
	defer cancel()

	username, password = c.sanitize(username, password)
	lim := c.s.opts.Limits
	if err := model.ValidateUsername(username, lim.MaxUsernameLength); err != nil {
		return err
	}
	if err := model.ValidatePassword(password, lim.MinPasswordLength, lim.MaxPasswordLength); err != nil {
		return err
	}

	hash, err := c.s.opts.Hasher.Hash(password)
	if err != nil {
		return c.s.storageError(ctx, "hashing password", err)
	}

	var taken bool
	err = c.s.withTx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM users WHERE username = ?`, username,
		).Scan(&n); err != nil {
			return fmt.Errorf("checking username: %w", err)
		}
		if n > 0 {
			taken = true
			return nil
		}

		// The UNIQUE constraint is authoritative if another writer got here first.
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (username, password) VALUES (?, ?)`,
			username, hash,
		); err != nil {
			if isUniqueViolation(err) {
				taken = true
				return nil
			}
			return fmt.Errorf("creating user: %w", err)
		}
		return nil
	})
	if err != nil {
		return c.s.storageError(ctx, "adding user", err)
	}
	if taken {
		return fmt.Errorf("%w: %q", model.ErrUsernameTaken, username)
	}

	c.s.logger.InfoContext(ctx, "user registered", "username", username)
	return nil
}

// ValidateCredentials reports whether username exists and password matches
// its stored hash. A missing user and a wrong password are indistinguishable.
func (c *Credentials) ValidateCredentials(ctx context.Context, username, password string) (bool, error) {
	ctx, cancel := c.s.opContext(ctx)
	defer cancel()

	username, password = c.sanitize(username, password)
	if username == "" || password == "" {
		return false, nil
	}

	var hash string
	err := c.s.db.QueryRowContext(ctx,
		`SELECT password FROM users WHERE username = ?`, username,
	).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, c.s.storageError(ctx, "validating credentials", err)
	}

	ok, err := auth.Verify(hash, password)
	if err != nil {
		c.s.logger.WarnContext(ctx, "stored password hash is unreadable", "username", username, "error", err)
		return false, nil
	}
	return ok, nil
}

// GetUser returns a user by username, or nil if none exists.
func (c *Credentials) GetUser(ctx context.Context, username string) (*model.User, error) {
	ctx, cancel := c.s.opContext(ctx)
	defer cancel()

	username = model.Sanitize(username, c.s.opts.Limits.MaxUsernameLength)

	u := &model.User{}
	err := c.s.db.QueryRowContext(ctx,
		`SELECT id, username, password FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, c.s.storageError(ctx, "getting user", err)
	}
	return u, nil
}

// ListUsernames returns a snapshot of all usernames in storage order.
func (c *Credentials) ListUsernames(ctx context.Context) ([]string, error) {
	ctx, cancel := c.s.opContext(ctx)
	defer cancel()

	rows, err := c.s.db.QueryContext(ctx, `SELECT username FROM users ORDER BY id`)
	if err != nil {
		return nil, c.s.storageError(ctx, "listing users", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, c.s.storageError(ctx, "scanning user", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, c.s.storageError(ctx, "listing users", err)
	}
	return names, nil
}
