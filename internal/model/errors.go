package model

import "errors"

var (
	// ErrInvalidInput marks a malformed or out-of-range argument.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUsernameTaken marks a registration for a username that already exists.
	ErrUsernameTaken = errors.New("username taken")

	// ErrStorageUnavailable marks an I/O-level failure of the backing store.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
