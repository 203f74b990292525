package model

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// User represents a registered account. Only the password hash is ever held.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// Limits bounds user-supplied text.
type Limits struct {
	MaxUsernameLength int `yaml:"max_username_length" toml:"max_username_length"`
	MaxPasswordLength int `yaml:"max_password_length" toml:"max_password_length"`
	MinPasswordLength int `yaml:"min_password_length" toml:"min_password_length"`
	MaxItemNameLength int `yaml:"max_item_name_length" toml:"max_item_name_length"`
}

// DefaultMaxInputLength is the default maximum length of names and passwords.
const DefaultMaxInputLength = 20

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxUsernameLength: DefaultMaxInputLength,
		MaxPasswordLength: DefaultMaxInputLength,
		MaxItemNameLength: DefaultMaxInputLength,
	}
}

// Sanitize trims surrounding whitespace and truncates s to at most limit runes.
// A non-positive limit disables truncation.
func Sanitize(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	// A cut can land after a space; never keep it.
	return strings.TrimRightFunc(string([]rune(s)[:limit]), unicode.IsSpace)
}

// ValidateUsername checks that a username is non-empty and within limit.
func ValidateUsername(username string, limit int) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if limit > 0 && runeLen(username) > limit {
		return fmt.Errorf("%w: username longer than %d characters", ErrInvalidInput, limit)
	}
	return nil
}

// ValidatePassword checks that a password is non-empty and within [minLen, limit].
func ValidatePassword(password string, minLen, limit int) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	n := runeLen(password)
	if minLen > 0 && n < minLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minLen)
	}
	if limit > 0 && n > limit {
		return fmt.Errorf("%w: password longer than %d characters", ErrInvalidInput, limit)
	}
	return nil
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
