// Package config loads stockmate configuration from YAML or TOML files.
// Environment variables in the format ${VAR_NAME} are expanded before parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/erazemk/stockmate/internal/db"
	"github.com/erazemk/stockmate/internal/model"
)

// Config represents the complete stockmate configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Limits   model.Limits   `yaml:"limits" toml:"limits"`
	Items    ItemsConfig    `yaml:"items" toml:"items"`
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// DatabaseConfig holds storage configuration.
type DatabaseConfig struct {
	Path          string `yaml:"path" toml:"path"`
	SchemaVersion int    `yaml:"schema_version" toml:"schema_version"`
	// UpgradePolicy is "drop" or "refuse".
	UpgradePolicy string `yaml:"upgrade_policy" toml:"upgrade_policy"`

	OpTimeout    time.Duration `yaml:"-" toml:"-"`
	OpTimeoutRaw string        `yaml:"op_timeout" toml:"op_timeout"`
}

// ItemsConfig holds item insert behavior.
type ItemsConfig struct {
	// InsertPolicy is "strict" or "replace". Items are keyed by a generated
	// id, so new rows never conflict under either policy.
	InsertPolicy string `yaml:"insert_policy" toml:"insert_policy"`
}

// ServerConfig holds HTTP surface configuration.
type ServerConfig struct {
	Addr      string `yaml:"addr" toml:"addr"`
	JWTSecret string `yaml:"jwt_secret" toml:"jwt_secret"`

	TokenTTL    time.Duration `yaml:"-" toml:"-"`
	TokenTTLRaw string        `yaml:"token_ttl" toml:"token_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
	File   string `yaml:"file" toml:"file"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:          "stockmate.sqlite3",
			SchemaVersion: db.CurrentVersion,
			UpgradePolicy: db.PolicyDrop,
			OpTimeout:     5 * time.Second,
		},
		Limits: model.DefaultLimits(),
		Items:  ItemsConfig{InsertPolicy: model.InsertStrict},
		Server: ServerConfig{
			Addr:     ":8080",
			TokenTTL: 24 * time.Hour,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads a configuration file. The format follows the extension:
// .toml is TOML, anything else is YAML. Unset fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} with the variable's value, or an empty
// string when it is unset.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

// Validate returns the first invalid field it finds.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.SchemaVersion < 1 {
		return fmt.Errorf("database.schema_version must be at least 1")
	}
	switch c.Database.UpgradePolicy {
	case db.PolicyDrop, db.PolicyRefuse:
	default:
		return fmt.Errorf("database.upgrade_policy must be %q or %q", db.PolicyDrop, db.PolicyRefuse)
	}
	if c.Database.OpTimeout < 0 {
		return fmt.Errorf("database.op_timeout must not be negative")
	}

	switch c.Items.InsertPolicy {
	case model.InsertStrict, model.InsertReplace:
	default:
		return fmt.Errorf("items.insert_policy must be %q or %q", model.InsertStrict, model.InsertReplace)
	}

	l := c.Limits
	if l.MaxUsernameLength < 1 || l.MaxPasswordLength < 1 || l.MaxItemNameLength < 1 {
		return fmt.Errorf("limits must be positive")
	}
	if l.MinPasswordLength < 0 || l.MinPasswordLength > l.MaxPasswordLength {
		return fmt.Errorf("limits.min_password_length must be between 0 and limits.max_password_length")
	}

	return nil
}

func parseDurations(cfg *Config) error {
	var err error

	if cfg.Database.OpTimeoutRaw != "" {
		cfg.Database.OpTimeout, err = time.ParseDuration(cfg.Database.OpTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing op_timeout %q: %w", cfg.Database.OpTimeoutRaw, err)
		}
	}

	if cfg.Server.TokenTTLRaw != "" {
		cfg.Server.TokenTTL, err = time.ParseDuration(cfg.Server.TokenTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing token_ttl %q: %w", cfg.Server.TokenTTLRaw, err)
		}
	}

	return nil
}

// Schema returns the schema manager settings.
func (c *Config) Schema() db.Schema {
	return db.Schema{Version: c.Database.SchemaVersion, Policy: c.Database.UpgradePolicy}
}
