package config

import (
	"strconv"
	"time"

	"github.com/nibzard/tasks-go/internal/statedir"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, in load order.
	Files []string
	// Unknown lists keys found in config files that match no field.
	Unknown []string
}

// Default values.
const (
	DefaultStateDir      = statedir.Dir
	DefaultSlotKey       = statedir.DefaultSlotKey
	DefaultMaxStoreBytes = int64(5 << 20)
	DefaultLockTimeout   = 2 * time.Second
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// Config holds the full configuration for tasks.
type Config struct {
	// Storage
	StateDir      string `toml:"state_dir"`
	SlotKey       string `toml:"slot_key"`
	SchemaFile    string `toml:"schema_file"`
	PersistEmpty  bool   `toml:"persist_empty"`
	MaxStoreBytes int64  `toml:"max_store_bytes"`

	// LockTimeout bounds the wait for the store lock.
	LockTimeout time.Duration `toml:"lock_timeout"`

	// Ephemeral keeps tasks in memory only (flag/env only).
	Ephemeral bool `toml:"-"`

	// Initial filter mode
	ShowCompleted bool `toml:"show_completed"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`
	LogFile       string `toml:"log_file"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// StorePath returns the key-value store file path.
func (c *Config) StorePath() string {
	return statedir.StorePath(c.StateDir)
}

// LockPath returns the store lock file path.
func (c *Config) LockPath() string {
	return statedir.LockPath(c.StateDir)
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return configFields()
}

// Value returns the current value of a field for display.
func (c *Config) Value(field string) string {
	switch field {
	case "state_dir":
		return c.StateDir
	case "slot_key":
		return c.SlotKey
	case "schema_file":
		return c.SchemaFile
	case "persist_empty":
		return strconv.FormatBool(c.PersistEmpty)
	case "max_store_bytes":
		return strconv.FormatInt(c.MaxStoreBytes, 10)
	case "lock_timeout":
		return c.LockTimeout.String()
	case "ephemeral":
		return strconv.FormatBool(c.Ephemeral)
	case "show_completed":
		return strconv.FormatBool(c.ShowCompleted)
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return strconv.FormatBool(c.LogTimestamps)
	case "log_caller":
		return strconv.FormatBool(c.LogCaller)
	case "log_file":
		return c.LogFile
	}
	return ""
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"state_dir",
		"slot_key",
		"schema_file",
		"persist_empty",
		"max_store_bytes",
		"lock_timeout",
		"ephemeral",
		"show_completed",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
		"log_file",
	}
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.StateDir = DefaultStateDir
	cfg.SlotKey = DefaultSlotKey
	cfg.SchemaFile = ""
	cfg.PersistEmpty = false
	cfg.MaxStoreBytes = DefaultMaxStoreBytes
	cfg.LockTimeout = DefaultLockTimeout
	cfg.ShowCompleted = false
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}
