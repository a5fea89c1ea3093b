package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "TASKS_"

// loadFromEnv overrides config from environment variables and records
// their source. Empty variables are ignored.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	strs := []struct {
		field  string
		env    string
		target *string
	}{
		{"state_dir", "STATE_DIR", &cfg.StateDir},
		{"slot_key", "SLOT_KEY", &cfg.SlotKey},
		{"schema_file", "SCHEMA", &cfg.SchemaFile},
		{"log_level", "LOG_LEVEL", &cfg.LogLevel},
		{"log_format", "LOG_FORMAT", &cfg.LogFormat},
		{"log_file", "LOG_FILE", &cfg.LogFile},
	}
	for _, s := range strs {
		if v := os.Getenv(EnvPrefix + s.env); v != "" {
			*s.target = v
			sources[s.field] = SourceEnv
		}
	}

	bools := []struct {
		field  string
		env    string
		target *bool
	}{
		{"persist_empty", "PERSIST_EMPTY", &cfg.PersistEmpty},
		{"show_completed", "SHOW_COMPLETED", &cfg.ShowCompleted},
		{"ephemeral", "EPHEMERAL", &cfg.Ephemeral},
		{"log_timestamps", "LOG_TIMESTAMPS", &cfg.LogTimestamps},
		{"log_caller", "LOG_CALLER", &cfg.LogCaller},
	}
	for _, b := range bools {
		v := os.Getenv(EnvPrefix + b.env)
		if v == "" {
			continue
		}
		parsed, ok := boolFromString(v)
		if !ok {
			return fmt.Errorf("invalid %s%s: %q is not a boolean", EnvPrefix, b.env, v)
		}
		*b.target = parsed
		sources[b.field] = SourceEnv
	}

	if v := os.Getenv(EnvPrefix + "MAX_STORE_BYTES"); v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %sMAX_STORE_BYTES: %w", EnvPrefix, err)
		}
		cfg.MaxStoreBytes = n
		sources["max_store_bytes"] = SourceEnv
	}

	if v := os.Getenv(EnvPrefix + "LOCK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %sLOCK_TIMEOUT: %w", EnvPrefix, err)
		}
		cfg.LockTimeout = d
		sources["lock_timeout"] = SourceEnv
	}

	return nil
}

// boolFromString parses the boolean spellings accepted in env vars.
func boolFromString(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}
