package config

import (
	"flag"
)

// flagFields maps flag names to config field names.
var flagFields = map[string]string{
	"state-dir":       "state_dir",
	"slot-key":        "slot_key",
	"schema":          "schema_file",
	"persist-empty":   "persist_empty",
	"max-store-bytes": "max_store_bytes",
	"lock-timeout":    "lock_timeout",
	"ephemeral":       "ephemeral",
	"show-completed":  "show_completed",
	"log-level":       "log_level",
	"log-format":      "log_format",
	"log-timestamps":  "log_timestamps",
	"log-caller":      "log_caller",
	"log-file":        "log_file",
}

// RegisterFlags binds the global flags to cfg on fs, using the current
// values of cfg as defaults.
func RegisterFlags(cfg *Config, fs *flag.FlagSet) {
	// Storage flags
	fs.StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "State directory holding the task store")
	fs.StringVar(&cfg.SlotKey, "slot-key", cfg.SlotKey, "Store key the task list is saved under")
	fs.StringVar(&cfg.SchemaFile, "schema", cfg.SchemaFile, "JSON schema for stored tasks (default: built in)")
	fs.BoolVar(&cfg.PersistEmpty, "persist-empty", cfg.PersistEmpty, "Save the list even when it becomes empty")
	fs.Int64Var(&cfg.MaxStoreBytes, "max-store-bytes", cfg.MaxStoreBytes, "Store size quota in bytes (0 for unlimited)")
	fs.DurationVar(&cfg.LockTimeout, "lock-timeout", cfg.LockTimeout, "How long to wait for the store lock")
	fs.BoolVar(&cfg.Ephemeral, "ephemeral", cfg.Ephemeral, "Keep tasks in memory only")

	// Display flags
	fs.BoolVar(&cfg.ShowCompleted, "show-completed", cfg.ShowCompleted, "Start with completed tasks shown")

	// Logging flags
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text|json|logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Include timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Include caller location in logs")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Write logs to this file instead of stderr")
}

// parseFlags defines and parses CLI flags, recording the ones set explicitly.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("tasks", flag.ContinueOnError)
	}
	RegisterFlags(cfg, fs)

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if field, ok := flagFields[f.Name]; ok {
			sources[field] = SourceFlag
		}
	})
	return nil
}
