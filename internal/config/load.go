package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/tasks-go/internal/logging"
)

// LoadWithSources loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.tasks/tasks.toml or OS-specific config dir)
// 3. Project config file (.tasks/tasks.toml or tasks.toml in current directory)
// 4. Environment variables
// 5. CLI flags
//
// It tracks the source of each value. Unparseable flags are returned as a
// *FlagError.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	cws := &ConfigWithSources{
		Config:  &Config{},
		Sources: make(map[string]ConfigSource),
	}
	cfg := cws.Config

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		cws.Sources[field] = SourceDefault
	}

	// 2. Try to load from user config file
	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := cws.loadFile(userConfigFile, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
	}

	// 3. Try to load from project config file (overrides user config)
	if projectConfigFile := findProjectConfigFile(); projectConfigFile != "" {
		if err := cws.loadFile(projectConfigFile, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
	}

	// 4. Override from environment
	if err := loadFromEnv(cfg, cws.Sources); err != nil {
		return nil, err
	}

	// 5. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, cws.Sources); err != nil {
		return nil, &FlagError{Err: err}
	}

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cws, nil
}

// FlagError reports command-line flags that could not be parsed.
type FlagError struct {
	Err error
}

func (e *FlagError) Error() string {
	return "parsing flags: " + e.Err.Error()
}

func (e *FlagError) Unwrap() error {
	return e.Err
}

// loadFile decodes a TOML file on top of the current values. Only keys
// present in the file change, so the metadata gives the source of each.
func (cws *ConfigWithSources) loadFile(path string, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cws.Config)
	if err != nil {
		return err
	}
	cws.Files = append(cws.Files, path)

	for _, field := range configFields() {
		if md.IsDefined(field) {
			cws.Sources[field] = source
		}
	}
	for _, key := range md.Undecoded() {
		cws.Unknown = append(cws.Unknown, fmt.Sprintf("%s: %s", path, key.String()))
	}
	return nil
}

// finalizeConfig computes derived values and validates the result.
func finalizeConfig(cfg *Config) error {
	// Determine project root
	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	// Expand ~ and make paths absolute against the project root
	if strings.TrimSpace(cfg.StateDir) == "" {
		cfg.StateDir = DefaultStateDir
	}
	cfg.StateDir = resolvePath(cfg.ProjectRoot, cfg.StateDir)
	cfg.SchemaFile = resolvePath(cfg.ProjectRoot, cfg.SchemaFile)
	cfg.LogFile = resolvePath(cfg.ProjectRoot, cfg.LogFile)

	cfg.SlotKey = strings.TrimSpace(cfg.SlotKey)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	return cfg.Validate()
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.SlotKey == "" {
		return fmt.Errorf("slot_key must not be empty")
	}
	if c.MaxStoreBytes < 0 {
		return fmt.Errorf("max_store_bytes must not be negative, got %d", c.MaxStoreBytes)
	}
	if c.LockTimeout < 0 {
		return fmt.Errorf("lock_timeout must not be negative, got %s", c.LockTimeout)
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q (want debug, info, warn or error)", c.LogLevel)
	}
	if !logging.ValidFormat(c.LogFormat) {
		return fmt.Errorf("invalid log_format %q (want text, json or logfmt)", c.LogFormat)
	}
	return nil
}
