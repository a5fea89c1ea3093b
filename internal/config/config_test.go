package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
)

// isolate points every config lookup at fresh temp directories and clears
// TASKS_* variables.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, env := range []string{
		"STATE_DIR", "SLOT_KEY", "SCHEMA", "PERSIST_EMPTY", "MAX_STORE_BYTES",
		"SHOW_COMPLETED", "EPHEMERAL", "LOG_LEVEL", "LOG_FORMAT",
		"LOG_TIMESTAMPS", "LOG_CALLER", "LOG_FILE", "LOCK_TIMEOUT",
	} {
		t.Setenv(EnvPrefix+env, "")
	}
	prevWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prevWD) })
	return work
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

func TestDefaults(t *testing.T) {
	work := isolate(t)

	cfg, err := load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	wd, _ := os.Getwd()
	if cfg.ProjectRoot != wd {
		t.Errorf("ProjectRoot = %q, want %q", cfg.ProjectRoot, wd)
	}
	if cfg.StateDir != filepath.Join(wd, ".tasks") {
		t.Errorf("StateDir = %q, want .tasks under %q", cfg.StateDir, work)
	}
	if cfg.SlotKey != DefaultSlotKey {
		t.Errorf("SlotKey = %q, want %q", cfg.SlotKey, DefaultSlotKey)
	}
	if cfg.SchemaFile != "" {
		t.Errorf("SchemaFile = %q, want empty", cfg.SchemaFile)
	}
	if cfg.PersistEmpty {
		t.Error("PersistEmpty should default to false")
	}
	if cfg.MaxStoreBytes != DefaultMaxStoreBytes {
		t.Errorf("MaxStoreBytes = %d, want %d", cfg.MaxStoreBytes, DefaultMaxStoreBytes)
	}
	if cfg.LockTimeout != DefaultLockTimeout {
		t.Errorf("LockTimeout = %s, want %s", cfg.LockTimeout, DefaultLockTimeout)
	}
	if cfg.LogLevel != DefaultLogLevel || cfg.LogFormat != DefaultLogFormat {
		t.Errorf("log = %q/%q, want %q/%q", cfg.LogLevel, cfg.LogFormat, DefaultLogLevel, DefaultLogFormat)
	}
	if got, want := cfg.StorePath(), filepath.Join(cfg.StateDir, "store.json"); got != want {
		t.Errorf("StorePath() = %q, want %q", got, want)
	}
	if got, want := cfg.LockPath(), filepath.Join(cfg.StateDir, "store.lock"); got != want {
		t.Errorf("LockPath() = %q, want %q", got, want)
	}
}

func TestLayering(t *testing.T) {
	work := isolate(t)
	home := os.Getenv("HOME")

	writeFile(t, filepath.Join(home, ".tasks", "tasks.toml"), `
slot_key = "from-user"
log_level = "debug"
show_completed = true
`)
	writeFile(t, filepath.Join(work, ".tasks", "tasks.toml"), `
slot_key = "from-project"
max_store_bytes = 1024
`)
	t.Setenv("TASKS_MAX_STORE_BYTES", "2048")
	t.Setenv("TASKS_PERSIST_EMPTY", "yes")

	cws, err := LoadWithSources(newFlagSet(), []string{"-log-level", "warn", "ls"})
	if err != nil {
		t.Fatalf("LoadWithSources() error = %v", err)
	}
	cfg := cws.Config

	tests := []struct {
		field  string
		got    any
		want   any
		source ConfigSource
	}{
		{"slot_key", cfg.SlotKey, "from-project", SourceProjFile},
		{"show_completed", cfg.ShowCompleted, true, SourceUserFile},
		{"max_store_bytes", cfg.MaxStoreBytes, int64(2048), SourceEnv},
		{"persist_empty", cfg.PersistEmpty, true, SourceEnv},
		{"log_level", cfg.LogLevel, "warn", SourceFlag},
		{"log_format", cfg.LogFormat, "text", SourceDefault},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.field, tt.got, tt.want)
			}
			if cws.Sources[tt.field] != tt.source {
				t.Errorf("source of %s = %q, want %q", tt.field, cws.Sources[tt.field], tt.source)
			}
		})
	}

	if len(cws.Files) != 2 {
		t.Fatalf("Files = %v, want user and project file", cws.Files)
	}
	if !strings.HasSuffix(cws.ConfigFile(), filepath.Join(".tasks", "tasks.toml")) {
		t.Errorf("ConfigFile() = %q, want the project file", cws.ConfigFile())
	}
}

func TestProjectConfigFallback(t *testing.T) {
	work := isolate(t)
	writeFile(t, filepath.Join(work, "tasks.toml"), `state_dir = "data"`)

	cfg, err := load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if filepath.Base(cfg.StateDir) != "data" || !filepath.IsAbs(cfg.StateDir) {
		t.Errorf("StateDir = %q, want absolute path ending in data", cfg.StateDir)
	}
}

func TestUnknownKeysAreReported(t *testing.T) {
	work := isolate(t)
	writeFile(t, filepath.Join(work, "tasks.toml"), `
slot_key = "x"
max_iterations = 3
`)

	cws, err := LoadWithSources(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("LoadWithSources() error = %v", err)
	}
	if len(cws.Unknown) != 1 || !strings.HasSuffix(cws.Unknown[0], "max_iterations") {
		t.Errorf("Unknown = %v, want max_iterations", cws.Unknown)
	}
}

func TestFlagsLeaveRemainingArgs(t *testing.T) {
	isolate(t)
	fs := newFlagSet()

	cfg, err := load(fs, []string{"-ephemeral", "-schema", "s.json", "add", "Buy", "milk"})
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if !cfg.Ephemeral {
		t.Error("Ephemeral should be set by flag")
	}
	if !filepath.IsAbs(cfg.SchemaFile) || filepath.Base(cfg.SchemaFile) != "s.json" {
		t.Errorf("SchemaFile = %q, want absolute s.json", cfg.SchemaFile)
	}
	if got := strings.Join(fs.Args(), " "); got != "add Buy milk" {
		t.Errorf("Args() = %q, want %q", got, "add Buy milk")
	}
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
		toml string
	}{
		{name: "bad bool env", env: map[string]string{"TASKS_SHOW_COMPLETED": "maybe"}},
		{name: "bad int env", env: map[string]string{"TASKS_MAX_STORE_BYTES": "lots"}},
		{name: "bad level flag", args: []string{"-log-level", "loud"}},
		{name: "bad format env", env: map[string]string{"TASKS_LOG_FORMAT": "xml"}},
		{name: "negative quota", args: []string{"-max-store-bytes", "-1"}},
		{name: "blank slot key", toml: `slot_key = "  "`},
		{name: "bad duration env", env: map[string]string{"TASKS_LOCK_TIMEOUT": "soon"}},
		{name: "negative lock timeout", args: []string{"-lock-timeout", "-1s"}},
		{name: "malformed toml", toml: `slot_key = `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			work := isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.toml != "" {
				writeFile(t, filepath.Join(work, "tasks.toml"), tt.toml)
			}
			if _, err := load(newFlagSet(), tt.args); err == nil {
				t.Error("load() should fail")
			}
		})
	}
}

func TestExampleConfigDecodes(t *testing.T) {
	var cfg Config
	md, err := toml.Decode(ExampleConfig(), &cfg)
	if err != nil {
		t.Fatalf("ExampleConfig() does not decode: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		t.Errorf("ExampleConfig() has unknown keys: %v", undecoded)
	}
	if cfg.SlotKey != DefaultSlotKey || cfg.MaxStoreBytes != DefaultMaxStoreBytes || cfg.LockTimeout != DefaultLockTimeout {
		t.Errorf("ExampleConfig() = %+v, want defaults", cfg)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TASKS_TEST_DIR", "/srv/tasks")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/notes", filepath.Join(home, "notes")},
		{"$TASKS_TEST_DIR/state", "/srv/tasks/state"},
		{"relative", "relative"},
	}
	for _, tt := range tests {
		if got := expandPath(tt.in); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBoolFromString(t *testing.T) {
	tests := []struct {
		in     string
		want   bool
		wantOK bool
	}{
		{"1", true, true},
		{"TRUE", true, true},
		{" yes ", true, true},
		{"off", false, true},
		{"0", false, true},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		got, ok := boolFromString(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("boolFromString(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestValueCoversEveryField(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.SchemaFile = "s.json"
	cfg.LogFile = "tasks.log"

	for _, field := range Fields() {
		if cfg.Value(field) == "" {
			t.Errorf("Value(%q) is empty", field)
		}
	}
	if got := cfg.Value("max_store_bytes"); got != "5242880" {
		t.Errorf("Value(max_store_bytes) = %q", got)
	}
}

func TestLockTimeoutLayering(t *testing.T) {
	work := isolate(t)
	writeFile(t, filepath.Join(work, "tasks.toml"), `lock_timeout = "5s"`)

	cws, err := LoadWithSources(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("LoadWithSources() error = %v", err)
	}
	if cws.Config.LockTimeout != 5*time.Second || cws.Sources["lock_timeout"] != SourceProjFile {
		t.Errorf("file: LockTimeout = %s (%s)", cws.Config.LockTimeout, cws.Sources["lock_timeout"])
	}

	t.Setenv("TASKS_LOCK_TIMEOUT", "750ms")
	cws, err = LoadWithSources(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("LoadWithSources() error = %v", err)
	}
	if cws.Config.LockTimeout != 750*time.Millisecond || cws.Sources["lock_timeout"] != SourceEnv {
		t.Errorf("env: LockTimeout = %s (%s)", cws.Config.LockTimeout, cws.Sources["lock_timeout"])
	}

	cws, err = LoadWithSources(newFlagSet(), []string{"-lock-timeout", "0s"})
	if err != nil {
		t.Fatalf("LoadWithSources() error = %v", err)
	}
	if cws.Config.LockTimeout != 0 || cws.Sources["lock_timeout"] != SourceFlag {
		t.Errorf("flag: LockTimeout = %s (%s)", cws.Config.LockTimeout, cws.Sources["lock_timeout"])
	}
}

func TestFlagErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"unknown flag", []string{"--bogus"}, true},
		{"bad int", []string{"-max-store-bytes", "lots"}, true},
		{"bad duration", []string{"-lock-timeout", "soon"}, true},
		{"invalid value", []string{"-log-level", "loud"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := LoadWithSources(newFlagSet(), tt.args)
			if err == nil {
				t.Fatal("LoadWithSources() should fail")
			}
			var fe *FlagError
			if got := errors.As(err, &fe); got != tt.want {
				t.Errorf("errors.As(FlagError) = %v, want %v (err %v)", got, tt.want, err)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	root := filepath.Join(string(filepath.Separator), "work")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{".tasks", filepath.Join(root, ".tasks")},
		{"logs/tasks.log", filepath.Join(root, "logs", "tasks.log")},
		{"~/.tasks", filepath.Join(home, ".tasks")},
		{filepath.Join(string(filepath.Separator), "abs", "dir"), filepath.Join(string(filepath.Separator), "abs", "dir")},
	}
	for _, tt := range tests {
		if got := resolvePath(root, tt.in); got != tt.want {
			t.Errorf("resolvePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBlankStateDirFallsBackToDefault(t *testing.T) {
	work := isolate(t)
	writeFile(t, filepath.Join(work, "tasks.toml"), `state_dir = ""`)

	cfg, err := load(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if filepath.Base(cfg.StateDir) != ".tasks" || !filepath.IsAbs(cfg.StateDir) {
		t.Errorf("StateDir = %q, want absolute .tasks", cfg.StateDir)
	}
}
