package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/tasks-go/internal/config"
	"github.com/nibzard/tasks-go/internal/exitcode"
	"github.com/nibzard/tasks-go/internal/kv"
	"github.com/nibzard/tasks-go/internal/todo"
)

// errDoctorFailed is returned when doctor finds a problem.
var errDoctorFailed = errors.New("doctor found problems")

// doctorCommand checks config, the store, and the stored task list.
func doctorCommand(cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("tasks doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	cfg := cws.Config

	fmt.Fprintln(stdout, "tasks doctor")
	fmt.Fprintln(stdout, "============")
	fmt.Fprintln(stdout)

	allOK := true

	// Check project root
	fmt.Fprintf(stdout, "Project root: %s\n", cfg.ProjectRoot)
	if _, err := os.Stat(cfg.ProjectRoot); err != nil {
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		allOK = false
	} else {
		fmt.Fprintln(stdout, "  ✅ OK")
	}
	fmt.Fprintln(stdout)

	// Check config
	fmt.Fprintln(stdout, "Config:")
	if len(cws.Files) == 0 {
		fmt.Fprintln(stdout, "  Files: (none, using defaults)")
	}
	for _, file := range cws.Files {
		fmt.Fprintf(stdout, "  File: %s\n", file)
	}
	for _, field := range config.Fields() {
		source := cws.Sources[field]
		if !*verbose && source == config.SourceDefault {
			continue
		}
		fmt.Fprintf(stdout, "  %s = %q (%s)\n", field, cfg.Value(field), source)
	}
	for _, key := range cws.Unknown {
		fmt.Fprintf(stdout, "  ⚠️  Unknown key %s\n", key)
	}
	fmt.Fprintln(stdout, "  ✅ OK")
	fmt.Fprintln(stdout)

	// Check schema
	fmt.Fprintln(stdout, "Schema:")
	schemaLabel := cfg.SchemaFile
	if schemaLabel == "" {
		schemaLabel = "(built in)"
	}
	fmt.Fprintf(stdout, "  %s\n", schemaLabel)
	schema, err := todo.CompileSchema(cfg.SchemaFile)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ %v\n", err)
		allOK = false
	} else {
		fmt.Fprintln(stdout, "  ✅ OK")
	}
	fmt.Fprintln(stdout)

	// Check store
	fmt.Fprintln(stdout, "Store:")
	if cfg.Ephemeral {
		fmt.Fprintln(stdout, "  in memory (ephemeral)")
	} else {
		fmt.Fprintf(stdout, "  %s\n", cfg.StorePath())
	}
	store, err := openKV(cfg)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ %v\n", err)
		fmt.Fprintln(stdout)
		return exitcode.Wrap(exitcode.StorageError, errDoctorFailed)
	}
	keys, err := store.Keys()
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ %v\n", err)
		allOK = false
	} else {
		fmt.Fprintf(stdout, "  ✅ OK (%d keys, quota %s)\n", len(keys), formatQuota(cfg.MaxStoreBytes))
	}
	fmt.Fprintln(stdout)

	// Check stored tasks
	fmt.Fprintf(stdout, "Stored tasks (key %q):\n", cfg.SlotKey)
	if !checkSlot(store, cfg.SlotKey, schema) {
		allOK = false
	}
	fmt.Fprintln(stdout)

	if !allOK {
		return exitcode.Wrap(exitcode.StorageError, errDoctorFailed)
	}
	fmt.Fprintln(stdout, "All checks passed.")
	return nil
}

// checkSlot reports whether the slot is absent or holds a valid list.
func checkSlot(store kv.Store, key string, schema *jsonschema.Schema) bool {
	raw, err := store.Get(key)
	if errors.Is(err, kv.ErrNotExist) {
		fmt.Fprintln(stdout, "  ✅ None stored yet")
		return true
	}
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ %v\n", err)
		return false
	}

	opts := []todo.PersisterOption{todo.WithSlotKey(key)}
	if schema != nil {
		opts = append(opts, todo.WithSchema(schema))
	}
	tasks, err := todo.NewSlotPersister(store, opts...).Decode(raw)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Invalid, will be discarded on load: %v\n", err)
		return false
	}
	pending, completed := 0, 0
	for _, t := range tasks {
		if t.Completed {
			completed++
		} else {
			pending++
		}
	}
	fmt.Fprintf(stdout, "  ✅ %d tasks (%d pending, %d completed)\n", len(tasks), pending, completed)
	return true
}

func formatQuota(n int64) string {
	if n <= 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d bytes", n)
}
