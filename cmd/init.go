package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nibzard/tasks-go/internal/config"
	"github.com/nibzard/tasks-go/internal/exitcode"
	"github.com/nibzard/tasks-go/internal/statedir"
	"github.com/nibzard/tasks-go/internal/todo"
)

// schemaFileName is the file init writes the built-in schema to.
const schemaFileName = "tasks.schema.json"

type initFile struct {
	path string
	data []byte
}

// initCommand writes an example project config, and optionally the
// built-in schema, into the .tasks directory.
func initCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasks init", flag.ContinueOnError)
	fs.SetOutput(stderr)
	withSchema := fs.Bool("schema", false, "Also write the built-in schema")
	force := fs.Bool("force", false, "Overwrite existing files")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	dir := statedir.DirPath(cfg.ProjectRoot)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return exitcode.Wrap(exitcode.StorageError, fmt.Errorf("creating %s: %w", dir, err))
	}

	files := []initFile{
		{statedir.ConfigPath(cfg.ProjectRoot), []byte(config.ExampleConfig())},
	}
	if *withSchema {
		files = append(files, initFile{filepath.Join(dir, schemaFileName), todo.SlotSchema()})
	}

	for _, f := range files {
		if _, err := os.Stat(f.path); err == nil && !*force {
			fmt.Fprintf(stdout, "Skipped %s (exists)\n", f.path)
			continue
		}
		if err := os.WriteFile(f.path, f.data, 0o644); err != nil {
			return exitcode.Wrap(exitcode.StorageError, fmt.Errorf("writing %s: %w", f.path, err))
		}
		fmt.Fprintf(stdout, "Wrote %s\n", f.path)
	}
	return nil
}
