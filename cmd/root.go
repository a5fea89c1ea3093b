// Package cmd implements the CLI command structure for tasks.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nibzard/tasks-go/internal/config"
	"github.com/nibzard/tasks-go/internal/exitcode"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Output streams, swapped in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Run executes the tasks CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("tasks", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		var flagErr *config.FlagError
		if errors.As(err, &flagErr) {
			return err
		}
		return exitcode.Wrap(exitcode.StorageError, fmt.Errorf("loading config: %w", err))
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// Determine the subcommand
	// If no args or first arg is a flag, use "tui" as default
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	// Execute the subcommand
	switch subcommand {
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "add":
		return addCommand(cfg, remainingArgs)
	case "edit":
		return editCommand(cfg, remainingArgs)
	case "toggle", "done":
		return toggleCommand(cfg, remainingArgs)
	case "rm", "remove":
		return removeCommand(cfg, remainingArgs)
	case "ls", "list":
		return lsCommand(cfg, remainingArgs)
	case "doctor":
		return doctorCommand(cws, remainingArgs)
	case "init":
		return initCommand(cfg, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Fprintf(stdout, "tasks version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "tasks - a local to-do list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasks [options] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                 Launch the terminal editor (default command)")
	fmt.Fprintln(w, "  add <text...>       Add a pending task")
	fmt.Fprintln(w, "  edit <id> <text...> Replace the text of a task")
	fmt.Fprintln(w, "  toggle <id>         Flip a task between pending and completed")
	fmt.Fprintln(w, "  rm <id>             Delete a task")
	fmt.Fprintln(w, "  ls                  List pending tasks")
	fmt.Fprintln(w, "  doctor              Check config, store, and stored tasks")
	fmt.Fprintln(w, "  init                Write an example config to .tasks/tasks.toml")
	fmt.Fprintln(w, "  version             Show version information")
	fmt.Fprintln(w, "  help                Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Task ids may be shortened to any unique prefix.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options (use with 'ls' command):")
	fmt.Fprintln(w, "  -completed")
	fmt.Fprintln(w, "        List completed tasks instead of pending ones")
	fmt.Fprintln(w, "  -all")
	fmt.Fprintln(w, "        List pending and completed tasks")
	fmt.Fprintln(w, "  -json")
	fmt.Fprintln(w, "        Print tasks as JSON")
	fmt.Fprintln(w, "  -v    Show full ids and text")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Init Options (use with 'init' command):")
	fmt.Fprintln(w, "  -schema")
	fmt.Fprintln(w, "        Also write the built-in schema to .tasks/tasks.schema.json")
	fmt.Fprintln(w, "  -force")
	fmt.Fprintln(w, "        Overwrite existing files")
}
