package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"strings"

	"github.com/nibzard/tasks-go/internal/config"
	"github.com/nibzard/tasks-go/internal/todo"
	"github.com/nibzard/tasks-go/internal/ui"
	"github.com/nibzard/tasks-go/internal/utils"
)

const (
	// shortIDLen is the id prefix shown in listings.
	shortIDLen = 8
	// listTextWidth bounds task text in non-verbose listings.
	listTextWidth = 72
)

// tuiCommand launches the terminal editor.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasks tui", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inline := fs.Bool("inline", false, "Render inline instead of in the alternate screen")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	s, err := openSession(cfg, sessionOptions{quiet: true})
	if err != nil {
		return err
	}
	defer s.Close()

	return ui.RunTUI(ctx, s.store, ui.WithAltScreen(!*inline), ui.WithIO(nil, stdout))
}

// addCommand adds a pending task.
func addCommand(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tasks add <text...>")
	}

	s, err := openSession(cfg, sessionOptions{})
	if err != nil {
		return err
	}
	defer s.Close()

	task, err := s.store.Add(strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Added %s %s\n", utils.ShortID(task.ID, shortIDLen), task.Text)
	return nil
}

// editCommand replaces the text of a task through an edit session.
func editCommand(cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: tasks edit <id> <text...>")
	}

	s, err := openSession(cfg, sessionOptions{})
	if err != nil {
		return err
	}
	defer s.Close()

	target, err := s.store.Lookup(args[0])
	if err != nil {
		return err
	}
	if err := s.store.BeginEdit(target.ID); err != nil {
		return err
	}
	s.store.SetDraft(strings.Join(args[1:], " "))
	task, err := s.store.SaveEdit()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Updated %s %s\n", utils.ShortID(task.ID, shortIDLen), task.Text)
	return nil
}

// toggleCommand flips a task between pending and completed.
func toggleCommand(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: tasks toggle <id>")
	}

	s, err := openSession(cfg, sessionOptions{})
	if err != nil {
		return err
	}
	defer s.Close()

	target, err := s.store.Lookup(args[0])
	if err != nil {
		return err
	}
	task, err := s.store.ToggleCompleted(target.ID)
	if err != nil {
		return err
	}
	verb := "Reopened"
	if task.Completed {
		verb = "Completed"
	}
	fmt.Fprintf(stdout, "%s %s %s\n", verb, utils.ShortID(task.ID, shortIDLen), task.Text)
	return nil
}

// removeCommand deletes a task.
func removeCommand(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: tasks rm <id>")
	}

	s, err := openSession(cfg, sessionOptions{})
	if err != nil {
		return err
	}
	defer s.Close()

	target, err := s.store.Lookup(args[0])
	if err != nil {
		return err
	}
	if s.store.Remove(target.ID) {
		fmt.Fprintf(stdout, "Removed %s %s\n", utils.ShortID(target.ID, shortIDLen), target.Text)
	}
	return nil
}

// lsCommand lists tasks.
func lsCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasks ls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	completed := fs.Bool("completed", cfg.ShowCompleted, "List completed tasks instead of pending ones")
	all := fs.Bool("all", false, "List pending and completed tasks")
	asJSON := fs.Bool("json", false, "Print tasks as JSON")
	verbose := fs.Bool("v", false, "Show full ids and text")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	s, err := openSession(cfg, sessionOptions{})
	if err != nil {
		return err
	}
	defer s.Close()

	s.store.SetShowCompleted(*completed)
	tasks := s.store.ListVisible()
	if *all {
		tasks = s.store.All()
	}

	if *asJSON {
		data, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding tasks: %w", err)
		}
		fmt.Fprintln(stdout, string(data))
		return nil
	}

	if *all {
		printTasksByCompletion("Pending", tasks.Filter(false), *verbose)
		printTasksByCompletion("Completed", tasks.Filter(true), *verbose)
		return nil
	}
	if len(tasks) == 0 {
		if *completed {
			fmt.Fprintln(stdout, "No completed tasks.")
		} else {
			fmt.Fprintln(stdout, "Nothing to do.")
		}
		return nil
	}
	printTaskList(tasks, *verbose)
	return nil
}

// printTasksByCompletion prints a labelled group of tasks.
func printTasksByCompletion(label string, tasks todo.Collection, verbose bool) {
	fmt.Fprintf(stdout, "%s (%d):\n", label, len(tasks))
	printTaskList(tasks, verbose)
	fmt.Fprintln(stdout)
}

// printTaskList prints tasks one per line.
func printTaskList(tasks todo.Collection, verbose bool) {
	for _, t := range tasks {
		printTask(t, verbose)
	}
}

func printTask(t todo.Task, verbose bool) {
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}
	id, text := t.ID, t.Text
	if !verbose {
		id = utils.ShortID(id, shortIDLen)
		text = utils.Truncate(text, listTextWidth)
	}
	fmt.Fprintf(stdout, "  %s %s  %s\n", check, id, text)
}
