// Package ui provides the terminal interface.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/tasks-go/internal/todo"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	altScreen bool
	input     io.Reader
	output    io.Writer
}

// WithAltScreen runs the TUI in the terminal's alternate screen.
func WithAltScreen(enabled bool) TUIOption {
	return func(c *tuiConfig) {
		c.altScreen = enabled
	}
}

// WithIO overrides the terminal streams. Both default to the process's
// standard streams.
func WithIO(in io.Reader, out io.Writer) TUIOption {
	return func(c *tuiConfig) {
		if in != nil {
			c.input = in
		}
		if out != nil {
			c.output = out
		}
	}
}

// RunTUI runs the task editor over store until the user quits.
func RunTUI(ctx context.Context, store *todo.Store, opts ...TUIOption) error {
	c := &tuiConfig{
		altScreen: true,
		input:     os.Stdin,
		output:    os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(c.output) {
		return fmt.Errorf("tui requires a TTY")
	}

	popts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(c.input),
		tea.WithOutput(c.output),
	}
	if c.altScreen {
		popts = append(popts, tea.WithAltScreen())
	}

	program := tea.NewProgram(NewModel(store), popts...)
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

type focusArea int

const (
	focusInput focusArea = iota
	focusList
)

// Model is the bubbletea model of the task editor. It holds no task
// state of its own; every action goes through the store.
type Model struct {
	store  *todo.Store
	input  textinput.Model
	help   help.Model
	keys   keyMap
	focus  focusArea
	cursor int
	status string
}

// NewModel creates a model over store and registers itself as the
// store's change listener.
func NewModel(store *todo.Store) *Model {
	ti := textinput.New()
	ti.Placeholder = "What needs to be done?"
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.Width = 48
	ti.Focus()

	m := &Model{
		store: store,
		input: ti,
		help:  help.New(),
		keys:  defaultKeyMap(),
		focus: focusInput,
	}
	store.OnChange(m.sync)
	m.sync()
	return m
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		if msg.Width > 20 {
			m.input.Width = msg.Width - 20
		}
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Focus):
			return m, m.toggleFocus()
		}
		if m.focus == focusInput {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Save):
		m.save()
		return m, nil
	case key.Matches(msg, m.keys.Leave):
		return m, m.toggleFocus()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.store.SetDraft(m.input.Value())
	return m, cmd
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.store.ListVisible()
	switch {
	case key.Matches(msg, m.keys.QuitList):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Filter):
		m.store.ToggleShowCompleted()
		m.cursor = 0
	case key.Matches(msg, m.keys.Add):
		return m, m.setFocus(focusInput)
	case len(visible) == 0:
		// The remaining keys act on the selected task.
	case key.Matches(msg, m.keys.Toggle):
		task, err := m.store.ToggleCompleted(visible[m.cursor].ID)
		m.report(err, "Marked %q %s", task.Text, completionWord(task.Completed))
	case key.Matches(msg, m.keys.Edit):
		if err := m.store.BeginEdit(visible[m.cursor].ID); err != nil {
			m.report(err, "")
			return m, nil
		}
		m.status = ""
		return m, m.setFocus(focusInput)
	case key.Matches(msg, m.keys.Remove):
		task := visible[m.cursor]
		if m.store.Remove(task.ID) {
			m.status = fmt.Sprintf("Deleted %q", task.Text)
		}
	}
	m.clampCursor()
	return m, nil
}

// save commits the draft, as the Save/Update button does. It does nothing
// on a blank draft.
func (m *Model) save() {
	if strings.TrimSpace(m.store.Draft()) == "" {
		return
	}
	_, editing := m.store.Editing()
	task, err := m.store.SaveEdit()
	if editing {
		m.report(err, "Updated %q", task.Text)
	} else {
		m.report(err, "Added %q", task.Text)
	}
}

func (m *Model) report(err error, format string, args ...any) {
	switch {
	case errors.Is(err, todo.ErrNotFound):
		m.status = "That task no longer exists"
	case err != nil:
		m.status = err.Error()
	default:
		m.status = fmt.Sprintf(format, args...)
	}
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == focusInput {
		return m.setFocus(focusList)
	}
	return m.setFocus(focusInput)
}

func (m *Model) setFocus(f focusArea) tea.Cmd {
	m.focus = f
	if f == focusInput {
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

// sync pulls the draft from the store into the input field. It runs on
// every store change.
func (m *Model) sync() {
	if draft := m.store.Draft(); m.input.Value() != draft {
		m.input.SetValue(draft)
		m.input.CursorEnd()
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.store.ListVisible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// SaveLabel is the text of the save action: "Update" while a task is
// being edited, "Save" otherwise.
func (m *Model) SaveLabel() string {
	if _, editing := m.store.Editing(); editing {
		return "Update"
	}
	return "Save"
}

func (m *Model) View() string {
	var b strings.Builder
	writeTitle(&b)
	m.writeInput(&b)
	m.writeFilter(&b)
	m.writeList(&b)
	m.writeSummary(&b)
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n\n")
	}
	b.WriteString(m.help.ShortHelpView(m.keys.forFocus(m.focus)))
	b.WriteString("\n")
	return b.String()
}

func writeTitle(b *strings.Builder) {
	b.WriteString(titleStyle.Render("Tasks") + "\n\n")
}

func (m *Model) writeInput(b *strings.Builder) {
	button := buttonStyle
	if strings.TrimSpace(m.store.Draft()) == "" {
		button = disabledButtonStyle
	}
	b.WriteString(m.input.View())
	b.WriteString("  ")
	b.WriteString(button.Render("[" + m.SaveLabel() + "]"))
	b.WriteString("\n\n")
}

func (m *Model) writeFilter(b *strings.Builder) {
	box := "[ ]"
	if m.store.ShowCompleted() {
		box = "[x]"
	}
	b.WriteString(faintStyle.Render(box+" Show completed") + "\n\n")
}

func (m *Model) writeList(b *strings.Builder) {
	visible := m.store.ListVisible()
	if len(visible) == 0 {
		if m.store.ShowCompleted() {
			b.WriteString(faintStyle.Render("  No completed tasks.") + "\n\n")
		} else {
			b.WriteString(faintStyle.Render("  Nothing to do.") + "\n\n")
		}
		return
	}

	editingID, editing := m.store.Editing()
	for i, task := range visible {
		b.WriteString(m.formatTask(i, task, editing && task.ID == editingID))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (m *Model) formatTask(i int, task todo.Task, beingEdited bool) string {
	pointer := "  "
	if i == m.cursor && m.focus == focusList {
		pointer = cursorStyle.Render("> ")
	}

	check := "( )"
	text := task.Text
	if task.Completed {
		check = "(x)"
		text = completedStyle.Render(text)
	}
	line := pointer + check + " " + text
	if beingEdited {
		line += " " + faintStyle.Render("(editing)")
	}
	return line
}

func (m *Model) writeSummary(b *strings.Builder) {
	pending, completed := m.store.Counts()
	b.WriteString(faintStyle.Render(fmt.Sprintf("%d pending, %d completed", pending, completed)))
	b.WriteString("\n\n")
}

func completionWord(completed bool) string {
	if completed {
		return "completed"
	}
	return "pending"
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
