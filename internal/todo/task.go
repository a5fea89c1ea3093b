package todo

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when an operation references an unknown task id.
	ErrNotFound = errors.New("task not found")
	// ErrAmbiguousID is returned when an id prefix matches more than one task.
	ErrAmbiguousID = errors.New("ambiguous task id")
	// ErrEmptyText is wrapped by ValidationError for blank task text.
	ErrEmptyText = errors.New("text must not be empty")
)

// Task is a single to-do item.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// IsZero returns true if the task is empty (has no ID).
func (t *Task) IsZero() bool {
	return t.ID == ""
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path or field name of the offending value
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Collection is an insertion-ordered list of tasks, unique by ID.
type Collection []Task

// Index returns the position of the task with id, or -1.
func (c Collection) Index(id string) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

// Filter returns, in order, the tasks whose Completed flag equals completed.
func (c Collection) Filter(completed bool) Collection {
	out := make(Collection, 0, len(c))
	for _, t := range c {
		if t.Completed == completed {
			out = append(out, t)
		}
	}
	return out
}

// Clone returns a copy that shares no backing array with c.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// Equal reports whether both collections hold the same tasks in the same order.
func (c Collection) Equal(other Collection) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

func normalizeText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", &ValidationError{Path: "text", Err: ErrEmptyText}
	}
	return trimmed, nil
}

func notFound(id string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, id)
}
