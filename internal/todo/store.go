package todo

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nibzard/tasks-go/internal/logging"
)

// maxIDAttempts bounds regeneration when an IDFunc returns a taken id.
const maxIDAttempts = 8

// IDFunc generates task ids.
type IDFunc func() string

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithIDFunc overrides the id generator. The default is a random UUID.
func WithIDFunc(fn IDFunc) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithChangeListener registers fn to be called after every state change.
// The presentation layer uses it to redraw.
func WithChangeListener(fn func()) StoreOption {
	return func(s *Store) {
		s.onChange = fn
	}
}

// WithLogger sets the logger used for debug traces.
func WithLogger(logger *log.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithShowCompleted sets the initial filter mode.
func WithShowCompleted(show bool) StoreOption {
	return func(s *Store) {
		s.showCompleted = show
	}
}

// Store owns the task list, the filter mode, and the edit session.
// It is not safe for concurrent use; callers serialize access the way a
// UI event loop does.
type Store struct {
	tasks         Collection
	showCompleted bool

	editing   bool
	editingID string
	draft     string

	persister Persister
	newID     IDFunc
	onChange  func()
	logger    *log.Logger
}

// NewStore creates a store restored from p. A nil persister keeps the
// list in memory only.
func NewStore(p Persister, opts ...StoreOption) *Store {
	if p == nil {
		p = NopPersister{}
	}
	s := &Store{
		persister: p,
		newID:     uuid.NewString,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.tasks = p.Load().Clone()
	s.logger.Debug("restored tasks", "count", len(s.tasks))
	return s
}

// Add appends a new pending task. Blank text is rejected with a
// *ValidationError and leaves the store untouched. On success any edit
// session and the draft are cleared.
func (s *Store) Add(text string) (Task, error) {
	trimmed, err := normalizeText(text)
	if err != nil {
		return Task{}, err
	}

	id, err := s.freshID()
	if err != nil {
		return Task{}, err
	}
	task := Task{ID: id, Text: trimmed}
	s.tasks = append(s.tasks, task)
	s.clearSession()
	s.logger.Debug("task added", "id", id)

	s.persist()
	s.changed()
	return task, nil
}

// BeginEdit starts editing the task with id and loads its text into the
// draft. Beginning a new edit while editing switches to the new task.
func (s *Store) BeginEdit(id string) error {
	i := s.tasks.Index(id)
	if i < 0 {
		return notFound(id)
	}
	s.editing = true
	s.editingID = id
	s.draft = s.tasks[i].Text
	s.changed()
	return nil
}

// SaveEdit writes the draft back to the task being edited, keeping its id
// and completion state. When no edit is active it adds the draft as a new
// task instead.
func (s *Store) SaveEdit() (Task, error) {
	if !s.editing {
		return s.Add(s.draft)
	}

	trimmed, err := normalizeText(s.draft)
	if err != nil {
		return Task{}, err
	}

	id := s.editingID
	i := s.tasks.Index(id)
	if i < 0 {
		// The task was removed mid-edit; the session cannot complete.
		s.clearSession()
		s.changed()
		return Task{}, notFound(id)
	}

	s.tasks[i].Text = trimmed
	task := s.tasks[i]
	s.clearSession()
	s.logger.Debug("task updated", "id", id)

	s.persist()
	s.changed()
	return task, nil
}

// ToggleCompleted flips the completion flag of the task with id.
func (s *Store) ToggleCompleted(id string) (Task, error) {
	i := s.tasks.Index(id)
	if i < 0 {
		return Task{}, notFound(id)
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	task := s.tasks[i]
	s.logger.Debug("task toggled", "id", id, "completed", task.Completed)

	s.persist()
	s.changed()
	return task, nil
}

// Remove deletes the task with id. Removing an unknown id does nothing.
// It reports whether a task was removed.
func (s *Store) Remove(id string) bool {
	i := s.tasks.Index(id)
	if i < 0 {
		return false
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.logger.Debug("task removed", "id", id)

	s.persist()
	s.changed()
	return true
}

// OnChange replaces the change listener. A nil fn removes it.
func (s *Store) OnChange(fn func()) {
	s.onChange = fn
}

// SetDraft replaces the draft text, as typing into the input field does.
func (s *Store) SetDraft(text string) {
	if s.draft == text {
		return
	}
	s.draft = text
	s.changed()
}

// Draft returns the current draft text.
func (s *Store) Draft() string {
	return s.draft
}

// Editing returns the id of the task being edited, if any.
func (s *Store) Editing() (string, bool) {
	return s.editingID, s.editing
}

// SetShowCompleted sets the filter: true lists completed tasks only,
// false lists pending tasks only.
func (s *Store) SetShowCompleted(show bool) {
	if s.showCompleted == show {
		return
	}
	s.showCompleted = show
	s.changed()
}

// ToggleShowCompleted flips the filter mode.
func (s *Store) ToggleShowCompleted() {
	s.SetShowCompleted(!s.showCompleted)
}

// ShowCompleted returns the filter mode.
func (s *Store) ShowCompleted() bool {
	return s.showCompleted
}

// ListVisible returns the tasks matching the filter, in insertion order.
func (s *Store) ListVisible() Collection {
	return s.tasks.Filter(s.showCompleted)
}

// All returns a copy of every task in insertion order.
func (s *Store) All() Collection {
	return s.tasks.Clone()
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Counts returns the number of pending and completed tasks.
func (s *Store) Counts() (pending, completed int) {
	for _, t := range s.tasks {
		if t.Completed {
			completed++
		} else {
			pending++
		}
	}
	return pending, completed
}

// Get returns the task with id.
func (s *Store) Get(id string) (Task, error) {
	i := s.tasks.Index(id)
	if i < 0 {
		return Task{}, notFound(id)
	}
	return s.tasks[i], nil
}

// Lookup resolves ref as an exact id or, failing that, a unique id prefix.
func (s *Store) Lookup(ref string) (Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Task{}, notFound(ref)
	}
	if t, err := s.Get(ref); err == nil {
		return t, nil
	}

	var match *Task
	for i := range s.tasks {
		if !strings.HasPrefix(s.tasks[i].ID, ref) {
			continue
		}
		if match != nil {
			return Task{}, fmt.Errorf("%w: %q", ErrAmbiguousID, ref)
		}
		match = &s.tasks[i]
	}
	if match == nil {
		return Task{}, notFound(ref)
	}
	return *match, nil
}

func (s *Store) freshID() (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := s.newID()
		if id != "" && s.tasks.Index(id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("generate task id: no unique id after %d attempts", maxIDAttempts)
}

func (s *Store) clearSession() {
	s.editing = false
	s.editingID = ""
	s.draft = ""
}

func (s *Store) persist() {
	s.persister.Save(s.tasks.Clone())
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
