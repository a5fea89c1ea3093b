package todo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/tasks-go/internal/kv"
	"github.com/nibzard/tasks-go/internal/logging"
	"github.com/nibzard/tasks-go/internal/statedir"
)

// Persister loads the task list at startup and saves it after mutations.
// Both operations are best effort: failures are handled inside the
// persister and never reach the Store.
type Persister interface {
	Load() Collection
	Save(tasks Collection)
}

// NopPersister keeps nothing.
type NopPersister struct{}

// Load returns an empty collection.
func (NopPersister) Load() Collection { return Collection{} }

// Save does nothing.
func (NopPersister) Save(Collection) {}

// PersisterOption configures a SlotPersister.
type PersisterOption func(*SlotPersister)

// WithSlotKey sets the key the list is stored under.
func WithSlotKey(key string) PersisterOption {
	return func(p *SlotPersister) {
		if key != "" {
			p.key = key
		}
	}
}

// WithPersistEmpty controls whether empty snapshots are written.
func WithPersistEmpty(enabled bool) PersisterOption {
	return func(p *SlotPersister) {
		p.persistEmpty = enabled
	}
}

// WithSchema validates loaded data against schema. A nil schema selects
// the minimal checks.
func WithSchema(schema *jsonschema.Schema) PersisterOption {
	return func(p *SlotPersister) {
		p.schema = schema
	}
}

// WithPersisterLogger sets the logger for load and save failures.
func WithPersisterLogger(logger *log.Logger) PersisterOption {
	return func(p *SlotPersister) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// SlotPersister stores the task list as a JSON array under one key of a
// kv.Store.
type SlotPersister struct {
	store        kv.Store
	key          string
	persistEmpty bool
	schema       *jsonschema.Schema
	logger       *log.Logger
}

// NewSlotPersister creates a persister over store.
func NewSlotPersister(store kv.Store, opts ...PersisterOption) *SlotPersister {
	p := &SlotPersister{
		store:  store,
		key:    statedir.DefaultSlotKey,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key returns the slot key.
func (p *SlotPersister) Key() string {
	return p.key
}

// Load returns the stored list, or an empty one when the slot is absent,
// unreadable, or holds invalid data.
func (p *SlotPersister) Load() Collection {
	raw, err := p.store.Get(p.key)
	if err != nil {
		if errors.Is(err, kv.ErrNotExist) {
			p.logger.Debug("no stored tasks", "key", p.key)
		} else {
			p.logger.Warn("cannot read stored tasks, starting empty", "key", p.key, "err", err)
		}
		return Collection{}
	}

	tasks, err := p.Decode(raw)
	if err != nil {
		p.logger.Warn("discarding malformed stored tasks", "key", p.key, "err", err)
		return Collection{}
	}
	p.logger.Debug("loaded tasks", "key", p.key, "count", len(tasks))
	return tasks
}

// Save writes tasks to the slot, replacing the previous value. Empty
// snapshots are skipped unless PersistEmpty is set.
func (p *SlotPersister) Save(tasks Collection) {
	if len(tasks) == 0 && !p.persistEmpty {
		p.logger.Debug("skipping empty snapshot", "key", p.key)
		return
	}

	data, err := Encode(tasks)
	if err != nil {
		p.logger.Warn("cannot encode tasks", "err", err)
		return
	}
	if err := p.store.Set(p.key, data); err != nil {
		p.logger.Warn("cannot save tasks", "key", p.key, "count", len(tasks), "err", err)
		return
	}
	p.logger.Debug("saved tasks", "key", p.key, "count", len(tasks))
}

// Encode serializes tasks in the slot format.
func Encode(tasks Collection) ([]byte, error) {
	if tasks == nil {
		tasks = Collection{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}
	return data, nil
}

// Decode parses and validates a stored list. It uses the persister's
// schema when set and the minimal checks otherwise.
func (p *SlotPersister) Decode(raw []byte) (Collection, error) {
	return decode(raw, p.schema)
}

func decode(raw []byte, schema *jsonschema.Schema) (Collection, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &ValidationError{Err: errors.New("empty document")}
	}

	if schema != nil {
		var doc interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse tasks: %w", err)
		}
		if err := schema.Validate(doc); err != nil {
			return nil, errors.Join(schemaErrors(err)...)
		}
	}

	var tasks Collection
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}
	if tasks == nil {
		return nil, &ValidationError{Err: errors.New("expected an array of tasks")}
	}

	seen := make(map[string]bool, len(tasks))
	for i := range tasks {
		path := fmt.Sprintf("[%d]", i)
		if tasks[i].IsZero() {
			return nil, &ValidationError{Path: path + ".id", Err: errors.New("missing required field")}
		}
		if seen[tasks[i].ID] {
			return nil, &ValidationError{Path: path + ".id", Err: fmt.Errorf("duplicate id %q", tasks[i].ID)}
		}
		seen[tasks[i].ID] = true

		text := strings.TrimSpace(tasks[i].Text)
		if text == "" {
			return nil, &ValidationError{Path: path + ".text", Err: ErrEmptyText}
		}
		tasks[i].Text = text
	}
	return tasks, nil
}
