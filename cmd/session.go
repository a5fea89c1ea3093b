package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasks-go/internal/config"
	"github.com/nibzard/tasks-go/internal/exitcode"
	"github.com/nibzard/tasks-go/internal/kv"
	"github.com/nibzard/tasks-go/internal/logging"
	"github.com/nibzard/tasks-go/internal/todo"
)

// session wires a task store to the configured storage.
type session struct {
	logger    *log.Logger
	kv        kv.Store
	persister *todo.SlotPersister
	store     *todo.Store
	closers   []io.Closer
}

type sessionOptions struct {
	// quiet drops log output below error unless a log file is configured.
	quiet bool
}

// openSession builds the logger, key-value store, persister, and task
// store described by cfg. Failures are storage errors.
func openSession(cfg *config.Config, opts sessionOptions) (*session, error) {
	s := &session{}

	logger, err := s.openLogger(cfg, opts)
	if err != nil {
		return nil, exitcode.Wrap(exitcode.StorageError, err)
	}
	s.logger = logger

	s.kv, err = openKV(cfg)
	if err != nil {
		s.Close()
		return nil, exitcode.Wrap(exitcode.StorageError, err)
	}
	logger.Debug("opened store", "ephemeral", cfg.Ephemeral, "path", cfg.StorePath())

	schema, err := todo.CompileSchema(cfg.SchemaFile)
	if err != nil {
		s.Close()
		return nil, exitcode.Wrap(exitcode.StorageError, err)
	}

	s.persister = todo.NewSlotPersister(s.kv,
		todo.WithSlotKey(cfg.SlotKey),
		todo.WithPersistEmpty(cfg.PersistEmpty),
		todo.WithSchema(schema),
		todo.WithPersisterLogger(logger),
	)
	s.store = todo.NewStore(s.persister,
		todo.WithLogger(logger),
		todo.WithShowCompleted(cfg.ShowCompleted),
	)
	return s, nil
}

// openKV opens the configured key-value store.
func openKV(cfg *config.Config) (kv.Store, error) {
	if cfg.Ephemeral {
		return kv.NewMemoryStore(cfg.MaxStoreBytes), nil
	}
	fileStore, err := kv.NewFileStore(cfg.StorePath(), cfg.LockPath(),
		kv.WithMaxBytes(cfg.MaxStoreBytes),
		kv.WithLockTimeout(cfg.LockTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return fileStore, nil
}

func (s *session) openLogger(cfg *config.Config, opts sessionOptions) (*log.Logger, error) {
	level := cfg.LogLevel
	var w io.Writer = stderr
	if cfg.LogFile != "" {
		f, err := logging.OpenFile(cfg.LogFile)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, f)
		w = f
	} else if opts.quiet && logging.ParseLevel(level) < log.ErrorLevel {
		level = "error"
	}
	return logging.FromConfig(w, level, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller), nil
}

// Close releases the log file, if any.
func (s *session) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}
