// Package statedir provides constants and utilities for the .tasks directory structure.
package statedir

import "path/filepath"

const (
	// Dir is the name of the tasks state directory.
	Dir = ".tasks"

	// DefaultStoreFile is the key-value store file name (inside .tasks).
	DefaultStoreFile = "store.json"

	// DefaultLockFile guards the store file against concurrent writers.
	DefaultLockFile = "store.lock"

	// DefaultConfigFile is the project config file name (inside .tasks).
	DefaultConfigFile = "tasks.toml"

	// DefaultSlotKey is the key under which the task list is stored.
	DefaultSlotKey = "tasks"
)

// StorePath returns the full path to the store file within a state directory.
func StorePath(stateDir string) string {
	return filepath.Join(resolve(stateDir), DefaultStoreFile)
}

// LockPath returns the full path to the lock file within a state directory.
func LockPath(stateDir string) string {
	return filepath.Join(resolve(stateDir), DefaultLockFile)
}

// ConfigPath returns the project config path inside a work directory.
func ConfigPath(workDir string) string {
	return filepath.Join(DirPath(workDir), DefaultConfigFile)
}

// DirPath returns the full path to the .tasks directory within a work directory.
func DirPath(workDir string) string {
	if workDir == "." || workDir == "" {
		return Dir
	}
	return filepath.Join(workDir, Dir)
}

func resolve(stateDir string) string {
	if stateDir == "" {
		return Dir
	}
	return stateDir
}
