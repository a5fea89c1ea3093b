package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasks configuration file
# Values can be overridden by TASKS_* environment variables or CLI flags

# Directory holding the task store (relative to the working directory,
# supports ~ expansion and %VAR% on Windows)
state_dir = ".tasks"

# Store key the task list is saved under
slot_key = "tasks"

# JSON schema for stored tasks (empty uses the built-in schema)
# schema_file = "tasks.schema.json"

# Save the list even when it becomes empty. When false, deleting the last
# task leaves the previous snapshot on disk.
persist_empty = false

# Store size quota in bytes (0 for unlimited)
max_store_bytes = 5242880

# How long to wait for another tasks process to release the store
lock_timeout = "2s"

# Start with completed tasks shown instead of pending ones
show_completed = false

# Logging
log_level = "info"      # debug, info, warn, error
log_format = "text"     # text, json, logfmt
log_timestamps = false
log_caller = false
# log_file = "~/.tasks/tasks.log"
`
}
