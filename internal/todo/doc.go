// Package todo holds the task list, its editing session, and its persistence.
//
// A Store owns the insertion-ordered task list, the pending/completed
// filter, and the draft text of the input field. Every mutation hands a
// snapshot of the list to a Persister, which writes it to a durable
// key-value slot:
//
//	[
//	  {"id": "3f2a9c1e-7b44-4c1a-9d7e-1234567890ab", "text": "Buy milk", "completed": false}
//	]
//
// # Edit session
//
// The store is either idle or editing one task. BeginEdit loads the task
// text into the draft; SaveEdit writes the draft back to that task. When
// idle, SaveEdit adds the draft as a new task, so a single "save" action
// serves both purposes.
//
// # Validation
//
// Stored data is checked in one of two modes:
//
// 1. JSON Schema validation (draft 2020-12), using the embedded
// slot.schema.json or a schema file supplied by configuration.
//
// 2. Minimal fallback validation when no schema is available: non-empty
// ids, non-blank text.
//
// Duplicate ids are rejected in both modes. Data that fails validation is
// logged and discarded; loading never fails.
//
// # Empty snapshots
//
// By default an empty list is never written, so deleting the last task
// leaves the previous snapshot in the slot. SlotPersister's PersistEmpty
// option writes every snapshot instead.
package todo
