// Package exitcode defines exit codes for the CLI.
package exitcode

import "errors"

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, blank text, unknown or
	// ambiguous task id).
	UserError = 1

	// StorageError indicates a config or storage error.
	StorageError = 2

	// Interrupted is returned when a signal cancels the command.
	Interrupted = 130
)

// Error attaches an exit code to an error.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns err carrying code. A nil err stays nil.
func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}

// Code returns the exit code for err. Errors without an attached code
// are user errors.
func Code(err error) int {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return UserError
}
