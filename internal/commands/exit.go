package commands

import "errors"

// Process exit codes.
const (
	ExitUsage     = 1
	ExitStatement = 2
	ExitLedger    = 3
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps a command error to a process exit code. Errors without an
// ExitError in their chain, such as argument errors, exit with ExitUsage.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitUsage
}

func exitErr(code int, err error) error {
	return &ExitError{Code: code, Err: err}
}
