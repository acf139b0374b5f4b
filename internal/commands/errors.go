package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"todo/internal/backend/googletasks"
	"todo/internal/exitcode"
	"todo/internal/service"
)

// Fail prints err as "error: ..." and returns the exit code for its kind.
// Unrecognized errors are treated as backend failures.
func Fail(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)
	return ExitCode(err)
}

// ExitCode maps an error to an exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return exitcode.Success
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrDuplicateEmail),
		errors.Is(err, service.ErrNotFound),
		errors.Is(err, ErrTaskRefRequired),
		errors.Is(err, ErrTaskRefInvalid),
		errors.Is(err, ErrTaskOutOfRange):
		return exitcode.UserError
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrNoSession),
		errors.Is(err, googletasks.ErrNotLinked):
		return exitcode.AuthError
	case errors.Is(err, context.Canceled):
		return exitcode.UserError
	default:
		return exitcode.BackendError
	}
}
