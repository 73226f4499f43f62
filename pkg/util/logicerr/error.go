package logicerr

import (
	"errors"
)

// Error is wrapped to highlight the business logic errors.
var Error = errors.New("logical error")

// logical keeps the message of the cause and matches both the cause and
// Error.
type logical struct {
	error
}

func (e logical) Unwrap() []error {
	return []error{e.error, Error}
}

// New returns simple error with a provided error message.
func New(msg string) error {
	return Wrap(errors.New(msg))
}

// Wrap marks arbitrary error as a logical one. The message is left as is.
func Wrap(err error) error {
	return logical{err}
}

// Is reports whether err is a business logic error.
func Is(err error) bool {
	return errors.Is(err, Error)
}
