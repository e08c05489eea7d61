package internal

import (
	"errors"
	"fmt"
)

// Failures are scoped to the user action that triggered them; nothing
// here is fatal to the process.
var (
	ErrNotFound      = errors.New("not found")
	ErrEmptyList     = errors.New("selection list is empty")
	ErrMultiSupplier = errors.New("selection spans multiple suppliers")
	ErrAuth          = errors.New("authentication failed")
)

// UserInputError marks an invalid or missing field on a request. The
// operation is aborted with no state change.
type UserInputError struct {
	Field  string
	Reason string
}

func (e *UserInputError) Error() string {
	return fmt.Sprintf("invalid input %q: %s", e.Field, e.Reason)
}

func NewUserInputError(field, reason string) error {
	return &UserInputError{Field: field, Reason: reason}
}

func IsUserInput(err error) bool {
	var uie *UserInputError
	return errors.As(err, &uie)
}

// RemoteError carries a failed call to the catalog source or the
// vendor API verbatim; there is no retry and nothing to roll back.
type RemoteError struct {
	Op     string
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status=%d body=%s", e.Op, e.Status, e.Body)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Body)
}

func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
