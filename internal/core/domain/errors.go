package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every error returned by the core satisfies errors.Is against
// exactly one of these.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("access forbidden")
	ErrUnauthenticated = errors.New("authentication required")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation failed")
	ErrStore           = errors.New("store failure")
)

var (
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrBoardNotFound   = fmt.Errorf("board %w", ErrNotFound)
	ErrPinNotFound     = fmt.Errorf("pin %w", ErrNotFound)
	ErrCommentNotFound = fmt.Errorf("comment %w", ErrNotFound)
	ErrImageNotFound   = fmt.Errorf("image %w", ErrNotFound)

	ErrUserExists      = fmt.Errorf("%w: user already exists", ErrConflict)
	ErrBoardTitleTaken = fmt.Errorf("%w: a board with this title already exists", ErrConflict)
	ErrBusy            = fmt.Errorf("%w: resource is being modified, retry later", ErrConflict)

	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrValidation)
)

// ValidationError describes malformed input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid returns a ValidationError with a formatted message.
func Invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// StoreError wraps an underlying persistence failure. It is never retried by
// the core and is surfaced as-is.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return "store: " + e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStore }

// WrapStore returns nil when err is nil, err unchanged when it already belongs
// to the taxonomy, and a StoreError otherwise.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrNotFound, ErrForbidden, ErrUnauthenticated, ErrConflict, ErrValidation, ErrStore} {
		if errors.Is(err, known) {
			return err
		}
	}
	return &StoreError{Op: op, Err: err}
}
