package entity

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain failure unwraps to exactly one of them.
var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidSlot          = errors.New("invalid slot")
	ErrInvalidInput         = errors.New("invalid input")
	ErrConflict             = errors.New("conflict")
	ErrForbidden            = errors.New("forbidden operation")
	ErrMissingArgument      = errors.New("missing argument")
	ErrAlreadyCancelled     = errors.New("already cancelled")
	ErrUpstreamFailure      = errors.New("upstream failure")
	ErrConfigurationMissing = errors.New("configuration missing")
)

// Error is a domain failure with a message that can be shown to operators and end users.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func NewError(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// MessageOf returns the presentable message of a domain error and false for
// anything else.
func MessageOf(err error) (string, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Message, true
	}
	return "", false
}

// KindOf returns the kind sentinel of err, or nil when err is not a domain error.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrNotFound, ErrInvalidSlot, ErrInvalidInput, ErrConflict, ErrForbidden,
		ErrMissingArgument, ErrAlreadyCancelled, ErrUpstreamFailure, ErrConfigurationMissing,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
