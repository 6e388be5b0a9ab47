package workspace

import (
	"context"
	"errors"

	"coderbridge/internal/problem"
)

// Manager creates problem workspaces and serves solution sources.
type Manager interface {
	CreateProblemWorkspace(ctx context.Context, p problem.Problem) error
	GetSolutionSource(ctx context.Context, className string) (string, error)
}

// Error is the domain failure class of the workspace manager. Errors that
// cross the bridge arrive as *Error carrying only the remote message.
type Error struct {
	Message string
	Cause   error
}

// NewError builds a workspace error with an optional cause.
func NewError(message string, cause error) *Error {
	return &Error{Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil && e.Message == "" {
		return e.Cause.Error()
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// IsError reports whether err is, or wraps, a workspace error.
func IsError(err error) bool {
	var target *Error
	return errors.As(err, &target)
}

// AsError returns the workspace error wrapped by err.
func AsError(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
