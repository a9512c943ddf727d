package netdiag

import (
	"errors"
	"fmt"
)

// Kind classifies a failed operation.
type Kind int

const (
	// KindFailed is any failure of an external collaborator not covered below.
	KindFailed Kind = iota
	// KindInvalidArgument is a caller contract violation. No external query
	// was made.
	KindInvalidArgument
	// KindNotFound means the query completed without a usable result.
	KindNotFound
	// KindTimedOut means a time-bounded operation did not complete in time.
	KindTimedOut
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindNotFound:
		return "not found"
	case KindTimedOut:
		return "timed out"
	default:
		return "failed"
	}
}

// Error is returned by every Client operation.
type Error struct {
	Op   Operation
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Op) + ": " + e.Kind.String()
	}
	return string(e.Op) + ": " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind carried by err. Errors that are not an *Error are
// reported as KindFailed.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindFailed
}

func newError(op Operation, kind Kind, err error) *Error {
	debugLog(op, "%s: %v", kind, err)
	return &Error{Op: op, Kind: kind, Err: err}
}

func invalidArgument(op Operation, format string, args ...interface{}) *Error {
	return newError(op, KindInvalidArgument, fmt.Errorf(format, args...))
}
