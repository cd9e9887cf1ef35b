package command

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal reader error.
type Kind int

const (
	// KindIO indicates the underlying stream failed mid-read.
	KindIO Kind = iota + 1

	// KindFormat indicates malformed input: an oversized line, a bad numeric
	// field, a wrong field count, or a mutation the model refused.
	KindFormat

	// KindDuplicateHandler indicates a handler was registered twice under the
	// same name in the same context.
	KindDuplicateHandler

	// KindInternal indicates a handler broke the context stack discipline.
	KindInternal
)

// String returns the name of the error kind.
func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io error"
	case KindFormat:
		return "format error"
	case KindDuplicateHandler:
		return "duplicate handler"
	case KindInternal:
		return "internal error"
	default:
		return "unknown error"
	}
}

// Sentinels for use with errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrIO               = errors.New("io error")
	ErrFormat           = errors.New("format error")
	ErrDuplicateHandler = errors.New("duplicate handler")
	ErrInternal         = errors.New("internal error")
)

// ErrAborted is returned by Read when the host raised the abort flag or the
// context was cancelled. It is never stored as the reader's error status.
var ErrAborted = errors.New("read aborted")

// ErrInvalidUnread is returned by Unread when there is no line to push back,
// or the current line has already been pushed back.
var ErrInvalidUnread = errors.New("command: invalid use of Unread")

// Error is a fatal reader error. Line is the 1-based line number the error
// refers to, or 0 when no line applies (registration errors).
type Error struct {
	Kind Kind
	Line int64
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.Kind, e.Line, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrIO:
		return e.Kind == KindIO
	case ErrFormat:
		return e.Kind == KindFormat
	case ErrDuplicateHandler:
		return e.Kind == KindDuplicateHandler
	case ErrInternal:
		return e.Kind == KindInternal
	}
	return false
}
