package command

import (
	"errors"
	"fmt"
	"log/slog"
)

// DefaultProgressInterval is the number of fresh lines between progress and
// abort polls.
const DefaultProgressInterval = 1000

// MessageSink receives debug and warning text from a Reader.
type MessageSink interface {
	Debug(msg string)
	Warning(msg string)
}

// ProgressFunc is called at each poll point with the byte offset reached and
// the total stream size. It may call Reader.Abort to stop the read.
type ProgressFunc func(offset, total int64)

type slogSink struct {
	logger *slog.Logger
}

// SlogSink returns a MessageSink writing to logger. A nil logger means
// slog.Default().
func SlogSink(logger *slog.Logger) MessageSink {
	if logger == nil {
		logger = slog.Default()
	}
	return slogSink{logger: logger}
}

func (s slogSink) Debug(msg string) {
	s.logger.Debug(msg)
}

func (s slogSink) Warning(msg string) {
	s.logger.Warn(msg)
}

// SetDebug turns debug messages on or off.
func (r *Reader) SetDebug(on bool) {
	r.debug = on
}

// Debug reports whether debug messages are enabled.
func (r *Reader) Debug() bool {
	return r.debug
}

// SetMessageSink routes debug and warning messages to sink. A nil sink
// restores the default slog sink.
func (r *Reader) SetMessageSink(sink MessageSink) {
	if sink == nil {
		sink = SlogSink(nil)
	}
	r.sink = sink
}

// SetProgress registers fn to be called every progress interval with the
// byte offset reached. Progress is suppressed when total is not positive.
func (r *Reader) SetProgress(total int64, fn ProgressFunc) {
	r.total = total
	r.progress = fn
}

// SetProgressInterval changes the number of fresh lines between polls.
func (r *Reader) SetProgressInterval(lines int) {
	if lines <= 0 {
		lines = DefaultProgressInterval
	}
	r.interval = int64(lines)
}

// Abort raises the abort flag. The read stops at the next poll point and
// Read returns ErrAborted. Safe to call from any goroutine.
func (r *Reader) Abort() {
	r.abort.Store(true)
}

// Aborted reports whether the abort flag has been raised.
func (r *Reader) Aborted() bool {
	return r.abort.Load()
}

// Status returns the latched error, or nil if no fatal error has occurred.
func (r *Reader) Status() error {
	return r.err
}

// ErrorMessage returns the text of the latched error, or "".
func (r *Reader) ErrorMessage() string {
	if r.err == nil {
		return ""
	}
	return r.err.Error()
}

// Warnings returns a copy of the warnings recorded so far.
func (r *Reader) Warnings() []string {
	out := make([]string, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// Errorf returns a format error located at the current line.
func (r *Reader) Errorf(format string, args ...any) error {
	return &Error{Kind: KindFormat, Line: r.LineCount(), Msg: fmt.Sprintf(format, args...)}
}

// Wrap converts err, typically a model rejection, into a format error located
// at the current line.
func (r *Reader) Wrap(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindFormat, Line: r.LineCount(), Err: err}
}

// Warnf records a non-fatal warning about the current line.
func (r *Reader) Warnf(format string, args ...any) {
	r.warn(fmt.Sprintf("line %d: %s", r.LineCount(), fmt.Sprintf(format, args...)))
}

// Debugf emits a debug message when debugging is on.
func (r *Reader) Debugf(format string, args ...any) {
	if !r.debug {
		return
	}
	r.sink.Debug(fmt.Sprintf(format, args...))
}

// warn is the only place warnings are added.
func (r *Reader) warn(msg string) {
	r.warnings = append(r.warnings, msg)
	r.sink.Warning(msg)
}

// setError is the only place the error latch is written. The first error
// wins; later errors are dropped. It returns the latched error.
func (r *Reader) setError(err error) error {
	if r.err != nil {
		return r.err
	}
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: KindFormat, Line: r.LineCount(), Err: err}
	}
	r.err = e
	return r.err
}

// poll runs the progress callback and reports whether the read must stop.
func (r *Reader) poll() bool {
	if r.progress != nil && r.total > 0 {
		r.progress(r.src.Offset(), r.total)
	}
	if r.ctx != nil && r.ctx.Err() != nil {
		r.abort.Store(true)
	}
	return r.abort.Load()
}
