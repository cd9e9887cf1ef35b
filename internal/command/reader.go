package command

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// Handler processes one command. It runs with the command line current and
// reads its own data lines through the Reader. When it meets a line that is
// not its own, it pushes the line back with Unread and returns.
type Handler func() error

// Table maps command names to handlers.
type Table map[string]Handler

// Register adds h under name. Registering a name twice fails and keeps the
// first handler.
func (t Table) Register(name string, h Handler) error {
	if _, dup := t[name]; dup {
		return &Error{Kind: KindDuplicateHandler, Msg: fmt.Sprintf("attempt to register duplicate command handler: %s", name)}
	}
	t[name] = h
	return nil
}

// ScopeMode decides how a nested scope ends.
type ScopeMode int

const (
	// UntilForeign ends the scope at the first command its table does not
	// know but an enclosing table does. That command line is pushed back for
	// the enclosing scope. Commands no table knows produce warnings and the
	// scope continues.
	UntilForeign ScopeMode = iota

	// UntilLeave ends the scope only when a handler calls Leave. Unknown
	// commands produce warnings.
	UntilLeave
)

type scope struct {
	name  string
	mode  ScopeMode
	leave bool
}

// Reader drives a LineSource, classifies lines, and dispatches commands to
// handlers registered in a stack of tables. The bottom table is created by
// NewReader and is never removed.
type Reader struct {
	src        *LineSource
	classifier Classifier
	stack      []Table
	scopes     []*scope
	cmd        Command
	finish     func() error
	ctx        context.Context
	used       bool
	stop       error

	err      error
	warnings []string
	debug    bool
	sink     MessageSink

	total    int64
	progress ProgressFunc
	interval int64
	abort    atomic.Bool
}

// NewReader returns a Reader over src using c to recognize commands.
func NewReader(src *LineSource, c Classifier) *Reader {
	return &Reader{
		src:        src,
		classifier: c,
		stack:      []Table{{}},
		sink:       SlogSink(nil),
		interval:   DefaultProgressInterval,
	}
}

// Register adds a handler to the current top table. A duplicate name fails,
// keeps the earlier handler, and latches the error so Read refuses to run.
func (r *Reader) Register(name string, h Handler) error {
	if err := r.stack[len(r.stack)-1].Register(name, h); err != nil {
		return r.setError(err)
	}
	r.Debugf("registered command handler for %s", name)
	return nil
}

// SetFinish installs a hook run after the whole stream has been consumed.
func (r *Reader) SetFinish(fn func() error) {
	r.finish = fn
}

// Depth returns the number of tables on the context stack.
func (r *Reader) Depth() int {
	return len(r.stack)
}

// Read consumes the stream, dispatching every recognized command. It returns
// nil on success, ErrAborted when stopped by Abort or ctx, and otherwise the
// first fatal error encountered.
func (r *Reader) Read(ctx context.Context) error {
	if r.err != nil {
		return r.err
	}
	if r.used {
		return r.setError(&Error{Kind: KindInternal, Msg: "reader already used"})
	}
	r.used = true
	r.ctx = ctx

	if err := r.loop(nil); err != nil {
		return r.fail(err)
	}
	if r.finish != nil {
		if err := r.finish(); err != nil {
			return r.fail(err)
		}
	}
	return nil
}

func (r *Reader) fail(err error) error {
	if errors.Is(err, ErrAborted) {
		r.Debugf("read aborted after line %d", r.LineCount())
		return ErrAborted
	}
	return r.setError(err)
}

// Enter pushes t and dispatches commands against it until the scope ends as
// mode dictates. The table is popped before Enter returns, on every path.
func (r *Reader) Enter(name string, t Table, mode ScopeMode) error {
	sc := &scope{name: name, mode: mode}
	r.stack = append(r.stack, t)
	r.scopes = append(r.scopes, sc)
	defer func() {
		r.stack = r.stack[:len(r.stack)-1]
		r.scopes = r.scopes[:len(r.scopes)-1]
	}()
	r.Debugf("entering %s at line %d", name, r.LineCount())
	err := r.loop(sc)
	r.Debugf("leaving %s at line %d", name, r.LineCount())
	return err
}

// Leave ends the innermost running scope once the current handler returns.
func (r *Reader) Leave() {
	if len(r.scopes) == 0 {
		r.Warnf("%s outside of any nested context", r.cmd.Name)
		return
	}
	r.scopes[len(r.scopes)-1].leave = true
}

func (r *Reader) loop(sc *scope) error {
	for r.Next() {
		cmd, ok := r.classifier.Classify(r.src.Line())
		if !ok {
			continue
		}
		h, found := r.stack[len(r.stack)-1][cmd.Name]
		if !found {
			if sc != nil && sc.mode == UntilForeign && r.enclosingHandles(cmd.Name) {
				return r.Unread()
			}
			r.Warnf("unhandled command in current context: %s", cmd.Name)
			continue
		}

		r.cmd = cmd
		r.Debugf("found command %s at line %d", cmd.Name, r.LineCount())
		depth := len(r.stack)
		if err := h(); err != nil {
			return err
		}
		if len(r.stack) != depth {
			return &Error{Kind: KindInternal, Line: r.LineCount(),
				Msg: fmt.Sprintf("handler for %s changed context depth from %d to %d", cmd.Name, depth, len(r.stack))}
		}
		if sc != nil && sc.leave {
			return nil
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	if sc != nil && sc.mode == UntilLeave {
		r.Warnf("end of input inside %s", sc.name)
	}
	return nil
}

// enclosingHandles reports whether any table below the top of the stack has
// a handler for name.
func (r *Reader) enclosingHandles(name string) bool {
	for i := len(r.stack) - 2; i >= 0; i-- {
		if _, ok := r.stack[i][name]; ok {
			return true
		}
	}
	return false
}

// Next advances to the next line. It returns false at end of input, on a
// read error, or when an abort was requested; Err tells them apart.
func (r *Reader) Next() bool {
	if r.stop != nil {
		return false
	}
	before := r.src.Count()
	if !r.src.Next() {
		return false
	}
	if n := r.src.Count(); n != before && n%r.interval == 0 && r.poll() {
		r.stop = ErrAborted
		return false
	}
	return true
}

// Err returns ErrAborted after an abort, the source error after a failed
// read, and nil after a clean end of input.
func (r *Reader) Err() error {
	if r.stop != nil {
		return r.stop
	}
	return r.src.Err()
}

// Line returns the current line.
func (r *Reader) Line() string {
	return r.src.Line()
}

// Unread pushes the current line back so the next call to Next returns it.
func (r *Reader) Unread() error {
	if err := r.src.Unread(); err != nil {
		return &Error{Kind: KindInternal, Line: r.LineCount(), Err: err}
	}
	return nil
}

// LineCount returns the number of physical lines consumed.
func (r *Reader) LineCount() int64 {
	return r.src.Count()
}

// Command returns the command being handled.
func (r *Reader) Command() Command {
	return r.cmd
}

// IsCommand reports whether the current line is a command line.
func (r *Reader) IsCommand() bool {
	_, ok := r.classifier.Classify(r.src.Line())
	return ok
}

// IsComment reports whether the current line is a comment line.
func (r *Reader) IsComment() bool {
	return r.classifier.IsComment(r.src.Line())
}
