package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/numerics88/inpdeck/internal/command"
	"github.com/numerics88/inpdeck/internal/femodel"
)

// Builder receives the model mutations produced while reading a deck.
// *femodel.Model implements it.
type Builder interface {
	AddNode(id int, x, y, z float64) error
	AddElement(id int, t femodel.ElementType, nodes []int) error
	AddNodeSet(name string, ids []int) error
	AddElementSet(name string, ids []int) error
	DefineMaterial(m femodel.Material) error
	AssignSection(elset, material string) error
	BeginStep(name string) error
	EndStep() error
	SetStaticProcedure(p femodel.StaticProcedure) error
	ApplyDisplacement(constraint string, target femodel.Target, dof int, value float64) error
	ApplyLoad(constraint string, target femodel.Target, dof int, magnitude float64) error
	HasConstraint(name string) bool
	SetDescription(text string)
	AppendHistory(text string)
	Finalize() error
	Unassigned() int
	NodeCount() int
	ElementCount() int
}

var _ Builder = (*femodel.Model)(nil)

// Reader reads one Abaqus input deck into a Builder.
type Reader struct {
	engine  *command.Reader
	builder Builder

	// section-local state
	material    string
	elastic     bool
	allElements string

	materialTable command.Table
	stepTable     command.Table
}

// NewReader prepares a reader over r that feeds b. All keyword handlers are
// registered here; a registration failure makes the reader unusable.
func NewReader(r io.Reader, b Builder, opts ParseOptions) (*Reader, error) {
	if b == nil {
		return nil, errors.New("parser: nil builder")
	}
	src := command.NewLineSource(r, opts.MaxLineLength)
	rd := &Reader{
		engine:  command.NewReader(src, Classifier{}),
		builder: b,
	}

	e := rd.engine
	e.SetDebug(opts.Debug)
	e.SetMessageSink(opts.Sink)
	e.SetProgressInterval(opts.ProgressInterval)
	if opts.Progress != nil {
		fn := opts.Progress
		e.SetProgress(opts.Size, func(offset, total int64) {
			if !fn(offset, total) {
				e.Abort()
			}
		})
	}
	e.SetFinish(rd.finish)

	rd.materialTable = command.Table{}
	rd.stepTable = command.Table{}
	for _, reg := range []struct {
		table command.Table
		name  string
		h     command.Handler
	}{
		{rd.materialTable, "ELASTIC", rd.readElastic},
		{rd.stepTable, "STATIC", rd.readStatic},
		{rd.stepTable, "BOUNDARY", rd.readBoundary},
		{rd.stepTable, "CLOAD", rd.readCload},
		{rd.stepTable, "END STEP", rd.readEndStep},
	} {
		if err := reg.table.Register(reg.name, reg.h); err != nil {
			return nil, err
		}
	}

	for _, reg := range []struct {
		name string
		h    command.Handler
	}{
		{"HEADING", rd.readHeading},
		{"NODE", rd.readNode},
		{"ELEMENT", rd.readElement},
		{"NSET", rd.readNset},
		{"ELSET", rd.readElset},
		{"MATERIAL", rd.readMaterial},
		{"SOLID SECTION", rd.readSolidSection},
		{"STEP", rd.readStep},
	} {
		if err := e.Register(reg.name, reg.h); err != nil {
			return nil, err
		}
	}
	return rd, nil
}

// Read consumes the whole deck. It returns nil on success, ErrAborted when
// stopped through Abort, the progress callback or ctx, and otherwise the
// first fatal error, which carries the offending line number.
func (r *Reader) Read(ctx context.Context) error {
	return r.engine.Read(ctx)
}

// Abort stops the read at the next progress poll. Safe for concurrent use.
func (r *Reader) Abort() { r.engine.Abort() }

// LineCount returns the number of physical lines consumed.
func (r *Reader) LineCount() int64 { return r.engine.LineCount() }

// Warnings returns the non-fatal problems found so far.
func (r *Reader) Warnings() []string { return r.engine.Warnings() }

// Status returns the latched error, or nil.
func (r *Reader) Status() error { return r.engine.Status() }

// ErrorMessage returns the text of the latched error, or "".
func (r *Reader) ErrorMessage() string { return r.engine.ErrorMessage() }

// nextData advances to the next data line of the current section, skipping
// blank and comment lines. At a keyword line it pushes the line back and
// returns false, as it does at the end of input. A read failure or abort is
// returned as the error.
func (r *Reader) nextData() (bool, error) {
	e := r.engine
	for e.Next() {
		if e.IsCommand() {
			return false, e.Unread()
		}
		if e.IsComment() || strings.TrimSpace(e.Line()) == "" {
			continue
		}
		return true, nil
	}
	return false, e.Err()
}

// skipSection discards the data lines of a section the reader ignores.
func (r *Reader) skipSection() error {
	for {
		ok, err := r.nextData()
		if err != nil || !ok {
			return err
		}
	}
}

// record returns the fields of the current data line, joining continuation
// lines that follow a trailing comma.
func (r *Reader) record() ([]string, error) {
	line := r.engine.Line()
	fields := splitRecord(line)
	for continues(line) {
		ok, err := r.nextData()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, r.engine.Errorf("record continues past the end of its section")
		}
		line = r.engine.Line()
		fields = append(fields, splitRecord(line)...)
	}
	return fields, nil
}

// nextName returns the first "<prefix>_<n>" not yet used as a constraint name.
func (r *Reader) nextName(prefix string) string {
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s_%d", prefix, i)
		if !r.builder.HasConstraint(name) {
			return name
		}
	}
}

func (r *Reader) finish() error {
	if err := r.builder.Finalize(); err != nil {
		return r.engine.Wrap(err)
	}
	if n := r.builder.Unassigned(); n > 0 {
		r.engine.Warnf("%d elements have no material assigned", n)
	}
	return nil
}
