package parser

import (
	"strings"

	"github.com/numerics88/inpdeck/internal/femodel"
)

// elementTypes maps Abaqus element type names onto model element types.
var elementTypes = map[string]femodel.ElementType{
	"C3D4":   femodel.ElementTet4,
	"T4":     femodel.ElementTet4,
	"C3D10":  femodel.ElementTet10,
	"T10":    femodel.ElementTet10,
	"C3D8":   femodel.ElementHex8,
	"C3D8R":  femodel.ElementHex8,
	"H8":     femodel.ElementHex8,
	"C3D20":  femodel.ElementHex20,
	"C3D20R": femodel.ElementHex20,
	"H20":    femodel.ElementHex20,
}

// abaqusElementNames is the name written for each element type.
var abaqusElementNames = map[femodel.ElementType]string{
	femodel.ElementTet4:  "C3D4",
	femodel.ElementTet10: "C3D10",
	femodel.ElementHex8:  "C3D8",
	femodel.ElementHex20: "C3D20",
}

func (r *Reader) readHeading() error {
	e := r.engine
	var lines []string
	for e.Next() {
		if e.IsCommand() {
			if err := e.Unread(); err != nil {
				return err
			}
			break
		}
		line := e.Line()
		if e.IsComment() {
			line = strings.TrimPrefix(line[2:], " ")
		}
		lines = append(lines, line)
	}
	if err := e.Err(); err != nil {
		return err
	}
	r.builder.SetDescription(strings.Join(lines, "\n"))
	return nil
}

func (r *Reader) readNode() error {
	e := r.engine
	nset, hasSet := e.Command().Params.Get("NSET")
	var ids []int
	for {
		ok, err := r.nextData()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		fields := splitRecord(e.Line())
		if len(fields) != 3 && len(fields) != 4 {
			return e.Errorf("NODE data needs 3 or 4 values, got %d", len(fields))
		}
		id, err := r.parseInt(fields[0], "node number")
		if err != nil {
			return err
		}
		xyz, err := r.parseFloats(fields[1:], "coordinate")
		if err != nil {
			return err
		}
		if len(xyz) == 2 {
			xyz = append(xyz, 0)
		}
		if err := r.builder.AddNode(id, xyz[0], xyz[1], xyz[2]); err != nil {
			return e.Wrap(err)
		}
		ids = append(ids, id)
	}
	e.Debugf("end of NODE at line %d, read %d nodes", e.LineCount(), len(ids))
	if hasSet && nset != "" {
		if err := r.builder.AddNodeSet(nset, ids); err != nil {
			return e.Wrap(err)
		}
	}
	return nil
}

func (r *Reader) readElement() error {
	e := r.engine
	params := e.Command().Params
	typeName, ok := params.Get("TYPE")
	if !ok {
		e.Warnf("unable to identify TYPE in ELEMENT command; ignoring section")
		return r.skipSection()
	}
	etype, ok := elementTypes[strings.ToUpper(typeName)]
	if !ok {
		e.Warnf("unable to handle ELEMENT TYPE %s; ignoring section", typeName)
		return r.skipSection()
	}
	elset := params.GetDefault("ELSET", "")
	if elset != "" {
		r.allElements = elset
		e.Debugf("identified ELSET in ELEMENT command as %s", elset)
	}

	var ids []int
	for {
		ok, err := r.nextData()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		fields, err := r.record()
		if err != nil {
			return err
		}
		values, err := r.parseInts(fields, "node number")
		if err != nil {
			return err
		}
		if got := len(values) - 1; got != etype.NodeCount() {
			return e.Errorf("element %s of type %s needs %d nodes, got %d",
				fields[0], typeName, etype.NodeCount(), got)
		}
		if err := r.builder.AddElement(values[0], etype, values[1:]); err != nil {
			return e.Wrap(err)
		}
		ids = append(ids, values[0])
	}
	e.Debugf("end of ELEMENT at line %d, read %d elements", e.LineCount(), len(ids))
	if elset != "" {
		if err := r.builder.AddElementSet(elset, ids); err != nil {
			return e.Wrap(err)
		}
	}
	return nil
}

func (r *Reader) readNset() error {
	return r.readSet("NSET", r.builder.AddNodeSet, r.builder.NodeCount)
}

func (r *Reader) readElset() error {
	return r.readSet("ELSET", r.builder.AddElementSet, r.builder.ElementCount)
}

// readSet reads an NSET or ELSET section: comma-separated id lists, or
// "start, stop[, step]" triples with GENERATE. The set is registered once the
// section ends. A GENERATE range yielding more ids than count reports cannot
// name only existing entities and is rejected before it is expanded.
func (r *Reader) readSet(keyword string, add func(string, []int) error, count func() int) error {
	e := r.engine
	params := e.Command().Params
	name := params.GetDefault(keyword, "")
	if name == "" {
		e.Warnf("unable to identify %s in %s command; ignoring section", keyword, keyword)
		return r.skipSection()
	}
	generate := params.Has("GENERATE")

	var ids []int
	for {
		ok, err := r.nextData()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		fields := splitList(e.Line())
		values, err := r.parseInts(fields, "id")
		if err != nil {
			return err
		}
		if !generate {
			ids = append(ids, values...)
			continue
		}

		if len(values) != 2 && len(values) != 3 {
			return e.Errorf("%s with GENERATE needs start, stop and optional step, got %d values", keyword, len(values))
		}
		start, stop, step := values[0], values[1], 1
		if len(values) == 3 {
			step = values[2]
		}
		if start <= 0 || step <= 0 || stop < start {
			return e.Errorf("invalid GENERATE range %d, %d, %d", start, stop, step)
		}
		n := (stop-start)/step + 1
		if n > count() {
			return e.Errorf("GENERATE range %d, %d, %d yields %d ids, more than the %d defined", start, stop, step, n, count())
		}
		for i, id := 0, start; i < n; i, id = i+1, id+step {
			ids = append(ids, id)
		}
	}
	e.Debugf("read %d ids for %s %s", len(ids), keyword, name)
	if err := add(name, ids); err != nil {
		return e.Wrap(err)
	}
	return nil
}
