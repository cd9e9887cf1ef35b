package parser

import (
	"strconv"
	"strings"

	"github.com/numerics88/inpdeck/internal/command"
	"github.com/numerics88/inpdeck/internal/femodel"
)

func (r *Reader) readStep() error {
	e := r.engine
	name := e.Command().Params.GetDefault("NAME", "")
	e.Debugf("reading STEP %s", name)
	if err := r.builder.BeginStep(name); err != nil {
		return e.Wrap(err)
	}
	return e.Enter("STEP", r.stepTable, command.UntilLeave)
}

func (r *Reader) readEndStep() error {
	e := r.engine
	e.Debugf("exiting STEP")
	e.Leave()
	if err := r.builder.EndStep(); err != nil {
		return e.Wrap(err)
	}
	return nil
}

// readStatic reads the optional increment line "initial, period, min, max".
// Missing or empty fields keep their defaults.
func (r *Reader) readStatic() error {
	e := r.engine
	proc := femodel.DefaultStaticProcedure()
	ok, err := r.nextData()
	if err != nil {
		return err
	}
	if ok {
		fields := splitRecord(e.Line())
		if len(fields) > 4 {
			return e.Errorf("STATIC data needs at most 4 values, got %d", len(fields))
		}
		targets := []*float64{&proc.InitialIncrement, &proc.Period, &proc.MinIncrement, &proc.MaxIncrement}
		for i, f := range fields {
			if f == "" {
				continue
			}
			v, err := r.parseFloat(f, "time increment")
			if err != nil {
				return err
			}
			*targets[i] = v
		}
	}
	if err := r.builder.SetStaticProcedure(proc); err != nil {
		return e.Wrap(err)
	}
	return nil
}

// target interprets the first field of a BOUNDARY or CLOAD line: a node
// number, or otherwise a node set name.
func target(field string) femodel.Target {
	if id, err := strconv.Atoi(field); err == nil {
		return femodel.NodeTarget(id)
	}
	return femodel.SetTarget(field)
}

func (r *Reader) readBoundary() error {
	e := r.engine
	params := e.Command().Params
	kind := strings.ToUpper(params.GetDefault("TYPE", "DISPLACEMENT"))
	if kind != "DISPLACEMENT" {
		e.Warnf("unhandled value for TYPE in BOUNDARY command: %s; ignoring section", kind)
		return r.skipSection()
	}
	name := params.GetDefault("NAME", "")
	if name == "" {
		name = r.nextName("boundary")
		e.Debugf("assigning name %s", name)
	}

	for {
		ok, err := r.nextData()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		fields := splitRecord(e.Line())
		if len(fields) < 2 || len(fields) > 4 {
			return e.Errorf("BOUNDARY data needs 2 to 4 values, got %d", len(fields))
		}

		var first, last int
		var value float64
		switch strings.ToUpper(fields[1]) {
		case "ENCASTRE", "PINNED":
			first, last = 1, 3
		default:
			if first, err = r.parseInt(fields[1], "degree of freedom"); err != nil {
				return err
			}
			last = first
			if len(fields) > 2 && fields[2] != "" {
				if last, err = r.parseInt(fields[2], "degree of freedom"); err != nil {
					return err
				}
			}
			if len(fields) > 3 && fields[3] != "" {
				if value, err = r.parseFloat(fields[3], "displacement"); err != nil {
					return err
				}
			}
		}
		if last < first {
			return e.Errorf("degree of freedom range %d..%d is reversed", first, last)
		}

		tgt := target(fields[0])
		for dof := first; dof <= last; dof++ {
			if err := r.builder.ApplyDisplacement(name, tgt, dof, value); err != nil {
				return e.Wrap(err)
			}
		}
	}
}

func (r *Reader) readCload() error {
	e := r.engine
	name := e.Command().Params.GetDefault("NAME", "")
	if name == "" {
		name = r.nextName("load")
		e.Debugf("assigning name %s", name)
	}

	for {
		ok, err := r.nextData()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		fields := splitRecord(e.Line())
		if len(fields) != 3 {
			return e.Errorf("CLOAD data needs 3 values, got %d", len(fields))
		}
		dof, err := r.parseInt(fields[1], "degree of freedom")
		if err != nil {
			return err
		}
		magnitude, err := r.parseFloat(fields[2], "load magnitude")
		if err != nil {
			return err
		}
		if err := r.builder.ApplyLoad(name, target(fields[0]), dof, magnitude); err != nil {
			return e.Wrap(err)
		}
	}
}
