package parser

import (
	"strings"

	"github.com/numerics88/inpdeck/internal/command"
	"github.com/numerics88/inpdeck/internal/femodel"
)

func (r *Reader) readMaterial() error {
	e := r.engine
	name := e.Command().Params.GetDefault("NAME", "")
	if name == "" {
		e.Warnf("unable to identify NAME in MATERIAL command; ignoring material")
		return nil
	}
	e.Debugf("identified NAME in MATERIAL command as %s", name)

	r.material, r.elastic = name, false
	defer func() { r.material = "" }()
	if err := e.Enter("MATERIAL", r.materialTable, command.UntilForeign); err != nil {
		return err
	}
	if !r.elastic {
		e.Warnf("MATERIAL %s has no ELASTIC definition", name)
	}
	return nil
}

func (r *Reader) readElastic() error {
	e := r.engine
	defer e.Leave()

	kind := strings.ToUpper(e.Command().Params.GetDefault("TYPE", "ISOTROPIC"))
	if kind != "ISOTROPIC" && kind != "ORTHOTROPIC" {
		e.Warnf("unable to handle ELASTIC TYPE %s; ignoring section", kind)
		return r.skipSection()
	}

	ok, err := r.nextData()
	if err != nil {
		return err
	}
	if !ok {
		e.Warnf("unable to identify values for ELASTIC")
		return nil
	}
	fields := splitRecord(e.Line())

	var mat femodel.Material
	switch kind {
	case "ISOTROPIC":
		if len(fields) != 2 {
			return e.Errorf("ISOTROPIC definition needs 2 values, got %d", len(fields))
		}
		v, err := r.parseFloats(fields, "elastic constant")
		if err != nil {
			return err
		}
		mat = femodel.NewIsotropic(r.material, v[0], v[1])

	case "ORTHOTROPIC":
		if len(fields) != 8 {
			return e.Errorf("ORTHOTROPIC definition needs 8 values on its first line, got %d", len(fields))
		}
		ok, err := r.nextData()
		if err != nil {
			return err
		}
		if !ok {
			return e.Errorf("ORTHOTROPIC definition is missing its second line")
		}
		second := splitRecord(e.Line())
		if len(second) != 1 {
			return e.Errorf("ORTHOTROPIC definition needs 1 value on its second line, got %d", len(second))
		}
		v, err := r.parseFloats(append(fields, second...), "compliance term")
		if err != nil {
			return err
		}
		var d [9]float64
		copy(d[:], v)
		mat = femodel.OrthotropicFromCompliance(r.material, d)
	}

	if err := r.builder.DefineMaterial(mat); err != nil {
		return e.Wrap(err)
	}
	r.elastic = true
	return nil
}

func (r *Reader) readSolidSection() error {
	e := r.engine
	params := e.Command().Params
	elset := params.GetDefault("ELSET", "")
	if elset == "" {
		e.Warnf("unable to identify ELSET in SOLID SECTION command")
		return nil
	}
	material := params.GetDefault("MATERIAL", "")
	if material == "" {
		e.Warnf("unable to identify MATERIAL in SOLID SECTION command")
		return nil
	}
	if strings.EqualFold(elset, r.allElements) {
		e.Debugf("binding material %s to all elements", material)
	} else {
		e.Debugf("binding material %s to element set %s", material, elset)
	}
	if err := r.builder.AssignSection(elset, material); err != nil {
		return e.Wrap(err)
	}
	return nil
}
