package femodel

import (
	"fmt"
	"math"
)

// ValidateNode checks that a node position is finite
func ValidateNode(n Node) error {
	for _, v := range n.Coords() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ErrInvalidCoordinate{Node: n.ID, X: n.X, Y: n.Y, Z: n.Z}
		}
	}
	return nil
}

// ValidateMaterial checks material constants against their physical range.
// Isotropic: E > 0 and -1 < nu < 0.5. Orthotropic: all moduli positive.
func ValidateMaterial(mat Material) error {
	switch mat.Kind {
	case Isotropic:
		if !(mat.YoungsModulus > 0) {
			return &ErrInvalidMaterial{Name: mat.Name,
				Reason: fmt.Sprintf("Young's modulus must be positive, got %g", mat.YoungsModulus)}
		}
		if !(mat.PoissonsRatio > -1 && mat.PoissonsRatio < 0.5) {
			return &ErrInvalidMaterial{Name: mat.Name,
				Reason: fmt.Sprintf("Poisson's ratio must be in (-1, 0.5), got %g", mat.PoissonsRatio)}
		}

	case Orthotropic:
		o := mat.Orthotropic
		moduli := []struct {
			name  string
			value float64
		}{
			{"EX", o.EX}, {"EY", o.EY}, {"EZ", o.EZ},
			{"GYZ", o.GYZ}, {"GZX", o.GZX}, {"GXY", o.GXY},
		}
		for _, mod := range moduli {
			if !(mod.value > 0) || math.IsInf(mod.value, 0) {
				return &ErrInvalidMaterial{Name: mat.Name,
					Reason: fmt.Sprintf("%s must be positive and finite, got %g", mod.name, mod.value)}
			}
		}

	default:
		return &ErrInvalidMaterial{Name: mat.Name, Reason: fmt.Sprintf("unsupported kind %v", mat.Kind)}
	}
	return nil
}

// Validate checks the whole model for consistency: finite coordinates,
// element connectivity, section references, material constants and
// constraint targets. It returns the first problem found.
func (m *Model) Validate() error {
	for _, id := range m.nodeOrder {
		if err := ValidateNode(m.nodes[id]); err != nil {
			return err
		}
	}

	if err := m.checkConnectivity(); err != nil {
		return err
	}

	for _, k := range m.materialOrder {
		if err := ValidateMaterial(m.materials[k]); err != nil {
			return err
		}
	}

	for _, sec := range m.sections {
		if _, ok := m.elementSets[key(sec.ElementSet)]; !ok {
			return fmt.Errorf("section: %w", &ErrUnknownSet{Kind: "element set", Name: sec.ElementSet})
		}
		if _, ok := m.materials[key(sec.Material)]; !ok {
			return fmt.Errorf("section: %w", &ErrUnknownMaterial{Name: sec.Material})
		}
	}

	for _, k := range m.constraintOrd {
		c := m.constraints[k]
		for _, entry := range c.Entries {
			if _, ok := m.nodes[entry.Node]; !ok {
				return fmt.Errorf("constraint %q: %w", c.Name, &ErrUnknownNode{ID: entry.Node})
			}
			if entry.DOF < 1 || entry.DOF > 3 {
				return fmt.Errorf("constraint %q: %w", c.Name, &ErrInvalidDOF{DOF: entry.DOF})
			}
		}
	}

	return nil
}

// checkConnectivity reports the first element whose node count does not match
// its type or that references a node which does not exist.
func (m *Model) checkConnectivity() error {
	for _, id := range m.elementOrder {
		e := m.elements[id]
		if len(e.Nodes) != e.Type.NodeCount() {
			return &ErrNodeCount{Element: e.ID, Type: e.Type, Got: len(e.Nodes)}
		}
		for _, n := range e.Nodes {
			if _, ok := m.nodes[n]; !ok {
				return &ErrUnknownNode{ID: n, Element: e.ID}
			}
		}
	}
	return nil
}
