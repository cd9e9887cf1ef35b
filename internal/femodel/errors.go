package femodel

import (
	"errors"
	"fmt"
)

// ErrNoStep indicates a step-scoped mutation with no step open
var ErrNoStep = errors.New("no step is open")

// ErrInvalidID indicates a node or element id that is not positive
type ErrInvalidID struct {
	Kind string
	ID   int
}

func (e *ErrInvalidID) Error() string {
	return fmt.Sprintf("invalid %s id %d: ids must be positive", e.Kind, e.ID)
}

// ErrDuplicateID indicates a node or element id that already exists
type ErrDuplicateID struct {
	Kind string
	ID   int
}

func (e *ErrDuplicateID) Error() string {
	return fmt.Sprintf("duplicate %s id %d", e.Kind, e.ID)
}

// ErrUnknownNode indicates a reference to a node that does not exist
type ErrUnknownNode struct {
	ID      int
	Element int // referencing element, 0 when not referenced by an element
}

func (e *ErrUnknownNode) Error() string {
	if e.Element != 0 {
		return fmt.Sprintf("element %d references unknown node %d", e.Element, e.ID)
	}
	return fmt.Sprintf("unknown node %d", e.ID)
}

// ErrUnknownElement indicates a reference to an element that does not exist
type ErrUnknownElement struct {
	ID int
}

func (e *ErrUnknownElement) Error() string {
	return fmt.Sprintf("unknown element %d", e.ID)
}

// ErrUnknownSet indicates a reference to a node set or element set that does not exist
type ErrUnknownSet struct {
	Kind string
	Name string
}

func (e *ErrUnknownSet) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
}

// ErrUnknownMaterial indicates a reference to an undefined material
type ErrUnknownMaterial struct {
	Name string
}

func (e *ErrUnknownMaterial) Error() string {
	return fmt.Sprintf("unknown material %q", e.Name)
}

// ErrNodeCount indicates an element whose connectivity does not match its type
type ErrNodeCount struct {
	Element int
	Type    ElementType
	Got     int
}

func (e *ErrNodeCount) Error() string {
	return fmt.Sprintf("element %d of type %s needs %d nodes, got %d",
		e.Element, e.Type, e.Type.NodeCount(), e.Got)
}

// ErrInvalidDOF indicates a degree of freedom outside 1..3
type ErrInvalidDOF struct {
	DOF int
}

func (e *ErrInvalidDOF) Error() string {
	return fmt.Sprintf("degree of freedom %d out of range 1..3", e.DOF)
}

// ErrConstraintKind indicates an attempt to mix displacements and loads in one named constraint
type ErrConstraintKind struct {
	Name     string
	Existing ConstraintKind
}

func (e *ErrConstraintKind) Error() string {
	return fmt.Sprintf("constraint %q already holds %s entries", e.Name, e.Existing)
}

// ErrInvalidCoordinate indicates a node coordinate that is not finite
type ErrInvalidCoordinate struct {
	Node    int
	X, Y, Z float64
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("node %d has non-finite coordinate (%g, %g, %g)", e.Node, e.X, e.Y, e.Z)
}

// ErrInvalidMaterial indicates material constants outside their physical range
type ErrInvalidMaterial struct {
	Name   string
	Reason string
}

func (e *ErrInvalidMaterial) Error() string {
	return fmt.Sprintf("invalid material %q: %s", e.Name, e.Reason)
}
