package femodel

import (
	"fmt"
	"strconv"
	"strings"
)

// ConstraintKind distinguishes prescribed displacements from point loads.
type ConstraintKind int

const (
	Displacement ConstraintKind = iota
	Force
)

func (k ConstraintKind) String() string {
	switch k {
	case Displacement:
		return "displacement"
	case Force:
		return "force"
	}
	return fmt.Sprintf("ConstraintKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler
func (k ConstraintKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *ConstraintKind) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "displacement":
		*k = Displacement
	case "force":
		*k = Force
	default:
		return fmt.Errorf("unknown constraint kind %q", string(b))
	}
	return nil
}

// ConstraintEntry applies Value along one degree of freedom of one node.
type ConstraintEntry struct {
	Node  int     `json:"node"`
	DOF   int     `json:"dof"`
	Value float64 `json:"value"`
}

// Constraint is a named group of displacement or load entries.
type Constraint struct {
	Name    string            `json:"name"`
	Kind    ConstraintKind    `json:"kind"`
	Entries []ConstraintEntry `json:"entries"`
}

// Fixed reports whether a displacement entry holds the node in place rather
// than prescribing a non-zero displacement.
func (e ConstraintEntry) Fixed() bool {
	return e.Value == 0
}

// Target is the subject of a boundary condition or load: a single node, or
// every node of a node set.
type Target struct {
	Node int
	Set  string
}

// NodeTarget targets a single node.
func NodeTarget(id int) Target {
	return Target{Node: id}
}

// SetTarget targets every node in a node set.
func SetTarget(name string) Target {
	return Target{Set: name}
}

func (t Target) String() string {
	if t.Set != "" {
		return t.Set
	}
	return strconv.Itoa(t.Node)
}

// StaticProcedure holds the increment controls of a static analysis step.
type StaticProcedure struct {
	InitialIncrement float64 `json:"initial_increment"`
	Period           float64 `json:"period"`
	MinIncrement     float64 `json:"min_increment"`
	MaxIncrement     float64 `json:"max_increment"`
}

// DefaultStaticProcedure returns the increment controls applied when a STATIC
// keyword carries no data line.
func DefaultStaticProcedure() StaticProcedure {
	return StaticProcedure{
		InitialIncrement: 1,
		Period:           1,
		MinIncrement:     1e-5,
		MaxIncrement:     1,
	}
}

// Step is an analysis step and the constraints applied within it.
type Step struct {
	Name        string           `json:"name,omitempty"`
	Static      *StaticProcedure `json:"static,omitempty"`
	Constraints []string         `json:"constraints,omitempty"`
}
