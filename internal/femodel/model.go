// Package femodel holds an in-memory finite element model and the mutation
// operations a deck reader uses to build it.
//
// A Model is built incrementally: nodes first, then elements that reference
// them, then sets, materials, sections and analysis steps. Every mutation
// checks its references against what has been built so far and rejects the
// call with a typed error instead of leaving the model inconsistent. Set and
// material names are compared case-insensitively, as in Abaqus.
//
// A Model is not safe for concurrent mutation.
package femodel

import (
	"strings"
)

// Set is a named list of node or element ids in insertion order.
type Set struct {
	Name string `json:"name"`
	IDs  []int  `json:"ids"`
}

type idSet struct {
	name   string
	ids    []int
	member map[int]struct{}
}

func (s *idSet) add(id int) {
	if _, ok := s.member[id]; ok {
		return
	}
	s.member[id] = struct{}{}
	s.ids = append(s.ids, id)
}

func (s *idSet) export() Set {
	ids := make([]int, len(s.ids))
	copy(ids, s.ids)
	return Set{Name: s.name, IDs: ids}
}

// Model is a finite element model.
type Model struct {
	nodes        map[int]Node
	nodeOrder    []int
	elements     map[int]*Element
	elementOrder []int

	nodeSets      map[string]*idSet
	nodeSetOrder  []string
	elementSets   map[string]*idSet
	elementSetOrd []string
	materials     map[string]Material
	materialOrder []string
	sections      []Section
	steps         []*Step
	currentStep   *Step
	constraints   map[string]*Constraint
	constraintOrd []string
	description   string
	history       []string
	elementMat    map[int]string
	unassigned    int
}

// New returns an empty model.
func New() *Model {
	return &Model{
		nodes:       make(map[int]Node),
		elements:    make(map[int]*Element),
		nodeSets:    make(map[string]*idSet),
		elementSets: make(map[string]*idSet),
		materials:   make(map[string]Material),
		constraints: make(map[string]*Constraint),
		elementMat:  make(map[int]string),
	}
}

func key(name string) string {
	return strings.ToUpper(name)
}

// NodeCount returns the number of nodes.
func (m *Model) NodeCount() int { return len(m.nodeOrder) }

// ElementCount returns the number of elements.
func (m *Model) ElementCount() int { return len(m.elementOrder) }

// Node returns the node with the given id.
func (m *Model) Node(id int) (Node, bool) {
	n, ok := m.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (m *Model) Nodes() []Node {
	out := make([]Node, 0, len(m.nodeOrder))
	for _, id := range m.nodeOrder {
		out = append(out, m.nodes[id])
	}
	return out
}

// Element returns the element with the given id.
func (m *Model) Element(id int) (Element, bool) {
	e, ok := m.elements[id]
	if !ok {
		return Element{}, false
	}
	return copyElement(e), true
}

// Elements returns all elements in insertion order.
func (m *Model) Elements() []Element {
	out := make([]Element, 0, len(m.elementOrder))
	for _, id := range m.elementOrder {
		out = append(out, copyElement(m.elements[id]))
	}
	return out
}

func copyElement(e *Element) Element {
	nodes := make([]int, len(e.Nodes))
	copy(nodes, e.Nodes)
	return Element{ID: e.ID, Type: e.Type, Nodes: nodes}
}

// NodeSet returns the named node set.
func (m *Model) NodeSet(name string) (Set, bool) {
	s, ok := m.nodeSets[key(name)]
	if !ok {
		return Set{}, false
	}
	return s.export(), true
}

// NodeSets returns all node sets in creation order.
func (m *Model) NodeSets() []Set {
	out := make([]Set, 0, len(m.nodeSetOrder))
	for _, k := range m.nodeSetOrder {
		out = append(out, m.nodeSets[k].export())
	}
	return out
}

// ElementSet returns the named element set.
func (m *Model) ElementSet(name string) (Set, bool) {
	s, ok := m.elementSets[key(name)]
	if !ok {
		return Set{}, false
	}
	return s.export(), true
}

// ElementSets returns all element sets in creation order.
func (m *Model) ElementSets() []Set {
	out := make([]Set, 0, len(m.elementSetOrd))
	for _, k := range m.elementSetOrd {
		out = append(out, m.elementSets[k].export())
	}
	return out
}

// Material returns the named material.
func (m *Model) Material(name string) (Material, bool) {
	mat, ok := m.materials[key(name)]
	return mat, ok
}

// Materials returns all materials in definition order.
func (m *Model) Materials() []Material {
	out := make([]Material, 0, len(m.materialOrder))
	for _, k := range m.materialOrder {
		out = append(out, m.materials[k])
	}
	return out
}

// Sections returns the material assignments in the order they were made.
func (m *Model) Sections() []Section {
	out := make([]Section, len(m.sections))
	copy(out, m.sections)
	return out
}

// Steps returns the analysis steps.
func (m *Model) Steps() []Step {
	out := make([]Step, 0, len(m.steps))
	for _, s := range m.steps {
		cp := Step{Name: s.Name, Constraints: append([]string(nil), s.Constraints...)}
		if s.Static != nil {
			static := *s.Static
			cp.Static = &static
		}
		out = append(out, cp)
	}
	return out
}

// Constraint returns the named constraint. Names are case-insensitive.
func (m *Model) Constraint(name string) (Constraint, bool) {
	c, ok := m.constraints[key(name)]
	if !ok {
		return Constraint{}, false
	}
	return copyConstraint(c), true
}

// Constraints returns all constraints in creation order.
func (m *Model) Constraints() []Constraint {
	out := make([]Constraint, 0, len(m.constraintOrd))
	for _, k := range m.constraintOrd {
		out = append(out, copyConstraint(m.constraints[k]))
	}
	return out
}

func copyConstraint(c *Constraint) Constraint {
	entries := make([]ConstraintEntry, len(c.Entries))
	copy(entries, c.Entries)
	return Constraint{Name: c.Name, Kind: c.Kind, Entries: entries}
}

// HasConstraint reports whether a constraint of that name exists.
func (m *Model) HasConstraint(name string) bool {
	_, ok := m.constraints[key(name)]
	return ok
}

// Description returns the free-form model description.
func (m *Model) Description() string { return m.description }

// History returns the provenance log, one entry per line.
func (m *Model) History() []string {
	return append([]string(nil), m.history...)
}

// ElementMaterial returns the material assigned to an element by Finalize.
func (m *Model) ElementMaterial(id int) (string, bool) {
	name, ok := m.elementMat[id]
	return name, ok
}

// Unassigned returns the number of elements left without a material by the
// last Finalize.
func (m *Model) Unassigned() int { return m.unassigned }
