package femodel

import (
	"strings"
)

// AddNode inserts a node. Duplicate ids are rejected; the first definition
// stays in the model.
func (m *Model) AddNode(id int, x, y, z float64) error {
	if id <= 0 {
		return &ErrInvalidID{Kind: "node", ID: id}
	}
	if _, dup := m.nodes[id]; dup {
		return &ErrDuplicateID{Kind: "node", ID: id}
	}
	m.nodes[id] = Node{ID: id, X: x, Y: y, Z: z}
	m.nodeOrder = append(m.nodeOrder, id)
	return nil
}

// AddElement inserts an element. The node count must match the type. Nodes
// may be defined later; Validate reports references that never resolve.
func (m *Model) AddElement(id int, t ElementType, nodes []int) error {
	if id <= 0 {
		return &ErrInvalidID{Kind: "element", ID: id}
	}
	if _, dup := m.elements[id]; dup {
		return &ErrDuplicateID{Kind: "element", ID: id}
	}
	if t.NodeCount() == 0 || len(nodes) != t.NodeCount() {
		return &ErrNodeCount{Element: id, Type: t, Got: len(nodes)}
	}
	for _, n := range nodes {
		if n <= 0 {
			return &ErrInvalidID{Kind: "node", ID: n}
		}
	}
	conn := make([]int, len(nodes))
	copy(conn, nodes)
	m.elements[id] = &Element{ID: id, Type: t, Nodes: conn}
	m.elementOrder = append(m.elementOrder, id)
	return nil
}

// AddNodeSet creates the named node set or extends an existing one. Ids
// already in the set are not added twice.
func (m *Model) AddNodeSet(name string, ids []int) error {
	for _, id := range ids {
		if _, ok := m.nodes[id]; !ok {
			return &ErrUnknownNode{ID: id}
		}
	}
	s := m.nodeSets[key(name)]
	if s == nil {
		s = &idSet{name: name, member: make(map[int]struct{})}
		m.nodeSets[key(name)] = s
		m.nodeSetOrder = append(m.nodeSetOrder, key(name))
	}
	for _, id := range ids {
		s.add(id)
	}
	return nil
}

// AddElementSet creates the named element set or extends an existing one.
func (m *Model) AddElementSet(name string, ids []int) error {
	for _, id := range ids {
		if _, ok := m.elements[id]; !ok {
			return &ErrUnknownElement{ID: id}
		}
	}
	s := m.elementSets[key(name)]
	if s == nil {
		s = &idSet{name: name, member: make(map[int]struct{})}
		m.elementSets[key(name)] = s
		m.elementSetOrd = append(m.elementSetOrd, key(name))
	}
	for _, id := range ids {
		s.add(id)
	}
	return nil
}

// DefineMaterial adds a material, or replaces the definition of an existing
// material with the same name.
func (m *Model) DefineMaterial(mat Material) error {
	if strings.TrimSpace(mat.Name) == "" {
		return &ErrInvalidMaterial{Name: mat.Name, Reason: "empty name"}
	}
	k := key(mat.Name)
	if _, exists := m.materials[k]; !exists {
		m.materialOrder = append(m.materialOrder, k)
	}
	m.materials[k] = mat
	return nil
}

// AssignSection binds a material to an element set. Both must exist.
func (m *Model) AssignSection(elset, material string) error {
	if _, ok := m.elementSets[key(elset)]; !ok {
		return &ErrUnknownSet{Kind: "element set", Name: elset}
	}
	if _, ok := m.materials[key(material)]; !ok {
		return &ErrUnknownMaterial{Name: material}
	}
	m.sections = append(m.sections, Section{ElementSet: elset, Material: material})
	return nil
}

// BeginStep opens a new analysis step. Constraints created while it is open
// belong to it.
func (m *Model) BeginStep(name string) error {
	s := &Step{Name: name}
	m.steps = append(m.steps, s)
	m.currentStep = s
	return nil
}

// EndStep closes the open step.
func (m *Model) EndStep() error {
	if m.currentStep == nil {
		return ErrNoStep
	}
	m.currentStep = nil
	return nil
}

// SetStaticProcedure makes the open step a static step.
func (m *Model) SetStaticProcedure(p StaticProcedure) error {
	if m.currentStep == nil {
		return ErrNoStep
	}
	m.currentStep.Static = &p
	return nil
}

// ApplyDisplacement adds a displacement of value along dof to the target,
// grouped under the named constraint. Constraint names are case-insensitive
// and keep the spelling they were first given.
func (m *Model) ApplyDisplacement(constraint string, target Target, dof int, value float64) error {
	return m.apply(constraint, Displacement, target, dof, value)
}

// ApplyLoad adds a point load of magnitude along dof to the target, grouped
// under the named constraint.
func (m *Model) ApplyLoad(constraint string, target Target, dof int, magnitude float64) error {
	return m.apply(constraint, Force, target, dof, magnitude)
}

func (m *Model) apply(name string, kind ConstraintKind, target Target, dof int, value float64) error {
	if dof < 1 || dof > 3 {
		return &ErrInvalidDOF{DOF: dof}
	}
	nodes, err := m.resolve(target)
	if err != nil {
		return err
	}
	k := key(name)
	c := m.constraints[k]
	if c == nil {
		c = &Constraint{Name: name, Kind: kind}
		m.constraints[k] = c
		m.constraintOrd = append(m.constraintOrd, k)
		if m.currentStep != nil {
			m.currentStep.Constraints = append(m.currentStep.Constraints, name)
		}
	} else if c.Kind != kind {
		return &ErrConstraintKind{Name: c.Name, Existing: c.Kind}
	}
	for _, n := range nodes {
		c.Entries = append(c.Entries, ConstraintEntry{Node: n, DOF: dof, Value: value})
	}
	return nil
}

func (m *Model) resolve(t Target) ([]int, error) {
	if t.Set != "" {
		s, ok := m.nodeSets[key(t.Set)]
		if !ok {
			return nil, &ErrUnknownSet{Kind: "node set", Name: t.Set}
		}
		return s.ids, nil
	}
	if _, ok := m.nodes[t.Node]; !ok {
		return nil, &ErrUnknownNode{ID: t.Node}
	}
	return []int{t.Node}, nil
}

// SetDescription replaces the model description.
func (m *Model) SetDescription(text string) {
	m.description = text
}

// AppendHistory adds lines to the provenance log.
func (m *Model) AppendHistory(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		m.history = append(m.history, line)
	}
}

// Finalize resolves section assignments into a per-element material. Later
// sections override earlier ones for elements in both sets.
func (m *Model) Finalize() error {
	m.elementMat = make(map[int]string, len(m.elements))
	for _, sec := range m.sections {
		mat, ok := m.materials[key(sec.Material)]
		if !ok {
			return &ErrUnknownMaterial{Name: sec.Material}
		}
		set, ok := m.elementSets[key(sec.ElementSet)]
		if !ok {
			return &ErrUnknownSet{Kind: "element set", Name: sec.ElementSet}
		}
		for _, id := range set.ids {
			m.elementMat[id] = mat.Name
		}
	}
	m.unassigned = len(m.elements) - len(m.elementMat)
	return nil
}
