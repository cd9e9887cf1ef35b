package femodel

import (
	"fmt"
)

// Snapshot is a plain, serialisable copy of a Model.
type Snapshot struct {
	Description string       `json:"description,omitempty"`
	History     []string     `json:"history,omitempty"`
	Nodes       []Node       `json:"nodes"`
	Elements    []Element    `json:"elements"`
	NodeSets    []Set        `json:"node_sets,omitempty"`
	ElementSets []Set        `json:"element_sets,omitempty"`
	Materials   []Material   `json:"materials,omitempty"`
	Sections    []Section    `json:"sections,omitempty"`
	Steps       []Step       `json:"steps,omitempty"`
	Constraints []Constraint `json:"constraints,omitempty"`
}

// Snapshot copies the model into a Snapshot.
func (m *Model) Snapshot() Snapshot {
	return Snapshot{
		Description: m.description,
		History:     m.History(),
		Nodes:       m.Nodes(),
		Elements:    m.Elements(),
		NodeSets:    m.NodeSets(),
		ElementSets: m.ElementSets(),
		Materials:   m.Materials(),
		Sections:    m.Sections(),
		Steps:       m.Steps(),
		Constraints: m.Constraints(),
	}
}

// FromSnapshot rebuilds a model by replaying a snapshot through the mutation
// operations, so a corrupted snapshot is rejected with the same errors a
// reader would see. The result is finalized.
func FromSnapshot(s Snapshot) (*Model, error) {
	m := New()
	m.description = s.Description
	m.history = append([]string(nil), s.History...)

	for _, n := range s.Nodes {
		if err := m.AddNode(n.ID, n.X, n.Y, n.Z); err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
	}
	for _, e := range s.Elements {
		if err := m.AddElement(e.ID, e.Type, e.Nodes); err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
	}
	if err := m.checkConnectivity(); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	for _, set := range s.NodeSets {
		if err := m.AddNodeSet(set.Name, set.IDs); err != nil {
			return nil, fmt.Errorf("snapshot: node set %q: %w", set.Name, err)
		}
	}
	for _, set := range s.ElementSets {
		if err := m.AddElementSet(set.Name, set.IDs); err != nil {
			return nil, fmt.Errorf("snapshot: element set %q: %w", set.Name, err)
		}
	}
	for _, mat := range s.Materials {
		if err := m.DefineMaterial(mat); err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
	}
	for _, sec := range s.Sections {
		if err := m.AssignSection(sec.ElementSet, sec.Material); err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
	}

	byName := make(map[string]Constraint, len(s.Constraints))
	for _, c := range s.Constraints {
		byName[key(c.Name)] = c
	}
	replay := func(name string) error {
		c, ok := byName[key(name)]
		if !ok {
			return fmt.Errorf("snapshot: step references missing constraint %q", name)
		}
		delete(byName, key(name))
		for _, e := range c.Entries {
			if err := m.apply(c.Name, c.Kind, NodeTarget(e.Node), e.DOF, e.Value); err != nil {
				return fmt.Errorf("snapshot: constraint %q: %w", c.Name, err)
			}
		}
		return nil
	}

	for _, step := range s.Steps {
		if err := m.BeginStep(step.Name); err != nil {
			return nil, fmt.Errorf("snapshot: step %q: %w", step.Name, err)
		}
		if step.Static != nil {
			if err := m.SetStaticProcedure(*step.Static); err != nil {
				return nil, fmt.Errorf("snapshot: step %q: %w", step.Name, err)
			}
		}
		for _, name := range step.Constraints {
			if err := replay(name); err != nil {
				return nil, err
			}
		}
		if err := m.EndStep(); err != nil {
			return nil, fmt.Errorf("snapshot: step %q: %w", step.Name, err)
		}
	}
	// Constraints created outside any step keep their original order.
	for _, c := range s.Constraints {
		if _, pending := byName[key(c.Name)]; pending {
			if err := replay(c.Name); err != nil {
				return nil, err
			}
		}
	}

	if err := m.Finalize(); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return m, nil
}
