package femodel

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// buildCube returns a single hex8 element on a unit cube with node set
// "BOTTOM" (z=0) and element set "ALL".
func buildCube(t *testing.T) *Model {
	t.Helper()
	m := New()
	coords := [][3]float64{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
	for i, c := range coords {
		if err := m.AddNode(i+1, c[0], c[1], c[2]); err != nil {
			t.Fatalf("AddNode(%d) failed: %v", i+1, err)
		}
	}
	if err := m.AddElement(1, ElementHex8, []int{1, 2, 3, 4, 5, 6, 7, 8}); err != nil {
		t.Fatalf("AddElement failed: %v", err)
	}
	if err := m.AddNodeSet("BOTTOM", []int{1, 2, 3, 4}); err != nil {
		t.Fatalf("AddNodeSet failed: %v", err)
	}
	if err := m.AddElementSet("ALL", []int{1}); err != nil {
		t.Fatalf("AddElementSet failed: %v", err)
	}
	return m
}

func TestAddNode(t *testing.T) {
	tests := []struct {
		name    string
		id      int
		wantErr any
	}{
		{"valid", 3, nil},
		{"zero id", 0, &ErrInvalidID{}},
		{"negative id", -1, &ErrInvalidID{}},
		{"duplicate", 1, &ErrDuplicateID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.AddNode(1, 0, 0, 0)
			err := m.AddNode(tt.id, 5, 6, 7)
			switch tt.wantErr.(type) {
			case nil:
				if err != nil {
					t.Fatalf("AddNode() error = %v", err)
				}
			case *ErrInvalidID:
				var e *ErrInvalidID
				if !errors.As(err, &e) {
					t.Errorf("Expected ErrInvalidID, got %v", err)
				}
			case *ErrDuplicateID:
				var e *ErrDuplicateID
				if !errors.As(err, &e) {
					t.Errorf("Expected ErrDuplicateID, got %v", err)
				}
			}
		})
	}
}

func TestDuplicateNodeKeepsFirst(t *testing.T) {
	m := New()
	m.AddNode(1, 1, 2, 3)
	if err := m.AddNode(1, 9, 9, 9); err == nil {
		t.Fatal("Expected duplicate node to be rejected")
	}
	n, _ := m.Node(1)
	if diff := cmp.Diff(Node{ID: 1, X: 1, Y: 2, Z: 3}, n); diff != "" {
		t.Errorf("node changed (-want +got):\n%s", diff)
	}
	if m.NodeCount() != 1 {
		t.Errorf("Expected 1 node, got %d", m.NodeCount())
	}
}

func TestAddElement(t *testing.T) {
	m := New()
	for i := 1; i <= 4; i++ {
		m.AddNode(i, float64(i), 0, 0)
	}

	if err := m.AddElement(1, ElementTet4, []int{1, 2, 3, 4}); err != nil {
		t.Fatalf("AddElement failed: %v", err)
	}

	var countErr *ErrNodeCount
	if err := m.AddElement(2, ElementTet4, []int{1, 2, 3}); !errors.As(err, &countErr) {
		t.Errorf("Expected ErrNodeCount, got %v", err)
	} else if countErr.Got != 3 || countErr.Type != ElementTet4 {
		t.Errorf("Unexpected error detail: %+v", countErr)
	}

	var invalid *ErrInvalidID
	if err := m.AddElement(3, ElementTet4, []int{1, 2, 3, 0}); !errors.As(err, &invalid) {
		t.Errorf("Expected ErrInvalidID, got %v", err)
	}

	var dup *ErrDuplicateID
	if err := m.AddElement(1, ElementTet4, []int{1, 2, 3, 4}); !errors.As(err, &dup) {
		t.Errorf("Expected ErrDuplicateID, got %v", err)
	}

	if m.ElementCount() != 1 {
		t.Errorf("Expected 1 element after rejections, got %d", m.ElementCount())
	}

	// Forward references are accepted and left for Validate.
	if err := m.AddElement(4, ElementTet4, []int{1, 2, 3, 99}); err != nil {
		t.Fatalf("AddElement with undefined node failed: %v", err)
	}
	var unknown *ErrUnknownNode
	if err := m.Validate(); !errors.As(err, &unknown) {
		t.Errorf("Expected ErrUnknownNode from Validate, got %v", err)
	} else if unknown.ID != 99 || unknown.Element != 4 {
		t.Errorf("Unexpected error detail: %+v", unknown)
	}
	e, _ := m.Element(1)
	if diff := cmp.Diff([]int{1, 2, 3, 4}, e.Nodes); diff != "" {
		t.Errorf("connectivity mismatch (-want +got):\n%s", diff)
	}
}

func TestSetsCreateOrExtend(t *testing.T) {
	m := buildCube(t)

	if err := m.AddNodeSet("bottom", []int{4, 5}); err != nil {
		t.Fatalf("Extending set failed: %v", err)
	}
	s, ok := m.NodeSet("Bottom")
	if !ok {
		t.Fatal("Expected case-insensitive set lookup")
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5}, s.IDs); diff != "" {
		t.Errorf("set ids mismatch (-want +got):\n%s", diff)
	}
	if s.Name != "BOTTOM" {
		t.Errorf("Expected original set name kept, got %q", s.Name)
	}
	if len(m.NodeSets()) != 1 {
		t.Errorf("Expected one node set, got %d", len(m.NodeSets()))
	}

	var unknown *ErrUnknownNode
	if err := m.AddNodeSet("TOP", []int{5, 42}); !errors.As(err, &unknown) {
		t.Errorf("Expected ErrUnknownNode, got %v", err)
	}
	if _, ok := m.NodeSet("TOP"); ok {
		t.Error("Rejected set must not be created")
	}

	var unknownElem *ErrUnknownElement
	if err := m.AddElementSet("E", []int{7}); !errors.As(err, &unknownElem) {
		t.Errorf("Expected ErrUnknownElement, got %v", err)
	}
}

func TestDefineMaterialUpserts(t *testing.T) {
	m := New()
	m.DefineMaterial(NewIsotropic("Bone", 6829, 0.3))
	m.DefineMaterial(NewIsotropic("BONE", 1000, 0.25))

	mats := m.Materials()
	if len(mats) != 1 {
		t.Fatalf("Expected one material, got %d", len(mats))
	}
	if mats[0].YoungsModulus != 1000 {
		t.Errorf("Expected last definition to win, got E=%g", mats[0].YoungsModulus)
	}

	if err := m.DefineMaterial(Material{}); err == nil {
		t.Error("Expected unnamed material to be rejected")
	}
}

func TestAssignSection(t *testing.T) {
	m := buildCube(t)
	m.DefineMaterial(NewIsotropic("STEEL", 200e3, 0.3))

	var unknownSet *ErrUnknownSet
	if err := m.AssignSection("MISSING", "STEEL"); !errors.As(err, &unknownSet) {
		t.Errorf("Expected ErrUnknownSet, got %v", err)
	}
	var unknownMat *ErrUnknownMaterial
	if err := m.AssignSection("ALL", "ALUMINIUM"); !errors.As(err, &unknownMat) {
		t.Errorf("Expected ErrUnknownMaterial, got %v", err)
	}

	if err := m.AssignSection("all", "steel"); err != nil {
		t.Fatalf("AssignSection failed: %v", err)
	}
	if err := m.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	name, ok := m.ElementMaterial(1)
	if !ok || name != "STEEL" {
		t.Errorf("Expected element 1 to be STEEL, got %q", name)
	}
	if m.Unassigned() != 0 {
		t.Errorf("Expected no unassigned elements, got %d", m.Unassigned())
	}
}

func TestFinalizeCountsUnassigned(t *testing.T) {
	m := buildCube(t)
	if err := m.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if m.Unassigned() != 1 {
		t.Errorf("Expected 1 unassigned element, got %d", m.Unassigned())
	}
}

func TestConstraints(t *testing.T) {
	m := buildCube(t)

	if err := m.SetStaticProcedure(DefaultStaticProcedure()); !errors.Is(err, ErrNoStep) {
		t.Errorf("Expected ErrNoStep, got %v", err)
	}

	m.BeginStep("LOAD")
	if err := m.SetStaticProcedure(DefaultStaticProcedure()); err != nil {
		t.Fatalf("SetStaticProcedure failed: %v", err)
	}

	for dof := 1; dof <= 3; dof++ {
		if err := m.ApplyDisplacement("fix", SetTarget("bottom"), dof, 0); err != nil {
			t.Fatalf("ApplyDisplacement failed: %v", err)
		}
	}
	if err := m.ApplyLoad("push", NodeTarget(7), 3, -10); err != nil {
		t.Fatalf("ApplyLoad failed: %v", err)
	}

	var dofErr *ErrInvalidDOF
	if err := m.ApplyLoad("push", NodeTarget(7), 4, 1); !errors.As(err, &dofErr) {
		t.Errorf("Expected ErrInvalidDOF, got %v", err)
	}
	var kindErr *ErrConstraintKind
	if err := m.ApplyLoad("fix", NodeTarget(7), 1, 1); !errors.As(err, &kindErr) {
		t.Errorf("Expected ErrConstraintKind, got %v", err)
	}
	var setErr *ErrUnknownSet
	if err := m.ApplyDisplacement("x", SetTarget("NOPE"), 1, 0); !errors.As(err, &setErr) {
		t.Errorf("Expected ErrUnknownSet, got %v", err)
	}
	var nodeErr *ErrUnknownNode
	if err := m.ApplyDisplacement("x", NodeTarget(100), 1, 0); !errors.As(err, &nodeErr) {
		t.Errorf("Expected ErrUnknownNode, got %v", err)
	}
	if m.HasConstraint("x") {
		t.Error("Rejected constraint must not be created")
	}
	m.EndStep()

	fix, ok := m.Constraint("fix")
	if !ok {
		t.Fatal("Expected constraint fix")
	}
	if len(fix.Entries) != 12 {
		t.Errorf("Expected 12 entries (4 nodes x 3 dofs), got %d", len(fix.Entries))
	}
	for _, e := range fix.Entries {
		if !e.Fixed() {
			t.Errorf("Expected fixed entry, got %+v", e)
		}
	}

	want := []Step{{
		Name:        "LOAD",
		Static:      &StaticProcedure{InitialIncrement: 1, Period: 1, MinIncrement: 1e-5, MaxIncrement: 1},
		Constraints: []string{"fix", "push"},
	}}
	if diff := cmp.Diff(want, m.Steps()); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
	if err := m.EndStep(); !errors.Is(err, ErrNoStep) {
		t.Errorf("Expected ErrNoStep closing twice, got %v", err)
	}
}

func TestConstraintNamesIgnoreCase(t *testing.T) {
	m := buildCube(t)
	m.BeginStep("S")
	if err := m.ApplyDisplacement("Fix", NodeTarget(1), 1, 0); err != nil {
		t.Fatalf("ApplyDisplacement failed: %v", err)
	}
	if err := m.ApplyDisplacement("FIX", NodeTarget(2), 1, 0); err != nil {
		t.Fatalf("ApplyDisplacement failed: %v", err)
	}
	var kindErr *ErrConstraintKind
	if err := m.ApplyLoad("fix", NodeTarget(3), 1, 1); !errors.As(err, &kindErr) || kindErr.Name != "Fix" {
		t.Errorf("Expected ErrConstraintKind naming Fix, got %v", err)
	}
	m.EndStep()

	if !m.HasConstraint("fIx") {
		t.Error("Expected HasConstraint to ignore case")
	}
	c, ok := m.Constraint("fix")
	if !ok || c.Name != "Fix" || len(c.Entries) != 2 {
		t.Errorf("Expected Fix with 2 entries, got %+v", c)
	}
	if n := len(m.Constraints()); n != 1 {
		t.Errorf("Expected one constraint, got %d", n)
	}
	if diff := cmp.Diff([]string{"Fix"}, m.Steps()[0].Constraints); diff != "" {
		t.Errorf("step constraints mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendHistory(t *testing.T) {
	m := New()
	m.AppendHistory("first\nsecond\n")
	m.AppendHistory("third")
	if diff := cmp.Diff([]string{"first", "second", "third"}, m.History()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestElementTypeText(t *testing.T) {
	for _, et := range []ElementType{ElementTet4, ElementTet10, ElementHex8, ElementHex20} {
		b, err := et.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) failed: %v", et, err)
		}
		var back ElementType
		if err := back.UnmarshalText(b); err != nil || back != et {
			t.Errorf("UnmarshalText(%q) = %v, %v", b, back, err)
		}
	}
	if _, err := ElementUnknown.MarshalText(); err == nil {
		t.Error("Expected unknown element type to fail marshalling")
	}
}
