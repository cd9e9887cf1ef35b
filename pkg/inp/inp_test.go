package inp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/numerics88/inpdeck/internal/femodel"
)

const cubeDeck = "../../testdata/decks/cube.inp"

func quietOptions() ParseOptions {
	opts := DefaultParseOptions()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return opts
}

func parseCube(t *testing.T) *Model {
	t.Helper()
	m, err := NewParser().ParseWithOptions(cubeDeck, quietOptions())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return m
}

func nodeIDs(nodes []Node) []int {
	var ids []int
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestParse(t *testing.T) {
	m := parseCube(t)

	if m.Name() != cubeDeck {
		t.Errorf("Expected name %q, got %q", cubeDeck, m.Name())
	}
	if m.NodeCount() != 8 || m.ElementCount() != 1 {
		t.Errorf("Expected 8 nodes and 1 element, got %d and %d", m.NodeCount(), m.ElementCount())
	}
	if m.LineCount() != 32 {
		t.Errorf("Expected 32 lines, got %d", m.LineCount())
	}
	if len(m.Warnings()) != 0 {
		t.Errorf("Expected no warnings, got %q", m.Warnings())
	}
	if len(m.History()) != 1 || !strings.Contains(m.History()[0], "cube.inp") {
		t.Errorf("Unexpected history %q", m.History())
	}
	if mat, ok := m.ElementMaterial(1); !ok || mat != "Bone" {
		t.Errorf("Expected element 1 made of Bone, got %q", mat)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
	if e, ok := m.Element(1); !ok || e.Type != ElementHex8 {
		t.Errorf("Expected hex8 element, got %+v", e)
	}
}

func TestParseErrors(t *testing.T) {
	p := NewParser()

	_, err := p.ParseReader(context.Background(), strings.NewReader("*NODE\n1, a, 0, 0\n"), quietOptions())
	if !errors.Is(err, ErrFormat) {
		t.Errorf("Expected ErrFormat, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := quietOptions()
	opts.ProgressInterval = 1
	if _, err := p.ParseContext(ctx, cubeDeck, opts); !errors.Is(err, ErrAborted) {
		t.Errorf("Expected ErrAborted, got %v", err)
	}

	opts = quietOptions()
	opts.Progress = func(offset, total int64) bool { return false }
	opts.ProgressInterval = 8
	if _, err := p.ParseWithOptions(cubeDeck, opts); !errors.Is(err, ErrAborted) {
		t.Errorf("Expected ErrAborted from progress callback, got %v", err)
	}
}

func TestModelBounds(t *testing.T) {
	m := parseCube(t)
	want := Bounds{MinX: 0, MaxX: 1, MinY: 0, MaxY: 1, MinZ: 0, MaxZ: 1}
	if diff := cmp.Diff(want, m.Bounds()); diff != "" {
		t.Errorf("bounds mismatch (-want +got):\n%s", diff)
	}

	empty, err := NewParser().ParseReader(context.Background(), strings.NewReader("*HEADING\nempty\n"), quietOptions())
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}
	if empty.Bounds() != (Bounds{}) {
		t.Errorf("Expected zero bounds for empty model, got %+v", empty.Bounds())
	}
	if empty.NodesInBounds(want) != nil {
		t.Error("Expected no nodes in empty model")
	}
}

func TestNodesInBounds(t *testing.T) {
	m := parseCube(t)

	tests := []struct {
		name   string
		bounds Bounds
		want   []int
	}{
		{"everything", Bounds{MinX: -1, MaxX: 2, MinY: -1, MaxY: 2, MinZ: -1, MaxZ: 2}, []int{1, 2, 3, 4, 5, 6, 7, 8}},
		{"bottom face", Bounds{MaxX: 1, MaxY: 1}, []int{1, 2, 3, 4}},
		{"single corner", Bounds{MinX: 1, MaxX: 1, MinY: 1, MaxY: 1, MinZ: 1, MaxZ: 1}, []int{7}},
		{"x half", Bounds{MinX: 0.5, MaxX: 1.5, MinY: -1, MaxY: 2, MinZ: -1, MaxZ: 2}, []int{2, 3, 6, 7}},
		{"outside", Bounds{MinX: 5, MaxX: 6, MinY: 5, MaxY: 6, MinZ: 5, MaxZ: 6}, nil},
		{"inverted", Bounds{MinX: 1, MaxX: 0, MinY: 0, MaxY: 1, MinZ: 0, MaxZ: 1}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, nodeIDs(m.NodesInBounds(tt.bounds))); diff != "" {
				t.Errorf("nodes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNodeSetInBounds(t *testing.T) {
	m := parseCube(t)

	nodes, err := m.NodeSetInBounds("top", Bounds{MinX: -1, MaxX: 0.5, MinY: -1, MaxY: 2, MinZ: -1, MaxZ: 2})
	if err != nil {
		t.Fatalf("NodeSetInBounds failed: %v", err)
	}
	if diff := cmp.Diff([]int{5, 8}, nodeIDs(nodes)); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}

	if _, err := m.NodeSetInBounds("MISSING", m.Bounds()); err == nil {
		t.Error("Expected unknown set to fail")
	}
}

func TestNodesOnPlane(t *testing.T) {
	m := parseCube(t)

	nodes, err := m.NodesOnPlane(0, 1, 1e-6)
	if err != nil {
		t.Fatalf("NodesOnPlane failed: %v", err)
	}
	if diff := cmp.Diff([]int{2, 3, 6, 7}, nodeIDs(nodes)); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
	nodes, _ = m.NodesOnPlane(2, 0, 0)
	if diff := cmp.Diff([]int{1, 2, 3, 4}, nodeIDs(nodes)); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
	if _, err := m.NodesOnPlane(3, 0, 0); err == nil {
		t.Error("Expected invalid axis to fail")
	}
}

func TestBoundsMethods(t *testing.T) {
	a := Bounds{MinX: 0, MaxX: 1, MinY: 0, MaxY: 1, MinZ: 0, MaxZ: 1}
	b := Bounds{MinX: 0.5, MaxX: 2, MinY: -1, MaxY: 0.5, MinZ: 0, MaxZ: 3}

	if !a.Intersects(b) || !b.Intersects(a) {
		t.Error("Expected overlapping bounds to intersect")
	}
	if a.Intersects(Bounds{MinX: 2, MaxX: 3, MinY: 0, MaxY: 1, MinZ: 0, MaxZ: 1}) {
		t.Error("Expected disjoint bounds not to intersect")
	}
	want := Bounds{MinX: 0, MaxX: 2, MinY: -1, MaxY: 1, MinZ: 0, MaxZ: 3}
	if diff := cmp.Diff(want, a.Union(b)); diff != "" {
		t.Errorf("union mismatch (-want +got):\n%s", diff)
	}
	if !a.Expand(0.5).Contains(-0.5, 1.5, 0) {
		t.Error("Expected expanded bounds to contain the corner")
	}
	if dx, dy, dz := b.Size(); dx != 1.5 || dy != 1.5 || dz != 3 {
		t.Errorf("Unexpected size %g, %g, %g", dx, dy, dz)
	}
}

func TestWrite(t *testing.T) {
	m := parseCube(t)

	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	back, err := NewParser().ParseReader(context.Background(), &buf, quietOptions())
	if err != nil {
		t.Fatalf("ParseReader of written deck failed: %v", err)
	}
	if diff := cmp.Diff(m.Constraints(), back.Constraints()); diff != "" {
		t.Errorf("constraints mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(m.Nodes(), back.Nodes()); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
	if back.Description() != m.Description() {
		t.Errorf("Expected description %q, got %q", m.Description(), back.Description())
	}
}

func TestParseReaderProgress(t *testing.T) {
	data, err := os.ReadFile(cubeDeck)
	if err != nil {
		t.Fatalf("read cube deck: %v", err)
	}

	opts := quietOptions()
	opts.Size = int64(len(data))
	opts.ProgressInterval = 8
	var totals []int64
	opts.Progress = func(offset, total int64) bool {
		totals = append(totals, total)
		return true
	}
	if _, err := NewParser().ParseReader(context.Background(), bytes.NewReader(data), opts); err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}
	if len(totals) != 4 {
		t.Errorf("Expected 4 progress calls over 32 lines, got %d", len(totals))
	}
	for _, total := range totals {
		if total != int64(len(data)) {
			t.Errorf("Expected total %d, got %d", len(data), total)
		}
	}

	opts.Progress = func(offset, total int64) bool { return false }
	if _, err := NewParser().ParseReader(context.Background(), bytes.NewReader(data), opts); !errors.Is(err, ErrAborted) {
		t.Errorf("Expected ErrAborted from progress callback, got %v", err)
	}
}

func TestParseUndefinedNodesNeedValidateOff(t *testing.T) {
	deck := "*NODE\n1, 0.0, 0.0, 0.0\n2, 1.0, 0.0, 0.0\n*ELEMENT, TYPE=T4\n1, 1, 2, 3, 4\n"

	_, err := NewParser().ParseReader(context.Background(), strings.NewReader(deck), quietOptions())
	var unknown *femodel.ErrUnknownNode
	if !errors.As(err, &unknown) {
		t.Fatalf("Expected ErrUnknownNode with validation, got %v", err)
	}

	opts := quietOptions()
	opts.Validate = false
	m, err := NewParser().ParseReader(context.Background(), strings.NewReader(deck), opts)
	if err != nil {
		t.Fatalf("ParseReader without validation failed: %v", err)
	}
	if m.NodeCount() != 2 || m.ElementCount() != 1 {
		t.Errorf("Expected 2 nodes and 1 element, got %d and %d", m.NodeCount(), m.ElementCount())
	}
}
