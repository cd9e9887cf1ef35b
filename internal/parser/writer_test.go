package parser

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/numerics88/inpdeck/internal/femodel"
)

// buildMixedModel returns a model with every element type, both material
// kinds and a static step carrying both constraint kinds.
func buildMixedModel(t *testing.T) *femodel.Model {
	t.Helper()
	m := femodel.New()
	m.SetDescription("mixed mesh\nsecond line")
	m.AppendHistory("created by test")
	for i := 1; i <= 30; i++ {
		if err := m.AddNode(i, float64(i)*0.5, float64(i%3), -float64(i)/7); err != nil {
			t.Fatalf("AddNode failed: %v", err)
		}
	}
	seq := func(from, n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = from + i
		}
		return out
	}
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(m.AddElement(1, femodel.ElementHex20, seq(1, 20)))
	must(m.AddElement(2, femodel.ElementHex20, seq(11, 20)))
	must(m.AddElement(3, femodel.ElementTet4, seq(21, 4)))
	must(m.AddElement(4, femodel.ElementTet10, seq(21, 10)))
	must(m.AddElement(5, femodel.ElementHex8, seq(1, 8)))

	must(m.DefineMaterial(femodel.NewIsotropic("Bone", 6829, 0.3)))
	must(m.DefineMaterial(femodel.OrthotropicFromCompliance("wood",
		[9]float64{1e-4, -3e-5, 2e-4, -3e-5, -4e-5, 5e-4, 1e-3, 2e-3, 3e-3})))

	must(m.AddNodeSet("BASE", seq(1, 12)))
	must(m.AddElementSet("HARD", []int{1, 2, 5}))
	must(m.AddElementSet("SOFT", []int{3, 4}))
	must(m.AssignSection("HARD", "Bone"))
	must(m.AssignSection("SOFT", "wood"))

	must(m.BeginStep("load"))
	must(m.SetStaticProcedure(femodel.StaticProcedure{InitialIncrement: 0.25, Period: 2, MinIncrement: 1e-6, MaxIncrement: 0.5}))
	for dof := 1; dof <= 3; dof++ {
		must(m.ApplyDisplacement("fixed", femodel.SetTarget("BASE"), dof, 0))
	}
	must(m.ApplyDisplacement("moved", femodel.NodeTarget(30), 2, 0.125))
	must(m.ApplyLoad("push", femodel.NodeTarget(29), 3, -12.5))
	must(m.EndStep())

	must(m.BeginStep(""))
	must(m.ApplyLoad("pull", femodel.NodeTarget(28), 1, 3))
	must(m.EndStep())

	must(m.Finalize())
	return m
}

func TestWriteDeckRoundTrip(t *testing.T) {
	want := buildMixedModel(t)

	var buf bytes.Buffer
	if err := WriteDeck(&buf, want); err != nil {
		t.Fatalf("WriteDeck failed: %v", err)
	}

	got := femodel.New()
	rd, err := NewReader(&buf, got, testOptions())
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if err := rd.Read(context.Background()); err != nil {
		t.Fatalf("Read of written deck failed: %v", err)
	}
	if len(rd.Warnings()) != 0 {
		t.Errorf("Expected no warnings reading written deck, got %q", rd.Warnings())
	}

	opts := cmp.Options{
		cmpopts.IgnoreFields(femodel.Snapshot{}, "History"),
		cmpopts.EquateApprox(0, 1e-9),
	}
	if diff := cmp.Diff(want.Snapshot(), got.Snapshot(), opts); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got.Unassigned() != 0 {
		t.Errorf("Expected all elements assigned, got %d unassigned", got.Unassigned())
	}
}

func TestWriteDeckContinuation(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDeck(&buf, buildMixedModel(t)); err != nil {
		t.Fatalf("WriteDeck failed: %v", err)
	}
	out := buf.String()

	want := "1, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,\n16, 17, 18, 19, 20\n"
	if !strings.Contains(out, want) {
		t.Errorf("Expected hex20 element split after 16 entries, got:\n%s", out)
	}
	if strings.Count(out, "*ELEMENT, TYPE=") != 4 {
		t.Errorf("Expected one ELEMENT section per run of types, got:\n%s", out)
	}
	if !strings.HasPrefix(out, "** created by test\n*HEADING\nmixed mesh\nsecond line\n") {
		t.Errorf("Unexpected heading:\n%s", out)
	}
}

func TestWriteDeckLooseConstraints(t *testing.T) {
	m := femodel.New()
	m.SetDescription("*looks like a keyword")
	m.AddNode(1, 0, 0, 0)
	if err := m.ApplyLoad("free load", femodel.NodeTarget(1), 1, 2); err != nil {
		t.Fatalf("ApplyLoad failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteDeck(&buf, m); err != nil {
		t.Fatalf("WriteDeck failed: %v", err)
	}
	want := "*HEADING\n *looks like a keyword\n*NODE\n1, 0, 0, 0\n" +
		"*STEP\n*STATIC\n*CLOAD, NAME=free_load\n1, 1, 2\n*END STEP\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("deck mismatch (-want +got):\n%s", diff)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteDeckReportsWriteError(t *testing.T) {
	if err := WriteDeck(failingWriter{}, buildMixedModel(t)); err == nil {
		t.Error("Expected write error to be reported")
	}
}
