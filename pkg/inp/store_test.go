package inp

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// copyCube copies the cube deck into a fresh directory.
func copyCube(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(cubeDeck)
	if err != nil {
		t.Fatalf("read cube deck: %v", err)
	}
	path := filepath.Join(t.TempDir(), "cube.inp")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write cube deck: %v", err)
	}
	return path
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "decks.db"))
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type countingParser struct {
	Parser
	calls int
}

func (p *countingParser) ParseWithOptions(filename string, opts ParseOptions) (*Model, error) {
	p.calls++
	return p.Parser.ParseWithOptions(filename, opts)
}

func TestStorePutGet(t *testing.T) {
	s := openTestStore(t)
	path := copyCube(t)

	if _, ok, err := s.Get(path); err != nil || ok {
		t.Fatalf("Expected empty store, got ok=%v err=%v", ok, err)
	}

	m, err := NewParser().ParseWithOptions(path, quietOptions())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := s.Put(path, m); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := s.Get(path)
	if err != nil || !ok {
		t.Fatalf("Expected stored model, got ok=%v err=%v", ok, err)
	}
	if got.Name() != m.Name() || got.LineCount() != m.LineCount() {
		t.Errorf("Expected %s with %d lines, got %s with %d", m.Name(), m.LineCount(), got.Name(), got.LineCount())
	}
	if diff := cmp.Diff(m.Nodes(), got.Nodes()); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(m.Constraints(), got.Constraints()); diff != "" {
		t.Errorf("constraints mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(m.NodeSets(), got.NodeSets()); diff != "" {
		t.Errorf("node sets mismatch (-want +got):\n%s", diff)
	}

	abs, _ := filepath.Abs(path)
	paths, err := s.Paths()
	if err != nil {
		t.Fatalf("Paths failed: %v", err)
	}
	if diff := cmp.Diff([]string{abs}, paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}

	if err := s.Delete(path); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := s.Get(path); ok {
		t.Error("Expected record to be deleted")
	}
	if err := s.Delete(path); err != nil {
		t.Errorf("Deleting a missing record failed: %v", err)
	}
}

func TestStoreDetectsChangedDeck(t *testing.T) {
	s := openTestStore(t)
	path := copyCube(t)

	m, err := NewParser().ParseWithOptions(path, quietOptions())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := s.Put(path, m); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}
	if _, ok, err := s.Get(path); err != nil || ok {
		t.Errorf("Expected changed deck to miss, got ok=%v err=%v", ok, err)
	}
}

func TestStoreLoad(t *testing.T) {
	s := openTestStore(t)
	path := copyCube(t)
	p := &countingParser{Parser: NewParser()}

	first, err := s.Load(p, path, quietOptions())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	second, err := s.Load(p, path, quietOptions())
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if p.calls != 1 {
		t.Errorf("Expected one parse, got %d", p.calls)
	}
	if diff := cmp.Diff(first.Nodes(), second.Nodes()); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.Load(p, filepath.Join(t.TempDir(), "missing.inp"), quietOptions()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected missing deck to fail with ErrNotExist, got %v", err)
	}
}

func TestStoreLoaderSkipsParsedDecks(t *testing.T) {
	s := openTestStore(t)
	paths := []string{copyCube(t), copyCube(t), copyCube(t)}
	p := &countingParser{Parser: NewParser()}

	opts := DefaultLoadOptions()
	opts.Parallel = false
	opts.Parse = quietOptions()

	for round := 0; round < 2; round++ {
		set, errs := LoadModelsWith(paths, s.Loader(p, opts.Parse), opts)
		if len(errs) != 0 {
			t.Fatalf("round %d: unexpected errors %v", round, errs)
		}
		if len(set.Models) != 3 {
			t.Fatalf("round %d: expected 3 models, got %d", round, len(set.Models))
		}
	}
	if p.calls != 3 {
		t.Errorf("Expected each deck parsed once, got %d parses", p.calls)
	}
}
