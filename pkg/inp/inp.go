// Package inp provides a public API for reading Abaqus input decks into
// finite element models.
package inp

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/dhconnelly/rtreego"

	"github.com/numerics88/inpdeck/internal/femodel"
	"github.com/numerics88/inpdeck/internal/parser"
)

// Model value types.
type (
	Node                 = femodel.Node
	Element              = femodel.Element
	ElementType          = femodel.ElementType
	Set                  = femodel.Set
	Material             = femodel.Material
	MaterialKind         = femodel.MaterialKind
	Section              = femodel.Section
	Step                 = femodel.Step
	StaticProcedure      = femodel.StaticProcedure
	Constraint           = femodel.Constraint
	ConstraintKind       = femodel.ConstraintKind
	ConstraintEntry      = femodel.ConstraintEntry
	OrthotropicConstants = femodel.OrthotropicConstants
)

// Element types.
const (
	ElementTet4  = femodel.ElementTet4
	ElementTet10 = femodel.ElementTet10
	ElementHex8  = femodel.ElementHex8
	ElementHex20 = femodel.ElementHex20
)

// Sentinels for use with errors.Is.
var (
	ErrAborted = parser.ErrAborted
	ErrFormat  = parser.ErrFormat
	ErrIO      = parser.ErrIO
)

// Parser reads Abaqus input decks.
//
// Create a parser with NewParser and use Parse or ParseWithOptions to read
// decks.
type Parser interface {
	// Parse reads a deck file and returns the model.
	Parse(filename string) (*Model, error)

	// ParseWithOptions parses a deck file with custom options.
	ParseWithOptions(filename string, opts ParseOptions) (*Model, error)

	// ParseContext parses a deck file, stopping early when ctx is cancelled.
	// A cancelled parse returns ErrAborted.
	ParseContext(ctx context.Context, filename string, opts ParseOptions) (*Model, error)

	// ParseReader parses a deck from a stream.
	ParseReader(ctx context.Context, r io.Reader, opts ParseOptions) (*Model, error)
}

// NewParser creates a new deck parser.
//
// Example:
//
//	p := inp.NewParser()
//	model, err := p.Parse("femur.inp")
func NewParser() Parser {
	return &parserWrapper{
		internal: parser.NewParser(),
	}
}

// parserWrapper wraps the internal parser and converts types
type parserWrapper struct {
	internal parser.Parser
}

func (p *parserWrapper) Parse(filename string) (*Model, error) {
	return p.ParseWithOptions(filename, DefaultParseOptions())
}

func (p *parserWrapper) ParseWithOptions(filename string, opts ParseOptions) (*Model, error) {
	return p.ParseContext(context.Background(), filename, opts)
}

func (p *parserWrapper) ParseContext(ctx context.Context, filename string, opts ParseOptions) (*Model, error) {
	deck, err := p.internal.ParseContext(ctx, filename, opts.internal())
	if err != nil {
		return nil, err
	}
	return convertDeck(deck), nil
}

func (p *parserWrapper) ParseReader(ctx context.Context, r io.Reader, opts ParseOptions) (*Model, error) {
	deck, err := p.internal.ParseReader(ctx, r, opts.internal())
	if err != nil {
		return nil, err
	}
	return convertDeck(deck), nil
}

// Model is a finite element model read from an input deck.
//
// Access mesh data via Nodes, Elements and the set accessors. Spatial
// queries (Bounds, NodesInBounds, NodeSetInBounds) use an R-tree built on
// first use.
type Model struct {
	fem       *femodel.Model
	name      string
	warnings  []string
	lineCount int64

	indexOnce sync.Once
	index     *spatialIndex
}

func convertDeck(d *parser.Deck) *Model {
	return &Model{
		fem:       d.Model,
		name:      d.Name,
		warnings:  d.Warnings,
		lineCount: d.LineCount,
	}
}

// Name returns the file the model was read from, or "" for streams.
func (m *Model) Name() string { return m.name }

// Warnings returns the non-fatal problems reported while reading.
func (m *Model) Warnings() []string { return append([]string(nil), m.warnings...) }

// LineCount returns the number of deck lines read.
func (m *Model) LineCount() int64 { return m.lineCount }

// Description returns the HEADING text.
func (m *Model) Description() string { return m.fem.Description() }

// History returns the provenance log.
func (m *Model) History() []string { return m.fem.History() }

// NodeCount returns the number of nodes.
func (m *Model) NodeCount() int { return m.fem.NodeCount() }

// ElementCount returns the number of elements.
func (m *Model) ElementCount() int { return m.fem.ElementCount() }

// Nodes returns all nodes in deck order.
func (m *Model) Nodes() []Node { return m.fem.Nodes() }

// Node returns the node with the given id.
func (m *Model) Node(id int) (Node, bool) { return m.fem.Node(id) }

// Elements returns all elements in deck order.
func (m *Model) Elements() []Element { return m.fem.Elements() }

// Element returns the element with the given id.
func (m *Model) Element(id int) (Element, bool) { return m.fem.Element(id) }

// NodeSets returns the node sets in definition order.
func (m *Model) NodeSets() []Set { return m.fem.NodeSets() }

// NodeSet returns the named node set. Names are case-insensitive.
func (m *Model) NodeSet(name string) (Set, bool) { return m.fem.NodeSet(name) }

// ElementSets returns the element sets in definition order.
func (m *Model) ElementSets() []Set { return m.fem.ElementSets() }

// ElementSet returns the named element set. Names are case-insensitive.
func (m *Model) ElementSet(name string) (Set, bool) { return m.fem.ElementSet(name) }

// Materials returns the materials in definition order.
func (m *Model) Materials() []Material { return m.fem.Materials() }

// Sections returns the material assignments.
func (m *Model) Sections() []Section { return m.fem.Sections() }

// ElementMaterial returns the name of the material assigned to an element.
func (m *Model) ElementMaterial(id int) (string, bool) { return m.fem.ElementMaterial(id) }

// Unassigned returns the number of elements without a material.
func (m *Model) Unassigned() int { return m.fem.Unassigned() }

// Steps returns the analysis steps.
func (m *Model) Steps() []Step { return m.fem.Steps() }

// Constraints returns the boundary conditions and loads.
func (m *Model) Constraints() []Constraint { return m.fem.Constraints() }

// Validate checks the model for physical consistency.
func (m *Model) Validate() error { return m.fem.Validate() }

// spatialIndex holds every node in a 3D R-tree.
type spatialIndex struct {
	rtree  *rtreego.Rtree
	bounds Bounds
}

// indexedNode wraps a node for R-tree storage.
type indexedNode struct {
	node Node
}

// pointSize is the edge length given to node boxes; the R-tree rejects
// zero-sized rectangles.
const pointSize = 1e-9

// Bounds implements rtreego.Spatial interface.
func (n *indexedNode) Bounds() rtreego.Rect {
	point := rtreego.Point{n.node.X, n.node.Y, n.node.Z}
	rect, _ := rtreego.NewRect(point, []float64{pointSize, pointSize, pointSize})
	return rect
}

func (m *Model) spatial() *spatialIndex {
	m.indexOnce.Do(func() {
		nodes := m.fem.Nodes()
		idx := &spatialIndex{rtree: rtreego.NewTree(3, 25, 50)}
		for i, n := range nodes {
			idx.rtree.Insert(&indexedNode{node: n})
			if i == 0 {
				idx.bounds = pointBounds(n.X, n.Y, n.Z)
			} else {
				idx.bounds = idx.bounds.Union(pointBounds(n.X, n.Y, n.Z))
			}
		}
		m.index = idx
	})
	return m.index
}

// Bounds returns the box enclosing every node, or the zero Bounds for a model
// without nodes.
func (m *Model) Bounds() Bounds {
	return m.spatial().bounds
}

// NodesInBounds returns the nodes inside b, boundary included, in deck order.
//
// Example:
//
//	// nodes on the bottom face of a unit cube
//	bottom := model.NodesInBounds(inp.Bounds{MaxX: 1, MaxY: 1})
func (m *Model) NodesInBounds(b Bounds) []Node {
	idx := m.spatial()
	if idx.rtree.Size() == 0 {
		return nil
	}
	query := b.Expand(pointSize)
	point := rtreego.Point{query.MinX, query.MinY, query.MinZ}
	lengths := []float64{query.MaxX - query.MinX, query.MaxY - query.MinY, query.MaxZ - query.MinZ}
	queryRect, err := rtreego.NewRect(point, lengths)
	if err != nil {
		// inverted bounds select nothing
		return nil
	}

	hits := make(map[int]struct{})
	for _, spatial := range idx.rtree.SearchIntersect(queryRect) {
		n := spatial.(*indexedNode).node
		if b.Contains(n.X, n.Y, n.Z) {
			hits[n.ID] = struct{}{}
		}
	}
	return m.inOrder(hits)
}

// NodeSetInBounds returns the members of the named node set that lie inside b.
func (m *Model) NodeSetInBounds(name string, b Bounds) ([]Node, error) {
	set, ok := m.fem.NodeSet(name)
	if !ok {
		return nil, &femodel.ErrUnknownSet{Kind: "node set", Name: name}
	}
	members := make(map[int]struct{}, len(set.IDs))
	for _, id := range set.IDs {
		members[id] = struct{}{}
	}
	var out []Node
	for _, n := range m.NodesInBounds(b) {
		if _, ok := members[n.ID]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// NodesOnPlane returns the nodes whose coordinate along axis (0, 1 or 2 for
// x, y, z) equals value within tol.
func (m *Model) NodesOnPlane(axis int, value, tol float64) ([]Node, error) {
	if axis < 0 || axis > 2 {
		return nil, errors.New("axis must be 0, 1 or 2")
	}
	b := m.Bounds()
	lo, hi := value-tol, value+tol
	switch axis {
	case 0:
		b.MinX, b.MaxX = lo, hi
	case 1:
		b.MinY, b.MaxY = lo, hi
	case 2:
		b.MinZ, b.MaxZ = lo, hi
	}
	return m.NodesInBounds(b), nil
}

func (m *Model) inOrder(ids map[int]struct{}) []Node {
	if len(ids) == 0 {
		return nil
	}
	out := make([]Node, 0, len(ids))
	for _, n := range m.fem.Nodes() {
		if _, ok := ids[n.ID]; ok {
			out = append(out, n)
		}
	}
	return out
}

// Write writes m as an Abaqus input deck.
func Write(w io.Writer, m *Model) error {
	return parser.WriteDeck(w, m.fem)
}
