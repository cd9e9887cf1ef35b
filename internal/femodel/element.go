package femodel

import (
	"fmt"
	"strings"
)

// ElementType identifies the solid element family and order.
type ElementType int

const (
	ElementUnknown ElementType = iota
	ElementTet4
	ElementTet10
	ElementHex8
	ElementHex20
)

var elementNodeCounts = map[ElementType]int{
	ElementTet4:  4,
	ElementTet10: 10,
	ElementHex8:  8,
	ElementHex20: 20,
}

var elementNames = map[ElementType]string{
	ElementTet4:  "tet4",
	ElementTet10: "tet10",
	ElementHex8:  "hex8",
	ElementHex20: "hex20",
}

// NodeCount returns the number of nodes an element of this type connects,
// or 0 for ElementUnknown.
func (t ElementType) NodeCount() int {
	return elementNodeCounts[t]
}

func (t ElementType) String() string {
	if name, ok := elementNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ElementType(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler
func (t ElementType) MarshalText() ([]byte, error) {
	if _, ok := elementNames[t]; !ok {
		return nil, fmt.Errorf("cannot marshal element type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *ElementType) UnmarshalText(b []byte) error {
	name := strings.ToLower(string(b))
	for k, v := range elementNames {
		if v == name {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown element type %q", string(b))
}

// Element is a solid element with its ordered connectivity.
type Element struct {
	ID    int         `json:"id"`
	Type  ElementType `json:"type"`
	Nodes []int       `json:"nodes"`
}

// Node is a mesh point.
type Node struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
}

// Coords returns the node position as an array.
func (n Node) Coords() [3]float64 {
	return [3]float64{n.X, n.Y, n.Z}
}
