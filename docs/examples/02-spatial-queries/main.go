package main

import (
	"fmt"
	"log"

	"github.com/numerics88/inpdeck/pkg/inp"
)

func main() {
	// Parse deck
	parser := inp.NewParser()
	model, err := parser.Parse("femur.inp")
	if err != nil {
		log.Fatal(err)
	}

	// Nodes on the lowest z plane, where the bone is held
	b := model.Bounds()
	bottom, err := model.NodesOnPlane(2, b.MinZ, 1e-6)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Nodes on z=%g: %d\n", b.MinZ, len(bottom))

	// Query the R-tree index for the upper tenth of the model
	top := b
	top.MinZ = b.MaxZ - (b.MaxZ-b.MinZ)/10
	nodes := model.NodesInBounds(top)
	fmt.Printf("Nodes in the upper tenth: %d\n", len(nodes))

	// The same query limited to a node set
	if _, ok := model.NodeSet("SURFACE"); ok {
		surface, err := model.NodeSetInBounds("SURFACE", top)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("  of which on SURFACE: %d\n", len(surface))
	}
}
