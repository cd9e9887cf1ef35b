package main

import (
	"fmt"
	"log"

	"github.com/numerics88/inpdeck/pkg/inp"
)

func main() {
	// Create parser
	parser := inp.NewParser()

	// Parse deck file
	model, err := parser.Parse("femur.inp")
	if err != nil {
		log.Fatal(err)
	}

	// Print model info
	fmt.Printf("Deck: %s\n", model.Name())
	fmt.Printf("Nodes: %d\n", model.NodeCount())
	fmt.Printf("Elements: %d\n", model.ElementCount())
	for _, m := range model.Materials() {
		fmt.Printf("Material: %s (%s)\n", m.Name, m.Kind)
	}

	// Get model bounds
	b := model.Bounds()
	fmt.Printf("Bounds: [%.4f,%.4f,%.4f] to [%.4f,%.4f,%.4f]\n",
		b.MinX, b.MinY, b.MinZ,
		b.MaxX, b.MaxY, b.MaxZ)
}
