package main

import (
	"fmt"
	"log"
	"os"

	"github.com/numerics88/inpdeck/pkg/inp"
)

// Load every deck under a directory, reusing results from an earlier run.
func loadAll(root string) (*inp.ModelSet, []error) {
	paths, err := inp.DiscoverDecks(root)
	if err != nil {
		log.Fatal(err)
	}

	store, err := inp.OpenStore("decks.db")
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	opts := inp.DefaultLoadOptions()
	opts.Workers = 4
	opts.ErrorLog = os.Stderr
	opts.Progress = func(loaded, total int) {
		fmt.Printf("\r%d/%d", loaded, total)
	}
	opts.Parse.Validate = false

	return inp.LoadModelsWith(paths, store.Loader(inp.NewParser(), opts.Parse), opts)
}

func main() {
	fmt.Println("=== Loading decks ===")
	set, errs := loadAll("models")
	fmt.Println()
	if len(errs) > 0 {
		fmt.Printf("Skipped %d decks due to errors\n", len(errs))
	}

	nodes, elements := set.Totals()
	fmt.Printf("Models: %d, nodes: %d, elements: %d\n", len(set.Models), nodes, elements)
	b := set.CompositeBounds()
	fmt.Printf("Extent: %g x %g x %g\n", b.MaxX-b.MinX, b.MaxY-b.MinY, b.MaxZ-b.MinZ)

	// Repeated lookups by path hit the cache
	fmt.Println("\n=== Cached access ===")
	cache := inp.NewModelCache(256 * 1024 * 1024)
	parser := inp.NewParser()
	for i := 0; i < 3; i++ {
		if _, err := cache.Get("models/femur.inp", func() (*inp.Model, error) {
			return parser.Parse("models/femur.inp")
		}); err != nil {
			log.Fatal(err)
		}
	}
	stats := cache.Stats()
	fmt.Printf("Hit rate: %.0f%%\n", stats.HitRate()*100)
}
