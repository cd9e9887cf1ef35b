package inp

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// ModelSet is a collection of loaded models in input order.
type ModelSet struct {
	Models []*Model
}

// CompositeBounds returns the union of all model bounds.
func (s *ModelSet) CompositeBounds() Bounds {
	var bounds Bounds
	first := true
	for _, m := range s.Models {
		if m.NodeCount() == 0 {
			continue
		}
		if first {
			bounds, first = m.Bounds(), false
		} else {
			bounds = bounds.Union(m.Bounds())
		}
	}
	return bounds
}

// Totals returns the node and element counts summed over all models.
func (s *ModelSet) Totals() (nodes, elements int) {
	for _, m := range s.Models {
		nodes += m.NodeCount()
		elements += m.ElementCount()
	}
	return nodes, elements
}

// LoadFunc loads the model at path.
type LoadFunc func(path string) (*Model, error)

// ParserLoader returns a LoadFunc parsing each path with p and opts.
func ParserLoader(p Parser, opts ParseOptions) LoadFunc {
	return func(path string) (*Model, error) {
		return p.ParseWithOptions(path, opts)
	}
}

// LoadModelsParallel loads decks concurrently with a pool of workers.
//
// The function respects LoadOptions:
//   - Parallel: enable or disable concurrent loading
//   - Workers: number of concurrent loaders (defaults to NumCPU)
//   - SkipErrors: continue loading despite individual failures
//   - Progress: optional callback after every deck
//   - ErrorLog: optional writer for error details
//
// Models keep the order of paths; failed decks are left out.
//
// Example:
//
//	set, errs := inp.LoadModelsParallel(paths, inp.NewParser(), inp.DefaultLoadOptions())
//	if len(errs) > 0 {
//	    fmt.Printf("Skipped %d decks due to errors\n", len(errs))
//	}
func LoadModelsParallel(paths []string, parser Parser, opts LoadOptions) (*ModelSet, []error) {
	return LoadModelsWith(paths, ParserLoader(parser, opts.Parse), opts)
}

// LoadModelsWith is LoadModelsParallel with a custom load function, for
// example Store.Loader.
func LoadModelsWith(paths []string, load LoadFunc, opts LoadOptions) (*ModelSet, []error) {
	if len(paths) == 0 {
		return &ModelSet{Models: []*Model{}}, nil
	}
	if !opts.Parallel {
		return loadModelsSerial(paths, load, opts)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	type loadResult struct {
		index int
		model *Model
		err   error
	}

	jobs := make(chan int, len(paths))
	results := make(chan loadResult, len(paths))
	done := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				select {
				case <-done:
					continue
				default:
				}
				model, err := load(paths[index])
				results <- loadResult{index: index, model: model, err: err}
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	models := make(map[int]*Model)
	var errs []error
	loaded := 0
	stopped := false

	for result := range results {
		if stopped {
			continue
		}
		loaded++
		if opts.Progress != nil {
			opts.Progress(loaded, len(paths))
		}

		if result.err != nil {
			err := fmt.Errorf("%s: %w", paths[result.index], result.err)
			if opts.ErrorLog != nil {
				fmt.Fprintf(opts.ErrorLog, "Error loading deck: %v\n", err)
			}
			if !opts.SkipErrors {
				// Drain the remaining results so the workers can exit.
				close(done)
				stopped = true
				errs = []error{err}
				continue
			}
			errs = append(errs, err)
			continue
		}
		models[result.index] = result.model
	}

	if stopped {
		return nil, errs
	}

	ordered := make([]*Model, 0, len(models))
	for i := range paths {
		if m, ok := models[i]; ok {
			ordered = append(ordered, m)
		}
	}
	return &ModelSet{Models: ordered}, errs
}

// loadModelsSerial loads decks one at a time (fallback when Parallel=false).
func loadModelsSerial(paths []string, load LoadFunc, opts LoadOptions) (*ModelSet, []error) {
	models := make([]*Model, 0, len(paths))
	var errs []error

	for i, path := range paths {
		m, err := load(path)
		if opts.Progress != nil {
			opts.Progress(i+1, len(paths))
		}
		if err != nil {
			err := fmt.Errorf("%s: %w", path, err)
			if opts.ErrorLog != nil {
				fmt.Fprintf(opts.ErrorLog, "Error loading deck: %v\n", err)
			}
			if !opts.SkipErrors {
				return nil, []error{err}
			}
			errs = append(errs, err)
			continue
		}
		models = append(models, m)
	}
	return &ModelSet{Models: models}, errs
}

// DiscoverDecks returns the .inp files under root, in lexical order.
func DiscoverDecks(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".inp") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}
