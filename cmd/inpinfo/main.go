// Command inpinfo reads Abaqus input decks and prints a summary of each
// model.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/numerics88/inpdeck/internal/cli"
	"github.com/numerics88/inpdeck/internal/report"
	"github.com/numerics88/inpdeck/pkg/inp"
)

func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitFailure)
	}
}

// contextParser parses under ctx so an interrupt aborts the deck being read.
type contextParser struct {
	inp.Parser
	ctx context.Context
}

func (p contextParser) ParseWithOptions(filename string, opts inp.ParseOptions) (*inp.Model, error) {
	return p.Parser.ParseContext(p.ctx, filename, opts)
}

// run parses the command line, loads every deck and writes one report per
// model to outW. Logs go to errW.
func run(ctx context.Context, outW, errW io.Writer, args []string) error {
	opts, shouldExit, err := cli.Parse(args, outW, ".")
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}
	cfg := opts.Config
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, errW)

	paths, err := expandPaths(opts.Paths)
	if err != nil {
		return &cli.ExitError{Code: cli.ExitFailure, Message: err.Error()}
	}
	if len(paths) == 0 {
		return &cli.ExitError{Code: cli.ExitFailure, Message: "no .inp files found"}
	}
	if opts.WritePath != "" && len(paths) != 1 {
		return &cli.ExitError{Code: cli.ExitUsage, Message: fmt.Sprintf("-write needs exactly one deck, %d found", len(paths))}
	}
	logger.Debug("Decks found.", "count", len(paths))

	loadOpts := cfg.LoadOptions()
	loadOpts.Parse.Logger = logger
	loadOpts.Progress = func(loaded, total int) {
		logger.Debug("Deck loaded.", "loaded", loaded, "total", total)
	}

	parser := contextParser{Parser: inp.NewParser(), ctx: ctx}
	load := inp.ParserLoader(parser, loadOpts.Parse)
	if cfg.Store != "" {
		store, err := inp.OpenStore(cfg.Store)
		if err != nil {
			return &cli.ExitError{Code: cli.ExitFailure, Message: err.Error()}
		}
		defer store.Close()
		store.Logger = logger
		load = store.Loader(parser, loadOpts.Parse)
	}
	if cfg.CacheMemory > 0 {
		load = cachedLoader(inp.NewModelCache(cfg.CacheMemory), load)
	}

	set, errs := inp.LoadModelsWith(paths, load, loadOpts)
	for _, err := range errs {
		if errors.Is(err, inp.ErrAborted) || ctx.Err() != nil {
			return &cli.ExitError{Code: cli.ExitAborted, Message: "aborted"}
		}
	}
	if set == nil {
		return &cli.ExitError{Code: cli.ExitFailure, Message: errs[0].Error()}
	}
	for _, err := range errs {
		logger.Error("Failed to read deck.", "error", err)
	}

	for _, m := range set.Models {
		if err := report.Render(outW, report.Format(cfg.Format), report.Summarize(m)); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	if opts.WritePath != "" && len(set.Models) == 1 {
		if err := writeDeck(opts.WritePath, set.Models[0]); err != nil {
			return &cli.ExitError{Code: cli.ExitFailure, Message: err.Error()}
		}
		logger.Info("Deck written.", "path", opts.WritePath)
	}

	if len(errs) > 0 {
		return &cli.ExitError{Code: cli.ExitFailure, Message: fmt.Sprintf("%d of %d decks failed", len(errs), len(paths))}
	}
	return nil
}

// expandPaths replaces each directory with the decks found below it.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := inp.DiscoverDecks(arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	return paths, nil
}

// cachedLoader serves repeated paths from cache.
func cachedLoader(cache *inp.ModelCache, load inp.LoadFunc) inp.LoadFunc {
	return func(path string) (*inp.Model, error) {
		return cache.Get(path, func() (*inp.Model, error) {
			return load(path)
		})
	}
}

func writeDeck(path string, m *inp.Model) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := inp.Write(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
