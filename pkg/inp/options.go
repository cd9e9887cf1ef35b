package inp

import (
	"io"
	"log/slog"
	"runtime"

	"github.com/numerics88/inpdeck/internal/command"
	"github.com/numerics88/inpdeck/internal/parser"
)

// ParseOptions configures parsing behavior.
type ParseOptions struct {
	// Debug logs every dispatched keyword at debug level.
	Debug bool

	// Logger receives warnings and debug messages. Nil means slog.Default().
	Logger *slog.Logger

	// Progress is called every ProgressInterval lines with the bytes read and
	// the file size. Returning false aborts the parse with ErrAborted.
	Progress func(offset, total int64) bool

	// Size is the total byte length of a stream given to ParseReader, used
	// as the progress total. Zero means unknown and disables progress
	// calls. File parses fill it from the file when left at zero.
	Size int64

	// ProgressInterval is the number of lines between progress calls.
	ProgressInterval int

	// MaxLineLength is the longest accepted line in bytes.
	MaxLineLength int

	// Validate checks the finished model for physical consistency and
	// fails the parse when it is not. Elements referring to nodes that are
	// never defined fail validation even though the deck itself reads
	// cleanly; set Validate to false to accept such decks.
	Validate bool
}

// DefaultParseOptions returns default options.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		Debug:            false,
		Logger:           nil,
		ProgressInterval: command.DefaultProgressInterval,
		MaxLineLength:    command.DefaultMaxLineLength,
		Validate:         true,
	}
}

func (o ParseOptions) internal() parser.ParseOptions {
	opts := parser.DefaultParseOptions()
	opts.Debug = o.Debug
	opts.Sink = command.SlogSink(o.Logger)
	opts.Progress = o.Progress
	opts.Size = o.Size
	opts.Validate = o.Validate
	if o.ProgressInterval > 0 {
		opts.ProgressInterval = o.ProgressInterval
	}
	if o.MaxLineLength > 0 {
		opts.MaxLineLength = o.MaxLineLength
	}
	return opts
}

// LoadOptions controls parallel loading behavior and error handling.
type LoadOptions struct {
	// Parallel enables concurrent deck loading.
	Parallel bool

	// Workers specifies the number of loader goroutines.
	// If 0, defaults to runtime.NumCPU().
	Workers int

	// SkipErrors causes loading to continue when individual decks fail.
	// When false, the first error stops loading and is returned alone.
	SkipErrors bool

	// Parse is passed to the parser for every deck.
	Parse ParseOptions

	// Progress is called after each deck is loaded, successfully or not,
	// with the number of decks processed so far.
	Progress func(loaded, total int)

	// ErrorLog receives one line per failed deck.
	ErrorLog io.Writer
}

// DefaultLoadOptions returns load options with sensible defaults.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Parallel:   true,
		Workers:    runtime.NumCPU(),
		SkipErrors: true,
		Parse:      DefaultParseOptions(),
	}
}
