package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/numerics88/inpdeck/internal/command"
	"github.com/numerics88/inpdeck/internal/femodel"
)

// Parser reads Abaqus input decks into finite element models.
//
// An input deck is a text file of keyword sections. A line starting with a
// single '*' opens a section and carries its parameters; the lines that
// follow are the section's data. Lines starting with "**" are comments.
// Unsupported keywords produce warnings, malformed data aborts the parse.
//
// Supported keywords: HEADING, NODE, ELEMENT, NSET, ELSET, MATERIAL with
// ELASTIC, SOLID SECTION, and STEP with STATIC, BOUNDARY, CLOAD and END STEP.
type Parser interface {
	// Parse reads a deck file with default options
	Parse(filename string) (*Deck, error)

	// ParseWithOptions parses with custom options
	ParseWithOptions(filename string, opts ParseOptions) (*Deck, error)

	// ParseContext parses a deck file, stopping early when ctx is cancelled
	ParseContext(ctx context.Context, filename string, opts ParseOptions) (*Deck, error)

	// ParseReader parses a deck from a stream. opts.Size, when known, enables
	// progress reporting.
	ParseReader(ctx context.Context, r io.Reader, opts ParseOptions) (*Deck, error)
}

// ProgressFunc receives the byte offset reached and the total deck size.
// Returning false aborts the parse.
type ProgressFunc func(offset, total int64) bool

// ParseOptions configures parsing behavior
type ParseOptions struct {
	// Debug: emit debug messages to Sink
	Debug bool

	// Sink receives debug and warning messages.
	// Default: nil (slog default logger)
	Sink command.MessageSink

	// Size is the total deck size in bytes, used only for progress.
	// 0 means unknown and suppresses progress. Parse fills it from the file.
	Size int64

	// Progress is polled every ProgressInterval lines
	Progress ProgressFunc

	// ProgressInterval: lines between progress polls
	// Default: 1000
	ProgressInterval int

	// MaxLineLength: longest accepted line; longer lines are format errors
	// Default: 4096
	MaxLineLength int

	// Validate: if true, check the finished model for physical consistency.
	// Elements over nodes the deck never defines read fine but fail here;
	// disable Validate to accept them.
	// Default: true
	Validate bool
}

// DefaultParseOptions returns parse options with defaults
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		Debug:            false,
		ProgressInterval: command.DefaultProgressInterval,
		MaxLineLength:    command.DefaultMaxLineLength,
		Validate:         true,
	}
}

// Deck is the result of reading one input deck.
type Deck struct {
	// Name is the file the deck was read from, empty for streams
	Name string

	Model     *femodel.Model
	Warnings  []string
	LineCount int64
}

// defaultParser implements the Parser interface
type defaultParser struct {
}

// NewParser creates a new deck parser
func NewParser() Parser {
	return &defaultParser{}
}

// Parse reads a deck file with default options
func (p *defaultParser) Parse(filename string) (*Deck, error) {
	return p.ParseWithOptions(filename, DefaultParseOptions())
}

// ParseWithOptions parses with custom options
func (p *defaultParser) ParseWithOptions(filename string, opts ParseOptions) (*Deck, error) {
	return p.ParseContext(context.Background(), filename, opts)
}

// ParseContext opens filename, reads it, and records the file in the model
// history.
func (p *defaultParser) ParseContext(ctx context.Context, filename string, opts ParseOptions) (*Deck, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if opts.Size == 0 {
		if info, err := f.Stat(); err == nil {
			opts.Size = info.Size()
		} else if opts.Sink != nil {
			opts.Sink.Warning(fmt.Sprintf("can't determine file size of %s", filename))
		}
	}

	deck, err := p.ParseReader(ctx, f, opts)
	if err != nil {
		if errors.Is(err, ErrAborted) {
			return nil, err
		}
		return nil, &ErrDeck{File: filename, Err: err}
	}
	deck.Name = filename
	deck.Model.AppendHistory(fmt.Sprintf("Model read from Abaqus input file \"%s\"", filename))
	return deck, nil
}

// ParseReader reads a deck from r into a new model.
func (p *defaultParser) ParseReader(ctx context.Context, r io.Reader, opts ParseOptions) (*Deck, error) {
	model := femodel.New()
	rd, err := NewReader(r, model, opts)
	if err != nil {
		return nil, err
	}
	if err := rd.Read(ctx); err != nil {
		return nil, err
	}
	if opts.Validate {
		if err := model.Validate(); err != nil {
			return nil, fmt.Errorf("validation failed: %w", err)
		}
	}
	return &Deck{
		Model:     model,
		Warnings:  rd.Warnings(),
		LineCount: rd.LineCount(),
	}, nil
}
