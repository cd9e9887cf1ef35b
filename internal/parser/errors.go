package parser

import (
	"fmt"

	"github.com/numerics88/inpdeck/internal/command"
)

// Sentinels re-exported from the dispatch engine, for use with errors.Is.
var (
	ErrAborted = command.ErrAborted
	ErrFormat  = command.ErrFormat
	ErrIO      = command.ErrIO
)

// ErrDeck indicates a deck that could not be read; Err carries the line
// number and cause
type ErrDeck struct {
	File string
	Err  error
}

func (e *ErrDeck) Error() string {
	return fmt.Sprintf("error in Abaqus input deck %s: %v", e.File, e.Err)
}

func (e *ErrDeck) Unwrap() error {
	return e.Err
}
