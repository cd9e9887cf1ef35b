package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/numerics88/inpdeck/pkg/inp"
)

func safeParseDeck(path string) (*inp.Model, error) {
	parser := inp.NewParser()

	// Give up on decks that take too long to read
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	model, err := parser.ParseContext(ctx, path, inp.DefaultParseOptions())
	if err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("deck file not found: %s", path)
		case errors.Is(err, inp.ErrAborted):
			return nil, fmt.Errorf("reading %s timed out", path)
		case errors.Is(err, inp.ErrFormat):
			// The message names the offending line
			log.Printf("Malformed deck: %v", err)
		}
		return nil, err
	}

	// Non-fatal problems are collected as warnings
	for _, w := range model.Warnings() {
		log.Printf("Warning: %s", w)
	}
	if n := model.Unassigned(); n > 0 {
		log.Printf("Warning: %s has %d elements without a material", path, n)
	}

	return model, nil
}

func main() {
	// Try to parse a deck
	model, err := safeParseDeck("femur.inp")
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}

	fmt.Printf("Successfully loaded deck: %s\n", model.Name())
	fmt.Printf("Elements: %d\n", model.ElementCount())

	// Try to parse a non-existent deck
	_, err = safeParseDeck("NONEXISTENT.inp")
	if err != nil {
		log.Printf("Expected error: %v", err)
	}
}
