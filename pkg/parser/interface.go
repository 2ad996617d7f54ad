package parser

import (
	"context"
)

// LineSource provides an iterator over the lines of a dump.
// Implementations must be safe for sequential access (not concurrent).
type LineSource interface {
	// Next returns the next line.
	// Returns io.EOF when no more lines are available.
	Next(ctx context.Context) (*Line, error)

	// Close releases any resources held by the source.
	Close() error
}

// Opener returns a fresh LineSource positioned at the start of the input.
// Each extraction pass calls it once, so the input is re-scanned rather
// than buffered.
type Opener func() (LineSource, error)
