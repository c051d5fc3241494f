// Package registry maps audio formats to their parsers.
package registry

import (
	"io"
	"sync"

	"github.com/simonhull/loopbar/internal/types"
)

// FormatParser is the interface all format parsers implement.
type FormatParser interface {
	// Parse reads metadata and stream properties from an audio file.
	Parse(r io.ReaderAt, size int64, path string) (*types.Track, error)
}

var (
	mu      sync.RWMutex
	parsers = make(map[types.Format]FormatParser)
)

// Register registers a parser for a format.
// Format packages call this from their init functions.
func Register(format types.Format, parser FormatParser) {
	mu.Lock()
	defer mu.Unlock()
	parsers[format] = parser
}

// Get returns the parser for a given format, or nil.
func Get(format types.Format) FormatParser {
	mu.RLock()
	defer mu.RUnlock()
	return parsers[format]
}

// Formats returns every format that currently has a parser.
func Formats() []types.Format {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]types.Format, 0, len(parsers))
	for f := range parsers {
		out = append(out, f)
	}
	return out
}
