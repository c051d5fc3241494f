// Package types provides the data model shared by the format parsers.
//
// A parser turns an audio container into a Track: the ordered metadata
// fields, the stream properties and any warnings collected on the way.
package types

import "fmt"

// Track is the parser-level result for one audio file.
type Track struct {
	Path     string
	Metadata Metadata
	Warnings []Warning
	Audio    AudioInfo
	Format   Format
	Size     int64
}

// NewTrack returns an empty Track for the given file.
func NewTrack(path string, format Format, size int64) *Track {
	return &Track{
		Path:   path,
		Format: format,
		Size:   size,
	}
}

// Warn records a non-fatal issue.
func (t *Track) Warn(stage string, offset int64, format string, args ...any) {
	t.Warnings = append(t.Warnings, Warning{
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
		Offset:  offset,
	})
}
