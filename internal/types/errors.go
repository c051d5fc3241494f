package types

import (
	"fmt"

	"github.com/simonhull/loopbar/internal/binary"
)

// OutOfBoundsError is returned when a read would reach outside the file.
type OutOfBoundsError = binary.OutOfBoundsError

// UnsupportedFormatError is returned when no parser handles the file.
type UnsupportedFormatError struct {
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: unsupported format: %s", e.Path, e.Reason)
}

// CorruptedFileError is returned when the container structure is invalid.
type CorruptedFileError struct {
	Path   string
	Reason string
	Offset int64
}

func (e *CorruptedFileError) Error() string {
	return fmt.Sprintf("%s: corrupted file at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// Warning represents a non-fatal issue encountered during parsing.
//
// A damaged comment block or an unreadable frame header yields a warning and
// whatever data could still be read; only an unreadable container is an error.
type Warning struct {
	// Stage where the warning occurred: "metadata" or "technical".
	Stage string

	Message string

	// File offset where the issue occurred (0 if not applicable)
	Offset int64
}

// String returns a human-readable warning message.
func (w Warning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("%s (at offset %d): %s", w.Stage, w.Offset, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}
