// Package binary provides type-safe binary reading primitives with bounds checking
package binary

import (
	"errors"
	"fmt"
	"io"
)

// OutOfBoundsError is returned when a read would reach outside the file.
type OutOfBoundsError struct {
	Path   string
	What   string
	Offset int64
	Length int
	Size   int64
}

func (e *OutOfBoundsError) Error() string {
	if e.Offset < 0 || e.Offset >= e.Size {
		return fmt.Sprintf("%s: offset %d out of bounds (file size: %d) while reading %s",
			e.Path, e.Offset, e.Size, e.What)
	}
	return fmt.Sprintf("%s: read of %d bytes at offset %d would exceed file size %d while reading %s",
		e.Path, e.Length, e.Offset, e.Size, e.What)
}

// SafeReader wraps io.ReaderAt with bounds checking and helpful error messages.
type SafeReader struct {
	r    io.ReaderAt
	path string
	size int64
}

// NewSafeReader creates a new SafeReader.
func NewSafeReader(r io.ReaderAt, size int64, path string) *SafeReader {
	return &SafeReader{
		r:    r,
		size: size,
		path: path,
	}
}

// Path returns the file path associated with this reader.
func (sr *SafeReader) Path() string {
	return sr.path
}

// Size returns the total number of readable bytes.
func (sr *SafeReader) Size() int64 {
	return sr.size
}

// ReadAt fills b from offset off. what names the structure being read and
// ends up in error messages.
func (sr *SafeReader) ReadAt(b []byte, off int64, what string) error {
	if off < 0 || off >= sr.size || off+int64(len(b)) > sr.size {
		return &OutOfBoundsError{
			Path:   sr.path,
			What:   what,
			Offset: off,
			Length: len(b),
			Size:   sr.size,
		}
	}

	n, err := sr.r.ReadAt(b, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: read %s at offset %d: %w", sr.path, what, off, err)
	}
	if n < len(b) {
		return fmt.Errorf("%s: short read for %s at offset %d: got %d bytes, expected %d",
			sr.path, what, off, n, len(b))
	}

	return nil
}

// Bytes reads n bytes at off into a fresh slice.
func (sr *SafeReader) Bytes(off int64, n int, what string) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%s: negative length %d for %s", sr.path, n, what)
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if err := sr.ReadAt(buf, off, what); err != nil {
		return nil, err
	}
	return buf, nil
}
