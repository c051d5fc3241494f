// Package m4a reads iTunes-style metadata and stream properties from
// MP4 audio files (M4A, M4B).
package m4a

import (
	"fmt"
	"iter"

	"github.com/simonhull/loopbar/internal/binary"
	"github.com/simonhull/loopbar/internal/types"
)

// atom is an MP4 box header.
type atom struct {
	Size     uint64 // including header
	Type     string
	Offset   int64
	Extended bool // 64-bit size
}

func (a *atom) headerSize() int64 {
	if a.Extended {
		return 16
	}
	return 8
}

// DataOffset returns the file offset of the atom payload.
func (a *atom) DataOffset() int64 {
	return a.Offset + a.headerSize()
}

// End returns the file offset just past the atom.
func (a *atom) End() int64 {
	return a.Offset + int64(a.Size)
}

// readAtomHeader reads the atom header at offset. A size of 0 means the atom
// runs to limit.
func readAtomHeader(sr *binary.SafeReader, offset, limit int64) (*atom, error) {
	header, err := sr.Bytes(offset, 8, "atom header")
	if err != nil {
		return nil, err
	}

	a := &atom{
		Size:   uint64(binary.Decode[uint32](header[0:4], binary.BigEndian)),
		Type:   string(header[4:8]),
		Offset: offset,
	}

	switch a.Size {
	case 0:
		a.Size = uint64(limit - offset)
	case 1:
		a.Size, err = binary.Read[uint64](sr, offset+8, "extended atom size")
		if err != nil {
			return nil, err
		}
		a.Extended = true
	}

	if a.Size < uint64(a.headerSize()) {
		return nil, &types.CorruptedFileError{
			Path:   sr.Path(),
			Offset: offset,
			Reason: fmt.Sprintf("invalid atom size %d for %q", a.Size, a.Type),
		}
	}
	if a.End() > limit {
		return nil, &types.CorruptedFileError{
			Path:   sr.Path(),
			Offset: offset,
			Reason: fmt.Sprintf("atom %q overruns its parent", a.Type),
		}
	}

	return a, nil
}

// children iterates the atoms in [start, end). Iteration stops at the first
// malformed header, which is yielded as an error.
func children(sr *binary.SafeReader, start, end int64) iter.Seq2[*atom, error] {
	return func(yield func(*atom, error) bool) {
		for offset := start; offset+8 <= end; {
			a, err := readAtomHeader(sr, offset, end)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(a, nil) {
				return
			}
			offset = a.End()
		}
	}
}

// findAtom returns the first child of type name in [start, end).
func findAtom(sr *binary.SafeReader, start, end int64, name string) (*atom, error) {
	for a, err := range children(sr, start, end) {
		if err != nil {
			return nil, err
		}
		if a.Type == name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("atom %q not found", name)
}

// findPath walks nested atoms from the top level, e.g. "moov", "trak", "mdia".
func findPath(sr *binary.SafeReader, path ...string) (*atom, error) {
	start, end := int64(0), sr.Size()
	var a *atom
	for _, name := range path {
		var err error
		a, err = findAtom(sr, start, end, name)
		if err != nil {
			return nil, err
		}
		start, end = childrenStart(sr, a), a.End()
	}
	return a, nil
}

// childrenStart returns where the child atoms of a begin. The iTunes "meta"
// atom is a full box with 4 bytes of version and flags; the QuickTime variant
// is a plain container whose first child is "hdlr".
func childrenStart(sr *binary.SafeReader, a *atom) int64 {
	if a.Type != "meta" {
		return a.DataOffset()
	}
	if b, err := sr.Bytes(a.DataOffset()+4, 4, "meta child type"); err == nil && string(b) == "hdlr" {
		return a.DataOffset()
	}
	return a.DataOffset() + 4
}
