// Package vorbis provides shared Vorbis comment parsing utilities.
//
// Vorbis comments are used by FLAC, Ogg Vorbis and Ogg Opus. The layout is
// identical everywhere: a vendor string followed by a counted list of UTF-8
// "KEY=VALUE" strings, all lengths 32-bit little-endian.
package vorbis

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/simonhull/loopbar/internal/types"
)

// ParseComment splits a single "KEY=VALUE" comment.
//
// Only the first '=' separates; values may contain further '=' signs.
// Returns an error if there is no separator or the key is empty.
func ParseComment(comment string) (key, value string, err error) {
	key, value, ok := strings.Cut(comment, "=")
	if !ok {
		return "", "", fmt.Errorf("missing '=' in comment: %q", comment)
	}
	if key == "" {
		return "", "", fmt.Errorf("empty field name in comment: %q", comment)
	}
	return key, value, nil
}

// ParseBlock decodes a comment block (vendor string, count, comments) and
// appends every well-formed field to track.Metadata in file order.
//
// data must start at the vendor length field, i.e. after any codec-specific
// packet magic. Truncated comments stop parsing with a warning; malformed
// comments are skipped with a warning. The returned error is reserved for a
// block too short to hold its own header.
func ParseBlock(data []byte, track *types.Track, offset int64) error {
	pos := 0

	vendorLen, ok := readLength(data, pos)
	if !ok {
		return fmt.Errorf("truncated vendor length")
	}
	pos += 4
	if uint64(pos)+uint64(vendorLen) > uint64(len(data)) {
		return fmt.Errorf("truncated vendor string")
	}
	pos += int(vendorLen)

	count, ok := readLength(data, pos)
	if !ok {
		return fmt.Errorf("truncated comment count")
	}
	pos += 4

	for i := uint32(0); i < count; i++ {
		length, ok := readLength(data, pos)
		if !ok {
			track.Warn("metadata", offset+int64(pos), "truncated comment %d (missing length field)", i)
			break
		}
		pos += 4

		if uint64(pos)+uint64(length) > uint64(len(data)) {
			track.Warn("metadata", offset+int64(pos), "truncated comment %d data (expected %d bytes)", i, length)
			break
		}
		comment := string(data[pos : pos+int(length)])
		pos += int(length)

		key, value, err := ParseComment(comment)
		if err != nil {
			track.Warn("metadata", 0, "invalid Vorbis comment: %v", err)
			continue
		}
		track.Metadata.Add(key, value)
	}

	return nil
}

func readLength(data []byte, pos int) (uint32, bool) {
	if pos+4 > len(data) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(data[pos : pos+4]), true
}
