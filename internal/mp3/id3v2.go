package mp3

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/simonhull/loopbar/internal/binary"
	"github.com/simonhull/loopbar/internal/types"
)

const id3HeaderSize = 10

// Tag header flags.
const (
	tagFlagUnsync   = 0x80
	tagFlagExtended = 0x40
)

// Frame format flags, per version.
const (
	v3FlagCompressed = 0x0080
	v3FlagEncrypted  = 0x0040

	v4FlagCompressed = 0x0008
	v4FlagEncrypted  = 0x0004
	v4FlagUnsync     = 0x0002
	v4FlagDataLength = 0x0001
)

// id3Header is the fixed 10-byte ID3v2 tag header.
type id3Header struct {
	Version byte
	Flags   byte
	Size    uint32 // excluding header
}

// frame is one ID3v2 frame with its payload.
type frame struct {
	ID    string
	Flags uint16
	Data  []byte
}

// textEncodings maps the ID3v2 encoding byte to a decoder.
//
// UTF-16 with BOM falls back to big-endian when the BOM is missing, which is
// what most taggers emit.
var textEncodings = map[byte]encoding.Encoding{
	0: charmap.ISO8859_1,
	1: unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
	2: unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	3: unicode.UTF8,
}

// parseID3v2 reads the ID3v2 tag at the start of the file into
// track.Metadata and returns the total tag size, header included.
//
// Text frames are stored under their frame ID (e.g. "TIT2"); TXXX frames are
// stored under their description (e.g. "LOOPSTART"); COMM frames are stored
// as "COMMENT".
func parseID3v2(sr *binary.SafeReader, track *types.Track) (int64, error) {
	buf, err := sr.Bytes(0, id3HeaderSize, "ID3v2 header")
	if err != nil {
		return 0, err
	}
	if string(buf[0:3]) != "ID3" {
		return 0, fmt.Errorf("missing ID3 header")
	}

	header := id3Header{
		Version: buf[3],
		Flags:   buf[5],
		Size:    decodeSynchsafe(buf[6:10]),
	}
	tagSize := int64(id3HeaderSize) + int64(header.Size)

	if header.Version != 3 && header.Version != 4 {
		return tagSize, fmt.Errorf("unsupported ID3v2 version 2.%d", header.Version)
	}

	body, err := sr.Bytes(id3HeaderSize, int(header.Size), "ID3v2 tag body")
	if err != nil {
		return tagSize, err
	}
	if header.Version == 3 && header.Flags&tagFlagUnsync != 0 {
		body = resync(body)
	}

	pos := 0
	if header.Flags&tagFlagExtended != 0 {
		pos, err = skipExtendedHeader(body, header.Version)
		if err != nil {
			track.Warn("metadata", id3HeaderSize, "%v", err)
			return tagSize, nil
		}
	}

	for pos+10 <= len(body) {
		if body[pos] == 0 {
			break // padding
		}

		f := frame{
			ID:    string(body[pos : pos+4]),
			Flags: binary.Decode[uint16](body[pos+8:pos+10], binary.BigEndian),
		}
		var size int
		if header.Version == 4 {
			size = int(decodeSynchsafe(body[pos+4 : pos+8]))
		} else {
			size = int(binary.Decode[uint32](body[pos+4:pos+8], binary.BigEndian))
		}

		offset := int64(id3HeaderSize + pos)
		pos += 10
		if size > len(body)-pos {
			track.Warn("metadata", offset, "frame %s overruns tag (%d bytes)", f.ID, size)
			break
		}
		f.Data = body[pos : pos+size]
		pos += size

		data, err := framePayload(f, header.Version)
		if err != nil {
			track.Warn("metadata", offset, "frame %s: %v", f.ID, err)
			continue
		}
		f.Data = data

		if err := addFrame(f, track); err != nil {
			track.Warn("metadata", offset, "frame %s: %v", f.ID, err)
		}
	}

	return tagSize, nil
}

func skipExtendedHeader(body []byte, version byte) (int, error) {
	if len(body) < 4 {
		return 0, fmt.Errorf("truncated extended header")
	}
	var n int
	if version == 4 {
		n = int(decodeSynchsafe(body[0:4]))
	} else {
		n = int(binary.Decode[uint32](body[0:4], binary.BigEndian)) + 4
	}
	if n > len(body) {
		return 0, fmt.Errorf("extended header overruns tag (%d bytes)", n)
	}
	return n, nil
}

// framePayload strips per-frame format wrappers. Compressed and encrypted
// frames are rejected.
func framePayload(f frame, version byte) ([]byte, error) {
	data := f.Data
	if version == 3 {
		if f.Flags&(v3FlagCompressed|v3FlagEncrypted) != 0 {
			return nil, fmt.Errorf("compressed or encrypted frames are not supported")
		}
		return data, nil
	}

	if f.Flags&(v4FlagCompressed|v4FlagEncrypted) != 0 {
		return nil, fmt.Errorf("compressed or encrypted frames are not supported")
	}
	if f.Flags&v4FlagDataLength != 0 {
		if len(data) < 4 {
			return nil, fmt.Errorf("truncated data length indicator")
		}
		data = data[4:]
	}
	if f.Flags&v4FlagUnsync != 0 {
		data = resync(data)
	}
	return data, nil
}

// addFrame stores a text-bearing frame in track.Metadata. Frames that carry
// no text (APIC, PRIV, ...) are ignored.
func addFrame(f frame, track *types.Track) error {
	switch {
	case f.ID == "TXXX":
		parts, err := decodeTextFrame(f.Data)
		if err != nil {
			return err
		}
		if len(parts) == 0 || parts[0] == "" {
			return fmt.Errorf("empty TXXX description")
		}
		track.Metadata.Add(parts[0], parts[1:]...)

	case f.ID == "COMM":
		// encoding, 3-byte language, then description and text
		if len(f.Data) < 4 {
			return fmt.Errorf("COMM frame too short")
		}
		payload := append([]byte{f.Data[0]}, f.Data[4:]...)
		parts, err := decodeTextFrame(payload)
		if err != nil {
			return err
		}
		if len(parts) > 1 {
			track.Metadata.Add("COMMENT", parts[1])
		}

	case strings.HasPrefix(f.ID, "T"):
		parts, err := decodeTextFrame(f.Data)
		if err != nil {
			return err
		}
		track.Metadata.Add(f.ID, parts...)
	}
	return nil
}

// decodeTextFrame decodes an encoding-prefixed payload and splits it on NUL
// separators. ID3v2.4 uses the separator for multiple values; TXXX and COMM
// use it between description and value.
func decodeTextFrame(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty text frame")
	}
	enc, ok := textEncodings[data[0]]
	if !ok {
		return nil, fmt.Errorf("unknown text encoding %d", data[0])
	}

	decoded, err := enc.NewDecoder().Bytes(data[1:])
	if err != nil {
		return nil, fmt.Errorf("decode text: %w", err)
	}

	text := strings.TrimRight(string(decoded), "\x00")
	if text == "" {
		return nil, nil
	}
	parts := strings.Split(text, "\x00")
	for i, p := range parts {
		// ID3v2.3 UTF-16 strings each carry their own BOM.
		parts[i] = strings.TrimPrefix(p, "\uFEFF")
	}
	return parts, nil
}

// decodeSynchsafe decodes a 28-bit integer stored 7 bits per byte.
func decodeSynchsafe(b []byte) uint32 {
	return uint32(b[0]&0x7F)<<21 |
		uint32(b[1]&0x7F)<<14 |
		uint32(b[2]&0x7F)<<7 |
		uint32(b[3]&0x7F)
}

// resync reverses the unsynchronisation scheme (0xFF 0x00 -> 0xFF).
func resync(data []byte) []byte {
	if !bytes.Contains(data, []byte{0xFF, 0x00}) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		out = append(out, data[i])
		if data[i] == 0xFF && i+1 < len(data) && data[i+1] == 0x00 {
			i++
		}
	}
	return out
}
