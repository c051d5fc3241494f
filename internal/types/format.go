package types

import (
	"io"

	"github.com/simonhull/loopbar/internal/binary"
)

// Format represents the detected audio container.
//
//go:generate stringer -type=Format -linecomment
type Format int

const (
	// FormatUnknown represents an unknown or unsupported format.
	FormatUnknown Format = iota // Unknown
	// FormatFLAC represents FLAC audio files.
	FormatFLAC // FLAC
	// FormatMP3 represents MP3 audio files.
	FormatMP3 // MP3
	// FormatM4A represents M4A audio files.
	FormatM4A // M4A
	// FormatM4B represents M4B audiobook files.
	FormatM4B // M4B
	// FormatOgg represents Ogg Vorbis audio files.
	FormatOgg // Ogg Vorbis
	// FormatOpus represents Opus audio files.
	FormatOpus // Opus
	// FormatWAV represents WAV audio files. Detected but not parsed.
	FormatWAV // WAV
	// FormatAIFF represents AIFF audio files. Detected but not parsed.
	FormatAIFF // AIFF
)

var formatNames = [...]string{
	FormatUnknown: "Unknown",
	FormatFLAC:    "FLAC",
	FormatMP3:     "MP3",
	FormatM4A:     "M4A",
	FormatM4B:     "M4B",
	FormatOgg:     "Ogg Vorbis",
	FormatOpus:    "Opus",
	FormatWAV:     "WAV",
	FormatAIFF:    "AIFF",
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return formatNames[FormatUnknown]
	}
	return formatNames[f]
}

// Extensions returns common file extensions for this format.
func (f Format) Extensions() []string {
	switch f {
	case FormatFLAC:
		return []string{".flac"}
	case FormatMP3:
		return []string{".mp3"}
	case FormatM4A:
		return []string{".m4a", ".mp4"}
	case FormatM4B:
		return []string{".m4b"}
	case FormatOgg:
		return []string{".ogg", ".oga"}
	case FormatOpus:
		return []string{".opus"}
	case FormatWAV:
		return []string{".wav"}
	case FormatAIFF:
		return []string{".aiff", ".aif"}
	default:
		return nil
	}
}

// DetectFormat determines the audio container by examining magic bytes.
//
// Detection looks only at the file signature; it does not validate the rest
// of the structure.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) {
	if size < 4 {
		return FormatUnknown, &UnsupportedFormatError{Path: path, Reason: "file too small"}
	}

	sr := binary.NewSafeReader(r, size, path)

	head := make([]byte, 12)
	if size < int64(len(head)) {
		head = head[:size]
	}
	if err := sr.ReadAt(head, 0, "file magic bytes"); err != nil {
		return FormatUnknown, &UnsupportedFormatError{Path: path, Reason: "failed to read file header"}
	}
	magic := string(head[:4])

	switch {
	case magic == "fLaC":
		return FormatFLAC, nil
	case magic[:3] == "ID3":
		return FormatMP3, nil
	case head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		// Bare MPEG frame sync, no ID3v2 tag.
		return FormatMP3, nil
	case magic == "OggS":
		return detectOggCodec(sr, size), nil
	case len(head) == 12 && magic == "RIFF" && string(head[8:12]) == "WAVE":
		return FormatWAV, nil
	case len(head) == 12 && magic == "FORM" && (string(head[8:12]) == "AIFF" || string(head[8:12]) == "AIFC"):
		return FormatAIFF, nil
	case len(head) == 12 && string(head[4:8]) == "ftyp":
		return detectMP4Brand(path, string(head[8:12]))
	}

	return FormatUnknown, &UnsupportedFormatError{Path: path, Reason: "unsupported file format"}
}

// detectOggCodec peeks into the first page payload for the OpusHead marker.
// The first packet starts after the 27-byte page header and the segment table.
func detectOggCodec(sr *binary.SafeReader, size int64) Format {
	segCount, err := binary.Read[uint8](sr, 26, "segment count")
	if err != nil {
		return FormatOgg
	}
	packetOffset := int64(27) + int64(segCount)
	if packetOffset+8 > size {
		return FormatOgg
	}
	codecMagic := make([]byte, 8)
	if err := sr.ReadAt(codecMagic, packetOffset, "codec magic"); err == nil && string(codecMagic) == "OpusHead" {
		return FormatOpus
	}
	return FormatOgg
}

func detectMP4Brand(path, brand string) (Format, error) {
	switch brand {
	case "M4B ":
		return FormatM4B, nil
	case "M4A ", "mp42", "isom", "mp41", "dash":
		return FormatM4A, nil
	}
	return FormatUnknown, &UnsupportedFormatError{Path: path, Reason: "unsupported file brand " + brand}
}
