package loopbar

import (
	"io"

	"github.com/simonhull/loopbar/internal/registry"
	"github.com/simonhull/loopbar/internal/types"
)

// Format is the detected audio container.
type Format = types.Format

// Detected formats. WAV and AIFF are recognised but not parsed.
const (
	FormatUnknown = types.FormatUnknown
	FormatFLAC    = types.FormatFLAC
	FormatMP3     = types.FormatMP3
	FormatM4A     = types.FormatM4A
	FormatM4B     = types.FormatM4B
	FormatOgg     = types.FormatOgg
	FormatOpus    = types.FormatOpus
	FormatWAV     = types.FormatWAV
	FormatAIFF    = types.FormatAIFF
)

// DetectFormat identifies the container from its magic bytes.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) {
	return types.DetectFormat(r, size, path)
}

// Supported reports whether files of format f can be opened.
func Supported(f Format) bool {
	return registry.Get(f) != nil
}
