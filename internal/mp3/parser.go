// Package mp3 reads ID3v2 tags and MPEG Layer III stream properties.
package mp3

import (
	"io"

	"github.com/simonhull/loopbar/internal/binary"
	"github.com/simonhull/loopbar/internal/registry"
	"github.com/simonhull/loopbar/internal/types"
)

// parser implements registry.FormatParser for MP3 files.
type parser struct{}

// Parse reads the ID3v2 tag, if any, then the first audio frame.
func (p *parser) Parse(r io.ReaderAt, size int64, path string) (*types.Track, error) {
	sr := binary.NewSafeReader(r, size, path)
	track := types.NewTrack(path, types.FormatMP3, size)

	var tagSize int64
	if head, err := sr.Bytes(0, 3, "ID3 magic"); err == nil && string(head) == "ID3" {
		tagSize, err = parseID3v2(sr, track)
		if err != nil {
			track.Warn("metadata", 0, "ID3v2 parsing failed: %v", err)
		}
	}

	if err := parseTechnicalInfo(sr, tagSize, track); err != nil {
		track.Warn("technical", tagSize, "failed to parse MP3 technical info: %v", err)
	}

	return track, nil
}

func init() {
	registry.Register(types.FormatMP3, &parser{})
}
