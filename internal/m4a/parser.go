package m4a

import (
	"io"

	"github.com/simonhull/loopbar/internal/binary"
	"github.com/simonhull/loopbar/internal/registry"
	"github.com/simonhull/loopbar/internal/types"
)

// parser implements registry.FormatParser for M4A and M4B files.
type parser struct{}

// Parse reads moov/udta/meta/ilst and the first audio track.
func (p *parser) Parse(r io.ReaderAt, size int64, path string) (*types.Track, error) {
	format, err := types.DetectFormat(r, size, path)
	if err != nil {
		return nil, err
	}

	sr := binary.NewSafeReader(r, size, path)
	track := types.NewTrack(path, format, size)
	track.Audio.Container = "MP4"

	moov, err := findAtom(sr, 0, size, "moov")
	if err != nil {
		return nil, &types.CorruptedFileError{Path: path, Reason: "missing moov atom"}
	}

	if ilst, err := findPath(sr, "moov", "udta", "meta", "ilst"); err == nil {
		parseIlst(sr, ilst, track)
	}

	if err := parseTechnicalInfo(sr, moov, track); err != nil {
		track.Warn("technical", moov.Offset, "%v", err)
	}

	return track, nil
}

func init() {
	p := &parser{}
	registry.Register(types.FormatM4A, p)
	registry.Register(types.FormatM4B, p)
}
