package ogg

import (
	"fmt"
	"io"
	"time"

	"github.com/simonhull/loopbar/internal/binary"
	"github.com/simonhull/loopbar/internal/registry"
	"github.com/simonhull/loopbar/internal/types"
)

const containerOgg = "Ogg"

// parser implements registry.FormatParser for Ogg Vorbis and Ogg Opus.
type parser struct{}

// Parse reads the identification and comment packets of the first logical
// stream and derives the duration from the last granule position.
func (p *parser) Parse(r io.ReaderAt, size int64, path string) (*types.Track, error) {
	sr := binary.NewSafeReader(r, size, path)

	magic, err := sr.Bytes(0, 4, "Ogg magic bytes")
	if err != nil {
		return nil, fmt.Errorf("read Ogg magic: %w", err)
	}
	if string(magic) != "OggS" {
		return nil, &types.CorruptedFileError{Path: path, Reason: "invalid Ogg magic bytes"}
	}

	packets := newPacketReader(sr)
	head, err := packets.next()
	if err != nil {
		return nil, fmt.Errorf("read identification packet: %w", err)
	}

	var track *types.Track
	var skip int64

	switch {
	case len(head) >= 8 && string(head[:8]) == "OpusHead":
		track = types.NewTrack(path, types.FormatOpus, size)
		if err := parseOpusHead(head, track); err != nil {
			return nil, &types.CorruptedFileError{Path: path, Reason: err.Error()}
		}
		skip = preSkip(head)
	case len(head) >= 7 && head[0] == vorbisPacketIdentification && string(head[1:7]) == "vorbis":
		track = types.NewTrack(path, types.FormatOgg, size)
		if err := parseVorbisIdentification(head, track); err != nil {
			return nil, &types.CorruptedFileError{Path: path, Reason: err.Error()}
		}
	default:
		return nil, &types.UnsupportedFormatError{Path: path, Reason: "unknown Ogg codec"}
	}

	offset := packets.offset
	comments, err := packets.next()
	switch {
	case err != nil:
		track.Warn("metadata", offset, "failed to read comment packet: %v", err)
	case track.Format == types.FormatOpus:
		if err := parseOpusTags(comments, track, offset); err != nil {
			track.Warn("metadata", offset, "failed to parse OpusTags: %v", err)
		}
	default:
		if err := parseVorbisComment(comments, track, offset); err != nil {
			track.Warn("metadata", offset, "failed to parse Vorbis comment header: %v", err)
		}
	}

	if err := setDuration(sr, track, skip); err != nil {
		track.Warn("technical", 0, "failed to calculate duration: %v", err)
	}

	return track, nil
}

// setDuration derives the duration from the final granule position and,
// for Opus, estimates the bitrate the header does not carry.
func setDuration(sr *binary.SafeReader, track *types.Track, skip int64) error {
	if track.Audio.SampleRate <= 0 {
		return fmt.Errorf("sample rate is zero")
	}

	granule, err := lastGranulePosition(sr)
	if err != nil {
		return err
	}
	granule -= skip
	if granule <= 0 {
		return fmt.Errorf("granule position not set")
	}

	seconds := float64(granule) / float64(track.Audio.SampleRate)
	track.Audio.Duration = time.Duration(seconds * float64(time.Second))
	if track.Audio.Bitrate == 0 {
		track.Audio.Bitrate = int(float64(track.Size) * 8 / seconds)
	}
	return nil
}

func init() {
	p := &parser{}
	registry.Register(types.FormatOgg, p)
	registry.Register(types.FormatOpus, p)
}
