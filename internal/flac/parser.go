// Package flac reads STREAMINFO and VORBIS_COMMENT blocks from FLAC files.
package flac

import (
	"io"
	"time"

	"github.com/simonhull/loopbar/internal/binary"
	"github.com/simonhull/loopbar/internal/registry"
	"github.com/simonhull/loopbar/internal/types"
	"github.com/simonhull/loopbar/internal/vorbis"
)

// Metadata block types
const (
	blockTypeStreamInfo    = 0
	blockTypeVorbisComment = 4
)

const streamInfoSize = 34

// parser implements registry.FormatParser for FLAC files
type parser struct{}

// Parse walks the metadata blocks that follow the "fLaC" marker.
func (p *parser) Parse(r io.ReaderAt, size int64, path string) (*types.Track, error) {
	sr := binary.NewSafeReader(r, size, path)

	magic, err := sr.Bytes(0, 4, "FLAC magic bytes")
	if err != nil {
		return nil, err
	}
	if string(magic) != "fLaC" {
		return nil, &types.CorruptedFileError{Path: path, Reason: "invalid FLAC magic bytes"}
	}

	track := types.NewTrack(path, types.FormatFLAC, size)
	track.Audio.Container = "FLAC"
	track.Audio.Codec = "FLAC"
	track.Audio.Lossless = true

	offset := int64(4)
	for offset < size {
		header, err := binary.Read[uint32](sr, offset, "metadata block header")
		if err != nil {
			track.Warn("metadata", offset, "failed to read metadata block header: %v", err)
			break
		}

		isLast := header>>31 == 1
		blockType := uint8((header >> 24) & 0x7F)
		blockLength := int64(header & 0x00FFFFFF)
		offset += 4

		switch blockType {
		case blockTypeStreamInfo:
			if err := parseStreamInfo(sr, offset, blockLength, track); err != nil {
				track.Warn("technical", offset, "failed to parse STREAMINFO: %v", err)
			}
		case blockTypeVorbisComment:
			if err := parseVorbisComment(sr, offset, blockLength, track); err != nil {
				track.Warn("metadata", offset, "failed to parse Vorbis comments: %v", err)
			}
		}

		offset += blockLength
		if isLast {
			break
		}
	}

	return track, nil
}

// parseStreamInfo extracts stream properties from the STREAMINFO block.
//
// Bytes 10-17 pack sample rate (20 bits), channels-1 (3 bits),
// bits per sample-1 (5 bits) and total samples (36 bits), big-endian.
func parseStreamInfo(sr *binary.SafeReader, offset, blockLength int64, track *types.Track) error {
	if blockLength != streamInfoSize {
		return &types.CorruptedFileError{
			Path:   sr.Path(),
			Offset: offset,
			Reason: "STREAMINFO must be 34 bytes",
		}
	}

	packed, err := binary.Read[uint64](sr, offset+10, "STREAMINFO sample fields")
	if err != nil {
		return err
	}

	sampleRate := (packed >> 44) & 0xFFFFF
	channels := ((packed >> 41) & 0x7) + 1
	bitsPerSample := ((packed >> 36) & 0x1F) + 1
	totalSamples := packed & 0xFFFFFFFFF

	track.Audio.SampleRate = int(sampleRate)
	track.Audio.Channels = int(channels)
	track.Audio.BitDepth = int(bitsPerSample)

	if sampleRate > 0 && totalSamples > 0 {
		seconds := float64(totalSamples) / float64(sampleRate)
		track.Audio.Duration = time.Duration(seconds * float64(time.Second))
		track.Audio.Bitrate = int(float64(track.Size) * 8 / seconds)
	}

	return nil
}

// parseVorbisComment reads the VORBIS_COMMENT block into track.Metadata.
func parseVorbisComment(sr *binary.SafeReader, offset, blockLength int64, track *types.Track) error {
	data, err := sr.Bytes(offset, int(blockLength), "VORBIS_COMMENT block")
	if err != nil {
		return err
	}
	return vorbis.ParseBlock(data, track, offset)
}

func init() {
	registry.Register(types.FormatFLAC, &parser{})
}
