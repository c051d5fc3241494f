package ogg

import (
	"fmt"

	"github.com/simonhull/loopbar/internal/binary"
	"github.com/simonhull/loopbar/internal/types"
	"github.com/simonhull/loopbar/internal/vorbis"
)

// Opus always decodes at 48 kHz; the input rate in OpusHead is informational.
const opusSampleRate = 48000

// parseOpusHead reads the OpusHead identification header.
func parseOpusHead(data []byte, track *types.Track) error {
	if len(data) < 19 {
		return fmt.Errorf("OpusHead packet too short: %d bytes", len(data))
	}
	if string(data[0:8]) != "OpusHead" {
		return fmt.Errorf("invalid OpusHead magic: %q", data[0:8])
	}
	if version := data[8]; version>>4 != 0 {
		return fmt.Errorf("unsupported Opus version: %d", version)
	}

	track.Audio.Codec = "Opus"
	track.Audio.Container = containerOgg
	track.Audio.SampleRate = opusSampleRate
	track.Audio.Channels = int(data[9])
	track.Audio.VBR = true

	if input := binary.Decode[uint32](data[12:16], binary.LittleEndian); input != 0 && input != opusSampleRate {
		track.Warn("technical", 0, "original sample rate was %d Hz (Opus decodes at 48 kHz)", input)
	}

	return nil
}

// parseOpusTags reads the OpusTags header into track.Metadata.
func parseOpusTags(data []byte, track *types.Track, offset int64) error {
	if len(data) < 8 || string(data[0:8]) != "OpusTags" {
		return fmt.Errorf("missing OpusTags magic")
	}
	return vorbis.ParseBlock(data[8:], track, offset)
}

// preSkip returns the number of priming samples to drop from the granule
// position when computing duration.
func preSkip(head []byte) int64 {
	if len(head) < 12 {
		return 0
	}
	return int64(binary.Decode[uint16](head[10:12], binary.LittleEndian))
}
