package mp3

import (
	"fmt"
	"time"

	"github.com/simonhull/loopbar/internal/binary"
	"github.com/simonhull/loopbar/internal/types"
)

// How far past the tag to look for the first frame.
const frameSearchLimit = 64 * 1024

// MPEG version IDs as encoded in the frame header.
const (
	mpeg25 = 0
	mpeg2  = 2
	mpeg1  = 3
)

// Layer III bitrates in kbps, indexed by [mpeg1?0:1][bitrate index].
var bitrateTable = [2][16]int{
	{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0},
	{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0},
}

// Sample rates in Hz, indexed by [version ID][sample rate index].
var sampleRateTable = [4][3]int{
	mpeg25: {11025, 12000, 8000},
	mpeg2:  {22050, 24000, 16000},
	mpeg1:  {44100, 48000, 32000},
}

// frameHeader is a decoded MPEG audio frame header.
type frameHeader struct {
	Version    int
	Bitrate    int // bits per second
	SampleRate int
	Channels   int
}

// samplesPerFrame returns the Layer III frame length in samples.
func (h frameHeader) samplesPerFrame() int {
	if h.Version == mpeg1 {
		return 1152
	}
	return 576
}

// sideInfoSize returns the size of the side information that precedes a
// Xing/Info header.
func (h frameHeader) sideInfoSize() int64 {
	switch {
	case h.Version == mpeg1 && h.Channels == 1:
		return 17
	case h.Version == mpeg1:
		return 32
	case h.Channels == 1:
		return 9
	default:
		return 17
	}
}

// decodeFrameHeader validates and decodes a Layer III frame header.
func decodeFrameHeader(raw uint32) (frameHeader, error) {
	if raw&0xFFE00000 != 0xFFE00000 {
		return frameHeader{}, fmt.Errorf("invalid frame sync")
	}

	version := int((raw >> 19) & 0x3)
	if version == 1 {
		return frameHeader{}, fmt.Errorf("reserved MPEG version")
	}
	if layer := (raw >> 17) & 0x3; layer != 1 {
		return frameHeader{}, fmt.Errorf("not Layer III")
	}

	bitrateIdx := (raw >> 12) & 0xF
	rateIdx := (raw >> 10) & 0x3
	if bitrateIdx == 0 || bitrateIdx == 0xF || rateIdx == 3 {
		return frameHeader{}, fmt.Errorf("invalid bitrate or sample rate index")
	}

	row := 1
	if version == mpeg1 {
		row = 0
	}

	h := frameHeader{
		Version:    version,
		Bitrate:    bitrateTable[row][bitrateIdx] * 1000,
		SampleRate: sampleRateTable[version][rateIdx],
		Channels:   2,
	}
	if (raw>>6)&0x3 == 3 {
		h.Channels = 1
	}
	return h, nil
}

// parseTechnicalInfo finds the first frame after the tag and fills
// track.Audio. Duration comes from a Xing/Info or VBRI frame count when
// present, otherwise it is estimated from the bitrate.
func parseTechnicalInfo(sr *binary.SafeReader, tagSize int64, track *types.Track) error {
	size := sr.Size()
	limit := min(tagSize+frameSearchLimit, size-3)

	for offset := tagSize; offset < limit; offset++ {
		raw, err := binary.Read[uint32](sr, offset, "MPEG frame header")
		if err != nil {
			return err
		}
		h, err := decodeFrameHeader(raw)
		if err != nil {
			continue
		}

		track.Audio.Codec = "MP3"
		track.Audio.Container = "MP3"
		track.Audio.SampleRate = h.SampleRate
		track.Audio.Channels = h.Channels
		track.Audio.Bitrate = h.Bitrate

		if frames, ok := vbrFrameCount(sr, offset, h); ok {
			samples := float64(frames) * float64(h.samplesPerFrame())
			seconds := samples / float64(h.SampleRate)
			track.Audio.Duration = time.Duration(seconds * float64(time.Second))
			track.Audio.VBR = true
			if seconds > 0 {
				track.Audio.Bitrate = int(float64(size-offset) * 8 / seconds)
			}
		} else {
			seconds := float64(size-offset) * 8 / float64(h.Bitrate)
			track.Audio.Duration = time.Duration(seconds * float64(time.Second))
		}
		return nil
	}

	return fmt.Errorf("no valid MPEG Layer III frame found")
}

// vbrFrameCount reads the total frame count from a Xing/Info or VBRI header
// in the first frame.
func vbrFrameCount(sr *binary.SafeReader, frameOffset int64, h frameHeader) (uint32, bool) {
	xing := frameOffset + 4 + h.sideInfoSize()
	if tag, err := sr.Bytes(xing, 12, "Xing header"); err == nil {
		if id := string(tag[0:4]); id == "Xing" || id == "Info" {
			flags := binary.Decode[uint32](tag[4:8], binary.BigEndian)
			if flags&0x1 == 0 {
				return 0, false
			}
			return binary.Decode[uint32](tag[8:12], binary.BigEndian), true
		}
	}

	// VBRI always sits 32 bytes after the frame header.
	if tag, err := sr.Bytes(frameOffset+36, 18, "VBRI header"); err == nil && string(tag[0:4]) == "VBRI" {
		return binary.Decode[uint32](tag[14:18], binary.BigEndian), true
	}

	return 0, false
}
