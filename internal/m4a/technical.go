package m4a

import (
	"fmt"
	"time"

	"github.com/simonhull/loopbar/internal/binary"
	"github.com/simonhull/loopbar/internal/types"
)

// parseTechnicalInfo reads the first audio track's media header and sample
// description.
func parseTechnicalInfo(sr *binary.SafeReader, moov *atom, track *types.Track) error {
	trak, err := audioTrak(sr, moov)
	if err != nil {
		return err
	}
	mdia, err := findAtom(sr, trak.DataOffset(), trak.End(), "mdia")
	if err != nil {
		return err
	}

	mdhd, err := findAtom(sr, mdia.DataOffset(), mdia.End(), "mdhd")
	if err != nil {
		return err
	}
	if err := parseMdhd(sr, mdhd, track); err != nil {
		return fmt.Errorf("mdhd: %w", err)
	}

	stbl := mdia
	for _, name := range []string{"minf", "stbl"} {
		if stbl, err = findAtom(sr, stbl.DataOffset(), stbl.End(), name); err != nil {
			return err
		}
	}
	stsd, err := findAtom(sr, stbl.DataOffset(), stbl.End(), "stsd")
	if err != nil {
		return err
	}
	if err := parseStsd(sr, stsd, track); err != nil {
		return fmt.Errorf("stsd: %w", err)
	}

	if seconds := track.Audio.Seconds(); seconds > 0 {
		track.Audio.Bitrate = int(float64(track.Size) * 8 / seconds)
	}
	return nil
}

// audioTrak returns the first trak whose handler is "soun", or the first
// trak when none declares one.
func audioTrak(sr *binary.SafeReader, moov *atom) (*atom, error) {
	var first *atom
	for a, err := range children(sr, moov.DataOffset(), moov.End()) {
		if err != nil {
			return nil, err
		}
		if a.Type != "trak" {
			continue
		}
		if first == nil {
			first = a
		}
		if handlerType(sr, a) == "soun" {
			return a, nil
		}
	}
	if first == nil {
		return nil, fmt.Errorf("no trak atom")
	}
	return first, nil
}

func handlerType(sr *binary.SafeReader, trak *atom) string {
	mdia, err := findAtom(sr, trak.DataOffset(), trak.End(), "mdia")
	if err != nil {
		return ""
	}
	hdlr, err := findAtom(sr, mdia.DataOffset(), mdia.End(), "hdlr")
	if err != nil {
		return ""
	}
	// version/flags (4), pre_defined (4), handler_type (4)
	b, err := sr.Bytes(hdlr.DataOffset()+8, 4, "handler type")
	if err != nil {
		return ""
	}
	return string(b)
}

// parseMdhd reads timescale and duration from the media header.
func parseMdhd(sr *binary.SafeReader, mdhd *atom, track *types.Track) error {
	offset := mdhd.DataOffset()
	version, err := binary.Read[uint8](sr, offset, "mdhd version")
	if err != nil {
		return err
	}

	var timescale uint32
	var duration uint64
	if version == 1 {
		// creation and modification times are 64-bit
		if timescale, err = binary.Read[uint32](sr, offset+20, "mdhd timescale"); err != nil {
			return err
		}
		if duration, err = binary.Read[uint64](sr, offset+24, "mdhd duration"); err != nil {
			return err
		}
	} else {
		if timescale, err = binary.Read[uint32](sr, offset+12, "mdhd timescale"); err != nil {
			return err
		}
		d, err := binary.Read[uint32](sr, offset+16, "mdhd duration")
		if err != nil {
			return err
		}
		duration = uint64(d)
	}

	if timescale == 0 {
		return fmt.Errorf("zero timescale")
	}
	seconds := float64(duration) / float64(timescale)
	track.Audio.Duration = time.Duration(seconds * float64(time.Second))
	return nil
}

// parseStsd reads codec, channels, sample size and sample rate from the first
// audio sample entry.
func parseStsd(sr *binary.SafeReader, stsd *atom, track *types.Track) error {
	// version/flags (4), entry count (4), then the first entry
	count, err := binary.Read[uint32](sr, stsd.DataOffset()+4, "stsd entry count")
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("no sample entries")
	}

	entry, err := readAtomHeader(sr, stsd.DataOffset()+8, stsd.End())
	if err != nil {
		return err
	}

	// reserved (6), data reference index (2), version (2), revision (2),
	// vendor (4), channels (2), sample size (2), compression id (2),
	// packet size (2), sample rate 16.16 (4)
	fields, err := sr.Bytes(entry.DataOffset(), 28, "audio sample entry")
	if err != nil {
		return err
	}

	track.Audio.Codec = codecName(entry.Type)
	track.Audio.Lossless = losslessCodecs[entry.Type]
	track.Audio.Channels = int(binary.Decode[uint16](fields[16:18], binary.BigEndian))
	track.Audio.SampleRate = int(binary.Decode[uint32](fields[24:28], binary.BigEndian) >> 16)
	if track.Audio.Lossless {
		track.Audio.BitDepth = int(binary.Decode[uint16](fields[18:20], binary.BigEndian))
	}
	return nil
}
