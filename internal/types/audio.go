package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AudioInfo represents technical stream properties.
type AudioInfo struct {
	Codec      string
	Container  string
	Duration   time.Duration
	SampleRate int
	BitDepth   int
	Channels   int
	Bitrate    int // bits per second
	Lossless   bool
	VBR        bool
}

// String returns a human-readable summary such as "FLAC 44.1kHz 16-bit stereo lossless".
func (a AudioInfo) String() string {
	parts := []string{a.Codec}
	if a.SampleRate > 0 {
		parts = append(parts, fmt.Sprintf("%.1fkHz", float64(a.SampleRate)/1000))
	}
	if a.BitDepth > 0 {
		parts = append(parts, fmt.Sprintf("%d-bit", a.BitDepth))
	}
	parts = append(parts, channelDescription(a.Channels))

	switch {
	case a.Lossless:
		parts = append(parts, "lossless")
	case a.Bitrate > 0 && a.VBR:
		parts = append(parts, fmt.Sprintf("%dkbps VBR", a.Bitrate/1000))
	case a.Bitrate > 0:
		parts = append(parts, fmt.Sprintf("%dkbps", a.Bitrate/1000))
	}

	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// Seconds returns the duration in seconds as a float.
func (a AudioInfo) Seconds() float64 {
	return a.Duration.Seconds()
}

// Technical returns the stream properties as host-style technical info.
//
// Keys follow the player convention (lowercase, no separators). A property
// that is unknown is left out, so a stream whose header could not be read
// has no "samplerate" entry at all.
func (a AudioInfo) Technical() TechInfo {
	var info TechInfo
	if a.SampleRate > 0 {
		info.Set("samplerate", strconv.Itoa(a.SampleRate))
	}
	if a.Channels > 0 {
		info.Set("channels", strconv.Itoa(a.Channels))
	}
	if a.BitDepth > 0 {
		info.Set("bitspersample", strconv.Itoa(a.BitDepth))
	}
	if a.Bitrate > 0 {
		info.Set("bitrate", strconv.Itoa((a.Bitrate+500)/1000))
	}
	if a.Codec != "" {
		info.Set("codec", a.Codec)
		if a.Lossless {
			info.Set("encoding", "lossless")
		} else {
			info.Set("encoding", "lossy")
		}
	}
	return info
}

func channelDescription(channels int) string {
	switch channels {
	case 0:
		return ""
	case 1:
		return "mono"
	case 2:
		return "stereo"
	case 4:
		return "quad"
	case 6:
		return "5.1"
	case 8:
		return "7.1"
	default:
		return fmt.Sprintf("%dch", channels)
	}
}

// TechField is one technical-info pair.
type TechField struct {
	Key   string
	Value string
}

// TechInfo is an ordered list of technical-info pairs.
type TechInfo struct {
	fields []TechField
}

// Set stores value under key, replacing an existing pair in place.
func (t *TechInfo) Set(key, value string) {
	for i := range t.fields {
		if t.fields[i].Key == key {
			t.fields[i].Value = value
			return
		}
	}
	t.fields = append(t.fields, TechField{Key: key, Value: value})
}

// Find looks key up by exact, case-sensitive name.
func (t *TechInfo) Find(key string) (string, bool) {
	for _, f := range t.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Fields returns a copy of the pairs in insertion order.
func (t *TechInfo) Fields() []TechField {
	out := make([]TechField, len(t.fields))
	copy(out, t.fields)
	return out
}
