package loop

import (
	"fmt"
	"iter"
	"math"
	"strings"
)

// EndOfTrack is the End value of a loop that runs to the end of the track.
const EndOfTrack = -1.0

// sampleRateKey is the technical-info name of the stream sample rate.
const sampleRateKey = "samplerate"

// Source provides the metadata and technical info of one track.
type Source interface {
	// Meta iterates metadata fields in file order.
	Meta() iter.Seq2[string, []string]

	// InfoFind looks up a technical-info value by exact name.
	InfoFind(name string) (string, bool)
}

// Info is a resolved loop section. Start and End are in seconds and are
// only meaningful when Valid is true. End is EndOfTrack when the track has a
// start tag but neither a length nor an end tag.
type Info struct {
	Valid      bool
	SampleRate int
	Start      float64
	End        float64
}

// HasEnd reports whether the loop has an explicit end.
func (i Info) HasEnd() bool {
	return i.End != EndOfTrack
}

// EndOr returns the loop end, or length when the loop runs to the end of
// the track.
func (i Info) EndOr(length float64) float64 {
	if i.HasEnd() {
		return i.End
	}
	return length
}

// Samples converts the loop to sample positions, rounding half away from
// zero. An open end stays -1, and so does an end too large to count in
// samples. A start out of range saturates.
func (i Info) Samples() (start, end int64) {
	rate := float64(i.SampleRate)
	start = toSample(i.Start * rate)
	e := math.Round(i.End * rate)
	if !i.HasEnd() || math.IsInf(e, 0) || math.IsNaN(e) || e >= math.MaxInt64 || e < math.MinInt64 {
		return start, -1
	}
	return start, int64(e)
}

func toSample(v float64) int64 {
	v = math.Round(v)
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt64:
		return math.MaxInt64
	case v <= math.MinInt64:
		return math.MinInt64
	}
	return int64(v)
}

func (i Info) String() string {
	switch {
	case !i.Valid:
		return "no loop"
	case !i.HasEnd():
		return fmt.Sprintf("loop %.6gs to end of track", i.Start)
	default:
		return fmt.Sprintf("loop %.6gs to %.6gs", i.Start, i.End)
	}
}

// FindSampleRate returns the stream sample rate from the "samplerate"
// technical-info entry. It fails when the entry is missing, not a number or
// not positive.
func FindSampleRate(src Source) (int, bool) {
	value, ok := src.InfoFind(sampleRateKey)
	if !ok {
		return 0, false
	}
	rate, ok := parseInteger(value)
	if !ok || rate <= 0 || rate > math.MaxInt32 {
		return 0, false
	}
	return int(rate), true
}

// Load resolves the loop section of src. A track without a sample rate has
// no loop.
func Load(src Source) Info {
	rate, ok := FindSampleRate(src)
	if !ok {
		return Info{}
	}
	return Resolve(ExtractTags(src.Meta()), rate)
}

// Resolve turns raw tag values into a loop section in seconds.
//
// A start value is required. When either value of the pair contains a '.',
// both are read as seconds; otherwise both are sample counts divided by
// sampleRate. An end tag takes precedence over a length tag. The loop is
// rejected when start >= end, when a length in seconds is <= 0, when a
// length in samples is exactly 0, or when a value is not a number. Negative
// sample lengths are accepted.
func Resolve(raw RawTags, sampleRate int) Info {
	invalid := Info{SampleRate: sampleRate}
	if sampleRate <= 0 || raw.Start == "" {
		return invalid
	}

	startSeconds := isSeconds(raw.Start)

	switch {
	case raw.End != "":
		if startSeconds || isSeconds(raw.End) {
			start, ok1 := parseDecimal(raw.Start)
			end, ok2 := parseDecimal(raw.End)
			if !ok1 || !ok2 || start >= end {
				return invalid
			}
			return valid(sampleRate, start, end)
		}
		start, ok1 := parseInteger(raw.Start)
		end, ok2 := parseInteger(raw.End)
		if !ok1 || !ok2 || start >= end {
			return invalid
		}
		return fromSamples(sampleRate, start, end)

	case raw.Length != "":
		if startSeconds || isSeconds(raw.Length) {
			start, ok1 := parseDecimal(raw.Start)
			length, ok2 := parseDecimal(raw.Length)
			if !ok1 || !ok2 || length <= 0 {
				return invalid
			}
			return valid(sampleRate, start, start+length)
		}
		start, ok1 := parseInteger(raw.Start)
		length, ok2 := parseInteger(raw.Length)
		if !ok1 || !ok2 || length == 0 {
			return invalid
		}
		return fromSamples(sampleRate, start, start+length)

	default:
		if startSeconds {
			start, ok := parseDecimal(raw.Start)
			if !ok {
				return invalid
			}
			return valid(sampleRate, start, EndOfTrack)
		}
		start, ok := parseInteger(raw.Start)
		if !ok {
			return invalid
		}
		return valid(sampleRate, samplesToSeconds(start, sampleRate), EndOfTrack)
	}
}

func isSeconds(s string) bool {
	return strings.Contains(s, ".")
}

func valid(rate int, start, end float64) Info {
	return Info{Valid: true, SampleRate: rate, Start: start, End: end}
}

func fromSamples(rate int, start, end float64) Info {
	return valid(rate, samplesToSeconds(start, rate), samplesToSeconds(end, rate))
}

func samplesToSeconds(samples float64, rate int) float64 {
	return samples / float64(rate)
}
