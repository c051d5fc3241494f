package loop_test

import (
	"iter"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/loopbar/loop"
)

type field struct {
	name   string
	values []string
}

// source is an in-memory loop.Source.
type source struct {
	fields []field
	info   map[string]string
}

func (s source) Meta() iter.Seq2[string, []string] {
	return func(yield func(string, []string) bool) {
		for _, f := range s.fields {
			if !yield(f.name, f.values) {
				return
			}
		}
	}
}

func (s source) InfoFind(name string) (string, bool) {
	v, ok := s.info[name]
	return v, ok
}

func tags(kv ...string) source {
	s := source{info: map[string]string{"samplerate": "44100"}}
	for i := 0; i+1 < len(kv); i += 2 {
		s.fields = append(s.fields, field{name: kv[i], values: []string{kv[i+1]}})
	}
	return s
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want loop.Kind
	}{
		{"LOOPSTART", loop.KindStart},
		{"LoopStart", loop.KindStart},
		{"Loop_Start", loop.KindStart},
		{"loop_length", loop.KindLength},
		{"LOOPLENGTH", loop.KindLength},
		{"LOOPEND", loop.KindEnd},
		{"Loop_End", loop.KindEnd},
		{"LOOP_", loop.KindNone},
		{"LOOP", loop.KindNone},
		{"XLOOPSTART", loop.KindNone},
		{"LOOP__START", loop.KindNone},
		{"LOOPSTARTX", loop.KindNone},
		{"TITLE", loop.KindNone},
		{"", loop.KindNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, loop.Classify(tt.name))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "start", loop.KindStart.String())
	assert.Equal(t, "none", loop.Kind(42).String())
}

func TestExtractTags(t *testing.T) {
	tests := []struct {
		name   string
		fields []field
		want   loop.RawTags
	}{
		{
			name:   "start and end",
			fields: []field{{"LOOPSTART", []string{"100"}}, {"LOOPEND", []string{"200"}}},
			want:   loop.RawTags{Start: "100", End: "200"},
		},
		{
			name:   "first start wins",
			fields: []field{{"LOOPSTART", []string{"1"}}, {"Loop_Start", []string{"2"}}},
			want:   loop.RawTags{Start: "1"},
		},
		{
			name:   "length locks out end",
			fields: []field{{"LOOPLENGTH", []string{"10"}}, {"LOOPEND", []string{"20"}}},
			want:   loop.RawTags{Length: "10"},
		},
		{
			name:   "end locks out length",
			fields: []field{{"loop_end", []string{"20"}}, {"LOOPLENGTH", []string{"10"}}, {"LOOPSTART", []string{"5"}}},
			want:   loop.RawTags{Start: "5", End: "20"},
		},
		{
			name:   "only first value used",
			fields: []field{{"LOOPSTART", []string{"7", "8"}}},
			want:   loop.RawTags{Start: "7"},
		},
		{
			name:   "valueless start still counts as found",
			fields: []field{{"LOOPSTART", nil}, {"LOOPSTART", []string{"9"}}, {"LOOPEND", []string{"20"}}},
			want:   loop.RawTags{End: "20"},
		},
		{
			name:   "unrelated fields ignored",
			fields: []field{{"TITLE", []string{"x"}}, {"LOOPING", []string{"yes"}}, {"LOOP_START", []string{"3"}}},
			want:   loop.RawTags{Start: "3"},
		},
		{
			name: "no fields",
			want: loop.RawTags{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := loop.ExtractTags(source{fields: tt.fields}.Meta())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTags_StopsAfterTwoFinds(t *testing.T) {
	s := tags("LOOPSTART", "1", "LOOPEND", "2", "TITLE", "x", "ARTIST", "y")

	visited := 0
	counting := func(yield func(string, []string) bool) {
		for name, values := range s.Meta() {
			visited++
			if !yield(name, values) {
				return
			}
		}
	}

	loop.ExtractTags(counting)
	assert.Equal(t, 2, visited)
}

func TestResolve(t *testing.T) {
	const rate = 44100

	tests := []struct {
		name      string
		raw       loop.RawTags
		wantValid bool
		wantStart float64
		wantEnd   float64
	}{
		{"samples start and end", loop.RawTags{Start: "100", End: "200"}, true, 100.0 / rate, 200.0 / rate},
		{"seconds start and end", loop.RawTags{Start: "1.5", End: "3.0"}, true, 1.5, 3.0},
		{"zero sample length", loop.RawTags{Start: "100", Length: "0"}, false, 0, 0},
		{"start only seconds", loop.RawTags{Start: "1.0"}, true, 1.0, loop.EndOfTrack},
		{"start only samples", loop.RawTags{Start: "44100"}, true, 1.0, loop.EndOfTrack},
		{"start after end", loop.RawTags{Start: "500", End: "100"}, false, 0, 0},
		{"start equals end", loop.RawTags{Start: "1.0", End: "1"}, false, 0, 0},
		{"seconds contaminate length", loop.RawTags{Start: "1.0", Length: "50000"}, true, 1.0, 50001.0},
		{"seconds contaminate end", loop.RawTags{Start: "1.5", End: "200000"}, true, 1.5, 200000.0},
		{"seconds in length only", loop.RawTags{Start: "2", Length: "0.5"}, true, 2.0, 2.5},
		{"samples start and length", loop.RawTags{Start: "44100", Length: "88200"}, true, 1.0, 3.0},
		{"negative sample length accepted", loop.RawTags{Start: "100", Length: "-50"}, true, 100.0 / rate, 50.0 / rate},
		{"negative seconds length rejected", loop.RawTags{Start: "1.0", Length: "-0.5"}, false, 0, 0},
		{"zero seconds length rejected", loop.RawTags{Start: "1.0", Length: "0.0"}, false, 0, 0},
		{"missing start", loop.RawTags{End: "200"}, false, 0, 0},
		{"non-numeric start", loop.RawTags{Start: "abc"}, false, 0, 0},
		{"non-numeric end", loop.RawTags{Start: "1", End: "x"}, false, 0, 0},
		{"non-numeric seconds length", loop.RawTags{Start: "1.0", Length: "."}, false, 0, 0},
		{"trailing text ignored", loop.RawTags{Start: " 100 samples", End: "200;"}, true, 100.0 / rate, 200.0 / rate},
		{"start beyond int64", loop.RawTags{Start: "99999999999999999999"}, true, 1e20 / rate, loop.EndOfTrack},
		{"length beyond int64", loop.RawTags{Start: "0", Length: "99999999999999999999"}, true, 0, 1e20 / rate},
		{"end wins over length", loop.RawTags{Start: "0", Length: "10", End: "20"}, true, 0, 20.0 / rate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := loop.Resolve(tt.raw, rate)
			require.Equal(t, tt.wantValid, got.Valid, "Valid for %+v", tt.raw)
			assert.Equal(t, rate, got.SampleRate)
			if !tt.wantValid {
				return
			}
			assert.InDelta(t, tt.wantStart, got.Start, 1e-12)
			assert.InDelta(t, tt.wantEnd, got.End, 1e-12)
		})
	}
}

func TestResolve_ExactDivision(t *testing.T) {
	got := loop.Resolve(loop.RawTags{Start: "100", End: "200"}, 44100)
	assert.Equal(t, 100.0/44100.0, got.Start)
	assert.Equal(t, 200.0/44100.0, got.End)
}

func TestResolve_NoSampleRate(t *testing.T) {
	assert.False(t, loop.Resolve(loop.RawTags{Start: "1.0", End: "2.0"}, 0).Valid)
}

func TestLoad(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		info := loop.Load(tags("LOOPSTART", "100", "LOOPEND", "200"))
		require.True(t, info.Valid)
		assert.Equal(t, 44100, info.SampleRate)
		assert.Equal(t, 100.0/44100, info.Start)
	})

	t.Run("case insensitive keys", func(t *testing.T) {
		info := loop.Load(tags("Loop_Start", "1.5", "Loop_End", "3.0"))
		require.True(t, info.Valid)
		assert.Equal(t, 1.5, info.Start)
		assert.Equal(t, 3.0, info.End)
	})

	t.Run("missing sample rate", func(t *testing.T) {
		s := tags("LOOPSTART", "1.5", "LOOPEND", "3.0")
		delete(s.info, "samplerate")
		assert.Equal(t, loop.Info{}, loop.Load(s))
	})

	t.Run("sample rate key is case sensitive", func(t *testing.T) {
		s := tags("LOOPSTART", "1.5")
		s.info = map[string]string{"SampleRate": "44100"}
		assert.False(t, loop.Load(s).Valid)
	})

	t.Run("no loop tags", func(t *testing.T) {
		assert.False(t, loop.Load(tags("TITLE", "x", "LOOPLENGTH", "5")).Valid)
	})

	t.Run("idempotent", func(t *testing.T) {
		s := tags("LOOPSTART", "12345", "LOOPLENGTH", "67890")
		assert.Equal(t, loop.Load(s), loop.Load(s))
	})
}

func TestFindSampleRate(t *testing.T) {
	tests := []struct {
		value  string
		want   int
		wantOK bool
	}{
		{"44100", 44100, true},
		{" 48000", 48000, true},
		{"96000 Hz", 96000, true},
		{"0", 0, false},
		{"-44100", 0, false},
		{"fast", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			s := source{info: map[string]string{"samplerate": tt.value}}
			got, ok := loop.FindSampleRate(s)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInfoHelpers(t *testing.T) {
	open := loop.Info{Valid: true, SampleRate: 44100, Start: 1.5, End: loop.EndOfTrack}
	closed := loop.Info{Valid: true, SampleRate: 44100, Start: 1.5, End: 2.25}

	assert.False(t, open.HasEnd())
	assert.True(t, closed.HasEnd())
	assert.Equal(t, 10.0, open.EndOr(10))
	assert.Equal(t, 2.25, closed.EndOr(10))

	start, end := open.Samples()
	assert.Equal(t, int64(66150), start)
	assert.Equal(t, int64(-1), end)

	start, end = closed.Samples()
	assert.Equal(t, int64(66150), start)
	assert.Equal(t, int64(99225), end)

	assert.Equal(t, "no loop", loop.Info{}.String())
	assert.Equal(t, "loop 1.5s to end of track", open.String())
	assert.Equal(t, "loop 1.5s to 2.25s", closed.String())
}

func TestResolve_InfinitySeconds(t *testing.T) {
	info := loop.Resolve(loop.RawTags{Start: "1.0", Length: "Infinity"}, 44100)
	require.True(t, info.Valid)
	assert.True(t, math.IsInf(info.End, 1))

	start, end := info.Samples()
	assert.Equal(t, int64(44100), start)
	assert.Equal(t, int64(-1), end, "an unbounded end has no sample position")

	info = loop.Resolve(loop.RawTags{Start: "1.5", End: "1e400"}, 44100)
	require.True(t, info.Valid)
	_, end = info.Samples()
	assert.Equal(t, int64(-1), end)
}

func TestInfoSamples_Saturates(t *testing.T) {
	info := loop.Info{Valid: true, SampleRate: 44100, Start: 1e300, End: loop.EndOfTrack}
	start, end := info.Samples()
	assert.Equal(t, int64(math.MaxInt64), start)
	assert.Equal(t, int64(-1), end)
}
