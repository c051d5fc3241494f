package ogg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/simonhull/loopbar/internal/types"
)

// lacing returns the segment table for one packet.
func lacing(packet []byte) []byte {
	var segs []byte
	n := len(packet)
	for n >= 255 {
		segs = append(segs, 255)
		n -= 255
	}
	return append(segs, byte(n))
}

// writePage appends a page holding the given packets.
func writePage(buf *bytes.Buffer, headerType byte, granule int64, sequence uint32, packets ...[]byte) {
	var segs, data []byte
	for _, p := range packets {
		segs = append(segs, lacing(p)...)
		data = append(data, p...)
	}

	buf.WriteString("OggS")
	buf.WriteByte(0)
	buf.WriteByte(headerType)
	_ = binary.Write(buf, binary.LittleEndian, uint64(granule))
	_ = binary.Write(buf, binary.LittleEndian, uint32(0x1234))
	_ = binary.Write(buf, binary.LittleEndian, sequence)
	_ = binary.Write(buf, binary.LittleEndian, uint32(0)) // checksum
	buf.WriteByte(byte(len(segs)))
	buf.Write(segs)
	buf.Write(data)
}

func commentBlock(comments ...string) []byte {
	buf := &bytes.Buffer{}
	vendor := "Xiph.Org libVorbis I 20200704"
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(vendor)))
	buf.WriteString(vendor)
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(comments)))
	for _, c := range comments {
		_ = binary.Write(buf, binary.LittleEndian, uint32(len(c)))
		buf.WriteString(c)
	}
	return buf.Bytes()
}

func vorbisIDHeader(sampleRate uint32) []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(0x01)
	buf.WriteString("vorbis")
	_ = binary.Write(buf, binary.LittleEndian, uint32(0))
	buf.WriteByte(2)
	_ = binary.Write(buf, binary.LittleEndian, sampleRate)
	_ = binary.Write(buf, binary.LittleEndian, uint32(0))
	_ = binary.Write(buf, binary.LittleEndian, uint32(128000))
	_ = binary.Write(buf, binary.LittleEndian, uint32(0))
	buf.WriteByte(0xB8)
	buf.WriteByte(0x01)
	return buf.Bytes()
}

// createMinimalOgg builds an Ogg Vorbis file: identification page, comment
// and setup packets on the second page, and a final audio page.
func createMinimalOgg(sampleRate uint32, granule int64, comments ...string) []byte {
	buf := &bytes.Buffer{}
	writePage(buf, 0x02, 0, 0, vorbisIDHeader(sampleRate))

	comment := append([]byte("\x03vorbis"), commentBlock(comments...)...)
	comment = append(comment, 0x01) // framing bit
	setup := []byte("\x05vorbis\x00")
	writePage(buf, 0x00, 0, 1, comment, setup)

	writePage(buf, 0x04, granule, 2, make([]byte, 100))
	return buf.Bytes()
}

func createMinimalOpus(granule int64, comments ...string) []byte {
	buf := &bytes.Buffer{}

	head := &bytes.Buffer{}
	head.WriteString("OpusHead")
	head.WriteByte(1)
	head.WriteByte(2)
	_ = binary.Write(head, binary.LittleEndian, uint16(312))
	_ = binary.Write(head, binary.LittleEndian, uint32(44100))
	_ = binary.Write(head, binary.LittleEndian, uint16(0))
	head.WriteByte(0)
	writePage(buf, 0x02, 0, 0, head.Bytes())

	tags := append([]byte("OpusTags"), commentBlock(comments...)...)
	writePage(buf, 0x00, 0, 1, tags)

	writePage(buf, 0x04, granule, 2, make([]byte, 50))
	return buf.Bytes()
}

func parseBytes(t *testing.T, data []byte) *types.Track {
	t.Helper()
	track, err := (&parser{}).Parse(bytes.NewReader(data), int64(len(data)), "test.ogg")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return track
}

func TestParse_Vorbis(t *testing.T) {
	data := createMinimalOgg(44100, 441000, "TITLE=Stage 1", "LOOP_START=1.5", "Loop_End=3.0")
	track := parseBytes(t, data)

	if track.Format != types.FormatOgg {
		t.Errorf("Format = %v, want Ogg Vorbis", track.Format)
	}
	if track.Audio.Codec != "Vorbis" || track.Audio.SampleRate != 44100 || track.Audio.Channels != 2 {
		t.Errorf("Audio = %+v", track.Audio)
	}
	if track.Audio.Bitrate != 128000 {
		t.Errorf("Bitrate = %d, want nominal 128000", track.Audio.Bitrate)
	}
	if track.Audio.Duration != 10*time.Second {
		t.Errorf("Duration = %v, want 10s", track.Audio.Duration)
	}
	if got := track.Metadata.GetFirst("LOOP_START"); got != "1.5" {
		t.Errorf("LOOP_START = %q", got)
	}
	if got := track.Metadata.At(2).Name; got != "Loop_End" {
		t.Errorf("third field = %q, want original spelling Loop_End", got)
	}
	if len(track.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", track.Warnings)
	}
}

func TestParse_Opus(t *testing.T) {
	data := createMinimalOpus(48000*2+312, "LOOPSTART=48000")
	track := parseBytes(t, data)

	if track.Format != types.FormatOpus {
		t.Errorf("Format = %v, want Opus", track.Format)
	}
	if track.Audio.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", track.Audio.SampleRate)
	}
	if track.Audio.Duration != 2*time.Second {
		t.Errorf("Duration = %v, want 2s after pre-skip", track.Audio.Duration)
	}
	if got := track.Metadata.GetFirst("LOOPSTART"); got != "48000" {
		t.Errorf("LOOPSTART = %q", got)
	}
	if track.Audio.Bitrate == 0 {
		t.Error("Bitrate should be estimated for Opus")
	}

	// Informational warning for the 44.1 kHz input rate.
	if len(track.Warnings) != 1 || track.Warnings[0].Stage != "technical" {
		t.Errorf("Warnings = %v", track.Warnings)
	}
}

func TestParse_CommentSpansPages(t *testing.T) {
	long := "COMMENT=" + strings.Repeat("x", 600)
	comment := append([]byte("\x03vorbis"), commentBlock(long, "LOOPSTART=7")...)
	comment = append(comment, 0x01)

	// Split the comment packet across two pages; the first page ends on a
	// 255-byte segment so the packet stays open.
	first, rest := comment[:510], comment[510:]

	buf := &bytes.Buffer{}
	writePage(buf, 0x02, 0, 0, vorbisIDHeader(44100))

	buf.WriteString("OggS")
	buf.WriteByte(0)
	buf.WriteByte(0)
	_ = binary.Write(buf, binary.LittleEndian, int64(-1))
	_ = binary.Write(buf, binary.LittleEndian, uint32(0x1234))
	_ = binary.Write(buf, binary.LittleEndian, uint32(1))
	_ = binary.Write(buf, binary.LittleEndian, uint32(0))
	buf.WriteByte(2)
	buf.Write([]byte{255, 255})
	buf.Write(first)

	writePage(buf, flagContinued, 44100, 2, rest)

	track := parseBytes(t, buf.Bytes())
	if got := track.Metadata.GetFirst("LOOPSTART"); got != "7" {
		t.Errorf("LOOPSTART = %q, want %q", got, "7")
	}
	if got := len(track.Metadata.GetFirst("COMMENT")); got != 600 {
		t.Errorf("len(COMMENT) = %d, want 600", got)
	}
}

func TestParse_MissingCommentPacketWarns(t *testing.T) {
	buf := &bytes.Buffer{}
	writePage(buf, 0x06, 44100, 0, vorbisIDHeader(44100))

	track := parseBytes(t, buf.Bytes())
	if track.Audio.SampleRate != 44100 {
		t.Errorf("SampleRate = %d", track.Audio.SampleRate)
	}
	if len(track.Warnings) == 0 {
		t.Error("expected a warning for the missing comment packet")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want any
	}{
		{"bad magic", []byte("RIFF0000WAVE"), &types.CorruptedFileError{}},
		{"unknown codec", func() []byte {
			buf := &bytes.Buffer{}
			writePage(buf, 0x02, 0, 0, []byte("\x80theora"))
			return buf.Bytes()
		}(), &types.UnsupportedFormatError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&parser{}).Parse(bytes.NewReader(tt.data), int64(len(tt.data)), "x.ogg")
			switch tt.want.(type) {
			case *types.CorruptedFileError:
				var target *types.CorruptedFileError
				if !errors.As(err, &target) {
					t.Errorf("error = %v, want CorruptedFileError", err)
				}
			case *types.UnsupportedFormatError:
				var target *types.UnsupportedFormatError
				if !errors.As(err, &target) {
					t.Errorf("error = %v, want UnsupportedFormatError", err)
				}
			}
		})
	}
}

func TestLacing(t *testing.T) {
	tests := []struct {
		n    int
		want []byte
	}{
		{0, []byte{0}},
		{10, []byte{10}},
		{255, []byte{255, 0}},
		{300, []byte{255, 45}},
	}
	for _, tt := range tests {
		if got := lacing(make([]byte, tt.n)); !bytes.Equal(got, tt.want) {
			t.Errorf("lacing(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}
