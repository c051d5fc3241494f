// Package fixture builds minimal audio files for tests.
//
// Each builder returns a complete file carrying the given tags as
// NAME=VALUE pairs, small enough to write to a temp dir in every test.
package fixture

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// FLAC returns a FLAC file: 16-bit stereo at sampleRate, one second long.
func FLAC(sampleRate uint64, tags ...string) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("fLaC")

	buf.Write([]byte{0x00, 0x00, 0x00, 0x22}) // STREAMINFO, 34 bytes
	_ = binary.Write(buf, binary.BigEndian, uint16(4096))
	_ = binary.Write(buf, binary.BigEndian, uint16(4096))
	buf.Write(make([]byte, 6))
	packed := sampleRate<<44 | 1<<41 | 15<<36 | sampleRate
	_ = binary.Write(buf, binary.BigEndian, packed)
	buf.Write(make([]byte, 16))

	block := vorbisComments("reference libFLAC 1.4.3", tags)
	n := len(block)
	buf.Write([]byte{0x84, byte(n >> 16), byte(n >> 8), byte(n)})
	buf.Write(block)
	return buf.Bytes()
}

// OggVorbis returns an Ogg Vorbis stereo file at sampleRate, two seconds
// long.
func OggVorbis(sampleRate uint32, tags ...string) []byte {
	id := &bytes.Buffer{}
	id.WriteString("\x01vorbis")
	_ = binary.Write(id, binary.LittleEndian, uint32(0))
	id.WriteByte(2)
	_ = binary.Write(id, binary.LittleEndian, sampleRate)
	_ = binary.Write(id, binary.LittleEndian, [3]uint32{0, 128000, 0})
	id.Write([]byte{0xB8, 0x01})

	comment := append([]byte("\x03vorbis"), vorbisComments("Xiph.Org libVorbis I 20200704", tags)...)
	comment = append(comment, 0x01)

	buf := &bytes.Buffer{}
	oggPage(buf, 0x02, 0, 0, id.Bytes())
	oggPage(buf, 0x00, 0, 1, comment, []byte("\x05vorbis\x00"))
	oggPage(buf, 0x04, int64(sampleRate)*2, 2, make([]byte, 100))
	return buf.Bytes()
}

// Opus returns an Ogg Opus stereo file, one second long at 48 kHz.
func Opus(tags ...string) []byte {
	head := &bytes.Buffer{}
	head.WriteString("OpusHead")
	head.Write([]byte{1, 2})
	_ = binary.Write(head, binary.LittleEndian, uint16(0))
	_ = binary.Write(head, binary.LittleEndian, uint32(48000))
	_ = binary.Write(head, binary.LittleEndian, uint16(0))
	head.WriteByte(0)

	buf := &bytes.Buffer{}
	oggPage(buf, 0x02, 0, 0, head.Bytes())
	oggPage(buf, 0x00, 0, 1, append([]byte("OpusTags"), vorbisComments("libopus 1.4", tags)...))
	oggPage(buf, 0x04, 48000, 2, make([]byte, 50))
	return buf.Bytes()
}

// MP3 returns an ID3v2.3 tag holding each pair as a Latin-1 TXXX frame,
// followed by MPEG1 Layer III frames at 44.1 kHz.
func MP3(tags ...string) []byte {
	body := &bytes.Buffer{}
	for _, kv := range tags {
		name, value, _ := strings.Cut(kv, "=")
		payload := append([]byte{0}, name...)
		payload = append(append(payload, 0), value...)
		body.WriteString("TXXX")
		_ = binary.Write(body, binary.BigEndian, uint32(len(payload)))
		body.Write([]byte{0, 0})
		body.Write(payload)
	}
	body.Write(make([]byte, 16))

	n := body.Len()
	buf := &bytes.Buffer{}
	buf.WriteString("ID3")
	buf.Write([]byte{3, 0, 0, byte(n >> 21 & 0x7F), byte(n >> 14 & 0x7F), byte(n >> 7 & 0x7F), byte(n & 0x7F)})
	buf.Write(body.Bytes())

	buf.Write([]byte{0xFF, 0xFB, 0x90, 0x00})
	buf.Write(make([]byte, 413))
	return buf.Bytes()
}

// M4A returns an MP4 audio file with each pair stored as an iTunes
// freeform item. The audio track is AAC stereo at 44.1 kHz, three seconds
// long.
func M4A(tags ...string) []byte {
	var items [][]byte
	for _, kv := range tags {
		name, value, _ := strings.Cut(kv, "=")
		items = append(items, atom("----",
			atom("mean", u32(0), []byte("com.apple.iTunes")),
			atom("name", u32(0), []byte(name)),
			atom("data", u32(1), u32(0), []byte(value)),
		))
	}

	entry := atom("mp4a",
		make([]byte, 6), u16(1),
		u16(0), u16(0), u32(0),
		u16(2), u16(16),
		u16(0), u16(0),
		u32(44100<<16),
	)
	trak := atom("trak", atom("mdia",
		atom("mdhd", u32(0), u32(0), u32(0), u32(44100), u32(44100*3), u16(0), u16(0)),
		atom("hdlr", u32(0), u32(0), []byte("soun"), make([]byte, 12), []byte{0}),
		atom("minf", atom("stbl", atom("stsd", u32(0), u32(1), entry))),
	))
	meta := atom("meta", u32(0),
		atom("hdlr", u32(0), u32(0), []byte("mdir"), make([]byte, 12), []byte{0}),
		atom("ilst", items...),
	)

	out := atom("ftyp", []byte("M4A "), u32(0), []byte("M4A "))
	out = append(out, atom("moov", trak, atom("udta", meta))...)
	return append(out, atom("mdat", make([]byte, 64))...)
}

// WAV returns a RIFF/WAVE header, which is detected but not parsed.
func WAV() []byte {
	return []byte("RIFF\x24\x00\x00\x00WAVEfmt ")
}

// Write stores data under name in a new temp dir and returns the path.
func Write(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func vorbisComments(vendor string, tags []string) []byte {
	buf := &bytes.Buffer{}
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(vendor)))
	buf.WriteString(vendor)
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(tags)))
	for _, c := range tags {
		_ = binary.Write(buf, binary.LittleEndian, uint32(len(c)))
		buf.WriteString(c)
	}
	return buf.Bytes()
}

func oggPage(buf *bytes.Buffer, headerType byte, granule int64, sequence uint32, packets ...[]byte) {
	var segs, data []byte
	for _, p := range packets {
		n := len(p)
		for ; n >= 255; n -= 255 {
			segs = append(segs, 255)
		}
		segs = append(segs, byte(n))
		data = append(data, p...)
	}

	buf.WriteString("OggS")
	buf.Write([]byte{0, headerType})
	_ = binary.Write(buf, binary.LittleEndian, uint64(granule))
	_ = binary.Write(buf, binary.LittleEndian, [3]uint32{0x1234, sequence, 0})
	buf.WriteByte(byte(len(segs)))
	buf.Write(segs)
	buf.Write(data)
}

func atom(typ string, payload ...[]byte) []byte {
	body := bytes.Join(payload, nil)
	out := binary.BigEndian.AppendUint32(nil, uint32(8+len(body)))
	out = append(out, typ...)
	return append(out, body...)
}

func u32(v uint32) []byte { return binary.BigEndian.AppendUint32(nil, v) }
func u16(v uint16) []byte { return binary.BigEndian.AppendUint16(nil, v) }
