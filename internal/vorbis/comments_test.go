package vorbis

import (
	"bytes"
	"encoding/binary"
	"slices"
	"testing"

	"github.com/simonhull/loopbar/internal/types"
)

// buildBlock assembles a comment block in wire format.
func buildBlock(vendor string, comments ...string) []byte {
	buf := &bytes.Buffer{}
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(vendor)))
	buf.WriteString(vendor)
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(comments)))
	for _, c := range comments {
		_ = binary.Write(buf, binary.LittleEndian, uint32(len(c)))
		buf.WriteString(c)
	}
	return buf.Bytes()
}

func TestParseComment(t *testing.T) {
	tests := []struct {
		name      string
		comment   string
		wantKey   string
		wantValue string
		wantErr   bool
	}{
		{"simple", "LOOPSTART=44100", "LOOPSTART", "44100", false},
		{"mixed case key", "Loop_Length=1.5", "Loop_Length", "1.5", false},
		{"empty value", "LOOPEND=", "LOOPEND", "", false},
		{"equals in value", "COMMENT=a=b", "COMMENT", "a=b", false},
		{"no separator", "LOOPSTART", "", "", true},
		{"empty key", "=100", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, value, err := ParseComment(tt.comment)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseComment(%q) error = %v, wantErr %v", tt.comment, err, tt.wantErr)
			}
			if key != tt.wantKey || value != tt.wantValue {
				t.Errorf("ParseComment(%q) = %q, %q; want %q, %q", tt.comment, key, value, tt.wantKey, tt.wantValue)
			}
		})
	}
}

func TestParseBlock_PreservesOrder(t *testing.T) {
	track := types.NewTrack("a.flac", types.FormatFLAC, 0)
	data := buildBlock("reference libFLAC 1.4.3",
		"TITLE=Bad Apple!!",
		"LOOPSTART=1234",
		"ARTIST=ZUN",
		"LOOPLENGTH=5678",
		"TITLE=Alt Title",
	)

	if err := ParseBlock(data, track, 0); err != nil {
		t.Fatalf("ParseBlock() error = %v", err)
	}

	var names []string
	for name := range track.Metadata.All() {
		names = append(names, name)
	}
	if want := []string{"TITLE", "LOOPSTART", "ARTIST", "LOOPLENGTH"}; !slices.Equal(names, want) {
		t.Errorf("field order = %v, want %v", names, want)
	}
	if got := track.Metadata.Get("TITLE"); !slices.Equal(got, []string{"Bad Apple!!", "Alt Title"}) {
		t.Errorf("TITLE = %v", got)
	}
	if len(track.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", track.Warnings)
	}
}

func TestParseBlock_MalformedCommentWarns(t *testing.T) {
	track := types.NewTrack("a.ogg", types.FormatOgg, 0)
	data := buildBlock("v", "NOEQUALS", "LOOPSTART=10")

	if err := ParseBlock(data, track, 0); err != nil {
		t.Fatalf("ParseBlock() error = %v", err)
	}
	if track.Metadata.GetFirst("LOOPSTART") != "10" {
		t.Error("well-formed comment after a bad one should still be read")
	}
	if len(track.Warnings) != 1 {
		t.Errorf("Warnings = %v, want 1", track.Warnings)
	}
}

func TestParseBlock_Truncated(t *testing.T) {
	full := buildBlock("v", "LOOPSTART=10", "LOOPEND=20")

	t.Run("header", func(t *testing.T) {
		track := types.NewTrack("a.ogg", types.FormatOgg, 0)
		if err := ParseBlock(full[:3], track, 0); err == nil {
			t.Error("expected error for truncated vendor length")
		}
	})

	t.Run("vendor", func(t *testing.T) {
		track := types.NewTrack("a.ogg", types.FormatOgg, 0)
		if err := ParseBlock(buildBlock("vendor")[:6], track, 0); err == nil {
			t.Error("expected error for truncated vendor string")
		}
	})

	t.Run("second comment", func(t *testing.T) {
		track := types.NewTrack("a.ogg", types.FormatOgg, 0)
		if err := ParseBlock(full[:len(full)-3], track, 0); err != nil {
			t.Fatalf("ParseBlock() error = %v", err)
		}
		if track.Metadata.GetFirst("LOOPSTART") != "10" {
			t.Error("first comment should survive truncation")
		}
		if track.Metadata.Len() != 1 || len(track.Warnings) != 1 {
			t.Errorf("Len() = %d, Warnings = %v", track.Metadata.Len(), track.Warnings)
		}
	})
}
