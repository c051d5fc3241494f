package m4a

import "testing"

func TestCodecName(t *testing.T) {
	tests := []struct {
		fourCC string
		want   string
	}{
		{"mp4a", "AAC"},
		{"alac", "ALAC"},
		{"ec-3", "E-AC-3"},
		{".mp3", "MP3"},
		{"UNKN", "UNKN"},
	}

	for _, tt := range tests {
		t.Run(tt.fourCC, func(t *testing.T) {
			if got := codecName(tt.fourCC); got != tt.want {
				t.Errorf("codecName(%q) = %q, want %q", tt.fourCC, got, tt.want)
			}
		})
	}
}
