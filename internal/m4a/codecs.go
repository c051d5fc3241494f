package m4a

// codecNames maps sample entry FourCC codes to codec names.
var codecNames = map[string]string{
	"mp4a": "AAC",
	"mhm1": "xHE-AAC",
	"mhm2": "xHE-AAC",
	"ac-3": "AC-3",
	"ec-3": "E-AC-3",
	"ac-4": "AC-4",
	"alac": "ALAC",
	"fLaC": "FLAC",
	"Opus": "Opus",
	"mp3 ": "MP3",
	".mp3": "MP3",
}

var losslessCodecs = map[string]bool{
	"alac": true,
	"fLaC": true,
}

// codecName returns the codec name for a FourCC, or the FourCC itself.
func codecName(fourCC string) string {
	if name, ok := codecNames[fourCC]; ok {
		return name
	}
	return fourCC
}
