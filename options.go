package loopbar

// Option configures how a track is opened.
//
// Example:
//
//	track, err := loopbar.Open("bgm.flac", loopbar.WithStrictParsing())
type Option func(*openOptions)

type openOptions struct {
	strictParsing  bool // fail on any warning
	ignoreWarnings bool // drop all warnings
}

func defaultOptions() *openOptions {
	return &openOptions{}
}

// WithStrictParsing turns the first parse warning into an error.
//
// By default a damaged comment block or frame header is reported in
// Track.Warnings and whatever could be read is returned.
func WithStrictParsing() Option {
	return func(o *openOptions) {
		o.strictParsing = true
	}
}

// WithIgnoreWarnings discards parse warnings. Track.Warnings is always
// empty.
func WithIgnoreWarnings() Option {
	return func(o *openOptions) {
		o.ignoreWarnings = true
	}
}
