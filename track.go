package loopbar

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/loopbar/internal/registry"
	"github.com/simonhull/loopbar/internal/types"
	"github.com/simonhull/loopbar/loop"
)

// Track is an opened audio file: its ordered metadata, stream properties,
// parse warnings and the loop section resolved from its tags.
//
// Track implements loop.Source, so it can be handed straight to a
// seekbar.Panel:
//
//	track, err := loopbar.Open("bgm.ogg")
//	if err != nil {
//		return err
//	}
//	panel.OnNewTrack(track)
type Track struct {
	// Path to the audio file
	Path string

	// Detected format
	Format Format

	// File size in bytes
	Size int64

	// Modification time, zero when read from a reader
	ModTime time.Time

	// Metadata fields in file order
	Metadata Metadata

	// Stream properties
	Audio AudioInfo

	// Non-fatal issues found while parsing
	Warnings []Warning

	// Loop section resolved from the metadata
	Loop loop.Info

	tech TechInfo
}

// Meta iterates the metadata fields in file order.
func (t *Track) Meta() iter.Seq2[string, []string] {
	return t.Metadata.All()
}

// InfoFind looks up a technical-info value such as "samplerate".
func (t *Track) InfoFind(name string) (string, bool) {
	return t.tech.Find(name)
}

// Technical returns the technical info in display order.
func (t *Track) Technical() []TechField {
	return t.tech.Fields()
}

// Length returns the playback length in seconds, or 0 when unknown.
func (t *Track) Length() float64 {
	return t.Audio.Seconds()
}

// Open reads the metadata of an audio file and resolves its loop section.
//
// Supported formats: FLAC, Ogg Vorbis, Opus, MP3, M4A, M4B.
//
// A damaged file may still open, with the problems listed in
// Track.Warnings. Use WithStrictParsing to treat them as errors.
func Open(path string, opts ...Option) (*Track, error) {
	return OpenContext(context.Background(), path, opts...)
}

// OpenContext is Open with cancellation. The context is checked before the
// file is opened and again before parsing.
func OpenContext(ctx context.Context, path string, opts ...Option) (*Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	track, err := OpenReader(f, stat.Size(), path, opts...)
	if err != nil {
		return nil, err
	}
	track.ModTime = stat.ModTime()
	return track, nil
}

// OpenReader parses a track from r. path is used for error messages and for
// telling M4A brands apart.
func OpenReader(r io.ReaderAt, size int64, path string, opts ...Option) (*Track, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	format, err := types.DetectFormat(r, size, path)
	if err != nil {
		return nil, err
	}

	parser := registry.Get(format)
	if parser == nil {
		return nil, &UnsupportedFormatError{
			Path:   path,
			Reason: fmt.Sprintf("no parser available for format %s", format),
		}
	}

	parsed, err := parser.Parse(r, size, path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}

	if options.strictParsing && len(parsed.Warnings) > 0 {
		return nil, fmt.Errorf("strict parsing failed: %s", parsed.Warnings[0])
	}

	track := &Track{
		Path:     path,
		Format:   format,
		Size:     size,
		Metadata: parsed.Metadata,
		Audio:    parsed.Audio,
		Warnings: parsed.Warnings,
		tech:     parsed.Audio.Technical(),
	}
	if options.ignoreWarnings {
		track.Warnings = nil
	}
	track.Loop = loop.Load(track)

	return track, nil
}

// OpenMany opens files concurrently, up to runtime.NumCPU() at a time.
// Results are in input order. The first failure cancels the rest and is
// returned.
func OpenMany(ctx context.Context, paths []string, opts ...Option) ([]*Track, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]*Track, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			track, err := OpenContext(ctx, path, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = track
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
