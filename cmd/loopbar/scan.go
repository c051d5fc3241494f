package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/simonhull/loopbar"
	"github.com/simonhull/loopbar/internal/config"
	"github.com/simonhull/loopbar/loop"
)

func newScanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Print the loop section of each file",
		Long: `Scan resolves the loop section of every audio file given, walking
directories recursively. Text output is one "path<TAB>start<TAB>end" line per
file with times in seconds, "end" for a loop running to the end of the track
and "-" for a file without a valid loop. JSON output is one object per line.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := a.collect(args)
			if err != nil {
				return err
			}
			results := a.resolveAll(cmd.Context(), paths)
			return a.print(results)
		},
	}
}

// result is the outcome for one file.
type result struct {
	Path string
	Info loop.Info
	Err  error
}

// collect expands directories into the matching files beneath them.
// Explicit file arguments are kept whatever their extension.
func (a *app) collect(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				a.logger.Warn("cannot access path", zap.String("path", p), zap.Error(err))
				return nil
			}
			if !d.IsDir() && a.cfg.Matches(p) {
				paths = append(paths, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
	}
	return paths, nil
}

// load opens a track and returns its loop section.
func load(ctx context.Context, path string) (loop.Info, error) {
	track, err := loopbar.OpenContext(ctx, path)
	if err != nil {
		return loop.Info{}, err
	}
	return track.Loop, nil
}

// resolveAll resolves paths concurrently through the cache. Unreadable
// files are logged and reported as having no loop.
func (a *app) resolveAll(ctx context.Context, paths []string) []result {
	results := make([]result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.WorkerCount())
	for i, path := range paths {
		g.Go(func() error {
			info, err := a.cache.Resolve(ctx, path, load)
			if err != nil {
				a.logger.Warn("cannot read file", zap.String("path", path), zap.Error(err))
			}
			results[i] = result{Path: path, Info: info, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	s := a.cache.Stats()
	a.logger.Debug("scan complete",
		zap.Int("files", len(paths)),
		zap.Uint64("cache_hits", s.Hits),
		zap.Uint64("cache_misses", s.Misses))
	return results
}

func (a *app) print(results []result) error {
	if a.cfg.Output == config.OutputJSON {
		enc := json.NewEncoder(a.out)
		for _, r := range results {
			if err := enc.Encode(newRecord(r)); err != nil {
				return err
			}
		}
		return nil
	}

	for _, r := range results {
		if err := writeText(a.out, r); err != nil {
			return err
		}
	}
	return nil
}

func writeText(w io.Writer, r result) error {
	if !r.Info.Valid {
		_, err := fmt.Fprintf(w, "%s\t-\n", r.Path)
		return err
	}
	end := "end"
	if r.Info.HasEnd() {
		end = formatSeconds(r.Info.End)
	}
	_, err := fmt.Fprintf(w, "%s\t%s\t%s\n", r.Path, formatSeconds(r.Info.Start), end)
	return err
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

// record is the JSON form of a result.
type record struct {
	Path        string   `json:"path"`
	Valid       bool     `json:"valid"`
	SampleRate  int      `json:"sample_rate,omitempty"`
	Start       *float64 `json:"start,omitempty"`
	End         *float64 `json:"end,omitempty"`
	StartSample *int64   `json:"start_sample,omitempty"`
	EndSample   *int64   `json:"end_sample,omitempty"`
	Error       string   `json:"error,omitempty"`
}

func newRecord(r result) record {
	rec := record{Path: r.Path, Valid: r.Info.Valid, SampleRate: r.Info.SampleRate}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	if !r.Info.Valid {
		return rec
	}

	start, end := r.Info.Samples()
	rec.Start = finite(r.Info.Start)
	rec.StartSample = &start
	if r.Info.HasEnd() && !math.IsInf(r.Info.End, 0) {
		rec.End = finite(r.Info.End)
		rec.EndSample = &end
	}
	return rec
}

func finite(f float64) *float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}
