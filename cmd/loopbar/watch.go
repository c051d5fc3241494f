package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simonhull/loopbar/internal/watcher"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <dir>",
		Short: "Log loop sections of files as they change",
		Long: `Watch resolves every matching file under dir once, then re-reads each
file after it is written and logs its loop section until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watch(cmd.Context(), args[0])
		},
	}
}

func (a *app) watch(ctx context.Context, dir string) error {
	w, err := watcher.New(a.logger, watcher.Options{
		SettleDelay: a.cfg.Debounce,
		Match:       a.cfg.Matches,
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(dir); err != nil {
		return err
	}

	paths, err := a.collect([]string{dir})
	if err != nil {
		return err
	}
	for _, r := range a.resolveAll(ctx, paths) {
		a.logResult(r)
	}

	go w.Run(ctx)
	a.logger.Info("watching", zap.String("dir", dir), zap.Int("files", len(paths)))

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.Errors():
			a.logger.Warn("watch error", zap.Error(err))
		case ev := <-w.Events():
			a.cache.Invalidate(ev.Path)
			if ev.Type == watcher.EventRemoved {
				a.logger.Info("removed", zap.String("path", ev.Path))
				continue
			}
			info, err := a.cache.Resolve(ctx, ev.Path, load)
			a.logResult(result{Path: ev.Path, Info: info, Err: err})
		}
	}
}

func (a *app) logResult(r result) {
	if r.Err != nil {
		a.logger.Warn("cannot read file", zap.String("path", r.Path), zap.Error(r.Err))
		return
	}
	fields := []zap.Field{zap.String("path", r.Path), zap.Bool("valid", r.Info.Valid)}
	if r.Info.Valid {
		start, end := r.Info.Samples()
		fields = append(fields,
			zap.Float64("start", r.Info.Start),
			zap.Int64("start_sample", start),
			zap.Int64("end_sample", end))
	}
	a.logger.Info(r.Info.String(), fields...)
}
