package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simonhull/loopbar/internal/cache"
	"github.com/simonhull/loopbar/internal/config"
	"github.com/simonhull/loopbar/internal/logging"
)

// app is the state shared by every subcommand, built before any of them
// runs.
type app struct {
	out    io.Writer
	cfg    config.Config
	logger *zap.Logger
	cache  *cache.Cache
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "loopbar",
		Short: "Read loop sections from audio file tags",
		Long: `loopbar reads LOOPSTART, LOOPLENGTH and LOOPEND tags from FLAC, Ogg,
Opus, MP3 and M4A files and shows where each track loops.

Every flag can also be set with a LOOPBAR_* environment variable or in a
.env file, e.g. LOOPBAR_WORKERS=4.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.init,
		PersistentPostRun: func(*cobra.Command, []string) { _ = a.logger.Sync() },
	}
	root.SetOut(out)
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newScanCmd(a),
		newWatchCmd(a),
		newRenderCmd(a),
		newTagsCmd(a),
		newVersionCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()

	envFile, err := flags.GetString("env-file")
	if err != nil {
		return err
	}
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}

	v, err := config.NewViper(flags)
	if err != nil {
		return err
	}
	if a.cfg, err = config.Load(v); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	if a.logger, err = logging.New(a.cfg.LogLevel, a.cfg.LogFormat); err != nil {
		return err
	}
	if a.cache, err = cache.New(a.cfg.CacheSize, a.logger); err != nil {
		return err
	}

	a.logger.Debug("configured",
		zap.String("output", a.cfg.Output),
		zap.Int("workers", a.cfg.WorkerCount()),
		zap.Int("cache_size", a.cfg.CacheSize),
		zap.Strings("extensions", a.cfg.Extensions))
	return nil
}
