package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/loopbar"
	"github.com/simonhull/loopbar/seekbar"
)

const renderHeight = 3

func newRenderCmd(a *app) *cobra.Command {
	var (
		position float64
		stopped  bool
	)

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Draw the seekbar of a track with its loop section",
		Long: `Render paints the seekbar as text: "-" is the bar, "=" the loop
section and "|" the slider at --position seconds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := loopbar.OpenContext(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, w := range track.Warnings {
				a.logger.Sugar().Warnw("parse warning", "path", track.Path, "warning", w.String())
			}

			width := a.cfg.Width
			bar := seekbar.NewBarWith(seekbar.CompactLayout, seekbar.DefaultTheme)
			panel := seekbar.NewPanel(bar)
			panel.OnSize(width, renderHeight)
			panel.OnNewTrack(track)

			canvas := seekbar.NewCanvas(width, renderHeight)
			canvas.SetTheme(bar.Theme)
			panel.Paint(canvas, seekbar.Playback{
				Position: position,
				Length:   track.Length(),
				Playing:  !stopped,
			})

			_, err = fmt.Fprintf(a.out, "%s%s (%s)\n", canvas, panel.Loop(), track.Audio)
			return err
		},
	}

	cmd.Flags().Float64VarP(&position, "position", "p", 0, "playback position in seconds")
	cmd.Flags().BoolVar(&stopped, "stopped", false, "draw without the slider")
	return cmd
}
