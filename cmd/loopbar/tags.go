package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/simonhull/loopbar"
)

func newTagsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tags <file>",
		Short: "Dump what was read from a file",
		Long: `Tags prints the metadata fields in file order, the technical info the
loop resolver sees and any parse warnings. Useful for checking why a track's
loop was not picked up.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := loopbar.OpenContext(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeTags(a, track)
		},
	}
}

func writeTags(a *app, track *loopbar.Track) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "file\t%s\n", track.Path)
	fmt.Fprintf(tw, "format\t%s\n", track.Format)
	fmt.Fprintf(tw, "audio\t%s\n", track.Audio)
	fmt.Fprintf(tw, "loop\t%s\n", track.Loop)

	fmt.Fprintln(tw, "\n[technical]")
	for _, f := range track.Technical() {
		fmt.Fprintf(tw, "%s\t%s\n", f.Key, f.Value)
	}

	fmt.Fprintln(tw, "\n[metadata]")
	for name, values := range track.Meta() {
		fmt.Fprintf(tw, "%s\t%s\n", name, strings.Join(values, " / "))
	}

	if len(track.Warnings) > 0 {
		fmt.Fprintln(tw, "\n[warnings]")
		for _, w := range track.Warnings {
			fmt.Fprintln(tw, w)
		}
	}
	return tw.Flush()
}
