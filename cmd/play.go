package cmd

import (
	"github.com/mpx-cli/mpx/monitor"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(playCmd)
}

// playCmd plays files and streams in the interactive monitor.
var playCmd = &cobra.Command{
	Use:     "play [files or urls...]",
	Short:   "Play files and streams in the interactive monitor",
	Args:    cobra.MinimumNArgs(1),
	Example: "  mpx play ~/Videos/movie.mkv https://example.com/stream.m3u8",
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		options := monitor.Options{
			Items:    args,
			Settings: playerSettings(),
		}
		handleErr(monitor.Run(&options))
	},
}
