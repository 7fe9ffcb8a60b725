package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/mpx-cli/mpx/filesystem"
	"github.com/mpx-cli/mpx/inline"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inlineCmd)

	inlineCmd.Flags().BoolP("json", "j", false, "Write events as JSON lines")
	inlineCmd.Flags().StringP("events", "e", "all", "Event kinds to write, comma separated; a leading - excludes them")
	inlineCmd.Flags().BoolP("control", "c", false, "Read control commands from standard input")
	inlineCmd.Flags().StringP("output", "o", "", "Specify a file path to write the events to")

	lo.Must0(inlineCmd.RegisterFlagCompletionFunc("events", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return append(inline.Kinds(), "all"), cobra.ShellCompDirectiveNoFileComp
	}))
}

// inlineCmd plays without a user interface and reports every player event.
var inlineCmd = &cobra.Command{
	Use:   "inline [files or urls...]",
	Short: "Play without a user interface and report player events",
	Long: `Play the given items one after another and write every player event to the output.

Event kinds:
  state, time, streams, selected, stats, volume, failed, error

Control commands (one per line with --control):
  pause | play | stop | quit | screenshot
  seek <seconds> [relative|percent|absolute] [force]
  volume <0-100> | mute | unmute
  sub <path> | audio <id> | video <id> | subtitle <id>
  stats on|off
  raw <slave command>`,
	Example: "  mpx inline --json --events state,time movie.mkv",
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		var writer io.Writer = os.Stdout
		if output := lo.Must(cmd.Flags().GetString("output")); output != "" {
			file, err := filesystem.API().Create(output)
			handleErr(err)
			defer file.Close()
			writer = file
		}

		filter, err := inline.ParseEventFilter(lo.Must(cmd.Flags().GetString("events")))
		handleErr(err)

		control := mo.None[io.Reader]()
		if lo.Must(cmd.Flags().GetBool("control")) {
			control = mo.Some[io.Reader](os.Stdin)
		}

		options := &inline.Options{
			Out:      writer,
			Control:  control,
			Json:     lo.Must(cmd.Flags().GetBool("json")),
			Items:    args,
			Events:   mo.Some(filter),
			Settings: playerSettings(),
		}

		handleErr(inline.Run(cmd.Context(), options))
	},
}

func init() {
	inlineCmd.AddCommand(inlineSchemaCmd)
}

// inlineSchemaCmd generates the JSON schema of inline event lines.
var inlineSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate the JSON schema of inline event lines",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(json.NewEncoder(os.Stdout).Encode(inline.Schema()))
	},
}
