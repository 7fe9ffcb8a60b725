// Package cmd implements the command-line interface for mpx.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/mpx-cli/mpx/color"
	"github.com/mpx-cli/mpx/constant"
	"github.com/mpx-cli/mpx/icon"
	"github.com/mpx-cli/mpx/key"
	"github.com/mpx-cli/mpx/log"
	"github.com/mpx-cli/mpx/player"
	"github.com/mpx-cli/mpx/style"
	"github.com/mpx-cli/mpx/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringP("binary", "b", "", "Player executable to launch")
	lo.Must0(viper.BindPFlag(key.PlayerBinary, rootCmd.PersistentFlags().Lookup("binary")))

	rootCmd.PersistentFlags().Int("volume", 100, "Initial volume from 0 to 100")
	lo.Must0(viper.BindPFlag(key.PlayerVolume, rootCmd.PersistentFlags().Lookup("volume")))

	rootCmd.PersistentFlags().Int("osd", 1, "On-screen display level from 0 to 3")
	lo.Must0(viper.BindPFlag(key.PlayerOSDLevel, rootCmd.PersistentFlags().Lookup("osd")))

	rootCmd.PersistentFlags().BoolP("fullscreen", "f", false, "Start playback in fullscreen")
	lo.Must0(viper.BindPFlag(key.PlayerFullscreen, rootCmd.PersistentFlags().Lookup("fullscreen")))

	rootCmd.PersistentFlags().Bool("stats", false, "Report performance statistics while playing")
	lo.Must0(viper.BindPFlag(key.PlayerUpdateStatistics, rootCmd.PersistentFlags().Lookup("stats")))
}

// rootCmd defines the entry point for the mpx application.
var rootCmd = &cobra.Command{
	Use:   constant.Mpx + " [files or urls...]",
	Short: "A terminal front end for MPlayer in slave mode",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - A terminal front end for MPlayer in slave mode"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		if len(args) == 0 {
			handleErr(cmd.Help())
			return
		}

		playCmd.Run(playCmd, args)
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// playerSettings reads the player settings, falling back to the default
// screenshot directory.
func playerSettings() player.Settings {
	settings := player.SettingsFromConfig()
	if settings.ScreenshotDir == "" {
		settings.ScreenshotDir = where.Screenshots()
	}
	return settings
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
