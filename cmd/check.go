package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/mpx-cli/mpx/color"
	"github.com/mpx-cli/mpx/constant"
	"github.com/mpx-cli/mpx/icon"
	"github.com/mpx-cli/mpx/key"
	"github.com/mpx-cli/mpx/style"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

// checkCmd verifies that the configured player can be found.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that the configured player executable can be found",
	Run: func(cmd *cobra.Command, args []string) {
		path := CheckDependencies()
		cmd.Printf("%s %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), path)
	},
}

// CheckDependencies verifies that the configured player binary exists and
// exits with an install hint otherwise.
func CheckDependencies() string {
	binary := viper.GetString(key.PlayerBinary)
	if binary == "" {
		binary = constant.DefaultBinary
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		printMissingDependencyError(binary)
		os.Exit(1)
	}
	return path
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case constant.Darwin:
		installCmd = "brew install mplayer"
	case constant.Linux:
		installCmd = "sudo apt install mplayer"
	case constant.Windows:
		installCmd = "scoop install mplayer"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Error: Missing Player", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The player '%s' was not found in your PATH.", dep))

	suggestion := fmt.Sprintf("\n\nSet another one with:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(constant.Mpx+" config set "+key.PlayerBinary+" <path>"))
	if installCmd != "" {
		suggestion += fmt.Sprintf("\n\nOr install it by running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
