package style

import "github.com/charmbracelet/lipgloss"

// Palette of the monitor and the check box.
var (
	Text        = lipgloss.Color("#cdd6f4")
	AccentColor = lipgloss.Color("#cba6f7")
	ErrorColor  = lipgloss.Color("#f38ba8")
	HiRed       = ErrorColor

	// playback states
	PlayingColor = lipgloss.Color("#a6e3a1")
	PausedColor  = lipgloss.Color("#f9e2af")
	IdleColor    = lipgloss.Color("#6c7086")
)
