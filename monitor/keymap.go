package monitor

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/mpx-cli/mpx/color"
	"github.com/mpx-cli/mpx/style"
)

type keymap struct {
	playPause,
	seekBack, seekForward,
	jumpBack, jumpForward,
	volumeUp, volumeDown, mute,
	screenshot,
	cycleAudio, cycleSubtitle,
	stats,
	next, previous,
	quit, forceQuit,
	showHelp key.Binding
}

func newKeymap() *keymap {
	return &keymap{
		playPause: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp(style.Fg(color.Orange)("space"), style.Fg(color.Orange)("pause/resume")),
		),
		seekBack: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "-10s"),
		),
		seekForward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "+10s"),
		),
		jumpBack: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "-1m"),
		),
		jumpForward: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "+1m"),
		),
		volumeUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "volume up"),
		),
		volumeDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "volume down"),
		),
		mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		screenshot: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "screenshot"),
		),
		cycleAudio: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "audio track"),
		),
		cycleSubtitle: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "subtitles"),
		),
		stats: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "statistics"),
		),
		next: key.NewBinding(
			key.WithKeys("n", ">"),
			key.WithHelp("n", "next"),
		),
		previous: key.NewBinding(
			key.WithKeys("N", "<"),
			key.WithHelp("N", "previous"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.playPause, k.seekBack, k.seekForward, k.volumeUp, k.volumeDown, k.showHelp, k.quit}
}

func (k *keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.playPause, k.seekBack, k.seekForward, k.jumpBack, k.jumpForward},
		{k.volumeUp, k.volumeDown, k.mute, k.screenshot},
		{k.cycleAudio, k.cycleSubtitle, k.stats},
		{k.next, k.previous, k.showHelp, k.quit},
	}
}
