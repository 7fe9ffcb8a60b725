// Package monitor provides the interactive terminal view of a playback session.
package monitor

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mpx-cli/mpx/player"
)

// Options encapsulates the runtime configuration for the monitor.
type Options struct {
	Items    []string
	Settings player.Settings
	Player   []player.Option
}

// Run plays the items in a full screen view until the list is done or the user quits.
func Run(options *Options) error {
	p := player.New(append([]player.Option{player.WithSettings(options.Settings)}, options.Player...)...)
	defer func() {
		_ = p.Close()
	}()

	m := newModel(p, options.Items, options.Settings)
	program := tea.NewProgram(m, tea.WithAltScreen())

	b := &bridge{send: program.Send}
	if err := p.AddObserver(b); err != nil {
		return err
	}
	defer p.RemoveObserver(b)

	_, err := program.Run()
	return err
}

// controller is the part of *player.Interface the monitor drives.
type controller interface {
	PlayItem(item *player.Item)
	Play()
	Pause()
	Stop()
	Seek(seconds float64, mode player.SeekMode, forced bool)
	SetVolume(level int, muted bool)
	TakeScreenshot()
	SelectAudioStream(id int)
	SelectSubtitleStream(id int)
	SetUpdateStatistics(on bool)
}

type (
	stateMsg  struct{ old, new player.State }
	timeMsg   float64
	itemMsg   player.Item
	volumeMsg struct {
		level int
		muted bool
	}
	selectedMsg struct {
		id  int
		typ player.StreamType
	}
	statsMsg  player.Stats
	failedMsg struct {
		command string
		err     error
	}
	errorMsg struct{ err error }
)

// bridge forwards player notifications into the bubbletea program.
type bridge struct {
	send func(tea.Msg)
}

func (b *bridge) StateChanged(old, new player.State)         { b.send(stateMsg{old: old, new: new}) }
func (b *bridge) TimeUpdate(seconds float64)                 { b.send(timeMsg(seconds)) }
func (b *bridge) StreamUpdate(item player.Item)              { b.send(itemMsg(item)) }
func (b *bridge) StreamSelected(id int, t player.StreamType) { b.send(selectedMsg{id: id, typ: t}) }
func (b *bridge) StatsUpdate(stats player.Stats)             { b.send(statsMsg(stats)) }
func (b *bridge) VolumeUpdate(level int, muted bool)         { b.send(volumeMsg{level: level, muted: muted}) }
func (b *bridge) CommandFailed(command string, err error) {
	b.send(failedMsg{command: command, err: err})
}
func (b *bridge) PlayerError(err error) { b.send(errorMsg{err: err}) }
