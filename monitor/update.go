package monitor

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mpx-cli/mpx/icon"
	"github.com/mpx-cli/mpx/log"
	"github.com/mpx-cli/mpx/player"
	"github.com/mpx-cli/mpx/util"
	"github.com/samber/mo"
)

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		return m.updateKey(msg)
	case stateMsg:
		return m.updateState(msg)
	case timeMsg:
		m.seconds = float64(msg)
	case itemMsg:
		m.item = mo.Some(player.Item(msg))
	case volumeMsg:
		m.volume, m.muted = msg.level, msg.muted
	case selectedMsg:
		switch msg.typ {
		case player.StreamAudio:
			m.audio = mo.Some(msg.id)
		case player.StreamSubtitle:
			m.subtitle = mo.Some(msg.id)
		}
	case statsMsg:
		m.stats = player.Stats(msg)
	case failedMsg:
		m.status = fmt.Sprintf("%s: %v", msg.command, msg.err)
	case errorMsg:
		m.lastError = msg.err
	}

	return m, nil
}

func (m *model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.forceQuit), key.Matches(msg, m.keymap.quit):
		m.quitting = true
		m.ctl.Stop()
		return m, tea.Quit
	case key.Matches(msg, m.keymap.showHelp):
		m.helpC.ShowAll = !m.helpC.ShowAll
	case key.Matches(msg, m.keymap.playPause):
		if m.state.In(player.GroupStopped) {
			m.ctl.Play()
		} else {
			m.ctl.Pause()
		}
	case key.Matches(msg, m.keymap.seekBack):
		m.ctl.Seek(-seekStep, player.SeekRelative, false)
	case key.Matches(msg, m.keymap.seekForward):
		m.ctl.Seek(seekStep, player.SeekRelative, false)
	case key.Matches(msg, m.keymap.jumpBack):
		m.ctl.Seek(-jumpStep, player.SeekRelative, false)
	case key.Matches(msg, m.keymap.jumpForward):
		m.ctl.Seek(jumpStep, player.SeekRelative, false)
	case key.Matches(msg, m.keymap.volumeUp):
		m.ctl.SetVolume(util.Clamp(m.volume+volumeStep, 0, 100), m.muted)
	case key.Matches(msg, m.keymap.volumeDown):
		m.ctl.SetVolume(util.Clamp(m.volume-volumeStep, 0, 100), m.muted)
	case key.Matches(msg, m.keymap.mute):
		m.ctl.SetVolume(m.volume, !m.muted)
	case key.Matches(msg, m.keymap.screenshot):
		m.ctl.TakeScreenshot()
		m.status = icon.Get(icon.Screenshot) + " screenshot taken"
	case key.Matches(msg, m.keymap.cycleAudio):
		if id, ok := m.cycle(player.StreamAudio, m.audio); ok {
			m.ctl.SelectAudioStream(id)
		}
	case key.Matches(msg, m.keymap.cycleSubtitle):
		if id, ok := m.cycle(player.StreamSubtitle, m.subtitle); ok {
			m.ctl.SelectSubtitleStream(id)
		}
	case key.Matches(msg, m.keymap.stats):
		m.showStats = !m.showStats
		if !m.showStats {
			m.stats = nil
		}
		m.ctl.SetUpdateStatistics(m.showStats)
	case key.Matches(msg, m.keymap.next):
		if m.index+1 < len(m.items) {
			m.playIndex(m.index + 1)
		}
	case key.Matches(msg, m.keymap.previous):
		if m.index > 0 {
			m.playIndex(m.index - 1)
		}
	}

	return m, nil
}

func (m *model) updateState(msg stateMsg) (tea.Model, tea.Cmd) {
	m.state = msg.new
	log.With(log.Fields{"from": msg.old, "to": msg.new}).Debug("monitor: state changed")

	if msg.new != player.StateFinished || m.quitting {
		return m, nil
	}
	if m.index+1 < len(m.items) {
		m.playIndex(m.index + 1)
		return m, nil
	}
	return m, tea.Quit
}
