package monitor

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mpx-cli/mpx/color"
	"github.com/mpx-cli/mpx/icon"
	"github.com/mpx-cli/mpx/player"
	"github.com/mpx-cli/mpx/style"
	"github.com/mpx-cli/mpx/util"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wrap"
	"github.com/samber/lo"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

func (m *model) View() string {
	if m.quitting {
		return ""
	}

	lines := []string{
		style.Title("Now Playing"),
		"",
		m.fit(fmt.Sprintf("%s %s", icon.Get(icon.Progress), style.Fg(color.Purple)(m.title()))),
		style.Faint(m.position()),
		"",
		m.fit(m.viewState()),
		m.viewProgress(),
		"",
		m.fit(m.viewVolume()),
	}

	if streams := m.viewStreams(); streams != "" {
		lines = append(lines, m.fit(streams))
	}
	if m.showStats && len(m.stats) > 0 {
		lines = append(lines, "", m.fit(m.viewStats()))
	}
	if m.status != "" {
		lines = append(lines, "", m.fit(style.Faint(m.status)))
	}
	if m.lastError != nil {
		errorStyle := lipgloss.NewStyle().Foreground(style.ErrorColor).Bold(true)
		lines = append(lines, "", wrap.String(errorStyle.Render(icon.Get(icon.Fail)+" "+m.lastError.Error()), m.width))
	}

	return m.renderLines(lines)
}

func (m *model) renderLines(lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if m.height > h+1 {
		l += strings.Repeat("\n", m.height-h-1)
	}
	l += "\n" + m.helpC.View(m.keymap)
	return paddingStyle.Render(l)
}

func (m *model) fit(s string) string {
	if m.width <= 0 {
		return s
	}
	return truncate.StringWithTail(s, uint(m.width), "…")
}

func (m *model) title() string {
	if item, ok := m.item.Get(); ok && item.Title != "" {
		return item.Title
	}
	if len(m.items) == 0 {
		return ""
	}
	return filepath.Base(m.items[m.index])
}

func (m *model) position() string {
	return fmt.Sprintf("%d of %s", m.index+1, util.Quantify(len(m.items), "item", "items"))
}

func (m *model) viewState() string {
	var i icon.Icon
	switch {
	case m.state == player.StatePaused:
		i = icon.Pause
	case m.state == player.StateSeeking:
		i = icon.Seek
	case m.state == player.StateError:
		i = icon.Fail
	case m.state == player.StateFinished:
		i = icon.Success
	case m.state.In(player.GroupStopped):
		i = icon.Stop
	case m.state.In(player.GroupStartup):
		i = icon.Buffering
	default:
		i = icon.Play
	}

	clock := util.FormatSeconds(m.seconds)
	if length := m.length(); length > 0 {
		clock += " / " + util.FormatSeconds(length)
	}

	return fmt.Sprintf("%s %s  %s", icon.Get(i), style.New().Bold(true).Foreground(stateColor(m.state)).Render(m.state.String()), clock)
}

func stateColor(s player.State) lipgloss.Color {
	switch {
	case s == player.StateError:
		return style.ErrorColor
	case s.In(player.GroupStopped):
		return style.IdleColor
	case s.In(player.GroupPaused):
		return style.PausedColor
	case s.In(player.GroupStartup):
		return style.AccentColor
	default:
		return style.PlayingColor
	}
}

func (m *model) viewProgress() string {
	length := m.length()
	if length <= 0 {
		return m.progressC.ViewAs(0)
	}
	return m.progressC.ViewAs(util.Clamp(m.seconds/length, 0, 1))
}

func (m *model) viewVolume() string {
	if m.muted {
		return fmt.Sprintf("%s muted (%d%%)", icon.Get(icon.Mute), m.volume)
	}
	return fmt.Sprintf("%s %d%%", icon.Get(icon.Volume), m.volume)
}

func (m *model) viewStreams() string {
	item, ok := m.item.Get()
	if !ok {
		return ""
	}

	var parts []string
	if audio := item.StreamsOf(player.StreamAudio); len(audio) > 0 {
		parts = append(parts, fmt.Sprintf("audio %s", streamLabel(audio, m.audio.OrElse(audio[0].ID))))
	}
	if subs := item.StreamsOf(player.StreamSubtitle); len(subs) > 0 {
		current := m.subtitle.OrElse(-1)
		label := "off"
		if current >= 0 {
			label = streamLabel(subs, current)
		}
		parts = append(parts, fmt.Sprintf("%s %s", icon.Get(icon.Subtitle), label))
	}
	return strings.Join(parts, "  ")
}

func streamLabel(streams []player.Stream, id int) string {
	s, ok := lo.Find(streams, func(s player.Stream) bool { return s.ID == id })
	if !ok {
		return fmt.Sprint(id)
	}
	if s.Language != "" {
		return fmt.Sprintf("%d (%s)", s.ID, s.Language)
	}
	return fmt.Sprint(s.ID)
}

func (m *model) viewStats() string {
	keys := m.stats.Keys()
	slices.Sort(keys)

	return strings.Join(lo.Map(keys, func(k player.StatKey, _ int) string {
		if v, ok := m.stats.Float(k); ok {
			return fmt.Sprintf("%s %.1f", style.Fg(color.Cyan)(string(k)), v)
		}
		return fmt.Sprintf("%s %v", style.Fg(color.Cyan)(string(k)), m.stats[k])
	}), "  ")
}
