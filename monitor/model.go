package monitor

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mpx-cli/mpx/player"
	"github.com/mpx-cli/mpx/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

const (
	seekStep   = 10
	jumpStep   = 60
	volumeStep = 5
)

type model struct {
	ctl    controller
	keymap *keymap

	progressC progress.Model
	helpC     help.Model

	items []string
	index int

	state    player.State
	seconds  float64
	item     mo.Option[player.Item]
	volume   int
	muted    bool
	audio    mo.Option[int]
	subtitle mo.Option[int]

	showStats bool
	stats     player.Stats

	status    string
	lastError error
	quitting  bool

	width, height int
}

func newModel(ctl controller, items []string, settings player.Settings) *model {
	m := &model{
		ctl:       ctl,
		keymap:    newKeymap(),
		progressC: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		helpC:     help.New(),
		items:     items,
		state:     player.StateStopped,
		volume:    settings.Volume,
		showStats: settings.UpdateStatistics,
	}

	if w, h, err := util.TerminalSize(); err == nil {
		m.resize(w, h)
	}
	return m
}

// Init starts the first item.
func (m *model) Init() tea.Cmd {
	if len(m.items) == 0 {
		return tea.Quit
	}
	m.playIndex(0)
	return nil
}

func (m *model) playIndex(i int) {
	m.index = i
	m.seconds = 0
	m.item = mo.None[player.Item]()
	m.audio = mo.None[int]()
	m.subtitle = mo.None[int]()
	m.stats = nil
	m.lastError = nil
	m.status = ""
	m.ctl.PlayItem(player.NewItem(m.items[i]))
}

func (m *model) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	m.width = width - x
	m.height = height - y
	m.progressC.Width = max(m.width, 10)
	m.helpC.Width = m.width
}

func (m *model) length() float64 {
	item, ok := m.item.Get()
	if !ok {
		return 0
	}
	return item.Length
}

// cycle returns the stream after current, wrapping around. Subtitles add -1 for off.
func (m *model) cycle(t player.StreamType, current mo.Option[int]) (int, bool) {
	item, ok := m.item.Get()
	if !ok {
		return 0, false
	}

	ids := lo.Map(item.StreamsOf(t), func(s player.Stream, _ int) int { return s.ID })
	if t == player.StreamSubtitle {
		ids = append([]int{-1}, ids...)
	}
	if len(ids) == 0 {
		return 0, false
	}

	at := lo.IndexOf(ids, current.OrElse(ids[0]))
	return ids[(at+1)%len(ids)], true
}
