package inline

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mpx-cli/mpx/player"
	"github.com/mpx-cli/mpx/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

type (
	// EventFilter decides whether events of a kind are written.
	EventFilter func(kind string) bool
	// Control is one parsed line of the control input.
	Control func(p *player.Interface)
)

type Options struct {
	Out      io.Writer
	Control  mo.Option[io.Reader]
	Json     bool
	Items    []string
	Events   mo.Option[EventFilter]
	Settings player.Settings
	Player   []player.Option
}

// ParseEventFilter parses a comma separated list of event kinds.
// Format: "all", "state,time", "-time" (everything except time)
func ParseEventFilter(description string) (EventFilter, error) {
	description = strings.TrimSpace(description)
	if description == "" || description == "all" {
		return func(string) bool { return true }, nil
	}

	exclude := strings.HasPrefix(description, "-")
	description = strings.TrimPrefix(description, "-")

	kinds := lo.Map(strings.Split(description, ","), func(k string, _ int) string {
		return strings.ToLower(strings.TrimSpace(k))
	})
	for _, k := range kinds {
		if !lo.Contains(Kinds(), k) {
			return nil, fmt.Errorf("unknown event kind: %s", k)
		}
	}

	return func(kind string) bool {
		return lo.Contains(kinds, kind) != exclude
	}, nil
}

// ParseControl parses a control line.
//
//	pause | play | stop | quit | screenshot
//	seek <seconds> [relative|percent|absolute] [force]
//	volume <0-100> | mute | unmute
//	sub <path> | audio <id> | video <id> | subtitle <id>
//	stats on|off
//	raw <slave command>
func ParseControl(line string) (Control, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty control")
	}

	name, args := strings.ToLower(fields[0]), fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	atoi := func() (int, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("%s: expected one number", name)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		return n, nil
	}

	switch name {
	case "pause":
		return func(p *player.Interface) { p.Pause() }, nil
	case "play":
		return func(p *player.Interface) { p.Play() }, nil
	case "stop":
		return func(p *player.Interface) { p.Stop() }, nil
	case "screenshot":
		return func(p *player.Interface) { p.TakeScreenshot() }, nil
	case "seek":
		return parseSeek(args)
	case "volume":
		n, err := atoi()
		if err != nil {
			return nil, err
		}
		level := util.Clamp(n, 0, 100)
		return func(p *player.Interface) {
			_, muted := p.Volume()
			p.SetVolume(level, muted)
		}, nil
	case "mute", "unmute":
		muted := name == "mute"
		return func(p *player.Interface) {
			level, _ := p.Volume()
			p.SetVolume(level, muted)
		}, nil
	case "sub":
		if rest == "" {
			return nil, fmt.Errorf("sub: expected a path")
		}
		return func(p *player.Interface) { p.LoadSubtitleFile(rest) }, nil
	case "audio", "video", "subtitle":
		id, err := atoi()
		if err != nil {
			return nil, err
		}
		return func(p *player.Interface) {
			switch name {
			case "audio":
				p.SelectAudioStream(id)
			case "video":
				p.SelectVideoStream(id)
			default:
				p.SelectSubtitleStream(id)
			}
		}, nil
	case "stats":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return nil, fmt.Errorf("stats: expected on or off")
		}
		on := args[0] == "on"
		return func(p *player.Interface) { p.SetUpdateStatistics(on) }, nil
	case "raw":
		if rest == "" {
			return nil, fmt.Errorf("raw: expected a command")
		}
		return func(p *player.Interface) {
			p.SendCommand(rest, player.OSDConditional, player.PauseKeep)
		}, nil
	default:
		return nil, fmt.Errorf("unknown control: %s", name)
	}
}

func parseSeek(args []string) (Control, error) {
	if len(args) == 0 || len(args) > 3 {
		return nil, fmt.Errorf("seek: expected seconds, an optional mode and force")
	}

	seconds, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}

	mode := player.SeekRelative
	forced := false
	for _, arg := range args[1:] {
		switch strings.ToLower(arg) {
		case "relative":
			mode = player.SeekRelative
		case "percent":
			mode = player.SeekPercent
		case "absolute":
			mode = player.SeekAbsolute
		case "force":
			forced = true
		default:
			return nil, fmt.Errorf("seek: unknown argument %s", arg)
		}
	}

	return func(p *player.Interface) { p.Seek(seconds, mode, forced) }, nil
}
