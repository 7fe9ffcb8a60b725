// Package inline provides the implementation for the application's non-interactive, programmable execution mode.
package inline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mpx-cli/mpx/log"
	"github.com/mpx-cli/mpx/player"
	"github.com/mpx-cli/mpx/util"
	"github.com/samber/lo"
)

// ErrNothingToPlay is returned by Run without items.
var ErrNothingToPlay = errors.New("nothing to play")

// Run plays the items one after another and writes every player
// notification to options.Out. Lines read from options.Control are applied
// to the player as they arrive; "quit" ends the run.
func Run(ctx context.Context, options *Options) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}
	if len(options.Items) == 0 {
		return ErrNothingToPlay
	}

	e := newEmitter(options.Out, options.Json, options.Events.OrElse(func(string) bool { return true }))

	p := player.New(append([]player.Option{player.WithSettings(options.Settings)}, options.Player...)...)
	defer func() {
		_ = p.Close()
	}()

	if err := p.AddObserver(e); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if r, ok := options.Control.Get(); ok {
		go e.control(ctx, cancel, p, r)
	}

	var failed []string
	for _, path := range options.Items {
		log.With(log.Fields{"item": path}).Info("inline: playing")
		p.PlayItem(player.NewItem(path))

		select {
		case <-ctx.Done():
			p.Stop()
			return e.writeErr()
		case state := <-e.ended:
			if state == player.StateError {
				failed = append(failed, path)
			}
		}
	}

	if err := e.writeErr(); err != nil {
		return err
	}
	if len(failed) > 0 {
		return fmt.Errorf("%s failed: %s", util.Quantify(len(failed), "item", "items"), strings.Join(failed, ", "))
	}
	return nil
}

// emitter writes notifications to out. It is registered as an observer of
// every kind.
type emitter struct {
	mu     sync.Mutex
	out    io.Writer
	json   bool
	filter EventFilter
	now    func() time.Time
	err    error

	ended chan player.State
}

func newEmitter(out io.Writer, json bool, filter EventFilter) *emitter {
	return &emitter{
		out:    out,
		json:   json,
		filter: filter,
		now:    time.Now,
		ended:  make(chan player.State, 1),
	}
}

func (e *emitter) emit(ev *Event) {
	if !e.filter(ev.Kind) {
		return
	}
	ev.At = e.now()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return
	}

	var data []byte
	if e.json {
		var err error
		if data, err = asJson(ev); err != nil {
			e.err = err
			return
		}
	} else {
		data = []byte(plain(ev) + "\n")
	}

	if _, err := e.out.Write(data); err != nil {
		e.err = err
	}
}

func (e *emitter) writeErr() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

func (e *emitter) StateChanged(old, new player.State) {
	e.emit(&Event{Kind: KindState, State: &StateChange{From: old.String(), To: new.String()}})

	// a launch failure may not change the state; PlayerError reports it
	if new.In(player.GroupStopped) && !old.In(player.GroupStopped) {
		e.end(new)
	}
}

func (e *emitter) end(s player.State) {
	select {
	case e.ended <- s:
	default:
	}
}

func (e *emitter) TimeUpdate(seconds float64) {
	e.emit(&Event{Kind: KindTime, Seconds: &seconds})
}

func (e *emitter) StreamUpdate(item player.Item) {
	e.emit(&Event{Kind: KindStreams, Item: &item})
}

func (e *emitter) StreamSelected(id int, t player.StreamType) {
	e.emit(&Event{Kind: KindSelected, Selected: &Selection{ID: id, Type: t.String()}})
}

func (e *emitter) StatsUpdate(stats player.Stats) {
	e.emit(&Event{Kind: KindStats, Stats: lo.MapKeys(stats, func(_ any, k player.StatKey) string {
		return string(k)
	})})
}

func (e *emitter) VolumeUpdate(level int, muted bool) {
	e.emit(&Event{Kind: KindVolume, Volume: &Volume{Level: level, Muted: muted}})
}

func (e *emitter) CommandFailed(command string, err error) {
	e.emit(&Event{Kind: KindFailed, Failed: &Failure{Command: command, Error: err.Error()}})
}

func (e *emitter) PlayerError(err error) {
	e.emit(&Event{Kind: KindError, Error: err.Error()})

	var launchErr *player.LaunchError
	if errors.As(err, &launchErr) {
		e.end(player.StateError)
	}
}

// control applies each line of r until it is exhausted, quit is read or ctx ends.
func (e *emitter) control(ctx context.Context, quit context.CancelFunc, p *player.Interface, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "quit" {
			quit()
			return
		}

		c, err := ParseControl(line)
		if err != nil {
			e.emit(&Event{Kind: KindFailed, Failed: &Failure{Command: line, Error: err.Error()}})
			continue
		}
		c(p)
	}
	if err := scanner.Err(); err != nil {
		log.WithError(err).Warn("inline: reading control input")
	}
}

func plain(ev *Event) string {
	switch ev.Kind {
	case KindState:
		return fmt.Sprintf("state %s -> %s", ev.State.From, ev.State.To)
	case KindTime:
		return "time " + util.FormatSeconds(*ev.Seconds)
	case KindStreams:
		return fmt.Sprintf("streams %s %s", ev.Item.Path, util.Quantify(len(ev.Item.Streams), "stream", "streams"))
	case KindSelected:
		return fmt.Sprintf("selected %s %d", ev.Selected.Type, ev.Selected.ID)
	case KindStats:
		keys := lo.Keys(ev.Stats)
		slices.Sort(keys)
		pairs := lo.Map(keys, func(k string, _ int) string { return fmt.Sprintf("%s=%v", k, ev.Stats[k]) })
		return "stats " + strings.Join(pairs, " ")
	case KindVolume:
		return fmt.Sprintf("volume %d%s", ev.Volume.Level, lo.Ternary(ev.Volume.Muted, " muted", ""))
	case KindFailed:
		return fmt.Sprintf("failed %s: %s", ev.Failed.Command, ev.Failed.Error)
	default:
		return "error " + ev.Error
	}
}
