package inline

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/mpx-cli/mpx/player"
	"github.com/samber/lo"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

// scriptedProcess plays a fixed output script on every launch.
type scriptedProcess struct {
	mu       sync.Mutex
	sink     func(player.ProcessEvent)
	instance int
	running  bool
	script   []string
	exits    bool
	startErr error
	written  []string
}

func (p *scriptedProcess) Start(string, []string, string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startErr != nil {
		return 0, p.startErr
	}
	p.instance++
	p.running = true

	instance := p.instance
	for _, line := range p.script {
		p.sink(player.ProcessEvent{Instance: instance, Line: line})
	}
	if p.exits {
		p.running = false
		p.sink(player.ProcessEvent{Instance: instance, Terminated: true})
	}
	return instance, nil
}

func (p *scriptedProcess) WriteLine(text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return player.ErrNotRunning
	}
	p.written = append(p.written, text)
	if text == "quit" {
		p.exit()
	}
	return nil
}

func (p *scriptedProcess) exit() {
	if !p.running {
		return
	}
	p.running = false
	p.sink(player.ProcessEvent{Instance: p.instance, Line: "ID_EXIT=QUIT"})
	p.sink(player.ProcessEvent{Instance: p.instance, Terminated: true})
}

func (p *scriptedProcess) Terminate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exit()
	return nil
}

func (p *scriptedProcess) Kill() error { return p.Terminate() }

func (p *scriptedProcess) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *scriptedProcess) factory() player.Option {
	return player.WithProcessFactory(func(sink func(player.ProcessEvent)) player.Process {
		p.sink = sink
		return p
	})
}

func status(pos string) string {
	return "A:  " + pos + " V:  " + pos + " A-V:  0.000 ct:  0.000  100/100  5%  1%  0.3% 0 0"
}

func decode(out *bytes.Buffer) []Event {
	var events []Event
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		var e Event
		So(json.Unmarshal(scanner.Bytes(), &e), ShouldBeNil)
		events = append(events, e)
	}
	return events
}

func states(events []Event) []string {
	return lo.FilterMap(events, func(e Event, _ int) (string, bool) {
		if e.Kind != KindState {
			return "", false
		}
		return e.State.To, true
	})
}

func TestRun(t *testing.T) {
	Convey("Given a player that plays to the end", t, func() {
		proc := &scriptedProcess{
			script: []string{
				"Playing movie.avi.",
				"Starting playback...",
				status("1.0"),
				status("2.0"),
				"ID_EXIT=EOF",
			},
			exits: true,
		}
		var out bytes.Buffer
		options := &Options{
			Out:      &out,
			Json:     true,
			Items:    []string{"first.avi", "second.avi"},
			Settings: player.DefaultSettings(),
			Player:   []player.Option{proc.factory()},
		}

		Convey("Every item should be played in turn", func() {
			So(Run(context.Background(), options), ShouldBeNil)
			So(proc.instance, ShouldEqual, 2)

			events := decode(&out)
			So(lo.Count(states(events), "Finished"), ShouldEqual, 2)
			So(lo.Count(states(events), "Playing"), ShouldEqual, 2)
			So(lo.ContainsBy(events, func(e Event) bool {
				return e.Kind == KindTime && *e.Seconds == 2.0
			}), ShouldBeTrue)
		})

		Convey("A filter should keep only the listed kinds", func() {
			filter, err := ParseEventFilter("state")
			So(err, ShouldBeNil)
			options.Events = mo.Some(filter)

			So(Run(context.Background(), options), ShouldBeNil)
			for _, e := range decode(&out) {
				So(e.Kind, ShouldEqual, KindState)
			}
		})

		Convey("Plain output should be one line per event", func() {
			options.Json = false
			options.Items = options.Items[:1]

			So(Run(context.Background(), options), ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "state Playing -> Finished\n")
			So(out.String(), ShouldContainSubstring, "time 0:02\n")
		})
	})

	Convey("Given a player that cannot start", t, func() {
		proc := &scriptedProcess{startErr: errors.New("no such file")}
		var out bytes.Buffer

		err := Run(context.Background(), &Options{
			Out:      &out,
			Json:     true,
			Items:    []string{"a.avi", "b.avi"},
			Settings: player.DefaultSettings(),
			Player:   []player.Option{proc.factory()},
		})

		Convey("The run should report every failed item", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "2 items failed")
			errs := lo.Filter(decode(&out), func(e Event, _ int) bool { return e.Kind == KindError })
			So(errs, ShouldHaveLength, 2)
		})
	})

	Convey("Given a player that keeps playing", t, func() {
		proc := &scriptedProcess{script: []string{"Starting playback...", status("5.0")}}
		var out bytes.Buffer

		err := Run(context.Background(), &Options{
			Out:      &out,
			Json:     true,
			Items:    []string{"live.avi"},
			Control:  mo.Some[io.Reader](strings.NewReader("bogus\n# comment\nquit\n")),
			Settings: player.DefaultSettings(),
			Player:   []player.Option{proc.factory()},
		})

		Convey("quit on the control input should end the run", func() {
			So(err, ShouldBeNil)
			failures := lo.Filter(decode(&out), func(e Event, _ int) bool { return e.Kind == KindFailed })
			So(failures, ShouldHaveLength, 1)
			So(failures[0].Failed.Command, ShouldEqual, "bogus")
		})
	})

	Convey("Run without items should fail", t, func() {
		So(Run(context.Background(), &Options{}), ShouldEqual, ErrNothingToPlay)
	})
}

func TestParseEventFilter(t *testing.T) {
	Convey("Given event filter descriptions", t, func() {
		Convey("all should accept everything", func() {
			f, err := ParseEventFilter("all")
			So(err, ShouldBeNil)
			So(lo.EveryBy(Kinds(), func(k string) bool { return f(k) }), ShouldBeTrue)
		})

		Convey("A list should accept only its kinds", func() {
			f, err := ParseEventFilter("state, Time")
			So(err, ShouldBeNil)
			So(f(KindState), ShouldBeTrue)
			So(f(KindTime), ShouldBeTrue)
			So(f(KindStats), ShouldBeFalse)
		})

		Convey("A leading minus should exclude the kinds", func() {
			f, err := ParseEventFilter("-time")
			So(err, ShouldBeNil)
			So(f(KindTime), ShouldBeFalse)
			So(f(KindState), ShouldBeTrue)
		})

		Convey("Unknown kinds should be rejected", func() {
			_, err := ParseEventFilter("state,nope")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestParseControl(t *testing.T) {
	Convey("Given control lines", t, func() {
		for _, line := range []string{
			"pause", "play", "stop", "screenshot",
			"seek 10", "seek -5 relative", "seek 50 percent", "seek 90 absolute force",
			"volume 150", "mute", "unmute",
			"sub /tmp/movie.srt", "audio 1", "video 0", "subtitle -1",
			"stats on", "raw osd_show_text hello",
		} {
			_, err := ParseControl(line)
			So(err, ShouldBeNil)
		}

		for _, line := range []string{
			"", "fly", "seek", "seek abc", "seek 1 sideways", "volume", "volume loud",
			"sub", "audio x", "stats maybe", "raw",
		} {
			_, err := ParseControl(line)
			So(err, ShouldNotBeNil)
		}
	})
}

func TestSchema(t *testing.T) {
	Convey("The schema should describe an event line", t, func() {
		data, err := json.Marshal(Schema())
		So(err, ShouldBeNil)
		So(string(data), ShouldContainSubstring, `"kind"`)
		So(string(data), ShouldContainSubstring, `"seconds"`)
	})
}
