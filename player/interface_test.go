package player

import (
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/mpx-cli/mpx/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeProcess struct {
	mu       sync.Mutex
	sink     func(ProcessEvent)
	instance int
	running  bool

	binaries   []string
	starts     [][]string
	dirs       []string
	written    []string
	terminates int
	kills      int

	startErr error
	writeErr error
}

func (p *fakeProcess) Start(path string, args []string, dir string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.startErr != nil {
		return 0, p.startErr
	}
	if p.running {
		return 0, ErrAlreadyRunning
	}
	p.instance++
	p.running = true
	p.binaries = append(p.binaries, path)
	p.starts = append(p.starts, slices.Clone(args))
	p.dirs = append(p.dirs, dir)
	return p.instance, nil
}

func (p *fakeProcess) WriteLine(text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return &WriteError{Command: text, Err: ErrNotRunning}
	}
	if p.writeErr != nil {
		return &WriteError{Command: text, Err: p.writeErr}
	}
	p.written = append(p.written, text)
	return nil
}

func (p *fakeProcess) Terminate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.terminates++
	return nil
}

func (p *fakeProcess) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kills++
	return nil
}

func (p *fakeProcess) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *fakeProcess) emit(lines ...string) {
	p.mu.Lock()
	instance := p.instance
	p.mu.Unlock()
	for _, line := range lines {
		p.sink(ProcessEvent{Instance: instance, Line: line})
	}
}

func (p *fakeProcess) exit(code int) {
	p.mu.Lock()
	p.running = false
	instance := p.instance
	p.mu.Unlock()
	p.sink(ProcessEvent{Instance: instance, Terminated: true, ExitCode: code})
}

func (p *fakeProcess) lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.written)
}

func (p *fakeProcess) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.written = nil
}

func (p *fakeProcess) lastArgs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.starts[len(p.starts)-1]
}

type fakeTimers struct {
	mu      sync.Mutex
	pending []*fakeTimer
}

type fakeTimer struct {
	d         time.Duration
	fn        func()
	cancelled bool
}

func (t *fakeTimers) after(d time.Duration, fn func()) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	timer := &fakeTimer{d: d, fn: fn}
	t.pending = append(t.pending, timer)
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		timer.cancelled = true
	}
}

func (t *fakeTimers) fire() {
	t.mu.Lock()
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()
	for _, timer := range pending {
		if !timer.cancelled {
			timer.fn()
		}
	}
}

type recorder struct {
	mu       sync.Mutex
	states   [][2]State
	times    []float64
	streams  []Item
	selected []Stream
	stats    []Stats
	volumes  [][2]int
	failed   []error
	errors   []error
}

func (r *recorder) StateChanged(old, new State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, [2]State{old, new})
}

func (r *recorder) TimeUpdate(seconds float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.times = append(r.times, seconds)
}

func (r *recorder) StreamUpdate(item Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streams = append(r.streams, item)
}

func (r *recorder) StreamSelected(id int, t StreamType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = append(r.selected, Stream{ID: id, Type: t})
}

func (r *recorder) StatsUpdate(stats Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = append(r.stats, stats)
}

func (r *recorder) VolumeUpdate(level int, muted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := 0
	if muted {
		m = 1
	}
	r.volumes = append(r.volumes, [2]int{level, m})
}

func (r *recorder) CommandFailed(_ string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, err)
}

func (r *recorder) PlayerError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
}

func (r *recorder) newStates() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	var states []State
	for _, c := range r.states {
		states = append(states, c[1])
	}
	return states
}

// settle waits until the owner loop has run everything posted so far,
// including funcs posted by those funcs.
func settle(i *Interface) {
	for n := 0; n < 3; n++ {
		done := make(chan struct{})
		i.post(func() { close(done) })
		<-done
	}
}

func status(pos string) string {
	return "A:  " + pos + " V:  " + pos + " A-V:  0.000 ct:  0.000  100/100  5%  1%  0.3% 0 0"
}

type harness struct {
	i      *Interface
	proc   *fakeProcess
	timers *fakeTimers
	rec    *recorder
	now    time.Time
}

func newHarness(opts ...Option) *harness {
	h := &harness{
		proc:   &fakeProcess{},
		timers: &fakeTimers{},
		rec:    &recorder{},
		now:    time.Unix(1000, 0),
	}
	opts = append([]Option{
		WithProcessFactory(func(sink func(ProcessEvent)) Process {
			h.proc.sink = sink
			return h.proc
		}),
		WithScheduler(h.timers.after),
		WithClock(func() time.Time { return h.now }),
	}, opts...)
	h.i = New(opts...)
	_ = h.i.AddObserver(h.rec)
	return h
}

// play launches an item and brings it to Playing at one second.
func (h *harness) play() {
	h.i.PlayItem(NewItem("/media/movie.avi"))
	settle(h.i)
	h.proc.emit("Playing /media/movie.avi.", "Starting playback...", status("1.0"))
	settle(h.i)
	h.proc.clear()
}

func (h *harness) pause() {
	h.i.Pause()
	settle(h.i)
	h.proc.emit("=====  PAUSE  =====")
	settle(h.i)
	h.proc.clear()
}

func TestInterface(t *testing.T) {
	Convey("Given an interface with a fake player", t, func() {
		h := newHarness()
		Reset(func() { _ = h.i.Close() })

		Convey("It should start Stopped with nothing running", func() {
			So(h.i.State(), ShouldEqual, StateStopped)
			So(h.i.IsRunning(), ShouldBeFalse)
			So(h.i.IsMovieOpen(), ShouldBeFalse)
			So(h.i.Item().IsAbsent(), ShouldBeTrue)
		})

		Convey("Playing an item should walk through startup into Playing", func() {
			h.play()
			So(h.rec.newStates(), ShouldResemble, []State{StateInitializing, StateOpening, StatePlaying})
			So(h.i.State(), ShouldEqual, StatePlaying)
			So(h.i.IsPlaying(), ShouldBeTrue)
			So(h.i.Seconds(), ShouldEqual, 1.0)
			So(h.rec.times, ShouldResemble, []float64{1.0})
			So(h.proc.lastArgs()[len(h.proc.lastArgs())-1], ShouldEqual, "/media/movie.avi")
			So(h.proc.binaries[0], ShouldEqual, "mplayer")
		})

		Convey("Volume should be reapplied when playback starts", func() {
			h.i.PlayItem(NewItem("/media/movie.avi"))
			settle(h.i)
			h.proc.emit("Starting playback...")
			settle(h.i)
			So(h.proc.lines(), ShouldResemble, []string{"osd 0", "volume 100 1", "osd 1", "osd 0", "mute 0", "osd 1"})
		})

		Convey("Commands sent during startup should be delivered once the player responds", func() {
			h.i.PlayItem(NewItem("/media/movie.avi"))
			settle(h.i)
			h.i.SendCommand("osd_show_text hello", OSDAlways, PauseNone)
			settle(h.i)
			So(h.proc.lines(), ShouldBeEmpty)

			h.proc.emit("Starting playback...")
			settle(h.i)
			So(h.proc.lines()[0], ShouldEqual, "osd_show_text hello")
		})

		Convey("Time updates should be limited to tenths of a second", func() {
			h.play()
			h.proc.emit(status("1.02"), status("1.05"), status("1.1"), status("2.0"))
			settle(h.i)
			So(h.rec.times, ShouldResemble, []float64{1.0, 1.1, 2.0})
		})

		Convey("Pause", func() {
			h.play()
			h.i.Pause()
			settle(h.i)
			So(h.proc.lines(), ShouldResemble, []string{"pause"})

			h.proc.emit("  =====  PAUSE  =====")
			settle(h.i)
			So(h.i.State(), ShouldEqual, StatePaused)

			Convey("a status line should resume Playing", func() {
				h.proc.emit(status("1.5"))
				settle(h.i)
				So(h.i.State(), ShouldEqual, StatePlaying)
			})

			Convey("Play should unpause", func() {
				h.proc.clear()
				h.i.Play()
				settle(h.i)
				So(h.proc.lines(), ShouldResemble, []string{"pause"})
			})

			Convey("several commands sent while paused should stay paused until every echo arrives", func() {
				h.proc.clear()
				seen := len(h.rec.newStates())
				h.i.TakeScreenshot()
				h.i.TakeScreenshot()
				settle(h.i)
				So(h.proc.lines(), ShouldResemble, []string{"pause", "screenshot 0", "pause", "pause", "screenshot 0", "pause"})

				h.proc.emit(status("1.0"), "=====  PAUSE  =====", status("1.0"), "=====  PAUSE  =====")
				settle(h.i)
				So(h.rec.newStates()[seen:], ShouldBeEmpty)
				So(h.i.State(), ShouldEqual, StatePaused)

				h.proc.emit(status("1.2"))
				settle(h.i)
				So(h.i.State(), ShouldEqual, StatePlaying)
			})
		})

		Convey("Seeking", func() {
			Convey("seeks requested during startup should collapse into the last one", func() {
				h.i.PlayItem(NewItem("/media/movie.avi"))
				settle(h.i)
				h.i.Seek(10, SeekAbsolute, false)
				h.i.Seek(20, SeekAbsolute, false)
				settle(h.i)

				h.proc.emit("Starting playback...")
				settle(h.i)
				lines := h.proc.lines()
				So(lines[0], ShouldEqual, "seek 20 2")
				So(lines, ShouldNotContain, "seek 10 2")
				So(h.i.State(), ShouldEqual, StateSeeking)

				h.proc.emit(status("20.0"))
				settle(h.i)
				So(h.i.State(), ShouldEqual, StatePlaying)
				So(h.i.Seconds(), ShouldEqual, 20.0)
			})

			Convey("a seek while paused should end paused", func() {
				h.play()
				h.pause()
				h.i.Seek(-5, SeekRelative, false)
				settle(h.i)
				So(h.proc.lines(), ShouldResemble, []string{"pause", "seek -5 0", "pause"})
				So(h.i.State(), ShouldEqual, StateSeeking)

				h.proc.emit(status("0.5"), "=====  PAUSE  =====")
				settle(h.i)
				So(h.i.State(), ShouldEqual, StatePaused)
				So(h.i.Seconds(), ShouldEqual, 0.5)
			})

			Convey("a forced seek should interrupt a running seek", func() {
				h.play()
				h.i.Seek(10, SeekAbsolute, false)
				h.i.Seek(30, SeekAbsolute, false)
				h.i.Seek(60, SeekAbsolute, true)
				settle(h.i)
				So(h.proc.lines(), ShouldResemble, []string{"seek 10 2", "seek 60 2"})

				h.proc.emit(status("60.0"))
				settle(h.i)
				So(h.proc.lines(), ShouldHaveLength, 2)
			})

			Convey("a seek without a session should be ignored", func() {
				h.i.Seek(10, SeekAbsolute, true)
				settle(h.i)
				So(h.proc.lines(), ShouldBeEmpty)
			})
		})

		Convey("Exits", func() {
			h.play()

			Convey("end of file should finish the session", func() {
				h.proc.emit("Exiting... (End of file)")
				h.proc.exit(0)
				settle(h.i)
				So(h.i.State(), ShouldEqual, StateFinished)
				So(h.rec.errors, ShouldBeEmpty)
				So(h.i.IsRunning(), ShouldBeFalse)
			})

			Convey("stop should quit and end Stopped", func() {
				h.i.Stop()
				settle(h.i)
				So(h.proc.lines(), ShouldResemble, []string{"quit"})

				h.proc.emit("Exiting... (Quit)")
				h.proc.exit(0)
				settle(h.i)
				So(h.i.State(), ShouldEqual, StateStopped)
			})

			Convey("stop should kill a player that does not exit in time", func() {
				h.i.Stop()
				settle(h.i)
				h.timers.fire()
				settle(h.i)
				So(h.proc.kills, ShouldEqual, 1)
			})

			Convey("a quit nobody asked for should finish", func() {
				h.proc.emit("ID_EXIT=QUIT")
				settle(h.i)
				So(h.i.State(), ShouldEqual, StateFinished)
			})

			Convey("an error exit should fail and report", func() {
				h.proc.emit("ID_EXIT=ERROR")
				settle(h.i)
				So(h.i.State(), ShouldEqual, StateError)
				So(h.rec.errors, ShouldHaveLength, 1)
			})

			Convey("dying without an exit line should be an unexpected exit", func() {
				h.proc.exit(139)
				settle(h.i)
				So(h.i.State(), ShouldEqual, StateError)
				So(h.rec.errors, ShouldHaveLength, 1)
				So(errors.Is(h.rec.errors[0], ErrUnexpectedExit), ShouldBeTrue)
			})

			Convey("commands after the session should fail", func() {
				h.proc.emit("Exiting... (End of file)")
				h.proc.exit(0)
				settle(h.i)
				h.i.SendCommand("pause", OSDAlways, PauseToggle)
				settle(h.i)
				So(h.rec.failed, ShouldHaveLength, 1)
				So(errors.Is(h.rec.failed[0], ErrNotRunning), ShouldBeTrue)
			})

			Convey("Play should replay the item after the session", func() {
				h.proc.emit("Exiting... (End of file)")
				h.proc.exit(0)
				settle(h.i)
				h.i.Play()
				settle(h.i)
				So(h.proc.starts, ShouldHaveLength, 2)
				So(h.i.State(), ShouldEqual, StateInitializing)
			})
		})

		Convey("Playing another item should stop the current one first", func() {
			h.play()
			h.i.PlayItem(NewItem("/media/next.avi"))
			settle(h.i)
			So(h.proc.lines(), ShouldResemble, []string{"quit"})
			So(h.proc.starts, ShouldHaveLength, 1)

			h.proc.emit("Exiting... (Quit)")
			h.proc.exit(0)
			settle(h.i)
			So(h.proc.starts, ShouldHaveLength, 2)
			So(h.proc.lastArgs()[len(h.proc.lastArgs())-1], ShouldEqual, "/media/next.avi")
			So(h.i.State(), ShouldEqual, StateInitializing)
			So(h.rec.errors, ShouldBeEmpty)
		})

		Convey("A launch failure should end in Error", func() {
			h.proc.startErr = &LaunchError{Path: "mplayer", Err: errors.New("not found")}
			h.i.PlayItem(NewItem("/media/movie.avi"))
			settle(h.i)
			So(h.i.State(), ShouldEqual, StateError)
			var launchErr *LaunchError
			So(errors.As(h.rec.errors[0], &launchErr), ShouldBeTrue)
		})

		Convey("A failed write should be reported and dropped", func() {
			h.play()
			h.proc.writeErr = errors.New("broken pipe")
			h.i.TakeScreenshot()
			settle(h.i)
			So(h.rec.failed, ShouldHaveLength, 1)
			var failed *CommandFailedError
			So(errors.As(h.rec.failed[0], &failed), ShouldBeTrue)
			So(failed.Command, ShouldEqual, "screenshot 0")
		})

		Convey("Streams", func() {
			h.i.PlayItem(NewItem("/media/movie.avi"))
			settle(h.i)
			h.proc.emit("ID_VIDEO_ID=0", "ID_AUDIO_ID=1", "ID_AID_1_LANG=jpn", "ID_SUBTITLE_ID=0", "ID_LENGTH=1440.00")
			settle(h.i)
			So(h.rec.streams, ShouldBeEmpty)

			h.proc.emit("Starting playback...")
			settle(h.i)
			So(h.rec.streams, ShouldHaveLength, 1)
			item := h.rec.streams[0]
			So(item.Length, ShouldEqual, 1440.0)
			So(item.StreamsOf(StreamAudio), ShouldResemble, []Stream{{ID: 1, Type: StreamAudio, Language: "jpn"}})

			stored := h.i.Item().MustGet()
			So(stored.Streams, ShouldHaveLength, 3)

			Convey("streams found while playing should be reported at once", func() {
				h.proc.emit("ID_AUDIO_ID=2")
				settle(h.i)
				So(h.rec.streams, ShouldHaveLength, 2)
			})

			Convey("selecting a stream should be confirmed by the player", func() {
				h.proc.clear()
				h.i.SelectAudioStream(2)
				settle(h.i)
				So(h.proc.lines(), ShouldResemble, []string{"switch_audio 2", "get_property switch_audio"})

				h.proc.emit("ANS_switch_audio=2")
				settle(h.i)
				So(h.rec.selected, ShouldResemble, []Stream{{ID: 2, Type: StreamAudio}})
			})
		})

		Convey("Volume", func() {
			Convey("while playing it should be sent and confirmed", func() {
				h.play()
				h.i.SetVolume(150, false)
				settle(h.i)
				So(h.proc.lines(), ShouldContain, "volume 100 1")
				So(h.proc.lines(), ShouldContain, "get_property volume")

				h.proc.emit("ANS_volume=100.000000", "ANS_mute=no")
				settle(h.i)
				So(h.rec.volumes[len(h.rec.volumes)-1], ShouldResemble, [2]int{100, 0})
			})

			Convey("without a session it should be kept for the next launch", func() {
				h.i.SetVolume(30, true)
				settle(h.i)
				level, muted := h.i.Volume()
				So(level, ShouldEqual, 30)
				So(muted, ShouldBeTrue)
				So(h.rec.volumes, ShouldResemble, [][2]int{{30, 1}})

				h.i.PlayItem(NewItem("/media/movie.avi"))
				settle(h.i)
				So(indexAfter(h.proc.lastArgs(), "-volume"), ShouldEqual, "30")
				So(h.proc.lastArgs(), ShouldContain, "-mute")
			})
		})

		Convey("Statistics should be throttled and only sent when enabled", func() {
			h.play()
			h.proc.emit(status("1.2"))
			settle(h.i)
			So(h.rec.stats, ShouldBeEmpty)

			h.i.SetUpdateStatistics(true)
			h.proc.emit(status("1.3"), status("1.4"))
			settle(h.i)
			So(h.rec.stats, ShouldHaveLength, 1)
			So(h.rec.stats[0][StatStatus], ShouldEqual, "Playing")

			h.now = h.now.Add(time.Second)
			h.proc.emit(status("1.5"))
			settle(h.i)
			So(h.rec.stats, ShouldHaveLength, 2)
		})

		Convey("Subtitle files", func() {
			filesystem.SetMemMapFs()
			Reset(filesystem.SetOsFs)
			So(filesystem.API().MkdirAll("/subs", 0o755), ShouldBeNil)
			So(filesystem.API().WriteFile("/subs/a.srt", []byte("1\n"), 0o644), ShouldBeNil)

			Convey("should be loaded, selected and kept across restarts", func() {
				h.play()
				h.i.LoadSubtitleFile("/subs/a.srt")
				settle(h.i)
				So(h.proc.lines(), ShouldResemble, []string{`sub_load "/subs/a.srt"`})

				h.proc.emit("ID_FILE_SUB_ID=0", "ID_FILE_SUB_FILENAME=/subs/a.srt")
				settle(h.i)
				So(h.proc.lines(), ShouldContain, "sub_file 0")

				h.i.ApplySettingsWithRestart(DefaultSettings())
				settle(h.i)
				h.proc.exit(0)
				settle(h.i)
				So(indexAfter(h.proc.lastArgs(), "-sub"), ShouldEqual, "/subs/a.srt")
			})

			Convey("that do not exist should be refused", func() {
				h.play()
				h.i.LoadSubtitleFile("/subs/missing.srt")
				settle(h.i)
				So(h.proc.lines(), ShouldBeEmpty)
				So(h.rec.failed, ShouldHaveLength, 1)
			})
		})

		Convey("Restart", func() {
			h.play()
			h.proc.emit(status("42.5"))
			settle(h.i)
			h.pause()

			next := DefaultSettings()
			next.CacheSize = 4096
			h.i.ApplySettingsWithRestart(next)
			settle(h.i)
			So(h.proc.terminates, ShouldEqual, 1)
			So(h.i.State(), ShouldEqual, StateInitializing)

			Convey("should resume at the old position and pause again", func() {
				h.proc.emit("Exiting... (Quit)")
				settle(h.i)
				So(h.i.State(), ShouldEqual, StateInitializing)

				h.proc.exit(0)
				settle(h.i)
				So(h.proc.starts, ShouldHaveLength, 2)
				args := h.proc.lastArgs()
				So(indexAfter(args, "-ss"), ShouldEqual, "42.5")
				So(indexAfter(args, "-cache"), ShouldEqual, "4096")
				So(h.i.Item().MustGet().RestartTime, ShouldEqual, 42.5)

				h.proc.clear()
				h.proc.emit("Starting playback...", status("42.5"))
				settle(h.i)
				So(h.proc.lines(), ShouldContain, "pause")

				h.proc.emit("=====  PAUSE  =====")
				settle(h.i)
				So(h.i.State(), ShouldEqual, StatePaused)
				So(h.rec.errors, ShouldBeEmpty)
			})

			Convey("should kill a player that does not exit in time", func() {
				h.timers.fire()
				settle(h.i)
				So(h.proc.kills, ShouldEqual, 1)
				So(h.rec.errors, ShouldHaveLength, 1)
				So(errors.Is(h.rec.errors[0], ErrRestartTimeout), ShouldBeTrue)

				h.proc.exit(-1)
				settle(h.i)
				So(h.proc.starts, ShouldHaveLength, 2)
			})

			Convey("should fold requests made meanwhile into the latest settings", func() {
				latest := next
				latest.Framedrop = true
				h.i.ApplySettingsWithRestart(latest)
				settle(h.i)
				So(h.proc.terminates, ShouldEqual, 1)

				h.proc.exit(0)
				settle(h.i)
				So(h.proc.starts, ShouldHaveLength, 2)
				So(h.proc.lastArgs(), ShouldContain, "-framedrop")
			})

			Convey("should keep live settings applied while the old player exits", func() {
				live := next
				live.OSDLevel = 3
				live.UpdateStatistics = true
				h.i.ApplySettings(live)
				settle(h.i)
				So(h.proc.terminates, ShouldEqual, 1)

				h.proc.exit(0)
				settle(h.i)
				So(h.proc.starts, ShouldHaveLength, 2)
				So(indexAfter(h.proc.lastArgs(), "-cache"), ShouldEqual, "4096")
				So(h.i.settings.OSDLevel, ShouldEqual, 3)
				So(h.i.stats, ShouldBeTrue)
			})

			Convey("requested while relaunching should run once the new player is up", func() {
				h.proc.exit(0)
				settle(h.i)
				latest := next
				latest.Threads = 2
				h.i.ApplySettingsWithRestart(latest)
				settle(h.i)
				So(h.proc.terminates, ShouldEqual, 1)

				h.proc.emit("Starting playback...")
				settle(h.i)
				So(h.proc.terminates, ShouldEqual, 2)
				h.proc.exit(0)
				settle(h.i)
				So(indexAfter(h.proc.lastArgs(), "-lavdopts"), ShouldEqual, "threads=2")
			})
		})

		Convey("Settings that can be applied live should not restart", func() {
			h.play()
			next := DefaultSettings()
			next.OSDLevel = 3
			h.i.ApplySettings(next)
			settle(h.i)
			So(h.proc.terminates, ShouldEqual, 0)
			So(h.proc.lines(), ShouldResemble, []string{"osd 3"})
		})

		Convey("A panicking observer should not stop the loop", func() {
			So(h.i.AddObserver(&ObserverFuncs{OnStateChanged: func(State, State) { panic("boom") }}), ShouldBeNil)
			h.play()
			So(h.i.State(), ShouldEqual, StatePlaying)
			So(h.rec.newStates(), ShouldResemble, []State{StateInitializing, StateOpening, StatePlaying})
		})

		Convey("Observers may call back into the interface", func() {
			So(h.i.AddObserver(&ObserverFuncs{OnStateChanged: func(_, new State) {
				if new == StatePlaying {
					h.i.Pause()
				}
			}}), ShouldBeNil)
			h.i.PlayItem(NewItem("/media/movie.avi"))
			settle(h.i)
			h.proc.emit("Starting playback...")
			settle(h.i)
			So(h.proc.lines(), ShouldContain, "pause")
		})
	})
}
