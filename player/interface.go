// Package player supervises an MPlayer process running in slave mode.
//
// An Interface owns one player process at a time. It turns the player's
// output into a playback State and typed notifications, and delivers
// commands only when the player can act on them.
//
// All inbound calls are asynchronous: they are queued to the Interface's
// owner goroutine and return immediately. Observers are called from that
// goroutine and may call back into the Interface.
package player

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mpx-cli/mpx/filesystem"
	"github.com/mpx-cli/mpx/log"
	"github.com/mpx-cli/mpx/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Option configures an Interface.
type Option func(*Interface)

// WithProcessFactory replaces the operating system process, mostly for tests.
func WithProcessFactory(factory ProcessFactory) Option {
	return func(i *Interface) {
		i.newProcess = factory
	}
}

// WithSettings sets the initial settings.
func WithSettings(s Settings) Option {
	return func(i *Interface) {
		i.settings = s.normalized()
	}
}

// WithClock replaces time.Now for statistics throttling.
func WithClock(now func() time.Time) Option {
	return func(i *Interface) {
		i.now = now
	}
}

// WithScheduler replaces time.AfterFunc for timeouts. The returned func cancels.
func WithScheduler(after func(d time.Duration, fn func()) (cancel func())) Option {
	return func(i *Interface) {
		i.after = after
	}
}

type snapshot struct {
	state   State
	seconds float64
	volume  int
	muted   bool
	running bool
	item    *Item
}

// Interface drives one player process and reports what it does.
type Interface struct {
	box       *mailbox
	done      chan struct{}
	closeOnce sync.Once

	notifier   Notifier
	newProcess ProcessFactory
	now        func() time.Time
	after      func(time.Duration, func()) func()

	// Owned by the loop goroutine.
	process    Process
	settings   Settings
	sm         *StateMachine
	dispatcher *Dispatcher
	parser     *Parser
	restart    restartCoordinator
	instance   int

	item          *Item
	next          mo.Option[*Item]
	stopRequested bool
	seconds       float64
	lastTick      int
	volume        int
	muted         bool
	equalizer     Equalizer
	subtitles     []string
	selectFileSub bool
	streamsDirty  bool
	stats         bool
	throttle      statsThrottle

	snapMu sync.RWMutex
	snap   snapshot
}

// New starts an Interface in the Stopped state. Close releases it.
func New(opts ...Option) *Interface {
	i := &Interface{
		box:      newMailbox(),
		done:     make(chan struct{}),
		settings: DefaultSettings(),
		newProcess: func(sink func(ProcessEvent)) Process {
			return NewSupervisor(sink)
		},
		now: time.Now,
		after: func(d time.Duration, fn func()) func() {
			t := time.AfterFunc(d, fn)
			return func() { t.Stop() }
		},
		parser:   NewParser(),
		lastTick: -1,
	}
	for _, opt := range opts {
		opt(i)
	}

	i.volume = i.settings.Volume
	i.stats = i.settings.UpdateStatistics
	i.throttle = statsThrottle{now: i.now}
	i.process = i.newProcess(i.deliver)
	i.sm = NewStateMachine(i.onStateChanged)
	i.dispatcher = NewDispatcher(i.process, i.sm, i.onCommandFailed)
	i.dispatcher.SetOSDLevel(i.settings.OSDLevel)
	i.publish()

	go i.loop()
	return i
}

func (i *Interface) loop() {
	defer close(i.done)
	for {
		fn, ok := i.box.next()
		if !ok {
			return
		}
		fn()
		i.publish()
	}
}

func (i *Interface) post(fn func()) {
	if !i.box.post(fn) {
		log.Debug("player interface is closed, dropping call")
	}
}

// deliver is the process sink; it runs on reader goroutines.
func (i *Interface) deliver(ev ProcessEvent) {
	i.post(func() { i.handleProcessEvent(ev) })
}

func (i *Interface) publish() {
	i.snapMu.Lock()
	defer i.snapMu.Unlock()

	i.snap.state = i.sm.Current()
	i.snap.seconds = i.seconds
	i.snap.volume = i.volume
	i.snap.muted = i.muted
	i.snap.running = i.process.Running()
}

func (i *Interface) publishItem() {
	var item *Item
	if i.item != nil {
		item = i.item.clone()
	}

	i.snapMu.Lock()
	i.snap.item = item
	i.snapMu.Unlock()
}

func (i *Interface) read() snapshot {
	i.snapMu.RLock()
	defer i.snapMu.RUnlock()
	return i.snap
}

// State returns the current playback state.
func (i *Interface) State() State {
	return i.read().state
}

// Groups returns the groups of the current state.
func (i *Interface) Groups() Groups {
	return i.read().state.Groups()
}

// Seconds returns the last reported playback position.
func (i *Interface) Seconds() float64 {
	return i.read().seconds
}

// Volume returns the volume level and mute flag.
func (i *Interface) Volume() (level int, muted bool) {
	s := i.read()
	return s.volume, s.muted
}

// Item returns a copy of the current item with everything discovered so far.
func (i *Interface) Item() mo.Option[Item] {
	if item := i.read().item; item != nil {
		return mo.Some(*item)
	}
	return mo.None[Item]()
}

// IsRunning reports whether a player process is alive.
func (i *Interface) IsRunning() bool {
	return i.read().running
}

// IsPlaying reports whether playback is moving forward.
func (i *Interface) IsPlaying() bool {
	return i.read().state.In(GroupPlaying)
}

// IsMovieOpen reports whether a session is in progress.
func (i *Interface) IsMovieOpen() bool {
	return !i.read().state.In(GroupStopped)
}

// AddObserver registers o. It fails for observers that cannot be compared,
// such as ObserverFuncs passed by value.
func (i *Interface) AddObserver(o Observer) error {
	return i.notifier.Add(o)
}

// RemoveObserver unregisters o.
func (i *Interface) RemoveObserver(o Observer) {
	i.notifier.Remove(o)
}

// Done is closed when the Interface has shut down.
func (i *Interface) Done() <-chan struct{} {
	return i.done
}

// Close kills the player and stops the Interface. It waits for queued
// calls to finish and must not be called from an observer.
func (i *Interface) Close() error {
	i.closeOnce.Do(func() {
		i.post(func() {
			i.stopRequested = true
			i.next = mo.None[*Item]()
			i.cancelRestart()
			if i.process.Running() {
				if err := i.process.Kill(); err != nil {
					log.WithError(err).Warn("killing player on close")
				}
			}
		})
		i.box.close()
	})
	<-i.done
	return nil
}

// PlayItem ends the current session, if any, and starts playing item.
func (i *Interface) PlayItem(item *Item) {
	if item == nil {
		return
	}
	i.post(func() {
		i.next = mo.Some(item)
		if i.process.Running() {
			i.cancelRestart()
			i.requestStop()
			return
		}
		i.launchNext()
	})
}

// Play resumes a paused session or replays the current item once the
// session has ended.
func (i *Interface) Play() {
	i.post(func() {
		switch {
		case i.sm.Current() == StatePaused:
			i.togglePause()
		case i.sm.In(GroupStopped) && i.item != nil && !i.process.Running():
			i.launch(i.item, 0, false)
		}
	})
}

// Pause toggles pause.
func (i *Interface) Pause() {
	i.post(func() {
		if i.sm.In(GroupStopped) {
			return
		}
		i.togglePause()
	})
}

func (i *Interface) togglePause() {
	i.dispatcher.ReleasePause()
	i.dispatcher.Send(Command{Text: "pause", OSD: OSDAlways, Pausing: PauseToggle})
}

// Stop ends the session. The state becomes Stopped once the player exits.
func (i *Interface) Stop() {
	i.post(func() {
		i.next = mo.None[*Item]()
		i.cancelRestart()
		if !i.process.Running() {
			i.sm.Set(StateStopped)
			return
		}
		i.requestStop()
	})
}

// requestStop asks the player to quit, falling back to a signal, and kills
// it if it is still alive after the terminate timeout.
func (i *Interface) requestStop() {
	i.stopRequested = true
	if err := i.process.WriteLine("quit"); err != nil {
		log.WithError(err).Debug("quit command failed, terminating")
		if err := i.process.Terminate(); err != nil {
			log.WithError(err).Warn("terminating player")
		}
	}
	i.killAfterTimeout()
}

// Terminate signals the player to exit without going through the slave protocol.
func (i *Interface) Terminate() {
	i.post(func() {
		i.next = mo.None[*Item]()
		i.cancelRestart()
		if !i.process.Running() {
			return
		}
		i.stopRequested = true
		if err := i.process.Terminate(); err != nil {
			log.WithError(err).Warn("terminating player")
		}
		i.killAfterTimeout()
	})
}

func (i *Interface) killAfterTimeout() {
	instance := i.instance
	i.after(i.settings.TerminateTimeout, func() {
		i.post(func() {
			if i.instance != instance || !i.process.Running() {
				return
			}
			log.With(log.Fields{"instance": instance}).Warn("player did not exit in time, killing")
			if err := i.process.Kill(); err != nil {
				log.WithError(err).Warn("killing player")
			}
		})
	})
}

// Seek moves the playback position. A seek requested while the player
// cannot seek is kept until it can; a later request replaces it.
func (i *Interface) Seek(seconds float64, mode SeekMode, forced bool) {
	i.post(func() {
		if i.sm.In(GroupStopped) {
			return
		}
		i.dispatcher.Seek(SeekRequest{Seconds: seconds, Mode: mode, Forced: forced})
	})
}

// SetVolume sets the volume level, clamped to 0..100, and the mute flag.
func (i *Interface) SetVolume(level int, muted bool) {
	i.post(func() {
		i.volume = util.Clamp(level, 0, 100)
		i.muted = muted

		if !i.sm.In(GroupRespond) {
			// applied on launch and again when playback starts
			i.notifier.volumeUpdate(i.volume, i.muted)
			return
		}
		i.sendVolume(OSDAlways)
		i.dispatcher.Send(Command{Text: "get_property volume", OSD: OSDAlways, Pausing: PauseKeep})
		i.dispatcher.Send(Command{Text: "get_property mute", OSD: OSDAlways, Pausing: PauseKeep})
	})
}

func (i *Interface) sendVolume(osd OSDPolicy) {
	i.dispatcher.Send(Command{Text: fmt.Sprintf("volume %d 1", i.volume), OSD: osd, Pausing: PauseKeep})
	i.dispatcher.Send(Command{Text: "mute " + lo.Ternary(i.muted, "1", "0"), OSD: osd, Pausing: PauseKeep})
}

// TakeScreenshot saves the current frame to the screenshot directory.
func (i *Interface) TakeScreenshot() {
	i.SendCommand("screenshot 0", OSDAlways, PauseKeep)
}

// LoadSubtitleFile adds a subtitle file to the session and selects it. The
// file is also passed to the player when it is restarted.
func (i *Interface) LoadSubtitleFile(path string) {
	i.post(func() {
		if !filesystem.IsFile(path) {
			err := fmt.Errorf("subtitle file %s: %w", path, fs.ErrNotExist)
			i.notifier.commandFailed("sub_load", &CommandFailedError{Command: "sub_load", Err: err})
			return
		}
		if !lo.Contains(i.subtitles, path) {
			i.subtitles = append(i.subtitles, path)
		}
		if !i.process.Running() {
			return
		}
		i.selectFileSub = true
		i.dispatcher.Send(Command{Text: "sub_load " + quoteArg(path), OSD: OSDAlways, Pausing: PauseKeep})
	})
}

// ApplyVideoEqualizer sets the equalizer live and keeps it across restarts.
func (i *Interface) ApplyVideoEqualizer(eq Equalizer) {
	i.post(func() {
		i.equalizer = eq
		if !i.process.Running() {
			return
		}
		for _, text := range eq.commands() {
			i.dispatcher.Send(Command{Text: text, OSD: OSDConditional, Pausing: PauseKeep})
		}
	})
}

// ApplySettings applies s live when possible and restarts the player
// otherwise.
func (i *Interface) ApplySettings(s Settings) {
	i.post(func() {
		s = s.normalized()
		if i.restart.phase != restartIdle {
			if i.restart.settings.NeedsRestart(s) {
				i.requestRestart(s)
			} else {
				i.foldLive(s)
			}
			return
		}
		if i.settings.NeedsRestart(s) {
			i.requestRestart(s)
			return
		}
		i.applyLive(s)
	})
}

// ApplySettingsWithRestart restarts the running player with s, resuming at
// the current position and pause state. Without a session, s is used for
// the next launch.
func (i *Interface) ApplySettingsWithRestart(s Settings) {
	i.post(func() {
		i.requestRestart(s.normalized())
	})
}

func (i *Interface) applyLive(s Settings) {
	old := i.settings
	i.settings = s
	i.dispatcher.SetOSDLevel(s.OSDLevel)
	i.setStatistics(s.UpdateStatistics)

	if old.OSDLevel != s.OSDLevel && i.process.Running() {
		i.dispatcher.Send(Command{Text: "osd " + strconv.Itoa(s.OSDLevel), OSD: OSDAlways, Pausing: PauseKeep})
	}
}

// SendCommand sends a raw slave command. It is dropped with a CommandFailed
// notification when no player is running.
func (i *Interface) SendCommand(text string, osd OSDPolicy, pausing PausePolicy) {
	i.SendCommands([]Command{{Text: text, OSD: osd, Pausing: pausing}})
}

// SendCommands sends several commands in order.
func (i *Interface) SendCommands(commands []Command) {
	i.post(func() {
		for _, c := range commands {
			if !i.process.Running() {
				i.onCommandFailed(c.Text, ErrNotRunning)
				continue
			}
			i.dispatcher.Send(c)
		}
	})
}

// SelectAudioStream switches to the audio stream with the given id.
func (i *Interface) SelectAudioStream(id int) {
	i.selectStream("switch_audio", id)
}

// SelectVideoStream switches to the video stream with the given id.
func (i *Interface) SelectVideoStream(id int) {
	i.selectStream("switch_video", id)
}

// SelectSubtitleStream switches to an embedded subtitle stream; -1 hides subtitles.
func (i *Interface) SelectSubtitleStream(id int) {
	i.selectStream("sub_demux", id)
}

// SelectFileSubtitle switches to a loaded subtitle file; -1 hides subtitles.
func (i *Interface) SelectFileSubtitle(id int) {
	i.selectStream("sub_file", id)
}

// selectStream sends the switch and asks for the result, which arrives as
// a StreamSelected notification.
func (i *Interface) selectStream(property string, id int) {
	i.SendCommands([]Command{
		{Text: fmt.Sprintf("%s %d", property, id), OSD: OSDAlways, Pausing: PauseKeep},
		{Text: "get_property " + property, OSD: OSDAlways, Pausing: PauseKeep},
	})
}

// SetUpdateStatistics turns StatsUpdate notifications on or off.
func (i *Interface) SetUpdateStatistics(on bool) {
	i.post(func() {
		i.setStatistics(on)
	})
}

func (i *Interface) setStatistics(on bool) {
	if on != i.stats {
		i.throttle.reset()
	}
	i.stats = on
}

func (i *Interface) onCommandFailed(command string, err error) {
	i.notifier.commandFailed(command, &CommandFailedError{Command: command, Err: err})
}

func (i *Interface) launchNext() {
	item, ok := i.next.Get()
	if !ok {
		return
	}
	i.next = mo.None[*Item]()

	if item != i.item {
		i.subtitles = nil
	}
	item.RestartTime = 0
	i.launch(item, 0, false)
}

// launch starts a process for item. A resumed launch keeps the commands
// buffered for the previous process.
func (i *Interface) launch(item *Item, position float64, resume bool) {
	i.item = item
	i.stopRequested = false
	i.seconds = position
	i.lastTick = -1
	i.streamsDirty = false
	i.selectFileSub = false
	i.throttle.reset()
	i.parser.Reset()
	if resume {
		i.dispatcher.ReleasePause()
	} else {
		i.dispatcher.Reset()
	}
	i.publishItem()

	args, err := i.settings.arguments(launch{
		path:      item.Path,
		position:  position,
		volume:    i.volume,
		muted:     i.muted,
		subtitles: i.subtitles,
		equalizer: i.equalizer,
	})
	if err != nil {
		i.launchFailed(&LaunchError{Path: item.Path, Err: err})
		return
	}

	dir := i.settings.ScreenshotDir
	if dir != "" {
		if err := filesystem.API().MkdirAll(dir, 0o755); err != nil {
			log.WithError(err).Warn("creating screenshot directory")
			dir = ""
		}
	}

	instance, err := i.process.Start(i.settings.Binary, args, dir)
	if err != nil {
		i.launchFailed(err)
		return
	}

	i.instance = instance
	log.With(log.Fields{
		"instance": instance,
		"path":     item.Path,
		"args":     strings.Join(args, " "),
	}).Info("launching player")
	i.sm.Set(StateInitializing)
}

// launchFailed ends the session in Error. The cause is always reported as a
// *LaunchError.
func (i *Interface) launchFailed(err error) {
	var launchErr *LaunchError
	if !errors.As(err, &launchErr) {
		err = &LaunchError{Path: i.settings.Binary, Err: err}
	}
	log.WithError(err).Error("player launch failed")
	i.cancelRestart()
	i.sm.Set(StateError)
	i.notifier.playerError(err)
}

func (i *Interface) handleProcessEvent(ev ProcessEvent) {
	if ev.Instance != i.instance {
		return
	}
	if ev.Terminated {
		i.handleTerminated(ev.ExitCode)
		return
	}
	// the old process is on its way out; its exit lines would end the session
	if i.restart.phase == restartTerminating {
		return
	}

	log.Tracef("<- %s", ev.Line)

	var events []Event
	if ev.IsError {
		events = i.parser.ParseError(ev.Line)
	} else {
		events = i.parser.Parse(ev.Line)
	}
	for _, e := range events {
		i.handleEvent(e)
	}
}

func (i *Interface) handleTerminated(code int) {
	if i.restart.phase == restartTerminating {
		i.relaunch()
		return
	}

	if !i.sm.In(GroupStopped) {
		if i.stopRequested {
			i.sm.Set(StateStopped)
		} else {
			i.cancelRestart()
			i.sm.Set(StateError)
			i.notifier.playerError(fmt.Errorf("%w (exit code %d)", ErrUnexpectedExit, code))
		}
	}
	i.launchNext()
}

func (i *Interface) handleEvent(e Event) {
	switch e := e.(type) {
	case TimePosition:
		i.handleTime(e.Seconds)
	case StatUpdate:
		if i.stats && i.throttle.allow() {
			i.notifier.statsUpdate(buildStats(i.sm.Current(), e))
		}
	case PauseMarker:
		if i.dispatcher.ConsumePauseMarker() {
			i.sm.SeekDone()
			return
		}
		if i.sm.In(GroupRespond) {
			i.sm.Set(StatePaused)
		}
	case Opening:
		i.startup(StateOpening)
	case Buffering:
		i.startup(StateBuffering)
	case Indexing:
		i.startup(StateIndexing)
	case PlaybackStarted:
		i.startup(StatePlaying)
	case Answer:
		i.handleAnswer(e)
	case StreamInfo:
		if i.item.addStream(e.Type, e.ID) {
			i.streamsChanged()
		}
		if e.Type == StreamFileSubtitle && i.selectFileSub {
			i.selectFileSub = false
			i.SelectFileSubtitle(e.ID)
		}
	case StreamAttribute:
		if i.item.setStreamAttribute(e) {
			i.streamsChanged()
		}
	case ChapterInfo:
		if i.item.setChapter(e) {
			i.streamsChanged()
		}
	case Info:
		if i.item.applyInfo(e.Key, e.Value) {
			i.streamsChanged()
		}
	case ErrorLine:
		log.With(log.Fields{"instance": i.instance}).Warn(e.Text)
	case ExitSignal:
		if i.sm.Exit(e.Reason, i.stopRequested) && i.sm.Current() == StateError {
			i.notifier.playerError(fmt.Errorf("%w: %s", ErrUnexpectedExit, e.Reason))
		}
	}
}

func (i *Interface) startup(s State) {
	if i.sm.In(GroupStartup) {
		i.sm.Set(s)
	}
}

func (i *Interface) handleTime(seconds float64) {
	i.seconds = seconds

	switch current := i.sm.Current(); {
	case current == StateSeeking:
		i.sm.SeekDone()
	case current == StatePaused:
		if !i.dispatcher.HoldingPause() {
			i.sm.Set(StatePlaying)
		}
	case current.In(GroupStartup):
		i.sm.Set(StatePlaying)
	}

	if tick := int(seconds * 10); tick != i.lastTick {
		i.lastTick = tick
		i.notifier.timeUpdate(seconds)
	}
}

func (i *Interface) handleAnswer(a Answer) {
	switch a.Key {
	case "volume":
		if v, ok := parseFloat(a.Value).Get(); ok {
			i.volume = util.Clamp(int(v+0.5), 0, 100)
			i.notifier.volumeUpdate(i.volume, i.muted)
		}
	case "mute":
		i.muted = a.Value == "yes" || a.Value == "1"
		i.notifier.volumeUpdate(i.volume, i.muted)
	case "switch_audio":
		i.streamSelected(a.Value, StreamAudio)
	case "switch_video":
		i.streamSelected(a.Value, StreamVideo)
	case "sub_demux":
		i.streamSelected(a.Value, StreamSubtitle)
	case "sub_file":
		i.streamSelected(a.Value, StreamFileSubtitle)
	case "time_pos":
		if v, ok := parseFloat(a.Value).Get(); ok {
			i.seconds = v
		}
	}
}

func (i *Interface) streamSelected(value string, t StreamType) {
	if id, ok := parseInt(value).Get(); ok {
		i.notifier.streamSelected(id, t)
	}
}

func (i *Interface) streamsChanged() {
	i.streamsDirty = true
	if i.sm.In(GroupPosition) {
		i.flushStreams()
	}
}

func (i *Interface) flushStreams() {
	if !i.streamsDirty || i.item == nil {
		return
	}
	i.streamsDirty = false
	i.publishItem()
	i.notifier.streamUpdate(*i.item.clone())
}

func (i *Interface) onStateChanged(old, new State) {
	log.With(log.Fields{"from": old, "to": new}).Debug("state changed")
	i.publish()
	i.notifier.stateChanged(old, new)
	i.dispatcher.StateEntered(new)

	if new == StatePlaying && old.In(GroupStartup) {
		i.sendVolume(OSDNever)
		i.flushStreams()
	}
	i.restartStateEntered(new)
}
