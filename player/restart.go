package player

import "github.com/mpx-cli/mpx/log"

type restartPhase int

const (
	restartIdle restartPhase = iota
	// restartTerminating: the old process was asked to exit; its output is ignored.
	restartTerminating
	// restartRelaunching: a new process was started and has not reached a seekable state yet.
	restartRelaunching
)

func (p restartPhase) String() string {
	switch p {
	case restartTerminating:
		return "terminating"
	case restartRelaunching:
		return "relaunching"
	default:
		return "idle"
	}
}

// restartCoordinator is the state of a restart in progress. Requests that
// arrive while one runs are folded into settings; again marks that the
// relaunched process is already stale and must be restarted once more.
type restartCoordinator struct {
	phase      restartPhase
	settings   Settings
	position   float64
	paused     bool
	generation int
	again      bool
	cancel     func()
}

func (i *Interface) requestRestart(s Settings) {
	r := &i.restart

	switch r.phase {
	case restartTerminating:
		r.settings = s
		return
	case restartRelaunching:
		r.settings = s
		r.again = true
		return
	}

	if !i.process.Running() || i.sm.In(GroupStopped) || i.item == nil {
		i.applyLive(s)
		return
	}
	i.beginRestart(s)
}

func (i *Interface) beginRestart(s Settings) {
	r := &i.restart

	current := i.sm.Current()
	if current == StateSeeking {
		current = i.sm.BeforeSeeking()
	}

	r.phase = restartTerminating
	r.settings = s
	r.position = i.seconds
	r.paused = current == StatePaused
	r.again = false
	r.generation++

	log.With(log.Fields{
		"position": r.position,
		"paused":   r.paused,
	}).Info("restarting player")

	i.sm.Set(StateInitializing)
	if err := i.process.Terminate(); err != nil {
		log.WithError(err).Warn("terminating player for restart")
	}

	generation := r.generation
	r.cancel = i.after(i.settings.TerminateTimeout, func() {
		i.post(func() { i.restartTimedOut(generation) })
	})
}

func (i *Interface) restartTimedOut(generation int) {
	r := &i.restart
	if r.phase != restartTerminating || r.generation != generation {
		return
	}

	log.With(log.Fields{"timeout": i.settings.TerminateTimeout}).Warn("player did not exit for restart, killing")
	i.notifier.playerError(ErrRestartTimeout)
	if err := i.process.Kill(); err != nil {
		log.WithError(err).Warn("killing player for restart")
	}
}

// foldLive takes settings that need no restart while one runs. Before the
// relaunch they go with it; after it they apply at once.
func (i *Interface) foldLive(s Settings) {
	r := &i.restart
	r.settings = s
	if r.phase == restartRelaunching {
		i.applyLive(s)
	}
}

// relaunch runs once the old process has exited.
func (i *Interface) relaunch() {
	r := &i.restart
	r.stopTimer()
	r.phase = restartRelaunching

	i.settings = r.settings
	i.dispatcher.SetOSDLevel(r.settings.OSDLevel)
	i.setStatistics(r.settings.UpdateStatistics)

	i.item.RestartTime = r.position
	i.launch(i.item, r.position, true)
}

// restartStateEntered finishes a relaunch once the new process can seek:
// the captured pause state is restored, and a coalesced request runs next.
func (i *Interface) restartStateEntered(s State) {
	r := &i.restart
	if r.phase != restartRelaunching {
		return
	}

	if s.In(GroupStopped) {
		i.cancelRestart()
		return
	}
	if !s.In(GroupSeekable) {
		return
	}

	r.phase = restartIdle
	if r.again {
		// the pause would only be sent to a process about to go away
		paused := r.paused
		i.beginRestart(r.settings)
		r.paused = paused
		return
	}
	if r.paused {
		i.dispatcher.Send(Command{Text: "pause", OSD: OSDNever, Pausing: PauseNone})
	}
}

func (i *Interface) cancelRestart() {
	r := &i.restart
	r.stopTimer()
	r.phase = restartIdle
	r.again = false
}

func (r *restartCoordinator) stopTimer() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}
