package player

import (
	"slices"
	"strconv"

	"github.com/mpx-cli/mpx/log"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// LineWriter is the part of a process the dispatcher needs.
type LineWriter interface {
	WriteLine(text string) error
}

// pauseHold tracks the echo of a pause pair the dispatcher wrote, so the
// marker and status lines it causes are not mistaken for user intent. Each
// pair produces exactly one pause marker.
type pauseHold int

const (
	// holdRepause: the player was paused; the pair resumes it briefly and
	// pauses it again. Status lines in between do not mean playback resumed.
	holdRepause pauseHold = iota
	// holdSkipPause: the player was playing; the pair pauses it briefly.
	// The next pause marker does not mean the user paused.
	holdSkipPause
)

// Dispatcher writes commands to the player, or buffers them until the
// player can respond. It is not safe for concurrent use.
type Dispatcher struct {
	out      LineWriter
	state    *StateMachine
	osdLevel int

	buffer  []Command
	pending mo.Option[SeekRequest]
	holds   []pauseHold

	onFailed func(command string, err error)
}

// NewDispatcher returns a dispatcher writing to out and reading the state from sm.
func NewDispatcher(out LineWriter, sm *StateMachine, onFailed func(command string, err error)) *Dispatcher {
	return &Dispatcher{
		out:      out,
		state:    sm,
		osdLevel: 1,
		onFailed: onFailed,
	}
}

// SetOSDLevel sets the level restored after a suppressed command.
func (d *Dispatcher) SetOSDLevel(level int) {
	d.osdLevel = level
}

// Send writes c now if the player responds, otherwise buffers it.
func (d *Dispatcher) Send(c Command) {
	if !d.state.In(GroupRespond) {
		d.buffer = append(d.buffer, c)
		return
	}
	d.write(c)
}

// Seek sends r now if the player can seek, otherwise keeps it as the
// pending seek, replacing any earlier one. A forced seek is also sent
// while a previous seek is still in progress.
func (d *Dispatcher) Seek(r SeekRequest) {
	if d.state.In(GroupSeekable) || (r.Forced && d.state.In(GroupRespond)) {
		d.pending = mo.None[SeekRequest]()
		d.sendSeek(r)
		return
	}
	d.pending = mo.Some(r)
}

// Pending returns the seek waiting for the player to become seekable.
func (d *Dispatcher) Pending() mo.Option[SeekRequest] {
	return d.pending
}

// Buffered returns a copy of the commands waiting for the player to respond.
func (d *Dispatcher) Buffered() []Command {
	return append([]Command(nil), d.buffer...)
}

// StateEntered reacts to a state transition: a session end drops what is
// queued, responsiveness flushes the buffer, seekability sends the pending seek.
func (d *Dispatcher) StateEntered(s State) {
	if s.In(GroupStopped) {
		d.Reset()
		return
	}
	if s.In(GroupRespond) {
		d.flush()
	}
	if d.state.In(GroupSeekable) {
		if r, ok := d.pending.Get(); ok {
			d.pending = mo.None[SeekRequest]()
			d.sendSeek(r)
		}
	}
}

// Reset drops buffered commands, the pending seek and any pause hold.
func (d *Dispatcher) Reset() {
	d.buffer = nil
	d.pending = mo.None[SeekRequest]()
	d.holds = nil
}

// ReleasePause forgets every outstanding pause hold; called before an explicit pause toggle.
func (d *Dispatcher) ReleasePause() {
	d.holds = nil
}

// HoldingPause reports whether status lines are currently the echo of a
// pause pair written while paused.
func (d *Dispatcher) HoldingPause() bool {
	return slices.Contains(d.holds, holdRepause)
}

// ConsumePauseMarker reports whether a pause marker is the echo of a pause
// pair and must be ignored. The oldest outstanding pair ends with the marker.
func (d *Dispatcher) ConsumePauseMarker() bool {
	if len(d.holds) == 0 {
		return false
	}
	d.holds = d.holds[1:]
	return true
}

func (d *Dispatcher) flush() {
	for len(d.buffer) > 0 && d.state.In(GroupRespond) {
		c := d.buffer[0]
		d.buffer = d.buffer[1:]
		d.write(c)
	}
}

func (d *Dispatcher) sendSeek(r SeekRequest) {
	if d.write(Command{Text: r.command(), OSD: OSDConditional, Pausing: PauseKeep}) {
		d.state.Set(StateSeeking)
	}
}

// write resolves the policies of c against the current state and writes
// the resulting lines. A failed write drops the rest of the command.
func (d *Dispatcher) write(c Command) bool {
	lines := d.resolve(c)
	for _, line := range lines {
		if err := d.out.WriteLine(line); err != nil {
			log.With(log.Fields{"command": c.Text}).WithError(err).Warn("dropping command")
			if d.onFailed != nil {
				d.onFailed(c.Text, err)
			}
			return false
		}
	}
	return true
}

func (d *Dispatcher) resolve(c Command) []string {
	current := d.state.Current()
	lines := []string{c.Text}

	paused := current == StatePaused
	switch {
	case c.Pausing == PauseKeep && paused, c.Pausing == PauseKeepForce:
		lines = []string{"pause", c.Text, "pause"}
		d.holds = append(d.holds, lo.Ternary(paused, holdRepause, holdSkipPause))
	}

	suppress := c.OSD == OSDNever || (c.OSD == OSDConditional && current.In(GroupIntermediate))
	if suppress && d.osdLevel > 0 {
		lines = append(append([]string{"osd 0"}, lines...), "osd "+strconv.Itoa(d.osdLevel))
	}
	return lines
}
