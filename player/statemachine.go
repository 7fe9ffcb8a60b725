package player

// StateMachine is the only authority allowed to change the playback state.
// It is not safe for concurrent use; the owning Interface serializes access.
type StateMachine struct {
	current       State
	groups        Groups
	beforeSeeking State
	onChange      func(old, new State)
}

// NewStateMachine returns a machine in the Stopped state. onChange is invoked
// exactly once per effective transition, before Set returns.
func NewStateMachine(onChange func(old, new State)) *StateMachine {
	return &StateMachine{
		current:       StateStopped,
		groups:        StateStopped.Groups(),
		beforeSeeking: StateStopped,
		onChange:      onChange,
	}
}

// Current returns the current state.
func (m *StateMachine) Current() State {
	return m.current
}

// Groups returns the group set of the current state.
func (m *StateMachine) Groups() Groups {
	return m.groups
}

// In reports whether the current state belongs to g.
func (m *StateMachine) In(g Group) bool {
	return m.groups.Has(g)
}

// BeforeSeeking returns the state recorded when Seeking was last entered.
func (m *StateMachine) BeforeSeeking() State {
	return m.beforeSeeking
}

// Set moves to s. It reports whether a transition happened; setting the
// current state again, or an undefined state, is a no-op.
func (m *StateMachine) Set(s State) bool {
	if s == m.current || !s.Valid() {
		return false
	}

	old := m.current
	if s == StateSeeking {
		m.beforeSeeking = old
	}
	m.current = s
	m.groups = s.Groups()

	if m.onChange != nil {
		m.onChange(old, s)
	}
	return true
}

// SeekDone returns from Seeking to the state recorded on entry.
func (m *StateMachine) SeekDone() bool {
	if m.current != StateSeeking {
		return false
	}
	back := m.beforeSeeking
	if !back.In(GroupSeekable) {
		back = StatePlaying
	}
	return m.Set(back)
}

// Exit applies a process exit signal. Session-terminal states are kept;
// anything else is forced into Stopped, Finished or Error.
func (m *StateMachine) Exit(reason ExitReason, stopRequested bool) bool {
	if m.In(GroupStopped) {
		return false
	}
	return m.Set(exitState(reason, stopRequested))
}

func exitState(reason ExitReason, stopRequested bool) State {
	switch {
	case stopRequested:
		return StateStopped
	case reason == ExitEndOfFile, reason == ExitQuit:
		return StateFinished
	default:
		return StateError
	}
}
