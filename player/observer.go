package player

// Observer is anything registered with AddObserver. An observer implements
// whichever of the single-method interfaces below it cares about.
type Observer any

// StateObserver is told about every playback state transition.
type StateObserver interface {
	StateChanged(old, new State)
}

// TimeObserver receives the position, at most once per tenth of a second.
type TimeObserver interface {
	TimeUpdate(seconds float64)
}

// StreamObserver is told when the discovered streams or details of the
// current item changed.
type StreamObserver interface {
	StreamUpdate(item Item)
}

// StreamSelectionObserver is told which stream the player confirmed as selected.
type StreamSelectionObserver interface {
	StreamSelected(id int, t StreamType)
}

// StatsObserver receives throttled statistics while they are enabled.
type StatsObserver interface {
	StatsUpdate(stats Stats)
}

// VolumeObserver is told the volume and mute state the player reports.
type VolumeObserver interface {
	VolumeUpdate(level int, muted bool)
}

// CommandFailureObserver is told about commands that were dropped.
type CommandFailureObserver interface {
	CommandFailed(command string, err error)
}

// ErrorObserver receives failures of the player process: launch errors,
// unexpected exits, restart timeouts.
type ErrorObserver interface {
	PlayerError(err error)
}

// ObserverFuncs adapts plain functions to the observer interfaces. Nil
// fields are skipped. Register it by pointer.
type ObserverFuncs struct {
	OnStateChanged   func(old, new State)
	OnTimeUpdate     func(seconds float64)
	OnStreamUpdate   func(item Item)
	OnStreamSelected func(id int, t StreamType)
	OnStatsUpdate    func(stats Stats)
	OnVolumeUpdate   func(level int, muted bool)
	OnCommandFailed  func(command string, err error)
	OnPlayerError    func(err error)
}

func (f *ObserverFuncs) StateChanged(old, new State) {
	if f.OnStateChanged != nil {
		f.OnStateChanged(old, new)
	}
}

func (f *ObserverFuncs) TimeUpdate(seconds float64) {
	if f.OnTimeUpdate != nil {
		f.OnTimeUpdate(seconds)
	}
}

func (f *ObserverFuncs) StreamUpdate(item Item) {
	if f.OnStreamUpdate != nil {
		f.OnStreamUpdate(item)
	}
}

func (f *ObserverFuncs) StreamSelected(id int, t StreamType) {
	if f.OnStreamSelected != nil {
		f.OnStreamSelected(id, t)
	}
}

func (f *ObserverFuncs) StatsUpdate(stats Stats) {
	if f.OnStatsUpdate != nil {
		f.OnStatsUpdate(stats)
	}
}

func (f *ObserverFuncs) VolumeUpdate(level int, muted bool) {
	if f.OnVolumeUpdate != nil {
		f.OnVolumeUpdate(level, muted)
	}
}

func (f *ObserverFuncs) CommandFailed(command string, err error) {
	if f.OnCommandFailed != nil {
		f.OnCommandFailed(command, err)
	}
}

func (f *ObserverFuncs) PlayerError(err error) {
	if f.OnPlayerError != nil {
		f.OnPlayerError(err)
	}
}
