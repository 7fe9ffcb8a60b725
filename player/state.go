package player

// State is the playback state of the supervised player. Exactly one is current at any time.
type State int

const (
	StateFinished State = iota
	StateStopped
	StateError
	StatePlaying
	StatePaused
	StateOpening
	StateBuffering
	StateIndexing
	StateInitializing
	StateSeeking

	numStates
)

var stateNames = [numStates]string{
	StateFinished:     "Finished",
	StateStopped:      "Stopped",
	StateError:        "Error",
	StatePlaying:      "Playing",
	StatePaused:       "Paused",
	StateOpening:      "Opening",
	StateBuffering:    "Buffering",
	StateIndexing:     "Indexing",
	StateInitializing: "Initializing",
	StateSeeking:      "Seeking",
}

// String returns the state name.
func (s State) String() string {
	if !s.Valid() {
		return "Unknown"
	}
	return stateNames[s]
}

// Valid reports whether s is one of the defined states.
func (s State) Valid() bool {
	return s >= 0 && s < numStates
}

// Groups returns the set of groups s belongs to.
func (s State) Groups() Groups {
	if !s.Valid() {
		return Groups{}
	}
	return stateGroups[s]
}

// In reports whether s is a member of g.
func (s State) In(g Group) bool {
	return s.Groups().Has(g)
}

// AllStates lists every defined state in declaration order.
func AllStates() []State {
	states := make([]State, 0, numStates)
	for s := State(0); s < numStates; s++ {
		states = append(states, s)
	}
	return states
}

// Group is a named coarse category of states, used to answer questions
// such as "can the player seek right now" without listing states.
type Group int

const (
	// GroupPlaying extends Playing to Seeking.
	GroupPlaying Group = iota
	// GroupPaused holds every state in which nothing is audible.
	GroupPaused
	// GroupActive holds every state in which the player is moving forward on its own.
	GroupActive
	// GroupStartup holds the states between launch and the first frame.
	GroupStartup
	// GroupSeekable holds the states in which a seek command is valid.
	GroupSeekable
	// GroupStopped holds the session-terminal states; no process is playing.
	GroupStopped
	// GroupIntermediate holds the states with indeterminate progress.
	GroupIntermediate
	// GroupPosition holds the states with a meaningful absolute position.
	GroupPosition
	// GroupRespond holds the states in which the player acts on commands.
	GroupRespond

	numGroups
)

var groupNames = [numGroups]string{
	GroupPlaying:      "Playing",
	GroupPaused:       "Paused",
	GroupActive:       "Active",
	GroupStartup:      "Startup",
	GroupSeekable:     "Seekable",
	GroupStopped:      "Stopped",
	GroupIntermediate: "Intermediate",
	GroupPosition:     "Position",
	GroupRespond:      "Respond",
}

func (g Group) String() string {
	if g < 0 || g >= numGroups {
		return "Unknown"
	}
	return groupNames[g]
}

// membership is the single source of truth for group composition.
var membership = map[Group][]State{
	GroupPlaying:      {StatePlaying, StateSeeking},
	GroupPaused:       {StatePaused, StateStopped, StateFinished, StateError},
	GroupActive:       {StatePlaying, StateOpening, StateBuffering, StateIndexing},
	GroupStartup:      {StateOpening, StateBuffering, StateIndexing, StateInitializing},
	GroupSeekable:     {StatePlaying, StatePaused},
	GroupStopped:      {StateStopped, StateFinished, StateError},
	GroupIntermediate: {StateOpening, StateBuffering, StateInitializing},
	GroupPosition:     {StateIndexing, StatePlaying, StateSeeking, StatePaused},
	GroupRespond:      {StatePlaying, StatePaused, StateSeeking},
}

// Groups is the set of groups a state belongs to.
type Groups [numGroups]bool

// Has reports whether g is in the set.
func (gs Groups) Has(g Group) bool {
	return g >= 0 && g < numGroups && gs[g]
}

// List returns the member groups in declaration order.
func (gs Groups) List() []Group {
	var list []Group
	for g := Group(0); g < numGroups; g++ {
		if gs[g] {
			list = append(list, g)
		}
	}
	return list
}

var stateGroups = func() (table [numStates]Groups) {
	for g, states := range membership {
		for _, s := range states {
			table[s][g] = true
		}
	}
	return
}()
