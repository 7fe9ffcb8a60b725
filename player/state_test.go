package player

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStateGroups(t *testing.T) {
	Convey("Given the group table", t, func() {
		Convey("Every state's groups should match the membership lists", func() {
			for _, s := range AllStates() {
				for g, members := range membership {
					want := false
					for _, m := range members {
						if m == s {
							want = true
						}
					}
					So(s.In(g), ShouldEqual, want)
				}
			}
		})

		Convey("Seekable should hold exactly Playing and Paused", func() {
			var seekable []State
			for _, s := range AllStates() {
				if s.In(GroupSeekable) {
					seekable = append(seekable, s)
				}
			}
			So(seekable, ShouldResemble, []State{StatePlaying, StatePaused})
		})

		Convey("Seeking should respond but not be seekable", func() {
			So(StateSeeking.In(GroupRespond), ShouldBeTrue)
			So(StateSeeking.In(GroupSeekable), ShouldBeFalse)
			So(StateSeeking.In(GroupPlaying), ShouldBeTrue)
		})

		Convey("Stopped states should count as paused", func() {
			for _, s := range []State{StateStopped, StateFinished, StateError} {
				So(s.In(GroupStopped), ShouldBeTrue)
				So(s.In(GroupPaused), ShouldBeTrue)
				So(s.In(GroupRespond), ShouldBeFalse)
			}
		})

		Convey("Invalid states should belong to nothing", func() {
			So(State(-1).Groups().List(), ShouldBeEmpty)
			So(numStates.String(), ShouldEqual, "Unknown")
		})

		Convey("Group lists should follow declaration order", func() {
			So(StateIndexing.Groups().List(), ShouldResemble, []Group{GroupActive, GroupStartup, GroupPosition})
		})
	})
}

func TestStateMachine(t *testing.T) {
	Convey("Given a state machine", t, func() {
		var changes [][2]State
		sm := NewStateMachine(func(old, new State) {
			changes = append(changes, [2]State{old, new})
		})

		Convey("It should start Stopped", func() {
			So(sm.Current(), ShouldEqual, StateStopped)
			So(sm.In(GroupStopped), ShouldBeTrue)
		})

		Convey("Setting the same state should not notify", func() {
			So(sm.Set(StateStopped), ShouldBeFalse)
			So(changes, ShouldBeEmpty)
		})

		Convey("Each transition should notify once with old and new", func() {
			sm.Set(StateInitializing)
			sm.Set(StatePlaying)
			So(changes, ShouldResemble, [][2]State{
				{StateStopped, StateInitializing},
				{StateInitializing, StatePlaying},
			})
			So(sm.Groups(), ShouldResemble, StatePlaying.Groups())
		})

		Convey("SeekDone should return to the state seeking started from", func() {
			sm.Set(StatePaused)
			sm.Set(StateSeeking)
			So(sm.BeforeSeeking(), ShouldEqual, StatePaused)
			So(sm.SeekDone(), ShouldBeTrue)
			So(sm.Current(), ShouldEqual, StatePaused)
		})

		Convey("SeekDone should fall back to Playing from a non-seekable state", func() {
			sm.Set(StateBuffering)
			sm.Set(StateSeeking)
			sm.SeekDone()
			So(sm.Current(), ShouldEqual, StatePlaying)
		})

		Convey("SeekDone outside Seeking should do nothing", func() {
			sm.Set(StatePlaying)
			So(sm.SeekDone(), ShouldBeFalse)
		})

		Convey("Exit", func() {
			sm.Set(StatePlaying)

			Convey("End of file should finish", func() {
				sm.Exit(ExitEndOfFile, false)
				So(sm.Current(), ShouldEqual, StateFinished)
			})

			Convey("An unrequested quit should finish", func() {
				sm.Exit(ExitQuit, false)
				So(sm.Current(), ShouldEqual, StateFinished)
			})

			Convey("A requested stop should stop", func() {
				sm.Exit(ExitQuit, true)
				So(sm.Current(), ShouldEqual, StateStopped)
			})

			Convey("Errors and unknown reasons should fail", func() {
				sm.Exit(ExitUnknown, false)
				So(sm.Current(), ShouldEqual, StateError)
			})

			Convey("A terminal state should be kept", func() {
				sm.Exit(ExitEndOfFile, false)
				So(sm.Exit(ExitError, false), ShouldBeFalse)
				So(sm.Current(), ShouldEqual, StateFinished)
			})
		})
	})
}
