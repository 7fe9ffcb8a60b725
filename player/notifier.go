package player

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/mpx-cli/mpx/log"
	"github.com/samber/lo"
)

var errNotComparable = errors.New("observer is not comparable; register a pointer")

// Notifier fans notifications out to the registered observers. Observers
// may be added or removed at any time, including from inside a callback;
// a notification always goes to the set as it was when it started.
type Notifier struct {
	mu        sync.Mutex
	observers []Observer
}

// Add registers o. Adding the same observer twice has no effect.
func (n *Notifier) Add(o Observer) error {
	if o == nil {
		return errors.New("nil observer")
	}
	if !reflect.TypeOf(o).Comparable() {
		return errNotComparable
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if !lo.Contains(n.observers, o) {
		n.observers = append(n.observers, o)
	}
	return nil
}

// Remove unregisters o.
func (n *Notifier) Remove(o Observer) {
	if o == nil || !reflect.TypeOf(o).Comparable() {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.observers = lo.Without(n.observers, o)
}

// Len returns the number of registered observers.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.observers)
}

func (n *Notifier) snapshot() []Observer {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Observer(nil), n.observers...)
}

// notify calls fn for every observer; a panicking observer is logged and skipped.
func (n *Notifier) notify(kind string, fn func(Observer)) {
	for _, o := range n.snapshot() {
		call(kind, o, fn)
	}
}

func call(kind string, o Observer, fn func(Observer)) {
	defer func() {
		if r := recover(); r != nil {
			log.With(log.Fields{
				"notification": kind,
				"observer":     fmt.Sprintf("%T", o),
			}).Errorf("observer panicked: %v", r)
		}
	}()
	fn(o)
}

// dispatch delivers to the observers implementing T.
func dispatch[T any](n *Notifier, kind string, fn func(T)) {
	n.notify(kind, func(o Observer) {
		if t, ok := o.(T); ok {
			fn(t)
		}
	})
}

func (n *Notifier) stateChanged(old, new State) {
	dispatch(n, "StateChanged", func(o StateObserver) { o.StateChanged(old, new) })
}

func (n *Notifier) timeUpdate(seconds float64) {
	dispatch(n, "TimeUpdate", func(o TimeObserver) { o.TimeUpdate(seconds) })
}

func (n *Notifier) streamUpdate(item Item) {
	dispatch(n, "StreamUpdate", func(o StreamObserver) { o.StreamUpdate(item) })
}

func (n *Notifier) streamSelected(id int, t StreamType) {
	dispatch(n, "StreamSelected", func(o StreamSelectionObserver) { o.StreamSelected(id, t) })
}

func (n *Notifier) statsUpdate(stats Stats) {
	dispatch(n, "StatsUpdate", func(o StatsObserver) { o.StatsUpdate(stats) })
}

func (n *Notifier) volumeUpdate(level int, muted bool) {
	dispatch(n, "VolumeUpdate", func(o VolumeObserver) { o.VolumeUpdate(level, muted) })
}

func (n *Notifier) commandFailed(command string, err error) {
	dispatch(n, "CommandFailed", func(o CommandFailureObserver) { o.CommandFailed(command, err) })
}

func (n *Notifier) playerError(err error) {
	dispatch(n, "PlayerError", func(o ErrorObserver) { o.PlayerError(err) })
}
