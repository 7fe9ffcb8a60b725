// Package inline provides the implementation for the application's non-interactive, programmable execution mode.
package inline

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/mpx-cli/mpx/player"
)

// Event kinds, one per observer notification.
const (
	KindState    = "state"
	KindTime     = "time"
	KindStreams  = "streams"
	KindSelected = "selected"
	KindStats    = "stats"
	KindVolume   = "volume"
	KindFailed   = "failed"
	KindError    = "error"
)

// Kinds lists every event kind in emission order of importance.
func Kinds() []string {
	return []string{KindState, KindTime, KindStreams, KindSelected, KindStats, KindVolume, KindFailed, KindError}
}

type StateChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Selection struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

type Volume struct {
	Level int  `json:"level"`
	Muted bool `json:"muted"`
}

type Failure struct {
	Command string `json:"command"`
	Error   string `json:"error"`
}

// Event is a single JSON line of inline output. Exactly one of the
// payload fields is set, matching Kind.
type Event struct {
	Kind string    `json:"kind" jsonschema:"enum=state,enum=time,enum=streams,enum=selected,enum=stats,enum=volume,enum=failed,enum=error"`
	At   time.Time `json:"at"`

	State    *StateChange   `json:"state,omitempty"`
	Seconds  *float64       `json:"seconds,omitempty"`
	Item     *player.Item   `json:"item,omitempty"`
	Selected *Selection     `json:"selected,omitempty"`
	Stats    map[string]any `json:"stats,omitempty"`
	Volume   *Volume        `json:"volume,omitempty"`
	Failed   *Failure       `json:"failed,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func asJson(e *Event) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Schema returns the JSON schema of an inline output line.
func Schema() *jsonschema.Schema {
	reflector := new(jsonschema.Reflector)
	reflector.Anonymous = true
	reflector.Namer = func(t reflect.Type) string {
		name := t.Name()
		switch strings.ToLower(name) {
		case "item", "stream", "chapter":
			return "player." + name
		}
		return name
	}
	return reflector.Reflect(&Event{})
}
