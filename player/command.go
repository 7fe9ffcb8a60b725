package player

import (
	"fmt"
	"strconv"
	"strings"
)

// OSDPolicy decides whether a command may show on-screen feedback.
type OSDPolicy int

const (
	// OSDAlways lets the command show feedback at the configured OSD level.
	OSDAlways OSDPolicy = iota
	// OSDConditional suppresses feedback while the player is in an intermediate state.
	OSDConditional
	// OSDNever suppresses feedback.
	OSDNever
)

func (p OSDPolicy) String() string {
	switch p {
	case OSDAlways:
		return "always"
	case OSDConditional:
		return "conditional"
	case OSDNever:
		return "never"
	default:
		return "unknown"
	}
}

// PausePolicy decides how a command interacts with pause. It is resolved
// against the state at the moment the command is written.
type PausePolicy int

const (
	// PauseNone sends the command verbatim.
	PauseNone PausePolicy = iota
	// PauseKeep wraps the command in a pause pair when the player is paused.
	PauseKeep
	// PauseToggle sends the command verbatim and lets the player resume.
	PauseToggle
	// PauseKeepForce always wraps the command in a pause pair.
	PauseKeepForce
)

func (p PausePolicy) String() string {
	switch p {
	case PauseNone:
		return "none"
	case PauseKeep:
		return "keep"
	case PauseToggle:
		return "toggle"
	case PauseKeepForce:
		return "keep-force"
	default:
		return "unknown"
	}
}

// Command is one slave-mode command with its delivery policies.
type Command struct {
	Text    string
	OSD     OSDPolicy
	Pausing PausePolicy
}

// SeekMode selects how a seek value is interpreted. The values match the
// player's own seek type argument.
type SeekMode int

const (
	SeekRelative SeekMode = iota
	SeekPercent
	SeekAbsolute
)

func (m SeekMode) String() string {
	switch m {
	case SeekRelative:
		return "relative"
	case SeekPercent:
		return "percent"
	case SeekAbsolute:
		return "absolute"
	default:
		return "unknown"
	}
}

// SeekRequest is a requested position change.
type SeekRequest struct {
	Seconds float64
	Mode    SeekMode
	Forced  bool
}

func (r SeekRequest) command() string {
	return fmt.Sprintf("seek %s %d", formatFloat(r.Seconds), r.Mode)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// quoteArg quotes a slave command argument that may contain spaces.
func quoteArg(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}
