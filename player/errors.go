package player

import (
	"errors"
	"fmt"
)

var (
	// ErrNotRunning is returned when a command is written while no process runs.
	ErrNotRunning = errors.New("player process is not running")
	// ErrAlreadyRunning is returned by Start while a previous process is still alive.
	ErrAlreadyRunning = errors.New("player process is already running")
	// ErrUnexpectedExit is reported when the process exits outside a session-terminal state.
	ErrUnexpectedExit = errors.New("player exited unexpectedly")
	// ErrRestartTimeout is reported when a restart had to kill the old process.
	ErrRestartTimeout = errors.New("player did not terminate in time")
)

// LaunchError reports that the player binary could not be started.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// WriteError reports that a command could not be delivered to the player.
type WriteError struct {
	Command string
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %q: %v", e.Command, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// CommandFailedError is delivered to observers when a command was dropped
// because it could not be written.
type CommandFailedError struct {
	Command string
	Err     error
}

func (e *CommandFailedError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

func (e *CommandFailedError) Unwrap() error {
	return e.Err
}
