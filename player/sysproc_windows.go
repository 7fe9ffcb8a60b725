//go:build windows

package player

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// CREATE_NO_WINDOW keeps the player from opening a console of its own.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: 0x08000000}
}

// There is no SIGTERM on windows; the slave "quit" command is the graceful
// path and this is the fallback.
func terminateProcess(cmd *exec.Cmd) error {
	return killProcess(cmd)
}

func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
