//go:build windows
// +build windows

package termini

import (
	"errors"
	"os/exec"

	"golang.org/x/sys/windows"
)

// setupCommand is a no-op; ConPTY attaches the console itself.
func setupCommand(cmd *exec.Cmd) {}

// IsWouldBlock reports whether a read failed only because no data was
// available yet.
func IsWouldBlock(err error) bool {
	return errors.Is(err, windows.ERROR_IO_PENDING)
}

// isChildGone reports whether a read error means the child side closed.
func isChildGone(err error) bool {
	return errors.Is(err, windows.ERROR_BROKEN_PIPE)
}
