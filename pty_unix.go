//go:build !windows
// +build !windows

package termini

import (
	"errors"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setupCommand makes the child a session leader with the pty as its
// controlling terminal.
func setupCommand(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true
	cmd.SysProcAttr.Setctty = true
}

// IsWouldBlock reports whether a read failed only because no data was
// available yet.
func IsWouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR)
}

// isChildGone reports whether a read error means the child side closed.
// Linux reports EIO on the master once the last slave descriptor closes.
func isChildGone(err error) bool {
	return errors.Is(err, unix.EIO)
}
