package termini

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/charmbracelet/x/xpty"
)

// ErrChildExited is returned by Session.Run when the child closes its side
// of the pty.
var ErrChildExited = errors.New("child process exited")

// PTY is the interface for platform-specific pseudo-terminal implementations
type PTY interface {
	// Start starts the PTY with the given command
	Start(cmd *exec.Cmd) error

	// Read reads from the PTY
	Read(p []byte) (n int, err error)

	// Write writes to the PTY
	Write(p []byte) (n int, err error)

	// Resize resizes the PTY
	Resize(cols, rows int) error

	// Close closes the PTY
	Close() error
}

// xptyPTY adapts an xpty pseudo-terminal (a Unix pty or a Windows ConPTY).
type xptyPTY struct {
	pty xpty.Pty
}

// NewPTY creates a pseudo-terminal of the given size.
func NewPTY(cols, rows int) (PTY, error) {
	p, err := xpty.NewPty(cols, rows)
	if err != nil {
		return nil, fmt.Errorf("open pty: %w", err)
	}
	return &xptyPTY{pty: p}, nil
}

func (p *xptyPTY) Start(cmd *exec.Cmd) error {
	setupCommand(cmd)
	if err := p.pty.Start(cmd); err != nil {
		return fmt.Errorf("start %s: %w", cmd.Path, err)
	}
	return nil
}

func (p *xptyPTY) Read(b []byte) (int, error) {
	return p.pty.Read(b)
}

func (p *xptyPTY) Write(b []byte) (int, error) {
	return p.pty.Write(b)
}

func (p *xptyPTY) Resize(cols, rows int) error {
	return p.pty.Resize(cols, rows)
}

func (p *xptyPTY) Close() error {
	return p.pty.Close()
}
