package termini

import (
	"fmt"
	"strings"
	"sync"
)

// Mode is the compatibility mode: which terminal type the child is told it
// runs on and which key table input is translated with.
type Mode int

const (
	ModeXterm Mode = iota
	ModeVT220
	ModeXtermR5
)

// TermType returns the TERM value announced to the child.
func (m Mode) TermType() string {
	switch m {
	case ModeVT220:
		return "vt220"
	case ModeXtermR5:
		return "xterm-r5"
	default:
		return "xterm"
	}
}

func (m Mode) String() string {
	return m.TermType()
}

// ParseMode parses a TERM-style mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xterm":
		return ModeXterm, nil
	case "vt220":
		return ModeVT220, nil
	case "xterm-r5":
		return ModeXtermR5, nil
	default:
		return ModeXterm, fmt.Errorf("unknown terminal type %q", s)
	}
}

// ModeForDepth picks the mode for a display depth: vt220 on grayscale
// displays of 4 bpp or less, xterm otherwise.
func ModeForDepth(d Depth) Mode {
	if d.Grayscale() {
		return ModeVT220
	}
	return ModeXterm
}

// TerminalCapabilities holds what the child process is told about the
// terminal. It is updated on resize and read when building the child
// environment.
type TerminalCapabilities struct {
	mu sync.RWMutex

	Mode  Mode
	Depth Depth

	// Screen dimensions
	Width  int // columns
	Height int // rows

	// SessionID is exported to the child as TERMINI_SESSION.
	SessionID string
}

// NewTerminalCapabilities creates capabilities for a mode and depth with an
// 80x24 grid.
func NewTerminalCapabilities(mode Mode, depth Depth) *TerminalCapabilities {
	return &TerminalCapabilities{
		Mode:   mode,
		Depth:  depth,
		Width:  80,
		Height: 24,
	}
}

// SetSize records the grid dimensions.
func (c *TerminalCapabilities) SetSize(cols, rows int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Width = cols
	c.Height = rows
}

// GetSize returns the grid dimensions.
func (c *TerminalCapabilities) GetSize() (cols, rows int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Width, c.Height
}

// Env returns the environment entries describing the terminal, to be
// appended to the child's environment.
func (c *TerminalCapabilities) Env() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	env := []string{
		"TERM=" + c.Mode.TermType(),
		fmt.Sprintf("COLUMNS=%d", c.Width),
		fmt.Sprintf("LINES=%d", c.Height),
	}
	if c.Depth >= Depth24 {
		env = append(env, "COLORTERM=truecolor")
	}
	if c.SessionID != "" {
		env = append(env, "TERMINI_SESSION="+c.SessionID)
	}
	return env
}
