package termini

import "io"

// Property identifies an engine-reported terminal property.
type Property int

const (
	PropTitle Property = iota
	PropIconName
	PropCursorVisible
	PropCursorBlink
	PropCursorShape
	PropAltScreen
	PropReverse
	PropMouse
)

func (p Property) String() string {
	switch p {
	case PropTitle:
		return "title"
	case PropIconName:
		return "icon-name"
	case PropCursorVisible:
		return "cursor-visible"
	case PropCursorBlink:
		return "cursor-blink"
	case PropCursorShape:
		return "cursor-shape"
	case PropAltScreen:
		return "alt-screen"
	case PropReverse:
		return "reverse"
	case PropMouse:
		return "mouse"
	default:
		return "unknown"
	}
}

// Callbacks receives notifications from the engine while it consumes
// output. They are invoked synchronously from Engine.Write. Each returns
// whether the notification was handled.
type Callbacks interface {
	Damage(r Rect) bool
	MoveCursor(pos, old Pos, visible bool) bool
	SetProperty(prop Property, value any) bool
	Bell() bool
	Resize(rows, cols int) bool
}

// Engine is a terminal-state engine: it interprets the child's byte stream
// and maintains the cell grid.
type Engine interface {
	Grid

	// Write feeds child output to the engine. Callbacks fire before it
	// returns.
	Write(p []byte) (int, error)

	// Resize changes the grid dimensions.
	Resize(rows, cols int)

	// Cursor returns the current cursor position and visibility.
	Cursor() (pos Pos, visible bool)

	// SetCallbacks registers the callback set. It is called once.
	SetCallbacks(cb Callbacks)

	// SetOutput sets where the engine writes replies to the child.
	SetOutput(w io.Writer)

	// Close releases the engine.
	Close() error
}
