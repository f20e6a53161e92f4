package termini

// EventType identifies the kind of a backend Event.
type EventType int

const (
	EventKey EventType = iota
	EventText
	EventButton
	EventPointerMotion
	EventResize
	EventFocus
	EventPaste
	EventQuit
)

// Modifiers is a bitmask of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModAlt
	ModCtrl
	ModMeta
)

// KeyEvent is a named (non-text) key press or release.
type KeyEvent struct {
	Key      Key
	Mods     Modifiers
	Released bool
}

// TextEvent is a key press that produced text.
type TextEvent struct {
	Text string
	Mods Modifiers
}

// ButtonEvent is a pointer button press or release.
type ButtonEvent struct {
	Button   int // 1 = left, 2 = middle, 3 = right
	Released bool
}

// Event is an input or window event delivered by a Backend.
type Event struct {
	Type   EventType
	Key    KeyEvent
	Text   TextEvent
	Button ButtonEvent

	// Width and Height carry the new surface size for EventResize.
	Width, Height int

	// Focused is the new focus state for EventFocus.
	Focused bool

	// Paste is the clipboard text for EventPaste.
	Paste string
}

// Backend is a windowing toolkit binding: it owns the Surface and produces
// input events. Methods other than Surface may be called from the session
// goroutine and must be safe to call off the toolkit's UI thread.
type Backend interface {
	Surface() Surface
	Events() <-chan Event

	// RequestPaste asks for the clipboard text; it arrives later as an
	// EventPaste.
	RequestPaste()

	// SetPointerVisible shows or hides the mouse pointer over the surface.
	SetPointerVisible(visible bool)

	SetTitle(title string)
	Close() error
}
