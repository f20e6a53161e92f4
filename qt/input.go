package terminiqt

import (
	"runtime"

	"github.com/mappu/miqt/qt"
	"github.com/phroun/termini"
)

var namedKeys = map[qt.Key]termini.Key{
	qt.Key_Up:        termini.KeyUp,
	qt.Key_Down:      termini.KeyDown,
	qt.Key_Right:     termini.KeyRight,
	qt.Key_Left:      termini.KeyLeft,
	qt.Key_Home:      termini.KeyHome,
	qt.Key_End:       termini.KeyEnd,
	qt.Key_Insert:    termini.KeyInsert,
	qt.Key_Delete:    termini.KeyDelete,
	qt.Key_PageUp:    termini.KeyPageUp,
	qt.Key_PageDown:  termini.KeyPageDown,
	qt.Key_F1:        termini.KeyF1,
	qt.Key_F2:        termini.KeyF2,
	qt.Key_F3:        termini.KeyF3,
	qt.Key_F4:        termini.KeyF4,
	qt.Key_F5:        termini.KeyF5,
	qt.Key_F6:        termini.KeyF6,
	qt.Key_F7:        termini.KeyF7,
	qt.Key_F8:        termini.KeyF8,
	qt.Key_F9:        termini.KeyF9,
	qt.Key_F10:       termini.KeyF10,
	qt.Key_F11:       termini.KeyF11,
	qt.Key_F12:       termini.KeyF12,
	qt.Key_Return:    termini.KeyEnter,
	qt.Key_Enter:     termini.KeyEnter,
	qt.Key_Backspace: termini.KeyBackspace,
	qt.Key_Tab:       termini.KeyTab,
	qt.Key_Backtab:   termini.KeyTab,
	qt.Key_Escape:    termini.KeyEscape,
}

func modifiers(m qt.KeyboardModifier) termini.Modifiers {
	hasShift := m&qt.ShiftModifier != 0
	hasCtrl := m&qt.ControlModifier != 0
	hasAlt := m&qt.AltModifier != 0
	hasMeta := m&qt.MetaModifier != 0

	// On macOS Qt reports the Command key as Control and Control as Meta.
	if runtime.GOOS == "darwin" {
		hasCtrl, hasMeta = hasMeta, hasCtrl
	}

	var mods termini.Modifiers
	if hasShift {
		mods |= termini.ModShift
	}
	if hasAlt {
		mods |= termini.ModAlt
	}
	if hasCtrl {
		mods |= termini.ModCtrl
	}
	if hasMeta {
		mods |= termini.ModMeta
	}
	return mods
}

func (w *Widget) keyEvent(event *qt.QKeyEvent, released bool) {
	event.Accept()
	key := qt.Key(event.Key())
	mods := modifiers(event.Modifiers())

	if k, ok := namedKeys[key]; ok {
		if key == qt.Key_Backtab {
			mods |= termini.ModShift
		}
		w.post(termini.Event{Type: termini.EventKey, Key: termini.KeyEvent{Key: k, Mods: mods, Released: released}})
		return
	}
	if released {
		return
	}

	text := event.Text()
	if text == "" {
		// Modifier keys and dead keys.
		return
	}
	// Qt already applies Ctrl to letters; send the plain letter so the
	// translator derives the control code the same way for every backend.
	if mods&termini.ModCtrl != 0 && len(text) == 1 && text[0] < 0x20 && key >= qt.Key_A && key <= qt.Key_Z {
		text = string(rune('a' + (key - qt.Key_A)))
	}
	w.post(termini.Event{Type: termini.EventText, Text: termini.TextEvent{Text: text, Mods: mods}})
}

func qtButton(b qt.MouseButton) int {
	switch b {
	case qt.LeftButton:
		return 1
	case qt.MiddleButton:
		return 2
	case qt.RightButton:
		return 3
	default:
		return 0
	}
}

func (w *Widget) mouseButtonEvent(event *qt.QMouseEvent, released bool) {
	button := qtButton(event.Button())
	if button == 0 {
		return
	}
	if !released {
		w.widget.SetFocus()
	}
	w.post(termini.Event{Type: termini.EventButton, Button: termini.ButtonEvent{Button: button, Released: released}})
}
