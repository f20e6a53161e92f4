package termini

import (
	"fmt"
	"unicode/utf8"
)

// Key identifies a named key that does not produce text on its own.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyInsert
	KeyDelete
	KeyPageUp
	KeyPageDown
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyEnter
	KeyBackspace
	KeyTab
	KeyEscape
)

// DefaultPasteButton is the pointer button that pastes the clipboard.
const DefaultPasteButton = 2

// Translator turns input events into the bytes sent to the child.
type Translator struct {
	mode        Mode
	pasteButton int
}

// NewTranslator creates a translator for a compatibility mode.
func NewTranslator(mode Mode) *Translator {
	return &Translator{mode: mode, pasteButton: DefaultPasteButton}
}

// SetPasteButton changes the button that requests a paste.
func (t *Translator) SetPasteButton(button int) {
	t.pasteButton = button
}

// Mode returns the translator's compatibility mode.
func (t *Translator) Mode() Mode {
	return t.mode
}

// Translate dispatches a key or text event. Other event types yield nil.
func (t *Translator) Translate(ev Event) []byte {
	switch ev.Type {
	case EventKey:
		return t.Key(ev.Key)
	case EventText:
		return t.Text(ev.Text)
	default:
		return nil
	}
}

// Key returns the byte sequence for a named key press. Releases and keys
// without a sequence in the current mode return nil.
func (t *Translator) Key(ev KeyEvent) []byte {
	if ev.Released {
		return nil
	}
	return TranslateKey(ev.Key, ev.Mods, t.mode)
}

// Text returns the bytes for typed text: UTF-8, with Ctrl turning a letter
// into its control code and Alt prefixing ESC.
func (t *Translator) Text(ev TextEvent) []byte {
	if ev.Text == "" {
		return nil
	}
	out := []byte(ev.Text)
	if ev.Mods&ModCtrl != 0 {
		if r, size := utf8.DecodeRuneInString(ev.Text); size == len(ev.Text) {
			if code, ok := controlCode(r); ok {
				out = []byte{code}
			}
		}
	}
	if ev.Mods&ModAlt != 0 {
		out = append([]byte{0x1b}, out...)
	}
	return out
}

// Button reports whether a pointer button event requests a paste.
func (t *Translator) Button(ev ButtonEvent) bool {
	return !ev.Released && ev.Button == t.pasteButton
}

// Paste returns pasted text unchanged.
func (t *Translator) Paste(text string) []byte {
	if text == "" {
		return nil
	}
	return []byte(text)
}

// controlCode maps a character typed with Ctrl to its C0 control code.
func controlCode(r rune) (byte, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return byte(r - 'a' + 1), true
	case r >= 'A' && r <= 'Z':
		return byte(r - 'A' + 1), true
	case r == ' ' || r == '@' || r == '2':
		return 0x00, true
	case r == '[' || r == '3':
		return 0x1b, true
	case r == '\\' || r == '4':
		return 0x1c, true
	case r == ']' || r == '5':
		return 0x1d, true
	case r == '^' || r == '6':
		return 0x1e, true
	case r == '_' || r == '-' || r == '7':
		return 0x1f, true
	case r == '?' || r == '8':
		return 0x7f, true
	}
	return 0, false
}

// modParam returns the xterm modifier parameter (1 + shift + 2*alt +
// 4*ctrl + 8*meta), or 0 when no modifier is held.
func modParam(mods Modifiers) int {
	if mods&(ModShift|ModAlt|ModCtrl|ModMeta) == 0 {
		return 0
	}
	mod := 1
	if mods&ModShift != 0 {
		mod++
	}
	if mods&ModAlt != 0 {
		mod += 2
	}
	if mods&ModCtrl != 0 {
		mod += 4
	}
	if mods&ModMeta != 0 {
		mod += 8
	}
	return mod
}

// cursorKey generates the CSI form of a cursor key: ESC [ <key>, or
// ESC [ 1 ; <mod> <key> with modifiers.
func cursorKey(key byte, mod int) []byte {
	if mod > 0 {
		return []byte(fmt.Sprintf("\x1b[1;%d%c", mod, key))
	}
	return []byte{0x1b, '[', key}
}

// ss3Key generates the application form ESC O <key>, falling back to the
// modified CSI form when modifiers are held.
func ss3Key(key byte, mod int) []byte {
	if mod > 0 {
		return cursorKey(key, mod)
	}
	return []byte{0x1b, 'O', key}
}

// tildeKey generates ESC [ <num> ~, or ESC [ <num> ; <mod> ~ with modifiers.
func tildeKey(num int, mod int) []byte {
	if mod > 0 {
		return []byte(fmt.Sprintf("\x1b[%d;%d~", num, mod))
	}
	return []byte(fmt.Sprintf("\x1b[%d~", num))
}

// functionKeyCodes are the tilde codes for F1-F12.
var functionKeyCodes = [12]int{11, 12, 13, 14, 15, 17, 18, 19, 20, 21, 23, 24}

// TranslateKey returns the byte sequence for a named key in a mode, or nil.
func TranslateKey(key Key, mods Modifiers, mode Mode) []byte {
	mod := modParam(mods)

	switch key {
	case KeyInsert:
		return tildeKey(2, mod)
	case KeyDelete:
		return tildeKey(3, mod)
	case KeyPageUp:
		return tildeKey(5, mod)
	case KeyPageDown:
		return tildeKey(6, mod)
	case KeyF1, KeyF2, KeyF3, KeyF4, KeyF5, KeyF6, KeyF7, KeyF8, KeyF9, KeyF10, KeyF11, KeyF12:
		return tildeKey(functionKeyCodes[key-KeyF1], mod)
	case KeyEnter:
		return withAlt([]byte{'\r'}, mods)
	case KeyBackspace:
		if mods&ModCtrl != 0 {
			return withAlt([]byte{0x08}, mods)
		}
		return withAlt([]byte{0x7f}, mods)
	case KeyTab:
		if mods&ModShift != 0 {
			return []byte("\x1b[Z")
		}
		return withAlt([]byte{'\t'}, mods)
	case KeyEscape:
		return withAlt([]byte{0x1b}, mods)
	}

	var arrow byte
	switch key {
	case KeyUp:
		arrow = 'A'
	case KeyDown:
		arrow = 'B'
	case KeyRight:
		arrow = 'C'
	case KeyLeft:
		arrow = 'D'
	}

	switch mode {
	case ModeXterm:
		switch {
		case arrow != 0:
			return ss3Key(arrow, mod)
		case key == KeyHome:
			return ss3Key('H', mod)
		case key == KeyEnd:
			return ss3Key('F', mod)
		}
	case ModeVT220:
		switch {
		case arrow != 0:
			return cursorKey(arrow, mod)
		case key == KeyHome:
			return tildeKey(1, mod)
		case key == KeyEnd:
			return tildeKey(4, mod)
		}
	case ModeXtermR5:
		switch {
		case arrow != 0:
			return cursorKey(arrow, mod)
		case key == KeyHome:
			return tildeKey(7, mod)
		case key == KeyEnd:
			return tildeKey(8, mod)
		}
	}
	return nil
}

func withAlt(b []byte, mods Modifiers) []byte {
	if mods&ModAlt != 0 {
		return append([]byte{0x1b}, b...)
	}
	return b
}
