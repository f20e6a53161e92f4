package terminigtk

/*
#cgo pkg-config: gtk+-3.0
#include <gtk/gtk.h>

static int is_single_press(GdkEvent *ev) {
    return gdk_event_get_event_type(ev) == GDK_BUTTON_PRESS;
}
*/
import "C"

import (
	"unsafe"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/gtk"
	"github.com/phroun/termini"
)

var namedKeys = map[uint]termini.Key{
	gdk.KEY_Up:           termini.KeyUp,
	gdk.KEY_KP_Up:        termini.KeyUp,
	gdk.KEY_Down:         termini.KeyDown,
	gdk.KEY_KP_Down:      termini.KeyDown,
	gdk.KEY_Right:        termini.KeyRight,
	gdk.KEY_KP_Right:     termini.KeyRight,
	gdk.KEY_Left:         termini.KeyLeft,
	gdk.KEY_KP_Left:      termini.KeyLeft,
	gdk.KEY_Home:         termini.KeyHome,
	gdk.KEY_KP_Home:      termini.KeyHome,
	gdk.KEY_End:          termini.KeyEnd,
	gdk.KEY_KP_End:       termini.KeyEnd,
	gdk.KEY_Insert:       termini.KeyInsert,
	gdk.KEY_KP_Insert:    termini.KeyInsert,
	gdk.KEY_Delete:       termini.KeyDelete,
	gdk.KEY_KP_Delete:    termini.KeyDelete,
	gdk.KEY_Page_Up:      termini.KeyPageUp,
	gdk.KEY_KP_Page_Up:   termini.KeyPageUp,
	gdk.KEY_Page_Down:    termini.KeyPageDown,
	gdk.KEY_KP_Page_Down: termini.KeyPageDown,
	gdk.KEY_F1:           termini.KeyF1,
	gdk.KEY_F2:           termini.KeyF2,
	gdk.KEY_F3:           termini.KeyF3,
	gdk.KEY_F4:           termini.KeyF4,
	gdk.KEY_F5:           termini.KeyF5,
	gdk.KEY_F6:           termini.KeyF6,
	gdk.KEY_F7:           termini.KeyF7,
	gdk.KEY_F8:           termini.KeyF8,
	gdk.KEY_F9:           termini.KeyF9,
	gdk.KEY_F10:          termini.KeyF10,
	gdk.KEY_F11:          termini.KeyF11,
	gdk.KEY_F12:          termini.KeyF12,
	gdk.KEY_Return:       termini.KeyEnter,
	gdk.KEY_KP_Enter:     termini.KeyEnter,
	gdk.KEY_BackSpace:    termini.KeyBackspace,
	gdk.KEY_Tab:          termini.KeyTab,
	gdk.KEY_ISO_Left_Tab: termini.KeyTab,
	gdk.KEY_Escape:       termini.KeyEscape,
}

func modifiers(state uint) termini.Modifiers {
	var mods termini.Modifiers
	if state&uint(gdk.SHIFT_MASK) != 0 {
		mods |= termini.ModShift
	}
	if state&uint(gdk.MOD1_MASK) != 0 {
		mods |= termini.ModAlt
	}
	if state&uint(gdk.CONTROL_MASK) != 0 {
		mods |= termini.ModCtrl
	}
	if state&uint(gdk.META_MASK) != 0 || state&uint(gdk.SUPER_MASK) != 0 {
		mods |= termini.ModMeta
	}
	return mods
}

func (w *Widget) onKeyPress(da *gtk.DrawingArea, ev *gdk.Event) bool {
	key := gdk.EventKeyNewFromEvent(ev)
	keyval := key.KeyVal()
	mods := modifiers(key.State())

	if k, ok := namedKeys[keyval]; ok {
		if keyval == gdk.KEY_ISO_Left_Tab {
			mods |= termini.ModShift
		}
		w.post(termini.Event{Type: termini.EventKey, Key: termini.KeyEvent{Key: k, Mods: mods}})
		return true
	}

	r := gdk.KeyvalToUnicode(keyval)
	if r == 0 {
		// Modifier keys and dead keys.
		return false
	}
	w.post(termini.Event{Type: termini.EventText, Text: termini.TextEvent{Text: string(r), Mods: mods}})
	return true
}

func (w *Widget) onKeyRelease(da *gtk.DrawingArea, ev *gdk.Event) bool {
	key := gdk.EventKeyNewFromEvent(ev)
	k, ok := namedKeys[key.KeyVal()]
	if !ok {
		return false
	}
	w.post(termini.Event{Type: termini.EventKey, Key: termini.KeyEvent{Key: k, Mods: modifiers(key.State()), Released: true}})
	return true
}

func (w *Widget) onButtonPress(da *gtk.DrawingArea, ev *gdk.Event) bool {
	if C.is_single_press((*C.GdkEvent)(unsafe.Pointer(ev.Native()))) == 0 {
		return true
	}
	btn := gdk.EventButtonNewFromEvent(ev)
	da.GrabFocus()
	w.post(termini.Event{Type: termini.EventButton, Button: termini.ButtonEvent{Button: int(btn.Button())}})
	return true
}

func (w *Widget) onButtonRelease(da *gtk.DrawingArea, ev *gdk.Event) bool {
	btn := gdk.EventButtonNewFromEvent(ev)
	w.post(termini.Event{Type: termini.EventButton, Button: termini.ButtonEvent{Button: int(btn.Button()), Released: true}})
	return true
}

func (w *Widget) onMotionNotify(da *gtk.DrawingArea, ev *gdk.Event) bool {
	w.post(termini.Event{Type: termini.EventPointerMotion})
	return false
}

func (w *Widget) onFocusIn(da *gtk.DrawingArea, ev *gdk.Event) bool {
	w.post(termini.Event{Type: termini.EventFocus, Focused: true})
	return false
}

func (w *Widget) onFocusOut(da *gtk.DrawingArea, ev *gdk.Event) bool {
	w.post(termini.Event{Type: termini.EventFocus, Focused: false})
	return false
}

// onConfigure reallocates the backing surface when the allocation changes.
// The old contents are kept until the session repaints.
func (w *Widget) onConfigure(da *gtk.DrawingArea, ev *gdk.Event) bool {
	alloc := da.GetAllocation()
	width, height := alloc.GetWidth(), alloc.GetHeight()
	if ow, oh := w.list.Size(); ow == width && oh == height {
		return false
	}

	old := w.backing
	w.allocate(width, height)
	if old != nil {
		w.cr.SetSourceSurface(old, 0, 0)
		w.cr.Paint()
	}
	w.list.SetSize(width, height)
	w.post(termini.Event{Type: termini.EventResize, Width: width, Height: height})
	return false
}

var _ termini.Canvas = canvas{}
