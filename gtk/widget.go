// Package terminigtk is the GTK 3 backend for termini. Drawing calls from
// the session are recorded in a DrawList and replayed onto a cairo image
// surface on the GTK main loop.
package terminigtk

/*
#cgo pkg-config: gtk+-3.0 pangocairo
#include <stdlib.h>
#include <gtk/gtk.h>
#include <gdk/gdk.h>
#include <pango/pangocairo.h>

static PangoFontDescription *font_desc(const char *font_family, int font_size, int bold) {
    PangoFontDescription *desc = pango_font_description_new();
    pango_font_description_set_family(desc, font_family);
    pango_font_description_set_size(desc, font_size * PANGO_SCALE);
    if (bold) {
        pango_font_description_set_weight(desc, PANGO_WEIGHT_BOLD);
    }
    return desc;
}

// Draw text with its layout origin at (x, y).
static void pango_draw_text(cairo_t *cr, const char *text, const char *font_family,
                            int font_size, int bold, double x, double y,
                            double r, double g, double b) {
    PangoLayout *layout = pango_cairo_create_layout(cr);
    PangoFontDescription *desc = font_desc(font_family, font_size, bold);

    pango_layout_set_font_description(layout, desc);
    pango_layout_set_text(layout, text, -1);

    cairo_set_source_rgb(cr, r, g, b);
    cairo_move_to(cr, x, y);
    pango_cairo_show_layout(cr, layout);

    pango_font_description_free(desc);
    g_object_unref(layout);
}

// Cell metrics of a font: advance of "M" and ascent plus descent.
static void pango_cell_metrics(const char *font_family, int font_size,
                               int *out_width, int *out_height) {
    cairo_surface_t *surface = cairo_image_surface_create(CAIRO_FORMAT_ARGB32, 1, 1);
    cairo_t *cr = cairo_create(surface);

    PangoLayout *layout = pango_cairo_create_layout(cr);
    PangoFontDescription *desc = font_desc(font_family, font_size, 0);
    pango_layout_set_font_description(layout, desc);
    pango_layout_set_text(layout, "M", -1);

    int width, height;
    pango_layout_get_pixel_size(layout, &width, &height);

    PangoContext *context = pango_layout_get_context(layout);
    PangoFontMetrics *metrics = pango_context_get_metrics(context, desc, NULL);
    int ascent = pango_font_metrics_get_ascent(metrics) / PANGO_SCALE;
    int descent = pango_font_metrics_get_descent(metrics) / PANGO_SCALE;

    *out_width = width;
    *out_height = ascent + descent;

    pango_font_metrics_unref(metrics);
    pango_font_description_free(desc);
    g_object_unref(layout);
    cairo_destroy(cr);
    cairo_surface_destroy(surface);
}

static void set_pointer_visible(GtkWidget *widget, int visible) {
    GdkWindow *window = gtk_widget_get_window(widget);
    if (!window) return;
    if (visible) {
        gdk_window_set_cursor(window, NULL);
        return;
    }
    GdkCursor *blank = gdk_cursor_new_for_display(gdk_window_get_display(window), GDK_BLANK_CURSOR);
    gdk_window_set_cursor(window, blank);
    g_object_unref(blank);
}

static int screen_depth(void) {
    GdkScreen *screen = gdk_screen_get_default();
    if (!screen) return 24;
    GdkVisual *visual = gdk_screen_get_system_visual(screen);
    if (!visual) return 24;
    return gdk_visual_get_depth(visual);
}
*/
import "C"

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/charmbracelet/log"
	"github.com/gotk3/gotk3/cairo"
	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/phroun/termini"
)

// eventBuffer is the capacity of the event channel.
const eventBuffer = 256

// Widget is a GTK drawing area that implements termini.Backend.
type Widget struct {
	mu sync.Mutex

	da        *gtk.DrawingArea
	clipboard *gtk.Clipboard
	list      *termini.DrawList
	logger    *log.Logger

	fontFamily   string
	fontSize     int
	cellW, cellH int

	// backing is only touched on the GTK main loop.
	backing *cairo.Surface
	cr      *cairo.Context

	events  chan termini.Event
	closed  bool
	queued  atomic.Bool
	onTitle func(string)
}

// NewWidget creates a widget sized for cols x rows cells of the given font.
// It must be called on the GTK main loop.
func NewWidget(cols, rows int, fontFamily string, fontSize int, logger *log.Logger) (*Widget, error) {
	if logger == nil {
		logger = log.Default()
	}
	w := &Widget{
		fontFamily: fontFamily,
		fontSize:   fontSize,
		logger:     logger,
		events:     make(chan termini.Event, eventBuffer),
	}
	w.updateFontMetrics()

	width, height := cols*w.cellW, rows*w.cellH
	w.list = termini.NewDrawList(width, height, w.cellW, w.cellH, w.schedule)
	w.allocate(width, height)

	var err error
	w.da, err = gtk.DrawingAreaNew()
	if err != nil {
		return nil, err
	}
	w.da.SetSizeRequest(w.cellW*2, w.cellH)
	w.da.AddEvents(int(gdk.BUTTON_PRESS_MASK | gdk.BUTTON_RELEASE_MASK |
		gdk.POINTER_MOTION_MASK | gdk.KEY_PRESS_MASK | gdk.KEY_RELEASE_MASK |
		gdk.FOCUS_CHANGE_MASK))
	w.da.SetCanFocus(true)

	w.da.Connect("draw", w.onDraw)
	w.da.Connect("button-press-event", w.onButtonPress)
	w.da.Connect("button-release-event", w.onButtonRelease)
	w.da.Connect("motion-notify-event", w.onMotionNotify)
	w.da.Connect("key-press-event", w.onKeyPress)
	w.da.Connect("key-release-event", w.onKeyRelease)
	w.da.Connect("configure-event", w.onConfigure)
	w.da.Connect("focus-in-event", w.onFocusIn)
	w.da.Connect("focus-out-event", w.onFocusOut)

	w.clipboard, err = gtk.ClipboardGet(gdk.SELECTION_CLIPBOARD)
	if err != nil {
		w.logger.Warn("clipboard unavailable", "err", err)
	}
	return w, nil
}

// DrawingArea returns the GTK widget to pack into a window.
func (w *Widget) DrawingArea() *gtk.DrawingArea {
	return w.da
}

// PixelSize returns the size in pixels of a cols x rows grid.
func (w *Widget) PixelSize(cols, rows int) (int, int) {
	return cols * w.cellW, rows * w.cellH
}

// SetTitleHandler sets the function that receives window title changes. It
// is called on the GTK main loop.
func (w *Widget) SetTitleHandler(fn func(string)) {
	w.mu.Lock()
	w.onTitle = fn
	w.mu.Unlock()
}

// ScreenDepth returns the bits per pixel of the default screen's visual.
func ScreenDepth() termini.Depth {
	d, err := termini.ParseDepth(strconv.Itoa(int(C.screen_depth())))
	if err != nil {
		return termini.Depth24
	}
	return d
}

func (w *Widget) updateFontMetrics() {
	cFont := C.CString(w.fontFamily)
	defer C.free(unsafe.Pointer(cFont))

	var cw, ch C.int
	C.pango_cell_metrics(cFont, C.int(w.fontSize), &cw, &ch)
	w.cellW, w.cellH = int(cw), int(ch)

	if w.cellW < 1 {
		w.cellW = max(w.fontSize*6/10, 1)
	}
	if w.cellH < 1 {
		w.cellH = max(w.fontSize*12/10, 1)
	}
}

// allocate replaces the backing surface. Main loop only.
func (w *Widget) allocate(width, height int) {
	w.backing = cairo.CreateImageSurface(cairo.FORMAT_RGB24, max(width, 1), max(height, 1))
	w.cr = cairo.Create(w.backing)
}

// schedule runs present on the main loop once per batch of updates.
func (w *Widget) schedule() {
	if w.queued.Swap(true) {
		return
	}
	glib.IdleAdd(w.present)
}

func (w *Widget) present() bool {
	w.queued.Store(false)
	ops := w.list.Drain()
	if len(ops) == 0 {
		return false
	}
	dirty, flip := termini.Replay(ops, canvas{w})
	w.backing.Flush()
	switch {
	case flip:
		w.da.QueueDraw()
	case !dirty.Empty():
		w.da.QueueDrawArea(dirty.Min.X, dirty.Min.Y, dirty.Dx(), dirty.Dy())
	}
	return false
}

func (w *Widget) onDraw(da *gtk.DrawingArea, cr *cairo.Context) bool {
	cr.SetSourceSurface(w.backing, 0, 0)
	cr.Paint()
	return true
}

// post delivers an event to the session, dropping it if the queue is full.
func (w *Widget) post(ev termini.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.events <- ev:
	default:
		w.logger.Warn("event queue full, dropping event", "type", ev.Type)
	}
}

func (w *Widget) Surface() termini.Surface { return w.list }

func (w *Widget) Events() <-chan termini.Event { return w.events }

func (w *Widget) RequestPaste() {
	glib.IdleAdd(func() bool {
		if w.clipboard == nil {
			return false
		}
		text, err := w.clipboard.WaitForText()
		if err != nil {
			w.logger.Debug("clipboard empty", "err", err)
			return false
		}
		if text != "" {
			w.post(termini.Event{Type: termini.EventPaste, Paste: text})
		}
		return false
	})
}

func (w *Widget) SetPointerVisible(visible bool) {
	v := 0
	if visible {
		v = 1
	}
	glib.IdleAdd(func() bool {
		native := (*C.GtkWidget)(unsafe.Pointer(w.da.Native()))
		C.set_pointer_visible(native, C.int(v))
		return false
	})
}

func (w *Widget) SetTitle(title string) {
	w.mu.Lock()
	fn := w.onTitle
	w.mu.Unlock()
	if fn == nil {
		return
	}
	glib.IdleAdd(func() bool {
		fn(title)
		return false
	})
}

// Close ends the event stream. The session's Run returns once it notices.
func (w *Widget) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.New("widget already closed")
	}
	w.closed = true
	close(w.events)
	return nil
}

// canvas draws replayed operations onto the backing surface.
type canvas struct {
	w *Widget
}

func setColor(cr *cairo.Context, c termini.RGB) {
	cr.SetSourceRGB(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
}

func (c canvas) FillRect(x, y, w, h int, col termini.RGB) {
	cr := c.w.cr
	setColor(cr, col)
	cr.Rectangle(float64(x), float64(y), float64(w), float64(h))
	cr.Fill()
}

func (c canvas) StrokeRect(x, y, w, h int, col termini.RGB) {
	cr := c.w.cr
	setColor(cr, col)
	cr.SetLineWidth(1)
	cr.Rectangle(float64(x)+0.5, float64(y)+0.5, float64(w-1), float64(h-1))
	cr.Stroke()
}

func (c canvas) HLine(x, y, length int, col termini.RGB) {
	c.FillRect(x, y, length, 1, col)
}

func (c canvas) VLine(x, y, length int, col termini.RGB) {
	c.FillRect(x, y, 1, length, col)
}

func (c canvas) DrawGlyph(x, y int, r rune, face termini.Face, fg, bg termini.RGB) {
	if r == ' ' || r == 0 {
		return
	}
	cr := c.w.cr
	cr.Save()
	cr.Rectangle(float64(x), float64(y), float64(c.w.cellW*2), float64(c.w.cellH))
	cr.Clip()

	cText := C.CString(string(r))
	cFont := C.CString(c.w.fontFamily)
	defer C.free(unsafe.Pointer(cText))
	defer C.free(unsafe.Pointer(cFont))

	bold := 0
	if face == termini.FaceBold {
		bold = 1
	}
	crNative := (*C.cairo_t)(unsafe.Pointer(cr.Native()))
	C.pango_draw_text(crNative, cText, cFont, C.int(c.w.fontSize), C.int(bold),
		C.double(x), C.double(y),
		C.double(float64(fg.R)/255), C.double(float64(fg.G)/255), C.double(float64(fg.B)/255))
	cr.Restore()
}

func (c canvas) Clear(col termini.RGB) {
	cr := c.w.cr
	setColor(cr, col)
	cr.Paint()
}
