// Package terminiqt is the Qt backend for termini. Drawing calls from the
// session are recorded in a DrawList and replayed onto a QPixmap by a timer
// on the Qt main thread.
package terminiqt

import (
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mappu/miqt/qt"
	"github.com/phroun/termini"
)

// Qt font size scale factor to match GTK/Pango font rendering
const qtFontSizeScale = 1.333

// eventBuffer is the capacity of the event channel.
const eventBuffer = 256

// presentInterval is the replay timer period in milliseconds.
const presentInterval = 16

// Widget is a Qt widget that implements termini.Backend.
type Widget struct {
	mu sync.Mutex

	widget *qt.QWidget
	list   *termini.DrawList
	logger *log.Logger

	fontFamily   string
	fontSize     int
	font         *qt.QFont
	boldFont     *qt.QFont
	cellW, cellH int
	ascent       int

	// pixmap and timer are only touched on the Qt main thread.
	pixmap *qt.QPixmap
	timer  *qt.QTimer

	events chan termini.Event
	closed bool

	// Requests from the session goroutine, applied by the timer.
	pendingTitle   *string
	pendingPointer *bool
	pendingPaste   bool
	pendingCalls   []func()
	onTitle        func(string)
}

// NewWidget creates a widget sized for cols x rows cells of the given font.
// It must be called on the Qt main thread after the application exists.
func NewWidget(cols, rows int, fontFamily string, fontSize int, logger *log.Logger) *Widget {
	if logger == nil {
		logger = log.Default()
	}
	w := &Widget{
		widget:     qt.NewQWidget2(),
		fontFamily: fontFamily,
		fontSize:   fontSize,
		logger:     logger,
		events:     make(chan termini.Event, eventBuffer),
	}
	w.updateFontMetrics()

	width, height := cols*w.cellW, rows*w.cellH
	w.list = termini.NewDrawList(width, height, w.cellW, w.cellH, nil)
	w.pixmap = qt.NewQPixmap2(width, height)

	w.widget.SetFocusPolicy(qt.StrongFocus)
	w.widget.SetMouseTracking(true)
	w.widget.SetMinimumSize2(w.cellW*2, w.cellH)
	w.widget.Resize(width, height)

	w.timer = qt.NewQTimer2(w.widget.QObject)
	w.timer.OnTimeout(w.present)
	w.timer.Start(presentInterval)

	w.widget.OnPaintEvent(func(super func(event *qt.QPaintEvent), event *qt.QPaintEvent) {
		w.paintEvent(event)
	})
	w.widget.OnKeyPressEvent(func(super func(event *qt.QKeyEvent), event *qt.QKeyEvent) {
		w.keyEvent(event, false)
	})
	w.widget.OnKeyReleaseEvent(func(super func(event *qt.QKeyEvent), event *qt.QKeyEvent) {
		w.keyEvent(event, true)
	})
	w.widget.OnMousePressEvent(func(super func(event *qt.QMouseEvent), event *qt.QMouseEvent) {
		w.mouseButtonEvent(event, false)
	})
	w.widget.OnMouseReleaseEvent(func(super func(event *qt.QMouseEvent), event *qt.QMouseEvent) {
		w.mouseButtonEvent(event, true)
	})
	w.widget.OnMouseMoveEvent(func(super func(event *qt.QMouseEvent), event *qt.QMouseEvent) {
		w.post(termini.Event{Type: termini.EventPointerMotion})
	})
	w.widget.OnFocusInEvent(func(super func(event *qt.QFocusEvent), event *qt.QFocusEvent) {
		w.post(termini.Event{Type: termini.EventFocus, Focused: true})
	})
	w.widget.OnFocusOutEvent(func(super func(event *qt.QFocusEvent), event *qt.QFocusEvent) {
		w.post(termini.Event{Type: termini.EventFocus, Focused: false})
	})
	w.widget.OnResizeEvent(func(super func(event *qt.QResizeEvent), event *qt.QResizeEvent) {
		w.resizeEvent(event)
	})
	// Tab belongs to the terminal, not to focus navigation.
	w.widget.OnFocusNextPrevChild(func(super func(next bool) bool, next bool) bool {
		return false
	})
	return w
}

// Widget returns the Qt widget to place in a window.
func (w *Widget) Widget() *qt.QWidget {
	return w.widget
}

// SetTitleHandler sets the function that receives window title changes. It
// is called on the Qt main thread.
func (w *Widget) SetTitleHandler(fn func(string)) {
	w.mu.Lock()
	w.onTitle = fn
	w.mu.Unlock()
}

// ScreenDepth returns the bits per pixel of the primary screen.
func ScreenDepth() termini.Depth {
	screen := qt.QGuiApplication_PrimaryScreen()
	if screen == nil {
		return termini.Depth24
	}
	switch d := screen.Depth(); {
	case d >= 24:
		return termini.Depth24
	case d >= 8:
		return termini.Depth8
	case d >= 4:
		return termini.Depth4
	case d >= 2:
		return termini.Depth2
	case d == 1:
		return termini.Depth1
	default:
		return termini.Depth24
	}
}

func (w *Widget) effectiveFontSize() int {
	return int(float64(w.fontSize)*qtFontSizeScale + 0.5)
}

func (w *Widget) updateFontMetrics() {
	w.font = qt.NewQFont6(w.fontFamily, w.effectiveFontSize())
	w.font.SetFixedPitch(true)
	w.boldFont = qt.NewQFont6(w.fontFamily, w.effectiveFontSize())
	w.boldFont.SetFixedPitch(true)
	w.boldFont.SetBold(true)

	metrics := qt.NewQFontMetrics(w.font)
	w.cellW = metrics.AverageCharWidth()
	w.cellH = metrics.Height()
	w.ascent = metrics.Ascent()
	if w.cellW < 1 {
		w.cellW = max(w.effectiveFontSize()*6/10, 1)
	}
	if w.cellH < 1 {
		w.cellH = max(w.effectiveFontSize()*12/10, 1)
	}
}

// present runs on every timer tick: it applies pending requests and replays
// recorded drawing onto the pixmap.
func (w *Widget) present() {
	w.applyRequests()

	ops := w.list.Drain()
	if len(ops) == 0 {
		return
	}
	painter := qt.NewQPainter2(w.pixmap.QPaintDevice)
	dirty, flip := termini.Replay(ops, &canvas{w: w, p: painter})
	painter.End()

	switch {
	case flip:
		w.widget.Update()
	case !dirty.Empty():
		w.widget.Update2(dirty.Min.X, dirty.Min.Y, dirty.Dx(), dirty.Dy())
	}
}

func (w *Widget) applyRequests() {
	w.mu.Lock()
	title, pointer, paste, onTitle := w.pendingTitle, w.pendingPointer, w.pendingPaste, w.onTitle
	calls := w.pendingCalls
	w.pendingTitle, w.pendingPointer, w.pendingPaste, w.pendingCalls = nil, nil, false, nil
	w.mu.Unlock()

	for _, fn := range calls {
		fn()
	}

	if title != nil && onTitle != nil {
		onTitle(*title)
	}
	if pointer != nil {
		if *pointer {
			w.widget.UnsetCursor()
		} else {
			w.widget.SetCursor(qt.NewQCursor2(qt.BlankCursor))
		}
	}
	if paste {
		text := qt.QGuiApplication_Clipboard().Text()
		if text != "" {
			w.post(termini.Event{Type: termini.EventPaste, Paste: text})
		}
	}
}

// RunOnMain queues fn to run on the Qt main thread at the next timer tick.
func (w *Widget) RunOnMain(fn func()) {
	w.mu.Lock()
	w.pendingCalls = append(w.pendingCalls, fn)
	w.mu.Unlock()
}

func (w *Widget) paintEvent(event *qt.QPaintEvent) {
	painter := qt.NewQPainter2(w.widget.QPaintDevice)
	defer painter.End()
	painter.DrawPixmap9(0, 0, w.pixmap)
}

// resizeEvent reallocates the pixmap. The old contents are kept until the
// session repaints.
func (w *Widget) resizeEvent(event *qt.QResizeEvent) {
	width, height := event.Size().Width(), event.Size().Height()
	if ow, oh := w.list.Size(); ow == width && oh == height {
		return
	}
	old := w.pixmap
	w.pixmap = qt.NewQPixmap2(max(width, 1), max(height, 1))
	painter := qt.NewQPainter2(w.pixmap.QPaintDevice)
	painter.DrawPixmap9(0, 0, old)
	painter.End()

	w.list.SetSize(width, height)
	w.post(termini.Event{Type: termini.EventResize, Width: width, Height: height})
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
	w.mu.Lock()
	w.pendingPaste = true
	w.mu.Unlock()
}

func (w *Widget) SetPointerVisible(visible bool) {
	w.mu.Lock()
	w.pendingPointer = &visible
	w.mu.Unlock()
}

func (w *Widget) SetTitle(title string) {
	w.mu.Lock()
	w.pendingTitle = &title
	w.mu.Unlock()
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

// canvas draws replayed operations with an active painter.
type canvas struct {
	w *Widget
	p *qt.QPainter
}

func qcolor(c termini.RGB) *qt.QColor {
	return qt.NewQColor3(int(c.R), int(c.G), int(c.B))
}

func (c *canvas) FillRect(x, y, w, h int, col termini.RGB) {
	c.p.FillRect5(x, y, w, h, qcolor(col))
}

func (c *canvas) StrokeRect(x, y, w, h int, col termini.RGB) {
	c.p.SetPenWithPen(qt.NewQPen3(qcolor(col)))
	c.p.DrawRect2(x, y, w-1, h-1)
}

func (c *canvas) HLine(x, y, length int, col termini.RGB) {
	c.p.FillRect5(x, y, length, 1, qcolor(col))
}

func (c *canvas) VLine(x, y, length int, col termini.RGB) {
	c.p.FillRect5(x, y, 1, length, qcolor(col))
}

func (c *canvas) DrawGlyph(x, y int, r rune, face termini.Face, fg, bg termini.RGB) {
	if r == ' ' || r == 0 {
		return
	}
	if face == termini.FaceBold {
		c.p.SetFont(c.w.boldFont)
	} else {
		c.p.SetFont(c.w.font)
	}
	c.p.SetPen(qcolor(fg))
	c.p.SetClipRect2(x, y, c.w.cellW*2, c.w.cellH)
	c.p.DrawText3(x, y+c.w.ascent, string(r))
	c.p.SetClipping(false)
}

func (c *canvas) Clear(col termini.RGB) {
	c.p.FillRect5(0, 0, c.w.pixmap.Width(), c.w.pixmap.Height(), qcolor(col))
}
