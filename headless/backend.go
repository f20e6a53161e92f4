// Package headless provides an off-screen termini backend that draws into
// an in-memory RGBA image. It is used for snapshots and tests.
package headless

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sync"

	"github.com/phroun/termini"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// eventBuffer is the capacity of the event channel.
const eventBuffer = 64

// Backend is an in-memory termini.Backend and termini.Surface.
type Backend struct {
	mu sync.Mutex

	img          *image.RGBA
	face         font.Face
	cellW, cellH int
	ascent       int

	events chan termini.Event
	closed bool

	clipboard      string
	title          string
	pointerVisible bool
	updates        []image.Rectangle
	flips          int
}

// New creates a backend sized to cols x rows cells of the built-in 7x13
// font.
func New(cols, rows int) *Backend {
	face := basicfont.Face7x13
	b := &Backend{
		face:           face,
		cellW:          face.Advance,
		cellH:          face.Height,
		ascent:         face.Ascent,
		events:         make(chan termini.Event, eventBuffer),
		pointerVisible: true,
	}
	b.img = image.NewRGBA(image.Rect(0, 0, cols*b.cellW, rows*b.cellH))
	return b
}

func (b *Backend) Surface() termini.Surface { return b }

func (b *Backend) Events() <-chan termini.Event { return b.events }

// Send queues an event for the session.
func (b *Backend) Send(ev termini.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("backend closed")
	}
	select {
	case b.events <- ev:
		return nil
	default:
		return fmt.Errorf("event queue full")
	}
}

// SetClipboard sets the text returned to paste requests.
func (b *Backend) SetClipboard(text string) {
	b.mu.Lock()
	b.clipboard = text
	b.mu.Unlock()
}

func (b *Backend) RequestPaste() {
	b.mu.Lock()
	text := b.clipboard
	b.mu.Unlock()
	_ = b.Send(termini.Event{Type: termini.EventPaste, Paste: text})
}

func (b *Backend) SetPointerVisible(visible bool) {
	b.mu.Lock()
	b.pointerVisible = visible
	b.mu.Unlock()
}

// PointerVisible reports the last pointer visibility requested.
func (b *Backend) PointerVisible() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pointerVisible
}

func (b *Backend) SetTitle(title string) {
	b.mu.Lock()
	b.title = title
	b.mu.Unlock()
}

// Title returns the last title set.
func (b *Backend) Title() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.title
}

// Close closes the event channel; a running session then returns.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.events)
	}
	return nil
}

// Resize reallocates the image, keeping the overlapping pixels, and queues
// a resize event.
func (b *Backend) Resize(width, height int) error {
	b.mu.Lock()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), b.img, image.Point{}, draw.Src)
	b.img = img
	b.mu.Unlock()
	return b.Send(termini.Event{Type: termini.EventResize, Width: width, Height: height})
}

// Image returns a copy of the current pixels.
func (b *Backend) Image() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	img := image.NewRGBA(b.img.Bounds())
	copy(img.Pix, b.img.Pix)
	return img
}

// WritePNG encodes the current pixels as PNG.
func (b *Backend) WritePNG(w io.Writer) error {
	if err := png.Encode(w, b.Image()); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Updates returns the areas presented with Update since the last reset.
func (b *Backend) Updates() []image.Rectangle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]image.Rectangle(nil), b.updates...)
}

// Flips returns the number of full presents since the last reset.
func (b *Backend) Flips() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flips
}

// ResetStats forgets recorded updates and flips.
func (b *Backend) ResetStats() {
	b.mu.Lock()
	b.updates = nil
	b.flips = 0
	b.mu.Unlock()
}

func (b *Backend) Size() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.img.Bounds()
	return r.Dx(), r.Dy()
}

func (b *Backend) CellSize() (int, int) {
	return b.cellW, b.cellH
}

func rgba(c termini.RGB) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

func (b *Backend) fill(r image.Rectangle, c termini.RGB) {
	draw.Draw(b.img, r.Intersect(b.img.Bounds()), &image.Uniform{C: rgba(c)}, image.Point{}, draw.Src)
}

func (b *Backend) FillRect(x, y, w, h int, c termini.RGB) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fill(image.Rect(x, y, x+w, y+h), c)
}

func (b *Backend) StrokeRect(x, y, w, h int, c termini.RGB) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fill(image.Rect(x, y, x+w, y+1), c)
	b.fill(image.Rect(x, y+h-1, x+w, y+h), c)
	b.fill(image.Rect(x, y, x+1, y+h), c)
	b.fill(image.Rect(x+w-1, y, x+w, y+h), c)
}

func (b *Backend) HLine(x, y, length int, c termini.RGB) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fill(image.Rect(x, y, x+length, y+1), c)
}

func (b *Backend) VLine(x, y, length int, c termini.RGB) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fill(image.Rect(x, y, x+1, y+length), c)
}

// DrawGlyph draws r clipped to its cell. Bold is emulated by drawing the
// glyph twice one pixel apart.
func (b *Backend) DrawGlyph(x, y int, r rune, face termini.Face, fg, bg termini.RGB) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cell := image.Rect(x, y, x+b.cellW, y+b.cellH).Intersect(b.img.Bounds())
	if cell.Empty() {
		return
	}
	d := font.Drawer{
		Dst:  b.img.SubImage(cell).(*image.RGBA),
		Src:  image.NewUniform(rgba(fg)),
		Face: b.face,
		Dot:  fixed.P(x, y+b.ascent),
	}
	d.DrawString(string(r))
	if face == termini.FaceBold {
		d.Dot = fixed.P(x+1, y+b.ascent)
		d.DrawString(string(r))
	}
}

func (b *Backend) Clear(c termini.RGB) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fill(b.img.Bounds(), c)
}

func (b *Backend) Update(x, y, w, h int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, image.Rect(x, y, x+w, y+h))
}

func (b *Backend) Flip() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flips++
}
