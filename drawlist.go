package termini

import (
	"image"
	"sync"
)

// OpKind identifies a recorded drawing operation.
type OpKind uint8

const (
	OpFill OpKind = iota
	OpStroke
	OpHLine
	OpVLine
	OpGlyph
	OpClear
	OpUpdate
	OpFlip
)

// DrawOp is one recorded Surface call.
type DrawOp struct {
	Kind       OpKind
	X, Y, W, H int
	Rune       rune
	Face       Face
	Fg, Bg     RGB
}

// Canvas is the drawing half of a Surface, implemented by toolkit backends
// on their UI thread.
type Canvas interface {
	FillRect(x, y, w, h int, c RGB)
	StrokeRect(x, y, w, h int, c RGB)
	HLine(x, y, length int, c RGB)
	VLine(x, y, length int, c RGB)
	DrawGlyph(x, y int, r rune, face Face, fg, bg RGB)
	Clear(c RGB)
}

// DrawList is a Surface that records drawing calls so they can be replayed
// on a toolkit's UI thread. It is safe for concurrent use.
type DrawList struct {
	mu     sync.Mutex
	ops    []DrawOp
	width  int
	height int
	cellW  int
	cellH  int

	// notify is called without the lock held after each Update or Flip.
	notify func()
}

// NewDrawList creates a draw list for a surface of the given pixel and cell
// sizes. notify, if not nil, is called whenever recorded work should be
// presented.
func NewDrawList(width, height, cellW, cellH int, notify func()) *DrawList {
	return &DrawList{width: width, height: height, cellW: cellW, cellH: cellH, notify: notify}
}

// SetSize records a new surface size. Backends call it before sending the
// matching resize event.
func (d *DrawList) SetSize(width, height int) {
	d.mu.Lock()
	d.width, d.height = width, height
	d.mu.Unlock()
}

// SetCellSize records new font metrics.
func (d *DrawList) SetCellSize(cellW, cellH int) {
	d.mu.Lock()
	d.cellW, d.cellH = cellW, cellH
	d.mu.Unlock()
}

// Drain returns and forgets the recorded operations.
func (d *DrawList) Drain() []DrawOp {
	d.mu.Lock()
	defer d.mu.Unlock()
	ops := d.ops
	d.ops = nil
	return ops
}

// Pending reports whether operations are waiting to be drained.
func (d *DrawList) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ops) > 0
}

func (d *DrawList) record(op DrawOp) {
	d.mu.Lock()
	d.ops = append(d.ops, op)
	d.mu.Unlock()
}

func (d *DrawList) Size() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

func (d *DrawList) CellSize() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cellW, d.cellH
}

func (d *DrawList) FillRect(x, y, w, h int, c RGB) {
	d.record(DrawOp{Kind: OpFill, X: x, Y: y, W: w, H: h, Fg: c})
}

func (d *DrawList) StrokeRect(x, y, w, h int, c RGB) {
	d.record(DrawOp{Kind: OpStroke, X: x, Y: y, W: w, H: h, Fg: c})
}

func (d *DrawList) HLine(x, y, length int, c RGB) {
	d.record(DrawOp{Kind: OpHLine, X: x, Y: y, W: length, H: 1, Fg: c})
}

func (d *DrawList) VLine(x, y, length int, c RGB) {
	d.record(DrawOp{Kind: OpVLine, X: x, Y: y, W: 1, H: length, Fg: c})
}

func (d *DrawList) DrawGlyph(x, y int, r rune, face Face, fg, bg RGB) {
	d.record(DrawOp{Kind: OpGlyph, X: x, Y: y, Rune: r, Face: face, Fg: fg, Bg: bg})
}

func (d *DrawList) Clear(c RGB) {
	d.record(DrawOp{Kind: OpClear, Fg: c})
}

func (d *DrawList) Update(x, y, w, h int) {
	d.record(DrawOp{Kind: OpUpdate, X: x, Y: y, W: w, H: h})
	d.signal()
}

func (d *DrawList) Flip() {
	d.record(DrawOp{Kind: OpFlip})
	d.signal()
}

func (d *DrawList) signal() {
	if d.notify != nil {
		d.notify()
	}
}

// Replay draws ops onto c. It returns the union of the presented areas and
// whether a full-surface flip was requested.
func Replay(ops []DrawOp, c Canvas) (dirty image.Rectangle, flip bool) {
	for _, op := range ops {
		switch op.Kind {
		case OpFill:
			c.FillRect(op.X, op.Y, op.W, op.H, op.Fg)
		case OpStroke:
			c.StrokeRect(op.X, op.Y, op.W, op.H, op.Fg)
		case OpHLine:
			c.HLine(op.X, op.Y, op.W, op.Fg)
		case OpVLine:
			c.VLine(op.X, op.Y, op.H, op.Fg)
		case OpGlyph:
			c.DrawGlyph(op.X, op.Y, op.Rune, op.Face, op.Fg, op.Bg)
		case OpClear:
			c.Clear(op.Fg)
		case OpUpdate:
			dirty = dirty.Union(image.Rect(op.X, op.Y, op.X+op.W, op.Y+op.H))
		case OpFlip:
			flip = true
		}
	}
	return dirty, flip
}
