package termini

import (
	"bytes"
	"io"
	"os/exec"
	"sync"
)

// recSurface records every drawing call.
type recSurface struct {
	w, h, cw, ch int
	ops          []string
	fills        []fillOp
	strokes      []fillOp
	hlines       [][3]int
	vlines       [][3]int
	glyphs       []glyphOp
	updates      [][4]int
	flips        int
	clears       int
}

type fillOp struct {
	x, y, w, h int
	c          RGB
}

type glyphOp struct {
	x, y   int
	r      rune
	face   Face
	fg, bg RGB
}

func newRecSurface(cols, rows int) *recSurface {
	return &recSurface{w: cols * 8, h: rows * 16, cw: 8, ch: 16}
}

func (s *recSurface) Size() (int, int)     { return s.w, s.h }
func (s *recSurface) CellSize() (int, int) { return s.cw, s.ch }

func (s *recSurface) FillRect(x, y, w, h int, c RGB) {
	s.ops = append(s.ops, "fill")
	s.fills = append(s.fills, fillOp{x, y, w, h, c})
}

func (s *recSurface) StrokeRect(x, y, w, h int, c RGB) {
	s.ops = append(s.ops, "stroke")
	s.strokes = append(s.strokes, fillOp{x, y, w, h, c})
}

func (s *recSurface) HLine(x, y, length int, c RGB) {
	s.ops = append(s.ops, "hline")
	s.hlines = append(s.hlines, [3]int{x, y, length})
}

func (s *recSurface) VLine(x, y, length int, c RGB) {
	s.ops = append(s.ops, "vline")
	s.vlines = append(s.vlines, [3]int{x, y, length})
}

func (s *recSurface) DrawGlyph(x, y int, r rune, face Face, fg, bg RGB) {
	s.ops = append(s.ops, "glyph")
	s.glyphs = append(s.glyphs, glyphOp{x, y, r, face, fg, bg})
}

func (s *recSurface) Clear(c RGB) {
	s.ops = append(s.ops, "clear")
	s.clears++
}

func (s *recSurface) Update(x, y, w, h int) {
	s.ops = append(s.ops, "update")
	s.updates = append(s.updates, [4]int{x, y, w, h})
}

func (s *recSurface) Flip() {
	s.ops = append(s.ops, "flip")
	s.flips++
}

func (s *recSurface) reset() {
	*s = recSurface{w: s.w, h: s.h, cw: s.cw, ch: s.ch}
}

// fakeEngine is a grid of cells with scripted output handling.
type fakeEngine struct {
	rows, cols int
	cells      map[Pos]Cell
	cursor     Pos
	visible    bool
	cb         Callbacks
	out        io.Writer
	written    bytes.Buffer
	onWrite    func(e *fakeEngine, p []byte)
	resizes    [][2]int
	closed     bool
}

func newFakeEngine(rows, cols int) *fakeEngine {
	return &fakeEngine{rows: rows, cols: cols, cells: map[Pos]Cell{}, visible: true}
}

func (e *fakeEngine) CellAt(row, col int) Cell { return e.cells[Pos{row, col}] }
func (e *fakeEngine) Size() (int, int)         { return e.rows, e.cols }

func (e *fakeEngine) Write(p []byte) (int, error) {
	e.written.Write(p)
	if e.onWrite != nil {
		e.onWrite(e, p)
	}
	return len(p), nil
}

func (e *fakeEngine) Resize(rows, cols int) {
	e.rows, e.cols = rows, cols
	e.resizes = append(e.resizes, [2]int{rows, cols})
}

func (e *fakeEngine) Cursor() (Pos, bool)       { return e.cursor, e.visible }
func (e *fakeEngine) SetCallbacks(cb Callbacks) { e.cb = cb }
func (e *fakeEngine) SetOutput(w io.Writer)     { e.out = w }
func (e *fakeEngine) Close() error              { e.closed = true; return nil }

// fakePTY serves scripted reads and records writes.
type fakePTY struct {
	mu      sync.Mutex
	reads   chan []byte
	written bytes.Buffer
	sizes   [][2]int
	closed  chan struct{}
	once    sync.Once
}

func newFakePTY() *fakePTY {
	return &fakePTY{reads: make(chan []byte, 16), closed: make(chan struct{})}
}

func (p *fakePTY) Start(*exec.Cmd) error { return nil }

func (p *fakePTY) Read(b []byte) (int, error) {
	select {
	case data, ok := <-p.reads:
		if !ok {
			return 0, io.EOF
		}
		return copy(b, data), nil
	case <-p.closed:
		return 0, io.ErrClosedPipe
	}
}

func (p *fakePTY) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written.Write(b)
}

func (p *fakePTY) Resize(cols, rows int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sizes = append(p.sizes, [2]int{cols, rows})
	return nil
}

func (p *fakePTY) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

func (p *fakePTY) output() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written.String()
}

// fakeBackend hands out a recording surface and a scripted event channel.
type fakeBackend struct {
	surface *recSurface
	events  chan Event
	pastes  int
	pointer []bool
	titles  []string
}

func newFakeBackend(cols, rows int) *fakeBackend {
	return &fakeBackend{surface: newRecSurface(cols, rows), events: make(chan Event, 16)}
}

func (b *fakeBackend) Surface() Surface         { return b.surface }
func (b *fakeBackend) Events() <-chan Event     { return b.events }
func (b *fakeBackend) RequestPaste()            { b.pastes++ }
func (b *fakeBackend) SetPointerVisible(v bool) { b.pointer = append(b.pointer, v) }
func (b *fakeBackend) SetTitle(title string)    { b.titles = append(b.titles, title) }
func (b *fakeBackend) Close() error             { return nil }
