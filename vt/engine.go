// Package vt adapts the go-headless-term emulator to the termini.Engine
// interface. Dirty cells are grouped per row and reported as damage after
// every write; cursor, title and bell changes are reported as callbacks.
package vt

import (
	"image/color"
	"io"
	"sort"

	headlessterm "github.com/danielgatis/go-headless-term"
	"github.com/phroun/termini"
)

// Engine is a termini.Engine backed by a headless terminal.
type Engine struct {
	term *headlessterm.Terminal
	cb   termini.Callbacks
	out  io.Writer

	cursor  termini.Pos
	visible bool

	title string

	// Set by providers while the terminal holds its lock and dispatched
	// after Write returns.
	titleDirty bool
	bells      int
}

// New creates an engine with a rows x cols grid.
func New(rows, cols int) *Engine {
	e := &Engine{}
	e.term = headlessterm.New(
		headlessterm.WithSize(rows, cols),
		headlessterm.WithResponse(responder{e}),
		headlessterm.WithBell(bellRecorder{e}),
		headlessterm.WithTitle(&titleRecorder{e}),
	)
	row, col := e.term.CursorPos()
	e.cursor = termini.Pos{Row: row, Col: col}
	e.visible = e.term.CursorVisible()
	return e
}

func (e *Engine) SetCallbacks(cb termini.Callbacks) {
	e.cb = cb
}

func (e *Engine) SetOutput(w io.Writer) {
	e.out = w
}

// Write feeds child output to the terminal and reports what changed.
func (e *Engine) Write(p []byte) (int, error) {
	n, err := e.term.Write(p)
	e.dispatch()
	return n, err
}

func (e *Engine) dispatch() {
	dirty := e.term.DirtyCells()
	e.term.ClearDirty()

	row, col := e.term.CursorPos()
	pos := termini.Pos{Row: row, Col: col}
	visible := e.term.CursorVisible()
	bells := e.bells
	e.bells = 0
	titleDirty := e.titleDirty
	e.titleDirty = false

	if e.cb == nil {
		e.cursor, e.visible = pos, visible
		return
	}

	for _, r := range rowRects(dirty) {
		e.cb.Damage(r)
	}

	// Hide before moving and move before showing, so the cursor is never
	// drawn at a stale position.
	if !visible && e.visible {
		e.visible = false
		e.cb.SetProperty(termini.PropCursorVisible, false)
	}
	if pos != e.cursor {
		old := e.cursor
		e.cursor = pos
		e.cb.MoveCursor(pos, old, e.visible)
	}
	if visible && !e.visible {
		e.visible = true
		e.cb.SetProperty(termini.PropCursorVisible, true)
	}

	if title := e.term.Title(); titleDirty && title != e.title {
		e.title = title
		e.cb.SetProperty(termini.PropTitle, title)
	}
	for ; bells > 0; bells-- {
		e.cb.Bell()
	}
}

// rowRects groups dirty cells into one rectangle per row, ordered by row.
func rowRects(cells []headlessterm.Position) []termini.Rect {
	if len(cells) == 0 {
		return nil
	}
	spans := make(map[int][2]int)
	for _, c := range cells {
		s, ok := spans[c.Row]
		if !ok {
			spans[c.Row] = [2]int{c.Col, c.Col + 1}
			continue
		}
		spans[c.Row] = [2]int{min(s[0], c.Col), max(s[1], c.Col+1)}
	}
	rows := make([]int, 0, len(spans))
	for row := range spans {
		rows = append(rows, row)
	}
	sort.Ints(rows)

	rects := make([]termini.Rect, 0, len(rows))
	for _, row := range rows {
		s := spans[row]
		rects = append(rects, termini.Rect{StartRow: row, StartCol: s[0], EndRow: row + 1, EndCol: s[1]})
	}
	return rects
}

// Resize changes the grid. The caller repaints everything afterwards, so
// the damage the resize produces is discarded.
func (e *Engine) Resize(rows, cols int) {
	e.term.Resize(rows, cols)
	e.term.ClearDirty()
	row, col := e.term.CursorPos()
	e.cursor = termini.Pos{Row: row, Col: col}
}

func (e *Engine) Size() (rows, cols int) {
	return e.term.Rows(), e.term.Cols()
}

func (e *Engine) Cursor() (termini.Pos, bool) {
	row, col := e.term.CursorPos()
	return termini.Pos{Row: row, Col: col}, e.term.CursorVisible()
}

// Title returns the current window title.
func (e *Engine) Title() string {
	return e.term.Title()
}

func (e *Engine) Close() error {
	return nil
}

// CellAt converts the terminal's cell at row, col.
func (e *Engine) CellAt(row, col int) termini.Cell {
	c := e.term.Cell(row, col)
	if c == nil {
		return termini.Cell{}
	}
	cell := termini.Cell{
		Char:       c.Char,
		Fg:         convertColor(c.Fg),
		Bg:         convertColor(c.Bg),
		Bold:       c.HasFlag(headlessterm.CellFlagBold),
		Reverse:    c.HasFlag(headlessterm.CellFlagReverse),
		Wide:       c.IsWide(),
		WideSpacer: c.IsWideSpacer(),
	}
	if c.HasFlag(headlessterm.CellFlagHidden) {
		cell.Char = ' '
	}
	return cell
}

func convertColor(c color.Color) termini.Color {
	switch v := c.(type) {
	case nil:
		return termini.DefaultColor
	case *headlessterm.NamedColor:
		if v.Name >= 0 && v.Name < 16 {
			return termini.StandardColor(v.Name)
		}
		return termini.DefaultColor
	case *headlessterm.IndexedColor:
		return termini.PaletteColor(v.Index)
	case color.RGBA:
		return termini.TrueColor(v.R, v.G, v.B)
	case *color.RGBA:
		return termini.TrueColor(v.R, v.G, v.B)
	default:
		r, g, b, _ := c.RGBA()
		return termini.TrueColor(uint8(r>>8), uint8(g>>8), uint8(b>>8))
	}
}

// responder forwards terminal replies to the child.
type responder struct {
	e *Engine
}

func (r responder) Write(p []byte) (int, error) {
	if r.e.out == nil {
		return len(p), nil
	}
	return r.e.out.Write(p)
}

type bellRecorder struct {
	e *Engine
}

func (b bellRecorder) Ring() {
	b.e.bells++
}

// titleRecorder only flags a change; it is called with the terminal
// locked, so it must not call back into it.
type titleRecorder struct {
	e *Engine
}

func (t *titleRecorder) SetTitle(string) { t.e.titleDirty = true }
func (t *titleRecorder) PushTitle()      {}
func (t *titleRecorder) PopTitle()       { t.e.titleDirty = true }
