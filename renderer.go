package termini

import (
	"io"

	"github.com/charmbracelet/log"
)

// Renderer draws grid cells onto a Surface.
type Renderer struct {
	surface Surface
	grid    Grid
	palette *Palette
	logger  *log.Logger

	cellW, cellH int
	focused      bool
	boldIsBright bool
}

// NewRenderer creates a renderer drawing grid onto surface with the given
// palette. A nil logger discards output.
func NewRenderer(surface Surface, grid Grid, palette *Palette, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	cw, ch := surface.CellSize()
	return &Renderer{
		surface:      surface,
		grid:         grid,
		palette:      palette,
		logger:       logger,
		cellW:        max(cw, 1),
		cellH:        max(ch, 1),
		boldIsBright: true,
	}
}

// SetFocused sets whether the window has keyboard focus. It selects the
// cursor style but does not repaint.
func (r *Renderer) SetFocused(focused bool) {
	r.focused = focused
}

// Focused reports the focus state used for the cursor style.
func (r *Renderer) Focused() bool {
	return r.focused
}

// SetBoldIsBright selects whether bold text in colors 0-7 uses the bright
// variants 8-15.
func (r *Renderer) SetBoldIsBright(on bool) {
	r.boldIsBright = on
}

// Palette returns the renderer's color table.
func (r *Renderer) Palette() *Palette {
	return r.palette
}

// CellRect returns the pixel rectangle of the cell at pos.
func (r *Renderer) CellRect(pos Pos) (x, y, w, h int) {
	return pos.Col * r.cellW, pos.Row * r.cellH, r.cellW, r.cellH
}

// UpdateRect presents the pixels covered by a cell rectangle.
func (r *Renderer) UpdateRect(rect Rect) {
	r.surface.Update(rect.StartCol*r.cellW, rect.StartRow*r.cellH,
		(rect.EndCol-rect.StartCol)*r.cellW, (rect.EndRow-rect.StartRow)*r.cellH)
}

// UpdateCell presents a single cell.
func (r *Renderer) UpdateCell(pos Pos) {
	r.surface.Update(r.CellRect(pos))
}

// RestoreCell repaints the cell at pos in its normal style and presents it.
// On the right half of a wide character the whole character is repainted.
func (r *Renderer) RestoreCell(pos Pos) {
	if r.spacerOwner(pos) {
		owner := Pos{Row: pos.Row, Col: pos.Col - 1}
		r.RenderCell(owner, false)
		r.UpdateRect(Rect{StartRow: pos.Row, StartCol: owner.Col, EndRow: pos.Row + 1, EndCol: pos.Col + 1})
		return
	}
	r.RenderCell(pos, false)
	r.UpdateCell(pos)
}

// spacerOwner reports whether pos is a spacer whose wide cell is to its left.
func (r *Renderer) spacerOwner(pos Pos) bool {
	if pos.Col == 0 || !r.grid.CellAt(pos.Row, pos.Col).WideSpacer {
		return false
	}
	return r.grid.CellAt(pos.Row, pos.Col-1).Wide
}

// RenderCell draws the cell at pos. With isCursor set the cell is drawn in
// the cursor style: inverted colors when focused, a hollow outline in the
// foreground color otherwise. RenderCell does not present the result.
func (r *Renderer) RenderCell(pos Pos, isCursor bool) {
	cell := r.grid.CellAt(pos.Row, pos.Col)
	x, y, w, h := r.CellRect(pos)

	fg := r.palette.Resolve(cell.Fg, true)
	bg := r.palette.Resolve(cell.Bg, false)
	if cell.Bold && r.boldIsBright && cell.Fg.Type == ColorTypeStandard && cell.Fg.Index < 8 {
		fg = r.palette.At(int(cell.Fg.Index) + 8)
	}
	if cell.Reverse {
		fg, bg = bg, fg
	}
	if isCursor && r.focused {
		fg, bg = bg, fg
	}

	switch {
	case cell.WideSpacer && !isCursor && r.spacerOwner(pos):
		// Painted by the wide cell to its left.
		return
	case cell.WideSpacer:
		r.surface.FillRect(x, y, w, h, bg)
	default:
		fillW := w
		if cell.Wide {
			fillW = 2 * w
		}
		r.surface.FillRect(x, y, fillW, h, bg)
		if isBoxDrawing(cell.Char) {
			r.drawBox(x, y, cell.Char, fg)
		} else if !cell.IsBlank() {
			face := FaceRegular
			if cell.Bold {
				face = FaceBold
			}
			r.surface.DrawGlyph(x, y, cell.Char, face, fg, bg)
		}
	}

	if isCursor && !r.focused {
		r.surface.StrokeRect(x, y, w, h, fg)
	}
}
