package termini

// Rect is a rectangle of cells with exclusive ends.
type Rect struct {
	StartRow, StartCol int
	EndRow, EndCol     int
}

// NewRect returns the rectangle spanning the two corners, normalized so that
// starts never exceed ends.
func NewRect(startRow, startCol, endRow, endCol int) Rect {
	if startRow > endRow {
		startRow, endRow = endRow, startRow
	}
	if startCol > endCol {
		startCol, endCol = endCol, startCol
	}
	return Rect{StartRow: startRow, StartCol: startCol, EndRow: endRow, EndCol: endCol}
}

// FullRect covers a whole grid.
func FullRect(rows, cols int) Rect {
	return Rect{EndRow: rows, EndCol: cols}
}

// Empty reports whether the rectangle covers no cells.
func (r Rect) Empty() bool {
	return r.StartRow >= r.EndRow || r.StartCol >= r.EndCol
}

// Contains reports whether p lies inside the rectangle.
func (r Rect) Contains(p Pos) bool {
	return p.Row >= r.StartRow && p.Row < r.EndRow && p.Col >= r.StartCol && p.Col < r.EndCol
}

// Union returns the bounding rectangle of r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		StartRow: min(r.StartRow, o.StartRow),
		StartCol: min(r.StartCol, o.StartCol),
		EndRow:   max(r.EndRow, o.EndRow),
		EndCol:   max(r.EndCol, o.EndCol),
	}
}

// Clip limits the rectangle to a rows x cols grid.
func (r Rect) Clip(rows, cols int) Rect {
	return Rect{
		StartRow: max(r.StartRow, 0),
		StartCol: max(r.StartCol, 0),
		EndRow:   min(r.EndRow, rows),
		EndCol:   min(r.EndCol, cols),
	}
}

// CursorOverlay is what the damage tracker needs to know about the cursor
// to composite it after a repaint.
type CursorOverlay interface {
	Position() Pos
	Drawn() bool
}

// DamageTracker accumulates damaged cells between flushes and repaints their
// bounding rectangle in one surface update.
type DamageTracker struct {
	renderer *Renderer
	cursor   CursorOverlay

	rect    Rect
	pending bool

	rows, cols int
}

// NewDamageTracker creates a tracker that repaints through r.
func NewDamageTracker(r *Renderer, cursor CursorOverlay) *DamageTracker {
	rows, cols := r.grid.Size()
	return &DamageTracker{renderer: r, cursor: cursor, rows: rows, cols: cols}
}

// SetGridSize records the grid dimensions after a resize.
func (d *DamageTracker) SetGridSize(rows, cols int) {
	d.rows, d.cols = rows, cols
}

// Notify merges r into the pending damage. The first rectangle after a
// flush replaces the stored one; later ones grow it to the bounding union.
func (d *DamageTracker) Notify(r Rect) {
	if !d.pending {
		d.rect = r
		d.pending = true
		return
	}
	d.rect = d.rect.Union(r)
}

// Pending returns the accumulated rectangle and whether a flush is due.
func (d *DamageTracker) Pending() (Rect, bool) {
	return d.rect, d.pending
}

// Flush repaints every pending cell, composites the cursor if it lies in the
// damaged area, and presents the area with a single update. A damaged area
// covering the whole grid is presented with Flip instead.
func (d *DamageTracker) Flush() {
	if !d.pending {
		return
	}
	d.pending = false

	r := d.rect.Clip(d.rows, d.cols)
	if r.Empty() {
		return
	}
	for row := r.StartRow; row < r.EndRow; row++ {
		for col := r.StartCol; col < r.EndCol; col++ {
			d.renderer.RenderCell(Pos{Row: row, Col: col}, false)
		}
	}
	if d.cursor != nil && d.cursor.Drawn() {
		if pos := d.cursor.Position(); r.Contains(pos) {
			d.renderer.RenderCell(pos, true)
		}
	}

	if r == FullRect(d.rows, d.cols) {
		d.renderer.surface.Flip()
		return
	}
	d.renderer.UpdateRect(r)
}
