package termini

// Pos is a cell position in the grid, zero based.
type Pos struct {
	Row, Col int
}

// Cell represents a single character cell as reported by the engine.
// Cells are read-only to the renderer and never cached past one render.
type Cell struct {
	Char       rune // 0 for an empty cell
	Fg         Color
	Bg         Color
	Bold       bool
	Reverse    bool
	Wide       bool // first half of a double-width character
	WideSpacer bool // second half of a double-width character
}

// IsBlank reports whether the cell has no visible glyph.
func (c Cell) IsBlank() bool {
	return c.Char == 0 || c.Char == ' '
}

// Grid gives read access to the engine's cell grid.
type Grid interface {
	// CellAt returns the cell at row, col. Out of range positions return
	// the zero Cell.
	CellAt(row, col int) Cell

	// Size returns the grid dimensions.
	Size() (rows, cols int)
}

// GridSize converts a pixel area into grid dimensions, floor-dividing by the
// cell size and clamping each dimension to at least 1.
func GridSize(width, height, cellWidth, cellHeight int) (rows, cols int) {
	if cellWidth > 0 {
		cols = width / cellWidth
	}
	if cellHeight > 0 {
		rows = height / cellHeight
	}
	return max(rows, 1), max(cols, 1)
}
