package termini

// Face selects the font face for a glyph.
type Face int

const (
	FaceRegular Face = iota
	FaceBold
)

// Surface is a pixel drawing target with a fixed-size monospace font.
// Coordinates are in pixels with the origin at the top left.
type Surface interface {
	// Size returns the drawable area in pixels.
	Size() (width, height int)

	// CellSize returns the pixel size of one character cell.
	CellSize() (width, height int)

	FillRect(x, y, w, h int, c RGB)
	StrokeRect(x, y, w, h int, c RGB)
	HLine(x, y, length int, c RGB)
	VLine(x, y, length int, c RGB)

	// DrawGlyph draws r in the cell whose top-left corner is x, y.
	DrawGlyph(x, y int, r rune, face Face, fg, bg RGB)

	// Clear fills the whole surface with c.
	Clear(c RGB)

	// Update presents the given pixel area.
	Update(x, y, w, h int)

	// Flip presents the whole surface.
	Flip()
}
