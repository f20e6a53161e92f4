package termini

import "fmt"

const (
	boxFirst rune = 0x2500
	boxLast  rune = 0x2524
)

func isBoxDrawing(r rune) bool {
	return r >= boxFirst && r <= boxLast
}

// drawBox draws a light box-drawing glyph from half-cell line segments.
// Segments meet at the cell center, so adjacent cells join up. Code points
// in the range without a synthesized form are logged and left blank.
func (r *Renderer) drawBox(x, y int, ch rune, c RGB) {
	cw, chh := r.cellW, r.cellH
	w := (cw + 1) / 2
	h := (chh + 1) / 2

	hline := func(hx, hy, length int) {
		length = min(length, x+cw-hx)
		if length > 0 && hy < y+chh {
			r.surface.HLine(hx, hy, length, c)
		}
	}
	vline := func(vx, vy, length int) {
		length = min(length, y+chh-vy)
		if length > 0 && vx < x+cw {
			r.surface.VLine(vx, vy, length, c)
		}
	}

	switch ch {
	case 0x2500: // ─
		hline(x, y+h, cw)
	case 0x2502: // │
		vline(x+w, y, chh)
	case 0x250c: // ┌
		hline(x+w, y+h, w)
		vline(x+w, y+h, h+1)
	case 0x2510: // ┐
		hline(x, y+h, w)
		vline(x+w, y+h, h+1)
	case 0x2514: // └
		hline(x+w, y+h, w)
		vline(x+w, y, h)
	case 0x2518: // ┘
		hline(x, y+h, w)
		vline(x+w, y, h+1)
	case 0x251c: // ├
		hline(x+w, y+h, w)
		vline(x+w, y, chh)
	case 0x2524: // ┤
		hline(x, y+h, w)
		vline(x+w, y, chh)
	default:
		r.logger.Warn("unsupported box-drawing glyph", "codepoint", fmt.Sprintf("U+%04X", ch))
	}
}
