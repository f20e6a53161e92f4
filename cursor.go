package termini

// CursorState is the drawn state of the text cursor.
type CursorState int

const (
	// CursorHidden: the engine has the cursor turned off.
	CursorHidden CursorState = iota
	// CursorVisible: the cursor is drawn at its position.
	CursorVisible
	// CursorSuppressed: the cursor is on but output is being drained; it
	// stays off screen until the drain ends.
	CursorSuppressed
)

func (s CursorState) String() string {
	switch s {
	case CursorHidden:
		return "hidden"
	case CursorVisible:
		return "visible"
	case CursorSuppressed:
		return "suppressed"
	default:
		return "unknown"
	}
}

// Cursor tracks the text cursor and draws or erases it through the renderer.
// It also tracks whether the mouse pointer has been hidden for inactivity.
type Cursor struct {
	renderer *Renderer

	pos           Pos
	visible       bool // engine visibility property
	draining      bool // between Suppress and Resume
	pointerHidden bool
}

// NewCursor returns a hidden cursor at the origin.
func NewCursor(r *Renderer) *Cursor {
	return &Cursor{renderer: r}
}

// State returns the current drawn state.
func (c *Cursor) State() CursorState {
	switch {
	case !c.visible:
		return CursorHidden
	case c.draining:
		return CursorSuppressed
	default:
		return CursorVisible
	}
}

// Position returns the cursor cell.
func (c *Cursor) Position() Pos {
	return c.pos
}

// Drawn reports whether the cursor is currently on screen.
func (c *Cursor) Drawn() bool {
	return c.State() == CursorVisible
}

// Visible reports the engine visibility property.
func (c *Cursor) Visible() bool {
	return c.visible
}

// Focused reports the focus state.
func (c *Cursor) Focused() bool {
	return c.renderer.Focused()
}

// PointerHidden reports whether the mouse pointer is hidden.
func (c *Cursor) PointerHidden() bool {
	return c.pointerHidden
}

func (c *Cursor) draw() {
	c.renderer.RenderCell(c.pos, true)
	c.renderer.UpdateCell(c.pos)
}

func (c *Cursor) erase() {
	c.renderer.RestoreCell(c.pos)
}

// MoveTo moves the cursor. When drawn, the old cell is restored and the new
// one painted in the cursor style.
func (c *Cursor) MoveTo(pos Pos) {
	if pos == c.pos {
		return
	}
	if c.State() == CursorVisible {
		c.erase()
		c.pos = pos
		c.draw()
		return
	}
	c.pos = pos
}

// Sync sets position and visibility without drawing, for use after the
// surface has been cleared. The next full flush draws the cursor.
func (c *Cursor) Sync(pos Pos, visible bool) {
	c.pos = pos
	c.visible = visible
}

// SetVisible applies the engine's cursor visibility property.
func (c *Cursor) SetVisible(visible bool) {
	if visible == c.visible {
		return
	}
	c.visible = visible
	if c.draining {
		return
	}
	if visible {
		c.draw()
	} else {
		c.erase()
	}
}

// Suppress takes the cursor off screen while output is drained. A hidden
// cursor stays hidden; showing it before Resume is deferred.
func (c *Cursor) Suppress() {
	if c.draining {
		return
	}
	if c.State() == CursorVisible {
		c.erase()
	}
	c.draining = true
}

// Resume ends a drain, redrawing the cursor if the engine has it on.
func (c *Cursor) Resume() {
	if !c.draining {
		return
	}
	c.draining = false
	if c.visible {
		c.draw()
	}
}

// SetFocused switches between the filled and the outline cursor style.
func (c *Cursor) SetFocused(focused bool) {
	if focused == c.renderer.Focused() {
		return
	}
	c.renderer.SetFocused(focused)
	if c.State() == CursorVisible {
		c.draw()
	}
}

// PointerMoved records pointer motion. It returns true when the pointer was
// hidden and must be shown again.
func (c *Cursor) PointerMoved() bool {
	if !c.pointerHidden {
		return false
	}
	c.pointerHidden = false
	return true
}

// PointerIdle records that the idle timer expired. It returns true when the
// pointer should be hidden now.
func (c *Cursor) PointerIdle() bool {
	if c.pointerHidden {
		return false
	}
	c.pointerHidden = true
	return true
}
