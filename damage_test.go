package termini

import "testing"

// stubCursor is a fixed cursor overlay.
type stubCursor struct {
	pos   Pos
	drawn bool
}

func (c stubCursor) Position() Pos { return c.pos }
func (c stubCursor) Drawn() bool   { return c.drawn }

func newTestTracker(cols, rows int, cursor CursorOverlay) (*DamageTracker, *recSurface) {
	r, s, _ := newTestRenderer(cols, rows)
	return NewDamageTracker(r, cursor), s
}

func TestNotifyMergeOrderIndependent(t *testing.T) {
	rects := []Rect{
		NewRect(2, 3, 4, 9),
		NewRect(0, 5, 1, 6),
		NewRect(7, 1, 9, 2),
		NewRect(3, 3, 3, 3),
	}
	perms := [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {1, 3, 0, 2}, {2, 0, 3, 1}}
	want := Rect{StartRow: 0, StartCol: 1, EndRow: 9, EndCol: 9}
	for _, perm := range perms {
		d, _ := newTestTracker(10, 10, nil)
		for _, i := range perm {
			d.Notify(rects[i])
		}
		got, pending := d.Pending()
		if !pending || got != want {
			t.Errorf("order %v: got %+v pending=%v, want %+v", perm, got, pending, want)
		}
	}
}

func TestNotifyAfterFlushReplaces(t *testing.T) {
	d, _ := newTestTracker(10, 10, nil)
	d.Notify(NewRect(0, 0, 5, 5))
	d.Flush()
	d.Notify(NewRect(8, 8, 9, 9))
	if got, _ := d.Pending(); got != NewRect(8, 8, 9, 9) {
		t.Errorf("pending = %+v, want the new rect only", got)
	}
}

func TestFlushFullGridFlips(t *testing.T) {
	d, s := newTestTracker(6, 3, nil)
	d.Notify(NewRect(0, 0, 1, 1))
	d.Notify(FullRect(3, 6))
	d.Flush()
	if s.flips != 1 || len(s.updates) != 0 {
		t.Errorf("flips = %d updates = %v, want 1 flip and no updates", s.flips, s.updates)
	}
	if len(s.fills) != 18 {
		t.Errorf("rendered %d cells, want 18", len(s.fills))
	}
}

func TestFlushPartialUpdate(t *testing.T) {
	d, s := newTestTracker(10, 5, nil)
	d.Notify(NewRect(1, 2, 2, 4))
	d.Notify(NewRect(3, 5, 4, 6))
	d.Flush()
	if s.flips != 0 || len(s.updates) != 1 {
		t.Fatalf("flips = %d updates = %v, want one update", s.flips, s.updates)
	}
	if want := [4]int{16, 16, 32, 48}; s.updates[0] != want {
		t.Errorf("update = %v, want %v", s.updates[0], want)
	}
	// rows 1..3, cols 2..5
	if len(s.fills) != 12 {
		t.Errorf("rendered %d cells, want 12", len(s.fills))
	}
	if s.ops[len(s.ops)-1] != "update" {
		t.Errorf("last op = %s, want update after drawing", s.ops[len(s.ops)-1])
	}
}

func TestFlushWithoutDamageIsNoop(t *testing.T) {
	d, s := newTestTracker(4, 4, nil)
	d.Flush()
	d.Notify(NewRect(0, 0, 1, 1))
	d.Flush()
	s.reset()
	d.Flush()
	if len(s.ops) != 0 {
		t.Errorf("ops = %v, want none", s.ops)
	}
}

func TestFlushOverlaysCursor(t *testing.T) {
	tests := []struct {
		name    string
		cursor  stubCursor
		strokes int
	}{
		{"inside and drawn", stubCursor{Pos{1, 1}, true}, 1},
		{"inside not drawn", stubCursor{Pos{1, 1}, false}, 0},
		{"outside", stubCursor{Pos{3, 3}, true}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, s := newTestTracker(4, 4, tt.cursor)
			d.Notify(NewRect(0, 0, 2, 2))
			d.Flush()
			// The renderer is unfocused, so a drawn cursor is an outline.
			if len(s.strokes) != tt.strokes {
				t.Errorf("strokes = %d, want %d", len(s.strokes), tt.strokes)
			}
		})
	}
}

func TestFlushClipsToGrid(t *testing.T) {
	d, s := newTestTracker(4, 4, nil)
	d.Notify(NewRect(2, 2, 10, 10))
	d.SetGridSize(3, 3)
	d.Flush()
	if len(s.fills) != 1 || len(s.updates) != 1 || s.updates[0] != [4]int{16, 32, 8, 16} {
		t.Errorf("fills %d updates %v", len(s.fills), s.updates)
	}
}

func TestRect(t *testing.T) {
	r := NewRect(5, 6, 1, 2)
	if r != (Rect{StartRow: 1, StartCol: 2, EndRow: 5, EndCol: 6}) {
		t.Errorf("NewRect did not normalize: %+v", r)
	}
	if !r.Contains(Pos{1, 2}) || r.Contains(Pos{5, 6}) {
		t.Errorf("Contains bounds wrong for %+v", r)
	}
	if !NewRect(1, 1, 1, 4).Empty() {
		t.Errorf("zero-height rect not empty")
	}
}
