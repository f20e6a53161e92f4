package vt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/phroun/termini"
)

type recorder struct {
	damage  []termini.Rect
	moves   []termini.Pos
	props   map[termini.Property][]any
	bells   int
	ordered []string
}

func newRecorder() *recorder {
	return &recorder{props: map[termini.Property][]any{}}
}

func (r *recorder) Damage(rect termini.Rect) bool {
	r.damage = append(r.damage, rect)
	r.ordered = append(r.ordered, "damage")
	return true
}

func (r *recorder) MoveCursor(pos, old termini.Pos, visible bool) bool {
	r.moves = append(r.moves, pos)
	r.ordered = append(r.ordered, "move")
	return true
}

func (r *recorder) SetProperty(prop termini.Property, value any) bool {
	r.props[prop] = append(r.props[prop], value)
	r.ordered = append(r.ordered, prop.String())
	return true
}

func (r *recorder) Bell() bool {
	r.bells++
	return true
}

func (r *recorder) Resize(rows, cols int) bool { return false }

func newTestEngine(rows, cols int) (*Engine, *recorder) {
	e := New(rows, cols)
	rec := newRecorder()
	e.SetCallbacks(rec)
	return e, rec
}

func TestWriteReportsRowDamage(t *testing.T) {
	e, rec := newTestEngine(5, 20)
	if _, err := e.Write([]byte("hello\r\n\r\nab")); err != nil {
		t.Fatal(err)
	}
	if len(rec.damage) < 2 {
		t.Fatalf("damage = %+v, want rows 0 and 2", rec.damage)
	}
	first := rec.damage[0]
	if first.StartRow != 0 || first.EndRow != 1 || first.StartCol != 0 || first.EndCol < 5 {
		t.Errorf("row 0 damage = %+v", first)
	}
	var sawRow2 bool
	for _, r := range rec.damage {
		if r.StartRow == 2 && r.EndRow == 3 {
			sawRow2 = true
		}
		if r.StartRow == 1 {
			t.Errorf("untouched row 1 damaged: %+v", r)
		}
	}
	if !sawRow2 {
		t.Errorf("row 2 damage missing: %+v", rec.damage)
	}

	// Damage is reported once.
	rec.damage = nil
	if _, err := e.Write(nil); err != nil {
		t.Fatal(err)
	}
	if len(rec.damage) != 0 {
		t.Errorf("damage repeated: %+v", rec.damage)
	}
}

func TestCursorCallbacks(t *testing.T) {
	e, rec := newTestEngine(5, 20)
	e.Write([]byte("abc"))
	if len(rec.moves) == 0 || rec.moves[len(rec.moves)-1] != (termini.Pos{Row: 0, Col: 3}) {
		t.Fatalf("moves = %+v, want last at 0,3", rec.moves)
	}

	rec.ordered = nil
	e.Write([]byte("\x1b[?25l\x1b[3;4H"))
	if got := rec.props[termini.PropCursorVisible]; len(got) != 1 || got[0] != false {
		t.Errorf("visibility = %v, want [false]", got)
	}
	if strings.Join(rec.ordered, ",") != "cursor-visible,move" {
		t.Errorf("order = %v, want hide before move", rec.ordered)
	}

	rec.ordered = nil
	e.Write([]byte("\x1b[1;1H\x1b[?25h"))
	if strings.Join(rec.ordered, ",") != "move,cursor-visible" {
		t.Errorf("order = %v, want move before show", rec.ordered)
	}
	if pos, visible := e.Cursor(); pos != (termini.Pos{}) || !visible {
		t.Errorf("Cursor = %+v %v", pos, visible)
	}
}

func TestTitleAndBell(t *testing.T) {
	e, rec := newTestEngine(5, 20)
	e.Write([]byte("\x1b]2;build\x07\x07"))
	if got := rec.props[termini.PropTitle]; len(got) != 1 || got[0] != "build" {
		t.Errorf("titles = %v, want [build]", got)
	}
	if rec.bells != 1 {
		t.Errorf("bells = %d, want 1", rec.bells)
	}
	if e.Title() != "build" {
		t.Errorf("Title = %q", e.Title())
	}
}

func TestCellConversion(t *testing.T) {
	e, _ := newTestEngine(5, 40)
	e.Write([]byte("\x1b[1;31mA\x1b[0m\x1b[7mB\x1b[0m\x1b[38;5;200mC\x1b[38;2;1;2;3mD\x1b[0mE"))

	tests := []struct {
		col  int
		want termini.Cell
	}{
		{0, termini.Cell{Char: 'A', Fg: termini.StandardColor(1), Bold: true}},
		{1, termini.Cell{Char: 'B', Reverse: true}},
		{2, termini.Cell{Char: 'C', Fg: termini.PaletteColor(200)}},
		{3, termini.Cell{Char: 'D', Fg: termini.TrueColor(1, 2, 3)}},
		{4, termini.Cell{Char: 'E'}},
	}
	for _, tt := range tests {
		got := e.CellAt(0, tt.col)
		if got != tt.want {
			t.Errorf("CellAt(0, %d) = %+v, want %+v", tt.col, got, tt.want)
		}
	}
	if got := e.CellAt(99, 99); got != (termini.Cell{}) {
		t.Errorf("out of range cell = %+v", got)
	}
}

func TestRepliesReachOutput(t *testing.T) {
	e, _ := newTestEngine(5, 20)
	var out bytes.Buffer
	e.SetOutput(&out)
	e.Write([]byte("\x1b[6n"))
	if !strings.HasSuffix(out.String(), "R") {
		t.Errorf("cursor position report = %q", out.String())
	}
}

func TestResize(t *testing.T) {
	e, rec := newTestEngine(5, 20)
	e.Resize(10, 30)
	if rows, cols := e.Size(); rows != 10 || cols != 30 {
		t.Errorf("Size = %dx%d", rows, cols)
	}
	e.Write(nil)
	if len(rec.damage) != 0 {
		t.Errorf("resize damage leaked into next write: %+v", rec.damage)
	}
}
