package termini

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestSession(t *testing.T, cols, rows int) (*Session, *fakeBackend, *fakeEngine, *fakePTY) {
	t.Helper()
	b := newFakeBackend(cols, rows)
	e := newFakeEngine(1, 1)
	p := newFakePTY()
	s, err := NewSession(b, e, Options{PTY: p, BoldIsBright: true})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s, b, e, p
}

func TestNewSessionFitsGrid(t *testing.T) {
	s, _, e, _ := newTestSession(t, 12, 7)
	if rows, cols := s.Size(); rows != 7 || cols != 12 {
		t.Errorf("Size = %dx%d, want 7x12", rows, cols)
	}
	if e.rows != 7 || e.cols != 12 {
		t.Errorf("engine = %dx%d, want 7x12", e.rows, e.cols)
	}
	if e.cb == nil || e.out == nil {
		t.Errorf("engine callbacks or output not registered")
	}
	if s.Mode() != ModeXterm {
		t.Errorf("mode = %s, want xterm at 24 bpp", s.Mode())
	}
}

func TestNewSessionRejectsUnknownTerm(t *testing.T) {
	_, err := NewSession(newFakeBackend(4, 4), newFakeEngine(1, 1), Options{Term: "vt52"})
	if err == nil {
		t.Errorf("NewSession accepted an unknown terminal type")
	}
}

func TestOutputFlushesOnceForDisjointRows(t *testing.T) {
	s, b, e, _ := newTestSession(t, 10, 6)
	e.onWrite = func(e *fakeEngine, p []byte) {
		e.cells[Pos{1, 2}] = Cell{Char: 'x'}
		e.cells[Pos{4, 7}] = Cell{Char: 'y'}
		e.cb.Damage(NewRect(1, 2, 2, 3))
		e.cb.Damage(NewRect(4, 7, 5, 8))
	}
	b.surface.reset()

	s.Feed([]byte("data"))

	if b.surface.flips != 0 || len(b.surface.updates) != 1 {
		t.Fatalf("flips %d updates %v, want one update", b.surface.flips, b.surface.updates)
	}
	// rows 1..4, cols 2..7
	if want := [4]int{16, 16, 48, 64}; b.surface.updates[0] != want {
		t.Errorf("update = %v, want %v", b.surface.updates[0], want)
	}
	if e.written.String() != "data" {
		t.Errorf("engine got %q", e.written.String())
	}
}

func TestOutputKeepsCursorOffScreenWhileDraining(t *testing.T) {
	s, b, e, _ := newTestSession(t, 10, 6)
	s.cursor.SetVisible(true)
	var during CursorState
	e.onWrite = func(e *fakeEngine, p []byte) {
		during = s.cursor.State()
		e.cursor = Pos{2, 2}
		e.cb.MoveCursor(Pos{2, 2}, Pos{}, true)
	}
	b.surface.reset()

	s.Feed([]byte("x"))

	if during != CursorSuppressed {
		t.Errorf("cursor state during write = %s, want suppressed", during)
	}
	if s.cursor.State() != CursorVisible || s.cursor.Position() != (Pos{2, 2}) {
		t.Errorf("after drain: %s at %+v", s.cursor.State(), s.cursor.Position())
	}
	// erase at old position, then redraw at the new one
	if len(b.surface.updates) != 2 {
		t.Errorf("updates = %v, want erase and redraw", b.surface.updates)
	}
}

func TestRepaintPresentsOnce(t *testing.T) {
	s, b, e, _ := newTestSession(t, 6, 3)
	e.cursor = Pos{1, 2}
	b.surface.reset()

	s.Repaint()

	if b.surface.clears != 1 || b.surface.flips != 1 {
		t.Errorf("clears %d flips %d, want 1 and 1", b.surface.clears, b.surface.flips)
	}
	for i, op := range b.surface.ops {
		if op == "update" {
			t.Fatalf("update at op %d before the full flush: %v", i, b.surface.ops)
		}
	}
	if s.cursor.State() != CursorVisible || s.cursor.Position() != (Pos{1, 2}) {
		t.Errorf("cursor %s at %+v", s.cursor.State(), s.cursor.Position())
	}
}

func TestSessionProperties(t *testing.T) {
	s, b, e, _ := newTestSession(t, 4, 4)
	s.cursor.SetVisible(true)

	if !e.cb.SetProperty(PropTitle, "vim") || len(b.titles) != 1 || b.titles[0] != "vim" {
		t.Errorf("title not forwarded: %v", b.titles)
	}
	if !e.cb.SetProperty(PropCursorVisible, false) || s.cursor.State() != CursorHidden {
		t.Errorf("cursor visibility not applied: %s", s.cursor.State())
	}
	if e.cb.SetProperty(PropAltScreen, true) {
		t.Errorf("unhandled property reported handled")
	}
	if e.cb.Resize(10, 10) {
		t.Errorf("engine resize reported handled")
	}
}

func TestSessionBell(t *testing.T) {
	rang := 0
	b := newFakeBackend(4, 4)
	e := newFakeEngine(1, 1)
	if _, err := NewSession(b, e, Options{PTY: newFakePTY(), Bell: func() { rang++ }}); err != nil {
		t.Fatal(err)
	}
	e.cb.Bell()
	if rang != 1 {
		t.Errorf("bell rang %d times", rang)
	}
}

func TestSessionInputEvents(t *testing.T) {
	s, b, _, p := newTestSession(t, 4, 4)

	s.handleEvent(Event{Type: EventKey, Key: KeyEvent{Key: KeyUp}})
	s.handleEvent(Event{Type: EventKey, Key: KeyEvent{Key: KeyUp, Released: true}})
	s.handleEvent(Event{Type: EventText, Text: TextEvent{Text: "hi"}})
	s.handleEvent(Event{Type: EventButton, Button: ButtonEvent{Button: 2}})
	s.handleEvent(Event{Type: EventPaste, Paste: "\x1b[Apasted"})

	if got, want := p.output(), "\x1bOAhi\x1b[Apasted"; got != want {
		t.Errorf("pty got %q, want %q", got, want)
	}
	if b.pastes != 1 {
		t.Errorf("paste requests = %d, want 1", b.pastes)
	}
}

func TestSessionFocusAndPointer(t *testing.T) {
	s, b, _, _ := newTestSession(t, 4, 4)
	s.handleEvent(Event{Type: EventFocus, Focused: true})
	if !s.cursor.Focused() {
		t.Errorf("focus not applied")
	}
	s.cursor.PointerIdle()
	s.handleEvent(Event{Type: EventPointerMotion})
	if len(b.pointer) != 1 || !b.pointer[0] {
		t.Errorf("pointer calls = %v, want [true]", b.pointer)
	}
}

func TestSessionResize(t *testing.T) {
	s, b, e, p := newTestSession(t, 10, 5)
	b.surface.w, b.surface.h = 43, 37
	b.surface.reset()

	s.handleEvent(Event{Type: EventResize, Width: 43, Height: 37})

	if rows, cols := s.Size(); rows != 2 || cols != 5 {
		t.Errorf("Size = %dx%d, want 2x5", rows, cols)
	}
	if last := e.resizes[len(e.resizes)-1]; last != [2]int{2, 5} {
		t.Errorf("engine resize = %v", last)
	}
	if last := p.sizes[len(p.sizes)-1]; last != [2]int{5, 2} {
		t.Errorf("pty resize = %v, want cols 5 rows 2", last)
	}
	if b.surface.clears != 1 || b.surface.flips != 1 {
		t.Errorf("clears %d flips %d, want 1 and 1", b.surface.clears, b.surface.flips)
	}

	s.handleEvent(Event{Type: EventResize, Width: 2, Height: 2})
	if rows, cols := s.Size(); rows != 1 || cols != 1 {
		t.Errorf("tiny resize = %dx%d, want 1x1", rows, cols)
	}
}

func TestSessionReplies(t *testing.T) {
	_, _, e, p := newTestSession(t, 4, 4)
	if _, err := e.out.Write([]byte("\x1b[1;1R")); err != nil {
		t.Fatal(err)
	}
	if p.output() != "\x1b[1;1R" {
		t.Errorf("reply not routed to pty: %q", p.output())
	}
}

func TestRunEndsWhenChildExits(t *testing.T) {
	s, _, e, p := newTestSession(t, 4, 4)
	p.reads <- []byte("hello")
	close(p.reads)

	err := runWithTimeout(t, s, context.Background())
	if !errors.Is(err, ErrChildExited) {
		t.Fatalf("Run = %v, want ErrChildExited", err)
	}
	if e.written.String() != "hello" {
		t.Errorf("engine got %q", e.written.String())
	}
	if !e.closed {
		t.Errorf("engine not closed on teardown")
	}
}

func TestRunEndsOnQuit(t *testing.T) {
	s, b, _, p := newTestSession(t, 4, 4)
	b.events <- Event{Type: EventText, Text: TextEvent{Text: "q"}}
	b.events <- Event{Type: EventQuit}

	if err := runWithTimeout(t, s, context.Background()); err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}
	if p.output() != "q" {
		t.Errorf("pty got %q", p.output())
	}
}

func TestRunHonorsContext(t *testing.T) {
	s, _, _, _ := newTestSession(t, 4, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := runWithTimeout(t, s, ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestRunHidesIdlePointer(t *testing.T) {
	b := newFakeBackend(4, 4)
	p := newFakePTY()
	s, err := NewSession(b, newFakeEngine(1, 1), Options{PTY: p, PointerIdle: 5 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = runWithTimeout(t, s, ctx)
	if len(b.pointer) == 0 || b.pointer[0] {
		t.Errorf("pointer calls = %v, want a hide", b.pointer)
	}
}

func runWithTimeout(t *testing.T, s *Session, ctx context.Context) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}
