package termini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/xpty"
	"github.com/google/uuid"
)

// readChunk is the size of one read from the pty.
const readChunk = 1024

// wouldBlockBackoff is how long the reader waits after a read that returned
// no data.
const wouldBlockBackoff = 10 * time.Millisecond

// exitQuiet is how long Run keeps reading after the child exits. A pty that
// holds the slave side open never reports EOF, so output still buffered in
// the kernel is drained until the master stays quiet this long.
const exitQuiet = 50 * time.Millisecond

// Options configures a Session.
type Options struct {
	// Depth is the display depth. Zero means Depth24.
	Depth Depth

	// Reverse selects light-on-dark default colors.
	Reverse bool

	// Term is "xterm", "vt220" or "xterm-r5". Empty or "auto" picks by depth.
	Term string

	// BoldIsBright draws bold text in colors 0-7 with colors 8-15.
	BoldIsBright bool

	// PointerIdle hides the mouse pointer after this long without motion.
	// Zero disables hiding.
	PointerIdle time.Duration

	// PasteButton is the pointer button that pastes. Zero means the middle
	// button.
	PasteButton int

	// Bell is called when the child rings the bell. Nil logs at debug level.
	Bell func()

	// PTY is used instead of opening a new pseudo-terminal in Start.
	PTY PTY

	Logger *log.Logger
}

// Session connects one engine, one backend and one child process. All of
// its state is owned by the goroutine running Run.
type Session struct {
	id      string
	opts    Options
	logger  *log.Logger
	backend Backend
	surface Surface
	engine  Engine
	pty     PTY

	palette    *Palette
	renderer   *Renderer
	cursor     *Cursor
	damage     *DamageTracker
	translator *Translator
	caps       *TerminalCapabilities

	rows, cols int

	cmd  *exec.Cmd
	done chan struct{}
}

// NewSession wires an engine to a backend. The engine is resized to fit the
// backend's surface.
func NewSession(backend Backend, engine Engine, opts Options) (*Session, error) {
	if opts.Depth == 0 {
		opts.Depth = Depth24
	}
	mode := ModeForDepth(opts.Depth)
	if opts.Term != "" && opts.Term != "auto" {
		m, err := ParseMode(opts.Term)
		if err != nil {
			return nil, err
		}
		mode = m
	}
	if opts.PasteButton == 0 {
		opts.PasteButton = DefaultPasteButton
	}

	id := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.With("session", id[:8])

	s := &Session{
		id:      id,
		opts:    opts,
		logger:  logger,
		backend: backend,
		surface: backend.Surface(),
		engine:  engine,
		pty:     opts.PTY,
		done:    make(chan struct{}),
	}

	cw, ch := s.surface.CellSize()
	w, h := s.surface.Size()
	s.rows, s.cols = GridSize(w, h, cw, ch)
	engine.Resize(s.rows, s.cols)

	s.palette = BuildPalette(opts.Depth, DefaultIndices(opts.Reverse), opts.Reverse)
	s.renderer = NewRenderer(s.surface, engine, s.palette, logger)
	s.renderer.SetBoldIsBright(opts.BoldIsBright)
	s.cursor = NewCursor(s.renderer)
	s.damage = NewDamageTracker(s.renderer, s.cursor)
	s.damage.SetGridSize(s.rows, s.cols)
	s.translator = NewTranslator(mode)
	s.translator.SetPasteButton(opts.PasteButton)

	s.caps = NewTerminalCapabilities(mode, opts.Depth)
	s.caps.SessionID = id
	s.caps.SetSize(s.cols, s.rows)

	engine.SetCallbacks(callbacks{s})
	engine.SetOutput(replyWriter{s})
	return s, nil
}

// ID returns the session identifier exported to the child.
func (s *Session) ID() string { return s.id }

// Size returns the grid dimensions.
func (s *Session) Size() (rows, cols int) { return s.rows, s.cols }

// Cursor returns the cursor state machine.
func (s *Session) Cursor() *Cursor { return s.cursor }

// Mode returns the compatibility mode.
func (s *Session) Mode() Mode { return s.translator.Mode() }

// Start runs cmd on the session's pty, opening one if none was supplied.
// The child's environment gets TERM and TERMINI_SESSION.
func (s *Session) Start(cmd *exec.Cmd) error {
	if s.pty == nil {
		p, err := NewPTY(s.cols, s.rows)
		if err != nil {
			return err
		}
		s.pty = p
	}
	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}
	cmd.Env = append(cmd.Env, s.caps.Env()...)

	if err := s.pty.Start(cmd); err != nil {
		return err
	}
	// Some platforms only honor the size once the child is running.
	if err := s.pty.Resize(s.cols, s.rows); err != nil {
		s.logger.Debug("pty resize after start", "err", err)
	}
	s.cmd = cmd
	if cmd.Process != nil {
		go func() {
			defer close(s.done)
			_ = xpty.WaitProcess(context.Background(), cmd)
		}()
	}

	if cmd.Process != nil {
		if name := processName(cmd.Process.Pid); name != "" {
			s.backend.SetTitle(name)
		}
	}
	s.logger.Info("child started", "cmd", cmd.Path, "term", s.caps.Mode.TermType(), "cols", s.cols, "rows", s.rows)
	return nil
}

// Run is the event loop. It returns ErrChildExited when the child exits or
// closes the pty, nil when the backend quits, ctx.Err() on cancellation, and the read
// error for any other pty failure. The pty and engine are closed on return.
func (s *Session) Run(ctx context.Context) error {
	if s.pty == nil {
		return errors.New("session has no pty")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.teardown()

	s.Repaint()

	chunks := make(chan []byte)
	readErr := make(chan error, 1)
	go s.readLoop(ctx, chunks, readErr)

	var idle <-chan time.Time
	var idleTimer *time.Timer
	if s.opts.PointerIdle > 0 {
		idleTimer = time.NewTimer(s.opts.PointerIdle)
		defer idleTimer.Stop()
		idle = idleTimer.C
	}

	events := s.backend.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case chunk := <-chunks:
			s.Feed(chunk)

		case err := <-readErr:
			return s.readFailed(err)

		case <-s.done:
			s.logger.Debug("child exited", "pid", s.cmd.Process.Pid)
			if err := s.drainAfterExit(ctx, chunks, readErr); err != nil {
				return err
			}
			return ErrChildExited

		case ev, ok := <-events:
			if !ok || ev.Type == EventQuit {
				return nil
			}
			if ev.Type == EventPointerMotion && idleTimer != nil {
				idleTimer.Reset(s.opts.PointerIdle)
			}
			s.handleEvent(ev)

		case <-idle:
			s.damage.Flush()
			if s.cursor.PointerIdle() {
				s.backend.SetPointerVisible(false)
			}
		}
	}
}

func (s *Session) readFailed(err error) error {
	if errors.Is(err, io.EOF) || isChildGone(err) {
		s.logger.Debug("pty closed", "err", err)
		return ErrChildExited
	}
	s.logger.Error("pty read failed", "err", err)
	return fmt.Errorf("read pty: %w", err)
}

// drainAfterExit feeds what the child wrote before exiting. It returns once
// the pty is quiet for exitQuiet or the read side fails, whichever is first.
// A failed read is only reported when it is not the usual end of the child.
func (s *Session) drainAfterExit(ctx context.Context, chunks <-chan []byte, readErr <-chan error) error {
	quiet := time.NewTimer(exitQuiet)
	defer quiet.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk := <-chunks:
			s.Feed(chunk)
			quiet.Reset(exitQuiet)
		case err := <-readErr:
			if err := s.readFailed(err); !errors.Is(err, ErrChildExited) {
				return err
			}
			return nil
		case <-quiet.C:
			return nil
		}
	}
}

func (s *Session) readLoop(ctx context.Context, chunks chan<- []byte, errs chan<- error) {
	buf := make([]byte, readChunk)
	for {
		n, err := s.pty.Read(buf)
		if err != nil && IsWouldBlock(err) {
			n, err = 0, nil
			time.Sleep(wouldBlockBackoff)
		}
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case chunks <- data:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			errs <- err
			return
		}
	}
}

// Feed passes one chunk of child output to the engine and repaints
// everything it damaged. The cursor is kept off screen meanwhile. Run calls
// it for every pty read; it may also be used directly when output comes from
// elsewhere, as long as Run is not active.
func (s *Session) Feed(chunk []byte) {
	s.cursor.Suppress()
	if _, err := s.engine.Write(chunk); err != nil {
		s.logger.Warn("engine rejected output", "err", err)
	}
	s.damage.Flush()
	s.cursor.Resume()
}

func (s *Session) handleEvent(ev Event) {
	switch ev.Type {
	case EventKey, EventText:
		s.send(s.translator.Translate(ev))
	case EventButton:
		if s.translator.Button(ev.Button) {
			s.backend.RequestPaste()
		}
	case EventPaste:
		s.send(s.translator.Paste(ev.Paste))
	case EventPointerMotion:
		if s.cursor.PointerMoved() {
			s.backend.SetPointerVisible(true)
		}
	case EventResize:
		s.resize(ev.Width, ev.Height)
	case EventFocus:
		s.cursor.SetFocused(ev.Focused)
	}
}

func (s *Session) send(b []byte) {
	if len(b) == 0 || s.pty == nil {
		return
	}
	if _, err := s.pty.Write(b); err != nil {
		s.logger.Warn("pty write failed", "err", err)
	}
}

// resize fits the grid to a new surface size and repaints everything.
func (s *Session) resize(width, height int) {
	cw, ch := s.surface.CellSize()
	s.rows, s.cols = GridSize(width, height, cw, ch)
	s.engine.Resize(s.rows, s.cols)
	if s.pty != nil {
		if err := s.pty.Resize(s.cols, s.rows); err != nil {
			s.logger.Warn("pty resize failed", "err", err)
		}
	}
	s.caps.SetSize(s.cols, s.rows)
	s.damage.SetGridSize(s.rows, s.cols)
	s.logger.Debug("resized", "cols", s.cols, "rows", s.rows)
	s.Repaint()
}

// Repaint clears the surface and redraws the whole grid with the cursor.
func (s *Session) Repaint() {
	s.surface.Clear(s.palette.Background())
	pos, visible := s.engine.Cursor()
	s.cursor.Sync(pos, visible)
	s.damage.Notify(FullRect(s.rows, s.cols))
	s.damage.Flush()
}

func (s *Session) teardown() {
	if err := s.pty.Close(); err != nil {
		s.logger.Debug("close pty", "err", err)
	}
	if err := s.engine.Close(); err != nil {
		s.logger.Debug("close engine", "err", err)
	}
	if s.cmd != nil && s.cmd.Process != nil {
		select {
		case <-s.done:
		default:
			_ = s.cmd.Process.Kill()
		}
	}
}

// callbacks receives engine notifications on behalf of a Session.
type callbacks struct {
	s *Session
}

func (c callbacks) Damage(r Rect) bool {
	c.s.damage.Notify(r)
	return true
}

func (c callbacks) MoveCursor(pos, old Pos, visible bool) bool {
	c.s.cursor.MoveTo(pos)
	return true
}

func (c callbacks) SetProperty(prop Property, value any) bool {
	switch prop {
	case PropTitle:
		if title, ok := value.(string); ok {
			c.s.backend.SetTitle(title)
			return true
		}
	case PropCursorVisible:
		if visible, ok := value.(bool); ok {
			c.s.cursor.SetVisible(visible)
			return true
		}
	}
	c.s.logger.Debug("unhandled property", "prop", prop, "value", value)
	return false
}

func (c callbacks) Bell() bool {
	if c.s.opts.Bell != nil {
		c.s.opts.Bell()
		return true
	}
	c.s.logger.Debug("bell")
	return true
}

func (c callbacks) Resize(rows, cols int) bool {
	c.s.logger.Debug("engine resize ignored", "rows", rows, "cols", cols)
	return false
}

// replyWriter routes engine replies to the child.
type replyWriter struct {
	s *Session
}

func (w replyWriter) Write(p []byte) (int, error) {
	if w.s.pty == nil {
		return len(p), nil
	}
	return w.s.pty.Write(p)
}
