package terminigtk

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/phroun/termini"
	"github.com/phroun/termini/vt"
)

// Options configures terminal creation
type Options struct {
	Cols       int    // Terminal width in columns (default: 80)
	Rows       int    // Terminal height in rows (default: 24)
	FontFamily string // Font family (default: "Monospace")
	FontSize   int    // Font size in points (default: 12)
	Shell      string // Shell to run (default: $SHELL or /bin/sh)
	WorkingDir string // Initial working directory (default: current dir)

	// Session options. A zero Depth uses the screen's depth.
	Session termini.Options

	Logger *log.Logger
}

// Terminal is a complete terminal emulator widget
type Terminal struct {
	mu sync.Mutex

	widget  *Widget
	session *termini.Session
	options Options

	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
	onExit  func(error)
}

// New creates a new terminal emulator. It must be called on the GTK main
// loop.
func New(opts Options) (*Terminal, error) {
	if opts.Cols <= 0 {
		opts.Cols = 80
	}
	if opts.Rows <= 0 {
		opts.Rows = 24
	}
	if opts.FontFamily == "" {
		opts.FontFamily = "Monospace"
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 12
	}
	if opts.Shell == "" {
		opts.Shell = os.Getenv("SHELL")
		if opts.Shell == "" {
			opts.Shell = "/bin/sh"
		}
	}
	if opts.WorkingDir == "" {
		opts.WorkingDir, _ = os.Getwd()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Session.Depth == 0 {
		opts.Session.Depth = ScreenDepth()
	}
	if opts.Session.Logger == nil {
		opts.Session.Logger = opts.Logger
	}

	widget, err := NewWidget(opts.Cols, opts.Rows, opts.FontFamily, opts.FontSize, opts.Logger)
	if err != nil {
		return nil, err
	}
	session, err := termini.NewSession(widget, vt.New(opts.Rows, opts.Cols), opts.Session)
	if err != nil {
		return nil, err
	}

	return &Terminal{
		widget:  widget,
		session: session,
		options: opts,
		done:    make(chan struct{}),
	}, nil
}

// Widget returns the GTK drawing area showing the terminal
func (t *Terminal) Widget() *gtk.DrawingArea {
	return t.widget.DrawingArea()
}

// PreferredSize returns the pixel size of the configured grid, for use as a
// window's default size.
func (t *Terminal) PreferredSize() (int, int) {
	return t.widget.PixelSize(t.options.Cols, t.options.Rows)
}

// Session returns the session driving the widget.
func (t *Terminal) Session() *termini.Session {
	return t.session
}

// SetTitleHandler sets the function called with window title changes.
func (t *Terminal) SetTitleHandler(fn func(string)) {
	t.widget.SetTitleHandler(fn)
}

// SetExitHandler sets the function called on the GTK main loop when the
// session ends. err is termini.ErrChildExited when the child exited.
func (t *Terminal) SetExitHandler(fn func(error)) {
	t.mu.Lock()
	t.onExit = fn
	t.mu.Unlock()
}

// RunShell starts the default shell in the terminal
func (t *Terminal) RunShell() error {
	return t.RunCommand(t.options.Shell)
}

// RunCommand runs a command in the terminal
func (t *Terminal) RunCommand(name string, args ...string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return errors.New("terminal already running")
	}

	cmd := exec.Command(name, args...)
	cmd.Dir = t.options.WorkingDir
	if err := t.session.Start(cmd); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.running = true
	go t.run(ctx)
	return nil
}

func (t *Terminal) run(ctx context.Context) {
	err := t.session.Run(ctx)

	t.mu.Lock()
	t.running = false
	t.err = err
	fn := t.onExit
	t.mu.Unlock()
	close(t.done)

	if fn != nil {
		glib.IdleAdd(func() bool {
			fn(err)
			return false
		})
	}
}

// Close stops the session and the child process.
func (t *Terminal) Close() error {
	t.mu.Lock()
	cancel := t.cancel
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return t.widget.Close()
}

// Wait blocks until the session ends and returns its result.
func (t *Terminal) Wait() error {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// IsRunning reports whether a child is attached.
func (t *Terminal) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}
