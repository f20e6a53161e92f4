package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gotk3/gotk3/gtk"
	"github.com/mappu/miqt/qt"
	"github.com/phroun/termini"
	"github.com/phroun/termini/bell"
	"github.com/phroun/termini/config"
	terminigtk "github.com/phroun/termini/gtk"
	"github.com/phroun/termini/headless"
	terminiqt "github.com/phroun/termini/qt"
	"github.com/phroun/termini/vt"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// setup loads the configuration, applies command line overrides and builds
// the logger.
func setup(cmd *cobra.Command) (*config.Config, *log.Logger, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}
	if err := applyFlags(cfg, cmd.Flags()); err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg.LogLevel, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// applyFlags copies explicitly set flags over the file configuration.
func applyFlags(cfg *config.Config, flags *pflag.FlagSet) error {
	if flags.Changed("backend") {
		cfg.Backend = backendName
	}
	if flags.Changed("font") {
		family, size, err := parseFont(fontSpec)
		if err != nil {
			return err
		}
		if family != "" {
			cfg.FontFamily = family
		}
		if size > 0 {
			cfg.FontSize = size
		}
	}
	if flags.Changed("reverse") {
		cfg.Reverse = reverse
	}
	if flags.Changed("depth") {
		cfg.Depth = depthFlag
	}
	if flags.Changed("term") {
		cfg.Term = termFlag
	}
	if flags.Changed("shell") {
		cfg.Shell = shellFlag
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	return nil
}

// parseFont splits "family:size". Either part may be empty.
func parseFont(spec string) (string, int, error) {
	family, sizeStr, found := strings.Cut(spec, ":")
	if !found || sizeStr == "" {
		return family, 0, nil
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 1 {
		return "", 0, fmt.Errorf("invalid font size %q", sizeStr)
	}
	return family, size, nil
}

func newLogger(level string, w *os.File) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "termini",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           lvl,
	})
	if !term.IsTerminal(int(w.Fd())) {
		logger.SetFormatter(log.LogfmtFormatter)
	}
	return logger, nil
}

// bellFunc returns the session bell handler for the configured mode and a
// cleanup function.
func bellFunc(cfg *config.Config, logger *log.Logger) (func(), func()) {
	switch cfg.Bell {
	case "audible":
		player := bell.New(logger)
		if err := player.Initialize(); err != nil {
			logger.Warn("audio unavailable, bell will be logged", "err", err)
			return func() { logger.Info("bell") }, player.Close
		}
		return player.Ring, player.Close
	case "log":
		return func() { logger.Info("bell") }, func() {}
	default:
		return func() {}, func() {}
	}
}

func command(cfg *config.Config, args []string) []string {
	if len(args) == 0 {
		return []string{cfg.ShellCommand()}
	}
	return args
}

// exitStatus maps a session result to the command's error.
func exitStatus(err error) error {
	if err == nil || errors.Is(err, termini.ErrChildExited) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runTerminal(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	switch cfg.Backend {
	case "gtk":
		return runGTK(cfg, logger, command(cfg, args))
	case "qt":
		return runQt(cfg, logger, command(cfg, args))
	case "headless":
		return runSnapshot(ctx, cfg, logger, command(cfg, args), "termini.png", 5*time.Second)
	default:
		return fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func runGTK(cfg *config.Config, logger *log.Logger, argv []string) error {
	runtime.LockOSThread()
	gtk.Init(nil)

	ring, closeBell := bellFunc(cfg, logger)
	defer closeBell()

	opts := cfg.SessionOptions(terminigtk.ScreenDepth(), logger)
	opts.Bell = ring
	t, err := terminigtk.New(terminigtk.Options{
		Cols:       cfg.Cols,
		Rows:       cfg.Rows,
		FontFamily: cfg.FontFamily,
		FontSize:   cfg.FontSize,
		Session:    opts,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("create terminal: %w", err)
	}

	win, err := gtk.WindowNew(gtk.WINDOW_TOPLEVEL)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	win.SetTitle("termini")
	win.SetDefaultSize(t.PreferredSize())
	win.Add(t.Widget())

	var result error
	t.SetTitleHandler(win.SetTitle)
	t.SetExitHandler(func(err error) {
		result = err
		win.Destroy()
	})
	win.Connect("destroy", func() {
		_ = t.Close()
		gtk.MainQuit()
	})
	win.ShowAll()
	t.Widget().GrabFocus()

	if err := t.RunCommand(argv[0], argv[1:]...); err != nil {
		return fmt.Errorf("start %s: %w", argv[0], err)
	}
	gtk.Main()
	return exitStatus(result)
}

func runQt(cfg *config.Config, logger *log.Logger, argv []string) error {
	runtime.LockOSThread()
	qt.NewQApplication(os.Args[:1])

	ring, closeBell := bellFunc(cfg, logger)
	defer closeBell()

	opts := cfg.SessionOptions(terminiqt.ScreenDepth(), logger)
	opts.Bell = ring
	t, err := terminiqt.New(terminiqt.Options{
		Cols:       cfg.Cols,
		Rows:       cfg.Rows,
		FontFamily: cfg.FontFamily,
		FontSize:   cfg.FontSize,
		Session:    opts,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("create terminal: %w", err)
	}

	win := qt.NewQMainWindow(nil)
	win.SetWindowTitle("termini")
	win.SetCentralWidget(t.Widget())

	var result error
	t.SetTitleHandler(win.SetWindowTitle)
	t.SetExitHandler(func(err error) {
		result = err
		qt.QCoreApplication_Quit()
	})
	win.Show()
	t.Widget().SetFocus()

	if err := t.RunCommand(argv[0], argv[1:]...); err != nil {
		return fmt.Errorf("start %s: %w", argv[0], err)
	}
	qt.QApplication_Exec()
	_ = t.Close()
	return exitStatus(result)
}

// runSnapshot runs argv on a headless session and writes the final screen
// to out.
func runSnapshot(ctx context.Context, cfg *config.Config, logger *log.Logger, argv []string, out string, wait time.Duration) error {
	backend := headless.New(cfg.Cols, cfg.Rows)
	opts := cfg.SessionOptions(termini.Depth24, logger)
	opts.PointerIdle = 0
	opts.Bell = func() { logger.Debug("bell") }

	s, err := termini.NewSession(backend, vt.New(cfg.Rows, cfg.Cols), opts)
	if err != nil {
		return err
	}
	// #nosec G204 - running the user's command is the purpose
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := s.Start(cmd); err != nil {
		return fmt.Errorf("start %s: %w", argv[0], err)
	}

	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	err = s.Run(ctx)
	if err != nil && !errors.Is(err, termini.ErrChildExited) && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := backend.WritePNG(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	logger.Info("snapshot written", "file", out, "depth", opts.Depth)
	return nil
}
