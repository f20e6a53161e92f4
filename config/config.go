// Package config loads the termini user configuration from
// $XDG_CONFIG_HOME/termini/config.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
	"github.com/phroun/termini"
)

// relPath is the config file location relative to the XDG config dirs.
const relPath = "termini/config.toml"

// Config is the user configuration. CLI flags override these values.
type Config struct {
	Backend       string `toml:"backend"`
	FontFamily    string `toml:"font_family"`
	FontSize      int    `toml:"font_size"`
	Reverse       bool   `toml:"reverse"`
	Depth         string `toml:"depth"`
	Term          string `toml:"term"`
	Shell         string `toml:"shell"`
	Cols          int    `toml:"cols"`
	Rows          int    `toml:"rows"`
	PointerIdleMS int    `toml:"pointer_idle_ms"`
	PasteButton   int    `toml:"paste_button"`
	BoldIsBright  bool   `toml:"bold_is_bright"`
	Bell          string `toml:"bell"`
	LogLevel      string `toml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend:       "gtk",
		FontFamily:    "Monospace",
		FontSize:      12,
		Depth:         "auto",
		Term:          "auto",
		Cols:          80,
		Rows:          24,
		PointerIdleMS: 3000,
		PasteButton:   termini.DefaultPasteButton,
		BoldIsBright:  true,
		Bell:          "log",
		LogLevel:      "info",
	}
}

// Path returns the config file in use, or where it would be created.
func Path() (string, error) {
	path, err := xdg.SearchConfigFile(relPath)
	if err != nil {
		return xdg.ConfigFile(relPath)
	}
	return path, nil
}

// Load reads the user config file. A missing file yields the defaults.
func Load() (*Config, error) {
	path, err := xdg.SearchConfigFile(relPath)
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates a config file. Keys missing from the file
// keep their default values.
func LoadFile(path string) (*Config, error) {
	// #nosec G304 - reading the user's own config file is intentional
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Backend {
	case "gtk", "qt", "headless":
	default:
		errs = append(errs, fmt.Errorf("backend: %q is not one of gtk, qt, headless", c.Backend))
	}
	if c.FontSize < 4 || c.FontSize > 200 {
		errs = append(errs, fmt.Errorf("font_size: %d out of range 4..200", c.FontSize))
	}
	if c.Depth != "auto" {
		if _, err := termini.ParseDepth(c.Depth); err != nil {
			errs = append(errs, fmt.Errorf("depth: %w", err))
		}
	}
	if c.Term != "auto" {
		if _, err := termini.ParseMode(c.Term); err != nil {
			errs = append(errs, fmt.Errorf("term: %w", err))
		}
	}
	if c.Cols < 1 || c.Rows < 1 {
		errs = append(errs, fmt.Errorf("cols/rows: %dx%d must be at least 1x1", c.Cols, c.Rows))
	}
	if c.PointerIdleMS < 0 {
		errs = append(errs, fmt.Errorf("pointer_idle_ms: %d is negative", c.PointerIdleMS))
	}
	if c.PasteButton < 1 || c.PasteButton > 5 {
		errs = append(errs, fmt.Errorf("paste_button: %d out of range 1..5", c.PasteButton))
	}
	switch c.Bell {
	case "none", "log", "audible":
	default:
		errs = append(errs, fmt.Errorf("bell: %q is not one of none, log, audible", c.Bell))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	return errors.Join(errs...)
}

// DisplayDepth returns the configured depth, or fallback when set to auto.
func (c *Config) DisplayDepth(fallback termini.Depth) termini.Depth {
	if c.Depth == "auto" || c.Depth == "" {
		return fallback
	}
	d, err := termini.ParseDepth(c.Depth)
	if err != nil {
		return fallback
	}
	return d
}

// ShellCommand returns the program to run: the configured shell, $SHELL,
// or /bin/sh.
func (c *Config) ShellCommand() string {
	if c.Shell != "" {
		return c.Shell
	}
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

// SessionOptions builds session options for a display of the given depth.
func (c *Config) SessionOptions(displayDepth termini.Depth, logger *log.Logger) termini.Options {
	return termini.Options{
		Depth:        c.DisplayDepth(displayDepth),
		Reverse:      c.Reverse,
		Term:         c.Term,
		BoldIsBright: c.BoldIsBright,
		PointerIdle:  time.Duration(c.PointerIdleMS) * time.Millisecond,
		PasteButton:  c.PasteButton,
		Logger:       logger,
	}
}

// WriteDefault writes the default configuration with a commented header to
// path, creating parent directories. An existing file is not overwritten.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := toml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# termini configuration file\n")
	sb.WriteString("# Location: " + path + "\n")
	sb.WriteString("#\n")
	sb.WriteString("# backend: gtk, qt or headless\n")
	sb.WriteString("# depth: auto, 1, 2, 4, 8 or 24 bits per pixel\n")
	sb.WriteString("# term: auto (vt220 at 4 bpp or less, xterm otherwise), xterm, vt220, xterm-r5\n")
	sb.WriteString("# pointer_idle_ms: hide the mouse pointer after this idle time, 0 to never hide\n")
	sb.WriteString("# paste_button: pointer button that pastes the clipboard (2 = middle)\n")
	sb.WriteString("# bell: none, log or audible\n")
	sb.WriteString("# log_level: debug, info, warn or error\n\n")
	sb.Write(data)

	if err := os.WriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
