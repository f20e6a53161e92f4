// Package main implements termini, a small terminal emulator window for
// GTK and Qt desktops, down to one bit per pixel.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/phroun/termini/config"
	"github.com/spf13/cobra"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
)

// Global flags
var (
	configPath  string
	backendName string
	fontSpec    string
	reverse     bool
	depthFlag   string
	termFlag    string
	shellFlag   string
	logLevel    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "termini [command [args...]]",
		Short: "A minimal terminal emulator",
		Long: `termini - a minimal terminal emulator

Runs a shell (or the given command) in a window drawn at the display's
depth. At 4 bits per pixel or less colors become gray levels and the
terminal reports itself as a vt220.`,
		Example: `  # Run your shell
  termini

  # Light text on a dark background, Qt window
  termini -r -b qt

  # Simulate a monochrome display
  termini --depth 1 -- top

  # Render a command's output to a PNG without a window
  termini snapshot -o ls.png -- ls --color=always`,
		Version: version,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			return runTerminal(cmd.Context(), cfg, logger, args)
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default: $XDG_CONFIG_HOME/termini/config.toml)")
	flags.StringVarP(&backendName, "backend", "b", "", "Window backend: gtk, qt or headless")
	flags.StringVarP(&fontSpec, "font", "F", "", `Font as "family" or "family:size"`)
	flags.BoolVarP(&reverse, "reverse", "r", false, "Reverse video: light text on a dark background")
	flags.StringVar(&depthFlag, "depth", "", "Display depth in bits per pixel (1, 2, 4, 8, 24 or auto)")
	flags.StringVar(&termFlag, "term", "", "Compatibility mode: xterm, vt220, xterm-r5 or auto")
	flags.StringVar(&shellFlag, "shell", "", "Shell to run when no command is given")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")

	var snapshotOut string
	var snapshotWait time.Duration
	snapshotCmd := &cobra.Command{
		Use:   "snapshot [flags] -- command [args...]",
		Short: "Render a command's output to a PNG",
		Long: `Run a command on a pseudo-terminal without a window and write the
final screen as a PNG. The command runs until it exits or --wait elapses.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			return runSnapshot(cmd.Context(), cfg, logger, args, snapshotOut, snapshotWait)
		},
	}
	snapshotCmd.Flags().StringVarP(&snapshotOut, "output", "o", "termini.png", "PNG file to write")
	snapshotCmd.Flags().DurationVar(&snapshotWait, "wait", 5*time.Second, "Maximum time to let the command run")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage termini configuration",
	}
	configPathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.Path()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	configInitCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.Path()
			if err != nil {
				return err
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Created", path)
			return nil
		},
	}
	configCmd.AddCommand(configPathCmd, configInitCmd)
	rootCmd.AddCommand(snapshotCmd, configCmd)

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(fmt.Sprintf("%s\nCommit: %s", version, commit)),
	); err != nil {
		os.Exit(1)
	}
}
