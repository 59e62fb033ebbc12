package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/rotary2048/internal/config"
	"github.com/vovakirdan/rotary2048/internal/dispatch"
	"github.com/vovakirdan/rotary2048/internal/platform/tui"
	"github.com/vovakirdan/rotary2048/internal/storage"
)

var (
	flagLogFile string
	flagNoSave  bool
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Play in the terminal with a simulated knob",
	Long: `Play with the keyboard standing in for the hardware.

Keys emit the same line transitions the encoder and button would, and the
same decoders and dispatcher turn them into moves.

Controls:
  Left/A     - Turn counter-clockwise (slide left)
  Right/D    - Turn clockwise (slide right)
  Space      - Short press (rotate)
  H          - Long hold (rotate)
  Q/Ctrl+C   - Quit

Examples:
  rotary2048 sim
  rotary2048 sim --log-file ./sim.log --log-level debug
  rotary2048 sim --no-save`,
	Run: runSim,
}

func init() {
	simCmd.Flags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file (logs are discarded otherwise)")
	simCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not record finished sessions")
}

func runSim(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	if err := cfg.ValidateSimulator(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := playSim(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// playSim runs the simulator. The log file and the session database are
// closed before it returns.
func playSim(cfg config.Config) error {
	// The simulator owns the terminal, so logs go to a file or nowhere
	var logOut io.Writer = io.Discard
	if flagLogFile != "" {
		if err := os.MkdirAll(filepath.Dir(flagLogFile), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(cfg, "sim", logOut)

	opts := tui.SimOptions{
		StepDelay:     cfg.Simulator.StepDelay,
		PressDuration: cfg.Simulator.PressDuration,
		HoldDuration:  cfg.Simulator.HoldDuration,
		Thresholds:    cfg.Thresholds(),
		Logger:        logger,
	}

	if !flagNoSave {
		store, err := storage.Open(cfg.Storage.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not open session database: %v\n", err)
			// Continue without storage - game still works
		} else {
			defer store.Close()
			opts.Saver = dispatch.ResultSaver(store)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if err := tui.RunSimulator(ctx, opts); err != nil {
		logger.Error("simulator stopped", "error", err)
		return err
	}
	return nil
}
