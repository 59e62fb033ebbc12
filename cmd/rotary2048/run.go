package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/vovakirdan/rotary2048/internal/config"
	"github.com/vovakirdan/rotary2048/internal/dispatch"
	"github.com/vovakirdan/rotary2048/internal/hid"
	"github.com/vovakirdan/rotary2048/internal/platform/gpio"
	"github.com/vovakirdan/rotary2048/internal/platform/tui"
	"github.com/vovakirdan/rotary2048/internal/storage"
	"github.com/vovakirdan/rotary2048/internal/telemetry"
)

var (
	flagPlain    bool
	flagSessions int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play on GPIO hardware",
	Long: `Play with a quadrature encoder and a push button wired to GPIO lines.

Pins, pull resistors, debounce and press thresholds come from the config
file. Frames are drawn to stdout, styled when stdout is a terminal.
Finished sessions are saved to the session database.

Examples:
  rotary2048 run
  rotary2048 run --config ./board.yaml --log-level debug
  rotary2048 run --plain > frames.log`,
	Run: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&flagPlain, "plain", false, "Draw uncolored frames even on a terminal")
	runCmd.Flags().IntVar(&flagSessions, "sessions", 0, "Stop after this many sessions (0 = run until interrupted)")
}

func runRun(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	logger := newLogger(cfg, "rotary2048", os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := gpio.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	in, err := openLines(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	styled := !flagPlain && term.IsTerminal(int(os.Stdout.Fd()))
	if err := playHardware(ctx, cfg, logger, in, tui.NewFrameRenderer(os.Stdout, styled)); err != nil {
		logger.Error("stopped", "error", err)
		stop()
		os.Exit(1)
	}
}

// inputs are the three opened lines and the function that releases them.
type inputs struct {
	knobA, knobB, button hid.Line
	close                func()
}

// playHardware runs the dispatcher until ctx is done or it fails. The lines
// and the session database are released before it returns.
func playHardware(ctx context.Context, cfg config.Config, logger *log.Logger, in inputs, renderer *tui.FrameRenderer) error {
	defer in.close()

	opts := []dispatch.Option{
		dispatch.WithLogger(logger),
		dispatch.WithMaxSessions(flagSessions),
	}

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		// Continue without storage - the game still works
		logger.Warn("could not open session database", "path", cfg.Storage.DBPath, "error", err)
	} else {
		defer store.Close()
		opts = append(opts, dispatch.WithResultSaver(store))
	}

	d := dispatch.New(
		hid.NewRotaryKnob(in.knobA, in.knobB),
		hid.NewPushButton(in.button, cfg.Thresholds()),
		renderer,
		opts...,
	)

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancelRun := context.WithCancel(gctx)
	defer cancelRun()

	g.Go(func() error {
		// The metrics endpoint lives as long as the game
		defer cancelRun()
		return d.Run(runCtx)
	})
	if cfg.Metrics.Address != "" {
		g.Go(func() error {
			return telemetry.Serve(runCtx, cfg.Metrics.Address, logger)
		})
	}

	logger.Info("ready", "knob_a", cfg.Pins.KnobA, "knob_b", cfg.Pins.KnobB, "button", cfg.Pins.Button)
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("stopped", "frames", renderer.Frames())
	return nil
}

// openLines opens the three input pins, debounced when configured.
func openLines(ctx context.Context, cfg config.Config, logger *log.Logger) (inputs, error) {
	pull, err := gpio.ParsePull(cfg.Pins.Pull)
	if err != nil {
		return inputs{}, err
	}

	var opened []*gpio.Line
	closeAll := func() {
		for _, l := range opened {
			if cerr := l.Close(); cerr != nil {
				logger.Warn("could not release pin", "pin", l.Name(), "error", cerr)
			}
		}
	}

	lines := make([]hid.Line, 0, 3)
	for _, name := range []string{cfg.Pins.KnobA, cfg.Pins.KnobB, cfg.Pins.Button} {
		l, err := gpio.Open(ctx, name, pull,
			gpio.WithLogger(logger.WithPrefix(name)),
			gpio.WithPoll(cfg.Input.PollInterval),
		)
		if err != nil {
			closeAll()
			return inputs{}, err
		}
		opened = append(opened, l)
		lines = append(lines, hid.Debounce(ctx, l, cfg.Input.Debounce))
	}

	return inputs{knobA: lines[0], knobB: lines[1], button: lines[2], close: closeAll}, nil
}
