// rotary2048 plays 2048 with a rotary encoder and a push button.
//
// Usage:
//
//	rotary2048 run       - Play on GPIO hardware
//	rotary2048 sim       - Play in the terminal with a simulated knob
//	rotary2048 history   - Show finished sessions
//
// Global flags:
//
//	--config <path>     - Config file (default: search ~/.rotary2048, ./configs, built-in)
//	--db <path>         - Session database (overrides storage.db_path)
//	--log-level <level> - debug, info, warn or error (overrides log.level)
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/rotary2048/internal/config"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rotary2048",
	Short: "2048 on a rotary encoder",
	Long: `rotary2048 plays 2048 with one rotary encoder and one push button.

Turning the knob clockwise slides every row right, counter-clockwise slides
every row left. Pressing the button rotates the board a quarter turn.

Available commands:
  run      - Play on GPIO hardware
  sim      - Play in the terminal with a simulated knob
  history  - Show finished sessions

Examples:
  rotary2048 run --log-level debug
  rotary2048 sim
  rotary2048 history --best`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to session database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (overrides config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(historyCmd)
}

// loadConfig loads the config and applies flag overrides. It exits on error.
func loadConfig() config.Config {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg
}

// newLogger builds the logger for a command. Unknown levels fall back to info.
func newLogger(cfg config.Config, prefix string, w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", cfg.Log.Level)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
