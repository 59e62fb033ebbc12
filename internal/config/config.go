// Package config provides YAML-based configuration loading for rotary2048.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/rotary2048/internal/hid"
)

// Config contains all configuration for the game and its input hardware.
type Config struct {
	Pins      PinsConfig      `yaml:"pins"`
	Input     InputConfig     `yaml:"input"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// PinsConfig names the GPIO lines as known to the host driver.
type PinsConfig struct {
	KnobA  string `yaml:"knob_a"`
	KnobB  string `yaml:"knob_b"`
	Button string `yaml:"button"`
	Pull   string `yaml:"pull"` // "up", "down" or "none"
}

// InputConfig tunes edge handling and press classification.
type InputConfig struct {
	Debounce     time.Duration `yaml:"debounce"`      // 0 disables debouncing
	PressMin     time.Duration `yaml:"press_min"`     // Shorter gestures count as Hold
	HoldAfter    time.Duration `yaml:"hold_after"`    // Gestures at least this long are Hold
	PollInterval time.Duration `yaml:"poll_interval"` // 0 waits for interrupts only
}

// SimulatorConfig controls how the terminal simulator drives its virtual lines.
type SimulatorConfig struct {
	StepDelay     time.Duration `yaml:"step_delay"`     // Gap between the two half-steps of a detent
	PressDuration time.Duration `yaml:"press_duration"` // Length of a simulated short press
	HoldDuration  time.Duration `yaml:"hold_duration"`  // Length of a simulated long hold
}

// StorageConfig locates the session history database.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// LogConfig sets the logger verbosity.
type LogConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig enables the Prometheus endpoint when Address is set.
type MetricsConfig struct {
	Address string `yaml:"address"`
}

// Thresholds returns the press window for the button classifier.
func (c Config) Thresholds() hid.Thresholds {
	return hid.Thresholds{
		PressMin:  c.Input.PressMin,
		HoldAfter: c.Input.HoldAfter,
	}
}

// Validate reports every inconsistent setting.
func (c Config) Validate() error {
	var errs []error

	if c.Input.PressMin < 0 {
		errs = append(errs, fmt.Errorf("input.press_min must not be negative, got %v", c.Input.PressMin))
	}
	if c.Input.HoldAfter <= c.Input.PressMin {
		errs = append(errs, fmt.Errorf("input.hold_after (%v) must be greater than input.press_min (%v)",
			c.Input.HoldAfter, c.Input.PressMin))
	}
	if c.Input.Debounce < 0 {
		errs = append(errs, errors.New("input.debounce must not be negative"))
	}
	if c.Input.PollInterval < 0 {
		errs = append(errs, errors.New("input.poll_interval must not be negative"))
	}

	switch c.Pins.Pull {
	case "up", "down", "none":
	default:
		errs = append(errs, fmt.Errorf("pins.pull must be up, down or none, got %q", c.Pins.Pull))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ValidateSimulator checks that the simulated gestures classify as the
// keys they are bound to under the configured press window.
func (c Config) ValidateSimulator() error {
	var errs []error

	if c.Simulator.StepDelay < 0 {
		errs = append(errs, errors.New("simulator.step_delay must not be negative"))
	}
	if c.Simulator.PressDuration < c.Input.PressMin || c.Simulator.PressDuration >= c.Input.HoldAfter {
		errs = append(errs, fmt.Errorf("simulator.press_duration (%v) must fall in the press window [%v, %v)",
			c.Simulator.PressDuration, c.Input.PressMin, c.Input.HoldAfter))
	}
	if c.Simulator.HoldDuration < c.Input.HoldAfter {
		errs = append(errs, fmt.Errorf("simulator.hold_duration (%v) must be at least input.hold_after (%v)",
			c.Simulator.HoldDuration, c.Input.HoldAfter))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
