package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/rotary2048.yaml
var defaultYAML []byte

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Pins: PinsConfig{
			KnobA:  "GPIO17",
			KnobB:  "GPIO27",
			Button: "GPIO22",
			Pull:   "up",
		},
		Input: InputConfig{
			Debounce:  2 * time.Millisecond,
			PressMin:  50 * time.Millisecond,
			HoldAfter: 500 * time.Millisecond,
		},
		Simulator: SimulatorConfig{
			StepDelay:     15 * time.Millisecond,
			PressDuration: 150 * time.Millisecond,
			HoldDuration:  700 * time.Millisecond,
		},
		Storage: StorageConfig{
			DBPath: "~/.rotary2048/sessions.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
