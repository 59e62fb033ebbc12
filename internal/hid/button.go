package hid

import (
	"context"
	"time"
)

// ButtonEvent is a classified button gesture.
type ButtonEvent int

const (
	Press ButtonEvent = iota
	Hold
)

// String returns a human-readable name for the event.
func (e ButtonEvent) String() string {
	switch e {
	case Press:
		return "press"
	case Hold:
		return "hold"
	default:
		return "unknown"
	}
}

// Thresholds bound the Press window: [PressMin, HoldAfter).
type Thresholds struct {
	PressMin  time.Duration
	HoldAfter time.Duration
}

// DefaultThresholds returns the 50ms..500ms press window.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PressMin:  50 * time.Millisecond,
		HoldAfter: 500 * time.Millisecond,
	}
}

// Classify maps a gesture duration to an event.
// Durations inside the press window are a Press; everything else, including
// bounce-length pulses, is a Hold. A negative duration cannot be measured and
// yields no event.
func Classify(elapsed time.Duration, th Thresholds) (ButtonEvent, bool) {
	if elapsed < 0 {
		return 0, false
	}
	if elapsed >= th.PressMin && elapsed < th.HoldAfter {
		return Press, true
	}
	return Hold, true
}

// PushButton classifies falling-to-rising gestures on an active-low line.
type PushButton struct {
	line Line
	th   Thresholds
}

// NewPushButton creates a button on line using the given thresholds.
func NewPushButton(line Line, th Thresholds) *PushButton {
	return &PushButton{line: line, th: th}
}

// WaitForEvent blocks for one full gesture and classifies it.
// There is no timeout between the two edges other than ctx.
func (b *PushButton) WaitForEvent(ctx context.Context) (ButtonEvent, bool, error) {
	down, err := WaitForFallingEdge(ctx, b.line)
	if err != nil {
		return 0, false, err
	}

	up, err := WaitForRisingEdge(ctx, b.line)
	if err != nil {
		return 0, false, err
	}

	if down.At.IsZero() || up.At.IsZero() {
		return 0, false, nil
	}

	ev, ok := Classify(up.At.Sub(down.At), b.th)
	return ev, ok, nil
}
