// Package hid decodes the raw digital lines of the rotary knob and the push
// button into discrete input events.
//
// Lines are abstracted behind the Line interface so the decoders run the same
// way against GPIO pins, the terminal simulator and scripted test fakes.
package hid

import (
	"context"
	"time"
)

// Edge is a level transition observed on a line.
type Edge struct {
	High bool      // Level after the transition
	At   time.Time // When the transition was observed
}

// Rising reports whether the edge went low to high.
func (e Edge) Rising() bool {
	return e.High
}

// Line is a single boolean-valued digital input.
type Line interface {
	// Edges delivers transitions in arrival order.
	// The channel is closed when the line is released.
	Edges() <-chan Edge

	// IsHigh returns the instantaneous level of the line.
	IsHigh() bool
}

// WaitForAnyEdge blocks until the next transition on l.
func WaitForAnyEdge(ctx context.Context, l Line) (Edge, error) {
	select {
	case <-ctx.Done():
		return Edge{}, ctx.Err()
	case e, ok := <-l.Edges():
		if !ok {
			return Edge{}, ErrLineClosed
		}
		return e, nil
	}
}

// WaitForFallingEdge blocks until l goes low, discarding rising edges.
func WaitForFallingEdge(ctx context.Context, l Line) (Edge, error) {
	return waitForLevel(ctx, l, false)
}

// WaitForRisingEdge blocks until l goes high, discarding falling edges.
func WaitForRisingEdge(ctx context.Context, l Line) (Edge, error) {
	return waitForLevel(ctx, l, true)
}

func waitForLevel(ctx context.Context, l Line, high bool) (Edge, error) {
	for {
		e, err := WaitForAnyEdge(ctx, l)
		if err != nil {
			return Edge{}, err
		}
		if e.High == high {
			return e, nil
		}
	}
}
