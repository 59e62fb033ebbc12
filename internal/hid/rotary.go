package hid

import "context"

// Direction is the rotation direction of the knob.
type Direction int

const (
	Clockwise Direction = iota
	CounterClockwise
)

// String returns a human-readable name for the direction.
func (d Direction) String() string {
	switch d {
	case Clockwise:
		return "clockwise"
	case CounterClockwise:
		return "counter_clockwise"
	default:
		return "unknown"
	}
}

// LineState is the pair of quadrature line levels.
type LineState struct {
	A bool
	B bool
}

// QuadratureDecoder turns successive line states into rotation steps.
// The zero value starts from (false, false).
type QuadratureDecoder struct {
	last LineState
}

// Observe compares next against the previously observed state.
//
// Only the Gray-code steps that land on a detent (both lines equal) produce a
// direction. Any other transition, including a double-bit change caused by
// bounce or a missed sample, yields nothing. The previous state is replaced
// either way, so noise can shift the decoder off the physical detent.
func (d *QuadratureDecoder) Observe(next LineState) (Direction, bool) {
	prev := d.last
	d.last = next

	switch {
	case prev == LineState{false, true} && next == LineState{true, true},
		prev == LineState{true, false} && next == LineState{false, false}:
		return Clockwise, true
	case prev == LineState{true, false} && next == LineState{true, true},
		prev == LineState{false, true} && next == LineState{false, false}:
		return CounterClockwise, true
	default:
		return 0, false
	}
}

// Last returns the most recently observed state.
func (d *QuadratureDecoder) Last() LineState {
	return d.last
}

// RotaryKnob decodes a quadrature encoder wired to two lines.
type RotaryKnob struct {
	a, b    Line
	decoder QuadratureDecoder
}

// NewRotaryKnob creates a knob reading lines a and b.
func NewRotaryKnob(a, b Line) *RotaryKnob {
	return &RotaryKnob{a: a, b: b}
}

// WaitForChange blocks until either line transitions, then samples both
// levels and decodes the step. ok is false when the step was not a valid
// rotation.
func (k *RotaryKnob) WaitForChange(ctx context.Context) (dir Direction, ok bool, err error) {
	select {
	case <-ctx.Done():
		return 0, false, ctx.Err()
	case _, open := <-k.a.Edges():
		if !open {
			return 0, false, ErrLineClosed
		}
	case _, open := <-k.b.Edges():
		if !open {
			return 0, false, ErrLineClosed
		}
	}

	// The triggering edge only wakes us up; both levels are read now
	state := LineState{A: k.a.IsHigh(), B: k.b.IsHigh()}
	dir, ok = k.decoder.Observe(state)
	return dir, ok, nil
}
