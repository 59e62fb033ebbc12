package tui

import (
	"sync"
	"time"

	"github.com/vovakirdan/rotary2048/internal/hid"
)

// turnQueue bounds how many detents can wait behind the one being emitted.
const turnQueue = 32

// Rig drives three virtual lines the way the physical encoder and button would.
// The knob lines idle low and the button line idles high (pull-up, active low).
type Rig struct {
	A, B, Button *hid.VirtualLine

	stepDelay time.Duration
	now       func() time.Time

	turns chan hid.Direction
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// NewRig creates a rig at rest. stepDelay separates the half-steps of a
// detent and the detents themselves, and must be long enough for the knob
// listener to sample each one.
func NewRig(stepDelay time.Duration) *Rig {
	r := &Rig{
		A:         hid.NewVirtualLine(false),
		B:         hid.NewVirtualLine(false),
		Button:    hid.NewVirtualLine(true),
		stepDelay: stepDelay,
		now:       time.Now,
		turns:     make(chan hid.Direction, turnQueue),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go r.drive()
	return r
}

// Knob returns a knob decoding the rig's A and B lines.
func (r *Rig) Knob() *hid.RotaryKnob {
	return hid.NewRotaryKnob(r.A, r.B)
}

// PushButton returns a button classifying the rig's button line.
func (r *Rig) PushButton(th hid.Thresholds) *hid.PushButton {
	return hid.NewPushButton(r.Button, th)
}

// Turn queues one detent. Detents are emitted in the order Turn is called.
// It blocks only while the queue is full and does nothing after Close.
func (r *Rig) Turn(dir hid.Direction) {
	select {
	case r.turns <- dir:
	case <-r.quit:
	}
}

// drive emits queued detents one at a time.
func (r *Rig) drive() {
	defer close(r.done)
	for {
		select {
		case <-r.quit:
			return
		case dir := <-r.turns:
			r.step(dir)
		}
	}
}

// step toggles the leading line, then the trailing one.
// Clockwise leads with B, counter-clockwise with A.
func (r *Rig) step(dir hid.Direction) {
	lead, trail := r.B, r.A
	if dir == hid.CounterClockwise {
		lead, trail = r.A, r.B
	}

	lead.Set(!lead.IsHigh(), r.now())
	time.Sleep(r.stepDelay)
	trail.Set(!trail.IsHigh(), r.now())
	time.Sleep(r.stepDelay)
}

// Press pulls the button low for d. The release is stamped exactly d after the
// press, so classification does not depend on scheduling. It does not block.
func (r *Rig) Press(d time.Duration) {
	at := r.now()
	r.Button.Set(false, at)
	time.AfterFunc(d, func() {
		r.Button.Set(true, at.Add(d))
	})
}

// Close stops emitting detents and closes all three lines.
func (r *Rig) Close() {
	r.once.Do(func() {
		close(r.quit)
		<-r.done
		r.A.Close()
		r.B.Close()
		r.Button.Close()
	})
}
