package hid

import (
	"context"
	"sync"
	"time"
)

// debouncedLine forwards a level change only once the raw line has been
// quiet for hold.
type debouncedLine struct {
	raw   Line
	hold  time.Duration
	edges chan Edge

	mu     sync.Mutex
	stable bool
}

// Debounce wraps l so that contact bounce shorter than hold is swallowed.
// The returned line is fed by a goroutine that stops when ctx is done.
// A non-positive hold returns l unchanged.
func Debounce(ctx context.Context, l Line, hold time.Duration) Line {
	if hold <= 0 {
		return l
	}

	d := &debouncedLine{
		raw:    l,
		hold:   hold,
		edges:  make(chan Edge, 16),
		stable: l.IsHigh(),
	}
	go d.run(ctx)
	return d
}

// Edges implements Line.
func (d *debouncedLine) Edges() <-chan Edge {
	return d.edges
}

// IsHigh implements Line and returns the last stable level.
func (d *debouncedLine) IsHigh() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stable
}

func (d *debouncedLine) run(ctx context.Context) {
	defer close(d.edges)

	var (
		timer  *time.Timer
		settle <-chan time.Time
		first  time.Time // First raw edge of the current burst
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case e, ok := <-d.raw.Edges():
			if !ok {
				return
			}
			if first.IsZero() {
				first = e.At
			}
			if timer == nil {
				timer = time.NewTimer(d.hold)
			} else {
				timer.Reset(d.hold)
			}
			settle = timer.C

		case <-settle:
			settle = nil
			level := d.raw.IsHigh()
			at := first
			first = time.Time{}

			d.mu.Lock()
			changed := level != d.stable
			d.stable = level
			d.mu.Unlock()

			if !changed {
				// Bounced back to where it started
				continue
			}

			select {
			case d.edges <- Edge{High: level, At: at}:
			case <-ctx.Done():
				return
			}
		}
	}
}
