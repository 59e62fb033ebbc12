package hid

import (
	"sync"
	"time"
)

// virtualEdgeBuffer is how many undelivered edges a VirtualLine keeps.
const virtualEdgeBuffer = 256

// VirtualLine is an in-memory Line driven by Set.
// It backs the terminal simulator and scripted tests.
type VirtualLine struct {
	mu     sync.Mutex
	high   bool
	closed bool
	edges  chan Edge
}

// NewVirtualLine creates a line resting at the given level.
func NewVirtualLine(high bool) *VirtualLine {
	return &VirtualLine{
		high:  high,
		edges: make(chan Edge, virtualEdgeBuffer),
	}
}

// Edges implements Line.
func (v *VirtualLine) Edges() <-chan Edge {
	return v.edges
}

// IsHigh implements Line.
func (v *VirtualLine) IsHigh() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.high
}

// Set drives the line to the given level at time at.
// Returns true if an edge was queued. Setting the current level is a no-op,
// and an edge is dropped if the consumer has fallen too far behind.
func (v *VirtualLine) Set(high bool, at time.Time) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || v.high == high {
		return false
	}
	v.high = high

	select {
	case v.edges <- Edge{High: high, At: at}:
		return true
	default:
		return false
	}
}

// Replay drives the line through a scripted sequence of levels and timestamps.
func (v *VirtualLine) Replay(steps ...Edge) {
	for _, s := range steps {
		v.Set(s.High, s.At)
	}
}

// Close stops the line. Pending edges can still be drained.
func (v *VirtualLine) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	v.closed = true
	close(v.edges)
}
