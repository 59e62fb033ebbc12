package gpio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"

	"github.com/vovakirdan/rotary2048/internal/hid"
)

// fakePin is a pin whose level is driven by the test.
type fakePin struct {
	mu     sync.Mutex
	level  gpio.Level
	pull   gpio.Pull
	edge   gpio.Edge
	inErr  error
	halted bool

	notify chan struct{}
}

func newFakePin(level gpio.Level) *fakePin {
	return &fakePin{level: level, notify: make(chan struct{}, 16)}
}

func (p *fakePin) Name() string { return "FAKE0" }

func (p *fakePin) In(pull gpio.Pull, edge gpio.Edge) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pull, p.edge = pull, edge
	return p.inErr
}

func (p *fakePin) Read() gpio.Level {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *fakePin) WaitForEdge(timeout time.Duration) bool {
	select {
	case <-p.notify:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (p *fakePin) Halt() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.halted = true
	return nil
}

// set changes the level, optionally reporting it as an edge.
func (p *fakePin) set(level gpio.Level, report bool) {
	p.mu.Lock()
	p.level = level
	p.mu.Unlock()
	if report {
		p.notify <- struct{}{}
	}
}

func nextEdge(t *testing.T, l *Line) hid.Edge {
	t.Helper()
	select {
	case e, ok := <-l.Edges():
		require.True(t, ok, "edge channel closed")
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for an edge")
		return hid.Edge{}
	}
}

func TestOpenConfiguresBothEdges(t *testing.T) {
	p := newFakePin(gpio.High)
	l, err := open(context.Background(), p, gpio.PullUp)
	require.NoError(t, err)
	defer l.Close()

	require.Equal(t, gpio.PullUp, p.pull)
	require.Equal(t, gpio.BothEdges, p.edge)
	require.True(t, l.IsHigh())
	require.Equal(t, "FAKE0", l.Name())
}

func TestOpenConfigureError(t *testing.T) {
	p := newFakePin(gpio.High)
	p.inErr = errors.New("permission denied")

	_, err := open(context.Background(), p, gpio.PullUp)
	require.ErrorContains(t, err, "permission denied")
}

func TestLineReportsEdges(t *testing.T) {
	p := newFakePin(gpio.High)
	l, err := open(context.Background(), p, gpio.PullUp)
	require.NoError(t, err)
	defer l.Close()

	p.set(gpio.Low, true)
	e := nextEdge(t, l)
	require.False(t, e.High)
	require.False(t, e.At.IsZero())

	p.set(gpio.High, true)
	require.True(t, nextEdge(t, l).High)
}

func TestLineCollapsesRepeatedLevel(t *testing.T) {
	p := newFakePin(gpio.High)
	l, err := open(context.Background(), p, gpio.PullUp)
	require.NoError(t, err)
	defer l.Close()

	// A spurious notification without a level change is not an edge
	p.set(gpio.High, true)
	p.set(gpio.Low, true)

	require.False(t, nextEdge(t, l).High)
}

func TestLinePollCatchesUnreportedChange(t *testing.T) {
	p := newFakePin(gpio.High)
	l, err := open(context.Background(), p, gpio.PullUp, WithPoll(5*time.Millisecond))
	require.NoError(t, err)
	defer l.Close()

	p.set(gpio.Low, false)
	require.False(t, nextEdge(t, l).High)
}

func TestLineCloseHaltsPin(t *testing.T) {
	p := newFakePin(gpio.High)
	l, err := open(context.Background(), p, gpio.PullUp)
	require.NoError(t, err)

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	_, ok := <-l.Edges()
	require.False(t, ok, "edges should be closed")
	require.True(t, p.halted)

	_, err = hid.WaitForAnyEdge(context.Background(), l)
	require.ErrorIs(t, err, hid.ErrLineClosed)
}

func TestParsePull(t *testing.T) {
	tests := []struct {
		in      string
		want    gpio.Pull
		wantErr bool
	}{
		{"up", gpio.PullUp, false},
		{"down", gpio.PullDown, false},
		{"none", gpio.Float, false},
		{"", gpio.Float, false},
		{"sideways", gpio.PullNoChange, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePull(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
