// Package gpio adapts periph.io GPIO pins to hid.Line.
package gpio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/vovakirdan/rotary2048/internal/hid"
)

// ErrPinNotFound is returned by Open for names the host does not know.
var ErrPinNotFound = errors.New("gpio: pin not found")

// edgeWait bounds each blocking WaitForEdge call so the pump notices shutdown.
const edgeWait = 100 * time.Millisecond

// Init loads the host drivers. It must be called once before Open.
func Init() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("gpio: host init: %w", err)
	}
	return nil
}

// ParsePull maps a config value ("up", "down", "none") to a periph pull.
func ParsePull(s string) (gpio.Pull, error) {
	switch s {
	case "up":
		return gpio.PullUp, nil
	case "down":
		return gpio.PullDown, nil
	case "none", "":
		return gpio.Float, nil
	default:
		return gpio.PullNoChange, fmt.Errorf("gpio: unknown pull %q", s)
	}
}

// edgePin is the part of gpio.PinIO the adapter uses.
type edgePin interface {
	Name() string
	In(pull gpio.Pull, edge gpio.Edge) error
	Read() gpio.Level
	WaitForEdge(timeout time.Duration) bool
	Halt() error
}

// Line is an input pin with both-edge detection.
type Line struct {
	pin    edgePin
	poll   time.Duration
	edges  chan hid.Edge
	logger *log.Logger
	now    func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Option configures a Line.
type Option func(*Line)

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(l *log.Logger) Option {
	return func(ln *Line) {
		ln.logger = l
	}
}

// WithPoll also samples the level every interval, catching edges the
// driver did not report. Zero relies on edge interrupts alone.
func WithPoll(interval time.Duration) Option {
	return func(ln *Line) {
		ln.poll = interval
	}
}

// Open resolves name through the host registry and starts reporting its edges.
// The line stops when ctx is done or Close is called.
func Open(ctx context.Context, name string, pull gpio.Pull, opts ...Option) (*Line, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPinNotFound, name)
	}
	return open(ctx, p, pull, opts...)
}

func open(ctx context.Context, p edgePin, pull gpio.Pull, opts ...Option) (*Line, error) {
	if err := p.In(pull, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("gpio: configure %s: %w", p.Name(), err)
	}

	ctx, cancel := context.WithCancel(ctx)
	l := &Line{
		pin:    p,
		edges:  make(chan hid.Edge, 64),
		logger: log.New(io.Discard),
		now:    time.Now,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	go l.pump(ctx, p.Read())
	return l, nil
}

// Edges implements hid.Line.
func (l *Line) Edges() <-chan hid.Edge {
	return l.edges
}

// IsHigh implements hid.Line by reading the pin now.
func (l *Line) IsHigh() bool {
	return bool(l.pin.Read())
}

// Name returns the pin name.
func (l *Line) Name() string {
	return l.pin.Name()
}

// Close stops the pump and halts the pin.
func (l *Line) Close() error {
	var err error
	l.once.Do(func() {
		l.cancel()
		<-l.done
		err = l.pin.Halt()
	})
	return err
}

// pump turns driver edge notifications into timestamped edges. Successive
// notifications with the same level are collapsed.
func (l *Line) pump(ctx context.Context, last gpio.Level) {
	defer close(l.done)
	defer close(l.edges)

	wait := edgeWait
	if l.poll > 0 && l.poll < wait {
		wait = l.poll
	}

	for ctx.Err() == nil {
		got := l.pin.WaitForEdge(wait)
		if !got && l.poll <= 0 {
			continue
		}

		level := l.pin.Read()
		if level == last {
			continue
		}
		last = level

		edge := hid.Edge{High: bool(level), At: l.now()}
		select {
		case l.edges <- edge:
		case <-ctx.Done():
			return
		default:
			l.logger.Warn("edge dropped, consumer too slow", "pin", l.pin.Name(), "level", level)
		}
	}
}

// Ensure Line implements hid.Line
var _ hid.Line = (*Line)(nil)
