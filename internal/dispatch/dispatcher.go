// Package dispatch runs the input listeners and the control loop that applies
// their events to a 2048 game.
//
// Each listener owns one input source and publishes into its own Latest slot.
// The control loop is the only goroutine that touches the board, so no locks
// guard game state.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/rotary2048/internal/games/t2048"
	"github.com/vovakirdan/rotary2048/internal/hid"
	"github.com/vovakirdan/rotary2048/internal/telemetry"
)

// ErrRender wraps renderer failures returned by Run.
var ErrRender = errors.New("dispatch: render failed")

// RotarySource yields knob steps. ok is false for transitions that did not
// decode to a direction.
type RotarySource interface {
	WaitForChange(ctx context.Context) (dir hid.Direction, ok bool, err error)
}

// ButtonSource yields classified button gestures.
type ButtonSource interface {
	WaitForEvent(ctx context.Context) (ev hid.ButtonEvent, ok bool, err error)
}

// Renderer draws a board snapshot. It must not block indefinitely.
type Renderer interface {
	RenderGrid(board t2048.Board) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(board t2048.Board) error

// RenderGrid implements Renderer.
func (f RendererFunc) RenderGrid(board t2048.Board) error {
	return f(board)
}

// ResultSaver is an interface for saving finished sessions.
// This allows the dispatcher to record results without depending on the storage package.
type ResultSaver interface {
	SaveSessionResult(result Result) error
}

// GameFactory creates the game for a new session.
type GameFactory func() (*t2048.Game, error)

// Result describes a finished session.
type Result struct {
	ID        string
	Status    t2048.Status
	Board     t2048.Board
	MaxTile   uint16
	Moves     int
	Rotations int
	Seed      uint64
	StartedAt time.Time
	Duration  time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// WithResultSaver records every finished session.
func WithResultSaver(s ResultSaver) Option {
	return func(d *Dispatcher) {
		d.saver = s
	}
}

// WithOnResult calls fn from the control loop after each finished session.
func WithOnResult(fn func(Result)) Option {
	return func(d *Dispatcher) {
		d.onResult = fn
	}
}

// WithMaxSessions stops Run after n sessions. Zero means no limit.
func WithMaxSessions(n int) Option {
	return func(d *Dispatcher) {
		d.maxSessions = n
	}
}

// WithGameFactory overrides how each session's game is created.
func WithGameFactory(f GameFactory) Option {
	return func(d *Dispatcher) {
		d.newGame = f
	}
}

// Dispatcher wires the knob and button to a game and a renderer.
type Dispatcher struct {
	knob     RotarySource
	button   ButtonSource
	renderer Renderer

	logger      *log.Logger
	saver       ResultSaver
	onResult    func(Result)
	maxSessions int
	newGame     GameFactory
	now         func() time.Time

	rotations *Latest[hid.Direction]
	buttons   *Latest[hid.ButtonEvent]
}

// New creates a dispatcher.
func New(knob RotarySource, button ButtonSource, renderer Renderer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		knob:      knob,
		button:    button,
		renderer:  renderer,
		logger:    log.New(io.Discard),
		newGame:   startGame,
		now:       time.Now,
		rotations: NewLatest[hid.Direction](),
		buttons:   NewLatest[hid.ButtonEvent](),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// startGame is the default factory: an empty board with two opening tiles.
func startGame() (*t2048.Game, error) {
	g := t2048.New()
	if err := g.Start(); err != nil {
		return nil, err
	}
	return g, nil
}

// Run starts both listeners and plays sessions until ctx is done, the
// session limit is reached, or a listener or the renderer fails.
// Cancellation of ctx is a clean shutdown and returns nil.
func (d *Dispatcher) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.listenRotary(gctx)
	})
	g.Go(func() error {
		return d.listenButton(gctx)
	})
	g.Go(func() error {
		// Listeners outlive sessions; stop them once the loop is done
		defer cancel()
		return d.control(gctx)
	})

	return g.Wait()
}

// listenRotary publishes every decoded knob step.
func (d *Dispatcher) listenRotary(ctx context.Context) error {
	for {
		dir, ok, err := d.knob.WaitForChange(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("dispatch: rotary listener: %w", err)
		}

		if !ok {
			telemetry.ObserveInput(telemetry.SourceRotary, telemetry.KindIgnored)
			continue
		}

		telemetry.ObserveInput(telemetry.SourceRotary, dir.String())
		if d.rotations.Publish(dir) {
			telemetry.ObserveSuperseded(telemetry.SourceRotary)
			d.logger.Debug("pending rotation superseded", "direction", dir)
		}
	}
}

// listenButton publishes every classified gesture.
func (d *Dispatcher) listenButton(ctx context.Context) error {
	for {
		ev, ok, err := d.button.WaitForEvent(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("dispatch: button listener: %w", err)
		}

		if !ok {
			telemetry.ObserveInput(telemetry.SourceButton, telemetry.KindIgnored)
			d.logger.Debug("unmeasurable gesture discarded")
			continue
		}

		telemetry.ObserveInput(telemetry.SourceButton, ev.String())
		if d.buttons.Publish(ev) {
			telemetry.ObserveSuperseded(telemetry.SourceButton)
			d.logger.Debug("pending button event superseded", "event", ev)
		}
	}
}

// control plays sessions back to back.
func (d *Dispatcher) control(ctx context.Context) error {
	for played := 0; d.maxSessions == 0 || played < d.maxSessions; played++ {
		res, err := d.playSession(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		d.finish(res)
	}
	return nil
}

// playSession runs one game until it is won or lost.
func (d *Dispatcher) playSession(ctx context.Context) (Result, error) {
	game, err := d.newGame()
	if err != nil {
		return Result{}, fmt.Errorf("dispatch: start game: %w", err)
	}

	// Input left over from the previous game never reaches the new board
	if d.rotations.Clear() {
		d.logger.Debug("stale rotation discarded")
	}
	if d.buttons.Clear() {
		d.logger.Debug("stale button event discarded")
	}

	id := uuid.NewString()
	started := d.now()
	d.logger.Info("session started", "session", id)

	for {
		if err := d.render(game); err != nil {
			return Result{}, err
		}

		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()

		case dir := <-d.rotations.C():
			status, err := d.applyRotation(game, dir)
			if err != nil {
				return Result{}, err
			}
			if status.Terminal() {
				if err := d.render(game); err != nil {
					return Result{}, err
				}
				return d.result(id, game, started), nil
			}

		case ev := <-d.buttons.C():
			// Press and Hold both rotate the board
			d.logger.Debug("button event, rotating", "event", ev)
			game.Rotate()
		}
	}
}

// applyRotation moves the board, checks for the end of the game and
// otherwise spawns the next tile.
func (d *Dispatcher) applyRotation(game *t2048.Game, dir hid.Direction) (t2048.Status, error) {
	move := t2048.DirLeft
	if dir == hid.Clockwise {
		move = t2048.DirRight
	}
	game.Move(move)
	d.logger.Debug("rotary move", "direction", dir, "move", move)

	status := game.CheckWinLoss()
	if status.Terminal() {
		return status, nil
	}

	if err := game.SpawnTile(); err != nil {
		return status, fmt.Errorf("dispatch: spawn tile: %w", err)
	}
	return status, nil
}

func (d *Dispatcher) render(game *t2048.Game) error {
	if err := d.renderer.RenderGrid(game.Board()); err != nil {
		telemetry.ObserveRenderError()
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return nil
}

func (d *Dispatcher) result(id string, game *t2048.Game, started time.Time) Result {
	snap := game.Snapshot()
	return Result{
		ID:        id,
		Status:    snap.Status,
		Board:     snap.Board,
		MaxTile:   snap.MaxTile,
		Moves:     snap.Moves,
		Rotations: snap.Rotations,
		Seed:      snap.Seed,
		StartedAt: started,
		Duration:  d.now().Sub(started),
	}
}

// finish reports a finished session to the logger, metrics, saver and hook.
func (d *Dispatcher) finish(res Result) {
	switch res.Status {
	case t2048.StatusWon:
		d.logger.Info("You won!", "session", res.ID, "moves", res.Moves, "duration", res.Duration)
	default:
		d.logger.Info("You lost!", "session", res.ID, "max_tile", res.MaxTile, "moves", res.Moves)
	}
	telemetry.ObserveSession(res.Status.String(), res.MaxTile)

	if d.saver != nil {
		if err := d.saver.SaveSessionResult(res); err != nil {
			// Best-effort save, play continues regardless
			d.logger.Warn("could not save session result", "session", res.ID, "error", err)
		}
	}

	if d.onResult != nil {
		d.onResult(res)
	}
}
