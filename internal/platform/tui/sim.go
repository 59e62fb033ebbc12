package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/rotary2048/internal/dispatch"
	"github.com/vovakirdan/rotary2048/internal/games/t2048"
	"github.com/vovakirdan/rotary2048/internal/hid"
)

// recentResults is how many finished sessions the simulator lists.
const recentResults = 5

// BoardMsg carries a frame rendered by the dispatcher.
type BoardMsg t2048.Board

// ResultMsg carries a finished session.
type ResultMsg dispatch.Result

// DoneMsg is sent when the dispatcher stops.
type DoneMsg struct {
	Err error
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	wonStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	lostStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// SimModel is the Bubble Tea model for the simulator. Keys drive the rig's
// virtual lines; the board only changes through BoardMsg.
type SimModel struct {
	rig      *Rig
	keys     SimKeyMap
	help     help.Model
	pressFor time.Duration
	holdFor  time.Duration
	board    t2048.Board
	frames   int
	results  []dispatch.Result
	wins     int
	losses   int
	status   string
	width    int
	quitting bool
	err      error
}

// NewSimModel creates a simulator model driving rig.
func NewSimModel(rig *Rig, pressFor, holdFor time.Duration) SimModel {
	h := help.New()
	h.ShowAll = false

	return SimModel{
		rig:      rig,
		keys:     DefaultSimKeyMap(),
		help:     h,
		pressFor: pressFor,
		holdFor:  holdFor,
		status:   "waiting for the first frame",
	}
}

// Init initializes the model.
func (m SimModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m SimModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case BoardMsg:
		m.board = t2048.Board(msg)
		m.frames++
		return m, nil

	case ResultMsg:
		res := dispatch.Result(msg)
		if res.Status == t2048.StatusWon {
			m.wins++
			m.status = wonStyle.Render("You won!") + " a new game has started"
		} else {
			m.losses++
			m.status = lostStyle.Render("You lost!") + fmt.Sprintf(" max tile %d, a new game has started", res.MaxTile)
		}
		m.results = append([]dispatch.Result{res}, m.results...)
		if len(m.results) > recentResults {
			m.results = m.results[:recentResults]
		}
		return m, nil

	case DoneMsg:
		m.err = msg.Err
		m.quitting = true
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	}

	return m, nil
}

func (m SimModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.TurnLeft):
		m.rig.Turn(hid.CounterClockwise)
		m.status = "turned counter-clockwise"
		return m, nil

	case key.Matches(msg, m.keys.TurnRight):
		m.rig.Turn(hid.Clockwise)
		m.status = "turned clockwise"
		return m, nil

	case key.Matches(msg, m.keys.Press):
		m.rig.Press(m.pressFor)
		m.status = fmt.Sprintf("pressed for %v", m.pressFor)
		return m, nil

	case key.Matches(msg, m.keys.Hold):
		m.rig.Press(m.holdFor)
		m.status = fmt.Sprintf("held for %v", m.holdFor)
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	return m, nil
}

// View renders the simulator.
func (m SimModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(centerText(titleStyle.Render("ROTARY 2048"), m.width))
	b.WriteString("\n\n")

	if m.frames == 0 {
		b.WriteString(centerText(statusStyle.Render("starting..."), m.width))
	} else {
		for _, line := range strings.Split(RenderBoard(m.board), "\n") {
			b.WriteString(centerText(line, m.width))
			b.WriteString("\n")
		}
		info := fmt.Sprintf("max %d  sum %d  frame %d", t2048.MaxTile(m.board), t2048.Sum(m.board), m.frames)
		b.WriteString(centerText(statusStyle.Render(info), m.width))
	}
	b.WriteString("\n\n")

	b.WriteString(centerText(m.status, m.width))
	b.WriteString("\n")

	if len(m.results) > 0 {
		b.WriteString("\n")
		b.WriteString(centerText(statusStyle.Render(fmt.Sprintf("won %d  lost %d", m.wins, m.losses)), m.width))
		b.WriteString("\n")
		for _, r := range m.results {
			line := fmt.Sprintf("%-4s max %-5d moves %-4d %s", r.Status, r.MaxTile, r.Moves, r.Duration.Round(time.Second))
			b.WriteString(centerText(statusStyle.Render(line), m.width))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// Board returns the last rendered board.
func (m SimModel) Board() t2048.Board {
	return m.board
}

// Err returns the error the dispatcher stopped with, if any.
func (m SimModel) Err() error {
	return m.err
}

// SimOptions configures RunSimulator.
type SimOptions struct {
	StepDelay     time.Duration
	PressDuration time.Duration
	HoldDuration  time.Duration
	Thresholds    hid.Thresholds
	Logger        *log.Logger
	Saver         dispatch.ResultSaver // Optional
}

// RunSimulator plays the game in the terminal with the same decoders and
// dispatcher used on hardware, fed by virtual lines.
func RunSimulator(ctx context.Context, opts SimOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	rig := NewRig(opts.StepDelay)
	defer rig.Close()

	p := tea.NewProgram(
		NewSimModel(rig, opts.PressDuration, opts.HoldDuration),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	renderer := dispatch.RendererFunc(func(b t2048.Board) error {
		p.Send(BoardMsg(b))
		return nil
	})

	dopts := []dispatch.Option{
		dispatch.WithLogger(logger),
		dispatch.WithOnResult(func(r dispatch.Result) {
			p.Send(ResultMsg(r))
		}),
	}
	if opts.Saver != nil {
		dopts = append(dopts, dispatch.WithResultSaver(opts.Saver))
	}
	d := dispatch.New(rig.Knob(), rig.PushButton(opts.Thresholds), renderer, dopts...)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		err := d.Run(runCtx)
		p.Send(DoneMsg{Err: err})
		runErr <- err
	}()

	_, err := p.Run()
	cancel()
	dispatchErr := <-runErr

	if err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return fmt.Errorf("tui: simulator: %w", err)
	}
	return dispatchErr
}
