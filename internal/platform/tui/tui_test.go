package tui

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/rotary2048/internal/dispatch"
	"github.com/vovakirdan/rotary2048/internal/games/t2048"
	"github.com/vovakirdan/rotary2048/internal/hid"
	"github.com/vovakirdan/rotary2048/internal/storage"
)

var sample = t2048.Board{
	{2, 4, 0, 0},
	{0, 2048, 0, 0},
	{0, 0, 16, 0},
	{0, 0, 0, 128},
}

func TestPlainBoard(t *testing.T) {
	out := PlainBoard(sample)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	require.Len(t, lines, 2*t2048.BoardSize+1)
	require.Equal(t, "┌──────┬──────┬──────┬──────┐", lines[0])
	require.Equal(t, "│   2  │   4  │      │      │", lines[1])
	require.Equal(t, "│      │ 2048 │      │      │", lines[3])
	require.Equal(t, "└──────┴──────┴──────┴──────┘", lines[len(lines)-1])
}

func TestRenderBoardShowsTiles(t *testing.T) {
	out := RenderBoard(sample)
	for _, want := range []string{"2048", "128", "16", "4"} {
		require.Contains(t, out, want)
	}
}

func TestFrameRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewFrameRenderer(&buf, false)

	require.NoError(t, r.RenderGrid(sample))
	require.NoError(t, r.RenderGrid(t2048.Board{}))

	require.Equal(t, 2, r.Frames())
	out := buf.String()
	require.Contains(t, out, "frame 1 (max 2048)")
	require.Contains(t, out, "frame 2 (max 0)")
	require.NotContains(t, out, clearScreen)
}

func TestFrameRendererStyledClears(t *testing.T) {
	var buf bytes.Buffer
	r := NewFrameRenderer(&buf, true)

	require.NoError(t, r.RenderGrid(sample))
	require.True(t, strings.HasPrefix(buf.String(), clearScreen))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestFrameRendererWriteError(t *testing.T) {
	r := NewFrameRenderer(failingWriter{}, false)
	require.ErrorContains(t, r.RenderGrid(sample), "broken pipe")
}

func TestRigTurnDecodes(t *testing.T) {
	tests := []struct {
		name string
		dir  hid.Direction
	}{
		{"clockwise", hid.Clockwise},
		{"counter-clockwise", hid.CounterClockwise},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			rig := NewRig(30 * time.Millisecond)
			defer rig.Close()
			knob := rig.Knob()

			// Two detents: rest (0,0) -> (1,1) -> (0,0)
			for range 2 {
				rig.Turn(tt.dir)

				_, ok, err := knob.WaitForChange(ctx)
				require.NoError(t, err)
				require.False(t, ok, "half-step is not a detent")

				dir, ok, err := knob.WaitForChange(ctx)
				require.NoError(t, err)
				require.True(t, ok)
				require.Equal(t, tt.dir, dir)
			}
		})
	}
}

func TestRigTurnsKeepOrder(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	rig := NewRig(30 * time.Millisecond)
	defer rig.Close()
	knob := rig.Knob()

	want := []hid.Direction{hid.Clockwise, hid.CounterClockwise, hid.CounterClockwise, hid.Clockwise, hid.CounterClockwise}
	for _, dir := range want {
		rig.Turn(dir)
	}

	var got []hid.Direction
	for len(got) < len(want) {
		dir, ok, err := knob.WaitForChange(ctx)
		require.NoError(t, err)
		if ok {
			got = append(got, dir)
		}
	}
	require.Equal(t, want, got)
}

func TestRigPressClassifies(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	th := hid.Thresholds{PressMin: 10 * time.Millisecond, HoldAfter: 50 * time.Millisecond}
	rig := NewRig(time.Millisecond)
	defer rig.Close()
	button := rig.PushButton(th)

	rig.Press(20 * time.Millisecond)
	ev, ok, err := button.WaitForEvent(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, hid.Press, ev)

	rig.Press(80 * time.Millisecond)
	ev, ok, err = button.WaitForEvent(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, hid.Hold, ev)
}

func TestSimModelMessages(t *testing.T) {
	rig := NewRig(time.Millisecond)
	defer rig.Close()
	m := NewSimModel(rig, 100*time.Millisecond, 600*time.Millisecond)

	next, _ := m.Update(BoardMsg(sample))
	m = next.(SimModel)
	require.Equal(t, sample, m.Board())
	require.Contains(t, m.View(), "2048")

	next, _ = m.Update(ResultMsg(dispatch.Result{Status: t2048.StatusLost, MaxTile: 256, Moves: 40}))
	m = next.(SimModel)
	require.Equal(t, 1, m.losses)
	require.Contains(t, m.View(), "You lost!")

	boom := errors.New("render failed")
	next, cmd := m.Update(DoneMsg{Err: boom})
	m = next.(SimModel)
	require.ErrorIs(t, m.Err(), boom)
	require.NotNil(t, cmd)
	require.Equal(t, tea.Quit(), cmd())
}

func TestSimModelKeysDriveRig(t *testing.T) {
	rig := NewRig(time.Millisecond)
	defer rig.Close()
	m := NewSimModel(rig, 100*time.Millisecond, 600*time.Millisecond)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = next.(SimModel)
	require.Nil(t, cmd)
	require.False(t, rig.Button.IsHigh(), "press pulls the button low")

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(SimModel)
	require.Nil(t, cmd)
	require.Eventually(t, func() bool {
		return rig.A.IsHigh() && rig.B.IsHigh()
	}, time.Second, time.Millisecond, "one detent toggles both lines")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.Equal(t, tea.Quit(), cmd())
}

func TestHistoryModel(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()

	m := NewHistoryModel(store, 100, 30)
	require.Contains(t, m.View(), "No sessions recorded yet.")

	now := time.Now()
	for i, tile := range []uint16{128, 2048, 512} {
		_, err := store.SaveSession(dispatch.Result{
			ID:        string(rune('a' + i)),
			Status:    t2048.StatusLost,
			MaxTile:   tile,
			Moves:     10 * (i + 1),
			StartedAt: now.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	m = NewHistoryModel(store, 100, 30)
	require.Len(t, m.sessions, 3)
	require.Equal(t, 512, m.sessions[0].MaxTile, "recent view is newest first")
	require.Contains(t, m.View(), "3 sessions")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(HistoryModel)
	require.Equal(t, HistoryBest, m.view)
	require.Equal(t, 2048, m.sessions[0].MaxTile)
}
