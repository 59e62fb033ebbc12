package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/vovakirdan/rotary2048/internal/dispatch"
	"github.com/vovakirdan/rotary2048/internal/games/t2048"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\x1b[H\x1b[2J"

// FrameRenderer writes one frame per rendered board.
// Styled frames clear the terminal and use tile colors; plain frames are
// appended, which suits logs and pipes.
type FrameRenderer struct {
	mu     sync.Mutex
	w      io.Writer
	styled bool
	frames int
}

// NewFrameRenderer creates a renderer writing to w.
func NewFrameRenderer(w io.Writer, styled bool) *FrameRenderer {
	return &FrameRenderer{w: w, styled: styled}
}

// RenderGrid implements dispatch.Renderer.
func (r *FrameRenderer) RenderGrid(b t2048.Board) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frames++
	var err error
	if r.styled {
		_, err = fmt.Fprintf(r.w, "%s%s\nmax %d\n", clearScreen, RenderBoard(b), t2048.MaxTile(b))
	} else {
		_, err = fmt.Fprintf(r.w, "frame %d (max %d)\n%s", r.frames, t2048.MaxTile(b), PlainBoard(b))
	}
	return err
}

// Frames returns how many frames were written.
func (r *FrameRenderer) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Ensure FrameRenderer implements Renderer
var _ dispatch.Renderer = (*FrameRenderer)(nil)
