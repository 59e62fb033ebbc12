// Package t2048 implements the 2048 board engine: sliding with merges,
// quarter-turn rotation, deterministic tile spawning and win/loss detection.
package t2048

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// maxSpawnAttempts bounds the number of derived cells tried by SpawnTile.
const maxSpawnAttempts = 1024

// spawnValue is the value of every spawned tile.
const spawnValue = 2

// ErrBoardFull is matched by every BoardFullError.
var ErrBoardFull = errors.New("t2048: no empty cell to spawn into")

// BoardFullError is returned by SpawnTile when no tile could be placed.
type BoardFullError struct {
	Attempts int // Derived cells tried before giving up (0 if the board was already full)
}

func (e *BoardFullError) Error() string {
	return fmt.Sprintf("%v after %d attempts", ErrBoardFull, e.Attempts)
}

// Is reports whether target is ErrBoardFull.
func (e *BoardFullError) Is(target error) bool {
	return target == ErrBoardFull
}

// Game owns one board and the seed accumulated from its spawn history.
// It is not safe for concurrent use.
type Game struct {
	board     Board
	seed      uint64
	moves     int
	rotations int
}

// New creates an empty game: all cells zero, seed zero.
func New() *Game {
	return &Game{}
}

// Reset clears the board, seed and counters.
func (g *Game) Reset() {
	*g = Game{}
}

// Start resets the game and spawns the two opening tiles.
func (g *Game) Start() error {
	g.Reset()
	for range 2 {
		if err := g.SpawnTile(); err != nil {
			return err
		}
	}
	return nil
}

// Board returns a copy of the current board.
func (g *Game) Board() Board {
	return g.board
}

// SetBoard replaces the board. The seed is left untouched.
func (g *Game) SetBoard(b Board) {
	g.board = b
}

// Seed returns the accumulated spawn seed.
func (g *Game) Seed() uint64 {
	return g.seed
}

// Moves returns how many moves were applied since the last reset.
func (g *Game) Moves() int {
	return g.moves
}

// Rotations returns how many rotations were applied since the last reset.
func (g *Game) Rotations() int {
	return g.rotations
}

// SpawnTile advances the seed by the current board sum and places a 2 in the
// first empty cell derived from the new seed.
// Returns a *BoardFullError and leaves the board unchanged if no cell is free.
func (g *Game) SpawnTile() error {
	if !HasEmptyCell(g.board) {
		return &BoardFullError{}
	}

	g.seed += Sum(g.board)

	rng := newSpawnRand(g.seed)
	for range maxSpawnAttempts {
		y := rng.IntN(BoardSize)
		x := rng.IntN(BoardSize)
		if g.board[y][x] == 0 {
			g.board[y][x] = spawnValue
			return nil
		}
	}

	return &BoardFullError{Attempts: maxSpawnAttempts}
}

// newSpawnRand returns the PRNG used to derive spawn cells from a seed.
func newSpawnRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Move slides every row toward the given edge.
func (g *Game) Move(dir Direction) {
	g.board = Slide(g.board, dir)
	g.moves++
}

// Rotate turns the board a quarter turn (see Rotate).
func (g *Game) Rotate() {
	g.board = Rotate(g.board)
	g.rotations++
}

// CheckWinLoss reports whether the game is won, lost or still in progress.
func (g *Game) CheckWinLoss() Status {
	return CheckWinLoss(g.board)
}
