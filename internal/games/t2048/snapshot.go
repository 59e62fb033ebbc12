package t2048

// Snapshot captures the complete game state for rendering, history and tests.
type Snapshot struct {
	Board     Board
	Seed      uint64
	Moves     int
	Rotations int
	MaxTile   uint16 // Highest tile on board
	Sum       uint64
	Status    Status
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Board:     g.board,
		Seed:      g.seed,
		Moves:     g.moves,
		Rotations: g.rotations,
		MaxTile:   MaxTile(g.board),
		Sum:       Sum(g.board),
		Status:    CheckWinLoss(g.board),
	}
}
