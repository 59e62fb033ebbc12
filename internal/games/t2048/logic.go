package t2048

// Direction represents a move direction.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
)

// String returns a human-readable name for the direction.
func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// BoardSize is the fixed board dimension.
const BoardSize = 4

// WinTile is the tile value that ends the game with a win.
const WinTile = 2048

// Row is a single board row.
type Row [BoardSize]uint16

// Board represents a 4x4 game board. Zero is an empty cell.
type Board [BoardSize]Row

// Status is the outcome of a win/loss check.
type Status int

const (
	StatusInProgress Status = iota
	StatusWon
	StatusLost
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "in_progress"
	case StatusWon:
		return "won"
	case StatusLost:
		return "lost"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status ends the session.
func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusLost
}

// nextValueIndex returns the index of the first non-zero cell at or after from, or -1.
func nextValueIndex(row *Row, from int) int {
	for i := from; i < BoardSize; i++ {
		if row[i] != 0 {
			return i
		}
	}
	return -1
}

// squashRow compacts a row toward index 0 and merges equal neighbours.
//
// The cursor only advances past a cell after it has either merged or met an
// unequal value, so a merged tile never merges again within the same move.
func squashRow(row Row) Row {
	cursor := 0
	for {
		next := nextValueIndex(&row, cursor+1)
		if next < 0 {
			return row
		}

		if row[cursor] == 0 {
			// Slide into the empty cursor cell and re-scan from the same cursor
			row[cursor] = row[next]
			row[next] = 0
			continue
		}

		if row[cursor] == row[next] {
			row[cursor] *= 2
			row[next] = 0
		}

		cursor++
	}
}

// reverseRow reverses a row.
func reverseRow(row Row) Row {
	var result Row
	for i := range BoardSize {
		result[i] = row[BoardSize-1-i]
	}
	return result
}

// SlideLeft slides all tiles left and merges.
func SlideLeft(board Board) Board {
	var result Board
	for y := range BoardSize {
		result[y] = squashRow(board[y])
	}
	return result
}

// SlideRight slides all tiles right and merges.
func SlideRight(board Board) Board {
	var result Board
	for y := range BoardSize {
		// Reverse, squash, reverse back
		result[y] = reverseRow(squashRow(reverseRow(board[y])))
	}
	return result
}

// Slide performs a move in the given direction.
// Unknown directions return the board unchanged.
func Slide(board Board, dir Direction) Board {
	switch dir {
	case DirLeft:
		return SlideLeft(board)
	case DirRight:
		return SlideRight(board)
	default:
		return board
	}
}

// Rotate turns the board a quarter turn so that the rightmost column becomes
// the top row: new[j][3-i] = old[i][j].
func Rotate(board Board) Board {
	var result Board
	for i := range BoardSize {
		for j, v := range board[i] {
			result[j][BoardSize-1-i] = v
		}
	}
	return result
}

// CheckWinLoss scans the board once. A 2048 tile wins even on a full board.
func CheckWinLoss(board Board) Status {
	hasEmpty := false
	for y := range BoardSize {
		for _, v := range board[y] {
			if v == WinTile {
				return StatusWon
			}
			if v == 0 {
				hasEmpty = true
			}
		}
	}
	if hasEmpty {
		return StatusInProgress
	}
	return StatusLost
}

// HasEmptyCell returns true if there's at least one empty cell.
func HasEmptyCell(board Board) bool {
	for y := range BoardSize {
		for x := range BoardSize {
			if board[y][x] == 0 {
				return true
			}
		}
	}
	return false
}

// Sum returns the total of all tile values.
func Sum(board Board) uint64 {
	var total uint64
	for y := range BoardSize {
		for x := range BoardSize {
			total += uint64(board[y][x])
		}
	}
	return total
}

// MaxTile returns the maximum tile value on the board.
func MaxTile(board Board) uint16 {
	var maxVal uint16
	for y := range BoardSize {
		for x := range BoardSize {
			if board[y][x] > maxVal {
				maxVal = board[y][x]
			}
		}
	}
	return maxVal
}
