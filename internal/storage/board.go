package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vovakirdan/rotary2048/internal/games/t2048"
)

// formatBoard encodes a board row-major as comma-separated tile values.
func formatBoard(b t2048.Board) string {
	var sb strings.Builder
	for y, row := range b {
		for x, v := range row {
			if y > 0 || x > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatUint(uint64(v), 10))
		}
	}
	return sb.String()
}

// parseBoard decodes a board written by formatBoard.
func parseBoard(s string) (t2048.Board, error) {
	var b t2048.Board

	cells := strings.Split(s, ",")
	if len(cells) != t2048.BoardSize*t2048.BoardSize {
		return b, fmt.Errorf("board has %d cells, want %d", len(cells), t2048.BoardSize*t2048.BoardSize)
	}

	for i, cell := range cells {
		v, err := strconv.ParseUint(cell, 10, 16)
		if err != nil {
			return b, fmt.Errorf("board cell %d: %w", i, err)
		}
		b[i/t2048.BoardSize][i%t2048.BoardSize] = uint16(v)
	}
	return b, nil
}
