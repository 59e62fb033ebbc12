// Package tui renders boards for the terminal and runs the Bubble Tea
// simulator and history screens.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/rotary2048/internal/games/t2048"
)

const cellWidth = 6 // Inner width of a tile

// tileStyles maps tile values to lipgloss styles.
var tileStyles = map[uint16]lipgloss.Style{
	0:    tileStyle("237", "240"),
	2:    tileStyle("254", "236"),
	4:    tileStyle("223", "236"),
	8:    tileStyle("215", "231"),
	16:   tileStyle("209", "231"),
	32:   tileStyle("203", "231"),
	64:   tileStyle("196", "231"),
	128:  tileStyle("228", "236"),
	256:  tileStyle("227", "236"),
	512:  tileStyle("226", "236"),
	1024: tileStyle("220", "236"),
	2048: tileStyle("214", "231").Bold(true),
}

func tileStyle(bg, fg string) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(cellWidth).
		Align(lipgloss.Center).
		Background(lipgloss.Color(bg)).
		Foreground(lipgloss.Color(fg))
}

var boardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240"))

// RenderBoard draws the board as colored tiles.
func RenderBoard(b t2048.Board) string {
	rows := make([]string, 0, t2048.BoardSize)
	for _, row := range b {
		cells := make([]string, 0, t2048.BoardSize)
		for _, v := range row {
			style, ok := tileStyles[v]
			if !ok {
				style = tileStyles[2048]
			}
			label := ""
			if v != 0 {
				label = strconv.Itoa(int(v))
			}
			// Three lines per tile keep the grid roughly square
			cells = append(cells, style.Render("\n"+label+"\n"))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return boardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// PlainBoard draws the board with box-drawing characters and no color.
func PlainBoard(b t2048.Board) string {
	var sb strings.Builder
	line := func(left, mid, right string) {
		sb.WriteString(left)
		for x := range t2048.BoardSize {
			if x > 0 {
				sb.WriteString(mid)
			}
			sb.WriteString(strings.Repeat("─", cellWidth))
		}
		sb.WriteString(right)
		sb.WriteByte('\n')
	}

	line("┌", "┬", "┐")
	for y, row := range b {
		if y > 0 {
			line("├", "┼", "┤")
		}
		sb.WriteString("│")
		for _, v := range row {
			label := ""
			if v != 0 {
				label = strconv.Itoa(int(v))
			}
			fmt.Fprintf(&sb, "%*s│", cellWidth, centerIn(label, cellWidth))
		}
		sb.WriteByte('\n')
	}
	line("└", "┴", "┘")
	return sb.String()
}

// centerIn pads s on the right so that right-aligning it to width centers it.
func centerIn(s string, width int) string {
	pad := (width - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return s + strings.Repeat(" ", pad)
}

// centerText centers text within the given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	return strings.Repeat(" ", (width-w)/2) + text
}
