package engine

import (
	"sort"
	"strconv"
	"strings"
)

// FilledGlyph marks a covered cell in the text rendering
const FilledGlyph = '#'

// Rows renders the board one string per row: the pip count for an empty cell
// and FilledGlyph for a covered one, separated by spaces
func (b *Board) Rows() []string {
	rows := make([]string, b.size)
	for row := range b.grid {
		var sb strings.Builder
		for col, cell := range b.grid[row] {
			if col > 0 {
				sb.WriteByte(' ')
			}
			if cell.IsEmpty() {
				sb.WriteString(strconv.Itoa(cell.Pips()))
			} else {
				sb.WriteByte(FilledGlyph)
			}
		}
		rows[row] = sb.String()
	}
	return rows
}

func (b *Board) String() string {
	return strings.Join(b.Rows(), "\n")
}

// Candidates returns the current label snapshot ordered by label.
// It is empty until SnapshotEmptyCells has been called.
func (b *Board) Candidates() []LabeledCell {
	cells := make([]LabeledCell, 0, len(b.candidates))
	for label, pos := range b.candidates {
		cells = append(cells, LabeledCell{Label: label, Row: pos.Row, Col: pos.Col})
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Label < cells[j].Label })
	return cells
}
