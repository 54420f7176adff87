package engine

// Cell is a single square of the board. Its position and pips are fixed at
// creation; only the owning Board changes its state.
type Cell struct {
	state State
	row   int
	col   int
	pips  int
}

func newCell(row, col, pips int) *Cell {
	return &Cell{state: Empty, row: row, col: col, pips: pips}
}

// IsEmpty reports whether no domino covers the cell
func (c *Cell) IsEmpty() bool {
	return c.state == Empty
}

// State returns the occupancy of the cell
func (c *Cell) State() State {
	return c.state
}

func (c *Cell) Row() int {
	return c.row
}

func (c *Cell) Col() int {
	return c.col
}

// Position returns the cell coordinates
func (c *Cell) Position() Position {
	return Position{Row: c.row, Col: c.col}
}

// Pips returns the decorative dot count printed on the cell
func (c *Cell) Pips() int {
	return c.pips
}

// View returns a serializable copy of the cell
func (c *Cell) View() CellView {
	return CellView{Row: c.row, Col: c.col, State: c.state, Pips: c.pips}
}
