// Package solver finds placements that finish a domino board with a single
// empty cell. It backs the hint endpoint and the autoplay command.
package solver

import (
	"context"
	"errors"

	"github.com/wricardo/mcp-training/dominogame/game/engine"
)

// DefaultMaxNodes bounds the search on boards that cannot be won
const DefaultMaxNodes = 500_000

var (
	ErrNoSolution     = errors.New("no placement sequence leaves a single empty cell")
	ErrBudgetExceeded = errors.New("search budget exceeded")
	ErrNoPlacement    = errors.New("no domino fits on the board")
)

// Solution is a set of placements that ends the game in victory. The
// placements cover disjoint cells, so they can be played in any order.
type Solution struct {
	Placements []engine.Placement `json:"placements"`
	Hole       engine.Position    `json:"hole"`
	Nodes      int                `json:"nodes"`
}

// Hint is the next placement to play along with the labels that select it
type Hint struct {
	Placement engine.Placement `json:"placement"`
	Start     int              `json:"start"`
	End       int              `json:"end"`
	Winning   bool             `json:"winning"`   // part of a known winning line
	Remaining int              `json:"remaining"` // placements left on that line, 0 when not winning
}

// Solver runs a depth-first search with a node budget
type Solver struct {
	MaxNodes int
}

// New creates a solver with the default budget
func New() *Solver {
	return &Solver{MaxNodes: DefaultMaxNodes}
}

// Solve searches for placements that cover every empty cell but one
func (s *Solver) Solve(ctx context.Context, cells [][]engine.CellView) (*Solution, error) {
	size := len(cells)
	filled := make([]bool, size*size)
	empty := 0
	for row := range cells {
		for col, cell := range cells[row] {
			if cell.State == engine.Filled {
				filled[row*size+col] = true
			} else {
				empty++
			}
		}
	}
	if empty%engine.DominoLength != engine.VictoryEmptyCells%engine.DominoLength {
		return nil, ErrNoSolution
	}

	holeOK, ok := holeCandidates(filled, size)
	if !ok {
		return nil, ErrNoSolution
	}

	maxNodes := s.MaxNodes
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	srch := &search{
		ctx:      ctx,
		size:     size,
		filled:   filled,
		holeOK:   holeOK,
		hole:     -1,
		maxNodes: maxNodes,
	}

	if !srch.run(0) {
		if srch.err != nil {
			return nil, srch.err
		}
		return nil, ErrNoSolution
	}

	return &Solution{
		Placements: srch.path,
		Hole:       engine.Position{Row: srch.hole / size, Col: srch.hole % size},
		Nodes:      srch.nodes,
	}, nil
}

// Hint returns the first placement of a winning line, or any legal placement
// when the board cannot be won or the search runs out of budget
func (s *Solver) Hint(ctx context.Context, cells [][]engine.CellView) (*Hint, error) {
	size := len(cells)

	solution, err := s.Solve(ctx, cells)
	switch {
	case err == nil && len(solution.Placements) > 0:
		return newHint(solution.Placements[0], size, true, len(solution.Placements)), nil
	case err == nil, errors.Is(err, ErrNoSolution), errors.Is(err, ErrBudgetExceeded):
	default:
		return nil, err
	}

	p, ok := firstPlacement(cells)
	if !ok {
		return nil, ErrNoPlacement
	}
	return newHint(p, size, false, 0), nil
}

func newHint(p engine.Placement, size int, winning bool, remaining int) *Hint {
	start, end := p.Endpoints(size)
	return &Hint{Placement: p, Start: start, End: end, Winning: winning, Remaining: remaining}
}

// firstPlacement finds the first legal domino in row-major order
func firstPlacement(cells [][]engine.CellView) (engine.Placement, bool) {
	size := len(cells)
	empty := func(row, col int) bool {
		return row >= 0 && row < size && col >= 0 && col < size && cells[row][col].State != engine.Filled
	}

	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			if !empty(row, col) {
				continue
			}
			if empty(row, col-1) && empty(row, col+1) {
				return engine.Placement{Orientation: engine.Horizontal, Center: engine.Position{Row: row, Col: col}}, true
			}
			if empty(row-1, col) && empty(row+1, col) {
				return engine.Placement{Orientation: engine.Vertical, Center: engine.Position{Row: row, Col: col}}, true
			}
		}
	}
	return engine.Placement{}, false
}

// HoleCandidates lists the empty cells that can be the last one standing.
// It returns nil when no single hole can balance the board.
func HoleCandidates(cells [][]engine.CellView) []engine.Position {
	size := len(cells)
	filled := make([]bool, size*size)
	for row := range cells {
		for col, cell := range cells[row] {
			filled[row*size+col] = cell.State == engine.Filled
		}
	}

	holeOK, ok := holeCandidates(filled, size)
	if !ok {
		return nil
	}
	var holes []engine.Position
	for i, candidate := range holeOK {
		if candidate {
			holes = append(holes, engine.Position{Row: i / size, Col: i % size})
		}
	}
	return holes
}

// holeCandidates colors the board by (row+col) mod 3 and (row-col) mod 3.
// Every domino covers one cell of each color in both colorings, so the cell
// left over must carry the color that has one cell more than the others.
func holeCandidates(filled []bool, size int) ([]bool, bool) {
	var diag, anti [3]int
	for i, f := range filled {
		if f {
			continue
		}
		row, col := i/size, i%size
		diag[(row+col)%3]++
		anti[((row-col)%3+3)%3]++
	}

	diagColor, ok := excessColor(diag)
	if !ok {
		return nil, false
	}
	antiColor, ok := excessColor(anti)
	if !ok {
		return nil, false
	}

	holeOK := make([]bool, len(filled))
	for i, f := range filled {
		row, col := i/size, i%size
		holeOK[i] = !f && (row+col)%3 == diagColor && ((row-col)%3+3)%3 == antiColor
	}
	return holeOK, true
}

// excessColor returns the color with one more cell than the other two, which must be equal
func excessColor(counts [3]int) (int, bool) {
	for c := 0; c < 3; c++ {
		a, b := counts[(c+1)%3], counts[(c+2)%3]
		if a == b && counts[c] == a+1 {
			return c, true
		}
	}
	return 0, false
}

type search struct {
	ctx      context.Context
	size     int
	filled   []bool
	holeOK   []bool
	hole     int
	path     []engine.Placement
	nodes    int
	maxNodes int
	err      error
}

// run covers the first open cell at or after from: as the left end of a
// horizontal domino, the top end of a vertical one, or as the hole
func (s *search) run(from int) bool {
	s.nodes++
	if s.nodes > s.maxNodes {
		s.err = ErrBudgetExceeded
		return false
	}
	if s.nodes%1024 == 0 {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return false
		}
	}

	i := from
	for i < len(s.filled) && s.filled[i] {
		i++
	}
	if i == len(s.filled) {
		return s.hole >= 0
	}
	row, col := i/s.size, i%s.size

	if col+2 < s.size && !s.filled[i+1] && !s.filled[i+2] {
		if s.try(engine.Horizontal, engine.Position{Row: row, Col: col + 1}, i, i+1, i+2) {
			return true
		}
		if s.err != nil {
			return false
		}
	}

	if row+2 < s.size && !s.filled[i+s.size] && !s.filled[i+2*s.size] {
		if s.try(engine.Vertical, engine.Position{Row: row + 1, Col: col}, i, i+s.size, i+2*s.size) {
			return true
		}
		if s.err != nil {
			return false
		}
	}

	if s.hole < 0 && s.holeOK[i] {
		s.hole = i
		s.filled[i] = true
		if s.run(i + 1) {
			return true
		}
		s.filled[i] = false
		s.hole = -1
	}

	return false
}

func (s *search) try(o engine.Orientation, center engine.Position, cells ...int) bool {
	for _, c := range cells {
		s.filled[c] = true
	}
	s.path = append(s.path, engine.Placement{Orientation: o, Center: center})

	if s.run(cells[0] + 1) {
		return true
	}

	s.path = s.path[:len(s.path)-1]
	for _, c := range cells {
		s.filled[c] = false
	}
	return false
}
