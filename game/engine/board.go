package engine

import (
	"errors"
	"fmt"
	"maps"
	"math/rand/v2"
	"time"
)

var (
	ErrUnknownLabel       = errors.New("label is not in the current empty-cell snapshot")
	ErrNotTwoApart        = errors.New("endpoints are not two cells apart")
	ErrNotAligned         = errors.New("endpoints are not aligned with the orientation")
	ErrNoRoom             = errors.New("no room for a domino")
	ErrOutOfBounds        = errors.New("position is outside the board")
	ErrCellFilled         = errors.New("cell is already filled")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidState       = errors.New("invalid board state")
)

// Board owns the grid of cells and enforces the placement rules.
// It is not safe for concurrent use.
type Board struct {
	size        int
	grid        [][]*Cell
	emptyCells  int
	orientation Orientation

	// candidates is the label snapshot Place resolves against
	candidates map[int]Position

	startTime time.Time
	endTime   time.Time
	terminal  bool

	now      func() time.Time
	observer Observer
}

// BoardOption customizes a new Board
type BoardOption func(*boardOptions)

type boardOptions struct {
	rng         *rand.Rand
	now         func() time.Time
	observer    Observer
	orientation Orientation
}

// WithRand sets the source used to roll cell pips
func WithRand(r *rand.Rand) BoardOption {
	return func(o *boardOptions) { o.rng = r }
}

// WithSeed rolls pips from a PCG source seeded with seed
func WithSeed(seed uint64) BoardOption {
	return WithRand(rand.New(rand.NewPCG(seed, seed)))
}

// WithClock replaces time.Now for the start and end timestamps
func WithClock(now func() time.Time) BoardOption {
	return func(o *boardOptions) { o.now = now }
}

// WithObserver attaches an observability hook
func WithObserver(observer Observer) BoardOption {
	return func(o *boardOptions) { o.observer = observer }
}

// WithOrientation sets the initial orientation
func WithOrientation(orientation Orientation) BoardOption {
	return func(o *boardOptions) { o.orientation = orientation }
}

func collectOptions(opts []BoardOption) boardOptions {
	o := boardOptions{
		now:         time.Now,
		observer:    NopObserver{},
		orientation: Horizontal,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.observer == nil {
		o.observer = NopObserver{}
	}
	if o.orientation != Vertical {
		o.orientation = Horizontal
	}
	return o
}

// NewBoard creates an empty BoardSize x BoardSize board and starts its clock
func NewBoard(opts ...BoardOption) *Board {
	o := collectOptions(opts)
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}

	b := &Board{
		size:        BoardSize,
		grid:        make([][]*Cell, BoardSize),
		emptyCells:  BoardSize * BoardSize,
		orientation: o.orientation,
		startTime:   o.now(),
		now:         o.now,
		observer:    o.observer,
	}
	for row := range b.grid {
		b.grid[row] = make([]*Cell, b.size)
		for col := range b.grid[row] {
			b.grid[row][col] = newCell(row, col, o.rng.IntN(MaxPips-MinPips+1)+MinPips)
		}
	}

	b.observer.BoardCreated(b.size)
	return b
}

// RestoreBoard rebuilds a board from a persisted game state. The label
// snapshot is not restored; callers must take a new one.
func RestoreBoard(state *GameState, opts ...BoardOption) (*Board, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: state cannot be nil", ErrInvalidState)
	}
	if len(state.Grid) != BoardSize {
		return nil, fmt.Errorf("%w: grid must have %d rows, got %d", ErrInvalidState, BoardSize, len(state.Grid))
	}

	o := collectOptions(opts)
	orientation := state.Orientation
	if orientation == "" {
		orientation = o.orientation
	}
	if orientation != Horizontal && orientation != Vertical {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrientation, orientation)
	}

	b := &Board{
		size:        BoardSize,
		grid:        make([][]*Cell, BoardSize),
		orientation: orientation,
		startTime:   state.StartedAt,
		endTime:     state.EndedAt,
		terminal:    !state.EndedAt.IsZero(),
		now:         o.now,
		observer:    o.observer,
	}

	for row, cells := range state.Grid {
		if len(cells) != BoardSize {
			return nil, fmt.Errorf("%w: row %d must have %d cells, got %d", ErrInvalidState, row, BoardSize, len(cells))
		}
		b.grid[row] = make([]*Cell, b.size)
		for col, view := range cells {
			if view.Row != row || view.Col != col {
				return nil, fmt.Errorf("%w: cell at (%d,%d) claims position (%d,%d)", ErrInvalidState, row, col, view.Row, view.Col)
			}
			if view.Pips < MinPips || view.Pips > MaxPips {
				return nil, fmt.Errorf("%w: cell (%d,%d) has %d pips", ErrInvalidState, row, col, view.Pips)
			}
			cell := newCell(row, col, view.Pips)
			switch view.State {
			case Empty:
				b.emptyCells++
			case Filled:
				cell.state = Filled
			default:
				return nil, fmt.Errorf("%w: cell (%d,%d) has state %q", ErrInvalidState, row, col, view.State)
			}
			b.grid[row][col] = cell
		}
	}

	if (b.size*b.size-b.emptyCells)%DominoLength != 0 {
		return nil, fmt.Errorf("%w: %d filled cells do not form whole dominoes", ErrInvalidState, b.size*b.size-b.emptyCells)
	}

	return b, nil
}

// Size returns the width and height of the board
func (b *Board) Size() int {
	return b.size
}

// EmptyCellCount returns the number of cells not covered by a domino
func (b *Board) EmptyCellCount() int {
	return b.emptyCells
}

// Orientation returns the orientation used by the next Place call
func (b *Board) Orientation() Orientation {
	return b.orientation
}

// SetOrientation selects the orientation for the next Place call
func (b *Board) SetOrientation(o Orientation) error {
	if o != Horizontal && o != Vertical {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, o)
	}
	b.orientation = o
	return nil
}

// StartedAt returns the time the board was created
func (b *Board) StartedAt() time.Time {
	return b.startTime
}

// EndedAt returns the most recent time IsTerminal evaluated to true, or the zero time
func (b *Board) EndedAt() time.Time {
	return b.endTime
}

func (b *Board) inBounds(row, col int) bool {
	return row >= 0 && row < b.size && col >= 0 && col < b.size
}

func (b *Board) emptyAt(row, col int) bool {
	return b.inBounds(row, col) && b.grid[row][col].IsEmpty()
}

// IsVictory reports whether exactly one cell is left empty
func (b *Board) IsVictory() bool {
	return b.emptyCells == VictoryEmptyCells
}

// IsTerminal reports whether no domino fits anywhere on the board in either
// orientation. Each true evaluation records the end time.
func (b *Board) IsTerminal() bool {
	for row := range b.grid {
		for col, cell := range b.grid[row] {
			if cell.IsEmpty() && (b.HasHorizontalRoom(row, col) || b.HasVerticalRoom(row, col)) {
				return false
			}
		}
	}

	b.endTime = b.now()
	if !b.terminal {
		b.terminal = true
		b.observer.Terminal(b.IsVictory(), b.emptyCells)
	}
	return true
}

// HasHorizontalRoom reports whether the left and right neighbors of (row, col) are empty.
// Cells in the first and last column never have room.
func (b *Board) HasHorizontalRoom(row, col int) bool {
	if !b.inBounds(row, col) || col == 0 || col == b.size-1 {
		return false
	}
	return b.grid[row][col-1].IsEmpty() && b.grid[row][col+1].IsEmpty()
}

// HasVerticalRoom reports whether the neighbors above and below (row, col) are empty.
// Cells in the first and last row never have room.
func (b *Board) HasVerticalRoom(row, col int) bool {
	if !b.inBounds(row, col) || row == 0 || row == b.size-1 {
		return false
	}
	return b.grid[row-1][col].IsEmpty() && b.grid[row+1][col].IsEmpty()
}

// PlaceHorizontal fills (row, col) and its left and right neighbors.
// It fails without touching the board when any of the three cells is outside
// the grid or already filled.
func (b *Board) PlaceHorizontal(row, col int) error {
	return b.place(Placement{Orientation: Horizontal, Center: Position{Row: row, Col: col}})
}

// PlaceVertical fills (row, col) and its neighbors above and below.
// It fails without touching the board when any of the three cells is outside
// the grid or already filled.
func (b *Board) PlaceVertical(row, col int) error {
	return b.place(Placement{Orientation: Vertical, Center: Position{Row: row, Col: col}})
}

func (b *Board) place(p Placement) error {
	cells := p.Cells()
	for _, pos := range cells {
		if !b.inBounds(pos.Row, pos.Col) {
			return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, pos.Row, pos.Col)
		}
		if !b.grid[pos.Row][pos.Col].IsEmpty() {
			return fmt.Errorf("%w: (%d,%d)", ErrCellFilled, pos.Row, pos.Col)
		}
	}

	for _, pos := range cells {
		b.grid[pos.Row][pos.Col].state = Filled
		delete(b.candidates, pos.Label(b.size))
	}
	b.emptyCells -= DominoLength

	b.observer.Placed(p, b.emptyCells)
	return nil
}

// SnapshotEmptyCells labels every empty cell with row*size+col and makes that
// mapping the one Place resolves labels against.
func (b *Board) SnapshotEmptyCells() map[int]Position {
	snapshot := make(map[int]Position, b.emptyCells)
	for row := range b.grid {
		for _, cell := range b.grid[row] {
			if cell.IsEmpty() {
				pos := cell.Position()
				snapshot[pos.Label(b.size)] = pos
			}
		}
	}
	b.candidates = snapshot
	return maps.Clone(snapshot)
}

// Place lays a domino between the cells labeled start and end using the
// current orientation. The labels must come from the latest snapshot and be
// the two ends of the domino; the middle cell is derived. A rejected
// placement leaves the board unchanged and reports why.
func (b *Board) Place(start, end int) (Placement, error) {
	from, okFrom := b.candidates[start]
	to, okTo := b.candidates[end]
	if !okFrom || !okTo {
		return Placement{}, b.reject(start, end, fmt.Errorf("%w: %d,%d", ErrUnknownLabel, start, end))
	}

	if abs((from.Row+from.Col)-(to.Row+to.Col)) != DominoLength-1 {
		return Placement{}, b.reject(start, end, ErrNotTwoApart)
	}

	var p Placement
	switch b.orientation {
	case Horizontal:
		if from.Row != to.Row {
			return Placement{}, b.reject(start, end, ErrNotAligned)
		}
		p = Placement{Orientation: Horizontal, Center: Position{Row: from.Row, Col: min(from.Col, to.Col) + 1}}
		if !b.HasHorizontalRoom(p.Center.Row, p.Center.Col) {
			return Placement{}, b.reject(start, end, ErrNoRoom)
		}
	case Vertical:
		if from.Col != to.Col {
			return Placement{}, b.reject(start, end, ErrNotAligned)
		}
		p = Placement{Orientation: Vertical, Center: Position{Row: min(from.Row, to.Row) + 1, Col: from.Col}}
		if !b.HasVerticalRoom(p.Center.Row, p.Center.Col) {
			return Placement{}, b.reject(start, end, ErrNoRoom)
		}
	default:
		return Placement{}, b.reject(start, end, ErrInvalidOrientation)
	}

	if err := b.place(p); err != nil {
		return Placement{}, b.reject(start, end, err)
	}
	return p, nil
}

// IsPlaceable places a domino between start and end if the move is legal and
// reports whether it did
func (b *Board) IsPlaceable(start, end int) bool {
	_, err := b.Place(start, end)
	return err == nil
}

func (b *Board) reject(start, end int, err error) error {
	b.observer.Rejected(start, end, err)
	return err
}

// CellAt returns the cell at (row, col)
func (b *Board) CellAt(row, col int) (*Cell, error) {
	if !b.inBounds(row, col) {
		return nil, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, row, col)
	}
	return b.grid[row][col], nil
}

// PositionOf returns the coordinates of cell if it belongs to this board
func (b *Board) PositionOf(cell *Cell) (Position, bool) {
	if cell == nil || !b.inBounds(cell.row, cell.col) || b.grid[cell.row][cell.col] != cell {
		return Position{}, false
	}
	return cell.Position(), true
}

// Cells returns a copy of the grid for renderers
func (b *Board) Cells() [][]CellView {
	views := make([][]CellView, b.size)
	for row := range b.grid {
		views[row] = make([]CellView, b.size)
		for col, cell := range b.grid[row] {
			views[row][col] = cell.View()
		}
	}
	return views
}

// PossiblePlacements lists every legal domino on the board in row-major order
func (b *Board) PossiblePlacements() []Placement {
	var placements []Placement
	for row := range b.grid {
		for col, cell := range b.grid[row] {
			if !cell.IsEmpty() {
				continue
			}
			if b.HasHorizontalRoom(row, col) {
				placements = append(placements, Placement{Orientation: Horizontal, Center: Position{Row: row, Col: col}})
			}
			if b.HasVerticalRoom(row, col) {
				placements = append(placements, Placement{Orientation: Vertical, Center: Position{Row: row, Col: col}})
			}
		}
	}
	return placements
}

// ElapsedSeconds returns the score: whole seconds between the start and the
// last terminal evaluation, or 0 while the game is still open
func (b *Board) ElapsedSeconds() int64 {
	if b.endTime.IsZero() {
		return 0
	}
	return int64(b.endTime.Sub(b.startTime) / time.Second)
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
