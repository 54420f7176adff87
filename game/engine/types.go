package engine

import "time"

// State represents the occupancy of a grid cell
type State string

const (
	Empty  State = "empty"
	Filled State = "filled"
)

// Orientation is the axis a domino is laid along
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

const (
	// BoardSize is the width and height of the board
	BoardSize = 8

	// DominoLength is the number of cells a single domino covers
	DominoLength = 3

	// Pip range printed on each cell
	MinPips = 1
	MaxPips = 6

	// VictoryEmptyCells is the number of cells left empty by a winning game
	VictoryEmptyCells = 1

	// MaxDominoes is the number of dominoes a winning game places
	MaxDominoes = (BoardSize*BoardSize - VictoryEmptyCells) / DominoLength

	// Validation constants
	MaxBulkPlacements = MaxDominoes
	MaxPlayerName     = 32
)

// ParseOrientation accepts the long names as well as the console shorthands "h" and "v"
func ParseOrientation(s string) (Orientation, bool) {
	switch s {
	case "h", "H", "horizontal", "HORIZONTAL", "Horizontal":
		return Horizontal, true
	case "v", "V", "vertical", "VERTICAL", "Vertical":
		return Vertical, true
	}
	return "", false
}

// Opposite returns the other orientation
func (o Orientation) Opposite() Orientation {
	if o == Vertical {
		return Horizontal
	}
	return Vertical
}

// Position represents row,col coordinates on the board
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Label returns the caller-visible label of the position on a board of the given size
func (p Position) Label(size int) int {
	return p.Row*size + p.Col
}

// Placement describes a domino by its orientation and its middle cell
type Placement struct {
	Orientation Orientation `json:"orientation"`
	Center      Position    `json:"center"`
}

// Cells returns the three positions covered by the placement, in label order
func (p Placement) Cells() [DominoLength]Position {
	if p.Orientation == Vertical {
		return [DominoLength]Position{
			{Row: p.Center.Row - 1, Col: p.Center.Col},
			p.Center,
			{Row: p.Center.Row + 1, Col: p.Center.Col},
		}
	}
	return [DominoLength]Position{
		{Row: p.Center.Row, Col: p.Center.Col - 1},
		p.Center,
		{Row: p.Center.Row, Col: p.Center.Col + 1},
	}
}

// Endpoints returns the labels of the two end cells, the pair a caller passes to Place
func (p Placement) Endpoints(size int) (start, end int) {
	cells := p.Cells()
	return cells[0].Label(size), cells[DominoLength-1].Label(size)
}

// Move is a placement request: two snapshot labels and an optional orientation
type Move struct {
	Orientation Orientation `json:"orientation,omitempty"`
	Start       int         `json:"start"`
	End         int         `json:"end"`
}

// CellView is the read-only, serializable form of a cell
type CellView struct {
	Row   int   `json:"row"`
	Col   int   `json:"col"`
	State State `json:"state"`
	Pips  int   `json:"pips"`
}

// LabeledCell pairs a snapshot label with its coordinates
type LabeledCell struct {
	Label int `json:"label"`
	Row   int `json:"row"`
	Col   int `json:"col"`
}

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name                string      `json:"name"`
	Description         string      `json:"description"`
	StartingOrientation Orientation `json:"starting_orientation"`
	Seed                uint64      `json:"seed,omitempty"` // 0 picks a random seed per board
	Messages            struct {
		Welcome            string `json:"welcome"`
		Placed             string `json:"placed"`
		Rejected           string `json:"rejected"`
		OrientationChanged string `json:"orientation_changed"`
		Victory            string `json:"victory"`
		GameOver           string `json:"game_over"`
	} `json:"messages"`
}

// GameState represents the complete game state
type GameState struct {
	Grid           [][]CellView       `json:"grid"`
	Size           int                `json:"size"`
	EmptyCells     int                `json:"empty_cells"`
	Orientation    Orientation        `json:"orientation"`
	PlacedDominoes int                `json:"placed_dominoes"`
	StartedAt      time.Time          `json:"started_at"`
	EndedAt        time.Time          `json:"ended_at,omitempty"`
	Score          int64              `json:"score"` // elapsed seconds, set once the game is over
	Message        string             `json:"message"`
	GameOver       bool               `json:"game_over"`
	Victory        bool               `json:"victory"`
	ConfigName     string             `json:"config_name"`
	MoveHistory    []MoveHistoryEntry `json:"move_history"`
	TotalMoves     int                `json:"total_moves"`

	// Computed helper views (not required for core game logic)
	PossiblePlacements int      `json:"possible_placements"`
	Board              []string `json:"board,omitempty"`
}

// MoveHistoryEntry represents a single placement attempt in the game history
type MoveHistoryEntry struct {
	Orientation Orientation `json:"orientation"`
	Start       int         `json:"start"`
	End         int         `json:"end"`
	Center      *Position   `json:"center,omitempty"`
	EmptyCells  int         `json:"empty_cells"`
	Timestamp   int64       `json:"timestamp"`
	Success     bool        `json:"success"`
	Reason      string      `json:"reason,omitempty"`
	MoveNumber  int         `json:"move_number"`
}
