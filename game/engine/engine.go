package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrGameOver is returned for placements attempted after the game has ended
var ErrGameOver = errors.New("game is over")

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	IsVictory() bool
	GetScore() int64

	// Orientation
	GetOrientation() Orientation
	SetOrientation(o Orientation) error
	ToggleOrientation() Orientation

	// Placement operations
	EmptyCells() []LabeledCell
	Place(start, end int) (Placement, error)
	PlaceWithOrientation(o Orientation, start, end int) (Placement, error)
	GetPossiblePlacements() []Placement
	CellAt(row, col int) (CellView, error)

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface on top of a Board. It keeps
// the label snapshot fresh: after creation, reset, restore and every accepted
// placement the empty cells are relabeled.
type GameEngine struct {
	board  *Board
	config *GameConfig
	opts   []BoardOption

	history    []MoveHistoryEntry
	totalMoves int
	placed     int
	message    string
	gameOver   bool
	victory    bool
	score      int64
}

// NewEngine creates a new game engine with the provided configuration.
// Options are applied after the ones derived from the config.
func NewEngine(config *GameConfig, opts ...BoardOption) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{
		config: config,
		opts:   opts,
	}
	e.start()
	return e, nil
}

// NewEngineWithDefaults creates a new game engine with default configuration
func NewEngineWithDefaults(opts ...BoardOption) *GameEngine {
	e := &GameEngine{
		config: DefaultGameConfig(),
		opts:   opts,
	}
	e.start()
	return e
}

func (e *GameEngine) boardOptions() []BoardOption {
	return append(BoardOptionsFromConfig(e.config), e.opts...)
}

// start deals a fresh board and clears the per-game counters
func (e *GameEngine) start() {
	e.board = NewBoard(e.boardOptions()...)
	e.placed = 0
	e.gameOver = false
	e.victory = false
	e.score = 0
	e.message = e.config.Messages.Welcome
	e.refresh()
}

// refresh relabels the empty cells and checks for the end of the game
func (e *GameEngine) refresh() {
	e.board.SnapshotEmptyCells()
	if e.gameOver || !e.board.IsTerminal() {
		return
	}

	e.gameOver = true
	e.victory = e.board.IsVictory()
	e.score = e.board.ElapsedSeconds()
	if e.victory {
		e.message = fmt.Sprintf(e.config.Messages.Victory, e.score)
	} else {
		e.message = fmt.Sprintf(e.config.Messages.GameOver, e.board.EmptyCellCount())
	}
}

// GetState returns a snapshot of the current game state
func (e *GameEngine) GetState() *GameState {
	return &GameState{
		Grid:               e.board.Cells(),
		Size:               e.board.Size(),
		EmptyCells:         e.board.EmptyCellCount(),
		Orientation:        e.board.Orientation(),
		PlacedDominoes:     e.placed,
		StartedAt:          e.board.StartedAt(),
		EndedAt:            e.board.EndedAt(),
		Score:              e.score,
		Message:            e.message,
		GameOver:           e.gameOver,
		Victory:            e.victory,
		ConfigName:         e.config.Name,
		MoveHistory:        copyHistory(e.history),
		TotalMoves:         e.totalMoves,
		PossiblePlacements: len(e.board.PossiblePlacements()),
		Board:              e.board.Rows(),
	}
}

// SetState restores the game from a persisted state
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}

	board, err := RestoreBoard(state, e.boardOptions()...)
	if err != nil {
		return err
	}

	e.board = board
	e.history = append([]MoveHistoryEntry(nil), state.MoveHistory...)
	e.totalMoves = state.TotalMoves
	e.placed = (board.Size()*board.Size() - board.EmptyCellCount()) / DominoLength
	e.message = state.Message
	e.gameOver = state.GameOver
	e.victory = state.GameOver && board.IsVictory()
	e.score = 0
	if e.gameOver {
		e.score = board.ElapsedSeconds()
	}
	e.refresh()
	return nil
}

// Reset deals a new board. The cumulative move history survives.
func (e *GameEngine) Reset() *GameState {
	e.start()
	return e.GetState()
}

// IsGameOver returns whether no further domino fits
func (e *GameEngine) IsGameOver() bool {
	return e.gameOver
}

// IsVictory returns whether the game ended with a single empty cell
func (e *GameEngine) IsVictory() bool {
	return e.victory
}

// GetScore returns the elapsed seconds of a finished game, or 0 while it is running
func (e *GameEngine) GetScore() int64 {
	return e.score
}

// GetOrientation returns the orientation used by the next placement
func (e *GameEngine) GetOrientation() Orientation {
	return e.board.Orientation()
}

// SetOrientation selects the orientation used by the next placement
func (e *GameEngine) SetOrientation(o Orientation) error {
	if err := e.board.SetOrientation(o); err != nil {
		return err
	}
	if tmpl := e.config.Messages.OrientationChanged; tmpl != "" {
		if strings.Contains(tmpl, "%s") {
			e.message = fmt.Sprintf(tmpl, o)
		} else {
			e.message = tmpl
		}
	}
	return nil
}

// ToggleOrientation switches to the other orientation and returns it
func (e *GameEngine) ToggleOrientation() Orientation {
	next := e.board.Orientation().Opposite()
	_ = e.SetOrientation(next)
	return next
}

// EmptyCells returns the current label snapshot ordered by label
func (e *GameEngine) EmptyCells() []LabeledCell {
	return e.board.Candidates()
}

// Place lays a domino between two snapshot labels using the current
// orientation and records the attempt in the move history
func (e *GameEngine) Place(start, end int) (Placement, error) {
	if e.gameOver {
		return Placement{}, ErrGameOver
	}

	entry := MoveHistoryEntry{
		Orientation: e.board.Orientation(),
		Start:       start,
		End:         end,
		Timestamp:   e.board.now().Unix(),
		MoveNumber:  e.totalMoves + 1,
	}

	p, err := e.board.Place(start, end)
	if err != nil {
		entry.Reason = err.Error()
		e.message = e.rejectedMessage(err)
	} else {
		center := p.Center
		entry.Center = &center
		entry.Success = true
		e.placed++
		e.message = e.placedMessage()
		e.refresh()
	}
	entry.EmptyCells = e.board.EmptyCellCount()

	e.history = append(e.history, entry)
	e.totalMoves++

	return p, err
}

// PlaceWithOrientation sets the orientation and places in one step
func (e *GameEngine) PlaceWithOrientation(o Orientation, start, end int) (Placement, error) {
	if e.gameOver {
		return Placement{}, ErrGameOver
	}
	if err := e.board.SetOrientation(o); err != nil {
		return Placement{}, err
	}
	return e.Place(start, end)
}

func (e *GameEngine) placedMessage() string {
	tmpl := e.config.Messages.Placed
	if tmpl == "" {
		return fmt.Sprintf("Domino placed. %d empty cells left", e.board.EmptyCellCount())
	}
	return fmt.Sprintf(tmpl, e.board.EmptyCellCount())
}

func (e *GameEngine) rejectedMessage(err error) string {
	if e.config.Messages.Rejected == "" {
		return fmt.Sprintf("Placement rejected: %v", err)
	}
	return fmt.Sprintf("%s [%v]", e.config.Messages.Rejected, err)
}

// GetPossiblePlacements returns every legal domino on the board
func (e *GameEngine) GetPossiblePlacements() []Placement {
	return e.board.PossiblePlacements()
}

// CellAt returns the cell at (row, col)
func (e *GameEngine) CellAt(row, col int) (CellView, error) {
	cell, err := e.board.CellAt(row, col)
	if err != nil {
		return CellView{}, err
	}
	return cell.View(), nil
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and starts a new game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	e.config = config
	e.history = nil
	e.totalMoves = 0
	e.start()
	return nil
}

// GetMoveHistory returns a copy of the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return copyHistory(e.history)
}

// GetLastMove returns a copy of the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.history) == 0 {
		return nil
	}
	return &copyHistory(e.history[len(e.history)-1:])[0]
}

func copyHistory(entries []MoveHistoryEntry) []MoveHistoryEntry {
	out := make([]MoveHistoryEntry, len(entries))
	for i, entry := range entries {
		if entry.Center != nil {
			center := *entry.Center
			entry.Center = &center
		}
		out[i] = entry
	}
	return out
}

// BulkPlace executes moves in sequence until one fails or the game ends.
// A move without an orientation uses the current one. It returns the
// placements that were accepted and the first error.
func (e *GameEngine) BulkPlace(moves []Move) ([]Placement, error) {
	placed := make([]Placement, 0, len(moves))

	for i, move := range moves {
		if e.IsGameOver() {
			break
		}

		var p Placement
		var err error
		if move.Orientation == "" {
			p, err = e.Place(move.Start, move.End)
		} else {
			p, err = e.PlaceWithOrientation(move.Orientation, move.Start, move.End)
		}
		if err != nil {
			return placed, fmt.Errorf("move %d: %w", i+1, err)
		}
		placed = append(placed, p)
	}

	return placed, nil
}
