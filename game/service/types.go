package service

import (
	"time"

	"github.com/wricardo/mcp-training/dominogame/game/engine"
	"github.com/wricardo/mcp-training/dominogame/game/leaderboard"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	ScoreSubmitted bool               `json:"score_submitted"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// PlaceResult contains the result of a single placement
type PlaceResult struct {
	Success    bool              `json:"success"`
	Placement  *engine.Placement `json:"placement,omitempty"`
	Reason     string            `json:"reason,omitempty"`      // why the placement was rejected
	ReasonCode string            `json:"reason_code,omitempty"` // unknown_label|not_two_apart|not_aligned|no_room|cell_filled|game_over|invalid_orientation
	GameState  *engine.GameState `json:"game_state"`
	Message    string            `json:"message"`
	Events     []GameEvent       `json:"events,omitempty"`
}

// BulkPlaceResult contains the result of multiple placements
type BulkPlaceResult struct {
	// Summary
	PlacementsExecuted int                `json:"placements_executed"`
	RequestedMoves     int                `json:"requested_moves"`
	Success            bool               `json:"success"`
	Placements         []engine.Placement `json:"placements"`
	GameState          *engine.GameState  `json:"game_state"`
	Events             []GameEvent        `json:"events"`
	StoppedReason      string             `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode     string             `json:"stop_reason_code,omitempty"` // Same codes as PlaceResult plus victory
	StoppedOnMove      int                `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated          bool               `json:"truncated,omitempty"`
	Limit              int                `json:"limit,omitempty"`

	// Start/end snapshot
	StartEmptyCells int `json:"start_empty_cells"`
	EndEmptyCells   int `json:"end_empty_cells"`

	// Final status aids
	GameOver bool   `json:"game_over"`
	Victory  bool   `json:"victory"`
	Message  string `json:"message,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string            `json:"type"` // "placed", "rejected", "orientation", "reset", "game_over", "victory"
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Placement *engine.Placement `json:"placement,omitempty"`
}

// PlacementOption is a legal domino and the labels that select it
type PlacementOption struct {
	Orientation engine.Orientation `json:"orientation"`
	Center      engine.Position    `json:"center"`
	Start       int                `json:"start"`
	End         int                `json:"end"`
}

// CellsResponse lists the current label snapshot and the legal placements
type CellsResponse struct {
	Orientation engine.Orientation   `json:"orientation"`
	EmptyCells  int                  `json:"empty_cells"`
	Cells       []engine.LabeledCell `json:"cells"`
	Placements  []PlacementOption    `json:"placements"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ScoreResult reports where a submitted score landed
type ScoreResult struct {
	Name        string              `json:"name"`
	Seconds     int64               `json:"seconds"`
	Rank        int                 `json:"rank"` // 0 when the score did not make the board
	Accepted    bool                `json:"accepted"`
	Leaderboard []leaderboard.Entry `json:"leaderboard"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename            string             `json:"filename"`
	ConfigID            string             `json:"config_id"` // The identifier to use for session creation
	Name                string             `json:"name"`      // Display name
	Description         string             `json:"description"`
	StartingOrientation engine.Orientation `json:"starting_orientation"`
	Seeded              bool               `json:"seeded"`
}
