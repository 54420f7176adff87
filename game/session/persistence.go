package session

import (
	"time"

	"github.com/wricardo/mcp-training/dominogame/game/engine"
	"github.com/wricardo/mcp-training/dominogame/game/service"
)

// SessionPersistence stores sessions outside the process. IDs are matched
// case-insensitively, like the in-memory manager does.
type SessionPersistence interface {
	Save(session *service.Session) error
	// Load returns ErrSessionNotFound when nothing is stored under id
	Load(id string) (*service.Session, error)
	Delete(id string) error
	ListAll() ([]string, error)
	Exists(id string) bool
}

// recordVersion is written into every session file; Load refuses newer ones
const recordVersion = 1

// Record is the on-disk form of a session. The board travels as the
// engine's GameState, which RestoreBoard can rebuild including pips and
// the move history.
type Record struct {
	Version        int               `json:"version"`
	ID             string            `json:"id"`
	ConfigID       string            `json:"config_id"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	ScoreSubmitted bool              `json:"score_submitted,omitempty"`
	GameState      *engine.GameState `json:"game_state"`
}
