package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/dominogame/game/engine"
	"github.com/wricardo/mcp-training/dominogame/game/leaderboard"
	"github.com/wricardo/mcp-training/dominogame/game/solver"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrConfigNotFound   = errors.New("configuration not found")
	ErrGameNotFinished  = errors.New("game is not over yet")
	ErrNotVictory       = errors.New("only winning games can be scored")
	ErrScoreSubmitted   = errors.New("score already submitted for this session")
	ErrNoLeaderboard    = errors.New("leaderboard is not configured")
	ErrInvalidMoveCount = errors.New("at least one placement is required")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Place(ctx context.Context, sessionID string, move engine.Move, reset bool) (*PlaceResult, error)
	BulkPlace(ctx context.Context, sessionID string, moves []engine.Move, reset bool) (*BulkPlaceResult, error)
	SetOrientation(ctx context.Context, sessionID string, orientation engine.Orientation) (*engine.GameState, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetEmptyCells(ctx context.Context, sessionID string) (*CellsResponse, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	Hint(ctx context.Context, sessionID string) (*solver.Hint, error)

	// Scores
	SubmitScore(ctx context.Context, sessionID, playerName string) (*ScoreResult, error)
	GetLeaderboard(ctx context.Context) ([]leaderboard.Entry, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Scoreboard records the times of winning games
type Scoreboard interface {
	Add(name string, seconds int64) (int, bool, error)
	Top() []leaderboard.Entry
}

// Hinter suggests the next placement for a board
type Hinter interface {
	Hint(ctx context.Context, cells [][]engine.CellView) (*solver.Hint, error)
}

// Session represents an active game session. LastAccessedAt and
// ScoreSubmitted change while the session is shared; once it is handed out,
// use the accessors below.
type Session struct {
	ID             string
	ConfigID       string // file name of the configuration, without .json
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
	ScoreSubmitted bool

	mu sync.Mutex
}

// Touch records an access at t
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	s.LastAccessedAt = t
	s.mu.Unlock()
}

func (s *Session) LastAccessed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LastAccessedAt
}

func (s *Session) Scored() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ScoreSubmitted
}

func (s *Session) SetScored(scored bool) {
	s.mu.Lock()
	s.ScoreSubmitted = scored
	s.mu.Unlock()
}
