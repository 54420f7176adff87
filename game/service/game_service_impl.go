package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/dominogame/game/engine"
	"github.com/wricardo/mcp-training/dominogame/game/leaderboard"
	"github.com/wricardo/mcp-training/dominogame/game/solver"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	scores   Scoreboard
	hinter   Hinter
	log      logrus.FieldLogger
	mu       sync.RWMutex
}

// Option customizes the game service
type Option func(*gameServiceImpl)

// WithScoreboard enables score submission
func WithScoreboard(scores Scoreboard) Option {
	return func(s *gameServiceImpl) { s.scores = scores }
}

// WithHinter replaces the default solver used for hints
func WithHinter(h Hinter) Option {
	return func(s *gameServiceImpl) { s.hinter = h }
}

// WithLogger sets the logger used for persistence warnings
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *gameServiceImpl) { s.log = logger }
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		hinter:   solver.New(),
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *gameServiceImpl) persist(sessionID, after string) {
	if err := s.sessions.Save(sessionID); err != nil {
		s.log.WithError(err).WithField("session", sessionID).Warnf("failed to persist session after %s", after)
	}
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	if configID == "" {
		configID = sess.ConfigID
	}
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessed(),
		ScoreSubmitted: sess.Scored(),
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.ConfigID = strings.TrimSuffix(configName, ".json")
	if sess.ConfigID == "" {
		sess.ConfigID = s.getConfigID(config.Name)
	}
	s.persist(sess.ID, "create")

	return s.sessionInfo(sess, sess.ConfigID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess, ""), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, ""))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return nil
}

// Place lays a single domino for a session. Rejected placements are reported
// in the result, not as errors.
func (s *gameServiceImpl) Place(ctx context.Context, sessionID string, move engine.Move, reset bool) (*PlaceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		sess.SetScored(false)
		events = append(events, resetEvent())
	}

	var p engine.Placement
	if move.Orientation == "" {
		p, err = sess.Engine.Place(move.Start, move.End)
	} else {
		p, err = sess.Engine.PlaceWithOrientation(move.Orientation, move.Start, move.End)
	}
	state := sess.Engine.GetState()

	result := &PlaceResult{
		Success:   err == nil,
		GameState: state,
		Message:   state.Message,
	}
	if err != nil {
		result.Reason = err.Error()
		result.ReasonCode = ReasonCode(err)
		events = append(events, GameEvent{
			Type:      "rejected",
			Message:   fmt.Sprintf("Placement %d-%d rejected: %v", move.Start, move.End, err),
			Timestamp: time.Now(),
		})
	} else {
		result.Placement = &p
		events = append(events, placedEvent(p, state.EmptyCells))
		events = append(events, endEvents(state)...)
	}
	result.Events = events

	s.persist(sessionID, "placement")
	return result, nil
}

// BulkPlace executes placements in sequence, stopping at the first rejection
func (s *gameServiceImpl) BulkPlace(ctx context.Context, sessionID string, moves []engine.Move, reset bool) (*BulkPlaceResult, error) {
	if len(moves) == 0 {
		return nil, ErrInvalidMoveCount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkPlaceResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		sess.SetScored(false)
		result.Events = append(result.Events, resetEvent())
	}
	result.StartEmptyCells = sess.Engine.GetState().EmptyCells

	// Limit placements to prevent abuse
	if len(moves) > engine.MaxBulkPlacements {
		result.Truncated = true
		result.Limit = engine.MaxBulkPlacements
		moves = moves[:engine.MaxBulkPlacements]
	}

	if sess.Engine.IsGameOver() {
		result.Success = false
		result.StoppedReason = "game is already over"
		result.StopReasonCode = "game_over"
		result.StoppedOnMove = 1
	} else {
		placed, err := sess.Engine.BulkPlace(moves)
		result.Placements = placed
		result.PlacementsExecuted = len(placed)

		state := sess.Engine.GetState()
		for i, p := range placed {
			empty := result.StartEmptyCells - engine.DominoLength*(i+1)
			result.Events = append(result.Events, placedEvent(p, empty))
		}

		switch {
		case err != nil:
			result.Success = false
			result.StoppedReason = err.Error()
			result.StopReasonCode = ReasonCode(err)
			result.StoppedOnMove = len(placed) + 1
			result.Events = append(result.Events, GameEvent{
				Type:      "rejected",
				Message:   err.Error(),
				Timestamp: time.Now(),
			})
		case len(placed) < len(moves):
			result.StoppedReason = "game ended before all placements were played"
			result.StopReasonCode = "game_over"
			if state.Victory {
				result.StopReasonCode = "victory"
			}
			result.StoppedOnMove = len(placed) + 1
		}
		if len(placed) > 0 {
			result.Events = append(result.Events, endEvents(state)...)
		}
	}

	result.GameState = sess.Engine.GetState()
	result.EndEmptyCells = result.GameState.EmptyCells
	result.GameOver = result.GameState.GameOver
	result.Victory = result.GameState.Victory
	result.Message = result.GameState.Message

	s.persist(sessionID, "bulk placement")
	return result, nil
}

// SetOrientation selects the orientation for the next placement
func (s *gameServiceImpl) SetOrientation(ctx context.Context, sessionID string, orientation engine.Orientation) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.Engine.SetOrientation(orientation); err != nil {
		return nil, err
	}

	s.persist(sessionID, "orientation change")
	return sess.Engine.GetState(), nil
}

// Reset deals a new board for a session
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.Reset()
	sess.SetScored(false)

	s.persist(sessionID, "reset")
	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetEmptyCells returns the label snapshot and every legal placement with its labels
func (s *gameServiceImpl) GetEmptyCells(ctx context.Context, sessionID string) (*CellsResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	cells := sess.Engine.EmptyCells()
	placements := sess.Engine.GetPossiblePlacements()
	options := make([]PlacementOption, 0, len(placements))
	for _, p := range placements {
		start, end := p.Endpoints(engine.BoardSize)
		options = append(options, PlacementOption{
			Orientation: p.Orientation,
			Center:      p.Center,
			Start:       start,
			End:         end,
		})
	}

	return &CellsResponse{
		Orientation: sess.Engine.GetOrientation(),
		EmptyCells:  len(cells),
		Cells:       cells,
		Placements:  options,
	}, nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	moves := []engine.MoveHistoryEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// Hint suggests the next placement; the search runs outside the service lock
func (s *gameServiceImpl) Hint(ctx context.Context, sessionID string) (*solver.Hint, error) {
	s.mu.RLock()
	sess, err := s.getSession(sessionID)
	if err != nil {
		s.mu.RUnlock()
		return nil, err
	}
	grid := sess.Engine.GetState().Grid
	s.mu.RUnlock()

	return s.hinter.Hint(ctx, grid)
}

// SubmitScore records the time of a won game on the leaderboard, once per game
func (s *gameServiceImpl) SubmitScore(ctx context.Context, sessionID, playerName string) (*ScoreResult, error) {
	if s.scores == nil {
		return nil, ErrNoLeaderboard
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	switch {
	case !sess.Engine.IsGameOver():
		return nil, ErrGameNotFinished
	case !sess.Engine.IsVictory():
		return nil, ErrNotVictory
	case sess.Scored():
		return nil, ErrScoreSubmitted
	}

	seconds := sess.Engine.GetScore()
	rank, accepted, err := s.scores.Add(playerName, seconds)
	if err != nil {
		return nil, err
	}

	sess.SetScored(true)
	s.persist(sessionID, "score submission")

	return &ScoreResult{
		Name:        strings.TrimSpace(playerName),
		Seconds:     seconds,
		Rank:        rank,
		Accepted:    accepted,
		Leaderboard: s.scores.Top(),
	}, nil
}

// GetLeaderboard returns the best scores
func (s *gameServiceImpl) GetLeaderboard(ctx context.Context) ([]leaderboard.Entry, error) {
	if s.scores == nil {
		return nil, ErrNoLeaderboard
	}
	return s.scores.Top(), nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// ReasonCode maps a placement error to a short machine-friendly code
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, engine.ErrUnknownLabel):
		return "unknown_label"
	case errors.Is(err, engine.ErrNotTwoApart):
		return "not_two_apart"
	case errors.Is(err, engine.ErrNotAligned):
		return "not_aligned"
	case errors.Is(err, engine.ErrNoRoom):
		return "no_room"
	case errors.Is(err, engine.ErrCellFilled):
		return "cell_filled"
	case errors.Is(err, engine.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, engine.ErrGameOver):
		return "game_over"
	case errors.Is(err, engine.ErrInvalidOrientation):
		return "invalid_orientation"
	default:
		return "rejected"
	}
}

func resetEvent() GameEvent {
	return GameEvent{
		Type:      "reset",
		Message:   "Game reset with a new board",
		Timestamp: time.Now(),
	}
}

func placedEvent(p engine.Placement, emptyCells int) GameEvent {
	return GameEvent{
		Type:      "placed",
		Message:   fmt.Sprintf("Placed %s domino at (%d,%d), %d empty cells left", p.Orientation, p.Center.Row, p.Center.Col, emptyCells),
		Timestamp: time.Now(),
		Placement: &p,
	}
}

// endEvents reports the end of the game, if it has ended
func endEvents(state *engine.GameState) []GameEvent {
	if !state.GameOver {
		return nil
	}
	if state.Victory {
		return []GameEvent{{
			Type:      "victory",
			Message:   state.Message,
			Timestamp: time.Now(),
		}}
	}
	return []GameEvent{{
		Type:      "game_over",
		Message:   state.Message,
		Timestamp: time.Now(),
	}}
}
