package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/dominogame/game/engine"
	"github.com/wricardo/mcp-training/dominogame/game/leaderboard"
	"github.com/wricardo/mcp-training/dominogame/game/service"
	"github.com/wricardo/mcp-training/dominogame/game/solver"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	saves    int
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return errors.New("session not found")
}

func (m *MockSessionManager) Save(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	m.saves++
	return nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

func testConfig(name string) *engine.GameConfig {
	config := &engine.GameConfig{
		Name:                name,
		Description:         "Test configuration",
		StartingOrientation: engine.Horizontal,
		Seed:                7,
	}
	config.Messages.Welcome = "Welcome to test!"
	config.Messages.Placed = "Placed, %d left"
	config.Messages.Victory = "Won in %d seconds"
	config.Messages.GameOver = "Stuck with %d cells"
	return config
}

func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"default": testConfig("default"),
			"test":    testConfig("test"),
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, service.ErrConfigNotFound
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:            name + ".json",
			ConfigID:            name,
			Name:                config.Name,
			Description:         config.Description,
			StartingOrientation: config.StartingOrientation,
			Seeded:              config.Seed != 0,
		})
	}
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["default"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	m.configs[name] = config
	return nil
}

// mockHinter returns a canned hint
type mockHinter struct {
	calls int
}

func (h *mockHinter) Hint(ctx context.Context, cells [][]engine.CellView) (*solver.Hint, error) {
	h.calls++
	if len(cells) != engine.BoardSize {
		return nil, fmt.Errorf("unexpected grid with %d rows", len(cells))
	}
	return &solver.Hint{Start: 0, End: 2, Winning: true}, nil
}

// winningMoves covers every cell except (2,2)
func winningMoves() []engine.Move {
	tiling := []engine.Placement{
		{engine.Horizontal, engine.Position{0, 1}}, {engine.Horizontal, engine.Position{0, 4}},
		{engine.Vertical, engine.Position{1, 6}}, {engine.Vertical, engine.Position{1, 7}},
		{engine.Horizontal, engine.Position{1, 1}}, {engine.Horizontal, engine.Position{1, 4}},
		{engine.Vertical, engine.Position{3, 0}}, {engine.Vertical, engine.Position{3, 1}},
		{engine.Horizontal, engine.Position{2, 4}},
		{engine.Horizontal, engine.Position{3, 3}}, {engine.Horizontal, engine.Position{3, 6}},
		{engine.Horizontal, engine.Position{4, 3}}, {engine.Horizontal, engine.Position{4, 6}},
		{engine.Horizontal, engine.Position{5, 1}}, {engine.Horizontal, engine.Position{5, 4}},
		{engine.Vertical, engine.Position{6, 6}}, {engine.Vertical, engine.Position{6, 7}},
		{engine.Horizontal, engine.Position{6, 1}}, {engine.Horizontal, engine.Position{6, 4}},
		{engine.Horizontal, engine.Position{7, 1}}, {engine.Horizontal, engine.Position{7, 4}},
	}
	moves := make([]engine.Move, 0, len(tiling))
	for _, p := range tiling {
		start, end := p.Endpoints(engine.BoardSize)
		moves = append(moves, engine.Move{Orientation: p.Orientation, Start: start, End: end})
	}
	return moves
}

func newTestService(t *testing.T, opts ...service.Option) (service.GameService, *MockSessionManager, string) {
	t.Helper()
	sessions := NewMockSessionManager()
	svc := service.NewGameService(sessions, NewMockConfigManager(), opts...)
	info, err := svc.CreateSession(context.Background(), "test")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return svc, sessions, info.ID
}

// Test cases
func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	sessions := NewMockSessionManager()
	configs := NewMockConfigManager()
	svc := service.NewGameService(sessions, configs)

	tests := []struct {
		name       string
		configName string
		wantErr    bool
	}{
		{
			name:       "create with default config",
			configName: "",
			wantErr:    false,
		},
		{
			name:       "create with specific config",
			configName: "test",
			wantErr:    false,
		},
		{
			name:       "create with invalid config",
			configName: "nonexistent",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.CreateSession(ctx, tt.configName)
			if (err != nil) != tt.wantErr {
				t.Errorf("CreateSession() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if !errors.Is(err, service.ErrConfigNotFound) {
					t.Errorf("Expected ErrConfigNotFound, got %v", err)
				}
				return
			}
			if session == nil {
				t.Fatal("CreateSession() returned nil session")
			}
			if session.GameState.EmptyCells != engine.BoardSize*engine.BoardSize {
				t.Errorf("Expected a fresh board, got %d empty cells", session.GameState.EmptyCells)
			}
		})
	}
}

func TestGameService_Place(t *testing.T) {
	ctx := context.Background()
	svc, sessions, id := newTestService(t)

	tests := []struct {
		name      string
		sessionID string
		move      engine.Move
		wantErr   bool
		success   bool
		code      string
	}{
		{
			name:      "valid horizontal placement",
			sessionID: id,
			move:      engine.Move{Start: 0, End: 2},
			success:   true,
		},
		{
			name:      "stale label",
			sessionID: id,
			move:      engine.Move{Start: 1, End: 3},
			code:      "unknown_label",
		},
		{
			name:      "labels not two apart",
			sessionID: id,
			move:      engine.Move{Start: 8, End: 9},
			code:      "not_two_apart",
		},
		{
			name:      "vertical needs same column",
			sessionID: id,
			move:      engine.Move{Orientation: engine.Vertical, Start: 9, End: 11},
			code:      "not_aligned",
		},
		{
			name:      "explicit vertical",
			sessionID: id,
			move:      engine.Move{Orientation: engine.Vertical, Start: 9, End: 25},
			success:   true,
		},
		{
			name:      "invalid session",
			sessionID: "nonexistent",
			move:      engine.Move{Start: 0, End: 2},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Place(ctx, tt.sessionID, tt.move, false)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Place() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, service.ErrSessionNotFound) {
					t.Errorf("Expected ErrSessionNotFound, got %v", err)
				}
				return
			}
			if result.Success != tt.success {
				t.Errorf("Success = %v, expected %v (reason %q)", result.Success, tt.success, result.Reason)
			}
			if result.ReasonCode != tt.code {
				t.Errorf("ReasonCode = %q, expected %q", result.ReasonCode, tt.code)
			}
			if tt.success && result.Placement == nil {
				t.Error("Expected placement on success")
			}
			if len(result.Events) == 0 {
				t.Error("Expected events")
			}
		})
	}

	state, _ := svc.GetGameState(ctx, id)
	if state.EmptyCells != 58 {
		t.Errorf("Expected 58 empty cells, got %d", state.EmptyCells)
	}
	if sessions.saves == 0 {
		t.Error("Expected placements to be persisted")
	}
}

func TestGameService_PlaceWithReset(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	svc.Place(ctx, id, engine.Move{Start: 0, End: 2}, false)
	result, err := svc.Place(ctx, id, engine.Move{Start: 0, End: 2}, true)
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("Expected placement on a reset board to succeed: %s", result.Reason)
	}
	if result.Events[0].Type != "reset" {
		t.Errorf("Expected reset event first, got %s", result.Events[0].Type)
	}
	if result.GameState.EmptyCells != 61 {
		t.Errorf("Expected 61 empty cells, got %d", result.GameState.EmptyCells)
	}
}

func TestGameService_BulkPlace(t *testing.T) {
	ctx := context.Background()

	t.Run("stops at first rejection", func(t *testing.T) {
		svc, _, id := newTestService(t)
		moves := []engine.Move{
			{Start: 0, End: 2},
			{Start: 3, End: 5},
			{Start: 0, End: 2},
			{Start: 8, End: 10},
		}
		result, err := svc.BulkPlace(ctx, id, moves, false)
		if err != nil {
			t.Fatalf("BulkPlace failed: %v", err)
		}
		if result.Success {
			t.Error("Expected failure")
		}
		if result.PlacementsExecuted != 2 || result.StoppedOnMove != 3 {
			t.Errorf("Expected 2 executed and stop on 3, got %d and %d", result.PlacementsExecuted, result.StoppedOnMove)
		}
		if result.StopReasonCode != "unknown_label" {
			t.Errorf("Expected unknown_label, got %s", result.StopReasonCode)
		}
		if result.StartEmptyCells != 64 || result.EndEmptyCells != 58 {
			t.Errorf("Unexpected cell counts %d -> %d", result.StartEmptyCells, result.EndEmptyCells)
		}
	})

	t.Run("plays a full winning game", func(t *testing.T) {
		svc, _, id := newTestService(t)
		result, err := svc.BulkPlace(ctx, id, winningMoves(), false)
		if err != nil {
			t.Fatalf("BulkPlace failed: %v", err)
		}
		if result.PlacementsExecuted != engine.MaxDominoes {
			t.Errorf("Expected %d placements, got %d", engine.MaxDominoes, result.PlacementsExecuted)
		}
		if !result.GameOver || !result.Victory {
			t.Errorf("Expected victory, got game_over=%v victory=%v", result.GameOver, result.Victory)
		}
		if !result.Success || result.StopReasonCode != "" {
			t.Errorf("Expected a clean run, got %q", result.StopReasonCode)
		}
		last := result.Events[len(result.Events)-1]
		if last.Type != "victory" {
			t.Errorf("Expected victory event last, got %s", last.Type)
		}

		again, err := svc.BulkPlace(ctx, id, []engine.Move{{Start: 18, End: 20}}, false)
		if err != nil {
			t.Fatalf("BulkPlace failed: %v", err)
		}
		if again.StopReasonCode != "game_over" || again.PlacementsExecuted != 0 {
			t.Errorf("Expected game_over without placements, got %+v", again)
		}
	})

	t.Run("truncates long requests", func(t *testing.T) {
		svc, _, id := newTestService(t)
		moves := make([]engine.Move, engine.MaxBulkPlacements+5)
		for i := range moves {
			moves[i] = engine.Move{Start: 0, End: 2}
		}
		result, err := svc.BulkPlace(ctx, id, moves, false)
		if err != nil {
			t.Fatalf("BulkPlace failed: %v", err)
		}
		if !result.Truncated || result.Limit != engine.MaxBulkPlacements {
			t.Errorf("Expected truncation at %d, got %+v", engine.MaxBulkPlacements, result)
		}
	})

	t.Run("rejects empty requests", func(t *testing.T) {
		svc, _, id := newTestService(t)
		if _, err := svc.BulkPlace(ctx, id, nil, false); !errors.Is(err, service.ErrInvalidMoveCount) {
			t.Errorf("Expected ErrInvalidMoveCount, got %v", err)
		}
	})
}

func TestGameService_SetOrientation(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	state, err := svc.SetOrientation(ctx, id, engine.Vertical)
	if err != nil {
		t.Fatalf("SetOrientation failed: %v", err)
	}
	if state.Orientation != engine.Vertical {
		t.Errorf("Expected vertical, got %s", state.Orientation)
	}

	if _, err := svc.SetOrientation(ctx, id, engine.Orientation("diagonal")); !errors.Is(err, engine.ErrInvalidOrientation) {
		t.Errorf("Expected ErrInvalidOrientation, got %v", err)
	}

	result, _ := svc.Place(ctx, id, engine.Move{Start: 0, End: 16}, false)
	if !result.Success {
		t.Errorf("Expected vertical placement to succeed: %s", result.Reason)
	}
}

func TestGameService_GetEmptyCells(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	cells, err := svc.GetEmptyCells(ctx, id)
	if err != nil {
		t.Fatalf("GetEmptyCells failed: %v", err)
	}
	if cells.EmptyCells != 64 || len(cells.Cells) != 64 {
		t.Errorf("Expected 64 cells, got %d", cells.EmptyCells)
	}
	// 6 horizontal and 6 vertical positions per line
	if len(cells.Placements) != 2*engine.BoardSize*(engine.BoardSize-2) {
		t.Errorf("Expected %d placements, got %d", 2*engine.BoardSize*(engine.BoardSize-2), len(cells.Placements))
	}
	for _, p := range cells.Placements {
		result, _ := svc.Place(ctx, id, engine.Move{Orientation: p.Orientation, Start: p.Start, End: p.End}, false)
		if !result.Success {
			t.Fatalf("Listed placement %+v was rejected: %s", p, result.Reason)
		}
		break
	}
}

func TestGameService_GetMoveHistory(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	svc.BulkPlace(ctx, id, winningMoves()[:5], false)
	svc.Place(ctx, id, engine.Move{Start: 0, End: 2}, false)

	tests := []struct {
		name      string
		opts      service.HistoryOptions
		wantMoves int
		firstNum  int
		hasNext   bool
	}{
		{"defaults", service.HistoryOptions{}, 6, 6, false},
		{"ascending page", service.HistoryOptions{Page: 1, Limit: 4, Order: "asc"}, 4, 1, true},
		{"second page", service.HistoryOptions{Page: 2, Limit: 4, Order: "asc"}, 2, 5, false},
		{"descending page", service.HistoryOptions{Page: 2, Limit: 4, Order: "desc"}, 2, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history, err := svc.GetMoveHistory(ctx, id, tt.opts)
			if err != nil {
				t.Fatalf("GetMoveHistory failed: %v", err)
			}
			if history.TotalMoves != 6 {
				t.Errorf("Expected 6 total moves, got %d", history.TotalMoves)
			}
			if len(history.Moves) != tt.wantMoves {
				t.Fatalf("Expected %d moves, got %d", tt.wantMoves, len(history.Moves))
			}
			if history.Moves[0].MoveNumber != tt.firstNum {
				t.Errorf("Expected first move %d, got %d", tt.firstNum, history.Moves[0].MoveNumber)
			}
			if history.HasNext != tt.hasNext {
				t.Errorf("HasNext = %v, expected %v", history.HasNext, tt.hasNext)
			}
		})
	}
}

func TestGameService_ListSessions(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateSession(ctx, ""); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
	}

	list, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("Expected 3 sessions, got %d", len(list))
	}
}

func TestGameService_DeleteSession(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	if err := svc.DeleteSession(ctx, id); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := svc.GetSession(ctx, id); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if err := svc.DeleteSession(ctx, id); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestGameService_Reset(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	svc.Place(ctx, id, engine.Move{Start: 0, End: 2}, false)
	state, err := svc.Reset(ctx, id)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if state.EmptyCells != 64 {
		t.Errorf("Expected 64 empty cells after reset, got %d", state.EmptyCells)
	}
	if state.TotalMoves != 1 {
		t.Errorf("Expected history to survive reset, got %d moves", state.TotalMoves)
	}
}

func TestGameService_Hint(t *testing.T) {
	ctx := context.Background()
	hinter := &mockHinter{}
	svc, _, id := newTestService(t, service.WithHinter(hinter))

	hint, err := svc.Hint(ctx, id)
	if err != nil {
		t.Fatalf("Hint failed: %v", err)
	}
	if hinter.calls != 1 || hint.End != 2 {
		t.Errorf("Expected hinter to be consulted, got %+v after %d calls", hint, hinter.calls)
	}

	if _, err := svc.Hint(ctx, "nope"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_HintWithSolver(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	hint, err := svc.Hint(ctx, id)
	if err != nil {
		t.Fatalf("Hint failed: %v", err)
	}
	result, _ := svc.Place(ctx, id, engine.Move{Orientation: hint.Placement.Orientation, Start: hint.Start, End: hint.End}, false)
	if !result.Success {
		t.Errorf("Hinted placement was rejected: %s", result.Reason)
	}
}

func TestGameService_SubmitScore(t *testing.T) {
	ctx := context.Background()
	board, err := leaderboard.New(leaderboard.DefaultCapacity, nil)
	if err != nil {
		t.Fatalf("leaderboard.New: %v", err)
	}
	svc, _, id := newTestService(t, service.WithScoreboard(board))

	if _, err := svc.SubmitScore(ctx, id, "ann"); !errors.Is(err, service.ErrGameNotFinished) {
		t.Errorf("Expected ErrGameNotFinished, got %v", err)
	}

	if _, err := svc.BulkPlace(ctx, id, winningMoves(), false); err != nil {
		t.Fatalf("BulkPlace failed: %v", err)
	}

	result, err := svc.SubmitScore(ctx, id, "  ann ")
	if err != nil {
		t.Fatalf("SubmitScore failed: %v", err)
	}
	if !result.Accepted || result.Rank != 1 || result.Name != "ann" {
		t.Errorf("Unexpected score result %+v", result)
	}
	if len(result.Leaderboard) != 1 {
		t.Errorf("Expected 1 leaderboard entry, got %d", len(result.Leaderboard))
	}

	if _, err := svc.SubmitScore(ctx, id, "ann"); !errors.Is(err, service.ErrScoreSubmitted) {
		t.Errorf("Expected ErrScoreSubmitted, got %v", err)
	}

	top, err := svc.GetLeaderboard(ctx)
	if err != nil || len(top) != 1 {
		t.Errorf("Expected 1 entry from GetLeaderboard, got %v %v", top, err)
	}
}

func TestGameService_SubmitScoreRequiresVictory(t *testing.T) {
	ctx := context.Background()
	board, _ := leaderboard.New(leaderboard.DefaultCapacity, nil)
	svc, _, id := newTestService(t, service.WithScoreboard(board))

	// every row gets two horizontals, the last two columns four verticals
	var moves []engine.Move
	for row := 0; row < engine.BoardSize; row++ {
		moves = append(moves,
			engine.Move{Orientation: engine.Horizontal, Start: row * 8, End: row*8 + 2},
			engine.Move{Orientation: engine.Horizontal, Start: row*8 + 3, End: row*8 + 5})
	}
	moves = append(moves,
		engine.Move{Orientation: engine.Vertical, Start: 6, End: 22},
		engine.Move{Orientation: engine.Vertical, Start: 30, End: 46},
		engine.Move{Orientation: engine.Vertical, Start: 7, End: 23},
		engine.Move{Orientation: engine.Vertical, Start: 31, End: 47})

	result, err := svc.BulkPlace(ctx, id, moves, false)
	if err != nil {
		t.Fatalf("BulkPlace failed: %v", err)
	}
	if !result.GameOver || result.Victory {
		t.Fatalf("Expected a lost game, got game_over=%v victory=%v", result.GameOver, result.Victory)
	}
	if result.Events[len(result.Events)-1].Type != "game_over" {
		t.Errorf("Expected game_over event last")
	}

	if _, err := svc.SubmitScore(ctx, id, "ann"); !errors.Is(err, service.ErrNotVictory) {
		t.Errorf("Expected ErrNotVictory, got %v", err)
	}
}

func TestGameService_NoLeaderboard(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newTestService(t)

	if _, err := svc.SubmitScore(ctx, id, "ann"); !errors.Is(err, service.ErrNoLeaderboard) {
		t.Errorf("Expected ErrNoLeaderboard, got %v", err)
	}
	if _, err := svc.GetLeaderboard(ctx); !errors.Is(err, service.ErrNoLeaderboard) {
		t.Errorf("Expected ErrNoLeaderboard, got %v", err)
	}
}

func TestReasonCode(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{engine.ErrUnknownLabel, "unknown_label"},
		{fmt.Errorf("move 2: %w", engine.ErrNotAligned), "not_aligned"},
		{engine.ErrGameOver, "game_over"},
		{errors.New("other"), "rejected"},
	}
	for _, tt := range tests {
		if got := service.ReasonCode(tt.err); got != tt.code {
			t.Errorf("ReasonCode(%v) = %s, expected %s", tt.err, got, tt.code)
		}
	}
}
