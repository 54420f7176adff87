package session

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/wricardo/mcp-training/dominogame/game/engine"
	"github.com/wricardo/mcp-training/dominogame/game/service"
)

func createTestConfig() *engine.GameConfig {
	config := &engine.GameConfig{
		Name:                "Test Config",
		Description:         "Test configuration",
		StartingOrientation: engine.Horizontal,
		Seed:                3,
	}
	config.Messages.Welcome = "Welcome!"
	config.Messages.Victory = "Victory in %d seconds!"
	config.Messages.GameOver = "Stuck with %d cells"
	return config
}

// brokenStore fails every write and holds nothing
type brokenStore struct {
	saves int
}

func (b *brokenStore) Save(*service.Session) error {
	b.saves++
	return errors.New("disk full")
}
func (b *brokenStore) Load(string) (*service.Session, error) { return nil, ErrSessionNotFound }
func (b *brokenStore) Delete(string) error                    { return ErrSessionNotFound }
func (b *brokenStore) ListAll() ([]string, error)             { return nil, nil }
func (b *brokenStore) Exists(string) bool                     { return false }

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	session, err := manager.Create("board-a", config)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if session.ID != "board-a" {
		t.Errorf("Expected session ID 'board-a', got '%s'", session.ID)
	}
	if session.Engine == nil {
		t.Fatal("Expected engine to be initialized")
	}
	if state := session.Engine.GetState(); state.EmptyCells != engine.BoardSize*engine.BoardSize {
		t.Errorf("Expected a fresh board, got %d empty cells", state.EmptyCells)
	}
	if !session.CreatedAt.Equal(session.LastAccessedAt) {
		t.Error("Expected CreatedAt and LastAccessedAt to start equal")
	}

	tests := []struct {
		name    string
		id      string
		mutate  func(*engine.GameConfig)
		wantErr error
	}{
		{"duplicate ID", "board-a", nil, ErrSessionAlreadyExists},
		{"duplicate ID in other case", "BOARD-A", nil, ErrSessionAlreadyExists},
		{"path separator", "../escape", nil, ErrInvalidSessionID},
		{"dot", "a.b", nil, ErrInvalidSessionID},
		{"invalid config", "nameless", func(c *engine.GameConfig) { c.Name = "" }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			_, err := manager.Create(tt.id, cfg)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestManager_GeneratedIDs(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := manager.Create("", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 || strings.Trim(session.ID, "0123456789abcdef") != "" {
			t.Errorf("Expected 4 lowercase hex digits, got %q", session.ID)
		}
		if seen[session.ID] {
			t.Errorf("Duplicate session ID generated: %s", session.ID)
		}
		seen[session.ID] = true
	}
}

func TestManager_LookupIgnoresCase(t *testing.T) {
	manager := NewManager()
	created, _ := manager.Create("Ab12", createTestConfig())

	for _, id := range []string{"Ab12", "ab12", "AB12"} {
		session, err := manager.Get(id)
		if err != nil {
			t.Fatalf("Get(%q): %v", id, err)
		}
		if session != created {
			t.Errorf("Get(%q) returned a different session", id)
		}
	}
	if created.ID != "Ab12" {
		t.Errorf("Expected the ID to keep its case, got %q", created.ID)
	}

	if _, err := manager.Get("ffff"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	first, err := manager.GetOrCreate("c0de", config)
	if err != nil {
		t.Fatalf("Failed to get or create session: %v", err)
	}
	second, err := manager.GetOrCreate("C0DE", config)
	if err != nil {
		t.Fatalf("Failed to get existing session: %v", err)
	}
	if first != second {
		t.Error("Expected the existing session to be returned")
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()
	manager.Create("gone", config)
	manager.Create("kept", config)

	if err := manager.Delete("GONE"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := manager.Get("gone"); err != ErrSessionNotFound {
		t.Error("Expected session to be deleted")
	}
	if err := manager.Delete("gone"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}

	if err := manager.DeleteFromMemory("kept"); err != nil {
		t.Fatalf("DeleteFromMemory: %v", err)
	}
	if err := manager.DeleteFromMemory("kept"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if manager.Count() != 0 {
		t.Errorf("Expected no sessions, got %d", manager.Count())
	}
}

func TestManager_List(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	ids := []string{"0001", "0002", "0003"}
	for _, id := range ids {
		manager.Create(id, config)
	}

	found := make(map[string]bool)
	for _, s := range manager.List() {
		found[s.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			t.Errorf("Session %s not found in list", id)
		}
	}
	if manager.Count() != len(ids) {
		t.Errorf("Expected %d sessions, got %d", len(ids), manager.Count())
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	active, _ := manager.Create("active", config)
	idle, _ := manager.Create("idle", config)

	idle.LastAccessedAt = time.Now().Add(-2 * time.Hour)
	active.LastAccessedAt = time.Now()

	if removed := manager.CleanupExpiredSessions(time.Hour); removed != 1 {
		t.Errorf("Expected 1 session evicted, got %d", removed)
	}
	if _, err := manager.Get("idle"); err != ErrSessionNotFound {
		t.Error("Expected idle session to be evicted")
	}
	if _, err := manager.Get("active"); err != nil {
		t.Error("Expected active session to still exist")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	session, _ := manager.Create("touch", createTestConfig())
	session.LastAccessedAt = time.Now().Add(-time.Minute)
	before := session.LastAccessedAt

	if err := manager.UpdateLastAccessed("TOUCH"); err != nil {
		t.Fatalf("Failed to update last accessed: %v", err)
	}
	if !session.LastAccessedAt.After(before) {
		t.Error("Expected LastAccessedAt to move forward")
	}
	if err := manager.UpdateLastAccessed("missing"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_PersistenceFailureDoesNotStopPlay(t *testing.T) {
	logger, hook := test.NewNullLogger()
	store := &brokenStore{}
	manager := NewManagerWithPersistence(store, WithLogger(logger))

	session, err := manager.Create("flaky", createTestConfig())
	if err != nil {
		t.Fatalf("Create should succeed when saving fails: %v", err)
	}
	if err := manager.UpdateLastAccessed("flaky"); err != nil {
		t.Fatalf("UpdateLastAccessed should succeed when saving fails: %v", err)
	}
	if store.saves != 2 {
		t.Errorf("Expected 2 save attempts, got %d", store.saves)
	}

	warnings := 0
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Data["session"] == session.ID {
			warnings++
		}
	}
	if warnings != 2 {
		t.Errorf("Expected 2 warnings for session %s, got %d", session.ID, warnings)
	}

	if err := manager.Save("flaky"); err == nil {
		t.Error("Expected Save to report the store error")
	}
	if err := manager.SaveAllSessions(); err == nil {
		t.Error("Expected SaveAllSessions to report the failure")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := manager.Create("", config)
			if err != nil {
				errs <- err
				return
			}
			if _, err := manager.Get(strings.ToUpper(session.ID)); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if manager.Count() != 100 {
		t.Errorf("Expected 100 sessions, got %d", manager.Count())
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	session1, _ := manager.Create("iso1", config)
	session2, _ := manager.Create("iso2", config)

	if _, err := session1.Engine.Place(0, 2); err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	if session2.Engine.GetState().EmptyCells != engine.BoardSize*engine.BoardSize {
		t.Error("Session 2 should not be affected by session 1 placements")
	}
	if session1.Engine.GetState().EmptyCells == session2.Engine.GetState().EmptyCells {
		t.Error("Sessions should have independent game state")
	}
}

func TestManager_LogsBoardActivity(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	manager := NewManager(WithLogger(logger), WithEngineOptions(engine.WithSeed(5)))
	session, err := manager.Create("logged", createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	session.Engine.Place(0, 2)

	for _, entry := range hook.AllEntries() {
		if entry.Message == "domino placed" && entry.Data["session"] == "logged" {
			return
		}
	}
	t.Errorf("Expected a placement entry for session logged, got %d entries", len(hook.AllEntries()))
}
