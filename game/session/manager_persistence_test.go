package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/dominogame/game/config"
	"github.com/wricardo/mcp-training/dominogame/game/engine"
	"github.com/wricardo/mcp-training/dominogame/game/service"
)

// newStore returns a file store in a temp dir backed by the shipped configs.
// Each call to restart gives a manager with an empty memory over that store.
func newStore(t *testing.T) (fp *FilePersistence, cfg *engine.GameConfig, restart func() *Manager) {
	t.Helper()

	configManager, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	fp, err = NewFilePersistence(t.TempDir(), configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	return fp, configManager.GetDefault(), func() *Manager {
		return NewManagerWithPersistence(fp)
	}
}

func TestPersistentManager_CreateSavesAndRestartLoads(t *testing.T) {
	fp, cfg, restart := newStore(t)

	session, err := restart().Create("a1f3", cfg)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if !fp.Exists(session.ID) {
		t.Fatal("Session should be saved on creation")
	}

	manager := restart()
	loaded, err := manager.Get("A1F3")
	if err != nil {
		t.Fatalf("Failed to get session from disk: %v", err)
	}
	again, err := manager.Get("a1f3")
	if err != nil {
		t.Fatalf("Failed to get session from memory: %v", err)
	}
	if again != loaded {
		t.Error("Session should stay in memory after the first load")
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session in memory, got %d", manager.Count())
	}
}

func TestPersistentManager_SaveKeepsBoard(t *testing.T) {
	_, cfg, restart := newStore(t)
	manager := restart()

	session, err := manager.Create("b0a7", cfg)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if _, err := session.Engine.PlaceWithOrientation(engine.Vertical, 7, 23); err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	if err := manager.Save("b0a7"); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	loaded, err := restart().Get("b0a7")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	for row := 0; row < 3; row++ {
		cell, _ := loaded.Engine.CellAt(row, 7)
		if cell.State != engine.Filled {
			t.Errorf("Cell (%d,7) should be filled after reload", row)
		}
	}
	if got := loaded.Engine.GetState().EmptyCells; got != engine.BoardSize*engine.BoardSize-3 {
		t.Errorf("Expected %d empty cells, got %d", engine.BoardSize*engine.BoardSize-3, got)
	}
	if len(loaded.Engine.GetMoveHistory()) != 1 {
		t.Error("Move history should be persisted")
	}
}

func TestPersistentManager_Delete(t *testing.T) {
	fp, cfg, restart := newStore(t)
	manager := restart()

	manager.Create("dead", cfg)
	if err := manager.Delete("DEAD"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if fp.Exists("dead") {
		t.Error("Session file should be removed on delete")
	}
	if _, err := restart().Get("dead"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound after restart, got %v", err)
	}

	// only on disk
	restart().Create("disk", cfg)
	if err := manager.Delete("disk"); err != nil {
		t.Fatalf("Failed to delete stored session: %v", err)
	}
	if fp.Exists("disk") {
		t.Error("Stored session should be removed")
	}
}

func TestPersistentManager_LoadPersistedSessions(t *testing.T) {
	_, cfg, restart := newStore(t)
	first := restart()

	ids := []string{"0a0a", "0b0b", "0c0c"}
	for _, id := range ids {
		if _, err := first.Create(id, cfg); err != nil {
			t.Fatalf("Failed to create session %s: %v", id, err)
		}
	}

	manager := restart()
	if err := manager.LoadPersistedSessions(); err != nil {
		t.Fatalf("Failed to load persisted sessions: %v", err)
	}
	if manager.Count() != len(ids) {
		t.Errorf("Expected %d sessions, got %d", len(ids), manager.Count())
	}
	for _, id := range ids {
		session, err := manager.Get(id)
		if err != nil {
			t.Fatalf("Failed to get session %s: %v", id, err)
		}
		if session.ID != id {
			t.Errorf("Expected ID %s, got %s", id, session.ID)
		}
	}
}

func TestPersistentManager_LastAccessedSurvivesRestart(t *testing.T) {
	_, cfg, restart := newStore(t)
	manager := restart()

	session, _ := manager.Create("seen", cfg)
	session.LastAccessedAt = time.Now().Add(-time.Hour)
	before := session.LastAccessedAt

	if err := manager.UpdateLastAccessed("seen"); err != nil {
		t.Fatalf("Failed to update last accessed: %v", err)
	}

	loaded, err := restart().Get("seen")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	if !loaded.LastAccessedAt.After(before) {
		t.Error("Last accessed time should be saved")
	}
}

func TestPersistentManager_EvictedSessionResumes(t *testing.T) {
	_, cfg, restart := newStore(t)
	manager := restart()

	session, _ := manager.Create("nap1", cfg)
	session.Engine.Place(0, 2)
	if err := manager.SaveAllSessions(); err != nil {
		t.Fatalf("SaveAllSessions failed: %v", err)
	}

	session.LastAccessedAt = time.Now().Add(-time.Hour)
	if manager.CleanupExpiredSessions(time.Minute) != 1 {
		t.Fatal("Expected the idle session to be evicted")
	}

	resumed, err := manager.Get("nap1")
	if err != nil {
		t.Fatalf("Evicted session should reload from disk: %v", err)
	}
	if resumed == session {
		t.Error("Expected a freshly loaded session")
	}
	if len(resumed.Engine.GetMoveHistory()) != 1 {
		t.Error("Resumed session should keep its placement")
	}
}

// Readers share the service read lock while each one touches the session,
// so run with -race.
func TestPersistentManager_ConcurrentServiceReads(t *testing.T) {
	configManager, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	fp, err := NewFilePersistence(t.TempDir(), configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	manager := NewManagerWithPersistence(fp)
	svc := service.NewGameService(manager, configManager)

	ctx := context.Background()
	info, err := svc.CreateSession(ctx, "")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8*50)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				var err error
				switch (g + i) % 3 {
				case 0:
					_, err = svc.GetSession(ctx, info.ID)
				case 1:
					_, err = svc.ListSessions(ctx)
				default:
					manager.CleanupExpiredSessions(time.Hour)
					err = manager.SaveAllSessions()
				}
				if err != nil {
					errs <- err
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error: %v", err)
	}

	got, err := svc.GetSession(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.LastAccessedAt.Before(info.LastAccessedAt) {
		t.Error("Expected the access time to move forward")
	}
}
