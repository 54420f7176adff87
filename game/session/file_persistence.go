package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/dominogame/game/engine"
	"github.com/wricardo/mcp-training/dominogame/game/service"
)

const recordExt = ".json"

// FilePersistence keeps one JSON Record per session in a directory. File
// names are the lowercase session ID.
type FilePersistence struct {
	sessionsDir   string
	configManager service.ConfigManager
	engineOpts    []engine.BoardOption
}

// NewFilePersistence creates dir if needed. opts are applied to every
// engine rebuilt by Load.
func NewFilePersistence(dir string, configManager service.ConfigManager, opts ...engine.BoardOption) (*FilePersistence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &FilePersistence{sessionsDir: dir, configManager: configManager, engineOpts: opts}, nil
}

func (fp *FilePersistence) path(id string) string {
	return filepath.Join(fp.sessionsDir, strings.ToLower(id)+recordExt)
}

// Save writes the session to a temporary file and renames it into place
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil || session.Engine == nil {
		return errors.New("cannot save a session without an engine")
	}

	data, err := json.MarshalIndent(Record{
		Version:        recordVersion,
		ID:             session.ID,
		ConfigID:       fp.configID(session),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessed(),
		ScoreSubmitted: session.Scored(),
		GameState:      session.Engine.GetState(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session %s: %w", session.ID, err)
	}

	tmp, err := os.CreateTemp(fp.sessionsDir, strings.ToLower(session.ID)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write session %s: %w", session.ID, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session %s: %w", session.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session %s: %w", session.ID, err)
	}
	if err := os.Rename(tmp.Name(), fp.path(session.ID)); err != nil {
		return fmt.Errorf("failed to replace session %s: %w", session.ID, err)
	}
	return nil
}

// configID names the configuration file a session was created from. Older
// sessions only know the display name, which is matched against the
// available configurations.
func (fp *FilePersistence) configID(session *service.Session) string {
	if session.ConfigID != "" {
		return session.ConfigID
	}
	if session.Config == nil {
		return ""
	}
	if infos, err := fp.configManager.ListConfigs(); err == nil {
		for _, info := range infos {
			if info.Name == session.Config.Name {
				return info.ConfigID
			}
		}
	}
	return session.Config.Name
}

// Load reads a session and rebuilds its engine from the stored board
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	data, err := os.ReadFile(fp.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", id, err)
	}
	switch {
	case rec.Version > recordVersion:
		return nil, fmt.Errorf("session %s was written by a newer version (%d)", id, rec.Version)
	case rec.GameState == nil:
		return nil, fmt.Errorf("session %s has no game state", id)
	}

	gameConfig, err := fp.configManager.LoadConfig(rec.ConfigID)
	if err != nil {
		return nil, fmt.Errorf("session %s: failed to load config %q: %w", id, rec.ConfigID, err)
	}
	eng, err := engine.NewEngine(gameConfig, fp.engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	if err := eng.SetState(rec.GameState); err != nil {
		return nil, fmt.Errorf("session %s: failed to restore board: %w", id, err)
	}

	return &service.Session{
		ID:             rec.ID,
		ConfigID:       rec.ConfigID,
		Engine:         eng,
		Config:         gameConfig,
		CreatedAt:      rec.CreatedAt,
		LastAccessedAt: rec.LastAccessedAt,
		ScoreSubmitted: rec.ScoreSubmitted,
	}, nil
}

func (fp *FilePersistence) Delete(id string) error {
	err := os.Remove(fp.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to remove session %s: %w", id, err)
	}
	return nil
}

// ListAll returns the IDs of every stored session
func (fp *FilePersistence) ListAll() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(fp.sessionsDir, "*"+recordExt))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	ids := make([]string, 0, len(files))
	for _, file := range files {
		ids = append(ids, strings.TrimSuffix(filepath.Base(file), recordExt))
	}
	return ids, nil
}

func (fp *FilePersistence) Exists(id string) bool {
	info, err := os.Stat(fp.path(id))
	return err == nil && !info.IsDir()
}
