package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/dominogame/game/engine"
	"github.com/wricardo/mcp-training/dominogame/game/service"
)

var (
	// ErrSessionNotFound is shared with the service layer so callers can match it with errors.Is
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// maxIDAttempts bounds the retries when a generated ID collides
const maxIDAttempts = 16

// Manager owns the sessions being played. The map is keyed by the lowercase
// session ID; Session.ID keeps the ID as it was created.
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	log         logrus.FieldLogger
	engineOpts  []engine.BoardOption
	mu          sync.RWMutex
}

// Option customizes a Manager
type Option func(*Manager)

// WithPersistence stores sessions through p
func WithPersistence(p SessionPersistence) Option {
	return func(m *Manager) { m.persistence = p }
}

// WithLogger sets the logger for warnings and per-session board activity
func WithLogger(logger logrus.FieldLogger) Option {
	return func(m *Manager) { m.log = logger }
}

// WithEngineOptions appends board options to every engine the manager creates
func WithEngineOptions(opts ...engine.BoardOption) Option {
	return func(m *Manager) { m.engineOpts = append(m.engineOpts, opts...) }
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*service.Session),
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func NewManagerWithPersistence(persistence SessionPersistence, opts ...Option) *Manager {
	return NewManager(append([]Option{WithPersistence(persistence)}, opts...)...)
}

func key(id string) string {
	return strings.ToLower(id)
}

// validID rejects IDs that could escape the sessions directory
func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\.`)
}

// stored reports whether persistence holds id
func (m *Manager) stored(id string) bool {
	return m.persistence != nil && validID(id) && m.persistence.Exists(id)
}

// persist saves the session and only logs a failure; in-memory play goes on
func (m *Manager) persist(session *service.Session, action string) {
	if m.persistence == nil {
		return
	}
	if err := m.persistence.Save(session); err != nil {
		m.log.WithError(err).WithFields(logrus.Fields{
			"session": session.ID,
			"action":  action,
		}).Warn("failed to persist session")
	}
}

// snapshot copies the session pointers so callers can work without the lock
func (m *Manager) snapshot() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		out = append(out, session)
	}
	return out
}

// newEngine builds an engine whose board reports to the session's logger
func (m *Manager) newEngine(id string, config *engine.GameConfig) (*engine.GameEngine, error) {
	opts := append([]engine.BoardOption{
		engine.WithObserver(engine.NewLogObserver(m.log.WithField("session", id))),
	}, m.engineOpts...)
	return engine.NewEngine(config, opts...)
}

// Create starts a game under id, or under a fresh random ID when id is empty
func (m *Manager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	if strings.ContainsAny(id, `/\.`) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case id == "":
		generated, err := m.generateSessionID()
		if err != nil {
			return nil, err
		}
		id = generated
	case m.sessions[key(id)] != nil:
		return nil, ErrSessionAlreadyExists
	}

	eng, err := m.newEngine(id, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key(id)] = session
	m.persist(session, "create")

	return session, nil
}

// Get returns the session for id, ignoring case. A session that is only on
// disk is loaded and kept in memory.
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	session := m.sessions[key(id)]
	m.mu.RUnlock()
	if session != nil {
		return session, nil
	}

	if !m.stored(id) {
		return nil, ErrSessionNotFound
	}

	loaded, err := m.persistence.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if cached := m.sessions[key(id)]; cached != nil {
		return cached, nil
	}
	m.sessions[key(id)] = loaded
	return loaded, nil
}

func (m *Manager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	session, err := m.Get(id)
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, config)
	}
	return session, err
}

// List returns the sessions held in memory
func (m *Manager) List() []*service.Session {
	return m.snapshot()
}

// Delete forgets the session in memory and removes its stored copy
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, inMemory := m.sessions[key(id)]
	if inMemory {
		delete(m.sessions, key(id))
		id = session.ID
	}

	if m.stored(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}
	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory evicts the session but leaves its stored copy
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sessions[key(id)] == nil {
		return ErrSessionNotFound
	}
	delete(m.sessions, key(id))
	return nil
}

// UpdateLastAccessed touches the session and saves it
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := m.sessions[key(id)]
	if session == nil {
		return ErrSessionNotFound
	}
	session.Touch(time.Now())
	m.persist(session, "access")
	return nil
}

// Save writes one session to persistence; without persistence it is a no-op
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	session := m.sessions[key(id)]
	m.mu.RUnlock()
	if session == nil {
		return ErrSessionNotFound
	}
	return m.persistence.Save(session)
}

// CleanupExpiredSessions evicts sessions idle for longer than maxAge and
// returns how many went. Stored copies stay, so the game can be resumed.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for k, session := range m.sessions {
		if !session.LastAccessed().Before(cutoff) {
			continue
		}
		delete(m.sessions, k)
		removed++
	}

	if removed > 0 {
		m.log.WithField("removed", removed).Info("expired sessions evicted")
	}
	return removed
}

// Count returns the number of sessions in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID picks an unused 4-hex-digit ID. Callers hold m.mu.
func (m *Manager) generateSessionID() (string, error) {
	buf := make([]byte, 2)
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate session ID: %w", err)
		}
		id := hex.EncodeToString(buf)
		if m.sessions[id] == nil && !m.stored(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: no free ID after %d attempts", ErrInvalidSessionID, maxIDAttempts)
}

// LoadPersistedSessions brings every stored session into memory. Sessions
// that fail to load are logged and skipped.
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for _, id := range ids {
		if m.sessions[key(id)] != nil {
			continue
		}
		session, err := m.persistence.Load(id)
		if err != nil {
			m.log.WithError(err).WithField("session", id).Warn("failed to load persisted session")
			continue
		}
		m.sessions[key(id)] = session
		loaded++
	}

	if loaded > 0 {
		m.log.WithField("count", loaded).Info("loaded persisted sessions")
	}
	return nil
}

// SaveAllSessions writes every in-memory session and reports how many failed
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	failed := 0
	for _, session := range m.snapshot() {
		if err := m.persistence.Save(session); err != nil {
			m.log.WithError(err).WithField("session", session.ID).Warn("failed to save session")
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to save %d sessions", failed)
	}
	return nil
}
