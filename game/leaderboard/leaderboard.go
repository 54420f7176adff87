package leaderboard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/dominogame/game/engine"
)

// DefaultCapacity is the number of scores kept on the board
const DefaultCapacity = 10

var (
	ErrEmptyName     = errors.New("player name is required")
	ErrNameTooLong   = fmt.Errorf("player name must be at most %d characters", engine.MaxPlayerName)
	ErrNegativeScore = errors.New("score cannot be negative")
)

// Entry is one player's best score. Lower is better.
type Entry struct {
	Name       string    `json:"name"`
	Seconds    int64     `json:"seconds"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Store persists the leaderboard entries
type Store interface {
	Load() ([]Entry, error)
	Save(entries []Entry) error
}

// Leaderboard keeps the best scores in ascending order, one entry per player.
// Among equal scores the earlier entry ranks first. It is safe for concurrent use.
type Leaderboard struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
	store    Store
	now      func() time.Time
}

// New creates a leaderboard and loads the stored entries when a store is given
func New(capacity int, store Store) (*Leaderboard, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	lb := &Leaderboard{
		capacity: capacity,
		store:    store,
		now:      time.Now,
	}

	if store != nil {
		entries, err := store.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load leaderboard: %w", err)
		}
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Seconds < entries[j].Seconds })
		if len(entries) > capacity {
			entries = entries[:capacity]
		}
		lb.entries = entries
	}

	return lb, nil
}

// Add records a score for name. It returns the 1-based rank the player holds
// afterwards and whether this score was written to the board. A player who
// already holds a better or equal score keeps it; a score that does not make
// the board returns rank 0.
func (lb *Leaderboard) Add(name string, seconds int64) (int, bool, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return 0, false, ErrEmptyName
	case len(name) > engine.MaxPlayerName:
		return 0, false, ErrNameTooLong
	case seconds < 0:
		return 0, false, ErrNegativeScore
	}

	lb.mu.Lock()
	defer lb.mu.Unlock()

	entries := make([]Entry, 0, len(lb.entries)+1)
	for i, e := range lb.entries {
		if !strings.EqualFold(e.Name, name) {
			entries = append(entries, e)
			continue
		}
		if e.Seconds <= seconds {
			return i + 1, false, nil
		}
	}

	pos := sort.Search(len(entries), func(i int) bool { return entries[i].Seconds > seconds })
	if pos >= lb.capacity {
		return 0, false, nil
	}

	entry := Entry{Name: name, Seconds: seconds, RecordedAt: lb.now()}
	entries = append(entries, Entry{})
	copy(entries[pos+1:], entries[pos:])
	entries[pos] = entry
	if len(entries) > lb.capacity {
		entries = entries[:lb.capacity]
	}

	if lb.store != nil {
		if err := lb.store.Save(entries); err != nil {
			return 0, false, fmt.Errorf("failed to save leaderboard: %w", err)
		}
	}
	lb.entries = entries

	return pos + 1, true, nil
}

// Qualifies reports whether a score would currently make the board
func (lb *Leaderboard) Qualifies(seconds int64) bool {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return len(lb.entries) < lb.capacity || seconds < lb.entries[len(lb.entries)-1].Seconds
}

// Top returns a copy of the entries, best first
func (lb *Leaderboard) Top() []Entry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	top := make([]Entry, len(lb.entries))
	copy(top, lb.entries)
	return top
}

// Capacity returns the maximum number of entries
func (lb *Leaderboard) Capacity() int {
	return lb.capacity
}
