package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/coursechat/coursechat/core"
)

// InMemoryStore is a volatile Store keeping turn history in a process local
// map. Sessions are guarded individually so that concurrent queries on
// distinct sessions never contend on a shared lock; the outer map lock is
// held only for entry lookup and creation, never across turn reads or
// writes of another session.
type InMemoryStore struct {
	window int

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu    sync.Mutex
	turns []core.Turn
}

// NewInMemoryStore constructs an empty in-memory session store retaining at
// most window turns per session.
func NewInMemoryStore(window int) *InMemoryStore {
	if window <= 0 {
		window = DefaultWindow
	}
	return &InMemoryStore{window: window, sessions: map[string]*sessionEntry{}}
}

// Create allocates a new unique session id. The session materializes lazily
// on first append.
func (s *InMemoryStore) Create() string { return uuid.NewString() }

// History returns a copy of the retained turns, oldest first.
func (s *InMemoryStore) History(_ context.Context, sessionID string) ([]core.Turn, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	turns := make([]core.Turn, len(entry.turns))
	copy(turns, entry.turns)
	return turns, nil
}

// Append records a completed turn, evicting the oldest turn beyond the
// window. The append is atomic under the session's own lock.
func (s *InMemoryStore) Append(_ context.Context, sessionID string, turn core.Turn) error {
	entry := s.entry(sessionID)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.turns = append(entry.turns, turn)
	if len(entry.turns) > s.window {
		// FIFO eviction; copy to release the backing array's oldest element.
		evicted := make([]core.Turn, s.window)
		copy(evicted, entry.turns[len(entry.turns)-s.window:])
		entry.turns = evicted
	}
	return nil
}

// SessionCount returns the number of materialized sessions.
func (s *InMemoryStore) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// entry returns the session entry, creating it if absent.
func (s *InMemoryStore) entry(sessionID string) *sessionEntry {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return entry
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok = s.sessions[sessionID]; ok {
		return entry
	}
	entry = &sessionEntry{}
	s.sessions[sessionID] = entry
	return entry
}
