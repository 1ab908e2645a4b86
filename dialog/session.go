package dialog

import (
	"sync"

	"github.com/subgate/subgatebot/domain"
)

// Session is the ephemeral per-user conversation state. Draft is present
// only during creation states; ActivePost only while a committed post is
// under review or editing. They are never both meaningful at once.
type Session struct {
	State      State
	Draft      *domain.Draft
	ActivePost *domain.Post
}

// SessionStore keeps sessions keyed by user id. Sessions are created on
// first interaction and live for the process lifetime; the draft inside is
// discarded whenever the dialog returns to idle.
type SessionStore interface {
	Get(userID int64) Session
	Put(userID int64, s Session)
	Clear(userID int64)
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewMemoryStore returns the in-memory SessionStore used in production;
// state is strictly per-user, so a mutex-guarded map suffices.
func NewMemoryStore() SessionStore {
	return &memoryStore{sessions: make(map[int64]Session)}
}

// Get returns the user's session, or an idle one if none exists yet.
func (m *memoryStore) Get(userID int64) Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[userID]; ok {
		return s
	}
	return Session{State: StateIdle}
}

// Put stores the session for a user.
func (m *memoryStore) Put(userID int64, s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = s
}

// Clear removes the session entirely.
func (m *memoryStore) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
