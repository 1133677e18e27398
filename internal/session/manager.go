// Package session manages active conversation sessions keyed by an
// opaque token.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mateoias/lingochat/internal/chat"
)

// entry pairs a live session with the bookkeeping the manager needs.
// The per-entry mutex serializes turns: one in-flight chat turn per
// session, even when the host dispatches requests in parallel.
type entry struct {
	mu         sync.Mutex
	session    *chat.Session
	lastActive time.Time
}

// Manager tracks active sessions by token and enforces a single active
// session per user: logging in again replaces any prior session.
type Manager struct {
	mu      sync.RWMutex
	byToken map[string]*entry
	byEmail map[string]string // email -> token
}

// NewManager creates an empty session registry.
func NewManager() *Manager {
	return &Manager{
		byToken: make(map[string]*entry),
		byEmail: make(map[string]string),
	}
}

// Start registers a new session for its owning user and returns the
// session token. Any existing session for the same user is discarded.
func (m *Manager) Start(s *chat.Session) string {
	token := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.byEmail[s.Email()]; ok {
		delete(m.byToken, old)
		slog.Info("session replaced", "user", s.Email())
	}
	m.byToken[token] = &entry{session: s, lastActive: time.Now()}
	m.byEmail[s.Email()] = token

	slog.Info("session started", "user", s.Email())
	return token
}

// Get returns the session for token, or nil if the token is unknown or
// expired.
func (m *Manager) Get(token string) *chat.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.byToken[token]; ok {
		return e.session
	}
	return nil
}

// WithSession runs fn with the session for token while holding that
// session's turn lock, and reports whether the token was live. All
// transcript mutation goes through here.
func (m *Manager) WithSession(token string, fn func(*chat.Session)) bool {
	m.mu.RLock()
	e, ok := m.byToken[token]
	m.mu.RUnlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastActive = time.Now()
	fn(e.session)
	return true
}

// End discards the session for token. Session state is not persisted;
// conversation history does not outlive the session.
func (m *Manager) End(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.byToken[token]
	if !ok {
		return
	}
	delete(m.byToken, token)
	if m.byEmail[e.session.Email()] == token {
		delete(m.byEmail, e.session.Email())
	}
	slog.Info("session ended", "user", e.session.Email())
}

// Len returns the number of active sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byToken)
}

// expire removes sessions idle longer than ttl and returns the number
// removed. lastActive is guarded by the per-entry turn lock, so each
// entry is inspected under it; a session with a turn in flight fails
// TryLock and is skipped until the next sweep.
func (m *Manager) expire(ttl time.Duration) int {
	threshold := time.Now().Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for token, e := range m.byToken {
		if !e.mu.TryLock() {
			continue
		}
		idle := e.lastActive.Before(threshold)
		e.mu.Unlock()
		if !idle {
			continue
		}
		delete(m.byToken, token)
		if m.byEmail[e.session.Email()] == token {
			delete(m.byEmail, e.session.Email())
		}
		slog.Info("session expired", "user", e.session.Email())
		removed++
	}
	return removed
}
