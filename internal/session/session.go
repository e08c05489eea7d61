package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"mimiops/internal"
)

// Session holds one user's accumulated selections, one list per
// screen. State lives only in this process and dies with the session.
type Session struct {
	ID       string
	lastSeen time.Time

	mu    sync.Mutex
	lists map[internal.SelectionKind]*List
}

// List returns the session's list for a screen, creating it on first
// use.
func (s *Session) List(kind internal.SelectionKind) *List {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[kind]
	if !ok {
		l = &List{}
		s.lists[kind] = l
	}
	return l
}

// Manager owns all live sessions, keyed by the ID carried in the
// session cookie. Idle sessions are swept after the TTL.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 4 * time.Hour
	}
	return &Manager{sessions: map[string]*Session{}, ttl: ttl}
}

// Get returns the session for id, creating a fresh one when the id is
// unknown or empty. The returned ID must be set back on the cookie.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked(time.Now())

	if id != "" {
		if s, ok := m.sessions[id]; ok {
			s.lastSeen = time.Now()
			return s
		}
	}

	s := &Session{
		ID:       uuid.NewString(),
		lastSeen: time.Now(),
		lists:    map[internal.SelectionKind]*List{},
	}
	m.sessions[s.ID] = s
	return s
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) sweepLocked(now time.Time) {
	for id, s := range m.sessions {
		if now.Sub(s.lastSeen) > m.ttl {
			delete(m.sessions, id)
		}
	}
}
