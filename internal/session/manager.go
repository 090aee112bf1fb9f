package session

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/vokin23/channelsearch/core/logger"
	tghelpers "github.com/vokin23/channelsearch/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Manager keeps per-user conversation sessions in memory.
// A zero TTL disables idle eviction; otherwise sessions untouched for longer
// than the TTL are dropped lazily on access.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	ttl      time.Duration
	now      func() time.Time

	handlersMu sync.RWMutex
	handlers   map[Phase]tele.HandlerFunc
}

// NewManager constructs an in-memory session manager.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[int64]*Session),
		ttl:      ttl,
		now:      time.Now,
		handlers: make(map[Phase]tele.HandlerFunc),
	}
}

// expired reports whether s should be evicted. Callers hold m.mu.
func (m *Manager) expired(s *Session) bool {
	if m.ttl <= 0 || s == nil {
		return false
	}
	return m.now().Sub(s.LastSeen) > m.ttl
}

// Get returns a copy of the user's session, or an idle session if none exists.
func (m *Manager) Get(userID int64) Session {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	if ok && !m.expired(s) {
		copied := *s
		m.mu.RUnlock()
		return copied
	}
	m.mu.RUnlock()

	if ok {
		m.Clear(userID)
	}
	return Session{Phase: PhaseIdle}
}

// Mutate applies fn to the user's session under lock, creating it if missing.
// LastSeen is refreshed on every mutation.
func (m *Manager) Mutate(userID int64, fn func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok || m.expired(s) {
		s = &Session{Phase: PhaseIdle}
		m.sessions[userID] = s
	}
	fn(s)
	s.LastSeen = m.now()
}

// Count returns the number of tracked sessions, including not-yet-evicted idle ones.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops all expired sessions and returns how many were removed.
func (m *Manager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Janitor sweeps expired sessions at the given interval until ctx is done.
// It returns immediately when eviction is disabled.
func (m *Manager) Janitor(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = m.ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := m.Sweep(); removed > 0 {
				logger.Debug(ctx, "app", "session.sweep",
					slog.String("status", "ok"),
					slog.Int("removed", removed),
				)
			}
		}
	}
}

// Clear removes the session for a user.
func (m *Manager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Phase returns the user's current conversation phase.
func (m *Manager) Phase(userID int64) Phase {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	if ok && !m.expired(s) {
		phase := s.Phase
		m.mu.RUnlock()
		return phase
	}
	m.mu.RUnlock()

	if ok {
		m.Clear(userID)
	}
	return PhaseIdle
}

// InProgress reports whether the user has an active conversation phase.
func (m *Manager) InProgress(userID int64) bool {
	return m.Phase(userID) != PhaseIdle
}

// RegisterHandler associates a phase with its text handler.
func (m *Manager) RegisterHandler(p Phase, h tele.HandlerFunc) {
	if h == nil {
		return
	}
	m.handlersMu.Lock()
	defer m.handlersMu.Unlock()
	m.handlers[p] = h
}

// ManagerHandler dispatches the incoming update to the handler registered for
// the user's current phase, if any.
func (m *Manager) ManagerHandler(c tele.Context) error {
	userID := c.Sender().ID
	current := m.Phase(userID)
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "tg", "fsm.manager",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("phase", string(current)),
	)

	m.handlersMu.RLock()
	handler, ok := m.handlers[current]
	m.handlersMu.RUnlock()
	if ok {
		return handler(c)
	}
	return nil
}
