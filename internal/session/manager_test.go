package session

import (
	"testing"
	"time"
)

func TestGetReturnsIdleForUnknownUser(t *testing.T) {
	m := NewManager(0)
	s := m.Get(1)
	if s.Phase != PhaseIdle {
		t.Fatalf("expected idle phase, got %s", s.Phase)
	}
	if m.Count() != 0 {
		t.Fatal("Get must not create sessions")
	}
}

func TestMutateCreatesAndUpdates(t *testing.T) {
	m := NewManager(0)
	m.Mutate(1, func(s *Session) {
		s.Phase = PhaseCollectingTerms
		s.Page = 2
	})

	s := m.Get(1)
	if s.Phase != PhaseCollectingTerms || s.Page != 2 {
		t.Fatalf("unexpected session: %+v", s)
	}
	if !m.InProgress(1) {
		t.Fatal("collecting phase should count as in progress")
	}

	// Get returns a copy; mutating it must not leak back.
	s.Page = 99
	if got := m.Get(1); got.Page != 2 {
		t.Fatalf("Get should return a copy, stored page = %d", got.Page)
	}
}

func TestClearRemovesSession(t *testing.T) {
	m := NewManager(0)
	m.Mutate(1, func(s *Session) { s.Phase = PhaseAwaitingCode })
	m.Clear(1)

	if m.InProgress(1) {
		t.Fatal("cleared session should be idle")
	}
	if m.Count() != 0 {
		t.Fatalf("expected no sessions, got %d", m.Count())
	}
}

func TestTTLEviction(t *testing.T) {
	now := time.Now()
	m := NewManager(10 * time.Minute)
	m.now = func() time.Time { return now }

	m.Mutate(1, func(s *Session) { s.Phase = PhaseCollectingTerms })

	// Still fresh.
	now = now.Add(5 * time.Minute)
	if !m.InProgress(1) {
		t.Fatal("session should survive within TTL")
	}

	// Touching the session resets the clock.
	m.Mutate(1, func(s *Session) { s.Page = 1 })
	now = now.Add(9 * time.Minute)
	if !m.InProgress(1) {
		t.Fatal("session should survive after refresh")
	}

	// Idle past the TTL: evicted lazily on access.
	now = now.Add(2 * time.Minute)
	if m.InProgress(1) {
		t.Fatal("idle session should be evicted past TTL")
	}
	if got := m.Get(1); got.Phase != PhaseIdle {
		t.Fatalf("expected idle after eviction, got %s", got.Phase)
	}
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	now := time.Now()
	m := NewManager(10 * time.Minute)
	m.now = func() time.Time { return now }

	m.Mutate(1, func(s *Session) { s.Phase = PhaseCollectingTerms })
	now = now.Add(11 * time.Minute)
	m.Mutate(2, func(s *Session) { s.Phase = PhaseAwaitingCode })

	if removed := m.Sweep(); removed != 1 {
		t.Fatalf("Sweep removed %d sessions, want 1", removed)
	}
	if m.InProgress(1) {
		t.Fatal("expired session should be gone")
	}
	if !m.InProgress(2) {
		t.Fatal("fresh session must survive the sweep")
	}

	m.ttl = 0
	if removed := m.Sweep(); removed != 0 {
		t.Fatalf("disabled sweep removed %d sessions", removed)
	}
}

func TestZeroTTLNeverEvicts(t *testing.T) {
	now := time.Now()
	m := NewManager(0)
	m.now = func() time.Time { return now }

	m.Mutate(1, func(s *Session) { s.Phase = PhaseAwaitingCode })
	now = now.Add(1000 * time.Hour)

	if !m.InProgress(1) {
		t.Fatal("zero TTL must keep sessions indefinitely")
	}
}
