package session

import (
	"time"

	"github.com/vokin23/channelsearch/internal/directory"
)

// Phase identifies the conversation step a user is currently in.
type Phase string

const (
	// PhaseIdle indicates there is no active conversation with the user.
	PhaseIdle Phase = "idle"
	// PhaseCollectingTerms means the next text message is treated as a search query.
	PhaseCollectingTerms Phase = "collecting_terms"
	// PhaseAwaitingCode means the next text message is treated as a login code.
	PhaseAwaitingCode Phase = "awaiting_code"
)

// Session stores per-user conversation state: the current phase, the last
// search results, and the position within them.
type Session struct {
	Phase Phase

	// PendingQuery holds parsed search terms awaiting an auth detour replay.
	PendingQuery []string

	Results  []directory.Candidate
	Page     int
	Detailed bool

	// ChatID and MessageID locate the rendered results message for in-place edits.
	ChatID    int64
	MessageID int

	LastSeen time.Time
}

// HasResults reports whether the session carries a non-empty result set.
func (s *Session) HasResults() bool {
	return s != nil && len(s.Results) > 0
}
