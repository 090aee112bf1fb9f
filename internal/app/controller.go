package app

import (
	"context"
	"errors"
	"strings"

	"log/slog"

	"github.com/vokin23/channelsearch/core/logger"
	"github.com/vokin23/channelsearch/internal/auth"
	"github.com/vokin23/channelsearch/internal/directory"
	"github.com/vokin23/channelsearch/internal/search"
	"github.com/vokin23/channelsearch/internal/session"
	"github.com/vokin23/channelsearch/internal/view"
)

// Callback actions understood by HandleAction.
const (
	ActionPrevPage   = "prev_page"
	ActionNextPage   = "next_page"
	ActionNewSearch  = "new_search"
	ActionDetails    = "detailed_view"
	ActionBackToList = "back_to_list"
	ActionIgnore     = "ignore"
)

// Searcher runs a channel search for parsed terms.
type Searcher interface {
	Run(ctx context.Context, terms []string) ([]directory.Candidate, error)
}

// Controller implements the conversation logic independent of the Telegram
// transport: every operation takes plain identifiers and returns view models.
type Controller struct {
	sessions *session.Manager
	searcher Searcher
	auth     *auth.Coordinator
	dir      directory.Client
	account  string
	pageSize int
}

// NewController wires the conversation controller.
func NewController(
	sessions *session.Manager,
	searcher Searcher,
	coordinator *auth.Coordinator,
	dir directory.Client,
	account string,
	pageSize int,
) *Controller {
	if pageSize <= 0 {
		pageSize = 6
	}
	return &Controller{
		sessions: sessions,
		searcher: searcher,
		auth:     coordinator,
		dir:      dir,
		account:  account,
		pageSize: pageSize,
	}
}

// Start opens a search conversation and returns the welcome message.
func (ctl *Controller) Start(userID int64, name string) view.Model {
	ctl.sessions.Mutate(userID, func(s *session.Session) {
		s.Phase = session.PhaseCollectingTerms
	})
	return view.Welcome(name)
}

// Cancel drops the user's session entirely.
func (ctl *Controller) Cancel(userID int64) view.Model {
	ctl.sessions.Clear(userID)
	return view.Cancelled()
}

// HandleText processes a free-form text message according to the user's
// conversation phase. It may return more than one message to send in order;
// the last one is the primary result message.
func (ctl *Controller) HandleText(ctx context.Context, userID int64, text string) ([]view.Model, error) {
	if ctl.sessions.Phase(userID) == session.PhaseAwaitingCode {
		return ctl.handleCode(ctx, userID, text)
	}
	return ctl.runSearch(ctx, userID, search.ParseQuery(text))
}

func (ctl *Controller) runSearch(ctx context.Context, userID int64, terms []string) ([]view.Model, error) {
	if len(terms) == 0 {
		ctl.sessions.Mutate(userID, func(s *session.Session) {
			s.Phase = session.PhaseCollectingTerms
		})
		return []view.Model{view.EmptyQuery()}, nil
	}

	results, err := ctl.searcher.Run(ctx, terms)
	switch {
	case errors.Is(err, directory.ErrAuthRequired):
		return ctl.beginAuthDetour(ctx, userID, terms)
	case err != nil:
		logger.Warn(ctx, "service.search", "search.failed",
			slog.Int64("user_id", userID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		ctl.sessions.Mutate(userID, func(s *session.Session) {
			s.Phase = session.PhaseCollectingTerms
		})
		return []view.Model{view.TransientFailure()}, nil
	}

	if len(results) == 0 {
		ctl.sessions.Mutate(userID, func(s *session.Session) {
			s.Phase = session.PhaseCollectingTerms
			s.Results = nil
			s.Page = 0
			s.Detailed = false
		})
		return []view.Model{view.NoResults(terms)}, nil
	}

	ctl.sessions.Mutate(userID, func(s *session.Session) {
		s.Phase = session.PhaseCollectingTerms
		s.Results = results
		s.Page = 0
		s.Detailed = false
		s.PendingQuery = nil
	})
	return []view.Model{view.BuildList(results, 0, ctl.pageSize)}, nil
}

// beginAuthDetour stores the query for replay, requests a login code, and
// moves the user into the code-entry phase.
func (ctl *Controller) beginAuthDetour(ctx context.Context, userID int64, terms []string) ([]view.Model, error) {
	if err := ctl.auth.RequestCode(ctx, ctl.account, ctl.dir); err != nil {
		logger.Error(ctx, "auth", "code.request_failed",
			slog.String("account", ctl.account),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return []view.Model{view.TransientFailure()}, nil
	}
	ctl.sessions.Mutate(userID, func(s *session.Session) {
		s.Phase = session.PhaseAwaitingCode
		s.PendingQuery = terms
	})
	return []view.Model{view.AuthRequired()}, nil
}

func (ctl *Controller) handleCode(ctx context.Context, userID int64, text string) ([]view.Model, error) {
	code := strings.TrimSpace(text)
	err := ctl.auth.SubmitCode(ctx, ctl.account, code, ctl.dir)
	switch {
	case errors.Is(err, directory.ErrInvalidCode):
		// Stay in the code phase so the user can retry.
		return []view.Model{view.InvalidCode()}, nil
	case errors.Is(err, auth.ErrNoPendingCode):
		ctl.sessions.Mutate(userID, func(s *session.Session) {
			s.Phase = session.PhaseCollectingTerms
		})
		return []view.Model{view.NewSearchPrompt()}, nil
	case err != nil:
		return []view.Model{view.TransientFailure()}, nil
	}

	pending := ctl.sessions.Get(userID).PendingQuery
	ctl.sessions.Mutate(userID, func(s *session.Session) {
		s.Phase = session.PhaseCollectingTerms
	})

	if len(pending) == 0 {
		return []view.Model{view.AuthSuccess()}, nil
	}

	// Replay the query that triggered the auth detour.
	models, err := ctl.runSearch(ctx, userID, pending)
	if err != nil {
		return models, err
	}
	return append([]view.Model{view.AuthSuccess()}, models...), nil
}

// HandleAction reacts to an inline keyboard action. The second return value
// reports whether the rendered message changed; boundary page flips and
// ignore taps are no-ops.
func (ctl *Controller) HandleAction(ctx context.Context, userID int64, action string) (view.Model, bool, error) {
	switch action {
	case ActionIgnore:
		return view.Model{}, false, nil

	case ActionNewSearch:
		ctl.sessions.Clear(userID)
		ctl.sessions.Mutate(userID, func(s *session.Session) {
			s.Phase = session.PhaseCollectingTerms
		})
		return view.NewSearchPrompt(), true, nil

	case ActionPrevPage, ActionNextPage:
		return ctl.flipPage(userID, action)

	case ActionDetails:
		s := ctl.sessions.Get(userID)
		if !s.HasResults() {
			return view.NoSavedResults(), true, nil
		}
		ctl.sessions.Mutate(userID, func(s *session.Session) {
			s.Detailed = true
		})
		return view.BuildDetails(s.Results, s.Page, ctl.pageSize), true, nil

	case ActionBackToList:
		s := ctl.sessions.Get(userID)
		if !s.HasResults() {
			return view.NoSavedResults(), true, nil
		}
		ctl.sessions.Mutate(userID, func(s *session.Session) {
			s.Detailed = false
		})
		return view.BuildList(s.Results, s.Page, ctl.pageSize), true, nil

	default:
		logger.Warn(ctx, "tg", "action.unknown",
			slog.Int64("user_id", userID),
			slog.String("action", action),
		)
		return view.Model{}, false, nil
	}
}

func (ctl *Controller) flipPage(userID int64, action string) (view.Model, bool, error) {
	s := ctl.sessions.Get(userID)
	if !s.HasResults() {
		return view.NoSavedResults(), true, nil
	}

	pages := view.Pages(len(s.Results), ctl.pageSize)
	next := s.Page
	if action == ActionPrevPage {
		next--
	} else {
		next++
	}
	next = view.ClampPage(next, pages)
	if next == s.Page {
		return view.Model{}, false, nil
	}

	ctl.sessions.Mutate(userID, func(s *session.Session) {
		s.Page = next
		s.Detailed = false
	})
	return view.BuildList(s.Results, next, ctl.pageSize), true, nil
}

// Session exposes a copy of the user's session for diagnostics.
func (ctl *Controller) Session(userID int64) session.Session {
	return ctl.sessions.Get(userID)
}
