package app

import (
	"context"
	"strings"
	"testing"

	"github.com/vokin23/channelsearch/internal/auth"
	"github.com/vokin23/channelsearch/internal/directory"
	"github.com/vokin23/channelsearch/internal/search"
	"github.com/vokin23/channelsearch/internal/session"
)

type fakeSearcher struct {
	results []directory.Candidate
	err     error
	calls   [][]string
}

func (f *fakeSearcher) Run(ctx context.Context, terms []string) ([]directory.Candidate, error) {
	f.calls = append(f.calls, terms)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeDir struct {
	authorized bool
	codeHash   string
	signInErr  error
}

func (f *fakeDir) IsAuthorized(ctx context.Context) (bool, error) { return f.authorized, nil }
func (f *fakeDir) SearchGlobal(ctx context.Context, term string, limit int) ([]directory.Candidate, error) {
	return nil, nil
}
func (f *fakeDir) SearchMessages(ctx context.Context, term string, limit int) ([]directory.Candidate, error) {
	return nil, nil
}
func (f *fakeDir) ListOwnDialogs(ctx context.Context, limit int) ([]directory.Candidate, error) {
	return nil, nil
}
func (f *fakeDir) RequestCode(ctx context.Context) (string, error) { return f.codeHash, nil }
func (f *fakeDir) SignIn(ctx context.Context, code, hash string) error {
	if f.signInErr != nil {
		return f.signInErr
	}
	f.authorized = true
	return nil
}
func (f *fakeDir) Close() error { return nil }

func channels(handles ...string) []directory.Candidate {
	out := make([]directory.Candidate, 0, len(handles))
	for _, h := range handles {
		out = append(out, directory.Candidate{Title: strings.ToTitle(h), Handle: h, Broadcast: true})
	}
	return out
}

func newTestController(searcher Searcher, dir directory.Client) (*Controller, *session.Manager) {
	sessions := session.NewManager(0)
	ctl := NewController(sessions, searcher, auth.NewCoordinator(), dir, "+10000000000", 6)
	return ctl, sessions
}

func TestHandleTextRunsSearchAndStoresResults(t *testing.T) {
	searcher := &fakeSearcher{results: channels("news1", "tech1", "dev1")}
	ctl, sessions := newTestController(searcher, &fakeDir{authorized: true})
	ctx := context.Background()

	ctl.Start(7, "Alice")
	models, err := ctl.HandleText(ctx, 7, "news, tech")
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if len(models) != 1 {
		t.Fatalf("expected one message, got %d", len(models))
	}

	m := models[0]
	if len(m.Buttons) != 3 {
		t.Fatalf("expected 3 channel buttons, got %d", len(m.Buttons))
	}
	if m.Nav == nil || m.Nav.Label != "1/1" {
		t.Fatalf("expected single page nav, got %+v", m.Nav)
	}
	if m.Nav.HasPrev || m.Nav.HasNext {
		t.Error("single page must not expose page flips")
	}

	s := sessions.Get(7)
	if len(s.Results) != 3 || s.Page != 0 || s.Detailed {
		t.Fatalf("unexpected stored session: %+v", s)
	}
	if len(searcher.calls) != 1 || len(searcher.calls[0]) != 2 {
		t.Fatalf("unexpected searcher calls: %v", searcher.calls)
	}
}

func TestHandleTextRejectsEmptyQueryWithoutSearching(t *testing.T) {
	searcher := &fakeSearcher{}
	ctl, _ := newTestController(searcher, &fakeDir{authorized: true})

	models, err := ctl.HandleText(context.Background(), 7, "  , ,, ")
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if len(searcher.calls) != 0 {
		t.Fatal("empty query must not reach the search service")
	}
	if !strings.Contains(models[0].Text, "Invalid query") {
		t.Fatalf("expected rejection message, got %q", models[0].Text)
	}
}

func TestAuthDetourAndReplay(t *testing.T) {
	dir := &fakeDir{codeHash: "hash-1"}
	searcher := &fakeSearcher{err: directory.ErrAuthRequired}
	ctl, sessions := newTestController(searcher, dir)
	ctx := context.Background()

	// Search hits the auth wall: query is parked, code requested.
	models, err := ctl.HandleText(ctx, 7, "news, tech")
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if !strings.Contains(models[0].Text, "Authorization required") {
		t.Fatalf("expected auth prompt, got %q", models[0].Text)
	}
	if sessions.Phase(7) != session.PhaseAwaitingCode {
		t.Fatalf("expected awaiting_code, got %s", sessions.Phase(7))
	}

	// Submitting the code signs in and replays the parked query.
	searcher.err = nil
	searcher.results = channels("news1")
	models, err = ctl.HandleText(ctx, 7, "12345")
	if err != nil {
		t.Fatalf("HandleText(code): %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected auth confirmation plus results, got %d messages", len(models))
	}
	if !strings.Contains(models[0].Text, "Authorized") {
		t.Fatalf("expected auth success first, got %q", models[0].Text)
	}
	if len(models[1].Buttons) != 1 {
		t.Fatalf("expected replayed results, got %+v", models[1])
	}
	if got := searcher.calls[len(searcher.calls)-1]; len(got) != 2 || got[0] != "news" {
		t.Fatalf("replay used wrong terms: %v", got)
	}
	if sessions.Phase(7) != session.PhaseCollectingTerms {
		t.Fatalf("expected collecting_terms after replay, got %s", sessions.Phase(7))
	}
}

func TestInvalidCodeKeepsAwaitingPhase(t *testing.T) {
	dir := &fakeDir{codeHash: "hash-1", signInErr: directory.ErrInvalidCode}
	searcher := &fakeSearcher{err: directory.ErrAuthRequired}
	ctl, sessions := newTestController(searcher, dir)
	ctx := context.Background()

	if _, err := ctl.HandleText(ctx, 7, "news"); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	models, err := ctl.HandleText(ctx, 7, "00000")
	if err != nil {
		t.Fatalf("HandleText(code): %v", err)
	}
	if !strings.Contains(models[0].Text, "Invalid code") {
		t.Fatalf("expected invalid code message, got %q", models[0].Text)
	}
	if sessions.Phase(7) != session.PhaseAwaitingCode {
		t.Fatal("invalid code must keep the user in the code phase")
	}
}

func TestTransientFailureMessage(t *testing.T) {
	searcher := &fakeSearcher{err: &search.TransientError{}}
	ctl, sessions := newTestController(searcher, &fakeDir{authorized: true})

	models, err := ctl.HandleText(context.Background(), 7, "news")
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if !strings.Contains(models[0].Text, "Search failed") {
		t.Fatalf("expected transient failure message, got %q", models[0].Text)
	}
	if sessions.Phase(7) != session.PhaseCollectingTerms {
		t.Fatal("transient failure should let the user retry immediately")
	}
}

func TestHandleActionPagination(t *testing.T) {
	searcher := &fakeSearcher{results: channels("a", "b", "c", "d", "e", "f", "g", "h")}
	ctl, sessions := newTestController(searcher, &fakeDir{authorized: true})
	ctx := context.Background()

	if _, err := ctl.HandleText(ctx, 7, "stuff"); err != nil {
		t.Fatalf("HandleText: %v", err)
	}

	// Backward flip at the first page is a no-op.
	_, changed, err := ctl.HandleAction(ctx, 7, ActionPrevPage)
	if err != nil {
		t.Fatalf("HandleAction: %v", err)
	}
	if changed {
		t.Fatal("prev at first page must be a no-op")
	}

	// Forward flip moves to page 2.
	m, changed, err := ctl.HandleAction(ctx, 7, ActionNextPage)
	if err != nil {
		t.Fatalf("HandleAction: %v", err)
	}
	if !changed || m.Nav.Label != "2/2" {
		t.Fatalf("expected page 2/2, changed=%v nav=%+v", changed, m.Nav)
	}
	if sessions.Get(7).Page != 1 {
		t.Fatalf("page not stored, session=%+v", sessions.Get(7))
	}

	// Forward flip at the last page is a no-op.
	_, changed, err = ctl.HandleAction(ctx, 7, ActionNextPage)
	if err != nil {
		t.Fatalf("HandleAction: %v", err)
	}
	if changed {
		t.Fatal("next at last page must be a no-op")
	}
}

func TestHandleActionDetailsAndBack(t *testing.T) {
	searcher := &fakeSearcher{results: channels("a", "b")}
	ctl, sessions := newTestController(searcher, &fakeDir{authorized: true})
	ctx := context.Background()

	if _, err := ctl.HandleText(ctx, 7, "stuff"); err != nil {
		t.Fatalf("HandleText: %v", err)
	}

	m, changed, err := ctl.HandleAction(ctx, 7, ActionDetails)
	if err != nil || !changed {
		t.Fatalf("details: changed=%v err=%v", changed, err)
	}
	if !m.BackOnly {
		t.Fatal("details view should carry the back button")
	}
	if !sessions.Get(7).Detailed {
		t.Fatal("detailed flag not stored")
	}

	m, changed, err = ctl.HandleAction(ctx, 7, ActionBackToList)
	if err != nil || !changed {
		t.Fatalf("back: changed=%v err=%v", changed, err)
	}
	if m.Nav == nil || len(m.Buttons) != 2 {
		t.Fatalf("expected list view back, got %+v", m)
	}
	if sessions.Get(7).Detailed {
		t.Fatal("detailed flag should be cleared")
	}
}

func TestHandleActionIgnoreNeverMutates(t *testing.T) {
	searcher := &fakeSearcher{results: channels("a", "b")}
	ctl, sessions := newTestController(searcher, &fakeDir{authorized: true})
	ctx := context.Background()

	if _, err := ctl.HandleText(ctx, 7, "stuff"); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	before := sessions.Get(7)

	_, changed, err := ctl.HandleAction(ctx, 7, ActionIgnore)
	if err != nil {
		t.Fatalf("HandleAction: %v", err)
	}
	if changed {
		t.Fatal("ignore must not trigger a render")
	}

	after := sessions.Get(7)
	if before.Page != after.Page || before.Detailed != after.Detailed || len(before.Results) != len(after.Results) {
		t.Fatalf("ignore mutated the session: before=%+v after=%+v", before, after)
	}
}

func TestHandleActionNewSearchClearsResults(t *testing.T) {
	searcher := &fakeSearcher{results: channels("a")}
	ctl, sessions := newTestController(searcher, &fakeDir{authorized: true})
	ctx := context.Background()

	if _, err := ctl.HandleText(ctx, 7, "stuff"); err != nil {
		t.Fatalf("HandleText: %v", err)
	}

	m, changed, err := ctl.HandleAction(ctx, 7, ActionNewSearch)
	if err != nil || !changed {
		t.Fatalf("new search: changed=%v err=%v", changed, err)
	}
	if !strings.Contains(m.Text, "New search") {
		t.Fatalf("expected new search prompt, got %q", m.Text)
	}

	s := sessions.Get(7)
	if s.HasResults() {
		t.Fatal("new search must discard stored results")
	}
	if sessions.Phase(7) != session.PhaseCollectingTerms {
		t.Fatalf("expected collecting_terms, got %s", sessions.Phase(7))
	}
}

func TestHandleActionWithoutResults(t *testing.T) {
	ctl, _ := newTestController(&fakeSearcher{}, &fakeDir{authorized: true})
	ctx := context.Background()

	for _, action := range []string{ActionNextPage, ActionPrevPage, ActionDetails, ActionBackToList} {
		m, changed, err := ctl.HandleAction(ctx, 7, action)
		if err != nil {
			t.Fatalf("HandleAction(%s): %v", action, err)
		}
		if !changed || !strings.Contains(m.Text, "No saved search results") {
			t.Fatalf("action %s without results: changed=%v text=%q", action, changed, m.Text)
		}
	}
}
