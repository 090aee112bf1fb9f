package search

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/vokin23/channelsearch/core/config"
	"github.com/vokin23/channelsearch/internal/directory"
)

type fakeDirectory struct {
	authorized bool
	authErr    error

	global   map[string][]directory.Candidate
	messages map[string][]directory.Candidate
	dialogs  []directory.Candidate

	globalErr   error
	messagesErr error
	dialogsErr  error

	calls []string
}

func (f *fakeDirectory) IsAuthorized(ctx context.Context) (bool, error) {
	return f.authorized, f.authErr
}

func (f *fakeDirectory) SearchGlobal(ctx context.Context, term string, limit int) ([]directory.Candidate, error) {
	f.calls = append(f.calls, "global:"+term)
	if f.globalErr != nil {
		return nil, f.globalErr
	}
	return f.global[term], nil
}

func (f *fakeDirectory) SearchMessages(ctx context.Context, term string, limit int) ([]directory.Candidate, error) {
	f.calls = append(f.calls, "messages:"+term)
	if f.messagesErr != nil {
		return nil, f.messagesErr
	}
	return f.messages[term], nil
}

func (f *fakeDirectory) ListOwnDialogs(ctx context.Context, limit int) ([]directory.Candidate, error) {
	f.calls = append(f.calls, "dialogs")
	if f.dialogsErr != nil {
		return nil, f.dialogsErr
	}
	return f.dialogs, nil
}

func (f *fakeDirectory) RequestCode(ctx context.Context) (string, error) { return "", nil }
func (f *fakeDirectory) SignIn(ctx context.Context, code, hash string) error {
	return nil
}
func (f *fakeDirectory) Close() error { return nil }

func channel(title, handle string) directory.Candidate {
	return directory.Candidate{Title: title, Handle: handle, Broadcast: true}
}

func TestRunDeduplicatesByHandle(t *testing.T) {
	dir := &fakeDirectory{
		authorized: true,
		global: map[string][]directory.Candidate{
			"news": {channel("News One", "newsone"), channel("Tech", "techdaily")},
			"tech": {channel("Tech Daily", "TechDaily"), channel("Dev", "devhub")},
		},
	}
	svc := NewService(dir, Options{
		MaxResults:    10,
		StrategyOrder: []string{coreconfig.StrategyGlobal},
	})

	got, err := svc.Run(context.Background(), []string{"news", "tech"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 unique channels, got %d: %v", len(got), got)
	}
	// First-seen wins: "techdaily" keeps the title from the first term.
	if got[1].Title != "Tech" {
		t.Fatalf("expected first-seen duplicate to win, got title %q", got[1].Title)
	}
}

func TestRunStopsAtMaxResults(t *testing.T) {
	dir := &fakeDirectory{
		authorized: true,
		global: map[string][]directory.Candidate{
			"a": {channel("A1", "a1"), channel("A2", "a2"), channel("A3", "a3")},
			"b": {channel("B1", "b1")},
		},
	}
	svc := NewService(dir, Options{
		MaxResults:    2,
		StrategyOrder: []string{coreconfig.StrategyGlobal, coreconfig.StrategyDialogs},
	})

	got, err := svc.Run(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected cap of 2, got %d", len(got))
	}
	for _, call := range dir.calls {
		if call == "global:b" || call == "dialogs" {
			t.Fatalf("expected short-circuit before %q; calls: %v", call, dir.calls)
		}
	}
}

func TestRunAuthRequired(t *testing.T) {
	dir := &fakeDirectory{authorized: false}
	svc := NewService(dir, Options{MaxResults: 10})

	_, err := svc.Run(context.Background(), []string{"news"})
	if !errors.Is(err, directory.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if len(dir.calls) != 0 {
		t.Fatalf("expected no directory calls before auth, got %v", dir.calls)
	}
}

func TestRunTransientOnlyWhenEmptyAndErrored(t *testing.T) {
	boom := errors.New("boom")

	// All strategies fail, nothing found: transient.
	dir := &fakeDirectory{authorized: true, globalErr: boom, messagesErr: boom, dialogsErr: boom}
	svc := NewService(dir, Options{
		MaxResults: 10,
		StrategyOrder: []string{
			coreconfig.StrategyGlobal,
			coreconfig.StrategyMessages,
			coreconfig.StrategyDialogs,
		},
	})
	if _, err := svc.Run(context.Background(), []string{"news"}); !IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}

	// One strategy fails but another yields a result: partial success, no error.
	dir = &fakeDirectory{
		authorized: true,
		globalErr:  boom,
		messages:   map[string][]directory.Candidate{"news": {channel("News", "news")}},
	}
	svc = NewService(dir, Options{
		MaxResults:    10,
		StrategyOrder: []string{coreconfig.StrategyGlobal, coreconfig.StrategyMessages},
	})
	got, err := svc.Run(context.Background(), []string{"news"})
	if err != nil {
		t.Fatalf("expected partial success, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}

	// Nothing fails and nothing found: empty result, no error.
	dir = &fakeDirectory{authorized: true}
	svc = NewService(dir, Options{
		MaxResults:    10,
		StrategyOrder: []string{coreconfig.StrategyGlobal},
	})
	got, err = svc.Run(context.Background(), []string{"nothing"})
	if err != nil {
		t.Fatalf("expected clean empty run, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no results, got %d", len(got))
	}
}

func TestRunDialogStrategyFiltersByRelevance(t *testing.T) {
	about := "Daily crypto market analysis"
	dir := &fakeDirectory{
		authorized: true,
		dialogs: []directory.Candidate{
			channel("Crypto News", "cryptonews"),
			channel("Cooking Club", "cookingclub"),
			{Title: "Markets", Handle: "markets", About: &about, Broadcast: true},
		},
	}
	svc := NewService(dir, Options{
		MaxResults:    10,
		StrategyOrder: []string{coreconfig.StrategyDialogs},
	})

	got, err := svc.Run(context.Background(), []string{"crypto"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 relevant dialogs, got %d: %v", len(got), got)
	}
	for _, c := range got {
		if c.Handle == "cookingclub" {
			t.Fatal("irrelevant dialog leaked into results")
		}
	}
}

func TestRunDirectStrategyUsesJoinedQuery(t *testing.T) {
	dir := &fakeDirectory{
		authorized: true,
		global: map[string][]directory.Candidate{
			"go backend": {channel("Go Backend", "gobackend")},
		},
	}
	svc := NewService(dir, Options{
		MaxResults:    10,
		StrategyOrder: []string{coreconfig.StrategyDirect},
	})

	got, err := svc.Run(context.Background(), []string{"go", "backend"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 1 || got[0].Handle != "gobackend" {
		t.Fatalf("unexpected results: %v", got)
	}
	if len(dir.calls) != 1 || dir.calls[0] != "global:go backend" {
		t.Fatalf("expected a single joined-query call, got %v", dir.calls)
	}
}

func TestRelevantTokenContainment(t *testing.T) {
	cases := []struct {
		name  string
		cand  directory.Candidate
		terms []string
		want  bool
	}{
		{"substring in title", channel("Golang Weekly", "gw"), []string{"golang"}, true},
		{"case insensitive", channel("GOLANG weekly", "gw"), []string{"Golang"}, true},
		{"term token in title", channel("News Hub", "nh"), []string{"breaking news today"}, true},
		{"title token in term", channel("Crypto", "cr"), []string{"cryptocurrency news"}, true},
		{"short tokens ignored", channel("Gopher", "gp"), []string{"go tips"}, false},
		{"no match", channel("Cooking", "ck"), []string{"sports"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Relevant(tc.cand, tc.terms); got != tc.want {
				t.Fatalf("Relevant(%q, %v) = %v, want %v", tc.cand.Title, tc.terms, got, tc.want)
			}
		})
	}
}
