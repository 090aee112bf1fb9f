package view

import (
	"strings"
	"testing"

	"github.com/vokin23/channelsearch/internal/directory"
)

func candidates(n int) []directory.Candidate {
	out := make([]directory.Candidate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, directory.Candidate{
			Title:     "Channel " + string(rune('A'+i%26)),
			Handle:    "chan" + strings.Repeat("x", i+1),
			Broadcast: true,
		})
	}
	return out
}

func TestPages(t *testing.T) {
	cases := []struct {
		total, pageSize, want int
	}{
		{17, 8, 3},
		{16, 8, 2},
		{1, 6, 1},
		{6, 6, 1},
		{7, 6, 2},
		{0, 6, 0},
		{5, 0, 0},
	}
	for _, tc := range cases {
		if got := Pages(tc.total, tc.pageSize); got != tc.want {
			t.Errorf("Pages(%d, %d) = %d, want %d", tc.total, tc.pageSize, got, tc.want)
		}
	}
}

func TestClampPage(t *testing.T) {
	cases := []struct {
		page, pages, want int
	}{
		{-1, 3, 0},
		{0, 3, 0},
		{2, 3, 2},
		{3, 3, 2},
		{99, 3, 2},
		{5, 0, 0},
	}
	for _, tc := range cases {
		if got := ClampPage(tc.page, tc.pages); got != tc.want {
			t.Errorf("ClampPage(%d, %d) = %d, want %d", tc.page, tc.pages, got, tc.want)
		}
	}
}

func TestBuildListFirstPage(t *testing.T) {
	results := candidates(17)
	m := BuildList(results, 0, 8)

	if len(m.Buttons) != 8 {
		t.Fatalf("expected 8 buttons on first page, got %d", len(m.Buttons))
	}
	if m.Nav == nil {
		t.Fatal("expected nav")
	}
	if m.Nav.HasPrev {
		t.Error("first page should not have prev")
	}
	if !m.Nav.HasNext {
		t.Error("first page of 3 should have next")
	}
	if m.Nav.Label != "1/3" {
		t.Errorf("nav label = %q, want 1/3", m.Nav.Label)
	}
	if !strings.Contains(m.Text, "Found 17 channels") {
		t.Errorf("headline missing total: %q", m.Text)
	}
	if !strings.HasPrefix(m.Buttons[0].Label, "1. ") {
		t.Errorf("first button should be numbered from 1: %q", m.Buttons[0].Label)
	}
	if !m.Actions {
		t.Error("list view should expose the actions row")
	}
}

func TestBuildListLastPage(t *testing.T) {
	results := candidates(17)
	m := BuildList(results, 2, 8)

	if len(m.Buttons) != 1 {
		t.Fatalf("expected 1 button on last page, got %d", len(m.Buttons))
	}
	if !m.Nav.HasPrev || m.Nav.HasNext {
		t.Errorf("last page nav wrong: prev=%v next=%v", m.Nav.HasPrev, m.Nav.HasNext)
	}
	if !strings.HasPrefix(m.Buttons[0].Label, "17. ") {
		t.Errorf("numbering should continue across pages: %q", m.Buttons[0].Label)
	}
}

func TestBuildListClampsOutOfRangePage(t *testing.T) {
	results := candidates(5)
	m := BuildList(results, 10, 6)
	if m.Nav.Label != "1/1" {
		t.Errorf("out-of-range page should clamp to 1/1, got %q", m.Nav.Label)
	}
	if len(m.Buttons) != 5 {
		t.Errorf("expected all 5 buttons, got %d", len(m.Buttons))
	}
}

func TestBuildListSubscriberSuffix(t *testing.T) {
	count := 2_300_000
	results := []directory.Candidate{
		{Title: "Big", Handle: "big", Broadcast: true, Participants: &count},
	}
	m := BuildList(results, 0, 6)
	if !strings.Contains(m.Buttons[0].Label, "(2M)") {
		t.Errorf("expected subscriber suffix, got %q", m.Buttons[0].Label)
	}
}

func TestBuildDetailsEscapesAndTruncates(t *testing.T) {
	about := "Tips & tricks for <script> lovers. " + strings.Repeat("x", 200)
	count := 1_530_000
	results := []directory.Candidate{
		{Title: "Dev <One>", Handle: "devone", Broadcast: true, About: &about, Participants: &count},
	}
	m := BuildDetails(results, 0, 6)

	if !m.BackOnly {
		t.Error("details view should carry the back button")
	}
	if strings.Contains(m.Text, "<script>") {
		t.Error("about text was not escaped")
	}
	if !strings.Contains(m.Text, "&amp;") || !strings.Contains(m.Text, "&lt;One&gt;") {
		t.Errorf("expected escaped markup in %q", m.Text)
	}
	if !strings.Contains(m.Text, "1.5M") {
		t.Errorf("expected decimal subscriber count, got %q", m.Text)
	}
	if !strings.Contains(m.Text, "...") {
		t.Error("long description should be truncated with an ellipsis")
	}
	if !strings.Contains(m.Text, "https://t.me/devone") {
		t.Error("details should include the channel link")
	}
}

func TestDetailCount(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{950, "950"},
		{2_340, "2.3K"},
		{1_530_000, "1.5M"},
		{1_000, "1.0K"},
	}
	for _, tc := range cases {
		if got := detailCount(tc.n); got != tc.want {
			t.Errorf("detailCount(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}
