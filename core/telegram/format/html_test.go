package format

import "testing"

func TestEscapeHTML(t *testing.T) {
	got := EscapeHTML(`Tech & <News> "daily"`)
	want := "Tech &amp; &lt;News&gt; &quot;daily&quot;"
	if got != want {
		t.Fatalf("EscapeHTML = %q, want %q", got, want)
	}
}

func TestStripTags(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<b>Found 3 channels!</b>", "Found 3 channels!"},
		{"Tech &amp; <code>News</code> &quot;daily&quot;", `Tech & News "daily"`},
		{"no markup at all", "no markup at all"},
		{"a &lt; b", "a < b"},
	}
	for _, tc := range cases {
		if got := StripTags(tc.in); got != tc.want {
			t.Errorf("StripTags(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"0123456789abc", 10, "0123456789..."},
		{"кириллица тоже режется", 9, "кириллица..."},
		{"anything", 0, ""},
	}
	for _, tc := range cases {
		if got := TruncateRunes(tc.in, tc.max); got != tc.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestCountSuffix(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1K"},
		{1500, "1K"},
		{999_999, "999K"},
		{1_000_000, "1M"},
		{2_300_000, "2M"},
	}
	for _, tc := range cases {
		if got := CountSuffix(tc.in); got != tc.want {
			t.Errorf("CountSuffix(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
