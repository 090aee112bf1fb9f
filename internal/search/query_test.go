package search

import (
	"reflect"
	"testing"
)

func TestParseQuery(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"simple", "news, tech", []string{"news", "tech"}},
		{"extra whitespace", "  golang ,  backend  ", []string{"golang", "backend"}},
		{"empty segments dropped", "news,,  ,tech,", []string{"news", "tech"}},
		{"single term", "crypto", []string{"crypto"}},
		{"only separators", " , ,, ", []string{}},
		{"empty input", "", []string{}},
		{"term with inner spaces", "machine learning, ai", []string{"machine learning", "ai"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseQuery(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseQuery(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
