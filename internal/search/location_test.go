package search

import (
	"testing"

	"github.com/tbourn/go-cafe-api/internal/domain"
)

func TestNormalizeLocation(t *testing.T) {
	cases := []struct{ in, want string }{
		{"new york", "New York"},
		{"New York", "New York"},
		{"NEW YORK", "New York"},
		{"peckham", "Peckham"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeLocation(tc.in); got != tc.want {
			t.Fatalf("NormalizeLocation(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
}

func TestFilterByLocation_ExactAfterNormalization(t *testing.T) {
	cafes := []domain.Cafe{
		{ID: 1, Name: "A", Location: "New York"},
		{ID: 2, Name: "B", Location: "Peckham"},
		{ID: 3, Name: "C", Location: "New York"},
		{ID: 4, Name: "D", Location: "new york"}, // stored lower-case never matches
		{ID: 5, Name: "E", Location: "New York City"},
	}

	for _, q := range []string{"new york", "New York", "NEW YORK"} {
		got := FilterByLocation(cafes, q)
		if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
			t.Fatalf("query %q: unexpected result %+v", q, got)
		}
	}
}

func TestFilterByLocation_NoMatchAndEmptyQuery(t *testing.T) {
	cafes := []domain.Cafe{{ID: 1, Location: "Soho"}}

	if got := FilterByLocation(cafes, "york"); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	if got := FilterByLocation(cafes, "   "); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice for blank query, got %#v", got)
	}
	if got := FilterByLocation(nil, "Soho"); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice for nil input, got %#v", got)
	}
}
