// Package search implements the location lookup used by the /search endpoint.
//
// Matching is exact after normalization: the caller's free-text location is
// title-cased (first letter of each word upper-cased, the rest lower-cased)
// and compared byte-for-byte against the stored location. There is no fuzzy
// or partial matching. Functions are pure and safe for concurrent use.
package search

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-cafe-api/internal/domain"
)

// NormalizeLocation title-cases q using English casing rules.
//
//	NormalizeLocation("new york")  // "New York"
//	NormalizeLocation("NEW YORK")  // "New York"
func NormalizeLocation(q string) string {
	// Casers keep internal state, so build one per call.
	return cases.Title(language.English).String(q)
}

// FilterByLocation returns the cafes whose Location equals the normalized
// query, preserving input order. The result is never nil.
func FilterByLocation(cafes []domain.Cafe, query string) []domain.Cafe {
	out := make([]domain.Cafe, 0)
	if strings.TrimSpace(query) == "" {
		return out
	}
	key := NormalizeLocation(query)
	for _, c := range cafes {
		if c.Location == key {
			out = append(out, c)
		}
	}
	return out
}
