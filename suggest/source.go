// Package suggest provides autocomplete suggestions for formula variables.
//
// A Source searches for suggestions matching typed text. Autocomplete tracks
// what the user is typing, looks suggestions up in the background, and
// resolves committed words against whatever suggestions have arrived, so that
// a slow source never holds up typing.
package suggest

import (
	"context"

	"github.com/duke-git/lancet/v2/slice"

	"github.com/zephyrtronium/formula"
)

// Source searches for suggestions.
type Source interface {
	// Search returns suggestions for the query, best first. It may block
	// until ctx is done.
	Search(ctx context.Context, query string) ([]formula.Suggestion, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context, query string) ([]formula.Suggestion, error)

// Search calls f(ctx, query).
func (f SourceFunc) Search(ctx context.Context, query string) ([]formula.Suggestion, error) {
	return f(ctx, query)
}

// Dedupe removes suggestions with an ID already seen earlier in the list.
func Dedupe(list []formula.Suggestion) []formula.Suggestion {
	seen := make(map[string]bool, len(list))
	return slice.Filter(list, func(_ int, s formula.Suggestion) bool {
		if seen[s.ID] {
			return false
		}
		seen[s.ID] = true
		return true
	})
}
