package filter

import (
	"strings"
	"time"

	"github.com/alanyoungcy/marketboard/internal/domain"
)

// Predicate keeps a market when it returns true.
type Predicate func(m *domain.Market) bool

// Keep returns the markets every predicate accepts, preserving order. With no
// predicates the input is returned unchanged.
func Keep(markets []domain.Market, preds ...Predicate) []domain.Market {
	if len(preds) == 0 {
		return markets
	}
	keep := Chain(preds...)
	out := make([]domain.Market, 0, len(markets))
	for i := range markets {
		if keep(&markets[i]) {
			out = append(out, markets[i])
		}
	}
	return out
}

// Chain composes predicates into one that accepts only when all of them do.
// Nil entries are ignored.
func Chain(preds ...Predicate) Predicate {
	return func(m *domain.Market) bool {
		for _, p := range preds {
			if p != nil && !p(m) {
				return false
			}
		}
		return true
	}
}

// ByCategories keeps markets whose category is in labels (case-insensitive).
// It returns nil when labels is empty so callers can skip it.
func ByCategories(labels []string) Predicate {
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			set[l] = true
		}
	}
	if len(set) == 0 {
		return nil
	}
	return func(m *domain.Market) bool {
		return set[strings.ToLower(m.Category)]
	}
}

// EndingWithin keeps markets that have not closed yet and close no later than
// now+window. It returns nil for a non-positive window.
func EndingWithin(now time.Time, window time.Duration) Predicate {
	if window <= 0 {
		return nil
	}
	deadline := now.Add(window)
	return func(m *domain.Market) bool {
		return m.EndDate.After(now) && !m.EndDate.After(deadline)
	}
}

// ForQuery builds the caller-driven predicates for q, skipping unused ones.
func ForQuery(q domain.FeedQuery, now time.Time) []Predicate {
	var preds []Predicate
	for _, p := range []Predicate{ByCategories(q.Categories), EndingWithin(now, q.EndingWithin)} {
		if p != nil {
			preds = append(preds, p)
		}
	}
	return preds
}
