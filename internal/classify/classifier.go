// Package classify derives a topical category for a market from its question
// text. Upstream sources have no shared taxonomy, so the category comes from
// an ordered keyword list evaluated top to bottom.
package classify

import (
	"strings"

	"github.com/alanyoungcy/marketboard/internal/domain"
)

// Rule pairs a category label with the keywords that select it.
type Rule struct {
	Label    string
	Keywords []string
}

// Classifier is immutable after construction and safe for concurrent use.
type Classifier struct {
	rules    []Rule
	fallback string
}

// New builds a Classifier from rules in evaluation order. Keywords are matched
// case-insensitively as substrings; empty keywords are ignored. An empty
// fallback becomes domain.DefaultCategory.
func New(rules []Rule, fallback string) *Classifier {
	if fallback == "" {
		fallback = domain.DefaultCategory
	}
	c := &Classifier{fallback: fallback, rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		if r.Label == "" {
			continue
		}
		kw := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = strings.ToLower(k); strings.TrimSpace(k) != "" {
				kw = append(kw, k)
			}
		}
		c.rules = append(c.rules, Rule{Label: r.Label, Keywords: kw})
	}
	return c
}

// Default returns a Classifier using DefaultRules.
func Default() *Classifier {
	return New(DefaultRules(), domain.DefaultCategory)
}

// Classify returns the label of the first rule with a keyword contained in
// question, or the fallback label.
func (c *Classifier) Classify(question string) string {
	q := strings.ToLower(question)
	for _, r := range c.rules {
		for _, k := range r.Keywords {
			if strings.Contains(q, k) {
				return r.Label
			}
		}
	}
	return c.fallback
}

// Apply sets Category on every market in place.
func (c *Classifier) Apply(markets []domain.Market) {
	for i := range markets {
		markets[i].Category = c.Classify(markets[i].Question)
	}
}

// Labels lists the rule labels in evaluation order followed by the fallback.
func (c *Classifier) Labels() []string {
	out := make([]string, 0, len(c.rules)+1)
	for _, r := range c.rules {
		out = append(out, r.Label)
	}
	return append(out, c.fallback)
}
