// Package filter holds the subtractive, order-preserving filters applied to
// normalized markets before ranking.
package filter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alanyoungcy/marketboard/internal/domain"
)

// SportsRule names the rule that excluded a market.
type SportsRule string

const (
	RuleNone         SportsRule = ""
	RuleTickerPrefix SportsRule = "ticker_prefix"
	RuleCategory     SportsRule = "category"
	RuleKeyword      SportsRule = "keyword"
	RulePropPattern  SportsRule = "prop_pattern"
)

// DefaultPropPatternLimit is how many "yes <label>: <n>+" legs a question may
// carry before it is treated as a bundled sports proposition.
const DefaultPropPatternLimit = 3

var propPattern = regexp.MustCompile(`(?i)\byes\s+[^,:]+:\s*\d+(?:\.\d+)?\+`)

// SportsFilter excludes sports markets. False positives and negatives are
// expected; the contract is that the rules run in a fixed order and the same
// input always yields the same output.
type SportsFilter struct {
	tickerPrefixes []string
	keywords       []string
	propLimit      int
}

// NewSportsFilter builds a filter from the given lists. Matching is
// case-insensitive. A propLimit of zero uses DefaultPropPatternLimit.
func NewSportsFilter(tickerPrefixes, keywords []string, propLimit int) *SportsFilter {
	if propLimit <= 0 {
		propLimit = DefaultPropPatternLimit
	}
	return &SportsFilter{
		tickerPrefixes: lowerAll(tickerPrefixes),
		keywords:       lowerAll(keywords),
		propLimit:      propLimit,
	}
}

// DefaultSportsFilter uses the built-in prefix and keyword lists.
func DefaultSportsFilter() *SportsFilter {
	return NewSportsFilter(DefaultSportsTickerPrefixes(), DefaultSportsKeywords(), DefaultPropPatternLimit)
}

// Match reports the first rule that marks m as sports, or RuleNone.
func (f *SportsFilter) Match(m *domain.Market) SportsRule {
	for _, id := range []string{m.Ticker, m.ID, m.Slug} {
		if id == "" {
			continue
		}
		lid := strings.ToLower(id)
		for _, p := range f.tickerPrefixes {
			if strings.HasPrefix(lid, p) {
				return RuleTickerPrefix
			}
		}
	}

	if strings.Contains(strings.ToLower(m.Category), "sport") ||
		strings.Contains(strings.ToLower(m.SourceCategory), "sport") {
		return RuleCategory
	}

	q := strings.ToLower(m.Question)
	for _, k := range f.keywords {
		if containsWord(q, k) {
			return RuleKeyword
		}
	}

	if len(propPattern.FindAllStringIndex(m.Question, -1)) > f.propLimit {
		return RulePropPattern
	}
	return RuleNone
}

// Apply returns the markets no rule matched, in their original order.
// onExclude, when non-nil, is called for every removed market with the rule
// that fired.
func (f *SportsFilter) Apply(markets []domain.Market, onExclude func(m *domain.Market, rule SportsRule)) []domain.Market {
	out := make([]domain.Market, 0, len(markets))
	for i := range markets {
		rule := f.Match(&markets[i])
		if rule == RuleNone {
			out = append(out, markets[i])
			continue
		}
		if onExclude != nil {
			onExclude(&markets[i], rule)
		}
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// containsWord reports whether word occurs in s with no letter or digit
// directly on either side, so "nfl" does not match "inflation".
func containsWord(s, word string) bool {
	for off := 0; off <= len(s)-len(word); {
		i := strings.Index(s[off:], word)
		if i < 0 {
			return false
		}
		start, end := off+i, off+i+len(word)
		before, _ := utf8.DecodeLastRuneInString(s[:start])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if !isWordRune(before) && !isWordRune(after) {
			return true
		}
		off = start + 1
	}
	return false
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
