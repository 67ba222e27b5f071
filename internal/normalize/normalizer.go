// Package normalize maps raw upstream records onto the canonical domain.Market.
// It never fails: fields that do not parse degrade to a defined default so one
// bad record cannot sink a batch.
package normalize

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alanyoungcy/marketboard/internal/domain"
)

const (
	// DefaultMinQuestionLength is the shortest question text kept by NormalizeBatch.
	DefaultMinQuestionLength = 10
	// SyntheticEndOffset is how far ahead a missing end date is placed.
	SyntheticEndOffset = 7 * 24 * time.Hour
)

// Field aliases, tried in order.
var (
	questionKeys  = []string{"question", "title"}
	volume24hKeys = []string{"volume_24h", "volume24hr", "volume24h", "volume24hrClob", "oneDayVolume"}
	volumeKeys    = []string{"volume", "volumeNum", "volume_total", "totalVolume", "volumeClob"}
	endDateKeys   = []string{"endDate", "end_date_iso", "endDateIso", "close_time", "expiration_time", "expected_expiration_time"}
)

// Normalizer converts raw records into markets. The zero value is usable.
type Normalizer struct {
	// Now supplies the reference time for synthetic end dates. Defaults to time.Now.
	Now func() time.Time
	// MinQuestionLength defaults to DefaultMinQuestionLength when zero.
	MinQuestionLength int
}

// New returns a Normalizer with default settings.
func New() *Normalizer {
	return &Normalizer{Now: time.Now, MinQuestionLength: DefaultMinQuestionLength}
}

func (n *Normalizer) now() time.Time {
	if n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

func (n *Normalizer) minQuestion() int {
	if n.MinQuestionLength <= 0 {
		return DefaultMinQuestionLength
	}
	return n.MinQuestionLength
}

// NormalizeBatch drops records whose question text is too short to display and
// normalizes the rest, preserving order.
func (n *Normalizer) NormalizeBatch(records []domain.RawRecord) []domain.Market {
	out := make([]domain.Market, 0, len(records))
	minLen := n.minQuestion()
	for _, rec := range records {
		if utf8.RuneCountInString(questionOf(rec)) < minLen {
			continue
		}
		out = append(out, n.Normalize(rec))
	}
	return out
}

// Normalize produces exactly one market from rec. Category is left empty for
// the classifier stage.
func (n *Normalizer) Normalize(rec domain.RawRecord) domain.Market {
	if rec.Kind == domain.RecordKindEvent {
		return n.MapEvent(rec)
	}
	fields := rec.Fields
	if fields == nil {
		fields = map[string]any{}
	}

	var sig signals
	switch rec.Source {
	case domain.SourceKalshi:
		sig = kalshiSignals(fields)
	default:
		sig = polymarketSignals(fields)
	}

	yes, no := sig.probabilities()
	m := domain.Market{
		ID:             recordID(rec.Source, fields),
		Source:         rec.Source,
		Question:       text(fields, questionKeys...),
		SourceCategory: text(fields, "category"),
		ProbabilityYes: yes,
		ProbabilityNo:  no,
		Change24h:      sig.change,
		Liquidity:      nonNegative(liquidity(rec.Source, fields)),
		Volume24h:      nonNegative(number(fields, volume24hKeys...)),
		VolumeTotal:    nonNegative(number(fields, volumeKeys...)),
		EndDate:        n.endDate(fields),
		Status:         status(fields),
	}
	if rec.Source == domain.SourceKalshi {
		m.Ticker = text(fields, "ticker")
	}
	m.Slug = text(fields, "slug")
	return m
}

// endDate walks the alias chain and synthesizes now+7d when nothing parses,
// so countdown logic always has a date to work with.
func (n *Normalizer) endDate(fields map[string]any) time.Time {
	for _, k := range endDateKeys {
		if s, ok := fields[k].(string); ok {
			if t, ok := parseDate(s); ok {
				return t
			}
		}
	}
	return n.now().Add(SyntheticEndOffset).UTC()
}

func questionOf(rec domain.RawRecord) string {
	if rec.Kind == domain.RecordKindEvent {
		if q := text(rec.Fields, "title", "question"); q != "" {
			return q
		}
		if first, ok := firstSubMarket(rec.Fields); ok {
			return text(first, questionKeys...)
		}
		return ""
	}
	return text(rec.Fields, questionKeys...)
}

func recordID(src domain.Source, fields map[string]any) string {
	if src == domain.SourceKalshi {
		return text(fields, "ticker", "id")
	}
	return text(fields, "id", "conditionId", "condition_id", "slug")
}

// status maps upstream lifecycle flags. Resolution beats closed, which beats
// active; anything unrecognised is active.
func status(fields map[string]any) domain.MarketStatus {
	s := strings.ToLower(text(fields, "status"))
	switch {
	case s == "resolved" || s == "settled" || s == "finalized" || s == "determined",
		flag(fields, "resolved"),
		text(fields, "result") != "",
		strings.EqualFold(text(fields, "umaResolutionStatus"), "resolved"):
		return domain.MarketStatusResolved
	case s == "closed" || s == "cancelled" || s == "canceled",
		flag(fields, "closed"),
		flag(fields, "cancelled"):
		return domain.MarketStatusClosed
	case s == "active" || s == "open" || s == "initialized",
		flag(fields, "acceptingOrders"),
		flag(fields, "active"):
		return domain.MarketStatusActive
	}
	return domain.MarketStatusActive
}
