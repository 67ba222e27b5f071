package domain

import "time"

// MarketStatus represents the lifecycle state of a market.
type MarketStatus string

const (
	MarketStatusActive   MarketStatus = "active"
	MarketStatusClosed   MarketStatus = "closed"
	MarketStatusResolved MarketStatus = "resolved"
)

// DefaultCategory is the label given to markets no classifier rule matches.
const DefaultCategory = "General"

// Market is the canonical, source-agnostic market the feed operates on. Every
// Market handed to a consumer has been normalized and classified; none of its
// numeric fields are NaN.
type Market struct {
	ID             string       `json:"id"`
	Source         Source       `json:"source"`
	Ticker         string       `json:"ticker,omitempty"`
	Slug           string       `json:"slug,omitempty"`
	Question       string       `json:"question"`
	Category       string       `json:"category"`
	SourceCategory string       `json:"sourceCategory,omitempty"`
	ProbabilityYes int          `json:"probabilityYes"`
	ProbabilityNo  int          `json:"probabilityNo"`
	Change24h      *float64     `json:"change24h"` // nil means unknown, not zero
	Liquidity      float64      `json:"liquidity"`
	Volume24h      float64      `json:"volume24h"`
	VolumeTotal    float64      `json:"volumeTotal"`
	EndDate        time.Time    `json:"endDate"`
	Status         MarketStatus `json:"status"`
}

// HasLivePrice reports whether the market carries a real price signal rather
// than the 0/100 default used when upstream supplied none.
func (m *Market) HasLivePrice() bool {
	return m.ProbabilityYes > 0 && m.ProbabilityYes < 100
}
