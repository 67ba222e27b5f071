package domain

import "time"

// FeedSource selects which upstream(s) a feed request reads from.
type FeedSource string

const (
	FeedSourceKalshi           FeedSource = "kalshi"
	FeedSourcePolymarket       FeedSource = "polymarket"
	FeedSourcePolymarketEvents FeedSource = "polymarket_events"
	FeedSourceAll              FeedSource = "all"
)

// SortField selects the primary ordering key. The empty value ranks by the
// default priority chain.
type SortField string

const (
	SortRank      SortField = ""
	SortVolume24h SortField = "volume24h"
	SortVolume    SortField = "volume"
	SortLiquidity SortField = "liquidity"
	SortEnding    SortField = "ending"
	SortChange    SortField = "change"
)

// FeedQuery carries the caller-supplied ranking and paging parameters.
type FeedQuery struct {
	Source FeedSource
	// Cursor is passed through to the upstream as-is.
	Cursor string
	// Page is 1-based.
	Page  int
	Limit int
	// Categories restricts results to these labels (case-insensitive). Empty
	// means no restriction.
	Categories []string
	// EndingWithin keeps only markets closing within this window. Zero disables.
	EndingWithin  time.Duration
	Sort          SortField
	IncludeSports bool
}

// FeedResult is the display-ready, ranked and paginated output of one feed run.
type FeedResult struct {
	Markets []Market `json:"markets"`
	Cursor  string   `json:"cursor,omitempty"`
	Total   int      `json:"total"`
	// Page and Limit echo the resolved paging parameters.
	Page  int `json:"page"`
	Limit int `json:"limit"`
}
