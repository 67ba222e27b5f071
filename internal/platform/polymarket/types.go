package polymarket

import "time"

// DefaultGammaURL is the public Gamma API root.
const DefaultGammaURL = "https://gamma-api.polymarket.com"

// Config holds the settings for a GammaClient.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond caps outbound calls. Zero means unlimited.
	RequestsPerSecond float64
}

// MarketsQuery selects one page of the /markets or /events listing.
type MarketsQuery struct {
	Limit int
	// Cursor is the decimal offset returned by the previous page.
	Cursor string
	// Active and Closed filter when non-nil.
	Active *bool
	Closed *bool
}
