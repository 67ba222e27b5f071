package kalshi

import "time"

// DefaultBaseURL is the production trade API root.
const DefaultBaseURL = "https://api.elections.kalshi.com/trade-api/v2"

// Config holds the settings for a Client.
type Config struct {
	BaseURL  string
	APIKeyID string
	// PrivateKeyPEM takes precedence over PrivateKeyPath when both are set.
	PrivateKeyPEM  []byte
	PrivateKeyPath string
	Timeout        time.Duration
	// RequestsPerSecond caps outbound calls. Zero means unlimited.
	RequestsPerSecond float64
}

// MarketsQuery selects one page of the /markets listing.
type MarketsQuery struct {
	Limit  int
	Cursor string
	// Status filters by market status ("open", "closed", "settled"). Empty
	// returns every status.
	Status string
}

// marketsEnvelope is the /markets response body. Markets are kept untyped and
// handed to the normalizer as raw records.
type marketsEnvelope struct {
	Markets []map[string]any `json:"markets"`
	Cursor  string           `json:"cursor"`
}

// errorResponse is the body Kalshi sends with non-2xx responses.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e errorResponse) text() string {
	switch {
	case e.Error.Message != "":
		return e.Error.Message + " (" + e.Error.Code + ")"
	case e.Message != "":
		return e.Message + " (" + e.Code + ")"
	}
	return ""
}
