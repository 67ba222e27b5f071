// Package config defines the top-level configuration for marketboard and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by MARKETBOARD_* environment variables.
type Config struct {
	Kalshi     KalshiConfig     `toml:"kalshi"`
	Polymarket PolymarketConfig `toml:"polymarket"`
	Feed       FeedConfig       `toml:"feed"`
	Server     ServerConfig     `toml:"server"`
	Redis      RedisConfig      `toml:"redis"`
	LogLevel   string           `toml:"log_level"`
}

// KalshiConfig holds Kalshi API credentials and client limits. The key ID and
// private key may be left empty; Kalshi requests then fail with a
// configuration error instead of being silently skipped.
type KalshiConfig struct {
	BaseURL  string `toml:"base_url"`
	APIKeyID string `toml:"api_key_id"`
	// PrivateKey is an inline PEM block. It wins over PrivateKeyPath.
	PrivateKey        string   `toml:"private_key"`
	PrivateKeyPath    string   `toml:"private_key_path"`
	Timeout           duration `toml:"timeout"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	// Status filters the markets listing ("open", "closed", "settled").
	Status string `toml:"status"`
}

// PolymarketConfig holds Gamma API parameters.
type PolymarketConfig struct {
	GammaHost         string   `toml:"gamma_host"`
	Timeout           duration `toml:"timeout"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	// ActiveOnly requests only open, unresolved markets.
	ActiveOnly bool `toml:"active_only"`
}

// FeedConfig holds pipeline parameters and the heuristic keyword lists.
type FeedConfig struct {
	DefaultSource     string `toml:"default_source"`
	DefaultLimit      int    `toml:"default_limit"`
	MaxLimit          int    `toml:"max_limit"`
	UpstreamLimit     int    `toml:"upstream_limit"`
	MinQuestionLength int    `toml:"min_question_length"`
	IncludeSports     bool   `toml:"include_sports"`
	FallbackCategory  string `toml:"fallback_category"`
	// Categories replaces the built-in classifier rules when non-empty. Order
	// is evaluation order.
	Categories []CategoryRule `toml:"categories"`
	Sports     SportsConfig   `toml:"sports"`
}

// CategoryRule is one ordered classifier entry.
type CategoryRule struct {
	Label    string   `toml:"label"`
	Keywords []string `toml:"keywords"`
}

// SportsConfig overrides the sports filter lists. Empty lists keep the
// built-in defaults.
type SportsConfig struct {
	TickerPrefixes   []string `toml:"ticker_prefixes"`
	Keywords         []string `toml:"keywords"`
	PropPatternLimit int      `toml:"prop_pattern_limit"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
	// RateLimit is requests per RateWindow per client IP. It needs Redis and
	// is off when zero.
	RateLimit  int      `toml:"rate_limit"`
	RateWindow duration `toml:"rate_window"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
	KeyPrefix  string `toml:"key_prefix"`
}

// duration wraps time.Duration so it can be decoded from TOML strings.
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with sensible default values.
func Defaults() Config {
	return Config{
		Kalshi: KalshiConfig{
			BaseURL:           "https://api.elections.kalshi.com/trade-api/v2",
			Timeout:           duration{15 * time.Second},
			RequestsPerSecond: 10,
			Status:            "open",
		},
		Polymarket: PolymarketConfig{
			GammaHost:         "https://gamma-api.polymarket.com",
			Timeout:           duration{15 * time.Second},
			RequestsPerSecond: 10,
			ActiveOnly:        true,
		},
		Feed: FeedConfig{
			DefaultSource:     "all",
			DefaultLimit:      20,
			MaxLimit:          100,
			UpstreamLimit:     200,
			MinQuestionLength: 10,
			FallbackCategory:  "General",
			Sports:            SportsConfig{PropPatternLimit: 3},
		},
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateWindow:  duration{time.Minute},
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   10,
			MaxRetries: 3,
			KeyPrefix:  "marketboard:",
		},
		LogLevel: "info",
	}
}

// validSources enumerates the accepted values for FeedConfig.DefaultSource.
var validSources = map[string]bool{
	"kalshi":            true,
	"polymarket":        true,
	"polymarket_events": true,
	"all":               true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found. Missing Kalshi credentials
// are not an error here; they surface per request.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Kalshi
	if c.Kalshi.BaseURL == "" {
		errs = append(errs, "kalshi: base_url must not be empty")
	}
	if c.Kalshi.RequestsPerSecond < 0 {
		errs = append(errs, "kalshi: requests_per_second must be >= 0")
	}

	// Polymarket
	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}
	if c.Polymarket.RequestsPerSecond < 0 {
		errs = append(errs, "polymarket: requests_per_second must be >= 0")
	}

	// Feed
	if !validSources[strings.ToLower(c.Feed.DefaultSource)] {
		errs = append(errs, fmt.Sprintf("feed: unknown default_source %q (valid: kalshi, polymarket, polymarket_events, all)", c.Feed.DefaultSource))
	}
	if c.Feed.DefaultLimit < 1 {
		errs = append(errs, "feed: default_limit must be >= 1")
	}
	if c.Feed.MaxLimit < c.Feed.DefaultLimit {
		errs = append(errs, "feed: max_limit must be >= default_limit")
	}
	if c.Feed.UpstreamLimit < 1 {
		errs = append(errs, "feed: upstream_limit must be >= 1")
	}
	if c.Feed.MinQuestionLength < 1 {
		errs = append(errs, "feed: min_question_length must be >= 1")
	}
	for i, r := range c.Feed.Categories {
		if strings.TrimSpace(r.Label) == "" {
			errs = append(errs, fmt.Sprintf("feed: categories[%d]: label must not be empty", i))
		}
		if len(r.Keywords) == 0 {
			errs = append(errs, fmt.Sprintf("feed: categories[%d] (%s): keywords must not be empty", i, r.Label))
		}
	}
	if c.Feed.Sports.PropPatternLimit < 0 {
		errs = append(errs, "feed: sports.prop_pattern_limit must be >= 0")
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, "server: rate_limit must be >= 0")
	}
	if c.Server.RateLimit > 0 {
		if c.Server.RateWindow.Duration <= 0 {
			errs = append(errs, "server: rate_window must be > 0 when rate_limit is set")
		}
		if !c.Redis.Enabled {
			errs = append(errs, "server: rate_limit requires redis.enabled")
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
