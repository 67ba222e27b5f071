package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies MARKETBOARD_* environment variable overrides, and
// returns the final Config. An empty path skips the file. The returned Config
// has NOT been validated; the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known MARKETBOARD_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Kalshi ──
	setStr(&cfg.Kalshi.BaseURL, "MARKETBOARD_KALSHI_BASE_URL")
	setStr(&cfg.Kalshi.APIKeyID, "MARKETBOARD_KALSHI_API_KEY_ID")
	setStr(&cfg.Kalshi.PrivateKey, "MARKETBOARD_KALSHI_PRIVATE_KEY")
	setStr(&cfg.Kalshi.PrivateKeyPath, "MARKETBOARD_KALSHI_PRIVATE_KEY_PATH")
	setDuration(&cfg.Kalshi.Timeout, "MARKETBOARD_KALSHI_TIMEOUT")
	setFloat64(&cfg.Kalshi.RequestsPerSecond, "MARKETBOARD_KALSHI_REQUESTS_PER_SECOND")
	setStr(&cfg.Kalshi.Status, "MARKETBOARD_KALSHI_STATUS")

	// ── Polymarket ──
	setStr(&cfg.Polymarket.GammaHost, "MARKETBOARD_POLYMARKET_GAMMA_HOST")
	setDuration(&cfg.Polymarket.Timeout, "MARKETBOARD_POLYMARKET_TIMEOUT")
	setFloat64(&cfg.Polymarket.RequestsPerSecond, "MARKETBOARD_POLYMARKET_REQUESTS_PER_SECOND")
	setBool(&cfg.Polymarket.ActiveOnly, "MARKETBOARD_POLYMARKET_ACTIVE_ONLY")

	// ── Feed ──
	setStr(&cfg.Feed.DefaultSource, "MARKETBOARD_FEED_DEFAULT_SOURCE")
	setInt(&cfg.Feed.DefaultLimit, "MARKETBOARD_FEED_DEFAULT_LIMIT")
	setInt(&cfg.Feed.MaxLimit, "MARKETBOARD_FEED_MAX_LIMIT")
	setInt(&cfg.Feed.UpstreamLimit, "MARKETBOARD_FEED_UPSTREAM_LIMIT")
	setInt(&cfg.Feed.MinQuestionLength, "MARKETBOARD_FEED_MIN_QUESTION_LENGTH")
	setBool(&cfg.Feed.IncludeSports, "MARKETBOARD_FEED_INCLUDE_SPORTS")
	setStr(&cfg.Feed.FallbackCategory, "MARKETBOARD_FEED_FALLBACK_CATEGORY")

	// ── Server ──
	setInt(&cfg.Server.Port, "MARKETBOARD_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "MARKETBOARD_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "MARKETBOARD_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "MARKETBOARD_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "MARKETBOARD_SERVER_RATE_WINDOW")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "MARKETBOARD_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "MARKETBOARD_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "MARKETBOARD_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "MARKETBOARD_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "MARKETBOARD_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "MARKETBOARD_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "MARKETBOARD_REDIS_TLS_ENABLED")
	setStr(&cfg.Redis.KeyPrefix, "MARKETBOARD_REDIS_KEY_PREFIX")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "MARKETBOARD_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
