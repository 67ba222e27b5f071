package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alanyoungcy/marketboard/internal/cache/redis"
	"github.com/alanyoungcy/marketboard/internal/classify"
	"github.com/alanyoungcy/marketboard/internal/config"
	"github.com/alanyoungcy/marketboard/internal/domain"
	"github.com/alanyoungcy/marketboard/internal/filter"
	"github.com/alanyoungcy/marketboard/internal/metrics"
	"github.com/alanyoungcy/marketboard/internal/normalize"
	"github.com/alanyoungcy/marketboard/internal/platform/kalshi"
	"github.com/alanyoungcy/marketboard/internal/platform/polymarket"
	"github.com/alanyoungcy/marketboard/internal/service"
)

// Dependencies bundles everything the serve and fetch commands need. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Feed    *service.FeedService
	Metrics *metrics.Metrics

	// Redis and RateLimiter are nil unless Redis is enabled.
	Redis       *redis.Client
	RateLimiter domain.RateLimiter

	// Sources reports which upstreams have usable credentials.
	Sources map[string]bool
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{Metrics: metrics.New()}

	// --- Upstreams ---
	kc, err := kalshi.NewClient(kalshi.Config{
		BaseURL:           cfg.Kalshi.BaseURL,
		APIKeyID:          cfg.Kalshi.APIKeyID,
		PrivateKeyPEM:     []byte(cfg.Kalshi.PrivateKey),
		PrivateKeyPath:    cfg.Kalshi.PrivateKeyPath,
		Timeout:           cfg.Kalshi.Timeout.Duration,
		RequestsPerSecond: cfg.Kalshi.RequestsPerSecond,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("wire: kalshi: %w", err)
	}
	if !kc.Configured() {
		logger.WarnContext(ctx, "wire: kalshi credentials missing, kalshi requests will fail")
	}
	gc := polymarket.NewGammaClient(polymarket.Config{
		BaseURL:           cfg.Polymarket.GammaHost,
		Timeout:           cfg.Polymarket.Timeout.Duration,
		RequestsPerSecond: cfg.Polymarket.RequestsPerSecond,
	})

	deps.Sources = map[string]bool{
		string(domain.SourceKalshi):     kc.Configured(),
		string(domain.SourcePolymarket): true,
	}

	// --- Pipeline stages ---
	normalizer := normalize.New()
	if cfg.Feed.MinQuestionLength > 0 {
		normalizer.MinQuestionLength = cfg.Feed.MinQuestionLength
	}

	rules := classify.DefaultRules()
	if len(cfg.Feed.Categories) > 0 {
		rules = make([]classify.Rule, 0, len(cfg.Feed.Categories))
		for _, c := range cfg.Feed.Categories {
			rules = append(rules, classify.Rule{Label: c.Label, Keywords: c.Keywords})
		}
	}
	classifier := classify.New(rules, cfg.Feed.FallbackCategory)

	prefixes := cfg.Feed.Sports.TickerPrefixes
	if len(prefixes) == 0 {
		prefixes = filter.DefaultSportsTickerPrefixes()
	}
	keywords := cfg.Feed.Sports.Keywords
	if len(keywords) == 0 {
		keywords = filter.DefaultSportsKeywords()
	}
	sports := filter.NewSportsFilter(prefixes, keywords, cfg.Feed.Sports.PropPatternLimit)

	deps.Feed = service.NewFeedService(
		service.FeedSources{
			Kalshi:           service.KalshiMarkets{Client: kc, Status: cfg.Kalshi.Status},
			Polymarket:       service.GammaMarkets{Client: gc, ActiveOnly: cfg.Polymarket.ActiveOnly},
			PolymarketEvents: service.GammaEvents{Client: gc, ActiveOnly: cfg.Polymarket.ActiveOnly},
		},
		normalizer,
		classifier,
		sports,
		deps.Metrics,
		service.FeedConfig{
			DefaultSource: domain.FeedSource(strings.ToLower(cfg.Feed.DefaultSource)),
			DefaultLimit:  cfg.Feed.DefaultLimit,
			MaxLimit:      cfg.Feed.MaxLimit,
			UpstreamLimit: cfg.Feed.UpstreamLimit,
			IncludeSports: cfg.Feed.IncludeSports,
		},
		logger.With(slog.String("component", "feed_service")),
	)

	// --- Redis (only for the API rate limiter) ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
			KeyPrefix:  cfg.Redis.KeyPrefix,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.Redis = redisClient
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
	}

	return deps, cleanup, nil
}
