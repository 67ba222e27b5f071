package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/marketboard/internal/classify"
	"github.com/alanyoungcy/marketboard/internal/domain"
	"github.com/alanyoungcy/marketboard/internal/filter"
	"github.com/alanyoungcy/marketboard/internal/metrics"
	"github.com/alanyoungcy/marketboard/internal/normalize"
	"github.com/alanyoungcy/marketboard/internal/rank"
)

// FeedConfig holds the tunable parameters for the feed pipeline.
type FeedConfig struct {
	// DefaultSource is used when a query names none.
	DefaultSource domain.FeedSource
	DefaultLimit  int
	MaxLimit      int
	// UpstreamLimit is the page size requested from each source.
	UpstreamLimit int
	// IncludeSports disables the sports filter for every query.
	IncludeSports bool
}

// FeedSources wires the upstream adapters. Kalshi and Polymarket are read
// together for domain.FeedSourceAll.
type FeedSources struct {
	Kalshi           PageSource
	Polymarket       PageSource
	PolymarketEvents PageSource
}

// FeedService runs the fetch, normalize, classify, filter, rank and paginate
// pipeline. It keeps no state between calls and is safe for concurrent use.
type FeedService struct {
	sources    FeedSources
	normalizer *normalize.Normalizer
	classifier *classify.Classifier
	sports     *filter.SportsFilter
	metrics    *metrics.Metrics
	cfg        FeedConfig
	logger     *slog.Logger
	now        func() time.Time
}

// NewFeedService creates a FeedService with all required dependencies.
// metrics may be nil.
func NewFeedService(
	sources FeedSources,
	normalizer *normalize.Normalizer,
	classifier *classify.Classifier,
	sports *filter.SportsFilter,
	m *metrics.Metrics,
	cfg FeedConfig,
	logger *slog.Logger,
) *FeedService {
	if cfg.DefaultSource == "" {
		cfg.DefaultSource = domain.FeedSourceAll
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = cfg.DefaultLimit
	}
	if cfg.UpstreamLimit <= 0 {
		cfg.UpstreamLimit = 200
	}
	now := time.Now
	if normalizer != nil && normalizer.Now != nil {
		now = normalizer.Now
	}
	return &FeedService{
		sources:    sources,
		normalizer: normalizer,
		classifier: classifier,
		sports:     sports,
		metrics:    m,
		cfg:        cfg,
		logger:     logger,
		now:        now,
	}
}

// Labels returns the classifier labels in evaluation order.
func (s *FeedService) Labels() []string {
	return s.classifier.Labels()
}

// Fetch runs one pipeline invocation. Configuration and upstream errors are
// returned wrapped; everything downstream of the fetch degrades instead of
// failing.
func (s *FeedService) Fetch(ctx context.Context, q domain.FeedQuery) (domain.FeedResult, error) {
	start := time.Now()
	q, err := s.resolve(q)
	if err != nil {
		return domain.FeedResult{}, err
	}
	fetchID := uuid.NewString()

	markets, cursor, err := s.fetch(ctx, q)
	if err != nil {
		s.logger.WarnContext(ctx, "feed_service: fetch failed",
			slog.String("fetch_id", fetchID),
			slog.String("source", string(q.Source)),
			slog.String("error", err.Error()),
		)
		return domain.FeedResult{}, err
	}
	fetched := len(markets)

	s.classifier.Apply(markets)
	if !q.IncludeSports && !s.cfg.IncludeSports {
		markets = s.excludeSports(markets)
	}
	markets = filter.Keep(markets, filter.ForQuery(q, s.now())...)
	rank.Sort(markets, q.Sort)
	page := rank.Paginate(markets, q.Page, q.Limit)

	s.metrics.ObserveFeed(time.Since(start))
	s.logger.DebugContext(ctx, "feed_service: feed built",
		slog.String("fetch_id", fetchID),
		slog.String("source", string(q.Source)),
		slog.Int("normalized", fetched),
		slog.Int("kept", page.Total),
		slog.Int("page", q.Page),
		slog.Duration("elapsed", time.Since(start)),
	)

	return domain.FeedResult{
		Markets: page.Markets,
		Cursor:  cursor,
		Total:   page.Total,
		Page:    q.Page,
		Limit:   q.Limit,
	}, nil
}

// resolve fills defaults and rejects queries the pipeline cannot serve.
func (s *FeedService) resolve(q domain.FeedQuery) (domain.FeedQuery, error) {
	if q.Source == "" {
		q.Source = s.cfg.DefaultSource
	}
	switch q.Source {
	case domain.FeedSourceKalshi, domain.FeedSourcePolymarket,
		domain.FeedSourcePolymarketEvents, domain.FeedSourceAll:
	default:
		return q, fmt.Errorf("feed_service: %w: unknown source %q", domain.ErrInvalidQuery, q.Source)
	}
	if !rank.ValidSortField(q.Sort) {
		return q, fmt.Errorf("feed_service: %w: unknown sort %q", domain.ErrInvalidQuery, q.Sort)
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = s.cfg.DefaultLimit
	}
	if q.Limit > s.cfg.MaxLimit {
		q.Limit = s.cfg.MaxLimit
	}
	return q, nil
}

// exhaustedCursor marks a source in the composite cursor that has no more
// pages. It is never sent upstream.
const exhaustedCursor = "-"

// fetch reads the selected source(s) and normalizes each page into its own
// slice. For FeedSourceAll both sources are read concurrently and the cursor
// is a composite of the two upstream cursors. A source marked exhausted is
// skipped; the composite is empty once both are.
func (s *FeedService) fetch(ctx context.Context, q domain.FeedQuery) ([]domain.Market, string, error) {
	if q.Source != domain.FeedSourceAll {
		src, err := s.source(q.Source)
		if err != nil {
			return nil, "", err
		}
		return s.fetchOne(ctx, src, q.Cursor)
	}

	cursors, err := url.ParseQuery(q.Cursor)
	if err != nil {
		return nil, "", fmt.Errorf("feed_service: %w: cursor: %v", domain.ErrInvalidQuery, err)
	}
	kalshiSrc, err := s.source(domain.FeedSourceKalshi)
	if err != nil {
		return nil, "", err
	}
	polySrc, err := s.source(domain.FeedSourcePolymarket)
	if err != nil {
		return nil, "", err
	}
	srcs := []PageSource{kalshiSrc, polySrc}

	markets := make([][]domain.Market, len(srcs))
	nexts := make([]string, len(srcs))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range srcs {
		cursor := cursors.Get(src.Name())
		if cursor == exhaustedCursor {
			continue
		}
		g.Go(func() error {
			var err error
			markets[i], nexts[i], err = s.fetchOne(gctx, src, cursor)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, "", err
	}

	next := url.Values{}
	done := 0
	for i, src := range srcs {
		if nexts[i] == "" {
			nexts[i] = exhaustedCursor
			done++
		}
		next.Set(src.Name(), nexts[i])
	}
	if done == len(srcs) {
		return append(markets[0], markets[1]...), "", nil
	}
	return append(markets[0], markets[1]...), next.Encode(), nil
}

func (s *FeedService) fetchOne(ctx context.Context, src PageSource, cursor string) ([]domain.Market, string, error) {
	start := time.Now()
	page, err := src.FetchPage(ctx, cursor, s.cfg.UpstreamLimit)
	s.metrics.ObserveUpstream(src.Name(), time.Since(start), len(page.Records), err)
	if err != nil {
		return nil, "", fmt.Errorf("feed_service: fetch %s: %w", src.Name(), err)
	}
	markets := s.normalizer.NormalizeBatch(page.Records)
	s.metrics.RecordsDropped(src.Name(), "short_question", len(page.Records)-len(markets))
	return markets, page.Cursor, nil
}

func (s *FeedService) source(fs domain.FeedSource) (PageSource, error) {
	var src PageSource
	switch fs {
	case domain.FeedSourceKalshi:
		src = s.sources.Kalshi
	case domain.FeedSourcePolymarket:
		src = s.sources.Polymarket
	case domain.FeedSourcePolymarketEvents:
		src = s.sources.PolymarketEvents
	}
	if src == nil {
		return nil, fmt.Errorf("feed_service: %w: source %q is not wired", domain.ErrInvalidQuery, fs)
	}
	return src, nil
}

func (s *FeedService) excludeSports(markets []domain.Market) []domain.Market {
	return s.sports.Apply(markets, func(_ *domain.Market, rule filter.SportsRule) {
		s.metrics.MarketExcluded(string(rule))
	})
}
