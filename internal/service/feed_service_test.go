package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/alanyoungcy/marketboard/internal/classify"
	"github.com/alanyoungcy/marketboard/internal/domain"
	"github.com/alanyoungcy/marketboard/internal/filter"
	"github.com/alanyoungcy/marketboard/internal/metrics"
	"github.com/alanyoungcy/marketboard/internal/normalize"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	name    string
	source  domain.Source
	kind    domain.RecordKind
	records []map[string]any
	next    string
	err     error

	mu      sync.Mutex
	cursors []string
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchPage(ctx context.Context, cursor string, limit int) (domain.RawPage, error) {
	f.mu.Lock()
	f.cursors = append(f.cursors, cursor)
	f.mu.Unlock()
	if f.err != nil {
		return domain.RawPage{}, f.err
	}
	page := domain.RawPage{Cursor: f.next}
	for _, r := range f.records {
		// Copy so a caller cannot observe another call's mutations.
		fields := make(map[string]any, len(r))
		for k, v := range r {
			fields[k] = v
		}
		page.Records = append(page.Records, domain.RawRecord{Source: f.source, Kind: f.kind, Fields: fields})
	}
	return page, nil
}

func kalshiSource(records ...map[string]any) *fakeSource {
	return &fakeSource{name: "kalshi", source: domain.SourceKalshi, kind: domain.RecordKindMarket, records: records}
}

func polySource(records ...map[string]any) *fakeSource {
	return &fakeSource{name: "polymarket", source: domain.SourcePolymarket, kind: domain.RecordKindMarket, records: records}
}

func newTestService(t *testing.T, sources FeedSources, cfg FeedConfig) *FeedService {
	t.Helper()
	n := &normalize.Normalizer{Now: func() time.Time { return fixedNow }}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewFeedService(sources, n, classify.Default(), filter.DefaultSportsFilter(), metrics.New(), cfg, logger)
}

func ids(ms []domain.Market) []string {
	out := make([]string, len(ms))
	for i := range ms {
		out[i] = ms[i].ID
	}
	return out
}

func TestFetch_NormalizesAndClassifies(t *testing.T) {
	src := kalshiSource(map[string]any{
		"ticker": "KXTEST-1", "last_price": 65.0, "volume_24h": "1000", "title": "Will X happen?",
	})
	svc := newTestService(t, FeedSources{Kalshi: src}, FeedConfig{})

	res, err := svc.Fetch(context.Background(), domain.FeedQuery{Source: domain.FeedSourceKalshi})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Total != 1 || len(res.Markets) != 1 {
		t.Fatalf("result = %+v", res)
	}
	m := res.Markets[0]
	if m.ProbabilityYes != 65 || m.ProbabilityNo != 35 || m.Volume24h != 1000 || m.Category != domain.DefaultCategory {
		t.Errorf("market = %+v", m)
	}
}

func TestFetch_ExcludesSportsRegardlessOfVolume(t *testing.T) {
	src := polySource(
		map[string]any{"id": "lakers", "question": "Will the Lakers win the NBA championship?", "volume24hr": 1e9, "lastTradePrice": 0.4},
		map[string]any{"id": "fed", "question": "Will the Fed cut rates in March?", "volume24hr": 10.0, "lastTradePrice": 0.3},
	)
	svc := newTestService(t, FeedSources{Polymarket: src}, FeedConfig{})

	res, err := svc.Fetch(context.Background(), domain.FeedQuery{Source: domain.FeedSourcePolymarket})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := ids(res.Markets); len(got) != 1 || got[0] != "fed" {
		t.Errorf("ids = %v, want [fed]", got)
	}

	res, err = svc.Fetch(context.Background(), domain.FeedQuery{Source: domain.FeedSourcePolymarket, IncludeSports: true})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := ids(res.Markets); len(got) != 2 || got[0] != "lakers" {
		t.Errorf("with sports ids = %v", got)
	}
}

func TestFetch_RanksLiquidityTieBreak(t *testing.T) {
	src := polySource(
		map[string]any{"id": "low", "question": "Will inflation exceed 3%?", "volume24hr": 500.0, "volume": 800.0, "liquidity": 100.0, "lastTradePrice": 0.5},
		map[string]any{"id": "high", "question": "Will GDP grow this quarter?", "volume24hr": 500.0, "volume": 800.0, "liquidity": 200.0, "lastTradePrice": 0.5},
	)
	svc := newTestService(t, FeedSources{Polymarket: src}, FeedConfig{})
	res, err := svc.Fetch(context.Background(), domain.FeedQuery{Source: domain.FeedSourcePolymarket})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := ids(res.Markets); len(got) != 2 || got[0] != "high" {
		t.Errorf("ids = %v, want high first", got)
	}
}

func TestFetch_Idempotent(t *testing.T) {
	src := polySource(
		map[string]any{"id": "a", "question": "Will BTC close above 100k?", "lastTradePrice": 0.6, "volume24hr": 5.0},
		map[string]any{"id": "b", "question": "Will ETH close above 5k?", "lastTradePrice": 0.6, "volume24hr": 5.0},
		map[string]any{"id": "c", "question": "Will SOL close above 500?"},
	)
	svc := newTestService(t, FeedSources{Polymarket: src}, FeedConfig{})
	q := domain.FeedQuery{Source: domain.FeedSourcePolymarket}

	first, err := svc.Fetch(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Fetch(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	a, b := ids(first.Markets), ids(second.Markets)
	if len(a) != len(b) {
		t.Fatalf("runs differ: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] || first.Markets[i].Category != second.Markets[i].Category {
			t.Fatalf("runs differ: %v vs %v", a, b)
		}
	}
}

func TestFetch_PaginationSafety(t *testing.T) {
	var recs []map[string]any
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		recs = append(recs, map[string]any{"id": id, "question": "Will the index rise " + id + "?"})
	}
	svc := newTestService(t, FeedSources{Polymarket: polySource(recs...)}, FeedConfig{MaxLimit: 100})

	// ceil(5/2)+1 = 4
	res, err := svc.Fetch(context.Background(), domain.FeedQuery{Source: domain.FeedSourcePolymarket, Page: 4, Limit: 2})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Markets == nil || len(res.Markets) != 0 || res.Total != 5 {
		t.Errorf("result = %+v, want empty page with total 5", res)
	}
}

func TestFetch_AllSources(t *testing.T) {
	k := kalshiSource(map[string]any{"ticker": "KXCPI-1", "title": "Will CPI exceed 3% in May?", "last_price": 40.0, "volume_24h": 10.0})
	k.next = "k-next"
	p := polySource(map[string]any{"id": "512", "question": "Will BTC close above 100k?", "lastTradePrice": 0.5, "volume24hr": 20.0})
	p.next = "200"
	svc := newTestService(t, FeedSources{Kalshi: k, Polymarket: p}, FeedConfig{})

	res, err := svc.Fetch(context.Background(), domain.FeedQuery{Source: domain.FeedSourceAll, Cursor: "kalshi=k1&polymarket=100"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := ids(res.Markets); len(got) != 2 || got[0] != "512" || got[1] != "KXCPI-1" {
		t.Errorf("ids = %v", got)
	}
	if k.cursors[0] != "k1" || p.cursors[0] != "100" {
		t.Errorf("cursors passed = %v / %v", k.cursors, p.cursors)
	}
	next, err := url.ParseQuery(res.Cursor)
	if err != nil || next.Get("kalshi") != "k-next" || next.Get("polymarket") != "200" {
		t.Errorf("cursor = %q", res.Cursor)
	}
}

func TestFetch_AllSourcesOneExhausted(t *testing.T) {
	k := kalshiSource(map[string]any{"ticker": "KXCPI-1", "title": "Will CPI exceed 3% in May?", "last_price": 40.0, "volume_24h": 10.0})
	p := polySource(map[string]any{"id": "512", "question": "Will BTC close above 100k?", "lastTradePrice": 0.5, "volume24hr": 20.0})
	p.next = "200"
	svc := newTestService(t, FeedSources{Kalshi: k, Polymarket: p}, FeedConfig{})

	first, err := svc.Fetch(context.Background(), domain.FeedQuery{Source: domain.FeedSourceAll})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	cur, err := url.ParseQuery(first.Cursor)
	if err != nil || cur.Get("kalshi") != exhaustedCursor || cur.Get("polymarket") != "200" {
		t.Fatalf("cursor = %q", first.Cursor)
	}

	p.records = []map[string]any{{"id": "513", "question": "Will ETH close above 5k?", "lastTradePrice": 0.3}}
	p.next = ""
	second, err := svc.Fetch(context.Background(), domain.FeedQuery{Source: domain.FeedSourceAll, Cursor: first.Cursor})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := ids(second.Markets); len(got) != 1 || got[0] != "513" {
		t.Errorf("ids = %v, want [513] with kalshi not refetched", got)
	}
	if len(k.cursors) != 1 {
		t.Errorf("kalshi fetched %d times, want 1", len(k.cursors))
	}
	if p.cursors[1] != "200" {
		t.Errorf("polymarket cursor = %q, want 200", p.cursors[1])
	}
	if second.Cursor != "" {
		t.Errorf("cursor = %q, want empty once both sources are done", second.Cursor)
	}
}

func TestFetch_PropagatesErrors(t *testing.T) {
	cfgErr := &domain.ConfigError{Source: domain.SourceKalshi, Field: "private_key"}
	upErr := &domain.UpstreamError{Source: domain.SourcePolymarket, StatusCode: 503, Err: errors.New("unavailable")}

	tests := []struct {
		name    string
		sources FeedSources
		want    error
	}{
		{"configuration", FeedSources{Kalshi: &fakeSource{name: "kalshi", err: cfgErr}, Polymarket: polySource()}, domain.ErrConfiguration},
		{"upstream", FeedSources{Kalshi: kalshiSource(), Polymarket: &fakeSource{name: "polymarket", err: upErr}}, domain.ErrUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, tt.sources, FeedConfig{})
			_, err := svc.Fetch(context.Background(), domain.FeedQuery{Source: domain.FeedSourceAll})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFetch_InvalidQuery(t *testing.T) {
	svc := newTestService(t, FeedSources{Polymarket: polySource()}, FeedConfig{})
	for _, q := range []domain.FeedQuery{
		{Source: "nasdaq"},
		{Source: domain.FeedSourcePolymarket, Sort: "price"},
		{Source: domain.FeedSourceKalshi},
		{Source: domain.FeedSourceAll, Cursor: "%zz"},
	} {
		if _, err := svc.Fetch(context.Background(), q); !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("Fetch(%+v) err = %v, want ErrInvalidQuery", q, err)
		}
	}
}

func TestFetch_CallerFiltersAndLimits(t *testing.T) {
	src := polySource(
		map[string]any{"id": "btc", "question": "Will Bitcoin hit 150k?", "endDate": "2026-03-02T00:00:00Z"},
		map[string]any{"id": "eth", "question": "Will Ethereum hit 10k?", "endDate": "2026-06-01T00:00:00Z"},
		map[string]any{"id": "cpi", "question": "Will CPI exceed 3% in May?", "endDate": "2026-03-02T00:00:00Z"},
	)
	svc := newTestService(t, FeedSources{Polymarket: src}, FeedConfig{DefaultLimit: 1, MaxLimit: 2})

	res, err := svc.Fetch(context.Background(), domain.FeedQuery{
		Source:       domain.FeedSourcePolymarket,
		Categories:   []string{"crypto"},
		EndingWithin: 48 * time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(res.Markets); len(got) != 1 || got[0] != "btc" || res.Total != 1 {
		t.Errorf("ids = %v total = %d", got, res.Total)
	}

	res, err = svc.Fetch(context.Background(), domain.FeedQuery{Source: domain.FeedSourcePolymarket, Limit: 50})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Markets) != 2 || res.Total != 3 {
		t.Errorf("limit not clamped: %d markets, total %d", len(res.Markets), res.Total)
	}
}
