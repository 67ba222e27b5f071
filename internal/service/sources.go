package service

import (
	"context"

	"github.com/alanyoungcy/marketboard/internal/domain"
	"github.com/alanyoungcy/marketboard/internal/platform/kalshi"
	"github.com/alanyoungcy/marketboard/internal/platform/polymarket"
)

// PageSource fetches one page of raw records from an upstream.
type PageSource interface {
	// Name labels the source in logs and metrics.
	Name() string
	FetchPage(ctx context.Context, cursor string, limit int) (domain.RawPage, error)
}

// KalshiMarkets lists Kalshi markets, optionally filtered by status.
type KalshiMarkets struct {
	Client *kalshi.Client
	Status string
}

func (s KalshiMarkets) Name() string { return string(domain.SourceKalshi) }

func (s KalshiMarkets) FetchPage(ctx context.Context, cursor string, limit int) (domain.RawPage, error) {
	return s.Client.GetMarkets(ctx, kalshi.MarketsQuery{Limit: limit, Cursor: cursor, Status: s.Status})
}

// GammaMarkets lists Polymarket markets from Gamma.
type GammaMarkets struct {
	Client     *polymarket.GammaClient
	ActiveOnly bool
}

func (s GammaMarkets) Name() string { return string(domain.SourcePolymarket) }

func (s GammaMarkets) FetchPage(ctx context.Context, cursor string, limit int) (domain.RawPage, error) {
	return s.Client.GetMarkets(ctx, gammaQuery(cursor, limit, s.ActiveOnly))
}

// GammaEvents lists Polymarket events; each record becomes one market.
type GammaEvents struct {
	Client     *polymarket.GammaClient
	ActiveOnly bool
}

func (s GammaEvents) Name() string { return string(domain.SourcePolymarket) + "_events" }

func (s GammaEvents) FetchPage(ctx context.Context, cursor string, limit int) (domain.RawPage, error) {
	return s.Client.GetEvents(ctx, gammaQuery(cursor, limit, s.ActiveOnly))
}

func gammaQuery(cursor string, limit int, activeOnly bool) polymarket.MarketsQuery {
	q := polymarket.MarketsQuery{Limit: limit, Cursor: cursor}
	if activeOnly {
		active, closed := true, false
		q.Active, q.Closed = &active, &closed
	}
	return q
}
