package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/marketboard/internal/display"
	"github.com/alanyoungcy/marketboard/internal/domain"
)

// FeedService defines the methods the market handler requires from the
// service layer. It is declared locally so the handler package does not depend
// on the concrete service implementation.
type FeedService interface {
	Fetch(ctx context.Context, q domain.FeedQuery) (domain.FeedResult, error)
}

// MarketHandler serves the ranked market feed.
type MarketHandler struct {
	feed   FeedService
	now    func() time.Time
	logger *slog.Logger
}

// NewMarketHandler creates a MarketHandler with the given service and logger.
func NewMarketHandler(feed FeedService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{feed: feed, now: time.Now, logger: logger}
}

// marketView is a market plus its derived display values.
type marketView struct {
	domain.Market
	Display display.Block `json:"display"`
}

// listMarketsResponse wraps the feed output with paging metadata.
type listMarketsResponse struct {
	Markets []marketView `json:"markets"`
	Cursor  string       `json:"cursor,omitempty"`
	Total   int          `json:"total"`
	Page    int          `json:"page"`
	Limit   int          `json:"limit"`
}

// ListMarkets returns one page of the ranked feed.
// GET /api/markets?source=all&page=1&limit=20&category=Crypto,Economy&ending_within=72h&sort=volume24h&include_sports=false&cursor=
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	q, err := parseFeedQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, KindBadRequest, err.Error(), false)
		return
	}

	res, err := h.feed.Fetch(r.Context(), q)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list markets failed",
			slog.String("source", string(q.Source)),
			slog.String("error", err.Error()),
		)
		writeFeedError(w, err)
		return
	}

	now := h.now()
	views := make([]marketView, len(res.Markets))
	for i := range res.Markets {
		views[i] = marketView{Market: res.Markets[i], Display: display.For(&res.Markets[i], now)}
	}

	writeJSON(w, http.StatusOK, listMarketsResponse{
		Markets: views,
		Cursor:  res.Cursor,
		Total:   res.Total,
		Page:    res.Page,
		Limit:   res.Limit,
	})
}
