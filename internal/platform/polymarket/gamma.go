// Package polymarket is the raw-record adapter for the public Polymarket
// Gamma API.
package polymarket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/alanyoungcy/marketboard/internal/domain"
)

const maxErrorBody = 512

// GammaClient is the REST client for the Polymarket Gamma API, which
// provides market discovery and event metadata.
type GammaClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewGammaClient creates a new Gamma API client.
func NewGammaClient(cfg Config) *GammaClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGammaURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return &GammaClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
	}
}

// GetMarkets returns one page of raw market records.
func (g *GammaClient) GetMarkets(ctx context.Context, q MarketsQuery) (domain.RawPage, error) {
	page, err := g.list(ctx, "/markets", domain.RecordKindMarket, q)
	if err != nil {
		return domain.RawPage{}, fmt.Errorf("polymarket/gamma: get markets: %w", err)
	}
	return page, nil
}

// GetEvents returns one page of raw event records. Each event carries its
// binary markets under "markets".
func (g *GammaClient) GetEvents(ctx context.Context, q MarketsQuery) (domain.RawPage, error) {
	page, err := g.list(ctx, "/events", domain.RecordKindEvent, q)
	if err != nil {
		return domain.RawPage{}, fmt.Errorf("polymarket/gamma: get events: %w", err)
	}
	return page, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

func (g *GammaClient) list(ctx context.Context, path string, kind domain.RecordKind, q MarketsQuery) (domain.RawPage, error) {
	offset := 0
	if q.Cursor != "" {
		n, err := strconv.Atoi(q.Cursor)
		if err != nil || n < 0 {
			return domain.RawPage{}, fmt.Errorf("%w: cursor %q is not an offset", domain.ErrInvalidQuery, q.Cursor)
		}
		offset = n
	}

	params := url.Values{}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	params.Set("offset", strconv.Itoa(offset))
	if q.Active != nil {
		params.Set("active", strconv.FormatBool(*q.Active))
	}
	if q.Closed != nil {
		params.Set("closed", strconv.FormatBool(*q.Closed))
	}

	body, err := g.doGet(ctx, path+"?"+params.Encode())
	if err != nil {
		return domain.RawPage{}, err
	}

	items, err := decodeList(body)
	if err != nil {
		return domain.RawPage{}, &domain.UpstreamError{Source: domain.SourcePolymarket, StatusCode: http.StatusOK, Err: err}
	}

	page := domain.RawPage{Records: make([]domain.RawRecord, 0, len(items))}
	for _, it := range items {
		fields, ok := it.(map[string]any)
		if !ok {
			continue
		}
		page.Records = append(page.Records, domain.RawRecord{
			Source: domain.SourcePolymarket,
			Kind:   kind,
			Fields: fields,
		})
	}
	// A full page means there may be more; a short one is the last.
	if q.Limit > 0 && len(items) >= q.Limit {
		page.Cursor = strconv.Itoa(offset + len(items))
	}
	return page, nil
}

// decodeList accepts a bare JSON array or an object wrapping one under
// "data", "markets" or "events".
func decodeList(body []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	switch t := v.(type) {
	case []any:
		return t, nil
	case map[string]any:
		for _, key := range []string{"data", "markets", "events"} {
			if list, ok := t[key].([]any); ok {
				return list, nil
			}
		}
	}
	return nil, errors.New("response is not a list")
}

// doGet sends an unauthenticated GET request to the Gamma API.
func (g *GammaClient) doGet(ctx context.Context, path string) ([]byte, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, &domain.UpstreamError{Source: domain.SourcePolymarket, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Source: domain.SourcePolymarket, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{Source: domain.SourcePolymarket, StatusCode: resp.StatusCode, Err: err}
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, &domain.UpstreamError{Source: domain.SourcePolymarket, StatusCode: resp.StatusCode, Err: err}
	}
	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to domain sentinels where one fits.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	if len(bodyStr) > maxErrorBody {
		bodyStr = bodyStr[:maxErrorBody]
	}
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}
