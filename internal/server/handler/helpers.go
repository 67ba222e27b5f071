package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/marketboard/internal/domain"
)

// Error kinds reported in error bodies.
const (
	KindConfiguration = "configuration"
	KindUpstream      = "upstream"
	KindBadRequest    = "bad_request"
	KindInternal      = "internal"
)

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
}

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, kind, msg string, retryable bool) {
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind, Retryable: retryable})
}

// writeFeedError maps a pipeline error onto a status code and error kind.
// Configuration problems are the operator's to fix and are never retryable;
// upstream failures usually are.
func writeFeedError(w http.ResponseWriter, err error) {
	var upErr *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, KindBadRequest, err.Error(), false)
	case errors.Is(err, domain.ErrConfiguration):
		writeError(w, http.StatusInternalServerError, KindConfiguration, err.Error(), false)
	case errors.As(err, &upErr):
		status := http.StatusBadGateway
		if errors.Is(err, domain.ErrRateLimited) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, KindUpstream, err.Error(), upErr.Retryable())
	default:
		writeError(w, http.StatusInternalServerError, KindInternal, "failed to build feed", true)
	}
}

// parseFeedQuery extracts the feed parameters from the query string. Absent
// values are left zero for the service to default.
func parseFeedQuery(r *http.Request) (domain.FeedQuery, error) {
	v := r.URL.Query()
	q := domain.FeedQuery{
		Source: domain.FeedSource(strings.ToLower(strings.TrimSpace(v.Get("source")))),
		Cursor: v.Get("cursor"),
		Sort:   domain.SortField(strings.TrimSpace(v.Get("sort"))),
	}
	if q.Sort == "rank" {
		q.Sort = domain.SortRank
	}

	var err error
	if q.Page, err = intParam(v.Get("page")); err != nil {
		return q, errors.New("page must be a positive integer")
	}
	if q.Limit, err = intParam(v.Get("limit")); err != nil {
		return q, errors.New("limit must be a positive integer")
	}

	for _, c := range strings.Split(v.Get("category"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			q.Categories = append(q.Categories, c)
		}
	}

	if s := v.Get("ending_within"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return q, errors.New("ending_within must be a positive duration such as 72h")
		}
		q.EndingWithin = d
	}

	if s := v.Get("include_sports"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return q, errors.New("include_sports must be true or false")
		}
		q.IncludeSports = b
	}
	return q, nil
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.New("not a positive integer")
	}
	return n, nil
}
