package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := fmt.Errorf("feed: %w", &ConfigError{Source: SourceKalshi, Field: "api_key_id"})
	if !errors.Is(err, ErrConfiguration) {
		t.Error("errors.Is(ErrConfiguration) = false")
	}
	if errors.Is(err, ErrUpstream) {
		t.Error("configuration error classified as upstream")
	}
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Field != "api_key_id" {
		t.Errorf("errors.As = %+v", ce)
	}
	if got := err.Error(); got != "feed: kalshi: configuration: api_key_id" {
		t.Errorf("Error() = %q", got)
	}
}

func TestUpstreamError(t *testing.T) {
	err := fmt.Errorf("feed: %w", &UpstreamError{Source: SourcePolymarket, StatusCode: 429, Err: ErrRateLimited})
	if !errors.Is(err, ErrUpstream) || !errors.Is(err, ErrRateLimited) {
		t.Error("upstream error does not match both sentinels")
	}
	if got := err.Error(); got != "feed: polymarket: upstream HTTP 429: rate limited" {
		t.Errorf("Error() = %q", got)
	}
}

func TestUpstreamError_Retryable(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{0, true},
		{429, true},
		{500, true},
		{503, true},
		{400, false},
		{401, false},
		{403, false},
		{404, false},
	}
	for _, tt := range tests {
		e := &UpstreamError{StatusCode: tt.status, Err: errors.New("x")}
		if got := e.Retryable(); got != tt.want {
			t.Errorf("Retryable(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestHasLivePrice(t *testing.T) {
	for yes, want := range map[int]bool{0: false, 1: true, 50: true, 99: true, 100: false} {
		m := Market{ProbabilityYes: yes, ProbabilityNo: 100 - yes}
		if got := m.HasLivePrice(); got != want {
			t.Errorf("HasLivePrice(%d) = %v, want %v", yes, got, want)
		}
	}
}
