package kalshi

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alanyoungcy/marketboard/internal/domain"
)

func testKey(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	return key, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}

func TestGetMarkets_SignsRequest(t *testing.T) {
	key, pemBytes := testKey(t)

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trade-api/v2/markets" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery

		ts := r.Header.Get("KALSHI-ACCESS-TIMESTAMP")
		if r.Header.Get("KALSHI-ACCESS-KEY") != "key-1" || ts == "" {
			t.Errorf("auth headers = %v", r.Header)
		}
		sig, err := base64.StdEncoding.DecodeString(r.Header.Get("KALSHI-ACCESS-SIGNATURE"))
		if err != nil {
			t.Fatalf("decode signature: %v", err)
		}
		hash := sha256.Sum256([]byte(ts + "GET" + "/trade-api/v2/markets"))
		if err := rsa.VerifyPSS(&key.PublicKey, crypto.SHA256, hash[:], sig,
			&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash}); err != nil {
			t.Errorf("signature does not verify over path without query: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cursor":"next-1","markets":[
			{"ticker":"KXFED-26MAR","title":"Will the Fed cut rates in March?","last_price":42,"volume_24h":1200},
			null,
			{"ticker":"KXCPI-26MAR","title":"Will CPI exceed 3%?","yes_bid":30,"yes_ask":34}
		]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL + "/trade-api/v2/", APIKeyID: "key-1", PrivateKeyPEM: pemBytes})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	page, err := c.GetMarkets(context.Background(), MarketsQuery{Limit: 50, Cursor: "abc", Status: "open"})
	if err != nil {
		t.Fatalf("GetMarkets: %v", err)
	}

	if gotQuery != "cursor=abc&limit=50&status=open" {
		t.Errorf("query = %q", gotQuery)
	}
	if page.Cursor != "next-1" {
		t.Errorf("cursor = %q", page.Cursor)
	}
	if len(page.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(page.Records))
	}
	rec := page.Records[0]
	if rec.Source != domain.SourceKalshi || rec.Kind != domain.RecordKindMarket {
		t.Errorf("record tag = %s/%s", rec.Source, rec.Kind)
	}
	if n, ok := rec.Fields["last_price"].(json.Number); !ok || n.String() != "42" {
		t.Errorf("last_price = %#v, want json.Number 42", rec.Fields["last_price"])
	}
}

func TestGetMarkets_MissingCredentials(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, pemBytes := testKey(t)
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"no key id", Config{BaseURL: srv.URL, PrivateKeyPEM: pemBytes}, "api_key_id"},
		{"no private key", Config{BaseURL: srv.URL, APIKeyID: "key-1"}, "private_key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.cfg)
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			if c.Configured() {
				t.Error("Configured = true")
			}
			_, err = c.GetMarkets(context.Background(), MarketsQuery{})
			if !errors.Is(err, domain.ErrConfiguration) {
				t.Fatalf("err = %v, want configuration error", err)
			}
			var cfgErr *domain.ConfigError
			if !errors.As(err, &cfgErr) || cfgErr.Field != tt.field {
				t.Errorf("ConfigError = %+v, want field %q", cfgErr, tt.field)
			}
		})
	}
	if called {
		t.Error("upstream was called without credentials")
	}
}

func TestNewClient_KeyMaterial(t *testing.T) {
	_, pemBytes := testKey(t)

	path := filepath.Join(t.TempDir(), "kalshi.pem")
	if err := os.WriteFile(path, pemBytes, 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := NewClient(Config{APIKeyID: "k", PrivateKeyPath: path})
	if err != nil || !c.Configured() {
		t.Fatalf("NewClient from path: configured=%v err=%v", c != nil && c.Configured(), err)
	}

	_, err = NewClient(Config{APIKeyID: "k", PrivateKeyPEM: []byte("not a pem block")})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("malformed PEM err = %v, want configuration error", err)
	}

	_, err = NewClient(Config{APIKeyID: "k", PrivateKeyPath: filepath.Join(t.TempDir(), "missing.pem")})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("missing file err = %v, want configuration error", err)
	}
}

func TestGetMarkets_UpstreamErrors(t *testing.T) {
	_, pemBytes := testKey(t)
	tests := []struct {
		name      string
		status    int
		body      string
		sentinel  error
		retryable bool
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"code":"auth","message":"bad signature"}}`, domain.ErrUnauthorized, false},
		{"rate limited", http.StatusTooManyRequests, `{}`, domain.ErrRateLimited, true},
		{"server error", http.StatusBadGateway, `oops`, nil, true},
		{"not json", http.StatusOK, `<html>`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewClient(Config{BaseURL: srv.URL, APIKeyID: "k", PrivateKeyPEM: pemBytes, Timeout: 5 * time.Second})
			if err != nil {
				t.Fatal(err)
			}
			_, err = c.GetMarkets(context.Background(), MarketsQuery{})
			var upErr *domain.UpstreamError
			if !errors.As(err, &upErr) {
				t.Fatalf("err = %v, want UpstreamError", err)
			}
			if upErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", upErr.StatusCode, tt.status)
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("err = %v, want %v", err, tt.sentinel)
			}
			if upErr.Retryable() != tt.retryable {
				t.Errorf("Retryable = %v, want %v", upErr.Retryable(), tt.retryable)
			}
		})
	}
}

func TestGetMarkets_TransportFailure(t *testing.T) {
	_, pemBytes := testKey(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(Config{BaseURL: url, APIKeyID: "k", PrivateKeyPEM: pemBytes})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.GetMarkets(context.Background(), MarketsQuery{})
	var upErr *domain.UpstreamError
	if !errors.As(err, &upErr) || upErr.StatusCode != 0 {
		t.Fatalf("err = %v, want transport UpstreamError", err)
	}
}
