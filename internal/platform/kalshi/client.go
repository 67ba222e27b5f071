// Package kalshi is the raw-record adapter for the Kalshi trade API. Every
// request is signed with the operator's RSA key.
package kalshi

import (
	"bytes"
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
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/alanyoungcy/marketboard/internal/domain"
)

const maxErrorBody = 512

// Client is the REST client for the Kalshi exchange API.
type Client struct {
	baseURL    string
	apiKeyID   string
	privateKey *rsa.PrivateKey
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time
}

// NewClient creates a Kalshi client. Credentials may be absent; calls then
// fail with a configuration error. Key material that is present but cannot be
// parsed is rejected here.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKeyID:   cfg.APIKeyID,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Inf, 1),
		now:        time.Now,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	pemBytes := cfg.PrivateKeyPEM
	if len(pemBytes) == 0 && cfg.PrivateKeyPath != "" {
		b, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, &domain.ConfigError{Source: domain.SourceKalshi, Field: "private_key_path", Err: err}
		}
		pemBytes = b
	}
	if len(bytes.TrimSpace(pemBytes)) > 0 {
		key, err := parsePrivateKey(pemBytes)
		if err != nil {
			return nil, &domain.ConfigError{Source: domain.SourceKalshi, Field: "private_key", Err: err}
		}
		c.privateKey = key
	}
	return c, nil
}

// Configured reports whether both the key ID and private key are present.
func (c *Client) Configured() bool {
	return c.apiKeyID != "" && c.privateKey != nil
}

// GetMarkets returns one page of raw market records.
func (c *Client) GetMarkets(ctx context.Context, q MarketsQuery) (domain.RawPage, error) {
	params := url.Values{}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Cursor != "" {
		params.Set("cursor", q.Cursor)
	}
	if q.Status != "" {
		params.Set("status", q.Status)
	}

	body, err := c.doSignedGet(ctx, "/markets", params)
	if err != nil {
		return domain.RawPage{}, fmt.Errorf("kalshi: get markets: %w", err)
	}

	var env marketsEnvelope
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil {
		return domain.RawPage{}, fmt.Errorf("kalshi: decode markets: %w",
			&domain.UpstreamError{Source: domain.SourceKalshi, StatusCode: http.StatusOK, Err: err})
	}

	page := domain.RawPage{Records: make([]domain.RawRecord, 0, len(env.Markets)), Cursor: env.Cursor}
	for _, m := range env.Markets {
		if m == nil {
			continue
		}
		page.Records = append(page.Records, domain.RawRecord{
			Source: domain.SourceKalshi,
			Kind:   domain.RecordKindMarket,
			Fields: m,
		})
	}
	return page, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doSignedGet waits on the limiter, signs, sends and reads a GET request.
func (c *Client) doSignedGet(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.apiKeyID == "" {
		return nil, &domain.ConfigError{Source: domain.SourceKalshi, Field: "api_key_id"}
	}
	if c.privateKey == nil {
		return nil, &domain.ConfigError{Source: domain.SourceKalshi, Field: "private_key"}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &domain.UpstreamError{Source: domain.SourceKalshi, Err: err}
	}

	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if err := c.signRequest(req); err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Source: domain.SourceKalshi, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{Source: domain.SourceKalshi, StatusCode: resp.StatusCode, Err: err}
	}
	if err := checkStatus(resp.StatusCode, body); err != nil {
		return nil, &domain.UpstreamError{Source: domain.SourceKalshi, StatusCode: resp.StatusCode, Err: err}
	}
	return body, nil
}

// signRequest adds the RSA-PSS authentication headers. The signed message is
// timestamp + method + URL path; the query string is not part of it.
func (c *Client) signRequest(req *http.Request) error {
	ts := strconv.FormatInt(c.now().UnixMilli(), 10)
	sig, err := sign(c.privateKey, ts+req.Method+req.URL.Path)
	if err != nil {
		return err
	}
	req.Header.Set("KALSHI-ACCESS-KEY", c.apiKeyID)
	req.Header.Set("KALSHI-ACCESS-SIGNATURE", sig)
	req.Header.Set("KALSHI-ACCESS-TIMESTAMP", ts)
	return nil
}

func sign(key *rsa.PrivateKey, message string) (string, error) {
	hash := sha256.Sum256([]byte(message))
	sig, err := rsa.SignPSS(rand.Reader, key, crypto.SHA256, hash[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
	})
	if err != nil {
		return "", fmt.Errorf("RSA sign: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// parsePrivateKey accepts PKCS#8 and PKCS#1 PEM blocks.
func parsePrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		pkcs1Key, pkcs1Err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if pkcs1Err != nil {
			return nil, fmt.Errorf("parse private key: %w (pkcs1: %v)", err, pkcs1Err)
		}
		return pkcs1Key, nil
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("expected RSA private key, got %T", key)
	}
	return rsaKey, nil
}

// checkStatus maps non-2xx status codes to domain sentinels where one fits.
func checkStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	var apiErr errorResponse
	msg := ""
	if json.Unmarshal(body, &apiErr) == nil {
		msg = apiErr.text()
	}
	if msg == "" {
		msg = string(body)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
	}

	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, msg)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, msg)
	}
}
