// Package marketdata is the HTTP client for the market-data aggregator.
// A single Client serves the discovery feed, pool listing, candle history
// and the spot-price oracle.
package marketdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mr-tron/base58"
	"github.com/rs/zerolog"

	"sniper-sim/internal/config"
	"sniper-sim/internal/observability"
)

// maxErrBody bounds how much of an error response body is kept in errors.
const maxErrBody = 256

// Client talks to the market-data aggregator.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client

	maxAttempts int
	backoffBase time.Duration

	pageSize  int
	pageCap   int
	batchSize int

	log zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a market-data client from the given configuration.
func NewClient(cfg config.Config, opts ...Option) *Client {
	c := &Client{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		httpc:       &http.Client{Timeout: cfg.HTTPTimeout},
		maxAttempts: cfg.MaxAttempts,
		backoffBase: cfg.BackoffBase,
		pageSize:    cfg.CandlePageSize,
		pageCap:     cfg.CandlePageCap,
		batchSize:   cfg.OracleBatchSize,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// getJSON performs a GET with linear backoff. Rate limits, server-side
// failures and transport errors are retried up to the attempt budget;
// any other non-2xx status is terminal.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoffBase * time.Duration(attempt-1)):
			}
			observability.RecordUpstreamRetry(path)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request for %s: %w", path, err)
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("x-api-key", c.apiKey)
		}

		start := time.Now()
		resp, err := c.httpc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		observability.RecordUpstreamRequest(path, resp.StatusCode, time.Since(start).Seconds())
		if err != nil {
			lastErr = fmt.Errorf("read response body: %w", err)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}

		statusErr := &StatusError{Status: resp.StatusCode, Body: truncate(body)}
		if !statusErr.Retryable() {
			return nil, statusErr
		}
		lastErr = statusErr
	}

	return nil, fmt.Errorf("attempts exhausted for %s: %w", path, lastErr)
}

// validMint reports whether mint decodes to a 32-byte base58 value.
func validMint(mint string) bool {
	raw, err := base58.Decode(mint)
	return err == nil && len(raw) == 32
}

func truncate(body []byte) string {
	if len(body) > maxErrBody {
		return string(body[:maxErrBody])
	}
	return string(body)
}
