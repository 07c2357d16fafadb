// Package config holds the explicit engine configuration. Every threshold
// that drives the lifecycle engine and the market-data client lives here
// rather than in package-level constants, so a pass is fully described by
// the Config it was given.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries all tunables for the market-data client, the lifecycle
// engine and the best-exit query path.
type Config struct {
	// BaseURL is the market-data aggregator API root.
	BaseURL string
	// APIKey, when set, is sent as the x-api-key header.
	APIKey string

	// HTTPTimeout bounds every upstream call.
	HTTPTimeout time.Duration
	// MaxAttempts is the total attempt budget per upstream request.
	MaxAttempts int
	// BackoffBase is the linear backoff unit between attempts.
	BackoffBase time.Duration

	// CandlePageSize is the per-page row limit for candle history.
	CandlePageSize int
	// CandlePageCap bounds pagination against looping upstreams.
	CandlePageCap int
	// OracleBatchSize is the hard per-call identifier limit of the
	// spot-price oracle; larger sets are chunked.
	OracleBatchSize int

	// DiscoveryLimit is how many latest listings a pass requests.
	DiscoveryLimit int
	// ProfitMultiplier triggers an exit when spot exceeds
	// buyPrice * ProfitMultiplier (strict).
	ProfitMultiplier float64
	// MaxHoldDuration triggers an exit once a position has been held
	// longer than this (strict).
	MaxHoldDuration time.Duration
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		HTTPTimeout:      10 * time.Second,
		MaxAttempts:      3,
		BackoffBase:      250 * time.Millisecond,
		CandlePageSize:   1000,
		CandlePageCap:    100,
		OracleBatchSize:  100,
		DiscoveryLimit:   100,
		ProfitMultiplier: 1.5,
		MaxHoldDuration:  16 * time.Hour,
	}
}

// FromEnv returns the default configuration overridden by environment
// variables. Unset or malformed variables keep their defaults.
func FromEnv() Config {
	cfg := Default()

	if v := os.Getenv("MARKET_DATA_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("MARKET_DATA_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if d, err := time.ParseDuration(os.Getenv("HTTP_TIMEOUT")); err == nil && d > 0 {
		cfg.HTTPTimeout = d
	}
	if d, err := time.ParseDuration(os.Getenv("MAX_HOLD_DURATION")); err == nil && d > 0 {
		cfg.MaxHoldDuration = d
	}
	if n, err := strconv.Atoi(os.Getenv("DISCOVERY_LIMIT")); err == nil && n > 0 {
		cfg.DiscoveryLimit = n
	}
	if f, err := strconv.ParseFloat(os.Getenv("PROFIT_MULTIPLIER"), 64); err == nil && f > 1 {
		cfg.ProfitMultiplier = f
	}

	return cfg
}

// Validate checks that every tunable is usable.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("config: base url is required")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("config: http timeout must be positive")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("config: max attempts must be at least 1")
	}
	if c.BackoffBase <= 0 {
		return fmt.Errorf("config: backoff base must be positive")
	}
	if c.CandlePageSize < 1 || c.CandlePageCap < 1 {
		return fmt.Errorf("config: candle paging limits must be positive")
	}
	if c.OracleBatchSize < 1 {
		return fmt.Errorf("config: oracle batch size must be positive")
	}
	if c.DiscoveryLimit < 1 {
		return fmt.Errorf("config: discovery limit must be positive")
	}
	if c.ProfitMultiplier <= 1 {
		return fmt.Errorf("config: profit multiplier must exceed 1")
	}
	if c.MaxHoldDuration <= 0 {
		return fmt.Errorf("config: max hold duration must be positive")
	}
	return nil
}
