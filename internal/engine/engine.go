// Package engine runs the simulated sniping pass: discover newly listed
// tokens, open paper positions on them, and close positions whose exit
// rules fire.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sniper-sim/internal/config"
	"sniper-sim/internal/domain"
	"sniper-sim/internal/observability"
	"sniper-sim/internal/storage"
)

// TokenSource provides the newest token listings.
type TokenSource interface {
	LatestTokens(ctx context.Context, limit int) ([]domain.TokenListing, error)
}

// SpotOracle resolves current USD prices for a set of mints. Absence from
// the result means the price is unknown.
type SpotOracle interface {
	SpotPrices(ctx context.Context, mints []string) (map[string]float64, error)
}

// HindsightAnalyzer computes the retrospective best exit for a position.
type HindsightAnalyzer interface {
	BestExit(ctx context.Context, mint string, boughtAt time.Time, buyPrice float64) (domain.BestExitResult, error)
}

// Engine coordinates discovery, position opening and exit evaluation.
type Engine struct {
	tokens    storage.TokenStore
	positions storage.PositionStore
	reports   storage.ExitReportStore

	source   TokenSource
	oracle   SpotOracle
	analyzer HindsightAnalyzer

	cfg config.Config
	log zerolog.Logger
	now func() time.Time
}

// Options for creating an Engine. Reports and Analyzer are optional; when
// either is nil no hindsight reports are written.
type Options struct {
	TokenStore    storage.TokenStore
	PositionStore storage.PositionStore
	ReportStore   storage.ExitReportStore

	Source   TokenSource
	Oracle   SpotOracle
	Analyzer HindsightAnalyzer

	Config config.Config
	Logger zerolog.Logger

	// Now overrides the clock, used by tests. Defaults to time.Now.
	Now func() time.Time
}

// New creates a new Engine.
func New(opts Options) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		tokens:    opts.TokenStore,
		positions: opts.PositionStore,
		reports:   opts.ReportStore,
		source:    opts.Source,
		oracle:    opts.Oracle,
		analyzer:  opts.Analyzer,
		cfg:       opts.Config,
		log:       opts.Logger,
		now:       now,
	}
}

// RunPass executes one full pass. Upstream failures degrade the pass and
// are collected in the summary; storage failures abort it.
func (e *Engine) RunPass(ctx context.Context) (*domain.PassSummary, error) {
	started := e.now()
	summary := &domain.PassSummary{StartedAt: started.UTC()}

	if err := e.discoverAndOpen(ctx, summary); err != nil {
		observability.RecordPass("error", e.now().Sub(started).Seconds())
		return nil, err
	}

	if err := e.evaluateAndClose(ctx, summary); err != nil {
		observability.RecordPass("error", e.now().Sub(started).Seconds())
		return nil, err
	}

	summary.Duration = e.now().Sub(started)

	status := "ok"
	if len(summary.Failures) > 0 {
		status = "degraded"
	}
	observability.RecordPass(status, summary.Duration.Seconds())

	e.log.Info().
		Int("tokens_seen", summary.TokensSeen).
		Int("tokens_new", summary.TokensNew).
		Int("opened", summary.Opened).
		Int("evaluated", summary.Evaluated).
		Int("closed", summary.Closed).
		Int("failures", len(summary.Failures)).
		Dur("duration", summary.Duration).
		Msg("pass completed")

	return summary, nil
}

// discoverAndOpen diffs the discovery feed against known symbols and opens
// a position for every token not seen before. A failed feed degrades the
// pass rather than aborting it, so exit evaluation still runs.
func (e *Engine) discoverAndOpen(ctx context.Context, summary *domain.PassSummary) error {
	listings, err := e.source.LatestTokens(ctx, e.cfg.DiscoveryLimit)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		summary.Failures = append(summary.Failures, fmt.Sprintf("discovery feed: %v", err))
		e.log.Warn().Err(err).Msg("discovery feed failed, skipping open phase")
		return nil
	}
	summary.TokensSeen = len(listings)

	known, err := e.tokens.Symbols(ctx)
	if err != nil {
		return fmt.Errorf("load known symbols: %w", err)
	}

	var fresh []domain.TokenListing
	seen := make(map[string]struct{}, len(listings))
	for _, l := range listings {
		if _, ok := known[l.Symbol]; ok {
			continue
		}
		if _, ok := seen[l.Symbol]; ok {
			continue
		}
		seen[l.Symbol] = struct{}{}
		fresh = append(fresh, l)
	}
	summary.TokensNew = len(fresh)
	if len(fresh) == 0 {
		return nil
	}

	now := e.now().UTC()

	tokens := make([]*domain.Token, 0, len(fresh))
	mints := make([]string, 0, len(fresh))
	for _, l := range fresh {
		tokens = append(tokens, &domain.Token{Symbol: l.Symbol, Mint: l.Mint, DiscoveredAt: now})
		mints = append(mints, l.Mint)
	}
	if err := e.tokens.InsertBatch(ctx, tokens); err != nil {
		return fmt.Errorf("insert discovered tokens: %w", err)
	}
	observability.RecordTokensDiscovered(len(fresh))

	// One oracle call covers every new mint. Unknown prices open at 0 so
	// the position still exists and ages toward the hold limit.
	prices, err := e.oracle.SpotPrices(ctx, mints)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		summary.Failures = append(summary.Failures, fmt.Sprintf("spot prices at open: %v", err))
		prices = map[string]float64{}
	}

	positions := make([]*domain.Position, 0, len(fresh))
	for _, l := range fresh {
		positions = append(positions, &domain.Position{
			ID:       uuid.NewString(),
			Symbol:   l.Symbol,
			Mint:     l.Mint,
			BoughtAt: now,
			BuyPrice: prices[l.Mint],
		})
	}
	if err := e.positions.InsertBatch(ctx, positions); err != nil {
		return fmt.Errorf("insert opened positions: %w", err)
	}
	summary.Opened = len(positions)
	for range positions {
		observability.RecordPositionOpened()
	}

	return nil
}

// evaluateAndClose checks every open position against the exit rules using
// a single spot snapshot, then closes the firing ones concurrently.
func (e *Engine) evaluateAndClose(ctx context.Context, summary *domain.PassSummary) error {
	open, err := e.positions.GetOpen(ctx)
	if err != nil {
		return fmt.Errorf("load open positions: %w", err)
	}
	summary.Evaluated = len(open)
	if len(open) == 0 {
		return nil
	}

	mints := make([]string, 0, len(open))
	for _, p := range open {
		mints = append(mints, p.Mint)
	}
	snapshot, err := e.oracle.SpotPrices(ctx, mints)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		summary.Failures = append(summary.Failures, fmt.Sprintf("spot prices at evaluation: %v", err))
		snapshot = map[string]float64{}
	}

	now := e.now().UTC()

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, p := range open {
		reason := e.exitReason(p, snapshot, now)
		if reason == "" {
			continue
		}

		sellPrice := snapshot[p.Mint]

		wg.Add(1)
		go func(p *domain.Position, reason string, sellPrice float64) {
			defer wg.Done()

			closed, err := e.positions.Close(ctx, p.ID, sellPrice, now)
			if err != nil {
				mu.Lock()
				summary.Failures = append(summary.Failures, fmt.Sprintf("close %s: %v", p.Symbol, err))
				mu.Unlock()
				return
			}
			if !closed {
				return
			}

			observability.RecordPositionClosed(reason)
			e.log.Info().
				Str("symbol", p.Symbol).
				Str("reason", reason).
				Float64("buy_price", p.BuyPrice).
				Float64("sell_price", sellPrice).
				Msg("position closed")

			mu.Lock()
			summary.Closed++
			mu.Unlock()

			if warn := e.writeReport(ctx, p, reason, sellPrice, now); warn != "" {
				mu.Lock()
				summary.Failures = append(summary.Failures, warn)
				mu.Unlock()
			}
		}(p, reason, sellPrice)
	}
	wg.Wait()

	return nil
}

// exitReason returns the close reason for a position, or "" to keep it
// open. Both thresholds are strict: a position held exactly the limit or
// priced exactly at the target stays open.
func (e *Engine) exitReason(p *domain.Position, snapshot map[string]float64, now time.Time) string {
	if now.Sub(p.BoughtAt) > e.cfg.MaxHoldDuration {
		return domain.CloseReasonHoldExpired
	}

	spot, ok := snapshot[p.Mint]
	if ok && p.BuyPrice > 0 && spot > p.BuyPrice*e.cfg.ProfitMultiplier {
		return domain.CloseReasonProfitTarget
	}

	return ""
}

// writeReport computes the hindsight best exit for a just-closed position
// and stores it. Report failures never fail the close; they come back as a
// pass failure string, or "" on success.
func (e *Engine) writeReport(ctx context.Context, p *domain.Position, reason string, sellPrice float64, now time.Time) string {
	if e.reports == nil || e.analyzer == nil {
		return ""
	}

	report := &domain.ExitReport{
		ReportID:   uuid.NewString(),
		PositionID: p.ID,
		Symbol:     p.Symbol,
		Mint:       p.Mint,
		BoughtAt:   p.BoughtAt,
		BuyPrice:   p.BuyPrice,
		SellPrice:  sellPrice,
		SoldAt:     now,
		Reason:     reason,
		CreatedAt:  e.now().UTC(),
	}

	result, err := e.analyzer.BestExit(ctx, p.Mint, p.BoughtAt, p.BuyPrice)
	if err != nil {
		report.Warning = fmt.Sprintf("best exit unavailable: %v", err)
	} else {
		report.BestSellAt = result.BestSellAt
		report.BestSellPrice = result.BestSellPrice
		report.BestReturnPercent = result.BestReturnPercent
	}

	if err := e.reports.Insert(ctx, report); err != nil {
		return fmt.Sprintf("store exit report for %s: %v", p.Symbol, err)
	}
	return ""
}
