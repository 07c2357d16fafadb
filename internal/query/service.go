// Package query answers retrospective best-exit questions by combining
// pool resolution, candle history and the best-exit computation.
package query

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"sniper-sim/internal/analysis"
	"sniper-sim/internal/domain"
	"sniper-sim/internal/observability"
)

// MarketData is the slice of the market-data client the service needs.
type MarketData interface {
	ResolveTopPool(ctx context.Context, mint string) (string, error)
	FetchCandles(ctx context.Context, pool string, stopBefore int64) ([]domain.Candle, error)
}

// Service computes best exits over live candle history.
type Service struct {
	md  MarketData
	log zerolog.Logger
}

// NewService creates a new Service.
func NewService(md MarketData, log zerolog.Logger) *Service {
	return &Service{md: md, log: log}
}

// BestExit resolves the mint's top pool, fetches candle history back to the
// purchase time, and computes the optimal exit. A degenerate buyPrice or
// boughtAt yields an absent result without touching upstream; upstream
// failures return an error the caller decides how to soften.
func (s *Service) BestExit(ctx context.Context, mint string, boughtAt time.Time, buyPrice float64) (domain.BestExitResult, error) {
	if boughtAt.IsZero() || math.IsNaN(buyPrice) || math.IsInf(buyPrice, 0) || buyPrice <= 0 {
		observability.RecordBestExitQuery("absent")
		return domain.BestExitResult{}, nil
	}

	pool, err := s.md.ResolveTopPool(ctx, mint)
	if err != nil {
		observability.RecordBestExitQuery("error")
		return domain.BestExitResult{}, fmt.Errorf("resolve pool: %w", err)
	}

	candles, err := s.md.FetchCandles(ctx, pool, boughtAt.Unix())
	if err != nil {
		observability.RecordBestExitQuery("error")
		return domain.BestExitResult{}, fmt.Errorf("fetch candles: %w", err)
	}

	result := analysis.ComputeBestExit(buyPrice, boughtAt, candles)
	if result.Absent() {
		observability.RecordBestExitQuery("absent")
	} else {
		observability.RecordBestExitQuery("found")
	}

	s.log.Debug().
		Str("mint", mint).
		Str("pool", pool).
		Int("candles", len(candles)).
		Bool("absent", result.Absent()).
		Msg("best exit computed")

	return result, nil
}
