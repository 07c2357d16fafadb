// Package analysis implements the retrospective best-exit computation over
// candle history.
package analysis

import (
	"math"
	"time"

	"sniper-sim/internal/domain"
)

// ComputeBestExit finds the candle with the strictly greatest high at or
// after the purchase and derives the hypothetical return. The result is
// absent when buyPrice is not a positive finite number, when boughtAt is
// the zero time, or when no candle falls at or after the purchase. On a
// tie the earliest candle wins.
func ComputeBestExit(buyPrice float64, boughtAt time.Time, candles []domain.Candle) domain.BestExitResult {
	if math.IsNaN(buyPrice) || math.IsInf(buyPrice, 0) || buyPrice <= 0 {
		return domain.BestExitResult{}
	}
	if boughtAt.IsZero() {
		return domain.BestExitResult{}
	}

	cutoff := boughtAt.Unix()
	var best *domain.Candle
	for i := range candles {
		c := &candles[i]
		if c.Timestamp < cutoff {
			continue
		}
		if best == nil || c.High > best.High {
			best = c
		}
	}
	if best == nil {
		return domain.BestExitResult{}
	}

	sellAt := time.Unix(best.Timestamp, 0).UTC()
	sellPrice := best.High
	returnPct := (best.High - buyPrice) / buyPrice * 100
	return domain.BestExitResult{
		BestSellAt:        &sellAt,
		BestSellPrice:     &sellPrice,
		BestReturnPercent: &returnPct,
	}
}
