package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sniper-sim/internal/domain"
)

func TestComputeBestExit_FindsPeak(t *testing.T) {
	candles := []domain.Candle{
		{Timestamp: 100, High: 2},
		{Timestamp: 160, High: 5},
		{Timestamp: 220, High: 3},
	}

	result := ComputeBestExit(1, time.Unix(100, 0), candles)
	require.False(t, result.Absent())
	require.Equal(t, time.Unix(160, 0).UTC(), *result.BestSellAt)
	require.Equal(t, 5.0, *result.BestSellPrice)
	require.Equal(t, 400.0, *result.BestReturnPercent)
}

func TestComputeBestExit_TieEarliestWins(t *testing.T) {
	candles := []domain.Candle{
		{Timestamp: 100, High: 5},
		{Timestamp: 160, High: 5},
	}

	result := ComputeBestExit(2, time.Unix(100, 0), candles)
	require.False(t, result.Absent())
	require.Equal(t, time.Unix(100, 0).UTC(), *result.BestSellAt)
}

func TestComputeBestExit_CandleAtPurchaseIncluded(t *testing.T) {
	candles := []domain.Candle{{Timestamp: 100, High: 4}}

	result := ComputeBestExit(2, time.Unix(100, 0), candles)
	require.False(t, result.Absent())
	require.Equal(t, 100.0, *result.BestReturnPercent)
}

func TestComputeBestExit_LossStillReported(t *testing.T) {
	candles := []domain.Candle{{Timestamp: 200, High: 1}}

	result := ComputeBestExit(4, time.Unix(100, 0), candles)
	require.False(t, result.Absent())
	require.Equal(t, -75.0, *result.BestReturnPercent)
}

func TestComputeBestExit_Absent(t *testing.T) {
	candles := []domain.Candle{{Timestamp: 200, High: 5}}
	boughtAt := time.Unix(100, 0)

	cases := []struct {
		name     string
		buyPrice float64
		boughtAt time.Time
		candles  []domain.Candle
	}{
		{"zero buy price", 0, boughtAt, candles},
		{"negative buy price", -5, boughtAt, candles},
		{"nan buy price", math.NaN(), boughtAt, candles},
		{"inf buy price", math.Inf(1), boughtAt, candles},
		{"zero bought at", 1, time.Time{}, candles},
		{"no candles", 1, boughtAt, nil},
		{"all candles before purchase", 1, boughtAt, []domain.Candle{{Timestamp: 50, High: 9}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := ComputeBestExit(tc.buyPrice, tc.boughtAt, tc.candles)
			require.True(t, result.Absent())
			require.Nil(t, result.BestSellAt)
			require.Nil(t, result.BestSellPrice)
			require.Nil(t, result.BestReturnPercent)
		})
	}
}
