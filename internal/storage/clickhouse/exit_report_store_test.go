package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sniper-sim/internal/domain"
	"sniper-sim/internal/storage"
)

func TestExitReportStore_InsertAndGetByMint(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewExitReportStore(conn)
	ctx := context.Background()

	bestAt := time.Unix(1700000600, 0).UTC()
	report := &domain.ExitReport{
		ReportID:          "r1",
		PositionID:        "p1",
		Symbol:            "BONK",
		Mint:              "mint1",
		BoughtAt:          time.Unix(1700000000, 0).UTC(),
		BuyPrice:          1.0,
		SellPrice:         1.6,
		SoldAt:            time.Unix(1700001000, 0).UTC(),
		Reason:            domain.CloseReasonProfitTarget,
		BestSellAt:        &bestAt,
		BestSellPrice:     ptr(2.5),
		BestReturnPercent: ptr(150.0),
		CreatedAt:         time.Unix(1700001001, 0).UTC(),
	}

	require.NoError(t, store.Insert(ctx, report))

	got, err := store.GetByMint(ctx, "mint1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "r1", got[0].ReportID)
	require.Equal(t, domain.CloseReasonProfitTarget, got[0].Reason)
	require.NotNil(t, got[0].BestSellPrice)
	require.Equal(t, 2.5, *got[0].BestSellPrice)
	require.NotNil(t, got[0].BestSellAt)
	require.True(t, got[0].BestSellAt.Equal(bestAt))
}

func TestExitReportStore_AbsentBestExit(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewExitReportStore(conn)
	ctx := context.Background()

	report := &domain.ExitReport{
		ReportID:   "r1",
		PositionID: "p1",
		Symbol:     "BONK",
		Mint:       "mint1",
		BoughtAt:   time.Unix(1700000000, 0).UTC(),
		BuyPrice:   0,
		SoldAt:     time.Unix(1700001000, 0).UTC(),
		Reason:     domain.CloseReasonHoldExpired,
		Warning:    "no candle history at or after purchase",
		CreatedAt:  time.Unix(1700001001, 0).UTC(),
	}

	require.NoError(t, store.Insert(ctx, report))

	got, err := store.GetByMint(ctx, "mint1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Nil(t, got[0].BestSellAt)
	require.Nil(t, got[0].BestSellPrice)
	require.Nil(t, got[0].BestReturnPercent)
	require.Equal(t, "no candle history at or after purchase", got[0].Warning)
}

func TestExitReportStore_DuplicateKey(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewExitReportStore(conn)
	ctx := context.Background()

	report := &domain.ExitReport{
		ReportID:   "r1",
		PositionID: "p1",
		Symbol:     "BONK",
		Mint:       "mint1",
		BoughtAt:   time.Unix(1700000000, 0).UTC(),
		SoldAt:     time.Unix(1700001000, 0).UTC(),
		Reason:     domain.CloseReasonHoldExpired,
		CreatedAt:  time.Unix(1700001001, 0).UTC(),
	}

	require.NoError(t, store.Insert(ctx, report))

	err := store.Insert(ctx, report)
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}
