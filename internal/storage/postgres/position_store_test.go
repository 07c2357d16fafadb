package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sniper-sim/internal/domain"
	"sniper-sim/internal/storage"
)

func TestPositionStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPositionStore(pool)
	ctx := context.Background()

	pos := &domain.Position{
		ID:       "pos1",
		Symbol:   "BONK",
		Mint:     "mint1",
		BoughtAt: time.Unix(1700000000, 0).UTC(),
		BuyPrice: 0.5,
	}

	require.NoError(t, store.Insert(ctx, pos))

	got, err := store.GetByID(ctx, "pos1")
	require.NoError(t, err)
	require.Equal(t, 0.5, got.BuyPrice)
	require.True(t, got.Open())
}

func TestPositionStore_GetOpenOrdering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPositionStore(pool)
	ctx := context.Background()

	positions := []*domain.Position{
		{ID: "p2", Symbol: "B", Mint: "m2", BoughtAt: time.Unix(2000, 0).UTC()},
		{ID: "p1", Symbol: "A", Mint: "m1", BoughtAt: time.Unix(1000, 0).UTC()},
		{ID: "p3", Symbol: "C", Mint: "m3", BoughtAt: time.Unix(3000, 0).UTC()},
	}
	require.NoError(t, store.InsertBatch(ctx, positions))

	closed, err := store.Close(ctx, "p3", 1.2, time.Unix(4000, 0).UTC())
	require.NoError(t, err)
	require.True(t, closed)

	open, err := store.GetOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	require.Equal(t, "p1", open[0].ID)
	require.Equal(t, "p2", open[1].ID)
}

func TestPositionStore_CloseOnce(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPositionStore(pool)
	ctx := context.Background()

	pos := &domain.Position{ID: "pos1", Symbol: "BONK", Mint: "m1", BoughtAt: time.Unix(1000, 0).UTC(), BuyPrice: 1}
	require.NoError(t, store.Insert(ctx, pos))

	soldAt := time.Unix(2000, 0).UTC()
	closed, err := store.Close(ctx, "pos1", 1.6, soldAt)
	require.NoError(t, err)
	require.True(t, closed)

	closed, err = store.Close(ctx, "pos1", 2.0, soldAt.Add(time.Minute))
	require.NoError(t, err)
	require.False(t, closed, "second close must be a no-op")

	got, err := store.GetByID(ctx, "pos1")
	require.NoError(t, err)
	require.NotNil(t, got.SellPrice)
	require.Equal(t, 1.6, *got.SellPrice)
}

func TestPositionStore_CloseNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPositionStore(pool)

	_, err := store.Close(context.Background(), "nonexistent", 1, time.Unix(1000, 0).UTC())
	require.ErrorIs(t, err, storage.ErrNotFound)
}
