package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"sniper-sim/internal/domain"
	"sniper-sim/internal/storage"
)

func TestTokenStore_InsertAndGet(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	token := &domain.Token{
		Symbol:       "BONK",
		Mint:         "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
		DiscoveredAt: time.Unix(1700000000, 0).UTC(),
	}

	if err := store.Insert(ctx, token); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetBySymbol(ctx, "BONK")
	if err != nil {
		t.Fatalf("GetBySymbol failed: %v", err)
	}

	if got.Mint != token.Mint {
		t.Errorf("Mint mismatch: got %s, want %s", got.Mint, token.Mint)
	}
}

func TestTokenStore_DuplicateKey(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	token := &domain.Token{Symbol: "BONK", Mint: "mint1"}

	if err := store.Insert(ctx, token); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, token)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestTokenStore_NotFound(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	_, err := store.GetBySymbol(ctx, "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTokenStore_InsertBatchSkipsDuplicates(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	first := &domain.Token{Symbol: "WIF", Mint: "mint-old"}
	if err := store.Insert(ctx, first); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	batch := []*domain.Token{
		{Symbol: "WIF", Mint: "mint-new"},
		{Symbol: "POPCAT", Mint: "mint2"},
	}
	if err := store.InsertBatch(ctx, batch); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	got, err := store.GetBySymbol(ctx, "WIF")
	if err != nil {
		t.Fatalf("GetBySymbol failed: %v", err)
	}
	if got.Mint != "mint-old" {
		t.Errorf("Duplicate overwrote existing record: got mint %s", got.Mint)
	}

	symbols, err := store.Symbols(ctx)
	if err != nil {
		t.Fatalf("Symbols failed: %v", err)
	}
	if len(symbols) != 2 {
		t.Errorf("Expected 2 symbols, got %d", len(symbols))
	}
	if _, ok := symbols["POPCAT"]; !ok {
		t.Error("Expected POPCAT in symbol set")
	}
}

func TestTokenStore_InvalidInput(t *testing.T) {
	store := NewTokenStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}

	if err := store.Insert(ctx, &domain.Token{Symbol: ""}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty symbol, got %v", err)
	}
}
