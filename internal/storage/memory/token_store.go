// Package memory implements the storage interfaces over in-process maps.
// It backs tests and single-process runs that do not need persistence.
package memory

import (
	"context"
	"sync"

	"sniper-sim/internal/domain"
	"sniper-sim/internal/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Token // keyed by symbol
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		data: make(map[string]*domain.Token),
	}
}

// Insert adds a new token. Returns ErrDuplicateKey if the symbol exists.
func (s *TokenStore) Insert(_ context.Context, t *domain.Token) error {
	if t == nil || t.Symbol == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.Symbol]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *t
	s.data[t.Symbol] = &copy
	return nil
}

// InsertBatch adds multiple tokens, skipping duplicates.
func (s *TokenStore) InsertBatch(_ context.Context, tokens []*domain.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range tokens {
		if t == nil || t.Symbol == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[t.Symbol]; exists {
			continue
		}
		copy := *t
		s.data[t.Symbol] = &copy
	}
	return nil
}

// GetBySymbol retrieves a token by symbol. Returns ErrNotFound if not exists.
func (s *TokenStore) GetBySymbol(_ context.Context, symbol string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[symbol]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *t
	return &copy, nil
}

// Symbols retrieves the set of all known symbols.
func (s *TokenStore) Symbols(_ context.Context) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make(map[string]struct{}, len(s.data))
	for symbol := range s.data {
		symbols[symbol] = struct{}{}
	}
	return symbols, nil
}

var _ storage.TokenStore = (*TokenStore)(nil)
