package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"sniper-sim/internal/domain"
	"sniper-sim/internal/storage"
)

// PositionStore is an in-memory implementation of storage.PositionStore.
type PositionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Position // keyed by position_id
}

// NewPositionStore creates a new in-memory position store.
func NewPositionStore() *PositionStore {
	return &PositionStore{
		data: make(map[string]*domain.Position),
	}
}

// Insert adds a new position. Returns ErrDuplicateKey if position_id exists.
func (s *PositionStore) Insert(_ context.Context, p *domain.Position) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.ID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *p
	s.data[p.ID] = &copy
	return nil
}

// InsertBatch adds multiple positions, skipping duplicates.
func (s *PositionStore) InsertBatch(_ context.Context, positions []*domain.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range positions {
		if p == nil || p.ID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[p.ID]; exists {
			continue
		}
		copy := *p
		s.data[p.ID] = &copy
	}
	return nil
}

// GetByID retrieves a position by its ID. Returns ErrNotFound if not exists.
func (s *PositionStore) GetByID(_ context.Context, positionID string) (*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[positionID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *p
	return &copy, nil
}

// GetOpen retrieves all open positions, ordered by bought_at ASC.
func (s *PositionStore) GetOpen(_ context.Context) ([]*domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Position
	for _, p := range s.data {
		if p.Open() {
			copy := *p
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].BoughtAt.Before(result[j].BoughtAt)
	})

	return result, nil
}

// Close records the sale of an open position. Returns false when the
// position was already closed.
func (s *PositionStore) Close(_ context.Context, positionID string, sellPrice float64, soldAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.data[positionID]
	if !exists {
		return false, storage.ErrNotFound
	}
	if !p.Open() {
		return false, nil
	}

	p.SellPrice = &sellPrice
	p.SoldAt = &soldAt
	return true, nil
}

var _ storage.PositionStore = (*PositionStore)(nil)
