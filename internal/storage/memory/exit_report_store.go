package memory

import (
	"context"
	"sort"
	"sync"

	"sniper-sim/internal/domain"
	"sniper-sim/internal/storage"
)

// ExitReportStore is an in-memory implementation of storage.ExitReportStore.
type ExitReportStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ExitReport // keyed by report_id
}

// NewExitReportStore creates a new in-memory exit report store.
func NewExitReportStore() *ExitReportStore {
	return &ExitReportStore{
		data: make(map[string]*domain.ExitReport),
	}
}

// Insert adds a new report. Returns ErrDuplicateKey if report_id exists.
func (s *ExitReportStore) Insert(_ context.Context, r *domain.ExitReport) error {
	if r == nil || r.ReportID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.ReportID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *r
	s.data[r.ReportID] = &copy
	return nil
}

// GetByMint retrieves all reports for a mint, ordered by sold_at ASC.
func (s *ExitReportStore) GetByMint(_ context.Context, mint string) ([]*domain.ExitReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ExitReport
	for _, r := range s.data {
		if r.Mint == mint {
			copy := *r
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].SoldAt.Before(result[j].SoldAt)
	})

	return result, nil
}

var _ storage.ExitReportStore = (*ExitReportStore)(nil)
