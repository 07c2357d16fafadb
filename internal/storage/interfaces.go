package storage

import (
	"context"
	"time"

	"sniper-sim/internal/domain"
)

// TokenStore provides access to discovered-token storage.
type TokenStore interface {
	// Insert adds a new token. Returns ErrDuplicateKey if the symbol exists.
	Insert(ctx context.Context, t *domain.Token) error

	// InsertBatch adds multiple tokens, skipping duplicates.
	InsertBatch(ctx context.Context, tokens []*domain.Token) error

	// GetBySymbol retrieves a token by symbol. Returns ErrNotFound if not exists.
	GetBySymbol(ctx context.Context, symbol string) (*domain.Token, error)

	// Symbols retrieves the set of all known symbols.
	Symbols(ctx context.Context) (map[string]struct{}, error)
}

// PositionStore provides access to simulated-position storage.
type PositionStore interface {
	// Insert adds a new position. Returns ErrDuplicateKey if position_id exists.
	Insert(ctx context.Context, p *domain.Position) error

	// InsertBatch adds multiple positions, skipping duplicates.
	InsertBatch(ctx context.Context, positions []*domain.Position) error

	// GetByID retrieves a position by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, positionID string) (*domain.Position, error)

	// GetOpen retrieves all positions without a sell price, ordered by bought_at ASC.
	GetOpen(ctx context.Context) ([]*domain.Position, error)

	// Close records the sale of an open position. Returns false when the
	// position was already closed, ErrNotFound when it does not exist.
	Close(ctx context.Context, positionID string, sellPrice float64, soldAt time.Time) (bool, error)
}

// ExitReportStore provides access to hindsight exit-report storage.
type ExitReportStore interface {
	// Insert adds a new report. Returns ErrDuplicateKey if report_id exists.
	Insert(ctx context.Context, r *domain.ExitReport) error

	// GetByMint retrieves all reports for a mint, ordered by sold_at ASC.
	GetByMint(ctx context.Context, mint string) ([]*domain.ExitReport, error)
}
