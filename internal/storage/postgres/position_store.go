package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"sniper-sim/internal/domain"
	"sniper-sim/internal/storage"
)

// PositionStore implements storage.PositionStore using PostgreSQL.
type PositionStore struct {
	pool *Pool
}

// NewPositionStore creates a new PositionStore.
func NewPositionStore(pool *Pool) *PositionStore {
	return &PositionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PositionStore = (*PositionStore)(nil)

// Insert adds a new position. Returns ErrDuplicateKey if position_id exists.
func (s *PositionStore) Insert(ctx context.Context, p *domain.Position) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO positions (
			position_id, symbol, mint, bought_at, buy_price, sell_price, sold_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		p.ID, p.Symbol, p.Mint, p.BoughtAt, p.BuyPrice, p.SellPrice, p.SoldAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert position: %w", err)
	}
	return nil
}

// InsertBatch adds multiple positions, skipping duplicates.
func (s *PositionStore) InsertBatch(ctx context.Context, positions []*domain.Position) error {
	if len(positions) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO positions (
			position_id, symbol, mint, bought_at, buy_price, sell_price, sold_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (position_id) DO NOTHING
	`

	for _, p := range positions {
		if p == nil || p.ID == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, query,
			p.ID, p.Symbol, p.Mint, p.BoughtAt, p.BuyPrice, p.SellPrice, p.SoldAt,
		)
		if err != nil {
			return fmt.Errorf("insert position in batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByID retrieves a position by its ID. Returns ErrNotFound if not exists.
func (s *PositionStore) GetByID(ctx context.Context, positionID string) (*domain.Position, error) {
	query := `
		SELECT position_id, symbol, mint, bought_at, buy_price, sell_price, sold_at
		FROM positions
		WHERE position_id = $1
	`

	row := s.pool.QueryRow(ctx, query, positionID)
	p, err := scanPosition(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get position by id: %w", err)
	}
	return p, nil
}

// GetOpen retrieves all positions without a sell price, ordered by bought_at ASC.
func (s *PositionStore) GetOpen(ctx context.Context) ([]*domain.Position, error) {
	query := `
		SELECT position_id, symbol, mint, bought_at, buy_price, sell_price, sold_at
		FROM positions
		WHERE sell_price IS NULL
		ORDER BY bought_at ASC, position_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get open positions: %w", err)
	}
	defer rows.Close()

	var positions []*domain.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan position row: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate position rows: %w", err)
	}

	return positions, nil
}

// Close records the sale of an open position. The WHERE clause makes the
// update a no-op when the position is already closed, so concurrent close
// attempts cannot overwrite an earlier sale.
func (s *PositionStore) Close(ctx context.Context, positionID string, sellPrice float64, soldAt time.Time) (bool, error) {
	query := `
		UPDATE positions
		SET sell_price = $2, sold_at = $3
		WHERE position_id = $1 AND sell_price IS NULL
	`

	tag, err := s.pool.Exec(ctx, query, positionID, sellPrice, soldAt)
	if err != nil {
		return false, fmt.Errorf("close position: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// Distinguish already-closed from missing.
	if _, err := s.GetByID(ctx, positionID); err != nil {
		return false, err
	}
	return false, nil
}

// scanPosition scans a single row into a Position.
func scanPosition(row pgx.Row) (*domain.Position, error) {
	var p domain.Position
	err := row.Scan(&p.ID, &p.Symbol, &p.Mint, &p.BoughtAt, &p.BuyPrice, &p.SellPrice, &p.SoldAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
