package postgres

import (
	"context"
	"fmt"

	"sniper-sim/internal/domain"
	"sniper-sim/internal/storage"
)

// TokenStore implements storage.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *Pool
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(pool *Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

// Insert adds a new token. Returns ErrDuplicateKey if the symbol exists.
func (s *TokenStore) Insert(ctx context.Context, t *domain.Token) error {
	if t == nil || t.Symbol == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO tokens (symbol, mint, discovered_at)
		VALUES ($1, $2, $3)
	`

	_, err := s.pool.Exec(ctx, query, t.Symbol, t.Mint, t.DiscoveredAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// InsertBatch adds multiple tokens, skipping duplicates.
func (s *TokenStore) InsertBatch(ctx context.Context, tokens []*domain.Token) error {
	if len(tokens) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO tokens (symbol, mint, discovered_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (symbol) DO NOTHING
	`

	for _, t := range tokens {
		if t == nil || t.Symbol == "" {
			return storage.ErrInvalidInput
		}
		if _, err := tx.Exec(ctx, query, t.Symbol, t.Mint, t.DiscoveredAt); err != nil {
			return fmt.Errorf("insert token in batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetBySymbol retrieves a token by symbol. Returns ErrNotFound if not exists.
func (s *TokenStore) GetBySymbol(ctx context.Context, symbol string) (*domain.Token, error) {
	query := `
		SELECT symbol, mint, discovered_at
		FROM tokens
		WHERE symbol = $1
	`

	var t domain.Token
	err := s.pool.QueryRow(ctx, query, symbol).Scan(&t.Symbol, &t.Mint, &t.DiscoveredAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token by symbol: %w", err)
	}
	return &t, nil
}

// Symbols retrieves the set of all known symbols.
func (s *TokenStore) Symbols(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, `SELECT symbol FROM tokens`)
	if err != nil {
		return nil, fmt.Errorf("get token symbols: %w", err)
	}
	defer rows.Close()

	symbols := make(map[string]struct{})
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("scan token symbol: %w", err)
		}
		symbols[symbol] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token symbols: %w", err)
	}

	return symbols, nil
}
