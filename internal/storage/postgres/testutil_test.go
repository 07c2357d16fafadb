package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL container for testing and applies the schema.
// Returns a cleanup function that must be called after tests complete.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	applySchema(t, ctx, pool)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// applySchema creates the tables the stores expect. Mirrors the embedded
// migrations, which cannot be imported here without a package cycle.
func applySchema(t *testing.T, ctx context.Context, pool *Pool) {
	t.Helper()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS tokens (
			symbol        TEXT PRIMARY KEY,
			mint          TEXT NOT NULL,
			discovered_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS positions (
			position_id TEXT PRIMARY KEY,
			symbol      TEXT NOT NULL,
			mint        TEXT NOT NULL,
			bought_at   TIMESTAMPTZ NOT NULL,
			buy_price   DOUBLE PRECISION NOT NULL,
			sell_price  DOUBLE PRECISION,
			sold_at     TIMESTAMPTZ
		)`,
	}

	for _, stmt := range statements {
		_, err := pool.Exec(ctx, stmt)
		require.NoError(t, err, "failed to apply schema statement")
	}
}
