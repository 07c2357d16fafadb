// Package main runs a single engine pass against Postgres-backed state and
// prints the summary. Useful for cron-driven deployments and debugging.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"sniper-sim/internal/config"
	"sniper-sim/internal/engine"
	"sniper-sim/internal/marketdata"
	"sniper-sim/internal/query"
	"sniper-sim/internal/storage"
	chstore "sniper-sim/internal/storage/clickhouse"
	"sniper-sim/internal/storage/migrations"
	pgstore "sniper-sim/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	marketDataURL := flag.String("market-data-url", os.Getenv("MARKET_DATA_URL"), "Market data API base URL")
	apiKey := flag.String("api-key", os.Getenv("MARKET_DATA_API_KEY"), "Market data API key")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (exit reports)")
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall pass timeout")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	cfg := config.FromEnv()
	cfg.BaseURL = *marketDataURL
	cfg.APIKey = *apiKey
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if *postgresDSN == "" {
		log.Fatal().Msg("--postgres-dsn is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to run postgres migrations")
	}

	var reports storage.ExitReportStore
	if *clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to run clickhouse migrations")
		}
		defer conn.Close()
		reports = chstore.NewExitReportStore(conn)
	}

	client := marketdata.NewClient(cfg, marketdata.WithLogger(log))

	eng := engine.New(engine.Options{
		TokenStore:    pgstore.NewTokenStore(pool),
		PositionStore: pgstore.NewPositionStore(pool),
		ReportStore:   reports,
		Source:        client,
		Oracle:        client,
		Analyzer:      query.NewService(client, log),
		Config:        cfg,
		Logger:        log,
	})

	summary, err := eng.RunPass(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("pass failed")
	}

	fmt.Printf("pass finished in %v\n", summary.Duration.Round(time.Millisecond))
	fmt.Printf("  tokens seen: %d (new: %d)\n", summary.TokensSeen, summary.TokensNew)
	fmt.Printf("  opened:      %d\n", summary.Opened)
	fmt.Printf("  evaluated:   %d\n", summary.Evaluated)
	fmt.Printf("  closed:      %d\n", summary.Closed)
	for _, failure := range summary.Failures {
		fmt.Printf("  degraded: %s\n", failure)
	}
	if len(summary.Failures) > 0 {
		os.Exit(2)
	}
}
