// Package main runs the unified sniper service: scheduled engine passes
// over the discovery feed plus the HTTP API for best-exit queries.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"sniper-sim/internal/config"
	"sniper-sim/internal/engine"
	"sniper-sim/internal/marketdata"
	"sniper-sim/internal/query"
	"sniper-sim/internal/server"
	"sniper-sim/internal/storage"
	chstore "sniper-sim/internal/storage/clickhouse"
	"sniper-sim/internal/storage/memory"
	"sniper-sim/internal/storage/migrations"
	pgstore "sniper-sim/internal/storage/postgres"
)

type stores struct {
	tokens    storage.TokenStore
	positions storage.PositionStore
	reports   storage.ExitReportStore
	cleanup   func()
}

func main() {
	// .env is optional; system environment wins.
	_ = godotenv.Load()

	listenAddr := flag.String("listen-addr", ":8080", "HTTP listen address")
	marketDataURL := flag.String("market-data-url", os.Getenv("MARKET_DATA_URL"), "Market data API base URL")
	apiKey := flag.String("api-key", os.Getenv("MARKET_DATA_API_KEY"), "Market data API key")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (exit reports)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	passInterval := flag.Duration("pass-interval", time.Minute, "Engine pass interval")
	wsListings := flag.String("ws-listings", os.Getenv("WS_LISTINGS_ENDPOINT"), "Optional websocket listings stream endpoint")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	log := newLogger(*debug)

	cfg := config.FromEnv()
	cfg.BaseURL = *marketDataURL
	cfg.APIKey = *apiKey
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if !*useMemory && *postgresDSN == "" {
		log.Fatal().Msg("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create stores")
	}
	defer st.cleanup()

	client := marketdata.NewClient(cfg, marketdata.WithLogger(log))

	var source engine.TokenSource = client
	if *wsListings != "" {
		ws, err := marketdata.NewWSListingSource(ctx, *wsListings, cfg.DiscoveryLimit, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect listings stream")
		}
		defer ws.Close()
		source = ws
		log.Info().Str("endpoint", *wsListings).Msg("using websocket listings stream")
	}

	svc := query.NewService(client, log)

	eng := engine.New(engine.Options{
		TokenStore:    st.tokens,
		PositionStore: st.positions,
		ReportStore:   st.reports,
		Source:        source,
		Oracle:        client,
		Analyzer:      svc,
		Config:        cfg,
		Logger:        log,
	})

	state := &passState{startedAt: time.Now().UTC()}

	scheduler := gocron.NewScheduler(time.UTC)
	_, err = scheduler.Every(*passInterval).SingletonMode().Do(func() {
		state.begin()
		defer state.end()

		if _, err := eng.RunPass(ctx); err != nil {
			log.Error().Err(err).Msg("pass failed")
		}
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to schedule passes")
	}
	scheduler.StartAsync()
	defer scheduler.Stop()

	httpSrv := &http.Server{
		Addr:    *listenAddr,
		Handler: server.New(svc, state.snapshot, log).Handler(),
	}
	go func() {
		log.Info().Str("addr", *listenAddr).Msg("http server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown incomplete")
	}

	log.Info().Msg("shutdown complete")
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}

// createStores builds the storage layer. Postgres carries tokens and
// positions, ClickHouse carries exit reports when configured.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*stores, error) {
	if useMemory {
		return &stores{
			tokens:    memory.NewTokenStore(),
			positions: memory.NewPositionStore(),
			reports:   memory.NewExitReportStore(),
			cleanup:   func() {},
		}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	st := &stores{
		tokens:    pgstore.NewTokenStore(pool),
		positions: pgstore.NewPositionStore(pool),
		cleanup:   pool.Close,
	}

	if clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("run clickhouse migrations: %w", err)
		}
		st.reports = chstore.NewExitReportStore(conn)
		st.cleanup = func() {
			conn.Close()
			pool.Close()
		}
	}

	return st, nil
}

// passState tracks scheduler activity for the /status endpoint.
type passState struct {
	mu        sync.Mutex
	startedAt time.Time
	lastPass  *time.Time
	passes    int
	running   bool
}

func (s *passState) begin() {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
}

func (s *passState) end() {
	s.mu.Lock()
	now := time.Now().UTC()
	s.lastPass = &now
	s.passes++
	s.running = false
	s.mu.Unlock()
}

func (s *passState) snapshot() server.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return server.Status{
		Status:      "running",
		Uptime:      time.Since(s.startedAt).String(),
		StartedAt:   s.startedAt,
		LastPassAt:  s.lastPass,
		PassesRun:   s.passes,
		PassRunning: s.running,
	}
}
