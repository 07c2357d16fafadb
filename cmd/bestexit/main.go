// Package main answers a single best-exit question from the command line:
// given a mint, a purchase time and a buy price, when should the position
// have been sold.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"sniper-sim/internal/analysis"
	"sniper-sim/internal/config"
	"sniper-sim/internal/marketdata"
	"sniper-sim/internal/query"
)

func main() {
	_ = godotenv.Load()

	marketDataURL := flag.String("market-data-url", os.Getenv("MARKET_DATA_URL"), "Market data API base URL")
	apiKey := flag.String("api-key", os.Getenv("MARKET_DATA_API_KEY"), "Market data API key")
	mint := flag.String("mint", "", "Token mint address")
	boughtAtRaw := flag.String("bought-at", "", "Purchase time (unix seconds or timestamp)")
	buyPrice := flag.Float64("buy-price", 0, "Purchase price in USD")
	timeout := flag.Duration("timeout", 2*time.Minute, "Query timeout")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	level := zerolog.WarnLevel
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
	if *mint == "" || *boughtAtRaw == "" {
		log.Fatal().Msg("--mint and --bought-at are required")
	}

	boughtAt := analysis.ParseBoughtAt(*boughtAtRaw)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := marketdata.NewClient(cfg, marketdata.WithLogger(log))
	svc := query.NewService(client, log)

	result, err := svc.BestExit(ctx, *mint, boughtAt, *buyPrice)
	if err != nil {
		log.Fatal().Err(err).Msg("best exit query failed")
	}

	if result.Absent() {
		fmt.Println("no exit could be determined")
		return
	}

	fmt.Printf("best sell at:    %s\n", result.BestSellAt.Format(time.RFC3339))
	fmt.Printf("best sell price: %g\n", *result.BestSellPrice)
	fmt.Printf("best return:     %.2f%%\n", *result.BestReturnPercent)
}
