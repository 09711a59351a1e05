package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"signalbot/internal/analyzer"
	"signalbot/internal/config"
	"signalbot/internal/delivery"
	"signalbot/internal/generator"
	"signalbot/internal/marketdata"
	"signalbot/internal/rotation"
	"signalbot/internal/timeutil"
	"signalbot/internal/validator"
	"signalbot/models"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

// One-shot generation for local inspection: analyzes one asset (SYMBOL
// env var or the rotator's pick), runs the full pipeline, and prints
// the outcome without delivering anything.
func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel)

	clock, err := timeutil.NewClock(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("Failed to load timezone")
	}

	var fetcher marketdata.Fetcher
	if cfg.MarketData.APIKey != "" {
		fetcher = marketdata.NewClient(marketdata.ClientOptions{
			APIKey:         cfg.MarketData.APIKey,
			Interval:       cfg.MarketData.Interval,
			RequestTimeout: time.Duration(cfg.MarketData.RequestTimeout) * time.Second,
			RequestsPerSec: cfg.MarketData.RequestsPerSec,
		})
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	recency := time.Duration(cfg.Assets.RecencyWindowMinutes) * time.Minute

	anl := analyzer.New(cfg, fetcher, rng, clock.Now)
	rot := rotation.New(cfg.AssetsByCategory(), recency, rng, clock.Now)
	val := validator.New(cfg.Validation, clock.Now)
	gen := generator.New(cfg, anl, rot, val, clock)

	ctx := context.Background()

	var signal models.Signal
	if symbol := os.Getenv("SYMBOL"); symbol != "" {
		analysis := anl.AnalyzeAsset(ctx, symbol, models.CategoryCurrencyPairs)
		signal, err = gen.FromAnalysis(analysis)
	} else {
		signal, err = gen.Generate(ctx)
	}
	if err != nil {
		var rejection *validator.RejectionError
		switch {
		case errors.As(err, &rejection):
			fmt.Printf("Rejected by %s: %s\n", rejection.Rule, rejection.Message)
		case errors.Is(err, generator.ErrNoSignal):
			fmt.Println("No directional consensus, no signal generated")
		case errors.Is(err, generator.ErrLowConfidence):
			fmt.Println("Confidence below minimum, no signal generated")
		default:
			log.Fatal().Err(err).Msg("Generation failed")
		}
		os.Exit(0)
	}

	fmt.Println(delivery.FormatSignal(signal, clock))
	fmt.Println()

	raw, err := json.MarshalIndent(signal.Analysis, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode analysis")
	}
	fmt.Println(string(raw))
}
