package main

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"signalbot/internal/analyzer"
	"signalbot/internal/config"
	"signalbot/internal/database"
	"signalbot/internal/delivery"
	"signalbot/internal/generator"
	"signalbot/internal/marketdata"
	"signalbot/internal/rotation"
	"signalbot/internal/timeutil"
	"signalbot/internal/validator"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	clock, err := timeutil.NewClock(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("Failed to load timezone")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var fetcher marketdata.Fetcher
	if cfg.MarketData.APIKey != "" {
		fetcher = marketdata.NewClient(marketdata.ClientOptions{
			APIKey:         cfg.MarketData.APIKey,
			Interval:       cfg.MarketData.Interval,
			RequestTimeout: time.Duration(cfg.MarketData.RequestTimeout) * time.Second,
			RequestsPerSec: cfg.MarketData.RequestsPerSec,
		})
	} else {
		log.Warn().Msg("TWELVE_API_KEY not set, running on simulated market data only")
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	recency := time.Duration(cfg.Assets.RecencyWindowMinutes) * time.Minute

	anl := analyzer.New(cfg, fetcher, rng, clock.Now)
	rot := rotation.New(cfg.AssetsByCategory(), recency, rng, clock.Now)
	val := validator.New(cfg.Validation, clock.Now)

	if cfg.Database.Host != "" {
		db, err := database.New(database.ConnectionParams{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer db.Close()

		if err := val.AttachStore(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("Failed to load accuracy records")
		}
	} else {
		log.Warn().Msg("DB_HOST not set, accuracy records will not survive restarts")
	}

	gen := generator.New(cfg, anl, rot, val, clock)

	tg, err := delivery.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, clock)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}

	interval := time.Duration(cfg.Signals.IntervalMinutes) * time.Minute
	log.Info().
		Dur("interval", interval).
		Float64("min_confidence", cfg.Signals.MinimumConfidence).
		Msg("Signal bot started")

	run(ctx, gen, val, tg, clock, interval)
	log.Info().Msg("Signal bot stopped")
}

// run drives the generation loop until the context is cancelled. Each
// tick produces at most one signal; rejections only get logged.
func run(ctx context.Context, gen *generator.Generator, val *validator.Validator, tg *delivery.Telegram, clock *timeutil.Clock, interval time.Duration) {
	// First cycle fires at the next interval boundary so message times
	// line up on the clock.
	timer := time.NewTimer(time.Until(clock.NextSignalTime(int(interval.Minutes()))))
	defer timer.Stop()

	cleanup := time.NewTicker(time.Hour)
	defer cleanup.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cleanup.C:
			removed := val.CleanupOldSignals(24 * time.Hour)
			if removed > 0 {
				log.Info().Int("removed", removed).Msg("Pruned old signal history")
			}
		case <-timer.C:
			timer.Reset(interval)

			sig, err := gen.Generate(ctx)
			if err != nil {
				var rejection *validator.RejectionError
				switch {
				case errors.As(err, &rejection):
					log.Info().Str("rule", string(rejection.Rule)).Msg("Signal rejected")
				case errors.Is(err, generator.ErrNoSignal), errors.Is(err, generator.ErrLowConfidence):
					log.Debug().Err(err).Msg("No signal this cycle")
				default:
					log.Error().Err(err).Msg("Signal generation failed")
				}
				continue
			}

			if err := tg.Send(sig); err != nil {
				log.Error().Err(err).Str("asset", sig.Asset).Msg("Delivery failed")
			}
		}
	}
}
