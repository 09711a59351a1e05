package analyzer

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"signalbot/internal/config"
	"signalbot/internal/indicators"
	"signalbot/internal/marketdata"
	"signalbot/internal/patterns"
	"signalbot/models"
)

// Analyzer orchestrates the indicator engine and pattern/sentiment
// detection into one analysis snapshot per (asset, timestamp). When no
// market data is reachable it degrades to the simulated generators and
// tags the result accordingly.
type Analyzer struct {
	fetcher      marketdata.Fetcher
	engine       *indicators.Engine
	detector     *patterns.Detector
	indicatorSim *indicators.Simulator
	patternSim   *patterns.Simulator
	candleCount  int
	now          func() time.Time
	logger       zerolog.Logger
}

// New creates an analyzer. fetcher may be nil, in which case every
// analysis uses the simulated path. The random source feeds both
// simulated generators; now is the injected clock.
func New(cfg *config.Config, fetcher marketdata.Fetcher, rng *rand.Rand, now func() time.Time) *Analyzer {
	if now == nil {
		now = time.Now
	}
	return &Analyzer{
		fetcher:      fetcher,
		engine:       indicators.NewEngine(cfg.Indicators),
		detector:     patterns.NewDetector(),
		indicatorSim: indicators.NewSimulator(cfg.Indicators, cfg.Simulated, rng),
		patternSim:   patterns.NewSimulator(cfg.Patterns.Bullish, cfg.Patterns.Bearish, rng),
		candleCount:  cfg.MarketData.CandleCount,
		now:          now,
		logger:       log.With().Str("component", "market_analyzer").Logger(),
	}
}

// AnalyzeAsset performs a full technical analysis pass on one asset.
// It never fails: data problems are recovered locally by simulation.
func (a *Analyzer) AnalyzeAsset(ctx context.Context, asset string, category models.Category) models.Analysis {
	a.logger.Info().Str("asset", asset).Str("category", string(category)).Msg("Analyzing asset")

	candles := a.fetch(ctx, asset)

	readings := map[string]models.IndicatorReading{}
	if len(candles) > 0 {
		readings = a.engine.Compute(candles)
	}

	if len(readings) == 0 {
		a.logger.Warn().Str("asset", asset).Msg("No usable market data, falling back to simulation")
		return a.simulate(asset, category)
	}

	pattern := a.detector.Detect(candles)
	trend := analyzeTrend(readings)
	sentiment := patterns.SentimentFromSeries(candles, readings)

	return models.Analysis{
		Asset:             asset,
		Category:          category,
		Timestamp:         a.now(),
		Indicators:        readings,
		Patterns:          pattern,
		Trend:             trend,
		Sentiment:         sentiment,
		ConfidenceFactors: confidenceFactors(readings, pattern, trend),
		DataSource:        models.DataSourceReal,
	}
}

func (a *Analyzer) fetch(ctx context.Context, asset string) []models.Candle {
	if a.fetcher == nil {
		return nil
	}
	candles, err := a.fetcher.FetchSeries(ctx, asset, a.candleCount)
	if err != nil {
		a.logger.Warn().Err(err).Str("asset", asset).Msg("Market data fetch failed")
		return nil
	}
	return candles
}

func (a *Analyzer) simulate(asset string, category models.Category) models.Analysis {
	readings := a.indicatorSim.Generate()
	pattern := a.patternSim.Generate()
	trend := analyzeTrend(readings)
	sentiment := patterns.SentimentFromReadings(readings, pattern)

	return models.Analysis{
		Asset:             asset,
		Category:          category,
		Timestamp:         a.now(),
		Indicators:        readings,
		Patterns:          pattern,
		Trend:             trend,
		Sentiment:         sentiment,
		ConfidenceFactors: confidenceFactors(readings, pattern, trend),
		DataSource:        models.DataSourceSimulated,
	}
}

// analyzeTrend summarizes indicator signals into an overall trend. A
// net signal count above +1 (below -1) is bullish (bearish), anything
// in between is sideways.
func analyzeTrend(readings map[string]models.IndicatorReading) models.TrendReading {
	var signalSum, agreementCount int
	var strengthSum float64

	for _, r := range readings {
		switch r.Signal {
		case models.SignalBuy:
			signalSum++
			agreementCount++
		case models.SignalSell:
			signalSum--
			agreementCount++
		}
		strengthSum += r.Strength
	}

	trend := models.TrendReading{
		Direction:      models.TrendSideways,
		Signal:         models.SignalNeutral,
		AgreementCount: agreementCount,
	}
	if len(readings) > 0 {
		trend.Strength = strengthSum / float64(len(readings))
		trend.Consensus = abs(signalSum) / float64(len(readings))
	}

	if signalSum > 1 {
		trend.Direction = models.TrendBullish
		trend.Signal = models.SignalBuy
	} else if signalSum < -1 {
		trend.Direction = models.TrendBearish
		trend.Signal = models.SignalSell
	}

	return trend
}

// confidenceFactors computes the weighted inputs that fusion later
// turns into a confidence score.
func confidenceFactors(readings map[string]models.IndicatorReading, pattern models.PatternReading, trend models.TrendReading) models.ConfidenceFactors {
	var buySignals, sellSignals int
	for _, r := range readings {
		switch r.Signal {
		case models.SignalBuy:
			buySignals++
		case models.SignalSell:
			sellSignals++
		}
	}

	factors := models.ConfidenceFactors{
		TrendStrength:   trend.Strength,
		SignalConsensus: trend.Consensus,
	}
	if len(readings) > 0 {
		agreeing := buySignals
		if sellSignals > agreeing {
			agreeing = sellSignals
		}
		factors.IndicatorAgreement = float64(agreeing) / float64(len(readings))
	}
	if pattern.Detected() {
		factors.PatternConfirmation = pattern.Confidence
	}

	overall := 0.2*factors.IndicatorAgreement +
		0.4*factors.PatternConfirmation +
		0.3*factors.TrendStrength +
		0.1*factors.SignalConsensus
	if overall > 1 {
		overall = 1
	}
	factors.OverallConfidence = overall

	return factors
}

func abs(n int) float64 {
	if n < 0 {
		return float64(-n)
	}
	return float64(n)
}
