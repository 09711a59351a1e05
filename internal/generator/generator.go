package generator

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"signalbot/internal/analyzer"
	"signalbot/internal/config"
	"signalbot/internal/rotation"
	"signalbot/internal/timeutil"
	"signalbot/internal/validator"
	"signalbot/models"
)

// ErrNoSignal means fusion found no directional consensus this cycle.
// A valid terminal outcome, not a failure.
var ErrNoSignal = errors.New("no directional consensus")

// ErrLowConfidence means a direction was found but its confidence fell
// below the configured minimum, so no signal is emitted.
var ErrLowConfidence = errors.New("signal confidence below minimum")

// Vote weights for the three directional sources.
const (
	trendWeight     = 0.4
	sentimentWeight = 0.35
	patternWeight   = 0.25

	// Decision margins; deliberately lenient, kept as tuned.
	minWeightDifference = 0.05
	absoluteWeightFloor = 0.2

	// Confidence above this level gets a flat boost. Kept exactly as
	// tuned: it favors real-market-data confidence over the simulated
	// fallback.
	boostThreshold = 0.4
	boostAmount    = 0.2
)

// Statistics summarizes generation activity since the last reset.
type Statistics struct {
	GeneratedSignals int                       `json:"generated_signals"`
	ValidatedSignals int                       `json:"validated_signals"`
	ValidationRate   float64                   `json:"validation_rate"`
	TargetAccuracy   float64                   `json:"accuracy_target"`
	AssetStats       rotation.UsageStats       `json:"asset_stats"`
	ValidationStats  validator.ValidationStats `json:"validation_stats"`
}

// Generator runs the full pipeline: rotation, analysis, fusion,
// confidence scoring, and validation.
type Generator struct {
	analyzer  *analyzer.Analyzer
	rotator   *rotation.Rotator
	validator *validator.Validator
	clock     *timeutil.Clock

	minConfidence     float64
	expirationMinutes int
	targetAccuracy    float64

	mu        sync.Mutex
	generated int
	validated int

	logger zerolog.Logger
}

// New wires the pipeline components together.
func New(cfg *config.Config, a *analyzer.Analyzer, r *rotation.Rotator, v *validator.Validator, clock *timeutil.Clock) *Generator {
	return &Generator{
		analyzer:          a,
		rotator:           r,
		validator:         v,
		clock:             clock,
		minConfidence:     cfg.Signals.MinimumConfidence,
		expirationMinutes: cfg.Signals.ExpirationMinutes,
		targetAccuracy:    cfg.Signals.TargetAccuracy,
		logger:            log.With().Str("component", "signal_generator").Logger(),
	}
}

// Generate runs one full pipeline pass and returns a validated signal.
// ErrNoSignal and ErrLowConfidence are quiet terminal outcomes; a
// *validator.RejectionError explains which gate filtered the
// candidate.
func (g *Generator) Generate(ctx context.Context) (models.Signal, error) {
	asset, category := g.rotator.Next()
	analysis := g.analyzer.AnalyzeAsset(ctx, asset, category)

	signal, err := g.FromAnalysis(analysis)
	if err != nil {
		g.logger.Info().Str("asset", asset).Err(err).Msg("No signal this cycle")
		return models.Signal{}, err
	}

	g.mu.Lock()
	g.generated++
	g.mu.Unlock()

	if err := g.validator.ValidateAndRecord(signal); err != nil {
		return models.Signal{}, err
	}

	g.mu.Lock()
	g.validated++
	g.mu.Unlock()

	g.logger.Info().Str("asset", asset).Str("direction", string(signal.Direction)).
		Float64("confidence", signal.Confidence).Msg("Generated valid signal")
	return signal, nil
}

// FromAnalysis fuses one analysis into a candidate signal, or reports
// why none was produced.
func (g *Generator) FromAnalysis(analysis models.Analysis) (models.Signal, error) {
	direction := DetermineDirection(analysis.Trend, analysis.Sentiment, analysis.Patterns)
	if direction == models.SignalNeutral {
		return models.Signal{}, ErrNoSignal
	}

	confidence := CalculateConfidence(analysis, direction)
	if confidence < g.minConfidence {
		return models.Signal{}, ErrLowConfidence
	}

	now := g.clock.Now()
	return models.Signal{
		Asset:       analysis.Asset,
		Category:    analysis.Category,
		Direction:   direction,
		Confidence:  confidence,
		GeneratedAt: now,
		ExpiresAt:   g.clock.Expiration(g.expirationMinutes),
		Reasoning:   BuildReasoning(analysis, direction),
		Analysis:    analysis,
	}, nil
}

// DetermineDirection combines the weighted trend, sentiment, and
// pattern votes into a direction. The decision rules run in order: no
// votes means neutral; a clear margin wins; otherwise the larger side
// wins if it clears an absolute floor; otherwise any nonzero side
// wins, ties toward BUY.
func DetermineDirection(trend models.TrendReading, sentiment models.SentimentReading, pattern models.PatternReading) models.Direction {
	var buyWeight, sellWeight float64
	votes := 0

	if trend.Signal != models.SignalNeutral {
		votes++
		w := trendWeight * trend.Strength
		if trend.Signal == models.SignalBuy {
			buyWeight += w
		} else {
			sellWeight += w
		}
	}

	if s := sentiment.Signal(); s != models.SignalNeutral {
		votes++
		w := sentimentWeight * sentiment.Confidence
		if s == models.SignalBuy {
			buyWeight += w
		} else {
			sellWeight += w
		}
	}

	if pattern.Signal != models.SignalNeutral {
		votes++
		w := patternWeight * pattern.Confidence
		if pattern.Signal == models.SignalBuy {
			buyWeight += w
		} else {
			sellWeight += w
		}
	}

	if votes == 0 {
		return models.SignalNeutral
	}

	switch {
	case buyWeight > sellWeight+minWeightDifference:
		return models.SignalBuy
	case sellWeight > buyWeight+minWeightDifference:
		return models.SignalSell
	}

	larger := models.SignalSell
	if buyWeight >= sellWeight {
		larger = models.SignalBuy
	}
	if max(buyWeight, sellWeight) > absoluteWeightFloor {
		return larger
	}
	if buyWeight > 0 || sellWeight > 0 {
		return larger
	}
	return models.SignalNeutral
}

// CalculateConfidence converts the analysis confidence factors into
// the final 0-100 score for the chosen direction.
func CalculateConfidence(analysis models.Analysis, direction models.Direction) float64 {
	base := analysis.ConfidenceFactors.OverallConfidence

	agreeing, total := 0, 0
	if analysis.Trend.Signal == direction {
		agreeing++
	}
	if analysis.Trend.Signal != models.SignalNeutral {
		total++
	}
	if s := analysis.Sentiment.Signal(); s != models.SignalNeutral {
		total++
		if s == direction {
			agreeing++
		}
	}
	if analysis.Patterns.Signal != models.SignalNeutral {
		total++
		if analysis.Patterns.Signal == direction {
			agreeing++
		}
	}

	var bonus float64
	if total > 0 {
		bonus = (float64(agreeing)/float64(total) - 0.5) * 0.2
	}

	confidence := clamp01(base + bonus)
	if confidence > boostThreshold {
		confidence = clamp01(confidence + boostAmount)
	}

	return confidence * 100
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Stats returns generation statistics since the last reset.
func (g *Generator) Stats() Statistics {
	g.mu.Lock()
	generated, validated := g.generated, g.validated
	g.mu.Unlock()

	rate := 0.0
	if generated > 0 {
		rate = float64(validated) / float64(generated) * 100
	}
	return Statistics{
		GeneratedSignals: generated,
		ValidatedSignals: validated,
		ValidationRate:   rate,
		TargetAccuracy:   g.targetAccuracy,
		AssetStats:       g.rotator.Stats(),
		ValidationStats:  g.validator.Stats(),
	}
}

// ResetStats clears generation counters and rotation usage state.
func (g *Generator) ResetStats() {
	g.mu.Lock()
	g.generated = 0
	g.validated = 0
	g.mu.Unlock()
	g.rotator.Reset()
	g.logger.Info().Msg("Signal generation statistics reset")
}
