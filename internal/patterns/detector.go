package patterns

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"signalbot/models"
)

const (
	minBarsForDetection = 20
	lookbackBars        = 10
	proximityBand       = 0.01 // within 1% of the recent extreme
	volumeBoost         = 0.1
	volumeBoostCap      = 0.95
	volumeSpikeRatio    = 1.5
)

// Detector classifies chart patterns from real price action.
type Detector struct {
	logger zerolog.Logger
}

// NewDetector creates a chart pattern detector.
func NewDetector() *Detector {
	return &Detector{logger: log.With().Str("component", "pattern_detector").Logger()}
}

// Detect inspects the most recent bars and returns the single
// highest-confidence pattern candidate (ties: first found), or a
// neutral reading when nothing qualifies.
func (d *Detector) Detect(candles []models.Candle) models.PatternReading {
	if len(candles) < minBarsForDetection {
		return NeutralPattern()
	}

	recent := candles[len(candles)-lookbackBars:]
	price := recent[len(recent)-1].Close

	var candidates []models.PatternReading

	// Linear trend over recent closes.
	slope := (recent[len(recent)-1].Close - recent[0].Close) / float64(len(recent))
	if slope > 0 {
		candidates = append(candidates, models.PatternReading{
			Pattern: "uptrend", Type: models.PatternBullish, Confidence: 0.8, Signal: models.SignalBuy,
		})
	} else if slope < 0 {
		candidates = append(candidates, models.PatternReading{
			Pattern: "downtrend", Type: models.PatternBearish, Confidence: 0.8, Signal: models.SignalSell,
		})
	}

	// Proximity to the recent extremes.
	var recentHigh, recentLow float64
	for i, c := range recent {
		if i == 0 || c.High > recentHigh {
			recentHigh = c.High
		}
		if i == 0 || c.Low < recentLow {
			recentLow = c.Low
		}
	}
	if price <= recentLow*(1+proximityBand) {
		candidates = append(candidates, models.PatternReading{
			Pattern: "support_bounce", Type: models.PatternBullish, Confidence: 0.75, Signal: models.SignalBuy,
		})
	} else if price >= recentHigh*(1-proximityBand) {
		candidates = append(candidates, models.PatternReading{
			Pattern: "resistance_rejection", Type: models.PatternBearish, Confidence: 0.75, Signal: models.SignalSell,
		})
	}

	// Volume confirmation boosts every candidate.
	if spike, ok := volumeSpike(candles); ok && spike {
		for i := range candidates {
			boosted := candidates[i].Confidence + volumeBoost
			if boosted > volumeBoostCap {
				boosted = volumeBoostCap
			}
			candidates[i].Confidence = boosted
		}
	}

	if len(candidates) == 0 {
		return NeutralPattern()
	}

	strongest := candidates[0]
	for _, c := range candidates[1:] {
		if c.Confidence > strongest.Confidence {
			strongest = c
		}
	}
	d.logger.Debug().Str("pattern", strongest.Pattern).Float64("confidence", strongest.Confidence).
		Msg("Pattern detected")
	return strongest
}

// volumeSpike reports whether the latest volume exceeds 1.5x its
// trailing 20-bar average. ok is false when no volume data exists.
func volumeSpike(candles []models.Candle) (spike, ok bool) {
	window := candles
	if len(window) > 20 {
		window = window[len(window)-20:]
	}
	var total int64
	for _, c := range window {
		total += c.Volume
	}
	if total == 0 {
		return false, false
	}
	avg := float64(total) / float64(len(window))
	last := float64(candles[len(candles)-1].Volume)
	return last > avg*volumeSpikeRatio, true
}

// NeutralPattern is the "nothing detected" reading.
func NeutralPattern() models.PatternReading {
	return models.PatternReading{
		Type:       models.PatternNeutral,
		Confidence: 0.5,
		Signal:     models.SignalNeutral,
	}
}
