package patterns

import (
	"math/rand"

	"signalbot/models"
)

// detectionProbability is the chance the simulated path reports any
// pattern at all.
const detectionProbability = 0.7

// Simulator draws pattern readings from fixed catalogs when no market
// data is available.
type Simulator struct {
	bullish []string
	bearish []string
	rng     *rand.Rand
}

// NewSimulator creates a simulated pattern generator over the given
// catalogs.
func NewSimulator(bullish, bearish []string, rng *rand.Rand) *Simulator {
	return &Simulator{bullish: bullish, bearish: bearish, rng: rng}
}

// Generate returns a simulated pattern reading: 70% chance of a
// detection with confidence uniform in [0.75, 0.95], otherwise the
// flat neutral record.
func (s *Simulator) Generate() models.PatternReading {
	if s.rng.Float64() >= detectionProbability {
		return NeutralPattern()
	}

	confidence := 0.75 + s.rng.Float64()*0.2
	if s.rng.Intn(2) == 0 {
		return models.PatternReading{
			Pattern:    s.bullish[s.rng.Intn(len(s.bullish))],
			Type:       models.PatternBullish,
			Confidence: confidence,
			Signal:     models.SignalBuy,
		}
	}
	return models.PatternReading{
		Pattern:    s.bearish[s.rng.Intn(len(s.bearish))],
		Type:       models.PatternBearish,
		Confidence: confidence,
		Signal:     models.SignalSell,
	}
}
