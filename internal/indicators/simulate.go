package indicators

import (
	"math"
	"math/rand"

	"signalbot/internal/config"
	"signalbot/models"
)

// Simulator draws plausible raw indicator values when no market data
// is available, then applies the same signal/strength derivation the
// real path uses. The random source is injected for testability.
type Simulator struct {
	cfg    config.IndicatorThresholds
	ranges config.SimulatedRanges
	rng    *rand.Rand
}

// NewSimulator creates a simulated indicator generator.
func NewSimulator(cfg config.IndicatorThresholds, ranges config.SimulatedRanges, rng *rand.Rand) *Simulator {
	return &Simulator{cfg: cfg, ranges: ranges, rng: rng}
}

// Generate produces a full simulated reading set. The simulated set
// carries no SMA reading: crossover state is meaningless without a
// series.
func (s *Simulator) Generate() map[string]models.IndicatorReading {
	readings := make(map[string]models.IndicatorReading, 6)

	rsi := s.uniform(s.ranges.RSI)
	readings[models.IndicatorRSI] = models.IndicatorReading{
		Value:    rsi,
		Signal:   thresholdSignal(rsi, s.cfg.RSI.Oversold, s.cfg.RSI.Overbought),
		Strength: clamp01(math.Abs(rsi-50) / 50),
	}

	macdLine := s.uniform(s.ranges.MACD)
	signalLine := s.uniform(s.ranges.MACD)
	macdSignal := models.SignalSell
	if macdLine > signalLine {
		macdSignal = models.SignalBuy
	}
	readings[models.IndicatorMACD] = models.IndicatorReading{
		MACDLine:   macdLine,
		SignalLine: signalLine,
		Histogram:  macdLine - signalLine,
		Signal:     macdSignal,
		Strength:   clamp01(math.Abs(macdLine - signalLine)),
	}

	middle := s.uniform(s.ranges.BollingerMiddle)
	width := s.uniform(s.ranges.BollingerWidth)
	price := middle - width + s.rng.Float64()*2*width
	bollingerSignal := models.SignalNeutral
	if price < middle-width*0.8 {
		bollingerSignal = models.SignalBuy
	} else if price > middle+width*0.8 {
		bollingerSignal = models.SignalSell
	}
	readings[models.IndicatorBollinger] = models.IndicatorReading{
		UpperBand:  middle + width,
		MiddleBand: middle,
		LowerBand:  middle - width,
		Price:      price,
		Signal:     bollingerSignal,
		Strength:   clamp01(math.Abs(price-middle) / width),
	}

	k := s.uniform(s.ranges.Stochastic)
	d := s.uniform(s.ranges.Stochastic)
	readings[models.IndicatorStochastic] = models.IndicatorReading{
		KValue:   k,
		DValue:   d,
		Signal:   thresholdSignal(k, s.cfg.Stochastic.Oversold, s.cfg.Stochastic.Overbought),
		Strength: clamp01(math.Abs(k-50) / 50),
	}

	wr := s.uniform(s.ranges.WilliamsR)
	readings[models.IndicatorWilliamsR] = models.IndicatorReading{
		Value:    wr,
		Signal:   thresholdSignal(wr, s.cfg.WilliamsR.Oversold, s.cfg.WilliamsR.Overbought),
		Strength: clamp01(math.Abs(wr+50) / 50),
	}

	cci := s.uniform(s.ranges.CCI)
	readings[models.IndicatorCCI] = models.IndicatorReading{
		Value:    cci,
		Signal:   thresholdSignal(cci, s.cfg.CCI.Oversold, s.cfg.CCI.Overbought),
		Strength: clamp01(math.Abs(cci) / 200),
	}

	return readings
}

func (s *Simulator) uniform(r config.Range) float64 {
	return r.Min + s.rng.Float64()*(r.Max-r.Min)
}
