package indicators

import (
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"signalbot/internal/config"
	"signalbot/models"
)

// Engine computes the fixed indicator set from a price series. Signal
// and strength derivation is a pure function of the raw values and the
// configured threshold table.
type Engine struct {
	cfg    config.IndicatorThresholds
	logger zerolog.Logger
}

// NewEngine creates an indicator engine with the given threshold table.
func NewEngine(cfg config.IndicatorThresholds) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: log.With().Str("component", "indicator_engine").Logger(),
	}
}

// Compute derives every indicator reading from the series. A series
// shorter than the configured minimum yields an empty map, no partial
// results; the caller falls back to the simulated generator.
func (e *Engine) Compute(candles []models.Candle) map[string]models.IndicatorReading {
	if len(candles) < e.cfg.MinimumBars {
		e.logger.Debug().Int("bars", len(candles)).Int("required", e.cfg.MinimumBars).
			Msg("Series too short for indicator computation")
		return map[string]models.IndicatorReading{}
	}

	readings := make(map[string]models.IndicatorReading, 7)
	price := candles[len(candles)-1].Close

	rsi := calculateRSI(candles, e.cfg.RSI.Period)
	readings[models.IndicatorRSI] = models.IndicatorReading{
		Value:    rsi,
		Signal:   thresholdSignal(rsi, e.cfg.RSI.Oversold, e.cfg.RSI.Overbought),
		Strength: clamp01(math.Abs(rsi-50) / 50),
	}

	macdLine, signalLine, histogram := calculateMACD(candles, e.cfg.MACD.Fast, e.cfg.MACD.Slow, e.cfg.MACD.Signal)
	macdSignal := models.SignalSell
	if macdLine > signalLine {
		macdSignal = models.SignalBuy
	}
	readings[models.IndicatorMACD] = models.IndicatorReading{
		MACDLine:   macdLine,
		SignalLine: signalLine,
		Histogram:  histogram,
		Signal:     macdSignal,
		Strength:   clamp01(math.Abs(macdLine - signalLine)),
	}

	upper, middle, lower := calculateBollingerBands(candles, e.cfg.Bollinger.Period, e.cfg.Bollinger.Deviation)
	bollingerSignal := models.SignalNeutral
	if price < lower {
		bollingerSignal = models.SignalBuy
	} else if price > upper {
		bollingerSignal = models.SignalSell
	}
	bollingerStrength := 0.0
	if upper > lower {
		bollingerStrength = clamp01(math.Abs(price-middle) / (upper - lower))
	}
	readings[models.IndicatorBollinger] = models.IndicatorReading{
		UpperBand:  upper,
		MiddleBand: middle,
		LowerBand:  lower,
		Price:      price,
		Signal:     bollingerSignal,
		Strength:   bollingerStrength,
	}

	k, d := calculateStochastic(candles, e.cfg.Stochastic.KPeriod, e.cfg.Stochastic.DPeriod)
	readings[models.IndicatorStochastic] = models.IndicatorReading{
		KValue:   k,
		DValue:   d,
		Signal:   thresholdSignal(k, e.cfg.Stochastic.Oversold, e.cfg.Stochastic.Overbought),
		Strength: clamp01(math.Abs(k-50) / 50),
	}

	wr := calculateWilliamsR(candles, e.cfg.WilliamsR.Period)
	readings[models.IndicatorWilliamsR] = models.IndicatorReading{
		Value:    wr,
		Signal:   thresholdSignal(wr, e.cfg.WilliamsR.Oversold, e.cfg.WilliamsR.Overbought),
		Strength: clamp01(math.Abs(wr+50) / 50),
	}

	cci := calculateCCI(candles, e.cfg.CCI.Period)
	readings[models.IndicatorCCI] = models.IndicatorReading{
		Value:    cci,
		Signal:   thresholdSignal(cci, e.cfg.CCI.Oversold, e.cfg.CCI.Overbought),
		Strength: clamp01(math.Abs(cci) / 200),
	}

	smaFast := calculateSMA(candles, e.cfg.SMA.Fast)
	smaSlow := calculateSMA(candles, e.cfg.SMA.Slow)
	smaSignal := models.SignalSell
	if smaFast > smaSlow {
		smaSignal = models.SignalBuy
	}
	smaStrength := 0.0
	if smaSlow != 0 {
		smaStrength = clamp01(math.Abs(smaFast-smaSlow) / smaSlow)
	}
	readings[models.IndicatorSMA] = models.IndicatorReading{
		SMAFast:  smaFast,
		SMASlow:  smaSlow,
		Signal:   smaSignal,
		Strength: smaStrength,
	}

	return readings
}

// thresholdSignal maps an oscillator value onto a signal: oversold
// means BUY, overbought means SELL.
func thresholdSignal(value, oversold, overbought float64) models.Direction {
	switch {
	case value < oversold:
		return models.SignalBuy
	case value > overbought:
		return models.SignalSell
	default:
		return models.SignalNeutral
	}
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
