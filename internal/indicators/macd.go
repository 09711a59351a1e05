package indicators

import "signalbot/models"

func calculateMACD(candles []models.Candle, fastPeriod, slowPeriod, signalPeriod int) (float64, float64, float64) {
	closes := make([]float64, len(candles))
	for i, candle := range candles {
		closes[i] = candle.Close
	}

	if len(closes) < slowPeriod+signalPeriod {
		return 0, 0, 0
	}

	fastEMA := calculateEMAFromPrices(closes, fastPeriod)
	slowEMA := calculateEMAFromPrices(closes, slowPeriod)
	macdLine := fastEMA - slowEMA

	// Signal line is an EMA over the MACD history, recomputed on an
	// expanding window ending at each bar.
	macdHistory := make([]float64, 0, len(closes)-slowPeriod+1)
	for i := slowPeriod - 1; i < len(closes); i++ {
		window := closes[:i+1]
		macdHistory = append(macdHistory, calculateEMAFromPrices(window, fastPeriod)-calculateEMAFromPrices(window, slowPeriod))
	}

	signalLine := 0.0
	if len(macdHistory) >= signalPeriod {
		signalLine = calculateEMAFromPrices(macdHistory, signalPeriod)
	}

	return macdLine, signalLine, macdLine - signalLine
}

func calculateEMAFromPrices(prices []float64, period int) float64 {
	if len(prices) < period {
		return prices[len(prices)-1] // Return last price if not enough data
	}

	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	ema := sum / float64(period)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
	}

	return ema
}
