package indicators

import (
	"math"

	"signalbot/models"
)

// calculateBollingerBands returns the upper, middle and lower band.
func calculateBollingerBands(candles []models.Candle, period int, stdDev float64) (float64, float64, float64) {
	if len(candles) < period {
		last := candles[len(candles)-1].Close
		return last, last, last // Return last close if not enough data
	}

	var sum float64
	for i := len(candles) - period; i < len(candles); i++ {
		sum += candles[i].Close
	}
	middle := sum / float64(period)

	var variance float64
	for i := len(candles) - period; i < len(candles); i++ {
		variance += math.Pow(candles[i].Close-middle, 2)
	}
	sd := math.Sqrt(variance / float64(period))

	return middle + (sd * stdDev), middle, middle - (sd * stdDev)
}

func calculateSMA(candles []models.Candle, period int) float64 {
	if len(candles) < period {
		return candles[len(candles)-1].Close
	}

	var sum float64
	for i := len(candles) - period; i < len(candles); i++ {
		sum += candles[i].Close
	}
	return sum / float64(period)
}
