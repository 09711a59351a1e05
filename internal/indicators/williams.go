package indicators

import "signalbot/models"

// calculateWilliamsR returns Williams %R in [-100, 0].
func calculateWilliamsR(candles []models.Candle, period int) float64 {
	if len(candles) < period {
		return -50.0
	}

	var highest, lowest float64
	for i := len(candles) - period; i < len(candles); i++ {
		if i == len(candles)-period || candles[i].High > highest {
			highest = candles[i].High
		}
		if i == len(candles)-period || candles[i].Low < lowest {
			lowest = candles[i].Low
		}
	}

	if highest-lowest <= 0 {
		return -50.0
	}

	last := candles[len(candles)-1].Close
	return (highest - last) / (highest - lowest) * -100
}
