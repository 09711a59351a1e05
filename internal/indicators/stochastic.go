package indicators

import "signalbot/models"

func calculateStochastic(candles []models.Candle, kPeriod, dPeriod int) (float64, float64) {
	if len(candles) < kPeriod {
		return 50.0, 50.0 // Default values if not enough data
	}

	k := stochasticK(candles, len(candles)-1, kPeriod)

	// %D is a simple moving average of %K over the last dPeriod bars.
	count := dPeriod
	if count > len(candles) {
		count = len(candles)
	}
	var kSum float64
	for i := 0; i < count; i++ {
		idx := len(candles) - count + i
		if idx-kPeriod+1 < 0 {
			kSum += k
			continue
		}
		kSum += stochasticK(candles, idx, kPeriod)
	}

	return k, kSum / float64(count)
}

// stochasticK computes %K for the bar at idx over the kPeriod window
// ending there.
func stochasticK(candles []models.Candle, idx, kPeriod int) float64 {
	var highest, lowest float64
	for i := idx - kPeriod + 1; i <= idx; i++ {
		if i == idx-kPeriod+1 || candles[i].High > highest {
			highest = candles[i].High
		}
		if i == idx-kPeriod+1 || candles[i].Low < lowest {
			lowest = candles[i].Low
		}
	}

	if highest-lowest <= 0 {
		return 50.0 // If no range, default to middle
	}
	return (candles[idx].Close - lowest) / (highest - lowest) * 100
}
