package patterns

import (
	"math"

	"signalbot/models"
)

// SentimentFromSeries blends price momentum, volume trend, and
// indicator signals into one sentiment score. Used on the real-data
// path.
func SentimentFromSeries(candles []models.Candle, readings map[string]models.IndicatorReading) models.SentimentReading {
	var scores []float64

	// 5-bar price momentum.
	if len(candles) >= 5 {
		first := candles[len(candles)-5].Close
		last := candles[len(candles)-1].Close
		if first != 0 {
			scores = append(scores, (last-first)/first)
		}
	}

	// Volume trend: recent 5-bar average vs the preceding 5, weighted
	// half as much as price.
	if len(candles) >= 10 {
		var recent, older int64
		for _, c := range candles[len(candles)-5:] {
			recent += c.Volume
		}
		for _, c := range candles[len(candles)-10 : len(candles)-5] {
			older += c.Volume
		}
		if older > 0 {
			trend := (float64(recent) - float64(older)) / float64(older)
			scores = append(scores, trend*0.5)
		}
	}

	// Indicator contributions.
	for _, r := range readings {
		switch r.Signal {
		case models.SignalBuy:
			scores = append(scores, r.Strength*0.3)
		case models.SignalSell:
			scores = append(scores, -r.Strength*0.3)
		}
	}

	if len(scores) == 0 {
		return NeutralSentiment()
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	value := clampSentiment(sum / float64(len(scores)))

	category := models.SentimentNeutral
	if value > 0.2 {
		category = models.SentimentBullish
	} else if value < -0.2 {
		category = models.SentimentBearish
	}

	return models.SentimentReading{
		Value:      value,
		Category:   category,
		Confidence: math.Min(math.Abs(value)+0.5, 1.0),
	}
}

// SentimentFromReadings derives sentiment purely from indicator and
// pattern state, weighting the pattern twice as heavily. Used on the
// simulated path where no series exists.
func SentimentFromReadings(readings map[string]models.IndicatorReading, pattern models.PatternReading) models.SentimentReading {
	var indicatorSentiment float64
	for _, r := range readings {
		switch r.Signal {
		case models.SignalBuy:
			indicatorSentiment += r.Strength
		case models.SignalSell:
			indicatorSentiment -= r.Strength
		}
	}

	var patternSentiment float64
	switch pattern.Type {
	case models.PatternBullish:
		patternSentiment = pattern.Confidence
	case models.PatternBearish:
		patternSentiment = -pattern.Confidence
	}

	value := clampSentiment((indicatorSentiment + patternSentiment*2) / 3)

	category := models.SentimentNeutral
	if value > 0.3 {
		category = models.SentimentBullish
	} else if value < -0.3 {
		category = models.SentimentBearish
	}

	return models.SentimentReading{
		Value:              value,
		Category:           category,
		Confidence:         math.Min(math.Abs(value), 1.0),
		IndicatorSentiment: indicatorSentiment,
		PatternSentiment:   patternSentiment,
	}
}

// NeutralSentiment is the "no data" sentiment reading.
func NeutralSentiment() models.SentimentReading {
	return models.SentimentReading{Category: models.SentimentNeutral, Confidence: 0.5}
}

func clampSentiment(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
