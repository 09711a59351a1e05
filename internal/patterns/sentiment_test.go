package patterns

import (
	"math"
	"testing"

	"signalbot/models"
)

func TestSentimentFromReadings(t *testing.T) {
	tests := []struct {
		name         string
		readings     map[string]models.IndicatorReading
		pattern      models.PatternReading
		wantCategory models.SentimentCategory
	}{
		{
			name: "strong bullish agreement",
			readings: map[string]models.IndicatorReading{
				models.IndicatorRSI:  {Signal: models.SignalBuy, Strength: 0.9},
				models.IndicatorMACD: {Signal: models.SignalBuy, Strength: 0.8},
			},
			pattern:      models.PatternReading{Pattern: "hammer", Type: models.PatternBullish, Confidence: 0.9, Signal: models.SignalBuy},
			wantCategory: models.SentimentBullish,
		},
		{
			name: "strong bearish agreement",
			readings: map[string]models.IndicatorReading{
				models.IndicatorRSI:  {Signal: models.SignalSell, Strength: 0.9},
				models.IndicatorMACD: {Signal: models.SignalSell, Strength: 0.8},
			},
			pattern:      models.PatternReading{Pattern: "shooting_star", Type: models.PatternBearish, Confidence: 0.9, Signal: models.SignalSell},
			wantCategory: models.SentimentBearish,
		},
		{
			name: "all neutral",
			readings: map[string]models.IndicatorReading{
				models.IndicatorRSI: {Signal: models.SignalNeutral, Strength: 0.2},
			},
			pattern:      NeutralPattern(),
			wantCategory: models.SentimentNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SentimentFromReadings(tt.readings, tt.pattern)
			if result.Category != tt.wantCategory {
				t.Errorf("SentimentFromReadings() category = %v, want %v", result.Category, tt.wantCategory)
			}
			if result.Value < -1 || result.Value > 1 {
				t.Errorf("SentimentFromReadings() value = %v, want within [-1,1]", result.Value)
			}
			if want := math.Min(math.Abs(result.Value), 1.0); result.Confidence != want {
				t.Errorf("SentimentFromReadings() confidence = %v, want %v", result.Confidence, want)
			}
		})
	}
}

func TestSentimentFromReadingsPatternWeight(t *testing.T) {
	// A lone weak indicator against a confident opposing pattern: the
	// doubled pattern vote must dominate.
	readings := map[string]models.IndicatorReading{
		models.IndicatorRSI: {Signal: models.SignalBuy, Strength: 0.3},
	}
	pattern := models.PatternReading{Pattern: "evening_star", Type: models.PatternBearish, Confidence: 0.9, Signal: models.SignalSell}

	result := SentimentFromReadings(readings, pattern)
	if result.Category != models.SentimentBearish {
		t.Errorf("category = %v, want BEARISH when the pattern outweighs indicators", result.Category)
	}
	if result.IndicatorSentiment != 0.3 {
		t.Errorf("IndicatorSentiment = %v, want 0.3", result.IndicatorSentiment)
	}
	if result.PatternSentiment != -0.9 {
		t.Errorf("PatternSentiment = %v, want -0.9", result.PatternSentiment)
	}
}

func TestSentimentFromSeries(t *testing.T) {
	rising := generateTestCandles(20, func(i int) models.Candle {
		return models.Candle{Close: 100 * math.Pow(1.2, float64(i)), Volume: 1000}
	})
	falling := generateTestCandles(20, func(i int) models.Candle {
		return models.Candle{Close: 100 * math.Pow(0.8, float64(i)), Volume: 1000}
	})

	buyReadings := map[string]models.IndicatorReading{
		models.IndicatorRSI:  {Signal: models.SignalBuy, Strength: 0.9},
		models.IndicatorMACD: {Signal: models.SignalBuy, Strength: 0.9},
	}
	sellReadings := map[string]models.IndicatorReading{
		models.IndicatorRSI:  {Signal: models.SignalSell, Strength: 0.9},
		models.IndicatorMACD: {Signal: models.SignalSell, Strength: 0.9},
	}

	bullish := SentimentFromSeries(rising, buyReadings)
	if bullish.Category != models.SentimentBullish {
		t.Errorf("rising series category = %v, want BULLISH", bullish.Category)
	}
	if bullish.Confidence < 0.5 || bullish.Confidence > 1 {
		t.Errorf("rising series confidence = %v, want within [0.5, 1]", bullish.Confidence)
	}

	bearish := SentimentFromSeries(falling, sellReadings)
	if bearish.Category != models.SentimentBearish {
		t.Errorf("falling series category = %v, want BEARISH", bearish.Category)
	}
}

func TestSentimentFromSeriesNoInputs(t *testing.T) {
	result := SentimentFromSeries(nil, nil)
	if result.Category != models.SentimentNeutral || result.Confidence != 0.5 {
		t.Errorf("SentimentFromSeries(nil, nil) = %+v, want the neutral reading", result)
	}
}
