package generator

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"signalbot/internal/config"
	"signalbot/internal/rotation"
	"signalbot/internal/timeutil"
	"signalbot/internal/validator"
	"signalbot/models"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func testGenerator(t *testing.T) *Generator {
	t.Helper()
	clock, err := timeutil.NewClockWithNow("UTC", fixedNow)
	if err != nil {
		t.Fatalf("NewClockWithNow() error = %v", err)
	}
	cfg := &config.Config{}
	cfg.Signals.MinimumConfidence = 65
	cfg.Signals.ExpirationMinutes = 3
	cfg.Signals.TargetAccuracy = 90
	return New(cfg, nil, nil, nil, clock)
}

func trendReading(signal models.Direction, strength float64) models.TrendReading {
	direction := models.TrendSideways
	switch signal {
	case models.SignalBuy:
		direction = models.TrendBullish
	case models.SignalSell:
		direction = models.TrendBearish
	}
	return models.TrendReading{Direction: direction, Signal: signal, Strength: strength}
}

func sentimentReading(category models.SentimentCategory, confidence float64) models.SentimentReading {
	return models.SentimentReading{Category: category, Confidence: confidence}
}

func patternReading(name string, signal models.Direction, confidence float64) models.PatternReading {
	ptype := models.PatternNeutral
	switch signal {
	case models.SignalBuy:
		ptype = models.PatternBullish
	case models.SignalSell:
		ptype = models.PatternBearish
	}
	return models.PatternReading{Pattern: name, Type: ptype, Confidence: confidence, Signal: signal}
}

func TestDetermineDirection(t *testing.T) {
	tests := []struct {
		name      string
		trend     models.TrendReading
		sentiment models.SentimentReading
		pattern   models.PatternReading
		want      models.Direction
	}{
		{
			name:      "no votes at all",
			trend:     trendReading(models.SignalNeutral, 0.5),
			sentiment: sentimentReading(models.SentimentNeutral, 0.5),
			pattern:   models.PatternReading{Type: models.PatternNeutral, Confidence: 0.5, Signal: models.SignalNeutral},
			want:      models.SignalNeutral,
		},
		{
			name:      "strong trend alone wins by margin",
			trend:     trendReading(models.SignalBuy, 0.9),
			sentiment: sentimentReading(models.SentimentNeutral, 0.5),
			pattern:   models.PatternReading{Type: models.PatternNeutral, Confidence: 0.5, Signal: models.SignalNeutral},
			want:      models.SignalBuy,
		},
		{
			name:      "strong bearish sentiment alone",
			trend:     trendReading(models.SignalNeutral, 0),
			sentiment: sentimentReading(models.SentimentBearish, 0.9),
			pattern:   models.PatternReading{Type: models.PatternNeutral, Confidence: 0.5, Signal: models.SignalNeutral},
			want:      models.SignalSell,
		},
		{
			name:      "all three agree on SELL",
			trend:     trendReading(models.SignalSell, 0.8),
			sentiment: sentimentReading(models.SentimentBearish, 0.8),
			pattern:   patternReading("downtrend", models.SignalSell, 0.8),
			want:      models.SignalSell,
		},
		{
			// Buy 0.4*0.5 = 0.2, sell 0.25*0.8 = 0.2: inside the margin,
			// at the absolute floor, ties resolve to BUY.
			name:      "exact tie resolves to BUY",
			trend:     trendReading(models.SignalBuy, 0.5),
			sentiment: sentimentReading(models.SentimentNeutral, 0.5),
			pattern:   patternReading("downtrend", models.SignalSell, 0.8),
			want:      models.SignalBuy,
		},
		{
			// Buy 0.4*0.6 = 0.24, sell 0.25*0.96 = 0.24: a dead heat
			// above the absolute floor also resolves to BUY.
			name:      "tie above the floor resolves to BUY",
			trend:     trendReading(models.SignalBuy, 0.6),
			sentiment: sentimentReading(models.SentimentNeutral, 0.5),
			pattern:   patternReading("downtrend", models.SignalSell, 0.96),
			want:      models.SignalBuy,
		},
		{
			// Buy 0.4*0.58 = 0.232, sell 0.25*0.8 = 0.2: margin is only
			// 0.032 but the larger side clears the 0.2 floor.
			name:      "larger side above the floor wins",
			trend:     trendReading(models.SignalBuy, 0.58),
			sentiment: sentimentReading(models.SentimentNeutral, 0.5),
			pattern:   patternReading("downtrend", models.SignalSell, 0.8),
			want:      models.SignalBuy,
		},
		{
			// Tiny weights on both sides: below every threshold, any
			// nonzero weight still produces a direction.
			name:      "weak split still yields the larger side",
			trend:     trendReading(models.SignalBuy, 0.2),
			sentiment: sentimentReading(models.SentimentBearish, 0.1),
			pattern:   models.PatternReading{Type: models.PatternNeutral, Confidence: 0.5, Signal: models.SignalNeutral},
			want:      models.SignalBuy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetermineDirection(tt.trend, tt.sentiment, tt.pattern)
			if got != tt.want {
				t.Errorf("DetermineDirection() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateConfidence(t *testing.T) {
	analysisWith := func(overall float64, trend, sentiment, pattern models.Direction) models.Analysis {
		a := models.Analysis{
			Trend:    trendReading(trend, 0.6),
			Patterns: models.PatternReading{Type: models.PatternNeutral, Confidence: 0.5, Signal: pattern},
		}
		if pattern != models.SignalNeutral {
			a.Patterns = patternReading("uptrend", pattern, 0.8)
		}
		switch sentiment {
		case models.SignalBuy:
			a.Sentiment = sentimentReading(models.SentimentBullish, 0.7)
		case models.SignalSell:
			a.Sentiment = sentimentReading(models.SentimentBearish, 0.7)
		default:
			a.Sentiment = sentimentReading(models.SentimentNeutral, 0.5)
		}
		a.ConfidenceFactors.OverallConfidence = overall
		return a
	}

	tests := []struct {
		name     string
		analysis models.Analysis
		want     float64
	}{
		{
			// 0.5 + (3/3 - 0.5)*0.2 = 0.6, boosted to 0.8.
			name:     "full agreement earns the bonus and the boost",
			analysis: analysisWith(0.5, models.SignalBuy, models.SignalBuy, models.SignalBuy),
			want:     80,
		},
		{
			// 0.3 + (1/2 - 0.5)*0.2 = 0.3, no boost at or below 0.4.
			name:     "split sources and low base stay unboosted",
			analysis: analysisWith(0.3, models.SignalBuy, models.SignalSell, models.SignalNeutral),
			want:     30,
		},
		{
			// 0.4 exactly is not above the boost threshold.
			name:     "boost threshold is exclusive",
			analysis: analysisWith(0.4, models.SignalBuy, models.SignalSell, models.SignalNeutral),
			want:     40,
		},
		{
			// 0.95 + 0.1 clamps to 1 before and after the boost.
			name:     "confidence is capped at 100",
			analysis: analysisWith(0.95, models.SignalBuy, models.SignalBuy, models.SignalBuy),
			want:     100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateConfidence(tt.analysis, models.SignalBuy)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("CalculateConfidence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateConfidenceAgreementMonotonic(t *testing.T) {
	// Same base confidence, increasing source agreement: the score must
	// never decrease.
	base := func(sentiment, pattern models.Direction) models.Analysis {
		a := models.Analysis{
			Trend:    trendReading(models.SignalBuy, 0.6),
			Patterns: models.PatternReading{Type: models.PatternNeutral, Confidence: 0.5, Signal: models.SignalNeutral},
		}
		if pattern != models.SignalNeutral {
			a.Patterns = patternReading("uptrend", pattern, 0.8)
		}
		switch sentiment {
		case models.SignalBuy:
			a.Sentiment = sentimentReading(models.SentimentBullish, 0.7)
		case models.SignalSell:
			a.Sentiment = sentimentReading(models.SentimentBearish, 0.7)
		}
		a.ConfidenceFactors.OverallConfidence = 0.5
		return a
	}

	oneOfThree := CalculateConfidence(base(models.SignalSell, models.SignalSell), models.SignalBuy)
	twoOfThree := CalculateConfidence(base(models.SignalBuy, models.SignalSell), models.SignalBuy)
	threeOfThree := CalculateConfidence(base(models.SignalBuy, models.SignalBuy), models.SignalBuy)

	if !(oneOfThree < twoOfThree && twoOfThree < threeOfThree) {
		t.Errorf("confidence not monotonic in agreement: %v, %v, %v", oneOfThree, twoOfThree, threeOfThree)
	}
}

func TestFromAnalysisNoConsensus(t *testing.T) {
	g := testGenerator(t)

	// Every source neutral: the pipeline must emit nothing rather than
	// guess a direction.
	analysis := models.Analysis{
		Asset:     "EUR/USD",
		Category:  models.CategoryCurrencyPairs,
		Trend:     trendReading(models.SignalNeutral, 0.3),
		Sentiment: sentimentReading(models.SentimentNeutral, 0.5),
		Patterns:  models.PatternReading{Type: models.PatternNeutral, Confidence: 0.5, Signal: models.SignalNeutral},
	}

	_, err := g.FromAnalysis(analysis)
	if !errors.Is(err, ErrNoSignal) {
		t.Errorf("FromAnalysis() error = %v, want ErrNoSignal", err)
	}
}

func TestFromAnalysisLowConfidence(t *testing.T) {
	g := testGenerator(t)

	analysis := models.Analysis{
		Asset:     "EUR/USD",
		Trend:     trendReading(models.SignalBuy, 0.9),
		Sentiment: sentimentReading(models.SentimentNeutral, 0.5),
		Patterns:  models.PatternReading{Type: models.PatternNeutral, Confidence: 0.5, Signal: models.SignalNeutral},
	}
	analysis.ConfidenceFactors.OverallConfidence = 0.1

	_, err := g.FromAnalysis(analysis)
	if !errors.Is(err, ErrLowConfidence) {
		t.Errorf("FromAnalysis() error = %v, want ErrLowConfidence", err)
	}
}

func TestFromAnalysisSignalFields(t *testing.T) {
	g := testGenerator(t)

	analysis := models.Analysis{
		Asset:     "BTC/USD",
		Category:  models.CategoryCryptocurrencies,
		Trend:     trendReading(models.SignalBuy, 0.9),
		Sentiment: sentimentReading(models.SentimentBullish, 0.8),
		Patterns:  patternReading("uptrend", models.SignalBuy, 0.8),
	}
	analysis.ConfidenceFactors.OverallConfidence = 0.6

	signal, err := g.FromAnalysis(analysis)
	if err != nil {
		t.Fatalf("FromAnalysis() error = %v", err)
	}

	if signal.Direction != models.SignalBuy {
		t.Errorf("Direction = %v, want BUY", signal.Direction)
	}
	if signal.Asset != "BTC/USD" || signal.Category != models.CategoryCryptocurrencies {
		t.Errorf("identity = %s/%s, want BTC/USD/cryptocurrencies", signal.Asset, signal.Category)
	}
	if !signal.GeneratedAt.Equal(fixedNow()) {
		t.Errorf("GeneratedAt = %v, want %v", signal.GeneratedAt, fixedNow())
	}
	if want := fixedNow().Add(3 * time.Minute); !signal.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", signal.ExpiresAt, want)
	}
	if signal.Confidence < 65 {
		t.Errorf("Confidence = %v, want at least the configured minimum", signal.Confidence)
	}
	if signal.Reasoning == "" {
		t.Error("Reasoning is empty")
	}
}

func TestStats(t *testing.T) {
	clock, err := timeutil.NewClockWithNow("UTC", fixedNow)
	if err != nil {
		t.Fatalf("NewClockWithNow() error = %v", err)
	}

	cfg := &config.Config{}
	cfg.Signals.MinimumConfidence = 65
	cfg.Signals.ExpirationMinutes = 3
	cfg.Signals.TargetAccuracy = 90
	cfg.Validation.HistoryLimit = 100

	rot := rotation.New(map[models.Category][]string{
		models.CategoryCurrencyPairs: {"EUR/USD"},
	}, 0, rand.New(rand.NewSource(1)), fixedNow)
	val := validator.New(cfg.Validation, fixedNow)

	g := New(cfg, nil, rot, val, clock)
	g.mu.Lock()
	g.generated = 4
	g.validated = 1
	g.mu.Unlock()

	stats := g.Stats()
	if stats.GeneratedSignals != 4 || stats.ValidatedSignals != 1 {
		t.Errorf("counters = %d/%d, want 4/1", stats.GeneratedSignals, stats.ValidatedSignals)
	}
	if want := 25.0; stats.ValidationRate != want {
		t.Errorf("ValidationRate = %v, want %v", stats.ValidationRate, want)
	}
	if stats.TargetAccuracy != 90 {
		t.Errorf("TargetAccuracy = %v, want 90", stats.TargetAccuracy)
	}

	g.ResetStats()
	stats = g.Stats()
	if stats.GeneratedSignals != 0 || stats.ValidationRate != 0 {
		t.Errorf("Stats() after reset = %+v, want zeroed counters", stats)
	}
}
