package generator

import (
	"fmt"
	"strings"

	"signalbot/models"
)

// reasoningIndicatorOrder fixes the order indicator names appear in
// reasoning text, since map iteration order is random.
var reasoningIndicatorOrder = []string{
	models.IndicatorRSI,
	models.IndicatorMACD,
	models.IndicatorBollinger,
	models.IndicatorStochastic,
	models.IndicatorWilliamsR,
	models.IndicatorCCI,
	models.IndicatorSMA,
}

// BuildReasoning assembles the human-readable entry reasoning for a
// signal: trend, pattern, supporting indicators, and sentiment, in
// that order, each included only when it agrees with the direction.
func BuildReasoning(analysis models.Analysis, direction models.Direction) string {
	var parts []string

	if analysis.Trend.Signal == direction {
		qualifier := "Moderate"
		if analysis.Trend.Strength > 0.7 {
			qualifier = "Strong"
		}
		parts = append(parts, fmt.Sprintf("%s %s trend", qualifier, strings.ToLower(string(analysis.Trend.Direction))))
	}

	if analysis.Patterns.Signal == direction && analysis.Patterns.Detected() {
		parts = append(parts, fmt.Sprintf("%s pattern detected", titleCase(analysis.Patterns.Pattern)))
	}

	var supporting []string
	for _, name := range reasoningIndicatorOrder {
		if r, ok := analysis.Indicators[name]; ok && r.Signal == direction {
			supporting = append(supporting, name)
		}
	}
	if len(supporting) > 2 {
		parts = append(parts, fmt.Sprintf("Multiple indicators (%s+) support direction", strings.Join(supporting[:2], ", ")))
	} else if len(supporting) > 0 {
		parts = append(parts, fmt.Sprintf("%s support direction", strings.Join(supporting, ", ")))
	}

	if analysis.Sentiment.Signal() == direction {
		qualifier := "Moderate"
		if analysis.Sentiment.Confidence > 0.7 {
			qualifier = "Strong"
		}
		parts = append(parts, fmt.Sprintf("%s %s sentiment", qualifier, strings.ToLower(string(analysis.Sentiment.Category))))
	}

	reasoning := "Technical analysis indicates favorable conditions"
	if len(parts) > 0 {
		reasoning = strings.Join(parts, " • ")
	}

	// Synthetic confidence must stay visible to the reader.
	if analysis.DataSource == models.DataSourceSimulated {
		reasoning += " (simulated data)"
	}
	return reasoning
}

// titleCase turns "engulfing_bull" into "Engulfing Bull".
func titleCase(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
