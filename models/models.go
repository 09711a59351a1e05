package models

import (
	"time"
)

// Direction is the categorical signal derived from an indicator,
// pattern, or trend, and the final direction of an emitted signal.
type Direction string

const (
	SignalBuy     Direction = "BUY"
	SignalSell    Direction = "SELL"
	SignalNeutral Direction = "NEUTRAL"
)

// Category groups tradable instruments. Membership is static, defined
// by configuration at startup.
type Category string

const (
	CategoryCurrencyPairs       Category = "currency_pairs"
	CategoryCryptocurrencies    Category = "cryptocurrencies"
	CategoryOTCCurrencyPairs    Category = "otc_currency_pairs"
	CategoryOTCCryptocurrencies Category = "otc_cryptocurrencies"
)

// CategoryRotation is the fixed round-robin order of categories.
var CategoryRotation = []Category{
	CategoryCurrencyPairs,
	CategoryCryptocurrencies,
	CategoryOTCCurrencyPairs,
	CategoryOTCCryptocurrencies,
}

// TrendDirection classifies the overall trend of an analysis.
type TrendDirection string

const (
	TrendBullish  TrendDirection = "BULLISH"
	TrendBearish  TrendDirection = "BEARISH"
	TrendSideways TrendDirection = "SIDEWAYS"
)

// PatternType classifies a detected chart pattern.
type PatternType string

const (
	PatternBullish PatternType = "BULLISH"
	PatternBearish PatternType = "BEARISH"
	PatternNeutral PatternType = "NEUTRAL"
)

// SentimentCategory classifies the computed market sentiment.
type SentimentCategory string

const (
	SentimentBullish SentimentCategory = "BULLISH"
	SentimentBearish SentimentCategory = "BEARISH"
	SentimentNeutral SentimentCategory = "NEUTRAL"
)

// DataSource tags where an analysis got its inputs from. Simulated
// analyses must stay distinguishable from real ones downstream.
type DataSource string

const (
	DataSourceReal      DataSource = "real_market_data"
	DataSourceSimulated DataSource = "simulated_data"
)

// Indicator names used as keys of Analysis.Indicators.
const (
	IndicatorRSI        = "RSI"
	IndicatorMACD       = "MACD"
	IndicatorBollinger  = "BOLLINGER"
	IndicatorStochastic = "STOCHASTIC"
	IndicatorWilliamsR  = "WILLIAMS_R"
	IndicatorCCI        = "CCI"
	IndicatorSMA        = "SMA"
)

// Candle represents a single OHLCV price bar.
type Candle struct {
	Datetime string  `json:"datetime"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   int64   `json:"volume,omitempty"`
}

// TwelveResponse represents the API response from Twelve Data.
type TwelveResponse struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	} `json:"meta"`
	Values []struct {
		Datetime string  `json:"datetime"`
		Open     float64 `json:"open,string"`
		High     float64 `json:"high,string"`
		Low      float64 `json:"low,string"`
		Close    float64 `json:"close,string"`
		Volume   int64   `json:"volume,string,omitempty"`
	} `json:"values"`
	Status string `json:"status"`
}

// IndicatorReading is one computed indicator: its raw values plus the
// categorical signal and normalized strength derived from them. Only
// the raw fields relevant to the indicator are populated.
type IndicatorReading struct {
	Value      float64 `json:"value,omitempty"` // RSI, Williams %R, CCI
	MACDLine   float64 `json:"macd_line,omitempty"`
	SignalLine float64 `json:"signal_line,omitempty"`
	Histogram  float64 `json:"histogram,omitempty"`
	KValue     float64 `json:"k_value,omitempty"`
	DValue     float64 `json:"d_value,omitempty"`
	UpperBand  float64 `json:"upper_band,omitempty"`
	MiddleBand float64 `json:"middle_band,omitempty"`
	LowerBand  float64 `json:"lower_band,omitempty"`
	Price      float64 `json:"current_price,omitempty"`
	SMAFast    float64 `json:"sma_20,omitempty"`
	SMASlow    float64 `json:"sma_50,omitempty"`

	Signal   Direction `json:"signal"`
	Strength float64   `json:"strength"` // normalized to [0,1]
}

// PatternReading is the chart pattern classification for an analysis.
// Pattern is empty when nothing was detected.
type PatternReading struct {
	Pattern    string      `json:"pattern,omitempty"`
	Type       PatternType `json:"type"`
	Confidence float64     `json:"confidence"`
	Signal     Direction   `json:"signal"`
}

// Detected reports whether a concrete pattern was found.
func (p PatternReading) Detected() bool {
	return p.Pattern != ""
}

// TrendReading summarizes indicator consensus into a trend.
type TrendReading struct {
	Direction      TrendDirection `json:"direction"`
	Signal         Direction      `json:"signal"`
	Strength       float64        `json:"strength"`  // mean indicator strength
	Consensus      float64        `json:"consensus"` // |net signal count| / total
	AgreementCount int            `json:"agreement_count"`
}

// SentimentReading is the continuous market sentiment in [-1,1].
type SentimentReading struct {
	Value              float64           `json:"value"`
	Category           SentimentCategory `json:"category"`
	Confidence         float64           `json:"confidence"`
	IndicatorSentiment float64           `json:"indicator_sentiment,omitempty"`
	PatternSentiment   float64           `json:"pattern_sentiment,omitempty"`
}

// Signal maps the sentiment category onto a directional vote.
func (s SentimentReading) Signal() Direction {
	switch s.Category {
	case SentimentBullish:
		return SignalBuy
	case SentimentBearish:
		return SignalSell
	default:
		return SignalNeutral
	}
}

// ConfidenceFactors are the weighted inputs to a signal's confidence.
type ConfidenceFactors struct {
	IndicatorAgreement  float64 `json:"indicator_agreement"`
	PatternConfirmation float64 `json:"pattern_confirmation"`
	TrendStrength       float64 `json:"trend_strength"`
	SignalConsensus     float64 `json:"signal_consensus"`
	OverallConfidence   float64 `json:"overall_confidence"`
}

// Analysis is an immutable snapshot of one analysis pass over an asset.
type Analysis struct {
	Asset             string                      `json:"asset"`
	Category          Category                    `json:"category"`
	Timestamp         time.Time                   `json:"timestamp"`
	Indicators        map[string]IndicatorReading `json:"indicators"`
	Patterns          PatternReading              `json:"patterns"`
	Trend             TrendReading                `json:"trend"`
	Sentiment         SentimentReading            `json:"sentiment"`
	ConfidenceFactors ConfidenceFactors           `json:"confidence_factors"`
	DataSource        DataSource                  `json:"data_source"`
}

// Signal is a directional trading recommendation produced by fusion
// and accepted or rejected by validation.
type Signal struct {
	Asset       string    `json:"asset"`
	Category    Category  `json:"category"`
	Direction   Direction `json:"direction"`
	Confidence  float64   `json:"confidence"` // percentage in [0,100]
	GeneratedAt time.Time `json:"generated_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Reasoning   string    `json:"reasoning"`
	Analysis    Analysis  `json:"analysis"`
}

// SignalRecord is the compact history entry kept for cooldown and
// frequency checks after a signal is accepted.
type SignalRecord struct {
	Asset      string    `json:"asset"`
	Direction  Direction `json:"direction"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// AccuracyRecord tracks resolved outcomes for one asset. Outcomes are
// reported by an external resolution process, never inferred here.
type AccuracyRecord struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

// Accuracy returns the rolling accuracy as a percentage.
func (r AccuracyRecord) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total) * 100
}
