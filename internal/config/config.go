package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"signalbot/models"
)

// Range bounds a uniform distribution used by the simulated path.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// IndicatorThresholds is the fixed per-indicator threshold table.
// Identical for every instrument.
type IndicatorThresholds struct {
	RSI struct {
		Period     int     `yaml:"period" default:"14" validate:"gt=1"`
		Overbought float64 `yaml:"overbought" default:"70"`
		Oversold   float64 `yaml:"oversold" default:"30"`
	} `yaml:"rsi"`
	MACD struct {
		Fast   int `yaml:"fast" default:"12" validate:"gt=0"`
		Slow   int `yaml:"slow" default:"26" validate:"gt=0"`
		Signal int `yaml:"signal" default:"9" validate:"gt=0"`
	} `yaml:"macd"`
	Bollinger struct {
		Period    int     `yaml:"period" default:"20" validate:"gt=1"`
		Deviation float64 `yaml:"deviation" default:"2"`
	} `yaml:"bollinger"`
	Stochastic struct {
		KPeriod    int     `yaml:"k_period" default:"14" validate:"gt=1"`
		DPeriod    int     `yaml:"d_period" default:"3" validate:"gt=0"`
		Overbought float64 `yaml:"overbought" default:"80"`
		Oversold   float64 `yaml:"oversold" default:"20"`
	} `yaml:"stochastic"`
	WilliamsR struct {
		Period     int     `yaml:"period" default:"14" validate:"gt=1"`
		Overbought float64 `yaml:"overbought" default:"-20"`
		Oversold   float64 `yaml:"oversold" default:"-80"`
	} `yaml:"williams_r"`
	CCI struct {
		Period     int     `yaml:"period" default:"20" validate:"gt=1"`
		Overbought float64 `yaml:"overbought" default:"100"`
		Oversold   float64 `yaml:"oversold" default:"-100"`
	} `yaml:"cci"`
	SMA struct {
		Fast int `yaml:"fast" default:"20" validate:"gt=1"`
		Slow int `yaml:"slow" default:"50" validate:"gt=1"`
	} `yaml:"sma"`
	// MinimumBars is the shortest series the real-data path accepts.
	// Anything shorter falls back to simulation.
	MinimumBars int `yaml:"minimum_bars" default:"50" validate:"gte=20"`
}

// SimulatedRanges bounds the raw values drawn by the simulated
// indicator generator, per indicator.
type SimulatedRanges struct {
	RSI             Range `yaml:"rsi"`
	MACD            Range `yaml:"macd"`
	BollingerMiddle Range `yaml:"bollinger_middle"`
	BollingerWidth  Range `yaml:"bollinger_width"`
	Stochastic      Range `yaml:"stochastic"`
	WilliamsR       Range `yaml:"williams_r"`
	CCI             Range `yaml:"cci"`
}

// ValidationRules is the gate chain configuration.
type ValidationRules struct {
	MinConfidence          float64 `yaml:"min_confidence" default:"65" validate:"gte=0,lte=100"`
	CooldownMinutes        int     `yaml:"cooldown_minutes" default:"10" validate:"gte=0"`
	MaxSignalsPerAsset     int     `yaml:"max_signals_per_asset" default:"5" validate:"gte=1"` // per hour
	RequiredIndicators     int     `yaml:"required_indicators" default:"2" validate:"gte=0"`
	TrendConfirmation      bool    `yaml:"trend_confirmation"`
	MinSentimentConfidence float64 `yaml:"min_sentiment_confidence" default:"0.3" validate:"gte=0,lte=1"`
	MinPatternConfidence   float64 `yaml:"min_pattern_confidence" default:"0.4" validate:"gte=0,lte=1"`
	MinOverallConfidence   float64 `yaml:"min_overall_confidence" default:"0.3" validate:"gte=0,lte=1"`
	AccuracyFloor          float64 `yaml:"accuracy_floor" default:"70" validate:"gte=0,lte=100"`
	AccuracyMinSamples     int     `yaml:"accuracy_min_samples" default:"10" validate:"gte=1"`
	HistoryLimit           int     `yaml:"history_limit" default:"100" validate:"gte=1"`
}

// Config holds the full application configuration. Read once at
// startup; invalid configuration aborts the process.
type Config struct {
	LogLevel string `yaml:"log_level" default:"info"`
	Timezone string `yaml:"timezone" default:"Africa/Lagos"`

	Signals struct {
		IntervalMinutes   int     `yaml:"interval_minutes" default:"5" validate:"gte=1"`
		ExpirationMinutes int     `yaml:"expiration_minutes" default:"3" validate:"gte=1"`
		MinimumConfidence float64 `yaml:"minimum_confidence" default:"65" validate:"gte=0,lte=100"`
		TargetAccuracy    float64 `yaml:"target_accuracy" default:"90" validate:"gte=0,lte=100"`
	} `yaml:"signals"`

	Assets struct {
		CurrencyPairs        []string `yaml:"currency_pairs"`
		Cryptocurrencies     []string `yaml:"cryptocurrencies"`
		OTCCurrencyPairs     []string `yaml:"otc_currency_pairs"`
		OTCCryptocurrencies  []string `yaml:"otc_cryptocurrencies"`
		RecencyWindowMinutes int      `yaml:"recency_window_minutes" default:"30" validate:"gte=0"`
	} `yaml:"assets"`

	Indicators IndicatorThresholds `yaml:"indicators"`
	Simulated  SimulatedRanges     `yaml:"simulated"`
	Validation ValidationRules     `yaml:"validation"`

	Patterns struct {
		Bullish []string `yaml:"bullish"`
		Bearish []string `yaml:"bearish"`
	} `yaml:"patterns"`

	MarketData struct {
		APIKey         string `yaml:"api_key"`
		Interval       string `yaml:"interval" default:"1min"`
		CandleCount    int    `yaml:"candle_count" default:"60" validate:"gte=20"`
		RequestTimeout int    `yaml:"request_timeout" default:"10" validate:"gte=1"` // seconds
		RequestsPerSec int    `yaml:"requests_per_sec" default:"5" validate:"gte=1"`
	} `yaml:"market_data"`

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	Database struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port" default:"5432"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		DBName   string `yaml:"dbname"`
		SSLMode  string `yaml:"sslmode" default:"disable"`
	} `yaml:"database"`
}

var defaultCurrencyPairs = []string{
	"EUR/USD", "GBP/USD", "USD/JPY", "AUD/USD", "USD/CAD", "USD/CHF",
	"EUR/GBP", "EUR/JPY", "GBP/JPY", "AUD/JPY", "NZD/USD", "USD/SGD",
	"EUR/CAD", "GBP/CAD", "AUD/CAD", "EUR/AUD", "GBP/AUD", "USD/ZAR",
}

var defaultCryptocurrencies = []string{
	"BTC/USD", "ETH/USD", "XRP/USD", "LTC/USD", "ADA/USD", "DOT/USD",
	"LINK/USD", "BCH/USD", "XLM/USD", "DOGE/USD", "MATIC/USD", "SOL/USD",
	"AVAX/USD", "ATOM/USD", "ALGO/USD", "VET/USD", "FIL/USD", "TRX/USD",
}

var defaultOTCCurrencyPairs = []string{
	"USD/TRY", "USD/MXN", "USD/PLN", "USD/CZK", "USD/HUF", "USD/RON",
	"EUR/TRY", "EUR/PLN", "EUR/CZK", "EUR/HUF", "EUR/NOK", "EUR/SEK",
	"GBP/TRY", "GBP/PLN", "GBP/CZK", "GBP/NOK", "GBP/SEK", "GBP/ZAR",
	"USD/DKK", "USD/ILS", "USD/RUB", "USD/INR", "USD/CNY", "USD/KRW",
	"AUD/NZD", "CAD/JPY", "CHF/JPY", "NZD/JPY", "SGD/JPY", "HKD/JPY",
}

var defaultOTCCryptocurrencies = []string{
	"BNB/USD", "XRP/BTC", "ETH/BTC", "LTC/BTC", "ADA/BTC", "DOT/BTC",
	"SHIB/USD", "UNI/USD", "AAVE/USD", "COMP/USD", "MKR/USD", "SNX/USD",
	"CRV/USD", "YFI/USD", "SUSHI/USD", "1INCH/USD", "BAT/USD", "ZRX/USD",
	"BTC/EUR", "ETH/EUR", "XRP/EUR", "LTC/EUR", "ADA/EUR", "DOGE/EUR",
	"BTC/GBP", "ETH/GBP", "XRP/GBP", "BTC/JPY", "ETH/JPY", "XRP/JPY",
}

var defaultBullishPatterns = []string{
	"hammer", "doji", "engulfing_bull", "morning_star", "piercing_line",
	"three_white_soldiers", "ascending_triangle", "cup_and_handle",
}

var defaultBearishPatterns = []string{
	"shooting_star", "hanging_man", "engulfing_bear", "evening_star",
	"dark_cloud_cover", "three_black_crows", "descending_triangle", "head_and_shoulders",
}

// Load reads an optional YAML file, applies struct defaults, overlays
// environment variables, and validates the result. An empty path loads
// defaults only.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyListDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyListDefaults() {
	if len(c.Assets.CurrencyPairs) == 0 {
		c.Assets.CurrencyPairs = defaultCurrencyPairs
	}
	if len(c.Assets.Cryptocurrencies) == 0 {
		c.Assets.Cryptocurrencies = defaultCryptocurrencies
	}
	if len(c.Assets.OTCCurrencyPairs) == 0 {
		c.Assets.OTCCurrencyPairs = defaultOTCCurrencyPairs
	}
	if len(c.Assets.OTCCryptocurrencies) == 0 {
		c.Assets.OTCCryptocurrencies = defaultOTCCryptocurrencies
	}
	if len(c.Patterns.Bullish) == 0 {
		c.Patterns.Bullish = defaultBullishPatterns
	}
	if len(c.Patterns.Bearish) == 0 {
		c.Patterns.Bearish = defaultBearishPatterns
	}

	zero := Range{}
	if c.Simulated.RSI == zero {
		c.Simulated.RSI = Range{Min: 25, Max: 75}
	}
	if c.Simulated.MACD == zero {
		c.Simulated.MACD = Range{Min: -0.5, Max: 0.5}
	}
	if c.Simulated.BollingerMiddle == zero {
		c.Simulated.BollingerMiddle = Range{Min: 100, Max: 200}
	}
	if c.Simulated.BollingerWidth == zero {
		c.Simulated.BollingerWidth = Range{Min: 5, Max: 15}
	}
	if c.Simulated.Stochastic == zero {
		c.Simulated.Stochastic = Range{Min: 10, Max: 90}
	}
	if c.Simulated.WilliamsR == zero {
		c.Simulated.WilliamsR = Range{Min: -100, Max: 0}
	}
	if c.Simulated.CCI == zero {
		c.Simulated.CCI = Range{Min: -200, Max: 200}
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("TWELVE_API_KEY"); v != "" {
		c.MarketData.APIKey = v
	}
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.ChatID = id
		}
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		c.Database.Port = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.Database.DBName = v
	}
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		c.Database.SSLMode = v
	}
}

// Validate checks the configuration against the struct tags plus the
// few cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Indicators.MACD.Fast >= c.Indicators.MACD.Slow {
		return fmt.Errorf("indicators.macd: fast period %d must be below slow period %d",
			c.Indicators.MACD.Fast, c.Indicators.MACD.Slow)
	}
	if c.Indicators.SMA.Fast >= c.Indicators.SMA.Slow {
		return fmt.Errorf("indicators.sma: fast period %d must be below slow period %d",
			c.Indicators.SMA.Fast, c.Indicators.SMA.Slow)
	}
	for _, r := range []struct {
		name string
		r    Range
	}{
		{"rsi", c.Simulated.RSI},
		{"macd", c.Simulated.MACD},
		{"bollinger_middle", c.Simulated.BollingerMiddle},
		{"bollinger_width", c.Simulated.BollingerWidth},
		{"stochastic", c.Simulated.Stochastic},
		{"williams_r", c.Simulated.WilliamsR},
		{"cci", c.Simulated.CCI},
	} {
		if r.r.Min >= r.r.Max {
			return fmt.Errorf("simulated.%s: min %v must be below max %v", r.name, r.r.Min, r.r.Max)
		}
	}
	return nil
}

// AssetsByCategory returns the configured instrument lists keyed by
// category, in rotation order.
func (c *Config) AssetsByCategory() map[models.Category][]string {
	return map[models.Category][]string{
		models.CategoryCurrencyPairs:       c.Assets.CurrencyPairs,
		models.CategoryCryptocurrencies:    c.Assets.Cryptocurrencies,
		models.CategoryOTCCurrencyPairs:    c.Assets.OTCCurrencyPairs,
		models.CategoryOTCCryptocurrencies: c.Assets.OTCCryptocurrencies,
	}
}
