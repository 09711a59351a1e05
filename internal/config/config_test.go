package config

import (
	"os"
	"path/filepath"
	"testing"

	"signalbot/models"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}

	if cfg.Timezone == "" {
		t.Error("Timezone is empty")
	}
	if cfg.Signals.IntervalMinutes != 5 {
		t.Errorf("IntervalMinutes = %d, want 5", cfg.Signals.IntervalMinutes)
	}
	if cfg.Signals.ExpirationMinutes != 3 {
		t.Errorf("ExpirationMinutes = %d, want 3", cfg.Signals.ExpirationMinutes)
	}
	if cfg.Signals.MinimumConfidence != 65 {
		t.Errorf("MinimumConfidence = %v, want 65", cfg.Signals.MinimumConfidence)
	}

	if cfg.Indicators.RSI.Period != 14 {
		t.Errorf("RSI period = %d, want 14", cfg.Indicators.RSI.Period)
	}
	if cfg.Indicators.MACD.Fast != 12 || cfg.Indicators.MACD.Slow != 26 || cfg.Indicators.MACD.Signal != 9 {
		t.Errorf("MACD periods = %d/%d/%d, want 12/26/9",
			cfg.Indicators.MACD.Fast, cfg.Indicators.MACD.Slow, cfg.Indicators.MACD.Signal)
	}
	if cfg.Indicators.MinimumBars != 50 {
		t.Errorf("MinimumBars = %d, want 50", cfg.Indicators.MinimumBars)
	}

	if cfg.Validation.CooldownMinutes != 10 {
		t.Errorf("CooldownMinutes = %d, want 10", cfg.Validation.CooldownMinutes)
	}
	if cfg.Validation.HistoryLimit != 100 {
		t.Errorf("HistoryLimit = %d, want 100", cfg.Validation.HistoryLimit)
	}

	if len(cfg.Assets.CurrencyPairs) != 18 {
		t.Errorf("len(CurrencyPairs) = %d, want 18", len(cfg.Assets.CurrencyPairs))
	}
	if len(cfg.Assets.OTCCurrencyPairs) != 30 {
		t.Errorf("len(OTCCurrencyPairs) = %d, want 30", len(cfg.Assets.OTCCurrencyPairs))
	}
	if len(cfg.Patterns.Bullish) != 8 || len(cfg.Patterns.Bearish) != 8 {
		t.Errorf("pattern catalogs = %d/%d, want 8/8", len(cfg.Patterns.Bullish), len(cfg.Patterns.Bearish))
	}

	if cfg.Simulated.RSI.Min != 25 || cfg.Simulated.RSI.Max != 75 {
		t.Errorf("simulated RSI range = %+v, want [25, 75]", cfg.Simulated.RSI)
	}
}

func TestLoadYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
signals:
  interval_minutes: 7
validation:
  cooldown_minutes: 20
assets:
  currency_pairs: ["EUR/USD"]
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Signals.IntervalMinutes != 7 {
		t.Errorf("IntervalMinutes = %d, want 7", cfg.Signals.IntervalMinutes)
	}
	if cfg.Validation.CooldownMinutes != 20 {
		t.Errorf("CooldownMinutes = %d, want 20", cfg.Validation.CooldownMinutes)
	}
	if len(cfg.Assets.CurrencyPairs) != 1 {
		t.Errorf("len(CurrencyPairs) = %d, want 1", len(cfg.Assets.CurrencyPairs))
	}
	// Untouched lists keep their defaults.
	if len(cfg.Assets.Cryptocurrencies) != 18 {
		t.Errorf("len(Cryptocurrencies) = %d, want 18", len(cfg.Assets.Cryptocurrencies))
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TIMEZONE", "Europe/London")
	t.Setenv("TWELVE_API_KEY", "test-key")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001234567890")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Timezone != "Europe/London" {
		t.Errorf("Timezone = %q, want Europe/London", cfg.Timezone)
	}
	if cfg.MarketData.APIKey != "test-key" {
		t.Errorf("APIKey = %q, want test-key", cfg.MarketData.APIKey)
	}
	if cfg.Telegram.ChatID != -1001234567890 {
		t.Errorf("ChatID = %d, want -1001234567890", cfg.Telegram.ChatID)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() error = nil, want read failure")
	}
}

func TestValidateCrossFieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"macd fast at slow", func(c *Config) { c.Indicators.MACD.Fast = 26 }},
		{"sma fast above slow", func(c *Config) { c.Indicators.SMA.Fast = 60 }},
		{"inverted simulated range", func(c *Config) { c.Simulated.RSI = Range{Min: 75, Max: 25} }},
		{"negative interval", func(c *Config) { c.Signals.IntervalMinutes = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() error = nil, want failure")
			}
		})
	}
}

func TestAssetsByCategory(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	byCategory := cfg.AssetsByCategory()
	if len(byCategory) != len(models.CategoryRotation) {
		t.Fatalf("len(AssetsByCategory()) = %d, want %d", len(byCategory), len(models.CategoryRotation))
	}
	for _, category := range models.CategoryRotation {
		if len(byCategory[category]) == 0 {
			t.Errorf("category %s has no instruments", category)
		}
	}
}
