package rotation

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"signalbot/models"
)

// Rotator selects which instrument to analyze next: categories cycle
// round-robin, and within a category selection is weighted-random with
// preference for rarely used instruments. All rotation state is owned
// here and guarded by a mutex so concurrent generation requests keep
// round-robin ordering intact.
type Rotator struct {
	mu            sync.Mutex
	assets        map[models.Category][]string
	lastUsed      map[string]time.Time
	usageCount    map[string]int
	rotationIndex int
	recencyWindow time.Duration
	rng           *rand.Rand
	now           func() time.Time
	logger        zerolog.Logger
}

// UsageStats is a read-only snapshot of rotation state for reporting.
type UsageStats struct {
	UsageCount  map[string]int       `json:"usage_count"`
	LastUsed    map[string]time.Time `json:"last_used"`
	TotalAssets int                  `json:"total_assets"`
}

// AssetInfo describes one instrument's rotation state.
type AssetInfo struct {
	Asset      string          `json:"asset"`
	Category   models.Category `json:"category"`
	LastUsed   time.Time       `json:"last_used,omitempty"`
	UsageCount int             `json:"usage_count"`
}

// New creates a rotator over the configured category lists. The random
// source is injected for testability; now defaults to time.Now.
func New(assets map[models.Category][]string, recencyWindow time.Duration, rng *rand.Rand, now func() time.Time) *Rotator {
	if now == nil {
		now = time.Now
	}
	return &Rotator{
		assets:        assets,
		lastUsed:      make(map[string]time.Time),
		usageCount:    make(map[string]int),
		recencyWindow: recencyWindow,
		rng:           rng,
		now:           now,
		logger:        log.With().Str("component", "asset_rotator").Logger(),
	}
}

// Next picks the next asset. It advances the category pointer exactly
// one step per call and updates the chosen asset's recency and usage
// counters.
func (r *Rotator) Next() (string, models.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()

	category := r.nextCategory()
	asset := r.selectFromCategory(category)

	r.lastUsed[asset] = r.now()
	r.usageCount[asset]++

	r.logger.Info().Str("asset", asset).Str("category", string(category)).Msg("Selected asset")
	return asset, category
}

func (r *Rotator) nextCategory() models.Category {
	// Skip empty categories, at most one full cycle.
	for i := 0; i < len(models.CategoryRotation); i++ {
		category := models.CategoryRotation[r.rotationIndex]
		r.rotationIndex = (r.rotationIndex + 1) % len(models.CategoryRotation)
		if len(r.assets[category]) > 0 {
			return category
		}
	}
	return models.CategoryRotation[0]
}

func (r *Rotator) selectFromCategory(category models.Category) string {
	available := r.assets[category]

	// Exclude instruments selected within the recency window.
	cutoff := r.now().Add(-r.recencyWindow)
	filtered := make([]string, 0, len(available))
	for _, asset := range available {
		last, ok := r.lastUsed[asset]
		if !ok || last.Before(cutoff) {
			filtered = append(filtered, asset)
		}
	}

	if len(filtered) == 0 {
		filtered = available
		r.logger.Info().Str("category", string(category)).Msg("All assets used recently, resetting rotation")
	}

	// Weighted random pick: weight max(1, 10-usage), so heavy use
	// lowers the odds but never excludes an instrument.
	weights := make([]int, len(filtered))
	total := 0
	for i, asset := range filtered {
		w := 10 - r.usageCount[asset]
		if w < 1 {
			w = 1
		}
		weights[i] = w
		total += w
	}

	pick := r.rng.Intn(total)
	for i, w := range weights {
		pick -= w
		if pick < 0 {
			return filtered[i]
		}
	}
	return filtered[len(filtered)-1]
}

// Info returns rotation state for one asset.
func (r *Rotator) Info(asset string) AssetInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	return AssetInfo{
		Asset:      asset,
		Category:   r.categoryOf(asset),
		LastUsed:   r.lastUsed[asset],
		UsageCount: r.usageCount[asset],
	}
}

func (r *Rotator) categoryOf(asset string) models.Category {
	for category, assets := range r.assets {
		for _, a := range assets {
			if a == asset {
				return category
			}
		}
	}
	return ""
}

// Stats returns a copy of the usage counters for reporting.
func (r *Rotator) Stats() UsageStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := UsageStats{
		UsageCount: make(map[string]int, len(r.usageCount)),
		LastUsed:   make(map[string]time.Time, len(r.lastUsed)),
	}
	for k, v := range r.usageCount {
		stats.UsageCount[k] = v
	}
	for k, v := range r.lastUsed {
		stats.LastUsed[k] = v
	}
	for _, assets := range r.assets {
		stats.TotalAssets += len(assets)
	}
	return stats
}

// Reset clears all usage statistics and recency state.
func (r *Rotator) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.usageCount = make(map[string]int)
	r.lastUsed = make(map[string]time.Time)
	r.logger.Info().Msg("Asset usage statistics reset")
}

// CategoryDisplayName returns the human-readable category name.
func CategoryDisplayName(category models.Category) string {
	switch category {
	case models.CategoryCurrencyPairs:
		return "Currency Pair"
	case models.CategoryCryptocurrencies:
		return "Cryptocurrency"
	case models.CategoryOTCCurrencyPairs:
		return "OTC Currency Pair"
	case models.CategoryOTCCryptocurrencies:
		return "OTC Cryptocurrency"
	default:
		return string(category)
	}
}
