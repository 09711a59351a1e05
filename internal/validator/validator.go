package validator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"signalbot/internal/config"
	"signalbot/models"
)

// Rule identifies one gate in the validation chain.
type Rule string

const (
	RuleMinConfidence      Rule = "min_confidence"
	RuleCooldown           Rule = "cooldown"
	RuleFrequency          Rule = "frequency"
	RuleIndicatorAgreement Rule = "indicator_agreement"
	RuleTrendConfirmation  Rule = "trend_confirmation"
	RuleQuality            Rule = "quality"
	RuleHistoricalAccuracy Rule = "historical_accuracy"
)

// RejectionError reports which gate a candidate signal failed and why.
// It is a valid terminal outcome, not an internal failure; callers use
// it to explain filtering to end users.
type RejectionError struct {
	Rule    Rule
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("signal rejected (%s): %s", e.Rule, e.Message)
}

// AccuracyStore persists per-asset accuracy records across restarts.
type AccuracyStore interface {
	Load(ctx context.Context) (map[string]models.AccuracyRecord, error)
	Upsert(ctx context.Context, asset string, record models.AccuracyRecord) error
}

// ValidationStats is a reporting snapshot.
type ValidationStats struct {
	TotalSignals int                              `json:"total_signals"`
	Accuracy     map[string]models.AccuracyRecord `json:"accuracy_tracker"`
	Rules        config.ValidationRules           `json:"validation_rules"`
}

// Validator applies the sequential gate chain to candidate signals and
// owns the accepted-signal history that feeds its own cooldown and
// frequency checks.
type Validator struct {
	mu       sync.Mutex
	rules    config.ValidationRules
	history  []models.SignalRecord
	accuracy map[string]models.AccuracyRecord
	store    AccuracyStore
	now      func() time.Time
	logger   zerolog.Logger
}

// New creates a validator. now defaults to time.Now.
func New(rules config.ValidationRules, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{
		rules:    rules,
		accuracy: make(map[string]models.AccuracyRecord),
		now:      now,
		logger:   log.With().Str("component", "signal_validator").Logger(),
	}
}

// AttachStore loads persisted accuracy records and keeps the store
// updated on every future accuracy change.
func (v *Validator) AttachStore(ctx context.Context, store AccuracyStore) error {
	records, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading accuracy records: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	for asset, rec := range records {
		v.accuracy[asset] = rec
	}
	v.store = store
	v.logger.Info().Int("assets", len(records)).Msg("Accuracy records loaded")
	return nil
}

// Validate runs the gate chain in order and short-circuits on the
// first failure. A nil return means the signal passed every gate; the
// caller must then Record it so future cooldown and frequency checks
// see it. Callers racing on the same asset should use
// ValidateAndRecord instead, which holds the lock across both steps.
func (v *Validator) Validate(signal models.Signal) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.validateLocked(signal)
}

// ValidateAndRecord accepts-and-records atomically: the gate chain and
// the history append happen under one lock, so two concurrent
// candidates for the same asset can never both slip past the cooldown
// and frequency gates.
func (v *Validator) ValidateAndRecord(signal models.Signal) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.validateLocked(signal); err != nil {
		return err
	}
	v.recordLocked(signal)
	return nil
}

func (v *Validator) validateLocked(signal models.Signal) error {
	v.logger.Info().Str("asset", signal.Asset).Msg("Validating signal")

	checks := []func(models.Signal) *RejectionError{
		v.checkMinimumConfidence,
		v.checkCooldown,
		v.checkFrequency,
		v.checkIndicatorAgreement,
		v.checkTrendConfirmation,
		v.checkQuality,
		v.checkHistoricalAccuracy,
	}
	for _, check := range checks {
		if rej := check(signal); rej != nil {
			v.logger.Warn().Str("asset", signal.Asset).Str("rule", string(rej.Rule)).
				Msg("Signal validation failed")
			return rej
		}
	}

	v.logger.Info().Str("asset", signal.Asset).Msg("Signal validation passed")
	return nil
}

func (v *Validator) checkMinimumConfidence(signal models.Signal) *RejectionError {
	if signal.Confidence < v.rules.MinConfidence {
		return &RejectionError{RuleMinConfidence, "signal confidence below minimum threshold"}
	}
	return nil
}

// checkCooldown only inspects the most recent history entry for the
// asset, not all of history.
func (v *Validator) checkCooldown(signal models.Signal) *RejectionError {
	cooldown := time.Duration(v.rules.CooldownMinutes) * time.Minute
	now := v.now()

	for i := len(v.history) - 1; i >= 0; i-- {
		if v.history[i].Asset != signal.Asset {
			continue
		}
		if now.Sub(v.history[i].Timestamp) < cooldown {
			return &RejectionError{RuleCooldown, "asset still in cooldown period"}
		}
		break
	}
	return nil
}

func (v *Validator) checkFrequency(signal models.Signal) *RejectionError {
	oneHourAgo := v.now().Add(-time.Hour)
	recent := 0
	for _, rec := range v.history {
		if rec.Asset == signal.Asset && rec.Timestamp.After(oneHourAgo) {
			recent++
		}
	}
	if recent >= v.rules.MaxSignalsPerAsset {
		return &RejectionError{RuleFrequency, "too many signals for this asset recently"}
	}
	return nil
}

func (v *Validator) checkIndicatorAgreement(signal models.Signal) *RejectionError {
	agreeing := 0
	for _, r := range signal.Analysis.Indicators {
		if r.Signal == signal.Direction {
			agreeing++
		}
	}
	if agreeing < v.rules.RequiredIndicators {
		return &RejectionError{RuleIndicatorAgreement, "insufficient indicator agreement"}
	}
	return nil
}

func (v *Validator) checkTrendConfirmation(signal models.Signal) *RejectionError {
	if !v.rules.TrendConfirmation {
		return nil
	}
	trend := signal.Analysis.Trend
	if trend.Signal != signal.Direction || trend.Strength <= 0.5 {
		return &RejectionError{RuleTrendConfirmation, "trend confirmation failed"}
	}
	return nil
}

func (v *Validator) checkQuality(signal models.Signal) *RejectionError {
	analysis := signal.Analysis

	if analysis.Sentiment.Confidence < v.rules.MinSentimentConfidence {
		return &RejectionError{RuleQuality, "sentiment confidence below quality floor"}
	}
	// Pattern floor applies only when a pattern was actually detected.
	if analysis.Patterns.Detected() && analysis.Patterns.Confidence < v.rules.MinPatternConfidence {
		return &RejectionError{RuleQuality, "pattern confidence below quality floor"}
	}
	if analysis.ConfidenceFactors.OverallConfidence < v.rules.MinOverallConfidence {
		return &RejectionError{RuleQuality, "overall confidence below quality floor"}
	}
	return nil
}

// checkHistoricalAccuracy is lenient on cold start: assets with fewer
// than the minimum sample size always pass.
func (v *Validator) checkHistoricalAccuracy(signal models.Signal) *RejectionError {
	rec, ok := v.accuracy[signal.Asset]
	if !ok || rec.Total < v.rules.AccuracyMinSamples {
		return nil
	}
	if rec.Accuracy() < v.rules.AccuracyFloor {
		return &RejectionError{RuleHistoricalAccuracy, "asset historical accuracy below threshold"}
	}
	return nil
}

// Record appends an accepted signal to the bounded history.
func (v *Validator) Record(signal models.Signal) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.recordLocked(signal)
}

func (v *Validator) recordLocked(signal models.Signal) {
	v.history = append(v.history, models.SignalRecord{
		Asset:      signal.Asset,
		Direction:  signal.Direction,
		Confidence: signal.Confidence,
		Timestamp:  v.now(),
		ExpiresAt:  signal.ExpiresAt,
	})

	if len(v.history) > v.rules.HistoryLimit {
		v.history = v.history[len(v.history)-v.rules.HistoryLimit:]
	}

	v.logger.Info().Str("asset", signal.Asset).Msg("Signal recorded")
}

// UpdateAccuracy records one resolved outcome reported by the external
// resolution process.
func (v *Validator) UpdateAccuracy(ctx context.Context, asset string, wasCorrect bool) error {
	v.mu.Lock()
	rec := v.accuracy[asset]
	rec.Total++
	if wasCorrect {
		rec.Correct++
	}
	v.accuracy[asset] = rec
	store := v.store
	v.mu.Unlock()

	v.logger.Info().Str("asset", asset).
		Float64("accuracy", rec.Accuracy()).
		Int("correct", rec.Correct).Int("total", rec.Total).
		Msg("Updated accuracy")

	if store != nil {
		if err := store.Upsert(ctx, asset, rec); err != nil {
			return fmt.Errorf("persisting accuracy for %s: %w", asset, err)
		}
	}
	return nil
}

// CleanupOldSignals drops history entries older than maxAge and
// returns how many were removed.
func (v *Validator) CleanupOldSignals(maxAge time.Duration) int {
	v.mu.Lock()
	defer v.mu.Unlock()

	cutoff := v.now().Add(-maxAge)
	kept := v.history[:0]
	for _, rec := range v.history {
		if rec.Timestamp.After(cutoff) {
			kept = append(kept, rec)
		}
	}
	removed := len(v.history) - len(kept)
	v.history = kept

	if removed > 0 {
		v.logger.Info().Int("removed", removed).Msg("Cleaned up old signals")
	}
	return removed
}

// HistoryLen reports the current history size.
func (v *Validator) HistoryLen() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.history)
}

// Stats returns a snapshot of validation state.
func (v *Validator) Stats() ValidationStats {
	v.mu.Lock()
	defer v.mu.Unlock()

	accuracy := make(map[string]models.AccuracyRecord, len(v.accuracy))
	for k, rec := range v.accuracy {
		accuracy[k] = rec
	}
	return ValidationStats{
		TotalSignals: len(v.history),
		Accuracy:     accuracy,
		Rules:        v.rules,
	}
}
