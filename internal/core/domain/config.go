package domain

import "github.com/shopspring/decimal"

// SignalWeights are the relative weights of each matching signal. They are
// normalized by their sum when a score is computed, so only ratios matter.
type SignalWeights struct {
	Amount         float64 `mapstructure:"amount" validate:"gte=0"`
	Date           float64 `mapstructure:"date" validate:"gte=0"`
	Description    float64 `mapstructure:"description" validate:"gte=0"`
	RunningBalance float64 `mapstructure:"running_balance" validate:"gte=0"`
}

// MatchingConfig tunes the matching engine. It is a plain value passed into
// each engine call; concurrent batches may run with different tunings side
// by side.
type MatchingConfig struct {
	// DateWindowDays bounds candidate selection to bank txn date +/- N days.
	DateWindowDays int `mapstructure:"date_window_days" validate:"gte=0,lte=90"`
	// AmountTolerance is the absolute difference still considered a
	// near-exact amount match (currency rounding artifacts).
	AmountTolerance decimal.Decimal `mapstructure:"amount_tolerance"`
	// Weights combine the per-signal scores into one.
	Weights SignalWeights `mapstructure:"weights"`
	// MinScore is the floor below which a candidate is not even proposed.
	MinScore float64 `mapstructure:"min_score" validate:"gte=0,lte=1"`
	// AmbiguityMargin: when the runner-up candidate scores within this
	// margin of the winner, the winner's confidence is capped at
	// needs-review regardless of threshold.
	AmbiguityMargin float64 `mapstructure:"ambiguity_margin" validate:"gte=0,lte=1"`
	// Workers sizes the pool used when matching many accounts at once.
	Workers int `mapstructure:"workers" validate:"gte=1,lte=64"`
}

// RouterConfig holds the confidence band thresholds. Tunable independently
// of the matching weights to hit false-positive/false-negative targets.
type RouterConfig struct {
	// AutoConfirmThreshold: scores at or above it auto-confirm.
	AutoConfirmThreshold float64 `mapstructure:"auto_confirm_threshold" validate:"gte=0,lte=1"`
	// RejectThreshold: scores strictly below it are rejected.
	RejectThreshold float64 `mapstructure:"reject_threshold" validate:"gte=0,lte=1,ltefield=AutoConfirmThreshold"`
}

// DefaultMatchingConfig returns the engine defaults. Given fixed config and
// fixed inputs the engine is fully deterministic.
func DefaultMatchingConfig() MatchingConfig {
	return MatchingConfig{
		DateWindowDays:  3,
		AmountTolerance: decimal.NewFromFloat(0.01),
		Weights: SignalWeights{
			Amount:         0.50,
			Date:           0.25,
			Description:    0.15,
			RunningBalance: 0.10,
		},
		MinScore:        0.40,
		AmbiguityMargin: 0.05,
		Workers:         4,
	}
}

// DefaultRouterConfig returns the default confidence thresholds.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		AutoConfirmThreshold: 0.85,
		RejectThreshold:      0.40,
	}
}
