package config

import (
	"testing"

	"github.com/finbook/reconcore/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	defaults := domain.DefaultMatchingConfig()
	assert.Equal(t, defaults.DateWindowDays, cfg.Matching.DateWindowDays)
	assert.True(t, cfg.Matching.AmountTolerance.Equal(defaults.AmountTolerance))
	assert.Equal(t, defaults.Weights, cfg.Matching.Weights)
	assert.Equal(t, defaults.MinScore, cfg.Matching.MinScore)
	assert.Equal(t, defaults.AmbiguityMargin, cfg.Matching.AmbiguityMargin)
	assert.Equal(t, defaults.Workers, cfg.Matching.Workers)

	routerDefaults := domain.DefaultRouterConfig()
	assert.Equal(t, routerDefaults.AutoConfirmThreshold, cfg.Router.AutoConfirmThreshold)
	assert.Equal(t, routerDefaults.RejectThreshold, cfg.Router.RejectThreshold)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("RECON_DATE_WINDOW_DAYS", "7")
	t.Setenv("RECON_AMOUNT_TOLERANCE", "0.05")
	t.Setenv("RECON_WEIGHT_AMOUNT", "0.6")
	t.Setenv("RECON_WORKERS", "8")
	t.Setenv("RECON_AUTO_CONFIRM_THRESHOLD", "0.9")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Matching.DateWindowDays)
	assert.True(t, cfg.Matching.AmountTolerance.Equal(decimal.RequireFromString("0.05")))
	assert.Equal(t, 0.6, cfg.Matching.Weights.Amount)
	assert.Equal(t, 8, cfg.Matching.Workers)
	assert.Equal(t, 0.9, cfg.Router.AutoConfirmThreshold)
}

func TestLoadConfigInvalidTolerance(t *testing.T) {
	t.Setenv("RECON_AMOUNT_TOLERANCE", "not-a-number")

	_, err := LoadConfig()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "RECON_AMOUNT_TOLERANCE")
}

func TestValidateRejectsInvertedThresholds(t *testing.T) {
	cfg := &Config{
		Matching: domain.DefaultMatchingConfig(),
		Router: domain.RouterConfig{
			AutoConfirmThreshold: 0.5,
			RejectThreshold:      0.9, // above auto-confirm
		},
	}
	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "router config")
}

func TestValidateRejectsNegativeTolerance(t *testing.T) {
	matching := domain.DefaultMatchingConfig()
	matching.AmountTolerance = decimal.RequireFromString("-0.01")
	cfg := &Config{Matching: matching, Router: domain.DefaultRouterConfig()}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "tolerance")
}

func TestValidateRejectsAllZeroWeights(t *testing.T) {
	matching := domain.DefaultMatchingConfig()
	matching.Weights = domain.SignalWeights{}
	cfg := &Config{Matching: matching, Router: domain.DefaultRouterConfig()}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "weight")
}

func TestLoadConfigRejectsBadWorkerCount(t *testing.T) {
	t.Setenv("RECON_WORKERS", "0")

	_, err := LoadConfig()
	assert.Error(t, err)
}
