package config

import (
	"fmt"
	"log"

	"github.com/finbook/reconcore/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds the externally overridable configuration for the
// reconciliation core. Every matching and routing knob can be set through
// the environment; unset values fall back to the engine defaults.
type Config struct {
	DatabaseURL   string
	EnableDBCheck bool
	Matching      domain.MatchingConfig `validate:"required"`
	Router        domain.RouterConfig   `validate:"required"`
}

// LoadConfig loads configuration from environment variables and a .env file
// if present. Environment variables win over .env values which win over
// defaults.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	defaults := domain.DefaultMatchingConfig()
	routerDefaults := domain.DefaultRouterConfig()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("RECON_DATE_WINDOW_DAYS", defaults.DateWindowDays)
	viper.SetDefault("RECON_AMOUNT_TOLERANCE", defaults.AmountTolerance.String())
	viper.SetDefault("RECON_WEIGHT_AMOUNT", defaults.Weights.Amount)
	viper.SetDefault("RECON_WEIGHT_DATE", defaults.Weights.Date)
	viper.SetDefault("RECON_WEIGHT_DESCRIPTION", defaults.Weights.Description)
	viper.SetDefault("RECON_WEIGHT_RUNNING_BALANCE", defaults.Weights.RunningBalance)
	viper.SetDefault("RECON_MIN_SCORE", defaults.MinScore)
	viper.SetDefault("RECON_AMBIGUITY_MARGIN", defaults.AmbiguityMargin)
	viper.SetDefault("RECON_WORKERS", defaults.Workers)
	viper.SetDefault("RECON_AUTO_CONFIRM_THRESHOLD", routerDefaults.AutoConfirmThreshold)
	viper.SetDefault("RECON_REJECT_THRESHOLD", routerDefaults.RejectThreshold)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	tolerance, err := decimal.NewFromString(viper.GetString("RECON_AMOUNT_TOLERANCE"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECON_AMOUNT_TOLERANCE %q: %w", viper.GetString("RECON_AMOUNT_TOLERANCE"), err)
	}

	cfg.Matching = domain.MatchingConfig{
		DateWindowDays:  viper.GetInt("RECON_DATE_WINDOW_DAYS"),
		AmountTolerance: tolerance,
		Weights: domain.SignalWeights{
			Amount:         viper.GetFloat64("RECON_WEIGHT_AMOUNT"),
			Date:           viper.GetFloat64("RECON_WEIGHT_DATE"),
			Description:    viper.GetFloat64("RECON_WEIGHT_DESCRIPTION"),
			RunningBalance: viper.GetFloat64("RECON_WEIGHT_RUNNING_BALANCE"),
		},
		MinScore:        viper.GetFloat64("RECON_MIN_SCORE"),
		AmbiguityMargin: viper.GetFloat64("RECON_AMBIGUITY_MARGIN"),
		Workers:         viper.GetInt("RECON_WORKERS"),
	}
	cfg.Router = domain.RouterConfig{
		AutoConfirmThreshold: viper.GetFloat64("RECON_AUTO_CONFIRM_THRESHOLD"),
		RejectThreshold:      viper.GetFloat64("RECON_REJECT_THRESHOLD"),
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks structural constraints on a loaded config (threshold
// ordering, weight and score ranges).
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg.Matching); err != nil {
		return fmt.Errorf("invalid matching config: %w", err)
	}
	if err := validate.Struct(cfg.Router); err != nil {
		return fmt.Errorf("invalid router config: %w", err)
	}
	if cfg.Matching.AmountTolerance.IsNegative() {
		return fmt.Errorf("invalid matching config: amount tolerance must not be negative")
	}
	w := cfg.Matching.Weights
	if w.Amount+w.Date+w.Description+w.RunningBalance <= 0 {
		return fmt.Errorf("invalid matching config: at least one signal weight must be positive")
	}
	return nil
}
