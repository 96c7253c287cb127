package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"github.com/cypherlabdev/parlay-engine-service/internal/models"
)

// NewValidator creates a validator with the policy rules registered.
// The HTTP layer uses the same instance shape for request bodies.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("staking", func(fl validator.FieldLevel) bool {
		return models.StakingPolicy(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("selection", func(fl validator.FieldLevel) bool {
		return models.SelectionPolicy(fl.Field().String()).Valid()
	})
	return v
}

// Validate checks the loaded configuration
func Validate(cfg *Config) error {
	if err := NewValidator().Struct(cfg); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(errs)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	if cfg.Feed.Enabled {
		if _, err := cron.ParseStandard(cfg.Feed.Schedule); err != nil {
			return fmt.Errorf("invalid feed schedule %q: %w", cfg.Feed.Schedule, err)
		}
	}
	if math.IsInf(cfg.Strategy.Bankroll, 0) || math.IsInf(cfg.Strategy.FixedAmount, 0) {
		return fmt.Errorf("strategy.bankroll and strategy.fixed_amount must be finite")
	}
	if cfg.Strategy.Staking == string(models.StakingFixedAmount) && cfg.Strategy.FixedAmount <= 0 {
		return fmt.Errorf("strategy.fixed_amount must be positive when staking is fixedAmount")
	}

	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", e.Namespace(), e.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
