package http

import (
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/parlay-engine-service/internal/models"
)

// strategyRequest carries optional overrides of the configured strategy
type strategyRequest struct {
	ParlayRisk    *int             `json:"parlay_risk" validate:"omitempty,min=1,max=10"`
	BetSizeRisk   *int             `json:"bet_size_risk" validate:"omitempty,min=1,max=10"`
	NumBets       *int             `json:"num_bets" validate:"omitempty,min=1,max=1000"`
	Bankroll      *decimal.Decimal `json:"bankroll"`
	FixedAmount   *decimal.Decimal `json:"fixed_amount"`
	Staking       string           `json:"staking" validate:"omitempty,staking"`
	Selection     string           `json:"selection" validate:"omitempty,selection"`
	Normalization string           `json:"normalization" validate:"omitempty,oneof=perLeg none"`
}

// apply overlays the request on defaults; a nil request returns defaults
func (s *strategyRequest) apply(defaults models.StrategyConfig) models.StrategyConfig {
	cfg := defaults
	if s == nil {
		return cfg
	}
	if s.ParlayRisk != nil {
		cfg.ParlayRisk = *s.ParlayRisk
	}
	if s.BetSizeRisk != nil {
		cfg.BetSizeRisk = *s.BetSizeRisk
	}
	if s.NumBets != nil {
		cfg.NumBets = *s.NumBets
	}
	if s.Bankroll != nil {
		cfg.Bankroll = *s.Bankroll
	}
	if s.FixedAmount != nil {
		cfg.FixedAmount = *s.FixedAmount
	}
	if s.Staking != "" {
		cfg.Staking = models.StakingPolicy(s.Staking)
	}
	if s.Selection != "" {
		cfg.Selection = models.SelectionPolicy(s.Selection)
	}
	if s.Normalization != "" {
		cfg.Normalization = models.StakeNormalization(s.Normalization)
	}
	return cfg
}

type cardRequest struct {
	ID     string         `json:"id" validate:"omitempty,max=128"`
	Source string         `json:"source" validate:"omitempty,max=64"`
	Fights []models.Fight `json:"fights" validate:"required,min=1"`
}

type cardSimulateRequest struct {
	Probabilities []models.ProbabilityPair `json:"probabilities"`
	Strategy      *strategyRequest         `json:"strategy"`
}

type simulateRequest struct {
	Fights        []models.Fight           `json:"fights" validate:"required,min=1"`
	Probabilities []models.ProbabilityPair `json:"probabilities"`
	Strategy      *strategyRequest         `json:"strategy"`
}

type reconcileRequest struct {
	Winners []string `json:"winners" validate:"required,min=1,dive,required"`
}

type conversionResponse struct {
	American           int     `json:"american"`
	Decimal            float64 `json:"decimal"`
	ImpliedProbability float64 `json:"implied_probability"`
}
