package parlay

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/parlay-engine-service/internal/models"
)

// Engine generates, prices and ranks parlays for a list of fights.
// It holds no state between runs; every call works on its own snapshot of inputs.
type Engine struct {
	params models.EngineParams
	logger zerolog.Logger
}

// NewEngine creates a new parlay engine
func NewEngine(params models.EngineParams, logger zerolog.Logger) *Engine {
	return &Engine{
		params: params,
		logger: logger.With().Str("component", "parlay_engine").Logger(),
	}
}

// Simulate runs the full pipeline: candidate selection, enumeration, pricing and ranking.
// A nil probs slice means 50/50 for every fight. RunID and CreatedAt are left to the caller.
func (e *Engine) Simulate(fights []models.Fight, probs []models.ProbabilityPair, cfg models.StrategyConfig) (*models.SimulationResult, error) {
	if probs == nil {
		probs = models.EvenProbabilities(len(fights))
	}
	cfg = WithDefaults(cfg)

	if err := ValidateFights(fights); err != nil {
		return nil, err
	}
	if err := ValidateProbabilities(probs, len(fights)); err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	pool := SelectCandidates(fights, probs, cfg.Selection)
	enumerator := NewEnumerator(pool, MaxLegs(cfg.ParlayRisk))

	bets := make([]models.PricedBet, 0, len(pool))
	truncated := false
	for combo := range enumerator.All() {
		if e.params.MaxCombinations > 0 && len(bets) >= e.params.MaxCombinations {
			truncated = true
			break
		}
		bets = append(bets, PriceCombination(combo, cfg))
	}

	byEV := RankByExpectedValue(bets, cfg.NumBets)
	byProb := RankByProbability(bets, cfg.NumBets)

	stats := Summarize(byEV)
	stats.TotalCombinations = len(bets)
	stats.Truncated = truncated

	if truncated {
		e.logger.Warn().
			Int("candidates", len(pool)).
			Int("max_combinations", e.params.MaxCombinations).
			Msg("combination ceiling reached, ranking truncated set")
	}

	e.logger.Debug().
		Int("fights", len(fights)).
		Int("candidates", len(pool)).
		Int("combinations", len(bets)).
		Str("staking", string(cfg.Staking)).
		Str("selection", string(cfg.Selection)).
		Str("total_ev", stats.TotalExpectedValue.String()).
		Msg("simulation complete")

	return &models.SimulationResult{
		Fights:          fights,
		Config:          cfg,
		ByExpectedValue: byEV,
		ByProbability:   byProb,
		Stats:           stats,
	}, nil
}

// Reconcile settles the bets of a run against realized winners
func (e *Engine) Reconcile(bets []models.PricedBet, winners []string) (*models.ReconcileResult, error) {
	result, err := Reconcile(bets, winners)
	if err != nil {
		return nil, err
	}

	won := 0
	for _, r := range result.Results {
		if r.Won {
			won++
		}
	}
	e.logger.Debug().
		Int("bets", len(bets)).
		Int("won", won).
		Str("net_profit", result.NetProfit.String()).
		Msg("reconciliation complete")

	return result, nil
}

// WithDefaults fills the optional policy fields of a strategy config
func WithDefaults(cfg models.StrategyConfig) models.StrategyConfig {
	if cfg.Selection == "" {
		cfg.Selection = models.SelectionEdge
	}
	if cfg.Normalization == "" {
		cfg.Normalization = models.NormalizePerLeg
	}
	return cfg
}

// ValidateFights checks names and odds of every fight
func ValidateFights(fights []models.Fight) error {
	for i, f := range fights {
		if strings.TrimSpace(f.Fighter) == "" || strings.TrimSpace(f.Opponent) == "" {
			return fmt.Errorf("%w: fight %d is missing a fighter name", ErrInvalidFight, i)
		}
		if f.Fighter == f.Opponent {
			return fmt.Errorf("%w: fight %d has %s on both sides", ErrInvalidFight, i, f.Fighter)
		}
		if err := ValidateOdds(f.FighterOdds); err != nil {
			return fmt.Errorf("fight %d %s: %w", i, f.Fighter, err)
		}
		if err := ValidateOdds(f.OpponentOdds); err != nil {
			return fmt.Errorf("fight %d %s: %w", i, f.Opponent, err)
		}
	}
	return nil
}

// ValidateProbabilities checks there is one 0-100 pair summing to 100 per fight
func ValidateProbabilities(probs []models.ProbabilityPair, fights int) error {
	if len(probs) != fights {
		return fmt.Errorf("%w: got %d pairs for %d fights", ErrInvalidProbability, len(probs), fights)
	}
	for i, p := range probs {
		if p[0] < 0 || p[0] > 100 || p[1] < 0 || p[1] > 100 || p[0]+p[1] != 100 {
			return fmt.Errorf("%w: fight %d has %d/%d", ErrInvalidProbability, i, p[0], p[1])
		}
	}
	return nil
}

// ValidateConfig checks risk levels, bankroll and policies
func ValidateConfig(cfg models.StrategyConfig) error {
	switch {
	case cfg.ParlayRisk < 1 || cfg.ParlayRisk > 10:
		return fmt.Errorf("%w: parlay risk %d outside 1-10", ErrInvalidConfig, cfg.ParlayRisk)
	case cfg.BetSizeRisk < 1 || cfg.BetSizeRisk > 10:
		return fmt.Errorf("%w: bet size risk %d outside 1-10", ErrInvalidConfig, cfg.BetSizeRisk)
	case cfg.NumBets < 1:
		return fmt.Errorf("%w: number of bets must be positive", ErrInvalidConfig)
	case !cfg.Bankroll.IsPositive():
		return fmt.Errorf("%w: bankroll must be positive", ErrInvalidConfig)
	case !cfg.Staking.Valid():
		return fmt.Errorf("%w: unknown staking policy %q", ErrInvalidConfig, cfg.Staking)
	case !cfg.Selection.Valid():
		return fmt.Errorf("%w: unknown selection policy %q", ErrInvalidConfig, cfg.Selection)
	case !cfg.Normalization.Valid():
		return fmt.Errorf("%w: unknown stake normalization %q", ErrInvalidConfig, cfg.Normalization)
	case cfg.Staking == models.StakingFixedAmount && !cfg.FixedAmount.IsPositive():
		return fmt.Errorf("%w: fixed amount must be positive", ErrInvalidConfig)
	}
	return nil
}
