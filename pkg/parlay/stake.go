package parlay

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/parlay-engine-service/internal/models"
)

// BetFraction maps bet-size risk level 1-10 to a bankroll fraction (0.5% per level)
func BetFraction(betSizeRisk int) float64 {
	if betSizeRisk < 1 || betSizeRisk > 10 {
		return 0
	}
	return float64(betSizeRisk) * 0.005
}

// Kelly returns the Kelly fraction f = (p*b - q) / b for win probability p and
// decimal odds, floored at zero. Odds without payout (b <= 0) give 0.
func Kelly(probability, decimalOdds float64) float64 {
	b := decimalOdds - 1
	if b <= 0 {
		return 0
	}
	q := 1 - probability
	f := (probability*b - q) / b
	return math.Max(f, 0)
}

// staker returns the base stake of a combination before normalization and clamping
type staker func(c models.Combination, cfg models.StrategyConfig) decimal.Decimal

var stakers = map[models.StakingPolicy]staker{
	models.StakingFixedRisk: func(_ models.Combination, cfg models.StrategyConfig) decimal.Decimal {
		return cfg.Bankroll.Mul(fraction(BetFraction(cfg.BetSizeRisk)))
	},
	models.StakingKelly:        kellyStaker(1),
	models.StakingHalfKelly:    kellyStaker(0.5),
	models.StakingQuarterKelly: kellyStaker(0.25),
	models.StakingFixedAmount: func(_ models.Combination, cfg models.StrategyConfig) decimal.Decimal {
		return cfg.FixedAmount
	},
}

func kellyStaker(scale float64) staker {
	return func(c models.Combination, cfg models.StrategyConfig) decimal.Decimal {
		return cfg.Bankroll.Mul(fraction(Kelly(c.Probability, c.DecimalOdds) * scale))
	}
}

// fraction converts a bankroll fraction to decimal; anything not finite stakes nothing
func fraction(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// SizeStake computes the stake for one combination, rounded to cents and kept within [0, bankroll].
// With per-leg normalization every policy except fixedAmount splits its base stake by leg count.
func SizeStake(c models.Combination, cfg models.StrategyConfig) decimal.Decimal {
	size, ok := stakers[cfg.Staking]
	if !ok {
		size = stakers[models.StakingFixedRisk]
	}
	stake := size(c, cfg)

	if cfg.Normalization != models.NormalizeNone && cfg.Staking != models.StakingFixedAmount && c.LegCount() > 0 {
		stake = stake.Div(decimal.NewFromInt(int64(c.LegCount())))
	}
	if stake.IsNegative() {
		stake = decimal.Zero
	}

	amount := stake.Round(2)
	if amount.GreaterThan(cfg.Bankroll) {
		amount = cfg.Bankroll
	}
	return amount
}
