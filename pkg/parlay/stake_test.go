package parlay

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/cypherlabdev/parlay-engine-service/internal/models"
)

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s got %s", want, got.String())
}

func combo(legs int, prob, decimalOdds float64) models.Combination {
	c := models.Combination{DecimalOdds: decimalOdds, Probability: prob}
	for i := 0; i < legs; i++ {
		c.Legs = append(c.Legs, leg("F", 150, 0.5, i))
	}
	return c
}

func strategy(staking models.StakingPolicy, normalization models.StakeNormalization) models.StrategyConfig {
	return models.StrategyConfig{
		ParlayRisk:    5,
		BetSizeRisk:   5,
		NumBets:       5,
		Bankroll:      decimal.NewFromInt(1000),
		FixedAmount:   decimal.NewFromInt(40),
		Staking:       staking,
		Selection:     models.SelectionEdge,
		Normalization: normalization,
	}
}

// TestBetFraction tests the bet-size risk lookup table
func TestBetFraction(t *testing.T) {
	assert.InDelta(t, 0.005, BetFraction(1), 1e-12)
	assert.InDelta(t, 0.025, BetFraction(5), 1e-12)
	assert.InDelta(t, 0.05, BetFraction(10), 1e-12)
	assert.Equal(t, 0.0, BetFraction(0))
	assert.Equal(t, 0.0, BetFraction(11))
}

// TestKelly tests the Kelly fraction and its degenerate cases
func TestKelly(t *testing.T) {
	assert.InDelta(t, 0.25, Kelly(0.5, 3.0), 1e-12)
	assert.InDelta(t, 0.0, Kelly(0.4, 2.5), 1e-12)
	assert.Equal(t, 0.0, Kelly(0.3, 2.0), "negative edge floors at zero")
	assert.Equal(t, 0.0, Kelly(0.9, 1.0), "zero net odds give zero")
}

// TestSizeStake_FixedRiskUniform tests that fixed risk ignores odds and probability
func TestSizeStake_FixedRiskUniform(t *testing.T) {
	cfg := strategy(models.StakingFixedRisk, models.NormalizeNone)

	for _, c := range []models.Combination{combo(1, 0.5, 2.5), combo(1, 0.9, 1.2), combo(2, 0.1, 12.0), combo(3, 0.3, 8.0)} {
		assertMoney(t, "25", SizeStake(c, cfg))
	}
}

// TestSizeStake_PerLegSplit tests the per-leg normalization of a base stake
func TestSizeStake_PerLegSplit(t *testing.T) {
	cfg := strategy(models.StakingFixedRisk, models.NormalizePerLeg)

	assertMoney(t, "25", SizeStake(combo(1, 0.5, 2.5), cfg))
	assertMoney(t, "12.5", SizeStake(combo(2, 0.5, 2.5), cfg))
	assertMoney(t, "8.33", SizeStake(combo(3, 0.5, 2.5), cfg))
}

// TestSizeStake_KellyVariants tests full, half and quarter Kelly stakes
func TestSizeStake_KellyVariants(t *testing.T) {
	c := combo(1, 0.5, 3.0)

	assertMoney(t, "250", SizeStake(c, strategy(models.StakingKelly, models.NormalizePerLeg)))
	assertMoney(t, "125", SizeStake(c, strategy(models.StakingHalfKelly, models.NormalizePerLeg)))
	assertMoney(t, "62.5", SizeStake(c, strategy(models.StakingQuarterKelly, models.NormalizePerLeg)))
	assertMoney(t, "0", SizeStake(combo(1, 0.3, 2.0), strategy(models.StakingKelly, models.NormalizePerLeg)))
}

// TestSizeStake_FixedAmountNotSplit tests that a fixed amount is the same for every combination
func TestSizeStake_FixedAmountNotSplit(t *testing.T) {
	cfg := strategy(models.StakingFixedAmount, models.NormalizePerLeg)

	assertMoney(t, "40", SizeStake(combo(1, 0.5, 2.5), cfg))
	assertMoney(t, "40", SizeStake(combo(3, 0.1, 15.0), cfg))
}

// TestSizeStake_ClampedToBankroll tests the upper clamp
func TestSizeStake_ClampedToBankroll(t *testing.T) {
	cfg := strategy(models.StakingFixedAmount, models.NormalizeNone)
	cfg.FixedAmount = decimal.NewFromInt(5000)
	assertMoney(t, "1000", SizeStake(combo(1, 0.5, 2.5), cfg))

	// a certain win puts the whole bankroll down, never more
	assertMoney(t, "1000", SizeStake(combo(1, 1.0, 10.0), strategy(models.StakingKelly, models.NormalizeNone)))
}

// TestSizeStake_HugeBankroll tests that bankrolls beyond float64 range are sized exactly
func TestSizeStake_HugeBankroll(t *testing.T) {
	huge := decimal.RequireFromString("1e400")

	cfg := strategy(models.StakingFixedRisk, models.NormalizePerLeg)
	cfg.Bankroll = huge
	assertMoney(t, "2.5e398", SizeStake(combo(1, 0.5, 2.5), cfg))
	assertMoney(t, "1.25e398", SizeStake(combo(2, 0.5, 2.5), cfg))

	cfg = strategy(models.StakingKelly, models.NormalizeNone)
	cfg.Bankroll = huge
	assertMoney(t, "2.5e399", SizeStake(combo(1, 0.5, 3.0), cfg))

	cfg = strategy(models.StakingFixedAmount, models.NormalizeNone)
	cfg.Bankroll = huge
	cfg.FixedAmount = huge
	assertMoney(t, "1e400", SizeStake(combo(1, 0.5, 2.5), cfg))
}
