package parlay

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/parlay-engine-service/internal/models"
)

var hundred = decimal.NewFromInt(100)

// PriceCombination sizes a combination and computes its expected value and payout
func PriceCombination(c models.Combination, cfg models.StrategyConfig) models.PricedBet {
	stake := SizeStake(c, cfg)

	american, err := DecimalToAmerican(c.DecimalOdds)
	if err != nil {
		american = 0
	}

	// EV = (p * d - 1) * stake, payout = d * stake
	edge := decimal.NewFromFloat(c.Probability*c.DecimalOdds - 1)
	odds := decimal.NewFromFloat(c.DecimalOdds)

	return models.PricedBet{
		Legs:          c.Legs,
		Fighters:      c.Fighters(),
		AmericanOdds:  american,
		DecimalOdds:   c.DecimalOdds,
		Probability:   c.Probability,
		Stake:         stake,
		ExpectedValue: edge.Mul(stake).Round(2),
		Payout:        odds.Mul(stake).Round(2),
		LegCount:      c.LegCount(),
	}
}

// RankByExpectedValue returns at most n bets sorted by descending expected value.
// Ties keep input order.
func RankByExpectedValue(bets []models.PricedBet, n int) []models.PricedBet {
	return topN(bets, n, func(a, b models.PricedBet) bool {
		return a.ExpectedValue.GreaterThan(b.ExpectedValue)
	})
}

// RankByProbability returns at most n bets sorted by descending combined probability.
// Ties keep input order.
func RankByProbability(bets []models.PricedBet, n int) []models.PricedBet {
	return topN(bets, n, func(a, b models.PricedBet) bool {
		return a.Probability > b.Probability
	})
}

func topN(bets []models.PricedBet, n int, less func(a, b models.PricedBet) bool) []models.PricedBet {
	ranked := make([]models.PricedBet, len(bets))
	copy(ranked, bets)
	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[i], ranked[j])
	})
	if n < 0 {
		n = 0
	}
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// Summarize aggregates run statistics over a ranked view
func Summarize(bets []models.PricedBet) models.RunStats {
	stats := models.RunStats{
		TotalBets:           len(bets),
		TotalStake:          decimal.Zero,
		TotalExpectedValue:  decimal.Zero,
		TotalExpectedPayout: decimal.Zero,
		ROI:                 decimal.Zero,
	}
	for _, bet := range bets {
		stats.TotalStake = stats.TotalStake.Add(bet.Stake)
		stats.TotalExpectedValue = stats.TotalExpectedValue.Add(bet.ExpectedValue)
		stats.TotalExpectedPayout = stats.TotalExpectedPayout.Add(bet.Payout)
	}
	stats.MaxPayout = stats.TotalExpectedPayout
	stats.ROI = percentOf(stats.TotalExpectedValue, stats.TotalStake)
	return stats
}

// percentOf returns part/whole*100 rounded to two places, 0 when whole is zero
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}
