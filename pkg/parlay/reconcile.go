package parlay

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/parlay-engine-service/internal/models"
)

// Reconcile settles priced bets against realized winners, indexed by fight.
// A bet wins only if every leg's fighter won its fight. Every winner must be set
// and every leg must reference a fight in winners, otherwise nothing is computed.
func Reconcile(bets []models.PricedBet, winners []string) (*models.ReconcileResult, error) {
	for i, w := range winners {
		if strings.TrimSpace(w) == "" {
			return nil, fmt.Errorf("%w: fight %d", ErrMissingWinner, i)
		}
	}
	for _, bet := range bets {
		for _, leg := range bet.Legs {
			if leg.FightIndex < 0 || leg.FightIndex >= len(winners) {
				return nil, fmt.Errorf("%w: fight %d referenced by %s", ErrMissingWinner, leg.FightIndex, leg.Fighter)
			}
		}
	}

	result := &models.ReconcileResult{
		Results:     make([]models.BetOutcome, 0, len(bets)),
		TotalReturn: decimal.Zero,
		TotalStake:  decimal.Zero,
	}
	for _, bet := range bets {
		won := legsWon(bet.Legs, winners)
		result.Results = append(result.Results, models.BetOutcome{Bet: bet, Won: won})
		if won {
			result.TotalReturn = result.TotalReturn.Add(bet.Payout)
		}
		result.TotalStake = result.TotalStake.Add(bet.Stake)
	}
	result.NetProfit = result.TotalReturn.Sub(result.TotalStake)
	result.ROI = percentOf(result.NetProfit, result.TotalStake)

	return result, nil
}

func legsWon(legs []models.LegCandidate, winners []string) bool {
	if len(legs) == 0 {
		return false
	}
	for _, leg := range legs {
		if winners[leg.FightIndex] != leg.Fighter {
			return false
		}
	}
	return true
}
