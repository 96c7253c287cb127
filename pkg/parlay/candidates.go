package parlay

import (
	"github.com/cypherlabdev/parlay-engine-service/internal/models"
)

const (
	// confidenceEdge is the minimum model-over-market edge for the confidence policy
	confidenceEdge = 0.10
	// mixedFavoriteFloor is the model probability above which the mixed policy backs the favorite
	mixedFavoriteFloor = 0.6
)

// selector picks 0, 1 or 2 legs from the two sides of one fight
type selector func(a, b models.LegCandidate) []models.LegCandidate

var selectors = map[models.SelectionPolicy]selector{
	models.SelectionEdge:         selectEdge,
	models.SelectionFavorites:    selectFavorite,
	models.SelectionUnderdogs:    selectUnderdog,
	models.SelectionConfidence:   selectConfidence,
	models.SelectionMixed:        selectMixed,
	models.SelectionOddsWeighted: selectOddsWeighted,
}

// SelectCandidates builds the leg pool for a run. Fights and probabilities must already be
// validated and of equal length. Legs with zero model probability never enter the pool.
func SelectCandidates(fights []models.Fight, probs []models.ProbabilityPair, policy models.SelectionPolicy) []models.LegCandidate {
	pick, ok := selectors[policy]
	if !ok {
		pick = selectEdge
	}

	pool := make([]models.LegCandidate, 0, len(fights)*2)
	for i, fight := range fights {
		a := newCandidate(fight.Fighter, fight.FighterOdds, probs[i][0], i)
		b := newCandidate(fight.Opponent, fight.OpponentOdds, probs[i][1], i)

		for _, leg := range pick(a, b) {
			if leg.Probability > 0 {
				pool = append(pool, leg)
			}
		}
	}
	return pool
}

func newCandidate(fighter string, odds, prob, fightIndex int) models.LegCandidate {
	return models.LegCandidate{
		Fighter:            fighter,
		Odds:               odds,
		Probability:        float64(prob) / 100,
		ImpliedProbability: impliedProbability(odds),
		FightIndex:         fightIndex,
	}
}

func selectEdge(a, b models.LegCandidate) []models.LegCandidate {
	return keep(a, b, func(c models.LegCandidate) bool {
		return c.Probability > c.ImpliedProbability
	})
}

func selectConfidence(a, b models.LegCandidate) []models.LegCandidate {
	return keep(a, b, func(c models.LegCandidate) bool {
		return c.Probability-c.ImpliedProbability > confidenceEdge
	})
}

func selectOddsWeighted(a, b models.LegCandidate) []models.LegCandidate {
	return keep(a, b, func(c models.LegCandidate) bool {
		return c.ImpliedProbability > 0 && c.Probability/c.ImpliedProbability > 1
	})
}

func selectFavorite(a, b models.LegCandidate) []models.LegCandidate {
	fav, _ := favoriteAndUnderdog(a, b)
	return []models.LegCandidate{fav}
}

func selectUnderdog(a, b models.LegCandidate) []models.LegCandidate {
	_, dog := favoriteAndUnderdog(a, b)
	return []models.LegCandidate{dog}
}

func selectMixed(a, b models.LegCandidate) []models.LegCandidate {
	fav, dog := favoriteAndUnderdog(a, b)
	switch {
	case fav.Probability > mixedFavoriteFloor:
		return []models.LegCandidate{fav}
	case dog.Probability > fav.Probability:
		return []models.LegCandidate{dog}
	}
	return nil
}

// favoriteAndUnderdog orders the sides by decimal odds; on a pick'em a is the favorite
func favoriteAndUnderdog(a, b models.LegCandidate) (models.LegCandidate, models.LegCandidate) {
	if americanToDecimal(a.Odds) <= americanToDecimal(b.Odds) {
		return a, b
	}
	return b, a
}

func keep(a, b models.LegCandidate, pred func(models.LegCandidate) bool) []models.LegCandidate {
	var legs []models.LegCandidate
	if pred(a) {
		legs = append(legs, a)
	}
	if pred(b) {
		legs = append(legs, b)
	}
	return legs
}
