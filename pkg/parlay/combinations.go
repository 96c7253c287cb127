package parlay

import (
	"iter"

	"github.com/cypherlabdev/parlay-engine-service/internal/models"
)

// maxLegsByRisk maps parlay risk level 1-10 to the largest parlay size
var maxLegsByRisk = [11]int{0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5}

// MaxLegs returns the leg cap for a parlay risk level, 0 for levels outside 1-10
func MaxLegs(parlayRisk int) int {
	if parlayRisk < 1 || parlayRisk > 10 {
		return 0
	}
	return maxLegsByRisk[parlayRisk]
}

// Enumerator produces every combination of 1..maxLegs candidates drawn from distinct fights
type Enumerator struct {
	pool    []models.LegCandidate
	maxLegs int
}

// NewEnumerator creates an enumerator over a candidate pool
func NewEnumerator(pool []models.LegCandidate, maxLegs int) *Enumerator {
	return &Enumerator{pool: pool, maxLegs: maxLegs}
}

// All yields combinations ordered by leg count, then by pool position.
// Each call starts a fresh pass; stop early by returning false from yield.
func (e *Enumerator) All() iter.Seq[models.Combination] {
	return func(yield func(models.Combination) bool) {
		seen := make(map[string]struct{})
		for size := 1; size <= e.maxLegs && size <= len(e.pool); size++ {
			if !e.walk(size, seen, yield) {
				return
			}
		}
	}
}

// walk runs an explicit-stack backtracking pass over subsets of one size.
// It returns false when the consumer stopped the sequence.
func (e *Enumerator) walk(size int, seen map[string]struct{}, yield func(models.Combination) bool) bool {
	stack := make([]int, 0, size)
	next := 0

	for {
		if len(stack) == size {
			combo := e.build(stack)
			key := combo.Key()
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				if !yield(combo) {
					return false
				}
			}
			next = stack[len(stack)-1] + 1
			stack = stack[:len(stack)-1]
			continue
		}

		pushed := false
		// leave room for the legs still needed after position i
		for i := next; i <= len(e.pool)-(size-len(stack)); i++ {
			if e.compatible(stack, i) {
				stack = append(stack, i)
				next = i + 1
				pushed = true
				break
			}
		}
		if pushed {
			continue
		}

		if len(stack) == 0 {
			return true
		}
		next = stack[len(stack)-1] + 1
		stack = stack[:len(stack)-1]
	}
}

// compatible rejects a second leg from the same fight or the same fighter twice
func (e *Enumerator) compatible(stack []int, i int) bool {
	cand := e.pool[i]
	for _, j := range stack {
		chosen := e.pool[j]
		if chosen.FightIndex == cand.FightIndex || chosen.Fighter == cand.Fighter {
			return false
		}
	}
	return true
}

func (e *Enumerator) build(stack []int) models.Combination {
	legs := make([]models.LegCandidate, len(stack))
	odds, prob := 1.0, 1.0
	for k, i := range stack {
		legs[k] = e.pool[i]
		odds *= americanToDecimal(legs[k].Odds)
		prob *= legs[k].Probability
	}
	return models.Combination{Legs: legs, DecimalOdds: odds, Probability: prob}
}
