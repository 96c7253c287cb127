package models

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StakingPolicy selects how a stake is sized for each combination
type StakingPolicy string

const (
	StakingFixedRisk    StakingPolicy = "fixedRisk"
	StakingKelly        StakingPolicy = "kelly"
	StakingHalfKelly    StakingPolicy = "halfKelly"
	StakingQuarterKelly StakingPolicy = "quarterKelly"
	StakingFixedAmount  StakingPolicy = "fixedAmount"
)

// Valid reports whether p is a known staking policy
func (p StakingPolicy) Valid() bool {
	switch p {
	case StakingFixedRisk, StakingKelly, StakingHalfKelly, StakingQuarterKelly, StakingFixedAmount:
		return true
	}
	return false
}

// SelectionPolicy selects which legs of each fight become candidates
type SelectionPolicy string

const (
	SelectionEdge         SelectionPolicy = "edge"
	SelectionFavorites    SelectionPolicy = "favorites"
	SelectionUnderdogs    SelectionPolicy = "underdogs"
	SelectionConfidence   SelectionPolicy = "confidence"
	SelectionMixed        SelectionPolicy = "mixed"
	SelectionOddsWeighted SelectionPolicy = "oddsWeighted"
)

// Valid reports whether p is a known selection policy
func (p SelectionPolicy) Valid() bool {
	switch p {
	case SelectionEdge, SelectionFavorites, SelectionUnderdogs, SelectionConfidence, SelectionMixed, SelectionOddsWeighted:
		return true
	}
	return false
}

// StakeNormalization controls whether a base stake is split across the legs of a parlay
type StakeNormalization string

const (
	NormalizePerLeg StakeNormalization = "perLeg"
	NormalizeNone   StakeNormalization = "none"
)

// Valid reports whether n is a known normalization
func (n StakeNormalization) Valid() bool {
	return n == NormalizePerLeg || n == NormalizeNone
}

// StrategyConfig holds the user-set parameters of one simulation run
type StrategyConfig struct {
	ParlayRisk    int                `json:"parlay_risk"`   // 1-10, maps to max legs
	BetSizeRisk   int                `json:"bet_size_risk"` // 1-10, maps to bankroll fraction
	NumBets       int                `json:"num_bets"`      // size of each ranked view
	Bankroll      decimal.Decimal    `json:"bankroll"`
	FixedAmount   decimal.Decimal    `json:"fixed_amount"` // fixedAmount policy only
	Staking       StakingPolicy      `json:"staking"`
	Selection     SelectionPolicy    `json:"selection"`
	Normalization StakeNormalization `json:"normalization"`
}

// LegCandidate is one selectable outcome for one fighter in one fight
type LegCandidate struct {
	Fighter            string  `json:"fighter"`
	Odds               int     `json:"odds"`
	Probability        float64 `json:"probability"`         // model probability (0-1]
	ImpliedProbability float64 `json:"implied_probability"` // market probability from odds
	FightIndex         int     `json:"fight_index"`
}

// Combination is a duplicate-free set of legs from distinct fights
type Combination struct {
	Legs        []LegCandidate `json:"legs"`
	DecimalOdds float64        `json:"decimal_odds"`
	Probability float64        `json:"probability"`
}

// LegCount returns the number of legs
func (c Combination) LegCount() int {
	return len(c.Legs)
}

// Key identifies the economic bet independently of leg order
func (c Combination) Key() string {
	parts := make([]string, len(c.Legs))
	for i, leg := range c.Legs {
		parts[i] = leg.Fighter + ":" + strconv.Itoa(leg.Odds)
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

// Fighters joins leg fighter names in leg order
func (c Combination) Fighters() string {
	names := make([]string, len(c.Legs))
	for i, leg := range c.Legs {
		names[i] = leg.Fighter
	}
	return strings.Join(names, " & ")
}

// PricedBet is a combination with a stake, expected value and payout
type PricedBet struct {
	Legs          []LegCandidate  `json:"legs"`
	Fighters      string          `json:"fighters"`
	AmericanOdds  int             `json:"american_odds"` // 0 when combined odds have no payout
	DecimalOdds   float64         `json:"decimal_odds"`
	Probability   float64         `json:"probability"`
	Stake         decimal.Decimal `json:"stake"`
	ExpectedValue decimal.Decimal `json:"expected_value"`
	Payout        decimal.Decimal `json:"payout"`
	LegCount      int             `json:"leg_count"`
}

// RunStats aggregates the expected-value view of a run
type RunStats struct {
	TotalBets           int             `json:"total_bets"`
	TotalCombinations   int             `json:"total_combinations"`
	Truncated           bool            `json:"truncated"`
	TotalStake          decimal.Decimal `json:"total_stake"`
	TotalExpectedValue  decimal.Decimal `json:"total_expected_value"`
	TotalExpectedPayout decimal.Decimal `json:"total_expected_payout"`
	MaxPayout           decimal.Decimal `json:"max_payout"`
	ROI                 decimal.Decimal `json:"roi"` // percent
}

// SimulationResult is the output of one simulate run
type SimulationResult struct {
	RunID           string         `json:"run_id"`
	CardID          string         `json:"card_id,omitempty"`
	Fights          []Fight        `json:"fights"`
	Config          StrategyConfig `json:"config"`
	ByExpectedValue []PricedBet    `json:"by_expected_value"`
	ByProbability   []PricedBet    `json:"by_probability"`
	Stats           RunStats       `json:"stats"`
	CreatedAt       time.Time      `json:"created_at"`
}

// BetOutcome flags whether a priced bet won given realized winners
type BetOutcome struct {
	Bet PricedBet `json:"bet"`
	Won bool      `json:"won"`
}

// ReconcileResult summarizes realized returns of a run
type ReconcileResult struct {
	RunID       string          `json:"run_id,omitempty"`
	Results     []BetOutcome    `json:"results"`
	TotalReturn decimal.Decimal `json:"total_return"`
	TotalStake  decimal.Decimal `json:"total_stake"`
	NetProfit   decimal.Decimal `json:"net_profit"`
	ROI         decimal.Decimal `json:"roi"` // percent
}

// EngineParams holds engine-wide limits
type EngineParams struct {
	MaxCombinations int // enumeration ceiling per run, 0 disables
}
