package models

import (
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a card or run does not exist
var ErrNotFound = errors.New("not found")

// Fight represents one scheduled matchup with American odds for each side
type Fight struct {
	Fighter      string    `json:"fighter"`
	Opponent     string    `json:"opponent"`
	FighterOdds  int       `json:"fighter_odds"`  // American odds, e.g. -200
	OpponentOdds int       `json:"opponent_odds"` // American odds, e.g. +150
	EventTime    time.Time `json:"event_time,omitempty"`
	Bookmaker    string    `json:"bookmaker,omitempty"`
}

// FightCard is a named list of fights supplied by an ingestion source
type FightCard struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"` // http, kafka, odds-api, csv
	Fights    []Fight   `json:"fights"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProbabilityPair holds model win probabilities for Fighter and Opponent as 0-100 integers
type ProbabilityPair [2]int

// EvenProbabilities returns a 50/50 pair for every fight
func EvenProbabilities(n int) []ProbabilityPair {
	probs := make([]ProbabilityPair, n)
	for i := range probs {
		probs[i] = ProbabilityPair{50, 50}
	}
	return probs
}

// KafkaFightCardMessage represents a fight card published on the odds topic
type KafkaFightCardMessage struct {
	CardID    string    `json:"card_id"`
	Source    string    `json:"source"`
	Fights    []Fight   `json:"fights"`
	Timestamp time.Time `json:"timestamp"`
}
