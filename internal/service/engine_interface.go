package service

import (
	"context"

	"github.com/cypherlabdev/parlay-engine-service/internal/models"
)

// Engine is an interface that abstracts parlay generation and settlement
// This allows for easier testing and mocking
type Engine interface {
	Simulate(fights []models.Fight, probs []models.ProbabilityPair, cfg models.StrategyConfig) (*models.SimulationResult, error)
	Reconcile(bets []models.PricedBet, winners []string) (*models.ReconcileResult, error)
}

// CardStore accepts fight cards from ingestion sources
type CardStore interface {
	UpsertCard(ctx context.Context, card *models.FightCard) (*models.FightCard, error)
}
