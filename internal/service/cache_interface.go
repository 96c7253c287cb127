package service

import (
	"context"

	"github.com/cypherlabdev/parlay-engine-service/internal/models"
)

// Cache is an interface that abstracts card and run storage
// This allows for easier testing and mocking
type Cache interface {
	SetCard(ctx context.Context, card *models.FightCard) error
	GetCard(ctx context.Context, id string) (*models.FightCard, error)
	SetRun(ctx context.Context, run *models.SimulationResult) error
	GetRun(ctx context.Context, id string) (*models.SimulationResult, error)
	Ping(ctx context.Context) error
	Close() error
}
