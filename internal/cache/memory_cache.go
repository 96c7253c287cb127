package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/parlay-engine-service/internal/models"
)

// MemoryCache keeps fight cards and runs in process memory.
// Used when Redis is disabled and by the CLI.
type MemoryCache struct {
	store  *gocache.Cache
	logger zerolog.Logger
}

// NewMemoryCache creates an in-process cache whose entries expire after ttl
func NewMemoryCache(ttl time.Duration, logger zerolog.Logger) *MemoryCache {
	return &MemoryCache{
		store:  gocache.New(ttl, ttl*2),
		logger: logger.With().Str("component", "memory_cache").Logger(),
	}
}

// SetCard stores a copy of the card
func (c *MemoryCache) SetCard(_ context.Context, card *models.FightCard) error {
	stored := *card
	stored.Fights = append([]models.Fight(nil), card.Fights...)
	c.store.SetDefault(cardKey(card.ID), &stored)

	c.logger.Debug().Str("card_id", card.ID).Int("fights", len(card.Fights)).Msg("stored fight card")
	return nil
}

// GetCard returns a copy of a stored card
func (c *MemoryCache) GetCard(_ context.Context, id string) (*models.FightCard, error) {
	v, ok := c.store.Get(cardKey(id))
	if !ok {
		return nil, fmt.Errorf("card %s: %w", id, models.ErrNotFound)
	}
	card := *v.(*models.FightCard)
	card.Fights = append([]models.Fight(nil), card.Fights...)
	return &card, nil
}

// SetRun stores a simulation result. Runs are not mutated after creation.
func (c *MemoryCache) SetRun(_ context.Context, run *models.SimulationResult) error {
	c.store.SetDefault(runKey(run.RunID), run)

	c.logger.Debug().Str("run_id", run.RunID).Msg("stored simulation run")
	return nil
}

// GetRun returns a stored simulation result
func (c *MemoryCache) GetRun(_ context.Context, id string) (*models.SimulationResult, error) {
	v, ok := c.store.Get(runKey(id))
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, models.ErrNotFound)
	}
	return v.(*models.SimulationResult), nil
}

// Ping always succeeds
func (c *MemoryCache) Ping(context.Context) error {
	return nil
}

// Close drops every entry
func (c *MemoryCache) Close() error {
	c.store.Flush()
	return nil
}
