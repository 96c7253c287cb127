package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/parlay-engine-service/internal/models"
)

// RedisCache stores fight cards and simulation runs in Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// RedisCacheConfig holds Redis cache configuration
type RedisCacheConfig struct {
	Addr     string // e.g., "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // e.g., 24 * time.Hour
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(config RedisCacheConfig, logger zerolog.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &RedisCache{
		client: client,
		ttl:    config.TTL,
		logger: logger.With().Str("component", "redis_cache").Logger(),
	}
}

func cardKey(id string) string { return "card:" + id }
func runKey(id string) string  { return "run:" + id }

// SetCard caches a fight card under card:{id}
func (c *RedisCache) SetCard(ctx context.Context, card *models.FightCard) error {
	key := cardKey(card.ID)
	if err := c.set(ctx, key, card); err != nil {
		return fmt.Errorf("failed to cache card %s: %w", card.ID, err)
	}

	c.logger.Debug().
		Str("key", key).
		Int("fights", len(card.Fights)).
		Dur("ttl", c.ttl).
		Msg("cached fight card")

	return nil
}

// GetCard retrieves a cached fight card
func (c *RedisCache) GetCard(ctx context.Context, id string) (*models.FightCard, error) {
	var card models.FightCard
	if err := c.get(ctx, cardKey(id), &card); err != nil {
		return nil, fmt.Errorf("card %s: %w", id, err)
	}
	return &card, nil
}

// SetRun caches a simulation result under run:{id}
func (c *RedisCache) SetRun(ctx context.Context, run *models.SimulationResult) error {
	key := runKey(run.RunID)
	if err := c.set(ctx, key, run); err != nil {
		return fmt.Errorf("failed to cache run %s: %w", run.RunID, err)
	}

	c.logger.Debug().
		Str("key", key).
		Int("bets", len(run.ByExpectedValue)).
		Dur("ttl", c.ttl).
		Msg("cached simulation run")

	return nil
}

// GetRun retrieves a cached simulation result
func (c *RedisCache) GetRun(ctx context.Context, id string) (*models.SimulationResult, error) {
	var run models.SimulationResult
	if err := c.get(ctx, runKey(id), &run); err != nil {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}
	return &run, nil
}

func (c *RedisCache) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in Redis: %w", err)
	}
	return nil
}

func (c *RedisCache) get(ctx context.Context, key string, v any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.ErrNotFound
	} else if err != nil {
		return fmt.Errorf("failed to get from Redis: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal: %w", err)
	}
	return nil
}

// Ping checks Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
