package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/parlay-engine-service/internal/models"
	"github.com/cypherlabdev/parlay-engine-service/internal/service"
)

const pollSource = "odds-api"

// PollerConfig holds feed polling configuration
type PollerConfig struct {
	Schedule string        // cron spec, e.g., "@every 15m"
	CardID   string        // card the fetched fights are stored under
	Timeout  time.Duration // per poll
}

// Poller fetches odds on a cron schedule and upserts them as one fight card
type Poller struct {
	cron    *cron.Cron
	fetcher Fetcher
	store   service.CardStore
	config  PollerConfig
	logger  zerolog.Logger

	mu      sync.Mutex
	running bool
}

// NewPoller creates a new feed poller
func NewPoller(config PollerConfig, fetcher Fetcher, store service.CardStore, logger zerolog.Logger) *Poller {
	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}
	return &Poller{
		cron:    cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		fetcher: fetcher,
		store:   store,
		config:  config,
		logger:  logger.With().Str("component", "feed_poller").Logger(),
	}
}

// Start schedules polling and runs the first poll immediately
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("poller already running")
	}

	if _, err := p.cron.AddFunc(p.config.Schedule, func() { p.run(ctx) }); err != nil {
		return fmt.Errorf("invalid poll schedule %q: %w", p.config.Schedule, err)
	}
	p.cron.Start()
	p.running = true

	p.logger.Info().
		Str("schedule", p.config.Schedule).
		Str("card_id", p.config.CardID).
		Msg("started odds poller")

	go p.run(ctx)
	return nil
}

// Stop halts scheduling and waits for a poll in flight or ctx expiry
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}
	p.running = false

	select {
	case <-p.cron.Stop().Done():
		p.logger.Info().Msg("stopped odds poller")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("poller stop: %w", ctx.Err())
	}
}

func (p *Poller) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := p.PollOnce(ctx); err != nil {
		p.logger.Error().Err(err).Msg("odds poll failed")
	}
}

// PollOnce fetches the current odds and stores them
func (p *Poller) PollOnce(ctx context.Context) (*models.FightCard, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	fights, err := p.fetcher.FetchFights(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fights: %w", err)
	}
	if len(fights) == 0 {
		p.logger.Info().Msg("odds feed returned no fights, keeping stored card")
		return nil, nil
	}

	card, err := p.store.UpsertCard(ctx, &models.FightCard{
		ID:     p.config.CardID,
		Source: pollSource,
		Fights: fights,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store card: %w", err)
	}

	p.logger.Info().
		Str("card_id", card.ID).
		Int("fights", len(card.Fights)).
		Msg("polled odds")

	return card, nil
}
