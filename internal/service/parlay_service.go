package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/parlay-engine-service/internal/metrics"
	"github.com/cypherlabdev/parlay-engine-service/internal/models"
	"github.com/cypherlabdev/parlay-engine-service/pkg/parlay"
)

// ServiceParams holds service-level limits
type ServiceParams struct {
	MaxFights int // cards are truncated to this many fights, 0 disables
}

// ParlayService orchestrates fight cards, simulation runs and reconciliation with caching
type ParlayService struct {
	engine Engine
	cache  Cache
	params ServiceParams
	now    func() time.Time
	logger zerolog.Logger
}

// NewParlayService creates a new parlay service
func NewParlayService(
	engine Engine,
	cache Cache,
	params ServiceParams,
	logger zerolog.Logger,
) *ParlayService {
	return &ParlayService{
		engine: engine,
		cache:  cache,
		params: params,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.With().Str("component", "parlay_service").Logger(),
	}
}

// UpsertCard stores a fight card, assigning an ID when it has none
func (s *ParlayService) UpsertCard(ctx context.Context, card *models.FightCard) (*models.FightCard, error) {
	if card == nil || len(card.Fights) == 0 {
		return nil, fmt.Errorf("%w: card has no fights", parlay.ErrInvalidFight)
	}
	if err := parlay.ValidateFights(card.Fights); err != nil {
		return nil, err
	}

	stored := *card
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.UpdatedAt = s.now()
	if s.params.MaxFights > 0 && len(stored.Fights) > s.params.MaxFights {
		s.logger.Warn().
			Str("card_id", stored.ID).
			Int("fights", len(stored.Fights)).
			Int("max_fights", s.params.MaxFights).
			Msg("card exceeds fight limit, truncating")
		stored.Fights = stored.Fights[:s.params.MaxFights]
	}

	if err := s.cache.SetCard(ctx, &stored); err != nil {
		return nil, fmt.Errorf("failed to store card: %w", err)
	}
	metrics.RecordCardUpsert(stored.Source)

	s.logger.Info().
		Str("card_id", stored.ID).
		Str("source", stored.Source).
		Int("fights", len(stored.Fights)).
		Msg("stored fight card")

	return &stored, nil
}

// GetCard retrieves a stored fight card
func (s *ParlayService) GetCard(ctx context.Context, id string) (*models.FightCard, error) {
	return s.cache.GetCard(ctx, id)
}

// SimulateCard runs a simulation over a stored fight card
func (s *ParlayService) SimulateCard(ctx context.Context, cardID string, probs []models.ProbabilityPair, cfg models.StrategyConfig) (*models.SimulationResult, error) {
	card, err := s.cache.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	result, err := s.simulate(ctx, card.Fights, probs, cfg)
	if err != nil {
		return nil, err
	}
	result.CardID = card.ID
	s.storeRun(ctx, result)
	return result, nil
}

// SimulateFights runs a simulation over an ad-hoc list of fights
func (s *ParlayService) SimulateFights(ctx context.Context, fights []models.Fight, probs []models.ProbabilityPair, cfg models.StrategyConfig) (*models.SimulationResult, error) {
	result, err := s.simulate(ctx, fights, probs, cfg)
	if err != nil {
		return nil, err
	}
	s.storeRun(ctx, result)
	return result, nil
}

func (s *ParlayService) simulate(_ context.Context, fights []models.Fight, probs []models.ProbabilityPair, cfg models.StrategyConfig) (*models.SimulationResult, error) {
	if len(fights) == 0 {
		return nil, fmt.Errorf("%w: no fights to simulate", parlay.ErrInvalidFight)
	}
	if s.params.MaxFights > 0 && len(fights) > s.params.MaxFights {
		return nil, fmt.Errorf("%w: %d fights exceeds the limit of %d", parlay.ErrInvalidFight, len(fights), s.params.MaxFights)
	}

	start := time.Now()
	result, err := s.engine.Simulate(fights, probs, cfg)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		if parlay.IsValidationError(err) {
			metrics.RecordSimulation("invalid", elapsed, 0, false)
		} else {
			metrics.RecordSimulation("error", elapsed, 0, false)
		}
		return nil, fmt.Errorf("simulation failed: %w", err)
	}
	metrics.RecordSimulation("ok", elapsed, result.Stats.TotalCombinations, result.Stats.Truncated)

	result.RunID = uuid.NewString()
	result.CreatedAt = s.now()

	s.logger.Info().
		Str("run_id", result.RunID).
		Int("fights", len(fights)).
		Int("combinations", result.Stats.TotalCombinations).
		Bool("truncated", result.Stats.Truncated).
		Str("total_stake", result.Stats.TotalStake.String()).
		Str("roi", result.Stats.ROI.String()).
		Msg("simulation complete")

	return result, nil
}

func (s *ParlayService) storeRun(ctx context.Context, result *models.SimulationResult) {
	if err := s.cache.SetRun(ctx, result); err != nil {
		metrics.RecordCacheError("set_run")
		s.logger.Warn().
			Err(err).
			Str("run_id", result.RunID).
			Msg("failed to cache simulation run")
		// Don't fail the request on cache errors
	}
}

// GetRun retrieves a stored simulation run
func (s *ParlayService) GetRun(ctx context.Context, runID string) (*models.SimulationResult, error) {
	return s.cache.GetRun(ctx, runID)
}

// Reconcile settles the expected-value view of a run against realized winners.
// winners holds one name per fight in card order.
func (s *ParlayService) Reconcile(ctx context.Context, runID string, winners []string) (*models.ReconcileResult, error) {
	run, err := s.cache.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	if err := checkWinners(run.Fights, winners); err != nil {
		metrics.RecordReconciliation("invalid")
		return nil, err
	}

	result, err := s.engine.Reconcile(run.ByExpectedValue, winners)
	if err != nil {
		metrics.RecordReconciliation("invalid")
		return nil, fmt.Errorf("reconciliation failed: %w", err)
	}
	result.RunID = run.RunID
	metrics.RecordReconciliation("ok")

	s.logger.Info().
		Str("run_id", run.RunID).
		Str("total_return", result.TotalReturn.String()).
		Str("net_profit", result.NetProfit.String()).
		Str("roi", result.ROI.String()).
		Msg("reconciled run")

	return result, nil
}

func checkWinners(fights []models.Fight, winners []string) error {
	if len(winners) != len(fights) {
		return fmt.Errorf("%w: got %d winners for %d fights", parlay.ErrMissingWinner, len(winners), len(fights))
	}
	for i, w := range winners {
		if w != fights[i].Fighter && w != fights[i].Opponent {
			return fmt.Errorf("%w: %q did not fight in fight %d", parlay.ErrMissingWinner, w, i)
		}
	}
	return nil
}

// Ready reports whether the backing cache is reachable
func (s *ParlayService) Ready(ctx context.Context) error {
	if err := s.cache.Ping(ctx); err != nil {
		return fmt.Errorf("cache unavailable: %w", err)
	}
	return nil
}

// IsNotFound reports whether err means a card or run does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
