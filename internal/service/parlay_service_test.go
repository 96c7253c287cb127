package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cypherlabdev/parlay-engine-service/internal/cache"
	"github.com/cypherlabdev/parlay-engine-service/internal/mocks"
	"github.com/cypherlabdev/parlay-engine-service/internal/models"
	"github.com/cypherlabdev/parlay-engine-service/pkg/parlay"
)

// testParlayServiceSetup is a helper struct to hold test dependencies
type testParlayServiceSetup struct {
	service    *ParlayService
	mockEngine *mocks.MockEngine
	mockCache  *mocks.MockCache
	ctrl       *gomock.Controller
	ctx        context.Context
	now        time.Time
}

// setupTestParlayService creates a test service with mocked dependencies
func setupTestParlayService(t *testing.T, params ServiceParams) *testParlayServiceSetup {
	ctrl := gomock.NewController(t)

	mockEngine := mocks.NewMockEngine(ctrl)
	mockCache := mocks.NewMockCache(ctrl)
	svc := NewParlayService(mockEngine, mockCache, params, zerolog.Nop())

	now := time.Date(2024, 4, 13, 20, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return &testParlayServiceSetup{
		service:    svc,
		mockEngine: mockEngine,
		mockCache:  mockCache,
		ctrl:       ctrl,
		ctx:        context.Background(),
		now:        now,
	}
}

// cleanup cleans up test resources
func (s *testParlayServiceSetup) cleanup() {
	s.ctrl.Finish()
}

func testFights() []models.Fight {
	return []models.Fight{
		{Fighter: "Jon Jones", Opponent: "Stipe Miocic", FighterOdds: -200, OpponentOdds: 150},
		{Fighter: "Alex Pereira", Opponent: "Jamahal Hill", FighterOdds: -130, OpponentOdds: 110},
		{Fighter: "Zhang Weili", Opponent: "Yan Xiaonan", FighterOdds: -500, OpponentOdds: 375},
	}
}

func testStrategy() models.StrategyConfig {
	return models.StrategyConfig{
		ParlayRisk:  5,
		BetSizeRisk: 5,
		NumBets:     5,
		Bankroll:    decimal.NewFromInt(1000),
		Staking:     models.StakingFixedRisk,
		Selection:   models.SelectionEdge,
	}
}

// TestNewParlayService tests service creation
func TestNewParlayService(t *testing.T) {
	setup := setupTestParlayService(t, ServiceParams{MaxFights: 10})
	defer setup.cleanup()

	assert.NotNil(t, setup.service)
	assert.Equal(t, 10, setup.service.params.MaxFights)
}

// TestUpsertCard_AssignsID tests that a card without an ID gets one
func TestUpsertCard_AssignsID(t *testing.T) {
	setup := setupTestParlayService(t, ServiceParams{MaxFights: 10})
	defer setup.cleanup()

	var cached *models.FightCard
	setup.mockCache.EXPECT().
		SetCard(setup.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, card *models.FightCard) error {
			cached = card
			return nil
		})

	card, err := setup.service.UpsertCard(setup.ctx, &models.FightCard{Source: "http", Fights: testFights()})

	require.NoError(t, err)
	assert.NotEmpty(t, card.ID)
	assert.Equal(t, setup.now, card.UpdatedAt)
	assert.Len(t, card.Fights, 3)
	assert.Equal(t, card, cached)
}

// TestUpsertCard_KeepsID tests that an existing ID is preserved
func TestUpsertCard_KeepsID(t *testing.T) {
	setup := setupTestParlayService(t, ServiceParams{})
	defer setup.cleanup()

	setup.mockCache.EXPECT().SetCard(setup.ctx, gomock.Any()).Return(nil)

	card, err := setup.service.UpsertCard(setup.ctx, &models.FightCard{ID: "ufc-300", Fights: testFights()})

	require.NoError(t, err)
	assert.Equal(t, "ufc-300", card.ID)
}

// TestUpsertCard_Truncates tests the per-card fight limit
func TestUpsertCard_Truncates(t *testing.T) {
	setup := setupTestParlayService(t, ServiceParams{MaxFights: 2})
	defer setup.cleanup()

	setup.mockCache.EXPECT().SetCard(setup.ctx, gomock.Any()).Return(nil)

	card, err := setup.service.UpsertCard(setup.ctx, &models.FightCard{ID: "c", Fights: testFights()})

	require.NoError(t, err)
	require.Len(t, card.Fights, 2)
	assert.Equal(t, "Alex Pereira", card.Fights[1].Fighter)
}

// TestUpsertCard_Invalid tests rejection before any cache write
func TestUpsertCard_Invalid(t *testing.T) {
	setup := setupTestParlayService(t, ServiceParams{})
	defer setup.cleanup()

	_, err := setup.service.UpsertCard(setup.ctx, &models.FightCard{ID: "empty"})
	assert.ErrorIs(t, err, parlay.ErrInvalidFight)

	bad := testFights()
	bad[1].OpponentOdds = 99
	_, err = setup.service.UpsertCard(setup.ctx, &models.FightCard{ID: "bad", Fights: bad})
	assert.ErrorIs(t, err, parlay.ErrInvalidOdds)
}

// TestUpsertCard_CacheFailure tests that a card that cannot be stored is an error
func TestUpsertCard_CacheFailure(t *testing.T) {
	setup := setupTestParlayService(t, ServiceParams{})
	defer setup.cleanup()

	setup.mockCache.EXPECT().SetCard(setup.ctx, gomock.Any()).Return(errors.New("redis down"))

	card, err := setup.service.UpsertCard(setup.ctx, &models.FightCard{ID: "c", Fights: testFights()})

	assert.Error(t, err)
	assert.Nil(t, card)
	assert.Contains(t, err.Error(), "failed to store card")
}

// TestSimulateCard_Success tests a simulation over a stored card
func TestSimulateCard_Success(t *testing.T) {
	setup := setupTestParlayService(t, ServiceParams{MaxFights: 10})
	defer setup.cleanup()

	card := &models.FightCard{ID: "ufc-300", Fights: testFights()}
	probs := []models.ProbabilityPair{{70, 30}, {45, 55}, {80, 20}}
	cfg := testStrategy()
	engineResult := &models.SimulationResult{
		Fights: card.Fights,
		Config: cfg,
		Stats:  models.RunStats{TotalCombinations: 12},
	}

	setup.mockCache.EXPECT().GetCard(setup.ctx, "ufc-300").Return(card, nil)
	setup.mockEngine.EXPECT().Simulate(card.Fights, probs, cfg).Return(engineResult, nil)
	setup.mockCache.EXPECT().SetRun(setup.ctx, engineResult).Return(nil)

	result, err := setup.service.SimulateCard(setup.ctx, "ufc-300", probs, cfg)

	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "ufc-300", result.CardID)
	assert.Equal(t, setup.now, result.CreatedAt)
	assert.Equal(t, 12, result.Stats.TotalCombinations)
}

// TestSimulateCard_NotFound tests a missing card
func TestSimulateCard_NotFound(t *testing.T) {
	setup := setupTestParlayService(t, ServiceParams{})
	defer setup.cleanup()

	setup.mockCache.EXPECT().
		GetCard(setup.ctx, "missing").
		Return(nil, fmt.Errorf("card missing: %w", models.ErrNotFound))

	result, err := setup.service.SimulateCard(setup.ctx, "missing", nil, testStrategy())

	assert.True(t, IsNotFound(err))
	assert.Nil(t, result)
}

// TestSimulateFights_CacheFailure tests that run caching errors do not fail the request
func TestSimulateFights_CacheFailure(t *testing.T) {
	setup := setupTestParlayService(t, ServiceParams{})
	defer setup.cleanup()

	fights := testFights()
	setup.mockEngine.EXPECT().
		Simulate(fights, nil, gomock.Any()).
		Return(&models.SimulationResult{Fights: fights}, nil)
	setup.mockCache.EXPECT().SetRun(setup.ctx, gomock.Any()).Return(errors.New("redis down"))

	result, err := setup.service.SimulateFights(setup.ctx, fights, nil, testStrategy())

	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	assert.Empty(t, result.CardID)
}

// TestSimulateFights_EngineError tests that engine validation errors pass through
func TestSimulateFights_EngineError(t *testing.T) {
	setup := setupTestParlayService(t, ServiceParams{})
	defer setup.cleanup()

	setup.mockEngine.EXPECT().
		Simulate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: bankroll must be positive", parlay.ErrInvalidConfig))

	result, err := setup.service.SimulateFights(setup.ctx, testFights(), nil, testStrategy())

	assert.ErrorIs(t, err, parlay.ErrInvalidConfig)
	assert.True(t, parlay.IsValidationError(err))
	assert.Nil(t, result)
}

// TestSimulateFights_Limits tests empty and oversized fight lists
func TestSimulateFights_Limits(t *testing.T) {
	setup := setupTestParlayService(t, ServiceParams{MaxFights: 2})
	defer setup.cleanup()

	_, err := setup.service.SimulateFights(setup.ctx, nil, nil, testStrategy())
	assert.ErrorIs(t, err, parlay.ErrInvalidFight)

	_, err = setup.service.SimulateFights(setup.ctx, testFights(), nil, testStrategy())
	assert.ErrorIs(t, err, parlay.ErrInvalidFight)
	assert.Contains(t, err.Error(), "exceeds the limit of 2")
}

// TestReconcile_Success tests settlement of a stored run
func TestReconcile_Success(t *testing.T) {
	setup := setupTestParlayService(t, ServiceParams{})
	defer setup.cleanup()

	run := &models.SimulationResult{
		RunID:           "run-1",
		Fights:          testFights(),
		ByExpectedValue: []models.PricedBet{{Fighters: "Stipe Miocic"}},
	}
	winners := []string{"Stipe Miocic", "Alex Pereira", "Zhang Weili"}

	setup.mockCache.EXPECT().GetRun(setup.ctx, "run-1").Return(run, nil)
	setup.mockEngine.EXPECT().
		Reconcile(run.ByExpectedValue, winners).
		Return(&models.ReconcileResult{NetProfit: decimal.NewFromInt(15)}, nil)

	result, err := setup.service.Reconcile(setup.ctx, "run-1", winners)

	require.NoError(t, err)
	assert.Equal(t, "run-1", result.RunID)
	assert.True(t, decimal.NewFromInt(15).Equal(result.NetProfit))
}

// TestReconcile_BadWinners tests winner checks against the run's fights
func TestReconcile_BadWinners(t *testing.T) {
	tests := []struct {
		name    string
		winners []string
	}{
		{"too few", []string{"Jon Jones", "Alex Pereira"}},
		{"too many", []string{"Jon Jones", "Alex Pereira", "Zhang Weili", "Extra"}},
		{"not in fight", []string{"Jon Jones", "Zhang Weili", "Yan Xiaonan"}},
		{"blank", []string{"Jon Jones", "", "Zhang Weili"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup := setupTestParlayService(t, ServiceParams{})
			defer setup.cleanup()

			setup.mockCache.EXPECT().
				GetRun(setup.ctx, "run-1").
				Return(&models.SimulationResult{RunID: "run-1", Fights: testFights()}, nil)

			result, err := setup.service.Reconcile(setup.ctx, "run-1", tt.winners)

			assert.ErrorIs(t, err, parlay.ErrMissingWinner)
			assert.Nil(t, result)
		})
	}
}

// TestReconcile_RunNotFound tests a missing run
func TestReconcile_RunNotFound(t *testing.T) {
	setup := setupTestParlayService(t, ServiceParams{})
	defer setup.cleanup()

	setup.mockCache.EXPECT().
		GetRun(setup.ctx, "nope").
		Return(nil, fmt.Errorf("run nope: %w", models.ErrNotFound))

	_, err := setup.service.Reconcile(setup.ctx, "nope", []string{"Jon Jones"})

	assert.True(t, IsNotFound(err))
}

// TestReady tests the cache readiness check
func TestReady(t *testing.T) {
	setup := setupTestParlayService(t, ServiceParams{})
	defer setup.cleanup()

	setup.mockCache.EXPECT().Ping(setup.ctx).Return(nil)
	assert.NoError(t, setup.service.Ready(setup.ctx))

	setup.mockCache.EXPECT().Ping(setup.ctx).Return(errors.New("refused"))
	assert.ErrorContains(t, setup.service.Ready(setup.ctx), "cache unavailable")
}

// TestParlayService_EndToEnd tests the service over the real engine and memory cache
func TestParlayService_EndToEnd(t *testing.T) {
	ctx := context.Background()
	engine := parlay.NewEngine(models.EngineParams{MaxCombinations: 1000}, zerolog.Nop())
	svc := NewParlayService(engine, cache.NewMemoryCache(time.Hour, zerolog.Nop()), ServiceParams{MaxFights: 10}, zerolog.Nop())

	card, err := svc.UpsertCard(ctx, &models.FightCard{
		ID:     "even",
		Source: "test",
		Fights: []models.Fight{
			{Fighter: "A", Opponent: "B", FighterOdds: 150, OpponentOdds: 150},
			{Fighter: "C", Opponent: "D", FighterOdds: 150, OpponentOdds: 150},
		},
	})
	require.NoError(t, err)

	cfg := testStrategy()
	cfg.ParlayRisk = 3
	cfg.NumBets = 20
	run, err := svc.SimulateCard(ctx, card.ID, nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, 8, run.Stats.TotalCombinations)

	stored, err := svc.GetRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, run.RunID, stored.RunID)

	result, err := svc.Reconcile(ctx, run.RunID, []string{"A", "D"})
	require.NoError(t, err)
	// singles pay 62.5 each, A & D pays 78.13 on 12.5
	assert.True(t, decimal.RequireFromString("203.13").Equal(result.TotalReturn))
	assert.True(t, decimal.RequireFromString("150").Equal(result.TotalStake))
}
