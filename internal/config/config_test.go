package config

import (
	"math"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/parlay-engine-service/internal/models"
)

// writeConfigFile writes YAML content to a temporary file
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())
	return tmpFile.Name()
}

// TestLoadConfig_Defaults tests loading configuration with default values
func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig("")

	require.NoError(t, err)
	require.NotNil(t, config)

	// Verify server defaults
	assert.Equal(t, 8082, config.Server.Port)
	assert.Equal(t, 30*time.Second, config.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, config.Server.WriteTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, config.Server.AllowedOrigins)

	// Verify Kafka defaults
	assert.False(t, config.Kafka.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, config.Kafka.Brokers)
	assert.Equal(t, "fight_odds", config.Kafka.Topic)
	assert.Equal(t, "parlay-engine", config.Kafka.GroupID)

	// Verify Redis defaults
	assert.True(t, config.Redis.Enabled)
	assert.Equal(t, "localhost:6379", config.Redis.Addr)
	assert.Equal(t, 24*time.Hour, config.Redis.TTL)

	// Verify engine and strategy defaults
	assert.Equal(t, 50000, config.Engine.MaxCombinations)
	assert.Equal(t, 10, config.Engine.MaxFights)
	assert.Equal(t, 5, config.Strategy.ParlayRisk)
	assert.Equal(t, 5, config.Strategy.BetSizeRisk)
	assert.Equal(t, 5, config.Strategy.NumBets)
	assert.Equal(t, 1000.0, config.Strategy.Bankroll)
	assert.Equal(t, "fixedRisk", config.Strategy.Staking)
	assert.Equal(t, "edge", config.Strategy.Selection)
	assert.Equal(t, "perLeg", config.Strategy.Normalization)

	// Verify feed defaults
	assert.False(t, config.Feed.Enabled)
	assert.Equal(t, "mma_mixed_martial_arts", config.Feed.Sport)
	assert.Equal(t, "Bovada", config.Feed.Bookmaker)
	assert.Equal(t, "@every 15m", config.Feed.Schedule)
	assert.Equal(t, 3, config.Feed.MaxRetries)

	// Verify logging defaults
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)

	assert.NoError(t, Validate(config))
}

// TestLoadConfig_WithFile tests loading configuration from file
func TestLoadConfig_WithFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
  read_timeout: 45s
  write_timeout: 45s

kafka:
  enabled: true
  brokers:
    - broker1:9092
    - broker2:9092
  topic: test_topic
  group_id: test_group

redis:
  addr: redis:6379
  password: test_password
  db: 1
  ttl: 30m

engine:
  max_combinations: 1000
  max_fights: 12

strategy:
  parlay_risk: 7
  bet_size_risk: 2
  num_bets: 10
  bankroll: 2500
  staking: quarterKelly
  selection: underdogs
  normalization: none

logging:
  level: debug
  format: console
`)

	config, err := LoadConfig(path)

	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, 45*time.Second, config.Server.ReadTimeout)
	assert.True(t, config.Kafka.Enabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, config.Kafka.Brokers)
	assert.Equal(t, "test_topic", config.Kafka.Topic)
	assert.Equal(t, "redis:6379", config.Redis.Addr)
	assert.Equal(t, "test_password", config.Redis.Password)
	assert.Equal(t, 1, config.Redis.DB)
	assert.Equal(t, 30*time.Minute, config.Redis.TTL)
	assert.Equal(t, 1000, config.Engine.MaxCombinations)
	assert.Equal(t, 12, config.Engine.MaxFights)
	assert.Equal(t, 7, config.Strategy.ParlayRisk)
	assert.Equal(t, 2500.0, config.Strategy.Bankroll)
	assert.Equal(t, "quarterKelly", config.Strategy.Staking)
	assert.Equal(t, "underdogs", config.Strategy.Selection)
	assert.Equal(t, "none", config.Strategy.Normalization)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "console", config.Logging.Format)

	assert.NoError(t, Validate(config))
}

// TestLoadConfig_EnvOverride tests environment variable overrides
func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("PARLAY_ENGINE_SERVER_PORT", "7070")
	t.Setenv("PARLAY_ENGINE_STRATEGY_STAKING", "kelly")
	t.Setenv("PARLAY_ENGINE_REDIS_ENABLED", "false")

	config, err := LoadConfig("")

	require.NoError(t, err)
	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "kelly", config.Strategy.Staking)
	assert.False(t, config.Redis.Enabled)
}

// TestLoadConfig_MissingFile tests loading a file that does not exist
func TestLoadConfig_MissingFile(t *testing.T) {
	config, err := LoadConfig("/nonexistent/config.yaml")

	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read config file")
}

// TestValidate_Invalid tests that bad values are rejected
func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"parlay risk", func(c *Config) { c.Strategy.ParlayRisk = 11 }, "ParlayRisk"},
		{"bankroll", func(c *Config) { c.Strategy.Bankroll = 0 }, "Bankroll"},
		{"staking", func(c *Config) { c.Strategy.Staking = "martingale" }, "Staking"},
		{"selection", func(c *Config) { c.Strategy.Selection = "coinflip" }, "Selection"},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, "Level"},
		{"kafka brokers", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }, "Brokers"},
		{"feed api key", func(c *Config) { c.Feed.Enabled = true }, "APIKey"},
		{"feed schedule", func(c *Config) { c.Feed.Enabled = true; c.Feed.APIKey = "k"; c.Feed.Schedule = "whenever" }, "schedule"},
		{"fixed amount", func(c *Config) { c.Strategy.Staking = "fixedAmount"; c.Strategy.FixedAmount = 0 }, "fixed_amount"},
		{"infinite bankroll", func(c *Config) { c.Strategy.Bankroll = math.Inf(1) }, "must be finite"},
		{"infinite fixed amount", func(c *Config) { c.Strategy.FixedAmount = math.Inf(1) }, "must be finite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfig("")
			require.NoError(t, err)
			tt.mutate(config)

			err = Validate(config)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// TestToStrategyConfig tests conversion to the model strategy
func TestToStrategyConfig(t *testing.T) {
	cfg := StrategyConfig{
		ParlayRisk:    3,
		BetSizeRisk:   4,
		NumBets:       8,
		Bankroll:      500.50,
		FixedAmount:   20,
		Staking:       "halfKelly",
		Selection:     "mixed",
		Normalization: "perLeg",
	}

	strategy := cfg.ToStrategyConfig()

	assert.Equal(t, 3, strategy.ParlayRisk)
	assert.Equal(t, 4, strategy.BetSizeRisk)
	assert.Equal(t, 8, strategy.NumBets)
	assert.True(t, decimal.NewFromFloat(500.50).Equal(strategy.Bankroll))
	assert.True(t, decimal.NewFromInt(20).Equal(strategy.FixedAmount))
	assert.Equal(t, models.StakingHalfKelly, strategy.Staking)
	assert.Equal(t, models.SelectionMixed, strategy.Selection)
	assert.Equal(t, models.NormalizePerLeg, strategy.Normalization)
}

// TestToEngineParams tests conversion to engine parameters
func TestToEngineParams(t *testing.T) {
	cfg := EngineConfig{MaxCombinations: 1234, MaxFights: 10}

	assert.Equal(t, models.EngineParams{MaxCombinations: 1234}, cfg.ToEngineParams())
}
