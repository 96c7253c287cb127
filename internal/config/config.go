package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/cypherlabdev/parlay-engine-service/internal/models"
)

// Config holds all configuration for parlay-engine-service
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers" validate:"required_if=Enabled true"`
	Topic   string   `mapstructure:"topic" validate:"required_if=Enabled true"` // fight card updates
	GroupID string   `mapstructure:"group_id"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"` // false keeps cards and runs in process memory
	Addr     string        `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"min=0"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gt=0"`
}

// EngineConfig holds engine limits
type EngineConfig struct {
	MaxCombinations int `mapstructure:"max_combinations" validate:"min=0"`
	MaxFights       int `mapstructure:"max_fights" validate:"min=1"`
}

// StrategyConfig holds the default strategy applied to requests that omit fields
type StrategyConfig struct {
	ParlayRisk    int     `mapstructure:"parlay_risk" validate:"min=1,max=10"`
	BetSizeRisk   int     `mapstructure:"bet_size_risk" validate:"min=1,max=10"`
	NumBets       int     `mapstructure:"num_bets" validate:"min=1"`
	Bankroll      float64 `mapstructure:"bankroll" validate:"gt=0"`
	FixedAmount   float64 `mapstructure:"fixed_amount" validate:"gte=0"`
	Staking       string  `mapstructure:"staking" validate:"staking"`
	Selection     string  `mapstructure:"selection" validate:"selection"`
	Normalization string  `mapstructure:"normalization" validate:"oneof=perLeg none"`
}

// FeedConfig holds odds API polling configuration
type FeedConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	BaseURL    string        `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey     string        `mapstructure:"api_key" validate:"required_if=Enabled true"`
	Sport      string        `mapstructure:"sport"`
	Bookmaker  string        `mapstructure:"bookmaker"`
	CardID     string        `mapstructure:"card_id"`
	Schedule   string        `mapstructure:"schedule"`
	RateLimit  float64       `mapstructure:"rate_limit" validate:"gt=0"` // requests per second
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxRetries int           `mapstructure:"max_retries" validate:"min=0"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8082)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "fight_odds")
	v.SetDefault("kafka.group_id", "parlay-engine")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("engine.max_combinations", 50000)
	v.SetDefault("engine.max_fights", 10)

	v.SetDefault("strategy.parlay_risk", 5)
	v.SetDefault("strategy.bet_size_risk", 5)
	v.SetDefault("strategy.num_bets", 5)
	v.SetDefault("strategy.bankroll", 1000.0)
	v.SetDefault("strategy.fixed_amount", 10.0)
	v.SetDefault("strategy.staking", string(models.StakingFixedRisk))
	v.SetDefault("strategy.selection", string(models.SelectionEdge))
	v.SetDefault("strategy.normalization", string(models.NormalizePerLeg))

	v.SetDefault("feed.enabled", false)
	v.SetDefault("feed.base_url", "https://api.the-odds-api.com")
	v.SetDefault("feed.api_key", "")
	v.SetDefault("feed.sport", "mma_mixed_martial_arts")
	v.SetDefault("feed.bookmaker", "Bovada")
	v.SetDefault("feed.card_id", "upcoming")
	v.SetDefault("feed.schedule", "@every 15m")
	v.SetDefault("feed.rate_limit", 1.0)
	v.SetDefault("feed.timeout", 30*time.Second)
	v.SetDefault("feed.max_retries", 3)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	v.SetEnvPrefix("PARLAY_ENGINE")
	v.AutomaticEnv()
	// Replace . with _ for environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal to struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// ToStrategyConfig converts config defaults to a model strategy
func (c *StrategyConfig) ToStrategyConfig() models.StrategyConfig {
	return models.StrategyConfig{
		ParlayRisk:    c.ParlayRisk,
		BetSizeRisk:   c.BetSizeRisk,
		NumBets:       c.NumBets,
		Bankroll:      decimal.NewFromFloat(c.Bankroll),
		FixedAmount:   decimal.NewFromFloat(c.FixedAmount),
		Staking:       models.StakingPolicy(c.Staking),
		Selection:     models.SelectionPolicy(c.Selection),
		Normalization: models.StakeNormalization(c.Normalization),
	}
}

// ToEngineParams converts config to engine parameters
func (c *EngineConfig) ToEngineParams() models.EngineParams {
	return models.EngineParams{
		MaxCombinations: c.MaxCombinations,
	}
}
