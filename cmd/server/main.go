package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cypherlabdev/parlay-engine-service/internal/cache"
	"github.com/cypherlabdev/parlay-engine-service/internal/config"
	"github.com/cypherlabdev/parlay-engine-service/internal/feed"
	httpHandler "github.com/cypherlabdev/parlay-engine-service/internal/handler/http"
	"github.com/cypherlabdev/parlay-engine-service/internal/messaging"
	"github.com/cypherlabdev/parlay-engine-service/internal/metrics"
	"github.com/cypherlabdev/parlay-engine-service/internal/service"
	"github.com/cypherlabdev/parlay-engine-service/pkg/parlay"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("starting parlay-engine-service")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := newCache(ctx, cfg, logger)
	defer store.Close()

	engine := parlay.NewEngine(cfg.Engine.ToEngineParams(), logger)
	logger.Info().Int("max_combinations", cfg.Engine.MaxCombinations).Msg("parlay engine initialized")

	parlayService := service.NewParlayService(engine, store, service.ServiceParams{MaxFights: cfg.Engine.MaxFights}, logger)

	// Kafka consumer for fight card updates
	if cfg.Kafka.Enabled {
		consumer := messaging.NewKafkaConsumer(
			messaging.KafkaConsumerConfig{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.Topic,
				GroupID: cfg.Kafka.GroupID,
			},
			parlayService,
			logger,
		)
		defer consumer.Close()

		go func() {
			if err := consumer.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("Kafka consumer failed")
			}
		}()
	}

	// Odds API poller
	var poller *feed.Poller
	if cfg.Feed.Enabled {
		client := feed.NewOddsAPIClient(feed.OddsAPIConfig{
			BaseURL:    cfg.Feed.BaseURL,
			APIKey:     cfg.Feed.APIKey,
			Sport:      cfg.Feed.Sport,
			Bookmaker:  cfg.Feed.Bookmaker,
			RateLimit:  cfg.Feed.RateLimit,
			Timeout:    cfg.Feed.Timeout,
			MaxRetries: cfg.Feed.MaxRetries,
		}, logger)
		poller = feed.NewPoller(feed.PollerConfig{
			Schedule: cfg.Feed.Schedule,
			CardID:   cfg.Feed.CardID,
			Timeout:  cfg.Feed.Timeout,
		}, client, parlayService, logger)
		if err := poller.Start(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to start odds poller")
		}
	}

	handler := httpHandler.NewParlayHandler(parlayService, config.NewValidator(), cfg.Strategy.ToStrategyConfig(), logger)
	router := httpHandler.NewRouter(httpHandler.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.WriteTimeout,
		Metrics:        metrics.Handler(),
		Ready:          parlayService.Ready,
	}, handler, logger)
	logger.Info().Msg("API routes registered")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start HTTP server in goroutine
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutting down gracefully...")

	// Cancel context to stop consumer and poller jobs
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if poller != nil {
		if err := poller.Stop(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("odds poller shutdown failed")
		}
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	logger.Info().Msg("shutdown complete")
}

// newCache connects to Redis, or falls back to process memory when Redis is disabled
func newCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) service.Cache {
	if !cfg.Redis.Enabled {
		logger.Warn().Msg("Redis disabled, cards and runs are kept in memory")
		return cache.NewMemoryCache(cfg.Redis.TTL, logger)
	}

	redisCache := cache.NewRedisCache(
		cache.RedisCacheConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		},
		logger,
	)

	// Test Redis connection
	if err := redisCache.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	logger.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
	return redisCache
}

// setupLogger configures the logger based on config
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return log.Logger.With().Str("service", "parlay-engine").Logger()
}
