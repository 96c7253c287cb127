package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/cypherlabdev/parlay-engine-service/internal/metrics"
	"github.com/cypherlabdev/parlay-engine-service/internal/models"
	"github.com/cypherlabdev/parlay-engine-service/pkg/parlay"
)

// OddsAPIConfig holds odds API client configuration
type OddsAPIConfig struct {
	BaseURL      string // e.g., "https://api.the-odds-api.com"
	APIKey       string
	Sport        string  // e.g., "mma_mixed_martial_arts"
	Bookmaker    string  // bookmaker title, e.g., "Bovada"
	RateLimit    float64 // requests per second
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// OddsAPIClient fetches head-to-head moneylines from the odds API
type OddsAPIClient struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	config  OddsAPIConfig
	logger  zerolog.Logger
}

type apiEvent struct {
	ID           string         `json:"id"`
	CommenceTime time.Time      `json:"commence_time"`
	HomeTeam     string         `json:"home_team"`
	AwayTeam     string         `json:"away_team"`
	Bookmakers   []apiBookmaker `json:"bookmakers"`
}

type apiBookmaker struct {
	Key     string      `json:"key"`
	Title   string      `json:"title"`
	Markets []apiMarket `json:"markets"`
}

type apiMarket struct {
	Key      string       `json:"key"`
	Outcomes []apiOutcome `json:"outcomes"`
}

type apiOutcome struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// NewOddsAPIClient creates a rate-limited, retrying odds API client
func NewOddsAPIClient(config OddsAPIConfig, logger zerolog.Logger) *OddsAPIClient {
	if config.RetryWaitMin == 0 {
		config.RetryWaitMin = 500 * time.Millisecond
	}
	if config.RetryWaitMax == 0 {
		config.RetryWaitMax = 10 * time.Second
	}
	if config.RateLimit <= 0 {
		config.RateLimit = 1
	}
	logger = logger.With().Str("component", "odds_api_client").Logger()

	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = config.Timeout
	client.RetryMax = config.MaxRetries
	client.RetryWaitMin = config.RetryWaitMin
	client.RetryWaitMax = config.RetryWaitMax
	client.Logger = nil
	client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			logger.Warn().Str("path", req.URL.Path).Int("attempt", attempt).Msg("retrying odds API request")
		}
	}

	return &OddsAPIClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		config:  config,
		logger:  logger,
	}
}

// FetchFights returns the configured bookmaker's moneyline for every upcoming event
func (c *OddsAPIClient) FetchFights(ctx context.Context) ([]models.Fight, error) {
	fights, err := c.fetch(ctx)
	if err != nil {
		metrics.RecordFeedFetch("error")
		return nil, err
	}
	metrics.RecordFeedFetch("ok")
	return fights, nil
}

func (c *OddsAPIClient) fetch(ctx context.Context) ([]models.Fight, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.oddsURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("odds API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("odds API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var events []apiEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("failed to decode odds API response: %w", err)
	}

	fights := c.toFights(events)

	c.logger.Info().
		Str("sport", c.config.Sport).
		Str("bookmaker", c.config.Bookmaker).
		Int("events", len(events)).
		Int("fights", len(fights)).
		Str("requests_remaining", resp.Header.Get("x-requests-remaining")).
		Msg("fetched odds")

	return fights, nil
}

func (c *OddsAPIClient) oddsURL() string {
	q := url.Values{}
	q.Set("apiKey", c.config.APIKey)
	q.Set("regions", "us")
	q.Set("markets", "h2h")
	q.Set("oddsFormat", "american")
	return fmt.Sprintf("%s/v4/sports/%s/odds/?%s",
		strings.TrimRight(c.config.BaseURL, "/"), url.PathEscape(c.config.Sport), q.Encode())
}

// toFights keeps one h2h market per event from the configured bookmaker
func (c *OddsAPIClient) toFights(events []apiEvent) []models.Fight {
	fights := make([]models.Fight, 0, len(events))
	for _, ev := range events {
		for _, book := range ev.Bookmakers {
			if c.config.Bookmaker != "" && !strings.EqualFold(book.Title, c.config.Bookmaker) {
				continue
			}
			fight, ok := h2hFight(book)
			if !ok {
				c.logger.Debug().Str("event_id", ev.ID).Str("bookmaker", book.Title).Msg("skipping event without a usable moneyline")
				continue
			}
			fight.EventTime = ev.CommenceTime.UTC()
			fights = append(fights, fight)
			break
		}
	}
	return fights
}

func h2hFight(book apiBookmaker) (models.Fight, bool) {
	for _, m := range book.Markets {
		if m.Key != "h2h" || len(m.Outcomes) != 2 {
			continue
		}
		a, b := m.Outcomes[0], m.Outcomes[1]
		fight := models.Fight{
			Fighter:      a.Name,
			Opponent:     b.Name,
			FighterOdds:  int(math.Round(a.Price)),
			OpponentOdds: int(math.Round(b.Price)),
			Bookmaker:    book.Title,
		}
		if parlay.ValidateFights([]models.Fight{fight}) != nil {
			return models.Fight{}, false
		}
		return fight, true
	}
	return models.Fight{}, false
}
