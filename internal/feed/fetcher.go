// Package feed pulls moneyline odds for upcoming fights from external sources.
package feed

import (
	"context"

	"github.com/cypherlabdev/parlay-engine-service/internal/models"
)

// Fetcher returns the current list of fights with odds
type Fetcher interface {
	FetchFights(ctx context.Context) ([]models.Fight, error)
}
