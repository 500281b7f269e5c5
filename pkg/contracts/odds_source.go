package contracts

import (
	"context"

	"github.com/XavierBriggs/Iris/pkg/models"
)

// FetchOptions narrows an odds fetch for polling collaborators.
type FetchOptions struct {
	Sport   string
	Regions []string
	Markets []string
}

// OddsSource is the read surface recording collaborators poll against.
// The SDK client satisfies it via Client.Source; tests inject a mock.
type OddsSource interface {
	// Odds retrieves events with bookmaker quotes for the given sport.
	Odds(ctx context.Context, opts FetchOptions) ([]models.Event, error)

	// Events retrieves upcoming events without odds (for discovery).
	Events(ctx context.Context, sport string) ([]models.Event, error)

	// Scores retrieves live and recent game scores. daysFrom > 0 includes
	// completed games up to that many days back.
	Scores(ctx context.Context, sport string, daysFrom int) ([]models.ScoredGame, error)
}
