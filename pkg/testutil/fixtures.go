// Package testutil provides fixture constructors and mocks shared by tests.
package testutil

import (
	"context"
	"time"

	"github.com/XavierBriggs/Iris/pkg/contracts"
	"github.com/XavierBriggs/Iris/pkg/models"
)

// Float64 creates a pointer to a float64 literal.
func Float64(v float64) *float64 {
	return &v
}

// String creates a pointer to a string literal.
func String(v string) *string {
	return &v
}

// NewTestEvent creates an event commencing hoursUntilStart from now, with no
// bookmakers attached.
func NewTestEvent(eventID, homeTeam, awayTeam string, hoursUntilStart float64) models.Event {
	return models.Event{
		ID:           eventID,
		SportKey:     "basketball_nba",
		SportTitle:   "NBA",
		CommenceTime: time.Now().UTC().Add(time.Duration(hoursUntilStart * float64(time.Hour))),
		HomeTeam:     homeTeam,
		AwayTeam:     awayTeam,
		Bookmakers:   []models.Bookmaker{},
	}
}

// NewTestQuote attaches one bookmaker/market/outcome chain to an event.
func NewTestQuote(evt models.Event, bookKey, marketKey string, outcomes ...models.Outcome) models.Event {
	now := time.Now().UTC()
	evt.Bookmakers = append(evt.Bookmakers, models.Bookmaker{
		Key:        bookKey,
		Title:      bookKey,
		LastUpdate: now,
		Markets: []models.Market{
			{Key: marketKey, LastUpdate: now, Outcomes: outcomes},
		},
	})
	return evt
}

// NewTestRow creates a flattened quote row.
func NewTestRow(eventID, marketKey, bookKey, outcomeName string, price float64, point *float64) models.OutcomeRow {
	now := time.Now().UTC()
	return models.OutcomeRow{
		EventID:          eventID,
		SportKey:         "basketball_nba",
		MarketKey:        marketKey,
		BookKey:          bookKey,
		OutcomeName:      outcomeName,
		Price:            price,
		Point:            point,
		VendorLastUpdate: now,
		ReceivedAt:       now,
	}
}

// MockOddsSource implements contracts.OddsSource with injectable behavior.
type MockOddsSource struct {
	OddsFunc   func(ctx context.Context, opts contracts.FetchOptions) ([]models.Event, error)
	EventsFunc func(ctx context.Context, sport string) ([]models.Event, error)
	ScoresFunc func(ctx context.Context, sport string, daysFrom int) ([]models.ScoredGame, error)
}

var _ contracts.OddsSource = (*MockOddsSource)(nil)

func (m *MockOddsSource) Odds(ctx context.Context, opts contracts.FetchOptions) ([]models.Event, error) {
	if m.OddsFunc != nil {
		return m.OddsFunc(ctx, opts)
	}
	return []models.Event{}, nil
}

func (m *MockOddsSource) Events(ctx context.Context, sport string) ([]models.Event, error) {
	if m.EventsFunc != nil {
		return m.EventsFunc(ctx, sport)
	}
	return []models.Event{}, nil
}

func (m *MockOddsSource) Scores(ctx context.Context, sport string, daysFrom int) ([]models.ScoredGame, error) {
	if m.ScoresFunc != nil {
		return m.ScoresFunc(ctx, sport, daysFrom)
	}
	return []models.ScoredGame{}, nil
}
