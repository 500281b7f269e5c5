package theoddsapi

import (
	"context"

	"github.com/XavierBriggs/Iris/pkg/contracts"
	"github.com/XavierBriggs/Iris/pkg/models"
)

// Source adapts the client to the contracts.OddsSource polling surface used
// by recording collaborators.
func (c *Client) Source() contracts.OddsSource {
	return source{c}
}

type source struct {
	c *Client
}

var _ contracts.OddsSource = source{}

func (s source) Odds(ctx context.Context, opts contracts.FetchOptions) ([]models.Event, error) {
	return s.c.Odds(ctx, opts.Sport, &OddsOptions{
		Regions: opts.Regions,
		Markets: opts.Markets,
	})
}

func (s source) Events(ctx context.Context, sport string) ([]models.Event, error) {
	return s.c.Events(ctx, sport, nil)
}

func (s source) Scores(ctx context.Context, sport string, daysFrom int) ([]models.ScoredGame, error) {
	return s.c.Scores(ctx, sport, &ScoresOptions{DaysFrom: daysFrom})
}
