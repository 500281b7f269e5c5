// Package archive is the write path downstream of the SDK: it flattens
// parsed events into quote rows, diffs them against a Redis cache, persists
// them to Postgres, and publishes changes to per-sport Redis streams.
package archive

import (
	"time"

	"github.com/XavierBriggs/Iris/pkg/models"
)

// Flatten explodes parsed events into one row per priced outcome.
func Flatten(events []models.Event, receivedAt time.Time) []models.OutcomeRow {
	var rows []models.OutcomeRow

	for _, evt := range events {
		for _, bm := range evt.Bookmakers {
			for _, mkt := range bm.Markets {
				for _, out := range mkt.Outcomes {
					row := models.OutcomeRow{
						EventID:          evt.ID,
						SportKey:         evt.SportKey,
						MarketKey:        mkt.Key,
						BookKey:          bm.Key,
						OutcomeName:      out.Name,
						Price:            out.Price,
						VendorLastUpdate: bm.LastUpdate,
						ReceivedAt:       receivedAt,
					}
					if out.Point != nil {
						point := *out.Point
						row.Point = &point
					}
					rows = append(rows, row)
				}
			}
		}
	}

	return rows
}
