// Package sports catalogs the sport profiles the recorder knows how to poll
// and the provider's market-key vocabulary for them.
package sports

import (
	"fmt"
	"time"

	"github.com/XavierBriggs/Iris/pkg/models"
)

// Profile describes how one sport gets polled: which regions and markets to
// request and how often.
type Profile struct {
	Key          string
	DisplayName  string
	Regions      []string
	Markets      []string
	PollInterval time.Duration
}

// FeaturedMarkets is the mainline market set every sport supports.
func FeaturedMarkets() []string {
	return []string{"h2h", "spreads", "totals"}
}

// NBA returns the default NBA polling profile.
func NBA() Profile {
	return Profile{
		Key:          "basketball_nba",
		DisplayName:  "NBA Basketball",
		Regions:      []string{"us", "us2"},
		Markets:      FeaturedMarkets(),
		PollInterval: 60 * time.Second,
	}
}

// NFL returns the default NFL polling profile.
func NFL() Profile {
	return Profile{
		Key:          "americanfootball_nfl",
		DisplayName:  "NFL Football",
		Regions:      []string{"us", "us2"},
		Markets:      FeaturedMarkets(),
		PollInterval: 120 * time.Second,
	}
}

// Lookup resolves a sport key to its built-in profile.
func Lookup(key string) (Profile, bool) {
	for _, p := range []Profile{NBA(), NFL()} {
		if p.Key == key {
			return p, true
		}
	}
	return Profile{}, false
}

// lineMarkets require a point value on every outcome.
var lineMarkets = map[string]bool{
	"spreads": true,
	"totals":  true,
}

// ValidateRow sanity-checks a flattened quote row against the profile before
// it reaches the archive.
func (p Profile) ValidateRow(row models.OutcomeRow) error {
	if row.SportKey != p.Key {
		return fmt.Errorf("invalid sport_key: expected %s, got %s", p.Key, row.SportKey)
	}

	if row.Price == 0 {
		return fmt.Errorf("invalid price: cannot be 0")
	}

	if lineMarkets[row.MarketKey] && row.Point == nil {
		return fmt.Errorf("market %s requires point value", row.MarketKey)
	}

	return nil
}
