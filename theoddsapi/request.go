package theoddsapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/XavierBriggs/Iris/pkg/contracts"
)

// OddsFormat selects how the provider expresses prices.
type OddsFormat string

const (
	OddsFormatAmerican OddsFormat = "american"
	OddsFormatDecimal  OddsFormat = "decimal"
)

// DateFormat selects how the provider expresses timestamps in payloads.
type DateFormat string

const (
	DateFormatISO  DateFormat = "iso"
	DateFormatUnix DateFormat = "unix"
)

// SportUpcoming is the provider's virtual sport key covering the next games
// across all sports.
const SportUpcoming = "upcoming"

// timeLayout is the provider's timestamp convention: ISO-8601 UTC with
// second precision, e.g. 2023-11-29T22:40:39Z.
const timeLayout = "2006-01-02T15:04:05Z"

// OddsOptions narrows the odds, event-odds, and historical-odds endpoints.
// Regions and Bookmakers are mutually exclusive. Zero-valued fields are
// omitted from the query.
type OddsOptions struct {
	Regions          []string
	Markets          []string
	OddsFormat       OddsFormat
	DateFormat       DateFormat
	Bookmakers       []string
	EventIDs         []string
	CommenceTimeFrom *time.Time
	CommenceTimeTo   *time.Time
	IncludeLinks     bool
	IncludeSIDs      bool
	IncludeBetLimits bool
}

func (o *OddsOptions) validate() error {
	if o == nil {
		return nil
	}
	if len(o.Regions) > 0 && len(o.Bookmakers) > 0 {
		return &ConfigurationError{Reason: "regions and bookmakers are mutually exclusive"}
	}
	return validateWindow(o.CommenceTimeFrom, o.CommenceTimeTo)
}

func (o *OddsOptions) query(q *queryBuilder) {
	if o == nil {
		return
	}
	q.addList("regions", o.Regions)
	q.addList("markets", o.Markets)
	q.add("oddsFormat", string(o.OddsFormat))
	q.add("dateFormat", string(o.DateFormat))
	q.addList("bookmakers", o.Bookmakers)
	q.addList("eventIds", o.EventIDs)
	q.addTime("commenceTimeFrom", o.CommenceTimeFrom)
	q.addTime("commenceTimeTo", o.CommenceTimeTo)
	q.addBool("includeLinks", o.IncludeLinks)
	q.addBool("includeSids", o.IncludeSIDs)
	q.addBool("includeBetLimits", o.IncludeBetLimits)
}

// EventsOptions narrows the events and historical-events endpoints.
type EventsOptions struct {
	DateFormat       DateFormat
	EventIDs         []string
	CommenceTimeFrom *time.Time
	CommenceTimeTo   *time.Time
}

func (o *EventsOptions) validate() error {
	if o == nil {
		return nil
	}
	return validateWindow(o.CommenceTimeFrom, o.CommenceTimeTo)
}

func (o *EventsOptions) query(q *queryBuilder) {
	if o == nil {
		return
	}
	q.add("dateFormat", string(o.DateFormat))
	q.addList("eventIds", o.EventIDs)
	q.addTime("commenceTimeFrom", o.CommenceTimeFrom)
	q.addTime("commenceTimeTo", o.CommenceTimeTo)
}

// ScoresOptions narrows the scores endpoint. DaysFrom > 0 includes completed
// games up to that many days back (the provider accepts 1-3 and charges an
// extra quota unit); 0 returns live and upcoming games only.
type ScoresOptions struct {
	DaysFrom   int
	DateFormat DateFormat
	EventIDs   []string
}

func (o *ScoresOptions) query(q *queryBuilder) {
	if o == nil {
		return
	}
	if o.DaysFrom > 0 {
		q.add("daysFrom", strconv.Itoa(o.DaysFrom))
	}
	q.add("dateFormat", string(o.DateFormat))
	q.addList("eventIds", o.EventIDs)
}

// SportsOptions narrows the sports listing.
type SportsOptions struct {
	All bool // include out-of-season sports
}

func (o *SportsOptions) query(q *queryBuilder) {
	if o == nil {
		return
	}
	q.addBool("all", o.All)
}

func validateWindow(from, to *time.Time) error {
	if from != nil && to != nil && from.After(*to) {
		return &ConfigurationError{Reason: "commenceTimeFrom must not be after commenceTimeTo"}
	}
	return nil
}

// queryBuilder accumulates query parameters in the order they are added.
// Parameter order is significant only for reproducible request signatures,
// not for provider semantics.
type queryBuilder struct {
	params []contracts.Param
}

func (q *queryBuilder) add(key, value string) {
	if value == "" {
		return
	}
	q.params = append(q.params, contracts.Param{Key: key, Value: value})
}

// addList serializes list-valued parameters as comma-joined strings in the
// order supplied.
func (q *queryBuilder) addList(key string, values []string) {
	if len(values) == 0 {
		return
	}
	q.add(key, strings.Join(values, ","))
}

// addBool omits false (absence means false) and writes the canonical true
// token otherwise.
func (q *queryBuilder) addBool(key string, v bool) {
	if v {
		q.add(key, "true")
	}
}

func (q *queryBuilder) addTime(key string, t *time.Time) {
	if t != nil {
		q.add(key, t.UTC().Format(timeLayout))
	}
}
