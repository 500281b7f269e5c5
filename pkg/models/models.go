// Package models defines the immutable domain objects returned by the SDK.
// Instances are built only by the response parser; callers own them outright
// and may share them across goroutines without synchronization.
package models

import "time"

// Sport is one sport or league the provider covers.
type Sport struct {
	Key          string // stable identifier, e.g. "americanfootball_nfl"
	Group        string
	Title        string
	Description  string
	Active       bool
	HasOutrights bool
}

// Event is a single game or match, with the bookmaker quote sets attached
// when the endpoint returns odds.
type Event struct {
	ID           string
	SportKey     string
	SportTitle   string
	CommenceTime time.Time // always UTC
	HomeTeam     string
	AwayTeam     string
	Bookmakers   []Bookmaker // never nil, may be empty
}

// Bookmaker is one odds provider's quote set for an event.
type Bookmaker struct {
	Key        string
	Title      string
	LastUpdate time.Time
	Markets    []Market // never nil, may be empty
	Link       *string
	SID        *string
}

// Market is one bet type quoted by a bookmaker.
type Market struct {
	Key        string // e.g. "h2h", "spreads", "totals"
	LastUpdate time.Time
	Outcomes   []Outcome
	Link       *string
	SID        *string
}

// Outcome is a single priced selection within a market. Price format follows
// the oddsFormat the caller requested (American or decimal).
type Outcome struct {
	Name        string
	Price       float64
	Point       *float64 // spread or total line, line-based markets only
	Description *string
	Link        *string
	SID         *string
	BetLimit    *float64
}

// Score is one team's score entry within a scored game. The provider sends
// the value as a string or a number; it is normalized to a string.
type Score struct {
	Name  string
	Score string
}

// ScoredGame is a game with live or final score state. Scores stays nil
// until the provider starts reporting scores for the game.
type ScoredGame struct {
	ID           string
	SportKey     string
	SportTitle   string
	CommenceTime time.Time
	Completed    bool
	HomeTeam     string
	AwayTeam     string
	Scores       []Score
	LastUpdate   *time.Time
}

// Participant is a team or player within a sport.
type Participant struct {
	ID       string
	FullName string
}

// Snapshot is a point-in-time view of a historical endpoint's data. The
// provider addresses snapshots by timestamp and links to the neighbouring
// snapshots when they exist.
type Snapshot[T any] struct {
	Timestamp         time.Time
	PreviousTimestamp *time.Time
	NextTimestamp     *time.Time
	Data              T
}

// Quota reports the per-key usage allowance as seen on the most recent
// response headers.
type Quota struct {
	RequestsUsed      int
	RequestsRemaining int
	RequestsLast      float64 // cost of the last request
	LastUpdated       time.Time
}

// OutcomeRow is a flattened quote row: one priced outcome with its event,
// market, and bookmaker coordinates. Recording collaborators persist and
// diff these rather than the nested Event tree.
type OutcomeRow struct {
	EventID          string
	SportKey         string
	MarketKey        string
	BookKey          string
	OutcomeName      string
	Price            float64
	Point            *float64
	VendorLastUpdate time.Time
	ReceivedAt       time.Time
}
