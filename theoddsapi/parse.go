package theoddsapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/XavierBriggs/Iris/pkg/models"
)

// Wire shapes matching The Odds API v4 JSON. Required fields decode through
// pointers so absence is distinguishable from zero values, and timestamps
// stay raw until parseTime can report the field path on failure. Unknown
// fields are ignored for forward compatibility.

type sportJSON struct {
	Key          *string `json:"key"`
	Group        string  `json:"group"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Active       bool    `json:"active"`
	HasOutrights bool    `json:"has_outrights"`
}

type eventJSON struct {
	ID           *string         `json:"id"`
	SportKey     string          `json:"sport_key"`
	SportTitle   string          `json:"sport_title"`
	CommenceTime json.RawMessage `json:"commence_time"`
	HomeTeam     *string         `json:"home_team"`
	AwayTeam     *string         `json:"away_team"`
	Bookmakers   []bookmakerJSON `json:"bookmakers"`
}

type bookmakerJSON struct {
	Key        *string         `json:"key"`
	Title      string          `json:"title"`
	LastUpdate json.RawMessage `json:"last_update"`
	Markets    []marketJSON    `json:"markets"`
	Link       *string         `json:"link"`
	SID        *string         `json:"sid"`
}

type marketJSON struct {
	Key        *string         `json:"key"`
	LastUpdate json.RawMessage `json:"last_update"`
	Outcomes   []outcomeJSON   `json:"outcomes"`
	Link       *string         `json:"link"`
	SID        *string         `json:"sid"`
}

type outcomeJSON struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Point       *float64 `json:"point"`
	Description *string  `json:"description"`
	Link        *string  `json:"link"`
	SID         *string  `json:"sid"`
	BetLimit    *float64 `json:"bet_limit"`
}

type scoredGameJSON struct {
	ID           *string         `json:"id"`
	SportKey     string          `json:"sport_key"`
	SportTitle   string          `json:"sport_title"`
	CommenceTime json.RawMessage `json:"commence_time"`
	Completed    bool            `json:"completed"`
	HomeTeam     *string         `json:"home_team"`
	AwayTeam     *string         `json:"away_team"`
	Scores       []scoreJSON     `json:"scores"`
	LastUpdate   json.RawMessage `json:"last_update"`
}

type scoreJSON struct {
	Name  *string         `json:"name"`
	Score json.RawMessage `json:"score"`
}

type participantJSON struct {
	ID       string  `json:"id"`
	FullName *string `json:"full_name"`
}

type snapshotJSON struct {
	Timestamp         json.RawMessage `json:"timestamp"`
	PreviousTimestamp json.RawMessage `json:"previous_timestamp"`
	NextTimestamp     json.RawMessage `json:"next_timestamp"`
	Data              json.RawMessage `json:"data"`
}

var nullLiteral = []byte("null")

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, nullLiteral)
}

// parseTime accepts the provider's two timestamp renderings: an RFC3339 UTC
// string (dateFormat=iso) or a unix epoch number (dateFormat=unix).
func parseTime(field string, raw json.RawMessage) (time.Time, error) {
	if isNull(raw) {
		return time.Time{}, &ParseError{Field: field, Value: string(raw), Reason: "timestamp missing"}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, &ParseError{Field: field, Value: s, Reason: "malformed timestamp"}
		}
		return t.UTC(), nil
	}

	var epoch int64
	if err := json.Unmarshal(raw, &epoch); err == nil {
		return time.Unix(epoch, 0).UTC(), nil
	}

	return time.Time{}, &ParseError{Field: field, Value: string(raw), Reason: "malformed timestamp"}
}

func parseOptTime(field string, raw json.RawMessage) (*time.Time, error) {
	if isNull(raw) {
		return nil, nil
	}
	t, err := parseTime(field, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func fieldPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func rawString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// parseSports maps the sports listing body.
func parseSports(body []byte) ([]models.Sport, error) {
	var wire []sportJSON
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("decode sports body: %v", err)}
	}

	sports := make([]models.Sport, 0, len(wire))
	for i, s := range wire {
		if s.Key == nil || *s.Key == "" {
			return nil, &ParseError{Field: fmt.Sprintf("[%d].key", i), Value: rawString(s.Key), Reason: "sport key missing"}
		}
		sports = append(sports, models.Sport{
			Key:          *s.Key,
			Group:        s.Group,
			Title:        s.Title,
			Description:  s.Description,
			Active:       s.Active,
			HasOutrights: s.HasOutrights,
		})
	}
	return sports, nil
}

// parseEvents maps an event array body (odds, events, and the historical
// data payloads that wrap them). An empty array is a valid empty result.
func parseEvents(body []byte) ([]models.Event, error) {
	var wire []eventJSON
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("decode events body: %v", err)}
	}

	events := make([]models.Event, 0, len(wire))
	for i, w := range wire {
		evt, err := mapEvent(fmt.Sprintf("[%d]", i), w)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, nil
}

// parseEvent maps a single-event body (event-odds endpoints).
func parseEvent(body []byte) (models.Event, error) {
	var wire eventJSON
	if err := json.Unmarshal(body, &wire); err != nil {
		return models.Event{}, &ParseError{Reason: fmt.Sprintf("decode event body: %v", err)}
	}
	return mapEvent("", wire)
}

func mapEvent(path string, w eventJSON) (models.Event, error) {
	if w.ID == nil || *w.ID == "" {
		return models.Event{}, &ParseError{Field: fieldPath(path, "id"), Value: rawString(w.ID), Reason: "event id missing"}
	}
	commence, err := parseTime(fieldPath(path, "commence_time"), w.CommenceTime)
	if err != nil {
		return models.Event{}, err
	}
	if w.HomeTeam == nil || *w.HomeTeam == "" {
		return models.Event{}, &ParseError{Field: fieldPath(path, "home_team"), Value: rawString(w.HomeTeam), Reason: "home team missing"}
	}
	if w.AwayTeam == nil || *w.AwayTeam == "" {
		return models.Event{}, &ParseError{Field: fieldPath(path, "away_team"), Value: rawString(w.AwayTeam), Reason: "away team missing"}
	}

	bookmakers := make([]models.Bookmaker, 0, len(w.Bookmakers))
	for i, b := range w.Bookmakers {
		bm, err := mapBookmaker(fmt.Sprintf("%s[%d]", fieldPath(path, "bookmakers"), i), b)
		if err != nil {
			return models.Event{}, err
		}
		bookmakers = append(bookmakers, bm)
	}

	return models.Event{
		ID:           *w.ID,
		SportKey:     w.SportKey,
		SportTitle:   w.SportTitle,
		CommenceTime: commence,
		HomeTeam:     *w.HomeTeam,
		AwayTeam:     *w.AwayTeam,
		Bookmakers:   bookmakers,
	}, nil
}

func mapBookmaker(path string, w bookmakerJSON) (models.Bookmaker, error) {
	if w.Key == nil || *w.Key == "" {
		return models.Bookmaker{}, &ParseError{Field: fieldPath(path, "key"), Value: rawString(w.Key), Reason: "bookmaker key missing"}
	}
	lastUpdate, err := parseTime(fieldPath(path, "last_update"), w.LastUpdate)
	if err != nil {
		return models.Bookmaker{}, err
	}

	markets := make([]models.Market, 0, len(w.Markets))
	for i, m := range w.Markets {
		mkt, err := mapMarket(fmt.Sprintf("%s[%d]", fieldPath(path, "markets"), i), m)
		if err != nil {
			return models.Bookmaker{}, err
		}
		markets = append(markets, mkt)
	}

	return models.Bookmaker{
		Key:        *w.Key,
		Title:      w.Title,
		LastUpdate: lastUpdate,
		Markets:    markets,
		Link:       w.Link,
		SID:        w.SID,
	}, nil
}

func mapMarket(path string, w marketJSON) (models.Market, error) {
	if w.Key == nil || *w.Key == "" {
		return models.Market{}, &ParseError{Field: fieldPath(path, "key"), Value: rawString(w.Key), Reason: "market key missing"}
	}
	lastUpdate, err := parseTime(fieldPath(path, "last_update"), w.LastUpdate)
	if err != nil {
		return models.Market{}, err
	}
	if len(w.Outcomes) == 0 {
		return models.Market{}, &ParseError{Field: fieldPath(path, "outcomes"), Value: *w.Key, Reason: "market has no outcomes"}
	}

	outcomes := make([]models.Outcome, 0, len(w.Outcomes))
	for i, o := range w.Outcomes {
		out, err := mapOutcome(fmt.Sprintf("%s[%d]", fieldPath(path, "outcomes"), i), o)
		if err != nil {
			return models.Market{}, err
		}
		outcomes = append(outcomes, out)
	}

	return models.Market{
		Key:        *w.Key,
		LastUpdate: lastUpdate,
		Outcomes:   outcomes,
		Link:       w.Link,
		SID:        w.SID,
	}, nil
}

// mapOutcome builds an outcome. The parser is odds-format agnostic: prices
// parse as numbers whether the caller asked for American or decimal odds.
func mapOutcome(path string, w outcomeJSON) (models.Outcome, error) {
	if w.Name == nil || *w.Name == "" {
		return models.Outcome{}, &ParseError{Field: fieldPath(path, "name"), Value: rawString(w.Name), Reason: "outcome name missing"}
	}
	if w.Price == nil {
		return models.Outcome{}, &ParseError{Field: fieldPath(path, "price"), Reason: "price missing"}
	}

	return models.Outcome{
		Name:        *w.Name,
		Price:       *w.Price,
		Point:       w.Point,
		Description: w.Description,
		Link:        w.Link,
		SID:         w.SID,
		BetLimit:    w.BetLimit,
	}, nil
}

// parseScoredGames maps the scores endpoint body. A game's Scores stays nil
// when the provider omitted (or nulled) the scores key; a present key maps to
// a non-nil slice even when empty.
func parseScoredGames(body []byte) ([]models.ScoredGame, error) {
	var wire []scoredGameJSON
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("decode scores body: %v", err)}
	}

	games := make([]models.ScoredGame, 0, len(wire))
	for i, w := range wire {
		game, err := mapScoredGame(fmt.Sprintf("[%d]", i), w)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, nil
}

func mapScoredGame(path string, w scoredGameJSON) (models.ScoredGame, error) {
	if w.ID == nil || *w.ID == "" {
		return models.ScoredGame{}, &ParseError{Field: fieldPath(path, "id"), Value: rawString(w.ID), Reason: "game id missing"}
	}
	commence, err := parseTime(fieldPath(path, "commence_time"), w.CommenceTime)
	if err != nil {
		return models.ScoredGame{}, err
	}
	if w.HomeTeam == nil || *w.HomeTeam == "" {
		return models.ScoredGame{}, &ParseError{Field: fieldPath(path, "home_team"), Value: rawString(w.HomeTeam), Reason: "home team missing"}
	}
	if w.AwayTeam == nil || *w.AwayTeam == "" {
		return models.ScoredGame{}, &ParseError{Field: fieldPath(path, "away_team"), Value: rawString(w.AwayTeam), Reason: "away team missing"}
	}
	lastUpdate, err := parseOptTime(fieldPath(path, "last_update"), w.LastUpdate)
	if err != nil {
		return models.ScoredGame{}, err
	}

	var scores []models.Score
	if w.Scores != nil {
		scores = make([]models.Score, 0, len(w.Scores))
		for i, s := range w.Scores {
			score, err := mapScore(fmt.Sprintf("%s[%d]", fieldPath(path, "scores"), i), s)
			if err != nil {
				return models.ScoredGame{}, err
			}
			scores = append(scores, score)
		}
	}

	return models.ScoredGame{
		ID:           *w.ID,
		SportKey:     w.SportKey,
		SportTitle:   w.SportTitle,
		CommenceTime: commence,
		Completed:    w.Completed,
		HomeTeam:     *w.HomeTeam,
		AwayTeam:     *w.AwayTeam,
		Scores:       scores,
		LastUpdate:   lastUpdate,
	}, nil
}

func mapScore(path string, w scoreJSON) (models.Score, error) {
	if w.Name == nil || *w.Name == "" {
		return models.Score{}, &ParseError{Field: fieldPath(path, "name"), Value: rawString(w.Name), Reason: "score name missing"}
	}
	value, err := parseScoreValue(fieldPath(path, "score"), w.Score)
	if err != nil {
		return models.Score{}, err
	}
	return models.Score{Name: *w.Name, Score: value}, nil
}

// parseScoreValue normalizes the provider-dependent score rendering (string
// or number) to a string.
func parseScoreValue(field string, raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", &ParseError{Field: field, Value: string(raw), Reason: "score value missing"}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", &ParseError{Field: field, Value: string(raw), Reason: "score value is neither string nor number"}
}

// parseParticipants maps the participants endpoint body.
func parseParticipants(body []byte) ([]models.Participant, error) {
	var wire []participantJSON
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("decode participants body: %v", err)}
	}

	participants := make([]models.Participant, 0, len(wire))
	for i, p := range wire {
		if p.FullName == nil || *p.FullName == "" {
			return nil, &ParseError{Field: fmt.Sprintf("[%d].full_name", i), Value: rawString(p.FullName), Reason: "participant name missing"}
		}
		participants = append(participants, models.Participant{ID: p.ID, FullName: *p.FullName})
	}
	return participants, nil
}

// parseSnapshot decodes the historical envelope and delegates the embedded
// data payload to the endpoint's ordinary parser. Whether data is a single
// event or a sequence is decided by which endpoint was called, via parseData.
func parseSnapshot[T any](body []byte, parseData func([]byte) (T, error)) (*models.Snapshot[T], error) {
	var wire snapshotJSON
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("decode snapshot envelope: %v", err)}
	}

	ts, err := parseTime("timestamp", wire.Timestamp)
	if err != nil {
		return nil, err
	}
	prev, err := parseOptTime("previous_timestamp", wire.PreviousTimestamp)
	if err != nil {
		return nil, err
	}
	next, err := parseOptTime("next_timestamp", wire.NextTimestamp)
	if err != nil {
		return nil, err
	}

	if isNull(wire.Data) {
		wire.Data = []byte("[]")
	}
	data, err := parseData(wire.Data)
	if err != nil {
		return nil, err
	}

	return &models.Snapshot[T]{
		Timestamp:         ts,
		PreviousTimestamp: prev,
		NextTimestamp:     next,
		Data:              data,
	}, nil
}
