package theoddsapi

import (
	"errors"
	"testing"
	"time"
)

const oddsBody = `[
  {
    "id": "e912304de2b2ce66b473439c",
    "sport_key": "basketball_nba",
    "sport_title": "NBA",
    "commence_time": "2026-01-15T00:10:00Z",
    "home_team": "Boston Celtics",
    "away_team": "Los Angeles Lakers",
    "bookmakers": [
      {
        "key": "fanduel",
        "title": "FanDuel",
        "last_update": "2026-01-14T23:58:01Z",
        "link": "https://sportsbook.fanduel.com",
        "markets": [
          {
            "key": "h2h",
            "last_update": "2026-01-14T23:58:01Z",
            "outcomes": [
              {"name": "Boston Celtics", "price": -150},
              {"name": "Los Angeles Lakers", "price": 130}
            ]
          },
          {
            "key": "spreads",
            "last_update": "2026-01-14T23:58:01Z",
            "outcomes": [
              {"name": "Boston Celtics", "price": -110, "point": -3.5, "bet_limit": 2500},
              {"name": "Los Angeles Lakers", "price": -110, "point": 3.5}
            ]
          }
        ]
      }
    ]
  }
]`

func TestParseEvents(t *testing.T) {
	events, err := parseEvents([]byte(oddsBody))
	if err != nil {
		t.Fatalf("parseEvents failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	evt := events[0]
	if evt.ID != "e912304de2b2ce66b473439c" {
		t.Errorf("ID = %q", evt.ID)
	}
	if evt.HomeTeam != "Boston Celtics" || evt.AwayTeam != "Los Angeles Lakers" {
		t.Errorf("teams = %q @ %q", evt.AwayTeam, evt.HomeTeam)
	}
	if want := time.Date(2026, 1, 15, 0, 10, 0, 0, time.UTC); !evt.CommenceTime.Equal(want) {
		t.Errorf("CommenceTime = %v, want %v", evt.CommenceTime, want)
	}

	if len(evt.Bookmakers) != 1 {
		t.Fatalf("expected 1 bookmaker, got %d", len(evt.Bookmakers))
	}
	bm := evt.Bookmakers[0]
	if bm.Key != "fanduel" || bm.Title != "FanDuel" {
		t.Errorf("bookmaker = %q/%q", bm.Key, bm.Title)
	}
	if bm.Link == nil || *bm.Link != "https://sportsbook.fanduel.com" {
		t.Errorf("bookmaker link not carried through")
	}
	if len(bm.Markets) != 2 {
		t.Fatalf("expected 2 markets, got %d", len(bm.Markets))
	}

	h2h := bm.Markets[0]
	if h2h.Key != "h2h" || len(h2h.Outcomes) != 2 {
		t.Fatalf("h2h market mismatched: %+v", h2h)
	}
	if h2h.Outcomes[0].Price != -150 || h2h.Outcomes[0].Point != nil {
		t.Errorf("h2h outcome = %+v", h2h.Outcomes[0])
	}

	spread := bm.Markets[1].Outcomes[0]
	if spread.Point == nil || *spread.Point != -3.5 {
		t.Errorf("spread point = %v, want -3.5", spread.Point)
	}
	if spread.BetLimit == nil || *spread.BetLimit != 2500 {
		t.Errorf("bet limit = %v, want 2500", spread.BetLimit)
	}
}

func TestParseEventsEmptyArray(t *testing.T) {
	events, err := parseEvents([]byte(`[]`))
	if err != nil {
		t.Fatalf("parseEvents failed: %v", err)
	}
	if events == nil || len(events) != 0 {
		t.Errorf("expected non-nil empty slice, got %v", events)
	}
}

func TestParseEventsNoBookmakers(t *testing.T) {
	body := `[{"id":"abc","sport_key":"basketball_nba","commence_time":"2026-01-15T00:10:00Z","home_team":"A","away_team":"B"}]`
	events, err := parseEvents([]byte(body))
	if err != nil {
		t.Fatalf("parseEvents failed: %v", err)
	}
	if len(events[0].Bookmakers) != 0 {
		t.Errorf("expected empty bookmakers, got %v", events[0].Bookmakers)
	}
}

func TestParseEventsUnknownFieldsIgnored(t *testing.T) {
	body := `[{"id":"abc","future_field":{"nested":true},"sport_key":"basketball_nba","commence_time":"2026-01-15T00:10:00Z","home_team":"A","away_team":"B"}]`
	if _, err := parseEvents([]byte(body)); err != nil {
		t.Fatalf("unknown fields should be ignored: %v", err)
	}
}

func TestParseEventsUnixTimestamps(t *testing.T) {
	body := `[{"id":"abc","sport_key":"basketball_nba","commence_time":1768435800,"home_team":"A","away_team":"B"}]`
	events, err := parseEvents([]byte(body))
	if err != nil {
		t.Fatalf("parseEvents failed: %v", err)
	}
	want := time.Unix(1768435800, 0).UTC()
	if !events[0].CommenceTime.Equal(want) {
		t.Errorf("CommenceTime = %v, want %v", events[0].CommenceTime, want)
	}
}

func TestParseEventsMalformedTimestamp(t *testing.T) {
	body := `[{"id":"abc","sport_key":"basketball_nba","commence_time":"2026-01-15T00:10:00Z","home_team":"A","away_team":"B",
		"bookmakers":[{"key":"fanduel","title":"FanDuel","last_update":"not-a-time",
		"markets":[{"key":"h2h","last_update":"2026-01-14T23:58:01Z","outcomes":[{"name":"A","price":-110}]}]}]}]`

	_, err := parseEvents([]byte(body))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if parseErr.Field != "[0].bookmakers[0].last_update" {
		t.Errorf("Field = %q", parseErr.Field)
	}
	if parseErr.Value != "not-a-time" {
		t.Errorf("Value = %q", parseErr.Value)
	}
}

func TestParseEventsMissingRequiredFields(t *testing.T) {
	const outcomes = `[{"name":"A","price":-110}]`

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{
			"missing event id",
			`[{"sport_key":"basketball_nba","commence_time":"2026-01-15T00:10:00Z","home_team":"A","away_team":"B"}]`,
			"[0].id",
		},
		{
			"missing home team",
			`[{"id":"abc","commence_time":"2026-01-15T00:10:00Z","away_team":"B"}]`,
			"[0].home_team",
		},
		{
			"missing commence time",
			`[{"id":"abc","home_team":"A","away_team":"B"}]`,
			"[0].commence_time",
		},
		{
			"missing bookmaker key",
			`[{"id":"abc","commence_time":"2026-01-15T00:10:00Z","home_team":"A","away_team":"B",
				"bookmakers":[{"title":"FanDuel","last_update":"2026-01-14T23:58:01Z","markets":[{"key":"h2h","last_update":"2026-01-14T23:58:01Z","outcomes":` + outcomes + `}]}]}]`,
			"[0].bookmakers[0].key",
		},
		{
			"market without outcomes",
			`[{"id":"abc","commence_time":"2026-01-15T00:10:00Z","home_team":"A","away_team":"B",
				"bookmakers":[{"key":"fanduel","title":"FanDuel","last_update":"2026-01-14T23:58:01Z","markets":[{"key":"h2h","last_update":"2026-01-14T23:58:01Z","outcomes":[]}]}]}]`,
			"[0].bookmakers[0].markets[0].outcomes",
		},
		{
			"outcome without price",
			`[{"id":"abc","commence_time":"2026-01-15T00:10:00Z","home_team":"A","away_team":"B",
				"bookmakers":[{"key":"fanduel","title":"FanDuel","last_update":"2026-01-14T23:58:01Z","markets":[{"key":"h2h","last_update":"2026-01-14T23:58:01Z","outcomes":[{"name":"A"}]}]}]}]`,
			"[0].bookmakers[0].markets[0].outcomes[0].price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseEvents([]byte(tt.body))
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if parseErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", parseErr.Field, tt.wantField)
			}
		})
	}
}

func TestParseEventSingle(t *testing.T) {
	body := `{"id":"abc","sport_key":"basketball_nba","commence_time":"2026-01-15T00:10:00Z","home_team":"A","away_team":"B"}`
	evt, err := parseEvent([]byte(body))
	if err != nil {
		t.Fatalf("parseEvent failed: %v", err)
	}
	if evt.ID != "abc" {
		t.Errorf("ID = %q", evt.ID)
	}
}

func TestParseSports(t *testing.T) {
	body := `[
		{"key":"basketball_nba","group":"Basketball","title":"NBA","description":"US Basketball","active":true,"has_outrights":false},
		{"key":"soccer_epl","group":"Soccer","title":"EPL","description":"English Premier League","active":false,"has_outrights":true}
	]`

	sports, err := parseSports([]byte(body))
	if err != nil {
		t.Fatalf("parseSports failed: %v", err)
	}
	if len(sports) != 2 {
		t.Fatalf("expected 2 sports, got %d", len(sports))
	}
	if !sports[0].Active || sports[0].HasOutrights {
		t.Errorf("sports[0] flags = %+v", sports[0])
	}
	if sports[1].Active || !sports[1].HasOutrights {
		t.Errorf("sports[1] flags = %+v", sports[1])
	}
}

func TestParseSportsMissingKey(t *testing.T) {
	_, err := parseSports([]byte(`[{"group":"Basketball","title":"NBA"}]`))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if parseErr.Field != "[0].key" {
		t.Errorf("Field = %q", parseErr.Field)
	}
}

func TestParseScoredGames(t *testing.T) {
	body := `[
		{"id":"pre","sport_key":"basketball_nba","commence_time":"2026-01-15T00:10:00Z","completed":false,"home_team":"A","away_team":"B"},
		{"id":"live","sport_key":"basketball_nba","commence_time":"2026-01-14T22:10:00Z","completed":false,"home_team":"C","away_team":"D",
			"scores":[{"name":"C","score":"58"},{"name":"D","score":61}],"last_update":"2026-01-14T23:30:00Z"},
		{"id":"empty","sport_key":"basketball_nba","commence_time":"2026-01-14T22:10:00Z","completed":false,"home_team":"E","away_team":"F","scores":[]}
	]`

	games, err := parseScoredGames([]byte(body))
	if err != nil {
		t.Fatalf("parseScoredGames failed: %v", err)
	}
	if len(games) != 3 {
		t.Fatalf("expected 3 games, got %d", len(games))
	}

	// Pre-game: scores key absent stays nil, no last update.
	if games[0].Scores != nil {
		t.Errorf("pre-game Scores = %v, want nil", games[0].Scores)
	}
	if games[0].LastUpdate != nil {
		t.Errorf("pre-game LastUpdate = %v, want nil", games[0].LastUpdate)
	}

	// Live game: both string and numeric score renderings normalize.
	live := games[1]
	if len(live.Scores) != 2 {
		t.Fatalf("live Scores = %v", live.Scores)
	}
	if live.Scores[0].Score != "58" || live.Scores[1].Score != "61" {
		t.Errorf("score values = %q, %q", live.Scores[0].Score, live.Scores[1].Score)
	}
	if live.LastUpdate == nil {
		t.Error("live LastUpdate = nil")
	}

	// Present-but-empty scores key maps to a non-nil empty slice.
	if games[2].Scores == nil || len(games[2].Scores) != 0 {
		t.Errorf("empty-scores game Scores = %v, want non-nil empty", games[2].Scores)
	}
}

func TestParseParticipants(t *testing.T) {
	body := `[
		{"id":"par_01","full_name":"Boston Celtics"},
		{"id":"par_02","full_name":"Los Angeles Lakers"}
	]`

	participants, err := parseParticipants([]byte(body))
	if err != nil {
		t.Fatalf("parseParticipants failed: %v", err)
	}
	if len(participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(participants))
	}
	if participants[0].FullName != "Boston Celtics" {
		t.Errorf("FullName = %q", participants[0].FullName)
	}
}

func TestParseSnapshotEvents(t *testing.T) {
	body := `{
		"timestamp": "2023-11-29T22:40:39Z",
		"previous_timestamp": "2023-11-29T22:35:39Z",
		"next_timestamp": "2023-11-29T22:45:40Z",
		"data": [{"id":"abc","sport_key":"basketball_nba","commence_time":"2023-11-30T00:10:00Z","home_team":"A","away_team":"B"}]
	}`

	snap, err := parseSnapshot([]byte(body), parseEvents)
	if err != nil {
		t.Fatalf("parseSnapshot failed: %v", err)
	}

	want := time.Date(2023, 11, 29, 22, 40, 39, 0, time.UTC)
	if !snap.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", snap.Timestamp, want)
	}
	if snap.PreviousTimestamp == nil || snap.NextTimestamp == nil {
		t.Fatal("expected both neighbor timestamps set")
	}
	if len(snap.Data) != 1 || snap.Data[0].ID != "abc" {
		t.Errorf("Data = %+v", snap.Data)
	}
}

func TestParseSnapshotEdgeTimestamps(t *testing.T) {
	// Oldest snapshot: no previous, a next, empty data.
	body := `{"timestamp":"2023-11-29T22:40:39Z","previous_timestamp":null,"next_timestamp":"2023-11-29T22:45:39Z","data":[]}`

	snap, err := parseSnapshot([]byte(body), parseEvents)
	if err != nil {
		t.Fatalf("parseSnapshot failed: %v", err)
	}
	if snap.PreviousTimestamp != nil {
		t.Errorf("PreviousTimestamp = %v, want nil", snap.PreviousTimestamp)
	}
	if snap.NextTimestamp == nil || !snap.NextTimestamp.Equal(time.Date(2023, 11, 29, 22, 45, 39, 0, time.UTC)) {
		t.Errorf("NextTimestamp = %v", snap.NextTimestamp)
	}
	if snap.Data == nil || len(snap.Data) != 0 {
		t.Errorf("Data = %v, want empty", snap.Data)
	}
}

func TestParseSnapshotNullData(t *testing.T) {
	body := `{"timestamp":"2023-11-29T22:40:39Z","data":null}`

	snap, err := parseSnapshot([]byte(body), parseEvents)
	if err != nil {
		t.Fatalf("parseSnapshot failed: %v", err)
	}
	if len(snap.Data) != 0 {
		t.Errorf("Data = %v, want empty", snap.Data)
	}
}

func TestParseSnapshotSingleEvent(t *testing.T) {
	body := `{
		"timestamp": "2023-11-29T22:40:39Z",
		"data": {"id":"abc","sport_key":"basketball_nba","commence_time":"2023-11-30T00:10:00Z","home_team":"A","away_team":"B"}
	}`

	snap, err := parseSnapshot([]byte(body), parseEvent)
	if err != nil {
		t.Fatalf("parseSnapshot failed: %v", err)
	}
	if snap.Data.ID != "abc" {
		t.Errorf("Data.ID = %q", snap.Data.ID)
	}
}

func TestParseSnapshotMissingTimestamp(t *testing.T) {
	_, err := parseSnapshot([]byte(`{"data":[]}`), parseEvents)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if parseErr.Field != "timestamp" {
		t.Errorf("Field = %q", parseErr.Field)
	}
}
