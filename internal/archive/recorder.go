package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/XavierBriggs/Iris/pkg/models"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

const streamKeyFormat = "odds.raw.%s" // odds.raw.basketball_nba

// Recorder persists flattened quote rows to Postgres and publishes them to
// per-sport Redis streams. The database is the source of truth; stream
// publish failures are logged, not returned.
type Recorder struct {
	db     *sql.DB
	redis  *redis.Client
	logger *slog.Logger
}

// streamMessage is the wire shape published to the Redis stream.
type streamMessage struct {
	EventID          string    `json:"event_id"`
	SportKey         string    `json:"sport_key"`
	MarketKey        string    `json:"market_key"`
	BookKey          string    `json:"book_key"`
	OutcomeName      string    `json:"outcome_name"`
	Price            float64   `json:"price"`
	Point            *float64  `json:"point,omitempty"`
	VendorLastUpdate time.Time `json:"vendor_last_update"`
	ReceivedAt       time.Time `json:"received_at"`
}

// NewRecorder builds a recorder over the given connections.
func NewRecorder(db *sql.DB, redisClient *redis.Client, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		db:     db,
		redis:  redisClient,
		logger: logger,
	}
}

// Record upserts the events and appends the rows inside one transaction,
// then publishes the rows to their sport streams.
func (r *Recorder) Record(ctx context.Context, events []models.Event, rows []models.OutcomeRow) error {
	if len(events) == 0 && len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.upsertEvents(ctx, tx, events); err != nil {
		return fmt.Errorf("upsert events: %w", err)
	}
	if err := r.markStale(ctx, tx, rows); err != nil {
		return fmt.Errorf("mark stale rows: %w", err)
	}
	if err := r.insertRows(ctx, tx, rows); err != nil {
		return fmt.Errorf("insert rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	if err := r.publish(ctx, rows); err != nil {
		r.logger.Warn("stream publish failed", slog.String("error", err.Error()))
	}

	return nil
}

// upsertEvents inserts or refreshes event rows.
func (r *Recorder) upsertEvents(ctx context.Context, tx *sql.Tx, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	query := `
		INSERT INTO events (
			event_id, sport_key, home_team, away_team, commence_time
		)
		SELECT UNNEST($1::text[]), UNNEST($2::text[]), UNNEST($3::text[]),
		       UNNEST($4::text[]), UNNEST($5::timestamptz[])
		ON CONFLICT (event_id)
		DO UPDATE SET
			home_team = EXCLUDED.home_team,
			away_team = EXCLUDED.away_team,
			commence_time = EXCLUDED.commence_time
	`

	eventIDs := make([]string, len(events))
	sportKeys := make([]string, len(events))
	homeTeams := make([]string, len(events))
	awayTeams := make([]string, len(events))
	commenceTimes := make([]time.Time, len(events))

	for i, evt := range events {
		eventIDs[i] = evt.ID
		sportKeys[i] = evt.SportKey
		homeTeams[i] = evt.HomeTeam
		awayTeams[i] = evt.AwayTeam
		commenceTimes[i] = evt.CommenceTime
	}

	_, err := tx.ExecContext(ctx, query,
		pq.Array(eventIDs), pq.Array(sportKeys), pq.Array(homeTeams),
		pq.Array(awayTeams), pq.Array(commenceTimes),
	)
	return err
}

// markStale flips is_latest off for the coordinates about to be re-inserted.
func (r *Recorder) markStale(ctx context.Context, tx *sql.Tx, rows []models.OutcomeRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `
		UPDATE odds_rows
		SET is_latest = false
		WHERE is_latest = true
		  AND (event_id, market_key, book_key, outcome_name) IN (
			SELECT UNNEST($1::text[]), UNNEST($2::text[]), UNNEST($3::text[]), UNNEST($4::text[])
		  )
	`

	eventIDs := make([]string, len(rows))
	marketKeys := make([]string, len(rows))
	bookKeys := make([]string, len(rows))
	outcomeNames := make([]string, len(rows))

	for i, row := range rows {
		eventIDs[i] = row.EventID
		marketKeys[i] = row.MarketKey
		bookKeys[i] = row.BookKey
		outcomeNames[i] = row.OutcomeName
	}

	_, err := tx.ExecContext(ctx, query,
		pq.Array(eventIDs), pq.Array(marketKeys), pq.Array(bookKeys), pq.Array(outcomeNames),
	)
	return err
}

// insertRows appends rows with is_latest = true.
func (r *Recorder) insertRows(ctx context.Context, tx *sql.Tx, rows []models.OutcomeRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `
		INSERT INTO odds_rows (
			event_id, sport_key, market_key, book_key, outcome_name,
			price, point, vendor_last_update, received_at, is_latest
		)
		SELECT * FROM UNNEST(
			$1::text[], $2::text[], $3::text[], $4::text[], $5::text[],
			$6::decimal[], $7::decimal[], $8::timestamptz[], $9::timestamptz[], $10::boolean[]
		)
	`

	eventIDs := make([]string, len(rows))
	sportKeys := make([]string, len(rows))
	marketKeys := make([]string, len(rows))
	bookKeys := make([]string, len(rows))
	outcomeNames := make([]string, len(rows))
	prices := make([]float64, len(rows))
	points := make([]*float64, len(rows))
	vendorUpdates := make([]time.Time, len(rows))
	receivedAts := make([]time.Time, len(rows))
	isLatests := make([]bool, len(rows))

	for i, row := range rows {
		eventIDs[i] = row.EventID
		sportKeys[i] = row.SportKey
		marketKeys[i] = row.MarketKey
		bookKeys[i] = row.BookKey
		outcomeNames[i] = row.OutcomeName
		prices[i] = row.Price
		points[i] = row.Point
		vendorUpdates[i] = row.VendorLastUpdate
		receivedAts[i] = row.ReceivedAt
		isLatests[i] = true
	}

	_, err := tx.ExecContext(ctx, query,
		pq.Array(eventIDs), pq.Array(sportKeys), pq.Array(marketKeys), pq.Array(bookKeys), pq.Array(outcomeNames),
		pq.Array(prices), pq.Array(points), pq.Array(vendorUpdates), pq.Array(receivedAts), pq.Array(isLatests),
	)
	return err
}

// publish fans rows out to per-sport streams on one pipeline per sport.
func (r *Recorder) publish(ctx context.Context, rows []models.OutcomeRow) error {
	if len(rows) == 0 || r.redis == nil {
		return nil
	}

	bySport := make(map[string][]models.OutcomeRow)
	for _, row := range rows {
		bySport[row.SportKey] = append(bySport[row.SportKey], row)
	}

	for sportKey, sportRows := range bySport {
		streamKey := fmt.Sprintf(streamKeyFormat, sportKey)
		pipe := r.redis.Pipeline()

		for _, row := range sportRows {
			msg := streamMessage{
				EventID:          row.EventID,
				SportKey:         row.SportKey,
				MarketKey:        row.MarketKey,
				BookKey:          row.BookKey,
				OutcomeName:      row.OutcomeName,
				Price:            row.Price,
				Point:            row.Point,
				VendorLastUpdate: row.VendorLastUpdate,
				ReceivedAt:       row.ReceivedAt,
			}
			data, err := json.Marshal(msg)
			if err != nil {
				return fmt.Errorf("marshal stream message: %w", err)
			}
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: streamKey,
				Values: map[string]interface{}{"data": data},
			})
		}

		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("redis pipeline exec for stream %s: %w", streamKey, err)
		}
	}

	return nil
}
