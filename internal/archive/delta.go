package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/XavierBriggs/Iris/pkg/models"
	"github.com/redis/go-redis/v9"
)

// DeltaEngine detects row changes by comparing against a Redis cache of the
// latest seen price/point per outcome coordinate.
type DeltaEngine struct {
	redis *redis.Client
	ttl   time.Duration
}

// cachedRow is the minimal state kept in Redis for comparison.
type cachedRow struct {
	Price            float64   `json:"price"`
	Point            *float64  `json:"point,omitempty"`
	VendorLastUpdate time.Time `json:"vendor_last_update"`
}

// ChangeType indicates what moved on a quote.
type ChangeType string

const (
	ChangeTypeNew       ChangeType = "new"
	ChangeTypePriceOnly ChangeType = "price"
	ChangeTypePointOnly ChangeType = "point"
	ChangeTypeBoth      ChangeType = "price_and_point"
	ChangeTypeNone      ChangeType = "none"
)

// Delta is one detected change.
type Delta struct {
	Row        models.OutcomeRow
	ChangeType ChangeType
	OldPrice   *float64
	OldPoint   *float64
}

// NewDeltaEngine builds an engine whose cache entries expire after ttl.
func NewDeltaEngine(redisClient *redis.Client, ttl time.Duration) *DeltaEngine {
	return &DeltaEngine{
		redis: redisClient,
		ttl:   ttl,
	}
}

// DetectChanges compares rows against the cache and returns only the changed
// ones. A missing cache entry counts as new.
func (e *DeltaEngine) DetectChanges(ctx context.Context, rows []models.OutcomeRow) ([]Delta, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	keys := make([]string, len(rows))
	for i, row := range rows {
		keys[i] = e.buildKey(row)
	}

	cachedValues, err := e.redis.MGet(ctx, keys...).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	deltas := make([]Delta, 0, len(rows))
	for i, row := range rows {
		changeType, oldPrice, oldPoint := compareRow(row, cachedValues[i])
		if changeType == ChangeTypeNone {
			continue
		}
		deltas = append(deltas, Delta{
			Row:        row,
			ChangeType: changeType,
			OldPrice:   oldPrice,
			OldPoint:   oldPoint,
		})
	}

	return deltas, nil
}

// UpdateCache writes rows back to the cache after a successful persist.
func (e *DeltaEngine) UpdateCache(ctx context.Context, rows []models.OutcomeRow) error {
	if len(rows) == 0 {
		return nil
	}

	pipe := e.redis.Pipeline()
	for _, row := range rows {
		entry := cachedRow{
			Price:            row.Price,
			Point:            row.Point,
			VendorLastUpdate: row.VendorLastUpdate,
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal cache entry: %w", err)
		}
		pipe.Set(ctx, e.buildKey(row), data, e.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline exec: %w", err)
	}
	return nil
}

// buildKey addresses one outcome coordinate in the cache.
func (e *DeltaEngine) buildKey(row models.OutcomeRow) string {
	return fmt.Sprintf("odds:latest:%s:%s:%s:%s", row.EventID, row.MarketKey, row.BookKey, row.OutcomeName)
}

// compareRow classifies the change between a fresh row and the raw cached
// value (nil when the key was absent).
func compareRow(row models.OutcomeRow, cachedValue interface{}) (ChangeType, *float64, *float64) {
	if cachedValue == nil {
		return ChangeTypeNew, nil, nil
	}

	raw, ok := cachedValue.(string)
	if !ok {
		return ChangeTypeNew, nil, nil
	}

	var cached cachedRow
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		// Corrupt cache entry, treat as new so it gets rewritten.
		return ChangeTypeNew, nil, nil
	}

	priceChanged := row.Price != cached.Price
	pointChanged := !pointsEqual(row.Point, cached.Point)

	switch {
	case priceChanged && pointChanged:
		return ChangeTypeBoth, &cached.Price, cached.Point
	case priceChanged:
		return ChangeTypePriceOnly, &cached.Price, cached.Point
	case pointChanged:
		return ChangeTypePointOnly, &cached.Price, cached.Point
	default:
		return ChangeTypeNone, nil, nil
	}
}

func pointsEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
