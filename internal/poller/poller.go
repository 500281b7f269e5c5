// Package poller periodically pulls odds through the SDK and hands changed
// rows to the archive.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/XavierBriggs/Iris/internal/archive"
	"github.com/XavierBriggs/Iris/pkg/contracts"
	"github.com/XavierBriggs/Iris/pkg/models"
	"github.com/XavierBriggs/Iris/sports"
)

// deltaDetector is the slice of archive.DeltaEngine the poller needs.
type deltaDetector interface {
	DetectChanges(ctx context.Context, rows []models.OutcomeRow) ([]archive.Delta, error)
	UpdateCache(ctx context.Context, rows []models.OutcomeRow) error
}

// recorder is the slice of archive.Recorder the poller needs.
type recorder interface {
	Record(ctx context.Context, events []models.Event, rows []models.OutcomeRow) error
}

// Poller runs one polling loop per configured sport profile.
type Poller struct {
	source   contracts.OddsSource
	deltas   deltaDetector
	recorder recorder
	profiles []sports.Profile
	logger   *slog.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New builds a poller over the given source and write path.
func New(source contracts.OddsSource, deltas deltaDetector, rec recorder, profiles []sports.Profile, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		source:   source,
		deltas:   deltas,
		recorder: rec,
		profiles: profiles,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start launches one polling goroutine per profile.
func (p *Poller) Start(ctx context.Context) error {
	if len(p.profiles) == 0 {
		return fmt.Errorf("no sport profiles configured")
	}

	for _, profile := range p.profiles {
		p.wg.Add(1)
		go func(profile sports.Profile) {
			defer p.wg.Done()
			p.pollProfile(ctx, profile)
		}(profile)

		p.logger.Info("polling started",
			slog.String("sport", profile.Key),
			slog.Duration("interval", profile.PollInterval),
		)
	}

	return nil
}

// Stop shuts down all polling loops and waits for them to drain.
func (p *Poller) Stop() {
	close(p.stopChan)
	p.wg.Wait()
}

func (p *Poller) pollProfile(ctx context.Context, profile sports.Profile) {
	// Initial poll immediately, then on the profile's interval.
	if err := p.fetchAndRecord(ctx, profile); err != nil {
		p.logger.Error("initial poll failed",
			slog.String("sport", profile.Key),
			slog.String("error", err.Error()),
		)
	}

	ticker := time.NewTicker(profile.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.fetchAndRecord(ctx, profile); err != nil {
				p.logger.Error("poll failed",
					slog.String("sport", profile.Key),
					slog.String("error", err.Error()),
				)
			}
		case <-p.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// fetchAndRecord runs the full pipeline: fetch, flatten, delta, record,
// cache update.
func (p *Poller) fetchAndRecord(ctx context.Context, profile sports.Profile) error {
	start := time.Now()

	events, err := p.source.Odds(ctx, contracts.FetchOptions{
		Sport:   profile.Key,
		Regions: profile.Regions,
		Markets: profile.Markets,
	})
	if err != nil {
		return fmt.Errorf("fetch odds: %w", err)
	}

	rows := archive.Flatten(events, time.Now().UTC())
	rows = p.validRows(profile, rows)
	if len(rows) == 0 {
		return nil
	}

	deltas, err := p.deltas.DetectChanges(ctx, rows)
	if err != nil {
		return fmt.Errorf("detect changes: %w", err)
	}
	if len(deltas) == 0 {
		return nil
	}

	changed := make([]models.OutcomeRow, len(deltas))
	for i, d := range deltas {
		changed[i] = d.Row
	}

	if err := p.recorder.Record(ctx, events, changed); err != nil {
		return fmt.Errorf("record rows: %w", err)
	}

	if err := p.deltas.UpdateCache(ctx, changed); err != nil {
		// Cache rebuilds itself on expiry; the write already landed.
		p.logger.Warn("cache update failed",
			slog.String("sport", profile.Key),
			slog.String("error", err.Error()),
		)
	}

	p.logger.Info("poll complete",
		slog.String("sport", profile.Key),
		slog.Int("events", len(events)),
		slog.Int("rows", len(rows)),
		slog.Int("changed", len(changed)),
		slog.Duration("took", time.Since(start)),
	)

	return nil
}

// validRows drops rows the profile rejects, logging each rejection.
func (p *Poller) validRows(profile sports.Profile, rows []models.OutcomeRow) []models.OutcomeRow {
	valid := rows[:0]
	for _, row := range rows {
		if err := profile.ValidateRow(row); err != nil {
			p.logger.Warn("row rejected",
				slog.String("sport", profile.Key),
				slog.String("event", row.EventID),
				slog.String("error", err.Error()),
			)
			continue
		}
		valid = append(valid, row)
	}
	return valid
}
