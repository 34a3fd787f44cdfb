// Package oddsimport runs the historical odds import: one metered snapshot per
// (sport, sampling date), aggregated into normalized records and stored idempotently.
package oddsimport

import (
	"context"
	"fmt"
	"time"

	"github.com/Rut304/Matchups-sub003/internal/aggregate"
	"github.com/Rut304/Matchups-sub003/internal/delta"
	"github.com/Rut304/Matchups-sub003/internal/metered"
	"github.com/Rut304/Matchups-sub003/internal/run"
	"github.com/Rut304/Matchups-sub003/internal/window"
	"github.com/Rut304/Matchups-sub003/pkg/contracts"
	"github.com/Rut304/Matchups-sub003/pkg/models"
	"github.com/Rut304/Matchups-sub003/sports"
	"github.com/rs/zerolog"
)

const windowKeyLayout = "2006-01-02"

// SnapshotSource is the odds upstream
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context, rc *run.Context, opts models.FetchSnapshotOptions) (*models.Snapshot, metered.Outcome)
	SnapshotTime(date time.Time) time.Time
	Cost(opts models.FetchSnapshotOptions) int
}

// Store is the subset of the idempotent store the importer writes to
type Store interface {
	contracts.ImportLog
	contracts.OddsStore
}

// ChangeDetector filters records whose consensus or best prices did not move
type ChangeDetector interface {
	DetectChanges(ctx context.Context, recs []models.NormalizedOddsRecord) ([]delta.Delta, error)
	UpdateCache(ctx context.Context, recs []models.NormalizedOddsRecord) error
}

// Publisher fans changed records out to consumers
type Publisher interface {
	PublishOdds(ctx context.Context, runID string, deltas []delta.Delta) error
}

// Options bounds one run
type Options struct {
	From time.Time
	To   time.Time

	// IntervalDays overrides every sport's sampling interval when positive
	IntervalDays int

	// Delay is the pause after every upstream call
	Delay time.Duration
}

// Importer walks sports and dates sequentially
type Importer struct {
	source     SnapshotSource
	store      Store
	aggregator *aggregate.Aggregator
	changes    ChangeDetector
	publisher  Publisher
	log        zerolog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
	now        func() time.Time
}

// New creates an importer without publishing
func New(source SnapshotSource, store Store, log zerolog.Logger) *Importer {
	return &Importer{
		source:     source,
		store:      store,
		aggregator: aggregate.New(log),
		log:        log,
		sleep:      metered.SleepContext,
		now:        time.Now,
	}
}

// WithPublishing enables change detection and stream publishing after writes
func (i *Importer) WithPublishing(changes ChangeDetector, pub Publisher) *Importer {
	i.changes = changes
	i.publisher = pub
	return i
}

// WithSleep replaces the inter-call pause, for tests
func (i *Importer) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *Importer {
	i.sleep = sleep
	return i
}

// Run imports every (sport, date) unit in the given sport order. It returns when
// all units are done, the budget runs out, or a fatal upstream error aborts the
// run; rc carries the counters, resume point and abort cause either way.
// Only context cancellation is returned as an error.
func (i *Importer) Run(ctx context.Context, rc *run.Context, sportModules []contracts.SportModule, opts Options) error {
	to := opts.To
	if to.IsZero() {
		to = i.now()
	}

	for _, sport := range sportModules {
		interval := opts.IntervalDays
		if interval <= 0 {
			interval = sport.GetSampleIntervalDays()
		}
		dates := window.Generate(sport.GetSeasons(), opts.From, to, interval)

		i.log.Info().
			Str("run_id", rc.ID).
			Str("sport", sport.GetSportKey()).
			Int("dates", len(dates)).
			Int("interval_days", interval).
			Msg("importing sport")

		for _, date := range dates {
			if err := ctx.Err(); err != nil {
				return err
			}
			if rc.Stopped() {
				return nil
			}

			called := i.importDate(ctx, rc, sport, date)
			if called && opts.Delay > 0 && !rc.Stopped() {
				if err := i.sleep(ctx, opts.Delay); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// importDate processes one unit and reports whether an upstream call was made
func (i *Importer) importDate(ctx context.Context, rc *run.Context, sport contracts.SportModule, date time.Time) bool {
	sportKey := sport.GetSportKey()
	windowKey := date.Format(windowKeyLayout)
	log := i.log.With().Str("run_id", rc.ID).Str("sport", sportKey).Str("date", windowKey).Logger()

	fetchOpts := models.FetchSnapshotOptions{
		Sport:   sportKey,
		At:      i.source.SnapshotTime(date),
		Regions: sport.GetRegions(),
		Markets: sport.GetMarkets(),
	}

	if !rc.Ledger.CanAfford(i.source.Cost(fetchOpts)) {
		log.Warn().Int("remaining", rc.Ledger.Remaining()).Msg("budget exhausted; stopping")
		rc.StopAt(sportKey, windowKey)
		return false
	}

	done, err := i.store.HasSucceeded(ctx, sportKey, windowKey)
	if err != nil {
		rc.Abort(fmt.Errorf("check import log %s@%s: %w", sportKey, windowKey, err))
		return false
	}
	if done {
		log.Debug().Msg("already imported; skipping")
		rc.UnitsSkipped++
		return false
	}

	snap, out := i.source.FetchSnapshot(ctx, rc, fetchOpts)
	switch {
	case out.Kind == metered.BudgetDenied:
		log.Warn().Msg("budget denied the request; stopping")
		rc.StopAt(sportKey, windowKey)
		return false

	case out.Kind.Fatal():
		err := out.AsError()
		log.Error().Err(err).Msg("fatal upstream response; aborting run")
		rc.Abort(err)
		i.writeLog(ctx, rc, log, models.ImportLogEntry{
			SourceKey:    sportKey,
			WindowKey:    windowKey,
			CreditsUsed:  out.UnitsConsumed,
			Status:       models.ImportStatusError,
			ErrorMessage: err.Error(),
		})
		return true

	case out.Kind == metered.NoData:
		log.Info().Msg("no events in snapshot")
		rc.UnitsProcessed++
		i.writeLog(ctx, rc, log, models.ImportLogEntry{
			SourceKey:    sportKey,
			WindowKey:    windowKey,
			SnapshotTime: snapshotTime(snap),
			CreditsUsed:  out.UnitsConsumed,
			Status:       models.ImportStatusSkipped,
		})
		return true

	case out.Kind != metered.Success:
		err := out.AsError()
		log.Warn().Err(err).Str("outcome", out.Kind.String()).Msg("unit failed; continuing")
		rc.Errors++
		i.writeLog(ctx, rc, log, models.ImportLogEntry{
			SourceKey:    sportKey,
			WindowKey:    windowKey,
			CreditsUsed:  out.UnitsConsumed,
			Status:       models.ImportStatusError,
			ErrorMessage: err.Error(),
		})
		return true
	}

	logSnapshot(log, snap)

	valid := validEvents(log, sportKey, snap)
	records := i.aggregator.Aggregate(valid, sport.GetSeasons())

	stored := make([]models.NormalizedOddsRecord, 0, len(records))
	for _, rec := range records {
		if rc.DryRun {
			log.Debug().
				Str("event_id", rec.EventID).
				Str("matchup", rec.AwayTeam+" @ "+rec.HomeTeam).
				Int("books", rec.SourceCount).
				Msg("dry run: would upsert record")
			stored = append(stored, rec)
			continue
		}
		if err := i.store.UpsertOddsRecord(ctx, rec); err != nil {
			log.Error().Err(err).Str("event_id", rec.EventID).Msg("upsert odds record failed")
			rc.Errors++
			continue
		}
		stored = append(stored, rec)
	}
	imported := len(stored)

	rc.UnitsProcessed++
	rc.RecordsImported += imported

	// a partially stored window stays retryable
	entry := models.ImportLogEntry{
		SourceKey:     sportKey,
		WindowKey:     windowKey,
		SnapshotTime:  snapshotTime(snap),
		UnitsFound:    len(snap.Events),
		UnitsImported: imported,
		CreditsUsed:   out.UnitsConsumed,
		Status:        models.ImportStatusSuccess,
	}
	if imported < len(records) {
		entry.Status = models.ImportStatusError
		entry.ErrorMessage = fmt.Sprintf("stored %d of %d records", imported, len(records))
	}
	i.writeLog(ctx, rc, log, entry)

	log.Info().
		Int("events", len(snap.Events)).
		Int("imported", imported).
		Int("failed", len(records)-imported).
		Int("credits", out.UnitsConsumed).
		Int("remaining", out.UnitsRemaining).
		Msg("✓ snapshot imported")

	if !rc.DryRun {
		i.publish(ctx, rc, log, stored)
	}
	return true
}

// publish sends changed stored records downstream and refreshes the change cache.
// Only records the store accepted reach it. Failures here never fail the unit.
func (i *Importer) publish(ctx context.Context, rc *run.Context, log zerolog.Logger, records []models.NormalizedOddsRecord) {
	if i.changes == nil || i.publisher == nil || len(records) == 0 {
		return
	}

	deltas, err := i.changes.DetectChanges(ctx, records)
	if err != nil {
		log.Warn().Err(err).Msg("detect changes failed")
		return
	}
	if len(deltas) > 0 {
		if err := i.publisher.PublishOdds(ctx, rc.ID, deltas); err != nil {
			log.Warn().Err(err).Msg("publish odds failed")
			return
		}
	}
	if err := i.changes.UpdateCache(ctx, records); err != nil {
		log.Warn().Err(err).Msg("update change cache failed")
	}
	log.Debug().Int("changed", len(deltas)).Int("records", len(records)).Msg("published")
}

func (i *Importer) writeLog(ctx context.Context, rc *run.Context, log zerolog.Logger, entry models.ImportLogEntry) {
	if rc.DryRun {
		return
	}
	entry.RunID = rc.ID
	entry.UpdatedAt = i.now().UTC()
	if err := i.store.UpsertLog(ctx, entry); err != nil {
		log.Error().Err(err).Str("status", string(entry.Status)).Msg("write import log failed")
		rc.Errors++
	}
}

// validEvents returns a copy of snap holding only events that pass validation
func validEvents(log zerolog.Logger, sportKey string, snap *models.Snapshot) *models.Snapshot {
	out := *snap
	out.Events = make([]models.Event, 0, len(snap.Events))
	for _, evt := range snap.Events {
		if err := sports.ValidateEvent(sportKey, evt); err != nil {
			log.Warn().Err(err).Str("event_id", evt.EventID).Msg("dropping invalid event")
			continue
		}
		out.Events = append(out.Events, evt)
	}
	return &out
}

func logSnapshot(log zerolog.Logger, snap *models.Snapshot) {
	e := log.Debug().Time("timestamp", snap.Timestamp)
	if snap.PreviousTimestamp != nil {
		e = e.Time("previous_timestamp", *snap.PreviousTimestamp)
	}
	if snap.NextTimestamp != nil {
		e = e.Time("next_timestamp", *snap.NextTimestamp)
	}
	e.Msg("snapshot received")
}

func snapshotTime(snap *models.Snapshot) *time.Time {
	if snap == nil || snap.Timestamp.IsZero() {
		return nil
	}
	t := snap.Timestamp
	return &t
}
