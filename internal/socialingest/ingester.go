// Package socialingest pulls recent posts from tracked accounts, stores each post
// once by id and extracts pick candidates from the new ones.
package socialingest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Rut304/Matchups-sub003/internal/budget"
	"github.com/Rut304/Matchups-sub003/internal/extract"
	"github.com/Rut304/Matchups-sub003/internal/metered"
	"github.com/Rut304/Matchups-sub003/internal/run"
	"github.com/Rut304/Matchups-sub003/pkg/contracts"
	"github.com/Rut304/Matchups-sub003/pkg/models"
	"github.com/rs/zerolog"
)

// SourceKeyPrefix namespaces social units in the import log
const SourceKeyPrefix = "x:"

const (
	defaultBatchSize = 10
	defaultMaxPosts  = 20
)

// SocialSource is the social upstream
type SocialSource interface {
	LookupUser(ctx context.Context, rc *run.Context, handle string) (string, metered.Outcome)
	Timeline(ctx context.Context, rc *run.Context, q models.TimelineQuery) (models.TimelinePage, metered.Outcome)
}

// Store is the subset of the idempotent store the ingester uses
type Store interface {
	contracts.ImportLog
	contracts.SourceStore
	contracts.PostStore
}

// Publisher fans stored pick candidates out to consumers
type Publisher interface {
	PublishPicks(ctx context.Context, runID string, posts []models.RawPost) error
}

// Options bounds one run
type Options struct {
	// Handles are registered as active tracked sources before the run
	Handles []string

	// BatchSize caps how many sources are visited
	BatchSize int

	// MaxPosts is the page size of each timeline call. Older pages are
	// followed while the budget allows.
	MaxPosts int

	// Delay is the pause after every source that made an upstream call
	Delay time.Duration
}

// Ingester visits tracked sources sequentially
type Ingester struct {
	source    SocialSource
	store     Store
	engine    *extract.Engine
	publisher Publisher
	log       zerolog.Logger
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time
}

// New creates an ingester. A nil engine uses the built-in alias table.
func New(source SocialSource, store Store, engine *extract.Engine, log zerolog.Logger) *Ingester {
	if engine == nil {
		engine = extract.NewEngine(nil)
	}
	return &Ingester{
		source: source,
		store:  store,
		engine: engine,
		log:    log,
		sleep:  metered.SleepContext,
		now:    time.Now,
	}
}

// WithPublisher enables publishing of stored picks
func (i *Ingester) WithPublisher(pub Publisher) *Ingester {
	i.publisher = pub
	return i
}

// WithSleep replaces the inter-source pause, for tests
func (i *Ingester) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *Ingester {
	i.sleep = sleep
	return i
}

// NormalizeHandle strips the leading @ and lowercases a handle
func NormalizeHandle(h string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(h), "@"))
}

// Prioritize orders sources for a run: cached identities first, then never
// scraped, then least recently scraped, then by handle
func Prioritize(sources []models.TrackedSource) {
	sort.SliceStable(sources, func(a, b int) bool {
		sa, sb := sources[a], sources[b]
		if ca, cb := sa.CachedExternalID != "", sb.CachedExternalID != ""; ca != cb {
			return ca
		}
		switch {
		case sa.LastScrapedAt == nil && sb.LastScrapedAt != nil:
			return true
		case sa.LastScrapedAt != nil && sb.LastScrapedAt == nil:
			return false
		case sa.LastScrapedAt != nil && !sa.LastScrapedAt.Equal(*sb.LastScrapedAt):
			return sa.LastScrapedAt.Before(*sb.LastScrapedAt)
		}
		return sa.Handle < sb.Handle
	})
}

// Run ingests up to BatchSize tracked sources. Budget stops and fatal upstream
// errors are recorded on rc; only context cancellation and store read failures
// are returned.
func (i *Ingester) Run(ctx context.Context, rc *run.Context, opts Options) error {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.MaxPosts <= 0 {
		opts.MaxPosts = defaultMaxPosts
	}

	sources, err := i.loadSources(ctx, rc, opts.Handles)
	if err != nil {
		return err
	}
	Prioritize(sources)
	if len(sources) > opts.BatchSize {
		sources = sources[:opts.BatchSize]
	}

	i.log.Info().Str("run_id", rc.ID).Int("sources", len(sources)).Msg("ingesting tracked sources")

	windowKey := rc.StartedAt.UTC().Format("2006-01-02")
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		if rc.Stopped() {
			return nil
		}

		called := i.ingestSource(ctx, rc, src, windowKey, opts.MaxPosts)
		if called && opts.Delay > 0 && !rc.Stopped() {
			if err := i.sleep(ctx, opts.Delay); err != nil {
				return err
			}
		}
	}
	return nil
}

// loadSources registers the given handles and returns the active sources.
// On a dry run nothing is registered; unknown handles are visited in memory.
func (i *Ingester) loadSources(ctx context.Context, rc *run.Context, handles []string) ([]models.TrackedSource, error) {
	seen := make(map[string]bool, len(handles))
	var fresh []string
	for _, h := range handles {
		h = NormalizeHandle(h)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		fresh = append(fresh, h)
	}

	if !rc.DryRun {
		for _, h := range fresh {
			if err := i.store.UpsertSource(ctx, h, true); err != nil {
				return nil, fmt.Errorf("register source %s: %w", h, err)
			}
		}
	}

	sources, err := i.store.ListActiveSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tracked sources: %w", err)
	}

	if rc.DryRun {
		known := make(map[string]bool, len(sources))
		for _, s := range sources {
			known[s.Handle] = true
		}
		for _, h := range fresh {
			if !known[h] {
				sources = append(sources, models.TrackedSource{Handle: h, Active: true})
			}
		}
	}
	return sources, nil
}

// ingestSource processes one tracked source and reports whether an upstream call was made
func (i *Ingester) ingestSource(ctx context.Context, rc *run.Context, src models.TrackedSource, windowKey string, maxPosts int) bool {
	sourceKey := SourceKeyPrefix + src.Handle
	log := i.log.With().Str("run_id", rc.ID).Str("handle", src.Handle).Logger()
	consumedBefore := rc.Ledger.Consumed()
	called := false

	entry := models.ImportLogEntry{SourceKey: sourceKey, WindowKey: windowKey}
	finish := func(status models.ImportStatus, err error) {
		entry.Status = status
		entry.CreditsUsed = rc.Ledger.Consumed() - consumedBefore
		if err != nil {
			entry.ErrorMessage = err.Error()
		}
		i.writeLog(ctx, rc, log, entry)
	}

	if !rc.Ledger.CanAfford(1) {
		log.Warn().Msg("call budget exhausted; stopping")
		rc.StopAt(sourceKey, windowKey)
		return false
	}

	userID := src.CachedExternalID
	if userID == "" {
		id, out := i.source.LookupUser(ctx, rc, src.Handle)
		if out.Kind != metered.BudgetDenied {
			called = true
		}
		if !i.handleOutcome(rc, log, out, sourceKey, windowKey, finish) {
			if out.Kind == metered.NoData {
				log.Warn().Msg("handle not found; deactivating source")
				if !rc.DryRun {
					if err := i.store.UpsertSource(ctx, src.Handle, false); err != nil {
						log.Error().Err(err).Msg("deactivate source failed")
						rc.Errors++
					}
				}
			}
			return called
		}
		userID = id
		if !rc.DryRun {
			if err := i.store.CacheSourceID(ctx, src.Handle, userID); err != nil {
				log.Error().Err(err).Msg("cache source id failed")
				rc.Errors++
			}
		}
	}

	fetchedAt := i.now().UTC()
	q := models.TimelineQuery{UserID: userID, MaxResults: maxPosts, Since: src.LastScrapedAt}
	page, out := i.source.Timeline(ctx, rc, q)
	if out.Kind != metered.BudgetDenied {
		called = true
	}
	if out.Kind == metered.NoData {
		log.Debug().Msg("no new posts")
		rc.UnitsProcessed++
		i.markScraped(ctx, rc, log, src.Handle, fetchedAt)
		finish(models.ImportStatusSkipped, nil)
		return called
	}
	if !i.handleOutcome(rc, log, out, sourceKey, windowKey, finish) {
		return called
	}

	posts, pages, incomplete := i.followPages(ctx, rc, log, q, page, sourceKey, windowKey)

	stored, failed := i.storePosts(ctx, rc, log, src.Handle, posts)

	rc.UnitsProcessed++
	rc.RecordsImported += len(stored)

	entry.UnitsFound = len(posts)
	entry.UnitsImported = len(stored)
	switch {
	case incomplete != nil:
		// the window stays open so the next run reads the missing pages
		finish(models.ImportStatusError, incomplete)
	case failed > 0:
		finish(models.ImportStatusError, fmt.Errorf("stored %d of %d new posts", len(stored), len(stored)+failed))
	default:
		i.markScraped(ctx, rc, log, src.Handle, fetchedAt)
		finish(models.ImportStatusSuccess, nil)
	}

	picks := make([]models.RawPost, 0, len(stored))
	for _, p := range stored {
		if p.IsPick {
			picks = append(picks, p)
		}
	}

	log.Info().
		Int("posts", len(posts)).
		Int("pages", pages).
		Int("new", len(stored)).
		Int("failed", failed).
		Int("picks", len(picks)).
		Int("calls_remaining", rc.Ledger.Remaining()).
		Msg("✓ source ingested")

	if !rc.DryRun && i.publisher != nil && len(picks) > 0 {
		if err := i.publisher.PublishPicks(ctx, rc.ID, picks); err != nil {
			log.Warn().Err(err).Msg("publish picks failed")
		}
	}
	return called
}

// followPages reads the pages after first until the window is exhausted. The
// error is non-nil when a page could not be read and the window is unfinished.
func (i *Ingester) followPages(ctx context.Context, rc *run.Context, log zerolog.Logger, q models.TimelineQuery,
	first models.TimelinePage, sourceKey, windowKey string) ([]models.Post, int, error) {
	posts := first.Posts
	pages := 1
	for next := first.NextToken; next != ""; {
		if !rc.Ledger.CanAfford(1) {
			log.Warn().Int("pages", pages).Msg("call budget exhausted mid-timeline; stopping")
			rc.StopAt(sourceKey, windowKey)
			return posts, pages, fmt.Errorf("timeline incomplete after %d page(s): %w", pages, budget.ErrBudgetExhausted)
		}

		q.PageToken = next
		page, out := i.source.Timeline(ctx, rc, q)
		switch {
		case out.Kind == metered.Success:
		case out.Kind == metered.NoData:
			return posts, pages, nil
		case out.Kind == metered.BudgetDenied:
			rc.StopAt(sourceKey, windowKey)
			return posts, pages, fmt.Errorf("timeline incomplete after %d page(s): %w", pages, out.AsError())
		case out.Kind.Fatal():
			err := out.AsError()
			log.Error().Err(err).Msg("fatal upstream response; aborting run")
			rc.Abort(err)
			return posts, pages, fmt.Errorf("timeline incomplete after %d page(s): %w", pages, err)
		default:
			err := out.AsError()
			log.Warn().Err(err).Str("outcome", out.Kind.String()).Msg("timeline page failed")
			rc.Errors++
			return posts, pages, fmt.Errorf("timeline incomplete after %d page(s): %w", pages, err)
		}

		pages++
		posts = append(posts, page.Posts...)
		next = page.NextToken
	}
	return posts, pages, nil
}

// handleOutcome applies the run-level consequences of a non-success outcome.
// It returns true only for Success. NoData is left to the caller.
func (i *Ingester) handleOutcome(rc *run.Context, log zerolog.Logger, out metered.Outcome,
	sourceKey, windowKey string, finish func(models.ImportStatus, error)) bool {
	switch {
	case out.Kind == metered.Success:
		return true

	case out.Kind == metered.BudgetDenied:
		log.Warn().Msg("budget denied the request; stopping")
		rc.StopAt(sourceKey, windowKey)

	case out.Kind.Fatal():
		err := out.AsError()
		log.Error().Err(err).Msg("fatal upstream response; aborting run")
		rc.Abort(err)
		finish(models.ImportStatusError, err)

	case out.Kind == metered.NoData:
		rc.UnitsProcessed++
		finish(models.ImportStatusSkipped, nil)

	default:
		err := out.AsError()
		log.Warn().Err(err).Str("outcome", out.Kind.String()).Msg("source failed; continuing")
		rc.Errors++
		finish(models.ImportStatusError, err)
	}
	return false
}

// storePosts writes every post not already stored. It returns the rows written
// and how many new posts the store rejected.
func (i *Ingester) storePosts(ctx context.Context, rc *run.Context, log zerolog.Logger, handle string, posts []models.Post) ([]models.RawPost, int) {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	existing, err := i.store.ExistingPostIDs(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Msg("batch existence check failed; relying on per-post check")
		existing = nil
	}

	var stored []models.RawPost
	failed := 0
	seen := make(map[string]bool, len(posts))
	for _, p := range posts {
		if p.ID == "" || existing[p.ID] || seen[p.ID] {
			continue
		}
		seen[p.ID] = true

		pick := i.engine.Extract(p)
		raw := models.RawPost{
			PostID:       p.ID,
			SourceHandle: handle,
			Text:         p.Text,
			CreatedAt:    p.CreatedAt,
			Engagement:   p.Engagement,
			ParsedPick:   pick,
			IsPick:       pick != nil,
			Processed:    true,
		}

		if rc.DryRun {
			if pick != nil {
				log.Debug().Str("post_id", p.ID).Str("subject", pick.SubjectEntity).Str("kind", string(pick.PickKind)).Msg("dry run: would store pick")
			}
			stored = append(stored, raw)
			continue
		}

		written, err := i.store.UpsertRawPost(ctx, raw)
		if err != nil {
			log.Error().Err(err).Str("post_id", p.ID).Msg("store post failed")
			rc.Errors++
			failed++
			continue
		}
		if written {
			stored = append(stored, raw)
		}
	}
	return stored, failed
}

func (i *Ingester) markScraped(ctx context.Context, rc *run.Context, log zerolog.Logger, handle string, at time.Time) {
	if rc.DryRun {
		return
	}
	if err := i.store.MarkScraped(ctx, handle, at); err != nil {
		log.Error().Err(err).Msg("mark scraped failed")
		rc.Errors++
	}
}

func (i *Ingester) writeLog(ctx context.Context, rc *run.Context, log zerolog.Logger, entry models.ImportLogEntry) {
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
