// Package store is the Postgres-backed idempotent store shared by both pipelines.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Rut304/Matchups-sub003/pkg/contracts"
	"github.com/Rut304/Matchups-sub003/pkg/models"
	"github.com/lib/pq"
)

var _ contracts.Store = (*Postgres)(nil)

// Postgres implements contracts.Store on database/sql with lib/pq
type Postgres struct {
	db  *sql.DB
	now func() time.Time
}

// Open connects and pings the database
func Open(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return New(db), nil
}

// New wraps an open handle
func New(db *sql.DB) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

// Close closes the underlying handle
func (p *Postgres) Close() error {
	return p.db.Close()
}

// CreateTables runs the bootstrap DDL
func (p *Postgres) CreateTables(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// HasSucceeded reports whether the unit has a success row
func (p *Postgres) HasSucceeded(ctx context.Context, sourceKey, windowKey string) (bool, error) {
	var ok bool
	err := p.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM import_log
			WHERE source_key = $1 AND window_key = $2 AND status = 'success'
		)
	`, sourceKey, windowKey).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("query import log: %w", err)
	}
	return ok, nil
}

// UpsertLog writes one row per (source, window). A success row is never
// downgraded by a later non-success entry.
func (p *Postgres) UpsertLog(ctx context.Context, e models.ImportLogEntry) error {
	updatedAt := e.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = p.now().UTC()
	}

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO import_log (
			source_key, window_key, snapshot_time, units_found, units_imported,
			credits_used, status, error_message, run_id, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (source_key, window_key)
		DO UPDATE SET
			snapshot_time  = EXCLUDED.snapshot_time,
			units_found    = EXCLUDED.units_found,
			units_imported = EXCLUDED.units_imported,
			credits_used   = EXCLUDED.credits_used,
			status         = EXCLUDED.status,
			error_message  = EXCLUDED.error_message,
			run_id         = EXCLUDED.run_id,
			updated_at     = EXCLUDED.updated_at
		WHERE import_log.status <> 'success' OR EXCLUDED.status = 'success'
	`,
		e.SourceKey, e.WindowKey, e.SnapshotTime, e.UnitsFound, e.UnitsImported,
		e.CreditsUsed, string(e.Status), nullString(e.ErrorMessage), nullString(e.RunID), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert import log %s/%s: %w", e.SourceKey, e.WindowKey, err)
	}
	return nil
}

// UpsertOddsRecord overwrites the record for the event id
func (p *Postgres) UpsertOddsRecord(ctx context.Context, r models.NormalizedOddsRecord) error {
	books, err := json.Marshal(r.Books)
	if err != nil {
		return fmt.Errorf("marshal books: %w", err)
	}
	pinnacle, err := jsonOrNull(r.Pinnacle)
	if err != nil {
		return err
	}
	draftkings, err := jsonOrNull(r.DraftKings)
	if err != nil {
		return err
	}
	fanduel, err := jsonOrNull(r.FanDuel)
	if err != nil {
		return err
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO normalized_odds (
			event_id, sport_key, home_team, away_team, commence_time, season, season_guess, snapshot_at,
			consensus_home_ml, consensus_away_ml, consensus_spread, consensus_spread_juice,
			consensus_total, consensus_over_juice, consensus_under_juice,
			best_home_ml, best_away_ml, best_spread, best_home_spread_price, best_away_spread_price,
			best_total, best_over_price, best_under_price,
			pinnacle, draftkings, fanduel, books, source_count, updated_at
		)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12,
			$13, $14, $15,
			$16, $17, $18, $19, $20,
			$21, $22, $23,
			$24::jsonb, $25::jsonb, $26::jsonb, $27::jsonb, $28, $29
		)
		ON CONFLICT (event_id)
		DO UPDATE SET
			sport_key              = EXCLUDED.sport_key,
			home_team              = EXCLUDED.home_team,
			away_team              = EXCLUDED.away_team,
			commence_time          = EXCLUDED.commence_time,
			season                 = EXCLUDED.season,
			season_guess           = EXCLUDED.season_guess,
			snapshot_at            = EXCLUDED.snapshot_at,
			consensus_home_ml      = EXCLUDED.consensus_home_ml,
			consensus_away_ml      = EXCLUDED.consensus_away_ml,
			consensus_spread       = EXCLUDED.consensus_spread,
			consensus_spread_juice = EXCLUDED.consensus_spread_juice,
			consensus_total        = EXCLUDED.consensus_total,
			consensus_over_juice   = EXCLUDED.consensus_over_juice,
			consensus_under_juice  = EXCLUDED.consensus_under_juice,
			best_home_ml           = EXCLUDED.best_home_ml,
			best_away_ml           = EXCLUDED.best_away_ml,
			best_spread            = EXCLUDED.best_spread,
			best_home_spread_price = EXCLUDED.best_home_spread_price,
			best_away_spread_price = EXCLUDED.best_away_spread_price,
			best_total             = EXCLUDED.best_total,
			best_over_price        = EXCLUDED.best_over_price,
			best_under_price       = EXCLUDED.best_under_price,
			pinnacle               = EXCLUDED.pinnacle,
			draftkings             = EXCLUDED.draftkings,
			fanduel                = EXCLUDED.fanduel,
			books                  = EXCLUDED.books,
			source_count           = EXCLUDED.source_count,
			updated_at             = EXCLUDED.updated_at
	`,
		r.EventID, r.SportKey, r.HomeTeam, r.AwayTeam, r.CommenceTime, r.Season, r.SeasonGuess, r.SnapshotAt,
		r.ConsensusHomeML, r.ConsensusAwayML, r.ConsensusSpread, r.ConsensusSpreadJuice,
		r.ConsensusTotal, r.ConsensusOverJuice, r.ConsensusUnderJuice,
		r.BestHomeML, r.BestAwayML, r.BestSpread, r.BestHomeSpreadPrice, r.BestAwaySpreadPrice,
		r.BestTotal, r.BestOverPrice, r.BestUnderPrice,
		pinnacle, draftkings, fanduel, string(books), r.SourceCount, p.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert odds record %s: %w", r.EventID, err)
	}
	return nil
}

// ListActiveSources returns active tracked sources in priority order
func (p *Postgres) ListActiveSources(ctx context.Context) ([]models.TrackedSource, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT handle, external_id, last_scraped_at, active
		FROM tracked_sources
		WHERE active
		ORDER BY (external_id IS NULL), last_scraped_at ASC NULLS FIRST, handle
	`)
	if err != nil {
		return nil, fmt.Errorf("query tracked sources: %w", err)
	}
	defer rows.Close()

	var sources []models.TrackedSource
	for rows.Next() {
		var (
			src        models.TrackedSource
			externalID sql.NullString
			scrapedAt  sql.NullTime
		)
		if err := rows.Scan(&src.Handle, &externalID, &scrapedAt, &src.Active); err != nil {
			return nil, fmt.Errorf("scan tracked source: %w", err)
		}
		src.CachedExternalID = externalID.String
		if scrapedAt.Valid {
			t := scrapedAt.Time
			src.LastScrapedAt = &t
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// UpsertSource registers a handle or toggles its active flag
func (p *Postgres) UpsertSource(ctx context.Context, handle string, active bool) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO tracked_sources (handle, active)
		VALUES ($1, $2)
		ON CONFLICT (handle) DO UPDATE SET active = EXCLUDED.active
	`, handle, active)
	if err != nil {
		return fmt.Errorf("upsert tracked source %s: %w", handle, err)
	}
	return nil
}

// CacheSourceID stores a resolved external id
func (p *Postgres) CacheSourceID(ctx context.Context, handle, externalID string) error {
	_, err := p.db.ExecContext(ctx, `UPDATE tracked_sources SET external_id = $2 WHERE handle = $1`, handle, externalID)
	if err != nil {
		return fmt.Errorf("cache source id %s: %w", handle, err)
	}
	return nil
}

// MarkScraped records the last scrape time
func (p *Postgres) MarkScraped(ctx context.Context, handle string, at time.Time) error {
	_, err := p.db.ExecContext(ctx, `UPDATE tracked_sources SET last_scraped_at = $2 WHERE handle = $1`, handle, at.UTC())
	if err != nil {
		return fmt.Errorf("mark scraped %s: %w", handle, err)
	}
	return nil
}

// PostExists reports whether the post id is stored
func (p *Postgres) PostExists(ctx context.Context, postID string) (bool, error) {
	var ok bool
	err := p.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM raw_posts WHERE post_id = $1)`, postID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("query raw post %s: %w", postID, err)
	}
	return ok, nil
}

// ExistingPostIDs looks up a batch of ids in one round trip
func (p *Postgres) ExistingPostIDs(ctx context.Context, postIDs []string) (map[string]bool, error) {
	found := make(map[string]bool)
	if len(postIDs) == 0 {
		return found, nil
	}

	rows, err := p.db.QueryContext(ctx, `SELECT post_id FROM raw_posts WHERE post_id = ANY($1::text[])`, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("query raw posts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan raw post id: %w", err)
		}
		found[id] = true
	}
	return found, rows.Err()
}

// UpsertRawPost inserts a post unless the id is already stored. Stored posts are
// never overwritten.
func (p *Postgres) UpsertRawPost(ctx context.Context, post models.RawPost) (bool, error) {
	exists, err := p.PostExists(ctx, post.PostID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	engagement, err := json.Marshal(post.Engagement)
	if err != nil {
		return false, fmt.Errorf("marshal engagement: %w", err)
	}
	pick, err := jsonOrNull(post.ParsedPick)
	if err != nil {
		return false, err
	}

	res, err := p.db.ExecContext(ctx, `
		INSERT INTO raw_posts (
			post_id, source_handle, text, created_at, engagement, parsed_pick, is_pick, processed
		)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7, $8)
		ON CONFLICT (post_id) DO NOTHING
	`,
		post.PostID, post.SourceHandle, post.Text, post.CreatedAt.UTC(),
		string(engagement), pick, post.IsPick, post.Processed,
	)
	if err != nil {
		return false, fmt.Errorf("insert raw post %s: %w", post.PostID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// jsonOrNull marshals v for a JSONB column; nil pointers become SQL NULL
func jsonOrNull[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal jsonb: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
