package store

// schema is idempotent; CreateTables may run on every start
var schema = []string{
	`CREATE TABLE IF NOT EXISTS import_log (
		source_key     TEXT        NOT NULL,
		window_key     TEXT        NOT NULL,
		snapshot_time  TIMESTAMPTZ,
		units_found    INTEGER     NOT NULL DEFAULT 0,
		units_imported INTEGER     NOT NULL DEFAULT 0,
		credits_used   INTEGER     NOT NULL DEFAULT 0,
		status         TEXT        NOT NULL CHECK (status IN ('success', 'skipped', 'error')),
		error_message  TEXT,
		run_id         TEXT,
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (source_key, window_key)
	)`,

	`CREATE TABLE IF NOT EXISTS normalized_odds (
		event_id                TEXT PRIMARY KEY,
		sport_key               TEXT        NOT NULL,
		home_team               TEXT        NOT NULL,
		away_team               TEXT        NOT NULL,
		commence_time           TIMESTAMPTZ NOT NULL,
		season                  INTEGER     NOT NULL,
		season_guess            BOOLEAN     NOT NULL DEFAULT FALSE,
		snapshot_at             TIMESTAMPTZ NOT NULL,
		consensus_home_ml       INTEGER,
		consensus_away_ml       INTEGER,
		consensus_spread        NUMERIC(6,1),
		consensus_spread_juice  INTEGER,
		consensus_total         NUMERIC(6,1),
		consensus_over_juice    INTEGER,
		consensus_under_juice   INTEGER,
		best_home_ml            INTEGER,
		best_away_ml            INTEGER,
		best_spread             NUMERIC(6,1),
		best_home_spread_price  INTEGER,
		best_away_spread_price  INTEGER,
		best_total              NUMERIC(6,1),
		best_over_price         INTEGER,
		best_under_price        INTEGER,
		pinnacle                JSONB,
		draftkings              JSONB,
		fanduel                 JSONB,
		books                   JSONB       NOT NULL DEFAULT '{}'::jsonb,
		source_count            INTEGER     NOT NULL DEFAULT 0,
		updated_at              TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS normalized_odds_sport_season_idx ON normalized_odds (sport_key, season)`,

	`CREATE TABLE IF NOT EXISTS tracked_sources (
		handle          TEXT PRIMARY KEY,
		external_id     TEXT,
		last_scraped_at TIMESTAMPTZ,
		active          BOOLEAN     NOT NULL DEFAULT TRUE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS raw_posts (
		post_id       TEXT PRIMARY KEY,
		source_handle TEXT        NOT NULL,
		text          TEXT        NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		engagement    JSONB       NOT NULL DEFAULT '{}'::jsonb,
		parsed_pick   JSONB,
		is_pick       BOOLEAN     NOT NULL DEFAULT FALSE,
		processed     BOOLEAN     NOT NULL DEFAULT FALSE,
		inserted_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS raw_posts_source_idx ON raw_posts (source_handle, created_at DESC)`,
}
