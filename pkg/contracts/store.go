package contracts

import (
	"context"
	"time"

	"github.com/Rut304/Matchups-sub003/pkg/models"
)

// ImportLog answers "has this unit already been imported?" and records unit outcomes
type ImportLog interface {
	// HasSucceeded reports whether a success row exists for the key
	HasSucceeded(ctx context.Context, sourceKey, windowKey string) (bool, error)

	// UpsertLog writes the entry, replacing any row with the same key
	UpsertLog(ctx context.Context, entry models.ImportLogEntry) error
}

// OddsStore persists normalized odds records keyed by external event id
type OddsStore interface {
	// UpsertOddsRecord always overwrites; later snapshots are authoritative
	UpsertOddsRecord(ctx context.Context, rec models.NormalizedOddsRecord) error
}

// SourceStore is the tracked-source registry
type SourceStore interface {
	ListActiveSources(ctx context.Context) ([]models.TrackedSource, error)
	UpsertSource(ctx context.Context, handle string, active bool) error
	CacheSourceID(ctx context.Context, handle, externalID string) error
	MarkScraped(ctx context.Context, handle string, at time.Time) error
}

// PostStore persists raw posts; a post id is never overwritten once stored
type PostStore interface {
	PostExists(ctx context.Context, postID string) (bool, error)

	// ExistingPostIDs returns the subset of ids already stored
	ExistingPostIDs(ctx context.Context, postIDs []string) (map[string]bool, error)

	// UpsertRawPost inserts the post unless its id already exists and
	// reports whether a row was written
	UpsertRawPost(ctx context.Context, post models.RawPost) (bool, error)
}

// Store is the full idempotent store used by both pipelines
type Store interface {
	ImportLog
	OddsStore
	SourceStore
	PostStore

	// CreateTables bootstraps every table this core reads and writes
	CreateTables(ctx context.Context) error
}
