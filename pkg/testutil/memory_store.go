package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Rut304/Matchups-sub003/pkg/contracts"
	"github.com/Rut304/Matchups-sub003/pkg/models"
)

var _ contracts.Store = (*MemoryStore)(nil)

// ErrInjected is returned by MemoryStore writes configured to fail
var ErrInjected = errors.New("injected store failure")

// MemoryStore is an in-memory contracts.Store for tests
type MemoryStore struct {
	mu sync.Mutex

	Logs    map[string]models.ImportLogEntry // "source|window"
	Odds    map[string]models.NormalizedOddsRecord
	Sources map[string]models.TrackedSource
	Posts   map[string]models.RawPost

	// FailEvents makes UpsertOddsRecord fail for the listed event ids
	FailEvents map[string]bool

	// FailPosts makes UpsertRawPost fail for the listed post ids
	FailPosts map[string]bool

	OddsWrites    int
	TablesCreated int
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Logs:       make(map[string]models.ImportLogEntry),
		Odds:       make(map[string]models.NormalizedOddsRecord),
		Sources:    make(map[string]models.TrackedSource),
		Posts:      make(map[string]models.RawPost),
		FailEvents: make(map[string]bool),
		FailPosts:  make(map[string]bool),
	}
}

func logKey(source, window string) string { return source + "|" + window }

func (m *MemoryStore) CreateTables(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TablesCreated++
	return nil
}

func (m *MemoryStore) HasSucceeded(ctx context.Context, sourceKey, windowKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Logs[logKey(sourceKey, windowKey)]
	return ok && e.Status == models.ImportStatusSuccess, nil
}

func (m *MemoryStore) UpsertLog(ctx context.Context, entry models.ImportLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := logKey(entry.SourceKey, entry.WindowKey)
	if prev, ok := m.Logs[k]; ok && prev.Status == models.ImportStatusSuccess && entry.Status != models.ImportStatusSuccess {
		return nil
	}
	m.Logs[k] = entry
	return nil
}

// Log returns the entry for a unit
func (m *MemoryStore) Log(sourceKey, windowKey string) (models.ImportLogEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Logs[logKey(sourceKey, windowKey)]
	return e, ok
}

func (m *MemoryStore) UpsertOddsRecord(ctx context.Context, rec models.NormalizedOddsRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailEvents[rec.EventID] {
		return ErrInjected
	}
	m.Odds[rec.EventID] = rec
	m.OddsWrites++
	return nil
}

func (m *MemoryStore) ListActiveSources(ctx context.Context) ([]models.TrackedSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TrackedSource
	for _, s := range m.Sources {
		if s.Active {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out, nil
}

func (m *MemoryStore) UpsertSource(ctx context.Context, handle string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.Sources[handle]
	s.Handle = handle
	s.Active = active
	m.Sources[handle] = s
	return nil
}

func (m *MemoryStore) CacheSourceID(ctx context.Context, handle, externalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Sources[handle]
	if !ok {
		return nil
	}
	s.CachedExternalID = externalID
	m.Sources[handle] = s
	return nil
}

func (m *MemoryStore) MarkScraped(ctx context.Context, handle string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Sources[handle]
	if !ok {
		return nil
	}
	t := at.UTC()
	s.LastScrapedAt = &t
	m.Sources[handle] = s
	return nil
}

func (m *MemoryStore) PostExists(ctx context.Context, postID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Posts[postID]
	return ok, nil
}

func (m *MemoryStore) ExistingPostIDs(ctx context.Context, postIDs []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := make(map[string]bool)
	for _, id := range postIDs {
		if _, ok := m.Posts[id]; ok {
			found[id] = true
		}
	}
	return found, nil
}

func (m *MemoryStore) UpsertRawPost(ctx context.Context, post models.RawPost) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPosts[post.PostID] {
		return false, ErrInjected
	}
	if _, ok := m.Posts[post.PostID]; ok {
		return false, nil
	}
	m.Posts[post.PostID] = post
	return true, nil
}
