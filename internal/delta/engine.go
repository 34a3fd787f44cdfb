package delta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/Rut304/Matchups-sub003/pkg/models"
	"github.com/redis/go-redis/v9"
)

// Engine detects changed normalized records by comparing against a Redis cache
type Engine struct {
	redis redis.Cmdable
	ttl   time.Duration
}

// Fingerprint is the minimal slice of a record stored in Redis for comparison
type Fingerprint struct {
	ConsensusHomeML      *int     `json:"c_home_ml,omitempty"`
	ConsensusAwayML      *int     `json:"c_away_ml,omitempty"`
	ConsensusSpread      *float64 `json:"c_spread,omitempty"`
	ConsensusSpreadJuice *int     `json:"c_spread_juice,omitempty"`
	ConsensusTotal       *float64 `json:"c_total,omitempty"`
	ConsensusOverJuice   *int     `json:"c_over,omitempty"`
	ConsensusUnderJuice  *int     `json:"c_under,omitempty"`

	BestHomeML          *int     `json:"b_home_ml,omitempty"`
	BestAwayML          *int     `json:"b_away_ml,omitempty"`
	BestSpread          *float64 `json:"b_spread,omitempty"`
	BestHomeSpreadPrice *int     `json:"b_home_spread_price,omitempty"`
	BestAwaySpreadPrice *int     `json:"b_away_spread_price,omitempty"`
	BestTotal           *float64 `json:"b_total,omitempty"`
	BestOverPrice       *int     `json:"b_over,omitempty"`
	BestUnderPrice      *int     `json:"b_under,omitempty"`

	SnapshotAt time.Time `json:"snapshot_at"`
}

// ChangeType indicates the type of change detected
type ChangeType string

const (
	ChangeTypeNew           ChangeType = "new"
	ChangeTypeConsensusOnly ChangeType = "consensus"
	ChangeTypeBestOnly      ChangeType = "best"
	ChangeTypeBoth          ChangeType = "consensus_and_best"
	ChangeTypeNone          ChangeType = "none"
)

// Delta represents a detected change
type Delta struct {
	Record     models.NormalizedOddsRecord
	ChangeType ChangeType
}

// NewEngine creates a new delta detection engine
func NewEngine(redisClient redis.Cmdable, cacheTTL time.Duration) *Engine {
	return &Engine{
		redis: redisClient,
		ttl:   cacheTTL,
	}
}

// DetectChanges returns only the records whose consensus or best fields differ from the cache
func (e *Engine) DetectChanges(ctx context.Context, recs []models.NormalizedOddsRecord) ([]Delta, error) {
	if len(recs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(recs))
	for i, r := range recs {
		keys[i] = BuildKey(r)
	}

	cachedValues, err := e.redis.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	deltas := make([]Delta, 0, len(recs))
	for i, r := range recs {
		var cached any
		if i < len(cachedValues) {
			cached = cachedValues[i]
		}
		if ct := Compare(r, cached); ct != ChangeTypeNone {
			deltas = append(deltas, Delta{Record: r, ChangeType: ct})
		}
	}
	return deltas, nil
}

// UpdateCache writes the fingerprints of recs (write-through, after the store write)
func (e *Engine) UpdateCache(ctx context.Context, recs []models.NormalizedOddsRecord) error {
	if len(recs) == 0 {
		return nil
	}

	pipe := e.redis.Pipeline()
	for _, r := range recs {
		data, err := json.Marshal(FingerprintOf(r))
		if err != nil {
			return fmt.Errorf("marshal fingerprint: %w", err)
		}
		pipe.Set(ctx, BuildKey(r), data, e.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline exec: %w", err)
	}
	return nil
}

// BuildKey creates the cache key for a record
// Format: odds:normalized:{sport_key}:{event_id}
func BuildKey(r models.NormalizedOddsRecord) string {
	return fmt.Sprintf("odds:normalized:%s:%s", r.SportKey, r.EventID)
}

// FingerprintOf extracts the compared fields of a record
func FingerprintOf(r models.NormalizedOddsRecord) Fingerprint {
	return Fingerprint{
		ConsensusHomeML:      r.ConsensusHomeML,
		ConsensusAwayML:      r.ConsensusAwayML,
		ConsensusSpread:      r.ConsensusSpread,
		ConsensusSpreadJuice: r.ConsensusSpreadJuice,
		ConsensusTotal:       r.ConsensusTotal,
		ConsensusOverJuice:   r.ConsensusOverJuice,
		ConsensusUnderJuice:  r.ConsensusUnderJuice,
		BestHomeML:           r.BestHomeML,
		BestAwayML:           r.BestAwayML,
		BestSpread:           r.BestSpread,
		BestHomeSpreadPrice:  r.BestHomeSpreadPrice,
		BestAwaySpreadPrice:  r.BestAwaySpreadPrice,
		BestTotal:            r.BestTotal,
		BestOverPrice:        r.BestOverPrice,
		BestUnderPrice:       r.BestUnderPrice,
		SnapshotAt:           r.SnapshotAt.UTC(),
	}
}

// Compare classifies a record against its cached MGET value. A missing or
// unreadable cache entry counts as new.
func Compare(r models.NormalizedOddsRecord, cachedValue any) ChangeType {
	if cachedValue == nil {
		return ChangeTypeNew
	}
	cachedStr, ok := cachedValue.(string)
	if !ok {
		return ChangeTypeNew
	}
	var cached Fingerprint
	if err := json.Unmarshal([]byte(cachedStr), &cached); err != nil {
		return ChangeTypeNew
	}

	cur := FingerprintOf(r)
	consensusChanged := !reflect.DeepEqual(consensusOf(cur), consensusOf(cached))
	bestChanged := !reflect.DeepEqual(bestOf(cur), bestOf(cached))

	switch {
	case consensusChanged && bestChanged:
		return ChangeTypeBoth
	case consensusChanged:
		return ChangeTypeConsensusOnly
	case bestChanged:
		return ChangeTypeBestOnly
	default:
		return ChangeTypeNone
	}
}

func consensusOf(f Fingerprint) []any {
	return []any{
		intVal(f.ConsensusHomeML), intVal(f.ConsensusAwayML), floatVal(f.ConsensusSpread),
		intVal(f.ConsensusSpreadJuice), floatVal(f.ConsensusTotal),
		intVal(f.ConsensusOverJuice), intVal(f.ConsensusUnderJuice),
	}
}

func bestOf(f Fingerprint) []any {
	return []any{
		intVal(f.BestHomeML), intVal(f.BestAwayML), floatVal(f.BestSpread),
		intVal(f.BestHomeSpreadPrice), intVal(f.BestAwaySpreadPrice), floatVal(f.BestTotal),
		intVal(f.BestOverPrice), intVal(f.BestUnderPrice),
	}
}

// nil stays distinct from zero
func intVal(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatVal(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
