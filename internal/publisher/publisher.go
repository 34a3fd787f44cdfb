// Package publisher fans normalized odds, pick candidates and run summaries
// out to Redis Streams once the store write has succeeded.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Rut304/Matchups-sub003/internal/delta"
	"github.com/Rut304/Matchups-sub003/internal/run"
	"github.com/Rut304/Matchups-sub003/pkg/models"
	"github.com/redis/go-redis/v9"
)

const (
	oddsStreamFormat = "odds.normalized.%s" // odds.normalized.americanfootball_nfl
	PicksStream      = "social.picks"
	RunsStream       = "ingest.runs"

	defaultMaxLen = 100000
)

// OddsMessage is published per changed normalized record
type OddsMessage struct {
	EventID      string    `json:"event_id"`
	SportKey     string    `json:"sport_key"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	CommenceTime time.Time `json:"commence_time"`
	Season       int       `json:"season"`
	SnapshotAt   time.Time `json:"snapshot_at"`
	ChangeType   string    `json:"change_type"`
	RunID        string    `json:"run_id"`

	ConsensusHomeML *int     `json:"consensus_home_ml,omitempty"`
	ConsensusAwayML *int     `json:"consensus_away_ml,omitempty"`
	ConsensusSpread *float64 `json:"consensus_spread,omitempty"`
	ConsensusTotal  *float64 `json:"consensus_total,omitempty"`
	BestHomeML      *int     `json:"best_home_ml,omitempty"`
	BestAwayML      *int     `json:"best_away_ml,omitempty"`
	BestSpread      *float64 `json:"best_spread,omitempty"`
	BestTotal       *float64 `json:"best_total,omitempty"`
	SourceCount     int      `json:"source_count"`
}

// PickMessage is published per stored post that produced a candidate
type PickMessage struct {
	PostID       string                      `json:"post_id"`
	SourceHandle string                      `json:"source_handle"`
	CreatedAt    time.Time                   `json:"created_at"`
	Pick         *models.ParsedPickCandidate `json:"pick"`
	Engagement   models.EngagementMetrics    `json:"engagement"`
	RunID        string                      `json:"run_id"`
}

// Publisher writes to Redis Streams
type Publisher struct {
	redis  redis.Cmdable
	maxLen int64
}

// New creates a Publisher
func New(redisClient redis.Cmdable) *Publisher {
	return &Publisher{redis: redisClient, maxLen: defaultMaxLen}
}

// OddsStream returns the stream key for a sport
func OddsStream(sportKey string) string {
	return fmt.Sprintf(oddsStreamFormat, sportKey)
}

// NewOddsMessage builds the stream payload for a delta
func NewOddsMessage(d delta.Delta, runID string) OddsMessage {
	r := d.Record
	return OddsMessage{
		EventID:         r.EventID,
		SportKey:        r.SportKey,
		HomeTeam:        r.HomeTeam,
		AwayTeam:        r.AwayTeam,
		CommenceTime:    r.CommenceTime,
		Season:          r.Season,
		SnapshotAt:      r.SnapshotAt,
		ChangeType:      string(d.ChangeType),
		RunID:           runID,
		ConsensusHomeML: r.ConsensusHomeML,
		ConsensusAwayML: r.ConsensusAwayML,
		ConsensusSpread: r.ConsensusSpread,
		ConsensusTotal:  r.ConsensusTotal,
		BestHomeML:      r.BestHomeML,
		BestAwayML:      r.BestAwayML,
		BestSpread:      r.BestSpread,
		BestTotal:       r.BestTotal,
		SourceCount:     r.SourceCount,
	}
}

// PublishOdds publishes deltas, one pipeline per sport stream
func (p *Publisher) PublishOdds(ctx context.Context, runID string, deltas []delta.Delta) error {
	if len(deltas) == 0 {
		return nil
	}

	bySport := make(map[string][]delta.Delta)
	var order []string
	for _, d := range deltas {
		if _, ok := bySport[d.Record.SportKey]; !ok {
			order = append(order, d.Record.SportKey)
		}
		bySport[d.Record.SportKey] = append(bySport[d.Record.SportKey], d)
	}

	for _, sportKey := range order {
		pipe := p.redis.Pipeline()
		for _, d := range bySport[sportKey] {
			if err := p.add(ctx, pipe, OddsStream(sportKey), NewOddsMessage(d, runID)); err != nil {
				return err
			}
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("redis pipeline exec for %s: %w", OddsStream(sportKey), err)
		}
	}
	return nil
}

// PublishPicks publishes posts carrying a parsed pick; others are ignored
func (p *Publisher) PublishPicks(ctx context.Context, runID string, posts []models.RawPost) error {
	pipe := p.redis.Pipeline()
	n := 0
	for _, post := range posts {
		if !post.IsPick || post.ParsedPick == nil {
			continue
		}
		msg := PickMessage{
			PostID:       post.PostID,
			SourceHandle: post.SourceHandle,
			CreatedAt:    post.CreatedAt,
			Pick:         post.ParsedPick,
			Engagement:   post.Engagement,
			RunID:        runID,
		}
		if err := p.add(ctx, pipe, PicksStream, msg); err != nil {
			return err
		}
		n++
	}
	if n == 0 {
		return nil
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline exec for %s: %w", PicksStream, err)
	}
	return nil
}

// PublishRunSummary appends a run report to the runs stream
func (p *Publisher) PublishRunSummary(ctx context.Context, s run.Summary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}
	err = p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: RunsStream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{"data": data},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", RunsStream, err)
	}
	return nil
}

func (p *Publisher) add(ctx context.Context, pipe redis.Pipeliner, stream string, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal stream message: %w", err)
	}
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{"data": data},
	})
	return nil
}
