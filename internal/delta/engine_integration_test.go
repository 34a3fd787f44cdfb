//go:build integration

package delta

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Rut304/Matchups-sub003/pkg/models"
	"github.com/redis/go-redis/v9"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD"), DB: 1})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("skipping integration test: %v", err)
	}
	client.FlushDB(context.Background())
	t.Cleanup(func() { client.Close() })
	return client
}

func TestEngine_DetectAndUpdate(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(testRedis(t), time.Minute)

	rec := baseRecord()
	deltas, err := engine.DetectChanges(ctx, []models.NormalizedOddsRecord{rec})
	if err != nil {
		t.Fatalf("DetectChanges: %v", err)
	}
	if len(deltas) != 1 || deltas[0].ChangeType != ChangeTypeNew {
		t.Fatalf("first pass deltas = %+v, want one new", deltas)
	}

	if err := engine.UpdateCache(ctx, []models.NormalizedOddsRecord{rec}); err != nil {
		t.Fatalf("UpdateCache: %v", err)
	}

	deltas, err = engine.DetectChanges(ctx, []models.NormalizedOddsRecord{rec})
	if err != nil {
		t.Fatalf("DetectChanges: %v", err)
	}
	if len(deltas) != 0 {
		t.Fatalf("unchanged record produced deltas: %+v", deltas)
	}

	rec.ConsensusHomeML = ip(-160)
	deltas, _ = engine.DetectChanges(ctx, []models.NormalizedOddsRecord{rec})
	if len(deltas) != 1 || deltas[0].ChangeType != ChangeTypeConsensusOnly {
		t.Fatalf("changed record deltas = %+v", deltas)
	}
}
