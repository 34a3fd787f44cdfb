package publisher

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Rut304/Matchups-sub003/internal/delta"
	"github.com/Rut304/Matchups-sub003/pkg/models"
)

func TestOddsStream(t *testing.T) {
	if got := OddsStream("basketball_nba"); got != "odds.normalized.basketball_nba" {
		t.Errorf("OddsStream() = %q", got)
	}
}

func TestNewOddsMessage(t *testing.T) {
	ml := -150
	d := delta.Delta{
		ChangeType: delta.ChangeTypeNew,
		Record: models.NormalizedOddsRecord{
			EventID:         "evt1",
			SportKey:        "americanfootball_nfl",
			Season:          2020,
			SnapshotAt:      time.Date(2021, 1, 24, 12, 0, 0, 0, time.UTC),
			ConsensusHomeML: &ml,
			SourceCount:     3,
		},
	}

	msg := NewOddsMessage(d, "run-1")
	if msg.EventID != "evt1" || msg.ChangeType != "new" || msg.RunID != "run-1" || msg.SourceCount != 3 {
		t.Errorf("unexpected message %+v", msg)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"consensus_home_ml":-150`) {
		t.Errorf("missing consensus in %s", s)
	}
	if strings.Contains(s, "best_home_ml") {
		t.Errorf("nil best price must be omitted: %s", s)
	}
}
