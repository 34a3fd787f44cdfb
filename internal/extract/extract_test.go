package extract

import (
	"reflect"
	"testing"

	"github.com/Rut304/Matchups-sub003/pkg/models"
)

func line(v float64) *float64 { return &v }

func TestExtractText(t *testing.T) {
	engine := NewEngine(nil)

	tests := []struct {
		name string
		text string
		want *models.ParsedPickCandidate
	}{
		{
			name: "lock spread",
			text: "Lock: Chiefs -3 tonight",
			want: &models.ParsedPickCandidate{
				SubjectEntity: "Kansas City Chiefs", Domain: "nfl",
				PickKind: models.PickKindSpread, Line: line(-3), ConfidenceTier: models.ConfidenceLock,
			},
		},
		{
			name: "lean with opponent",
			text: "I like the Bills +3 vs Chiefs",
			want: &models.ParsedPickCandidate{
				SubjectEntity: "Buffalo Bills", OpponentEntity: "Kansas City Chiefs", Domain: "nfl",
				PickKind: models.PickKindSpread, Line: line(3), ConfidenceTier: models.ConfidenceLean,
			},
		},
		{
			name: "total overrides spread",
			text: "Bills -2.5 and over 54.5 🔒",
			want: &models.ParsedPickCandidate{
				SubjectEntity: "Buffalo Bills", Domain: "nfl",
				PickKind: models.PickKindTotal, Line: line(54.5), Side: "over", ConfidenceTier: models.ConfidenceLock,
			},
		},
		{
			name: "under shorthand",
			text: "Celtics Heat u 210.5 play",
			want: &models.ParsedPickCandidate{
				SubjectEntity: "Boston Celtics", OpponentEntity: "Miami Heat", Domain: "nba",
				PickKind: models.PickKindTotal, Line: line(210.5), Side: "under", ConfidenceTier: models.ConfidenceStandard,
			},
		},
		{
			name: "o/u line with a separate side",
			text: "Chiefs/Texans o/u 47.5 take the over",
			want: &models.ParsedPickCandidate{
				SubjectEntity: "Kansas City Chiefs", OpponentEntity: "Houston Texans", Domain: "nfl",
				PickKind: models.PickKindTotal, Line: line(47.5), Side: "over", ConfidenceTier: models.ConfidenceStandard,
			},
		},
		{
			name: "o/u line without a side",
			text: "Jets Bills o/u 39",
			want: &models.ParsedPickCandidate{
				SubjectEntity: "New York Jets", OpponentEntity: "Buffalo Bills", Domain: "nfl",
				PickKind: models.PickKindTotal, Line: line(39), ConfidenceTier: models.ConfidenceStandard,
			},
		},
		{
			name: "moneyline price",
			text: "Chiefs ML -150 best bet",
			want: &models.ParsedPickCandidate{
				SubjectEntity: "Kansas City Chiefs", Domain: "nfl",
				PickKind: models.PickKindMoneyline, Line: line(-150), ConfidenceTier: models.ConfidenceLock,
			},
		},
		{
			name: "straight",
			text: "Pick: Lakers tonight",
			want: &models.ParsedPickCandidate{
				SubjectEntity: "Los Angeles Lakers", Domain: "nba",
				PickKind: models.PickKindStraight, ConfidenceTier: models.ConfidenceStandard,
			},
		},
		{
			name: "full name and nickname are one entity",
			text: "Kansas City Chiefs -3 vs Buffalo Bills, Chiefs all day. Bet it",
			want: &models.ParsedPickCandidate{
				SubjectEntity: "Kansas City Chiefs", OpponentEntity: "Buffalo Bills", Domain: "nfl",
				PickKind: models.PickKindSpread, Line: line(-3), ConfidenceTier: models.ConfidenceStandard,
			},
		},
		{
			name: "fullwidth and unicode minus",
			text: "ＬＯＣＫ Niners −7.5",
			want: &models.ParsedPickCandidate{
				SubjectEntity: "San Francisco 49ers", Domain: "nfl",
				PickKind: models.PickKindSpread, Line: line(-7.5), ConfidenceTier: models.ConfidenceLock,
			},
		},
		{name: "no vocabulary", text: "Chiefs looking good tonight", want: nil},
		{name: "no entity", text: "Lock of the day: -3", want: nil},
		{name: "alias inside another word", text: "Lock: Seahawks -3", want: &models.ParsedPickCandidate{
			SubjectEntity: "Seattle Seahawks", Domain: "nfl",
			PickKind: models.PickKindSpread, Line: line(-3), ConfidenceTier: models.ConfidenceLock,
		}},
		{name: "empty", text: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.ExtractText(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractText(%q)\n got  %+v\n want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtract_Deterministic(t *testing.T) {
	table := MustAliasTable([]Entity{{Canonical: "Kansas City Chiefs", Domain: "nfl", Aliases: []string{"Chiefs"}}})
	post := models.Post{ID: "1", Text: "Lock: Chiefs -3 tonight"}

	first := NewEngine(table).Extract(post)
	for i := 0; i < 10; i++ {
		if got := NewEngine(table).Extract(post); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
	if first == nil || first.SubjectEntity != "Kansas City Chiefs" || first.Line == nil || *first.Line != -3 {
		t.Fatalf("unexpected candidate %+v", first)
	}
}

func TestExtract_RejectsReposts(t *testing.T) {
	engine := NewEngine(nil)

	tests := []struct {
		name string
		post models.Post
	}{
		{"flagged repost", models.Post{Text: "Lock: Chiefs -3", IsRepost: true}},
		{"flagged quote", models.Post{Text: "Lock: Chiefs -3", IsQuote: true}},
		{"rt prefix", models.Post{Text: "RT @capper: Lock: Chiefs -3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.Extract(tt.post); got != nil {
				t.Errorf("expected nil for repost, got %+v", got)
			}
		})
	}
}

func TestNewAliasTable_Conflicts(t *testing.T) {
	_, err := NewAliasTable([]Entity{
		{Canonical: "Los Angeles Kings", Aliases: []string{"Kings"}},
		{Canonical: "Sacramento Kings", Aliases: []string{"Kings"}},
	})
	if err == nil {
		t.Fatal("expected conflict error for shared alias")
	}

	if _, err := NewAliasTable([]Entity{{Canonical: ""}}); err == nil {
		t.Fatal("expected error for empty canonical")
	}

	if _, err := NewAliasTable(DefaultEntities); err != nil {
		t.Fatalf("default table invalid: %v", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  LOCK   Chiefs\t-3 ", "lock chiefs -3"},
		{"ＣＨＩＥＦＳ －３", "chiefs -3"},
		{"Chiefs – 3", "chiefs - 3"},
		{"Ch\u200biefs", "chiefs"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
