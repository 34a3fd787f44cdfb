package window

import (
	"testing"
	"time"

	"github.com/Rut304/Matchups-sub003/pkg/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestGenerate_SingleSeason(t *testing.T) {
	seasons := []models.SeasonWindow{
		{Season: 2020, Start: day("2020-09-10"), End: day("2021-02-08")},
	}

	dates := Generate(seasons, day("2020-09-01"), day("2021-03-01"), 3)
	if len(dates) == 0 {
		t.Fatal("expected dates")
	}

	if !dates[0].Equal(day("2020-09-10")) {
		t.Errorf("first date = %s, want 2020-09-10", dates[0].Format("2006-01-02"))
	}

	for i := 1; i < len(dates); i++ {
		if got := dates[i].Sub(dates[i-1]); got != 72*time.Hour {
			t.Fatalf("gap between %s and %s is %v", dates[i-1], dates[i], got)
		}
	}

	last := dates[len(dates)-1]
	if last.After(day("2021-02-08")) {
		t.Errorf("last date %s is past the season end", last.Format("2006-01-02"))
	}
	if last.AddDate(0, 0, 3).Before(day("2021-02-09")) {
		t.Errorf("last date %s stops early", last.Format("2006-01-02"))
	}

	for _, d := range dates {
		if !seasons[0].Contains(d) {
			t.Errorf("date %s outside the season window", d.Format("2006-01-02"))
		}
	}
}

func TestGenerate_SkipsOffSeasonGap(t *testing.T) {
	seasons := []models.SeasonWindow{
		{Season: 2020, Start: day("2020-09-10"), End: day("2020-09-20")},
		{Season: 2021, Start: day("2021-09-09"), End: day("2021-09-15")},
	}

	dates := Generate(seasons, day("2020-01-01"), day("2022-01-01"), 5)

	want := []string{"2020-09-10", "2020-09-15", "2020-09-20", "2021-09-09", "2021-09-14"}
	if len(dates) != len(want) {
		t.Fatalf("got %d dates, want %d: %v", len(dates), len(want), dates)
	}
	for i, w := range want {
		if got := dates[i].Format("2006-01-02"); got != w {
			t.Errorf("dates[%d] = %s, want %s", i, got, w)
		}
	}
}

func TestGenerate_ClipsToGlobalRange(t *testing.T) {
	seasons := []models.SeasonWindow{
		{Season: 2020, Start: day("2020-09-10"), End: day("2021-02-08")},
		{Season: 2021, Start: day("2021-09-09"), End: day("2022-02-14")},
	}

	tests := []struct {
		name      string
		from, to  string
		wantFirst string
		wantLast  string
		wantCount int
	}{
		{"range inside season", "2020-10-01", "2020-10-03", "2020-10-01", "2020-10-03", 3},
		{"range starts in gap", "2021-05-01", "2021-09-10", "2021-09-09", "2021-09-10", 2},
		{"range only in gap", "2021-03-01", "2021-08-01", "", "", 0},
		{"from after to", "2021-01-01", "2020-12-01", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates := Generate(seasons, day(tt.from), day(tt.to), 1)
			if len(dates) != tt.wantCount {
				t.Fatalf("got %d dates, want %d", len(dates), tt.wantCount)
			}
			if tt.wantCount == 0 {
				return
			}
			if got := dates[0].Format("2006-01-02"); got != tt.wantFirst {
				t.Errorf("first = %s, want %s", got, tt.wantFirst)
			}
			if got := dates[len(dates)-1].Format("2006-01-02"); got != tt.wantLast {
				t.Errorf("last = %s, want %s", got, tt.wantLast)
			}
		})
	}
}

func TestSeasonFor(t *testing.T) {
	seasons := []models.SeasonWindow{
		{Season: 2020, Start: day("2020-09-10"), End: day("2021-02-08")},
	}

	if s, ok := SeasonFor(seasons, day("2021-01-17").Add(20*time.Hour)); !ok || s != 2020 {
		t.Errorf("SeasonFor(in window) = %d,%v want 2020,true", s, ok)
	}

	if s, ok := SeasonFor(seasons, day("2021-06-01")); ok || s != 2021 {
		t.Errorf("SeasonFor(off season) = %d,%v want 2021,false", s, ok)
	}
}
