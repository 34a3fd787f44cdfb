package sports

import (
	"testing"
	"time"

	"github.com/Rut304/Matchups-sub003/pkg/models"
)

func TestDefaultConfigs_Valid(t *testing.T) {
	modules, err := NewModules(DefaultConfigs())
	if err != nil {
		t.Fatalf("default configs invalid: %v", err)
	}
	if len(modules) != 5 {
		t.Fatalf("expected 5 default sports, got %d", len(modules))
	}
	if modules[0].GetSportKey() != "americanfootball_nfl" {
		t.Errorf("first sport = %s", modules[0].GetSportKey())
	}

	for _, m := range modules {
		seasons := m.GetSeasons()
		for i := 1; i < len(seasons); i++ {
			if !seasons[i].Start.After(seasons[i-1].End) {
				t.Errorf("%s: season %d overlaps the previous window", m.GetSportKey(), seasons[i].Season)
			}
		}
	}
}

func TestNFLModule(t *testing.T) {
	m, err := NewModule(DefaultConfigs()[0])
	if err != nil {
		t.Fatalf("NewModule: %v", err)
	}

	if m.GetSampleIntervalDays() != 7 {
		t.Errorf("interval = %d, want 7", m.GetSampleIntervalDays())
	}
	if len(m.GetRegions()) != 1 || m.GetRegions()[0] != "us" {
		t.Errorf("regions = %v", m.GetRegions())
	}
	if len(m.GetMarkets()) != 3 {
		t.Errorf("markets = %v", m.GetMarkets())
	}

	first := m.GetSeasons()[0]
	if first.Season != 2020 || !first.Start.Equal(time.Date(2020, 9, 10, 0, 0, 0, 0, time.UTC)) || !first.End.Equal(time.Date(2021, 2, 8, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("2020 window = %+v", first)
	}
}

func TestNewModule_Defaults(t *testing.T) {
	m, err := NewModule(Config{SportKey: "soccer_epl", Seasons: []SeasonConfig{season(2024, "", "2024-08-16", "2025-05-25")}})
	if err != nil {
		t.Fatalf("NewModule: %v", err)
	}
	if m.GetDisplayName() != "soccer_epl" || m.GetSampleIntervalDays() != defaultIntervalDays {
		t.Errorf("defaults not applied: %s %d", m.GetDisplayName(), m.GetSampleIntervalDays())
	}
	if m.GetSeasons()[0].Label != "2024" {
		t.Errorf("label = %q", m.GetSeasons()[0].Label)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing key", Config{Seasons: []SeasonConfig{season(2020, "", "2020-01-01", "2020-02-01")}}},
		{"no seasons", Config{SportKey: "x"}},
		{"bad date", Config{SportKey: "x", Seasons: []SeasonConfig{season(2020, "", "2020-13-01", "2020-02-01")}}},
		{"inverted window", Config{SportKey: "x", Seasons: []SeasonConfig{season(2020, "", "2020-03-01", "2020-02-01")}}},
		{"negative interval", Config{SportKey: "x", IntervalDays: -1, Seasons: []SeasonConfig{season(2020, "", "2020-01-01", "2020-02-01")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateEvent(t *testing.T) {
	valid := models.Event{
		EventID:      "e1",
		SportKey:     "americanfootball_nfl",
		HomeTeam:     "Kansas City Chiefs",
		AwayTeam:     "Buffalo Bills",
		CommenceTime: time.Date(2021, 1, 24, 23, 40, 0, 0, time.UTC),
	}
	if err := ValidateEvent("americanfootball_nfl", valid); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*models.Event)
	}{
		{"wrong sport", func(e *models.Event) { e.SportKey = "basketball_nba" }},
		{"no id", func(e *models.Event) { e.EventID = "" }},
		{"no home", func(e *models.Event) { e.HomeTeam = "" }},
		{"same teams", func(e *models.Event) { e.AwayTeam = e.HomeTeam }},
		{"no commence", func(e *models.Event) { e.CommenceTime = time.Time{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			if err := ValidateEvent("americanfootball_nfl", e); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
