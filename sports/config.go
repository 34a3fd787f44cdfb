// Package sports holds the per-sport import configuration: upstream key,
// season windows and sampling interval.
package sports

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Default request shape for every sport
var (
	DefaultRegions = []string{"us"}
	DefaultMarkets = []string{"h2h", "spreads", "totals"}
)

// Config describes one sport. Dates are YYYY-MM-DD, both ends inclusive.
type Config struct {
	SportKey     string         `yaml:"key"`
	DisplayName  string         `yaml:"display_name"`
	Regions      []string       `yaml:"regions"`
	Markets      []string       `yaml:"markets"`
	IntervalDays int            `yaml:"interval_days"`
	Seasons      []SeasonConfig `yaml:"seasons"`
}

// SeasonConfig is one season window as written in configuration
type SeasonConfig struct {
	Season int    `yaml:"season"`
	Label  string `yaml:"label"`
	Start  string `yaml:"start"`
	End    string `yaml:"end"`
}

func season(year int, label, start, end string) SeasonConfig {
	return SeasonConfig{Season: year, Label: label, Start: start, End: end}
}

// DefaultConfigs returns the built-in sports in their default processing order
func DefaultConfigs() []Config {
	return []Config{
		{
			SportKey:     "americanfootball_nfl",
			DisplayName:  "NFL",
			IntervalDays: 7,
			Seasons: []SeasonConfig{
				season(2020, "2020", "2020-09-10", "2021-02-08"),
				season(2021, "2021", "2021-09-09", "2022-02-14"),
				season(2022, "2022", "2022-09-08", "2023-02-13"),
				season(2023, "2023", "2023-09-07", "2024-02-12"),
				season(2024, "2024", "2024-09-05", "2025-02-10"),
				season(2025, "2025", "2025-09-04", "2026-02-09"),
			},
		},
		{
			SportKey:     "americanfootball_ncaaf",
			DisplayName:  "NCAA Football",
			IntervalDays: 7,
			Seasons: []SeasonConfig{
				season(2020, "2020", "2020-09-03", "2021-01-12"),
				season(2021, "2021", "2021-08-28", "2022-01-11"),
				season(2022, "2022", "2022-08-27", "2023-01-10"),
				season(2023, "2023", "2023-08-26", "2024-01-09"),
				season(2024, "2024", "2024-08-24", "2025-01-21"),
				season(2025, "2025", "2025-08-23", "2026-01-20"),
			},
		},
		{
			SportKey:     "basketball_nba",
			DisplayName:  "NBA Basketball",
			IntervalDays: 3,
			Seasons: []SeasonConfig{
				season(2019, "2019-20", "2020-07-30", "2020-10-12"),
				season(2020, "2020-21", "2020-12-22", "2021-07-21"),
				season(2021, "2021-22", "2021-10-19", "2022-06-17"),
				season(2022, "2022-23", "2022-10-18", "2023-06-13"),
				season(2023, "2023-24", "2023-10-24", "2024-06-18"),
				season(2024, "2024-25", "2024-10-22", "2025-06-23"),
				season(2025, "2025-26", "2025-10-21", "2026-06-20"),
			},
		},
		{
			SportKey:     "icehockey_nhl",
			DisplayName:  "NHL",
			IntervalDays: 3,
			Seasons: []SeasonConfig{
				season(2019, "2019-20", "2020-08-01", "2020-09-28"),
				season(2020, "2020-21", "2021-01-13", "2021-07-08"),
				season(2021, "2021-22", "2021-10-12", "2022-06-27"),
				season(2022, "2022-23", "2022-10-07", "2023-06-14"),
				season(2023, "2023-24", "2023-10-10", "2024-06-25"),
				season(2024, "2024-25", "2024-10-04", "2025-06-18"),
				season(2025, "2025-26", "2025-10-07", "2026-06-20"),
			},
		},
		{
			SportKey:     "baseball_mlb",
			DisplayName:  "MLB",
			IntervalDays: 3,
			Seasons: []SeasonConfig{
				season(2020, "2020", "2020-07-23", "2020-10-28"),
				season(2021, "2021", "2021-04-01", "2021-11-03"),
				season(2022, "2022", "2022-04-07", "2022-11-06"),
				season(2023, "2023", "2023-03-30", "2023-11-02"),
				season(2024, "2024", "2024-03-20", "2024-10-31"),
				season(2025, "2025", "2025-03-18", "2025-11-02"),
			},
		},
	}
}

// Validate checks required fields and that every window parses with start <= end
func (c Config) Validate() error {
	if c.SportKey == "" {
		return fmt.Errorf("sport key is required")
	}
	if c.IntervalDays < 0 {
		return fmt.Errorf("%s: interval_days cannot be negative", c.SportKey)
	}
	if len(c.Seasons) == 0 {
		return fmt.Errorf("%s: at least one season window is required", c.SportKey)
	}
	for _, s := range c.Seasons {
		start, end, err := s.parse()
		if err != nil {
			return fmt.Errorf("%s season %d: %w", c.SportKey, s.Season, err)
		}
		if start.After(end) {
			return fmt.Errorf("%s season %d: start %s is after end %s", c.SportKey, s.Season, s.Start, s.End)
		}
	}
	return nil
}

func (s SeasonConfig) parse() (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, s.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start %q: %w", s.Start, err)
	}
	end, err := time.Parse(dateLayout, s.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end %q: %w", s.End, err)
	}
	return start, end, nil
}
