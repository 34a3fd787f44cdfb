package contracts

import (
	"github.com/Rut304/Matchups-sub003/pkg/models"
)

// SportModule describes one importable sport: its upstream key, the seasons it is
// sampled over, and which markets are requested for each snapshot
type SportModule interface {
	// GetSportKey returns the upstream identifier for this sport (e.g., "basketball_nba")
	GetSportKey() string

	// GetDisplayName returns the human-readable name (e.g., "NBA Basketball")
	GetDisplayName() string

	// GetSeasons returns the configured season windows in definition order
	GetSeasons() []models.SeasonWindow

	// GetSampleIntervalDays returns the default spacing between sampled dates
	GetSampleIntervalDays() int

	// GetRegions returns the bookmaker regions to request (e.g., ["us"])
	GetRegions() []string

	// GetMarkets returns the markets to request (h2h, spreads, totals)
	GetMarkets() []string
}
