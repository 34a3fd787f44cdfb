package sports

import (
	"fmt"

	"github.com/Rut304/Matchups-sub003/pkg/contracts"
	"github.com/Rut304/Matchups-sub003/pkg/models"
)

var _ contracts.SportModule = (*Module)(nil)

const defaultIntervalDays = 3

// Module implements the SportModule interface from a Config
type Module struct {
	config  Config
	seasons []models.SeasonWindow
}

// NewModule validates the config and builds a module
func NewModule(cfg Config) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.DisplayName == "" {
		cfg.DisplayName = cfg.SportKey
	}
	if len(cfg.Regions) == 0 {
		cfg.Regions = DefaultRegions
	}
	if len(cfg.Markets) == 0 {
		cfg.Markets = DefaultMarkets
	}
	if cfg.IntervalDays == 0 {
		cfg.IntervalDays = defaultIntervalDays
	}

	m := &Module{config: cfg}
	for _, s := range cfg.Seasons {
		start, end, _ := s.parse()
		label := s.Label
		if label == "" {
			label = fmt.Sprint(s.Season)
		}
		m.seasons = append(m.seasons, models.SeasonWindow{Season: s.Season, Label: label, Start: start, End: end})
	}
	return m, nil
}

// NewModules builds modules in config order
func NewModules(cfgs []Config) ([]*Module, error) {
	modules := make([]*Module, 0, len(cfgs))
	for _, cfg := range cfgs {
		m, err := NewModule(cfg)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

// GetSportKey returns the sport identifier
func (m *Module) GetSportKey() string {
	return m.config.SportKey
}

// GetDisplayName returns the human-readable name
func (m *Module) GetDisplayName() string {
	return m.config.DisplayName
}

// GetSeasons returns the season windows in definition order
func (m *Module) GetSeasons() []models.SeasonWindow {
	return m.seasons
}

// GetSampleIntervalDays returns the default sampling interval
func (m *Module) GetSampleIntervalDays() int {
	return m.config.IntervalDays
}

// GetRegions returns the bookmaker regions to request
func (m *Module) GetRegions() []string {
	return m.config.Regions
}

// GetMarkets returns the markets to request
func (m *Module) GetMarkets() []string {
	return m.config.Markets
}
