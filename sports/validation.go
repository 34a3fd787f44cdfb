package sports

import (
	"fmt"

	"github.com/Rut304/Matchups-sub003/pkg/models"
)

// ValidateEvent checks an upstream event before aggregation
func ValidateEvent(sportKey string, event models.Event) error {
	if event.EventID == "" {
		return fmt.Errorf("event id cannot be empty")
	}

	if event.SportKey != "" && event.SportKey != sportKey {
		return fmt.Errorf("invalid sport key: expected %s, got %s", sportKey, event.SportKey)
	}

	if event.HomeTeam == "" {
		return fmt.Errorf("home team cannot be empty")
	}

	if event.AwayTeam == "" {
		return fmt.Errorf("away team cannot be empty")
	}

	if event.HomeTeam == event.AwayTeam {
		return fmt.Errorf("home and away teams cannot be the same")
	}

	if event.CommenceTime.IsZero() {
		return fmt.Errorf("commence time is required")
	}

	return nil
}
