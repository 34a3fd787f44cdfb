// Package window produces the ordered sampling dates for a sport.
package window

import (
	"time"

	"github.com/Rut304/Matchups-sub003/pkg/models"
)

// Date truncates t to midnight UTC
func Date(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Generate intersects each season window with [from, to] and steps through the
// overlap every intervalDays days. Windows are visited in definition order and
// windows with no overlap are skipped, so no date outside every window is emitted.
func Generate(seasons []models.SeasonWindow, from, to time.Time, intervalDays int) []time.Time {
	if intervalDays <= 0 {
		intervalDays = 1
	}
	from, to = Date(from), Date(to)

	var dates []time.Time
	for _, season := range seasons {
		start := Date(season.Start)
		if from.After(start) {
			start = from
		}
		end := Date(season.End)
		if to.Before(end) {
			end = to
		}
		if start.After(end) {
			continue
		}

		for d := start; !d.After(end); d = d.AddDate(0, 0, intervalDays) {
			dates = append(dates, d)
		}
	}
	return dates
}

// SeasonFor returns the season whose window contains t.
// ok is false when no window matches and the calendar year is returned instead.
func SeasonFor(seasons []models.SeasonWindow, t time.Time) (season int, ok bool) {
	for _, w := range seasons {
		if w.Contains(t) {
			return w.Season, true
		}
	}
	return t.UTC().Year(), false
}
