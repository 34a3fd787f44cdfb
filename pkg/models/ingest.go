package models

import "time"

// ImportStatus is the terminal state of one processed window
type ImportStatus string

const (
	ImportStatusSuccess ImportStatus = "success"
	ImportStatusSkipped ImportStatus = "skipped"
	ImportStatusError   ImportStatus = "error"
)

// ImportLogEntry records the outcome of one (source, window) unit.
// At most one row exists per (SourceKey, WindowKey).
type ImportLogEntry struct {
	SourceKey     string
	WindowKey     string
	SnapshotTime  *time.Time
	UnitsFound    int
	UnitsImported int
	CreditsUsed   int
	Status        ImportStatus
	ErrorMessage  string
	RunID         string
	UpdatedAt     time.Time
}

// SeasonWindow is a configured (start, end) date range for one season, both ends inclusive
type SeasonWindow struct {
	Season int
	Label  string
	Start  time.Time
	End    time.Time
}

// Contains reports whether t falls on a UTC date inside the window
func (w SeasonWindow) Contains(t time.Time) bool {
	t = t.UTC()
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(w.Start) && !d.After(w.End)
}
