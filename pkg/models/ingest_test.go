package models

import (
	"testing"
	"time"
)

func TestSeasonWindow_Contains(t *testing.T) {
	w := SeasonWindow{
		Season: 2020,
		Start:  time.Date(2020, 9, 10, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2021, 2, 8, 0, 0, 0, 0, time.UTC),
	}
	eastern := time.FixedZone("EST", -5*60*60)

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"first day", time.Date(2020, 9, 10, 0, 20, 0, 0, time.UTC), true},
		{"last day late", time.Date(2021, 2, 8, 23, 59, 0, 0, time.UTC), true},
		{"day before start", time.Date(2020, 9, 9, 23, 0, 0, 0, time.UTC), false},
		{"day after end", time.Date(2021, 2, 9, 0, 0, 0, 0, time.UTC), false},
		// 20:00 EST on the last day is already the next UTC date
		{"local evening after the last UTC day", time.Date(2021, 2, 8, 20, 0, 0, 0, eastern), false},
		{"local evening before the first UTC day", time.Date(2020, 9, 9, 20, 0, 0, 0, eastern), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Contains(tt.t); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}
