package models

import "time"

// Outcome is a single priced side inside a bookmaker market
type Outcome struct {
	Name  string   `json:"name"`
	Price int      `json:"price"`           // American odds
	Point *float64 `json:"point,omitempty"` // For spreads/totals
}

// Market is one market block (h2h, spreads, totals) quoted by a bookmaker
type Market struct {
	Key        string    `json:"key"`
	LastUpdate string    `json:"last_update,omitempty"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Bookmaker is one bookmaker's quotes for an event, kept verbatim for audit
type Bookmaker struct {
	Key        string   `json:"key"`
	Title      string   `json:"title,omitempty"`
	LastUpdate string   `json:"last_update,omitempty"`
	Markets    []Market `json:"markets"`
}

// Event represents a sporting event with all bookmaker quotes from one snapshot
type Event struct {
	EventID      string
	SportKey     string
	SportTitle   string
	HomeTeam     string
	AwayTeam     string
	CommenceTime time.Time
	Bookmakers   []Bookmaker
}

// Snapshot is one historical odds snapshot for a sport at a point in time
type Snapshot struct {
	SportKey          string
	Timestamp         time.Time
	PreviousTimestamp *time.Time
	NextTimestamp     *time.Time
	Events            []Event
}

// BookLine is the flattened view of a single bookmaker's featured markets
type BookLine struct {
	HomeMoneyline   *int     `json:"home_ml,omitempty"`
	AwayMoneyline   *int     `json:"away_ml,omitempty"`
	HomeSpread      *float64 `json:"home_spread,omitempty"`
	HomeSpreadPrice *int     `json:"home_spread_price,omitempty"`
	AwaySpreadPrice *int     `json:"away_spread_price,omitempty"`
	Total           *float64 `json:"total,omitempty"`
	OverPrice       *int     `json:"over_price,omitempty"`
	UnderPrice      *int     `json:"under_price,omitempty"`
}

// NormalizedOddsRecord is the per-event aggregate across every observed bookmaker.
// Nil pointers mean no bookmaker offered that side.
type NormalizedOddsRecord struct {
	EventID      string
	SportKey     string
	HomeTeam     string
	AwayTeam     string
	CommenceTime time.Time
	Season       int
	SeasonGuess  bool // season came from the calendar-year fallback
	SnapshotAt   time.Time

	// Consensus (mean across books)
	ConsensusHomeML      *int
	ConsensusAwayML      *int
	ConsensusSpread      *float64
	ConsensusSpreadJuice *int
	ConsensusTotal       *float64
	ConsensusOverJuice   *int
	ConsensusUnderJuice  *int

	// Best price per side (max across books)
	BestHomeML          *int
	BestAwayML          *int
	BestHomeSpreadPrice *int
	BestAwaySpreadPrice *int
	BestOverPrice       *int
	BestUnderPrice      *int
	BestSpread          *float64
	BestTotal           *float64

	// Priority bookmakers
	Pinnacle   *BookLine
	DraftKings *BookLine
	FanDuel    *BookLine

	// Raw per-bookmaker payload keyed by bookmaker key
	Books       map[string]Bookmaker
	SourceCount int
}

// FetchSnapshotOptions contains parameters for fetching a historical snapshot
type FetchSnapshotOptions struct {
	Sport   string
	At      time.Time
	Regions []string
	Markets []string
}

// RateLimits contains the upstream's view of our quota after the last call
type RateLimits struct {
	RequestsRemaining int
	RequestsUsed      int
	LastCost          int
	ResetTime         time.Time
}
