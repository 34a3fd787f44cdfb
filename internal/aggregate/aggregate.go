// Package aggregate turns multi-bookmaker snapshot events into one normalized record per event.
package aggregate

import (
	"strings"
	"time"

	"github.com/Rut304/Matchups-sub003/internal/window"
	"github.com/Rut304/Matchups-sub003/pkg/models"
	"github.com/rs/zerolog"
)

// Market keys as used by the odds upstream
const (
	MarketMoneyline = "h2h"
	MarketSpreads   = "spreads"
	MarketTotals    = "totals"
)

// Priority bookmakers copied into dedicated record fields
const (
	BookPinnacle   = "pinnacle"
	BookDraftKings = "draftkings"
	BookFanDuel    = "fanduel"
)

// Aggregator normalizes snapshot events
type Aggregator struct {
	log zerolog.Logger
}

// New creates an Aggregator
func New(log zerolog.Logger) *Aggregator {
	return &Aggregator{log: log}
}

// Aggregate normalizes every event in the snapshot, in payload order
func (a *Aggregator) Aggregate(snap *models.Snapshot, seasons []models.SeasonWindow) []models.NormalizedOddsRecord {
	if snap == nil {
		return nil
	}
	records := make([]models.NormalizedOddsRecord, 0, len(snap.Events))
	for _, evt := range snap.Events {
		records = append(records, a.AggregateEvent(evt, snap.Timestamp, seasons))
	}
	return records
}

// sides collects every observed quote per side across bookmakers
type sides struct {
	homeML, awayML              []int
	homeSpreadPrice, awaySpread []int
	overPrice, underPrice       []int
	spreads, totals             []float64
}

// AggregateEvent builds the normalized record for one event
func (a *Aggregator) AggregateEvent(evt models.Event, snapshotAt time.Time, seasons []models.SeasonWindow) models.NormalizedOddsRecord {
	rec := models.NormalizedOddsRecord{
		EventID:      evt.EventID,
		SportKey:     evt.SportKey,
		HomeTeam:     evt.HomeTeam,
		AwayTeam:     evt.AwayTeam,
		CommenceTime: evt.CommenceTime,
		SnapshotAt:   snapshotAt,
		Books:        make(map[string]models.Bookmaker, len(evt.Bookmakers)),
		SourceCount:  len(evt.Bookmakers),
	}

	season, ok := window.SeasonFor(seasons, evt.CommenceTime)
	rec.Season = season
	if !ok {
		rec.SeasonGuess = true
		a.log.Warn().
			Str("event_id", evt.EventID).
			Str("sport", evt.SportKey).
			Time("commence_time", evt.CommenceTime).
			Int("season", season).
			Msg("event outside configured seasons; using calendar year")
	}

	var s sides
	for _, bm := range evt.Bookmakers {
		rec.Books[bm.Key] = bm

		line := BookLineFor(bm, evt.HomeTeam, evt.AwayTeam)
		s.add(line)

		switch strings.ToLower(bm.Key) {
		case BookPinnacle:
			rec.Pinnacle = &line
		case BookDraftKings:
			rec.DraftKings = &line
		case BookFanDuel:
			rec.FanDuel = &line
		}
	}

	rec.ConsensusHomeML = ConsensusPrice(s.homeML)
	rec.ConsensusAwayML = ConsensusPrice(s.awayML)
	rec.ConsensusSpread = ConsensusPoint(s.spreads)
	rec.ConsensusSpreadJuice = ConsensusPrice(s.homeSpreadPrice)
	rec.ConsensusTotal = ConsensusPoint(s.totals)
	rec.ConsensusOverJuice = ConsensusPrice(s.overPrice)
	rec.ConsensusUnderJuice = ConsensusPrice(s.underPrice)

	rec.BestHomeML = BestPrice(s.homeML)
	rec.BestAwayML = BestPrice(s.awayML)
	rec.BestHomeSpreadPrice = BestPrice(s.homeSpreadPrice)
	rec.BestAwaySpreadPrice = BestPrice(s.awaySpread)
	rec.BestOverPrice = BestPrice(s.overPrice)
	rec.BestUnderPrice = BestPrice(s.underPrice)
	rec.BestSpread = LargestMagnitude(s.spreads)
	rec.BestTotal = LargestMagnitude(s.totals)

	return rec
}

func (s *sides) add(l models.BookLine) {
	if l.HomeMoneyline != nil {
		s.homeML = append(s.homeML, *l.HomeMoneyline)
	}
	if l.AwayMoneyline != nil {
		s.awayML = append(s.awayML, *l.AwayMoneyline)
	}
	if l.HomeSpread != nil {
		s.spreads = append(s.spreads, *l.HomeSpread)
	}
	if l.HomeSpreadPrice != nil {
		s.homeSpreadPrice = append(s.homeSpreadPrice, *l.HomeSpreadPrice)
	}
	if l.AwaySpreadPrice != nil {
		s.awaySpread = append(s.awaySpread, *l.AwaySpreadPrice)
	}
	if l.Total != nil {
		s.totals = append(s.totals, *l.Total)
	}
	if l.OverPrice != nil {
		s.overPrice = append(s.overPrice, *l.OverPrice)
	}
	if l.UnderPrice != nil {
		s.underPrice = append(s.underPrice, *l.UnderPrice)
	}
}

// BookLineFor flattens one bookmaker block. The home team is the subject side
// for spreads; totals take their point from the Over outcome, falling back to Under.
func BookLineFor(bm models.Bookmaker, homeTeam, awayTeam string) models.BookLine {
	var line models.BookLine

	for _, m := range bm.Markets {
		for _, o := range m.Outcomes {
			price := o.Price
			switch m.Key {
			case MarketMoneyline:
				switch {
				case strings.EqualFold(o.Name, homeTeam):
					line.HomeMoneyline = &price
				case strings.EqualFold(o.Name, awayTeam):
					line.AwayMoneyline = &price
				}

			case MarketSpreads:
				switch {
				case strings.EqualFold(o.Name, homeTeam):
					line.HomeSpreadPrice = &price
					if o.Point != nil {
						p := *o.Point
						line.HomeSpread = &p
					}
				case strings.EqualFold(o.Name, awayTeam):
					line.AwaySpreadPrice = &price
				}

			case MarketTotals:
				switch {
				case strings.EqualFold(o.Name, "over"):
					line.OverPrice = &price
					if o.Point != nil {
						p := *o.Point
						line.Total = &p
					}
				case strings.EqualFold(o.Name, "under"):
					line.UnderPrice = &price
					if line.Total == nil && o.Point != nil {
						p := *o.Point
						line.Total = &p
					}
				}
			}
		}
	}

	return line
}
