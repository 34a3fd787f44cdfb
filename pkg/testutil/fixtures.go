package testutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rut304/Matchups-sub003/pkg/models"
)

// PtrFloat64 returns a pointer to v
func PtrFloat64(v float64) *float64 { return &v }

// NewTestBookmaker creates a bookmaker quoting all three featured markets.
// homeSpread is the home side's point; the away side mirrors it.
func NewTestBookmaker(key, home, away string, homeML, awayML int, homeSpread float64, total float64) models.Bookmaker {
	return models.Bookmaker{
		Key:   key,
		Title: strings.ToUpper(key[:1]) + key[1:],
		Markets: []models.Market{
			{Key: "h2h", Outcomes: []models.Outcome{
				{Name: home, Price: homeML},
				{Name: away, Price: awayML},
			}},
			{Key: "spreads", Outcomes: []models.Outcome{
				{Name: home, Price: -110, Point: PtrFloat64(homeSpread)},
				{Name: away, Price: -110, Point: PtrFloat64(-homeSpread)},
			}},
			{Key: "totals", Outcomes: []models.Outcome{
				{Name: "Over", Price: -110, Point: PtrFloat64(total)},
				{Name: "Under", Price: -110, Point: PtrFloat64(total)},
			}},
		},
	}
}

// NewTestEvent creates an NFL event with the given bookmakers
func NewTestEvent(eventID, home, away string, commence time.Time, books ...models.Bookmaker) models.Event {
	return models.Event{
		EventID:      eventID,
		SportKey:     "americanfootball_nfl",
		SportTitle:   "NFL",
		HomeTeam:     home,
		AwayTeam:     away,
		CommenceTime: commence,
		Bookmakers:   books,
	}
}

// HistoricalOddsJSON renders an upstream historical snapshot body for the events
func HistoricalOddsJSON(ts time.Time, events ...models.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, `{"timestamp":%q,"previous_timestamp":%q,"next_timestamp":%q,"data":[`,
		ts.UTC().Format(time.RFC3339), ts.Add(-5*time.Minute).UTC().Format(time.RFC3339), ts.Add(5*time.Minute).UTC().Format(time.RFC3339))

	for i, e := range events {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `{"id":%q,"sport_key":%q,"sport_title":%q,"commence_time":%q,"home_team":%q,"away_team":%q,"bookmakers":[`,
			e.EventID, e.SportKey, e.SportTitle, e.CommenceTime.UTC().Format(time.RFC3339), e.HomeTeam, e.AwayTeam)
		for j, bm := range e.Bookmakers {
			if j > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, `{"key":%q,"title":%q,"last_update":%q,"markets":[`, bm.Key, bm.Title, ts.UTC().Format(time.RFC3339))
			for k, m := range bm.Markets {
				if k > 0 {
					b.WriteByte(',')
				}
				fmt.Fprintf(&b, `{"key":%q,"outcomes":[`, m.Key)
				for l, o := range m.Outcomes {
					if l > 0 {
						b.WriteByte(',')
					}
					if o.Point != nil {
						fmt.Fprintf(&b, `{"name":%q,"price":%d,"point":%v}`, o.Name, o.Price, *o.Point)
					} else {
						fmt.Fprintf(&b, `{"name":%q,"price":%d}`, o.Name, o.Price)
					}
				}
				b.WriteString("]}")
			}
			b.WriteString("]}")
		}
		b.WriteString("]}")
	}
	b.WriteString("]}")
	return b.String()
}

// NFLSeason2020 is the 2020 NFL season window
func NFLSeason2020() models.SeasonWindow {
	return models.SeasonWindow{
		Season: 2020,
		Label:  "2020",
		Start:  time.Date(2020, 9, 10, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2021, 2, 8, 0, 0, 0, 0, time.UTC),
	}
}
