// Package theoddsapi fetches historical odds snapshots from The Odds API v4.
package theoddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Rut304/Matchups-sub003/internal/metered"
	"github.com/Rut304/Matchups-sub003/internal/run"
	"github.com/Rut304/Matchups-sub003/pkg/models"
	"github.com/rs/zerolog"
)

const (
	defaultBaseURL      = "https://api.the-odds-api.com"
	apiVersion          = "v4"
	userAgent           = "Matchups/1.0 (historical odds importer)"
	defaultSnapshotHour = 12

	// historical snapshots cost 10 credits per market per region
	costPerMarketRegion = 10

	quotaMarker = "OUT_OF_USAGE_CREDITS"
)

// Options configures the client
type Options struct {
	APIKey  string
	BaseURL string

	// SnapshotHour is the UTC hour sampled on each date
	SnapshotHour int

	// Metered carries retry policy and transport overrides; Upstream is filled in here
	Metered metered.Options
}

// Client is a historical snapshot adapter on top of the metered fetch client
type Client struct {
	apiKey       string
	baseURL      string
	snapshotHour int
	metered      *metered.Client

	mu         sync.Mutex
	rateLimits models.RateLimits
	lastUsed   int
}

// NewClient creates a new The Odds API client
func NewClient(opts Options, log zerolog.Logger) *Client {
	c := &Client{
		apiKey:       opts.APIKey,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		snapshotHour: opts.SnapshotHour,
		rateLimits:   models.RateLimits{RequestsRemaining: -1},
		lastUsed:     -1,
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.snapshotHour < 0 || c.snapshotHour > 23 {
		c.snapshotHour = defaultSnapshotHour
	}

	mo := opts.Metered
	mo.Upstream = metered.Upstream{
		Name:         "theoddsapi",
		QuotaMarkers: []string{quotaMarker},
		Billed:       c.billed,
		Remaining:    c.remaining,
	}
	if mo.UserAgent == "" {
		mo.UserAgent = userAgent
	}
	c.metered = metered.NewClient(mo, log)
	return c
}

// EstimateCost returns the credits a historical snapshot request is expected to bill
func EstimateCost(markets, regions int) int {
	if markets < 1 {
		markets = 1
	}
	if regions < 1 {
		regions = 1
	}
	return costPerMarketRegion * markets * regions
}

// Cost is the estimated credit cost of fetching opts
func (c *Client) Cost(opts models.FetchSnapshotOptions) int {
	return EstimateCost(len(opts.Markets), len(opts.Regions))
}

// SnapshotTime is the instant sampled for a date
func (c *Client) SnapshotTime(date time.Time) time.Time {
	d := date.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), c.snapshotHour, 0, 0, 0, time.UTC)
}

// FetchSnapshot retrieves the historical snapshot closest to opts.At. A successful
// response with no events is reported as NoData. Parse failures are TransientError.
func (c *Client) FetchSnapshot(ctx context.Context, rc *run.Context, opts models.FetchSnapshotOptions) (*models.Snapshot, metered.Outcome) {
	endpoint := fmt.Sprintf("%s/%s/historical/sports/%s/odds", c.baseURL, apiVersion, url.PathEscape(opts.Sport))

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", strings.Join(opts.Regions, ","))
	params.Set("markets", strings.Join(opts.Markets, ","))
	params.Set("oddsFormat", "american")
	params.Set("dateFormat", "iso")
	params.Set("date", opts.At.UTC().Format(time.RFC3339))

	out := c.metered.Fetch(ctx, rc, metered.Request{
		Unit:           opts.Sport + "@" + opts.At.UTC().Format("2006-01-02"),
		URL:            endpoint + "?" + params.Encode(),
		EstimatedUnits: c.Cost(opts),
	})
	if out.Kind != metered.Success {
		return nil, out
	}

	var apiResp historicalResponse
	if err := json.Unmarshal(out.Body, &apiResp); err != nil {
		out.Kind = metered.TransientError
		out.Err = fmt.Errorf("parse historical odds response: %w", err)
		return nil, out
	}

	snap := parseHistoricalResponse(opts.Sport, apiResp)
	if len(snap.Events) == 0 {
		out.Kind = metered.NoData
		return snap, out
	}
	return snap, out
}

// GetRateLimits returns quota information from the last response
func (c *Client) GetRateLimits() models.RateLimits {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rateLimits
}

// billed reads x-requests-last, falling back to the change in x-requests-used
func (c *Client) billed(h http.Header) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	used, usedOK := metered.IntHeader(h, "x-requests-used")
	prevUsed := c.lastUsed
	if usedOK {
		c.rateLimits.RequestsUsed = used
		c.lastUsed = used
	}

	if last, ok := metered.IntHeader(h, "x-requests-last"); ok {
		c.rateLimits.LastCost = last
		return last, true
	}
	if usedOK && prevUsed >= 0 && used >= prevUsed {
		c.rateLimits.LastCost = used - prevUsed
		return used - prevUsed, true
	}
	return 0, false
}

func (c *Client) remaining(h http.Header) (int, bool) {
	v, ok := metered.IntHeader(h, "x-requests-remaining")
	if ok {
		c.mu.Lock()
		c.rateLimits.RequestsRemaining = v
		c.mu.Unlock()
	}
	return v, ok
}

// parseHistoricalResponse converts the API payload to a Snapshot
func parseHistoricalResponse(sport string, resp historicalResponse) *models.Snapshot {
	snap := &models.Snapshot{
		SportKey:          sport,
		PreviousTimestamp: parseOptionalTime(resp.PreviousTimestamp),
		NextTimestamp:     parseOptionalTime(resp.NextTimestamp),
		Events:            make([]models.Event, 0, len(resp.Data)),
	}
	if ts, err := time.Parse(time.RFC3339, resp.Timestamp); err == nil {
		snap.Timestamp = ts.UTC()
	}

	for _, event := range resp.Data {
		// a zero commence time is rejected by event validation downstream
		commenceTime, _ := time.Parse(time.RFC3339, event.CommenceTime)

		sportKey := event.SportKey
		if sportKey == "" {
			sportKey = sport
		}

		evt := models.Event{
			EventID:      event.ID,
			SportKey:     sportKey,
			SportTitle:   event.SportTitle,
			HomeTeam:     event.HomeTeam,
			AwayTeam:     event.AwayTeam,
			CommenceTime: commenceTime.UTC(),
			Bookmakers:   make([]models.Bookmaker, 0, len(event.Bookmakers)),
		}

		for _, bm := range event.Bookmakers {
			book := models.Bookmaker{
				Key:        bm.Key,
				Title:      bm.Title,
				LastUpdate: bm.LastUpdate,
				Markets:    make([]models.Market, 0, len(bm.Markets)),
			}
			for _, m := range bm.Markets {
				mk := models.Market{Key: m.Key, LastUpdate: m.LastUpdate, Outcomes: make([]models.Outcome, 0, len(m.Outcomes))}
				for _, o := range m.Outcomes {
					oc := models.Outcome{Name: o.Name, Price: o.Price}
					if o.Point != nil {
						point := *o.Point
						oc.Point = &point
					}
					mk.Outcomes = append(mk.Outcomes, oc)
				}
				book.Markets = append(book.Markets, mk)
			}
			evt.Bookmakers = append(evt.Bookmakers, book)
		}

		snap.Events = append(snap.Events, evt)
	}

	return snap
}

func parseOptionalTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// API response structures matching The Odds API JSON format

type historicalResponse struct {
	Timestamp         string         `json:"timestamp"`
	PreviousTimestamp string         `json:"previous_timestamp"`
	NextTimestamp     string         `json:"next_timestamp"`
	Data              []oddsResponse `json:"data"`
}

type oddsResponse struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime string      `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []bookmaker `json:"bookmakers"`
}

type bookmaker struct {
	Key        string   `json:"key"`
	Title      string   `json:"title"`
	LastUpdate string   `json:"last_update"`
	Markets    []market `json:"markets"`
}

type market struct {
	Key        string    `json:"key"`
	LastUpdate string    `json:"last_update"`
	Outcomes   []outcome `json:"outcomes"`
}

type outcome struct {
	Name  string   `json:"name"`
	Price int      `json:"price"`
	Point *float64 `json:"point,omitempty"`
}
