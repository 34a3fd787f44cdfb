// Package xapi reads user identities and timelines from the X API v2.
package xapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Rut304/Matchups-sub003/internal/metered"
	"github.com/Rut304/Matchups-sub003/internal/run"
	"github.com/Rut304/Matchups-sub003/pkg/models"
	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://api.twitter.com"
	userAgent      = "Matchups/1.0 (social ingest)"

	MinMaxResults = 5
	MaxMaxResults = 100

	// every request counts as one call against the run budget
	unitsPerCall = 1
)

var quotaMarkers = []string{"UsageCapExceeded", "usage-capped"}

// Options configures the client
type Options struct {
	BearerToken string
	BaseURL     string
	Metered     metered.Options
}

// Client is an X API v2 adapter on top of the metered fetch client
type Client struct {
	token   string
	baseURL string
	metered *metered.Client
}

// NewClient creates a new X API client
func NewClient(opts Options, log zerolog.Logger) *Client {
	c := &Client{
		token:   opts.BearerToken,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}

	mo := opts.Metered
	mo.Upstream = metered.Upstream{
		Name:         "xapi",
		QuotaMarkers: quotaMarkers,
		Billed:       func(http.Header) (int, bool) { return unitsPerCall, true },
		Remaining: func(h http.Header) (int, bool) {
			return metered.IntHeader(h, "x-rate-limit-remaining")
		},
		RetryAfter: rateLimitReset,
	}
	if mo.UserAgent == "" {
		mo.UserAgent = userAgent
	}
	c.metered = metered.NewClient(mo, log)
	return c
}

// LookupUser resolves a handle to its numeric id. An unknown handle is NoData.
func (c *Client) LookupUser(ctx context.Context, rc *run.Context, handle string) (string, metered.Outcome) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	endpoint := fmt.Sprintf("%s/2/users/by/username/%s", c.baseURL, url.PathEscape(handle))

	out := c.metered.Fetch(ctx, rc, c.request("lookup:"+handle, endpoint))
	if out.Kind != metered.Success {
		return "", out
	}

	var resp userResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		out.Kind = metered.TransientError
		out.Err = fmt.Errorf("parse user response: %w", err)
		return "", out
	}
	if resp.Data == nil || resp.Data.ID == "" {
		out.Kind = metered.NoData
		return "", out
	}
	return resp.Data.ID, out
}

// Timeline fetches one page of a user's posts, newest first. An empty page is
// NoData. Follow page.NextToken to read older posts within the same window.
func (c *Client) Timeline(ctx context.Context, rc *run.Context, q models.TimelineQuery) (models.TimelinePage, metered.Outcome) {
	params := url.Values{}
	params.Set("max_results", strconv.Itoa(ClampMaxResults(q.MaxResults)))
	params.Set("tweet.fields", "created_at,public_metrics,referenced_tweets,author_id")
	if q.Since != nil && !q.Since.IsZero() {
		params.Set("start_time", q.Since.UTC().Format(time.RFC3339))
	}
	if q.PageToken != "" {
		params.Set("pagination_token", q.PageToken)
	}
	endpoint := fmt.Sprintf("%s/2/users/%s/tweets?%s", c.baseURL, url.PathEscape(q.UserID), params.Encode())

	var page models.TimelinePage
	out := c.metered.Fetch(ctx, rc, c.request("timeline:"+q.UserID, endpoint))
	if out.Kind != metered.Success {
		return page, out
	}

	var resp timelineResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		out.Kind = metered.TransientError
		out.Err = fmt.Errorf("parse timeline response: %w", err)
		return page, out
	}
	if len(resp.Data) == 0 {
		out.Kind = metered.NoData
		return page, out
	}

	page.Posts = make([]models.Post, 0, len(resp.Data))
	for _, tw := range resp.Data {
		page.Posts = append(page.Posts, tw.toPost(q.UserID))
	}
	page.NextToken = resp.Meta.NextToken
	return page, out
}

// ClampMaxResults bounds a page size to what the timeline endpoint accepts
func ClampMaxResults(n int) int {
	switch {
	case n < MinMaxResults:
		return MinMaxResults
	case n > MaxMaxResults:
		return MaxMaxResults
	default:
		return n
	}
}

func (c *Client) request(unit, endpoint string) metered.Request {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+c.token)
	return metered.Request{Unit: unit, URL: endpoint, Header: h, EstimatedUnits: unitsPerCall}
}

// rateLimitReset reads x-rate-limit-reset (epoch seconds), then Retry-After
func rateLimitReset(h http.Header, now time.Time) time.Duration {
	if reset, ok := metered.IntHeader(h, "x-rate-limit-reset"); ok {
		if d := time.Unix(int64(reset), 0).Sub(now); d > 0 {
			return d
		}
	}
	return metered.RetryAfterHeader(h, now)
}

func (t tweet) toPost(userID string) models.Post {
	created, _ := time.Parse(time.RFC3339, t.CreatedAt)
	author := t.AuthorID
	if author == "" {
		author = userID
	}

	p := models.Post{
		ID:        t.ID,
		AuthorID:  author,
		Text:      t.Text,
		CreatedAt: created.UTC(),
		Engagement: models.EngagementMetrics{
			Likes:       t.PublicMetrics.LikeCount,
			Reposts:     t.PublicMetrics.RetweetCount,
			Replies:     t.PublicMetrics.ReplyCount,
			Quotes:      t.PublicMetrics.QuoteCount,
			Impressions: t.PublicMetrics.ImpressionCount,
		},
	}
	for _, ref := range t.ReferencedTweets {
		switch ref.Type {
		case "retweeted":
			p.IsRepost = true
		case "quoted":
			p.IsQuote = true
		}
	}
	return p
}

// API response structures matching the X API v2 JSON format

type userResponse struct {
	Data *struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"data"`
	Errors []apiError `json:"errors"`
}

type timelineResponse struct {
	Data   []tweet    `json:"data"`
	Errors []apiError `json:"errors"`
	Meta   struct {
		ResultCount int    `json:"result_count"`
		NewestID    string `json:"newest_id"`
		OldestID    string `json:"oldest_id"`
		NextToken   string `json:"next_token"`
	} `json:"meta"`
}

type tweet struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	AuthorID      string `json:"author_id"`
	CreatedAt     string `json:"created_at"`
	PublicMetrics struct {
		LikeCount       int `json:"like_count"`
		RetweetCount    int `json:"retweet_count"`
		ReplyCount      int `json:"reply_count"`
		QuoteCount      int `json:"quote_count"`
		ImpressionCount int `json:"impression_count"`
	} `json:"public_metrics"`
	ReferencedTweets []struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"referenced_tweets"`
}

type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
}
