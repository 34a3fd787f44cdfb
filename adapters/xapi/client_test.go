package xapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rut304/Matchups-sub003/internal/metered"
	"github.com/Rut304/Matchups-sub003/internal/run"
	"github.com/Rut304/Matchups-sub003/pkg/models"
	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	var sleeps []time.Duration
	c := NewClient(Options{
		BearerToken: "token",
		BaseURL:     srv.URL,
		Metered: metered.Options{
			MaxAttempts: 2,
			BaseDelay:   time.Second,
			Sleep: func(_ context.Context, d time.Duration) error {
				sleeps = append(sleeps, d)
				return nil
			},
		},
	}, zerolog.Nop())
	return c, &sleeps
}

func TestLookupUser(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Errorf("missing bearer token")
		}
		switch r.URL.Path {
		case "/2/users/by/username/capper":
			w.Write([]byte(`{"data":{"id":"12345","name":"Capper","username":"capper"}}`))
		default:
			w.Write([]byte(`{"errors":[{"title":"Not Found Error","detail":"Could not find user"}]}`))
		}
	})

	rc := run.New("test", 10, false)
	id, out := c.LookupUser(context.Background(), rc, "@capper")
	if out.Kind != metered.Success || id != "12345" {
		t.Fatalf("LookupUser = %q, %s", id, out.Kind)
	}

	id, out = c.LookupUser(context.Background(), rc, "nobody")
	if out.Kind != metered.NoData || id != "" {
		t.Fatalf("unknown handle = %q, %s; want NoData", id, out.Kind)
	}

	if rc.Ledger.Consumed() != 2 {
		t.Errorf("ledger = %d, want one unit per call", rc.Ledger.Consumed())
	}
}

func TestTimeline(t *testing.T) {
	since := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/users/12345/tweets" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("max_results") != "5" {
			t.Errorf("max_results = %s, want clamped 5", q.Get("max_results"))
		}
		if q.Get("start_time") != "2024-11-01T00:00:00Z" {
			t.Errorf("start_time = %s", q.Get("start_time"))
		}
		w.Write([]byte(`{
			"data": [
				{"id":"2","text":"Lock: Chiefs -3 tonight","created_at":"2024-11-03T15:00:00.000Z",
				 "public_metrics":{"like_count":10,"retweet_count":2,"reply_count":1,"quote_count":0,"impression_count":900}},
				{"id":"1","text":"RT @other: Bills +3","created_at":"2024-11-02T15:00:00.000Z",
				 "referenced_tweets":[{"type":"retweeted","id":"99"}]},
				{"id":"0","text":"this","created_at":"2024-11-02T14:00:00.000Z",
				 "referenced_tweets":[{"type":"quoted","id":"98"}]}
			],
			"meta":{"result_count":3,"newest_id":"2","oldest_id":"0"}
		}`))
	})

	page, out := c.Timeline(context.Background(), run.New("test", 10, false), models.TimelineQuery{UserID: "12345", MaxResults: 1, Since: &since})
	if out.Kind != metered.Success {
		t.Fatalf("outcome = %s (%v)", out.Kind, out.Err)
	}
	if page.NextToken != "" {
		t.Errorf("next token = %q on the last page", page.NextToken)
	}
	posts := page.Posts
	if len(posts) != 3 {
		t.Fatalf("posts = %d", len(posts))
	}

	p := posts[0]
	if p.ID != "2" || p.AuthorID != "12345" || p.Engagement.Likes != 10 || p.Engagement.Impressions != 900 {
		t.Errorf("unexpected post %+v", p)
	}
	if !p.CreatedAt.Equal(time.Date(2024, 11, 3, 15, 0, 0, 0, time.UTC)) {
		t.Errorf("created_at = %v", p.CreatedAt)
	}
	if !posts[1].IsRepost || posts[1].IsQuote {
		t.Errorf("post 1 should be a repost: %+v", posts[1])
	}
	if !posts[2].IsQuote {
		t.Errorf("post 0 should be a quote: %+v", posts[2])
	}
}

func TestTimeline_Empty(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta":{"result_count":0}}`))
	})

	_, out := c.Timeline(context.Background(), run.New("test", 10, false), models.TimelineQuery{UserID: "12345", MaxResults: 20})
	if out.Kind != metered.NoData {
		t.Fatalf("outcome = %s, want NoData", out.Kind)
	}
}

func TestTimeline_UsageCap(t *testing.T) {
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"title":"UsageCapExceeded","detail":"Usage cap exceeded: Monthly product cap","type":"https://api.twitter.com/2/problems/usage-capped"}`))
	})

	_, out := c.Timeline(context.Background(), run.New("test", 10, false), models.TimelineQuery{UserID: "12345", MaxResults: 20})
	if out.Kind != metered.QuotaExhausted {
		t.Fatalf("outcome = %s, want QuotaExhausted", out.Kind)
	}
	if len(*sleeps) != 0 {
		t.Errorf("usage cap must not be retried, slept %v", *sleeps)
	}
}

func TestTimeline_RateLimitWaitsForReset(t *testing.T) {
	calls := 0
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("x-rate-limit-remaining", "0")
			w.Header().Set("Retry-After", "30")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"title":"Too Many Requests"}`))
			return
		}
		w.Write([]byte(`{"data":[{"id":"1","text":"hi","created_at":"2024-11-02T15:00:00Z"}]}`))
	})

	page, out := c.Timeline(context.Background(), run.New("test", 10, false), models.TimelineQuery{UserID: "12345", MaxResults: 20})
	if out.Kind != metered.Success || len(page.Posts) != 1 {
		t.Fatalf("outcome = %s posts=%d", out.Kind, len(page.Posts))
	}
	if len(*sleeps) != 1 || (*sleeps)[0] != 30*time.Second {
		t.Errorf("sleeps = %v, want [30s]", *sleeps)
	}
}

func TestTimeline_FollowsPaginationToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("pagination_token") {
		case "":
			w.Write([]byte(`{"data":[{"id":"2","text":"Bills -3","created_at":"2024-11-03T15:00:00Z"}],"meta":{"result_count":1,"next_token":"page2"}}`))
		case "page2":
			w.Write([]byte(`{"data":[{"id":"1","text":"Jets +3","created_at":"2024-11-02T15:00:00Z"}],"meta":{"result_count":1}}`))
		default:
			t.Errorf("unexpected token %q", r.URL.Query().Get("pagination_token"))
		}
	})
	rc := run.New("test", 10, false)

	first, out := c.Timeline(context.Background(), rc, models.TimelineQuery{UserID: "12345", MaxResults: 5})
	if out.Kind != metered.Success || first.NextToken != "page2" || len(first.Posts) != 1 {
		t.Fatalf("first page = %+v, %s", first, out.Kind)
	}
	second, out := c.Timeline(context.Background(), rc, models.TimelineQuery{UserID: "12345", MaxResults: 5, PageToken: first.NextToken})
	if out.Kind != metered.Success || second.NextToken != "" || len(second.Posts) != 1 || second.Posts[0].ID != "1" {
		t.Fatalf("second page = %+v, %s", second, out.Kind)
	}
	if rc.Ledger.Consumed() != 2 {
		t.Errorf("ledger = %d, want one unit per page", rc.Ledger.Consumed())
	}
}

func TestClampMaxResults(t *testing.T) {
	tests := map[int]int{0: 5, 5: 5, 20: 20, 100: 100, 500: 100}
	for in, want := range tests {
		if got := ClampMaxResults(in); got != want {
			t.Errorf("ClampMaxResults(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestRateLimitReset(t *testing.T) {
	now := time.Unix(1700000000, 0)
	h := http.Header{}
	h.Set("x-rate-limit-reset", "1700000090")
	if got := rateLimitReset(h, now); got != 90*time.Second {
		t.Errorf("rateLimitReset = %v, want 90s", got)
	}

	h = http.Header{}
	h.Set("Retry-After", "15")
	if got := rateLimitReset(h, now); got != 15*time.Second {
		t.Errorf("fallback = %v, want 15s", got)
	}
}
