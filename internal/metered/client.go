// Package metered wraps single calls to metered or rate-limited upstreams with
// response classification, bounded retry and run-budget accounting.
package metered

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Rut304/Matchups-sub003/internal/run"
	"github.com/rs/zerolog"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 3
	defaultBaseDelay   = 60 * time.Second
	defaultMaxDelay    = 15 * time.Minute
	errorSnippetBytes  = 512
)

// Upstream describes how a particular API reports cost and quota exhaustion
type Upstream struct {
	Name string

	// QuotaMarkers are body substrings that distinguish "out of credits"
	// from an ordinary auth or rate-limit failure
	QuotaMarkers []string

	// Billed returns the units charged for a response; ok is false when the
	// response does not say
	Billed func(h http.Header) (units int, ok bool)

	// Remaining returns the upstream's remaining quota
	Remaining func(h http.Header) (units int, ok bool)

	// RetryAfter returns how long the upstream asked us to wait, zero if unknown
	RetryAfter func(h http.Header, now time.Time) time.Duration
}

// Options configures the Client
type Options struct {
	Upstream  Upstream
	UserAgent string
	Timeout   time.Duration

	// Retry policy for RateLimited responses. The delay doubles per attempt
	// and exhaustion is reported as TransientError.
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// Sleep pauses between attempts; tests replace it
	Sleep func(ctx context.Context, d time.Duration) error

	HTTPClient *http.Client
}

// Request is one upstream call for one unit of work
type Request struct {
	Unit           string // used in logs, e.g. "basketball_nba@2021-01-04"
	URL            string
	Header         http.Header
	EstimatedUnits int
}

// Client issues metered requests
type Client struct {
	http *http.Client
	opts Options
	log  zerolog.Logger
	now  func() time.Time
}

// NewClient creates a Client with defaults filled in
func NewClient(opts Options, log zerolog.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = defaultBaseDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = defaultMaxDelay
	}
	if opts.Sleep == nil {
		opts.Sleep = SleepContext
	}
	if opts.Upstream.RetryAfter == nil {
		opts.Upstream.RetryAfter = RetryAfterHeader
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		http: hc,
		opts: opts,
		log:  log.With().Str("upstream", opts.Upstream.Name).Logger(),
		now:  time.Now,
	}
}

// Fetch performs the request, retrying RateLimited responses up to MaxAttempts.
// Each attempt reserves EstimatedUnits on the run ledger first and settles the
// reservation to what the upstream billed afterwards, whatever the outcome.
func (c *Client) Fetch(ctx context.Context, rc *run.Context, req Request) Outcome {
	delay := c.opts.BaseDelay

	for attempt := 1; ; attempt++ {
		if !rc.Ledger.Reserve(req.EstimatedUnits) {
			return Outcome{Kind: BudgetDenied, UnitsRemaining: -1, Attempts: attempt - 1}
		}

		out, retryAfter := c.do(ctx, req)
		rc.Ledger.Settle(req.EstimatedUnits, out.UnitsConsumed)
		out.Attempts = attempt

		c.log.Debug().
			Str("unit", req.Unit).
			Int("attempt", attempt).
			Int("status", out.Status).
			Str("outcome", out.Kind.String()).
			Int("units", out.UnitsConsumed).
			Int("remaining", out.UnitsRemaining).
			Msg("upstream response")

		if out.Kind != RateLimited {
			return out
		}

		if attempt >= c.opts.MaxAttempts {
			c.log.Warn().Str("unit", req.Unit).Int("attempts", attempt).Msg("rate limited; giving up on unit")
			out.Kind = TransientError
			out.Err = fmt.Errorf("rate limited after %d attempts", attempt)
			return out
		}

		wait := delay
		if retryAfter > wait {
			wait = retryAfter
		}
		if wait > c.opts.MaxDelay {
			wait = c.opts.MaxDelay
		}

		c.log.Warn().Str("unit", req.Unit).Dur("sleep", wait).Int("attempt", attempt).Msg("rate limited; backing off")
		if err := c.opts.Sleep(ctx, wait); err != nil {
			return Outcome{Kind: TransientError, UnitsRemaining: -1, Attempts: attempt, Err: err}
		}
		delay *= 2
	}
}

// do performs a single HTTP call and classifies it
func (c *Client) do(ctx context.Context, req Request) (Outcome, time.Duration) {
	out := Outcome{UnitsRemaining: -1}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		out.Kind = TransientError
		out.Err = fmt.Errorf("create request: %w", err)
		return out, 0
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if c.opts.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		out.Kind = TransientError
		out.Err = fmt.Errorf("execute request: %w", err)
		return out, 0
	}
	defer resp.Body.Close()

	out.Status = resp.StatusCode
	if c.opts.Upstream.Remaining != nil {
		if v, ok := c.opts.Upstream.Remaining(resp.Header); ok {
			out.UnitsRemaining = v
		}
	}

	billed, billedKnown := 0, false
	if c.opts.Upstream.Billed != nil {
		billed, billedKnown = c.opts.Upstream.Billed(resp.Header)
	}

	body, readErr := io.ReadAll(resp.Body)

	out.Kind = c.classify(resp.StatusCode, body)
	switch {
	case billedKnown:
		out.UnitsConsumed = billed
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// Assume the estimate was billed when a successful response omits its cost
		out.UnitsConsumed = req.EstimatedUnits
	}

	if readErr != nil && (out.Kind == Success || out.Kind == NoData) {
		out.Kind = TransientError
		out.Err = fmt.Errorf("read response body: %w", readErr)
		return out, 0
	}

	switch out.Kind {
	case Success:
		out.Body = body
	case TransientError:
		out.Err = fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet(body))
	case RateLimited, QuotaExhausted, Unauthorized:
		out.Err = fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet(body))
	}

	return out, c.opts.Upstream.RetryAfter(resp.Header, c.now())
}

// classify maps a status and body onto exactly one outcome kind
func (c *Client) classify(status int, body []byte) Kind {
	if status >= 400 && c.hasQuotaMarker(body) {
		return QuotaExhausted
	}

	switch {
	case status == http.StatusNoContent:
		return NoData
	case status >= 200 && status < 300:
		return Success
	case status == http.StatusNotFound:
		return NoData
	case status == http.StatusTooManyRequests:
		return RateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return Unauthorized
	default:
		return TransientError
	}
}

func (c *Client) hasQuotaMarker(body []byte) bool {
	for _, m := range c.opts.Upstream.QuotaMarkers {
		if m != "" && bytes.Contains(body, []byte(m)) {
			return true
		}
	}
	return false
}

// SleepContext waits for d or until ctx is done
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RetryAfterHeader reads a Retry-After value given in seconds
func RetryAfterHeader(h http.Header, _ time.Time) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

// IntHeader parses an integer header, tolerating decimal values
func IntHeader(h http.Header, key string) (int, bool) {
	v := h.Get(key)
	if v == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f), true
	}
	return 0, false
}

func snippet(body []byte) string {
	if len(body) > errorSnippetBytes {
		body = body[:errorSnippetBytes]
	}
	return string(bytes.TrimSpace(body))
}
