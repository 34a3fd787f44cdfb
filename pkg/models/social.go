package models

import "time"

// TrackedSource is a followed social account
type TrackedSource struct {
	Handle           string
	CachedExternalID string // empty until resolved once
	LastScrapedAt    *time.Time
	Active           bool
}

// EngagementMetrics are the public counters attached to a post
type EngagementMetrics struct {
	Likes       int `json:"likes"`
	Reposts     int `json:"reposts"`
	Replies     int `json:"replies"`
	Quotes      int `json:"quotes"`
	Impressions int `json:"impressions"`
}

// Post is a post as returned by the social upstream
type Post struct {
	ID         string
	AuthorID   string
	Text       string
	CreatedAt  time.Time
	Engagement EngagementMetrics
	IsRepost   bool
	IsQuote    bool
}

// TimelineQuery selects one page of a user's timeline
type TimelineQuery struct {
	UserID     string
	MaxResults int

	// Since limits the window to posts created after it
	Since *time.Time

	// PageToken continues a previous page; empty for the newest page
	PageToken string
}

// TimelinePage is one page of posts, newest first. NextToken is empty on the last page.
type TimelinePage struct {
	Posts     []Post
	NextToken string
}

// PickKind classifies the bet expressed by a post
type PickKind string

const (
	PickKindSpread    PickKind = "spread"
	PickKindTotal     PickKind = "total"
	PickKindMoneyline PickKind = "moneyline"
	PickKindStraight  PickKind = "straight"
)

// ConfidenceTier is the lexical confidence of a pick
type ConfidenceTier string

const (
	ConfidenceLock     ConfidenceTier = "lock"
	ConfidenceLean     ConfidenceTier = "lean"
	ConfidenceStandard ConfidenceTier = "standard"
)

// ParsedPickCandidate is the structured reading of a post, embedded in RawPost
type ParsedPickCandidate struct {
	SubjectEntity  string         `json:"subject_entity"`
	OpponentEntity string         `json:"opponent_entity,omitempty"`
	Domain         string         `json:"domain"`
	PickKind       PickKind       `json:"pick_kind"`
	Line           *float64       `json:"line,omitempty"`
	Side           string         `json:"side,omitempty"` // over | under, totals only
	ConfidenceTier ConfidenceTier `json:"confidence_tier"`
}

// RawPost is a stored post keyed by its external id
type RawPost struct {
	PostID       string
	SourceHandle string
	Text         string
	CreatedAt    time.Time
	Engagement   EngagementMetrics
	ParsedPick   *ParsedPickCandidate
	IsPick       bool
	Processed    bool
}
