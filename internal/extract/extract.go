// Package extract turns free-text social posts into structured pick candidates.
//
// Extraction is rule based and deterministic: the same text and alias table always
// yield the same candidate or none. Steps, in order:
//
//   - reposts and quotes are rejected outright
//   - a betting-vocabulary gate rejects posts with no pick language
//   - the alias table resolves a subject and an optional opponent
//   - numeric patterns set the pick kind and line; a total overrides a spread
//   - lexical cues set the confidence tier
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Rut304/Matchups-sub003/pkg/models"
)

var (
	// signed one or two digit number with an optional half point: -3, +7.5
	spreadPattern = regexp.MustCompile(`(?:^|[^\w.])([+-]\d{1,2}(?:\.5)?)\b`)

	// over/under (or o/u shorthand) followed by a number: over 47.5, o220, u 8.5
	totalPattern = regexp.MustCompile(`(?:^|[^\w/])(over|under|o|u)\s?(\d{1,3}(?:\.5)?)\b`)

	// sideless total line: o/u 47.5, o/u47
	ouPattern = regexp.MustCompile(`(?:^|[^\w/])o/u\s?(\d{1,3}(?:\.5)?)\b`)
	sideCue   = regexp.MustCompile(`\b(over|under)\b`)

	// American price: -150, +120
	pricePattern = regexp.MustCompile(`(?:^|[^\w.])([+-]\d{3,4})\b`)

	moneylineCue = regexp.MustCompile(`\b(?:ml|moneyline|money line|to win)\b`)

	vocabulary = regexp.MustCompile(`\b(?:picks?|bets?|betting|locks?|spread|over|under|o/u|moneyline|ml|parlay|units?|play|hammer|lean|fade|pk|ats)\b`)

	lockCue = regexp.MustCompile(`\b(?:locks?|lock of the (?:day|week|year)|lotd|max play|hammer|best bet|slam)\b`)
	leanCue = regexp.MustCompile(`\b(?:lean|leaning|like|liking)\b`)
)

// emoji markers that count as betting vocabulary
var (
	gateEmoji = []string{"🔒", "🔥", "💰", "💵", "✅", "🎯", "🚨"}
	lockEmoji = []string{"🔒"}
)

// Engine extracts pick candidates with a fixed alias table
type Engine struct {
	aliases *AliasTable
}

// NewEngine creates an Engine. A nil table falls back to DefaultEntities.
func NewEngine(aliases *AliasTable) *Engine {
	if aliases == nil {
		aliases = MustAliasTable(DefaultEntities)
	}
	return &Engine{aliases: aliases}
}

// Extract reads a post; nil means the post is not a pick
func (e *Engine) Extract(post models.Post) *models.ParsedPickCandidate {
	if IsRepost(post) {
		return nil
	}
	return e.ExtractText(post.Text)
}

// ExtractText reads raw text; nil means no structured pick
func (e *Engine) ExtractText(text string) *models.ParsedPickCandidate {
	n := Normalize(text)
	if !HasBettingVocabulary(n) {
		return nil
	}

	subject, opponent := e.aliases.SubjectAndOpponent(n)
	if subject == nil {
		return nil
	}

	c := &models.ParsedPickCandidate{
		SubjectEntity:  subject.Canonical,
		Domain:         subject.Domain,
		PickKind:       models.PickKindStraight,
		ConfidenceTier: confidence(n),
	}
	if opponent != nil {
		c.OpponentEntity = opponent.Canonical
	}

	if moneylineCue.MatchString(n) {
		c.PickKind = models.PickKindMoneyline
		if m := pricePattern.FindStringSubmatch(n); m != nil {
			c.Line = parseLine(m[1])
		}
	}

	if m := spreadPattern.FindStringSubmatch(n); m != nil {
		c.PickKind = models.PickKindSpread
		c.Line = parseLine(m[1])
	}

	// runs after spread detection and wins when both match
	if m := ouPattern.FindStringSubmatch(n); m != nil {
		c.PickKind = models.PickKindTotal
		c.Line = parseLine(m[1])
		c.Side = ""
		if side := sideCue.FindStringSubmatch(n); side != nil {
			c.Side = side[1]
		}
	}
	if m := totalPattern.FindStringSubmatch(n); m != nil {
		c.PickKind = models.PickKindTotal
		c.Line = parseLine(m[2])
		c.Side = "under"
		if m[1] == "over" || m[1] == "o" {
			c.Side = "over"
		}
	}

	if c.PickKind == models.PickKindStraight {
		if m := pricePattern.FindStringSubmatch(n); m != nil {
			c.PickKind = models.PickKindMoneyline
			c.Line = parseLine(m[1])
		}
	}

	return c
}

// IsRepost reports whether the post repeats someone else's content
func IsRepost(post models.Post) bool {
	if post.IsRepost || post.IsQuote {
		return true
	}
	return strings.HasPrefix(strings.TrimSpace(post.Text), "RT @")
}

// HasBettingVocabulary is the keyword gate, applied to normalized text
func HasBettingVocabulary(normalized string) bool {
	if vocabulary.MatchString(normalized) {
		return true
	}
	if spreadPattern.MatchString(normalized) || pricePattern.MatchString(normalized) || totalPattern.MatchString(normalized) || ouPattern.MatchString(normalized) {
		return true
	}
	return containsAny(normalized, gateEmoji)
}

func confidence(normalized string) models.ConfidenceTier {
	switch {
	case lockCue.MatchString(normalized) || containsAny(normalized, lockEmoji):
		return models.ConfidenceLock
	case leanCue.MatchString(normalized):
		return models.ConfidenceLean
	default:
		return models.ConfidenceStandard
	}
}

func parseLine(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimPrefix(s, "+"), 64)
	if err != nil {
		return nil
	}
	return &v
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
