package extract

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Entity is one canonical team name with its known alternate spellings
type Entity struct {
	Canonical string   `yaml:"canonical"`
	Domain    string   `yaml:"domain"`
	Aliases   []string `yaml:"aliases"`
}

type alias struct {
	text   string // normalized
	entity int
}

// AliasTable resolves normalized text to canonical entities
type AliasTable struct {
	entities []Entity
	aliases  []alias
}

// Match is one resolved entity occurrence in a text
type Match struct {
	Entity   Entity
	Position int
	Alias    string
}

// NewAliasTable builds a table. The canonical name is always an alias of itself.
// Two entities claiming the same normalized alias is an error.
func NewAliasTable(entities []Entity) (*AliasTable, error) {
	t := &AliasTable{entities: make([]Entity, len(entities))}
	owner := make(map[string]string)

	for i, e := range entities {
		if strings.TrimSpace(e.Canonical) == "" {
			return nil, fmt.Errorf("entity %d: empty canonical name", i)
		}
		t.entities[i] = e

		names := append([]string{e.Canonical}, e.Aliases...)
		for _, name := range names {
			n := Normalize(name)
			if n == "" {
				continue
			}
			if prev, ok := owner[n]; ok {
				if prev == e.Canonical {
					continue
				}
				return nil, fmt.Errorf("alias %q claimed by both %q and %q", name, prev, e.Canonical)
			}
			owner[n] = e.Canonical
			t.aliases = append(t.aliases, alias{text: n, entity: i})
		}
	}

	// longest first so overlapping aliases at one position resolve to the most specific
	sort.SliceStable(t.aliases, func(i, j int) bool {
		return len(t.aliases[i].text) > len(t.aliases[j].text)
	})
	return t, nil
}

// MustAliasTable is NewAliasTable for static tables
func MustAliasTable(entities []Entity) *AliasTable {
	t, err := NewAliasTable(entities)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of entities
func (t *AliasTable) Len() int { return len(t.entities) }

// Resolve returns every whole-word alias occurrence in normalized text, ordered by
// position and then by longer alias first
func (t *AliasTable) Resolve(normalized string) []Match {
	var matches []Match
	for _, a := range t.aliases {
		for from := 0; from < len(normalized); {
			idx := strings.Index(normalized[from:], a.text)
			if idx < 0 {
				break
			}
			pos := from + idx
			end := pos + len(a.text)
			if wordBoundary(normalized, pos, end) {
				matches = append(matches, Match{Entity: t.entities[a.entity], Position: pos, Alias: a.text})
			}
			from = pos + 1
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Position != matches[j].Position {
			return matches[i].Position < matches[j].Position
		}
		return len(matches[i].Alias) > len(matches[j].Alias)
	})
	return matches
}

// SubjectAndOpponent picks the first matched entity and the second distinct one
func (t *AliasTable) SubjectAndOpponent(normalized string) (subject, opponent *Entity) {
	for _, m := range t.Resolve(normalized) {
		m := m // per-iteration copy; go.mod targets go1.21 loop semantics
		switch {
		case subject == nil:
			subject = &m.Entity
		case m.Entity.Canonical != subject.Canonical:
			return subject, &m.Entity
		}
	}
	return subject, nil
}

func wordBoundary(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
