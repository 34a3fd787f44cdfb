package extract

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Mn)), // combining marks
			runes.Remove(runes.In(unicode.Cf)), // ZWJ, ZWNJ, BOM
			width.Fold,
		)
	},
}

// Normalize folds post text into the form matched by the gate, alias table and patterns.
// Pipeline: drop invalid UTF-8, NFKC, case fold, strip marks and format runes,
// fold fullwidth forms, map dash lookalikes to '-', collapse whitespace.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		ns = strings.ToLower(s)
	}

	return collapseSpaces(foldDashes(ns))
}

func foldDashes(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '−', '‐', '‑', '‒', '–', '—', '﹣':
			return '-'
		}
		return r
	}, s)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
