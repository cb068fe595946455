// Package spans classifies substrings of free-form text (AI chat replies,
// log messages) for differentiated rendering: currency amounts, percentages
// and **emphasized** phrases.
package spans

import "regexp"

// Kind identifies what a segment of the input was classified as.
type Kind int

const (
	KindPlain Kind = iota
	KindCurrency
	KindPercent
	KindEmphasis
)

// Segment is one piece of the tokenized input. Segments cover the entire
// input with no gaps or overlaps: concatenating Raw over all segments
// reproduces the original string exactly. Text is the rendered value, which
// differs from Raw only for emphasis segments (delimiters stripped).
type Segment struct {
	Kind Kind
	Raw  string
	Text string
}

var (
	currencyRe = regexp.MustCompile(`\$\d+(?:,\d{3})*(?:\.\d{1,2})?`)
	percentRe  = regexp.MustCompile(`\d+(?:\.\d+)?%`)
	emphasisRe = regexp.MustCompile(`\*\*([^*]+)\*\*`)
)

type match struct {
	start, end int
	kind       Kind
	text       string
}

// Tokenize splits s into plain and classified segments. All three pattern
// scans run to completion, candidates are ordered by start position (ties
// broken by scan order: currency, percentage, emphasis) and overlaps are
// resolved first-found-wins.
func Tokenize(s string) []Segment {
	candidates := scan(s)

	// Stable insertion by start keeps scan order for equal starts.
	sortByStart(candidates)

	var kept []match
	lastEnd := 0
	for _, m := range candidates {
		if m.start < lastEnd {
			continue
		}
		kept = append(kept, m)
		lastEnd = m.end
	}

	segments := make([]Segment, 0, 2*len(kept)+1)
	pos := 0
	for _, m := range kept {
		if m.start > pos {
			segments = append(segments, Segment{Kind: KindPlain, Raw: s[pos:m.start], Text: s[pos:m.start]})
		}
		segments = append(segments, Segment{Kind: m.kind, Raw: s[m.start:m.end], Text: m.text})
		pos = m.end
	}
	if pos < len(s) {
		segments = append(segments, Segment{Kind: KindPlain, Raw: s[pos:], Text: s[pos:]})
	}
	return segments
}

func scan(s string) []match {
	var out []match
	for _, loc := range currencyRe.FindAllStringIndex(s, -1) {
		out = append(out, match{start: loc[0], end: loc[1], kind: KindCurrency, text: s[loc[0]:loc[1]]})
	}
	for _, loc := range percentRe.FindAllStringIndex(s, -1) {
		out = append(out, match{start: loc[0], end: loc[1], kind: KindPercent, text: s[loc[0]:loc[1]]})
	}
	for _, loc := range emphasisRe.FindAllStringSubmatchIndex(s, -1) {
		out = append(out, match{start: loc[0], end: loc[1], kind: KindEmphasis, text: s[loc[2]:loc[3]]})
	}
	return out
}

// sortByStart is a stable insertion sort; candidate lists are short and the
// three scans each produce already-ascending runs.
func sortByStart(ms []match) {
	for i := 1; i < len(ms); i++ {
		for j := i; j > 0 && ms[j].start < ms[j-1].start; j-- {
			ms[j], ms[j-1] = ms[j-1], ms[j]
		}
	}
}
