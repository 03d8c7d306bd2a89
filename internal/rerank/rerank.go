// Package rerank rescales vector-search distances with content-aware
// signals: a chunk's raw cosine distance says nothing about whether the
// query's words actually appear in its content, title, symbols, or path.
package rerank

import (
	"path"
	"sort"
	"strings"
)

// Candidate is one chunk the reranker rescales. Fields that don't apply to
// a kind (Title/HeaderLevel for non-docs, Symbols for non-code) are left
// zero-valued; the signals that need them simply don't fire.
type Candidate struct {
	ID       string
	Kind     string // "code", "text", or "docs"
	Path     string
	Content  string
	Title    string
	Symbols  []string
	// HeaderLevel is the markdown heading level the chunk sits under, or 0
	// if it isn't under one.
	HeaderLevel int
	Distance    float64
}

// Rerank multiplies each candidate's Distance by the applicable signal
// factors (lower product = better), then, for code candidates, layers the
// TF-IDF boost computed over this same candidate set, and finally sorts the
// slice ascending by the rescaled distance. Candidates is reordered and
// returned in place.
func Rerank(queryText string, candidates []Candidate) []Candidate {
	words := queryWords(queryText)

	for i := range candidates {
		candidates[i].Distance *= factor(queryText, words, candidates[i])
	}

	applyCodeTFIDFBoost(words, candidates)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})
	return candidates
}

func factor(queryText string, words []string, c Candidate) float64 {
	f := 1.0
	f *= exactPhraseFactor(queryText, words, c.Content)
	f *= wordOverlapFactor(words, c.Content)

	if c.Kind == "docs" {
		f *= titleFactor(queryText, c.Title)
		f *= headerLevelFactor(c.HeaderLevel)
	}
	if c.Kind == "code" {
		f *= symbolMatchFactor(words, c.Symbols)
	}

	f *= filenameFactor(queryText, c.Path)
	f *= directoryFactor(queryText, c.Path)
	f *= contentLengthFactor(len(c.Content))

	return f
}

func queryWords(queryText string) []string {
	return strings.Fields(strings.ToLower(queryText))
}

// exactPhraseFactor rewards the query appearing verbatim in the content.
// Longer phrase matches are rarer coincidences, so they earn a stronger
// boost: 0.7 for a single word down to 0.5 for five-or-more.
func exactPhraseFactor(queryText string, words []string, content string) float64 {
	if !strings.Contains(strings.ToLower(content), strings.ToLower(queryText)) {
		return 1.0
	}
	n := len(words)
	if n > 5 {
		n = 5
	}
	return clamp(0.7-0.05*float64(n-1), 0.5, 0.7)
}

// wordOverlapFactor scales with the fraction of query words present
// anywhere in the content, independent of order or adjacency.
func wordOverlapFactor(words []string, content string) float64 {
	if len(words) == 0 {
		return 1.0
	}
	lower := strings.ToLower(content)
	matched := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			matched++
		}
	}
	ratio := float64(matched) / float64(len(words))
	return 0.95 - 0.15*ratio
}

func titleFactor(queryText, title string) float64 {
	if title == "" {
		return 1.0
	}
	q := strings.ToLower(strings.TrimSpace(queryText))
	t := strings.ToLower(strings.TrimSpace(title))
	switch {
	case t == q:
		return 0.4
	case strings.Contains(t, q):
		return 0.5
	default:
		return 1.0
	}
}

func symbolMatchFactor(words []string, symbols []string) float64 {
	if len(symbols) == 0 {
		return 1.0
	}
	for _, sym := range symbols {
		s := strings.ToLower(sym)
		for _, w := range words {
			if s == w || strings.Contains(s, w) {
				return 0.6
			}
		}
	}
	return 1.0
}

func filenameFactor(queryText, filePath string) float64 {
	if filePath == "" || queryText == "" {
		return 1.0
	}
	base := strings.ToLower(path.Base(filePath))
	if strings.Contains(base, strings.ToLower(queryText)) {
		return 0.75
	}
	return 1.0
}

func directoryFactor(queryText, filePath string) float64 {
	if filePath == "" || queryText == "" {
		return 1.0
	}
	dir := strings.ToLower(path.Dir(filePath))
	if strings.Contains(dir, strings.ToLower(queryText)) {
		return 0.85
	}
	return 1.0
}

// contentLengthFactor returns 0.90 under 100 characters, 1.00 across the
// 500–2000 plateau and 0.95 above 5000, interpolating linearly in between.
// As a distance multiplier, the values below 1.00 move very short and very
// long chunks up the ranking relative to the plateau.
func contentLengthFactor(length int) float64 {
	switch {
	case length < 100:
		return 0.90
	case length < 500:
		return lerp(0.90, 1.00, float64(length-100)/400)
	case length <= 2000:
		return 1.00
	case length <= 5000:
		return lerp(1.00, 0.95, float64(length-2000)/3000)
	default:
		return 0.95
	}
}

// headerLevelFactor returns 0.85 for H1 and H2, 0.90 for H3 and 0.95 for
// H4-and-deeper. As a distance multiplier this gives shallower headings the
// stronger boost.
func headerLevelFactor(level int) float64 {
	if level <= 0 {
		return 1.0
	}
	return clamp(0.85+0.05*float64(level-2), 0.85, 0.95)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lerp(from, to, t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return from + (to-from)*t
}
