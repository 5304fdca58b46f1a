// Package match resolves extracted terms against authoritative vocabulary
// lists. Matching runs in three tiers of decreasing confidence; the first
// tier that hits wins, and within a tier the first candidate in list order
// wins, so results are deterministic for a fixed vocabulary.
package match

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/hepworth/owlmap/internal/domain"
)

const (
	exactConfidence      = 1.0
	normalisedConfidence = 0.95
	fuzzyThreshold       = 0.9
	fuzzyPenalty         = 0.85
)

var (
	punctRe      = regexp.MustCompile(`[.,;:!?'"()\[\]{}]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalise lowercases a term, strips punctuation and collapses internal
// whitespace, so "The Roman Empire!" and "the roman  empire" compare equal.
func Normalise(term string) string {
	term = punctRe.ReplaceAllString(term, "")
	term = whitespaceRe.ReplaceAllString(term, " ")
	return strings.ToLower(strings.TrimSpace(term))
}

// Result is a successful match against a vocabulary term.
type Result struct {
	VocabTerm  string
	Tier       domain.MatchTier
	Confidence float64
}

// Matcher matches terms against one vocabulary list. The lowercased and
// normalised forms are precomputed once per list; fuzzy comparison still
// walks all candidates.
type Matcher struct {
	terms      []string
	lowered    []string
	normalised []string
}

func NewMatcher(vocabTerms []string) *Matcher {
	m := &Matcher{
		terms:      vocabTerms,
		lowered:    make([]string, len(vocabTerms)),
		normalised: make([]string, len(vocabTerms)),
	}
	for i, t := range vocabTerms {
		m.lowered[i] = strings.ToLower(t)
		m.normalised[i] = Normalise(t)
	}
	return m
}

// Ratio is difflib's sequence similarity over the characters of two strings,
// in [0, 1].
func Ratio(a, b string) float64 {
	sm := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return sm.Ratio()
}

// Match runs the three tiers in order: exact (case-insensitive), normalised,
// then fuzzy similarity over the lowercased raw text with a confidence
// penalty. Punctuation counts against fuzzy similarity. Returns nil when no
// tier reaches its threshold.
func (m *Matcher) Match(term string) *Result {
	// Exact comparison deliberately does not trim: stray whitespace drops a
	// term to the normalised tier and its lower confidence.
	lower := strings.ToLower(term)
	for i, vt := range m.terms {
		if m.lowered[i] == lower {
			return &Result{VocabTerm: vt, Tier: domain.TierExact, Confidence: exactConfidence}
		}
	}

	norm := Normalise(term)
	if norm != "" {
		for i, vt := range m.terms {
			if m.normalised[i] == norm {
				return &Result{VocabTerm: vt, Tier: domain.TierNormalised, Confidence: normalisedConfidence}
			}
		}
	}

	for i, vt := range m.terms {
		if r := Ratio(lower, m.lowered[i]); r >= fuzzyThreshold {
			return &Result{VocabTerm: vt, Tier: domain.TierFuzzy, Confidence: r * fuzzyPenalty}
		}
	}
	return nil
}

// MatchAgainst is a one-shot convenience for small candidate sets.
func MatchAgainst(term string, vocabTerms []string) *Result {
	return NewMatcher(vocabTerms).Match(term)
}
