// Package validate classifies extracted term occurrences against an
// authoritative vocabulary list, and computes the missed-term set that
// drives recovery.
package validate

import (
	"strings"

	"github.com/hepworth/owlmap/internal/domain"
	"github.com/hepworth/owlmap/internal/extract"
	"github.com/hepworth/owlmap/internal/match"
)

// Verdict is the validation outcome for one extracted occurrence.
type Verdict struct {
	Term       extract.Term
	Status     domain.ValidationStatus
	Confidence float64
	Tier       domain.MatchTier
	VocabTerm  string // matched vocabulary spelling; "" when unmatched
}

// Classify crosses vocabulary membership with the extractor's flag:
// membership with no flag is confirmed, membership despite a flag is
// confirmed-with-flag, an unflagged miss is potential noise, and a flagged
// miss goes to high-priority review.
func Classify(inVocabulary, flagged bool) domain.ValidationStatus {
	switch {
	case inVocabulary && !flagged:
		return domain.StatusConfirmed
	case inVocabulary && flagged:
		return domain.StatusConfirmedWithFlag
	case !inVocabulary && !flagged:
		return domain.StatusPotentialNoise
	default:
		return domain.StatusHighPriorityReview
	}
}

// Batch holds the validation of one deck's extracted terms against one
// vocabulary list.
type Batch struct {
	Verdicts    []Verdict
	MissedTerms []string // vocabulary terms with no extracted counterpart
}

// Validate matches every extracted term against the vocabulary and computes
// the missed set. A vocabulary term counts as covered if any extracted term
// equals it case-insensitively or after normalisation.
func Validate(terms []extract.Term, vocabulary *domain.VocabularyList) *Batch {
	matcher := match.NewMatcher(vocabulary.AllTerms)

	seenLower := make(map[string]bool, len(terms))
	seenNorm := make(map[string]bool, len(terms))
	for _, t := range terms {
		seenLower[strings.ToLower(t.Term)] = true
		seenNorm[match.Normalise(t.Term)] = true
	}

	batch := &Batch{}
	for _, t := range terms {
		v := Verdict{Term: t, Tier: domain.TierNone}
		if res := matcher.Match(t.Term); res != nil {
			v.Confidence = res.Confidence
			v.Tier = res.Tier
			v.VocabTerm = res.VocabTerm
		}
		v.Status = Classify(v.Tier != domain.TierNone, t.Flagged)
		batch.Verdicts = append(batch.Verdicts, v)
	}

	for _, vt := range vocabulary.AllTerms {
		if seenLower[strings.ToLower(vt)] || seenNorm[match.Normalise(vt)] {
			continue
		}
		batch.MissedTerms = append(batch.MissedTerms, vt)
	}
	return batch
}
