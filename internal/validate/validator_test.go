package validate

import (
	"testing"

	"github.com/hepworth/owlmap/internal/domain"
	"github.com/hepworth/owlmap/internal/extract"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		inVocab, flagged bool
		want             domain.ValidationStatus
	}{
		{true, false, domain.StatusConfirmed},
		{true, true, domain.StatusConfirmedWithFlag},
		{false, false, domain.StatusPotentialNoise},
		{false, true, domain.StatusHighPriorityReview},
	}
	for _, c := range cases {
		if got := Classify(c.inVocab, c.flagged); got != c.want {
			t.Fatalf("Classify(%v, %v) = %v, want %v", c.inVocab, c.flagged, got, c.want)
		}
	}
}

func TestValidateScenario(t *testing.T) {
	vocabulary := &domain.VocabularyList{
		Chapters: map[string][]string{
			"1": {"Colosseum", "Forum"},
			"2": {"Senate"},
		},
		AllTerms: []string{"Colosseum", "Forum", "Senate"},
	}

	terms := []extract.Term{
		{Term: "Colosseum", Slide: 3},
		{Term: "senate ", Slide: 7, Flagged: true, Reason: "short_term"},
	}

	batch := Validate(terms, vocabulary)
	if len(batch.Verdicts) != 2 {
		t.Fatalf("expected 2 verdicts, got %d", len(batch.Verdicts))
	}

	colosseum := batch.Verdicts[0]
	if colosseum.Status != domain.StatusConfirmed || colosseum.Tier != domain.TierExact {
		t.Fatalf("Colosseum should be confirmed via exact match: %+v", colosseum)
	}

	senate := batch.Verdicts[1]
	if senate.Status != domain.StatusConfirmedWithFlag {
		t.Fatalf("flagged vocabulary term should be confirmed-with-flag: %+v", senate)
	}
	if senate.VocabTerm != "Senate" {
		t.Fatalf("senate should resolve to the vocabulary spelling: %+v", senate)
	}

	if len(batch.MissedTerms) != 1 || batch.MissedTerms[0] != "Forum" {
		t.Fatalf("missed set = %v, want [Forum]", batch.MissedTerms)
	}
}

func TestValidateUnmatched(t *testing.T) {
	vocabulary := &domain.VocabularyList{AllTerms: []string{"Colosseum"}}
	batch := Validate([]extract.Term{{Term: "Unrelated Term"}}, vocabulary)

	v := batch.Verdicts[0]
	if v.Status != domain.StatusPotentialNoise || v.Tier != domain.TierNone || v.Confidence != 0 {
		t.Fatalf("unmatched unflagged term should be potential noise with zero confidence: %+v", v)
	}
}
