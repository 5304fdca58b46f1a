package match

import (
	"testing"

	"github.com/hepworth/owlmap/internal/domain"
)

func TestMatchTiers(t *testing.T) {
	m := NewMatcher([]string{"The Roman Empire"})

	res := m.Match("the roman empire")
	if res == nil || res.Tier != domain.TierExact {
		t.Fatalf("expected exact tier, got %+v", res)
	}
	if res.Confidence != 1.0 {
		t.Fatalf("expected confidence 1.0, got %v", res.Confidence)
	}

	res = m.Match("The Roman Empire.")
	if res == nil || res.Tier != domain.TierNormalised {
		t.Fatalf("expected normalised tier, got %+v", res)
	}
	if res.Confidence != 0.95 {
		t.Fatalf("expected confidence 0.95, got %v", res.Confidence)
	}

	res = m.Match("The Roman Empir")
	if res == nil || res.Tier != domain.TierFuzzy {
		t.Fatalf("expected fuzzy tier, got %+v", res)
	}
	if res.Confidence >= 0.85 {
		t.Fatalf("fuzzy confidence must stay below 0.85, got %v", res.Confidence)
	}

	if res := m.Match("Unrelated Term"); res != nil {
		t.Fatalf("expected no match, got %+v", res)
	}
}

func TestMatchFirstCandidateWins(t *testing.T) {
	m := NewMatcher([]string{"Volcano", "volcano"})
	res := m.Match("VOLCANO")
	if res == nil || res.VocabTerm != "Volcano" {
		t.Fatalf("expected first candidate in input order, got %+v", res)
	}
}

func TestMatchFuzzyComparesRawText(t *testing.T) {
	m := NewMatcher([]string{"St Pauls"})
	// "st. paul" vs "st pauls" sits below the 0.9 threshold once the dot
	// counts against similarity; stripping punctuation first would let it in.
	if res := m.Match("St. Paul"); res != nil {
		t.Fatalf("punctuation must count against fuzzy similarity, got %+v", res)
	}

	m = NewMatcher([]string{"volcano"})
	res := m.Match("volcanoe")
	if res == nil || res.Tier != domain.TierFuzzy {
		t.Fatalf("close raw spelling must still fuzzy-match, got %+v", res)
	}
}

func TestNormalise(t *testing.T) {
	cases := map[string]string{
		"The Roman Empire!":   "the roman empire",
		"  St. Paul  ":        "st paul",
		"\"quoted\" (thing)":  "quoted thing",
		"spread   out\twords": "spread out words",
	}
	for in, want := range cases {
		if got := Normalise(in); got != want {
			t.Fatalf("Normalise(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRatioIdentical(t *testing.T) {
	if r := Ratio("volcano", "volcano"); r != 1.0 {
		t.Fatalf("identical strings should have ratio 1.0, got %v", r)
	}
	if r := Ratio("volcano", "xyz"); r > 0.5 {
		t.Fatalf("unrelated strings should have low ratio, got %v", r)
	}
}
