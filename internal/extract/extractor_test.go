package extract

import (
	"strings"
	"testing"

	"github.com/hepworth/owlmap/internal/ingestion/pptx"
)

func boldPara(texts ...string) pptx.Paragraph {
	var p pptx.Paragraph
	for _, t := range texts {
		p.Runs = append(p.Runs, pptx.Run{Text: t, Bold: true})
	}
	return p
}

func plainPara(text string) pptx.Paragraph {
	return pptx.Paragraph{Runs: []pptx.Run{{Text: text}}}
}

func TestNoiseFiltering(t *testing.T) {
	for _, noise := range []string{"Page 4", "17.", "www.example.com", "Acme Ltd.", "Reason 1"} {
		if !IsNoise(noise) {
			t.Fatalf("expected %q to be discarded as noise", noise)
		}
	}
	for _, keep := range []string{"Vesuvius", "St. Paul", "Colosseum"} {
		if IsNoise(keep) {
			t.Fatalf("expected %q to survive noise filtering", keep)
		}
	}
}

func TestCleanTerm(t *testing.T) {
	if got := CleanTerm("Vesuvius."); got != "Vesuvius" {
		t.Fatalf("trailing punctuation should strip, got %q", got)
	}
	if got := CleanTerm("St. Paul"); got != "St. Paul" {
		t.Fatalf("internal punctuation must be preserved, got %q", got)
	}
}

func TestExtractDeckChapterTracking(t *testing.T) {
	deck := &pptx.Deck{Slides: []pptx.Slide{
		{Number: 1, Paragraphs: []pptx.Paragraph{
			plainPara("1. The Roman Empire"),
			boldPara("Colosseum"),
		}},
		{Number: 2, Paragraphs: []pptx.Paragraph{
			plainPara("2. Life in Rome"),
			boldPara("Forum"),
		}},
	}}

	res := ExtractDeck(deck)
	if len(res.Terms) != 2 {
		t.Fatalf("expected 2 terms, got %d", len(res.Terms))
	}
	if res.Terms[0].Chapter != "1. The Roman Empire" {
		t.Fatalf("wrong chapter for first term: %q", res.Terms[0].Chapter)
	}
	if res.Terms[1].Chapter != "2. Life in Rome" {
		t.Fatalf("chapter should advance with headings: %q", res.Terms[1].Chapter)
	}
	if res.Terms[1].Slide != 2 {
		t.Fatalf("wrong slide number: %d", res.Terms[1].Slide)
	}
}

func TestExtractDeckPictureCreditsCutoff(t *testing.T) {
	deck := &pptx.Deck{Slides: []pptx.Slide{
		{Number: 1, Paragraphs: []pptx.Paragraph{boldPara("Vesuvius")}},
		{Number: 2, Paragraphs: []pptx.Paragraph{
			plainPara("Picture credits"),
			boldPara("Getty Images"),
		}},
	}}

	res := ExtractDeck(deck)
	if len(res.Terms) != 1 || res.Terms[0].Term != "Vesuvius" {
		t.Fatalf("bold runs after the picture-credit marker must be ignored, got %+v", res.Terms)
	}
}

func TestExtractDeckReviewFlags(t *testing.T) {
	longContext := "This long paragraph talks about the eruption in enough detail to not be a heading."
	deck := &pptx.Deck{Slides: []pptx.Slide{
		{Number: 1, Paragraphs: []pptx.Paragraph{
			{Runs: []pptx.Run{
				{Text: "ash", Bold: true},
				{Text: " fell over the city of Pompeii during the eruption"},
			}},
			boldPara("Heading:"),
			{Runs: []pptx.Run{{Text: "MAGMA", Bold: true}, {Text: " " + longContext}}},
		}},
	}}

	res := ExtractDeck(deck)
	if len(res.Terms) != 3 {
		t.Fatalf("expected 3 terms, got %d", len(res.Terms))
	}

	byTerm := map[string]Term{}
	for _, term := range res.Terms {
		byTerm[term.Term] = term
	}

	if term := byTerm["ash"]; !term.Flagged || !strings.Contains(term.Reason, "short_term") {
		t.Fatalf("short term should be flagged: %+v", term)
	}
	if term := byTerm["Heading"]; !term.Flagged ||
		!strings.Contains(term.Reason, "ends_with_colon") ||
		!strings.Contains(term.Reason, "potential_heading") {
		t.Fatalf("colon-terminated heading should carry both reasons: %+v", term)
	}
	if term := byTerm["MAGMA"]; !term.Flagged || !strings.Contains(term.Reason, "all_caps") {
		t.Fatalf("all-caps word should be flagged: %+v", term)
	}
	if term := byTerm["MAGMA"]; strings.Contains(term.Reason, "potential_heading") {
		t.Fatalf("long paragraph context must not look like a heading: %+v", term)
	}
}

func TestExtractDeckUnflaggedTerm(t *testing.T) {
	deck := &pptx.Deck{Slides: []pptx.Slide{
		{Number: 1, Paragraphs: []pptx.Paragraph{
			{Runs: []pptx.Run{
				{Text: "Colosseum", Bold: true},
				{Text: " was the largest amphitheatre ever built in Rome"},
			}},
		}},
	}}
	res := ExtractDeck(deck)
	if len(res.Terms) != 1 {
		t.Fatalf("expected 1 term, got %d", len(res.Terms))
	}
	if res.Terms[0].Flagged {
		t.Fatalf("clean term in a full sentence must not be flagged: %+v", res.Terms[0])
	}
}
