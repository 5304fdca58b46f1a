package extract

import (
	"testing"

	"github.com/hepworth/owlmap/internal/ingestion/pptx"
)

func textDeck(slides ...string) *pptx.Deck {
	deck := &pptx.Deck{}
	for i, text := range slides {
		deck.Slides = append(deck.Slides, pptx.Slide{
			Number:     i + 1,
			Paragraphs: []pptx.Paragraph{plainPara(text)},
		})
	}
	return deck
}

func TestSearchTermWordBoundaries(t *testing.T) {
	deck := textDeck(
		"The flash of light was sudden.",
		"Volcanic ash covered the town.",
	)

	res := SearchTerm(deck, "ash")
	if !res.Found {
		t.Fatal("expected to find the term")
	}
	if len(res.Slides) != 1 || res.Slides[0] != 2 {
		t.Fatalf("'ash' inside 'flash' must not match: slides = %v", res.Slides)
	}
	if res.FirstSlide != 2 {
		t.Fatalf("first slide = %d, want 2", res.FirstSlide)
	}
	if res.FirstContext != "Volcanic ash covered the town." {
		t.Fatalf("wrong context: %q", res.FirstContext)
	}
}

func TestSearchTermCaseInsensitive(t *testing.T) {
	deck := textDeck("VESUVIUS erupted in 79 AD.")
	if res := SearchTerm(deck, "Vesuvius"); !res.Found {
		t.Fatal("search must be case-insensitive")
	}
}

func TestSearchTermAcrossRuns(t *testing.T) {
	deck := &pptx.Deck{Slides: []pptx.Slide{{
		Number: 1,
		Paragraphs: []pptx.Paragraph{{
			Runs: []pptx.Run{{Text: "Mount Vesu"}, {Text: "vius erupted."}},
		}},
	}}}
	if res := SearchTerm(deck, "Vesuvius"); !res.Found {
		t.Fatal("paragraph text must be reassembled across run boundaries")
	}
}

func TestSearchTermNotFound(t *testing.T) {
	deck := textDeck("Nothing relevant here.")
	if res := SearchTerm(deck, "Colosseum"); res.Found {
		t.Fatalf("unexpected hit: %+v", res)
	}
}
