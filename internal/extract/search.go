package extract

import (
	"regexp"
	"strings"

	"github.com/hepworth/owlmap/internal/ingestion/pptx"
)

// SearchResult reports where a term appears in a deck's full text, bold or
// not. Used to recover vocabulary terms the bold-run extraction missed.
type SearchResult struct {
	Found        bool
	Slides       []int
	FirstContext string // paragraph text of the first hit
	FirstSlide   int
}

// termBoundaryRe builds a case-insensitive pattern requiring the term to sit
// at word boundaries: not immediately preceded or followed by a letter, so
// "ash" does not match inside "flash".
func termBoundaryRe(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^a-zA-Z])` + regexp.QuoteMeta(term) + `(?:[^a-zA-Z]|$)`)
}

// SearchTerm scans every paragraph of a deck for the term. Paragraph text is
// reassembled across run boundaries first, so split formatting cannot hide a
// hit.
func SearchTerm(deck *pptx.Deck, term string) SearchResult {
	re := termBoundaryRe(term)
	var res SearchResult
	for _, slide := range deck.Slides {
		hit := false
		for _, para := range slide.Paragraphs {
			text := strings.TrimSpace(para.Text())
			if text == "" || !re.MatchString(text) {
				continue
			}
			hit = true
			if !res.Found {
				res.Found = true
				res.FirstContext = text
				res.FirstSlide = slide.Number
			}
		}
		if hit {
			res.Slides = append(res.Slides, slide.Number)
		}
	}
	return res
}
