// Package extract pulls candidate vocabulary terms out of curriculum slide
// decks. Bold formatting is treated as the author's marker for a formal
// concept introduction; everything else here is noise filtering around that
// signal.
package extract

import (
	"regexp"
	"strings"

	"github.com/hepworth/owlmap/internal/ingestion/pptx"
)

// Term is one extracted candidate occurrence with its positional metadata.
type Term struct {
	Term    string
	Slide   int
	Chapter string // running chapter heading at time of extraction; "" if none yet
	Context string // full paragraph text the run sat in
	Flagged bool
	Reason  string // comma-joined reasons when Flagged
}

// Result is the outcome of extracting one deck. A corrupt deck produces an
// empty term list and a non-empty Error; batch callers record it and move on.
type Result struct {
	Terms       []Term
	TotalSlides int
	Error       string
}

var (
	chapterRe = regexp.MustCompile(`^(\d+\.\s+.+)$`)
	pageRefRe = regexp.MustCompile(`(?i)^Page\s+\d+$`)
	numericRe = regexp.MustCompile(`^\d+\.?$`)
	urlRe     = regexp.MustCompile(`(?i)^(?:https?://|www\.)\S+$`)
	orgRe     = regexp.MustCompile(`(?i)\b(?:Inc|Ltd|LLC|Corp|Group|Foundation|Organization)\.?$`)
)

// structuralLabels are slide-furniture bold runs that never name a concept.
// Compared after trailing punctuation is stripped, case-insensitively.
var structuralLabels = map[string]bool{
	"a": true, "an": true, "the": true,
	"reason 1": true, "reason 2": true, "reason 3": true, "reason 4": true, "reason 5": true,
	"source 1": true, "source 2": true, "source 3": true, "source 4": true, "source 5": true,
	"task": true, "glossary": true, "key vocabulary": true, "true or false": true,
}

// pictureCreditMarker opens the trailing credits section of a deck; bold
// runs after it are image citations, not terms.
const pictureCreditMarker = "picture credit"

// IsNoise reports whether a bold run's text should be discarded outright.
func IsNoise(text string) bool {
	text = strings.TrimSpace(text)
	if pageRefRe.MatchString(text) {
		return true
	}
	if numericRe.MatchString(text) {
		return true
	}
	if urlRe.MatchString(text) {
		return true
	}
	if orgRe.MatchString(text) {
		return true
	}
	return structuralLabels[strings.ToLower(CleanTerm(text))]
}

// CleanTerm strips trailing punctuation only, preserving internal
// punctuation so "St. Paul" survives intact.
func CleanTerm(text string) string {
	return strings.TrimRight(strings.TrimSpace(text), ".,;:!?")
}

// DetectChapter returns the chapter heading if the paragraph text is one
// ("1. The Roman Empire"), else "".
func DetectChapter(text string) string {
	if m := chapterRe.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
		return m[1]
	}
	return ""
}

func isAllCapsWord(text string) bool {
	if len(text) < 2 || strings.ContainsAny(text, " \t") {
		return false
	}
	hasLetter := false
	for _, r := range text {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

// reviewReasons collects the flag reasons for a cleaned term. rawText is the
// run text before cleaning — the trailing-colon check has to see the colon
// that CleanTerm strips.
func reviewReasons(cleaned, rawText, paragraphText string) []string {
	var reasons []string
	if len(cleaned) < 5 {
		reasons = append(reasons, "short_term")
	}
	if len(strings.TrimSpace(paragraphText)) < 20 {
		reasons = append(reasons, "potential_heading")
	}
	if isAllCapsWord(cleaned) {
		reasons = append(reasons, "all_caps")
	}
	if strings.HasSuffix(strings.TrimSpace(rawText), ":") {
		reasons = append(reasons, "ends_with_colon")
	}
	return reasons
}

// Extract reads a deck and returns its candidate term occurrences in slide
// order. Chapter tracking scans all paragraph text, not just bold runs.
func Extract(path string) Result {
	deck, err := pptx.Read(path)
	if err != nil {
		return Result{Error: err.Error()}
	}
	return ExtractDeck(deck)
}

// ExtractDeck runs the extraction heuristics over an already-read deck.
func ExtractDeck(deck *pptx.Deck) Result {
	res := Result{TotalSlides: len(deck.Slides)}

	currentChapter := ""
	inCredits := false

	for _, slide := range deck.Slides {
		for _, para := range slide.Paragraphs {
			paraText := strings.TrimSpace(para.Text())

			if ch := DetectChapter(paraText); ch != "" {
				currentChapter = ch
			}

			// Everything bold after the picture-credit line is citation.
			if strings.Contains(strings.ToLower(paraText), pictureCreditMarker) {
				inCredits = true
			}
			if inCredits {
				continue
			}

			for _, run := range para.Runs {
				if !run.Bold {
					continue
				}
				rawText := strings.TrimSpace(run.Text)
				if rawText == "" {
					continue
				}
				if IsNoise(rawText) {
					continue
				}

				cleaned := CleanTerm(rawText)
				reasons := reviewReasons(cleaned, rawText, paraText)

				res.Terms = append(res.Terms, Term{
					Term:    cleaned,
					Slide:   slide.Number,
					Chapter: currentChapter,
					Context: paraText,
					Flagged: len(reasons) > 0,
					Reason:  strings.Join(reasons, ","),
				})
			}
		}
	}
	return res
}
