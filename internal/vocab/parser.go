// Package vocab parses authoritative vocabulary reference documents into
// chapter-indexed term lists, and locates the right document for a given
// slide deck.
package vocab

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hepworth/owlmap/internal/domain"
	"github.com/hepworth/owlmap/internal/ingestion/docx"
)

var chapterHeadingRe = regexp.MustCompile(`(?i)^Chapter\s+(\d+)`)

// Parse reads a vocabulary document into a chapter→terms map. Paragraphs
// before the first "Chapter N" heading accumulate into synthetic chapter "0";
// if "0" stays empty it is dropped from the result. The document's own title
// line is skipped heuristically: the first non-empty paragraph is discarded
// when it is styled as a heading or is over 40 characters long, as long as no
// term has been collected yet.
func Parse(path string) (*domain.VocabularyList, error) {
	doc, err := docx.Read(path)
	if err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}

	list := &domain.VocabularyList{
		Chapters:   map[string][]string{},
		SourcePath: path,
	}
	currentChapter := "0"
	titleSkipped := false

	for _, para := range doc.Paragraphs {
		text := strings.TrimSpace(para.Text)
		if text == "" {
			continue
		}

		if m := chapterHeadingRe.FindStringSubmatch(text); m != nil {
			currentChapter = m[1]
			continue
		}

		if !titleSkipped {
			titleSkipped = true
			frontMatterEmpty := currentChapter == "0" && len(list.Chapters["0"]) == 0
			if frontMatterEmpty && (para.IsHeadingStyle() || len(text) > 40) {
				continue
			}
		}

		// The whole paragraph is the term; lists carry no inline definitions
		// and a spaced hyphen can be part of a legitimate term.
		list.Chapters[currentChapter] = append(list.Chapters[currentChapter], text)
		list.AllTerms = append(list.AllTerms, text)
	}

	if len(list.Chapters["0"]) == 0 {
		delete(list.Chapters, "0")
	}
	return list, nil
}
