package domain

// VocabularyEntry is a term plus chapter number parsed from the
// authoritative reference document for a curriculum unit. Not persisted;
// used only during validation and reconciliation passes.
type VocabularyEntry struct {
	Term    string
	Chapter string
}

// VocabularyList is the parsed content of one vocabulary document.
// Chapter keys are the bare chapter numbers as strings; '0' holds terms
// listed before the first chapter heading.
type VocabularyList struct {
	Chapters   map[string][]string
	AllTerms   []string
	SourcePath string
}

// TotalTerms returns the number of terms across all chapters.
func (v *VocabularyList) TotalTerms() int { return len(v.AllTerms) }

// ChapterCount returns the number of chapter buckets.
func (v *VocabularyList) ChapterCount() int { return len(v.Chapters) }

// ChapterOf returns the chapter number a term is listed under, or "" if the
// term is not in the list. Comparison is by exact text, the way the
// document stores it.
func (v *VocabularyList) ChapterOf(term string) string {
	for ch, terms := range v.Chapters {
		for _, t := range terms {
			if t == term {
				return ch
			}
		}
	}
	return ""
}
