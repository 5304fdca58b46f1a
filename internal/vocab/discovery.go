package vocab

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// alphabeticalMarkerRe matters because units often carry two vocabulary
// lists: one in chapter order and one sorted A–Z. The chapter-ordered list is
// the authoritative one.
func hasAlphabeticalMarker(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "a-z") || strings.Contains(lower, "alphabetical")
}

// FindForDeck locates the vocabulary document for a slide deck by searching
// the deck's unit-level sibling directories for any folder whose name
// contains "vocab", recursively. Only .docx files whose own filename also
// contains "vocab" are candidates; vocab folders routinely hold admin
// documents that must never become the authoritative list. Chapter-ordered
// lists are preferred over alphabetical ones, and the most recently modified
// file wins. Returns "" when no document exists — the caller skips
// validation for the unit.
func FindForDeck(deckPath string) string {
	// deck sits inside a "... Booklet" folder; the unit folder is its parent.
	unitDir := filepath.Dir(filepath.Dir(deckPath))

	entries, err := os.ReadDir(unitDir)
	if err != nil {
		return ""
	}

	type candidate struct {
		path     string
		alpha    bool
		modified time.Time
	}
	var candidates []candidate

	for _, entry := range entries {
		if !entry.IsDir() || !strings.Contains(strings.ToLower(entry.Name()), "vocab") {
			continue
		}
		vocabDir := filepath.Join(unitDir, entry.Name())
		_ = filepath.WalkDir(vocabDir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			name := d.Name()
			if d.IsDir() {
				if p != vocabDir && strings.HasPrefix(name, ".") {
					return fs.SkipDir
				}
				return nil
			}
			if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(name), ".docx") {
				return nil
			}
			if !strings.Contains(strings.ToLower(name), "vocab") {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			candidates = append(candidates, candidate{
				path:     p,
				alpha:    hasAlphabeticalMarker(name),
				modified: info.ModTime(),
			})
			return nil
		})
	}
	if len(candidates) == 0 {
		return ""
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].alpha != candidates[j].alpha {
			return !candidates[i].alpha
		}
		return candidates[i].modified.After(candidates[j].modified)
	})
	return candidates[0].path
}
