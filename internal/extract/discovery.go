package extract

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// DiscoverDecks walks the corpus root and returns every booklet deck path,
// sorted. Office lock files ("~$...") and hidden files are skipped. An empty
// subject filter or zero year filter means no filtering on that axis.
func DiscoverDecks(root, subjectFilter string, yearFilter int) ([]string, error) {
	var decks []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(name), ".pptx") {
			return nil
		}
		if !strings.Contains(filepath.Dir(path), "Booklet") {
			return nil
		}
		if subjectFilter != "" && !strings.EqualFold(inferSubject(path), subjectFilter) {
			return nil
		}
		if yearFilter != 0 {
			md, err := ParsePathMetadata(path)
			if err != nil || md.Year != yearFilter {
				return nil
			}
		}
		decks = append(decks, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus %s: %w", root, err)
	}
	sort.Strings(decks)
	return decks, nil
}
