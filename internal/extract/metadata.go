package extract

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Metadata is the curriculum position of a deck, parsed from its path.
type Metadata struct {
	Subject string // "History", "Geography" or "Religion"
	Year    int
	Term    string // compact form, e.g. "Autumn1"
	Unit    string
}

// bookletRe matches deck filenames like "Y4 Autumn 1 Volcanoes Booklet.pptx":
// year, season + half-term number, then the unit name.
var bookletFilenameRe = regexp.MustCompile(`^Y(\d+)\s+(Autumn|Spring|Summer)\s+([12])\s+(.+?)\s+Booklet`)

// ParsePathMetadata derives subject, year, term and unit from a deck path.
// The filename carries year/term/unit; the subject is inferred from
// abbreviations anywhere in the path, defaulting to History. A filename that
// does not fit the booklet pattern is an error — the caller skips that file.
func ParsePathMetadata(path string) (Metadata, error) {
	base := filepath.Base(path)
	m := bookletFilenameRe.FindStringSubmatch(base)
	if m == nil {
		return Metadata{}, fmt.Errorf("path %s: filename does not match booklet naming pattern", path)
	}

	year, err := strconv.Atoi(m[1])
	if err != nil {
		return Metadata{}, fmt.Errorf("path %s: bad year: %w", path, err)
	}

	return Metadata{
		Subject: inferSubject(path),
		Year:    year,
		Term:    m[2] + m[3],
		Unit:    strings.TrimSpace(m[4]),
	}, nil
}

func inferSubject(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.Contains(lower, "geog"):
		return "Geography"
	case strings.Contains(lower, "relig") || strings.Contains(lower, " re "):
		return "Religion"
	default:
		return "History"
	}
}
