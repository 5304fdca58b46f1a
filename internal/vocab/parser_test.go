package vocab

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeVocabDoc builds a minimal .docx whose paragraphs are the given lines.
// A line prefixed "title:" gets the Title style.
func writeVocabDoc(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, line := range lines {
		style := ""
		if rest, ok := strings.CutPrefix(line, "title:"); ok {
			style = `<w:pPr><w:pStyle w:val="Title"/></w:pPr>`
			line = rest
		}
		fmt.Fprintf(&b, `<w:p>%s<w:r><w:t>%s</w:t></w:r></w:p>`, style, line)
	}
	b.WriteString(`</w:body></w:document>`)

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := w.Write([]byte(b.String())); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return path
}

func TestParseChapterBuckets(t *testing.T) {
	path := writeVocabDoc(t, t.TempDir(), "vocab.docx",
		"title:Volcanoes Key Vocabulary",
		"Chapter 1",
		"magma",
		"lava",
		"Chapter 2",
		"eruption",
	)

	list, err := Parse(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if list.TotalTerms() != 3 {
		t.Fatalf("total terms = %d, want 3", list.TotalTerms())
	}
	if got := list.Chapters["1"]; len(got) != 2 || got[0] != "magma" || got[1] != "lava" {
		t.Fatalf("chapter 1 = %v", got)
	}
	if got := list.Chapters["2"]; len(got) != 1 || got[0] != "eruption" {
		t.Fatalf("chapter 2 = %v", got)
	}
	if _, ok := list.Chapters["0"]; ok {
		t.Fatal("empty chapter 0 must be removed")
	}
}

func TestParseFrontMatter(t *testing.T) {
	path := writeVocabDoc(t, t.TempDir(), "vocab.docx",
		"title:Romans Key Vocabulary",
		"empire",
		"Chapter 1",
		"Colosseum",
	)

	list, err := Parse(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := list.Chapters["0"]; len(got) != 1 || got[0] != "empire" {
		t.Fatalf("pre-heading terms must land in chapter 0, got %v", got)
	}
	if list.ChapterOf("empire") != "0" {
		t.Fatalf("ChapterOf(empire) = %q", list.ChapterOf("empire"))
	}
}

func TestParseSkipsLongUnstyledTitle(t *testing.T) {
	path := writeVocabDoc(t, t.TempDir(), "vocab.docx",
		"A very long document heading that is clearly not a vocabulary term at all",
		"aqueduct",
	)

	list, err := Parse(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if list.TotalTerms() != 1 || list.AllTerms[0] != "aqueduct" {
		t.Fatalf("long first line should be skipped as a title, got %v", list.AllTerms)
	}
}

func TestParseKeepsWholeLine(t *testing.T) {
	path := writeVocabDoc(t, t.TempDir(), "vocab.docx",
		"Chapter 1",
		"push - pull factors",
		"hunter-gatherer",
	)

	list, err := Parse(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := list.Chapters["1"]
	if len(got) != 2 || got[0] != "push - pull factors" || got[1] != "hunter-gatherer" {
		t.Fatalf("the whole line is the term, got %v", got)
	}
}
