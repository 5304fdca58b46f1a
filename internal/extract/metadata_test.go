package extract

import (
	"path/filepath"
	"testing"
)

func TestParsePathMetadata(t *testing.T) {
	path := filepath.Join("corpus", "Y4 Hist Autumn 1 Volcanoes",
		"Y4 Autumn 1 Volcanoes Booklet", "Y4 Autumn 1 Volcanoes Booklet.pptx")

	md, err := ParsePathMetadata(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if md.Year != 4 {
		t.Fatalf("year = %d, want 4", md.Year)
	}
	if md.Term != "Autumn1" {
		t.Fatalf("term = %q, want Autumn1", md.Term)
	}
	if md.Unit != "Volcanoes" {
		t.Fatalf("unit = %q, want Volcanoes", md.Unit)
	}
	if md.Subject != "History" {
		t.Fatalf("subject = %q, want History", md.Subject)
	}
}

func TestParsePathMetadataSubjects(t *testing.T) {
	cases := map[string]string{
		"Y5 Geog Spring 2 Rivers/Y5 Spring 2 Rivers Booklet/Y5 Spring 2 Rivers Booklet.pptx": "Geography",
		"Y3 Relig Summer 1 Temples/Y3 Summer 1 Temples Booklet.pptx":                         "Religion",
		"Y6 Summer 2 Romans Booklet.pptx":                                                    "History",
	}
	for path, want := range cases {
		md, err := ParsePathMetadata(filepath.FromSlash(path))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", path, err)
		}
		if md.Subject != want {
			t.Fatalf("%s: subject = %q, want %q", path, md.Subject, want)
		}
	}
}

func TestParsePathMetadataRejectsBadNames(t *testing.T) {
	for _, path := range []string{
		"notes.pptx",
		"Autumn 1 Volcanoes.pptx",
		"Y4 Winter 1 Volcanoes Booklet.pptx",
	} {
		if _, err := ParsePathMetadata(path); err == nil {
			t.Fatalf("expected error for %q", path)
		}
	}
}
