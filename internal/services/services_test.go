package services

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hepworth/owlmap/internal/domain"
	"github.com/hepworth/owlmap/internal/logger"
	"github.com/hepworth/owlmap/internal/repos"
)

type testEnv struct {
	db       *gorm.DB
	log      *logger.Logger
	concepts repos.ConceptRepo
	occs     repos.OccurrenceRepo
	edges    repos.EdgeRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(&domain.Concept{}, &domain.Occurrence{}, &domain.Edge{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return &testEnv{
		db:       gdb,
		log:      log,
		concepts: repos.NewConceptRepo(gdb, log),
		occs:     repos.NewOccurrenceRepo(gdb, log),
		edges:    repos.NewEdgeRepo(gdb, log),
	}
}

type seed struct {
	term    string
	chapter string
	slide   int
	status  domain.ValidationStatus
	source  string
}

func (e *testEnv) seed(t *testing.T, s seed) *domain.Occurrence {
	t.Helper()
	ctx := context.Background()
	concept, _, err := e.concepts.GetOrCreate(ctx, nil, s.term, nil)
	if err != nil {
		t.Fatalf("get or create concept: %v", err)
	}
	occ := &domain.Occurrence{
		ConceptID:   concept.ConceptID,
		Subject:     "History",
		Year:        4,
		Term:        "Autumn1",
		Unit:        "Volcanoes",
		SlideNumber: &s.slide,
	}
	if s.chapter != "" {
		occ.Chapter = &s.chapter
	}
	if s.status != "" {
		occ.ValidationStatus = &s.status
	}
	if s.source != "" {
		occ.SourcePath = &s.source
	}
	if err := e.occs.Create(ctx, nil, occ); err != nil {
		t.Fatalf("create occurrence: %v", err)
	}
	return occ
}

// writeVocabDoc builds a minimal vocabulary .docx under dir.
func writeVocabDoc(t *testing.T, path string, lines ...string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, line := range lines {
		fmt.Fprintf(&b, `<w:p><w:r><w:t>%s</w:t></w:r></w:p>`, line)
	}
	b.WriteString(`</w:body></w:document>`)

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
}

// writeDeckFixture builds a one-slide .pptx whose paragraphs are the given
// lines, none of them bold.
func writeDeckFixture(t *testing.T, path string, lines ...string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree><p:sp><p:txBody>`)
	for _, line := range lines {
		fmt.Fprintf(&b, `<a:p><a:r><a:t>%s</a:t></a:r></a:p>`, line)
	}
	b.WriteString(`</p:txBody></p:sp></p:spTree></p:cSld></p:sld>`)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	w, err := zw.Create("ppt/slides/slide1.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := w.Write([]byte(b.String())); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
}
