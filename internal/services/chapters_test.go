package services

import (
	"context"
	"path/filepath"
	"testing"
)

func TestCleanChapterString(t *testing.T) {
	cases := map[string]string{
		"1. The Roman Empire\tPage 4": "1. The Roman Empire",
		"1. The Roman Empire\t":       "1. The Roman Empire",
		"2. Life in Rome Page 12":     "2. Life in Rome",
		"3. Trade":                    "3. Trade",
		"Page 4":                      "Page 4", // would become empty: revert
	}
	for in, want := range cases {
		if got := CleanChapterString(in); got != want {
			t.Fatalf("CleanChapterString(%q) = %q, want %q", in, got, want)
		}
	}
}

// corpusFixture lays out a unit folder with a deck path and a vocabulary
// document, returning the deck path occurrences should reference.
func corpusFixture(t *testing.T, vocabLines ...string) string {
	root := t.TempDir()
	unitDir := filepath.Join(root, "Y4 Hist Autumn 1 Volcanoes")
	deckPath := filepath.Join(unitDir, "Y4 Autumn 1 Volcanoes Booklet", "Y4 Autumn 1 Volcanoes Booklet.pptx")
	writeDeckFixture(t, deckPath, "Volcanoes are openings in the crust.")
	writeVocabDoc(t, filepath.Join(unitDir, "vocab", "Volcanoes vocabulary.docx"), vocabLines...)
	return deckPath
}

func TestChapterRepairUsesReliableTitle(t *testing.T) {
	env := newTestEnv(t)
	deckPath := corpusFixture(t, "Chapter 1", "magma", "Chapter 2", "eruption")

	// magma already agrees with the vocabulary and carries a full title;
	// eruption sits in the wrong chapter.
	reliable := env.seed(t, seed{term: "magma", chapter: "1. Inside the Earth", slide: 2, source: deckPath})
	wrong := env.seed(t, seed{term: "eruption", chapter: "1. Inside the Earth", slide: 5, source: deckPath})
	alsoRight := env.seed(t, seed{term: "eruption", chapter: "2. When Volcanoes Erupt", slide: 9, source: deckPath})

	svc := NewChapterRepairService(env.db, env.occs, env.log)
	report, err := svc.Run(context.Background(), ChapterRepairOptions{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.NumbersRepaired != 1 {
		t.Fatalf("numbers repaired = %d, want 1", report.NumbersRepaired)
	}
	if report.Fallbacks != 0 {
		t.Fatalf("a reliable title exists, no fallback expected: %d", report.Fallbacks)
	}

	ctx := context.Background()
	repaired, err := env.occs.GetByID(ctx, nil, wrong.OccurrenceID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if repaired.Chapter == nil || *repaired.Chapter != "2. When Volcanoes Erupt" {
		t.Fatalf("wrong-chapter row must take the reliable title, got %v", repaired.Chapter)
	}
	for _, id := range []uint{reliable.OccurrenceID, alsoRight.OccurrenceID} {
		occ, err := env.occs.GetByID(ctx, nil, id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if occ.Chapter == nil || *occ.Chapter == "2" || *occ.Chapter == "1" {
			t.Fatalf("agreeing rows must keep their titles, got %v", occ.Chapter)
		}
	}
}

func TestChapterRepairFallsBackToBareNumber(t *testing.T) {
	env := newTestEnv(t)
	deckPath := corpusFixture(t, "Chapter 2", "eruption")

	// No occurrence anywhere in the unit carries a reliable chapter-2 title.
	occ := env.seed(t, seed{term: "eruption", chapter: "1. Inside the Earth", slide: 5, source: deckPath})

	svc := NewChapterRepairService(env.db, env.occs, env.log)
	report, err := svc.Run(context.Background(), ChapterRepairOptions{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Fallbacks != 1 {
		t.Fatalf("fallbacks = %d, want 1", report.Fallbacks)
	}

	got, err := env.occs.GetByID(context.Background(), nil, occ.OccurrenceID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Chapter == nil || *got.Chapter != "2" {
		t.Fatalf("chapter must fall back to the literal number string, got %v", got.Chapter)
	}
}

func TestChapterRepairIdempotent(t *testing.T) {
	env := newTestEnv(t)
	deckPath := corpusFixture(t, "Chapter 1", "magma", "Chapter 2", "eruption")

	env.seed(t, seed{term: "magma", chapter: "1. Inside the Earth\tPage 3", slide: 2, source: deckPath})
	env.seed(t, seed{term: "eruption", chapter: "1. Inside the Earth", slide: 5, source: deckPath})

	svc := NewChapterRepairService(env.db, env.occs, env.log)
	ctx := context.Background()
	if _, err := svc.Run(ctx, ChapterRepairOptions{}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := svc.Run(ctx, ChapterRepairOptions{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.StringsCleaned != 0 || second.NumbersRepaired != 0 {
		t.Fatalf("second run must be a no-op, got %+v", second)
	}
}

func TestChapterRepairLeavesChapterZeroAlone(t *testing.T) {
	env := newTestEnv(t)
	deckPath := corpusFixture(t, "empire", "Chapter 1", "magma")

	// empire is pre-heading vocabulary (chapter 0); the extractor's
	// attribution stands.
	occ := env.seed(t, seed{term: "empire", chapter: "1. Inside the Earth", slide: 1, source: deckPath})

	svc := NewChapterRepairService(env.db, env.occs, env.log)
	if _, err := svc.Run(context.Background(), ChapterRepairOptions{}); err != nil {
		t.Fatalf("run: %v", err)
	}

	got, err := env.occs.GetByID(context.Background(), nil, occ.OccurrenceID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Chapter == nil || *got.Chapter != "1. Inside the Earth" {
		t.Fatalf("chapter-0 vocabulary must never be rewritten, got %v", got.Chapter)
	}
}

func TestChapterRepairDryRunWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	deckPath := corpusFixture(t, "Chapter 2", "eruption")
	occ := env.seed(t, seed{term: "eruption", chapter: "1. Inside the Earth", slide: 5, source: deckPath})

	svc := NewChapterRepairService(env.db, env.occs, env.log)
	report, err := svc.Run(context.Background(), ChapterRepairOptions{DryRun: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.NumbersRepaired != 1 {
		t.Fatalf("dry run must still report intended changes, got %+v", report)
	}

	got, err := env.occs.GetByID(context.Background(), nil, occ.OccurrenceID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Chapter == nil || *got.Chapter != "1. Inside the Earth" {
		t.Fatalf("dry run must not persist changes, got %v", got.Chapter)
	}
}
