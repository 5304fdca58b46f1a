package repos

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hepworth/owlmap/internal/domain"
	"github.com/hepworth/owlmap/internal/logger"
)

func newTestDB(t *testing.T) (*gorm.DB, *logger.Logger) {
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
	return gdb, log
}

func seedOccurrence(t *testing.T, gdb *gorm.DB, log *logger.Logger, term string, slide int) *domain.Occurrence {
	t.Helper()
	ctx := context.Background()
	concepts := NewConceptRepo(gdb, log)
	occs := NewOccurrenceRepo(gdb, log)

	concept, _, err := concepts.GetOrCreate(ctx, nil, term, nil)
	if err != nil {
		t.Fatalf("get or create concept: %v", err)
	}
	occ := &domain.Occurrence{
		ConceptID:   concept.ConceptID,
		Subject:     "History",
		Year:        4,
		Term:        "Autumn1",
		Unit:        "Volcanoes",
		SlideNumber: &slide,
	}
	if err := occs.Create(ctx, nil, occ); err != nil {
		t.Fatalf("create occurrence: %v", err)
	}
	return occ
}

func TestEdgeUpsertIdempotent(t *testing.T) {
	gdb, log := newTestDB(t)
	ctx := context.Background()
	edges := NewEdgeRepo(gdb, log)

	from := seedOccurrence(t, gdb, log, "empire", 2)
	to := seedOccurrence(t, gdb, log, "empire", 9)

	first := &domain.Edge{
		FromOccurrence: from.OccurrenceID,
		ToOccurrence:   to.OccurrenceID,
		EdgeType:       domain.EdgeWithinSubject,
		EdgeNature:     domain.NatureReinforcement,
		ConfirmedBy:    "reviewer",
		ConfirmedDate:  "2026-08-01",
	}
	action, err := edges.Upsert(ctx, nil, first)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if action != EdgeInserted {
		t.Fatalf("first upsert action = %v, want inserted", action)
	}

	second := &domain.Edge{
		FromOccurrence: from.OccurrenceID,
		ToOccurrence:   to.OccurrenceID,
		EdgeType:       domain.EdgeWithinSubject,
		EdgeNature:     domain.NatureExtension,
		ConfirmedBy:    "second reviewer",
		ConfirmedDate:  "2026-08-02",
	}
	action, err = edges.Upsert(ctx, nil, second)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if action != EdgeUpdated {
		t.Fatalf("second upsert action = %v, want updated", action)
	}

	n, err := edges.Count(ctx, nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("re-confirming the same pair must never create a second row, got %d", n)
	}

	stored, err := edges.GetByPair(ctx, nil, from.OccurrenceID, to.OccurrenceID)
	if err != nil {
		t.Fatalf("get by pair: %v", err)
	}
	if stored.EdgeNature != domain.NatureExtension || stored.ConfirmedBy != "second reviewer" {
		t.Fatalf("stored edge must reflect the second confirmation: %+v", stored)
	}
}

func TestConceptGetOrCreate(t *testing.T) {
	gdb, log := newTestDB(t)
	ctx := context.Background()
	concepts := NewConceptRepo(gdb, log)

	first, created, err := concepts.GetOrCreate(ctx, nil, "Vesuvius", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created {
		t.Fatal("first call must create")
	}
	second, created, err := concepts.GetOrCreate(ctx, nil, "Vesuvius", nil)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if created || second.ConceptID != first.ConceptID {
		t.Fatalf("second call must return the existing concept: %+v", second)
	}
}

func TestConceptCleanupOrphans(t *testing.T) {
	gdb, log := newTestDB(t)
	ctx := context.Background()
	concepts := NewConceptRepo(gdb, log)
	occs := NewOccurrenceRepo(gdb, log)

	kept := seedOccurrence(t, gdb, log, "empire", 2)
	orphaned := seedOccurrence(t, gdb, log, "stray", 5)

	if _, err := occs.Delete(ctx, nil, orphaned.OccurrenceID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	deleted, err := concepts.CleanupOrphans(ctx, nil)
	if err != nil {
		t.Fatalf("cleanup orphans: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("orphans deleted = %d, want 1", deleted)
	}

	remaining, err := concepts.GetByID(ctx, nil, kept.ConceptID)
	if err != nil || remaining == nil {
		t.Fatalf("concept with occurrences must survive: %v %v", remaining, err)
	}
}
