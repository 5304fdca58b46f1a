package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hepworth/owlmap/internal/domain"
)

func TestCleanupDeletesNoiseAndPromotesFlags(t *testing.T) {
	env := newTestEnv(t)
	confirmed := env.seed(t, seed{term: "magma", slide: 2, status: domain.StatusConfirmed})
	flagged := env.seed(t, seed{term: "lava", slide: 3, status: domain.StatusConfirmedWithFlag})
	env.seed(t, seed{term: "Task", slide: 4, status: domain.StatusPotentialNoise})
	env.seed(t, seed{term: "WOW", slide: 5, status: domain.StatusHighPriorityReview})

	svc := NewCleanupService(env.db, env.concepts, env.occs, env.log)
	report, err := svc.Run(context.Background(), CleanupOptions{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.NoiseDeleted != 2 {
		t.Fatalf("noise deleted = %d, want 2", report.NoiseDeleted)
	}
	if report.OrphansDeleted != 2 {
		t.Fatalf("orphans deleted = %d, want 2", report.OrphansDeleted)
	}
	if report.FlagsPromoted != 1 {
		t.Fatalf("flags promoted = %d, want 1", report.FlagsPromoted)
	}

	ctx := context.Background()
	for _, id := range []uint{confirmed.OccurrenceID, flagged.OccurrenceID} {
		occ, err := env.occs.GetByID(ctx, nil, id)
		if err != nil || occ == nil {
			t.Fatalf("confirmed rows must survive: %v %v", occ, err)
		}
		if *occ.ValidationStatus != domain.StatusConfirmed {
			t.Fatalf("status = %v, want confirmed", *occ.ValidationStatus)
		}
	}
}

func TestCleanupSkipPromote(t *testing.T) {
	env := newTestEnv(t)
	flagged := env.seed(t, seed{term: "lava", slide: 3, status: domain.StatusConfirmedWithFlag})

	svc := NewCleanupService(env.db, env.concepts, env.occs, env.log)
	report, err := svc.Run(context.Background(), CleanupOptions{SkipPromote: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.FlagsPromoted != 0 {
		t.Fatalf("skip-promote must leave flagged rows, got %d", report.FlagsPromoted)
	}

	occ, err := env.occs.GetByID(context.Background(), nil, flagged.OccurrenceID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *occ.ValidationStatus != domain.StatusConfirmedWithFlag {
		t.Fatalf("status = %v, want confirmed_with_flag", *occ.ValidationStatus)
	}
}

func TestCleanupRecoversMissedTerms(t *testing.T) {
	env := newTestEnv(t)
	root := t.TempDir()
	unitDir := filepath.Join(root, "Y4 Hist Autumn 1 Volcanoes")
	deckPath := filepath.Join(unitDir, "Y4 Autumn 1 Volcanoes Booklet", "Y4 Autumn 1 Volcanoes Booklet.pptx")
	writeDeckFixture(t, deckPath,
		"Magma rises through the crust.",
		"The eruption buried the town in ash.",
	)
	writeVocabDoc(t, filepath.Join(unitDir, "vocab", "Volcanoes vocabulary.docx"),
		"Chapter 1", "magma", "eruption", "tectonic plate")

	env.seed(t, seed{term: "magma", slide: 1, status: domain.StatusConfirmed, source: deckPath})

	svc := NewCleanupService(env.db, env.concepts, env.occs, env.log)
	report, err := svc.Run(context.Background(), CleanupOptions{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// eruption appears in the deck text; tectonic plate does not.
	if report.TermsRecovered != 1 {
		t.Fatalf("terms recovered = %d, want 1", report.TermsRecovered)
	}
	if report.TermsNotInDeck != 1 {
		t.Fatalf("terms not in deck = %d, want 1", report.TermsNotInDeck)
	}

	ctx := context.Background()
	concept, err := env.concepts.GetByTerm(ctx, nil, "eruption")
	if err != nil || concept == nil {
		t.Fatalf("recovered concept missing: %v %v", concept, err)
	}
	occs, err := env.occs.GetByConceptOrdered(ctx, nil, concept.ConceptID)
	if err != nil || len(occs) != 1 {
		t.Fatalf("expected 1 recovered occurrence, got %v %v", occs, err)
	}
	occ := occs[0]
	if occ.IsIntroduction {
		t.Fatal("recovered occurrences are never introductions")
	}
	if *occ.ValidationStatus != domain.StatusConfirmed || *occ.VocabMatchType != domain.TierVocabRecovery {
		t.Fatalf("recovered row has wrong validation fields: %+v", occ)
	}

	// Idempotence: a second run recovers nothing new.
	second, err := svc.Run(ctx, CleanupOptions{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.TermsRecovered != 0 || second.NoiseDeleted != 0 || second.FlagsPromoted != 0 {
		t.Fatalf("second run must be a no-op, got %+v", second)
	}
}

func TestCleanupDryRunRollsBack(t *testing.T) {
	env := newTestEnv(t)
	noise := env.seed(t, seed{term: "Task", slide: 4, status: domain.StatusPotentialNoise})

	svc := NewCleanupService(env.db, env.concepts, env.occs, env.log)
	report, err := svc.Run(context.Background(), CleanupOptions{DryRun: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.NoiseDeleted != 1 {
		t.Fatalf("dry run must report intended deletions, got %+v", report)
	}

	occ, err := env.occs.GetByID(context.Background(), nil, noise.OccurrenceID)
	if err != nil || occ == nil {
		t.Fatalf("dry run must not delete anything: %v %v", occ, err)
	}
}
