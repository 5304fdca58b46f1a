package services

import (
	"context"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"github.com/hepworth/owlmap/internal/domain"
	"github.com/hepworth/owlmap/internal/extract"
	"github.com/hepworth/owlmap/internal/ingestion/pptx"
	"github.com/hepworth/owlmap/internal/logger"
	"github.com/hepworth/owlmap/internal/match"
	"github.com/hepworth/owlmap/internal/repos"
	"github.com/hepworth/owlmap/internal/vocab"
)

// CleanupOptions controls the vocabulary-first cleanup pass.
type CleanupOptions struct {
	DryRun bool
	// SkipPromote leaves confirmed-with-flag rows untouched for manual
	// triage instead of promoting them to confirmed.
	SkipPromote bool
}

// CleanupReport summarises the four cleanup steps.
type CleanupReport struct {
	NoiseDeleted    int64 `json:"noise_deleted"`
	OrphansDeleted  int64 `json:"orphans_deleted"`
	FlagsPromoted   int64 `json:"flags_promoted"`
	ChaptersFilled  int   `json:"chapters_filled"`
	TermsRecovered  int   `json:"terms_recovered"`
	TermsNotInDeck  int   `json:"terms_not_in_deck"`
	UnitsProcessed  int   `json:"units_processed"`
	UnitsWithoutDoc int   `json:"units_without_doc"`
	UnitErrors      int   `json:"unit_errors"`
}

// CleanupService runs the vocabulary-first cleanup: delete noise, promote
// flagged confirmations, fill missing chapters from the vocabulary document,
// and recover vocabulary terms the bold extraction missed.
type CleanupService struct {
	db       *gorm.DB
	concepts repos.ConceptRepo
	occs     repos.OccurrenceRepo
	log      *logger.Logger
}

func NewCleanupService(db *gorm.DB, concepts repos.ConceptRepo, occs repos.OccurrenceRepo, baseLog *logger.Logger) *CleanupService {
	return &CleanupService{
		db:       db,
		concepts: concepts,
		occs:     occs,
		log:      baseLog.With("service", "CleanupService"),
	}
}

func (s *CleanupService) Run(ctx context.Context, opts CleanupOptions) (*CleanupReport, error) {
	report := &CleanupReport{}
	err := runTx(ctx, s.db, opts.DryRun, func(tx *gorm.DB) error {
		// Step 1: vocabulary membership is authoritative — rows that failed
		// validation are noise, and concepts they orphan go with them.
		deleted, err := s.occs.DeleteByStatuses(ctx, tx, []domain.ValidationStatus{
			domain.StatusPotentialNoise, domain.StatusHighPriorityReview,
		})
		if err != nil {
			return err
		}
		report.NoiseDeleted = deleted

		orphans, err := s.concepts.CleanupOrphans(ctx, tx)
		if err != nil {
			return err
		}
		report.OrphansDeleted = orphans

		// Step 2: a flagged term that is in the vocabulary is still a real
		// term; the flag was an extractor-level doubt.
		if !opts.SkipPromote {
			promoted, err := s.occs.PromoteStatus(ctx, tx, domain.StatusConfirmedWithFlag, domain.StatusConfirmed)
			if err != nil {
				return err
			}
			report.FlagsPromoted = promoted
		}

		// Steps 3 and 4 work unit by unit against the vocabulary document.
		units, err := s.occs.DistinctUnits(ctx, tx)
		if err != nil {
			return err
		}
		for _, unit := range units {
			if err := s.processUnit(ctx, tx, unit, report); err != nil {
				report.UnitErrors++
				s.log.Warn("unit cleanup failed",
					"subject", unit.Subject, "year", unit.Year,
					"term", unit.Term, "unit", unit.Unit, "error", err.Error())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("cleanup finished",
		"noise_deleted", report.NoiseDeleted, "orphans_deleted", report.OrphansDeleted,
		"flags_promoted", report.FlagsPromoted, "chapters_filled", report.ChaptersFilled,
		"recovered", report.TermsRecovered, "dry_run", opts.DryRun)
	return report, nil
}

func (s *CleanupService) processUnit(ctx context.Context, tx *gorm.DB, unit repos.UnitKey, report *CleanupReport) error {
	if unit.SourcePath == "" {
		report.UnitsWithoutDoc++
		return nil
	}
	vocabPath := vocab.FindForDeck(unit.SourcePath)
	if vocabPath == "" {
		report.UnitsWithoutDoc++
		return nil
	}
	list, err := vocab.Parse(vocabPath)
	if err != nil {
		return err
	}
	report.UnitsProcessed++

	rows, err := s.occs.GetByUnit(ctx, tx, unit.Subject, unit.Year, unit.Term, unit.Unit)
	if err != nil {
		return err
	}

	// Step 3: occurrences with no chapter inherit the vocabulary chapter
	// number of their term; the chapter-repair pass upgrades bare numbers to
	// full titles later.
	chapterOf := map[string]string{}
	for chapter, terms := range list.Chapters {
		for _, t := range terms {
			chapterOf[match.Normalise(t)] = chapter
		}
	}
	for _, row := range rows {
		if row.Chapter != nil && strings.TrimSpace(*row.Chapter) != "" {
			continue
		}
		ch, ok := chapterOf[match.Normalise(row.ConceptTerm)]
		if !ok || ch == "0" {
			continue
		}
		if err := s.occs.UpdateChapter(ctx, tx, row.OccurrenceID, ch); err != nil {
			return err
		}
		report.ChaptersFilled++
	}

	// Step 4: recover vocabulary terms absent from the store. Matching uses
	// the full tiered matcher so near-duplicate spellings already stored do
	// not spawn a second concept.
	stored := make([]string, 0, len(rows))
	for _, row := range rows {
		stored = append(stored, row.ConceptTerm)
	}
	storedMatcher := match.NewMatcher(stored)

	var deck *pptx.Deck
	for _, vt := range list.AllTerms {
		if len(stored) > 0 && storedMatcher.Match(vt) != nil {
			continue
		}
		if deck == nil {
			deck, err = pptx.Read(unit.SourcePath)
			if err != nil {
				return err
			}
		}
		res := extract.SearchTerm(deck, vt)
		if !res.Found {
			report.TermsNotInDeck++
			s.log.Info("supplementary vocabulary, not in deck",
				"term", vt, "unit", unit.Unit)
			continue
		}
		inserted, err := s.insertRecovered(ctx, tx, unit, vt, res, vocabPath, domain.TierVocabRecovery)
		if err != nil {
			return err
		}
		if inserted {
			report.TermsRecovered++
		}
	}
	return nil
}

// insertRecovered adds an occurrence for a vocabulary term found unbolded in
// the deck. The existence check keeps repeated runs idempotent.
func (s *CleanupService) insertRecovered(ctx context.Context, tx *gorm.DB, unit repos.UnitKey, term string, res extract.SearchResult, vocabPath string, tier domain.MatchTier) (bool, error) {
	concept, _, err := s.concepts.GetOrCreate(ctx, tx, term, strPtr(unit.Subject))
	if err != nil {
		return false, err
	}
	slide := intPtr(res.FirstSlide)
	exists, err := s.occs.ExistsAt(ctx, tx, concept.ConceptID, unit.Subject, unit.Year, unit.Term, unit.Unit, slide)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	status := domain.StatusConfirmed
	confidence := 1.0
	occ := domain.Occurrence{
		ConceptID:   concept.ConceptID,
		Subject:     unit.Subject,
		Year:        unit.Year,
		Term:        unit.Term,
		Unit:        unit.Unit,
		SlideNumber: slide,
		// Not a bolded introduction — the term was only present in body text.
		IsIntroduction:   false,
		TermInContext:    strPtr(res.FirstContext),
		SourcePath:       strPtr(unit.SourcePath),
		ValidationStatus: &status,
		VocabConfidence:  &confidence,
		VocabMatchType:   &tier,
		VocabSource:      strPtr(filepath.Base(vocabPath)),
	}
	if err := s.occs.Create(ctx, tx, &occ); err != nil {
		return false, err
	}
	return true, nil
}
