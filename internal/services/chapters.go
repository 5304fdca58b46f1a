package services

import (
	"context"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/hepworth/owlmap/internal/logger"
	"github.com/hepworth/owlmap/internal/match"
	"github.com/hepworth/owlmap/internal/repos"
	"github.com/hepworth/owlmap/internal/vocab"
)

// ChapterRepairOptions controls the chapter reconciliation pass.
type ChapterRepairOptions struct {
	DryRun bool
}

// ChapterRepairReport summarises both repair passes.
type ChapterRepairReport struct {
	StringsCleaned  int `json:"strings_cleaned"`
	NumbersRepaired int `json:"numbers_repaired"`
	Fallbacks       int `json:"fallbacks"`
	UnitsProcessed  int `json:"units_processed"`
	UnitsWithoutDoc int `json:"units_without_doc"`
	UnitErrors      int `json:"unit_errors"`
}

// ChapterRepairService reconciles occurrence chapter labels in two passes:
// first strip table-of-contents artifacts from the strings, then align each
// occurrence's chapter number with the vocabulary document, preferring a
// full title learned from occurrences that already agree.
type ChapterRepairService struct {
	db   *gorm.DB
	occs repos.OccurrenceRepo
	log  *logger.Logger
}

func NewChapterRepairService(db *gorm.DB, occs repos.OccurrenceRepo, baseLog *logger.Logger) *ChapterRepairService {
	return &ChapterRepairService{db: db, occs: occs, log: baseLog.With("service", "ChapterRepairService")}
}

var (
	pageSuffixRe    = regexp.MustCompile(`\s*Page\s+\d+\s*$`)
	chapterPrefixRe = regexp.MustCompile(`^(\d+)\.?`)
	numberedTitleRe = regexp.MustCompile(`^\d+\.`)
)

// CleanChapterString strips trailing tab characters and "Page N" suffixes
// left over from table-of-contents slides. A string that would become empty
// reverts to the original — never turn a non-empty chapter into nothing.
func CleanChapterString(chapter string) string {
	cleaned := strings.TrimRight(chapter, "\t ")
	cleaned = pageSuffixRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimRight(cleaned, "\t ")
	if cleaned == "" {
		return chapter
	}
	return cleaned
}

// chapterNumberPrefix parses the leading integer of a chapter label, "" when
// the label has none.
func chapterNumberPrefix(chapter string) string {
	if m := chapterPrefixRe.FindStringSubmatch(strings.TrimSpace(chapter)); m != nil {
		return m[1]
	}
	return ""
}

func (s *ChapterRepairService) Run(ctx context.Context, opts ChapterRepairOptions) (*ChapterRepairReport, error) {
	report := &ChapterRepairReport{}
	err := runTx(ctx, s.db, opts.DryRun, func(tx *gorm.DB) error {
		units, err := s.occs.DistinctUnits(ctx, tx)
		if err != nil {
			return err
		}
		for _, unit := range units {
			if err := s.repairUnit(ctx, tx, unit, report); err != nil {
				report.UnitErrors++
				s.log.Warn("unit chapter repair failed",
					"subject", unit.Subject, "year", unit.Year,
					"term", unit.Term, "unit", unit.Unit, "error", err.Error())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("chapter repair finished",
		"strings_cleaned", report.StringsCleaned,
		"numbers_repaired", report.NumbersRepaired,
		"fallbacks", report.Fallbacks, "dry_run", opts.DryRun)
	return report, nil
}

func (s *ChapterRepairService) repairUnit(ctx context.Context, tx *gorm.DB, unit repos.UnitKey, report *ChapterRepairReport) error {
	rows, err := s.occs.GetByUnit(ctx, tx, unit.Subject, unit.Year, unit.Term, unit.Unit)
	if err != nil {
		return err
	}

	// Pass 1: string cleaning applies even to units without a vocabulary
	// document.
	for i, row := range rows {
		if row.Chapter == nil {
			continue
		}
		cleaned := CleanChapterString(*row.Chapter)
		if cleaned == *row.Chapter {
			continue
		}
		if err := s.occs.UpdateChapter(ctx, tx, row.OccurrenceID, cleaned); err != nil {
			return err
		}
		rows[i].Chapter = &cleaned
		report.StringsCleaned++
	}

	// Pass 2 needs the unit's vocabulary document.
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

	vocabChapterOf := map[string]string{}
	for chapter, terms := range list.Chapters {
		for _, t := range terms {
			vocabChapterOf[match.Normalise(t)] = chapter
		}
	}

	// Reliable occurrences — chapter prefix already agrees with the
	// vocabulary — teach us the full title for each chapter number. Only a
	// label that literally starts "N." qualifies as a title source; a bare
	// number carries no title information.
	titleOf := map[string]string{}
	for _, row := range rows {
		vocabCh, ok := vocabChapterOf[match.Normalise(row.ConceptTerm)]
		if !ok || vocabCh == "0" || row.Chapter == nil {
			continue
		}
		if chapterNumberPrefix(*row.Chapter) != vocabCh {
			continue
		}
		if _, seen := titleOf[vocabCh]; !seen && numberedTitleRe.MatchString(strings.TrimSpace(*row.Chapter)) {
			titleOf[vocabCh] = strings.TrimSpace(*row.Chapter)
		}
	}

	for _, row := range rows {
		vocabCh, ok := vocabChapterOf[match.Normalise(row.ConceptTerm)]
		if !ok {
			continue
		}
		// Chapter "0" terms precede any heading in the vocabulary document;
		// the extractor's attribution is more informative, leave it alone.
		if vocabCh == "0" {
			continue
		}
		current := ""
		if row.Chapter != nil {
			current = *row.Chapter
		}
		if chapterNumberPrefix(current) == vocabCh {
			continue
		}

		newChapter, haveTitle := titleOf[vocabCh]
		if !haveTitle {
			newChapter = vocabCh
			report.Fallbacks++
			s.log.Warn("no reliable title for chapter, falling back to bare number",
				"chapter", vocabCh, "term", row.ConceptTerm, "unit", unit.Unit)
		}
		if err := s.occs.UpdateChapter(ctx, tx, row.OccurrenceID, newChapter); err != nil {
			return err
		}
		report.NumbersRepaired++
	}
	return nil
}
