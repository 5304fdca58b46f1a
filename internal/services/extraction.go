package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gorm.io/gorm"

	"github.com/hepworth/owlmap/internal/domain"
	"github.com/hepworth/owlmap/internal/extract"
	"github.com/hepworth/owlmap/internal/logger"
	"github.com/hepworth/owlmap/internal/repos"
	"github.com/hepworth/owlmap/internal/validate"
	"github.com/hepworth/owlmap/internal/vocab"
)

// ExtractionOptions controls one batch extraction run over the corpus.
type ExtractionOptions struct {
	Root    string
	Subject string // optional subject filter
	Year    int    // optional year filter
	// Resume skips decks whose source path already has occurrences in the
	// store, the only checkpointing the pipeline does.
	Resume    bool
	DryRun    bool
	OutputDir string // when set, per-deck term CSVs are written here
}

// DeckReport is the per-deck outcome of a batch run. A non-empty Error means
// the deck was skipped; the batch continues.
type DeckReport struct {
	Path        string `json:"path"`
	Subject     string `json:"subject,omitempty"`
	Year        int    `json:"year,omitempty"`
	Term        string `json:"term,omitempty"`
	Unit        string `json:"unit,omitempty"`
	Slides      int    `json:"slides"`
	Extracted   int    `json:"extracted"`
	Inserted    int    `json:"inserted"`
	Duplicates  int    `json:"duplicates"`
	VocabSource string `json:"vocab_source,omitempty"`
	MissedTerms int    `json:"missed_terms"`
	Error       string `json:"error,omitempty"`
}

// ExtractionReport summarises a batch run.
type ExtractionReport struct {
	Decks       []DeckReport `json:"decks"`
	Processed   int          `json:"processed"`
	Skipped     int          `json:"skipped"`
	Failed      int          `json:"failed"`
	Inserted    int          `json:"inserted"`
	SuccessRate float64      `json:"success_rate"`
}

type ExtractionService struct {
	db       *gorm.DB
	concepts repos.ConceptRepo
	occs     repos.OccurrenceRepo
	log      *logger.Logger
}

func NewExtractionService(db *gorm.DB, concepts repos.ConceptRepo, occs repos.OccurrenceRepo, baseLog *logger.Logger) *ExtractionService {
	return &ExtractionService{
		db:       db,
		concepts: concepts,
		occs:     occs,
		log:      baseLog.With("service", "ExtractionService"),
	}
}

// Run discovers booklet decks under the corpus root, extracts their bold
// terms, validates them against each unit's vocabulary document when one
// exists, and persists the resulting occurrences. Per-deck failures are
// recorded and never abort the batch.
func (s *ExtractionService) Run(ctx context.Context, opts ExtractionOptions) (*ExtractionReport, error) {
	decks, err := extract.DiscoverDecks(opts.Root, opts.Subject, opts.Year)
	if err != nil {
		return nil, err
	}
	s.log.Info("discovered decks", "count", len(decks), "root", opts.Root)

	report := &ExtractionReport{}
	err = runTx(ctx, s.db, opts.DryRun, func(tx *gorm.DB) error {
		done := map[string]bool{}
		if opts.Resume {
			paths, err := s.occs.DistinctSourcePaths(ctx, tx)
			if err != nil {
				return err
			}
			for _, p := range paths {
				done[p] = true
			}
		}

		for _, deckPath := range decks {
			if done[deckPath] {
				report.Skipped++
				s.log.Info("already extracted, skipping", "path", deckPath)
				continue
			}
			dr := s.processDeck(ctx, tx, deckPath, opts)
			report.Decks = append(report.Decks, dr)
			if dr.Error != "" {
				report.Failed++
				s.log.Warn("deck failed", "path", deckPath, "error", dr.Error)
				continue
			}
			report.Processed++
			report.Inserted += dr.Inserted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if attempted := report.Processed + report.Failed; attempted > 0 {
		report.SuccessRate = float64(report.Processed) / float64(attempted)
	}

	s.log.Info("extraction finished",
		"processed", report.Processed, "skipped", report.Skipped,
		"failed", report.Failed, "inserted", report.Inserted,
		"success_rate", report.SuccessRate,
		"dry_run", opts.DryRun)
	return report, nil
}

func (s *ExtractionService) processDeck(ctx context.Context, tx *gorm.DB, deckPath string, opts ExtractionOptions) DeckReport {
	dr := DeckReport{Path: deckPath}

	md, err := extract.ParsePathMetadata(deckPath)
	if err != nil {
		dr.Error = err.Error()
		return dr
	}
	dr.Subject, dr.Year, dr.Term, dr.Unit = md.Subject, md.Year, md.Term, md.Unit

	res := extract.Extract(deckPath)
	if res.Error != "" {
		dr.Error = res.Error
		return dr
	}
	dr.Slides = res.TotalSlides
	dr.Extracted = len(res.Terms)

	// Validation is optional: a unit without a vocabulary document still
	// gets its occurrences, just with no status.
	var batch *validate.Batch
	vocabPath := vocab.FindForDeck(deckPath)
	if vocabPath != "" {
		list, err := vocab.Parse(vocabPath)
		if err != nil {
			s.log.Warn("vocabulary unreadable, extracting without validation",
				"path", vocabPath, "error", err.Error())
		} else {
			batch = validate.Validate(res.Terms, list)
			dr.VocabSource = filepath.Base(vocabPath)
			dr.MissedTerms = len(batch.MissedTerms)
		}
	}

	for i, t := range res.Terms {
		occ := domain.Occurrence{
			Subject:       md.Subject,
			Year:          md.Year,
			Term:          md.Term,
			Unit:          md.Unit,
			Chapter:       strPtr(t.Chapter),
			SlideNumber:   intPtr(t.Slide),
			TermInContext: strPtr(t.Context),
			SourcePath:    strPtr(deckPath),
			NeedsReview:   t.Flagged,
			ReviewReason:  strPtr(t.Reason),
		}
		if batch != nil {
			v := batch.Verdicts[i]
			occ.ValidationStatus = &v.Status
			occ.VocabConfidence = &v.Confidence
			occ.VocabMatchType = &v.Tier
			occ.VocabSource = strPtr(dr.VocabSource)
		}

		concept, created, err := s.concepts.GetOrCreate(ctx, tx, t.Term, strPtr(md.Subject))
		if err != nil {
			dr.Error = fmt.Sprintf("term %q: %v", t.Term, err)
			return dr
		}
		occ.ConceptID = concept.ConceptID
		// A concept's first ever appearance is its formal introduction;
		// every later bold appearance is a recurrence.
		occ.IsIntroduction = created

		exists, err := s.occs.ExistsAt(ctx, tx, concept.ConceptID, md.Subject, md.Year, md.Term, md.Unit, occ.SlideNumber)
		if err != nil {
			dr.Error = fmt.Sprintf("term %q: %v", t.Term, err)
			return dr
		}
		if exists {
			dr.Duplicates++
			continue
		}
		if err := s.occs.Create(ctx, tx, &occ); err != nil {
			dr.Error = fmt.Sprintf("term %q: %v", t.Term, err)
			return dr
		}
		dr.Inserted++
	}

	if opts.OutputDir != "" && !opts.DryRun {
		if err := writeDeckCSV(opts.OutputDir, md, res.Terms); err != nil {
			s.log.Warn("deck export failed", "path", deckPath, "error", err.Error())
		}
	}
	return dr
}

// writeDeckCSV dumps one deck's extracted terms for manual spot checks.
func writeDeckCSV(dir string, md extract.Metadata, terms []extract.Term) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("Y%d %s %s terms.csv", md.Year, md.Term, md.Unit)
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"term", "slide", "chapter", "context", "flagged", "reason"}); err != nil {
		return err
	}
	for _, t := range terms {
		rec := []string{t.Term, strconv.Itoa(t.Slide), t.Chapter, t.Context, strconv.FormatBool(t.Flagged), t.Reason}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
