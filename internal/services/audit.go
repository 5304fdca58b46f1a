package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hepworth/owlmap/internal/domain"
	"github.com/hepworth/owlmap/internal/extract"
	"github.com/hepworth/owlmap/internal/ingestion/pptx"
	"github.com/hepworth/owlmap/internal/logger"
	"github.com/hepworth/owlmap/internal/match"
	"github.com/hepworth/owlmap/internal/repos"
	"github.com/hepworth/owlmap/internal/vocab"
)

// AuditRow is one issue in the term audit queue. The base fields are written
// by the audit pass; the enrichment fields are filled by the enrich pass and
// the Decision column by a human reviewer.
type AuditRow struct {
	IssueType    domain.IssueType
	Subject      string
	Year         int
	TermPeriod   string
	Unit         string
	Chapter      string
	Term         string
	Slide        *int
	Context      string
	ReviewReason string
	VocabSource  string
	Notes        string

	OccurrenceID    uint
	AppearsUnbolded bool
	UnboldedSlides  string // semicolon-joined slide numbers
	UnboldedContext string
	Decision        string
}

// AuditService drives the three-stage human-in-the-loop audit cycle:
// enumerate issues, enrich them with evidence, then apply reviewer decisions.
type AuditService struct {
	db       *gorm.DB
	concepts repos.ConceptRepo
	occs     repos.OccurrenceRepo
	log      *logger.Logger
}

func NewAuditService(db *gorm.DB, concepts repos.ConceptRepo, occs repos.OccurrenceRepo, baseLog *logger.Logger) *AuditService {
	return &AuditService{
		db:       db,
		concepts: concepts,
		occs:     occs,
		log:      baseLog.With("service", "AuditService"),
	}
}

// BuildQueue enumerates the unresolved issues: vocabulary terms missing from
// the store, rows marked potential noise, and rows marked high-priority
// review.
func (s *AuditService) BuildQueue(ctx context.Context) ([]AuditRow, error) {
	var queue []AuditRow

	units, err := s.occs.DistinctUnits(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, unit := range units {
		if unit.SourcePath == "" {
			continue
		}
		vocabPath := vocab.FindForDeck(unit.SourcePath)
		if vocabPath == "" {
			continue
		}
		list, err := vocab.Parse(vocabPath)
		if err != nil {
			s.log.Warn("vocabulary unreadable, skipping unit",
				"path", vocabPath, "error", err.Error())
			continue
		}
		rows, err := s.occs.GetByUnit(ctx, nil, unit.Subject, unit.Year, unit.Term, unit.Unit)
		if err != nil {
			return nil, err
		}
		stored := make([]string, 0, len(rows))
		for _, row := range rows {
			stored = append(stored, row.ConceptTerm)
		}
		matcher := match.NewMatcher(stored)

		for _, vt := range list.AllTerms {
			if len(stored) > 0 && matcher.Match(vt) != nil {
				continue
			}
			queue = append(queue, AuditRow{
				IssueType:   domain.IssueMissedFromExtraction,
				Subject:     unit.Subject,
				Year:        unit.Year,
				TermPeriod:  unit.Term,
				Unit:        unit.Unit,
				Chapter:     list.ChapterOf(vt),
				Term:        vt,
				VocabSource: vocabPath,
			})
		}
	}

	for _, issue := range []struct {
		status domain.ValidationStatus
		kind   domain.IssueType
	}{
		{domain.StatusPotentialNoise, domain.IssuePotentialNoise},
		{domain.StatusHighPriorityReview, domain.IssueHighPriorityReview},
	} {
		rows, _, err := s.occs.ListByStatuses(ctx, nil, []domain.ValidationStatus{issue.status}, repos.ListFilter{})
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			queue = append(queue, AuditRow{
				IssueType:    issue.kind,
				Subject:      row.Subject,
				Year:         row.Year,
				TermPeriod:   row.Term,
				Unit:         row.Unit,
				Chapter:      derefStr(row.Chapter),
				Term:         row.ConceptTerm,
				Slide:        row.SlideNumber,
				Context:      derefStr(row.TermInContext),
				ReviewReason: derefStr(row.ReviewReason),
				VocabSource:  derefStr(row.VocabSource),
				OccurrenceID: row.OccurrenceID,
			})
		}
	}

	s.log.Info("audit queue built", "issues", len(queue))
	return queue, nil
}

// Enrich augments each issue with supporting evidence: the occurrence id for
// store-backed rows, and an unbolded full-text search of the source deck for
// missed terms. add decisions are only valid where that search succeeded.
func (s *AuditService) Enrich(ctx context.Context, queue []AuditRow) ([]AuditRow, error) {
	deckCache := map[string]*pptx.Deck{}

	for i := range queue {
		row := &queue[i]
		switch row.IssueType {
		case domain.IssuePotentialNoise, domain.IssueHighPriorityReview:
			if row.OccurrenceID != 0 {
				continue
			}
			id, found, err := s.occs.FindID(ctx, nil, row.Subject, row.Year, row.TermPeriod, row.Unit, row.Term, row.Slide)
			if err != nil {
				return nil, err
			}
			if found {
				row.OccurrenceID = id
			}

		case domain.IssueMissedFromExtraction:
			deckPath, err := s.occs.SourcePathForUnit(ctx, nil, row.Subject, row.Year, row.TermPeriod, row.Unit)
			if err != nil {
				return nil, err
			}
			if deckPath == "" {
				continue
			}
			deck, ok := deckCache[deckPath]
			if !ok {
				deck, err = pptx.Read(deckPath)
				if err != nil {
					s.log.Warn("deck unreadable during enrichment",
						"path", deckPath, "error", err.Error())
					deckCache[deckPath] = nil
					continue
				}
				deckCache[deckPath] = deck
			}
			if deck == nil {
				continue
			}
			res := extract.SearchTerm(deck, row.Term)
			row.AppearsUnbolded = res.Found
			if res.Found {
				row.UnboldedSlides = joinSlides(res.Slides)
				row.UnboldedContext = res.FirstContext
			}
		}
	}
	return queue, nil
}

// ApplyReport summarises an apply pass over reviewer decisions.
type ApplyReport struct {
	Deleted        int   `json:"deleted"`
	Kept           int   `json:"kept"`
	Added          int   `json:"added"`
	Skipped        int   `json:"skipped"`
	Rejected       int   `json:"rejected"`
	OrphansDeleted int64 `json:"orphans_deleted"`
	Log            []AuditLogEntry
}

// AuditLogEntry is one line of the audit trail written by the apply pass.
type AuditLogEntry struct {
	Timestamp    string
	IssueType    domain.IssueType
	Decision     string
	Subject      string
	Year         int
	TermPeriod   string
	Unit         string
	Term         string
	OccurrenceID uint
	Result       string
	Notes        string
}

// Apply consumes reviewer-filled decisions. Every action is existence-checked
// first, so replaying the same decision set is safe: an already-deleted row
// applies as a no-op, an already-added term is not duplicated.
func (s *AuditService) Apply(ctx context.Context, queue []AuditRow, dryRun bool) (*ApplyReport, error) {
	runID := uuid.NewString()
	report := &ApplyReport{}

	err := runTx(ctx, s.db, dryRun, func(tx *gorm.DB) error {
		for _, row := range queue {
			entry := AuditLogEntry{
				Timestamp:    time.Now().UTC().Format(time.RFC3339),
				IssueType:    row.IssueType,
				Decision:     row.Decision,
				Subject:      row.Subject,
				Year:         row.Year,
				TermPeriod:   row.TermPeriod,
				Unit:         row.Unit,
				Term:         row.Term,
				OccurrenceID: row.OccurrenceID,
				Notes:        row.Notes,
			}
			entry.Result = s.applyRow(ctx, tx, row, report)
			report.Log = append(report.Log, entry)
		}

		orphans, err := s.concepts.CleanupOrphans(ctx, tx)
		if err != nil {
			return err
		}
		report.OrphansDeleted = orphans
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("audit decisions applied", "run_id", runID,
		"deleted", report.Deleted, "kept", report.Kept, "added", report.Added,
		"skipped", report.Skipped, "rejected", report.Rejected, "dry_run", dryRun)
	return report, nil
}

func (s *AuditService) applyRow(ctx context.Context, tx *gorm.DB, row AuditRow, report *ApplyReport) string {
	decision := strings.ToLower(strings.TrimSpace(row.Decision))
	switch domain.AuditDecision(decision) {
	case domain.DecisionDelete:
		if row.OccurrenceID == 0 {
			report.Rejected++
			return "rejected: delete requires an occurrence id"
		}
		deleted, err := s.occs.Delete(ctx, tx, row.OccurrenceID)
		if err != nil {
			report.Rejected++
			return "error: " + err.Error()
		}
		if !deleted {
			report.Skipped++
			return "already deleted"
		}
		report.Deleted++
		return "deleted"

	case domain.DecisionKeep:
		if row.OccurrenceID == 0 {
			report.Rejected++
			return "rejected: keep requires an occurrence id"
		}
		occ, err := s.occs.GetByID(ctx, tx, row.OccurrenceID)
		if err != nil {
			report.Rejected++
			return "error: " + err.Error()
		}
		if occ == nil {
			report.Skipped++
			return "occurrence no longer exists"
		}
		if err := s.occs.SetValidationStatus(ctx, tx, row.OccurrenceID, domain.StatusConfirmed); err != nil {
			report.Rejected++
			return "error: " + err.Error()
		}
		report.Kept++
		return "confirmed"

	case domain.DecisionAdd:
		// add is only permitted when enrichment actually found the term in
		// the deck's body text.
		if !row.AppearsUnbolded {
			report.Rejected++
			return "rejected: term was not found unbolded in source"
		}
		slide := firstSlide(row.UnboldedSlides)
		unit := repos.UnitKey{Subject: row.Subject, Year: row.Year, Term: row.TermPeriod, Unit: row.Unit}
		deckPath, err := s.occs.SourcePathForUnit(ctx, tx, unit.Subject, unit.Year, unit.Term, unit.Unit)
		if err != nil {
			report.Rejected++
			return "error: " + err.Error()
		}
		unit.SourcePath = deckPath

		cleanup := CleanupService{db: s.db, concepts: s.concepts, occs: s.occs, log: s.log}
		res := extract.SearchResult{Found: true, FirstSlide: slide, FirstContext: row.UnboldedContext}
		inserted, err := cleanup.insertRecovered(ctx, tx, unit, row.Term, res, row.VocabSource, domain.TierManualAdd)
		if err != nil {
			report.Rejected++
			return "error: " + err.Error()
		}
		if !inserted {
			report.Skipped++
			return "already exists"
		}
		report.Added++
		return "added"

	case domain.DecisionSkip:
		report.Skipped++
		return "skipped"
	}

	if decision == "" {
		report.Skipped++
		return "no decision"
	}
	report.Rejected++
	return fmt.Sprintf("rejected: unknown decision %q", decision)
}

func joinSlides(slides []int) string {
	parts := make([]string, len(slides))
	for i, s := range slides {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ";")
}

func firstSlide(joined string) int {
	parts := strings.SplitN(joined, ";", 2)
	n, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0
	}
	return n
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var auditHeader = []string{
	"issue_type", "subject", "year", "term_period", "unit", "chapter",
	"term", "slide", "context", "review_reason", "vocab_source", "notes",
}

var enrichedHeader = append(append([]string{}, auditHeader...),
	"occurrence_id", "appears_unbolded", "unbolded_slides", "unbolded_context", "decision")

var logHeader = []string{
	"timestamp", "issue_type", "decision", "subject", "year", "term_period",
	"unit", "term", "occurrence_id", "result", "notes",
}

// WriteQueueCSV writes the base audit queue for reviewers.
func WriteQueueCSV(path string, queue []AuditRow) error {
	return writeCSV(path, auditHeader, len(queue), func(i int) []string {
		return queue[i].baseRecord()
	})
}

// WriteEnrichedCSV writes the enriched queue, including the empty decision
// column reviewers fill in.
func WriteEnrichedCSV(path string, queue []AuditRow) error {
	return writeCSV(path, enrichedHeader, len(queue), func(i int) []string {
		row := queue[i]
		return append(row.baseRecord(),
			formatID(row.OccurrenceID),
			strconv.FormatBool(row.AppearsUnbolded),
			row.UnboldedSlides,
			row.UnboldedContext,
			row.Decision,
		)
	})
}

// WriteLogCSV writes the audit trail of an apply pass.
func WriteLogCSV(path string, entries []AuditLogEntry) error {
	return writeCSV(path, logHeader, len(entries), func(i int) []string {
		e := entries[i]
		return []string{
			e.Timestamp, string(e.IssueType), e.Decision, e.Subject,
			strconv.Itoa(e.Year), e.TermPeriod, e.Unit, e.Term,
			formatID(e.OccurrenceID), e.Result, e.Notes,
		}
	})
}

// ReadQueueCSV reads either the base or the enriched queue format; the
// enrichment columns are optional.
func ReadQueueCSV(path string) ([]AuditRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audit csv %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read audit csv %s: %w", path, err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var queue []AuditRow
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read audit csv %s: %w", path, err)
		}
		row := AuditRow{
			IssueType:       domain.IssueType(field(rec, "issue_type")),
			Subject:         field(rec, "subject"),
			TermPeriod:      field(rec, "term_period"),
			Unit:            field(rec, "unit"),
			Chapter:         field(rec, "chapter"),
			Term:            field(rec, "term"),
			Context:         field(rec, "context"),
			ReviewReason:    field(rec, "review_reason"),
			VocabSource:     field(rec, "vocab_source"),
			Notes:           field(rec, "notes"),
			UnboldedSlides:  field(rec, "unbolded_slides"),
			UnboldedContext: field(rec, "unbolded_context"),
			Decision:        field(rec, "decision"),
		}
		row.Year, _ = strconv.Atoi(field(rec, "year"))
		if v := field(rec, "slide"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				row.Slide = &n
			}
		}
		if v := field(rec, "occurrence_id"); v != "" {
			if n, err := strconv.ParseUint(v, 10, 64); err == nil {
				row.OccurrenceID = uint(n)
			}
		}
		row.AppearsUnbolded = strings.EqualFold(field(rec, "appears_unbolded"), "true")
		queue = append(queue, row)
	}
	return queue, nil
}

func (r AuditRow) baseRecord() []string {
	slide := ""
	if r.Slide != nil {
		slide = strconv.Itoa(*r.Slide)
	}
	return []string{
		string(r.IssueType), r.Subject, strconv.Itoa(r.Year), r.TermPeriod,
		r.Unit, r.Chapter, r.Term, slide, r.Context, r.ReviewReason,
		r.VocabSource, r.Notes,
	}
}

func formatID(id uint) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(id), 10)
}

func writeCSV(path string, header []string, n int, record func(i int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := w.Write(record(i)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
