package services

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/hepworth/owlmap/internal/domain"
	"github.com/hepworth/owlmap/internal/logger"
	"github.com/hepworth/owlmap/internal/repos"
)

// reviewStatuses are the validation statuses that put a row in the review
// queue.
var reviewStatuses = []domain.ValidationStatus{
	domain.StatusPotentialNoise,
	domain.StatusHighPriorityReview,
}

// FilterOptions are the distinct values the UI offers as filters.
type FilterOptions struct {
	Subjects []string `json:"subjects"`
	Years    []int    `json:"years"`
	Terms    []string `json:"terms"`
}

// QueuePage is one page of the review queue or corpus browse.
type QueuePage struct {
	Rows   []repos.OccurrenceRow `json:"rows"`
	Total  int64                 `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// ReviewStats summarises the state of the review backlog.
type ReviewStats struct {
	TotalOccurrences int64                             `json:"total_occurrences"`
	TotalConcepts    int64                             `json:"total_concepts"`
	ByStatus         map[domain.ValidationStatus]int64 `json:"by_status"`
	PendingDecisions int                               `json:"pending_decisions"`
	QueueLength      int64                             `json:"queue_length"`
}

// TermDetail is everything the UI shows for one occurrence.
type TermDetail struct {
	Occurrence         repos.OccurrenceRow `json:"occurrence"`
	ConceptOccurrences []domain.Occurrence `json:"concept_occurrences"`
	Edges              []domain.Edge       `json:"edges"`
}

// ReviewService is the query and decision surface consumed by the review UI.
type ReviewService struct {
	db       *gorm.DB
	concepts repos.ConceptRepo
	occs     repos.OccurrenceRepo
	edges    repos.EdgeRepo
	log      *logger.Logger
}

func NewReviewService(db *gorm.DB, concepts repos.ConceptRepo, occs repos.OccurrenceRepo, edges repos.EdgeRepo, baseLog *logger.Logger) *ReviewService {
	return &ReviewService{
		db:       db,
		concepts: concepts,
		occs:     occs,
		edges:    edges,
		log:      baseLog.With("service", "ReviewService"),
	}
}

func (s *ReviewService) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	units, err := s.occs.DistinctUnits(ctx, nil)
	if err != nil {
		return nil, err
	}
	subjectSet := map[string]bool{}
	yearSet := map[int]bool{}
	termSet := map[string]bool{}
	for _, u := range units {
		subjectSet[u.Subject] = true
		yearSet[u.Year] = true
		termSet[u.Term] = true
	}

	opts := &FilterOptions{}
	for subject := range subjectSet {
		opts.Subjects = append(opts.Subjects, subject)
	}
	for y := range yearSet {
		opts.Years = append(opts.Years, y)
	}
	for t := range termSet {
		opts.Terms = append(opts.Terms, t)
	}
	sort.Strings(opts.Subjects)
	sort.Ints(opts.Years)
	sort.Slice(opts.Terms, func(i, j int) bool {
		return domain.TermOrdinal(opts.Terms[i]) < domain.TermOrdinal(opts.Terms[j])
	})
	return opts, nil
}

// Queue pages through occurrences awaiting review, in curriculum order.
func (s *ReviewService) Queue(ctx context.Context, f repos.ListFilter) (*QueuePage, error) {
	rows, total, err := s.occs.ListByStatuses(ctx, nil, reviewStatuses, f)
	if err != nil {
		return nil, err
	}
	return &QueuePage{Rows: rows, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

// Browse pages through the whole corpus.
func (s *ReviewService) Browse(ctx context.Context, f repos.ListFilter) (*QueuePage, error) {
	rows, total, err := s.occs.ListAll(ctx, nil, f)
	if err != nil {
		return nil, err
	}
	return &QueuePage{Rows: rows, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func (s *ReviewService) Stats(ctx context.Context) (*ReviewStats, error) {
	stats := &ReviewStats{ByStatus: map[domain.ValidationStatus]int64{}}

	var err error
	if stats.TotalConcepts, err = s.concepts.Count(ctx, nil); err != nil {
		return nil, err
	}
	all := []domain.ValidationStatus{
		domain.StatusConfirmed, domain.StatusConfirmedWithFlag,
		domain.StatusPotentialNoise, domain.StatusHighPriorityReview,
	}
	for _, status := range all {
		n, err := s.occs.CountByStatuses(ctx, nil, []domain.ValidationStatus{status})
		if err != nil {
			return nil, err
		}
		stats.ByStatus[status] = n
		stats.TotalOccurrences += n
	}
	if stats.QueueLength, err = s.occs.CountByStatuses(ctx, nil, reviewStatuses); err != nil {
		return nil, err
	}
	pending, err := s.occs.ListWithDecisions(ctx, nil)
	if err != nil {
		return nil, err
	}
	stats.PendingDecisions = len(pending)
	return stats, nil
}

func (s *ReviewService) TermDetail(ctx context.Context, occurrenceID uint) (*TermDetail, error) {
	row, err := s.occs.GetRowByID(ctx, nil, occurrenceID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("occurrence %d not found", occurrenceID)
	}
	siblings, err := s.occs.GetByConceptOrdered(ctx, nil, row.ConceptID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(siblings))
	for i, o := range siblings {
		ids[i] = o.OccurrenceID
	}
	edges, err := s.edges.ListForOccurrences(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	return &TermDetail{Occurrence: *row, ConceptOccurrences: siblings, Edges: edges}, nil
}

// AdjacentIDs returns the previous and next occurrence ids in the filtered
// review queue, 0 when at either end, so the UI can step through issues.
func (s *ReviewService) AdjacentIDs(ctx context.Context, occurrenceID uint, f repos.ListFilter) (prev, next uint, err error) {
	f.Limit = 0
	rows, _, err := s.occs.ListByStatuses(ctx, nil, reviewStatuses, f)
	if err != nil {
		return 0, 0, err
	}
	for i, row := range rows {
		if row.OccurrenceID != occurrenceID {
			continue
		}
		if i > 0 {
			prev = rows[i-1].OccurrenceID
		}
		if i+1 < len(rows) {
			next = rows[i+1].OccurrenceID
		}
		return prev, next, nil
	}
	return 0, 0, nil
}

// SaveDecision records a reviewer's verdict on an occurrence without applying
// it. An empty decision clears a previously saved one.
func (s *ReviewService) SaveDecision(ctx context.Context, occurrenceID uint, decision, notes string) error {
	occ, err := s.occs.GetByID(ctx, nil, occurrenceID)
	if err != nil {
		return err
	}
	if occ == nil {
		return fmt.Errorf("occurrence %d not found", occurrenceID)
	}

	var d *domain.AuditDecision
	if decision != "" {
		dec := domain.AuditDecision(decision)
		if !dec.Valid() {
			return fmt.Errorf("invalid decision %q", decision)
		}
		d = &dec
	}
	return s.occs.SetAuditDecision(ctx, nil, occurrenceID, d, strPtr(notes))
}

// PendingReport summarises an ApplyPending run.
type PendingReport struct {
	Deleted        int   `json:"deleted"`
	Kept           int   `json:"kept"`
	Cleared        int   `json:"cleared"`
	OrphansDeleted int64 `json:"orphans_deleted"`
}

// ApplyPending applies every decision saved on a store row: delete removes
// the occurrence, keep confirms it, skip just clears the saved decision.
// Decisions are cleared as they are applied, so a second call is a no-op.
func (s *ReviewService) ApplyPending(ctx context.Context, dryRun bool) (*PendingReport, error) {
	report := &PendingReport{}
	err := runTx(ctx, s.db, dryRun, func(tx *gorm.DB) error {
		rows, err := s.occs.ListWithDecisions(ctx, tx)
		if err != nil {
			return err
		}
		for _, row := range rows {
			switch *row.AuditDecision {
			case domain.DecisionDelete:
				if _, err := s.occs.Delete(ctx, tx, row.OccurrenceID); err != nil {
					return err
				}
				report.Deleted++
				continue
			case domain.DecisionKeep:
				if err := s.occs.SetValidationStatus(ctx, tx, row.OccurrenceID, domain.StatusConfirmed); err != nil {
					return err
				}
				report.Kept++
			default:
				report.Cleared++
			}
			if err := s.occs.SetAuditDecision(ctx, tx, row.OccurrenceID, nil, nil); err != nil {
				return err
			}
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

	s.log.Info("pending decisions applied",
		"deleted", report.Deleted, "kept", report.Kept,
		"cleared", report.Cleared, "dry_run", dryRun)
	return report, nil
}
