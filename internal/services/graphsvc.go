package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hepworth/owlmap/internal/domain"
	"github.com/hepworth/owlmap/internal/graph"
	"github.com/hepworth/owlmap/internal/logger"
	"github.com/hepworth/owlmap/internal/repos"
)

// CandidateFilter narrows and paginates the candidate edge listing.
type CandidateFilter struct {
	Subject   string          // matches either end of the candidate
	EdgeType  domain.EdgeType // "" = all
	Confirmed *bool           // nil = all, else filter on already-confirmed
	Limit     int
	Offset    int
}

// CandidatePage is one page of candidate edges.
type CandidatePage struct {
	Candidates []domain.CandidateEdge `json:"candidates"`
	Total      int                    `json:"total"`
	Limit      int                    `json:"limit"`
	Offset     int                    `json:"offset"`
}

// ConceptDetail is a concept with its ordered occurrences and related edges.
type ConceptDetail struct {
	Concept     domain.Concept      `json:"concept"`
	Occurrences []domain.Occurrence `json:"occurrences"`
	Edges       []domain.Edge       `json:"edges"`
}

// GraphStats are the dashboard aggregates.
type GraphStats struct {
	OccurrencesBySubject map[string]int              `json:"occurrences_by_subject"`
	LoadBearingConcepts  []graph.LoadBearingConcept  `json:"load_bearing_concepts"`
	CandidateCount       int                         `json:"candidate_count"`
	EdgeCount            int64                       `json:"edge_count"`
	EdgesByType          map[domain.EdgeType]int64   `json:"edges_by_type"`
	EdgesByNature        map[domain.EdgeNature]int64 `json:"edges_by_nature"`
}

// GraphService derives the candidate edge set from confirmed occurrences and
// handles edge confirmation.
type GraphService struct {
	db       *gorm.DB
	concepts repos.ConceptRepo
	occs     repos.OccurrenceRepo
	edges    repos.EdgeRepo
	log      *logger.Logger
}

func NewGraphService(db *gorm.DB, concepts repos.ConceptRepo, occs repos.OccurrenceRepo, edges repos.EdgeRepo, baseLog *logger.Logger) *GraphService {
	return &GraphService{
		db:       db,
		concepts: concepts,
		occs:     occs,
		edges:    edges,
		log:      baseLog.With("service", "GraphService"),
	}
}

// AllCandidates generates the full candidate edge set, in deterministic
// order, tagged against already-confirmed edges.
func (s *GraphService) AllCandidates(ctx context.Context) ([]domain.CandidateEdge, error) {
	rows, err := s.occs.ConfirmedRows(ctx, nil)
	if err != nil {
		return nil, err
	}
	pairs, err := s.edges.ConfirmedPairs(ctx, nil)
	if err != nil {
		return nil, err
	}
	occurrences := make([]graph.ConceptOccurrence, len(rows))
	for i, row := range rows {
		occurrences[i] = graph.ConceptOccurrence{Occurrence: row.Occurrence, ConceptTerm: row.ConceptTerm}
	}
	return graph.Generate(occurrences, pairs), nil
}

// Candidates filters and pages the candidate set.
func (s *GraphService) Candidates(ctx context.Context, f CandidateFilter) (*CandidatePage, error) {
	all, err := s.AllCandidates(ctx)
	if err != nil {
		return nil, err
	}

	var filtered []domain.CandidateEdge
	for _, c := range all {
		if f.Subject != "" && c.FromSubject != f.Subject && c.ToSubject != f.Subject {
			continue
		}
		if f.EdgeType != "" && c.EdgeType != f.EdgeType {
			continue
		}
		if f.Confirmed != nil && c.AlreadyConfirmed != *f.Confirmed {
			continue
		}
		filtered = append(filtered, c)
	}

	page := &CandidatePage{Total: len(filtered), Limit: f.Limit, Offset: f.Offset}
	if f.Limit <= 0 {
		page.Candidates = filtered
		return page, nil
	}
	start := f.Offset
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + f.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	page.Candidates = filtered[start:end]
	return page, nil
}

// ConfirmEdge records a human confirmation of a candidate. The upsert is
// keyed on the (from, to) pair: re-confirming overwrites nature, reviewer
// and date rather than creating a second edge. An empty edge type derives
// from the two ends' subjects; a non-empty one is an explicit override.
func (s *GraphService) ConfirmEdge(ctx context.Context, from, to uint, edgeType domain.EdgeType, nature domain.EdgeNature, confirmedBy string) (*domain.Edge, error) {
	if confirmedBy == "" {
		return nil, fmt.Errorf("confirmed_by must not be empty")
	}
	if !nature.Valid() {
		return nil, fmt.Errorf("invalid edge nature %q", nature)
	}
	if edgeType != "" && edgeType != domain.EdgeWithinSubject && edgeType != domain.EdgeCrossSubject {
		return nil, fmt.Errorf("invalid edge type %q", edgeType)
	}

	fromOcc, err := s.occs.GetByID(ctx, nil, from)
	if err != nil {
		return nil, err
	}
	if fromOcc == nil {
		return nil, fmt.Errorf("occurrence %d not found", from)
	}
	toOcc, err := s.occs.GetByID(ctx, nil, to)
	if err != nil {
		return nil, err
	}
	if toOcc == nil {
		return nil, fmt.Errorf("occurrence %d not found", to)
	}
	if edgeType == "" {
		edgeType = domain.DeriveEdgeType(fromOcc.Subject, toOcc.Subject)
	}

	edge := &domain.Edge{
		FromOccurrence: from,
		ToOccurrence:   to,
		EdgeType:       edgeType,
		EdgeNature:     nature,
		ConfirmedBy:    confirmedBy,
		ConfirmedDate:  time.Now().UTC().Format("2006-01-02"),
	}
	action, err := s.edges.Upsert(ctx, nil, edge)
	if err != nil {
		return nil, err
	}
	s.log.Info("edge confirmed", "from", from, "to", to,
		"nature", nature, "action", string(action), "by", confirmedBy)
	return edge, nil
}

func (s *GraphService) ConceptDetail(ctx context.Context, conceptID uint) (*ConceptDetail, error) {
	concept, err := s.concepts.GetByID(ctx, nil, conceptID)
	if err != nil {
		return nil, err
	}
	if concept == nil {
		return nil, fmt.Errorf("concept %d not found", conceptID)
	}
	occs, err := s.occs.GetByConceptOrdered(ctx, nil, conceptID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(occs))
	for i, o := range occs {
		ids[i] = o.OccurrenceID
	}
	edges, err := s.edges.ListForOccurrences(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	return &ConceptDetail{Concept: *concept, Occurrences: occs, Edges: edges}, nil
}

// ConceptDetailByTerm resolves a concept by its exact term text.
func (s *GraphService) ConceptDetailByTerm(ctx context.Context, term string) (*ConceptDetail, error) {
	concept, err := s.concepts.GetByTerm(ctx, nil, term)
	if err != nil {
		return nil, err
	}
	if concept == nil {
		return nil, fmt.Errorf("concept %q not found", term)
	}
	return s.ConceptDetail(ctx, concept.ConceptID)
}

// LoadBearing ranks the concepts the curriculum leans on most.
func (s *GraphService) LoadBearing(ctx context.Context, limit int) ([]graph.LoadBearingConcept, error) {
	rows, err := s.occs.ConfirmedRows(ctx, nil)
	if err != nil {
		return nil, err
	}
	occurrences := make([]graph.ConceptOccurrence, len(rows))
	for i, row := range rows {
		occurrences[i] = graph.ConceptOccurrence{Occurrence: row.Occurrence, ConceptTerm: row.ConceptTerm}
	}
	return graph.LoadBearing(occurrences, limit), nil
}

func (s *GraphService) Stats(ctx context.Context) (*GraphStats, error) {
	rows, err := s.occs.ConfirmedRows(ctx, nil)
	if err != nil {
		return nil, err
	}
	occurrences := make([]graph.ConceptOccurrence, len(rows))
	for i, row := range rows {
		occurrences[i] = graph.ConceptOccurrence{Occurrence: row.Occurrence, ConceptTerm: row.ConceptTerm}
	}
	pairs, err := s.edges.ConfirmedPairs(ctx, nil)
	if err != nil {
		return nil, err
	}

	stats := &GraphStats{
		OccurrencesBySubject: graph.CountBySubject(occurrences),
		LoadBearingConcepts:  graph.LoadBearing(occurrences, 20),
		CandidateCount:       len(graph.Generate(occurrences, pairs)),
	}
	if stats.EdgeCount, err = s.edges.Count(ctx, nil); err != nil {
		return nil, err
	}
	if stats.EdgesByType, err = s.edges.CountByType(ctx, nil); err != nil {
		return nil, err
	}
	if stats.EdgesByNature, err = s.edges.CountByNature(ctx, nil); err != nil {
		return nil, err
	}
	return stats, nil
}

// ExportCandidates writes the full candidate set to a CSV file.
func (s *GraphService) ExportCandidates(ctx context.Context, path string) (int, error) {
	candidates, err := s.AllCandidates(ctx)
	if err != nil {
		return 0, err
	}
	if err := graph.ExportCandidatesCSV(path, candidates); err != nil {
		return 0, err
	}
	s.log.Info("candidates exported", "path", path, "count", len(candidates))
	return len(candidates), nil
}
