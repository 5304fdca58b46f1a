// Package graph derives candidate knowledge-graph edges from curriculum
// ordering and computes graph-level statistics. Candidates are never
// persisted; only human confirmation turns one into a stored edge.
package graph

import (
	"sort"

	"github.com/hepworth/owlmap/internal/domain"
)

// ConceptOccurrence pairs an occurrence with its concept's display term, the
// shape candidate generation works over.
type ConceptOccurrence struct {
	domain.Occurrence
	ConceptTerm string
}

// Generate derives the candidate edge set from confirmed occurrences.
// Occurrences are grouped by concept; within each group they are sorted by
// curriculum position with occurrence id as the final tie-break, then chained
// sequentially — consecutive pairs only, never the transitive closure. A pair
// at an identical position is co-located, not a progression, and is skipped.
// confirmedPairs tags candidates that already have a stored edge.
func Generate(occurrences []ConceptOccurrence, confirmedPairs map[[2]uint]bool) []domain.CandidateEdge {
	byConcept := make(map[uint][]ConceptOccurrence)
	var conceptIDs []uint
	for _, occ := range occurrences {
		if _, ok := byConcept[occ.ConceptID]; !ok {
			conceptIDs = append(conceptIDs, occ.ConceptID)
		}
		byConcept[occ.ConceptID] = append(byConcept[occ.ConceptID], occ)
	}
	sort.Slice(conceptIDs, func(i, j int) bool { return conceptIDs[i] < conceptIDs[j] })

	var candidates []domain.CandidateEdge
	for _, cid := range conceptIDs {
		group := byConcept[cid]
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			pi, pj := group[i].Position(), group[j].Position()
			if pi != pj {
				return pi.Less(pj)
			}
			return group[i].OccurrenceID < group[j].OccurrenceID
		})

		for i := 0; i+1 < len(group); i++ {
			from, to := group[i], group[i+1]
			if from.Position() == to.Position() {
				continue
			}
			candidates = append(candidates, newCandidate(from, to, confirmedPairs))
		}
	}
	return candidates
}

func newCandidate(from, to ConceptOccurrence, confirmedPairs map[[2]uint]bool) domain.CandidateEdge {
	return domain.CandidateEdge{
		FromOccurrenceID: from.OccurrenceID,
		ToOccurrenceID:   to.OccurrenceID,
		Term:             from.ConceptTerm,

		FromSubject: from.Subject,
		FromYear:    from.Year,
		FromTerm:    from.Term,
		FromUnit:    from.Unit,
		FromChapter: strOrEmpty(from.Chapter),

		ToSubject: to.Subject,
		ToYear:    to.Year,
		ToTerm:    to.Term,
		ToUnit:    to.Unit,
		ToChapter: strOrEmpty(to.Chapter),

		EdgeType:         domain.DeriveEdgeType(from.Subject, to.Subject),
		AlreadyConfirmed: confirmedPairs[[2]uint{from.OccurrenceID, to.OccurrenceID}],
	}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
