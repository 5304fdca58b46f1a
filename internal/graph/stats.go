package graph

import "sort"

// LoadBearingConcept is a concept with two or more confirmed occurrences,
// ranked by how much of the curriculum leans on it.
type LoadBearingConcept struct {
	ConceptID       uint     `json:"concept_id"`
	Term            string   `json:"term"`
	OccurrenceCount int      `json:"occurrence_count"`
	Subjects        []string `json:"subjects"`
	YearSpan        int      `json:"year_span"` // max year - min year across occurrences
}

// LoadBearing ranks concepts by confirmed occurrence count, descending, with
// term text as the tie-break. limit <= 0 returns the full ranking.
func LoadBearing(occurrences []ConceptOccurrence, limit int) []LoadBearingConcept {
	type acc struct {
		term     string
		count    int
		subjects map[string]bool
		minYear  int
		maxYear  int
	}
	byConcept := map[uint]*acc{}
	for _, occ := range occurrences {
		a := byConcept[occ.ConceptID]
		if a == nil {
			a = &acc{term: occ.ConceptTerm, subjects: map[string]bool{}, minYear: occ.Year, maxYear: occ.Year}
			byConcept[occ.ConceptID] = a
		}
		a.count++
		a.subjects[occ.Subject] = true
		if occ.Year < a.minYear {
			a.minYear = occ.Year
		}
		if occ.Year > a.maxYear {
			a.maxYear = occ.Year
		}
	}

	var ranked []LoadBearingConcept
	for cid, a := range byConcept {
		if a.count < 2 {
			continue
		}
		subjects := make([]string, 0, len(a.subjects))
		for s := range a.subjects {
			subjects = append(subjects, s)
		}
		sort.Strings(subjects)
		ranked = append(ranked, LoadBearingConcept{
			ConceptID:       cid,
			Term:            a.term,
			OccurrenceCount: a.count,
			Subjects:        subjects,
			YearSpan:        a.maxYear - a.minYear,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].OccurrenceCount != ranked[j].OccurrenceCount {
			return ranked[i].OccurrenceCount > ranked[j].OccurrenceCount
		}
		return ranked[i].Term < ranked[j].Term
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// CountBySubject tallies occurrences per subject.
func CountBySubject(occurrences []ConceptOccurrence) map[string]int {
	counts := map[string]int{}
	for _, occ := range occurrences {
		counts[occ.Subject]++
	}
	return counts
}
