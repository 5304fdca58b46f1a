package graph

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/hepworth/owlmap/internal/domain"
)

var candidateHeader = []string{
	"term",
	"from_occurrence_id", "from_subject", "from_year", "from_term", "from_unit", "from_chapter",
	"to_occurrence_id", "to_subject", "to_year", "to_term", "to_unit", "to_chapter",
	"edge_type", "already_confirmed",
}

// ExportCandidatesCSV writes the candidate edge set to path, pending rows
// first and already-confirmed rows after, each block in generation order
// (concept id, then curriculum order).
func ExportCandidatesCSV(path string, candidates []domain.CandidateEdge) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create candidate export %s: %w", path, err)
	}
	defer f.Close()

	ordered := make([]domain.CandidateEdge, 0, len(candidates))
	for _, c := range candidates {
		if !c.AlreadyConfirmed {
			ordered = append(ordered, c)
		}
	}
	for _, c := range candidates {
		if c.AlreadyConfirmed {
			ordered = append(ordered, c)
		}
	}

	w := csv.NewWriter(f)
	if err := w.Write(candidateHeader); err != nil {
		return err
	}
	for _, c := range ordered {
		rec := []string{
			c.Term,
			strconv.FormatUint(uint64(c.FromOccurrenceID), 10),
			c.FromSubject, strconv.Itoa(c.FromYear), c.FromTerm, c.FromUnit, c.FromChapter,
			strconv.FormatUint(uint64(c.ToOccurrenceID), 10),
			c.ToSubject, strconv.Itoa(c.ToYear), c.ToTerm, c.ToUnit, c.ToChapter,
			string(c.EdgeType), strconv.FormatBool(c.AlreadyConfirmed),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
