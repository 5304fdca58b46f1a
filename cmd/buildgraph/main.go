// Command buildgraph derives the candidate edge set from confirmed
// occurrences and prints graph statistics. It never writes edges — only
// human confirmation through the API does that.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hepworth/owlmap/internal/app"
	"github.com/hepworth/owlmap/internal/db"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	export := flag.Bool("export-candidates", false, "write the candidate set to CSV in the output directory")
	top := flag.Int("top", 0, "print the top N load-bearing concepts")
	concept := flag.String("concept", "", "trace one concept's occurrences and edges by term text")
	flag.Parse()

	// Opening the store would create the file; check before building the app.
	dbPath, err := app.StorePath(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "buildgraph:", err)
		os.Exit(1)
	}
	if !db.Exists(dbPath) {
		fmt.Fprintf(os.Stderr, "buildgraph: database %s not found\n", dbPath)
		os.Exit(1)
	}

	a, err := app.New(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "buildgraph:", err)
		os.Exit(1)
	}
	defer a.Close()
	ctx := context.Background()

	if *concept != "" {
		detail, err := a.Graph.ConceptDetailByTerm(ctx, *concept)
		if err != nil {
			fmt.Fprintln(os.Stderr, "buildgraph:", err)
			os.Exit(1)
		}
		fmt.Printf("%s (concept %d): %d occurrences, %d edges\n",
			detail.Concept.Term, detail.Concept.ConceptID, len(detail.Occurrences), len(detail.Edges))
		for _, occ := range detail.Occurrences {
			slide := "-"
			if occ.SlideNumber != nil {
				slide = fmt.Sprintf("slide %d", *occ.SlideNumber)
			}
			fmt.Printf("  #%d %s Y%d %s %q %s\n",
				occ.OccurrenceID, occ.Subject, occ.Year, occ.Term, occ.Unit, slide)
		}
		return
	}

	candidates, err := a.Graph.AllCandidates(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "buildgraph:", err)
		os.Exit(1)
	}
	confirmed := 0
	for _, c := range candidates {
		if c.AlreadyConfirmed {
			confirmed++
		}
	}
	fmt.Printf("%d candidate edges (%d already confirmed)\n", len(candidates), confirmed)

	if *export {
		if err := os.MkdirAll(a.Config.OutputDir, 0o755); err != nil {
			fmt.Fprintln(os.Stderr, "buildgraph:", err)
			os.Exit(1)
		}
		path := filepath.Join(a.Config.OutputDir, "candidate_edges.csv")
		n, err := a.Graph.ExportCandidates(ctx, path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "buildgraph:", err)
			os.Exit(1)
		}
		fmt.Printf("exported %d candidates to %s\n", n, path)
	}

	if *top > 0 {
		ranked, err := a.Graph.LoadBearing(ctx, *top)
		if err != nil {
			fmt.Fprintln(os.Stderr, "buildgraph:", err)
			os.Exit(1)
		}
		for i, c := range ranked {
			fmt.Printf("%2d. %s — %d occurrences, %d subjects, year span %d\n",
				i+1, c.Term, c.OccurrenceCount, len(c.Subjects), c.YearSpan)
		}
	}
}
