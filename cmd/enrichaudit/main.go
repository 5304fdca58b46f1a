// Command enrichaudit augments term_audit.csv with supporting evidence —
// occurrence ids for store-backed rows, unbolded-appearance searches for
// missed terms — and adds the empty decision column reviewers fill in.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hepworth/owlmap/internal/app"
	"github.com/hepworth/owlmap/internal/db"
	"github.com/hepworth/owlmap/internal/services"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	in := flag.String("in", "", "input CSV path (default <output dir>/term_audit.csv)")
	out := flag.String("out", "", "output CSV path (default <output dir>/term_audit_enriched.csv)")
	flag.Parse()

	// Opening the store would create the file; check before building the app.
	dbPath, err := app.StorePath(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "enrichaudit:", err)
		os.Exit(1)
	}
	if !db.Exists(dbPath) {
		fmt.Fprintf(os.Stderr, "enrichaudit: database %s not found\n", dbPath)
		os.Exit(1)
	}

	a, err := app.New(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "enrichaudit:", err)
		os.Exit(1)
	}
	defer a.Close()

	inPath := *in
	if inPath == "" {
		inPath = filepath.Join(a.Config.OutputDir, "term_audit.csv")
	}
	if _, err := os.Stat(inPath); err != nil {
		fmt.Fprintf(os.Stderr, "enrichaudit: %s not found, run audit first\n", inPath)
		os.Exit(1)
	}

	queue, err := services.ReadQueueCSV(inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "enrichaudit:", err)
		os.Exit(1)
	}
	queue, err = a.Audit.Enrich(context.Background(), queue)
	if err != nil {
		fmt.Fprintln(os.Stderr, "enrichaudit:", err)
		os.Exit(1)
	}

	outPath := *out
	if outPath == "" {
		outPath = filepath.Join(a.Config.OutputDir, "term_audit_enriched.csv")
	}
	if err := services.WriteEnrichedCSV(outPath, queue); err != nil {
		fmt.Fprintln(os.Stderr, "enrichaudit:", err)
		os.Exit(1)
	}
	fmt.Printf("enriched %d issues into %s\n", len(queue), outPath)
}
