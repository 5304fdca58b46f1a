// Command cleanup runs the vocabulary-first cleanup pass: noise deletion,
// flag promotion, chapter filling and missed-term recovery.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/hepworth/owlmap/internal/app"
	"github.com/hepworth/owlmap/internal/db"
	"github.com/hepworth/owlmap/internal/services"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	dryRun := flag.Bool("dry-run", false, "report intended changes without writing")
	skipPromote := flag.Bool("skip-promote", false, "leave confirmed-with-flag rows for manual triage")
	flag.Parse()

	// Opening the store would create the file; check before building the app.
	dbPath, err := app.StorePath(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cleanup:", err)
		os.Exit(1)
	}
	if !db.Exists(dbPath) {
		fmt.Fprintf(os.Stderr, "cleanup: database %s not found, run extract first\n", dbPath)
		os.Exit(1)
	}

	a, err := app.New(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cleanup:", err)
		os.Exit(1)
	}
	defer a.Close()

	report, err := a.Cleanup.Run(context.Background(), services.CleanupOptions{
		DryRun:      *dryRun,
		SkipPromote: *skipPromote,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "cleanup:", err)
		os.Exit(1)
	}

	prefix := ""
	if *dryRun {
		prefix = "[dry run] "
	}
	fmt.Printf("%sdeleted %d noise rows and %d orphaned concepts\n", prefix, report.NoiseDeleted, report.OrphansDeleted)
	fmt.Printf("%spromoted %d flagged confirmations\n", prefix, report.FlagsPromoted)
	fmt.Printf("%sfilled %d chapters, recovered %d terms (%d not found in decks)\n",
		prefix, report.ChaptersFilled, report.TermsRecovered, report.TermsNotInDeck)
	fmt.Printf("%s%d units processed, %d without vocabulary, %d errors\n",
		prefix, report.UnitsProcessed, report.UnitsWithoutDoc, report.UnitErrors)
}
