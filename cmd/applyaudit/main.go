// Command applyaudit consumes reviewer decisions from the enriched audit CSV
// and applies them to the store, writing an audit trail of every outcome.
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
	in := flag.String("in", "", "input CSV path (default <output dir>/term_audit_enriched.csv)")
	logOut := flag.String("log", "", "audit trail path (default <output dir>/audit_decisions_log.csv)")
	dryRun := flag.Bool("dry-run", false, "report intended changes without writing")
	flag.Parse()

	// Opening the store would create the file; check before building the app.
	dbPath, err := app.StorePath(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "applyaudit:", err)
		os.Exit(1)
	}
	if !db.Exists(dbPath) {
		fmt.Fprintf(os.Stderr, "applyaudit: database %s not found\n", dbPath)
		os.Exit(1)
	}

	a, err := app.New(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "applyaudit:", err)
		os.Exit(1)
	}
	defer a.Close()

	inPath := *in
	if inPath == "" {
		inPath = filepath.Join(a.Config.OutputDir, "term_audit_enriched.csv")
	}
	if _, err := os.Stat(inPath); err != nil {
		fmt.Fprintf(os.Stderr, "applyaudit: %s not found, run enrichaudit first\n", inPath)
		os.Exit(1)
	}

	queue, err := services.ReadQueueCSV(inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "applyaudit:", err)
		os.Exit(1)
	}

	report, err := a.Audit.Apply(context.Background(), queue, *dryRun)
	if err != nil {
		fmt.Fprintln(os.Stderr, "applyaudit:", err)
		os.Exit(1)
	}

	if !*dryRun {
		logPath := *logOut
		if logPath == "" {
			logPath = filepath.Join(a.Config.OutputDir, "audit_decisions_log.csv")
		}
		if err := services.WriteLogCSV(logPath, report.Log); err != nil {
			fmt.Fprintln(os.Stderr, "applyaudit:", err)
			os.Exit(1)
		}
		fmt.Printf("audit trail written to %s\n", logPath)
	}

	prefix := ""
	if *dryRun {
		prefix = "[dry run] "
	}
	fmt.Printf("%sdeleted %d, kept %d, added %d, skipped %d, rejected %d, orphans removed %d\n",
		prefix, report.Deleted, report.Kept, report.Added, report.Skipped, report.Rejected, report.OrphansDeleted)
}
