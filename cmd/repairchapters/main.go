// Command repairchapters reconciles occurrence chapter labels: strips
// table-of-contents artifacts, then aligns chapter numbers with each unit's
// vocabulary document.
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
	flag.Parse()

	// Opening the store would create the file; check before building the app.
	dbPath, err := app.StorePath(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "repairchapters:", err)
		os.Exit(1)
	}
	if !db.Exists(dbPath) {
		fmt.Fprintf(os.Stderr, "repairchapters: database %s not found\n", dbPath)
		os.Exit(1)
	}

	a, err := app.New(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "repairchapters:", err)
		os.Exit(1)
	}
	defer a.Close()

	report, err := a.Chapters.Run(context.Background(), services.ChapterRepairOptions{DryRun: *dryRun})
	if err != nil {
		fmt.Fprintln(os.Stderr, "repairchapters:", err)
		os.Exit(1)
	}

	prefix := ""
	if *dryRun {
		prefix = "[dry run] "
	}
	fmt.Printf("%scleaned %d chapter strings, repaired %d chapter numbers (%d bare-number fallbacks)\n",
		prefix, report.StringsCleaned, report.NumbersRepaired, report.Fallbacks)
	fmt.Printf("%s%d units processed, %d without vocabulary, %d errors\n",
		prefix, report.UnitsProcessed, report.UnitsWithoutDoc, report.UnitErrors)
}
