// Command extract runs the batch term extraction over the slide deck corpus,
// validating against each unit's vocabulary document where one exists.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/hepworth/owlmap/internal/app"
	"github.com/hepworth/owlmap/internal/services"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	root := flag.String("root", "", "corpus root (overrides config)")
	subject := flag.String("subject", "", "only extract decks for this subject")
	year := flag.Int("year", 0, "only extract decks for this year group")
	resume := flag.Bool("resume", false, "skip decks already present in the store")
	export := flag.Bool("export", false, "write per-deck term CSVs to the output directory")
	dryRun := flag.Bool("dry-run", false, "report what would be inserted without writing")
	flag.Parse()

	a, err := app.New(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "extract:", err)
		os.Exit(1)
	}
	defer a.Close()

	opts := services.ExtractionOptions{
		Root:    a.Config.CorpusRoot,
		Subject: *subject,
		Year:    *year,
		Resume:  *resume,
		DryRun:  *dryRun,
	}
	if *root != "" {
		opts.Root = *root
	}
	if *export {
		opts.OutputDir = a.Config.OutputDir
	}
	if _, err := os.Stat(opts.Root); err != nil {
		fmt.Fprintf(os.Stderr, "extract: corpus root %s not found\n", opts.Root)
		os.Exit(1)
	}

	report, err := a.Extraction.Run(context.Background(), opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "extract:", err)
		os.Exit(1)
	}

	fmt.Printf("processed %d decks (%d skipped, %d failed), %d occurrences inserted\n",
		report.Processed, report.Skipped, report.Failed, report.Inserted)
	for _, dr := range report.Decks {
		if dr.Error != "" {
			fmt.Printf("  FAILED %s: %s\n", dr.Path, dr.Error)
		}
	}
}
