// Command audit enumerates unresolved issues — missed vocabulary terms,
// potential noise, high-priority reviews — into term_audit.csv for the
// enrichment and apply stages.
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
	out := flag.String("out", "", "output CSV path (default <output dir>/term_audit.csv)")
	flag.Parse()

	// Opening the store would create the file; check before building the app.
	dbPath, err := app.StorePath(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "audit:", err)
		os.Exit(1)
	}
	if !db.Exists(dbPath) {
		fmt.Fprintf(os.Stderr, "audit: database %s not found\n", dbPath)
		os.Exit(1)
	}

	a, err := app.New(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "audit:", err)
		os.Exit(1)
	}
	defer a.Close()

	queue, err := a.Audit.BuildQueue(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "audit:", err)
		os.Exit(1)
	}

	path := *out
	if path == "" {
		if err := os.MkdirAll(a.Config.OutputDir, 0o755); err != nil {
			fmt.Fprintln(os.Stderr, "audit:", err)
			os.Exit(1)
		}
		path = filepath.Join(a.Config.OutputDir, "term_audit.csv")
	}
	if err := services.WriteQueueCSV(path, queue); err != nil {
		fmt.Fprintln(os.Stderr, "audit:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d issues to %s\n", len(queue), path)
}
